package apperr

import (
	"os"
	"testing"

	"github.com/pkg/errors"
)

func TestIsFatal(t *testing.T) {
	var tests = []struct {
		err   error
		fatal bool
	}{
		{Config("ref.fasta", os.ErrNotExist), true},
		{errors.Wrap(NoUsableData("binning", "no bins"), "run"), true},
		{&BinFailure{Amplicon: "AMP1", Err: errors.New("exit status 1")}, false},
		{&AsvMismatch{Asv: "ASV1", Amplicon: "AMP1", RefLen: 10, AsvLen: 9}, false},
		{errors.New("other"), false},
	}

	for _, test := range tests {
		if IsFatal(test.err) != test.fatal {
			t.Errorf("problem with IsFatal on %v: expected %v", test.err, test.fatal)
		}
	}
}

func TestConfigUnwrap(t *testing.T) {
	err := errors.Wrap(Config("ref.fasta", os.ErrNotExist), "loading reference")
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("problem with ConfigError unwrapping")
	}
	var c *ConfigError
	if !errors.As(err, &c) || c.Path != "ref.fasta" {
		t.Error("problem with ConfigError path", c)
	}
}

func readPanics(path string) (err error) {
	defer Catch(path, &err)
	panic("last line of file didn't end with a newline character")
}

func TestCatch(t *testing.T) {
	err := readPanics("table.txt")
	var c *ConfigError
	if !errors.As(err, &c) {
		t.Fatalf("problem with Catch: expected ConfigError, got %v", err)
	}
	if c.Path != "table.txt" {
		t.Error("problem with Catch path", c.Path)
	}
}
