package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dasnellings/ampliconTools/amplicon"
	"github.com/vertgenlab/gonomics/dna"
)

func TestCommandMap(t *testing.T) {
	m := commandMap()
	for _, name := range []string{"asv2cigar", "convert", "zeros", "mask"} {
		if m[name] == nil {
			t.Error("problem with commandMap: missing", name)
		}
	}
}

func TestWriteHomopolymers(t *testing.T) {
	db := amplicon.Database{
		"AMP2": {Id: "AMP2", Seq: dna.StringToBases("GGGGGCAAAAAAT")},
		"AMP1": {Id: "AMP1", Seq: dna.StringToBases("ACGTTTTTAC")},
	}
	out := filepath.Join(t.TempDir(), "homopolymers.bed")
	writeHomopolymers(out, db, 5)
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	expected := "AMP1\t3\t8\t5xT\n" +
		"AMP2\t0\t5\t5xG\n" +
		"AMP2\t6\t12\t6xA\n"
	if string(b) != expected {
		t.Errorf("problem with writeHomopolymers: got %q", b)
	}
}
