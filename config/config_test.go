package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dasnellings/ampliconTools/apperr"
	"github.com/pkg/errors"
)

func TestParseBool(t *testing.T) {
	var tests = []struct {
		in       string
		expected bool
		err      bool
	}{
		{"True", true, false},
		{"FALSE", false, false},
		{"true", true, false},
		{" no ", false, false},
		{"1", true, false},
		{"0", false, false},
		{"__import__('os')", false, true},
		{"", false, true},
		{"T", false, true},
	}

	for _, test := range tests {
		actual, err := ParseBool(test.in)
		if (err != nil) != test.err {
			t.Errorf("problem with ParseBool(%q): unexpected error state %v", test.in, err)
		}
		if actual != test.expected {
			t.Errorf("problem with ParseBool(%q): expected %v got %v", test.in, test.expected, actual)
		}
	}
}

func writeConfig(t *testing.T, text string) string {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
	"path_to_fq": "fastq/",
	"reference_amplicons": "ref.fasta",
	"polyN": "4",
	"min_reads": 10,
	"max_snv_dist": "-1",
	"include_failed": "False",
	"exclude_bimeras": "True",
	"verbose": true,
	"aligner": "builtin",
	"aligner_timeout": "90s",
	"threads": 4
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ReferenceAmplicons != "ref.fasta" || cfg.PolyN != 4 || cfg.MinReads != 10 || cfg.MaxSnvDist != -1 {
		t.Error("problem with Load numeric fields", cfg)
	}
	if cfg.IncludeFailed || !cfg.ExcludeBimeras || !cfg.Verbose {
		t.Error("problem with Load boolean fields", cfg)
	}
	if cfg.AlignerTimeout != 90*time.Second || cfg.Threads != 4 || cfg.Aligner != AlignerBuiltin {
		t.Error("problem with Load aligner fields", cfg)
	}
	if cfg.MaxIndelDist != -1 || cfg.Mask != "amp_mask.txt" {
		t.Error("problem with Load defaults", cfg)
	}
	if cfg.Out != filepath.Join("Results", "CIGARVariants_Bfilter.out.tsv") {
		t.Error("problem with derived output path", cfg.Out)
	}
	if cfg.AlignmentDir != filepath.Join("Results", "ASV_to_CIGAR", "alignments") {
		t.Error("problem with derived alignment dir", cfg.AlignmentDir)
	}
}

func TestLoadErrors(t *testing.T) {
	var tests = []string{
		`{"reference_amplicons": "ref.fasta", "include_failed": "maybe"}`,
		`{"reference_amplicons": "ref.fasta", "polyN": 0}`,
		`{"reference_amplicons": "ref.fasta", "aligner": "clustal"}`,
		`{"reference_amplicons": "ref.fasta", "min_reads": "ten"}`,
		`{"polyN": 5}`,
		`not json`,
	}

	var c *apperr.ConfigError
	for _, test := range tests {
		_, err := Load(writeConfig(t, test))
		if !errors.As(err, &c) {
			t.Errorf("problem with Load(%s): expected ConfigError, got %v", test, err)
		}
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.As(err, &c) {
		t.Error("problem with Load on missing file", err)
	}
}

func TestReferences(t *testing.T) {
	cfg := Default()
	cfg.ReferenceAmplicons = "a.fasta"
	cfg.ExtraReferences = []string{"c.fasta"}
	refs := cfg.References()
	if len(refs) != 2 || refs[0] != "a.fasta" || refs[1] != "c.fasta" {
		t.Error("problem with References", refs)
	}
}
