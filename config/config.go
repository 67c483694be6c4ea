// Package config holds the typed run configuration for amptools asv2cigar.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dasnellings/ampliconTools/apperr"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Aligner backends.
const (
	AlignerMuscle  = "muscle"
	AlignerBuiltin = "builtin"
)

// Config describes one ASV to CIGAR run. Blank output paths are derived
// from ResultsDir by Validate.
type Config struct {
	ReferenceAmplicons string
	Reference2         string
	ExtraReferences    []string
	Mask               string

	ResultsDir   string
	AsvTable     string
	AsvFasta     string
	Seqtab       string
	Out          string
	CigarMap     string
	ZeroReads    string
	AlignmentDir string
	Summary      string
	Plot         string

	PolyN          int
	MinReads       int
	MinSamples     int
	MaxSnvDist     int
	MaxIndelDist   int
	IncludeFailed  bool
	ExcludeBimeras bool
	Verbose        bool

	Aligner        string
	Muscle         string
	MuscleV5       bool
	AlignerTimeout time.Duration
	Threads        int
}

// Default returns the configuration used when a key is absent from the config file.
func Default() Config {
	return Config{
		Mask:         "amp_mask.txt",
		ResultsDir:   "Results",
		PolyN:        5,
		MaxSnvDist:   -1,
		MaxIndelDist: -1,
		Aligner:      AlignerMuscle,
		Muscle:       "muscle",
		Threads:      1,
	}
}

// keys maps config file keys onto the fields they set.
func (c *Config) keys() map[string]interface{} {
	return map[string]interface{}{
		"reference_amplicons": &c.ReferenceAmplicons,
		"reference2":          &c.Reference2,
		"extra_references":    &c.ExtraReferences,
		"mask":                &c.Mask,
		"results_dir":         &c.ResultsDir,
		"asv_table":           &c.AsvTable,
		"asv_fasta":           &c.AsvFasta,
		"seqtab":              &c.Seqtab,
		"out":                 &c.Out,
		"asv_to_cigar":        &c.CigarMap,
		"zero_read_samples":   &c.ZeroReads,
		"alignments":          &c.AlignmentDir,
		"summary":             &c.Summary,
		"plot":                &c.Plot,
		"polyN":               &c.PolyN,
		"min_reads":           &c.MinReads,
		"min_samples":         &c.MinSamples,
		"max_snv_dist":        &c.MaxSnvDist,
		"max_indel_dist":      &c.MaxIndelDist,
		"include_failed":      &c.IncludeFailed,
		"exclude_bimeras":     &c.ExcludeBimeras,
		"verbose":             &c.Verbose,
		"aligner":             &c.Aligner,
		"muscle":              &c.Muscle,
		"muscle_v5":           &c.MuscleV5,
		"aligner_timeout":     &c.AlignerTimeout,
		"threads":             &c.Threads,
	}
}

// Load reads a JSON config file on top of Default and validates the result.
// Keys used by other pipeline stages are ignored.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, apperr.Config(path, err)
	}
	var raw map[string]json.RawMessage
	if err = json.Unmarshal(data, &raw); err != nil {
		return cfg, apperr.Config(path, err)
	}

	keys := cfg.keys()
	for key, value := range raw {
		field, found := keys[key]
		if !found {
			log.Debugf("ignoring config key %s", key)
			continue
		}
		if err = decode(value, field); err != nil {
			return cfg, apperr.Configf(path, "key %s: %v", key, err)
		}
	}

	err = cfg.Validate()
	return cfg, err
}

// decode sets field from a JSON value. Numbers, booleans, and durations may also be given as strings.
func decode(value json.RawMessage, field interface{}) error {
	var s string
	quoted := json.Unmarshal(value, &s) == nil
	var err error
	switch f := field.(type) {
	case *string:
		if !quoted {
			return errors.Errorf("expected string, got %s", value)
		}
		*f = s
	case *[]string:
		if quoted {
			*f = []string{s}
			return nil
		}
		return json.Unmarshal(value, f)
	case *int:
		if !quoted {
			s = string(value)
		}
		*f, err = strconv.Atoi(strings.TrimSpace(s))
	case *bool:
		var b Bool
		err = b.UnmarshalJSON(value)
		*f = bool(b)
	case *time.Duration:
		if !quoted {
			var seconds float64
			if err = json.Unmarshal(value, &seconds); err != nil {
				return err
			}
			*f = time.Duration(seconds * float64(time.Second))
			return nil
		}
		*f, err = time.ParseDuration(s)
	default:
		log.Panicf("unsupported config field type %T", field)
	}
	return err
}

// References returns the reference files in the order they are merged.
func (c *Config) References() []string {
	var refs []string
	for _, r := range append([]string{c.ReferenceAmplicons, c.Reference2}, c.ExtraReferences...) {
		if r != "" {
			refs = append(refs, r)
		}
	}
	return refs
}

// Validate checks the configuration and fills blank output paths from ResultsDir.
func (c *Config) Validate() error {
	if c.ReferenceAmplicons == "" {
		return apperr.Configf("", "reference_amplicons is required")
	}
	switch {
	case c.PolyN < 1:
		return apperr.Configf("", "polyN must be at least 1, got %d", c.PolyN)
	case c.MinReads < 0:
		return apperr.Configf("", "min_reads must not be negative, got %d", c.MinReads)
	case c.MinSamples < 0:
		return apperr.Configf("", "min_samples must not be negative, got %d", c.MinSamples)
	case c.Threads < 1:
		return apperr.Configf("", "threads must be at least 1, got %d", c.Threads)
	case c.AlignerTimeout < 0:
		return apperr.Configf("", "aligner_timeout must not be negative, got %s", c.AlignerTimeout)
	}
	switch c.Aligner {
	case AlignerMuscle:
		if c.Muscle == "" {
			return apperr.Configf("", "muscle executable must be set when aligner is %s", AlignerMuscle)
		}
	case AlignerBuiltin:
	default:
		return apperr.Configf("", "unknown aligner %q, expected %s or %s", c.Aligner, AlignerMuscle, AlignerBuiltin)
	}

	fill := func(field *string, elem ...string) {
		if *field == "" {
			*field = filepath.Join(append([]string{c.ResultsDir}, elem...)...)
		}
	}
	fill(&c.Seqtab, "seqtab.tsv")
	fill(&c.AsvFasta, "PostProc_DADA2", "ASVSeqs.fasta")
	fill(&c.AsvTable, "PostProc_DADA2", "ASVTable.txt")
	fill(&c.Out, "CIGARVariants_Bfilter.out.tsv")
	fill(&c.CigarMap, "ASV_to_CIGAR", "ASV_to_CIGAR.out.txt")
	fill(&c.ZeroReads, "ASV_to_CIGAR", "ZeroReadsSampleList.txt")
	fill(&c.AlignmentDir, "ASV_to_CIGAR", "alignments")
	return nil
}
