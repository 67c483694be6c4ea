// Package asvtocigar runs the ASV to CIGAR conversion: it bins filtered ASVs by
// reference amplicon, aligns and derives pseudo-CIGARs for each bin in parallel,
// and writes the ASV to CIGAR map, the variant count table, and the zero read
// sample list.
package asvtocigar

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dasnellings/ampliconTools/amplicon"
	"github.com/dasnellings/ampliconTools/apperr"
	"github.com/dasnellings/ampliconTools/asvtable"
	"github.com/dasnellings/ampliconTools/cigar"
	"github.com/dasnellings/ampliconTools/config"
	"github.com/dasnellings/ampliconTools/msa"
	"github.com/dasnellings/ampliconTools/report"
	"github.com/dasnellings/ampliconTools/variants"
	"github.com/exascience/pargo/parallel"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/willf/bitset"
)

// noFile is the placeholder the pipeline writes for an absent second reference.
const noFile = "No_File"

// NewAligner returns the aligner selected by cfg.
func NewAligner(cfg config.Config) msa.Aligner {
	if cfg.Aligner == config.AlignerBuiltin {
		return msa.NewAffine()
	}
	return msa.Muscle{Path: cfg.Muscle, V5: cfg.MuscleV5, Timeout: cfg.AlignerTimeout}
}

// Run executes the conversion described by cfg with the aligner it selects.
func Run(ctx context.Context, cfg config.Config) (report.Summary, error) {
	return RunWith(ctx, cfg, NewAligner(cfg))
}

// RunWith executes the conversion described by cfg using a. Per-bin and per-ASV
// failures are logged and listed in the returned Summary. Missing inputs, an empty
// working set, and cancellation of ctx end the run with an error.
func RunWith(ctx context.Context, cfg config.Config, a msa.Aligner) (report.Summary, error) {
	sum := report.New()
	db, err := amplicon.ReadReference(references(cfg)...)
	if err != nil {
		return sum, err
	}
	sum.Amplicons = len(db)
	mask, err := amplicon.ReadMask(cfg.Mask)
	if err != nil {
		return sum, err
	}
	records, err := asvtable.ReadTable(cfg.AsvTable)
	if err != nil {
		return sum, err
	}
	sum.AsvsRead = len(records)
	seqs, err := asvtable.ReadSeqs(cfg.AsvFasta)
	if err != nil {
		return sum, err
	}

	bins, err := asvtable.FilterAndBin(records, db, thresholds(cfg))
	if err != nil {
		return sum, err
	}
	if bins, err = asvtable.AttachSeqs(bins, seqs); err != nil {
		return sum, err
	}
	sum.Bins = len(bins)
	for _, b := range bins {
		sum.AsvsKept += len(b.Asvs)
	}
	log.Printf("aligning %d ASVs in %d bins with %d threads", sum.AsvsKept, sum.Bins, cfg.Threads)

	if err = flushDir(cfg.AlignmentDir); err != nil {
		return sum, err
	}
	results, err := alignBins(ctx, a, cfg.AlignmentDir, bins, mask, cfg.PolyN, cfg.Threads)
	if err != nil {
		return sum, err
	}
	entries := merge(results, &sum)
	if len(entries) == 0 {
		return sum, apperr.NoUsableData("conversion", "no ASV could be converted to a CIGAR")
	}
	sum.Cigars = len(entries)

	m := variants.NewMap(entries)
	if err = makeParents(cfg.CigarMap, cfg.Out, cfg.ZeroReads, cfg.Summary, cfg.Plot); err != nil {
		return sum, err
	}
	if err = variants.WriteCigarMap(cfg.CigarMap, m); err != nil {
		return sum, err
	}
	counts, err := variants.ReadCounts(cfg.Seqtab, seqs.BySequence())
	if err != nil {
		return sum, err
	}
	table, loss := variants.Convert(counts, m)
	if err = variants.Write(cfg.Out, table); err != nil {
		return sum, err
	}
	sum.AddTable(table)
	sum.DroppedAsvs = loss.Asvs
	for i, reads := range loss.Reads {
		if reads > 0 {
			log.Debugf("%s: %d reads in ASVs without a CIGAR", counts.Samples[i], reads)
		}
	}
	if err = variants.WriteZeroReadSamples(cfg.ZeroReads, sum.ZeroReadSamples); err != nil {
		return sum, err
	}

	if cfg.Summary != "" {
		if err = report.Write(cfg.Summary, sum); err != nil {
			return sum, err
		}
	}
	if cfg.Plot != "" {
		if err = report.Plot(cfg.Plot, sum); err != nil {
			log.Warnf("could not plot variants: %v", err)
		}
	}
	sum.Log()
	log.Debugf("\n%s", sum.AsciiPlot())
	return sum, nil
}

// references drops a second reference that the pipeline marked absent or that does not exist.
func references(cfg config.Config) []string {
	if cfg.Reference2 == noFile {
		cfg.Reference2 = ""
	}
	if cfg.Reference2 != "" {
		if _, err := os.Stat(cfg.Reference2); err != nil {
			log.Warnf("second reference %s not found, using %s only", cfg.Reference2, cfg.ReferenceAmplicons)
			cfg.Reference2 = ""
		}
	}
	return cfg.References()
}

func thresholds(cfg config.Config) asvtable.Thresholds {
	return asvtable.Thresholds{
		MinReads:       cfg.MinReads,
		MinSamples:     cfg.MinSamples,
		MaxSnvDist:     cfg.MaxSnvDist,
		MaxIndelDist:   cfg.MaxIndelDist,
		IncludeFailed:  cfg.IncludeFailed,
		ExcludeBimeras: cfg.ExcludeBimeras,
	}
}

func makeParents(files ...string) error {
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(f), 0755); err != nil {
			return apperr.Config(f, errors.Wrap(err, "creating output directory"))
		}
	}
	return nil
}

// flushDir empties dir so no alignment of an earlier run is left beside this run's bins.
func flushDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return apperr.Config(dir, errors.Wrap(err, "clearing alignment directory"))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperr.Config(dir, errors.Wrap(err, "creating alignment directory"))
	}
	return nil
}

// binResult is the outcome of one bin. err is set when the whole bin failed.
type binResult struct {
	amplicon   string
	entries    []cigar.Entry
	mismatches []error
	err        error
}

// alignBins aligns and derives every bin on up to threads workers. Results are
// returned in bin order regardless of completion order.
func alignBins(ctx context.Context, a msa.Aligner, root string, bins []asvtable.Bin, mask amplicon.Mask, polyN, threads int) ([]binResult, error) {
	results := make([]binResult, len(bins))
	parallel.Range(0, len(bins), threads, func(low, high int) {
		var sites *bitset.BitSet
		for i := low; i < high; i++ {
			if ctx.Err() != nil {
				return
			}
			b := bins[i]
			results[i].amplicon = b.Amplicon.Id
			res, err := msa.AlignBin(ctx, a, root, b)
			if err != nil {
				results[i].err = err
				continue
			}
			sites = cigar.Sites(b.Amplicon.Seq, mask.Regions(b.Amplicon.Id), polyN)
			results[i].entries, results[i].mismatches = cigar.DeriveBin(res, sites)
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "run cancelled")
	}
	return results, nil
}

// merge concatenates bin results in bin order and records failures in sum.
func merge(results []binResult, sum *report.Summary) []cigar.Entry {
	var ans []cigar.Entry
	var mismatch *apperr.AsvMismatch
	for _, r := range results {
		if r.err != nil {
			log.Warnf("%v", r.err)
			sum.FailedBins = append(sum.FailedBins, r.amplicon)
			continue
		}
		for _, err := range r.mismatches {
			if errors.As(err, &mismatch) {
				sum.SkippedAsvs = append(sum.SkippedAsvs, mismatch.Asv)
			}
		}
		ans = append(ans, r.entries...)
	}
	return ans
}
