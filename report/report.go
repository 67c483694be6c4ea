// Package report summarizes an ASV to CIGAR run: how many ASVs and bins survived each
// stage, which bins and ASVs failed, and how reads are distributed over samples.
package report

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/dasnellings/ampliconTools/variants"
	"github.com/google/uuid"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ReadStats describes the distribution of converted reads over samples.
type ReadStats struct {
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summary is the outcome of one run.
type Summary struct {
	RunId               string         `json:"run_id"`
	Amplicons           int            `json:"amplicons"`
	AsvsRead            int            `json:"asvs_read"`
	AsvsKept            int            `json:"asvs_kept"`
	Bins                int            `json:"bins"`
	FailedBins          []string       `json:"failed_bins"`
	SkippedAsvs         []string       `json:"skipped_asvs"`
	Cigars              int            `json:"cigars"`
	Variants            int            `json:"variants"`
	DroppedAsvs         []string       `json:"dropped_asvs"`
	ZeroReadSamples     []string       `json:"zero_read_samples"`
	SampleReads         map[string]int `json:"sample_reads"`
	VariantsPerAmplicon map[string]int `json:"variants_per_amplicon"`
	Reads               ReadStats      `json:"reads"`
}

// New returns an empty Summary with a fresh run id.
func New() Summary {
	return Summary{
		RunId:               uuid.New().String(),
		SampleReads:         make(map[string]int),
		VariantsPerAmplicon: make(map[string]int),
	}
}

// AddTable records the sample totals, per amplicon variant counts, and zero read
// samples of a converted table.
func (s *Summary) AddTable(t variants.Table) {
	s.Variants = len(t.Rows)
	for _, r := range t.Rows {
		s.VariantsPerAmplicon[r.Amplicon]++
	}
	totals := t.SampleTotals()
	x := make([]float64, len(totals))
	for i := range totals {
		s.SampleReads[t.Samples[i]] = totals[i]
		x[i] = float64(totals[i])
	}
	s.ZeroReadSamples = variants.ZeroReadSamples(t)
	s.Reads = readStats(x)
}

func readStats(x []float64) ReadStats {
	var ans ReadStats
	if len(x) == 0 {
		return ans
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	ans.Total = floats.Sum(sorted)
	ans.Min = floats.Min(sorted)
	ans.Max = floats.Max(sorted)
	ans.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	if len(sorted) > 1 {
		ans.Mean, ans.StdDev = stat.MeanStdDev(sorted, nil)
	} else {
		ans.Mean = sorted[0]
	}
	return ans
}

// Log writes the summary at info level, with failures at warn level.
func (s Summary) Log() {
	log.Printf("run %s: %d amplicons, %d of %d ASVs kept in %d bins", s.RunId, s.Amplicons, s.AsvsKept, s.AsvsRead, s.Bins)
	log.Printf("run %s: %d ASVs converted to %d variants", s.RunId, s.Cigars, s.Variants)
	if len(s.FailedBins) > 0 {
		log.Warnf("%d bins failed alignment: %v", len(s.FailedBins), s.FailedBins)
	}
	if len(s.SkippedAsvs) > 0 {
		log.Warnf("%d ASVs skipped for malformed alignment rows", len(s.SkippedAsvs))
	}
	if len(s.DroppedAsvs) > 0 {
		log.Warnf("%d count table columns had no CIGAR and were dropped", len(s.DroppedAsvs))
	}
	if len(s.ZeroReadSamples) > 0 {
		log.Warnf("%d samples have zero reads after conversion", len(s.ZeroReadSamples))
	}
	log.Printf("reads per sample: mean %.1f sd %.1f median %.1f min %.0f max %.0f",
		s.Reads.Mean, s.Reads.StdDev, s.Reads.Median, s.Reads.Min, s.Reads.Max)
}

// AsciiPlot renders the reads of each sample, in sample name order, as a terminal line plot.
func (s Summary) AsciiPlot() string {
	if len(s.SampleReads) == 0 {
		return ""
	}
	names := make([]string, 0, len(s.SampleReads))
	for name := range s.SampleReads {
		names = append(names, name)
	}
	sort.Strings(names)
	series := make([]float64, len(names))
	for i := range names {
		series[i] = float64(s.SampleReads[names[i]])
	}
	return asciigraph.Plot(series, asciigraph.Height(10), asciigraph.Precision(0), asciigraph.Caption("reads per sample"))
}

// Write saves the summary as indented JSON.
func Write(file string, s Summary) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding summary")
	}
	return errors.Wrapf(os.WriteFile(file, append(b, '\n'), 0644), "writing %s", file)
}
