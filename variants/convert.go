package variants

import (
	"os"
	"strconv"
	"strings"

	"github.com/dasnellings/ampliconTools/apperr"
	"github.com/dasnellings/ampliconTools/asvtable"
	"github.com/pkg/errors"
	"github.com/vertgenlab/gonomics/fileio"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Row is the summed read count of one variant in each sample.
type Row struct {
	Variant
	Counts []int
}

// Table is a variant count table. Rows are sorted by amplicon then CIGAR.
type Table struct {
	Samples []string
	Rows    []Row
}

// Loss describes the counts that could not be converted.
type Loss struct {
	Asvs  []string // count table columns missing from the CIGAR map
	Reads []int    // reads of those columns per sample
}

func compareRows(a, b Row) int {
	if c := strings.Compare(a.Amplicon, b.Amplicon); c != 0 {
		return c
	}
	return strings.Compare(a.Cigar, b.Cigar)
}

// Convert sums the counts of ASVs sharing an (amplicon, CIGAR) key in every sample.
// Columns whose ASV is not in m are not converted and are reported in the Loss.
func Convert(counts Counts, m Map) (Table, Loss) {
	ans := Table{Samples: counts.Samples}
	loss := Loss{Reads: make([]int, len(counts.Samples))}
	rows := make(map[Variant]*Row)
	var v Variant
	var found bool
	for j, id := range counts.Asvs {
		if v, found = m[id]; !found {
			loss.Asvs = append(loss.Asvs, id)
			for i := range counts.Samples {
				loss.Reads[i] += counts.Reads[i][j]
			}
			continue
		}
		if rows[v] == nil {
			rows[v] = &Row{Variant: v, Counts: make([]int, len(counts.Samples))}
		}
		for i := range counts.Samples {
			rows[v].Counts[i] += counts.Reads[i][j]
		}
	}

	keys := maps.Keys(rows)
	ans.Rows = make([]Row, 0, len(keys))
	for _, k := range keys {
		ans.Rows = append(ans.Rows, *rows[k])
	}
	slices.SortFunc(ans.Rows, compareRows)
	return ans, loss
}

// SampleTotals returns the total reads of each sample across all rows.
func (t Table) SampleTotals() []int {
	totals := make([]int, len(t.Samples))
	for _, r := range t.Rows {
		for i := range r.Counts {
			totals[i] += r.Counts[i]
		}
	}
	return totals
}

// ZeroReadSamples returns the samples with no reads in any row, in table order.
func ZeroReadSamples(t Table) []string {
	var ans []string
	for i, total := range t.SampleTotals() {
		if total == 0 {
			ans = append(ans, t.Samples[i])
		}
	}
	return ans
}

// Write writes the table with an Amplicon and CIGAR column followed by one column per sample.
func Write(file string, t Table) (err error) {
	defer apperr.Catch(file, &err)
	out := fileio.EasyCreate(file)
	fileio.WriteToFileHandle(out, strings.Join(append([]string{"Amplicon", "CIGAR"}, t.Samples...), "\t"))
	var s strings.Builder
	for _, r := range t.Rows {
		s.Reset()
		s.WriteString(r.Amplicon)
		s.WriteByte('\t')
		s.WriteString(cigarField(r.Cigar))
		for _, c := range r.Counts {
			s.WriteByte('\t')
			s.WriteString(strconv.Itoa(c))
		}
		fileio.WriteToFileHandle(out, s.String())
	}
	return errors.Wrapf(out.Close(), "writing %s", file)
}

// Read reads a table written by Write.
func Read(file string) (t Table, err error) {
	if _, err = os.Stat(file); err != nil {
		return t, apperr.Config(file, err)
	}
	defer apperr.Catch(file, &err)

	f := fileio.EasyOpen(file)
	defer f.Close()
	var line string
	var done, header bool
	var curr Row
	for line, done = fileio.EasyNextRealLine(f); !done; line, done = fileio.EasyNextRealLine(f) {
		words := strings.Split(line, "\t")
		if !header {
			if len(words) < 2 {
				return t, apperr.Configf(file, "malformed header %q", line)
			}
			t.Samples = words[2:]
			header = true
			continue
		}
		if len(words) != len(t.Samples)+2 {
			return t, apperr.Configf(file, "expected %d columns, found %d", len(t.Samples)+2, len(words))
		}
		curr = Row{Variant: Variant{Amplicon: words[0]}, Counts: make([]int, len(t.Samples))}
		if curr.Cigar, err = parseCigarField(words[1]); err != nil {
			return t, apperr.Config(file, err)
		}
		for i := range curr.Counts {
			if curr.Counts[i], err = asvtable.ParseCount(words[i+2]); err != nil {
				return t, apperr.Config(file, err)
			}
		}
		t.Rows = append(t.Rows, curr)
	}
	if !header {
		return t, apperr.Configf(file, "variant table is empty")
	}
	return t, nil
}

// WriteZeroReadSamples writes one sample id per line.
func WriteZeroReadSamples(file string, samples []string) (err error) {
	defer apperr.Catch(file, &err)
	out := fileio.EasyCreate(file)
	for _, s := range samples {
		fileio.WriteToFileHandle(out, s)
	}
	return errors.Wrapf(out.Close(), "writing %s", file)
}
