package variants

import (
	"os"
	"strings"

	"github.com/dasnellings/ampliconTools/apperr"
	"github.com/dasnellings/ampliconTools/asvtable"
	"github.com/vertgenlab/gonomics/fileio"
)

// Counts is a raw read count table with one row per sample and one column per ASV.
type Counts struct {
	Samples []string
	Asvs    []string
	Reads   [][]int // Reads[sample][asv]
}

// ReadCounts parses a tab-separated count table such as the DADA2 seqtab. The first
// column holds sample ids and the remaining headers are ASV ids or ASV sequences.
// Headers found in bySeq are replaced by the ASV id they map to.
func ReadCounts(file string, bySeq map[string]string) (counts Counts, err error) {
	if _, err = os.Stat(file); err != nil {
		return counts, apperr.Config(file, err)
	}
	defer apperr.Catch(file, &err)

	f := fileio.EasyOpen(file)
	defer f.Close()
	var line string
	var done, header bool
	var n int
	var lineNum int
	for line, done = fileio.EasyNextRealLine(f); !done; line, done = fileio.EasyNextRealLine(f) {
		lineNum++
		if strings.TrimSpace(line) == "" {
			continue
		}
		words := strings.Split(line, "\t")
		if !header {
			header = true
			counts.Asvs = make([]string, len(words)-1)
			for i, h := range words[1:] {
				h = strings.TrimSpace(h)
				if id, found := bySeq[strings.ToUpper(h)]; found {
					h = id
				}
				counts.Asvs[i] = h
			}
			continue
		}
		if len(words) != len(counts.Asvs)+1 {
			return counts, apperr.Configf(file, "line %d has %d columns, header has %d", lineNum, len(words), len(counts.Asvs)+1)
		}
		row := make([]int, len(counts.Asvs))
		for i := range row {
			if n, err = asvtable.ParseCount(words[i+1]); err != nil {
				return counts, apperr.Configf(file, "line %d: %v", lineNum, err)
			}
			row[i] = n
		}
		counts.Samples = append(counts.Samples, strings.TrimSpace(words[0]))
		counts.Reads = append(counts.Reads, row)
	}
	if !header {
		return counts, apperr.Configf(file, "count table is empty")
	}
	return counts, nil
}
