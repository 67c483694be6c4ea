// Package asvtable parses the post-DADA2 ASV table and ASV sequences and assigns
// ASVs passing quality thresholds to reference amplicon bins.
package asvtable

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dasnellings/ampliconTools/apperr"
	"github.com/dasnellings/ampliconTools/config"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/fileio"
)

// NoDistance marks a distance reported as NA, e.g. for an ASV without a matching strain.
const NoDistance = -1

// Record is one row of the ASV table.
type Record struct {
	Id         string
	Seq        []dna.Base
	Candidates []string // ranked amplicon ids
	Reads      int
	Samples    int
	SnvDist    int
	IndelDist  int
	Bimera     bool
	Pass       bool
}

type column int

const (
	colId column = iota
	colStrain
	colReads
	colSamples
	colSnv
	colIndel
	colBimera
	colFilter
	numColumns
)

// headerNames lists the accepted header names for each column.
var headerNames = map[string]column{
	"hapid":                  colId,
	"asv":                    colId,
	"asv_id":                 colId,
	"id":                     colId,
	"strain":                 colStrain,
	"amplicon":               colStrain,
	"refid":                  colStrain,
	"total_reads":            colReads,
	"reads":                  colReads,
	"total_samples":          colSamples,
	"samples":                colSamples,
	"snv_dist":               colSnv,
	"snv_dist_from_strain":   colSnv,
	"indel_dist":             colIndel,
	"indel_dist_from_strain": colIndel,
	"bimera":                 colBimera,
	"filter":                 colFilter,
	"status":                 colFilter,
}

// columnIndex resolves columns by header name. If any column is missing the
// positional order id, strain, reads, samples, snv, indel, bimera, filter is used.
func columnIndex(header []string) [numColumns]int {
	var idx [numColumns]int
	var found [numColumns]bool
	for i := range header {
		if c, ok := headerNames[strings.ToLower(strings.TrimSpace(header[i]))]; ok && !found[c] {
			idx[c] = i
			found[c] = true
		}
	}
	for c := range found {
		if !found[c] {
			log.Debugf("ASV table header %v not recognized, using column order", header)
			for i := range idx {
				idx[i] = i
			}
			break
		}
	}
	return idx
}

// ReadTable parses a tab-separated ASV table with a header line.
func ReadTable(file string) (records []Record, err error) {
	if _, err = os.Stat(file); err != nil {
		return nil, apperr.Config(file, err)
	}
	defer apperr.Catch(file, &err)

	f := fileio.EasyOpen(file)
	defer f.Close()

	var line string
	var done bool
	var idx [numColumns]int
	var curr Record
	var lineNum int
	var haveHeader bool
	seen := make(map[string]bool)
	for line, done = fileio.EasyNextRealLine(f); !done; line, done = fileio.EasyNextRealLine(f) {
		lineNum++
		if strings.TrimSpace(line) == "" {
			continue
		}
		words := strings.Split(line, "\t")
		if !haveHeader {
			idx = columnIndex(words)
			haveHeader = true
			continue
		}
		curr, err = parseRecord(words, idx)
		if err != nil {
			return nil, apperr.Configf(file, "line %d: %v", lineNum, err)
		}
		if seen[curr.Id] {
			return nil, apperr.Configf(file, "duplicate ASV id %s", curr.Id)
		}
		seen[curr.Id] = true
		records = append(records, curr)
	}
	return records, nil
}

func parseRecord(words []string, idx [numColumns]int) (Record, error) {
	var ans Record
	var err error
	for _, i := range idx {
		if i >= len(words) {
			return ans, errors.Errorf("expected at least %d columns, found %d", i+1, len(words))
		}
	}
	ans.Id = strings.TrimSpace(words[idx[colId]])
	if ans.Id == "" {
		return ans, errors.New("missing ASV id")
	}
	ans.Candidates = splitCandidates(words[idx[colStrain]])
	if ans.Reads, err = ParseCount(words[idx[colReads]]); err != nil {
		return ans, err
	}
	if ans.Samples, err = ParseCount(words[idx[colSamples]]); err != nil {
		return ans, err
	}
	if ans.SnvDist, err = parseDistance(words[idx[colSnv]]); err != nil {
		return ans, err
	}
	if ans.IndelDist, err = parseDistance(words[idx[colIndel]]); err != nil {
		return ans, err
	}
	if ans.Bimera, err = config.ParseBool(words[idx[colBimera]]); err != nil {
		return ans, errors.Wrap(err, "bimera")
	}
	switch strings.ToUpper(strings.TrimSpace(words[idx[colFilter]])) {
	case "PASS":
		ans.Pass = true
	case "FAIL":
		ans.Pass = false
	default:
		return ans, errors.Errorf("unrecognized filter value %q, expected PASS or FAIL", words[idx[colFilter]])
	}
	return ans, nil
}

func splitCandidates(s string) []string {
	var ans []string
	for _, c := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' }) {
		if c = strings.TrimSpace(c); c != "" && c != "NA" {
			ans = append(ans, c)
		}
	}
	return ans
}

// ParseCount parses a non-negative read count. Integral floats such as "12.0" are accepted.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, errors.Errorf("negative count %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > 1<<53 {
		return 0, errors.Errorf("invalid count %q", s)
	}
	return int(f), nil
}

func parseDistance(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NA") {
		return NoDistance, nil
	}
	return ParseCount(s)
}
