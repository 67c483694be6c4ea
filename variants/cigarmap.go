// Package variants converts a per-ASV read count table into a per-variant table keyed
// on (amplicon, pseudo-CIGAR), merging ASVs that describe the same variant.
package variants

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dasnellings/ampliconTools/apperr"
	"github.com/dasnellings/ampliconTools/cigar"
	"github.com/pkg/errors"
	"github.com/vertgenlab/gonomics/fileio"
)

// EmptyCigar is written in place of the empty CIGAR of an ASV identical to its reference.
const EmptyCigar = "."

// Variant is an amplicon and pseudo-CIGAR pair.
type Variant struct {
	Amplicon string
	Cigar    string
}

// Map is the ASV to variant table keyed on ASV id.
type Map map[string]Variant

// NewMap builds a Map from derived entries.
func NewMap(entries []cigar.Entry) Map {
	m := make(Map, len(entries))
	for _, e := range entries {
		m[e.Asv] = Variant{Amplicon: e.Amplicon, Cigar: e.Cigar.String()}
	}
	return m
}

// Ids returns the ASV ids sorted by amplicon then ASV id.
func (m Map) Ids() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if m[ids[i]].Amplicon != m[ids[j]].Amplicon {
			return m[ids[i]].Amplicon < m[ids[j]].Amplicon
		}
		return ids[i] < ids[j]
	})
	return ids
}

func cigarField(c string) string {
	if c == "" {
		return EmptyCigar
	}
	return c
}

func parseCigarField(c string) (string, error) {
	if c == EmptyCigar {
		return "", nil
	}
	if _, err := cigar.Parse(c); err != nil {
		return "", err
	}
	return c, nil
}

// WriteCigarMap writes the ASV, Amplicon, and CIGAR columns of m sorted by amplicon then ASV id.
func WriteCigarMap(file string, m Map) (err error) {
	defer apperr.Catch(file, &err)
	out := fileio.EasyCreate(file)
	fileio.WriteToFileHandle(out, "ASV\tAmplicon\tCIGAR")
	for _, id := range m.Ids() {
		fileio.WriteToFileHandle(out, fmt.Sprintf("%s\t%s\t%s", id, m[id].Amplicon, cigarField(m[id].Cigar)))
	}
	return errors.Wrapf(out.Close(), "writing %s", file)
}

// ReadCigarMap reads a file written by WriteCigarMap.
func ReadCigarMap(file string) (m Map, err error) {
	if _, err = os.Stat(file); err != nil {
		return nil, apperr.Config(file, err)
	}
	defer apperr.Catch(file, &err)

	f := fileio.EasyOpen(file)
	defer f.Close()
	m = make(Map)
	var line string
	var done, header bool
	var c string
	for line, done = fileio.EasyNextRealLine(f); !done; line, done = fileio.EasyNextRealLine(f) {
		words := strings.Split(line, "\t")
		if !header {
			header = true
			if len(words) >= 3 && strings.EqualFold(words[0], "ASV") {
				continue
			}
		}
		if len(words) != 3 {
			return nil, apperr.Configf(file, "expected 3 columns, found %d in %q", len(words), line)
		}
		if c, err = parseCigarField(words[2]); err != nil {
			return nil, apperr.Config(file, err)
		}
		if _, exists := m[words[0]]; exists {
			return nil, apperr.Configf(file, "duplicate ASV %s", words[0])
		}
		m[words[0]] = Variant{Amplicon: words[1], Cigar: c}
	}
	return m, nil
}
