package cigar

import (
	"fmt"

	"github.com/vertgenlab/gonomics/bed"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/numbers"
	"github.com/willf/bitset"
)

// Homopolymers returns the runs of a single repeated base at least minLen long in seq
// as 0-based half-open regions on chrom. Case is ignored.
func Homopolymers(chrom string, seq []dna.Base, minLen int) []bed.Bed {
	var ans []bed.Bed
	var runStart, i int
	for i = 1; i <= len(seq); i++ {
		if i < len(seq) && dna.ToUpper(seq[i]) == dna.ToUpper(seq[runStart]) {
			continue
		}
		if i-runStart >= minLen {
			ans = append(ans, bed.Bed{
				Chrom:             chrom,
				ChromStart:        runStart,
				ChromEnd:          i,
				Name:              fmt.Sprintf("%dx%s", i-runStart, dna.BaseToString(dna.ToUpper(seq[runStart]))),
				FieldsInitialized: 4,
			})
		}
		runStart = i
	}
	return ans
}

// Sites returns the 0-based reference positions where indels are suppressed: every
// position in a homopolymer of at least polyN bases and every masked position.
func Sites(seq []dna.Base, mask []bed.Bed, polyN int) *bitset.BitSet {
	sites := bitset.New(uint(len(seq)))
	for _, r := range Homopolymers("", seq, polyN) {
		setRange(sites, r.ChromStart, r.ChromEnd)
	}
	for _, r := range mask {
		setRange(sites, numbers.Max(r.ChromStart, 0), numbers.Min(r.ChromEnd, len(seq)))
	}
	return sites
}

func setRange(sites *bitset.BitSet, start, end int) {
	for i := start; i < end; i++ {
		sites.Set(uint(i))
	}
}
