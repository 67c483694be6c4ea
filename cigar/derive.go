package cigar

import (
	"github.com/dasnellings/ampliconTools/apperr"
	"github.com/dasnellings/ampliconTools/msa"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/willf/bitset"
)

// Entry is the pseudo-CIGAR of one ASV.
type Entry struct {
	Asv      string
	Amplicon string
	Cigar    Cigar
}

func isGap(b dna.Base) bool {
	return b == dna.Gap || b == dna.Dot
}

// suppressed reports whether position p (0-based) is a suppression site.
func suppressed(sites *bitset.BitSet, p int) bool {
	return sites != nil && p >= 0 && sites.Test(uint(p))
}

// deriver accumulates operations while walking the columns of one aligned pair.
type deriver struct {
	sites    *bitset.BitSet
	ans      Cigar
	pos      int // reference bases consumed
	ins      []dna.Base
	insPos   int
	delStart int
	del      []dna.Base
	dropped  int
}

// flushIns ends an open insertion. It is dropped when the reference base it follows
// is a suppression site.
func (d *deriver) flushIns() {
	if len(d.ins) == 0 {
		return
	}
	if suppressed(d.sites, d.insPos-1) {
		d.dropped++
	} else {
		d.ans = append(d.ans, Op{Type: Insertion, Pos: d.insPos, Bases: d.ins})
	}
	d.ins = nil
}

// flushDel ends an open deletion. It is dropped when its first deleted base is a suppression site.
func (d *deriver) flushDel() {
	if len(d.del) == 0 {
		return
	}
	if suppressed(d.sites, d.delStart-1) {
		d.dropped++
	} else {
		d.ans = append(d.ans, Op{Type: Deletion, Pos: d.delStart, Bases: d.del, Len: len(d.del)})
	}
	d.del = nil
}

// Derive returns the pseudo-CIGAR of the aligned asv row against the aligned ref row,
// which must have equal length. Indels at suppression sites are treated as matches;
// substitutions are always kept. Columns where both rows are gaps are ignored.
func Derive(ref, asv []dna.Base, sites *bitset.BitSet) (Cigar, error) {
	if len(ref) != len(asv) {
		return nil, errors.Errorf("aligned rows differ in length: reference %d, ASV %d", len(ref), len(asv))
	}
	c, _ := derive(ref, asv, sites)
	return c, nil
}

func derive(ref, asv []dna.Base, sites *bitset.BitSet) (Cigar, int) {
	d := deriver{sites: sites}
	var r, a dna.Base
	for i := range ref {
		r, a = dna.ToUpper(ref[i]), dna.ToUpper(asv[i])
		switch {
		case isGap(r) && isGap(a):
			continue
		case isGap(r):
			d.flushDel()
			if len(d.ins) == 0 {
				d.insPos = d.pos
			}
			d.ins = append(d.ins, a)
		case isGap(a):
			d.flushIns()
			d.pos++
			if len(d.del) == 0 {
				d.delStart = d.pos
			}
			d.del = append(d.del, r)
		default:
			d.flushIns()
			d.flushDel()
			d.pos++
			if r != a {
				d.ans = append(d.ans, Op{Type: Substitution, Pos: d.pos, Bases: []dna.Base{a}})
			}
		}
	}
	d.flushIns()
	d.flushDel()
	return d.ans, d.dropped
}

// DeriveBin derives the pseudo-CIGAR of every ASV row in res. Rows whose length
// differs from the reference row are skipped and reported as *apperr.AsvMismatch.
func DeriveBin(res msa.Result, sites *bitset.BitSet) ([]Entry, []error) {
	var ans []Entry
	var errs []error
	var c Cigar
	var dropped int
	for _, row := range res.Asvs {
		if len(row.Seq) != len(res.Ref.Seq) {
			err := &apperr.AsvMismatch{Asv: row.Name, Amplicon: res.Amplicon, RefLen: len(res.Ref.Seq), AsvLen: len(row.Seq)}
			log.Warnf("%v, skipping", err)
			errs = append(errs, err)
			continue
		}
		c, dropped = derive(res.Ref.Seq, row.Seq, sites)
		if dropped > 0 {
			log.Debugf("%s: suppressed %d indels in low complexity sequence of %s", row.Name, dropped, res.Amplicon)
		}
		ans = append(ans, Entry{Asv: row.Name, Amplicon: res.Amplicon, Cigar: c})
	}
	return ans, errs
}
