package asvtable

import (
	"sort"

	"github.com/dasnellings/ampliconTools/amplicon"
	"github.com/dasnellings/ampliconTools/apperr"
	log "github.com/sirupsen/logrus"
)

// Thresholds select which ASVs are converted. A negative maximum distance disables that filter.
type Thresholds struct {
	MinReads       int
	MinSamples     int
	MaxSnvDist     int
	MaxIndelDist   int
	IncludeFailed  bool
	ExcludeBimeras bool
}

// Bin holds the ASVs assigned to one reference amplicon, in table order.
type Bin struct {
	Amplicon amplicon.Amplicon
	Asvs     []Record
}

// Keep reports whether r passes every threshold.
func Keep(r Record, th Thresholds) bool {
	switch {
	case r.Reads < th.MinReads:
		return false
	case r.Samples < th.MinSamples:
		return false
	case !withinDist(r.SnvDist, th.MaxSnvDist):
		return false
	case !withinDist(r.IndelDist, th.MaxIndelDist):
		return false
	case !th.IncludeFailed && !r.Pass:
		return false
	case th.ExcludeBimeras && r.Bimera:
		return false
	}
	return true
}

func withinDist(dist, limit int) bool {
	if limit < 0 {
		return true
	}
	return dist != NoDistance && dist <= limit
}

// FilterAndBin assigns each record passing th to the first of its candidate
// amplicons present in db. Bins are returned sorted by amplicon id.
func FilterAndBin(records []Record, db amplicon.Database, th Thresholds) ([]Bin, error) {
	bins := make(map[string]*Bin)
	var filtered, unmatched int
	for _, r := range records {
		if !Keep(r, th) {
			filtered++
			continue
		}
		id, found := firstPresent(r.Candidates, db)
		if !found {
			log.Debugf("no reference amplicon for %s among %v", r.Id, r.Candidates)
			unmatched++
			continue
		}
		if bins[id] == nil {
			bins[id] = &Bin{Amplicon: db[id]}
		}
		bins[id].Asvs = append(bins[id].Asvs, r)
	}
	log.Printf("%d of %d ASVs removed by filters, %d without a reference amplicon", filtered, len(records), unmatched)

	if len(bins) == 0 {
		return nil, apperr.NoUsableData("binning", "no ASV passed the filters and matched a reference amplicon")
	}
	return sortedBins(bins), nil
}

func firstPresent(candidates []string, db amplicon.Database) (string, bool) {
	for _, c := range candidates {
		if _, found := db[c]; found {
			return c, true
		}
	}
	return "", false
}

func sortedBins(bins map[string]*Bin) []Bin {
	ans := make([]Bin, 0, len(bins))
	for _, b := range bins {
		ans = append(ans, *b)
	}
	sort.Slice(ans, func(i, j int) bool { return ans[i].Amplicon.Id < ans[j].Amplicon.Id })
	return ans
}

// AttachSeqs sets the sequence of every binned ASV. ASVs missing from seqs are
// dropped with a warning, as are bins left empty.
func AttachSeqs(bins []Bin, seqs Seqs) ([]Bin, error) {
	var ans []Bin
	for _, b := range bins {
		kept := b.Asvs[:0:0]
		for _, r := range b.Asvs {
			seq, found := seqs[r.Id]
			if !found {
				log.Warnf("%s is in the ASV table but has no sequence, skipping", r.Id)
				continue
			}
			r.Seq = seq
			kept = append(kept, r)
		}
		if len(kept) > 0 {
			b.Asvs = kept
			ans = append(ans, b)
		}
	}
	if len(ans) == 0 {
		return nil, apperr.NoUsableData("binning", "no binned ASV has a sequence")
	}
	return ans, nil
}
