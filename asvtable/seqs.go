package asvtable

import (
	"os"
	"strings"

	"github.com/dasnellings/ampliconTools/apperr"
	log "github.com/sirupsen/logrus"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/fasta"
	"github.com/vertgenlab/gonomics/fileio"
)

// Seqs maps ASV ids to their upper case sequences.
type Seqs map[string][]dna.Base

// ReadSeqs parses the ASV FASTA. Records are keyed on the first word of the header.
func ReadSeqs(file string) (seqs Seqs, err error) {
	if _, err = os.Stat(file); err != nil {
		return nil, apperr.Config(file, err)
	}
	defer apperr.Catch(file, &err)

	f := fileio.EasyOpen(file)
	defer f.Close()
	seqs = make(Seqs)
	if peek, peekErr := fileio.EasyPeekReal(f, 1); peekErr != nil || peek[0] != '>' {
		return nil, apperr.Configf(file, "no ASV sequences")
	}

	var rec fasta.Fasta
	var done bool
	var words []string
	for rec, done = fasta.NextFastaForced(f); !done; rec, done = fasta.NextFastaForced(f) {
		if words = strings.Fields(rec.Name); len(words) == 0 || len(rec.Seq) == 0 {
			log.Warnf("skipping ASV record %q in %s with no id or sequence", rec.Name, file)
			continue
		}
		if _, exists := seqs[words[0]]; exists {
			return nil, apperr.Configf(file, "duplicate ASV id %s", words[0])
		}
		dna.AllToUpper(rec.Seq)
		seqs[words[0]] = rec.Seq
	}
	if len(seqs) == 0 {
		return nil, apperr.Configf(file, "no ASV sequences")
	}
	return seqs, nil
}

// BySequence returns the ASV id of each sequence.
func (s Seqs) BySequence() map[string]string {
	ans := make(map[string]string, len(s))
	for id, seq := range s {
		ans[dna.BasesToString(seq)] = id
	}
	return ans
}
