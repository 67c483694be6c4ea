// Package amplicon loads the reference amplicon database and low-complexity masks.
package amplicon

import (
	"os"
	"sort"
	"strings"

	"github.com/dasnellings/ampliconTools/apperr"
	log "github.com/sirupsen/logrus"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/fasta"
	"github.com/vertgenlab/gonomics/fileio"
)

// Amplicon is one reference target. Seq is upper case.
type Amplicon struct {
	Id     string
	Seq    []dna.Base
	Strain string
}

// Database is the reference index keyed on amplicon id.
type Database map[string]Amplicon

// Ids returns the amplicon ids in sorted order.
func (db Database) Ids() []string {
	ids := make([]string, 0, len(db))
	for id := range db {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReadReference parses one or more reference FASTA files. Records are keyed on the
// first word of the header; the rest of the header is kept as the strain label.
// When an id is present more than once the longer sequence is kept, ties keep the first seen.
func ReadReference(files ...string) (Database, error) {
	db := make(Database)
	for _, file := range files {
		if err := readReferenceFile(file, db); err != nil {
			return nil, err
		}
	}
	if len(db) == 0 {
		return nil, apperr.Configf(strings.Join(files, ","), "no usable reference sequences")
	}
	return db, nil
}

func readReferenceFile(file string, db Database) (err error) {
	if _, err = os.Stat(file); err != nil {
		return apperr.Config(file, err)
	}
	defer apperr.Catch(file, &err)

	f := fileio.EasyOpen(file)
	defer f.Close()

	peek, peekErr := fileio.EasyPeekReal(f, 1)
	if peekErr != nil {
		log.Warnf("reference file %s is empty", file)
		return nil
	}
	if peek[0] != '>' {
		return apperr.Configf(file, "not a FASTA file, expected '>' but found %q", peek[0])
	}

	var rec fasta.Fasta
	var done bool
	var curr, prev Amplicon
	var exists bool
	for rec, done = fasta.NextFastaForced(f); !done; rec, done = fasta.NextFastaForced(f) {
		curr = toAmplicon(rec)
		if curr.Id == "" || len(curr.Seq) == 0 {
			log.Warnf("skipping reference record %q in %s with no id or sequence", rec.Name, file)
			continue
		}
		if prev, exists = db[curr.Id]; exists {
			if len(curr.Seq) <= len(prev.Seq) {
				log.Debugf("keeping %d bp %s over %d bp duplicate from %s", len(prev.Seq), curr.Id, len(curr.Seq), file)
				continue
			}
			log.Debugf("replacing %d bp %s with %d bp duplicate from %s", len(prev.Seq), curr.Id, len(curr.Seq), file)
		}
		db[curr.Id] = curr
	}
	return nil
}

func toAmplicon(rec fasta.Fasta) Amplicon {
	var ans Amplicon
	words := strings.Fields(rec.Name)
	if len(words) > 0 {
		ans.Id = words[0]
		ans.Strain = strings.Join(words[1:], " ")
	}
	ans.Seq = rec.Seq
	dna.AllToUpper(ans.Seq)
	return ans
}
