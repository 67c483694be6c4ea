// Package msa runs a multiple sequence alignment for each amplicon bin: it writes the
// reference and member ASVs to a per-bin FASTA, invokes an Aligner, and reads the
// aligned rows back.
package msa

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dasnellings/ampliconTools/apperr"
	"github.com/dasnellings/ampliconTools/asvtable"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vertgenlab/gonomics/fasta"
	"github.com/vertgenlab/gonomics/fileio"
)

const lineLength = 60

// Result holds the aligned rows of one bin. All rows have equal length unless
// the aligner output is malformed. Asvs follow bin order.
type Result struct {
	Amplicon string
	Ref      fasta.Fasta
	Asvs     []fasta.Fasta
}

// Aligner aligns the records of the FASTA file in and writes the aligned FASTA to out.
type Aligner interface {
	Align(ctx context.Context, in, out string) error
}

// AlignerFunc adapts a function to the Aligner interface.
type AlignerFunc func(ctx context.Context, in, out string) error

func (f AlignerFunc) Align(ctx context.Context, in, out string) error {
	return f(ctx, in, out)
}

// catch converts a panic from gonomics readers and writers into an error.
func catch(err *error) {
	if r := recover(); r != nil {
		*err = errors.Errorf("%v", r)
	}
}

// FileName returns a file system safe version of an amplicon id.
func FileName(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, id)
}

// BinDir returns the working directory of an amplicon under root. The name carries
// a hash of the id so that ids differing only in unsafe characters do not collide.
func BinDir(root, id string) string {
	hash := uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()[:8]
	return filepath.Join(root, FileName(id)+"-"+hash)
}

// WriteBinFasta writes the reference sequence followed by each member ASV to
// <dir>/<amplicon>.fasta and returns the file name.
func WriteBinFasta(dir string, b asvtable.Bin) (file string, err error) {
	defer catch(&err)
	if err = os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "creating bin directory")
	}
	file = filepath.Join(dir, FileName(b.Amplicon.Id)+".fasta")
	records := make([]fasta.Fasta, 0, len(b.Asvs)+1)
	records = append(records, fasta.Fasta{Name: b.Amplicon.Id, Seq: b.Amplicon.Seq})
	for _, r := range b.Asvs {
		records = append(records, fasta.Fasta{Name: r.Id, Seq: r.Seq})
	}

	out := fileio.EasyCreate(file)
	fasta.WriteToFileHandle(out, records, lineLength)
	if err = out.Close(); err != nil {
		return "", errors.Wrapf(err, "writing %s", file)
	}
	return file, nil
}

// readFasta reads every record of file keyed on the first word of its header,
// along with the ids in file order.
func readFasta(file string) (records map[string]fasta.Fasta, order []string, err error) {
	defer catch(&err)
	if _, err = os.Stat(file); err != nil {
		return nil, nil, err
	}
	f := fileio.EasyOpen(file)
	defer f.Close()
	records = make(map[string]fasta.Fasta)
	if peek, peekErr := fileio.EasyPeekReal(f, 1); peekErr != nil || peek[0] != '>' {
		return nil, nil, errors.Errorf("%s is empty or not FASTA", file)
	}

	var rec fasta.Fasta
	var done bool
	var id string
	for rec, done = fasta.NextFastaForced(f); !done; rec, done = fasta.NextFastaForced(f) {
		if words := strings.Fields(rec.Name); len(words) > 0 {
			id = words[0]
		} else {
			return nil, nil, errors.Errorf("%s has a record with no name", file)
		}
		if _, exists := records[id]; exists {
			return nil, nil, errors.Errorf("%s has duplicate record %s", file, id)
		}
		rec.Name = id
		records[id] = rec
		order = append(order, id)
	}
	return records, order, nil
}

// ReadAlignment reads the aligned FASTA of bin b. Rows are matched on record id, so the
// aligner may reorder records. A missing reference row or an output without any
// member ASV is an error. Member ASVs missing from the output are logged and skipped.
func ReadAlignment(file string, b asvtable.Bin) (Result, error) {
	ans := Result{Amplicon: b.Amplicon.Id}
	records, _, err := readFasta(file)
	if err != nil {
		return ans, err
	}
	var found bool
	if ans.Ref, found = records[b.Amplicon.Id]; !found {
		return ans, errors.Errorf("reference %s missing from alignment %s", b.Amplicon.Id, file)
	}
	for _, r := range b.Asvs {
		row, found := records[r.Id]
		if !found {
			log.Warnf("%s missing from alignment of %s, skipping", r.Id, b.Amplicon.Id)
			continue
		}
		ans.Asvs = append(ans.Asvs, row)
	}
	if len(ans.Asvs) == 0 {
		return ans, errors.Errorf("no ASV rows in alignment %s", file)
	}
	return ans, nil
}

// AlignBin writes the bin FASTA under root, runs the aligner, and reads the result.
// Failures are returned as *apperr.BinFailure, except cancellation of ctx which is
// returned as the context error.
func AlignBin(ctx context.Context, a Aligner, root string, b asvtable.Bin) (Result, error) {
	fail := func(err error) (Result, error) {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, &apperr.BinFailure{Amplicon: b.Amplicon.Id, Err: err}
	}

	dir := BinDir(root, b.Amplicon.Id)
	in, err := WriteBinFasta(dir, b)
	if err != nil {
		return fail(err)
	}
	out := filepath.Join(dir, FileName(b.Amplicon.Id)+".msa")
	log.Debugf("aligning %d ASVs to %s in %s", len(b.Asvs), b.Amplicon.Id, dir)
	if err = a.Align(ctx, in, out); err != nil {
		return fail(err)
	}
	res, err := ReadAlignment(out, b)
	if err != nil {
		return fail(err)
	}
	return res, nil
}
