package msa

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vertgenlab/gonomics/align"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/fasta"
	"github.com/vertgenlab/gonomics/fileio"
)

var gapOpen int64 = -400
var gapExtend int64 = -30

// Affine is an in-process progressive aligner using affine gap penalties.
// It needs no external executable and is suited to small bins.
type Affine struct {
	ScoreMatrix [][]int64
	GapOpen     int64
	GapExtend   int64
}

// NewAffine returns an Affine aligner with the default DNA score matrix.
func NewAffine() Affine {
	return Affine{ScoreMatrix: align.DefaultScoreMatrix, GapOpen: gapOpen, GapExtend: gapExtend}
}

func (a Affine) Align(ctx context.Context, in, out string) (err error) {
	records, order, err := readFasta(in)
	if err != nil {
		return err
	}
	input := make([]fasta.Fasta, len(order))
	for i, id := range order {
		input[i] = records[id]
		dna.AllToUpper(input[i].Seq)
		for _, b := range input[i].Seq {
			if b > dna.N {
				return errors.Errorf("%s in %s contains a gap or invalid base", id, in)
			}
		}
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	defer catch(&err)
	aligned := align.AllSeqAffine(input, a.ScoreMatrix, a.GapOpen, a.GapExtend)
	w := fileio.EasyCreate(out)
	fasta.WriteToFileHandle(w, aligned, lineLength)
	return w.Close()
}
