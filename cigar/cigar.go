// Package cigar derives pseudo-CIGAR strings: a compact record of the substitutions,
// insertions, and deletions of an ASV relative to its reference amplicon.
//
// Tokens are written in reference order without separators:
//
//	4T     substitution of reference position 4 by T
//	8I=TA  insertion of TA after reference position 8
//	5D=AC  deletion of reference bases AC starting at position 5
//
// Positions are 1-based. An ASV identical to its reference has an empty CIGAR.
// A deletion spells the deleted reference bases rather than a count, so its length
// is the number of bases after the '=' (Op.Len, equal to len(Op.Bases)).
package cigar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/vertgenlab/gonomics/dna"
)

// OpType is the kind of a variant operation.
type OpType byte

const (
	Substitution OpType = iota
	Insertion
	Deletion
)

// Op is one variant operation. Bases holds the substituted, inserted, or deleted
// bases. Len is the number of reference bases a deletion removes.
type Op struct {
	Type  OpType
	Pos   int
	Bases []dna.Base
	Len   int
}

// Cigar is an ordered list of operations.
type Cigar []Op

func (o Op) String() string {
	switch o.Type {
	case Insertion:
		return strconv.Itoa(o.Pos) + "I=" + dna.BasesToString(o.Bases)
	case Deletion:
		return strconv.Itoa(o.Pos) + "D=" + dna.BasesToString(o.Bases)
	default:
		return strconv.Itoa(o.Pos) + dna.BasesToString(o.Bases)
	}
}

func (c Cigar) String() string {
	var s strings.Builder
	for i := range c {
		s.WriteString(c[i].String())
	}
	return s.String()
}

var tokenPattern = regexp.MustCompile(`^(\d+)(?:I=([ACGTN]+)|D=([ACGTN]+)|([ACGTN]))`)

// Parse reads a pseudo-CIGAR string written by Cigar.String.
func Parse(s string) (Cigar, error) {
	var ans Cigar
	var curr Op
	rest := s
	for rest != "" {
		m := tokenPattern.FindStringSubmatch(rest)
		if m == nil {
			return nil, errors.Errorf("malformed CIGAR %q at %q", s, rest)
		}
		curr = Op{}
		curr.Pos, _ = strconv.Atoi(m[1])
		switch {
		case m[2] != "":
			curr.Type = Insertion
			curr.Bases = dna.StringToBases(m[2])
		case m[3] != "":
			curr.Type = Deletion
			curr.Bases = dna.StringToBases(m[3])
			curr.Len = len(curr.Bases)
		default:
			curr.Type = Substitution
			curr.Bases = dna.StringToBases(m[4])
		}
		if len(ans) > 0 && curr.Pos < ans[len(ans)-1].Pos {
			return nil, errors.Errorf("CIGAR %q is not in reference order", s)
		}
		ans = append(ans, curr)
		rest = rest[len(m[0]):]
	}
	return ans, nil
}
