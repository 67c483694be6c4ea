package msa

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dasnellings/ampliconTools/amplicon"
	"github.com/dasnellings/ampliconTools/apperr"
	"github.com/dasnellings/ampliconTools/asvtable"
	"github.com/pkg/errors"
	"github.com/vertgenlab/gonomics/dna"
)

func testBin() asvtable.Bin {
	return asvtable.Bin{
		Amplicon: amplicon.Amplicon{Id: "AMP1", Seq: dna.StringToBases("ACGTACGTAA")},
		Asvs: []asvtable.Record{
			{Id: "ASV1", Seq: dna.StringToBases("ACGTACGTAA")},
			{Id: "ASV2", Seq: dna.StringToBases("ACTTACGTAA")},
		},
	}
}

func TestBinDir(t *testing.T) {
	a := BinDir("aln", "AMP/1")
	b := BinDir("aln", "AMP_1")
	if a == b {
		t.Error("problem with BinDir: sanitized ids collide", a)
	}
	if BinDir("aln", "AMP1") != BinDir("aln", "AMP1") {
		t.Error("problem with BinDir: not deterministic")
	}
	if !strings.HasPrefix(filepath.Base(a), "AMP_1-") {
		t.Error("problem with BinDir name", a)
	}
}

func TestWriteBinFasta(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "AMP1")
	file, err := WriteBinFasta(dir, testBin())
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	expected := ">AMP1\nACGTACGTAA\n>ASV1\nACGTACGTAA\n>ASV2\nACTTACGTAA\n"
	if string(data) != expected {
		t.Errorf("problem with WriteBinFasta: expected %q got %q", expected, string(data))
	}
}

func TestReadAlignment(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "AMP1.msa")
	text := ">ASV2\nACTTACGT-AA\n>AMP1 reference\nACGTACGT-AA\n>ASV1\nACGTACGTTAA\n"
	if err := os.WriteFile(file, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := ReadAlignment(file, testBin())
	if err != nil {
		t.Fatal(err)
	}
	if res.Ref.Name != "AMP1" || dna.BasesToString(res.Ref.Seq) != "ACGTACGT-AA" {
		t.Error("problem with reference row", res.Ref)
	}
	if len(res.Asvs) != 2 || res.Asvs[0].Name != "ASV1" || res.Asvs[1].Name != "ASV2" {
		t.Error("problem with ASV row order", res.Asvs)
	}

	if err = os.WriteFile(file, []byte(">ASV1\nACGT\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err = ReadAlignment(file, testBin()); err == nil {
		t.Error("problem with ReadAlignment: expected error for missing reference row")
	}
	if _, err = ReadAlignment(filepath.Join(dir, "missing.msa"), testBin()); err == nil {
		t.Error("problem with ReadAlignment: expected error for missing file")
	}
}

func TestAlignBinFailure(t *testing.T) {
	failing := AlignerFunc(func(ctx context.Context, in, out string) error {
		return errors.New("exit status 1")
	})
	_, err := AlignBin(context.Background(), failing, t.TempDir(), testBin())
	var b *apperr.BinFailure
	if !errors.As(err, &b) || b.Amplicon != "AMP1" {
		t.Error("problem with AlignBin failure", err)
	}
	if apperr.IsFatal(err) {
		t.Error("problem with AlignBin: bin failure must not be fatal")
	}

	silent := AlignerFunc(func(ctx context.Context, in, out string) error { return nil })
	if _, err = AlignBin(context.Background(), silent, t.TempDir(), testBin()); !errors.As(err, &b) {
		t.Error("problem with AlignBin on missing output", err)
	}
}

func TestAlignBinCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := AlignBin(ctx, NewAffine(), t.TempDir(), testBin())
	if !errors.Is(err, context.Canceled) {
		t.Error("problem with AlignBin cancellation", err)
	}
}

func TestAffine(t *testing.T) {
	res, err := AlignBin(context.Background(), NewAffine(), t.TempDir(), testBin())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Asvs) != 2 {
		t.Fatal("problem with Affine: expected 2 ASV rows", res.Asvs)
	}
	for _, row := range res.Asvs {
		if len(row.Seq) != len(res.Ref.Seq) {
			t.Errorf("problem with Affine: %s row length %d, reference %d", row.Name, len(row.Seq), len(res.Ref.Seq))
		}
	}
	if dna.BasesToString(res.Asvs[1].Seq) != "ACTTACGTAA" {
		t.Error("problem with Affine substitution row", dna.BasesToString(res.Asvs[1].Seq))
	}
}

func TestMuscleArgs(t *testing.T) {
	m := Muscle{Path: "muscle"}
	if strings.Join(m.Args("a.fasta", "a.msa"), " ") != "-in a.fasta -out a.msa -quiet" {
		t.Error("problem with MUSCLE 3 arguments", m.Args("a.fasta", "a.msa"))
	}
	m.V5 = true
	if strings.Join(m.Args("a.fasta", "a.msa"), " ") != "-align a.fasta -output a.msa" {
		t.Error("problem with MUSCLE 5 arguments", m.Args("a.fasta", "a.msa"))
	}
}

func TestMuscleMissingExecutable(t *testing.T) {
	m := Muscle{Path: filepath.Join(t.TempDir(), "no-muscle-here")}
	_, err := AlignBin(context.Background(), m, t.TempDir(), testBin())
	var b *apperr.BinFailure
	if !errors.As(err, &b) {
		t.Error("problem with missing MUSCLE executable", err)
	}
}

func TestMuscle(t *testing.T) {
	path, err := exec.LookPath("muscle")
	if err != nil {
		t.Skip("muscle not found in PATH")
	}
	res, err := AlignBin(context.Background(), Muscle{Path: path}, t.TempDir(), testBin())
	if err != nil {
		res, err = AlignBin(context.Background(), Muscle{Path: path, V5: true}, t.TempDir(), testBin())
	}
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Asvs) != 2 || len(res.Asvs[0].Seq) != len(res.Ref.Seq) {
		t.Error("problem with MUSCLE alignment", res)
	}
}
