package variants

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dasnellings/ampliconTools/apperr"
	"github.com/dasnellings/ampliconTools/cigar"
	"github.com/vertgenlab/gonomics/dna"
)

func write(t *testing.T, name, text string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testMap() Map {
	return Map{
		"ASV1": {Amplicon: "AMP1", Cigar: "4T"},
		"ASV2": {Amplicon: "AMP1", Cigar: "4T"},
		"ASV3": {Amplicon: "AMP1", Cigar: ""},
		"ASV4": {Amplicon: "AMP0", Cigar: "8I=T"},
	}
}

func testCounts() Counts {
	return Counts{
		Samples: []string{"S1", "S2", "S3"},
		Asvs:    []string{"ASV1", "ASV2", "ASV3", "ASV4", "ASV5"},
		Reads: [][]int{
			{12, 5, 0, 1, 2},
			{0, 3, 7, 0, 0},
			{0, 0, 0, 0, 4},
		},
	}
}

func TestConvert(t *testing.T) {
	table, loss := Convert(testCounts(), testMap())
	expected := []Row{
		{Variant{"AMP0", "8I=T"}, []int{1, 0, 0}},
		{Variant{"AMP1", ""}, []int{0, 7, 0}},
		{Variant{"AMP1", "4T"}, []int{17, 3, 0}},
	}
	if !reflect.DeepEqual(table.Rows, expected) {
		t.Errorf("problem with Convert: expected %v got %v", expected, table.Rows)
	}
	if len(loss.Asvs) != 1 || loss.Asvs[0] != "ASV5" || !reflect.DeepEqual(loss.Reads, []int{2, 0, 4}) {
		t.Error("problem with Convert loss", loss)
	}
}

func TestConvertPreservesTotals(t *testing.T) {
	counts := testCounts()
	table, loss := Convert(counts, testMap())
	totals := table.SampleTotals()
	for i := range counts.Samples {
		var raw int
		for _, c := range counts.Reads[i] {
			raw += c
		}
		if totals[i]+loss.Reads[i] != raw {
			t.Errorf("problem with totals of %s: %d converted + %d lost != %d", counts.Samples[i], totals[i], loss.Reads[i], raw)
		}
	}
}

func TestConvertDeterministic(t *testing.T) {
	first, _ := Convert(testCounts(), testMap())
	for i := 0; i < 20; i++ {
		again, _ := Convert(testCounts(), testMap())
		if !reflect.DeepEqual(first, again) {
			t.Fatal("problem with Convert: row order is not deterministic")
		}
	}
}

func TestZeroReadSamples(t *testing.T) {
	table, _ := Convert(testCounts(), testMap())
	zeros := ZeroReadSamples(table)
	if len(zeros) != 1 || zeros[0] != "S3" {
		t.Error("problem with ZeroReadSamples", zeros)
	}
	file := filepath.Join(t.TempDir(), "zeros.txt")
	if err := WriteZeroReadSamples(file, zeros); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(file)
	if err != nil || string(b) != "S3\n" {
		t.Errorf("problem with WriteZeroReadSamples: %q %v", b, err)
	}
}

func TestTableRoundTrip(t *testing.T) {
	table, _ := Convert(testCounts(), testMap())
	file := filepath.Join(t.TempDir(), "variants.tsv")
	if err := Write(file, table); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(file)
	expected := "Amplicon\tCIGAR\tS1\tS2\tS3\n" +
		"AMP0\t8I=T\t1\t0\t0\n" +
		"AMP1\t.\t0\t7\t0\n" +
		"AMP1\t4T\t17\t3\t0\n"
	if string(b) != expected {
		t.Errorf("problem with Write: got %q", b)
	}
	read, err := Read(file)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(read, table) {
		t.Errorf("problem with Read: expected %v got %v", table, read)
	}
}

func TestCigarMapRoundTrip(t *testing.T) {
	m := NewMap([]cigar.Entry{
		{Asv: "ASV2", Amplicon: "AMP1", Cigar: cigar.Cigar{{Type: cigar.Substitution, Pos: 4, Bases: dna.StringToBases("T")}}},
		{Asv: "ASV1", Amplicon: "AMP1"},
		{Asv: "ASV9", Amplicon: "AMP0"},
	})
	if !reflect.DeepEqual(m.Ids(), []string{"ASV9", "ASV1", "ASV2"}) {
		t.Error("problem with Ids order", m.Ids())
	}
	file := filepath.Join(t.TempDir(), "map.txt")
	if err := WriteCigarMap(file, m); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(file)
	if string(b) != "ASV\tAmplicon\tCIGAR\nASV9\tAMP0\t.\nASV1\tAMP1\t.\nASV2\tAMP1\t4T\n" {
		t.Errorf("problem with WriteCigarMap: got %q", b)
	}
	read, err := ReadCigarMap(file)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(read, m) {
		t.Errorf("problem with ReadCigarMap: expected %v got %v", m, read)
	}
}

func TestReadCigarMapErrors(t *testing.T) {
	var tests = []string{
		"ASV1\tAMP1\n",
		"ASV1\tAMP1\t4X\n",
		"ASV1\tAMP1\t4T\nASV1\tAMP2\t.\n",
	}
	for _, test := range tests {
		_, err := ReadCigarMap(write(t, "map.txt", test))
		if !apperr.IsFatal(err) {
			t.Errorf("problem with ReadCigarMap(%q): expected config error, got %v", test, err)
		}
	}
}

func TestReadCounts(t *testing.T) {
	text := "sample\tacgtACGTAA\tASV2\tASV3\n" +
		"S1\t12\t5\t0\n" +
		"S2\t0\t3.0\t7\n"
	counts, err := ReadCounts(write(t, "seqtab.tsv", text), map[string]string{"ACGTACGTAA": "ASV1"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(counts.Asvs, []string{"ASV1", "ASV2", "ASV3"}) {
		t.Error("problem with ReadCounts header mapping", counts.Asvs)
	}
	if !reflect.DeepEqual(counts.Samples, []string{"S1", "S2"}) || !reflect.DeepEqual(counts.Reads, [][]int{{12, 5, 0}, {0, 3, 7}}) {
		t.Error("problem with ReadCounts rows", counts)
	}

	var bad = []string{
		"",
		"sample\tASV1\nS1\t1\t2\n",
		"sample\tASV1\nS1\t-1\n",
		"sample\tASV1\nS1\t1.5\n",
	}
	for _, test := range bad {
		if _, err = ReadCounts(write(t, "seqtab.tsv", test), nil); !apperr.IsFatal(err) {
			t.Errorf("problem with ReadCounts(%q): expected config error, got %v", test, err)
		}
	}
}
