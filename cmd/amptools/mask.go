package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/dasnellings/ampliconTools/amplicon"
	"github.com/dasnellings/ampliconTools/cigar"
	"github.com/vertgenlab/gonomics/bed"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
)

func maskUsage(maskFlags *flag.FlagSet) {
	fmt.Print(
		"mask - write the homopolymer runs in which 'asv2cigar' ignores indels\n\n" +
			"Usage:\n" +
			"  amptools mask [options] -r amplicons.fasta > homopolymers.bed\n\n" +
			"Options:\n")
	maskFlags.PrintDefaults()
}

func runMask(args []string) {
	var err error
	maskFlags := flag.NewFlagSet("mask", flag.ExitOnError)

	var refs inputFiles
	maskFlags.Var(&refs, "r", "Reference amplicon FASTA file. May be declared more than once.")
	output := maskFlags.String("o", "stdout", "Output `BED` file.")
	polyN := maskFlags.Int("polyN", 5, "Minimum homopolymer length.")

	err = maskFlags.Parse(args)
	exception.PanicOnErr(err)
	maskFlags.Usage = func() { maskUsage(maskFlags) }

	if len(refs) == 0 || *polyN < 1 {
		maskFlags.Usage()
		errExit("\nERROR: must specify a reference (-r) and polyN >= 1")
	}

	db, err := amplicon.ReadReference(refs...)
	if err != nil {
		errExit(fmt.Sprintf("ERROR: %v", err))
	}
	writeHomopolymers(*output, db, *polyN)
}

func writeHomopolymers(output string, db amplicon.Database, polyN int) {
	out := fileio.EasyCreate(output)
	defer cleanup(out)
	for _, id := range db.Ids() {
		for _, r := range cigar.Homopolymers(id, db[id].Seq, polyN) {
			bed.WriteBed(out, r)
		}
	}
}

func cleanup(f io.Closer) {
	err := f.Close()
	exception.PanicOnErr(err)
}
