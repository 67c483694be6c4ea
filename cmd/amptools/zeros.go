package main

import (
	"flag"
	"fmt"

	"github.com/dasnellings/ampliconTools/variants"
	"github.com/vertgenlab/gonomics/exception"
)

func zerosUsage(zerosFlags *flag.FlagSet) {
	fmt.Print(
		"zeros - list samples whose reads were all lost to filtering or conversion\n\n" +
			"Usage:\n" +
			"  amptools zeros [options] -i variants.tsv > ZeroReadsSampleList.txt\n\n" +
			"Options:\n")
	zerosFlags.PrintDefaults()
}

func runZeros(args []string) {
	var err error
	zerosFlags := flag.NewFlagSet("zeros", flag.ExitOnError)

	input := zerosFlags.String("i", "", "Variant count table written by 'amptools asv2cigar' or 'amptools convert'.")
	output := zerosFlags.String("o", "stdout", "Output sample list.")

	err = zerosFlags.Parse(args)
	exception.PanicOnErr(err)
	zerosFlags.Usage = func() { zerosUsage(zerosFlags) }

	if *input == "" {
		zerosFlags.Usage()
		errExit("\nERROR: must specify a variant table (-i)")
	}

	table, err := variants.Read(*input)
	if err != nil {
		errExit(fmt.Sprintf("ERROR: %v", err))
	}
	err = variants.WriteZeroReadSamples(*output, variants.ZeroReadSamples(table))
	exception.PanicOnErr(err)
}
