package main

import (
	"flag"
	"fmt"

	"github.com/dasnellings/ampliconTools/asvtable"
	"github.com/dasnellings/ampliconTools/variants"
	log "github.com/sirupsen/logrus"
	"github.com/vertgenlab/gonomics/exception"
)

func convertUsage(convertFlags *flag.FlagSet) {
	fmt.Print(
		"convert - sum ASV read counts into variant read counts using an ASV to CIGAR map\n\n" +
			"Usage:\n" +
			"  amptools convert [options] -m ASV_to_CIGAR.out.txt -i seqtab.tsv > variants.tsv\n\n" +
			"Options:\n")
	convertFlags.PrintDefaults()
}

func runConvert(args []string) {
	var err error
	convertFlags := flag.NewFlagSet("convert", flag.ExitOnError)

	cigarMap := convertFlags.String("m", "", "ASV to CIGAR map written by 'amptools asv2cigar'.")
	input := convertFlags.String("i", "", "ASV count table with one row per sample. Column headers are ASV ids or ASV sequences.")
	asvFasta := convertFlags.String("f", "", "ASV sequence FASTA used to map sequence column headers to ASV ids.")
	output := convertFlags.String("o", "stdout", "Output variant count table.")
	zeros := convertFlags.String("z", "", "Write samples with no reads after conversion to this file.")

	err = convertFlags.Parse(args)
	exception.PanicOnErr(err)
	convertFlags.Usage = func() { convertUsage(convertFlags) }

	if *cigarMap == "" || *input == "" {
		convertFlags.Usage()
		errExit("\nERROR: must specify a CIGAR map (-m) and a count table (-i)")
	}

	m, err := variants.ReadCigarMap(*cigarMap)
	if err != nil {
		errExit(fmt.Sprintf("ERROR: %v", err))
	}
	var bySeq map[string]string
	if *asvFasta != "" {
		seqs, err := asvtable.ReadSeqs(*asvFasta)
		if err != nil {
			errExit(fmt.Sprintf("ERROR: %v", err))
		}
		bySeq = seqs.BySequence()
	}
	counts, err := variants.ReadCounts(*input, bySeq)
	if err != nil {
		errExit(fmt.Sprintf("ERROR: %v", err))
	}

	table, loss := variants.Convert(counts, m)
	if len(loss.Asvs) > 0 {
		log.Warnf("%d count table columns are not in the CIGAR map and were dropped", len(loss.Asvs))
	}
	if err = variants.Write(*output, table); err != nil {
		errExit(fmt.Sprintf("ERROR: %v", err))
	}
	if *zeros != "" {
		err = variants.WriteZeroReadSamples(*zeros, variants.ZeroReadSamples(table))
		exception.PanicOnErr(err)
	}
}
