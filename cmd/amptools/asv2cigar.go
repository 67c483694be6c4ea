package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dasnellings/ampliconTools/asvtocigar"
	"github.com/dasnellings/ampliconTools/config"
	log "github.com/sirupsen/logrus"
	"github.com/vertgenlab/gonomics/exception"
)

func asvToCigarUsage(asvFlags *flag.FlagSet) {
	fmt.Print(
		"asv2cigar - convert ASVs to pseudo-CIGAR variants relative to reference amplicons\n" +
			"\tASVs passing the filters are binned by amplicon, aligned to the reference, and\n" +
			"\tdescribed by their substitutions, insertions, and deletions. Indels in homopolymers\n" +
			"\tand masked regions are ignored. Read counts of ASVs with the same CIGAR are summed.\n\n" +
			"Usage:\n" +
			"  amptools asv2cigar [options] -c config.json\n" +
			"  amptools asv2cigar [options] -r amplicons.fasta -d Results\n\n" +
			"Options:\n")
	asvFlags.PrintDefaults()
}

// inputFiles is a custom type that gets filled by flag.Parse()
type inputFiles []string

// String to satisfy flag.Value interface
func (i *inputFiles) String() string {
	return strings.Join(*i, " ")
}

// Set to satisfy flag.Value interface
func (i *inputFiles) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func runAsvToCigar(args []string) {
	var err error
	asvFlags := flag.NewFlagSet("asv2cigar", flag.ExitOnError)
	def := config.Default()

	var refs inputFiles
	configFile := asvFlags.String("c", "", "JSON config file. Flags that are set override values in the config file.")
	asvFlags.Var(&refs, "r", "Reference amplicon FASTA file. May be declared more than once; for duplicate amplicon ids the longest sequence is kept.")
	resultsDir := asvFlags.String("d", def.ResultsDir, "Results directory holding the DADA2 outputs. Output paths not set otherwise are placed here.")
	mask := asvFlags.String("mask", def.Mask, "BED or dustmasker file of low complexity regions in which indels are ignored. Optional.")
	asvTable := asvFlags.String("table", "", "ASV table. Default: <d>/PostProc_DADA2/ASVTable.txt")
	asvFasta := asvFlags.String("fasta", "", "ASV sequence FASTA. Default: <d>/PostProc_DADA2/ASVSeqs.fasta")
	seqtab := asvFlags.String("seqtab", "", "ASV count table with one row per sample. Default: <d>/seqtab.tsv")
	out := asvFlags.String("o", "", "Output variant count table. Default: <d>/CIGARVariants_Bfilter.out.tsv")
	summary := asvFlags.String("summary", "", "Write a JSON run summary to this file.")
	plotFile := asvFlags.String("plot", "", "Write a bar chart of variants per amplicon to this file (.png, .svg, or .pdf).")
	polyN := asvFlags.Int("polyN", def.PolyN, "Ignore indels in homopolymers of at least this many bases.")
	minReads := asvFlags.Int("minReads", def.MinReads, "Minimum total reads of an ASV.")
	minSamples := asvFlags.Int("minSamples", def.MinSamples, "Minimum number of samples an ASV is found in.")
	maxSnvDist := asvFlags.Int("maxSnvDist", def.MaxSnvDist, "Maximum SNV distance of an ASV to its amplicon. -1 to disable.")
	maxIndelDist := asvFlags.Int("maxIndelDist", def.MaxIndelDist, "Maximum indel distance of an ASV to its amplicon. -1 to disable.")
	includeFailed := asvFlags.Bool("includeFailed", def.IncludeFailed, "Keep ASVs that failed upstream filters.")
	excludeBimeras := asvFlags.Bool("excludeBimeras", def.ExcludeBimeras, "Remove ASVs flagged as bimeras.")
	aligner := asvFlags.String("aligner", def.Aligner, "Aligner: 'muscle' or 'builtin'.")
	muscle := asvFlags.String("muscle", def.Muscle, "MUSCLE executable.")
	muscleV5 := asvFlags.Bool("muscleV5", def.MuscleV5, "Use MUSCLE 5 command line arguments.")
	timeout := asvFlags.Duration("timeout", def.AlignerTimeout, "Time limit for aligning one amplicon. 0 for no limit.")
	threads := asvFlags.Int("threads", def.Threads, "Number of amplicons to align in parallel.")
	verbose := asvFlags.Bool("v", false, "Verbose output.")

	err = asvFlags.Parse(args)
	exception.PanicOnErr(err)
	asvFlags.Usage = func() { asvToCigarUsage(asvFlags) }

	cfg := def
	if *configFile != "" {
		if cfg, err = config.Load(*configFile); err != nil {
			errExit(fmt.Sprintf("ERROR: %v", err))
		}
	}

	// only flags given on the command line override the config file
	asvFlags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "r":
			if cfg.ReferenceAmplicons == "" {
				cfg.ReferenceAmplicons = refs[0]
				cfg.ExtraReferences = append(cfg.ExtraReferences, refs[1:]...)
			} else {
				cfg.ExtraReferences = append(cfg.ExtraReferences, refs...)
			}
		case "d":
			cfg.ResultsDir = *resultsDir
		case "mask":
			cfg.Mask = *mask
		case "table":
			cfg.AsvTable = *asvTable
		case "fasta":
			cfg.AsvFasta = *asvFasta
		case "seqtab":
			cfg.Seqtab = *seqtab
		case "o":
			cfg.Out = *out
		case "summary":
			cfg.Summary = *summary
		case "plot":
			cfg.Plot = *plotFile
		case "polyN":
			cfg.PolyN = *polyN
		case "minReads":
			cfg.MinReads = *minReads
		case "minSamples":
			cfg.MinSamples = *minSamples
		case "maxSnvDist":
			cfg.MaxSnvDist = *maxSnvDist
		case "maxIndelDist":
			cfg.MaxIndelDist = *maxIndelDist
		case "includeFailed":
			cfg.IncludeFailed = *includeFailed
		case "excludeBimeras":
			cfg.ExcludeBimeras = *excludeBimeras
		case "aligner":
			cfg.Aligner = *aligner
		case "muscle":
			cfg.Muscle = *muscle
		case "muscleV5":
			cfg.MuscleV5 = *muscleV5
		case "timeout":
			cfg.AlignerTimeout = *timeout
		case "threads":
			cfg.Threads = *threads
		case "v":
			cfg.Verbose = *verbose
		}
	})

	if cfg.ReferenceAmplicons == "" {
		asvFlags.Usage()
		errExit("\nERROR: must specify a config file (-c) or a reference (-r)")
	}
	if err = cfg.Validate(); err != nil {
		asvFlags.Usage()
		errExit(fmt.Sprintf("\nERROR: %v", err))
	}
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if _, err = asvtocigar.Run(ctx, cfg); err != nil {
		stop()
		errExit(fmt.Sprintf("ERROR: %v", err))
	}
}
