package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

const version string = "0.1.0"
const gonomicsVersion string = "1.0.1-0.20240426183757-e6c6ab634c20"

type subcommand struct {
	name     string
	function func(args []string)
	blurb    string
}

// SubCommands contains all valid subcommands.
// New subcommands can be added to amptools by adding a new entry to this array.
var SubCommands = []*subcommand{
	{"asv2cigar", runAsvToCigar, "convert ASVs to pseudo-CIGAR variants and count them per sample"},
	{"convert", runConvert, "rebuild the variant count table from an ASV to CIGAR map"},
	{"zeros", runZeros, "list samples with no reads in a variant count table"},
	{"mask", runMask, "write the homopolymer runs of reference amplicons as BED"},
}

func usage() {
	s := new(strings.Builder)
	s.WriteString(
		"Program: amptools (tools for malaria amplicon sequencing data)\n" +
			"Version: " + version + " (gonomics " + gonomicsVersion + ")\n" +
			"Contact: Daniel Snellings <daniel.snellings@childrens.harvard.edu>\n" +
			"\nUsage:\tamptools <command> [options]\n\n" +
			"Commands:\n")

	// add subcommand text via tabwriter so the columns align
	w := tabwriter.NewWriter(s, 0, 8, 5, '\t', tabwriter.AlignRight)
	for i := range SubCommands {
		fmt.Fprintf(w, "\t%s\t%s\n", SubCommands[i].name, SubCommands[i].blurb)
	}
	w.Flush()
	fmt.Print(s.String())
}

// commandMap builds a map of possible subcommands keyed on the name of the subcommand
func commandMap() map[string]func(args []string) {
	m := make(map[string]func(args []string))
	for i := range SubCommands {
		m[SubCommands[i].name] = SubCommands[i].function
	}
	return m
}

func main() {
	flag.Usage = usage
	flag.Parse()

	command := commandMap()[flag.Arg(0)]
	if command == nil {
		flag.Usage()
		return
	}
	command(flag.Args()[1:])
}

func errExit(err string) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
