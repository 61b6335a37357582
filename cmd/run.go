// elevate: a workflow tool for lifting aligned sequencing reads
// from one reference genome to another.
// Copyright (c) 2023-2026 biolift bv.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/biolift/elevate/blob/master/LICENSE.txt>.

package cmd

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/biolift/elevate/workflow"
)

// RunHelp is the help string for this command.
const RunHelp = "\nrun parameters:\n" +
	"elevate run alignment-file output-prefix\n" +
	"--aligner [bowtie2 | bwamem | bwamem2 | minimap2 | winnowmap2 | strobealign]\n" +
	"--sequence-layout [illumina-paired | illumina-single | long-read-hifi | long-read-ont]\n" +
	"--leviosam2-index clft-file\n" +
	"--target-fasta fasta-file\n" +
	"[--target-fasta-index index-prefix]\n" +
	"[--source-fasta fasta-file]\n" +
	"[--source-fasta-index index-prefix]\n" +
	"[--read-group read-group-string]\n" +
	"[--source-label label]\n" +
	"[--target-label label]\n" +
	"[--lift-commit-min-mapq nr]\n" +
	"[--lift-commit-min-score nr]\n" +
	"[--lift-commit-max-frac-clipped fraction]\n" +
	"[--lift-commit-max-isize nr]\n" +
	"[--lift-commit-max-hdist nr]\n" +
	"[--lift-max-gap nr]\n" +
	"[--lift-bed-commit-source bed-file]\n" +
	"[--lift-bed-defer-target bed-file]\n" +
	"[--lift-realign-config config-file]\n" +
	"[--leviosam2-binary path]\n" +
	"[--samtools-binary path]\n" +
	"[--bgzip-binary path]\n" +
	"[--gnu-time-binary path]\n" +
	"[--aligner-binary path]\n" +
	"[--nr-of-threads nr]\n" +
	"[--measure-time]\n" +
	"[--keep-tmp-files]\n" +
	"[--dry-run]\n" +
	"[--force-run]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// Run implements the elevate run command.
func Run() error {
	var (
		alignerString, layoutString        string
		leviosam2Index, targetFasta        string
		targetFastaIndex, sourceFasta      string
		sourceFastaIndex                   string
		readGroup                          string
		sourceLabel, targetLabel           string
		commitMinMapQ, commitMinScore      int
		commitMaxFracClipped               float64
		commitMaxIsize, commitMaxHdist     int
		maxGap                             int
		bedCommitSource, bedDeferTarget    string
		realignConfig                      string
		leviosam2Binary, samtoolsBinary    string
		bgzipBinary, gnuTimeBinary         string
		alignerBinary                      string
		nrOfThreads                        int
		measureTime, keepTmpFiles          bool
		dryRun, forceRun                   bool
		timed                              bool
		profile                            string
		logPath                            string
	)

	var flags flag.FlagSet

	flags.StringVar(&alignerString, "aligner", "", "aligner for re-aligning deferred reads")
	flags.StringVar(&layoutString, "sequence-layout", "", "read layout of the input data")
	flags.StringVar(&leviosam2Index, "leviosam2-index", "", "liftover index built for the source/target pair")
	flags.StringVar(&targetFasta, "target-fasta", "", "target reference (fasta format)")
	flags.StringVar(&targetFastaIndex, "target-fasta-index", "", "aligner index of the target reference; the target fasta when not set")
	flags.StringVar(&sourceFasta, "source-fasta", "", "source reference (fasta format)")
	flags.StringVar(&sourceFastaIndex, "source-fasta-index", "", "aligner index of the source reference")
	flags.StringVar(&readGroup, "read-group", "", "read group string passed to the aligner")
	flags.StringVar(&sourceLabel, "source-label", "source", "label of the source reference")
	flags.StringVar(&targetLabel, "target-label", "target", "label of the target reference")
	flags.IntVar(&commitMinMapQ, "lift-commit-min-mapq", 0, "min MAPQ to commit a lifted read")
	flags.IntVar(&commitMinScore, "lift-commit-min-score", 0, "min alignment score (AS:i tag) to commit a lifted read")
	flags.Float64Var(&commitMaxFracClipped, "lift-commit-max-frac-clipped", 0, "max fraction of clipped bases to commit a lifted read")
	flags.IntVar(&commitMaxIsize, "lift-commit-max-isize", 0, "max template length (isize) to commit a lifted read")
	flags.IntVar(&commitMaxHdist, "lift-commit-max-hdist", 0, "max edit distance (NM:i tag) to commit a lifted read")
	flags.IntVar(&maxGap, "lift-max-gap", 0, "max chain gap size allowed when lifting")
	flags.StringVar(&bedCommitSource, "lift-bed-commit-source", "", "BED regions (source coordinates) whose reads are always committed")
	flags.StringVar(&bedDeferTarget, "lift-bed-defer-target", "", "BED regions (target coordinates) whose reads are always deferred")
	flags.StringVar(&realignConfig, "lift-realign-config", "", "config file for realignment during lifting")
	flags.StringVar(&leviosam2Binary, "leviosam2-binary", workflow.DefaultLiftoverBinary, "path to the leviosam2 executable")
	flags.StringVar(&samtoolsBinary, "samtools-binary", workflow.DefaultSamtoolsBinary, "path to the samtools executable")
	flags.StringVar(&bgzipBinary, "bgzip-binary", workflow.DefaultBgzipBinary, "path to the bgzip executable")
	flags.StringVar(&gnuTimeBinary, "gnu-time-binary", workflow.DefaultTimeBinary, "path to the GNU time executable")
	flags.StringVar(&alignerBinary, "aligner-binary", "", "path to the aligner executable; inferred from --aligner when not set")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 4, "number of threads for the external tools")
	flags.BoolVar(&measureTime, "measure-time", false, "wrap every external command with the GNU time executable")
	flags.BoolVar(&keepTmpFiles, "keep-tmp-files", false, "keep the intermediate files of a successful run")
	flags.BoolVar(&dryRun, "dry-run", false, "render the stage commands without running anything")
	flags.BoolVar(&forceRun, "force-run", false, "rerun stages whose outputs already exist")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 4, RunHelp)

	input := getFilename(os.Args[2], RunHelp)
	outPrefix := getFilename(os.Args[3], RunHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	aligner, err := workflow.ParseAligner(alignerString)
	if err != nil {
		sanityChecksFailed = true
		log.Println("Error: Invalid or missing --aligner: ", alignerString)
	}
	layout, err := workflow.ParseSequenceLayout(layoutString)
	if err != nil {
		sanityChecksFailed = true
		log.Println("Error: Invalid or missing --sequence-layout: ", layoutString)
	}
	if leviosam2Index == "" {
		sanityChecksFailed = true
		log.Println("Error: Missing --leviosam2-index.")
	}
	if targetFasta == "" {
		sanityChecksFailed = true
		log.Println("Error: Missing --target-fasta.")
	}
	if nrOfThreads <= 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
	}

	plan := workflow.DerivePathPlan(outPrefix)

	// The dry-run mode only renders commands, so missing files are
	// not errors there.
	if !dryRun {
		if !checkExist("", input) {
			sanityChecksFailed = true
		}
		if !checkCreate("", plan.Final) {
			sanityChecksFailed = true
		}
		if leviosam2Index != "" && !checkExist("--leviosam2-index", leviosam2Index) {
			sanityChecksFailed = true
		}
		if targetFasta != "" && !checkExist("--target-fasta", targetFasta) {
			sanityChecksFailed = true
		}
		if sourceFasta != "" && !checkExist("--source-fasta", sourceFasta) {
			sanityChecksFailed = true
		}
		if bedCommitSource != "" && !checkExist("--lift-bed-commit-source", bedCommitSource) {
			sanityChecksFailed = true
		}
		if bedDeferTarget != "" && !checkExist("--lift-bed-defer-target", bedDeferTarget) {
			sanityChecksFailed = true
		}
		if realignConfig != "" && !checkExist("--lift-realign-config", realignConfig) {
			sanityChecksFailed = true
		}
		if profile != "" && !checkCreate("--profile", profile) {
			sanityChecksFailed = true
		}
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, RunHelp)
		os.Exit(1)
	}

	// building and output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " run ", input, " ", outPrefix)
	fmt.Fprint(&command, " --aligner ", alignerString)
	fmt.Fprint(&command, " --sequence-layout ", layoutString)
	fmt.Fprint(&command, " --leviosam2-index ", leviosam2Index)
	fmt.Fprint(&command, " --target-fasta ", targetFasta)

	if targetFastaIndex != "" {
		fmt.Fprint(&command, " --target-fasta-index ", targetFastaIndex)
	}
	if sourceFasta != "" {
		fmt.Fprint(&command, " --source-fasta ", sourceFasta)
	}
	if sourceFastaIndex != "" {
		fmt.Fprint(&command, " --source-fasta-index ", sourceFastaIndex)
	}
	if readGroup != "" {
		fmt.Fprint(&command, " --read-group ", readGroup)
	}
	fmt.Fprint(&command, " --source-label ", sourceLabel)
	fmt.Fprint(&command, " --target-label ", targetLabel)

	if commitMinMapQ != 0 {
		fmt.Fprint(&command, " --lift-commit-min-mapq ", commitMinMapQ)
	}
	if commitMinScore != 0 {
		fmt.Fprint(&command, " --lift-commit-min-score ", commitMinScore)
	}
	if commitMaxFracClipped != 0 {
		fmt.Fprint(&command, " --lift-commit-max-frac-clipped ", commitMaxFracClipped)
	}
	if commitMaxIsize != 0 {
		fmt.Fprint(&command, " --lift-commit-max-isize ", commitMaxIsize)
	}
	if commitMaxHdist != 0 {
		fmt.Fprint(&command, " --lift-commit-max-hdist ", commitMaxHdist)
	}
	if maxGap != 0 {
		fmt.Fprint(&command, " --lift-max-gap ", maxGap)
	}
	if bedCommitSource != "" {
		fmt.Fprint(&command, " --lift-bed-commit-source ", bedCommitSource)
	}
	if bedDeferTarget != "" {
		fmt.Fprint(&command, " --lift-bed-defer-target ", bedDeferTarget)
	}
	if realignConfig != "" {
		fmt.Fprint(&command, " --lift-realign-config ", realignConfig)
	}

	fmt.Fprint(&command, " --leviosam2-binary ", leviosam2Binary)
	fmt.Fprint(&command, " --samtools-binary ", samtoolsBinary)
	fmt.Fprint(&command, " --bgzip-binary ", bgzipBinary)
	if measureTime {
		fmt.Fprint(&command, " --gnu-time-binary ", gnuTimeBinary)
		fmt.Fprint(&command, " --measure-time")
	}
	if alignerBinary != "" {
		fmt.Fprint(&command, " --aligner-binary ", alignerBinary)
	}
	fmt.Fprint(&command, " --nr-of-threads ", nrOfThreads)
	if keepTmpFiles {
		fmt.Fprint(&command, " --keep-tmp-files")
	}
	if dryRun {
		fmt.Fprint(&command, " --dry-run")
	}
	if forceRun {
		fmt.Fprint(&command, " --force-run")
	}
	if timed {
		fmt.Fprint(&command, " --timed")
	}
	if profile != "" {
		fmt.Fprint(&command, " --profile ", profile)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}

	commandString := command.String()

	log.Println("Executing command:\n", commandString)

	// running the pipeline

	cfg := &workflow.PipelineConfig{
		Aligner:              aligner,
		Layout:               layout,
		Threads:              nrOfThreads,
		InputAlignment:       input,
		OutPrefix:            outPrefix,
		LiftoverIndex:        leviosam2Index,
		TargetFasta:          targetFasta,
		TargetFastaIndex:     targetFastaIndex,
		SourceFasta:          sourceFasta,
		SourceFastaIndex:     sourceFastaIndex,
		ReadGroup:            readGroup,
		SourceLabel:          sourceLabel,
		TargetLabel:          targetLabel,
		CommitMinMapQ:        commitMinMapQ,
		CommitMinScore:       commitMinScore,
		CommitMaxFracClipped: commitMaxFracClipped,
		CommitMaxIsize:       commitMaxIsize,
		CommitMaxHdist:       commitMaxHdist,
		MaxGap:               maxGap,
		BedCommitSource:      bedCommitSource,
		BedDeferTarget:       bedDeferTarget,
		RealignConfig:        realignConfig,
		DryRun:               dryRun,
		ForceRun:             forceRun,
		MeasureTime:          measureTime,
		KeepTmpFiles:         keepTmpFiles,
		LiftoverBinary:       leviosam2Binary,
		SamtoolsBinary:       samtoolsBinary,
		BgzipBinary:          bgzipBinary,
		TimeBinary:           gnuTimeBinary,
		AlignerBinary:        alignerBinary,
	}

	pipeline, err := workflow.NewPipeline(cfg, workflow.ShellExecutor{})
	if err != nil {
		return err
	}

	var runErr error
	timedRun(timed, profile, "Running the liftover pipeline.", 1, func() {
		_, runErr = pipeline.Run()
	})
	return runErr
}
