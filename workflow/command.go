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

package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// renderIf returns the given flag tokens when value is set, and no
// tokens when value is the zero value of its type. An absent optional
// setting contributes no flag, as opposed to a flag with an empty or
// zero argument.
func renderIf[T comparable](value T, tokens ...string) []string {
	var zero T
	if value == zero {
		return nil
	}
	return tokens
}

// commitOption renders one lift commit threshold as a -S key:value
// flag.
func commitOption[T comparable](key string, value T) []string {
	return renderIf(value, "-S", fmt.Sprintf("%s:%v", key, value))
}

// singleEndSortThreads returns the thread share of the sort step in a
// single-end realignment pipe. The remainder goes to the aligner.
func singleEndSortThreads(total int) int {
	return max(1, total/5)
}

// CommandBuilder synthesizes the shell command lines for the stages
// of one run. Every method is pure given the configuration and path
// plan; multi-step stages return their steps in execution order, each
// step to run only if the previous one succeeded.
type CommandBuilder struct {
	cfg     *PipelineConfig
	plan    PathPlan
	aligner alignerCommand
	timeCmd string
}

// NewCommandBuilder selects the aligner command variant and prepares
// the measurement wrapper. The configuration must have been
// validated.
func NewCommandBuilder(cfg *PipelineConfig, plan PathPlan) (*CommandBuilder, error) {
	b := &CommandBuilder{cfg: cfg, plan: plan}
	if cfg.MeasureTime {
		b.timeCmd = cfg.TimeBinary + " -v -ao " + plan.TimeLog
	}
	switch cfg.Aligner {
	case Bowtie2:
		b.aligner = bowtie2Command{}
	case BwaMem, BwaMem2:
		b.aligner = bwaCommand{}
	case Strobealign:
		b.aligner = strobealignCommand{}
	case Minimap2, Winnowmap2:
		b.aligner = minimapCommand{}
	default:
		return nil, &UnsupportedAlignerError{Aligner: cfg.Aligner}
	}
	return b, nil
}

// step renders one program invocation, prefixed with the measurement
// wrapper when time measurement is on. The wrapper never alters the
// argument list of the wrapped program.
func (b *CommandBuilder) step(program string, args ...string) string {
	tokens := make([]string, 0, len(args)+2)
	if b.timeCmd != "" {
		tokens = append(tokens, b.timeCmd)
	}
	tokens = append(tokens, program)
	tokens = append(tokens, args...)
	return strings.Join(tokens, " ")
}

// pipe joins steps into one shell pipeline.
func pipe(steps ...string) string {
	return strings.Join(steps, " | ")
}

// Lift renders the liftover invocation. Optional commit thresholds,
// the chain gap bound, the BED overrides, and the realignment config
// appear only when set.
func (b *CommandBuilder) Lift() []string {
	c, p := b.cfg, b.plan
	args := []string{
		"lift", "-C", c.LiftoverIndex, "-a", c.InputAlignment,
		"-p", p.Prefix, "-t", strconv.Itoa(c.Threads), "-m", "-f", c.TargetFasta,
	}
	args = append(args, commitOption("mapq", c.CommitMinMapQ)...)
	args = append(args, commitOption("aln_score", c.CommitMinScore)...)
	args = append(args, commitOption("clipped_frac", c.CommitMaxFracClipped)...)
	args = append(args, commitOption("hdist", c.CommitMaxHdist)...)
	args = append(args, commitOption("isize", c.CommitMaxIsize)...)
	args = append(args, renderIf(c.MaxGap, "-G", strconv.Itoa(c.MaxGap))...)
	args = append(args, renderIf(c.BedCommitSource, "-r", c.BedCommitSource)...)
	args = append(args, renderIf(c.BedDeferTarget, "-D", c.BedDeferTarget)...)
	args = append(args, renderIf(c.RealignConfig, "-x", c.RealignConfig)...)
	return []string{b.step(c.LiftoverBinary, args...)}
}

// SortCommitted renders the coordinate sort of the committed
// alignments.
func (b *CommandBuilder) SortCommitted() []string {
	c, p := b.cfg, b.plan
	return []string{
		b.step(c.SamtoolsBinary, "sort", "-@", strconv.Itoa(c.Threads), "-o", p.CommittedSorted, p.Committed),
	}
}

// CollatePaired renders the collate invocation that splits the
// committed and deferred alignments into properly paired outputs
// under the paired prefix.
func (b *CommandBuilder) CollatePaired() []string {
	c, p := b.cfg, b.plan
	return []string{
		b.step(c.LiftoverBinary, "collate", "-a", p.CommittedSorted, "-b", p.Deferred, "-p", p.PairedPrefix),
	}
}

// BamToFastqSingle renders the single-end conversion of the deferred
// alignments into a compressed FASTQ.
func (b *CommandBuilder) BamToFastqSingle() []string {
	c, p := b.cfg, b.plan
	return []string{
		pipe(
			b.step(c.SamtoolsBinary, "fastq", p.Deferred),
			b.step(c.BgzipBinary, ">", p.DeferredFastq),
		),
	}
}

// RealignDeferred renders the re-alignment of the deferred reads
// against the target reference. Paired output pipes into a format
// conversion only, because reconciliation name-sorts it later;
// single-end output pipes straight into a coordinate sort. One thread
// is reserved for the conversion in paired mode; in single-end mode
// the sort receives a fifth of the threads and the aligner the rest,
// both floored at one.
func (b *CommandBuilder) RealignDeferred() []string {
	c, p := b.cfg, b.plan
	if c.Layout.SingleEnd() {
		sortThreads := singleEndSortThreads(c.Threads)
		alnThreads := max(1, c.Threads-sortThreads)
		return []string{
			pipe(
				b.aligner.realign(b, alnThreads),
				b.step(c.SamtoolsBinary, "sort", "-@", strconv.Itoa(sortThreads), "-o", p.Realigned),
			),
		}
	}
	alnThreads := max(1, c.Threads-1)
	return []string{
		pipe(
			b.aligner.realign(b, alnThreads),
			b.step(c.SamtoolsBinary, "view", "-hbo", p.PairedRealigned),
		),
	}
}

// ReconcilePaired renders the paired-end reconciliation: name-sort
// the realigned and deferred alignments, then reconcile them by label
// and coordinate-sort the result.
func (b *CommandBuilder) ReconcilePaired() []string {
	c, p := b.cfg, b.plan
	threads := strconv.Itoa(c.Threads)
	return []string{
		b.step(c.SamtoolsBinary, "sort", "-@", threads, "-n", "-o", p.PairedRealignedSortN, p.PairedRealigned),
		b.step(c.SamtoolsBinary, "sort", "-@", threads, "-n", "-o", p.PairedDeferredSortN, p.PairedDeferred),
		pipe(
			b.step(c.LiftoverBinary, "reconcile",
				"-s", c.SourceLabel+":"+p.PairedDeferredSortN,
				"-s", c.TargetLabel+":"+p.PairedRealignedSortN,
				"-m", "-o", "-"),
			b.step(c.SamtoolsBinary, "sort", "-@", threads, "-o", p.PairedReconciled),
		),
	}
}

// MergeAndIndex renders the final merge of the committed alignments
// with the realignment branch, followed by indexing.
func (b *CommandBuilder) MergeAndIndex() []string {
	c, p := b.cfg, b.plan
	branch := p.PairedReconciled
	if c.Layout.SingleEnd() {
		branch = p.Realigned
	}
	return []string{
		b.step(c.SamtoolsBinary, "merge", "-@", strconv.Itoa(c.Threads), "--write-index",
			"-o", p.Final, p.CommittedSorted, branch),
		b.step(c.SamtoolsBinary, "index", p.Final),
	}
}

// alignerCommand renders the aligner step of a realignment pipe. The
// variant is selected once when the CommandBuilder is constructed.
type alignerCommand interface {
	realign(b *CommandBuilder, threads int) string
}

// bowtie2Command renders bowtie2 invocations. The read group string
// is inserted as given; bowtie2 expects the caller to spell the
// complete --rg-id/--rg flags.
type bowtie2Command struct{}

func (bowtie2Command) realign(b *CommandBuilder, threads int) string {
	c, p := b.cfg, b.plan
	var args []string
	args = append(args, renderIf(c.ReadGroup, c.ReadGroup)...)
	args = append(args, "-p", strconv.Itoa(threads), "-x", c.TargetFastaIndex)
	if c.Layout.SingleEnd() {
		args = append(args, "-U", p.DeferredFastq)
	} else {
		args = append(args, "-1", p.PairedDeferredR1, "-2", p.PairedDeferredR2)
	}
	return b.step(c.AlignerBinary, args...)
}

// bwaCommand renders bwa and bwa-mem2 invocations through their mem
// subcommand. Paired mode passes the target FASTA, single-end mode
// the target index.
type bwaCommand struct{}

func (bwaCommand) realign(b *CommandBuilder, threads int) string {
	c, p := b.cfg, b.plan
	args := []string{"mem"}
	args = append(args, renderIf(c.ReadGroup, "-R", c.ReadGroup)...)
	args = append(args, "-t", strconv.Itoa(threads))
	if c.Layout.SingleEnd() {
		args = append(args, c.TargetFastaIndex, p.DeferredFastq)
	} else {
		args = append(args, c.TargetFasta, p.PairedDeferredR1, p.PairedDeferredR2)
	}
	return b.step(c.AlignerBinary, args...)
}

// strobealignCommand renders strobealign invocations.
type strobealignCommand struct{}

func (strobealignCommand) realign(b *CommandBuilder, threads int) string {
	c, p := b.cfg, b.plan
	var args []string
	args = append(args, renderIf(c.ReadGroup, "--rg", c.ReadGroup)...)
	args = append(args, "-t", strconv.Itoa(threads), c.TargetFasta)
	if c.Layout.SingleEnd() {
		args = append(args, p.DeferredFastq)
	} else {
		args = append(args, p.PairedDeferredR1, p.PairedDeferredR2)
	}
	return b.step(c.AlignerBinary, args...)
}

// minimapCommand renders minimap2 and winnowmap2 invocations. Only
// the map-hifi and map-ont presets are passed; other layouts run
// without a preset. These aligners take single-end input only;
// paired layouts are rejected during configuration validation.
type minimapCommand struct{}

func (minimapCommand) realign(b *CommandBuilder, threads int) string {
	c, p := b.cfg, b.plan
	var args []string
	args = append(args, renderIf(c.ReadGroup, "-R", c.ReadGroup)...)
	args = append(args, "-a")
	switch c.Layout {
	case LongReadHiFi:
		args = append(args, "-x", "map-hifi")
	case LongReadONT:
		args = append(args, "-x", "map-ont")
	}
	args = append(args, "--MD", "-t", strconv.Itoa(threads), c.TargetFasta, p.DeferredFastq)
	return b.step(c.AlignerBinary, args...)
}
