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

// Package workflow implements the staged liftover pipeline: lift the
// input alignments against a liftover index, commit the confident
// ones, re-align the deferred ones with an external aligner, then
// reconcile and merge everything into one final alignment file. All
// heavy lifting happens in external tools; this package derives the
// artifact paths, synthesizes the command lines, and drives the
// stages in order with skip, force-run, and dry-run semantics.
package workflow

import (
	"fmt"
)

// Aligner identifies which external aligner re-aligns the deferred
// reads.
type Aligner string

// Supported aligners.
const (
	Bowtie2     Aligner = "bowtie2"
	BwaMem      Aligner = "bwamem"
	BwaMem2     Aligner = "bwamem2"
	Minimap2    Aligner = "minimap2"
	Winnowmap2  Aligner = "winnowmap2"
	Strobealign Aligner = "strobealign"
)

// ParseAligner converts a command line value into an Aligner.
func ParseAligner(s string) (Aligner, error) {
	switch a := Aligner(s); a {
	case Bowtie2, BwaMem, BwaMem2, Minimap2, Winnowmap2, Strobealign:
		return a, nil
	default:
		return "", &UnsupportedAlignerError{Aligner: a}
	}
}

// SupportsPaired reports whether the aligner accepts paired reads as
// two separate FASTQ files.
func (a Aligner) SupportsPaired() bool {
	switch a {
	case Bowtie2, BwaMem, BwaMem2, Strobealign:
		return true
	default:
		return false
	}
}

// SequenceLayout identifies the read layout of the input data.
type SequenceLayout string

// Supported sequence layouts.
const (
	IlluminaPaired SequenceLayout = "illumina-paired"
	IlluminaSingle SequenceLayout = "illumina-single"
	LongReadHiFi   SequenceLayout = "long-read-hifi"
	LongReadONT    SequenceLayout = "long-read-ont"
)

// ParseSequenceLayout converts a command line value into a
// SequenceLayout.
func ParseSequenceLayout(s string) (SequenceLayout, error) {
	switch l := SequenceLayout(s); l {
	case IlluminaPaired, IlluminaSingle, LongReadHiFi, LongReadONT:
		return l, nil
	default:
		return "", &ConfigurationError{Reason: fmt.Sprintf("invalid sequence layout %v", s)}
	}
}

// SingleEnd reports whether reads of this layout are processed one at
// a time. Every layout except illumina-paired is single-end.
func (l SequenceLayout) SingleEnd() bool {
	return l != IlluminaPaired
}

// PipelineConfig collects every parameter of one pipeline run. A
// config is validated once with Validate and not modified afterwards.
type PipelineConfig struct {
	Aligner Aligner
	Layout  SequenceLayout
	Threads int

	InputAlignment string
	OutPrefix      string
	LiftoverIndex  string

	TargetFasta      string
	TargetFastaIndex string
	SourceFasta      string
	SourceFastaIndex string

	ReadGroup   string
	SourceLabel string
	TargetLabel string

	// Lift commit thresholds. The zero value means the threshold is
	// not set and contributes no flag.
	CommitMinMapQ        int
	CommitMinScore       int
	CommitMaxFracClipped float64
	CommitMaxIsize       int
	CommitMaxHdist       int
	MaxGap               int

	BedCommitSource string
	BedDeferTarget  string
	RealignConfig   string

	DryRun       bool
	ForceRun     bool
	MeasureTime  bool
	KeepTmpFiles bool

	// External executables. Empty values select the defaults; an
	// empty AlignerBinary is inferred from Aligner.
	LiftoverBinary string
	SamtoolsBinary string
	BgzipBinary    string
	TimeBinary     string
	AlignerBinary  string
}

// Defaults for the external executables.
const (
	DefaultLiftoverBinary = "leviosam2"
	DefaultSamtoolsBinary = "samtools"
	DefaultBgzipBinary    = "bgzip"
	DefaultTimeBinary     = "gtime"
)

// Validate fills in defaults and checks the configuration invariants.
// It must be called, and must succeed, before any stage runs.
func (c *PipelineConfig) Validate() error {
	if _, err := ParseAligner(string(c.Aligner)); err != nil {
		return err
	}
	if _, err := ParseSequenceLayout(string(c.Layout)); err != nil {
		return err
	}
	if !c.Layout.SingleEnd() && !c.Aligner.SupportsPaired() {
		return &ConfigurationError{
			Reason: fmt.Sprintf("aligner %v does not support the %v layout", c.Aligner, c.Layout),
		}
	}
	if c.Threads <= 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("invalid thread count %v", c.Threads)}
	}
	if c.InputAlignment == "" {
		return &ConfigurationError{Reason: "missing input alignment path"}
	}
	if c.OutPrefix == "" {
		return &ConfigurationError{Reason: "missing output prefix"}
	}
	if c.LiftoverIndex == "" {
		return &ConfigurationError{Reason: "missing liftover index path"}
	}
	if c.TargetFasta == "" {
		return &ConfigurationError{Reason: "missing target reference path"}
	}
	if c.TargetFastaIndex == "" {
		c.TargetFastaIndex = c.TargetFasta
	}
	if c.SourceLabel == "" {
		c.SourceLabel = "source"
	}
	if c.TargetLabel == "" {
		c.TargetLabel = "target"
	}
	if c.LiftoverBinary == "" {
		c.LiftoverBinary = DefaultLiftoverBinary
	}
	if c.SamtoolsBinary == "" {
		c.SamtoolsBinary = DefaultSamtoolsBinary
	}
	if c.BgzipBinary == "" {
		c.BgzipBinary = DefaultBgzipBinary
	}
	if c.TimeBinary == "" {
		c.TimeBinary = DefaultTimeBinary
	}
	if c.AlignerBinary == "" {
		binary, err := ResolveAligner(c.Aligner)
		if err != nil {
			return err
		}
		c.AlignerBinary = binary
	}
	return nil
}
