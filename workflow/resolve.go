// elevate: a workflow tool for lifting aligned sequencing reads
// from one reference genome to another.
// Copyright (c) 2024-2026 biolift bv.

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
	"strings"

	"github.com/exascience/pargo/parallel"
)

// ResolveAligner maps an aligner identifier to the name of the
// executable that implements it.
func ResolveAligner(a Aligner) (string, error) {
	switch a {
	case Bowtie2, Minimap2, Winnowmap2, Strobealign:
		return string(a), nil
	case BwaMem:
		return "bwa", nil
	case BwaMem2:
		return "bwa-mem2", nil
	default:
		return "", &UnsupportedAlignerError{Aligner: a}
	}
}

// ValidateExecutable probes one external tool. In strict mode the
// probe must exit zero. In lenient mode, for tools whose bare
// invocation exits non-zero after printing usage, the probe must
// produce more than one line of output; a shell reporting "command
// not found" produces exactly one.
func ValidateExecutable(executor Executor, command string, lenient bool) error {
	output, err := executor.Probe(command)
	if lenient {
		if strings.Count(output, "\n") > 1 {
			return nil
		}
		return &ExecutableValidationError{Command: command, Output: output, Err: err}
	}
	if err != nil {
		return &ExecutableValidationError{Command: command, Output: output, Err: err}
	}
	return nil
}

// ValidateExecutables probes every external tool of the run before
// the first stage: the alignment toolkit, the compressor, the
// measurement tool when time measurement is on, the liftover tool,
// and the aligner. The probes are independent and run in parallel;
// when several fail, the first in this fixed order is reported.
func ValidateExecutables(cfg *PipelineConfig, executor Executor) error {
	type probe struct {
		command string
		lenient bool
	}
	probes := []probe{
		{cfg.SamtoolsBinary + " --version", false},
		{cfg.BgzipBinary + " --version", false},
	}
	if cfg.MeasureTime {
		probes = append(probes, probe{cfg.TimeBinary + " --version", false})
	}
	probes = append(probes,
		probe{cfg.LiftoverBinary, true},
		probe{cfg.AlignerBinary, true},
	)
	errs := make([]error, len(probes))
	thunks := make([]func(), len(probes))
	for i := range probes {
		i := i
		thunks[i] = func() {
			errs[i] = ValidateExecutable(executor, probes[i].command, probes[i].lenient)
		}
	}
	parallel.Do(thunks...)
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
