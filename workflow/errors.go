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
	"fmt"
)

// ConfigurationError reports an invalid pipeline configuration. It is
// returned before any stage runs.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// UnsupportedAlignerError reports an aligner identifier outside the
// supported set.
type UnsupportedAlignerError struct {
	Aligner Aligner
}

func (e *UnsupportedAlignerError) Error() string {
	return fmt.Sprintf("unsupported aligner: %v", e.Aligner)
}

// ExecutableValidationError reports that probing an external tool
// failed. Output holds the captured stdout and stderr of the probe.
type ExecutableValidationError struct {
	Command string
	Output  string
	Err     error
}

func (e *ExecutableValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("executable check `%v` failed: %v, output:\n%v", e.Command, e.Err, e.Output)
	}
	return fmt.Sprintf("executable check `%v` produced unexpected output:\n%v", e.Command, e.Output)
}

func (e *ExecutableValidationError) Unwrap() error { return e.Err }

// MissingInputError reports that a required input of a stage is not on
// disk. It signals an out-of-order invocation or a prior silent
// failure.
type MissingInputError struct {
	Stage string
	Path  string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input %v for stage %v", e.Path, e.Stage)
}

// StageExecutionError reports a stage command that exited non-zero.
// Output holds the tail of the command's captured stderr.
type StageExecutionError struct {
	Stage      string
	Command    string
	ExitStatus int
	Output     string
	Err        error
}

func (e *StageExecutionError) Error() string {
	return fmt.Sprintf("stage %v: command `%v` exited with status %v", e.Stage, e.Command, e.ExitStatus)
}

func (e *StageExecutionError) Unwrap() error { return e.Err }
