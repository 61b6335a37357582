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
	"bytes"
	"io"
	"os"
	"os/exec"
)

// Executor runs shell command lines for the pipeline. The stage
// commands contain pipes and redirections, so they go through the
// system shell rather than being spawned directly.
type Executor interface {
	// Execute runs command to completion, streaming the tools' stderr
	// while the pipeline waits. It returns the captured stderr for
	// error reporting.
	Execute(command string) (string, error)

	// Probe runs command to completion with stdout and stderr
	// captured quietly. Used for executable validation.
	Probe(command string) (string, error)
}

// ShellExecutor is the Executor used in production. It runs every
// command with `sh -c`.
type ShellExecutor struct{}

// Execute implements Executor.
func (ShellExecutor) Execute(command string) (string, error) {
	cmd := exec.Command("sh", "-c", command)
	var stderr bytes.Buffer
	cmd.Stdout = os.Stdout
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)
	err := cmd.Run()
	return stderr.String(), err
}

// Probe implements Executor.
func (ShellExecutor) Probe(command string) (string, error) {
	output, err := exec.Command("sh", "-c", command).CombinedOutput()
	return string(output), err
}
