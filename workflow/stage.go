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
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
)

// Stage names as they appear in logs and errors.
const (
	StageLift            = "lift"
	StageSortCommitted   = "sort-committed"
	StageCollatePaired   = "collate-paired"
	StageBamToFastq      = "bam-to-fastq-single"
	StageRealignDeferred = "realign-deferred"
	StageReconcilePaired = "reconcile-paired"
	StageMergeAndIndex   = "merge-and-index"
)

// StageSpec describes one pipeline stage: the inputs it requires on
// disk, the outputs it produces, and a Build function rendering its
// command lines. Specs are value objects constructed fresh per run.
type StageSpec struct {
	Name    string
	Inputs  []string
	Outputs []string
	Build   func() []string
}

// StageOutcome tags how a stage ended.
type StageOutcome int

const (
	// StageExecuted means the stage commands ran.
	StageExecuted StageOutcome = iota
	// StageSkipped means all outputs were already on disk.
	StageSkipped
	// StageDryRun means the commands were rendered, not run.
	StageDryRun
)

func (o StageOutcome) String() string {
	switch o {
	case StageExecuted:
		return "executed"
	case StageSkipped:
		return "skipped"
	case StageDryRun:
		return "dry-run"
	default:
		return fmt.Sprintf("outcome %d", int(o))
	}
}

// StageResult reports the outcome of one stage. Commands holds the
// rendered command lines whether or not they ran.
type StageResult struct {
	Stage      string
	Outcome    StageOutcome
	Commands   []string
	Reason     string
	ExitStatus int
}

// StageRunner runs single stages: render only in dry-run mode, skip
// when every output is already on disk, execute otherwise.
type StageRunner struct {
	executor Executor
	dryRun   bool
	forceRun bool
}

// NewStageRunner returns a runner with the given execution mode.
func NewStageRunner(executor Executor, dryRun, forceRun bool) *StageRunner {
	return &StageRunner{executor: executor, dryRun: dryRun, forceRun: forceRun}
}

// Run renders and, outside dry-run mode, executes one stage. In
// dry-run mode it returns before any filesystem check and before any
// process spawns. Inputs are checked in declared order and the first
// missing one is reported. Without force-run, a stage whose declared
// outputs all exist is skipped; presence of the output files is the
// entire memoization contract, so a truncated file from an
// interrupted run also counts as present.
func (r *StageRunner) Run(stage StageSpec) (StageResult, error) {
	result := StageResult{Stage: stage.Name, Commands: stage.Build()}
	if r.dryRun {
		result.Outcome = StageDryRun
		for _, command := range result.Commands {
			log.Println("Dry run command:\n", command)
		}
		return result, nil
	}
	for _, input := range stage.Inputs {
		if !fileExists(input) {
			return result, &MissingInputError{Stage: stage.Name, Path: input}
		}
	}
	if !r.forceRun && allFilesExist(stage.Outputs) {
		result.Outcome = StageSkipped
		result.Reason = fmt.Sprintf("output %v exists", strings.Join(stage.Outputs, ", "))
		log.Printf("Skipping stage %v: %v.\n", stage.Name, result.Reason)
		return result, nil
	}
	for _, command := range result.Commands {
		log.Println("Executing command:\n", command)
		output, err := r.executor.Execute(command)
		if err != nil {
			result.ExitStatus = exitStatus(err)
			return result, &StageExecutionError{
				Stage:      stage.Name,
				Command:    command,
				ExitStatus: result.ExitStatus,
				Output:     output,
				Err:        err,
			}
		}
	}
	result.Outcome = StageExecuted
	return result, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func allFilesExist(paths []string) bool {
	for _, path := range paths {
		if !fileExists(path) {
			return false
		}
	}
	return true
}

func exitStatus(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
