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
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipelineConfig(dir string) *PipelineConfig {
	return &PipelineConfig{
		Aligner:        BwaMem2,
		Layout:         IlluminaPaired,
		Threads:        4,
		InputAlignment: filepath.Join(dir, "input.bam"),
		OutPrefix:      filepath.Join(dir, "run1"),
		LiftoverIndex:  filepath.Join(dir, "index.clft"),
		TargetFasta:    filepath.Join(dir, "grch38.fasta"),
	}
}

func stageNames(stages []StageSpec) []string {
	var names []string
	for _, stage := range stages {
		names = append(names, stage.Name)
	}
	return names
}

func allStageCommands(stages []StageSpec) []string {
	var commands []string
	for _, stage := range stages {
		commands = append(commands, stage.Build()...)
	}
	return commands
}

func TestPipelineStagesPaired(t *testing.T) {
	p, err := NewPipeline(pipelineConfig(t.TempDir()), newMockExecutor())
	require.NoError(t, err)

	want := []string{
		StageLift, StageSortCommitted, StageCollatePaired,
		StageRealignDeferred, StageReconcilePaired, StageMergeAndIndex,
	}
	if diff := cmp.Diff(want, stageNames(p.Stages())); diff != "" {
		t.Errorf("stage sequence mismatch (-want +got):\n%s", diff)
	}

	plan, stages := p.Plan(), p.Stages()
	assert.Equal(t, []string{plan.Committed, plan.Deferred}, stages[0].Outputs)
	assert.Equal(t, []string{plan.PairedDeferredR1, plan.PairedDeferredR2, plan.PairedDeferred}, stages[2].Outputs)
	assert.Equal(t, []string{plan.PairedRealigned, plan.PairedDeferred}, stages[4].Inputs)
	assert.Equal(t, []string{plan.CommittedSorted, plan.PairedReconciled}, stages[5].Inputs)
	assert.Equal(t, []string{plan.Final, plan.FinalIndex}, stages[5].Outputs)
}

func TestPipelineStagesSingleEnd(t *testing.T) {
	cfg := pipelineConfig(t.TempDir())
	cfg.Aligner = Minimap2
	cfg.Layout = LongReadONT
	p, err := NewPipeline(cfg, newMockExecutor())
	require.NoError(t, err)

	want := []string{
		StageLift, StageSortCommitted, StageBamToFastq,
		StageRealignDeferred, StageMergeAndIndex,
	}
	if diff := cmp.Diff(want, stageNames(p.Stages())); diff != "" {
		t.Errorf("stage sequence mismatch (-want +got):\n%s", diff)
	}

	plan, stages := p.Plan(), p.Stages()
	assert.Equal(t, []string{plan.Deferred}, stages[2].Inputs)
	assert.Equal(t, []string{plan.DeferredFastq}, stages[2].Outputs)
	assert.Equal(t, []string{plan.CommittedSorted, plan.Realigned}, stages[4].Inputs)
}

func TestNewPipelineRejectsPairedLongReadAligner(t *testing.T) {
	cfg := pipelineConfig(t.TempDir())
	cfg.Aligner = Minimap2
	_, err := NewPipeline(cfg, newMockExecutor())
	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestPipelineDryRun(t *testing.T) {
	// Nothing under the prefix exists, and nothing has to: a dry run
	// renders every stage without probing the tools or touching the
	// filesystem.
	m := newMockExecutor()
	cfg := &PipelineConfig{
		Aligner:        BwaMem2,
		Layout:         IlluminaPaired,
		Threads:        4,
		InputAlignment: "no-such-dir/input.bam",
		OutPrefix:      "no-such-dir/run1",
		LiftoverIndex:  "no-such-dir/index.clft",
		TargetFasta:    "no-such-dir/grch38.fasta",
		DryRun:         true,
	}
	p, err := NewPipeline(cfg, m)
	require.NoError(t, err)

	plan := p.Plan()
	assert.Equal(t, "no-such-dir/run1-committed.bam", plan.Committed)
	assert.Equal(t, "no-such-dir/run1-committed-sorted.bam", plan.CommittedSorted)
	assert.Equal(t, "no-such-dir/run1-deferred.bam", plan.Deferred)
	assert.Equal(t, "no-such-dir/run1-paired", plan.PairedPrefix)
	assert.Equal(t, "no-such-dir/run1-paired-deferred-reconciled-sorted.bam", plan.PairedReconciled)
	assert.Equal(t, "no-such-dir/run1-final.bam", plan.Final)

	results, err := p.Run()
	require.NoError(t, err)
	require.Len(t, results, 6)
	for _, result := range results {
		assert.Equal(t, StageDryRun, result.Outcome)
		assert.NotEmpty(t, result.Commands)
	}
	assert.Empty(t, m.executed)
	assert.Empty(t, m.probedCommands())

	// The rendered commands are the ones an execute-mode run would
	// hand to the shell.
	builder, err := NewCommandBuilder(cfg, plan)
	require.NoError(t, err)
	assert.Equal(t, builder.Lift(), results[0].Commands)
	assert.Equal(t, builder.ReconcilePaired(), results[4].Commands)
	assert.Equal(t, builder.MergeAndIndex(), results[5].Commands)
}

func TestPipelineRunExecutesAllStages(t *testing.T) {
	dir := t.TempDir()
	cfg := pipelineConfig(dir)
	cfg.ForceRun = true
	m := newMockExecutor()
	p, err := NewPipeline(cfg, m)
	require.NoError(t, err)
	scriptToolProbes(m, cfg)

	plan := p.Plan()
	touch(t, cfg.InputAlignment)
	for _, file := range plan.Artifacts() {
		touch(t, file)
	}

	results, err := p.Run()
	require.NoError(t, err)
	require.Len(t, results, 6)
	for _, result := range results {
		assert.Equal(t, StageExecuted, result.Outcome)
	}
	if diff := cmp.Diff(allStageCommands(p.Stages()), m.executed); diff != "" {
		t.Errorf("executed commands mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, m.probedCommands(), 4)

	// A successful run removes the intermediate artifacts and keeps
	// the final alignment, its index, and the time log.
	for _, file := range plan.Intermediates() {
		assert.NoFileExists(t, file)
	}
	assert.FileExists(t, plan.Final)
	assert.FileExists(t, plan.FinalIndex)
	assert.FileExists(t, plan.TimeLog)
	assert.FileExists(t, cfg.InputAlignment)
}

func TestPipelineRunSingleEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := pipelineConfig(dir)
	cfg.Aligner = Minimap2
	cfg.Layout = LongReadHiFi
	cfg.ForceRun = true
	cfg.KeepTmpFiles = true
	m := newMockExecutor()
	p, err := NewPipeline(cfg, m)
	require.NoError(t, err)
	scriptToolProbes(m, cfg)

	plan := p.Plan()
	touch(t, cfg.InputAlignment)
	for _, file := range plan.Artifacts() {
		touch(t, file)
	}

	results, err := p.Run()
	require.NoError(t, err)
	require.Len(t, results, 5)
	if diff := cmp.Diff(allStageCommands(p.Stages()), m.executed); diff != "" {
		t.Errorf("executed commands mismatch (-want +got):\n%s", diff)
	}
	for _, file := range plan.Artifacts() {
		assert.FileExists(t, file)
	}
}

func TestPipelineResumeSkipsFreshStages(t *testing.T) {
	dir := t.TempDir()
	cfg := pipelineConfig(dir)
	cfg.KeepTmpFiles = true
	m := newMockExecutor()
	p, err := NewPipeline(cfg, m)
	require.NoError(t, err)
	scriptToolProbes(m, cfg)

	plan := p.Plan()
	touch(t, cfg.InputAlignment)
	// The first executed command leaves every artifact on disk, the
	// way a completed run would; all later stages find their outputs
	// and skip.
	m.onExecute = func(string) {
		for _, file := range plan.Artifacts() {
			touch(t, file)
		}
	}

	results, err := p.Run()
	require.NoError(t, err)
	require.Len(t, results, 6)
	assert.Equal(t, StageExecuted, results[0].Outcome)
	for _, result := range results[1:] {
		assert.Equal(t, StageSkipped, result.Outcome)
	}
	assert.Equal(t, p.Stages()[0].Build(), m.executed)
}

func TestPipelineValidationFailureStopsRun(t *testing.T) {
	dir := t.TempDir()
	cfg := pipelineConfig(dir)
	m := newMockExecutor()
	p, err := NewPipeline(cfg, m)
	require.NoError(t, err)
	scriptToolProbes(m, cfg)
	m.probeOut[cfg.BgzipBinary+" --version"] = ""
	m.probeErr[cfg.BgzipBinary+" --version"] = errors.New("exit status 127")

	_, err = p.Run()
	var valErr *ExecutableValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "bgzip --version", valErr.Command)
	assert.Empty(t, m.executed)
}

func TestPipelineStageFailureHalts(t *testing.T) {
	dir := t.TempDir()
	cfg := pipelineConfig(dir)
	cfg.ForceRun = true
	m := newMockExecutor()
	p, err := NewPipeline(cfg, m)
	require.NoError(t, err)
	scriptToolProbes(m, cfg)

	plan := p.Plan()
	touch(t, cfg.InputAlignment)
	for _, file := range plan.Artifacts() {
		touch(t, file)
	}

	builder, err := NewCommandBuilder(cfg, plan)
	require.NoError(t, err)
	collate := builder.CollatePaired()[0]
	m.executeErr[collate] = errors.New("exit status 1")

	results, err := p.Run()
	var execErr *StageExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, StageCollatePaired, execErr.Stage)
	assert.Equal(t, collate, execErr.Command)
	require.Len(t, results, 2)
	assert.Len(t, m.executed, 3)

	// A failed run leaves every artifact in place for inspection.
	for _, file := range plan.Artifacts() {
		assert.FileExists(t, file)
	}
}
