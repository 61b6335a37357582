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
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/willf/bitset"
)

// Pipeline drives the fixed stage sequence of one liftover run:
// lift, sort the committed alignments, then either collate, realign,
// and reconcile (paired-end) or convert to FASTQ and realign
// (single-end), and finally merge and index. The first failing stage
// halts the run; artifacts already on disk stay in place for
// inspection.
type Pipeline struct {
	cfg      *PipelineConfig
	plan     PathPlan
	builder  *CommandBuilder
	runner   *StageRunner
	executor Executor
	runID    uuid.UUID
}

// NewPipeline validates the configuration and assembles the stage
// machinery for one run.
func NewPipeline(cfg *PipelineConfig, executor Executor) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	plan := DerivePathPlan(cfg.OutPrefix)
	builder, err := NewCommandBuilder(cfg, plan)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:      cfg,
		plan:     plan,
		builder:  builder,
		runner:   NewStageRunner(executor, cfg.DryRun, cfg.ForceRun),
		executor: executor,
		runID:    uuid.New(),
	}, nil
}

// Plan returns the artifact paths of this run.
func (p *Pipeline) Plan() PathPlan {
	return p.plan
}

// Stages returns the stage sequence selected by the configured
// layout, with each stage's declared inputs and outputs.
func (p *Pipeline) Stages() []StageSpec {
	c, plan, b := p.cfg, p.plan, p.builder
	stages := []StageSpec{
		{
			Name:    StageLift,
			Inputs:  []string{c.InputAlignment},
			Outputs: []string{plan.Committed, plan.Deferred},
			Build:   b.Lift,
		},
		{
			Name:    StageSortCommitted,
			Inputs:  []string{plan.Committed},
			Outputs: []string{plan.CommittedSorted},
			Build:   b.SortCommitted,
		},
	}
	if c.Layout.SingleEnd() {
		stages = append(stages,
			StageSpec{
				Name:    StageBamToFastq,
				Inputs:  []string{plan.Deferred},
				Outputs: []string{plan.DeferredFastq},
				Build:   b.BamToFastqSingle,
			},
			StageSpec{
				Name:    StageRealignDeferred,
				Inputs:  []string{plan.DeferredFastq},
				Outputs: []string{plan.Realigned},
				Build:   b.RealignDeferred,
			},
			StageSpec{
				Name:    StageMergeAndIndex,
				Inputs:  []string{plan.CommittedSorted, plan.Realigned},
				Outputs: []string{plan.Final, plan.FinalIndex},
				Build:   b.MergeAndIndex,
			},
		)
		return stages
	}
	stages = append(stages,
		StageSpec{
			Name:    StageCollatePaired,
			Inputs:  []string{plan.CommittedSorted, plan.Deferred},
			Outputs: []string{plan.PairedDeferredR1, plan.PairedDeferredR2, plan.PairedDeferred},
			Build:   b.CollatePaired,
		},
		StageSpec{
			Name:    StageRealignDeferred,
			Inputs:  []string{plan.PairedDeferredR1, plan.PairedDeferredR2},
			Outputs: []string{plan.PairedRealigned},
			Build:   b.RealignDeferred,
		},
		StageSpec{
			Name:    StageReconcilePaired,
			Inputs:  []string{plan.PairedRealigned, plan.PairedDeferred},
			Outputs: []string{plan.PairedReconciled},
			Build:   b.ReconcilePaired,
		},
		StageSpec{
			Name:    StageMergeAndIndex,
			Inputs:  []string{plan.CommittedSorted, plan.PairedReconciled},
			Outputs: []string{plan.Final, plan.FinalIndex},
			Build:   b.MergeAndIndex,
		},
	)
	return stages
}

// Run drives every stage of the selected branch in order and returns
// their results. It stops at the first failure; stages after a failed
// one never run. Outside dry-run mode the external tools are
// validated before the first stage, and the intermediate artifacts
// are removed after a fully successful run unless the configuration
// keeps them.
func (p *Pipeline) Run() ([]StageResult, error) {
	log.Println("Starting liftover run", p.runID)
	if !p.cfg.DryRun {
		if err := ValidateExecutables(p.cfg, p.executor); err != nil {
			return nil, errors.Wrapf(err, "liftover run %v failed", p.runID)
		}
	}
	stages := p.Stages()
	executed := bitset.New(uint(len(stages)))
	skipped := bitset.New(uint(len(stages)))
	results := make([]StageResult, 0, len(stages))
	for i, stage := range stages {
		start := time.Now()
		result, err := p.runner.Run(stage)
		if err != nil {
			return results, errors.Wrapf(err, "liftover run %v failed", p.runID)
		}
		results = append(results, result)
		switch result.Outcome {
		case StageExecuted:
			executed.Set(uint(i))
			log.Println("Elapsed time for stage", stage.Name+":", time.Since(start))
		case StageSkipped:
			skipped.Set(uint(i))
		}
	}
	if !p.cfg.DryRun && !p.cfg.KeepTmpFiles {
		p.removeTmpFiles()
	}
	log.Printf("Finished liftover run %v: %d stages executed, %d skipped.\n",
		p.runID, executed.Count(), skipped.Count())
	return results, nil
}

// removeTmpFiles deletes the intermediate artifacts after a
// successful run. The run has already succeeded, so removal errors
// are logged and not returned.
func (p *Pipeline) removeTmpFiles() {
	for _, file := range p.plan.Intermediates() {
		err := os.Remove(file)
		switch {
		case err == nil:
			log.Println("Removed", file)
		case os.IsNotExist(err):
		default:
			log.Println("Cannot remove", file, "-", err)
		}
	}
}
