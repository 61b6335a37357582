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
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor scripts the Executor interface. It records every
// command it receives; unscripted commands succeed with empty output.
// Probe may be called from multiple goroutines.
type mockExecutor struct {
	mutex    sync.Mutex
	executed []string
	probed   []string

	executeErr map[string]error
	onExecute  func(command string)
	probeOut   map[string]string
	probeErr   map[string]error
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{
		executeErr: map[string]error{},
		probeOut:   map[string]string{},
		probeErr:   map[string]error{},
	}
}

func (m *mockExecutor) Execute(command string) (string, error) {
	m.mutex.Lock()
	m.executed = append(m.executed, command)
	m.mutex.Unlock()
	if m.onExecute != nil {
		m.onExecute(command)
	}
	if err := m.executeErr[command]; err != nil {
		return "scripted failure\n", err
	}
	return "", nil
}

func (m *mockExecutor) Probe(command string) (string, error) {
	m.mutex.Lock()
	m.probed = append(m.probed, command)
	m.mutex.Unlock()
	return m.probeOut[command], m.probeErr[command]
}

func (m *mockExecutor) probedCommands() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]string(nil), m.probed...)
}

// scriptToolProbes makes every executable probe of the configuration
// succeed. The configuration must have been validated so that the
// executable names are filled in.
func scriptToolProbes(m *mockExecutor, cfg *PipelineConfig) {
	m.probeOut[cfg.SamtoolsBinary+" --version"] = "samtools 1.17\n"
	m.probeOut[cfg.BgzipBinary+" --version"] = "bgzip (htslib) 1.17\n"
	m.probeOut[cfg.TimeBinary+" --version"] = "GNU time 1.9\n"
	m.probeOut[cfg.LiftoverBinary] = "Usage: leviosam2 <command>\n\nCommands:\n  lift\n"
	m.probeOut[cfg.AlignerBinary] = "Usage: aligner [options]\n\nOptions:\n"
}

func TestShellExecutorExecute(t *testing.T) {
	executor := ShellExecutor{}

	output, err := executor.Execute("echo oops 1>&2")
	require.NoError(t, err)
	assert.Equal(t, "oops\n", output)

	output, err = executor.Execute("echo oops 1>&2; exit 7")
	require.Error(t, err)
	assert.Equal(t, 7, exitStatus(err))
	assert.Equal(t, "oops\n", output)
}

func TestShellExecutorProbe(t *testing.T) {
	executor := ShellExecutor{}

	output, err := executor.Probe("echo visible; echo hidden 1>&2")
	require.NoError(t, err)
	assert.Equal(t, "visible\nhidden\n", output)

	_, err = executor.Probe("exit 3")
	require.Error(t, err)
	assert.Equal(t, 3, exitStatus(err))
}

func TestExitStatus(t *testing.T) {
	assert.Equal(t, -1, exitStatus(errors.New("not an exit error")))
}
