// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const bracket = `
nodes: [[0, 0, 0], [0, 1, 0], [1, 0, 0], [1, 1, 0]]
members:
  - {i: 0, j: 1, initial: true, tension: 1, compression: 1}
  - {i: 0, j: 2, initial: true, tension: 1, compression: 1}
  - {i: 0, j: 3, initial: true, tension: 1, compression: 1}
  - {i: 1, j: 2, initial: true, tension: 1, compression: 1}
  - {i: 1, j: 3, initial: true, tension: 1, compression: 1}
  - {i: 2, j: 3, initial: true, tension: 1, compression: 1}
supports: {0: [0, 0, 0], 1: [0, 0, 0]}
loads:
  - 2: [0, -1, 0]
render: {threshold: 0.001}
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCmd(t *testing.T) {
	path := writeScenario(t, bracket)
	dir := t.TempDir()
	drawing := filepath.Join(dir, "drawing.yaml")
	metrics := filepath.Join(dir, "layopt.prom")

	out, err := execute(t, "run", path, "-q", "--drawing", drawing, "--metrics-file", metrics)
	require.NoError(t, err)
	assert.Contains(t, out, "status: converged")
	assert.Contains(t, out, "iterations: 1")
	assert.Contains(t, out, "volume: 3\n")

	raw, err := os.ReadFile(drawing)
	require.NoError(t, err)
	var d struct {
		Segments []struct {
			Member int
			Color  string
		}
	}
	require.NoError(t, yaml.Unmarshal(raw, &d))
	assert.Len(t, d.Segments, 2)

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `layopt_runs_total{status="converged"} 1`)
}

func TestRunCmd_Errors(t *testing.T) {
	_, err := execute(t, "run", "-q", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "run", "-q")
	assert.Error(t, err)

	path := writeScenario(t, "settings: {tolerance: 1}\nnodes: [[0, 0, 0]]\n")
	_, err = execute(t, "run", "-q", path)
	assert.Error(t, err)
}

func TestValidateCmd(t *testing.T) {
	path := writeScenario(t, bracket)
	out, err := execute(t, "validate", "-q", path)
	require.NoError(t, err)
	assert.Equal(t, "nodes: 4\nmembers: 6 (6 initial)\nload cases: 1\n", out)

	bad := writeScenario(t, "nodes: [[0, 0, 0]]\nsupports: {3: [0, 0, 0]}\n")
	_, err = execute(t, "validate", "-q", bad)
	assert.Error(t, err)
}
