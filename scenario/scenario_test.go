// SPDX-License-Identifier: MIT

package scenario_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/layopt/adaptive"
	"github.com/katalvlaran/layopt/core"
	"github.com/katalvlaran/layopt/render"
	"github.com/katalvlaran/layopt/scenario"
)

func ptr[T any](v T) *T { return &v }

func TestLoad_Bracket(t *testing.T) {
	f, err := scenario.Load("testdata/bracket.yaml")
	require.NoError(t, err)

	var members []scenario.Member
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			members = append(members, scenario.Member{I: i, J: j, Initial: true, Tension: 1, Compression: 1})
		}
	}
	want := &scenario.File{
		Nodes:    []core.Vec3{{0, 0, 0}, {0, 1, 0}, {1, 0, 0}, {1, 1, 0}},
		Members:  members,
		Supports: map[int][3]int{0: {0, 0, 0}, 1: {0, 0, 0}},
		Loads:    []map[int]core.Vec3{{2: {0, -1, 0}}},
		Settings: scenario.Settings{
			MaxIterations: ptr(10),
			Tolerance:     ptr(1.0001),
			TimeBudget:    ptr(30 * time.Second),
		},
		Render: scenario.Render{Threshold: 0.001, Plane: "xy"},
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Fatalf("decoded file mismatch (-want +got):\n%s", diff)
	}

	p, err := f.Problem()
	require.NoError(t, err)
	opts, err := f.Options()
	require.NoError(t, err)
	assert.Len(t, opts, 3)

	res, err := adaptive.Run(context.Background(), p, opts...)
	require.NoError(t, err)
	assert.Equal(t, adaptive.StatusConverged, res.Status)
	assert.InDelta(t, 3.0, res.Volume, 1e-6)

	ro, err := f.RenderOptions()
	require.NoError(t, err)
	assert.Equal(t, render.Options{Threshold: 0.001, Plane: render.PlaneXY}, ro)
	d, err := render.Draw(p, res, ro)
	require.NoError(t, err)
	assert.Len(t, d.Segments, 2)
}

func TestLoad_GeneratedGrid(t *testing.T) {
	f, err := scenario.Load("testdata/grid.yaml")
	require.NoError(t, err)

	in, err := f.Input()
	require.NoError(t, err)
	assert.Len(t, in.Nodes, 9)
	assert.Len(t, in.Members, 28)
	assert.Equal(t, map[int]core.Support{0: core.Fixed}, in.Supports)
	assert.Equal(t, []core.LoadCase{{7: {-2, -1, 0}}}, in.LoadCases)

	p, err := f.Problem()
	require.NoError(t, err)
	opts, err := f.Options()
	require.NoError(t, err)
	res, err := adaptive.Run(context.Background(), p, opts...)
	require.NoError(t, err)
	assert.Equal(t, adaptive.StatusConverged, res.Status)
	assert.InDelta(t, 5.0, res.Volume, 1e-3)

	ro, err := f.RenderOptions()
	require.NoError(t, err)
	assert.Equal(t, render.Plane3D, ro.Plane)
}

func TestDecode_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown key": "nodes: [[0, 0, 0]]\ncolour: red\n",
		"bad vector":  "nodes: [[0, 0]]\n",
		"bad scalar":  "joint_cost: lots\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := scenario.Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}

	_, err := scenario.Decode(strings.NewReader(""))
	assert.ErrorIs(t, err, scenario.ErrInvalidScenario)

	_, err = scenario.Load("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestInput_Errors(t *testing.T) {
	cases := map[string]string{
		"nodes and grid":    "nodes: [[0, 0, 0]]\ngrid: {nx: 2, ny: 1, nz: 1, spacing: 1}\n",
		"bad grid":          "grid: {nx: 0, ny: 1, nz: 1, spacing: 1}\n",
		"members and gs":    "nodes: [[0, 0, 0], [1, 0, 0]]\nmembers: [{i: 0, j: 1}]\nground_structure: {}\n",
		"support flag":      "nodes: [[0, 0, 0]]\nsupports: {0: [0, 2, 0]}\n",
		"gs strength":       "nodes: [[0, 0, 0], [1, 0, 0]]\nground_structure: {tension: 1}\n",
		"gs overlap":        "nodes: [[0, 0, 0], [1, 0, 0]]\nground_structure: {overlap_spacing: -1}\n",
		"gs max length":     "nodes: [[0, 0, 0], [1, 0, 0]]\nground_structure: {max_length: -1}\n",
		"gs initial length": "nodes: [[0, 0, 0], [1, 0, 0]]\nground_structure: {initial_length: -1}\n",
		"gs one node":       "nodes: [[0, 0, 0]]\nground_structure: {}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := scenario.Decode(strings.NewReader(doc))
			require.NoError(t, err)
			_, err = f.Input()
			assert.ErrorIs(t, err, scenario.ErrInvalidScenario)
		})
	}
}

func TestProblem_PropagatesModelErrors(t *testing.T) {
	f, err := scenario.Decode(strings.NewReader("nodes: [[0, 0, 0]]\nmembers: [{i: 0, j: 3, tension: 1, compression: 1}]\n"))
	require.NoError(t, err)
	_, err = f.Problem()
	assert.ErrorIs(t, err, core.ErrInvalidIndex)
}

func TestOptions_Errors(t *testing.T) {
	cases := map[string]string{
		"max_iterations":      "settings: {max_iterations: 0}\n",
		"tolerance":           "settings: {tolerance: 1}\n",
		"activation_fraction": "settings: {activation_fraction: 0}\n",
		"pool_fraction":       "settings: {pool_fraction: 2}\n",
		"time_budget":         "settings: {time_budget: -1s}\n",
		"workers":             "settings: {workers: 0}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := scenario.Decode(strings.NewReader(doc))
			require.NoError(t, err)
			assert.NotPanics(t, func() {
				_, err = f.Options()
			})
			assert.ErrorIs(t, err, scenario.ErrInvalidScenario)
		})
	}

	f, err := scenario.Decode(strings.NewReader("render: {plane: zx}\n"))
	require.NoError(t, err)
	_, err = f.RenderOptions()
	assert.ErrorIs(t, err, scenario.ErrInvalidScenario)
	assert.ErrorIs(t, err, render.ErrUnknownPlane)
}

func TestOptions_StartSet(t *testing.T) {
	f, err := scenario.Decode(strings.NewReader(`
nodes: [[0, 1, 0], [0, 0, 0]]
members: [{i: 0, j: 1, tension: 1, compression: 1}]
supports: {0: [0, 0, 0]}
loads: [{1: [0, -2, 0]}]
settings: {start_set: [0]}
`))
	require.NoError(t, err)
	p, err := f.Problem()
	require.NoError(t, err)
	opts, err := f.Options()
	require.NoError(t, err)

	res, err := adaptive.Run(context.Background(), p, opts...)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, res.MemberIndices)
	assert.InDelta(t, 2.0, res.Volume, 1e-6)
}
