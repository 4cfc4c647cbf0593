// SPDX-License-Identifier: MIT

package scenario

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/layopt/adaptive"
	"github.com/katalvlaran/layopt/builder"
	"github.com/katalvlaran/layopt/core"
	"github.com/katalvlaran/layopt/render"
)

// File is the YAML document.
type File struct {
	JointCost       float64             `yaml:"joint_cost"`
	Nodes           []core.Vec3         `yaml:"nodes"`
	Grid            *Grid               `yaml:"grid"`
	Members         []Member            `yaml:"members"`
	GroundStructure *GroundStructure    `yaml:"ground_structure"`
	Supports        map[int][3]int      `yaml:"supports"`
	Loads           []map[int]core.Vec3 `yaml:"loads"`
	Settings        Settings            `yaml:"settings"`
	Render          Render              `yaml:"render"`
}

// Grid generates the nodes with builder.Grid.
type Grid struct {
	NX      int     `yaml:"nx"`
	NY      int     `yaml:"ny"`
	NZ      int     `yaml:"nz"`
	Spacing float64 `yaml:"spacing"`
}

// Member is an explicit candidate member.
type Member struct {
	I           int     `yaml:"i"`
	J           int     `yaml:"j"`
	Initial     bool    `yaml:"initial"`
	Tension     float64 `yaml:"tension"`
	Compression float64 `yaml:"compression"`
}

// GroundStructure generates the members with builder.GroundStructure.
// Zero fields keep the builder defaults.
type GroundStructure struct {
	OverlapSpacing float64  `yaml:"overlap_spacing"`
	MaxLength      float64  `yaml:"max_length"`
	InitialLength  *float64 `yaml:"initial_length"`
	Tension        float64  `yaml:"tension"`
	Compression    float64  `yaml:"compression"`
}

// Settings are optional optimizer overrides.
type Settings struct {
	MaxIterations      *int           `yaml:"max_iterations"`
	Tolerance          *float64       `yaml:"tolerance"`
	ActivationFraction *float64       `yaml:"activation_fraction"`
	PoolFraction       *float64       `yaml:"pool_fraction"`
	TimeBudget         *time.Duration `yaml:"time_budget"`
	Workers            *int           `yaml:"workers"`
	StartSet           []int          `yaml:"start_set"`
}

// Render holds drawing preferences.
type Render struct {
	Threshold float64 `yaml:"threshold"`
	Plane     string  `yaml:"plane"`
	MaxWidth  float64 `yaml:"max_width"`
}

// Load reads and decodes the file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	defer f.Close()

	sc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("Load: %s: %w", path, err)
	}
	return sc, nil
}

// Decode reads one YAML document from r. Unknown keys are errors.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("Decode: empty document: %w", ErrInvalidScenario)
		}
		return nil, fmt.Errorf("Decode: %w", err)
	}
	return &f, nil
}

// Input builds the problem input, generating nodes and members when the
// file asks for it.
func (f *File) Input() (core.Input, error) {
	nodes := f.Nodes
	switch {
	case len(nodes) > 0 && f.Grid != nil:
		return core.Input{}, fmt.Errorf("Input: both nodes and grid given: %w", ErrInvalidScenario)
	case f.Grid != nil:
		var err error
		nodes, err = builder.Grid(f.Grid.NX, f.Grid.NY, f.Grid.NZ, f.Grid.Spacing)
		if err != nil {
			return core.Input{}, fmt.Errorf("Input: %w: %w", ErrInvalidScenario, err)
		}
	}

	in := core.Input{
		Nodes:     nodes,
		JointCost: f.JointCost,
		Supports:  make(map[int]core.Support, len(f.Supports)),
		LoadCases: make([]core.LoadCase, len(f.Loads)),
	}

	switch {
	case len(f.Members) > 0 && f.GroundStructure != nil:
		return core.Input{}, fmt.Errorf("Input: both members and ground_structure given: %w", ErrInvalidScenario)
	case f.GroundStructure != nil:
		opts, err := f.GroundStructure.options()
		if err != nil {
			return core.Input{}, fmt.Errorf("Input: %w", err)
		}
		in.Members, err = builder.GroundStructure(nodes, opts...)
		if err != nil {
			return core.Input{}, fmt.Errorf("Input: %w: %w", ErrInvalidScenario, err)
		}
	default:
		in.Members = make([]core.MemberSpec, len(f.Members))
		for k, m := range f.Members {
			in.Members[k] = core.MemberSpec{I: m.I, J: m.J, Initial: m.Initial, Tension: m.Tension, Compression: m.Compression}
		}
	}

	for node, flags := range f.Supports {
		var s core.Support
		for axis, v := range flags {
			switch v {
			case 0:
				s[axis] = false
			case 1:
				s[axis] = true
			default:
				return core.Input{}, fmt.Errorf("Input: support %d axis %d = %d, want 0 or 1: %w",
					node, axis, v, ErrInvalidScenario)
			}
		}
		in.Supports[node] = s
	}
	for c, lc := range f.Loads {
		in.LoadCases[c] = make(core.LoadCase, len(lc))
		for node, v := range lc {
			in.LoadCases[c][node] = v
		}
	}
	return in, nil
}

// Problem builds and validates the problem.
func (f *File) Problem() (*core.Problem, error) {
	in, err := f.Input()
	if err != nil {
		return nil, fmt.Errorf("Problem: %w", err)
	}
	p, err := core.NewProblem(in)
	if err != nil {
		return nil, fmt.Errorf("Problem: %w", err)
	}
	return p, nil
}

// Options converts the settings block. Values the optimizer would reject
// are reported as ErrInvalidScenario instead of panicking.
func (f *File) Options() ([]adaptive.Option, error) {
	s := f.Settings
	var opts []adaptive.Option
	if s.MaxIterations != nil {
		if *s.MaxIterations < 1 {
			return nil, invalid("max_iterations", *s.MaxIterations)
		}
		opts = append(opts, adaptive.WithMaxIterations(*s.MaxIterations))
	}
	if s.Tolerance != nil {
		if !(*s.Tolerance > 1) {
			return nil, invalid("tolerance", *s.Tolerance)
		}
		opts = append(opts, adaptive.WithTolerance(*s.Tolerance))
	}
	if s.ActivationFraction != nil {
		if !fraction(*s.ActivationFraction) {
			return nil, invalid("activation_fraction", *s.ActivationFraction)
		}
		opts = append(opts, adaptive.WithActivationFraction(*s.ActivationFraction))
	}
	if s.PoolFraction != nil {
		if !fraction(*s.PoolFraction) {
			return nil, invalid("pool_fraction", *s.PoolFraction)
		}
		opts = append(opts, adaptive.WithPoolFraction(*s.PoolFraction))
	}
	if s.TimeBudget != nil {
		if *s.TimeBudget <= 0 {
			return nil, invalid("time_budget", *s.TimeBudget)
		}
		opts = append(opts, adaptive.WithTimeBudget(*s.TimeBudget))
	}
	if s.Workers != nil {
		if *s.Workers < 1 {
			return nil, invalid("workers", *s.Workers)
		}
		opts = append(opts, adaptive.WithWorkers(*s.Workers))
	}
	if s.StartSet != nil {
		opts = append(opts, adaptive.WithStartSet(s.StartSet...))
	}
	return opts, nil
}

// RenderOptions converts the render block.
func (f *File) RenderOptions() (render.Options, error) {
	plane, err := render.ParsePlane(f.Render.Plane)
	if err != nil {
		return render.Options{}, fmt.Errorf("RenderOptions: %w: %w", ErrInvalidScenario, err)
	}
	return render.Options{Threshold: f.Render.Threshold, Plane: plane, MaxWidth: f.Render.MaxWidth}, nil
}

func (g *GroundStructure) options() ([]builder.Option, error) {
	var opts []builder.Option
	switch {
	case g.OverlapSpacing < 0 || math.IsInf(g.OverlapSpacing, 1):
		return nil, invalid("overlap_spacing", g.OverlapSpacing)
	case g.OverlapSpacing > 0:
		opts = append(opts, builder.WithOverlapFilter(g.OverlapSpacing))
	}
	switch {
	case g.MaxLength < 0:
		return nil, invalid("max_length", g.MaxLength)
	case g.MaxLength > 0:
		opts = append(opts, builder.WithMaxLength(g.MaxLength))
	}
	if g.InitialLength != nil {
		if *g.InitialLength < 0 || math.IsNaN(*g.InitialLength) {
			return nil, invalid("initial_length", *g.InitialLength)
		}
		opts = append(opts, builder.WithInitialLength(*g.InitialLength))
	}
	if g.Tension != 0 || g.Compression != 0 {
		if !positiveFinite(g.Tension) || !positiveFinite(g.Compression) {
			return nil, fmt.Errorf("ground_structure: tension %g, compression %g: %w",
				g.Tension, g.Compression, ErrInvalidScenario)
		}
		opts = append(opts, builder.WithStrength(g.Tension, g.Compression))
	}
	return opts, nil
}

func fraction(x float64) bool { return x > 0 && x <= 1 }

func positiveFinite(x float64) bool { return x > 0 && !math.IsInf(x, 1) }

func invalid(key string, v any) error {
	return fmt.Errorf("%s = %v: %w", key, v, ErrInvalidScenario)
}
