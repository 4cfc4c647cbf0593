// SPDX-License-Identifier: MIT

package adaptive

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/katalvlaran/layopt/solver"
	"github.com/katalvlaran/layopt/violation"
)

// DefaultMaxIterations bounds the number of LP solves of one run.
const DefaultMaxIterations = 99

// Option customizes a Run. Constructors panic on meaningless values;
// Run itself never panics on user input.
type Option func(*config)

type config struct {
	maxIter    int
	check      violation.Config
	start      []int
	startGiven bool
	budget     time.Duration
	solver     solver.Solver
	logger     *zap.Logger
	observer   Observer
	tracer     trace.TracerProvider
}

func defaultConfig() config {
	return config{
		maxIter: DefaultMaxIterations,
		check:   violation.DefaultConfig(),
		solver:  solver.NewSimplex(),
		logger:  zap.NewNop(),
		tracer:  otel.GetTracerProvider(),
	}
}

// WithMaxIterations caps the number of iterations (LP solves). Panics if n < 1.
func WithMaxIterations(n int) Option {
	if n < 1 {
		panic("adaptive: WithMaxIterations(n < 1)")
	}
	return func(c *config) { c.maxIter = n }
}

// WithTolerance sets the utilization above which an inactive member violates.
// Panics unless tol > 1.
func WithTolerance(tol float64) Option {
	if !(tol > 1) {
		panic("adaptive: WithTolerance(tol <= 1)")
	}
	return func(c *config) { c.check.Tolerance = tol }
}

// WithActivationFraction sets the share of violators admitted per round.
// Panics unless 0 < f <= 1.
func WithActivationFraction(f float64) Option {
	if !(f > 0 && f <= 1) {
		panic("adaptive: WithActivationFraction outside (0, 1]")
	}
	return func(c *config) { c.check.ActivationFraction = f }
}

// WithPoolFraction sets the share of the inactive pool used in the admission
// cap. Panics unless 0 < f <= 1.
func WithPoolFraction(f float64) Option {
	if !(f > 0 && f <= 1) {
		panic("adaptive: WithPoolFraction outside (0, 1]")
	}
	return func(c *config) { c.check.PoolFraction = f }
}

// WithWorkers bounds the goroutines of the violation check. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("adaptive: WithWorkers(n < 1)")
	}
	return func(c *config) { c.check.Workers = n }
}

// WithStartSet replaces the Initial flags with the given member indices.
// An empty call starts from an empty active set. Indices are checked by Run.
func WithStartSet(indices ...int) Option {
	cp := append([]int(nil), indices...)
	return func(c *config) {
		c.start = cp
		c.startGiven = true
	}
}

// WithTimeBudget stops the loop once d has elapsed since Run started; the
// iteration in flight is completed first. Panics if d <= 0.
func WithTimeBudget(d time.Duration) Option {
	if d <= 0 {
		panic("adaptive: WithTimeBudget(d <= 0)")
	}
	return func(c *config) { c.budget = d }
}

// WithSolver injects the LP solver. Panics on nil.
func WithSolver(s solver.Solver) Option {
	if s == nil {
		panic("adaptive: WithSolver(nil)")
	}
	return func(c *config) { c.solver = s }
}

// WithLogger sets the structured logger. Panics on nil.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("adaptive: WithLogger(nil)")
	}
	return func(c *config) { c.logger = l }
}

// WithObserver attaches an iteration observer. Panics on nil.
func WithObserver(o Observer) Option {
	if o == nil {
		panic("adaptive: WithObserver(nil)")
	}
	return func(c *config) { c.observer = o }
}

// WithTracerProvider sets the OpenTelemetry provider; the global one is used
// otherwise. Panics on nil.
func WithTracerProvider(tp trace.TracerProvider) Option {
	if tp == nil {
		panic("adaptive: WithTracerProvider(nil)")
	}
	return func(c *config) { c.tracer = tp }
}
