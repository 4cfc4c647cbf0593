// SPDX-License-Identifier: MIT

package adaptive_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/layopt/adaptive"
	"github.com/katalvlaran/layopt/core"
	"github.com/katalvlaran/layopt/lp"
	"github.com/katalvlaran/layopt/solver"
	"github.com/katalvlaran/layopt/violation"
)

const tol = 1e-6

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRun_TwoNode(t *testing.T) {
	res, err := adaptive.Run(context.Background(), twoNode(t))
	require.NoError(t, err)

	assert.Equal(t, adaptive.StatusConverged, res.Status)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, []int{0}, res.MemberIndices)
	assert.InDelta(t, 2.0, res.Areas[0], tol) // |F| / σ
	assert.InDelta(t, 2.0, res.Forces[0][0], tol)
	assert.InDelta(t, 2.0, res.Volume, tol)
	assert.NoError(t, res.Warning())
	assert.Empty(t, res.Pending)
	assert.NotEmpty(t, res.RunID)
}

func TestRun_AllActiveSquare(t *testing.T) {
	res, err := adaptive.Run(context.Background(), square(t))
	require.NoError(t, err)

	assert.Equal(t, adaptive.StatusConverged, res.Status)
	assert.Equal(t, 1, res.Iterations)
	assert.Len(t, res.MemberIndices, 6)
	assert.InDelta(t, 3.0, res.Volume, tol)
	require.Len(t, res.History, 1)
	assert.Zero(t, res.History[0].Inactive)
	assert.Zero(t, res.MaxUtilization)
}

func TestRun_SparseStartGrows(t *testing.T) {
	p := sparseGrid(t)
	require.Equal(t, 29, p.MemberCount())
	require.Len(t, p.ActiveIndices(p.InitialActivation()), 1)

	res, err := adaptive.Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, adaptive.StatusConverged, res.Status)
	assert.GreaterOrEqual(t, res.Iterations, 2)
	assert.Greater(t, len(res.MemberIndices), 1)

	require.Len(t, res.History, res.Iterations)
	assert.InDelta(t, 50.0, res.History[0].Volume, tol)
	assert.InDelta(t, 5.0, res.Volume, 1e-3)
	assert.LessOrEqual(t, res.Volume, res.History[0].Volume)

	// The active set only grows, by exactly what each check admitted.
	for i := 1; i < len(res.History); i++ {
		prev, cur := res.History[i-1], res.History[i]
		assert.Equal(t, prev.Active+prev.Activated, cur.Active, "iteration %d", cur.Iteration)
		assert.Equal(t, i+1, cur.Iteration)
	}
	assert.Zero(t, res.History[len(res.History)-1].Activated)

	// The start member is never removed.
	assert.Contains(t, res.MemberIndices, 0)
}

func TestRun_FeasibilityCertificate(t *testing.T) {
	for name, p := range map[string]*core.Problem{
		"two-node": twoNode(t),
		"square":   square(t),
		"sparse":   sparseGrid(t),
		"two-case": twoCaseGrid(t),
	} {
		t.Run(name, func(t *testing.T) {
			res, err := adaptive.Run(context.Background(), p)
			require.NoError(t, err)
			require.Equal(t, adaptive.StatusConverged, res.Status)
			require.True(t, res.DualsRecovered)
			for _, s := range res.History {
				assert.True(t, s.DualsRecovered, "iteration %d", s.Iteration)
			}

			all := make([]int, p.MemberCount())
			for k := range all {
				all[k] = k
			}
			y, err := violation.Utilization(context.Background(), p, all, res.Duals, 0)
			require.NoError(t, err)
			for k, yk := range y {
				assert.LessOrEqual(t, yk, violation.DefaultTolerance+tol, "member %d", k)
			}

			residual, err := lp.Residual(p, &lp.Solution{Members: res.MemberIndices, Forces: res.Forces})
			require.NoError(t, err)
			assert.Less(t, residual, tol)

			for k, a := range res.Areas {
				assert.GreaterOrEqual(t, a, 0.0, "area %d", k)
			}
			for _, u := range res.Duals {
				require.Len(t, u, p.DOFCount())
				for r, free := range p.DOFMask() {
					if free == 0 {
						assert.Zero(t, u[r], "fixed dof %d", r)
					}
				}
			}
		})
	}
}

func TestRun_TwoCasesMatchFullGroundStructure(t *testing.T) {
	p := twoCaseGrid(t)
	res, err := adaptive.Run(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, adaptive.StatusConverged, res.Status)
	require.Len(t, res.Duals, 2)

	all := make([]int, p.MemberCount())
	for k := range all {
		all[k] = k
	}
	full, err := adaptive.Run(context.Background(), p, adaptive.WithStartSet(all...))
	require.NoError(t, err)
	assert.Equal(t, adaptive.StatusConverged, full.Status)
	assert.Equal(t, 1, full.Iterations)
	assert.True(t, full.DualsRecovered)

	// Every inactive utilization is within the tolerance, so the adaptive
	// volume is optimal up to that factor.
	assert.GreaterOrEqual(t, res.Volume, full.Volume-tol)
	assert.LessOrEqual(t, res.Volume, full.Volume*violation.DefaultTolerance+tol)
}

// dualless drops the multipliers of every solve.
type dualless struct{ inner solver.Solver }

func (d dualless) Solve(ctx context.Context, p *solver.Problem) (*solver.Result, error) {
	res, err := d.inner.Solve(ctx, p)
	if err != nil {
		return nil, err
	}
	res.EqualityDuals = nil
	return res, nil
}

func TestRun_MissingDualsAreNotConvergence(t *testing.T) {
	logCore, logs := observer.New(zap.WarnLevel)
	res, err := adaptive.Run(context.Background(), twoCaseGrid(t),
		adaptive.WithSolver(dualless{solver.NewSimplex()}), adaptive.WithLogger(zap.New(logCore)))
	require.NoError(t, err)

	assert.Equal(t, adaptive.StatusUncertified, res.Status)
	assert.Equal(t, 1, res.Iterations)
	assert.False(t, res.DualsRecovered)
	require.Len(t, res.History, 1)
	assert.False(t, res.History[0].DualsRecovered)
	assert.Positive(t, res.History[0].Inactive)
	assert.ErrorIs(t, res.Warning(), adaptive.ErrUncertified)
	assert.ErrorIs(t, res.Warning(), adaptive.ErrNonConvergence)
	assert.Equal(t, 1, logs.FilterMessage("solver returned no duals, convergence not certified").Len())

	// With nothing left to check, missing duals do not matter.
	res, err = adaptive.Run(context.Background(), square(t), adaptive.WithSolver(dualless{solver.NewSimplex()}))
	require.NoError(t, err)
	assert.Equal(t, adaptive.StatusConverged, res.Status)
	assert.NoError(t, res.Warning())
}

func TestRun_IdempotentFromFinalSet(t *testing.T) {
	p := sparseGrid(t)
	first, err := adaptive.Run(context.Background(), p)
	require.NoError(t, err)

	again, err := adaptive.Run(context.Background(), p, adaptive.WithStartSet(first.MemberIndices...))
	require.NoError(t, err)

	assert.Equal(t, adaptive.StatusConverged, again.Status)
	assert.Equal(t, 1, again.Iterations)
	assert.Equal(t, first.MemberIndices, again.MemberIndices)
	assert.InDelta(t, first.Volume, again.Volume, tol)
}

func TestRun_IterationLimit(t *testing.T) {
	res, err := adaptive.Run(context.Background(), sparseGrid(t), adaptive.WithMaxIterations(1))
	require.NoError(t, err)

	assert.Equal(t, adaptive.StatusIterationLimit, res.Status)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, []int{0}, res.MemberIndices) // last solved set
	assert.InDelta(t, 50.0, res.Volume, tol)
	assert.Len(t, res.Pending, 1)
	assert.NotContains(t, res.MemberIndices, res.Pending[0])
	assert.ErrorIs(t, res.Warning(), adaptive.ErrNonConvergence)
}

func TestRun_TimeBudget(t *testing.T) {
	res, err := adaptive.Run(context.Background(), sparseGrid(t), adaptive.WithTimeBudget(time.Nanosecond))
	require.NoError(t, err)

	assert.Equal(t, adaptive.StatusBudgetExhausted, res.Status)
	assert.Equal(t, 1, res.Iterations)
	assert.ErrorIs(t, res.Warning(), adaptive.ErrNonConvergence)
}

// cancelAfter cancels the run's context after the n-th iteration.
type cancelAfter struct {
	n      int
	cancel context.CancelFunc
	seen   []adaptive.IterationStats
	runs   int
}

func (c *cancelAfter) ObserveIteration(s adaptive.IterationStats) {
	c.seen = append(c.seen, s)
	if len(c.seen) == c.n {
		c.cancel()
	}
}

func (c *cancelAfter) ObserveRun(*adaptive.Result) { c.runs++ }

func TestRun_ContextCanceledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	obs := &cancelAfter{n: 1, cancel: cancel}

	res, err := adaptive.Run(ctx, sparseGrid(t), adaptive.WithObserver(obs))
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)

	assert.Equal(t, adaptive.StatusInterrupted, res.Status)
	assert.Equal(t, 1, res.Iterations)
	assert.InDelta(t, 50.0, res.Volume, tol)
	assert.ErrorIs(t, res.Warning(), adaptive.ErrNonConvergence)
	assert.Len(t, obs.seen, 1)
	assert.Zero(t, obs.runs)
}

func TestRun_ContextCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := adaptive.Run(ctx, twoNode(t))
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestRun_StartSet(t *testing.T) {
	// Empty start with a load: the first LP is infeasible.
	res, err := adaptive.Run(context.Background(), twoNode(t), adaptive.WithStartSet())
	require.ErrorIs(t, err, lp.ErrLPInfeasible)
	assert.Nil(t, res)

	_, err = adaptive.Run(context.Background(), twoNode(t), adaptive.WithStartSet(3))
	require.ErrorIs(t, err, adaptive.ErrInvalidStartSet)

	// An explicit start set overrides the Initial flags: the bottom chord and
	// the tie to the upper support already form the optimum.
	res, err = adaptive.Run(context.Background(), square(t), adaptive.WithStartSet(1, 3))
	require.NoError(t, err)
	assert.Equal(t, adaptive.StatusConverged, res.Status)
	assert.Subset(t, res.MemberIndices, []int{1, 3})
	assert.InDelta(t, 3.0, res.History[0].Volume, tol)
	assert.InDelta(t, 3.0, res.Volume, tol)
}

func TestRun_ObserverSeesEveryIteration(t *testing.T) {
	obs := &cancelAfter{n: -1, cancel: func() {}}
	res, err := adaptive.Run(context.Background(), sparseGrid(t), adaptive.WithObserver(obs))
	require.NoError(t, err)

	assert.Equal(t, res.History, obs.seen)
	assert.Equal(t, 1, obs.runs)
	for _, s := range obs.seen {
		assert.Equal(t, res.RunID, s.RunID)
	}
}

func TestRun_Tracing(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { require.NoError(t, tp.Shutdown(context.Background())) }()

	res, err := adaptive.Run(context.Background(), sparseGrid(t), adaptive.WithTracerProvider(tp))
	require.NoError(t, err)

	var run sdktrace.ReadOnlySpan
	var iterations []sdktrace.ReadOnlySpan
	for _, s := range rec.Ended() {
		switch s.Name() {
		case "layopt.Run":
			run = s
		case "layopt.Iteration":
			iterations = append(iterations, s)
		}
	}
	require.NotNil(t, run)
	require.Len(t, iterations, res.Iterations)
	for _, s := range iterations {
		assert.Equal(t, run.SpanContext().SpanID(), s.Parent().SpanID())
		assert.Equal(t, run.SpanContext().TraceID(), s.SpanContext().TraceID())
	}
}

func TestRun_Logging(t *testing.T) {
	logCore, logs := observer.New(zap.InfoLevel)
	res, err := adaptive.Run(context.Background(), sparseGrid(t), adaptive.WithLogger(zap.New(logCore)))
	require.NoError(t, err)

	iters := logs.FilterMessage("iteration").All()
	require.Len(t, iters, res.Iterations)
	for i, e := range iters {
		fields := e.ContextMap()
		assert.Equal(t, res.RunID, fields["run_id"])
		assert.EqualValues(t, i+1, fields["iteration"])
	}
	assert.Equal(t, 1, logs.FilterMessage("layout run finished").Len())

	// The cap is reported at Warn.
	logCore, logs = observer.New(zap.WarnLevel)
	_, err = adaptive.Run(context.Background(), sparseGrid(t),
		adaptive.WithLogger(zap.New(logCore)), adaptive.WithMaxIterations(1))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("iteration limit reached").Len())
}

func TestRun_FullActivationReachesSameVolume(t *testing.T) {
	slow, err := adaptive.Run(context.Background(), sparseGrid(t))
	require.NoError(t, err)
	fast, err := adaptive.Run(context.Background(), sparseGrid(t),
		adaptive.WithActivationFraction(1), adaptive.WithPoolFraction(1), adaptive.WithWorkers(2))
	require.NoError(t, err)

	assert.Equal(t, adaptive.StatusConverged, fast.Status)
	assert.GreaterOrEqual(t, fast.History[0].Activated, slow.History[0].Activated)
	assert.InDelta(t, slow.Volume, fast.Volume, 1e-3)
}

func TestOptions_Panics(t *testing.T) {
	assert.Panics(t, func() { adaptive.WithMaxIterations(0) })
	assert.Panics(t, func() { adaptive.WithTolerance(1) })
	assert.Panics(t, func() { adaptive.WithTolerance(0.5) })
	assert.Panics(t, func() { adaptive.WithActivationFraction(0) })
	assert.Panics(t, func() { adaptive.WithActivationFraction(1.5) })
	assert.Panics(t, func() { adaptive.WithPoolFraction(-1) })
	assert.Panics(t, func() { adaptive.WithWorkers(0) })
	assert.Panics(t, func() { adaptive.WithTimeBudget(0) })
	assert.Panics(t, func() { adaptive.WithSolver(nil) })
	assert.Panics(t, func() { adaptive.WithLogger(nil) })
	assert.Panics(t, func() { adaptive.WithObserver(nil) })
	assert.Panics(t, func() { adaptive.WithTracerProvider(nil) })
	assert.NotPanics(t, func() { adaptive.WithTolerance(1.0001) })
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "converged", adaptive.StatusConverged.String())
	assert.Equal(t, "iteration-limit", adaptive.StatusIterationLimit.String())
	assert.Equal(t, "budget-exhausted", adaptive.StatusBudgetExhausted.String())
	assert.Equal(t, "interrupted", adaptive.StatusInterrupted.String())
	assert.Equal(t, "uncertified", adaptive.StatusUncertified.String())
	assert.Equal(t, "Status(9)", adaptive.Status(9).String())
}
