// SPDX-License-Identifier: MIT

package adaptive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/katalvlaran/layopt/core"
	"github.com/katalvlaran/layopt/lp"
	"github.com/katalvlaran/layopt/violation"
)

const tracerName = "github.com/katalvlaran/layopt/adaptive"

// Run grows the active set of p until no inactive member violates the
// optimality criterion.
//
// On an LP failure or context cancellation Run returns the last completed
// Result (nil if no iteration completed) together with the error.
// Errors: ErrInvalidStartSet, lp.ErrLPInfeasible, lp.ErrLPUnbounded, solver
// and context errors.
func Run(ctx context.Context, p *core.Problem, opts ...Option) (*Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	active, err := startSet(p, cfg)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	runID := uuid.NewString()
	log := cfg.logger.With(zap.String("run_id", runID))
	tracer := cfg.tracer.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, "layopt.Run", trace.WithAttributes(
		attribute.String("layopt.run_id", runID),
		attribute.Int("layopt.nodes", p.NodeCount()),
		attribute.Int("layopt.members", p.MemberCount()),
		attribute.Int("layopt.load_cases", p.LoadCaseCount()),
	))
	defer span.End()

	log.Info("layout run started",
		zap.Int("nodes", p.NodeCount()),
		zap.Int("members", p.MemberCount()),
		zap.Int("load_cases", p.LoadCaseCount()),
		zap.Int("start_active", len(p.ActiveIndices(active))),
	)

	started := time.Now()
	var (
		res     *Result
		history []IterationStats
	)
	for it := 1; ; it++ {
		if err = ctx.Err(); err != nil {
			return fail(span, log, res, fmt.Errorf("Run: before iteration %d: %w", it, err))
		}

		sol, rep, stats, err := iterate(ctx, tracer, p, active, it, cfg)
		if err != nil {
			return fail(span, log, res, fmt.Errorf("Run: iteration %d: %w", it, err))
		}
		stats.RunID = runID
		history = append(history, stats)

		log.Info("iteration",
			zap.Int("iteration", it),
			zap.Int("active", stats.Active),
			zap.Float64("volume", stats.Volume),
			zap.Int("activated", stats.Activated),
			zap.Int("violating", stats.Violating),
			zap.Float64("max_utilization", stats.MaxUtilization),
			zap.Bool("duals_recovered", stats.DualsRecovered),
			zap.Duration("duration", stats.SolveTime+stats.CheckTime),
		)
		if cfg.observer != nil {
			cfg.observer.ObserveIteration(stats)
		}

		res = newResult(runID, p, sol, rep, it, history)

		if rep.Converged() {
			if !stats.DualsRecovered && rep.Inactive > 0 {
				res.Status = StatusUncertified
				log.Warn("solver returned no duals, convergence not certified",
					zap.Int("iteration", it),
					zap.Int("inactive", rep.Inactive))
				break
			}
			res.Status = StatusConverged
			break
		}
		if it >= cfg.maxIter {
			res.Status = StatusIterationLimit
			log.Warn("iteration limit reached",
				zap.Int("iterations", it),
				zap.Int("pending", len(res.Pending)))
			break
		}
		if cfg.budget > 0 && time.Since(started) >= cfg.budget {
			res.Status = StatusBudgetExhausted
			log.Warn("time budget exhausted",
				zap.Int("iterations", it),
				zap.Duration("budget", cfg.budget),
				zap.Int("pending", len(res.Pending)))
			break
		}
	}
	if res.Status == StatusConverged {
		res.Pending = nil
	}

	span.SetAttributes(
		attribute.String("layopt.status", res.Status.String()),
		attribute.Int("layopt.iterations", res.Iterations),
		attribute.Float64("layopt.volume", res.Volume),
	)
	log.Info("layout run finished",
		zap.Stringer("status", res.Status),
		zap.Int("iterations", res.Iterations),
		zap.Int("active", len(res.MemberIndices)),
		zap.Float64("volume", res.Volume),
		zap.Duration("elapsed", time.Since(started)),
	)
	if cfg.observer != nil {
		cfg.observer.ObserveRun(res)
	}

	return res, nil
}

// iterate solves the LP over the current active set and runs one check,
// which may set flags in active.
func iterate(
	ctx context.Context,
	tracer trace.Tracer,
	p *core.Problem,
	active []bool,
	it int,
	cfg config,
) (*lp.Solution, violation.Report, IterationStats, error) {
	members := p.ActiveIndices(active)
	ctx, span := tracer.Start(ctx, "layopt.Iteration", trace.WithAttributes(
		attribute.Int("layopt.iteration", it),
		attribute.Int("layopt.active", len(members)),
	))
	defer span.End()

	stats := IterationStats{Iteration: it, Active: len(members)}

	t0 := time.Now()
	sol, err := lp.Solve(ctx, cfg.solver, p, members)
	stats.SolveTime = time.Since(t0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lp solve failed")
		return nil, violation.Report{}, stats, err
	}
	stats.Volume = sol.Volume
	stats.DualsRecovered = sol.DualsRecovered

	t1 := time.Now()
	rep, err := violation.Check(ctx, p, active, sol.Duals, cfg.check)
	stats.CheckTime = time.Since(t1)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "violation check failed")
		return nil, violation.Report{}, stats, err
	}
	stats.Activated = len(rep.Activated)
	stats.Violating = rep.Violating
	stats.Inactive = rep.Inactive
	stats.MaxUtilization = rep.MaxUtilization

	span.SetAttributes(
		attribute.Float64("layopt.volume", sol.Volume),
		attribute.Int("layopt.activated", stats.Activated),
		attribute.Bool("layopt.duals_recovered", sol.DualsRecovered),
	)
	return sol, rep, stats, nil
}

// startSet builds the initial activation array.
func startSet(p *core.Problem, cfg config) ([]bool, error) {
	if !cfg.startGiven {
		return p.InitialActivation(), nil
	}
	active := make([]bool, p.MemberCount())
	for _, k := range cfg.start {
		if k < 0 || k >= len(active) {
			return nil, fmt.Errorf("startSet: index %d of %d members: %w", k, len(active), ErrInvalidStartSet)
		}
		active[k] = true
	}
	return active, nil
}

func newResult(runID string, p *core.Problem, sol *lp.Solution, rep violation.Report, it int, history []IterationStats) *Result {
	res := &Result{
		RunID:          runID,
		Status:         StatusInterrupted,
		Iterations:     it,
		Nodes:          p.Nodes(),
		MemberIndices:  sol.Members,
		Members:        make([]core.Member, len(sol.Members)),
		Areas:          sol.Areas,
		Forces:         sol.Forces,
		Duals:          sol.Duals,
		DualsRecovered: sol.DualsRecovered,
		Volume:         sol.Volume,
		MaxUtilization: rep.MaxUtilization,
		Pending:        rep.Activated,
		History:        append([]IterationStats(nil), history...),
	}
	for i, k := range sol.Members {
		res.Members[i] = p.Member(k)
	}
	return res
}

func fail(span trace.Span, log *zap.Logger, res *Result, err error) (*Result, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.Error("layout run failed", zap.Error(err))
	return res, err
}
