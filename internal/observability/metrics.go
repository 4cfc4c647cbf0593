// SPDX-License-Identifier: MIT

// Package observability exports layout runs as Prometheus metrics.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katalvlaran/layopt/adaptive"
)

// Collector bundles the layout metrics. It implements adaptive.Observer, so
// it plugs into a run with adaptive.WithObserver.
type Collector struct {
	gatherer prometheus.Gatherer

	Runs           *prometheus.CounterVec
	Iterations     prometheus.Counter
	Activated      prometheus.Counter
	SolveSeconds   prometheus.Histogram
	CheckSeconds   prometheus.Histogram
	ActiveMembers  prometheus.Gauge
	Volume         prometheus.Gauge
	MaxUtilization prometheus.Gauge
}

var _ adaptive.Observer = (*Collector)(nil)

// NewCollector registers the layout metrics against reg, defaulting to the
// global Prometheus registry when nil. Registering twice on the same
// registry returns collectors bound to the existing metrics.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "layopt_runs_total",
		Help: "Completed layout runs, labeled by final status.",
	}, []string{"status"}), "layopt_runs_total")
	if err != nil {
		return nil, err
	}
	iterations, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "layopt_iterations_total",
		Help: "Solved adaptive iterations.",
	}), "layopt_iterations_total")
	if err != nil {
		return nil, err
	}
	activated, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "layopt_members_activated_total",
		Help: "Members admitted to the active set by the violation check.",
	}), "layopt_members_activated_total")
	if err != nil {
		return nil, err
	}
	solve, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "layopt_lp_solve_seconds",
		Help:    "Wall time of one LP solve.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	}), "layopt_lp_solve_seconds")
	if err != nil {
		return nil, err
	}
	check, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "layopt_check_seconds",
		Help:    "Wall time of one violation check.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}), "layopt_check_seconds")
	if err != nil {
		return nil, err
	}
	active, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "layopt_active_members",
		Help: "Members in the most recently solved LP.",
	}), "layopt_active_members")
	if err != nil {
		return nil, err
	}
	volume, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "layopt_volume",
		Help: "Structural volume of the most recently solved LP.",
	}), "layopt_volume")
	if err != nil {
		return nil, err
	}
	maxUtil, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "layopt_max_utilization",
		Help: "Largest utilization among inactive members in the last check.",
	}), "layopt_max_utilization")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		Runs:           runs,
		Iterations:     iterations,
		Activated:      activated,
		SolveSeconds:   solve,
		CheckSeconds:   check,
		ActiveMembers:  active,
		Volume:         volume,
		MaxUtilization: maxUtil,
	}, nil
}

// ObserveIteration records one iteration.
func (c *Collector) ObserveIteration(s adaptive.IterationStats) {
	if c == nil {
		return
	}
	c.Iterations.Inc()
	c.Activated.Add(float64(s.Activated))
	c.SolveSeconds.Observe(s.SolveTime.Seconds())
	c.CheckSeconds.Observe(s.CheckTime.Seconds())
	c.ActiveMembers.Set(float64(s.Active))
	c.Volume.Set(s.Volume)
	c.MaxUtilization.Set(s.MaxUtilization)
}

// ObserveRun counts a finished run under its status.
func (c *Collector) ObserveRun(res *adaptive.Result) {
	if c == nil || res == nil {
		return
	}
	c.Runs.WithLabelValues(res.Status.String()).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// register adds col to reg, returning the already registered collector of the
// same type when there is one.
func register[T prometheus.Collector](reg prometheus.Registerer, col T, name string) (T, error) {
	if err := reg.Register(col); err != nil {
		var zero T
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return zero, err
	}
	return col, nil
}
