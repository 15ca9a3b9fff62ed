package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunCollector exposes simulation-loop metrics: the engine never sees these,
// they belong to whichever binary drives the stepping.
type RunCollector struct {
	gatherer prometheus.Gatherer

	StepDuration prometheus.Histogram
	StepsTotal   prometheus.Counter
	ActiveAgents prometheus.Gauge
}

// NewRunCollector registers run metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	stepHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "run_step_duration_seconds",
		Help:    "Wall-clock duration of one simulation step.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})
	stepHistogram, err := registerHistogram(reg, stepHistogram, "run_step_duration_seconds")
	if err != nil {
		return nil, err
	}

	steps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "run_steps_total",
		Help: "Cumulative number of simulation steps executed.",
	})
	steps, err = registerCounter(reg, steps, "run_steps_total")
	if err != nil {
		return nil, err
	}

	agents := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "run_active_agents",
		Help: "Number of agents alive in the driven space.",
	})
	agents, err = registerGauge(reg, agents, "run_active_agents")
	if err != nil {
		return nil, err
	}

	return &RunCollector{
		gatherer:     gatherer,
		StepDuration: stepHistogram,
		StepsTotal:   steps,
		ActiveAgents: agents,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *RunCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveStep records one completed step and its duration.
func (c *RunCollector) ObserveStep(d time.Duration) {
	if c == nil {
		return
	}
	c.StepDuration.Observe(d.Seconds())
	c.StepsTotal.Inc()
}

// SetActiveAgents updates the population gauge.
func (c *RunCollector) SetActiveAgents(count int) {
	if c == nil || c.ActiveAgents == nil {
		return
	}
	c.ActiveAgents.Set(float64(count))
}
