package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/agentspace/core"
)

var _ core.Recorder = (*SpaceCollector)(nil)

// SpaceCollector bundles Prometheus metrics for a space engine instance and
// implements core.Recorder so a space can be instrumented without the engine
// depending on Prometheus. Prometheus primitives are concurrency-safe, so
// one collector may serve several single-owner space instances at once.
type SpaceCollector struct {
	gatherer prometheus.Gatherer

	AgentsAdded     prometheus.Counter
	AgentsRemoved   prometheus.Counter
	AgentMoves      prometheus.Counter
	Queries         *prometheus.CounterVec
	QueryCandidates prometheus.Histogram
	Pairs           *prometheus.CounterVec
	Collisions      *prometheus.CounterVec
	Population      prometheus.Gauge
}

// NewSpaceCollector registers the space metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSpaceCollector(reg prometheus.Registerer) (*SpaceCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	added, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "space_agents_added_total",
		Help: "Total number of agents inserted into the occupancy index.",
	}), "space_agents_added_total")
	if err != nil {
		return nil, err
	}
	removed, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "space_agents_removed_total",
		Help: "Total number of agents removed from the occupancy index.",
	}), "space_agents_removed_total")
	if err != nil {
		return nil, err
	}
	moves, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "space_agent_moves_total",
		Help: "Total number of agent movement operations.",
	}), "space_agent_moves_total")
	if err != nil {
		return nil, err
	}

	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "space_queries_total",
		Help: "Total number of neighbor queries served, labeled by search kind.",
	}, []string{"search"})
	queries, err = registerCounterVec(reg, queries, "space_queries_total")
	if err != nil {
		return nil, err
	}

	candidates, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "space_query_candidates",
		Help:    "Candidate ids gathered per neighbor query before filtering.",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	}), "space_query_candidates")
	if err != nil {
		return nil, err
	}

	pairs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "space_pairs_total",
		Help: "Total number of interacting pairs enumerated, labeled by strategy.",
	}, []string{"strategy"})
	pairs, err = registerCounterVec(reg, pairs, "space_pairs_total")
	if err != nil {
		return nil, err
	}

	collisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "space_collisions_total",
		Help: "Total number of collision resolutions, labeled by outcome.",
	}, []string{"outcome"})
	collisions, err = registerCounterVec(reg, collisions, "space_collisions_total")
	if err != nil {
		return nil, err
	}

	population, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "space_population",
		Help: "Current number of agents registered in the space.",
	}), "space_population")
	if err != nil {
		return nil, err
	}

	return &SpaceCollector{
		gatherer:        gatherer,
		AgentsAdded:     added,
		AgentsRemoved:   removed,
		AgentMoves:      moves,
		Queries:         queries,
		QueryCandidates: candidates,
		Pairs:           pairs,
		Collisions:      collisions,
		Population:      population,
	}, nil
}

//
// ---------- core.Recorder implementation ----------
//

// AgentAdded counts an occupancy insertion.
func (c *SpaceCollector) AgentAdded() {
	c.AgentsAdded.Inc()
	c.Population.Inc()
}

// AgentRemoved counts an occupancy removal.
func (c *SpaceCollector) AgentRemoved() {
	c.AgentsRemoved.Inc()
	c.Population.Dec()
}

// AgentMoved counts a movement operation.
func (c *SpaceCollector) AgentMoved() {
	c.AgentMoves.Inc()
}

// QueryServed counts a neighbor query and observes its candidate set size.
func (c *SpaceCollector) QueryServed(search string, candidates int) {
	c.Queries.WithLabelValues(search).Inc()
	c.QueryCandidates.Observe(float64(candidates))
}

// PairsEnumerated counts the pairs produced by one enumeration.
func (c *SpaceCollector) PairsEnumerated(strategy string, count int) {
	c.Pairs.WithLabelValues(strategy).Add(float64(count))
}

// CollisionResolved counts a collision resolution by outcome.
func (c *SpaceCollector) CollisionResolved(applied bool) {
	outcome := "skipped"
	if applied {
		outcome = "applied"
	}
	c.Collisions.WithLabelValues(outcome).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SpaceCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

//
// ---------- Register-or-reuse helpers ----------
//

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
