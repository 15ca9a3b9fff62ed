// Command simulator is a demonstration collaborator for the space engine. It
// owns what the engine deliberately does not (scheduling, randomness,
// configuration, logging, metrics, tracing) and drives the engine purely
// through its query/mutation contracts.
//
// Two scenarios are built in: a billiards run on a periodic continuous space
// (velocity integration, nearest-pair enumeration, elastic collisions) and a
// random walk on an undirected ring graph with vertex churn.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/agentspace/core"
	"github.com/signalsfoundry/agentspace/internal/logging"
	"github.com/signalsfoundry/agentspace/internal/observability"
	"github.com/signalsfoundry/agentspace/model"
	"github.com/signalsfoundry/agentspace/timectrl"
)

type config struct {
	scenario    string
	agents      int
	steps       int
	dt          float64
	radius      float64
	extent      float64
	spacing     float64
	periodic    bool
	seed        int64
	realtime    bool
	tick        time.Duration
	metricsAddr string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.scenario, "scenario", "billiards", "scenario to run: billiards or graphwalk")
	flag.IntVar(&cfg.agents, "agents", 50, "number of agents")
	flag.IntVar(&cfg.steps, "steps", 200, "number of simulation steps")
	flag.Float64Var(&cfg.dt, "dt", 0.1, "timestep for velocity integration")
	flag.Float64Var(&cfg.radius, "radius", 1.0, "interaction radius")
	flag.Float64Var(&cfg.extent, "extent", 20.0, "side length of the square extent")
	flag.Float64Var(&cfg.spacing, "spacing", 1.0, "grid spacing (must divide the extent exactly)")
	flag.BoolVar(&cfg.periodic, "periodic", true, "wrap coordinates at the extent boundary")
	flag.Int64Var(&cfg.seed, "seed", 42, "random seed (all randomness lives in this binary)")
	flag.BoolVar(&cfg.realtime, "realtime", false, "pace steps against wall-clock time")
	flag.DurationVar(&cfg.tick, "tick", 100*time.Millisecond, "simulation time advanced per step")
	flag.StringVar(&cfg.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (empty: disabled)")
	flag.Parse()

	ctx := context.Background()
	runID := uuid.NewString()
	log := logging.WithRun(logging.NewFromEnv(), runID)

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	var rec core.Recorder = core.NoopRecorder()
	var run *observability.RunCollector
	if cfg.metricsAddr != "" {
		collector, err := observability.NewSpaceCollector(nil)
		if err != nil {
			log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		run, err = observability.NewRunCollector(nil)
		if err != nil {
			log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		rec = collector
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.metricsAddr, mux); err != nil {
				log.Warn(ctx, "metrics server stopped", logging.String("error", err.Error()))
			}
		}()
		log.Info(ctx, "metrics enabled", logging.String("addr", cfg.metricsAddr))
	}

	rng := rand.New(rand.NewSource(cfg.seed))

	log.Info(ctx, "starting simulation",
		logging.String("scenario", cfg.scenario),
		logging.Int("agents", cfg.agents),
		logging.Int("steps", cfg.steps),
	)

	switch cfg.scenario {
	case "billiards":
		err = runBilliards(ctx, cfg, rng, rec, run, log)
	case "graphwalk":
		err = runGraphWalk(ctx, cfg, rng, rec, run, log)
	default:
		err = fmt.Errorf("unknown scenario %q", cfg.scenario)
	}
	if err != nil {
		log.Error(ctx, "simulation failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "simulation complete")
}

// ball is a continuous-space agent extended with a simulation-owned mass.
type ball struct {
	model.SpatialAgent
	Mass float64
}

func runBilliards(ctx context.Context, cfg config, rng *rand.Rand, rec core.Recorder, run *observability.RunCollector, log logging.Logger) error {
	space, err := core.NewContinuousSpace(
		model.NewVec(cfg.extent, cfg.extent),
		core.WithSpacing(cfg.spacing),
		core.WithPeriodic(cfg.periodic),
		core.WithRecorder(rec),
	)
	if err != nil {
		return fmt.Errorf("build continuous space: %w", err)
	}

	balls := make([]*ball, cfg.agents)
	for i := range balls {
		angle := rng.Float64() * 2 * math.Pi
		b := &ball{
			SpatialAgent: model.SpatialAgent{
				AgentID: i + 1,
				Pos:     model.NewVec(rng.Float64()*cfg.extent, rng.Float64()*cfg.extent),
				Vel:     model.NewVec(math.Cos(angle), math.Sin(angle)),
			},
			Mass: 1 + rng.Float64(),
		}
		if err := space.AddAgent(b); err != nil {
			return fmt.Errorf("place ball %d: %w", b.AgentID, err)
		}
		balls[i] = b
	}
	massOf := func(a model.ContinuousAgent) float64 { return a.(*ball).Mass }
	tracer := observability.StepTracer()

	mode := timectrl.Accelerated
	if cfg.realtime {
		mode = timectrl.RealTime
	}
	tc := timectrl.New(time.Now().UTC(), cfg.tick, mode)
	tc.AddListener(func(step int, simTime time.Time) error {
		stepStart := time.Now()
		stepCtx, span := tracer.Start(ctx, "billiards.step")
		defer span.End()
		defer func() {
			run.ObserveStep(time.Since(stepStart))
			run.SetActiveAgents(space.NAgents())
		}()

		for _, b := range balls {
			if err := space.StepAgent(b, cfg.dt); err != nil {
				return fmt.Errorf("step ball %d: %w", b.AgentID, err)
			}
		}

		pairs, err := space.InteractingPairs(cfg.radius, core.PairingNearest)
		if err != nil {
			return fmt.Errorf("enumerate pairs: %w", err)
		}
		collisions := 0
		var pairErr error
		pairs.Each(func(a, b model.ContinuousAgent) bool {
			applied, err := core.ElasticCollision(a, b, massOf)
			if err != nil {
				pairErr = err
				return false
			}
			rec.CollisionResolved(applied)
			if applied {
				collisions++
			}
			return true
		})
		if pairErr != nil {
			return pairErr
		}
		span.SetAttributes(
			attribute.Int("step", step),
			attribute.Int("pairs", pairs.Len()),
			attribute.Int("collisions", collisions),
		)

		if step%50 == 0 {
			log.Info(stepCtx, "billiards step",
				logging.Int("step", step),
				logging.Int("pairs", pairs.Len()),
				logging.Int("collisions", collisions),
				logging.String("sim_time", simTime.Format(time.RFC3339)),
			)
		}
		return nil
	})
	return tc.Run(ctx, cfg.steps)
}

// walker is a graph-space agent; its only state beyond the base record is a
// restlessness weight used to pick moves.
type walker struct {
	model.GraphAgent
	Restlessness float64
}

func runGraphWalk(ctx context.Context, cfg config, rng *rand.Rand, rec core.Recorder, run *observability.RunCollector, log logging.Logger) error {
	nodes := cfg.agents * 2
	if nodes < 4 {
		nodes = 4
	}
	space, err := core.NewGraphSpace(nodes, false,
		core.WithGraphRecorder(rec),
		core.WithEvictionHook(func(a model.DiscreteAgent) {
			log.Info(ctx, "walker evicted", logging.Int("id", a.ID()))
		}),
	)
	if err != nil {
		return fmt.Errorf("build graph space: %w", err)
	}
	// Ring topology.
	for n := 1; n <= nodes; n++ {
		space.AddEdge(n, n%nodes+1)
	}

	for i := 0; i < cfg.agents; i++ {
		w := &walker{
			GraphAgent:   model.GraphAgent{AgentID: i + 1, Node: rng.Intn(nodes) + 1},
			Restlessness: rng.Float64(),
		}
		if err := space.AddAgent(w); err != nil {
			return fmt.Errorf("place walker %d: %w", w.AgentID, err)
		}
	}

	mode := timectrl.Accelerated
	if cfg.realtime {
		mode = timectrl.RealTime
	}
	tc := timectrl.New(time.Now().UTC(), cfg.tick, mode)
	tc.AddListener(func(step int, simTime time.Time) error {
		stepStart := time.Now()
		defer func() {
			run.ObserveStep(time.Since(stepStart))
			run.SetActiveAgents(space.NAgents())
		}()
		for _, id := range space.IDs() {
			w, ok := space.Agent(id)
			if !ok {
				continue
			}
			if rng.Float64() > w.(*walker).Restlessness {
				continue
			}
			neighbors, err := space.NearbyPositions(w.Position(), 1, core.NeighborDefault)
			if err != nil {
				return err
			}
			if len(neighbors) == 0 {
				continue
			}
			if err := space.MoveAgent(w, neighbors[rng.Intn(len(neighbors))]); err != nil {
				return err
			}
		}

		// Periodic vertex churn: drop a random node (evicting its
		// residents), then grow the ring back by one.
		if step%25 == 0 && space.NNodes() > 2 {
			victim := rng.Intn(space.NNodes()) + 1
			swapped, err := space.RemoveVertex(victim)
			if err != nil {
				return err
			}
			grown := space.AddVertex()
			space.AddEdge(grown, rng.Intn(grown-1)+1)
			log.Info(ctx, "vertex churn",
				logging.Int("step", step),
				logging.Int("removed", victim),
				logging.Int("renumbered_from", swapped),
				logging.Int("nodes", space.NNodes()),
				logging.Int("population", space.NAgents()),
			)
		}
		return nil
	})
	return tc.Run(ctx, cfg.steps)
}
