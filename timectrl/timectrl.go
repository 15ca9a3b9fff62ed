// Package timectrl drives simulation time for collaborators that step a
// space engine: it owns the tick cadence and step counter so the engine
// itself stays free of any notion of time.
package timectrl

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SimClock exposes read access to simulation time, so data-collection and
// reporting components can depend on an abstraction rather than the concrete
// controller.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
	// Step returns the number of completed simulation steps.
	Step() int
}

// Mode describes how the Controller advances simulation time.
type Mode int

const (
	// RealTime paces steps against wall-clock time, one per tick interval.
	RealTime Mode = iota
	// Accelerated advances as fast as the loop can run while still stepping
	// simulation time by the tick interval.
	Accelerated
)

// Controller advances simulation time in fixed ticks and notifies listeners
// once per step. It implements SimClock.
type Controller struct {
	mu      sync.RWMutex
	start   time.Time
	tick    time.Duration
	mode    Mode
	current time.Time
	step    int

	listeners []func(step int, simTime time.Time) error
	limiter   *rate.Limiter
}

// New constructs a controller starting at the given simulation time.
func New(start time.Time, tick time.Duration, mode Mode) *Controller {
	c := &Controller{
		start:   start,
		tick:    tick,
		mode:    mode,
		current: start,
	}
	if mode == RealTime {
		c.limiter = rate.NewLimiter(rate.Every(tick), 1)
	}
	return c
}

// Now returns the current simulation time. Implements SimClock.
func (c *Controller) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Step returns the number of completed steps. Implements SimClock.
func (c *Controller) Step() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.step
}

// Tick returns the simulation time advanced per step.
func (c *Controller) Tick() time.Duration { return c.tick }

// AddListener registers a callback invoked once per step, in registration
// order. A listener error aborts the run and propagates to the caller of
// Run; listeners are where the simulation's per-step logic lives, and a
// space engine error means the run must stop rather than continue on
// potentially corrupted occupancy state.
func (c *Controller) AddListener(fn func(step int, simTime time.Time) error) {
	c.listeners = append(c.listeners, fn)
}

// Run advances the controller by the given number of steps, blocking until
// completion, listener failure, or context cancellation. In RealTime mode
// steps are paced by a rate limiter; in Accelerated mode they run back to
// back.
func (c *Controller) Run(ctx context.Context, steps int) error {
	for i := 0; i < steps; i++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		c.mu.Lock()
		c.step++
		c.current = c.current.Add(c.tick)
		step, simTime := c.step, c.current
		c.mu.Unlock()

		for _, fn := range c.listeners {
			if err := fn(step, simTime); err != nil {
				return err
			}
		}
	}
	return nil
}
