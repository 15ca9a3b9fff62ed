package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/agentspace/model"
)

// MassFunc selects an agent's mass for collision resolution. A nil selector
// assigns unit mass to both partners. math.Inf(1) marks a fixed reflector.
type MassFunc func(a model.ContinuousAgent) float64

// ElasticCollision resolves a two-body elastic collision between a and b in
// place, updating their velocities. It is independent of any space and works
// on 2-D state only.
//
// The boolean reports whether a collision was applied. Benign rejections
// (false, nil): both agents at the identical position, both masses infinite,
// or the pair receding rather than approaching. The receding check prevents a
// second collision event from firing for an already-separating pair. An
// infinite-mass agent acts as a fixed reflector with a doubled momentum
// transfer coefficient; it must have exactly zero velocity, otherwise a
// precondition violation is returned.
func ElasticCollision(a, b model.ContinuousAgent, mass MassFunc) (bool, error) {
	v1, v2 := a.Velocity(), b.Velocity()
	x1, x2 := a.Position(), b.Position()
	if len(x1) != 2 || len(x2) != 2 || len(v1) != 2 || len(v2) != 2 {
		return false, fmt.Errorf("%w: got %d-dimensional state", ErrNot2D, len(x1))
	}

	m1, m2 := 1.0, 1.0
	if mass != nil {
		m1, m2 = mass(a), mass(b)
	}

	r1 := x1.Sub(x2)
	r2 := x2.Sub(x1)
	n := r1.Dot(r1)

	switch {
	case math.IsInf(m1, 1) && math.IsInf(m2, 1):
		return false, nil
	case math.IsInf(m1, 1):
		if !v1.IsZero() {
			return false, fmt.Errorf("%w: agent %d", ErrMovingReflector, a.ID())
		}
		if n == 0 || r1.Dot(v2) <= 0 {
			return false, nil
		}
		b.SetVelocity(v2.Sub(r2.Scale(2 * v2.Dot(r2) / n)))
		return true, nil
	case math.IsInf(m2, 1):
		if !v2.IsZero() {
			return false, fmt.Errorf("%w: agent %d", ErrMovingReflector, b.ID())
		}
		if n == 0 || r2.Dot(v1) <= 0 {
			return false, nil
		}
		a.SetVelocity(v1.Sub(r1.Scale(2 * v1.Dot(r1) / n)))
		return true, nil
	}

	if n == 0 {
		return false, nil
	}
	// Approach check: relative velocity must point along the separation.
	if v1.Sub(v2).Dot(r2) <= 0 {
		return false, nil
	}

	f1 := 2 * m2 / (m1 + m2)
	f2 := 2 * m1 / (m1 + m2)
	a.SetVelocity(v1.Sub(r1.Scale(f1 * v1.Sub(v2).Dot(r1) / n)))
	b.SetVelocity(v2.Sub(r2.Scale(f2 * v2.Sub(v1).Dot(r2) / n)))
	return true, nil
}
