package model

// Agent is the minimal capability every simulated entity carries: a unique,
// dense, stable integer identity. All other fields belong to the simulation
// and are never touched by the space engine.
type Agent interface {
	ID() int
}

// DiscreteAgent is an agent resident on a node of a graph space. Positions
// are 1-based node indices.
type DiscreteAgent interface {
	Agent
	Position() int
	MoveTo(node int)
}

// ContinuousAgent is an agent resident at a floating-point coordinate of a
// continuous space, with an optional velocity of the same dimensionality.
type ContinuousAgent interface {
	Agent
	Position() Vec
	SetPosition(pos Vec)
	Velocity() Vec
	SetVelocity(vel Vec)
}

// Kinded lets mixed-population simulations declare an agent category for
// cross-category pair enumeration. Agents that do not implement it fall back
// to their dynamic type name.
type Kinded interface {
	Kind() string
}

// GraphAgent is the embeddable base record for graph-space agents. Simulations
// extend it by composition:
//
//	type Walker struct {
//		model.GraphAgent
//		Energy float64
//	}
type GraphAgent struct {
	AgentID int
	Node    int
}

// ID returns the agent's identity.
func (a *GraphAgent) ID() int { return a.AgentID }

// Position returns the node index the agent currently occupies.
func (a *GraphAgent) Position() int { return a.Node }

// MoveTo overwrites the cached node index. Only spaces call this; simulations
// move agents through the space so the occupancy index stays consistent.
func (a *GraphAgent) MoveTo(node int) { a.Node = node }

// SpatialAgent is the embeddable base record for continuous-space agents.
type SpatialAgent struct {
	AgentID int
	Pos     Vec
	Vel     Vec
}

// ID returns the agent's identity.
func (a *SpatialAgent) ID() int { return a.AgentID }

// Position returns the agent's cached coordinate.
func (a *SpatialAgent) Position() Vec { return a.Pos }

// SetPosition overwrites the cached coordinate. Only spaces call this.
func (a *SpatialAgent) SetPosition(pos Vec) { a.Pos = pos }

// Velocity returns the agent's velocity, which may be nil for agents that
// never move by integration.
func (a *SpatialAgent) Velocity() Vec { return a.Vel }

// SetVelocity overwrites the velocity vector.
func (a *SpatialAgent) SetVelocity(vel Vec) { a.Vel = vel }
