// Package core implements the spatial engine for agent-based simulations: a
// bidirectional agent↔position index over graph and continuous topologies,
// with neighbor queries, pair enumeration and two-body collision resolution.
//
// Every space instance is a self-contained, single-owner mutable structure.
// No internal locking is provided; concurrent mutation is undefined behavior.
// Query results are views over the occupancy index and must not be retained
// across a mutating call.
package core

// Kind tags the concrete topology backing a space.
type Kind int

const (
	// KindGraph is a discrete space over the nodes of a graph.
	KindGraph Kind = iota
	// KindContinuous is a bounded metric space accelerated by a uniform grid.
	KindContinuous
)

func (k Kind) String() string {
	switch k {
	case KindGraph:
		return "graph"
	case KindContinuous:
		return "continuous"
	default:
		return "unknown"
	}
}

// SearchKind selects the proximity-search semantics: an overestimating cell
// union, or the same union filtered to true metric distance.
type SearchKind int

const (
	// SearchApproximate returns a superset of the agents within the radius,
	// overshooting by at most one grid spacing. On graph spaces radius-exact
	// and approximate coincide, so the kinds are interchangeable there.
	SearchApproximate SearchKind = iota
	// SearchExact filters the approximate result by true Euclidean distance.
	SearchExact
)

func (s SearchKind) String() string {
	switch s {
	case SearchApproximate:
		return "approximate"
	case SearchExact:
		return "exact"
	default:
		return "unknown"
	}
}

func (s SearchKind) valid() bool {
	return s == SearchApproximate || s == SearchExact
}

// NeighborMode selects which edge directions count as adjacency on a graph
// space. On undirected graphs all modes coincide. Grid topologies accept only
// NeighborDefault and NeighborAll.
type NeighborMode int

const (
	// NeighborDefault follows outgoing edges on a directed graph and all
	// edges on an undirected one.
	NeighborDefault NeighborMode = iota
	// NeighborIn follows incoming edges only.
	NeighborIn
	// NeighborOut follows outgoing edges only.
	NeighborOut
	// NeighborAll follows the union of incoming and outgoing edges.
	NeighborAll
)

func (m NeighborMode) String() string {
	switch m {
	case NeighborDefault:
		return "default"
	case NeighborIn:
		return "in"
	case NeighborOut:
		return "out"
	case NeighborAll:
		return "all"
	default:
		return "unknown"
	}
}

func (m NeighborMode) valid() bool {
	switch m {
	case NeighborDefault, NeighborIn, NeighborOut, NeighborAll:
		return true
	default:
		return false
	}
}

// Space is the capability set shared by every space kind, parameterised by
// the position type P: node indices for graph spaces, coordinates for
// continuous spaces (where positions enumerate as grid-cell centers).
// Dispatch on the concrete kind goes through the explicit Kind tag.
type Space[P any] interface {
	Kind() Kind
	Positions() []P
	IDsInPosition(pos P) []int
	NearbyPositions(pos P, r int, mode NeighborMode) ([]P, error)
	NearbyIDs(pos P, r float64, search SearchKind) ([]int, error)
}

// Recorder receives engine events for instrumentation. The engine itself
// stays pure: a Recorder implementation must not mutate the space and must
// tolerate being called from whichever goroutine owns the space instance.
// The default recorder drops everything.
type Recorder interface {
	AgentAdded()
	AgentRemoved()
	AgentMoved()
	QueryServed(search string, candidates int)
	PairsEnumerated(strategy string, count int)
	CollisionResolved(applied bool)
}

type noopRecorder struct{}

func (noopRecorder) AgentAdded()                 {}
func (noopRecorder) AgentRemoved()               {}
func (noopRecorder) AgentMoved()                 {}
func (noopRecorder) QueryServed(string, int)     {}
func (noopRecorder) PairsEnumerated(string, int) {}
func (noopRecorder) CollisionResolved(bool)      {}

// NoopRecorder returns the recorder used when none is configured.
func NoopRecorder() Recorder { return noopRecorder{} }
