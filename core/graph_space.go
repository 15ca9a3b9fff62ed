package core

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/signalsfoundry/agentspace/model"
)

// GraphSpace is a discrete space whose positions are the nodes 1..N of a
// graph. Topology storage and traversal are delegated to gonum's simple
// graphs; the space owns the node/edge structure exclusively and keeps one
// ordered occupancy slot per node.
type GraphSpace struct {
	directed bool
	ug       *simple.UndirectedGraph
	dg       *simple.DirectedGraph

	// slots[i] holds the ids resident on node i+1.
	slots  [][]int
	agents map[int]model.DiscreteAgent

	rec     Recorder
	onEvict func(model.DiscreteAgent)
}

// GraphOption configures a GraphSpace.
type GraphOption func(*GraphSpace)

// WithGraphRecorder attaches an instrumentation recorder.
func WithGraphRecorder(rec Recorder) GraphOption {
	return func(s *GraphSpace) { s.rec = rec }
}

// WithEvictionHook registers a callback invoked after an agent has been
// removed from the space, for any reason. Simulations use it to detach the
// agent from bookkeeping the space knows nothing about; cascading removals
// during vertex deletion fire it once per evicted agent.
func WithEvictionHook(fn func(model.DiscreteAgent)) GraphOption {
	return func(s *GraphSpace) { s.onEvict = fn }
}

// NewGraphSpace builds a space over nodes 1..nodes with no edges. Edges are
// added afterwards through AddEdge.
func NewGraphSpace(nodes int, directed bool, opts ...GraphOption) (*GraphSpace, error) {
	if nodes < 0 {
		return nil, fmt.Errorf("%w: negative node count %d", ErrNodeRange, nodes)
	}
	s := &GraphSpace{
		directed: directed,
		slots:    make([][]int, nodes),
		agents:   make(map[int]model.DiscreteAgent),
		rec:      noopRecorder{},
	}
	if directed {
		s.dg = simple.NewDirectedGraph()
	} else {
		s.ug = simple.NewUndirectedGraph()
	}
	for n := 1; n <= nodes; n++ {
		s.addNode(n)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Kind reports the space-kind tag.
func (s *GraphSpace) Kind() Kind { return KindGraph }

// Directed reports whether edges carry direction.
func (s *GraphSpace) Directed() bool { return s.directed }

// NNodes returns the current node count.
func (s *GraphSpace) NNodes() int { return len(s.slots) }

// NPositions is NNodes under the occupancy vocabulary.
func (s *GraphSpace) NPositions() int { return len(s.slots) }

// NEdges returns the current edge count.
func (s *GraphSpace) NEdges() int {
	var it graph.Edges
	if s.directed {
		it = s.dg.Edges()
	} else {
		it = s.ug.Edges()
	}
	n := 0
	for it.Next() {
		n++
	}
	return n
}

// NAgents returns the number of agents registered in the space.
func (s *GraphSpace) NAgents() int { return len(s.agents) }

// Agent returns the registered agent with the given id.
func (s *GraphSpace) Agent(id int) (model.DiscreteAgent, bool) {
	a, ok := s.agents[id]
	return a, ok
}

// IDs returns all registered agent ids in ascending order.
func (s *GraphSpace) IDs() []int {
	ids := make([]int, 0, len(s.agents))
	for id := range s.agents {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

//
// ---------- Occupancy ----------
//

// Positions enumerates all node indices.
func (s *GraphSpace) Positions() []int {
	out := make([]int, len(s.slots))
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// IDsInPosition returns the occupancy slot for a node. The slot is a view
// into the index: it is invalidated by the next mutation and must not be
// modified. Size and emptiness checks on it are O(1).
func (s *GraphSpace) IDsInPosition(node int) []int {
	if node < 1 || node > len(s.slots) {
		return nil
	}
	return s.slots[node-1]
}

// PositionEmpty reports whether a node has no residents.
func (s *GraphSpace) PositionEmpty(node int) bool {
	return len(s.IDsInPosition(node)) == 0
}

// EmptyPositions returns all nodes with no residents.
func (s *GraphSpace) EmptyPositions() []int {
	var out []int
	for i, slot := range s.slots {
		if len(slot) == 0 {
			out = append(out, i+1)
		}
	}
	return out
}

// AddAgent registers an agent at its cached node. Double insertion of an id
// is a consistency error.
func (s *GraphSpace) AddAgent(a model.DiscreteAgent) error {
	node := a.Position()
	if err := s.checkNode(node); err != nil {
		return err
	}
	if _, dup := s.agents[a.ID()]; dup {
		return fmt.Errorf("%w: id %d", ErrAgentExists, a.ID())
	}
	s.slots[node-1] = insertID(s.slots[node-1], a.ID())
	s.agents[a.ID()] = a
	s.rec.AgentAdded()
	return nil
}

// RemoveAgent removes an agent from the space entirely and fires the
// eviction hook. Removing an id that is not resident in its expected slot is
// a consistency error.
func (s *GraphSpace) RemoveAgent(id int) error {
	a, ok := s.agents[id]
	if !ok {
		return missingIDError(id, "graph space registry")
	}
	slot, found := removeID(s.slots[a.Position()-1], id)
	if !found {
		return missingIDError(id, fmt.Sprintf("node %d", a.Position()))
	}
	s.slots[a.Position()-1] = slot
	delete(s.agents, id)
	s.rec.AgentRemoved()
	if s.onEvict != nil {
		s.onEvict(a)
	}
	return nil
}

// MoveAgent relocates an agent to another node as one logically atomic step.
// Moving to the current node leaves the occupancy index untouched.
func (s *GraphSpace) MoveAgent(a model.DiscreteAgent, node int) error {
	if err := s.checkNode(node); err != nil {
		return err
	}
	old := a.Position()
	if old == node {
		return nil
	}
	slot, found := removeID(s.slots[old-1], a.ID())
	if !found {
		return missingIDError(a.ID(), fmt.Sprintf("node %d", old))
	}
	s.slots[old-1] = slot
	s.slots[node-1] = insertID(s.slots[node-1], a.ID())
	a.MoveTo(node)
	s.rec.AgentMoved()
	return nil
}

//
// ---------- Neighbor queries ----------
//

// NearbyPositions returns the nodes reachable from the focal node within r
// hops, excluding the focal node itself, in ascending order.
func (s *GraphSpace) NearbyPositions(node int, r int, mode NeighborMode) ([]int, error) {
	if err := s.checkNode(node); err != nil {
		return nil, err
	}
	if !mode.valid() {
		return nil, fmt.Errorf("%w: %d", ErrBadNeighborMode, int(mode))
	}
	if r < 1 {
		return nil, nil
	}
	visited := map[int]bool{node: true}
	frontier := []int{node}
	var out []int
	for hop := 0; hop < r && len(frontier) > 0; hop++ {
		var next []int
		for _, n := range frontier {
			for _, m := range s.oneHop(n, mode) {
				if visited[m] {
					continue
				}
				visited[m] = true
				next = append(next, m)
				out = append(out, m)
			}
		}
		frontier = next
	}
	sort.Ints(out)
	return out, nil
}

// NearbyIDs unions the focal slot with the slots of every node within r
// hops. r=0 yields only the focal slot. The fractional part of r is ignored;
// graph distances are hop counts.
func (s *GraphSpace) NearbyIDs(node int, r float64, search SearchKind) ([]int, error) {
	return s.nearbyIDs(node, r, search, NeighborDefault)
}

// NearbyIDsMode is NearbyIDs with an explicit edge-direction mode.
func (s *GraphSpace) NearbyIDsMode(node int, r float64, mode NeighborMode) ([]int, error) {
	return s.nearbyIDs(node, r, SearchExact, mode)
}

func (s *GraphSpace) nearbyIDs(node int, r float64, search SearchKind, mode NeighborMode) ([]int, error) {
	if !search.valid() {
		return nil, fmt.Errorf("%w: %d", ErrBadSearch, int(search))
	}
	if err := s.checkNode(node); err != nil {
		return nil, err
	}
	ids := append([]int(nil), s.slots[node-1]...)
	positions, err := s.NearbyPositions(node, int(r), mode)
	if err != nil {
		return nil, err
	}
	for _, p := range positions {
		ids = append(ids, s.slots[p-1]...)
	}
	s.rec.QueryServed(search.String(), len(ids))
	return ids, nil
}

// NearbyIDsOf returns the ids within r hops of the agent's node, excluding
// the agent's own id.
func (s *GraphSpace) NearbyIDsOf(a model.DiscreteAgent, r float64, mode NeighborMode) ([]int, error) {
	ids, err := s.nearbyIDs(a.Position(), r, SearchExact, mode)
	if err != nil {
		return nil, err
	}
	out := ids[:0]
	for _, id := range ids {
		if id != a.ID() {
			out = append(out, id)
		}
	}
	return out, nil
}

//
// ---------- Topology mutation ----------
//

// AddVertex appends a new node with an empty occupancy slot and returns the
// new node count.
func (s *GraphSpace) AddVertex() int {
	n := len(s.slots) + 1
	s.addNode(n)
	s.slots = append(s.slots, nil)
	return n
}

// RemoveVertex deletes a node using swap-with-last renumbering: the former
// last node takes over the removed node's index. Every agent occupying the
// node is first removed from the space entirely (firing the eviction hook),
// then the occupancy slot of the former last node is swapped into the freed
// index before the index shrinks.
//
// The returned value is the old index of the node that now lives at index n,
// or 0 when no renumbering happened (n was the last node). Callers holding
// external references to the renumbered node must update them.
func (s *GraphSpace) RemoveVertex(n int) (swapped int, err error) {
	if err := s.checkNode(n); err != nil {
		return 0, err
	}
	for _, id := range append([]int(nil), s.slots[n-1]...) {
		if err := s.RemoveAgent(id); err != nil {
			return 0, err
		}
	}

	last := len(s.slots)
	if n == last {
		s.removeNode(n)
		s.slots = s.slots[:last-1]
		return 0, nil
	}

	s.renumberLast(n, last)
	s.slots[n-1] = s.slots[last-1]
	s.slots = s.slots[:last-1]
	for _, id := range s.slots[n-1] {
		s.agents[id].MoveTo(n)
	}
	return last, nil
}

// renumberLast removes node n from the topology and relabels node last as n,
// preserving last's edges. Edges between last and n die with n.
func (s *GraphSpace) renumberLast(n, last int) {
	if s.directed {
		outs := collectIDs(s.dg.From(int64(last)))
		ins := collectIDs(s.dg.To(int64(last)))
		s.dg.RemoveNode(int64(n))
		s.dg.RemoveNode(int64(last))
		s.dg.AddNode(simple.Node(n))
		for _, o := range outs {
			if o != n && o != last {
				s.dg.SetEdge(s.dg.NewEdge(simple.Node(n), simple.Node(o)))
			}
		}
		for _, i := range ins {
			if i != n && i != last {
				s.dg.SetEdge(s.dg.NewEdge(simple.Node(i), simple.Node(n)))
			}
		}
		return
	}
	neighbors := collectIDs(s.ug.From(int64(last)))
	s.ug.RemoveNode(int64(n))
	s.ug.RemoveNode(int64(last))
	s.ug.AddNode(simple.Node(n))
	for _, m := range neighbors {
		if m != n && m != last {
			s.ug.SetEdge(s.ug.NewEdge(simple.Node(n), simple.Node(m)))
		}
	}
}

// AddEdge inserts an edge between two existing nodes and reports success.
// Self edges, out-of-range endpoints and duplicates yield false.
func (s *GraphSpace) AddEdge(n, m int) bool {
	if n == m || s.checkNode(n) != nil || s.checkNode(m) != nil {
		return false
	}
	if s.HasEdge(n, m) {
		return false
	}
	if s.directed {
		s.dg.SetEdge(s.dg.NewEdge(simple.Node(n), simple.Node(m)))
	} else {
		s.ug.SetEdge(s.ug.NewEdge(simple.Node(n), simple.Node(m)))
	}
	return true
}

// RemoveEdge deletes the edge between two nodes and reports success.
func (s *GraphSpace) RemoveEdge(n, m int) bool {
	if !s.HasEdge(n, m) {
		return false
	}
	if s.directed {
		s.dg.RemoveEdge(int64(n), int64(m))
	} else {
		s.ug.RemoveEdge(int64(n), int64(m))
	}
	return true
}

// HasEdge reports whether the edge n->m (directed) or n-m (undirected)
// exists.
func (s *GraphSpace) HasEdge(n, m int) bool {
	if s.checkNode(n) != nil || s.checkNode(m) != nil {
		return false
	}
	if s.directed {
		return s.dg.HasEdgeFromTo(int64(n), int64(m))
	}
	return s.ug.HasEdgeBetween(int64(n), int64(m))
}

//
// ---------- Internals ----------
//

func (s *GraphSpace) addNode(n int) {
	if s.directed {
		s.dg.AddNode(simple.Node(n))
	} else {
		s.ug.AddNode(simple.Node(n))
	}
}

func (s *GraphSpace) removeNode(n int) {
	if s.directed {
		s.dg.RemoveNode(int64(n))
	} else {
		s.ug.RemoveNode(int64(n))
	}
}

func (s *GraphSpace) checkNode(n int) error {
	if n < 1 || n > len(s.slots) {
		return fmt.Errorf("%w: node %d, space has %d nodes", ErrNodeRange, n, len(s.slots))
	}
	return nil
}

// oneHop returns the direct neighbors of a node under the given mode, in
// ascending order.
func (s *GraphSpace) oneHop(n int, mode NeighborMode) []int {
	var out []int
	if !s.directed {
		out = collectIDs(s.ug.From(int64(n)))
	} else {
		switch mode {
		case NeighborDefault, NeighborOut:
			out = collectIDs(s.dg.From(int64(n)))
		case NeighborIn:
			out = collectIDs(s.dg.To(int64(n)))
		case NeighborAll:
			out = collectIDs(s.dg.From(int64(n)))
			for _, m := range collectIDs(s.dg.To(int64(n))) {
				if !containsInt(out, m) {
					out = append(out, m)
				}
			}
		}
	}
	sort.Ints(out)
	return out
}

func collectIDs(it graph.Nodes) []int {
	var out []int
	for it.Next() {
		out = append(out, int(it.Node().ID()))
	}
	return out
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

var _ Space[int] = (*GraphSpace)(nil)
