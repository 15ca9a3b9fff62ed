package core

import (
	"errors"
	"reflect"
	"testing"

	"github.com/signalsfoundry/agentspace/model"
)

func newWalker(id, node int) *model.GraphAgent {
	return &model.GraphAgent{AgentID: id, Node: node}
}

// buildPath returns an undirected path graph 1-2-3-...-n.
func buildPath(t *testing.T, n int) *GraphSpace {
	t.Helper()
	s, err := NewGraphSpace(n, false)
	if err != nil {
		t.Fatalf("NewGraphSpace: %v", err)
	}
	for i := 1; i < n; i++ {
		if !s.AddEdge(i, i+1) {
			t.Fatalf("AddEdge(%d, %d) failed", i, i+1)
		}
	}
	return s
}

func TestGraphSpaceTwoNodeRemoveVertex(t *testing.T) {
	// Two connected nodes, one agent on each. Querying node 1 at radius 1
	// sees both agents; removing node 1 evicts agent 1 and renumbers node 2
	// down to index 1, carrying agent 2 with it.
	s := buildPath(t, 2)
	a1, a2 := newWalker(1, 1), newWalker(2, 2)
	if err := s.AddAgent(a1); err != nil {
		t.Fatalf("AddAgent(1): %v", err)
	}
	if err := s.AddAgent(a2); err != nil {
		t.Fatalf("AddAgent(2): %v", err)
	}

	ids, err := s.NearbyIDs(1, 1, SearchExact)
	if err != nil {
		t.Fatalf("NearbyIDs: %v", err)
	}
	if !reflect.DeepEqual(ids, []int{1, 2}) {
		t.Fatalf("NearbyIDs(1, r=1) = %v, want [1 2]", ids)
	}

	swapped, err := s.RemoveVertex(1)
	if err != nil {
		t.Fatalf("RemoveVertex: %v", err)
	}
	if swapped != 2 {
		t.Fatalf("RemoveVertex reported swapped=%d, want 2", swapped)
	}
	if s.NNodes() != 1 {
		t.Fatalf("NNodes = %d, want 1", s.NNodes())
	}
	if _, ok := s.Agent(1); ok {
		t.Fatalf("agent 1 should have been evicted")
	}
	if a2.Position() != 1 {
		t.Fatalf("agent 2 position = %d, want 1 after renumbering", a2.Position())
	}
	if got := s.IDsInPosition(1); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("IDsInPosition(1) = %v, want [2]", got)
	}
}

func TestGraphSpaceRemoveLastVertexNoSwap(t *testing.T) {
	s := buildPath(t, 3)
	swapped, err := s.RemoveVertex(3)
	if err != nil {
		t.Fatalf("RemoveVertex: %v", err)
	}
	if swapped != 0 {
		t.Fatalf("removing the last node reported swapped=%d, want 0", swapped)
	}
	if s.NNodes() != 2 || !s.HasEdge(1, 2) {
		t.Fatalf("remaining topology damaged: nodes=%d edge(1,2)=%v", s.NNodes(), s.HasEdge(1, 2))
	}
}

func TestGraphSpaceRemoveVertexPreservesSwappedEdges(t *testing.T) {
	// Path 1-2-3-4: removing node 2 relabels node 4 as 2 and keeps its edge
	// to node 3.
	s := buildPath(t, 4)
	swapped, err := s.RemoveVertex(2)
	if err != nil {
		t.Fatalf("RemoveVertex: %v", err)
	}
	if swapped != 4 {
		t.Fatalf("swapped = %d, want 4", swapped)
	}
	if s.NNodes() != 3 {
		t.Fatalf("NNodes = %d, want 3", s.NNodes())
	}
	if !s.HasEdge(2, 3) {
		t.Fatalf("edge 3-4 should survive as 3-2")
	}
	if s.HasEdge(1, 2) {
		t.Fatalf("edges of the deleted node must die with it")
	}
	if s.NEdges() != 1 {
		t.Fatalf("NEdges = %d, want 1", s.NEdges())
	}
}

func TestGraphSpaceRemoveVertexEvictionHook(t *testing.T) {
	var evicted []int
	s, err := NewGraphSpace(2, false, WithEvictionHook(func(a model.DiscreteAgent) {
		evicted = append(evicted, a.ID())
	}))
	if err != nil {
		t.Fatalf("NewGraphSpace: %v", err)
	}
	for _, a := range []*model.GraphAgent{newWalker(1, 1), newWalker(2, 1), newWalker(3, 2)} {
		if err := s.AddAgent(a); err != nil {
			t.Fatalf("AddAgent(%d): %v", a.AgentID, err)
		}
	}
	if _, err := s.RemoveVertex(1); err != nil {
		t.Fatalf("RemoveVertex: %v", err)
	}
	if !reflect.DeepEqual(evicted, []int{1, 2}) {
		t.Fatalf("eviction hook fired for %v, want [1 2]", evicted)
	}
	if s.NAgents() != 1 {
		t.Fatalf("NAgents = %d, want 1", s.NAgents())
	}
}

func TestGraphSpaceOccupancyOrder(t *testing.T) {
	// Slots preserve insertion order; removal keeps the order of survivors.
	s := buildPath(t, 2)
	for _, id := range []int{5, 3, 9} {
		if err := s.AddAgent(newWalker(id, 1)); err != nil {
			t.Fatalf("AddAgent(%d): %v", id, err)
		}
	}
	if got := s.IDsInPosition(1); !reflect.DeepEqual(got, []int{5, 3, 9}) {
		t.Fatalf("slot = %v, want insertion order [5 3 9]", got)
	}
	if err := s.RemoveAgent(3); err != nil {
		t.Fatalf("RemoveAgent: %v", err)
	}
	if got := s.IDsInPosition(1); !reflect.DeepEqual(got, []int{5, 9}) {
		t.Fatalf("slot = %v, want [5 9]", got)
	}
}

func TestGraphSpaceMoveAgent(t *testing.T) {
	s := buildPath(t, 3)
	a := newWalker(1, 1)
	if err := s.AddAgent(a); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	if err := s.MoveAgent(a, 3); err != nil {
		t.Fatalf("MoveAgent: %v", err)
	}
	if a.Position() != 3 {
		t.Fatalf("cached position = %d, want 3", a.Position())
	}
	if !s.PositionEmpty(1) {
		t.Fatalf("node 1 should be empty after the move")
	}
	// Moving to the current node is a no-op, not an error.
	if err := s.MoveAgent(a, 3); err != nil {
		t.Fatalf("same-node move: %v", err)
	}
	if err := s.MoveAgent(a, 7); !errors.Is(err, ErrNodeRange) {
		t.Fatalf("out-of-range move error = %v, want ErrNodeRange", err)
	}
}

func TestGraphSpaceConsistencyErrors(t *testing.T) {
	s := buildPath(t, 2)
	a := newWalker(1, 1)
	if err := s.AddAgent(a); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	if err := s.AddAgent(newWalker(1, 2)); !errors.Is(err, ErrAgentExists) {
		t.Fatalf("duplicate add error = %v, want ErrAgentExists", err)
	}
	if err := s.RemoveAgent(99); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("missing remove error = %v, want ErrAgentNotFound", err)
	}
	if err := s.AddAgent(newWalker(2, 0)); !errors.Is(err, ErrNodeRange) {
		t.Fatalf("node 0 add error = %v, want ErrNodeRange", err)
	}
}

func TestGraphSpaceNearbyPositionsHops(t *testing.T) {
	s := buildPath(t, 5)
	got, err := s.NearbyPositions(3, 1, NeighborDefault)
	if err != nil {
		t.Fatalf("NearbyPositions: %v", err)
	}
	if !reflect.DeepEqual(got, []int{2, 4}) {
		t.Fatalf("r=1 neighbors of 3 = %v, want [2 4]", got)
	}
	got, err = s.NearbyPositions(1, 2, NeighborDefault)
	if err != nil {
		t.Fatalf("NearbyPositions: %v", err)
	}
	if !reflect.DeepEqual(got, []int{2, 3}) {
		t.Fatalf("r=2 neighbors of 1 = %v, want [2 3]", got)
	}
	got, err = s.NearbyPositions(1, 0, NeighborDefault)
	if err != nil || got != nil {
		t.Fatalf("r=0 neighbors = %v, %v; want empty, nil", got, err)
	}
}

func TestGraphSpaceDirectedNeighborModes(t *testing.T) {
	s, err := NewGraphSpace(3, true)
	if err != nil {
		t.Fatalf("NewGraphSpace: %v", err)
	}
	// 1 -> 2, 3 -> 2
	s.AddEdge(1, 2)
	s.AddEdge(3, 2)

	cases := []struct {
		mode NeighborMode
		want []int
	}{
		{NeighborDefault, nil},
		{NeighborOut, nil},
		{NeighborIn, []int{1, 3}},
		{NeighborAll, []int{1, 3}},
	}
	for _, tc := range cases {
		got, err := s.NearbyPositions(2, 1, tc.mode)
		if err != nil {
			t.Fatalf("NearbyPositions(%s): %v", tc.mode, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("mode %s: neighbors of 2 = %v, want %v", tc.mode, got, tc.want)
		}
	}

	if !s.HasEdge(1, 2) || s.HasEdge(2, 1) {
		t.Fatalf("directed edge orientation broken")
	}
}

func TestGraphSpaceNearbyIDsRadiusZero(t *testing.T) {
	s := buildPath(t, 2)
	s.AddAgent(newWalker(1, 1))
	s.AddAgent(newWalker(2, 2))
	ids, err := s.NearbyIDs(1, 0, SearchExact)
	if err != nil {
		t.Fatalf("NearbyIDs: %v", err)
	}
	if !reflect.DeepEqual(ids, []int{1}) {
		t.Fatalf("r=0 ids = %v, want only the focal slot [1]", ids)
	}
}

func TestGraphSpaceNearbyIDsOfExcludesSelf(t *testing.T) {
	s := buildPath(t, 2)
	a := newWalker(1, 1)
	s.AddAgent(a)
	s.AddAgent(newWalker(2, 1))
	s.AddAgent(newWalker(3, 2))
	ids, err := s.NearbyIDsOf(a, 1, NeighborDefault)
	if err != nil {
		t.Fatalf("NearbyIDsOf: %v", err)
	}
	if !reflect.DeepEqual(ids, []int{2, 3}) {
		t.Fatalf("ids = %v, want [2 3]", ids)
	}
}

func TestGraphSpaceAddVertexAndEdges(t *testing.T) {
	s := buildPath(t, 2)
	if got := s.AddVertex(); got != 3 {
		t.Fatalf("AddVertex = %d, want 3", got)
	}
	if !s.PositionEmpty(3) {
		t.Fatalf("fresh vertex should be empty")
	}
	if s.AddEdge(1, 1) {
		t.Fatalf("self edge must be rejected")
	}
	if s.AddEdge(1, 2) {
		t.Fatalf("duplicate edge must be rejected")
	}
	if !s.RemoveEdge(1, 2) || s.RemoveEdge(1, 2) {
		t.Fatalf("RemoveEdge should succeed once, then fail")
	}
}

func TestGraphSpaceEmptyPositions(t *testing.T) {
	s := buildPath(t, 3)
	s.AddAgent(newWalker(1, 2))
	if got := s.EmptyPositions(); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Fatalf("EmptyPositions = %v, want [1 3]", got)
	}
}
