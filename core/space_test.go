package core

import (
	"testing"

	"github.com/signalsfoundry/agentspace/model"
)

func TestKindStrings(t *testing.T) {
	if KindGraph.String() != "graph" || KindContinuous.String() != "continuous" {
		t.Fatalf("unexpected kind strings: %s, %s", KindGraph, KindContinuous)
	}
	if SearchApproximate.String() != "approximate" || SearchExact.String() != "exact" {
		t.Fatalf("unexpected search strings: %s, %s", SearchApproximate, SearchExact)
	}
	if SearchKind(42).valid() {
		t.Fatalf("SearchKind(42) should be invalid")
	}
	if NeighborMode(42).valid() {
		t.Fatalf("NeighborMode(42) should be invalid")
	}
}

// occupancyOf exercises the generic capability surface without knowing the
// concrete space kind.
func occupancyOf[P any](s Space[P], pos P) int {
	return len(s.IDsInPosition(pos))
}

func TestGenericCapabilitySurface(t *testing.T) {
	gs := buildPath(t, 2)
	if err := gs.AddAgent(newWalker(1, 1)); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	if got := occupancyOf[int](gs, 1); got != 1 {
		t.Fatalf("graph occupancy = %d, want 1", got)
	}

	cs, err := NewContinuousSpace(model.NewVec(4, 4), WithSpacing(1))
	if err != nil {
		t.Fatalf("NewContinuousSpace: %v", err)
	}
	if err := cs.AddAgent(newBody(1, 1.5, 1.5)); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	if got := occupancyOf[model.Vec](cs, model.NewVec(1.5, 1.5)); got != 1 {
		t.Fatalf("continuous occupancy = %d, want 1", got)
	}
}

func TestNoopRecorderIsSafe(t *testing.T) {
	rec := NoopRecorder()
	rec.AgentAdded()
	rec.AgentRemoved()
	rec.AgentMoved()
	rec.QueryServed("exact", 3)
	rec.PairsEnumerated("all", 1)
	rec.CollisionResolved(true)
}
