package model

import (
	"math"
	"testing"
)

func TestVecArithmetic(t *testing.T) {
	a := NewVec(1, 2)
	b := NewVec(3, -1)

	if got := a.Add(b); got[0] != 4 || got[1] != 1 {
		t.Fatalf("Add = %v, want [4 1]", got)
	}
	if got := a.Sub(b); got[0] != -2 || got[1] != 3 {
		t.Fatalf("Sub = %v, want [-2 3]", got)
	}
	if got := a.Scale(2); got[0] != 2 || got[1] != 4 {
		t.Fatalf("Scale = %v, want [2 4]", got)
	}
	if got := a.Dot(b); got != 1 {
		t.Fatalf("Dot = %v, want 1", got)
	}
}

func TestVecNormAndDistance(t *testing.T) {
	v := NewVec(3, 4)
	if got := v.Norm(); got != 5 {
		t.Fatalf("Norm = %v, want 5", got)
	}
	if got := NewVec(0, 0).DistanceTo(v); got != 5 {
		t.Fatalf("DistanceTo = %v, want 5", got)
	}
	if got := v.DistanceTo(v); got != 0 {
		t.Fatalf("DistanceTo(self) = %v, want 0", got)
	}
}

func TestVecCloneIsIndependent(t *testing.T) {
	v := NewVec(1, 2)
	c := v.Clone()
	c[0] = 99
	if v[0] != 1 {
		t.Fatalf("mutating the clone changed the original: %v", v)
	}
}

func TestVecIsZero(t *testing.T) {
	if !NewVec(0, 0).IsZero() {
		t.Errorf("expected [0 0] to be zero")
	}
	if NewVec(0, math.SmallestNonzeroFloat64).IsZero() {
		t.Errorf("expected a nonzero component to fail IsZero")
	}
}

func TestGraphAgentBaseRecord(t *testing.T) {
	a := &GraphAgent{AgentID: 7, Node: 3}
	if a.ID() != 7 || a.Position() != 3 {
		t.Fatalf("unexpected base record state: id=%d node=%d", a.ID(), a.Position())
	}
	a.MoveTo(5)
	if a.Position() != 5 {
		t.Fatalf("MoveTo did not update the cached node: %d", a.Position())
	}
}

func TestSpatialAgentBaseRecord(t *testing.T) {
	a := &SpatialAgent{AgentID: 2, Pos: NewVec(1, 1), Vel: NewVec(0, 1)}
	a.SetPosition(NewVec(2, 2))
	a.SetVelocity(NewVec(1, 0))
	if a.Position()[0] != 2 || a.Velocity()[1] != 0 {
		t.Fatalf("setters did not take: pos=%v vel=%v", a.Position(), a.Velocity())
	}
}
