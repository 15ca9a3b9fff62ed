package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/agentspace/model"
)

type predator struct{ model.SpatialAgent }

func (*predator) Kind() string { return "predator" }

type prey struct{ model.SpatialAgent }

func (*prey) Kind() string { return "prey" }

func pairSpace(t *testing.T, bodies ...*model.SpatialAgent) *ContinuousSpace {
	t.Helper()
	s := mustSpace(t, model.NewVec(10, 10), WithSpacing(1))
	for _, b := range bodies {
		require.NoError(t, s.AddAgent(b))
	}
	return s
}

func TestInteractingPairsAll(t *testing.T) {
	// Three agents in a row, 0.6 apart: all three pairs interact at r=1.3,
	// only the adjacent ones at r=0.7.
	s := pairSpace(t,
		newBody(1, 2.0, 5),
		newBody(2, 2.6, 5),
		newBody(3, 3.2, 5),
	)
	ps, err := s.InteractingPairs(1.3, PairingAll)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{1, 2}, {1, 3}, {2, 3}}, ps.Pairs())

	ps, err = s.InteractingPairs(0.7, PairingAll)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{1, 2}, {2, 3}}, ps.Pairs())
}

func TestInteractingPairsAllDeduplicates(t *testing.T) {
	s := pairSpace(t, newBody(1, 5, 5), newBody(2, 5.5, 5))
	ps, err := s.InteractingPairs(1, PairingAll)
	require.NoError(t, err)
	require.Equal(t, 1, ps.Len())
	p := ps.Pairs()[0]
	assert.Less(t, p.First, p.Second, "pairs are canonical")
}

func TestInteractingPairsNearestUniqueMembership(t *testing.T) {
	// 1 and 2 are mutually nearest; 3 is nearest to 2 but 2 is taken by the
	// closer pairing, so 3 goes unpaired.
	s := pairSpace(t,
		newBody(1, 2.0, 5),
		newBody(2, 2.4, 5),
		newBody(3, 3.2, 5),
	)
	ps, err := s.InteractingPairs(1, PairingNearest)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{1, 2}}, ps.Pairs())
}

func TestInteractingPairsNearestNoAgentTwice(t *testing.T) {
	// A cluster dense enough that naive pairing would reuse agents.
	s := pairSpace(t,
		newBody(1, 2.0, 2.0),
		newBody(2, 2.3, 2.0),
		newBody(3, 2.0, 2.5),
		newBody(4, 6.0, 6.0),
		newBody(5, 6.2, 6.0),
	)
	ps, err := s.InteractingPairs(1.5, PairingNearest)
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, p := range ps.Pairs() {
		assert.False(t, seen[p.First], "id %d appears twice", p.First)
		assert.False(t, seen[p.Second], "id %d appears twice", p.Second)
		seen[p.First], seen[p.Second] = true, true
	}
	assert.Contains(t, ps.Pairs(), Pair{4, 5})
}

func TestInteractingPairsTypes(t *testing.T) {
	hunter := &predator{model.SpatialAgent{AgentID: 1, Pos: model.NewVec(5, 5)}}
	meal := &prey{model.SpatialAgent{AgentID: 2, Pos: model.NewVec(5.4, 5)}}
	rival := &predator{model.SpatialAgent{AgentID: 3, Pos: model.NewVec(5.2, 5)}}
	s := mustSpace(t, model.NewVec(10, 10), WithSpacing(1))
	for _, a := range []model.ContinuousAgent{hunter, meal, rival} {
		require.NoError(t, s.AddAgent(a))
	}

	ps, err := s.InteractingPairs(1, PairingTypes)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{1, 2}, {2, 3}}, ps.Pairs(), "same-kind pairs are excluded")
}

func TestInteractingPairsTypesRespectsSchedulerReachability(t *testing.T) {
	hunter := &predator{model.SpatialAgent{AgentID: 1, Pos: model.NewVec(5, 5)}}
	meal := &prey{model.SpatialAgent{AgentID: 2, Pos: model.NewVec(5.4, 5)}}
	s := mustSpace(t, model.NewVec(10, 10), WithSpacing(1))
	require.NoError(t, s.AddAgent(hunter))
	require.NoError(t, s.AddAgent(meal))

	// With only predators in the traversal order, prey is unreachable and no
	// cross-kind pair forms.
	ps, err := s.InteractingPairs(1, PairingTypes, WithScheduler([]int{1}))
	require.NoError(t, err)
	assert.Equal(t, 0, ps.Len())
}

func TestInteractingPairsSchedulerSkipsMissingIDs(t *testing.T) {
	s := pairSpace(t, newBody(1, 5, 5), newBody(2, 5.5, 5))
	ps, err := s.InteractingPairs(1, PairingAll, WithScheduler([]int{7, 1, 2}))
	require.NoError(t, err)
	assert.Equal(t, []Pair{{1, 2}}, ps.Pairs())
}

func TestPairSetEachRestartable(t *testing.T) {
	s := pairSpace(t,
		newBody(1, 2.0, 5),
		newBody(2, 2.5, 5),
		newBody(3, 5.0, 5),
		newBody(4, 5.5, 5),
	)
	ps, err := s.InteractingPairs(1, PairingAll)
	require.NoError(t, err)
	require.Equal(t, 2, ps.Len())

	count := func() int {
		n := 0
		ps.Each(func(a, b model.ContinuousAgent) bool {
			require.NotNil(t, a)
			require.NotNil(t, b)
			n++
			return true
		})
		return n
	}
	assert.Equal(t, 2, count())
	assert.Equal(t, 2, count(), "Each must be restartable")

	// Early stop.
	n := 0
	ps.Each(func(a, b model.ContinuousAgent) bool {
		n++
		return false
	})
	assert.Equal(t, 1, n)
}

func TestInteractingPairsBadInput(t *testing.T) {
	s := pairSpace(t, newBody(1, 5, 5))
	_, err := s.InteractingPairs(1, PairingKind(42))
	assert.Error(t, err)
	_, err = s.InteractingPairs(1, PairingAll, WithSearch(SearchKind(42)))
	assert.ErrorIs(t, err, ErrBadSearch)
}
