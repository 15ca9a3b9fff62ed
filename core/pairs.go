package core

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/signalsfoundry/agentspace/model"
)

// PairingKind selects the pair-enumeration strategy.
type PairingKind int

const (
	// PairingAll yields every unordered pair of agents within the radius.
	PairingAll PairingKind = iota
	// PairingNearest yields at most one pair per agent, keeping for each
	// contested agent only its smallest-distance pairing.
	PairingNearest
	// PairingTypes yields only pairs whose two agents belong to different
	// categories, both categories being reachable in the traversal order.
	PairingTypes
)

func (k PairingKind) String() string {
	switch k {
	case PairingAll:
		return "all"
	case PairingNearest:
		return "nearest"
	case PairingTypes:
		return "types"
	default:
		return "unknown"
	}
}

// Pair is an unordered agent-id pair in canonical order: First < Second.
type Pair struct {
	First  int
	Second int
}

func canonicalPair(a, b int) Pair {
	if a < b {
		return Pair{First: a, Second: b}
	}
	return Pair{First: b, Second: a}
}

// PairSet is a finite, restartable view over a resolved pair list. It stores
// ids plus a handle to the space for agent lookup, never agent data; like
// every query result it is invalidated by mutating the space.
type PairSet struct {
	pairs []Pair
	space *ContinuousSpace
}

// Len returns the number of resolved pairs.
func (ps *PairSet) Len() int { return len(ps.pairs) }

// Pairs returns the resolved id pairs in enumeration order.
func (ps *PairSet) Pairs() []Pair {
	return append([]Pair(nil), ps.pairs...)
}

// At resolves the i-th pair to its two agents.
func (ps *PairSet) At(i int) (model.ContinuousAgent, model.ContinuousAgent) {
	p := ps.pairs[i]
	a, _ := ps.space.Agent(p.First)
	b, _ := ps.space.Agent(p.Second)
	return a, b
}

// Each walks the pairs in order, resolving ids to agents. Returning false
// from fn stops the walk; Each can be called any number of times.
func (ps *PairSet) Each(fn func(a, b model.ContinuousAgent) bool) {
	for i := range ps.pairs {
		a, b := ps.At(i)
		if !fn(a, b) {
			return
		}
	}
}

// PairOption configures a pair enumeration.
type PairOption func(*pairConfig)

type pairConfig struct {
	order  []int
	search SearchKind
}

// WithScheduler supplies the traversal order: an ordered, possibly filtered
// sequence of agent ids. Ids no longer in the space are skipped. The default
// order is ascending id.
func WithScheduler(order []int) PairOption {
	return func(c *pairConfig) { c.order = order }
}

// WithSearch selects the radius-search semantics for the all and types
// strategies. The nearest strategy always scans the approximate candidate
// set and minimises true distance.
func WithSearch(search SearchKind) PairOption {
	return func(c *pairConfig) { c.search = search }
}

// InteractingPairs enumerates deduplicated, canonically ordered interacting
// pairs within radius r under the given strategy.
func (s *ContinuousSpace) InteractingPairs(r float64, kind PairingKind, opts ...PairOption) (*PairSet, error) {
	cfg := pairConfig{search: SearchExact}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.search.valid() {
		return nil, fmt.Errorf("%w: %d", ErrBadSearch, int(cfg.search))
	}
	order := cfg.order
	if order == nil {
		order = s.IDs()
	}

	var (
		pairs []Pair
		err   error
	)
	switch kind {
	case PairingAll:
		pairs, err = s.allPairs(order, r, cfg.search)
	case PairingNearest:
		pairs = s.nearestPairs(order, r)
	case PairingTypes:
		pairs, err = s.typePairs(order, r, cfg.search)
	default:
		return nil, fmt.Errorf("unknown pairing strategy %d", int(kind))
	}
	if err != nil {
		return nil, err
	}
	s.rec.PairsEnumerated(kind.String(), len(pairs))
	return &PairSet{pairs: pairs, space: s}, nil
}

func (s *ContinuousSpace) allPairs(order []int, r float64, search SearchKind) ([]Pair, error) {
	seen := make(map[Pair]struct{})
	var out []Pair
	for _, id := range order {
		a, ok := s.agents[id]
		if !ok {
			continue
		}
		neighbors, err := s.NearbyIDsOf(a, r, search)
		if err != nil {
			return nil, err
		}
		for _, nid := range neighbors {
			p := canonicalPair(id, nid)
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out, nil
}

type scoredPair struct {
	pair Pair
	dist float64
}

// nearestPairs records each agent's nearest neighbor within r, keyed by the
// pair's canonical-first id and keeping the smaller distance on conflict,
// then resolves remaining duplicate membership: agents are processed in
// traversal order, first-seen minimal distance wins, and a recorded pairing
// is overwritten only by a strictly smaller distance. For each id still
// appearing in more than one pair afterwards (ids ascending), only its
// smallest-distance surviving pair is retained.
func (s *ContinuousSpace) nearestPairs(order []int, r float64) []Pair {
	byFirst := make(map[int]int) // canonical-first id -> index into scored
	var scored []scoredPair
	for _, id := range order {
		a, ok := s.agents[id]
		if !ok {
			continue
		}
		nn, found := s.NearestNeighbor(a, r)
		if !found {
			continue
		}
		p := canonicalPair(id, nn.ID())
		d := s.Distance(a.Position(), nn.Position())
		if i, exists := byFirst[p.First]; exists {
			if d < scored[i].dist {
				scored[i] = scoredPair{pair: p, dist: d}
			}
			continue
		}
		byFirst[p.First] = len(scored)
		scored = append(scored, scoredPair{pair: p, dist: d})
	}

	// Duplicate-membership resolution pass.
	members := make(map[int][]int) // agent id -> indices into scored
	for i, sp := range scored {
		members[sp.pair.First] = append(members[sp.pair.First], i)
		members[sp.pair.Second] = append(members[sp.pair.Second], i)
	}
	dropped := make([]bool, len(scored))
	ids := make([]int, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		idxs := members[id]
		if len(idxs) < 2 {
			continue
		}
		best := -1
		for _, i := range idxs {
			if dropped[i] {
				continue
			}
			if best < 0 || scored[i].dist < scored[best].dist {
				best = i
			}
		}
		for _, i := range idxs {
			if i != best {
				dropped[i] = true
			}
		}
	}

	var out []Pair
	for i, sp := range scored {
		if !dropped[i] {
			out = append(out, sp.pair)
		}
	}
	return out
}

func (s *ContinuousSpace) typePairs(order []int, r float64, search SearchKind) ([]Pair, error) {
	reachable := make(map[string]struct{})
	for _, id := range order {
		if a, ok := s.agents[id]; ok {
			reachable[agentKind(a)] = struct{}{}
		}
	}

	seen := make(map[Pair]struct{})
	var out []Pair
	for _, id := range order {
		a, ok := s.agents[id]
		if !ok {
			continue
		}
		focalKind := agentKind(a)
		neighbors, err := s.NearbyIDsOf(a, r, search)
		if err != nil {
			return nil, err
		}
		for _, nid := range neighbors {
			nk := agentKind(s.agents[nid])
			if nk == focalKind {
				continue
			}
			if _, ok := reachable[nk]; !ok {
				continue
			}
			p := canonicalPair(id, nid)
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out, nil
}

// agentKind resolves an agent's category: the Kinded declaration when
// present, its dynamic type name otherwise.
func agentKind(a model.Agent) string {
	if k, ok := a.(model.Kinded); ok {
		return k.Kind()
	}
	return reflect.TypeOf(a).String()
}
