package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/signalsfoundry/agentspace/model"
)

// defaultSpacingDivisor derives the default grid spacing from the smallest
// extent dimension.
const defaultSpacingDivisor = 20.0

// VelocityUpdater mutates an agent's velocity before a velocity-integration
// movement step. The default is a no-op.
type VelocityUpdater func(a model.ContinuousAgent, dt float64)

// ContinuousSpace represents true floating-point agent positions inside a
// bounded D-dimensional extent, accelerated by a uniform grid of cells of
// edge length equal to the spacing parameter. Smaller spacing makes radius
// searches tighter but the cell union larger; the spacing is purely an
// accuracy/performance tradeoff and never changes query semantics beyond the
// documented approximate overshoot.
type ContinuousSpace struct {
	extent   model.Vec
	spacing  float64
	periodic []bool
	grid     *gridTopology

	agents    map[int]model.ContinuousAgent
	updateVel VelocityUpdater
	rec       Recorder
}

// ContinuousOption configures a ContinuousSpace.
type ContinuousOption func(*ContinuousSpace)

// WithSpacing overrides the default grid spacing (smallest extent dimension
// divided by 20). Every extent dimension must be an exact multiple of it.
func WithSpacing(spacing float64) ContinuousOption {
	return func(s *ContinuousSpace) { s.spacing = spacing }
}

// WithPeriodic toggles wraparound on every axis at once.
func WithPeriodic(periodic bool) ContinuousOption {
	return func(s *ContinuousSpace) {
		for i := range s.periodic {
			s.periodic[i] = periodic
		}
	}
}

// WithPeriodicAxes sets wraparound per axis.
func WithPeriodicAxes(axes []bool) ContinuousOption {
	return func(s *ContinuousSpace) { copy(s.periodic, axes) }
}

// WithVelocityUpdater installs the pre-movement velocity hook used by
// StepAgent.
func WithVelocityUpdater(fn VelocityUpdater) ContinuousOption {
	return func(s *ContinuousSpace) { s.updateVel = fn }
}

// WithRecorder attaches an instrumentation recorder.
func WithRecorder(rec Recorder) ContinuousOption {
	return func(s *ContinuousSpace) { s.rec = rec }
}

// NewContinuousSpace builds a continuous space over [0, extent) per axis.
// Construction fails when any extent dimension is non-positive or not an
// exact multiple of the spacing.
func NewContinuousSpace(extent model.Vec, opts ...ContinuousOption) (*ContinuousSpace, error) {
	if len(extent) == 0 {
		return nil, fmt.Errorf("%w: empty extent", ErrBadExtent)
	}
	min := extent[0]
	for _, e := range extent {
		if e <= 0 || math.IsInf(e, 0) || math.IsNaN(e) {
			return nil, fmt.Errorf("%w: %v", ErrBadExtent, extent)
		}
		if e < min {
			min = e
		}
	}

	s := &ContinuousSpace{
		extent:   extent.Clone(),
		spacing:  min / defaultSpacingDivisor,
		periodic: make([]bool, len(extent)),
		agents:   make(map[int]model.ContinuousAgent),
		rec:      noopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.spacing <= 0 {
		return nil, fmt.Errorf("%w: spacing %v", ErrBadSpacing, s.spacing)
	}
	dims := make([]int, len(extent))
	for i, e := range extent {
		q := e / s.spacing
		if q != math.Trunc(q) {
			return nil, fmt.Errorf("%w: extent %v, spacing %v", ErrBadSpacing, e, s.spacing)
		}
		dims[i] = int(q)
	}
	s.grid = newGridTopology(dims, s.periodic)
	return s, nil
}

// Kind reports the space-kind tag.
func (s *ContinuousSpace) Kind() Kind { return KindContinuous }

// Extent returns a copy of the per-axis extent.
func (s *ContinuousSpace) Extent() model.Vec { return s.extent.Clone() }

// Spacing returns the grid cell edge length.
func (s *ContinuousSpace) Spacing() float64 { return s.spacing }

// Dims returns the grid dimensions, floor(extent/spacing) per axis.
func (s *ContinuousSpace) Dims() []int {
	return append([]int(nil), s.grid.dims...)
}

// Periodic reports whether the given axis wraps around.
func (s *ContinuousSpace) Periodic(axis int) bool { return s.periodic[axis] }

// NAgents returns the number of agents registered in the space.
func (s *ContinuousSpace) NAgents() int { return len(s.agents) }

// Agent returns the registered agent with the given id.
func (s *ContinuousSpace) Agent(id int) (model.ContinuousAgent, bool) {
	a, ok := s.agents[id]
	return a, ok
}

// IDs returns all registered agent ids in ascending order.
func (s *ContinuousSpace) IDs() []int {
	ids := make([]int, 0, len(s.agents))
	for id := range s.agents {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

//
// ---------- Coordinate mapping ----------
//

// posToCell maps a coordinate to its 1-based grid cell.
func (s *ContinuousSpace) posToCell(pos model.Vec) []int {
	cell := make([]int, len(pos))
	for i, p := range pos {
		c := int(math.Ceil(p / s.spacing))
		if c < 1 {
			c = 1
		}
		cell[i] = c
	}
	return cell
}

// cellCenter returns the coordinate at the center of a cell.
func (s *ContinuousSpace) cellCenter(cell []int) model.Vec {
	out := make(model.Vec, len(cell))
	for i, c := range cell {
		out[i] = s.spacing * (float64(c) - 0.5)
	}
	return out
}

// distanceFromCellCenter is the Euclidean distance between a coordinate and
// the center of its cell, used as a conservative slack term when translating
// a metric radius into a cell radius.
func (s *ContinuousSpace) distanceFromCellCenter(pos model.Vec) float64 {
	return pos.DistanceTo(s.cellCenter(s.posToCell(pos)))
}

// NormalizePosition brings an arbitrary coordinate into the extent: periodic
// axes wrap, non-periodic axes clamp into [0, extent) without ever reaching
// the upper boundary.
func (s *ContinuousSpace) NormalizePosition(pos model.Vec) model.Vec {
	out := make(model.Vec, len(pos))
	for i, p := range pos {
		e := s.extent[i]
		if s.periodic[i] {
			p = math.Mod(p, e)
			if p < 0 {
				p += e
			}
		} else if p < 0 {
			p = 0
		} else if p >= e {
			p = math.Nextafter(e, 0)
		}
		out[i] = p
	}
	return out
}

// Distance returns the Euclidean distance between two coordinates, using the
// minimum-image convention on periodic axes.
func (s *ContinuousSpace) Distance(a, b model.Vec) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		if s.periodic[i] {
			d -= s.extent[i] * math.Round(d/s.extent[i])
		}
		sum += d * d
	}
	return math.Sqrt(sum)
}

//
// ---------- Agent mutation ----------
//

// AddAgent registers an agent at its cached position. Double insertion of an
// id is a consistency error; a position outside the extent is a validation
// error.
func (s *ContinuousSpace) AddAgent(a model.ContinuousAgent) error {
	pos := a.Position()
	if err := s.checkPos(pos); err != nil {
		return err
	}
	if _, dup := s.agents[a.ID()]; dup {
		return fmt.Errorf("%w: id %d", ErrAgentExists, a.ID())
	}
	s.grid.insert(a.ID(), s.posToCell(pos))
	s.agents[a.ID()] = a
	s.rec.AgentAdded()
	return nil
}

// RemoveAgent removes an agent from the space entirely. Removing an id that
// is not resident in its expected cell is a consistency error.
func (s *ContinuousSpace) RemoveAgent(id int) error {
	a, ok := s.agents[id]
	if !ok {
		return missingIDError(id, "continuous space registry")
	}
	if err := s.grid.remove(id, s.posToCell(a.Position())); err != nil {
		return err
	}
	delete(s.agents, id)
	s.rec.AgentRemoved()
	return nil
}

// MoveAgent places an agent at an absolute position inside [0, extent) per
// axis, updating the occupancy index only when the grid cell changes. The
// agent's cached position is always overwritten. Wrapping of out-of-extent
// targets is the displacement variant's job, not this one's.
func (s *ContinuousSpace) MoveAgent(a model.ContinuousAgent, pos model.Vec) error {
	if err := s.checkPos(pos); err != nil {
		return err
	}
	oldCell := s.posToCell(a.Position())
	newCell := s.posToCell(pos)
	if s.grid.linear(oldCell) != s.grid.linear(newCell) {
		if err := s.grid.remove(a.ID(), oldCell); err != nil {
			return err
		}
		s.grid.insert(a.ID(), newCell)
	}
	a.SetPosition(pos.Clone())
	s.rec.AgentMoved()
	return nil
}

// MoveAgentBy displaces an agent, wrapping coordinates on periodic axes and
// clamping them just short of the boundary on non-periodic axes.
func (s *ContinuousSpace) MoveAgentBy(a model.ContinuousAgent, delta model.Vec) error {
	if len(delta) != len(s.extent) {
		return fmt.Errorf("%w: displacement has %d axes, space has %d", ErrDimensionMismatch, len(delta), len(s.extent))
	}
	return s.MoveAgent(a, s.NormalizePosition(a.Position().Add(delta)))
}

// StepAgent advances an agent by its velocity over dt: the configured
// velocity hook runs first (a no-op by default), then the agent is displaced
// by vel*dt.
func (s *ContinuousSpace) StepAgent(a model.ContinuousAgent, dt float64) error {
	if s.updateVel != nil {
		s.updateVel(a, dt)
	}
	return s.MoveAgentBy(a, a.Velocity().Scale(dt))
}

//
// ---------- Neighbor queries ----------
//

// NearbyIDs returns the ids within radius r of a coordinate. The approximate
// search unions the occupancy slots of every cell within
// ceil((r+slack)/spacing) cells of the focal cell and therefore always
// overestimates, by at most one spacing; the exact search filters that union
// by true (periodic-aware) Euclidean distance.
func (s *ContinuousSpace) NearbyIDs(pos model.Vec, r float64, search SearchKind) ([]int, error) {
	if !search.valid() {
		return nil, fmt.Errorf("%w: %d", ErrBadSearch, int(search))
	}
	if len(pos) != len(s.extent) {
		return nil, fmt.Errorf("%w: position has %d axes, space has %d", ErrDimensionMismatch, len(pos), len(s.extent))
	}

	gridR := int(math.Ceil((r + s.distanceFromCellCenter(pos)) / s.spacing))
	var ids []int
	s.grid.neighborhood(s.posToCell(pos), gridR, func(lin int) {
		ids = append(ids, s.grid.slots[lin]...)
	})
	s.rec.QueryServed(search.String(), len(ids))
	if search == SearchApproximate {
		return ids, nil
	}

	out := ids[:0]
	for _, id := range ids {
		if s.Distance(pos, s.agents[id].Position()) <= r {
			out = append(out, id)
		}
	}
	return out, nil
}

// NearbyIDsOf returns the ids within radius r of the agent's position,
// excluding the agent's own id.
func (s *ContinuousSpace) NearbyIDsOf(a model.ContinuousAgent, r float64, search SearchKind) ([]int, error) {
	ids, err := s.NearbyIDs(a.Position(), r, search)
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

// NearbyAgents resolves NearbyIDsOf to the agents themselves.
func (s *ContinuousSpace) NearbyAgents(a model.ContinuousAgent, r float64, search SearchKind) ([]model.ContinuousAgent, error) {
	ids, err := s.NearbyIDsOf(a, r, search)
	if err != nil {
		return nil, err
	}
	out := make([]model.ContinuousAgent, len(ids))
	for i, id := range ids {
		out[i] = s.agents[id]
	}
	return out, nil
}

// NearestNeighbor returns the agent closest to a within radius r, or false
// when no other agent is that close. It scans the approximate candidate set;
// exactness is not needed because only the minimum distance matters. Ties
// keep the candidate encountered first.
func (s *ContinuousSpace) NearestNeighbor(a model.ContinuousAgent, r float64) (model.ContinuousAgent, bool) {
	ids, err := s.NearbyIDsOf(a, r, SearchApproximate)
	if err != nil || len(ids) == 0 {
		return nil, false
	}
	best := -1
	bestDist := math.Inf(1)
	for _, id := range ids {
		d := s.Distance(a.Position(), s.agents[id].Position())
		if d < bestDist {
			best, bestDist = id, d
		}
	}
	if best < 0 || bestDist > r {
		return nil, false
	}
	return s.agents[best], true
}

//
// ---------- Grid-cell capability surface ----------
//

// NPositions returns the number of grid cells.
func (s *ContinuousSpace) NPositions() int { return s.grid.ncells() }

// PositionEmpty reports whether the cell containing pos has no residents.
func (s *ContinuousSpace) PositionEmpty(pos model.Vec) bool {
	return len(s.IDsInPosition(pos)) == 0
}

// Positions enumerates the centers of all grid cells.
func (s *ContinuousSpace) Positions() []model.Vec {
	out := make([]model.Vec, s.grid.ncells())
	for lin := range out {
		out[lin] = s.cellCenter(s.grid.coords(lin))
	}
	return out
}

// IDsInPosition returns the occupancy slot of the cell containing pos, or nil
// for a coordinate outside the extent. The slot is a view into the index and
// is invalidated by the next mutation.
func (s *ContinuousSpace) IDsInPosition(pos model.Vec) []int {
	if s.checkPos(pos) != nil {
		return nil
	}
	return s.grid.slots[s.grid.linear(s.posToCell(pos))]
}

// NearbyPositions returns the centers of the cells within r cells of the
// cell containing pos, excluding that cell. Grid adjacency is undirected, so
// only NeighborDefault and NeighborAll are accepted.
func (s *ContinuousSpace) NearbyPositions(pos model.Vec, r int, mode NeighborMode) ([]model.Vec, error) {
	if mode != NeighborDefault && mode != NeighborAll {
		return nil, fmt.Errorf("%w: %s on a grid topology", ErrBadNeighborMode, mode)
	}
	if err := s.checkPos(pos); err != nil {
		return nil, err
	}
	focal := s.grid.linear(s.posToCell(pos))
	var out []model.Vec
	s.grid.neighborhood(s.posToCell(pos), r, func(lin int) {
		if lin != focal {
			out = append(out, s.cellCenter(s.grid.coords(lin)))
		}
	})
	return out, nil
}

func (s *ContinuousSpace) checkPos(pos model.Vec) error {
	if len(pos) != len(s.extent) {
		return fmt.Errorf("%w: position has %d axes, space has %d", ErrDimensionMismatch, len(pos), len(s.extent))
	}
	for i, p := range pos {
		if p < 0 || p >= s.extent[i] {
			return fmt.Errorf("%w: %v outside [0, %v) on axis %d", ErrOutOfExtent, p, s.extent[i], i)
		}
	}
	return nil
}

var _ Space[model.Vec] = (*ContinuousSpace)(nil)
