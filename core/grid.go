package core

// gridTopology is the uniform cell decomposition shared by continuous spaces:
// a D-dimensional box of dims[i] cells per axis, each axis optionally
// periodic, with one occupancy slot per cell. Cell coordinates are 1-based.
type gridTopology struct {
	dims     []int
	strides  []int
	periodic []bool
	slots    [][]int
}

func newGridTopology(dims []int, periodic []bool) *gridTopology {
	strides := make([]int, len(dims))
	n := 1
	for i := range dims {
		strides[i] = n
		n *= dims[i]
	}
	return &gridTopology{
		dims:     dims,
		strides:  strides,
		periodic: periodic,
		slots:    make([][]int, n),
	}
}

func (g *gridTopology) ncells() int { return len(g.slots) }

// linear maps a 1-based cell coordinate to its slot index.
func (g *gridTopology) linear(cell []int) int {
	idx := 0
	for i, c := range cell {
		idx += (c - 1) * g.strides[i]
	}
	return idx
}

// coords is the inverse of linear.
func (g *gridTopology) coords(lin int) []int {
	cell := make([]int, len(g.dims))
	for i := range g.dims {
		cell[i] = lin%(g.strides[i]*g.dims[i])/g.strides[i] + 1
	}
	return cell
}

func (g *gridTopology) insert(id int, cell []int) {
	lin := g.linear(cell)
	g.slots[lin] = insertID(g.slots[lin], id)
}

func (g *gridTopology) remove(id int, cell []int) error {
	lin := g.linear(cell)
	slot, ok := removeID(g.slots[lin], id)
	if !ok {
		return missingIDError(id, "grid cell")
	}
	g.slots[lin] = slot
	return nil
}

// neighborhood visits the linear index of every cell within Chebyshev
// distance r of center, including center itself. Periodic axes wrap; on a
// periodic axis too small to hold the full window the axis is walked once in
// full, so no cell is visited twice. Non-periodic axes clamp by skipping
// out-of-range coordinates.
func (g *gridTopology) neighborhood(center []int, r int, visit func(lin int)) {
	cell := make([]int, len(g.dims))
	var walk func(axis int)
	walk = func(axis int) {
		if axis == len(g.dims) {
			visit(g.linear(cell))
			return
		}
		d := g.dims[axis]
		if g.periodic[axis] && 2*r+1 >= d {
			for c := 1; c <= d; c++ {
				cell[axis] = c
				walk(axis + 1)
			}
			return
		}
		for off := -r; off <= r; off++ {
			c := center[axis] + off
			if g.periodic[axis] {
				c = wrapCellIndex(c, d)
			} else if c < 1 || c > d {
				continue
			}
			cell[axis] = c
			walk(axis + 1)
		}
	}
	walk(0)
}

// wrapCellIndex wraps a 1-based cell coordinate into [1, d].
func wrapCellIndex(c, d int) int {
	c = (c - 1) % d
	if c < 0 {
		c += d
	}
	return c + 1
}
