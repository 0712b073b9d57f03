package grid

import (
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

// Index addresses a cell by (row, column, layer) along X, Y and Z.
type Index struct {
	Row, Column, Layer int
}

func (i Index) String() string {
	return fmt.Sprintf("(%d,%d,%d)", i.Row, i.Column, i.Layer)
}

// Cell is one bucket of the grid.
type Cell struct {
	Center dynamo.Vector3

	index     Index
	flat      int
	mu        sync.Mutex
	particles []*physics.Particle
	boundary  []*Cell
}

func (c *Cell) Index() Index { return c.index }

// Particles returns the cell's bucket. The slice is only stable between
// passes or inside a CellFunc visiting this cell.
func (c *Cell) Particles() []*physics.Particle { return c.particles }

// Boundary returns the cells whose centres are within the interaction radius.
func (c *Cell) Boundary() []*Cell { return c.boundary }

func (c *Cell) remove(p *physics.Particle) bool {
	for i, q := range c.particles {
		if q == p {
			last := len(c.particles) - 1
			c.particles[i] = c.particles[last]
			c.particles[last] = nil
			c.particles = c.particles[:last]
			return true
		}
	}
	return false
}

// CellFunc is invoked once per cell by ForEachCell. worker identifies the
// goroutine running the call, in [0, Threads()).
type CellFunc func(worker int, c *Cell, idx Index) error

type move struct {
	p   *physics.Particle
	dst *Cell
}

type Grid struct {
	cells     []Cell
	cellCount dynamo.Dims
	cellSize  dynamo.Vector3
	spaceSize dynamo.Vector3
	radiusSq  float64
	pool      *pool
	scratch   [][]move
}

// New builds the cells and their boundary lists and starts Threads-1
// background workers. Call Close to stop them.
func New(params dynamo.Parameters) (*Grid, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	g := &Grid{
		cells:     make([]Cell, params.CellCount.Volume()),
		cellCount: params.CellCount,
		cellSize:  params.CellSize(),
		spaceSize: params.SpaceSize,
		radiusSq:  params.InteractionRadius * params.InteractionRadius,
		pool:      newPool(params.Threads),
		scratch:   make([][]move, params.Threads),
	}

	for row := 0; row < g.cellCount.X; row++ {
		for col := 0; col < g.cellCount.Y; col++ {
			for layer := 0; layer < g.cellCount.Z; layer++ {
				idx := Index{row, col, layer}
				c := &g.cells[g.flat(idx)]
				c.index = idx
				c.flat = g.flat(idx)
				c.Center = dynamo.Vector3{
					X: g.cellSize.X * (float64(row) + 0.5),
					Y: g.cellSize.Y * (float64(col) + 0.5),
					Z: g.cellSize.Z * (float64(layer) + 0.5),
				}
			}
		}
	}

	reach := dynamo.Dims{
		X: int(math.Ceil(params.InteractionRadius / g.cellSize.X)),
		Y: int(math.Ceil(params.InteractionRadius / g.cellSize.Y)),
		Z: int(math.Ceil(params.InteractionRadius / g.cellSize.Z)),
	}
	for i := range g.cells {
		g.buildBoundary(&g.cells[i], reach)
	}

	return g, nil
}

// buildBoundary scans the reach box around c, clipped to the domain.
func (g *Grid) buildBoundary(c *Cell, reach dynamo.Dims) {
	lo := Index{
		max(c.index.Row-reach.X, 0),
		max(c.index.Column-reach.Y, 0),
		max(c.index.Layer-reach.Z, 0),
	}
	hi := Index{
		min(c.index.Row+reach.X, g.cellCount.X-1),
		min(c.index.Column+reach.Y, g.cellCount.Y-1),
		min(c.index.Layer+reach.Z, g.cellCount.Z-1),
	}

	for row := lo.Row; row <= hi.Row; row++ {
		for col := lo.Column; col <= hi.Column; col++ {
			for layer := lo.Layer; layer <= hi.Layer; layer++ {
				other := &g.cells[g.flat(Index{row, col, layer})]
				if other == c {
					continue
				}
				if other.Center.Sub(c.Center).NormSquared() <= g.radiusSq {
					c.boundary = append(c.boundary, other)
				}
			}
		}
	}
}

// Close stops the worker pool. Further passes fail with ErrPoolClosed.
func (g *Grid) Close() {
	g.pool.close()
}

func (g *Grid) CellCount() dynamo.Dims    { return g.cellCount }
func (g *Grid) CellSize() dynamo.Vector3  { return g.cellSize }
func (g *Grid) SpaceSize() dynamo.Vector3 { return g.spaceSize }
func (g *Grid) Threads() int              { return g.pool.size() }

func (g *Grid) inBounds(idx Index) bool {
	return idx.Row >= 0 && idx.Row < g.cellCount.X &&
		idx.Column >= 0 && idx.Column < g.cellCount.Y &&
		idx.Layer >= 0 && idx.Layer < g.cellCount.Z
}

func (g *Grid) flat(idx Index) int {
	return (idx.Row*g.cellCount.Y+idx.Column)*g.cellCount.Z + idx.Layer
}

// Cell returns the cell at idx. It panics if idx is outside the grid.
func (g *Grid) Cell(idx Index) *Cell {
	if !g.inBounds(idx) {
		panic(fmt.Sprintf("grid: cell index %v outside %+v", idx, g.cellCount))
	}
	return &g.cells[g.flat(idx)]
}

// GetContainingCell maps a position to its cell. Each axis is handled
// independently: a component below zero is placed on the upper face, one
// above the extent on the lower face, and a component exactly on the upper
// face falls into the last cell.
//
// TODO: the face-teleport rule differs from modular wraparound by the domain
// length; revisit together with a periodic force evaluation.
func (g *Grid) GetContainingCell(pos dynamo.Vector3) Index {
	if !pos.IsValid() {
		panic(fmt.Sprintf("grid: position %v is not finite", pos))
	}
	var idx [3]int
	for axis := 0; axis < 3; axis++ {
		c := pos.At(axis)
		extent := g.spaceSize.At(axis)
		n := g.cellCount.At(axis)
		if c < 0 {
			c = extent
		} else if c > extent {
			c = 0
		}
		i := int(math.Floor(c/g.cellSize.At(axis))) % (n + 1)
		if i == n {
			i = n - 1
		}
		idx[axis] = i
	}

	out := Index{idx[0], idx[1], idx[2]}
	if !g.inBounds(out) {
		panic(fmt.Sprintf("grid: position %v maps outside the grid", pos))
	}
	return out
}

// AddParticle files p into the cell containing its position.
func (g *Grid) AddParticle(p *physics.Particle) error {
	if !p.Position.IsValid() {
		return fmt.Errorf("%w: particle position %v", dynamo.ErrInvalidState, p.Position)
	}
	c := g.Cell(g.GetContainingCell(p.Position))
	c.mu.Lock()
	c.particles = append(c.particles, p)
	c.mu.Unlock()
	return nil
}

// AddParticles adds every particle, stopping at the first invalid one.
func (g *Grid) AddParticles(ps []*physics.Particle) error {
	for i, p := range ps {
		if err := g.AddParticle(p); err != nil {
			return fmt.Errorf("particle %d: %w", i, err)
		}
	}
	return nil
}

// ForEachCell runs fn on every cell. Rows are split into Threads()
// contiguous ranges; the last range runs on the calling goroutine. It
// returns after every range has finished, joining any errors.
func (g *Grid) ForEachCell(fn CellFunc) error {
	return g.pool.run(g.cellCount.X, func(worker, lo, hi int) error {
		for row := lo; row < hi; row++ {
			for col := 0; col < g.cellCount.Y; col++ {
				for layer := 0; layer < g.cellCount.Z; layer++ {
					idx := Index{row, col, layer}
					if err := fn(worker, &g.cells[g.flat(idx)], idx); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

// RedistributeParticles moves every particle whose position has left its
// cell into the cell that now contains it.
func (g *Grid) RedistributeParticles() error {
	return g.ForEachCell(func(worker int, c *Cell, idx Index) error {
		moves := g.scratch[worker][:0]

		c.mu.Lock()
		for _, p := range c.particles {
			if !p.Position.IsValid() {
				c.mu.Unlock()
				return fmt.Errorf("%w: particle in cell %v at %v", dynamo.ErrInvalidState, idx, p.Position)
			}
			dst := &g.cells[g.flat(g.GetContainingCell(p.Position))]
			if dst != c {
				moves = append(moves, move{p: p, dst: dst})
			}
		}
		c.mu.Unlock()

		for i, m := range moves {
			g.transfer(m.p, c, m.dst)
			moves[i] = move{}
		}
		g.scratch[worker] = moves[:0]
		return nil
	})
}

// transfer locks src and dst in flat-index order so opposing moves between
// the same pair of cells cannot deadlock.
func (g *Grid) transfer(p *physics.Particle, src, dst *Cell) {
	first, second := src, dst
	if dst.flat < src.flat {
		first, second = dst, src
	}
	first.mu.Lock()
	second.mu.Lock()
	if src.remove(p) {
		dst.particles = append(dst.particles, p)
	}
	second.mu.Unlock()
	first.mu.Unlock()
}

// Particles returns every particle in the grid. Call between passes.
func (g *Grid) Particles() []*physics.Particle {
	out := make([]*physics.Particle, 0, g.Count())
	for i := range g.cells {
		out = append(out, g.cells[i].particles...)
	}
	return out
}

func (g *Grid) Count() int {
	n := 0
	for i := range g.cells {
		n += len(g.cells[i].particles)
	}
	return n
}

// Find returns the index of the cell whose bucket holds p.
func (g *Grid) Find(p *physics.Particle) (Index, bool) {
	for i := range g.cells {
		for _, q := range g.cells[i].particles {
			if q == p {
				return g.cells[i].index, true
			}
		}
	}
	return Index{}, false
}
