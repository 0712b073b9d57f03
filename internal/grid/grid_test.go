package grid_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/grid"
	"github.com/san-kum/mdsim/internal/physics"
)

func cubeParams(cells, threads int, size, radius float64) dynamo.Parameters {
	p := dynamo.DefaultParameters()
	p.SpaceSize = dynamo.Vector3{X: size, Y: size, Z: size}
	p.CellCount = dynamo.Dims{X: cells, Y: cells, Z: cells}
	p.InteractionRadius = radius
	p.StaticCellLayerCount = 0
	p.Threads = threads
	return p
}

func atom(x, y, z float64) *physics.Particle {
	return physics.NewParticle(physics.Tungsten, dynamo.Vector3{X: x, Y: y, Z: z}, dynamo.Vector3{})
}

func cellOf(g *grid.Grid, p *physics.Particle) grid.Index {
	idx, ok := g.Find(p)
	Expect(ok).To(BeTrue(), "particle not found in any cell")
	return idx
}

var _ = Describe("Grid", func() {
	var g *grid.Grid

	AfterEach(func() {
		if g != nil {
			g.Close()
			g = nil
		}
	})

	Describe("construction", func() {
		It("rejects invalid parameters", func() {
			p := cubeParams(4, 2, 4, 1)
			p.CellCount.X = 0
			_, err := grid.New(p)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())

			p = cubeParams(4, 2, 4, 1)
			p.Threads = 0
			_, err = grid.New(p)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})

		It("divides the domain evenly", func() {
			p := dynamo.DefaultParameters()
			p.Threads = 3
			var err error
			g, err = grid.New(p)
			Expect(err).NotTo(HaveOccurred())

			for axis := 0; axis < 3; axis++ {
				Expect(g.CellSize().At(axis) * float64(g.CellCount().At(axis))).
					To(BeNumerically("~", p.SpaceSize.At(axis), 1e-12))
			}
		})

		It("places cell centres at the middle of each cell", func() {
			var err error
			g, err = grid.New(cubeParams(4, 1, 2, 0.5))
			Expect(err).NotTo(HaveOccurred())

			c := g.Cell(grid.Index{Row: 1, Column: 2, Layer: 3})
			Expect(c.Center).To(Equal(dynamo.Vector3{X: 0.75, Y: 1.25, Z: 1.75}))
			Expect(c.Index()).To(Equal(grid.Index{Row: 1, Column: 2, Layer: 3}))
		})

		It("keeps every boundary cell within the interaction radius", func() {
			p := cubeParams(6, 2, 3, 1.3)
			p.SpaceSize.Z = 4.5
			var err error
			g, err = grid.New(p)
			Expect(err).NotTo(HaveOccurred())

			n := g.CellCount()
			for r := 0; r < n.X; r++ {
				for c := 0; c < n.Y; c++ {
					for l := 0; l < n.Z; l++ {
						cell := g.Cell(grid.Index{Row: r, Column: c, Layer: l})
						Expect(cell.Boundary()).NotTo(BeEmpty())
						for _, b := range cell.Boundary() {
							Expect(b).NotTo(BeIdenticalTo(cell))
							Expect(b.Center.Sub(cell.Center).Norm()).To(BeNumerically("<=", p.InteractionRadius+1e-12))
						}
					}
				}
			}
		})

		It("lists exactly the face neighbours when the radius equals the cell size", func() {
			var err error
			g, err = grid.New(cubeParams(3, 1, 3, 1))
			Expect(err).NotTo(HaveOccurred())

			Expect(g.Cell(grid.Index{Row: 1, Column: 1, Layer: 1}).Boundary()).To(HaveLen(6))
			Expect(g.Cell(grid.Index{}).Boundary()).To(HaveLen(3))
		})

		It("panics on out-of-range cell indices", func() {
			var err error
			g, err = grid.New(cubeParams(2, 1, 2, 1))
			Expect(err).NotTo(HaveOccurred())

			Expect(func() { g.Cell(grid.Index{Row: 2}) }).To(Panic())
			Expect(func() { g.Cell(grid.Index{Layer: -1}) }).To(Panic())
		})
	})

	Describe("GetContainingCell", func() {
		BeforeEach(func() {
			var err error
			g, err = grid.New(cubeParams(4, 2, 4, 1))
			Expect(err).NotTo(HaveOccurred())
		})

		DescribeTable("maps positions to cells",
			func(pos dynamo.Vector3, want grid.Index) {
				Expect(g.GetContainingCell(pos)).To(Equal(want))
			},
			Entry("origin", dynamo.Vector3{}, grid.Index{}),
			Entry("interior", dynamo.Vector3{X: 1.5, Y: 2.5, Z: 3.5}, grid.Index{Row: 1, Column: 2, Layer: 3}),
			Entry("upper face", dynamo.Vector3{X: 4, Y: 4, Z: 4}, grid.Index{Row: 3, Column: 3, Layer: 3}),
			Entry("below zero goes to the upper face", dynamo.Vector3{X: -0.1, Y: 1, Z: 1}, grid.Index{Row: 3, Column: 1, Layer: 1}),
			Entry("above extent goes to the lower face", dynamo.Vector3{X: 1, Y: 4.2, Z: 1}, grid.Index{Row: 1, Column: 0, Layer: 1}),
		)

		It("panics on non-finite positions", func() {
			Expect(func() { g.GetContainingCell(dynamo.Vector3{X: math.NaN()}) }).To(Panic())
		})
	})

	Describe("two-by-two-by-two scenario", func() {
		var p0, p1 *physics.Particle

		BeforeEach(func() {
			var err error
			g, err = grid.New(cubeParams(2, 2, 2, 1))
			Expect(err).NotTo(HaveOccurred())

			p0 = atom(0.5, 0.5, 0.5)
			p1 = atom(1.5, 0.5, 0.5)
			Expect(g.AddParticles([]*physics.Particle{p0, p1})).To(Succeed())
		})

		It("has exactly the face neighbours", func() {
			Expect(g.Cell(grid.Index{}).Boundary()).To(HaveLen(3))
		})

		It("resolves each particle to its own cell", func() {
			Expect(g.GetContainingCell(p0.Position)).To(Equal(grid.Index{}))
			Expect(g.GetContainingCell(p1.Position)).To(Equal(grid.Index{Row: 1}))
			Expect(cellOf(g, p0)).To(Equal(grid.Index{}))
			Expect(cellOf(g, p1)).To(Equal(grid.Index{Row: 1}))
		})

		It("moves a particle whose position left its cell", func() {
			p0.Position = dynamo.Vector3{X: 1.5, Y: 0.5, Z: 0.5}
			Expect(g.RedistributeParticles()).To(Succeed())

			Expect(g.Cell(grid.Index{Row: 1}).Particles()).To(ContainElement(p0))
			Expect(g.Cell(grid.Index{}).Particles()).NotTo(ContainElement(p0))
			Expect(g.Count()).To(Equal(2))
		})
	})

	Describe("AddParticle", func() {
		BeforeEach(func() {
			var err error
			g, err = grid.New(cubeParams(4, 2, 4, 1))
			Expect(err).NotTo(HaveOccurred())
		})

		It("files an injected particle into the cell containing it", func() {
			p := atom(2.5, 0.5, 3.5)
			Expect(g.AddParticle(p)).To(Succeed())
			Expect(g.Cell(grid.Index{Row: 2, Column: 0, Layer: 3}).Particles()).To(ConsistOf(p))
		})

		It("rejects non-finite positions", func() {
			err := g.AddParticle(atom(math.Inf(1), 0, 0))
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())

			err = g.AddParticles([]*physics.Particle{atom(1, 1, 1), atom(0, math.NaN(), 0)})
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
			Expect(g.Count()).To(Equal(1))
		})
	})

	Describe("ForEachCell", func() {
		It("visits every cell exactly once with more threads than rows", func() {
			p := cubeParams(3, 8, 3, 1)
			var err error
			g, err = grid.New(p)
			Expect(err).NotTo(HaveOccurred())

			var visits [27]atomic.Int32
			var maxWorker atomic.Int32
			Expect(g.ForEachCell(func(worker int, c *grid.Cell, idx grid.Index) error {
				if c.Index() != idx {
					return errors.New("cell handed out with the wrong index")
				}
				visits[(idx.Row*3+idx.Column)*3+idx.Layer].Add(1)
				for {
					cur := maxWorker.Load()
					if int32(worker) <= cur || maxWorker.CompareAndSwap(cur, int32(worker)) {
						break
					}
				}
				return nil
			})).To(Succeed())

			for i := range visits {
				Expect(visits[i].Load()).To(Equal(int32(1)))
			}
			Expect(int(maxWorker.Load())).To(BeNumerically("<", g.Threads()))
		})

		It("returns errors raised by any worker", func() {
			var err error
			g, err = grid.New(cubeParams(4, 4, 4, 1))
			Expect(err).NotTo(HaveOccurred())

			boom := errors.New("boom")
			err = g.ForEachCell(func(_ int, _ *grid.Cell, idx grid.Index) error {
				if idx.Row == 0 && idx.Layer == 2 {
					return boom
				}
				return nil
			})
			Expect(errors.Is(err, boom)).To(BeTrue())
		})

		It("fails after Close", func() {
			var err error
			g, err = grid.New(cubeParams(2, 2, 2, 1))
			Expect(err).NotTo(HaveOccurred())
			g.Close()

			err = g.ForEachCell(func(int, *grid.Cell, grid.Index) error { return nil })
			Expect(errors.Is(err, dynamo.ErrPoolClosed)).To(BeTrue())
		})
	})

	Describe("RedistributeParticles", func() {
		var particles []*physics.Particle
		var rng *rand.Rand

		BeforeEach(func() {
			var err error
			g, err = grid.New(cubeParams(6, 4, 6, 1.5))
			Expect(err).NotTo(HaveOccurred())

			rng = rand.New(rand.NewPCG(3, 5))
			particles = make([]*physics.Particle, 2000)
			for i := range particles {
				particles[i] = atom(rng.Float64()*6, rng.Float64()*6, rng.Float64()*6)
			}
			Expect(g.AddParticles(particles)).To(Succeed())
		})

		It("keeps every particle in the cell containing it across random moves", func() {
			for round := 0; round < 5; round++ {
				for _, p := range particles {
					p.Position.AddAssign(dynamo.Vector3{
						X: rng.NormFloat64() * 1.5,
						Y: rng.NormFloat64() * 1.5,
						Z: rng.NormFloat64() * 1.5,
					})
					for axis := 0; axis < 3; axis++ {
						p.Position.Set(axis, math.Mod(math.Abs(p.Position.At(axis)), 6))
					}
				}
				Expect(g.RedistributeParticles()).To(Succeed())

				Expect(g.Count()).To(Equal(len(particles)))
				for _, p := range particles {
					Expect(cellOf(g, p)).To(Equal(g.GetContainingCell(p.Position)))
				}
			}
		})

		It("is idempotent", func() {
			for _, p := range particles {
				p.Position.X = math.Mod(p.Position.X+2.7, 6)
			}
			Expect(g.RedistributeParticles()).To(Succeed())

			before := make(map[*physics.Particle]grid.Index, len(particles))
			for _, p := range particles {
				before[p] = cellOf(g, p)
			}

			Expect(g.RedistributeParticles()).To(Succeed())
			for _, p := range particles {
				Expect(cellOf(g, p)).To(Equal(before[p]))
			}
		})

		It("reports non-finite positions", func() {
			particles[17].Position.Y = math.NaN()
			err := g.RedistributeParticles()
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		})
	})
})
