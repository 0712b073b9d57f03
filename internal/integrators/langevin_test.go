package integrators_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/grid"
	"github.com/san-kum/mdsim/internal/integrators"
	"github.com/san-kum/mdsim/internal/physics"
)

func boxParams() dynamo.Parameters {
	p := dynamo.DefaultParameters()
	p.SpaceSize = dynamo.Vector3{X: 2, Y: 2, Z: 2}
	p.CellCount = dynamo.Dims{X: 4, Y: 4, Z: 4}
	p.InteractionRadius = 0.8
	p.StaticCellLayerCount = 0
	p.Threads = 3
	p.IntegrationStep = 0.001
	return p
}

func tungsten(x, y, z float64) *physics.Particle {
	return physics.NewParticle(physics.Tungsten, dynamo.Vector3{X: x, Y: y, Z: z}, dynamo.Vector3{})
}

func totalMomentum(ps ...*physics.Particle) dynamo.Vector3 {
	var sum dynamo.Vector3
	for _, p := range ps {
		sum.AddAssign(p.Momentum())
	}
	return sum
}

var _ = Describe("Langevin", func() {
	var (
		params dynamo.Parameters
		g      *grid.Grid
		integ  *integrators.Langevin
	)

	setup := func(ps ...*physics.Particle) {
		var err error
		g, err = grid.New(params)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.AddParticles(ps)).To(Succeed())
		integ, err = integrators.NewLangevin(g, params)
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		params = boxParams()
	})

	AfterEach(func() {
		if g != nil {
			g.Close()
			g = nil
		}
	})

	It("rejects invalid parameters", func() {
		var err error
		g, err = grid.New(params)
		Expect(err).NotTo(HaveOccurred())

		bad := params
		bad.IntegrationStep = 0
		_, err = integrators.NewLangevin(g, bad)
		Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
	})

	Context("without a heat bath", func() {
		BeforeEach(func() {
			params.Temperature = 0
			params.DissipationCoefficient = 0
		})

		It("conserves the momentum of an interacting pair", func() {
			a := tungsten(0.86, 1, 1)
			b := tungsten(1.14, 1, 1)
			setup(a, b)

			start := totalMomentum(a, b)
			for i := 0; i < 200; i++ {
				Expect(integ.NextStep()).To(Succeed())
				p := totalMomentum(a, b)
				Expect(p.Sub(start).Norm()).To(BeNumerically("<", 1e-9))
			}

			Expect(a.Velocity.Norm()).To(BeNumerically(">", 0))
			Expect(a.RandomForce).To(Equal(dynamo.Vector3{}))
			Expect(integ.Steps()).To(Equal(200))
			Expect(integ.Time()).To(BeNumerically("~", 0.2, 1e-12))
		})

		It("pushes a compressed pair apart along their separation", func() {
			a := tungsten(0.86, 1, 1)
			b := tungsten(1.14, 1, 1)
			setup(a, b)

			Expect(integ.NextStep()).To(Succeed())
			Expect(a.Force.X).To(BeNumerically("<", 0))
			Expect(b.Force.X).To(BeNumerically(">", 0))
			Expect(a.Force.Y).To(BeZero())
			Expect(a.Position.X).To(BeNumerically("<", 0.86))
		})

		It("never moves a static particle", func() {
			substrate := tungsten(1, 1, 0.2)
			substrate.Static = true
			mobile := tungsten(1, 1, 0.47)
			setup(substrate, mobile)

			pos, vel := substrate.Position, substrate.Velocity
			for i := 0; i < 100; i++ {
				Expect(integ.NextStep()).To(Succeed())
			}
			Expect(substrate.Position).To(Equal(pos))
			Expect(substrate.Velocity).To(Equal(vel))
			Expect(mobile.Position.Z).NotTo(Equal(0.47))
		})

		It("includes an injected particle from the next step on", func() {
			a := tungsten(1, 1, 1)
			setup(a)

			Expect(integ.NextStep()).To(Succeed())
			Expect(a.Force).To(Equal(dynamo.Vector3{}))

			b := tungsten(1, 1, 1.29)
			Expect(g.AddParticle(b)).To(Succeed())
			idx, ok := g.Find(b)
			Expect(ok).To(BeTrue())
			Expect(idx).To(Equal(g.GetContainingCell(b.Position)))

			Expect(integ.NextStep()).To(Succeed())
			Expect(a.Force.Z).To(BeNumerically("<", 0))
			Expect(b.Force.Z).To(BeNumerically(">", 0))
			Expect(g.Count()).To(Equal(2))
		})

		It("surfaces a forbidden approach as a core overlap", func() {
			a := tungsten(1, 1, 1)
			b := tungsten(1.05, 1, 1)
			setup(a, b)

			err := integ.NextStep()
			Expect(errors.Is(err, dynamo.ErrCoreOverlap)).To(BeTrue())

			var pe *dynamo.PairError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Distance).To(BeNumerically("~", 0.05, 1e-9))
		})
	})

	Context("with a heat bath", func() {
		It("applies a thermal kick of the fluctuation-dissipation magnitude", func() {
			p := tungsten(1, 1, 1)
			setup(p)

			Expect(integ.NextStep()).To(Succeed())

			mag := params.RandomForceMagnitude(p.Mass)
			Expect(p.RandomForce.Norm()).To(BeNumerically("~", mag, 1e-9))

			want := p.RandomForce.Mul(params.IntegrationStep / p.Mass * params.DampingFactor())
			Expect(p.Velocity.Sub(want).Norm()).To(BeNumerically("<", 1e-12))
			Expect(p.Position.Sub(dynamo.Vector3{X: 1, Y: 1, Z: 1}).Sub(want.Mul(params.IntegrationStep)).Norm()).
				To(BeNumerically("<", 1e-12))
		})

		It("draws independent directions for different particles", func() {
			a := tungsten(0.25, 0.25, 0.25)
			b := tungsten(1.75, 1.75, 1.75)
			setup(a, b)

			Expect(integ.NextStep()).To(Succeed())
			Expect(a.RandomForce).NotTo(Equal(b.RandomForce))
		})

		It("keeps a dense crystal finite over many steps", func() {
			var ps []*physics.Particle
			a := physics.Tungsten.Lattice().Constant
			for i := 0; i < 5; i++ {
				for j := 0; j < 5; j++ {
					for k := 0; k < 5; k++ {
						base := dynamo.Vector3{X: 0.2 + float64(i)*a, Y: 0.2 + float64(j)*a, Z: 0.2 + float64(k)*a}
						ps = append(ps, physics.NewParticle(physics.Tungsten, base, dynamo.Vector3{}))
					}
				}
			}
			setup(ps...)

			for i := 0; i < 50; i++ {
				Expect(integ.NextStep()).To(Succeed())
			}
			for _, p := range ps {
				Expect(p.Position.IsValid()).To(BeTrue())
				Expect(p.Velocity.IsValid()).To(BeTrue())
			}
			Expect(g.Count()).To(Equal(len(ps)))
		})
	})
})
