package integrators

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/grid"
)

// Langevin advances every particle of a grid with a stochastic
// velocity-Verlet scheme: pairwise forces, a thermal kick of fixed
// fluctuation-dissipation magnitude in a random direction, velocity damping
// by 1 - γ·dt, then a position drift. NextStep is not reentrant.
type Langevin struct {
	grid    *grid.Grid
	params  dynamo.Parameters
	noise   []distuv.Normal
	damping float64
	steps   int
}

// NewLangevin borrows g for the integrator's lifetime. Each grid worker gets
// its own normal source seeded from params.Seed and the worker index.
func NewLangevin(g *grid.Grid, params dynamo.Parameters) (*Langevin, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	noise := make([]distuv.Normal, g.Threads())
	for w := range noise {
		noise[w] = distuv.Normal{
			Mu:    0,
			Sigma: 1,
			Src:   rand.NewPCG(params.Seed, uint64(w)+1),
		}
	}

	return &Langevin{
		grid:    g,
		params:  params,
		noise:   noise,
		damping: params.DampingFactor(),
	}, nil
}

func (l *Langevin) Steps() int                    { return l.steps }
func (l *Langevin) Time() float64                 { return float64(l.steps) * l.params.IntegrationStep }
func (l *Langevin) Parameters() dynamo.Parameters { return l.params }

// NextStep runs the force, update and redistribution passes in order, each
// completing on every cell before the next begins.
func (l *Langevin) NextStep() error {
	if err := l.grid.ForEachCell(l.accumulateForces); err != nil {
		return fmt.Errorf("force pass: %w", err)
	}
	if err := l.grid.ForEachCell(l.advance); err != nil {
		return fmt.Errorf("update pass: %w", err)
	}
	if err := l.grid.RedistributeParticles(); err != nil {
		return fmt.Errorf("redistribution: %w", err)
	}
	l.steps++
	return nil
}

// accumulateForces sums contributions from the cell itself and its boundary
// cells. Static particles are skipped: their force is never consumed.
func (l *Langevin) accumulateForces(_ int, c *grid.Cell, _ grid.Index) error {
	local := c.Particles()
	for _, p := range local {
		if p.Static {
			continue
		}
		p.Force = dynamo.Vector3{}

		for _, q := range local {
			if q == p {
				continue
			}
			f, err := p.ForceFrom(q)
			if err != nil {
				return err
			}
			p.Force.AddAssign(f)
		}

		for _, b := range c.Boundary() {
			for _, q := range b.Particles() {
				f, err := p.ForceFrom(q)
				if err != nil {
					return err
				}
				p.Force.AddAssign(f)
			}
		}
	}
	return nil
}

func (l *Langevin) advance(worker int, c *grid.Cell, _ grid.Index) error {
	noise := &l.noise[worker]
	dt := l.params.IntegrationStep

	for _, p := range c.Particles() {
		if p.Static {
			continue
		}

		force := p.Force
		if mag := l.params.RandomForceMagnitude(p.Mass); mag > 0 {
			dir := dynamo.Vector3{X: noise.Rand(), Y: noise.Rand(), Z: noise.Rand()}.Normalize()
			random := dir.Mul(mag)
			p.RandomForce.AddAssign(random)
			force.AddAssign(random)
		}

		p.Velocity.AddScaled(force, dt/p.Mass)
		p.Velocity.MulAssign(l.damping)
		p.Position.AddScaled(p.Velocity, dt)
	}
	return nil
}
