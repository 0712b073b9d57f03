// Package lattice produces initial particle sets: a crystalline substrate
// filling the bottom of the domain and single atoms for deposition.
package lattice

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

type Generator struct {
	params  dynamo.Parameters
	species physics.Species
	normal  distuv.Normal
	uniform distuv.Uniform
}

// NewGenerator seeds its own random stream from params.Seed, separate from
// the integrator's worker streams.
func NewGenerator(params dynamo.Parameters, species physics.Species) *Generator {
	src := rand.NewPCG(params.Seed, math.MaxUint32)
	return &Generator{
		params:  params,
		species: species,
		normal:  distuv.Normal{Mu: 0, Sigma: 1, Src: src},
		uniform: distuv.Uniform{Min: 0, Max: 1, Src: src},
	}
}

func (g *Generator) Species() physics.Species { return g.species }

// Substrate fills the XY extent of the domain with whole unit cells of the
// species' lattice, stacked layers unit cells high from the bottom face.
// Particles in the bottom StaticCellLayerCount grid layers are static; the
// rest get Maxwell-Boltzmann velocities at the target temperature with the
// centre-of-mass drift removed.
func (g *Generator) Substrate(layers int) ([]*physics.Particle, error) {
	lat := g.species.Lattice()
	a := lat.Constant
	size := g.params.SpaceSize
	if layers <= 0 {
		return nil, fmt.Errorf("%w: lattice layers must be positive, got %d", dynamo.ErrInvalidConfig, layers)
	}
	if float64(layers)*a > size.Z {
		return nil, fmt.Errorf("%w: %d unit cells of %.4g nm exceed domain height %.4g nm",
			dynamo.ErrInvalidConfig, layers, a, size.Z)
	}

	nx := int(math.Floor(size.X / a))
	ny := int(math.Floor(size.Y / a))
	if nx == 0 || ny == 0 {
		return nil, fmt.Errorf("%w: domain %v narrower than one unit cell", dynamo.ErrInvalidConfig, size)
	}

	staticHeight := float64(g.params.StaticCellLayerCount) * g.params.CellSize().Z
	offset := a / 4
	basis := lat.Basis()

	particles := make([]*physics.Particle, 0, nx*ny*layers*len(basis))
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < layers; k++ {
				for _, b := range basis {
					pos := dynamo.Vector3{
						X: (float64(i)+b[0])*a + offset,
						Y: (float64(j)+b[1])*a + offset,
						Z: (float64(k)+b[2])*a + offset,
					}
					p := physics.NewParticle(g.species, pos, dynamo.Vector3{})
					p.Static = pos.Z < staticHeight
					particles = append(particles, p)
				}
			}
		}
	}

	g.thermalize(particles)
	return particles, nil
}

func (g *Generator) thermalize(particles []*physics.Particle) {
	if g.params.Temperature == 0 {
		return
	}

	var drift dynamo.Vector3
	mass, n := 0.0, 0
	for _, p := range particles {
		if p.Static {
			continue
		}
		sigma := math.Sqrt(dynamo.BoltzmannConstant * g.params.Temperature / p.Mass)
		p.Velocity = dynamo.Vector3{
			X: g.normal.Rand() * sigma,
			Y: g.normal.Rand() * sigma,
			Z: g.normal.Rand() * sigma,
		}
		drift.AddAssign(p.Momentum())
		mass += p.Mass
		n++
	}
	if n < 2 {
		return
	}

	drift.DivAssign(mass)
	for _, p := range particles {
		if !p.Static {
			p.Velocity.SubAssign(drift)
		}
	}
}

// Deposit returns a free atom at a random XY position half a cell below the
// top face, moving down at NewParticleVelocity.
func (g *Generator) Deposit() *physics.Particle {
	size := g.params.SpaceSize
	pos := dynamo.Vector3{
		X: g.uniform.Rand() * size.X,
		Y: g.uniform.Rand() * size.Y,
		Z: size.Z - g.params.CellSize().Z/2,
	}
	p := physics.NewParticle(g.species, pos, dynamo.Vector3{Z: -g.params.NewParticleVelocity})
	p.Free = true
	return p
}
