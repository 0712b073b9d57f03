// Package metrics computes ensemble statistics over particle sets.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

// Metric accumulates a scalar over successive observations of a run.
type Metric interface {
	Name() string
	Observe(ps []*physics.Particle, t float64)
	Value() float64
	Reset()
}

// inEnsemble reports whether p counts toward thermal statistics.
func inEnsemble(p *physics.Particle) bool {
	return !p.Static && !p.Free
}

// Temperature is mean(m·v²) / (3·kB) over non-static, non-free particles,
// together with the number of particles it was taken over.
func Temperature(ps []*physics.Particle) (float64, int) {
	mv2 := make([]float64, 0, len(ps))
	for _, p := range ps {
		if inEnsemble(p) {
			mv2 = append(mv2, p.Mass*p.Velocity.NormSquared())
		}
	}
	if len(mv2) == 0 {
		return 0, 0
	}
	return stat.Mean(mv2, nil) / (3 * dynamo.BoltzmannConstant), len(mv2)
}

// KineticEnergy sums ½mv² over every particle.
func KineticEnergy(ps []*physics.Particle) float64 {
	total := 0.0
	for _, p := range ps {
		total += p.KineticEnergy()
	}
	return total
}

// Momentum sums m·v over every particle.
func Momentum(ps []*physics.Particle) dynamo.Vector3 {
	var sum dynamo.Vector3
	for _, p := range ps {
		sum.AddAssign(p.Momentum())
	}
	return sum
}

// DensityProfile returns the number density (1/nm³) in each of the
// CellCount.Z horizontal layers. Particles outside [0, SpaceSize.Z] are
// ignored.
func DensityProfile(ps []*physics.Particle, params dynamo.Parameters) []float64 {
	layers := params.CellCount.Z
	height := params.CellSize().Z
	extent := params.SpaceSize.Z

	dividers := make([]float64, layers+1)
	for i := range dividers {
		dividers[i] = float64(i) * height
	}
	dividers[layers] = math.Nextafter(extent, math.Inf(1))

	z := make([]float64, 0, len(ps))
	for _, p := range ps {
		if p.Position.Z >= 0 && p.Position.Z <= extent {
			z = append(z, p.Position.Z)
		}
	}
	sort.Float64s(z)

	counts := stat.Histogram(nil, dividers, z, nil)
	volume := params.SpaceSize.X * params.SpaceSize.Y * height
	for i := range counts {
		counts[i] /= volume
	}
	return counts
}
