package physics

import (
	"math"

	"github.com/san-kum/mdsim/internal/dynamo"
)

// ForceLaw is the capability shared by every species' pair interaction.
type ForceLaw interface {
	// Force returns the signed force magnitude per unit partner mass at
	// separation r. Positive is repulsive.
	Force(r float64) (float64, error)
	// Cutoff is the separation beyond which Force is zero.
	Cutoff() float64
	// CoreRadius is the separation below which Force fails.
	CoreRadius() float64
}

// Morse is U(r) = D·(1 - e^{-α(r-r0)})² - D, normalised by ReferenceMass.
type Morse struct {
	Depth         float64 // D, amu·nm²/ps²
	Alpha         float64 // α, 1/nm
	Equilibrium   float64 // r0, nm
	ReferenceMass float64
	Cut           float64
	Core          float64
}

func (m Morse) Force(r float64) (float64, error) {
	if r < m.Core {
		return 0, dynamo.ErrCoreOverlap
	}
	if r > m.Cut {
		return 0, nil
	}
	e := math.Exp(-m.Alpha * (r - m.Equilibrium))
	return 2 * m.Alpha * m.Depth * (e*e - e) / m.ReferenceMass, nil
}

func (m Morse) Cutoff() float64     { return m.Cut }
func (m Morse) CoreRadius() float64 { return m.Core }

// Potential returns U(r), or zero beyond the cutoff.
func (m Morse) Potential(r float64) float64 {
	if r > m.Cut {
		return 0
	}
	e := math.Exp(-m.Alpha * (r - m.Equilibrium))
	return m.Depth * ((1-e)*(1-e) - 1)
}

// LennardJones is U(r) = 4ε[(σ/r)¹² - (σ/r)⁶], normalised by ReferenceMass.
type LennardJones struct {
	Epsilon       float64 // amu·nm²/ps²
	Sigma         float64 // nm
	ReferenceMass float64
	Cut           float64
	Core          float64
}

func (lj LennardJones) Force(r float64) (float64, error) {
	if r < lj.Core {
		return 0, dynamo.ErrCoreOverlap
	}
	if r > lj.Cut {
		return 0, nil
	}
	sr6 := math.Pow(lj.Sigma/r, 6)
	return 24 * lj.Epsilon * (2*sr6*sr6 - sr6) / r / lj.ReferenceMass, nil
}

func (lj LennardJones) Cutoff() float64     { return lj.Cut }
func (lj LennardJones) CoreRadius() float64 { return lj.Core }

func (lj LennardJones) Potential(r float64) float64 {
	if r > lj.Cut {
		return 0
	}
	sr6 := math.Pow(lj.Sigma/r, 6)
	return 4 * lj.Epsilon * (sr6*sr6 - sr6)
}
