package physics

import (
	"github.com/san-kum/mdsim/internal/dynamo"
)

// Particle is the mutable state of one atom. Static particles only exert
// force; Free particles are integrated but excluded from ensemble statistics.
type Particle struct {
	Position    dynamo.Vector3
	Velocity    dynamo.Vector3
	Force       dynamo.Vector3
	RandomForce dynamo.Vector3
	Mass        float64
	Species     Species
	Static      bool
	Free        bool
}

func NewParticle(s Species, position, velocity dynamo.Vector3) *Particle {
	return &Particle{
		Position: position,
		Velocity: velocity,
		Mass:     s.Mass(),
		Species:  s,
	}
}

// ForceFrom returns the force other exerts on p under p's force law: the law
// magnitude at their separation along the unit vector from other to p,
// scaled by other's mass.
func (p *Particle) ForceFrom(other *Particle) (dynamo.Vector3, error) {
	d := p.Position.Sub(other.Position)
	r2 := d.NormSquared()
	law := p.Species.Law()
	if cut := law.Cutoff(); r2 > cut*cut {
		return dynamo.Vector3{}, nil
	}
	r := d.Norm()
	mag, err := law.Force(r)
	if err != nil {
		return dynamo.Vector3{}, &dynamo.PairError{
			Position: p.Position,
			Other:    other.Position,
			Distance: r,
			Wrapped:  err,
		}
	}
	if mag == 0 {
		return dynamo.Vector3{}, nil
	}
	return d.Mul(mag * other.Mass / r), nil
}

func (p *Particle) KineticEnergy() float64 {
	return 0.5 * p.Mass * p.Velocity.NormSquared()
}

// Momentum is Mass·Velocity.
func (p *Particle) Momentum() dynamo.Vector3 {
	return p.Velocity.Mul(p.Mass)
}

// Clone returns an independent copy.
func (p *Particle) Clone() *Particle {
	c := *p
	return &c
}
