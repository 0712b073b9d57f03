package metrics

import (
	"github.com/san-kum/mdsim/internal/physics"
)

// Stability is the fraction of observations in which no mobile particle
// moved faster than threshold (nm/ps).
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(ps []*physics.Particle, t float64) {
	s.samples++
	limit := s.threshold * s.threshold
	for _, p := range ps {
		if !p.Static && p.Velocity.NormSquared() > limit {
			s.violations++
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
