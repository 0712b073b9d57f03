package metrics

import (
	"github.com/san-kum/mdsim/internal/physics"
)

// Energy averages the total kinetic energy over observations.
type Energy struct {
	name    string
	total   float64
	samples int
}

func NewEnergy() *Energy {
	return &Energy{name: "kinetic_energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(ps []*physics.Particle, t float64) {
	e.total += KineticEnergy(ps)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// Thermometer averages the ensemble temperature and remembers the latest
// reading.
type Thermometer struct {
	name    string
	sum     float64
	last    float64
	samples int
}

func NewThermometer() *Thermometer {
	return &Thermometer{name: "temperature"}
}

func (th *Thermometer) Name() string { return th.name }

func (th *Thermometer) Observe(ps []*physics.Particle, t float64) {
	temp, n := Temperature(ps)
	if n == 0 {
		return
	}
	th.last = temp
	th.sum += temp
	th.samples++
}

func (th *Thermometer) Value() float64 {
	if th.samples == 0 {
		return 0
	}
	return th.sum / float64(th.samples)
}

func (th *Thermometer) Last() float64 { return th.last }

func (th *Thermometer) Reset() {
	th.sum = 0
	th.last = 0
	th.samples = 0
}
