package metrics

import (
	"github.com/san-kum/mdsim/internal/physics"
)

// ThermostatLoad averages, over observations, the mean magnitude of the
// accumulated random force on mobile particles.
type ThermostatLoad struct {
	name    string
	sum     float64
	samples int
}

func NewThermostatLoad() *ThermostatLoad {
	return &ThermostatLoad{name: "thermostat_load"}
}

func (l *ThermostatLoad) Name() string {
	return l.name
}

func (l *ThermostatLoad) Observe(ps []*physics.Particle, t float64) {
	total, n := 0.0, 0
	for _, p := range ps {
		if !p.Static {
			total += p.RandomForce.Norm()
			n++
		}
	}
	if n == 0 {
		return
	}
	l.sum += total / float64(n)
	l.samples++
}

func (l *ThermostatLoad) Value() float64 {
	if l.samples == 0 {
		return 0
	}
	return l.sum / float64(l.samples)
}

func (l *ThermostatLoad) Reset() {
	l.sum = 0
	l.samples = 0
}
