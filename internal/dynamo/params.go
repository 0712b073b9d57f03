package dynamo

import (
	"fmt"
	"math"
	"runtime"
)

// BoltzmannConstant in amu·nm²/(ps²·K).
const BoltzmannConstant = 0.00831446261815324

// Parameters is the immutable configuration of a run. Construct one with
// DefaultParameters or by filling the fields, then call Validate before
// handing it to the grid or the integrator.
type Parameters struct {
	SpaceSize                Vector3 `json:"space_size"`
	CellCount                Dims    `json:"cell_count"`
	IntegrationStep          float64 `json:"integration_step"`
	Temperature              float64 `json:"temperature"`
	DissipationCoefficient   float64 `json:"dissipation_coefficient"`
	InteractionRadius        float64 `json:"interaction_radius"`
	StaticCellLayerCount     int     `json:"static_cell_layer_count"`
	NewParticleVelocity      float64 `json:"new_particle_velocity"`
	ParticleAppearancePeriod int     `json:"particle_appearance_period"`
	Threads                  int     `json:"threads"`
	Seed                     uint64  `json:"seed"`
}

func DefaultParameters() Parameters {
	return Parameters{
		SpaceSize:                Vector3{3.2, 3.2, 4.8},
		CellCount:                Dims{8, 8, 12},
		IntegrationStep:          0.002,
		Temperature:              300,
		DissipationCoefficient:   0.5,
		InteractionRadius:        0.8,
		StaticCellLayerCount:     1,
		NewParticleVelocity:      1.0,
		ParticleAppearancePeriod: 500,
		Threads:                  runtime.NumCPU(),
		Seed:                     1,
	}
}

// CellSize is SpaceSize divided componentwise by CellCount.
func (p Parameters) CellSize() Vector3 {
	return p.SpaceSize.DivElem(p.CellCount.Float())
}

// RandomForceMagnitude is the fluctuation-dissipation magnitude of the
// thermal force on a particle of the given mass.
func (p Parameters) RandomForceMagnitude(mass float64) float64 {
	return math.Sqrt(2 * p.DissipationCoefficient * BoltzmannConstant * mass * p.Temperature / p.IntegrationStep)
}

// DampingFactor is the per-step velocity multiplier 1 - γ·dt.
func (p Parameters) DampingFactor() float64 {
	return 1 - p.DissipationCoefficient*p.IntegrationStep
}

func (p Parameters) Validate() error {
	if p.CellCount.X <= 0 || p.CellCount.Y <= 0 || p.CellCount.Z <= 0 {
		return fmt.Errorf("%w: cell count must be positive on every axis, got %+v", ErrInvalidConfig, p.CellCount)
	}
	if !p.SpaceSize.IsValid() || p.SpaceSize.X <= 0 || p.SpaceSize.Y <= 0 || p.SpaceSize.Z <= 0 {
		return fmt.Errorf("%w: space size must be positive on every axis, got %v", ErrInvalidConfig, p.SpaceSize)
	}
	if p.IntegrationStep <= 0 {
		return fmt.Errorf("%w: integration step must be positive, got %g", ErrInvalidConfig, p.IntegrationStep)
	}
	if p.Temperature < 0 {
		return fmt.Errorf("%w: temperature must be non-negative, got %g", ErrInvalidConfig, p.Temperature)
	}
	if p.DissipationCoefficient < 0 {
		return fmt.Errorf("%w: dissipation coefficient must be non-negative, got %g", ErrInvalidConfig, p.DissipationCoefficient)
	}
	if p.DampingFactor() <= 0 {
		return fmt.Errorf("%w: dissipation %g too large for step %g", ErrInvalidConfig, p.DissipationCoefficient, p.IntegrationStep)
	}
	if p.InteractionRadius <= 0 {
		return fmt.Errorf("%w: interaction radius must be positive, got %g", ErrInvalidConfig, p.InteractionRadius)
	}
	if p.StaticCellLayerCount < 0 || p.StaticCellLayerCount > p.CellCount.Z {
		return fmt.Errorf("%w: static layer count must be in [0, %d], got %d", ErrInvalidConfig, p.CellCount.Z, p.StaticCellLayerCount)
	}
	if p.ParticleAppearancePeriod < 0 {
		return fmt.Errorf("%w: particle appearance period must be non-negative, got %d", ErrInvalidConfig, p.ParticleAppearancePeriod)
	}
	if p.Threads <= 0 {
		return fmt.Errorf("%w: thread count must be positive, got %d", ErrInvalidConfig, p.Threads)
	}
	return nil
}
