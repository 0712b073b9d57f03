package sim

import (
	"time"

	"github.com/san-kum/mdsim/internal/grid"
)

// Observer is notified at every sampled step.
type Observer interface {
	OnStep(step int, t float64, g *grid.Grid)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, t float64, g *grid.Grid)

func (f ObserverFunc) OnStep(step int, t float64, g *grid.Grid) { f(step, t, g) }

type Config struct {
	Steps       int
	SampleEvery int
}

func DefaultConfig() Config {
	return Config{
		Steps:       1000,
		SampleEvery: 10,
	}
}

type Result struct {
	Times          []float64
	Temperatures   []float64
	Counts         []int
	Metrics        map[string]float64
	DensityProfile []float64
	StepsTaken     int
	Injected       int
	Elapsed        time.Duration
}
