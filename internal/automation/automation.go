package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/physics"
	"github.com/san-kum/mdsim/internal/sim"
)

// Scenario is a scripted sequence of stages run on the same particles, for
// example an anneal followed by deposition and a cool-down.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Stages      []Stage `yaml:"stages"`
}

// Stage overrides the base configuration for a number of steps. Unset
// fields keep the base value.
type Stage struct {
	Name              string   `yaml:"name"`
	Steps             int      `yaml:"steps"`
	SampleEvery       int      `yaml:"sample_every"`
	Temperature       *float64 `yaml:"temperature"`
	Dissipation       *float64 `yaml:"dissipation"`
	InjectionPeriod   *int     `yaml:"injection_period"`
	InjectionVelocity *float64 `yaml:"injection_velocity"`
}

type StageResult struct {
	Stage  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Stages) == 0 {
		return nil, fmt.Errorf("scenario %q has no stages", scenario.Name)
	}
	return &scenario, nil
}

// Apply returns base with the stage's overrides applied.
func (st Stage) Apply(base config.Config) config.Config {
	if st.Steps > 0 {
		base.Steps = st.Steps
	}
	if st.SampleEvery > 0 {
		base.SampleEvery = st.SampleEvery
	}
	if st.Temperature != nil {
		base.Temperature = *st.Temperature
	}
	if st.Dissipation != nil {
		base.Dissipation = *st.Dissipation
	}
	if st.InjectionPeriod != nil {
		base.Injection.Period = *st.InjectionPeriod
	}
	if st.InjectionVelocity != nil {
		base.Injection.Velocity = *st.InjectionVelocity
	}
	return base
}

// Runner executes scenarios.
type Runner struct {
	logger *log.Logger
}

func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{logger: logger}
}

// Run seeds a substrate from base and carries the particles through every
// stage. It returns the results of the completed stages and the final
// particles even when a stage fails.
func (r *Runner) Run(ctx context.Context, base *config.Config, scenario *Scenario) ([]StageResult, []*physics.Particle, error) {
	species, err := base.SpeciesValue()
	if err != nil {
		return nil, nil, err
	}

	results := make([]StageResult, 0, len(scenario.Stages))
	var particles []*physics.Particle

	for i, stage := range scenario.Stages {
		name := stage.Name
		if name == "" {
			name = fmt.Sprintf("stage-%d", i+1)
		}
		cfg := stage.Apply(*base)
		if err := cfg.Validate(); err != nil {
			return results, particles, fmt.Errorf("%s: %w", name, err)
		}
		params, err := cfg.Parameters()
		if err != nil {
			return results, particles, fmt.Errorf("%s: %w", name, err)
		}

		opts := []sim.Option{sim.WithLogger(r.logger), sim.WithBulkHeight(cfg.BulkHeight)}
		var s *sim.Simulator
		if particles == nil {
			s, err = sim.Build(params, species, cfg.LatticeLayers, opts...)
		} else {
			s, err = sim.Restore(params, species, particles, opts...)
		}
		if err != nil {
			return results, particles, fmt.Errorf("%s: %w", name, err)
		}

		r.logger.Info("stage", "n", i+1, "of", len(scenario.Stages), "name", name,
			"steps", cfg.Steps, "temperature", cfg.Temperature)

		res, runErr := s.Run(ctx, sim.Config{Steps: cfg.Steps, SampleEvery: cfg.SampleEvery})
		particles = s.Grid().Particles()
		s.Close()

		results = append(results, StageResult{Stage: name, Result: res})
		if runErr != nil {
			return results, particles, fmt.Errorf("%s: %w", name, runErr)
		}
	}

	return results, particles, nil
}
