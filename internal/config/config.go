package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

const (
	DefaultSpecies       = "tungsten"
	DefaultLatticeLayers = 4
	DefaultSteps         = 2000
	DefaultSampleEvery   = 20
	DefaultBulkHeight    = 2.4
)

type Config struct {
	Species           string          `yaml:"species"`
	Space             Vec3            `yaml:"space"`
	Cells             Cells           `yaml:"cells"`
	Dt                float64         `yaml:"dt"`
	Temperature       float64         `yaml:"temperature"`
	Dissipation       float64         `yaml:"dissipation"`
	InteractionRadius float64         `yaml:"interaction_radius"`
	StaticLayers      int             `yaml:"static_layers"`
	LatticeLayers     int             `yaml:"lattice_layers"`
	Injection         InjectionConfig `yaml:"injection"`
	Threads           int             `yaml:"threads"`
	Seed              uint64          `yaml:"seed"`
	Steps             int             `yaml:"steps"`
	SampleEvery       int             `yaml:"sample_every"`
	BulkHeight        float64         `yaml:"bulk_height"`
}

type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type Cells struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

type InjectionConfig struct {
	Velocity float64 `yaml:"velocity"`
	Period   int     `yaml:"period"`
}

func DefaultConfig() *Config {
	p := dynamo.DefaultParameters()
	return &Config{
		Species:           DefaultSpecies,
		Space:             Vec3{X: p.SpaceSize.X, Y: p.SpaceSize.Y, Z: p.SpaceSize.Z},
		Cells:             Cells{X: p.CellCount.X, Y: p.CellCount.Y, Z: p.CellCount.Z},
		Dt:                p.IntegrationStep,
		Temperature:       p.Temperature,
		Dissipation:       p.DissipationCoefficient,
		InteractionRadius: p.InteractionRadius,
		StaticLayers:      p.StaticCellLayerCount,
		LatticeLayers:     DefaultLatticeLayers,
		Injection: InjectionConfig{
			Velocity: p.NewParticleVelocity,
			Period:   p.ParticleAppearancePeriod,
		},
		Seed:        p.Seed,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
		BulkHeight:  DefaultBulkHeight,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Parameters converts the config into validated engine parameters. A
// thread count of zero means one worker per CPU.
func (c *Config) Parameters() (dynamo.Parameters, error) {
	threads := c.Threads
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	p := dynamo.Parameters{
		SpaceSize:                dynamo.Vector3{X: c.Space.X, Y: c.Space.Y, Z: c.Space.Z},
		CellCount:                dynamo.Dims{X: c.Cells.X, Y: c.Cells.Y, Z: c.Cells.Z},
		IntegrationStep:          c.Dt,
		Temperature:              c.Temperature,
		DissipationCoefficient:   c.Dissipation,
		InteractionRadius:        c.InteractionRadius,
		StaticCellLayerCount:     c.StaticLayers,
		NewParticleVelocity:      c.Injection.Velocity,
		ParticleAppearancePeriod: c.Injection.Period,
		Threads:                  threads,
		Seed:                     c.Seed,
	}
	if err := p.Validate(); err != nil {
		return dynamo.Parameters{}, err
	}
	return p, nil
}

func (c *Config) SpeciesValue() (physics.Species, error) {
	return physics.ParseSpecies(c.Species)
}

// Validate checks the run-level settings that Parameters does not cover.
func (c *Config) Validate() error {
	if _, err := c.SpeciesValue(); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	if c.LatticeLayers <= 0 {
		return fmt.Errorf("%w: lattice layers must be positive, got %d", dynamo.ErrInvalidConfig, c.LatticeLayers)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrInvalidConfig, c.Steps)
	}
	if c.SampleEvery <= 0 {
		return fmt.Errorf("%w: sample_every must be positive, got %d", dynamo.ErrInvalidConfig, c.SampleEvery)
	}
	if c.BulkHeight < 0 || c.BulkHeight > c.Space.Z {
		return fmt.Errorf("%w: bulk height %g outside domain height %g", dynamo.ErrInvalidConfig, c.BulkHeight, c.Space.Z)
	}
	_, err := c.Parameters()
	return err
}
