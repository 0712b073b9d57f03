package sim

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/grid"
	"github.com/san-kum/mdsim/internal/integrators"
	"github.com/san-kum/mdsim/internal/lattice"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/physics"
)

const maxInjectAttempts = 16

// Simulator is the host loop around a grid and its integrator: it injects
// deposited atoms every ParticleAppearancePeriod steps, marks atoms that
// leave the bulk as free, and samples statistics. Not safe for concurrent use.
type Simulator struct {
	grid       *grid.Grid
	integ      *integrators.Langevin
	gen        *lattice.Generator
	params     dynamo.Parameters
	metrics    []metrics.Metric
	observers  []Observer
	logger     *log.Logger
	bulkHeight float64
	step       int
	injected   int
}

type Option func(*Simulator)

func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func WithMetrics(ms ...metrics.Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, ms...) }
}

func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

// WithBulkHeight marks mobile particles above z (nm) as free after each step.
// Zero disables marking.
func WithBulkHeight(z float64) Option {
	return func(s *Simulator) { s.bulkHeight = z }
}

func New(g *grid.Grid, integ *integrators.Langevin, gen *lattice.Generator, opts ...Option) *Simulator {
	s := &Simulator{
		grid:   g,
		integ:  integ,
		gen:    gen,
		params: integ.Parameters(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build seeds a substrate of the given number of unit cells into a new grid
// and wires an integrator and generator around it.
func Build(params dynamo.Parameters, species physics.Species, layers int, opts ...Option) (*Simulator, error) {
	gen := lattice.NewGenerator(params, species)
	particles, err := gen.Substrate(layers)
	if err != nil {
		return nil, err
	}
	return Restore(params, species, particles, opts...)
}

// Restore wires a simulator around an existing particle set.
func Restore(params dynamo.Parameters, species physics.Species, particles []*physics.Particle, opts ...Option) (*Simulator, error) {
	g, err := grid.New(params)
	if err != nil {
		return nil, err
	}
	if err := g.AddParticles(particles); err != nil {
		g.Close()
		return nil, err
	}
	integ, err := integrators.NewLangevin(g, params)
	if err != nil {
		g.Close()
		return nil, err
	}
	return New(g, integ, lattice.NewGenerator(params, species), opts...), nil
}

func (s *Simulator) Close()                        { s.grid.Close() }
func (s *Simulator) Grid() *grid.Grid              { return s.grid }
func (s *Simulator) Parameters() dynamo.Parameters { return s.params }
func (s *Simulator) StepCount() int                { return s.step }
func (s *Simulator) Injected() int                 { return s.injected }
func (s *Simulator) Time() float64                 { return s.integ.Time() }

// Step injects a particle if one is due, advances the integrator once and
// updates free flags.
func (s *Simulator) Step() error {
	if s.injectionDue() {
		if err := s.inject(); err != nil {
			return &dynamo.SimulationError{Step: s.step, Wrapped: err}
		}
	}
	if err := s.integ.NextStep(); err != nil {
		return &dynamo.SimulationError{Step: s.step, Wrapped: err}
	}
	if s.bulkHeight > 0 {
		if err := s.markFree(); err != nil {
			return &dynamo.SimulationError{Step: s.step, Wrapped: err}
		}
	}
	s.step++
	return nil
}

func (s *Simulator) injectionDue() bool {
	period := s.params.ParticleAppearancePeriod
	return period > 0 && s.step > 0 && s.step%period == 0
}

// inject places a deposited atom at the first candidate position with no
// neighbour inside twice the core radius. Crowded candidates are skipped.
func (s *Simulator) inject() error {
	for attempt := 0; attempt < maxInjectAttempts; attempt++ {
		p := s.gen.Deposit()
		if !s.clearance(p) {
			continue
		}
		if err := s.grid.AddParticle(p); err != nil {
			return err
		}
		s.injected++
		s.logger.Debug("injected particle", "step", s.step, "position", p.Position, "attempt", attempt)
		return nil
	}
	s.logger.Warn("no free spot for injected particle", "step", s.step, "attempts", maxInjectAttempts)
	return nil
}

func (s *Simulator) clearance(p *physics.Particle) bool {
	limit := 2 * p.Species.Law().CoreRadius()
	limitSq := limit * limit
	c := s.grid.Cell(s.grid.GetContainingCell(p.Position))

	near := func(cell *grid.Cell) bool {
		for _, q := range cell.Particles() {
			if q.Position.Sub(p.Position).NormSquared() < limitSq {
				return true
			}
		}
		return false
	}
	if near(c) {
		return false
	}
	for _, b := range c.Boundary() {
		if near(b) {
			return false
		}
	}
	return true
}

func (s *Simulator) markFree() error {
	return s.grid.ForEachCell(func(_ int, c *grid.Cell, _ grid.Index) error {
		for _, p := range c.Particles() {
			if !p.Static && !p.Free && p.Position.Z > s.bulkHeight {
				p.Free = true
			}
		}
		return nil
	})
}

// Run advances cfg.Steps steps, sampling every cfg.SampleEvery steps. The
// context is checked between steps; a step always runs to completion. On
// error the partial result is returned alongside it.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrInvalidConfig, cfg.Steps)
	}
	if cfg.SampleEvery <= 0 {
		cfg.SampleEvery = 1
	}

	samples := cfg.Steps/cfg.SampleEvery + 1
	result := &Result{
		Times:        make([]float64, 0, samples),
		Temperatures: make([]float64, 0, samples),
		Counts:       make([]int, 0, samples),
		Metrics:      make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	start := time.Now()
	injectedBefore := s.injected
	finish := func() {
		result.Elapsed = time.Since(start)
		result.Injected = s.injected - injectedBefore
		ps := s.grid.Particles()
		result.DensityProfile = metrics.DensityProfile(ps, s.params)
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}

	s.sample(result)
	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			finish()
			return result, ctx.Err()
		default:
		}

		if err := s.Step(); err != nil {
			s.logger.Error("step failed", "step", s.step, "err", err)
			finish()
			return result, err
		}
		result.StepsTaken++

		if result.StepsTaken%cfg.SampleEvery == 0 {
			s.sample(result)
		}
	}

	finish()
	s.logger.Info("run complete",
		"steps", result.StepsTaken,
		"particles", s.grid.Count(),
		"injected", result.Injected,
		"elapsed", result.Elapsed.Round(time.Millisecond),
	)
	return result, nil
}

func (s *Simulator) sample(result *Result) {
	ps := s.grid.Particles()
	t := s.integ.Time()
	temp, _ := metrics.Temperature(ps)

	result.Times = append(result.Times, t)
	result.Temperatures = append(result.Temperatures, temp)
	result.Counts = append(result.Counts, len(ps))

	for _, m := range s.metrics {
		m.Observe(ps, t)
	}
	for _, o := range s.observers {
		o.OnStep(s.step, t, s.grid)
	}
	s.logger.Debug("sample", "step", s.step, "t", t, "particles", len(ps), "temperature", temp)
}
