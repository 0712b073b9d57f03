package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/sim"
)

const (
	canvasWidth     = 48
	canvasHeight    = 20
	historyCapacity = 300
	maxStepsPerTick = 1024
)

type projection int

const (
	sideView projection = iota
	topView
)

func (p projection) String() string {
	if p == topView {
		return "top (XY)"
	}
	return "side (XZ)"
}

type point struct {
	pos   dynamo.Vector3
	fixed bool
}

// frame is what a background batch of steps reports back. View reads only
// frames, never the grid.
type frame struct {
	step        int
	time        float64
	temperature float64
	particles   []point
	injected    int
	elapsed     time.Duration
	err         error
}

// Model is the Bubble Tea model of the live monitor.
type Model struct {
	sim           *sim.Simulator
	space         dynamo.Vector3
	maxSteps      int
	stepsPerTick  int
	running       bool
	pending       bool
	view          projection
	theme         int
	styles        styles
	canvas        *Canvas
	last          frame
	temperatures  []float64
	stepsPerSec   float64
	done          bool
	target        float64
	speciesHeader string
}

type Option func(*Model)

// WithMaxSteps stops stepping once the simulator reaches n steps.
func WithMaxSteps(n int) Option {
	return func(m *Model) { m.maxSteps = n }
}

func WithStepsPerTick(n int) Option {
	return func(m *Model) { m.stepsPerTick = clampSteps(n) }
}

func WithTheme(name string) Option {
	return func(m *Model) {
		for i, t := range Themes {
			if t.Name == name {
				m.theme = i
			}
		}
		m.styles = newStyles(Themes[m.theme])
	}
}

func WithTitle(title string) Option {
	return func(m *Model) { m.speciesHeader = title }
}

func NewModel(s *sim.Simulator, opts ...Option) Model {
	params := s.Parameters()
	m := Model{
		sim:           s,
		space:         params.SpaceSize,
		stepsPerTick:  10,
		running:       true,
		styles:        newStyles(Themes[0]),
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		temperatures:  make([]float64, 0, historyCapacity),
		target:        params.Temperature,
		speciesHeader: "deposition",
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.last = capture(s, 0, nil)
	m.record(m.last)
	m.pending = m.running
	return m
}

func clampSteps(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxStepsPerTick {
		return maxStepsPerTick
	}
	return n
}

func (m Model) Init() tea.Cmd {
	if !m.pending {
		return nil
	}
	return m.batch()
}

// advance schedules the next batch of steps unless one is in flight.
func (m *Model) advance() tea.Cmd {
	if m.pending || !m.running || m.done {
		return nil
	}
	m.pending = true
	return m.batch()
}

func (m Model) batch() tea.Cmd {
	s, n := m.sim, m.stepsPerTick
	if m.maxSteps > 0 {
		if left := m.maxSteps - s.StepCount(); left < n {
			n = left
		}
	}
	injectedBefore := s.Injected()
	return func() tea.Msg {
		start := time.Now()
		var err error
		for i := 0; i < n && err == nil; i++ {
			err = s.Step()
		}
		f := capture(s, s.Injected()-injectedBefore, err)
		f.elapsed = time.Since(start)
		return f
	}
}

func capture(s *sim.Simulator, injected int, err error) frame {
	ps := s.Grid().Particles()
	points := make([]point, len(ps))
	for i, p := range ps {
		points[i] = point{pos: p.Position, fixed: p.Static}
	}
	temp, _ := metrics.Temperature(ps)
	return frame{
		step:        s.StepCount(),
		time:        s.Time(),
		temperature: temp,
		particles:   points,
		injected:    injected,
		err:         err,
	}
}

func (m *Model) record(f frame) {
	m.temperatures = append(m.temperatures, f.temperature)
	if len(m.temperatures) > historyCapacity {
		m.temperatures = m.temperatures[1:]
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.stepsPerTick = clampSteps(m.stepsPerTick * 2)
		case "-", "_":
			m.stepsPerTick = clampSteps(m.stepsPerTick / 2)
		case "v":
			m.view = 1 - m.view
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = newStyles(Themes[m.theme])
		}
		cmd := m.advance()
		return m, cmd

	case frame:
		m.pending = false
		steps := msg.step - m.last.step
		if msg.elapsed > 0 && steps > 0 {
			m.stepsPerSec = float64(steps) / msg.elapsed.Seconds()
		}
		m.last = msg
		m.record(msg)
		if msg.err != nil || (m.maxSteps > 0 && msg.step >= m.maxSteps) {
			m.done = true
			m.running = false
		}
		cmd := m.advance()
		return m, cmd
	}
	return m, nil
}

// Err reports the step failure that stopped the monitor, if any.
func (m Model) Err() error { return m.last.err }

func (m *Model) draw() {
	m.canvas.Clear()
	for _, p := range m.last.particles {
		u := p.pos.X / m.space.X
		v := p.pos.Z / m.space.Z
		if m.view == topView {
			v = p.pos.Y / m.space.Y
		}
		m.canvas.Plot(u, v)
	}
}

func (m Model) View() string {
	m.draw()
	st := m.styles

	status := st.running.Render("RUNNING")
	switch {
	case m.last.err != nil:
		status = st.failed.Render("FAILED")
	case m.done:
		status = st.paused.Render("DONE")
	case !m.running:
		status = st.paused.Render("PAUSED")
	}

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.speciesHeader)) + "\n")
	s.WriteString(status + "\n")

	if len(m.temperatures) > 1 {
		chart := asciigraph.Plot(m.temperatures,
			asciigraph.Height(6),
			asciigraph.Width(32),
			asciigraph.Caption("temperature (K)"),
		)
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	fixed := 0
	for _, p := range m.last.particles {
		if p.fixed {
			fixed++
		}
	}
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", m.last.step))
	row("Time", fmt.Sprintf("%.3f ps", m.last.time))
	row("Temperature", fmt.Sprintf("%.1f K (target %.0f)", m.last.temperature, m.target))
	row("Particles", fmt.Sprintf("%d (%d static)", len(m.last.particles), fixed))
	row("Steps/frame", fmt.Sprintf("%d", m.stepsPerTick))
	row("Steps/s", fmt.Sprintf("%.0f", m.stepsPerSec))
	row("View", m.view.String())
	row("Theme", Themes[m.theme].Name)
	if m.last.err != nil {
		s.WriteString("\n" + st.failed.Render(m.last.err.Error()) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause +/-:Speed V:View T:Theme Q:Quit"))

	canvasView := st.canvas.Render(m.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
}

// Run blocks until the user quits the monitor. It returns the step error
// that stopped the simulation, if any.
func Run(s *sim.Simulator, opts ...Option) error {
	final, err := tea.NewProgram(NewModel(s, opts...), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}
