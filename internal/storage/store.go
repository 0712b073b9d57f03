package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
	"github.com/san-kum/mdsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	particlesFile = "particles.csv"
)

var particleHeader = []string{"species", "x", "y", "z", "vx", "vy", "vz", "mass", "static", "free"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Species        string             `json:"species"`
	Timestamp      time.Time          `json:"timestamp"`
	Seed           uint64             `json:"seed"`
	Steps          int                `json:"steps"`
	Particles      int                `json:"particles"`
	Injected       int                `json:"injected"`
	Elapsed        time.Duration      `json:"elapsed_ns"`
	Parameters     dynamo.Parameters  `json:"parameters"`
	Metrics        map[string]float64 `json:"metrics"`
	Times          []float64          `json:"times"`
	Temperatures   []float64          `json:"temperatures"`
	Counts         []int              `json:"counts"`
	DensityProfile []float64          `json:"density_profile"`
}

// Run is everything needed to persist a finished simulation.
type Run struct {
	Species    physics.Species
	Parameters dynamo.Parameters
	Result     *sim.Result
	Particles  []*physics.Particle
}

// Save writes metadata.json and particles.csv under a new run directory and
// returns the run ID.
func (s *Store) Save(run Run) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", run.Species, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Species:    run.Species.String(),
		Timestamp:  now,
		Seed:       run.Parameters.Seed,
		Particles:  len(run.Particles),
		Parameters: run.Parameters,
	}
	if r := run.Result; r != nil {
		meta.Steps = r.StepsTaken
		meta.Injected = r.Injected
		meta.Elapsed = r.Elapsed
		meta.Metrics = r.Metrics
		meta.Times = r.Times
		meta.Temperatures = r.Temperatures
		meta.Counts = r.Counts
		meta.DensityProfile = r.DensityProfile
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, particlesFile), func(w io.Writer) error {
		return WriteParticles(w, run.Particles)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// List returns all readable runs, oldest first. Directories without valid
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadParticles(runID string) ([]*physics.Particle, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, particlesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ps, err := ReadParticles(f)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return ps, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteParticles encodes the full particle state as CSV with a header row.
func WriteParticles(w io.Writer, ps []*physics.Particle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(particleHeader); err != nil {
		return err
	}
	for _, p := range ps {
		row := []string{
			p.Species.String(),
			formatFloat(p.Position.X),
			formatFloat(p.Position.Y),
			formatFloat(p.Position.Z),
			formatFloat(p.Velocity.X),
			formatFloat(p.Velocity.Y),
			formatFloat(p.Velocity.Z),
			formatFloat(p.Mass),
			strconv.FormatBool(p.Static),
			strconv.FormatBool(p.Free),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadParticles decodes CSV written by WriteParticles. Forces are not
// persisted and start at zero.
func ReadParticles(r io.Reader) ([]*physics.Particle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(particleHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header")
	}

	ps := make([]*physics.Particle, 0, len(records)-1)
	for i, record := range records[1:] {
		p, err := parseParticle(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func parseParticle(record []string) (*physics.Particle, error) {
	species, err := physics.ParseSpecies(record[0])
	if err != nil {
		return nil, err
	}

	var vals [7]float64
	for i := range vals {
		v, err := strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", particleHeader[i+1], err)
		}
		vals[i] = v
	}
	static, err := strconv.ParseBool(record[8])
	if err != nil {
		return nil, fmt.Errorf("column static: %w", err)
	}
	free, err := strconv.ParseBool(record[9])
	if err != nil {
		return nil, fmt.Errorf("column free: %w", err)
	}

	p := physics.NewParticle(species,
		dynamo.Vector3{X: vals[0], Y: vals[1], Z: vals[2]},
		dynamo.Vector3{X: vals[3], Y: vals[4], Z: vals[5]},
	)
	p.Mass = vals[6]
	p.Static = static
	p.Free = free
	return p, nil
}
