package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

// Ensemble runs independent replicas of the same setup with consecutive
// seeds, each on its own grid.
type Ensemble struct {
	params    dynamo.Parameters
	species   physics.Species
	layers    int
	replicas  int
	seedStart uint64
	opts      []Option
}

func NewEnsemble(params dynamo.Parameters, species physics.Species, layers, replicas int, opts ...Option) *Ensemble {
	return &Ensemble{
		params:    params,
		species:   species,
		layers:    layers,
		replicas:  replicas,
		seedStart: params.Seed,
		opts:      opts,
	}
}

// Run executes all replicas concurrently. Options must not share stateful
// metrics or observers between replicas.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if e.replicas <= 0 {
		return nil, fmt.Errorf("%w: replica count must be positive, got %d", dynamo.ErrInvalidConfig, e.replicas)
	}

	results := make([]*Result, e.replicas)
	errs := make([]error, e.replicas)

	var wg sync.WaitGroup
	for i := 0; i < e.replicas; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			params := e.params
			params.Seed = e.seedStart + uint64(idx)

			s, err := Build(params, e.species, e.layers, e.opts...)
			if err != nil {
				errs[idx] = err
				return
			}
			defer s.Close()

			results[idx], errs[idx] = s.Run(ctx, cfg)
			if errs[idx] != nil {
				errs[idx] = fmt.Errorf("replica %d: %w", idx, errs[idx])
			}
		}(i)
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return results, err
	}
	return results, nil
}

// FinalTemperatures returns the mean and standard deviation of the last
// sampled temperature across results.
func FinalTemperatures(results []*Result) (mean, std float64) {
	finals := make([]float64, 0, len(results))
	for _, r := range results {
		if r == nil || len(r.Temperatures) == 0 {
			continue
		}
		finals = append(finals, r.Temperatures[len(r.Temperatures)-1])
	}
	if len(finals) == 0 {
		return 0, 0
	}
	if len(finals) == 1 {
		return finals[0], 0
	}
	return stat.MeanStdDev(finals, nil)
}
