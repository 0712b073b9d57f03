package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/mdsim/internal/sim"
)

// Evaluate runs one candidate and returns the score to minimize.
type Evaluate func(ctx context.Context, params map[string]float64) (float64, error)

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// GridSearch evaluates the full Cartesian product of parameter ranges.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d parameter names but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("parameter %s has an empty range", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search returns the lowest-scoring parameters and every trial in grid
// order. Failed trials are recorded and never win. It stops early when ctx
// is done.
func (g *GridSearch) Search(ctx context.Context, eval Evaluate) (map[string]float64, float64, []Trial, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), eval, func(t Trial) {
		trials = append(trials, t)
		if t.Err == nil && t.Score < best {
			best = t.Score
			bestParams = t.Params
		}
	})
	if err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, best, trials, fmt.Errorf("all %d trials failed", len(trials))
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Evaluate,
	record func(Trial),
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		score, err := eval(ctx, params)
		record(Trial{Params: params, Score: score, Err: err})
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		if err := g.searchRecursive(ctx, depth+1, current, eval, record); err != nil {
			return err
		}
	}
	delete(current, name)
	return nil
}

// TemperatureError scores a run by the mean absolute deviation of its
// sampled temperatures from target, skipping the first skip samples.
func TemperatureError(result *sim.Result, target float64, skip int) float64 {
	if result == nil || skip >= len(result.Temperatures) {
		return math.Inf(1)
	}
	sum := 0.0
	samples := result.Temperatures[skip:]
	for _, temp := range samples {
		sum += math.Abs(temp - target)
	}
	return sum / float64(len(samples))
}
