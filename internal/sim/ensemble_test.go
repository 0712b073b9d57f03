package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

func TestEnsembleRunsIndependentReplicas(t *testing.T) {
	params := dynamo.DefaultParameters()
	params.Threads = 2
	params.ParticleAppearancePeriod = 0

	e := NewEnsemble(params, physics.Tungsten, 2, 3)
	results, err := e.Run(context.Background(), Config{Steps: 4, SampleEvery: 2})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, 4, r.StepsTaken)
		assert.Len(t, r.Temperatures, 3)
	}
	assert.NotEqual(t, results[0].Temperatures[0], results[1].Temperatures[0],
		"replicas with different seeds should start from different velocities")

	mean, std := FinalTemperatures(results)
	assert.Positive(t, mean)
	assert.GreaterOrEqual(t, std, 0.0)
}

func TestEnsembleRejectsZeroReplicas(t *testing.T) {
	e := NewEnsemble(dynamo.DefaultParameters(), physics.Tungsten, 2, 0)
	_, err := e.Run(context.Background(), DefaultConfig())
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfig)
}

func TestFinalTemperatures(t *testing.T) {
	mean, std := FinalTemperatures([]*Result{
		{Temperatures: []float64{1, 100}},
		{Temperatures: []float64{5, 200}},
		nil,
		{},
	})
	assert.InDelta(t, 150, mean, 1e-12)
	assert.InDelta(t, 70.71067811865476, std, 1e-9)

	mean, std = FinalTemperatures(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)
}
