package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/positivity/internal/geometry"
	"github.com/turtacn/positivity/internal/optimize"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, geometry.DefaultEpsilon, cfg.Geometry.Epsilon)
	assert.Equal(t, geometry.InsideTolerance, cfg.Geometry.InsideTolerance)
	assert.Equal(t, DefaultSeed, cfg.Geometry.Seed)
	assert.Equal(t, optimize.DefaultMaxIterations, cfg.Solver.MaxIterations)
	assert.Equal(t, optimize.DefaultStepTolerance, cfg.Solver.StepTolerance)
	assert.Zero(t, cfg.Solver.ItemTimeout)
	assert.Equal(t, DefaultWorkerConcurrency, cfg.Worker.Concurrency)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, []string{DefaultLogOutput}, cfg.Log.OutputPaths)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
	assert.Equal(t, DefaultOutputFormat, cfg.Output.Format)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Geometry: GeometryConfig{InsideTolerance: 1e-6, Seed: "chebyshev"},
		Worker:   WorkerConfig{Concurrency: 2},
		Log:      LogConfig{Level: "warn", OutputPaths: []string{"stdout"}},
		Output:   OutputConfig{Format: "json"},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, 1e-6, cfg.Geometry.InsideTolerance)
	assert.Equal(t, "chebyshev", cfg.Geometry.Seed)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"stdout"}, cfg.Log.OutputPaths)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestApplyDefaults_Nil(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
