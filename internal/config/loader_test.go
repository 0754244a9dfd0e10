package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/positivity/pkg/errors"
)

const validConfigYAML = `
geometry:
  inside_tolerance: 1e-8
  seed: chebyshev
solver:
  max_iterations: 2000
worker:
  concurrency: 3
log:
  level: debug
metrics:
  enabled: true
  namespace: overlap
output:
  format: json
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1e-8, cfg.Geometry.InsideTolerance)
	assert.Equal(t, "chebyshev", cfg.Geometry.Seed)
	assert.Equal(t, 2000, cfg.Solver.MaxIterations)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "overlap", cfg.Metrics.Namespace)
	assert.Equal(t, "json", cfg.Output.Format)

	// Unset keys keep their defaults.
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, 1e-9, cfg.Geometry.DedupTolerance)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigurationLoad))
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "geometry: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigurationLoad))
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	path := createTempConfigFile(t, "output:\n  format: html\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("POSITIVITY_WORKER_CONCURRENCY", "11")
	t.Setenv("POSITIVITY_GEOMETRY_SEED", "sample")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 11, cfg.Worker.Concurrency)
	assert.Equal(t, "sample", cfg.Geometry.Seed)
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	t.Setenv("POSITIVITY_SOLVER_MAX_ITERATIONS", "123")
	t.Setenv("POSITIVITY_OUTPUT_FORMAT", "yaml")
	t.Setenv("POSITIVITY_LOG_OUTPUT_PATHS", "stdout")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 123, cfg.Solver.MaxIterations)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, []string{"stdout"}, cfg.Log.OutputPaths)
	assert.Equal(t, DefaultWorkerConcurrency, cfg.Worker.Concurrency)
}

func TestLoadFromEnv_SolverTimeout(t *testing.T) {
	t.Setenv("POSITIVITY_SOLVER_ITEM_TIMEOUT", "250ms")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Solver.ItemTimeout)
	assert.Len(t, cfg.AssessmentOptions(), 5)
}

func TestLoadFromEnv_InvalidValue(t *testing.T) {
	t.Setenv("POSITIVITY_LOG_LEVEL", "loud")
	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}
