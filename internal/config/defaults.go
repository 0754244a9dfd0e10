package config

import (
	"github.com/spf13/viper"

	"github.com/turtacn/positivity/internal/geometry"
	"github.com/turtacn/positivity/internal/optimize"
	"github.com/turtacn/positivity/internal/positivity"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultSeed = string(positivity.SeedModeSample)

	DefaultWorkerConcurrency = 8

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
	DefaultLogOutput = "stderr"

	DefaultMetricsNamespace = "positivity"

	DefaultOutputFormat = "text"
)

// NewDefaultConfig returns a Config with every field at its default.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with the default.
// Fields that have already been set (non-zero values) are left unchanged so
// that explicit configuration always wins. Metrics.Enabled is a bool and is
// never touched.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Geometry ──────────────────────────────────────────────────────────────
	if cfg.Geometry.Epsilon == 0 {
		cfg.Geometry.Epsilon = geometry.DefaultEpsilon
	}
	if cfg.Geometry.InsideTolerance == 0 {
		cfg.Geometry.InsideTolerance = geometry.InsideTolerance
	}
	if cfg.Geometry.InteriorMargin == 0 {
		cfg.Geometry.InteriorMargin = geometry.InteriorMargin
	}
	if cfg.Geometry.DedupTolerance == 0 {
		cfg.Geometry.DedupTolerance = geometry.DedupTolerance
	}
	if cfg.Geometry.Seed == "" {
		cfg.Geometry.Seed = DefaultSeed
	}

	// ── Solver ────────────────────────────────────────────────────────────────
	if cfg.Solver.MaxIterations == 0 {
		cfg.Solver.MaxIterations = optimize.DefaultMaxIterations
	}
	if cfg.Solver.GapTolerance == 0 {
		cfg.Solver.GapTolerance = optimize.DefaultGapTolerance
	}
	if cfg.Solver.StepTolerance == 0 {
		cfg.Solver.StepTolerance = optimize.DefaultStepTolerance
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{DefaultLogOutput}
	}
	if len(cfg.Log.ErrorOutputPaths) == 0 {
		cfg.Log.ErrorOutputPaths = []string{DefaultLogOutput}
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Output ────────────────────────────────────────────────────────────────
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}
}

// registerDefaults declares every key on v. Viper's AutomaticEnv only
// resolves keys it already knows, so environment overrides need the keys
// registered even when no config file is read.
func registerDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("geometry.epsilon", d.Geometry.Epsilon)
	v.SetDefault("geometry.inside_tolerance", d.Geometry.InsideTolerance)
	v.SetDefault("geometry.interior_margin", d.Geometry.InteriorMargin)
	v.SetDefault("geometry.dedup_tolerance", d.Geometry.DedupTolerance)
	v.SetDefault("geometry.seed", d.Geometry.Seed)
	v.SetDefault("solver.max_iterations", d.Solver.MaxIterations)
	v.SetDefault("solver.gap_tolerance", d.Solver.GapTolerance)
	v.SetDefault("solver.step_tolerance", d.Solver.StepTolerance)
	v.SetDefault("solver.item_timeout", d.Solver.ItemTimeout)
	v.SetDefault("worker.concurrency", d.Worker.Concurrency)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output_paths", d.Log.OutputPaths)
	v.SetDefault("log.error_output_paths", d.Log.ErrorOutputPaths)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("output.format", d.Output.Format)
}
