// Package config defines the configuration structures of the positivity
// engine and its command line surface. Loading lives in loader.go and default
// values in defaults.go.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/turtacn/positivity/internal/geometry"
	"github.com/turtacn/positivity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/positivity/internal/optimize"
	"github.com/turtacn/positivity/internal/positivity"
	"github.com/turtacn/positivity/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// GeometryConfig holds the numeric tolerances of hull construction and
// containment, plus the seeding strategy of the overlap computation.
type GeometryConfig struct {
	Epsilon         float64 `mapstructure:"epsilon" yaml:"epsilon" json:"epsilon" validate:"gt=0,lt=1"`
	InsideTolerance float64 `mapstructure:"inside_tolerance" yaml:"inside_tolerance" json:"inside_tolerance" validate:"gt=0,lt=1"`
	InteriorMargin  float64 `mapstructure:"interior_margin" yaml:"interior_margin" json:"interior_margin" validate:"gt=0,lt=1"`
	DedupTolerance  float64 `mapstructure:"dedup_tolerance" yaml:"dedup_tolerance" json:"dedup_tolerance" validate:"gt=0,lt=1"`
	Seed            string  `mapstructure:"seed" yaml:"seed" json:"seed" validate:"oneof=sample chebyshev"`
}

// SolverConfig holds the distance solver's stopping rules. ItemTimeout
// bounds each row's solve; zero disables it.
type SolverConfig struct {
	MaxIterations int           `mapstructure:"max_iterations" yaml:"max_iterations" json:"max_iterations" validate:"gte=1"`
	GapTolerance  float64       `mapstructure:"gap_tolerance" yaml:"gap_tolerance" json:"gap_tolerance" validate:"gt=0,lt=1"`
	StepTolerance float64       `mapstructure:"step_tolerance" yaml:"step_tolerance" json:"step_tolerance" validate:"gt=0,lt=1"`
	ItemTimeout   time.Duration `mapstructure:"item_timeout" yaml:"item_timeout" json:"item_timeout" validate:"gte=0"`
}

// WorkerConfig bounds per-row parallelism.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency" json:"concurrency" validate:"gte=1,lte=1024"`
}

// LogConfig mirrors logging.LogConfig with validation rules attached.
type LogConfig struct {
	Level            string   `mapstructure:"level" yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format           string   `mapstructure:"format" yaml:"format" json:"format" validate:"oneof=json console"`
	OutputPaths      []string `mapstructure:"output_paths" yaml:"output_paths" json:"output_paths" validate:"min=1,dive,required"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths" yaml:"error_output_paths" json:"error_output_paths" validate:"min=1,dive,required"`
}

// MetricsConfig toggles the prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Namespace string `mapstructure:"namespace" yaml:"namespace" json:"namespace" validate:"omitempty,alphanum"`
}

// OutputConfig selects how command results are rendered.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"oneof=text json yaml csv"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object.
type Config struct {
	Geometry GeometryConfig `mapstructure:"geometry" yaml:"geometry" json:"geometry"`
	Solver   SolverConfig   `mapstructure:"solver" yaml:"solver" json:"solver"`
	Worker   WorkerConfig   `mapstructure:"worker" yaml:"worker" json:"worker"`
	Log      LogConfig      `mapstructure:"log" yaml:"log" json:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output" json:"output"`
}

var validate = validator.New()

// Validate checks field rules and the constraints that span fields. The
// first violation is returned as an ErrCodeValidation AppError.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New(errors.ErrCodeValidation, "config is nil")
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.Newf(errors.ErrCodeValidation, "config: %s fails %q", fieldPath(fe.Namespace()), ruleString(fe)).
				WithDetailf("value %v", fe.Value())
		}
		return errors.Wrap(err, errors.ErrCodeValidation, "config: validation failed")
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return errors.New(errors.ErrCodeValidation, "config: metrics.namespace is required when metrics are enabled")
	}
	// A seed accepted at the margin must also pass the containment test.
	if c.Geometry.InteriorMargin > c.Geometry.InsideTolerance*1e3 {
		return errors.Newf(errors.ErrCodeValidation,
			"config: geometry.interior_margin %g is too large for inside_tolerance %g",
			c.Geometry.InteriorMargin, c.Geometry.InsideTolerance)
	}
	return nil
}

// fieldPath turns "Config.Geometry.InsideTolerance" into the yaml key path
// "geometry.inside_tolerance".
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func ruleString(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
}

// ─────────────────────────────────────────────────────────────────────────────
// Conversions into engine settings
// ─────────────────────────────────────────────────────────────────────────────

// Tolerances returns the geometry tolerances.
func (c *Config) Tolerances() geometry.Tolerances {
	return geometry.Tolerances{
		Epsilon:         c.Geometry.Epsilon,
		InsideTolerance: c.Geometry.InsideTolerance,
		InteriorMargin:  c.Geometry.InteriorMargin,
		DedupTolerance:  c.Geometry.DedupTolerance,
	}.Normalized()
}

// SolverSettings returns the distance solver settings.
func (c *Config) SolverSettings() optimize.Settings {
	s := optimize.DefaultSettings()
	if c.Solver.MaxIterations > 0 {
		s.MaxIterations = c.Solver.MaxIterations
	}
	if c.Solver.GapTolerance > 0 {
		s.GapTolerance = c.Solver.GapTolerance
	}
	if c.Solver.StepTolerance > 0 {
		s.StepTolerance = c.Solver.StepTolerance
	}
	return s
}

// SeedMode returns the overlap seeding strategy.
func (c *Config) SeedMode() positivity.SeedMode {
	if c.Geometry.Seed == string(positivity.SeedModeChebyshev) {
		return positivity.SeedModeChebyshev
	}
	return positivity.SeedModeSample
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.LogConfig {
	return logging.LogConfig{
		Level:            c.Log.Level,
		Format:           c.Log.Format,
		OutputPaths:      append([]string(nil), c.Log.OutputPaths...),
		ErrorOutputPaths: append([]string(nil), c.Log.ErrorOutputPaths...),
	}
}

// AssessmentOptions bundles the engine options this config controls.
func (c *Config) AssessmentOptions() []positivity.Option {
	return []positivity.Option{
		positivity.WithTolerances(c.Tolerances()),
		positivity.WithSolverSettings(c.SolverSettings()),
		positivity.WithItemTimeout(c.Solver.ItemTimeout),
		positivity.WithConcurrency(c.Worker.Concurrency),
		positivity.WithSeedMode(c.SeedMode()),
	}
}

//Personal.AI order the ending
