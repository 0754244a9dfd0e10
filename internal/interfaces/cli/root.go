package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/positivity/internal/config"
	"github.com/turtacn/positivity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/positivity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/positivity/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Concurrency  int
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Collector    prometheus.MetricsCollector // nil unless metrics are enabled
	Metrics      prometheus.PositivityMetrics
	OutputFormat string
	Verbose      bool
	NoColor      bool
}

// NewRootCommand creates the root cobra command with all global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "positivity",
		Short: "Covariate overlap assessment for treated and untreated samples",
		Long: "positivity checks the positivity assumption of causal inference by building the\n" +
			"convex hulls of the treated and untreated covariate samples, intersecting them,\n" +
			"and reporting which observations fall outside the common support and how far.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPostRun(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./positivity.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "", "output format (text, json, yaml, csv)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.IntVar(&opts.Concurrency, "concurrency", 0, "parallel distance solves (default from config)")

	cmd.AddCommand(
		NewAssessCmd(),
		NewCheckCmd(),
		NewHullCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// persistentPreRun initializes config, logger, and metrics, then stores the
// CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigurationLoad, "logger initialization failed")
	}
	logging.SetDefault(logger)

	collector, metrics, err := initMetrics(cfg, logger)
	if err != nil {
		return err
	}

	if opts.NoColor {
		color.NoColor = true
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Collector:    collector,
		Metrics:      metrics,
		OutputFormat: cfg.Output.Format,
		Verbose:      opts.Verbose,
		NoColor:      opts.NoColor,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// persistentPostRun dumps collected metrics to stderr in text exposition
// format when metrics are enabled and verbose output was requested.
func persistentPostRun(cmd *cobra.Command) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil
	}
	defer func() { _ = cliCtx.Logger.Sync() }()
	if cliCtx.Collector == nil || !cliCtx.Verbose {
		return nil
	}
	return cliCtx.Collector.WriteText(cmd.ErrOrStderr())
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./positivity.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".positivity", "config.yaml"))
	}
	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}

	// No config file found; environment and defaults only.
	return config.LoadFromEnv()
}

func applyFlagOverrides(cfg *config.Config, opts *RootOptions) {
	if opts.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(opts.LogLevel)
	}
	if opts.Verbose {
		cfg.Log.Level = logging.LevelDebug
	}
	if opts.OutputFormat != "" {
		cfg.Output.Format = strings.ToLower(opts.OutputFormat)
	}
	if opts.Concurrency > 0 {
		cfg.Worker.Concurrency = opts.Concurrency
	}
}

// initLogger creates a logger for CLI usage. Command output owns stdout, so
// log sinks default to stderr.
func initLogger(cfg *config.Config) (logging.Logger, error) {
	return logging.NewLogger(cfg.Logging())
}

func initMetrics(cfg *config.Config, logger logging.Logger) (prometheus.MetricsCollector, prometheus.PositivityMetrics, error) {
	if !cfg.Metrics.Enabled {
		return nil, prometheus.NewNoopPositivityMetrics(), nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: cfg.Metrics.Namespace,
	}, logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeConfigurationLoad, "metrics initialization failed")
	}
	return collector, prometheus.NewPositivityMetrics(collector), nil
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeValidation, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeValidation, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return errors.ExitStatusForCode(errors.GetCode(err))
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			sb.WriteString(padRight(val, colWidths[i]))
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(colWidths))
	for i, w := range colWidths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

//Personal.AI order the ending
