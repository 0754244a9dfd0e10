package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo holds version information injected at build time.
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// CurrentBuildInfo returns the ldflags-injected build information.
func CurrentBuildInfo() BuildInfo {
	return BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate, GoVersion: runtime.Version()}
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := FormatText
			if cliCtx, err := GetCLIContext(cmd); err == nil {
				format = cliCtx.OutputFormat
			}
			info := CurrentBuildInfo()
			if ok, err := writeStructured(cmd.OutOrStdout(), format, info); ok {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "positivity %s (commit: %s, built: %s, %s)\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion)
			return nil
		},
	}
}

//Personal.AI order the ending
