// Command positivity assesses covariate overlap between treated and untreated
// samples.
package main

import (
	"os"

	"github.com/turtacn/positivity/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Execute prints the error itself.
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}

//Personal.AI order the ending
