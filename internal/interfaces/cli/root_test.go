package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/positivity/internal/dataset"
	"github.com/turtacn/positivity/internal/testutil"
	"github.com/turtacn/positivity/pkg/errors"
)

// run executes the root command with args and a quiet logger.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errb bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	cmd.SetArgs(append([]string{"--log-level", "error", "--no-color"}, args...))
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errb.String(), err
}

// writeFrame stores f as a CSV file and returns its path.
func writeFrame(t *testing.T, name string, f *dataset.Frame) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	w := csv.NewWriter(file)
	require.NoError(t, w.Write(f.Columns))
	for _, row := range f.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		require.NoError(t, w.Write(rec))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return path
}

func trapezoidFiles(t *testing.T, n int) (treated, untreated string) {
	t.Helper()
	return writeFrame(t, "treated.csv", testutil.SampleFrame(testutil.UpperTrapezoid, n, 11)),
		writeFrame(t, "untreated.csv", testutil.SampleFrame(testutil.LowerTrapezoid, n, 12))
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "positivity", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"assess", "check", "hull", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}

	for _, flag := range []string{"config", "log-level", "output", "verbose", "no-color", "concurrency"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag %q", flag)
	}
}

func TestRoot_ConfigFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positivity.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: yaml\nworker:\n  concurrency: 2\n"), 0o600))

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--config", path, "--concurrency", "5", "version"})
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	versionCmd, _, err := cmd.Find([]string{"version"})
	require.NoError(t, err)
	cliCtx, err := GetCLIContext(versionCmd)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cliCtx.OutputFormat)
	assert.Equal(t, 5, cliCtx.Config.Worker.Concurrency)
	assert.Nil(t, cliCtx.Collector)
}

func TestRoot_InvalidConfig(t *testing.T) {
	_, _, err := run(t, "--output", "html", "version")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
	assert.Equal(t, 2, ExitCode(err))
}

func TestGetCLIContext_Missing(t *testing.T) {
	cmd := NewVersionCmd()
	_, err := GetCLIContext(cmd)
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.InvalidParam("bad"), 2},
		{errors.EmptyIntersection("none"), 3},
		{errors.NonConvergence(10, 1e-3), 4},
		{assert.AnError, 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExitCode(tc.err), "%v", tc.err)
	}
}

func TestFormatTable(t *testing.T) {
	t.Parallel()

	got := FormatTable([]string{"x", "Origin"}, [][]string{{"1.5", "Treated"}, {"10"}})
	want := "x    Origin \n" +
		"---  -------\n" +
		"1.5  Treated\n" +
		"10          \n"
	assert.Equal(t, want, got)
	assert.Empty(t, FormatTable(nil, nil))
}

func TestParsePoint(t *testing.T) {
	t.Parallel()

	p, err := parsePoint("2, 1.5,-3")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1.5, -3}, p)

	for _, bad := range []string{"a,b", "1,,2", ""} {
		_, err := parsePoint(bad)
		assert.True(t, errors.IsCode(err, errors.CodeInvalidParam), "input %q", bad)
	}
}
