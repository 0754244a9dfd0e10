package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/positivity/pkg/errors"
	ptypes "github.com/turtacn/positivity/pkg/types/positivity"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// writeStructured renders v as json or yaml. It reports false for the other
// formats so the caller can fall through to its own rendering.
func writeStructured(w io.Writer, format string, v interface{}) (bool, error) {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, wrapOutput(enc.Encode(v))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, wrapOutput(err)
		}
		return true, wrapOutput(enc.Close())
	}
	return false, nil
}

func writeCSV(w io.Writer, t ptypes.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers()); err != nil {
		return wrapOutput(err)
	}
	if err := cw.WriteAll(t.Rows()); err != nil {
		return wrapOutput(err)
	}
	return nil
}

func writeTable(w io.Writer, title string, t ptypes.Table) {
	rows := t.Rows()
	fmt.Fprintf(w, "\n%s (%d)\n", color.New(color.Bold).Sprint(title), len(rows))
	if len(rows) == 0 {
		return
	}
	fmt.Fprint(w, FormatTable(t.Headers(), rows))
}

func wrapOutput(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errors.ErrCodeSerialization, "failed to write output")
}

func verdict(positive bool) string {
	if positive {
		return color.GreenString("POSITIVE")
	}
	return color.RedString("NOT POSITIVE")
}

func formatPoint(p []float64) string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }

//Personal.AI order the ending
