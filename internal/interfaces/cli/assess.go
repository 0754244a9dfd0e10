package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/positivity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/positivity/internal/positivity"
	"github.com/turtacn/positivity/pkg/errors"
	ptypes "github.com/turtacn/positivity/pkg/types/positivity"
)

// AssessResult is the structured output of the assess command.
type AssessResult struct {
	Summary        *ptypes.Summary        `json:"summary" yaml:"summary"`
	Classification *ptypes.Classification `json:"classification,omitempty" yaml:"classification,omitempty"`
	DistanceReport *ptypes.DistanceReport `json:"distance_report,omitempty" yaml:"distance_report,omitempty"`
}

// NewAssessCmd creates the assess command.
func NewAssessCmd() *cobra.Command {
	var (
		in     inputOptions
		metric string
		report bool
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Classify every observation against the opposite group's hull",
		Long: "Build the treated and untreated hulls, intersect them, and split each group into\n" +
			"rows inside the other group's hull (valid) and rows outside it (invalid). Invalid\n" +
			"rows carry their distance to the overlap.",
		Example: "  positivity assess --treated t.csv --untreated u.csv --covariates x,y\n" +
			"  positivity assess --input all.csv --indicator treated --covariates age,income -o json",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cliCtx, err := buildAssessment(cmd, &in)
			if err != nil {
				return err
			}
			res := &AssessResult{Summary: a.Summary()}

			cls, err := a.ClassifyAll(cmd.Context())
			if err != nil {
				// The summary still describes the hulls when the overlap is empty.
				if errors.IsEmptyIntersection(err) {
					_ = renderAssess(cmd.OutOrStdout(), cliCtx.OutputFormat, res)
				}
				return err
			}
			res.Classification = cls
			if report {
				if res.DistanceReport, err = a.DistanceReport(cmd.Context(), metric); err != nil {
					return err
				}
			}
			cliCtx.Logger.Debug("assess finished",
				logging.String("run_id", string(a.RunID())),
				logging.Int("failed", cls.Failed))
			return renderAssess(cmd.OutOrStdout(), cliCtx.OutputFormat, res)
		},
	}

	in.bind(cmd)
	cmd.Flags().StringVar(&metric, "metric", positivity.MetricEuclidean, "distance metric for --report")
	cmd.Flags().BoolVar(&report, "report", false, "append invalid rows ranked by distance")
	return cmd
}

func renderAssess(w io.Writer, format string, res *AssessResult) error {
	if ok, err := writeStructured(w, format, res); ok {
		return err
	}
	if format == FormatCSV {
		if res.Classification == nil {
			return nil
		}
		return writeCSV(w, &assessTable{c: res.Classification})
	}

	writeSummary(w, res.Summary)
	if c := res.Classification; c != nil {
		writeTable(w, "Valid rows", c.Valid())
		writeTable(w, "Invalid rows", c.Invalid())
		if c.Failed > 0 {
			fmt.Fprintf(w, "%s %d distance solve(s) did not converge\n", color.YellowString("warning:"), c.Failed)
		}
		if c.CandidateEmpty {
			fmt.Fprintf(w, "%s one group has no row inside the other group's hull\n", color.YellowString("note:"))
		}
	}
	if r := res.DistanceReport; r != nil {
		writeTable(w, "Distance report ("+r.Metric+")", r)
	}
	return nil
}

func writeSummary(w io.Writer, s *ptypes.Summary) {
	fmt.Fprintf(w, "Run:        %s\n", s.RunID)
	fmt.Fprintf(w, "Covariates: %s (d=%d)\n", strings.Join(s.Covariates, ", "), s.Dim)
	fmt.Fprintf(w, "Treated:    %d points, %d vertices, volume %s\n", s.Treated.Points, s.Treated.Vertices, formatFloat(s.Treated.Volume))
	fmt.Fprintf(w, "Untreated:  %d points, %d vertices, volume %s\n", s.Untreated.Points, s.Untreated.Vertices, formatFloat(s.Untreated.Volume))
	if s.Empty {
		fmt.Fprintf(w, "Overlap:    %s\n", color.RedString("EMPTY"))
		return
	}
	fmt.Fprintf(w, "Overlap:    %d vertices, volume %s (seed: %s)\n", s.Overlap.Vertices, formatFloat(s.Overlap.Volume), s.SeedSource)
	fmt.Fprintf(w, "Coverage:   %s of treated, %s of untreated\n", percent(s.TreatedOverlapRatio), percent(s.UntreatedOverlapRatio))
}

func percent(r float64) string {
	return strconv.FormatFloat(100*r, 'f', 1, 64) + "%"
}

// assessTable flattens a classification into one CSV table.
type assessTable struct {
	c *ptypes.Classification
}

func (t *assessTable) Headers() []string {
	return append(append([]string(nil), t.c.Columns...), "Origin", "Valid", "Distance")
}

func (t *assessTable) Rows() [][]string {
	var out [][]string
	add := func(pts []ptypes.ClassifiedPoint) {
		for _, p := range pts {
			row := make([]string, 0, len(p.Values)+3)
			for _, v := range p.Values {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
			dist := ""
			if p.Distance != nil {
				dist = strconv.FormatFloat(*p.Distance, 'g', 10, 64)
			}
			out = append(out, append(row, string(p.Origin), strconv.FormatBool(p.Valid), dist))
		}
	}
	add(t.c.Valid().Points)
	add(t.c.Invalid().Points)
	return out
}

//Personal.AI order the ending
