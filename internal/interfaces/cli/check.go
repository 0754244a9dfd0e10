package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/positivity/pkg/errors"
	ptypes "github.com/turtacn/positivity/pkg/types/positivity"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	var (
		in       inputOptions
		points   []string
		distance bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether query points lie in the common support",
		Example: "  positivity check --treated t.csv --untreated u.csv --covariates x,y --point 2,1 --point 0,0\n" +
			"  positivity check --input all.csv --indicator d --covariates x,y --point 4,4 --distance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(points) == 0 {
				return errors.InvalidParam("at least one --point is required")
			}
			queries := make([][]float64, len(points))
			for i, s := range points {
				p, err := parsePoint(s)
				if err != nil {
					return err
				}
				queries[i] = p
			}

			a, cliCtx, err := buildAssessment(cmd, &in)
			if err != nil {
				return err
			}
			_, overlapErr := a.Intersection()

			checks := make([]ptypes.PointCheck, len(queries))
			for i, q := range queries {
				ok, err := a.IsPositive(q)
				if err != nil {
					return err
				}
				checks[i] = ptypes.PointCheck{Point: q, Positive: ok}
				if distance && !ok && overlapErr == nil {
					res, err := a.DistanceTo(cmd.Context(), q)
					if err != nil && res == nil {
						return err
					}
					d := res.Distance
					checks[i].Distance = &d
				}
			}
			return renderChecks(cmd.OutOrStdout(), cliCtx.OutputFormat, in.Covariates, checks)
		},
	}

	in.bind(cmd)
	cmd.Flags().StringArrayVarP(&points, "point", "p", nil, "comma separated coordinates in covariate order (repeatable)")
	cmd.Flags().BoolVar(&distance, "distance", false, "also report the distance of non-positive points to the overlap")
	return cmd
}

func renderChecks(w io.Writer, format string, covariates []string, checks []ptypes.PointCheck) error {
	if ok, err := writeStructured(w, format, checks); ok {
		return err
	}
	if format == FormatCSV {
		return writeCSV(w, &checkTable{covariates: covariates, checks: checks})
	}
	for _, c := range checks {
		line := fmt.Sprintf("%-24s %s", formatPoint(c.Point), verdict(c.Positive))
		if c.Distance != nil {
			line += fmt.Sprintf("  distance %s", formatFloat(*c.Distance))
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

type checkTable struct {
	covariates []string
	checks     []ptypes.PointCheck
}

func (t *checkTable) Headers() []string {
	return append(append([]string(nil), t.covariates...), "Positive", "Distance")
}

func (t *checkTable) Rows() [][]string {
	out := make([][]string, 0, len(t.checks))
	for _, c := range t.checks {
		row := make([]string, 0, len(c.Point)+2)
		for _, v := range c.Point {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		dist := ""
		if c.Distance != nil {
			dist = strconv.FormatFloat(*c.Distance, 'g', 10, 64)
		}
		out = append(out, append(row, strconv.FormatBool(c.Positive), dist))
	}
	return out
}

//Personal.AI order the ending
