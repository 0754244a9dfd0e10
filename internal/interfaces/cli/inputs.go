package cli

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/turtacn/positivity/internal/dataset"
	"github.com/turtacn/positivity/internal/positivity"
	"github.com/turtacn/positivity/pkg/errors"
)

// inputOptions selects the two samples. Either both --treated and
// --untreated are given, or a single --input split on --indicator.
type inputOptions struct {
	Treated    string
	Untreated  string
	Input      string
	Indicator  string
	Covariates []string
}

func (o *inputOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.Treated, "treated", "", "CSV file of treated observations")
	f.StringVar(&o.Untreated, "untreated", "", "CSV file of untreated observations")
	f.StringVar(&o.Input, "input", "", "single CSV file holding both groups (requires --indicator)")
	f.StringVar(&o.Indicator, "indicator", "", "0/1 treatment column used to split --input")
	f.StringSliceVar(&o.Covariates, "covariates", nil, "covariate columns, comma separated")
	_ = cmd.MarkFlagRequired("covariates")
}

func (o *inputOptions) frames() (treated, untreated *dataset.Frame, err error) {
	switch {
	case o.Input != "":
		if o.Treated != "" || o.Untreated != "" {
			return nil, nil, errors.InvalidParam("--input cannot be combined with --treated or --untreated")
		}
		if o.Indicator == "" {
			return nil, nil, errors.InvalidParam("--indicator is required with --input")
		}
		all, err := dataset.LoadCSVFile(o.Input)
		if err != nil {
			return nil, nil, err
		}
		return all.SplitByIndicator(o.Indicator)
	case o.Treated != "" && o.Untreated != "":
		if treated, err = dataset.LoadCSVFile(o.Treated); err != nil {
			return nil, nil, err
		}
		if untreated, err = dataset.LoadCSVFile(o.Untreated); err != nil {
			return nil, nil, err
		}
		return treated, untreated, nil
	default:
		return nil, nil, errors.InvalidParam("either --treated and --untreated, or --input and --indicator, are required")
	}
}

// buildAssessment loads the inputs and builds an assessment wired to the
// command's config, logger and metrics.
func buildAssessment(cmd *cobra.Command, in *inputOptions) (*positivity.Assessment, *CLIContext, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	treated, untreated, err := in.frames()
	if err != nil {
		return nil, nil, err
	}
	opts := append(cliCtx.Config.AssessmentOptions(),
		positivity.WithLogger(cliCtx.Logger),
		positivity.WithMetrics(cliCtx.Metrics),
	)
	a, err := positivity.Build(treated, untreated, in.Covariates, opts...)
	if err != nil {
		return nil, nil, err
	}
	return a, cliCtx, nil
}

// parsePoint reads "x,y,..." into coordinates.
func parsePoint(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := cast.ToFloat64E(strings.TrimSpace(p))
		if err != nil || strings.TrimSpace(p) == "" {
			return nil, errors.InvalidParam("point coordinates must be numeric").
				WithDetailf("point=%q coordinate=%d", s, i)
		}
		out[i] = v
	}
	return out, nil
}

//Personal.AI order the ending
