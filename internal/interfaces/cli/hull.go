package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/positivity/internal/dataset"
	"github.com/turtacn/positivity/internal/geometry"
	"github.com/turtacn/positivity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/positivity/pkg/errors"
)

// HullResult describes the convex hull of one sample.
type HullResult struct {
	Covariates []string            `json:"covariates" yaml:"covariates"`
	Points     int                 `json:"points" yaml:"points"`
	Vertices   [][]float64         `json:"vertices" yaml:"vertices"`
	Facets     int                 `json:"facets" yaml:"facets"`
	Volume     float64             `json:"volume" yaml:"volume"`
	Centroid   []float64           `json:"centroid" yaml:"centroid"`
	Extent     []geometry.Interval `json:"extent" yaml:"extent"`
}

// NewHullCmd creates the hull command.
func NewHullCmd() *cobra.Command {
	var (
		input      string
		covariates []string
	)

	cmd := &cobra.Command{
		Use:     "hull",
		Short:   "Print the convex hull of one sample",
		Long:    "Print the hull vertices (counter-clockwise in two dimensions), volume, and plotting extent of a CSV sample.",
		Example: "  positivity hull --input t.csv --covariates x,y",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if input == "" {
				return errors.InvalidParam("--input is required")
			}
			frame, err := dataset.LoadCSVFile(input)
			if err != nil {
				return err
			}
			pts, err := frame.Select(covariates)
			if err != nil {
				return err
			}
			h, err := geometry.NewIncremental(geometry.WithTolerances(cliCtx.Config.Tolerances())).ComputeHull(pts)
			if err != nil {
				return err
			}
			cliCtx.Logger.Info("hull computed",
				logging.String("input", input),
				logging.Int("vertices", len(h.Vertices)),
				logging.Float64("volume", h.Volume))

			verts := h.VertexPoints()
			res := &HullResult{
				Covariates: covariates,
				Points:     len(pts),
				Vertices:   geometry.SortCCW(verts),
				Facets:     len(h.Facets),
				Volume:     h.Volume,
				Centroid:   h.Centroid,
				Extent:     geometry.Extent(verts, geometry.ExtentBuffer),
			}
			return renderHull(cmd.OutOrStdout(), cliCtx.OutputFormat, res)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "CSV file of one sample")
	cmd.Flags().StringSliceVar(&covariates, "covariates", nil, "covariate columns, comma separated")
	_ = cmd.MarkFlagRequired("covariates")
	return cmd
}

func renderHull(w io.Writer, format string, res *HullResult) error {
	if ok, err := writeStructured(w, format, res); ok {
		return err
	}
	if format == FormatCSV {
		return writeCSV(w, &vertexTable{columns: res.Covariates, vertices: res.Vertices})
	}
	fmt.Fprintf(w, "Points:   %d\n", res.Points)
	fmt.Fprintf(w, "Facets:   %d\n", res.Facets)
	fmt.Fprintf(w, "Volume:   %s\n", formatFloat(res.Volume))
	fmt.Fprintf(w, "Centroid: %s\n", formatPoint(res.Centroid))
	ext := make([]string, len(res.Extent))
	for i, iv := range res.Extent {
		ext[i] = fmt.Sprintf("%s [%s, %s]", res.Covariates[i], formatFloat(iv.Min), formatFloat(iv.Max))
	}
	fmt.Fprintf(w, "Extent:   %s\n", strings.Join(ext, "  "))
	writeTable(w, "Vertices", &vertexTable{columns: res.Covariates, vertices: res.Vertices})
	return nil
}

type vertexTable struct {
	columns  []string
	vertices [][]float64
}

func (t *vertexTable) Headers() []string { return t.columns }

func (t *vertexTable) Rows() [][]string {
	out := make([][]string, len(t.vertices))
	for i, v := range t.vertices {
		row := make([]string, len(v))
		for j, x := range v {
			row[j] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		out[i] = row
	}
	return out
}

//Personal.AI order the ending
