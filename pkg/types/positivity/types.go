// Package positivity holds the result types produced by a positivity
// assessment: per-row classifications, the printable valid/invalid tables,
// distance reports and the assessment summary.
package positivity

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
)

// Origin identifies the group a row came from.
type Origin string

const (
	OriginTreated   Origin = "Treated"
	OriginUntreated Origin = "Untreated"
)

// Opposite returns the other group.
func (o Origin) Opposite() Origin {
	if o == OriginTreated {
		return OriginUntreated
	}
	return OriginTreated
}

// RunID identifies one assessment run in logs and reports.
type RunID string

// NewRunID returns a fresh random RunID.
func NewRunID() RunID {
	return RunID(uuid.New().String())
}

// Validate checks that id is a well-formed UUID.
func (id RunID) Validate() error {
	if id == "" {
		return fmt.Errorf("run ID cannot be empty")
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		return fmt.Errorf("invalid run ID format: %w", err)
	}
	return nil
}

// SeedSource records how the interior point of the overlap was found.
type SeedSource string

const (
	SeedSample    SeedSource = "sample"
	SeedChebyshev SeedSource = "chebyshev"
	SeedNone      SeedSource = "none"
)

// ClassifiedPoint is one observation tagged with its group and whether it
// lies inside the opposite group's hull.
type ClassifiedPoint struct {
	Origin     Origin    `json:"origin" yaml:"origin"`
	Index      int       `json:"index" yaml:"index"`
	Values     []float64 `json:"values" yaml:"values"`
	Covariates []float64 `json:"covariates" yaml:"covariates"`
	Valid      bool      `json:"valid" yaml:"valid"`

	// The fields below are populated for invalid points only.
	Distance   *float64  `json:"distance,omitempty" yaml:"distance,omitempty"`
	Weights    []float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
	Nearest    []float64 `json:"nearest,omitempty" yaml:"nearest,omitempty"`
	Iterations int       `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Err        string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Table is a printable row set.
type Table interface {
	Headers() []string
	Rows() [][]string
}

// ValidTable lists rows inside the opposite group's hull as the original
// columns followed by Origin.
type ValidTable struct {
	Columns []string          `json:"columns" yaml:"columns"`
	Points  []ClassifiedPoint `json:"points" yaml:"points"`
}

// Headers implements Table.
func (t *ValidTable) Headers() []string {
	return append(append([]string(nil), t.Columns...), "Origin")
}

// Rows implements Table.
func (t *ValidTable) Rows() [][]string {
	out := make([][]string, 0, len(t.Points))
	for _, p := range t.Points {
		out = append(out, append(formatValues(p.Values), string(p.Origin)))
	}
	return out
}

// InvalidTable lists rows outside the opposite group's hull as the original
// columns followed by Origin and Distance. Distance is blank for rows whose
// solve failed.
type InvalidTable struct {
	Columns []string          `json:"columns" yaml:"columns"`
	Points  []ClassifiedPoint `json:"points" yaml:"points"`
}

// Headers implements Table.
func (t *InvalidTable) Headers() []string {
	return append(append([]string(nil), t.Columns...), "Origin", "Distance")
}

// Rows implements Table.
func (t *InvalidTable) Rows() [][]string {
	out := make([][]string, 0, len(t.Points))
	for _, p := range t.Points {
		out = append(out, append(formatValues(p.Values), string(p.Origin), formatDistance(p.Distance)))
	}
	return out
}

// Classification is the full partition of both groups.
type Classification struct {
	RunID      RunID    `json:"run_id" yaml:"run_id"`
	Columns    []string `json:"columns" yaml:"columns"`
	Covariates []string `json:"covariates" yaml:"covariates"`

	TreatedValid     []ClassifiedPoint `json:"treated_valid" yaml:"treated_valid"`
	TreatedInvalid   []ClassifiedPoint `json:"treated_invalid" yaml:"treated_invalid"`
	UntreatedValid   []ClassifiedPoint `json:"untreated_valid" yaml:"untreated_valid"`
	UntreatedInvalid []ClassifiedPoint `json:"untreated_invalid" yaml:"untreated_invalid"`

	// CandidateEmpty is set when either group has no row inside the other's
	// hull. It is a hint only; emptiness of the overlap is decided by the
	// halfspace system.
	CandidateEmpty bool `json:"candidate_empty" yaml:"candidate_empty"`

	// Failed counts invalid rows whose distance solve did not converge.
	Failed int `json:"failed" yaml:"failed"`
}

// Valid returns both groups' valid rows, treated first.
func (c *Classification) Valid() *ValidTable {
	pts := make([]ClassifiedPoint, 0, len(c.TreatedValid)+len(c.UntreatedValid))
	pts = append(append(pts, c.TreatedValid...), c.UntreatedValid...)
	return &ValidTable{Columns: c.Columns, Points: pts}
}

// Invalid returns both groups' invalid rows, treated first.
func (c *Classification) Invalid() *InvalidTable {
	pts := make([]ClassifiedPoint, 0, len(c.TreatedInvalid)+len(c.UntreatedInvalid))
	pts = append(append(pts, c.TreatedInvalid...), c.UntreatedInvalid...)
	return &InvalidTable{Columns: c.Columns, Points: pts}
}

// DistanceReport lists the distance of every invalid row to the overlap,
// farthest first. Rows without a distance sort last.
type DistanceReport struct {
	Metric     string            `json:"metric" yaml:"metric"`
	Covariates []string          `json:"covariates" yaml:"covariates"`
	Points     []ClassifiedPoint `json:"points" yaml:"points"`
	Failed     int               `json:"failed" yaml:"failed"`
}

// SortByDistance orders points by descending distance, keeping the input
// order among ties.
func (r *DistanceReport) SortByDistance() {
	sort.SliceStable(r.Points, func(i, j int) bool {
		a, b := r.Points[i].Distance, r.Points[j].Distance
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
}

// Headers implements Table.
func (r *DistanceReport) Headers() []string {
	return append(append([]string(nil), r.Covariates...), "Origin", "Index", r.Metric, "Iterations")
}

// Rows implements Table.
func (r *DistanceReport) Rows() [][]string {
	out := make([][]string, 0, len(r.Points))
	for _, p := range r.Points {
		row := append(formatValues(p.Covariates), string(p.Origin), strconv.Itoa(p.Index), formatDistance(p.Distance), strconv.Itoa(p.Iterations))
		out = append(out, row)
	}
	return out
}

// HullSummary describes one hull.
type HullSummary struct {
	Points   int     `json:"points" yaml:"points"`
	Vertices int     `json:"vertices" yaml:"vertices"`
	Facets   int     `json:"facets" yaml:"facets"`
	Volume   float64 `json:"volume" yaml:"volume"`
}

// Summary is the headline view of an assessment.
type Summary struct {
	RunID      RunID       `json:"run_id" yaml:"run_id"`
	Dim        int         `json:"dim" yaml:"dim"`
	Covariates []string    `json:"covariates" yaml:"covariates"`
	Treated    HullSummary `json:"treated" yaml:"treated"`
	Untreated  HullSummary `json:"untreated" yaml:"untreated"`
	Overlap    HullSummary `json:"overlap" yaml:"overlap"`
	Empty      bool        `json:"empty" yaml:"empty"`
	SeedSource SeedSource  `json:"seed_source" yaml:"seed_source"`

	// Overlap volume as a fraction of each group's hull volume.
	TreatedOverlapRatio   float64 `json:"treated_overlap_ratio" yaml:"treated_overlap_ratio"`
	UntreatedOverlapRatio float64 `json:"untreated_overlap_ratio" yaml:"untreated_overlap_ratio"`
}

// PointCheck is the verdict for one queried point.
type PointCheck struct {
	Point    []float64 `json:"point" yaml:"point"`
	Positive bool      `json:"positive" yaml:"positive"`
	// Distance to the overlap, when requested for a point outside it.
	Distance *float64 `json:"distance,omitempty" yaml:"distance,omitempty"`
}

func formatValues(v []float64) []string {
	out := make([]string, len(v))
	for i, x := range v {
		out[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return out
}

func formatDistance(d *float64) string {
	if d == nil {
		return ""
	}
	return strconv.FormatFloat(*d, 'g', 10, 64)
}

//Personal.AI order the ending
