// Package dataset holds the tabular input of an assessment: named numeric
// columns and rows, with CSV ingestion and covariate extraction.
package dataset

import (
	"math"
	"strings"

	"github.com/turtacn/positivity/pkg/errors"
)

// Frame is an in-memory table. Every row has len(Columns) values.
type Frame struct {
	Columns []string    `json:"columns" yaml:"columns"`
	Rows    [][]float64 `json:"rows" yaml:"rows"`
}

// NewFrame validates widths and duplicate column names.
func NewFrame(columns []string, rows [][]float64) (*Frame, error) {
	if len(columns) == 0 {
		return nil, errors.InvalidParam("frame requires at least one column")
	}
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return nil, errors.InvalidParam("duplicate column").WithDetailf("column=%q", c)
		}
		seen[c] = true
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, errors.DimensionMismatch(len(columns), len(r)).WithDetailf("row %d", i)
		}
	}
	return &Frame{Columns: columns, Rows: rows}, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// ColumnIndex returns the position of name. Matching is exact.
func (f *Frame) ColumnIndex(name string) (int, bool) {
	for i, c := range f.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Select extracts the named columns, in the given order, from every row.
func (f *Frame) Select(columns []string) ([][]float64, error) {
	if len(columns) == 0 {
		return nil, errors.InvalidParam("at least one covariate column is required")
	}
	idx := make([]int, len(columns))
	for i, name := range columns {
		j, ok := f.ColumnIndex(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeColumnNotFound, "covariate column not found").
				WithDetailf("column=%q available=%s", name, strings.Join(f.Columns, ","))
		}
		idx[i] = j
	}
	out := make([][]float64, len(f.Rows))
	for r, row := range f.Rows {
		v := make([]float64, len(idx))
		for i, j := range idx {
			if math.IsNaN(row[j]) || math.IsInf(row[j], 0) {
				return nil, errors.InvalidParam("non-finite covariate").
					WithDetailf("row=%d column=%q", r, columns[i])
			}
			v[i] = row[j]
		}
		out[r] = v
	}
	return out, nil
}

// SplitByIndicator partitions f on a 0/1 indicator column into treated (1)
// and untreated (0) frames. Both keep every column of f.
func (f *Frame) SplitByIndicator(column string) (treated, untreated *Frame, err error) {
	j, ok := f.ColumnIndex(column)
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeColumnNotFound, "indicator column not found").
			WithDetailf("column=%q", column)
	}
	treated = &Frame{Columns: f.Columns}
	untreated = &Frame{Columns: f.Columns}
	for r, row := range f.Rows {
		switch row[j] {
		case 1:
			treated.Rows = append(treated.Rows, row)
		case 0:
			untreated.Rows = append(untreated.Rows, row)
		default:
			return nil, nil, errors.InvalidParam("indicator must be 0 or 1").
				WithDetailf("row=%d value=%v", r, row[j])
		}
	}
	return treated, untreated, nil
}
