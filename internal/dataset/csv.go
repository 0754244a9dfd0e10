package dataset

import (
	"encoding/csv"
	stderrors "errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cast"

	"github.com/turtacn/positivity/pkg/errors"
)

// LoadCSV reads a header row followed by numeric rows. Blank lines are
// skipped; empty or non-numeric cells are rejected with their position.
func LoadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, errors.New(errors.ErrCodeDatasetEmpty, "csv has no header row")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetParseFailed, "read csv header")
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows [][]float64
	for {
		rec, err := reader.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatasetParseFailed, "read csv record")
		}
		row := make([]float64, len(rec))
		for i, cell := range rec {
			line, _ := reader.FieldPos(i)
			cell = strings.TrimSpace(cell)
			if cell == "" {
				return nil, errors.New(errors.ErrCodeDatasetParseFailed, "empty cell").
					WithDetailf("line=%d column=%q", line, columns[i])
			}
			v, err := cast.ToFloat64E(cell)
			if err != nil {
				return nil, errors.New(errors.ErrCodeDatasetParseFailed, "non-numeric cell").
					WithDetailf("line=%d column=%q value=%q", line, columns[i], cell).
					WithCause(err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetEmpty, "csv has no data rows")
	}
	return NewFrame(columns, rows)
}

// LoadCSVFile opens path and delegates to LoadCSV.
func LoadCSVFile(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "open dataset").WithDetailf("path=%s", path)
	}
	defer f.Close()
	return LoadCSV(f)
}
