// Package process holds the spreadsheet-to-dashboard transformation
// processors. Every function here is pure: raw cell matrices in, typed
// display data out, rows handled in the order supplied.
package process

import (
	"fmt"
	"time"

	"treasurydash/internal/core"
)

// ColumnFilter selects and re-keys spreadsheet columns.
type ColumnFilter struct {
	// Columns are the headers to keep in output rows, in output order.
	Columns []string

	// Required lists columns a row must have non-empty for inclusion.
	Required []string

	// DateColumn plus MinDate exclude rows dated before the threshold.
	// Rows whose date cell does not parse are excluded whenever
	// DateColumn is set.
	DateColumn string
	MinDate    time.Time
}

// Apply converts a raw cell matrix into row records. The first row is the
// header. Only requested columns appear in output records; cells parse
// numerically where possible and stay strings otherwise.
func (f ColumnFilter) Apply(values [][]any) ([]core.Row, error) {
	if len(values) == 0 {
		return nil, core.ErrNoData
	}
	index := headerIndex(values[0])

	for _, col := range f.Required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrMissingColumn, col)
		}
	}
	if f.DateColumn != "" {
		if _, ok := index[f.DateColumn]; !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrMissingColumn, f.DateColumn)
		}
	}

	out := make([]core.Row, 0, len(values)-1)
rows:
	for _, raw := range values[1:] {
		for _, col := range f.Required {
			if core.CellString(cellAt(raw, index[col])) == "" {
				continue rows
			}
		}
		if f.DateColumn != "" {
			d, ok := core.ParseCellDate(cellAt(raw, index[f.DateColumn]))
			if !ok {
				continue
			}
			if !f.MinDate.IsZero() && d.Before(f.MinDate) {
				continue
			}
		}

		rec := make(core.Row, len(f.Columns))
		for _, col := range f.Columns {
			idx, ok := index[col]
			if !ok {
				continue
			}
			cell := cellAt(raw, idx)
			if n, numeric := core.ParseNumeric(cell); numeric {
				rec[col] = n
			} else {
				rec[col] = core.CellString(cell)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// headerIndex maps trimmed header names to their column position. The
// first occurrence wins when a sheet repeats a header.
func headerIndex(header []any) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := core.CellString(h)
		if name == "" {
			continue
		}
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	return index
}

func cellAt(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}
