package core

import (
	"errors"
	"strings"
	"time"
)

// Placeholder is rendered in place of values that failed numeric parsing.
const Placeholder = "-"

type (
	// RangeValues is one element of a Sheets values:batchGet response:
	// a named range plus its raw 2-D cell matrix.
	RangeValues struct {
		Range          string
		MajorDimension string
		Values         [][]any
	}

	// Row is a spreadsheet row re-keyed by column header. Values are
	// either string or float64 depending on whether numeric parsing
	// succeeded.
	Row map[string]any

	// Observation is one dated record of a company's treasury position.
	Observation struct {
		Date          time.Time
		BTCBalance    float64
		DilutedShares float64
		StockPrice    float64
		BTCPrice      float64
		BTCPerShare   float64
	}

	// TreasuryAction is one purchase/sale row from a treasury-actions sheet.
	TreasuryAction struct {
		Date        time.Time
		Description string
		BTCAmount   float64
		BTCTotal    float64
		CostBasis   float64
		Note        string
	}

	// KeyStatistic is a label/value/order tuple backing one dashboard card.
	KeyStatistic struct {
		Label string `json:"label"`
		Value string `json:"value"`
		Order int    `json:"order"`
	}

	// SeriesPoint is one (date, value) pair of a chart series.
	SeriesPoint struct {
		Date  time.Time `json:"date"`
		Value float64   `json:"value"`
	}
)

var (
	ErrNoData        = errors.New("no data rows")
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptySeries   = errors.New("empty series")
)

// String returns the row value for the column as a trimmed string,
// or "" when absent.
func (r Row) String(column string) string {
	v, ok := r[column]
	if !ok {
		return ""
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(formatAny(v))
}

// Float returns the row value for the column as a float64 when the cell
// parsed numerically.
func (r Row) Float(column string) (float64, bool) {
	v, ok := r[column]
	if !ok {
		return 0, false
	}
	if f, isFloat := v.(float64); isFloat {
		return f, true
	}
	return ParseNumeric(v)
}

// Validate checks that an observation can participate in ratio metrics.
func (o Observation) Validate() error {
	if o.Date.IsZero() {
		return errors.New("observation date is zero")
	}
	if o.BTCBalance <= 0 {
		return errors.New("non-positive btc balance")
	}
	if o.DilutedShares <= 0 {
		return errors.New("non-positive diluted shares")
	}
	return nil
}

// NAV returns the Bitcoin net asset value in USD.
func (o Observation) NAV() float64 {
	return o.BTCBalance * o.BTCPrice
}

// MarketCap returns the fully diluted market cap in USD.
func (o Observation) MarketCap() float64 {
	return o.DilutedShares * o.StockPrice
}

// MNAV returns the market-cap-to-NAV multiple, or 0 when NAV is zero.
func (o Observation) MNAV() float64 {
	nav := o.NAV()
	if nav == 0 {
		return 0
	}
	return o.MarketCap() / nav
}

// SatsPerShare returns satoshis of Bitcoin held per diluted share.
func (o Observation) SatsPerShare() float64 {
	return o.BTCPerShare * 1e8
}
