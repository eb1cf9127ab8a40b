// Package companies holds the static per-company dashboard configuration:
// which spreadsheet and ranges feed each company, how its historical sheet
// columns map to observation fields, and its chart parameters.
package companies

import (
	"sort"
	"time"

	"treasurydash/internal/process"
)

// strategyTrackerSpreadsheet is the shared tracker workbook hosting one
// "<Company>|H" historical tab per company.
const strategyTrackerSpreadsheet = "1hyRTvjiXQbXU6UnPmZoRDF9Rs7vL8YYYfFsrqu6Jk8Q"

// Config is the static dashboard configuration for one company.
type Config struct {
	Slug string
	Name string

	SpreadsheetID   string
	HistoricalRange string
	ActionsRange    string

	Columns       process.ObservationColumns
	ActionColumns process.ActionColumns

	// Chart parameters.
	NAVLevels        []float64
	NAVColors        []string
	ProjectionMonths int
	// MNAVStartDate trims the mNAV series; zero means the full history.
	MNAVStartDate time.Time
	// MinDate trims every series; zero means no threshold.
	MinDate time.Time
}

func defaultColumns() process.ObservationColumns {
	return process.ObservationColumns{
		Date:          "Date",
		BTCBalance:    "BTC Held",
		DilutedShares: "FD Shares",
		StockPrice:    "Closing Price (USD)",
		BTCPrice:      "BTC Price (USD)",
	}
}

var registry = map[string]Config{
	"metaplanet": {
		Slug:             "metaplanet",
		Name:             "Metaplanet",
		SpreadsheetID:    strategyTrackerSpreadsheet,
		HistoricalRange:  "Metaplanet|H",
		ActionsRange:     "Metaplanet|A",
		Columns:          defaultColumns(),
		ActionColumns:    process.DefaultActionColumns(),
		NAVLevels:        []float64{3, 5, 7},
		NAVColors:        []string{"#0000ff", "#008000", "#ff0000"},
		ProjectionMonths: 2,
	},
	"h100": {
		Slug:             "h100",
		Name:             "H100",
		SpreadsheetID:    strategyTrackerSpreadsheet,
		HistoricalRange:  "H100|H",
		ActionsRange:     "H100|A",
		Columns:          defaultColumns(),
		ActionColumns:    process.DefaultActionColumns(),
		NAVLevels:        []float64{3, 5, 7},
		NAVColors:        []string{"#0000ff", "#008000", "#ff0000"},
		ProjectionMonths: 2,
		MNAVStartDate:    time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
	},
	"blgv": {
		Slug:            "blgv",
		Name:            "BLGV",
		SpreadsheetID:   "1tDNcdBkiQn8HJ-UkWDsKDlgeFwNa_ck3fiPPDtIVPlw",
		HistoricalRange: "BLGV Historical",
		ActionsRange:    "BLGV Actions",
		// "Equity Sats / Share" is denominated in sats; BTC per share is
		// derived from balance and shares instead.
		Columns:          defaultColumns(),
		ActionColumns:    process.DefaultActionColumns(),
		NAVLevels:        []float64{2, 3, 4, 5},
		NAVColors:        []string{"#800080", "#0000ff", "#008000", "#ff0000"},
		ProjectionMonths: 3,
	},
	"lqwd": {
		Slug:             "lqwd",
		Name:             "LQWD",
		SpreadsheetID:    strategyTrackerSpreadsheet,
		HistoricalRange:  "LQWD|H",
		ActionsRange:     "LQWD|A",
		Columns:          defaultColumns(),
		ActionColumns:    process.DefaultActionColumns(),
		NAVLevels:        []float64{3, 5, 7},
		NAVColors:        []string{"#0000ff", "#008000", "#ff0000"},
		ProjectionMonths: 2,
		MinDate:          time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC),
	},
	"coinsilium": {
		Slug:            "coinsilium",
		Name:            "Coinsilium",
		SpreadsheetID:   strategyTrackerSpreadsheet,
		HistoricalRange: "Coinsilium|H",
		ActionsRange:    "Coinsilium|A",
		Columns: process.ObservationColumns{
			Date:          "Date",
			BTCBalance:    "BTC Held",
			DilutedShares: "Outstanding Shares",
			StockPrice:    "Closing Price (USD)",
			BTCPrice:      "BTC Price (USD)",
			BTCPerShare:   "BTC / Share",
		},
		ActionColumns:    process.DefaultActionColumns(),
		NAVLevels:        []float64{2, 4, 6},
		NAVColors:        []string{"#0000ff", "#008000", "#ff0000"},
		ProjectionMonths: 1,
	},
	"locate": {
		Slug:            "locate",
		Name:            "Locate Technologies",
		SpreadsheetID:   strategyTrackerSpreadsheet,
		HistoricalRange: "Locate|H",
		ActionsRange:    "Locate|A",
		Columns: process.ObservationColumns{
			Date:          "Date",
			BTCBalance:    "BTC Held",
			DilutedShares: "FD Shares",
			StockPrice:    "Closing Price (USD)",
			BTCPrice:      "BTC Price (USD)",
			BTCPerShare:   "BTC / FD Share",
		},
		ActionColumns:    process.DefaultActionColumns(),
		NAVLevels:        []float64{3, 5, 7},
		NAVColors:        []string{"#0000ff", "#008000", "#ff0000"},
		ProjectionMonths: 2,
	},
}

// Get returns the configuration for a company slug.
func Get(slug string) (Config, bool) {
	cfg, ok := registry[slug]
	return cfg, ok
}

// All returns every configured company, sorted by slug.
func All() []Config {
	out := make([]Config, 0, len(registry))
	for _, cfg := range registry {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// Slugs returns the configured company slugs, sorted.
func Slugs() []string {
	out := make([]string, 0, len(registry))
	for slug := range registry {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}
