package process

import (
	"errors"
	"testing"
	"time"

	"treasurydash/internal/core"
)

func observationsFixture() [][]any {
	return [][]any{
		{"Date", "BTC Held", "FD Shares", "Closing Price (USD)", "BTC Price (USD)"},
		// Supplied out of order on purpose.
		{"2025-03-01", 300.0, 10_000_000.0, 3.0, 100_000.0},
		{"2025-01-01", 100.0, 10_000_000.0, 1.0, 90_000.0},
		{"2025-02-01", 200.0, 10_000_000.0, 2.0, 95_000.0},
		{"2025-04-01", "bad", 10_000_000.0, 4.0, 100_000.0},
	}
}

func defaultObservationColumns() ObservationColumns {
	return ObservationColumns{
		Date:          "Date",
		BTCBalance:    "BTC Held",
		DilutedShares: "FD Shares",
		StockPrice:    "Closing Price (USD)",
		BTCPrice:      "BTC Price (USD)",
	}
}

func TestObservations_SortedAndFiltered(t *testing.T) {
	obs, err := Observations(observationsFixture(), defaultObservationColumns())
	if err != nil {
		t.Fatalf("observations: %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("count: got %d, want 3", len(obs))
	}
	for i := 1; i < len(obs); i++ {
		if obs[i].Date.Before(obs[i-1].Date) {
			t.Fatal("observations not sorted ascending")
		}
	}
	if obs[0].BTCBalance != 100 || obs[2].BTCBalance != 300 {
		t.Fatalf("order wrong: %v ... %v", obs[0].BTCBalance, obs[2].BTCBalance)
	}
	// Derived BTC per share when the sheet lacks the column.
	if obs[0].BTCPerShare != 100.0/10_000_000.0 {
		t.Fatalf("btc per share: got %v", obs[0].BTCPerShare)
	}
}

func TestObservations_MissingColumn(t *testing.T) {
	values := [][]any{{"Date", "BTC Held"}, {"2025-01-01", 1.0}}
	_, err := Observations(values, defaultObservationColumns())
	if !errors.Is(err, core.ErrMissingColumn) {
		t.Fatalf("want ErrMissingColumn, got %v", err)
	}
}

func TestObservations_AllRowsInvalid(t *testing.T) {
	values := [][]any{
		{"Date", "BTC Held", "FD Shares", "Closing Price (USD)"},
		{"", "x", "y", "z"},
	}
	cols := defaultObservationColumns()
	cols.BTCPrice = ""
	_, err := Observations(values, cols)
	if !errors.Is(err, core.ErrNoData) {
		t.Fatalf("want ErrNoData, got %v", err)
	}
}

func TestKeyStatistics(t *testing.T) {
	obs := []core.Observation{
		{
			Date:          time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			BTCBalance:    1000,
			DilutedShares: 50_000_000,
			StockPrice:    4,
			BTCPrice:      100_000,
			BTCPerShare:   0.00002,
		},
	}
	stats := KeyStatistics(obs)
	if len(stats) == 0 {
		t.Fatal("no statistics produced")
	}
	for i := 1; i < len(stats); i++ {
		if stats[i].Order < stats[i-1].Order {
			t.Fatal("statistics not sorted by order")
		}
	}

	byLabel := map[string]string{}
	for _, s := range stats {
		byLabel[s.Label] = s.Value
	}
	if byLabel["Bitcoin NAV"] != "$100.00M" {
		t.Fatalf("NAV card: got %q", byLabel["Bitcoin NAV"])
	}
	if byLabel["Market Cap"] != "$200.00M" {
		t.Fatalf("market cap card: got %q", byLabel["Market Cap"])
	}
	if byLabel["mNAV"] != "2.00x" {
		t.Fatalf("mNAV card: got %q", byLabel["mNAV"])
	}
	if byLabel["Sats/Share"] != "2,000" {
		t.Fatalf("sats/share card: got %q", byLabel["Sats/Share"])
	}
	// Combined display string on the holdings card.
	if byLabel["BTC Holdings"] != "1,000 BTC ($100.00M)" {
		t.Fatalf("holdings card: got %q", byLabel["BTC Holdings"])
	}
}

func TestKeyStatistics_ZeroNAVPlaceholder(t *testing.T) {
	obs := []core.Observation{{
		Date:          time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		BTCBalance:    10,
		DilutedShares: 1000,
		StockPrice:    1,
	}}
	stats := KeyStatistics(obs)
	for _, s := range stats {
		if s.Label == "mNAV" && s.Value != core.Placeholder {
			t.Fatalf("mNAV without BTC price: got %q", s.Value)
		}
	}
}

func TestDailyBTCYield(t *testing.T) {
	day := func(d int, balance float64) core.Observation {
		return core.Observation{
			Date:       time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC),
			BTCBalance: balance,
		}
	}
	obs := []core.Observation{day(1, 100), day(2, 110), day(3, 130), day(4, 130)}
	// Deltas: 10, 20, 0 -> mean 10.
	if got := DailyBTCYield(obs, 30); got != 10 {
		t.Fatalf("yield: got %v, want 10", got)
	}
	if got := DailyBTCYield(obs[:1], 30); got != 0 {
		t.Fatalf("single point yield: got %v, want 0", got)
	}
	// Window limits to the trailing observations.
	if got := DailyBTCYield(obs, 2); got != 0 {
		t.Fatalf("windowed yield: got %v, want 0", got)
	}
}

func TestProjectNAVPerShare(t *testing.T) {
	day := func(d int, balance float64) core.Observation {
		return core.Observation{
			Date:          time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC),
			BTCBalance:    balance,
			DilutedShares: 1_000_000,
			BTCPrice:      100_000,
		}
	}
	obs := []core.Observation{day(1, 100), day(2, 110)}
	projections := ProjectNAVPerShare(obs, []float64{1, 3}, 1)
	if len(projections) != 2 {
		t.Fatalf("projection count: got %d", len(projections))
	}
	if len(projections[0].Points) != 30 {
		t.Fatalf("points per projection: got %d, want 30", len(projections[0].Points))
	}

	// Yield is 10 BTC/day, so day 1 projects 120 BTC.
	first := projections[0].Points[0]
	want := 120.0 * 100_000 / 1_000_000
	if first.Value != want {
		t.Fatalf("first projected value: got %v, want %v", first.Value, want)
	}
	if !first.Date.After(obs[1].Date) {
		t.Fatal("projection must start after last observation")
	}

	// Monotonic continuation for accumulating treasuries.
	points := projections[1].Points
	for i := 1; i < len(points); i++ {
		if points[i].Value <= points[i-1].Value {
			t.Fatal("projection not monotonic for positive yield")
		}
	}
}
