package process

import (
	"testing"
	"time"
)

func actionsFixture() [][]any {
	return [][]any{
		{"Date", "Description", "BTC Amount", "BTC Total", "Cost Basis (USD)", "Note"},
		{"2025-01-10", "Initial purchase", "117.0", "117.0", "$10,000,000", "ATM proceeds"},
		{"2025-02-14", "Follow-on purchase", 100.0, 217.0, "$9,500,000", ""},
		{"", "Missing date", 5.0, 222.0, "$400,000", ""},
		{"2025-03-01", "", 5.0, 222.0, "$400,000", "missing description"},
		{"not a date", "Bad date", 1.0, 223.0, "$90,000", ""},
		{"2025-04-01", "Partial row"},
	}
}

func TestTreasuryActions_MapsAndExcludes(t *testing.T) {
	actions := TreasuryActions(actionsFixture(), DefaultActionColumns())
	if len(actions) != 3 {
		t.Fatalf("action count: got %d, want 3", len(actions))
	}

	first := actions[0]
	if !first.Date.Equal(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first date: got %v", first.Date)
	}
	if first.Description != "Initial purchase" {
		t.Fatalf("first description: got %q", first.Description)
	}
	if first.BTCAmount != 117 || first.BTCTotal != 117 {
		t.Fatalf("first amounts: got %v / %v", first.BTCAmount, first.BTCTotal)
	}
	if first.CostBasis != 10_000_000 {
		t.Fatalf("first cost basis: got %v", first.CostBasis)
	}
	if first.Note != "ATM proceeds" {
		t.Fatalf("first note: got %q", first.Note)
	}

	// Rows are kept in supplied order.
	if !actions[1].Date.After(actions[0].Date) {
		t.Fatal("order not preserved")
	}

	// Partial rows still map with zero numerics.
	last := actions[2]
	if last.Description != "Partial row" || last.BTCAmount != 0 {
		t.Fatalf("partial row: %+v", last)
	}
}

func TestTreasuryActions_HeaderOnly(t *testing.T) {
	header := [][]any{{"Date", "Description"}}
	if got := TreasuryActions(header, DefaultActionColumns()); got != nil {
		t.Fatalf("header-only input should yield nil, got %v", got)
	}
}

func TestTreasuryActions_MissingKeyHeaders(t *testing.T) {
	values := [][]any{
		{"When", "What"},
		{"2025-01-10", "something"},
	}
	if got := TreasuryActions(values, DefaultActionColumns()); got != nil {
		t.Fatalf("missing headers should yield nil, got %v", got)
	}
}
