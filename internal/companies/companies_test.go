package companies

import (
	"sort"
	"testing"
)

func TestGet(t *testing.T) {
	cfg, ok := Get("blgv")
	if !ok {
		t.Fatal("blgv should be configured")
	}
	if cfg.Slug != "blgv" || cfg.Name != "BLGV" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.HistoricalRange != "BLGV Historical" {
		t.Fatalf("historical range: got %q", cfg.HistoricalRange)
	}
	if cfg.Columns.DilutedShares != "FD Shares" {
		t.Fatalf("shares column: got %q", cfg.Columns.DilutedShares)
	}
	if coin, _ := Get("coinsilium"); coin.Columns.BTCPerShare != "BTC / Share" {
		t.Fatalf("coinsilium btc/share column: got %q", coin.Columns.BTCPerShare)
	}

	if _, ok := Get("unknown"); ok {
		t.Fatal("unknown slug should not resolve")
	}
}

func TestAll_SortedAndComplete(t *testing.T) {
	all := All()
	if len(all) != 6 {
		t.Fatalf("company count: got %d, want 6", len(all))
	}
	if !sort.SliceIsSorted(all, func(i, j int) bool { return all[i].Slug < all[j].Slug }) {
		t.Fatal("All() not sorted by slug")
	}
	for _, cfg := range all {
		if cfg.SpreadsheetID == "" || cfg.HistoricalRange == "" {
			t.Errorf("%s: missing sheet coordinates", cfg.Slug)
		}
		if cfg.Columns.Date == "" || cfg.Columns.BTCBalance == "" {
			t.Errorf("%s: incomplete column mapping", cfg.Slug)
		}
		if len(cfg.NAVLevels) != len(cfg.NAVColors) {
			t.Errorf("%s: %d NAV levels but %d colors", cfg.Slug, len(cfg.NAVLevels), len(cfg.NAVColors))
		}
		if cfg.ProjectionMonths <= 0 {
			t.Errorf("%s: projection months must be positive", cfg.Slug)
		}
	}
}

func TestSlugs(t *testing.T) {
	slugs := Slugs()
	if len(slugs) != len(All()) {
		t.Fatalf("slug count mismatch: %d vs %d", len(slugs), len(All()))
	}
	if !sort.StringsAreSorted(slugs) {
		t.Fatal("Slugs() not sorted")
	}
}
