package services

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"treasurydash/internal/companies"
	"treasurydash/internal/core"
	applog "treasurydash/internal/log"
	"treasurydash/internal/sheets"
	"treasurydash/internal/sheets/memory"
	"treasurydash/internal/storage"
)

func historicalRows() [][]any {
	return [][]any{
		{"Date", "BTC Held", "FD Shares", "Closing Price (USD)", "BTC Price (USD)"},
		{"2025-05-01", 100.0, 1_000_000.0, 2.0, 100_000.0},
		{"2025-05-02", 110.0, 1_000_000.0, 2.1, 101_000.0},
		{"2025-05-03", 125.0, 1_000_000.0, 2.2, 99_000.0},
	}
}

func actionRows() [][]any {
	return [][]any{
		{"Date", "Description", "BTC Amount", "BTC Total", "Cost Basis (USD)", "Note"},
		{"2025-05-01", "Initial purchase", 100.0, 100.0, "$10,000,000", ""},
		{"2025-05-03", "Follow-on purchase", 25.0, 125.0, "$2,400,000", "ATM"},
	}
}

func newTestService(t *testing.T, reader sheets.RangeReader) (*DashboardService, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	logger := applog.New(applog.Config{Level: slog.LevelError})
	return NewDashboardService(reader, repo, nil, nil, logger, 5), repo
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	cfg, ok := companies.Get("blgv")
	if !ok {
		t.Fatal("blgv config missing")
	}
	store := memory.New()
	store.Seed(cfg.SpreadsheetID, cfg.HistoricalRange, historicalRows())
	store.Seed(cfg.SpreadsheetID, cfg.ActionsRange, actionRows())
	return store
}

func TestDashboard_Live(t *testing.T) {
	svc, _ := newTestService(t, seededStore(t))

	payload, err := svc.Dashboard(context.Background(), "blgv")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if payload.Source != "live" {
		t.Fatalf("source: got %q", payload.Source)
	}
	if len(payload.Holdings.Points) != 3 {
		t.Fatalf("holdings points: got %d", len(payload.Holdings.Points))
	}
	if payload.Holdings.Points[2].Value != 125 {
		t.Fatalf("last holdings value: got %v", payload.Holdings.Points[2].Value)
	}
	if len(payload.Stats) == 0 {
		t.Fatal("no key statistics")
	}
	if len(payload.MNAV.Points) != 3 {
		t.Fatalf("mnav points: got %d", len(payload.MNAV.Points))
	}
	if len(payload.Actions) != 2 {
		t.Fatalf("actions: got %d", len(payload.Actions))
	}
	if payload.Actions[0].CostBasis != "$10.00M" {
		t.Fatalf("cost basis formatting: got %q", payload.Actions[0].CostBasis)
	}
	// Four NAV reference levels configured for blgv.
	if len(payload.NAVLevels) != 4 {
		t.Fatalf("nav level series: got %d", len(payload.NAVLevels))
	}
	if !strings.Contains(payload.NAVLevels[0].Label, "2x") {
		t.Fatalf("nav level label: got %q", payload.NAVLevels[0].Label)
	}
	// Historical points plus the 3-month projection window.
	if len(payload.NAVLevels[0].Points) != 3+90 {
		t.Fatalf("nav level points: got %d", len(payload.NAVLevels[0].Points))
	}
	if len(payload.Trendlines) != 2 {
		t.Fatalf("trendlines: got %d", len(payload.Trendlines))
	}
	// No bucket configured: placeholder image.
	if len(payload.Images) != 1 {
		t.Fatalf("images: got %d", len(payload.Images))
	}
}

func TestDashboard_EmptySheetDegrades(t *testing.T) {
	cfg, _ := companies.Get("h100")
	store := memory.New()
	store.Seed(cfg.SpreadsheetID, cfg.HistoricalRange, nil)
	store.Seed(cfg.SpreadsheetID, cfg.ActionsRange, nil)
	svc, _ := newTestService(t, store)

	payload, err := svc.Dashboard(context.Background(), "h100")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(payload.Stats) != 0 || len(payload.Actions) != 0 {
		t.Fatalf("empty sheet should degrade to empty sections: %+v", payload)
	}
}

func TestDashboard_UnknownCompany(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	if _, err := svc.Dashboard(context.Background(), "nope"); err == nil {
		t.Fatal("unknown company should error")
	}
}

type failingReader struct{}

func (failingReader) ReadRange(context.Context, string, string) (core.RangeValues, error) {
	return core.RangeValues{}, errors.New("api unreachable")
}

func (failingReader) BatchRead(context.Context, string, []string) ([]core.RangeValues, error) {
	return nil, errors.New("api unreachable")
}

func TestRefreshAndSnapshotFallback(t *testing.T) {
	svc, repo := newTestService(t, seededStore(t))
	ctx := context.Background()

	snapshotID, err := svc.Refresh(ctx, "blgv")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if snapshotID == 0 {
		t.Fatal("snapshot id should be set")
	}

	snap, err := repo.LatestSnapshot(ctx, "blgv")
	if err != nil {
		t.Fatalf("latest snapshot: %v", err)
	}
	if snap.ID != snapshotID || snap.RowCount != 3 {
		t.Fatalf("snapshot: %+v", snap)
	}

	// With the sheet down, the dashboard answers from the snapshot.
	down := NewDashboardService(failingReader{}, repo, nil, nil,
		applog.New(applog.Config{Level: slog.LevelError}), 5)
	payload, err := down.Dashboard(ctx, "blgv")
	if err != nil {
		t.Fatalf("snapshot fallback: %v", err)
	}
	if payload.Source != "snapshot" {
		t.Fatalf("source: got %q", payload.Source)
	}
	if len(payload.Holdings.Points) != 3 {
		t.Fatalf("restored holdings: got %d", len(payload.Holdings.Points))
	}
}

func TestDashboard_NoLiveNoSnapshot(t *testing.T) {
	svc, _ := newTestService(t, failingReader{})
	if _, err := svc.Dashboard(context.Background(), "blgv"); err == nil {
		t.Fatal("no live data and no snapshot should error")
	}
}

func TestCompanies(t *testing.T) {
	svc, _ := newTestService(t, memory.New())
	list := svc.Companies()
	if len(list) != 6 {
		t.Fatalf("companies: got %d, want 6", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].Slug < list[i-1].Slug {
			t.Fatal("companies not sorted")
		}
	}
}

func TestRefresh_FailingReader(t *testing.T) {
	svc, _ := newTestService(t, failingReader{})
	if _, err := svc.Refresh(context.Background(), "blgv"); err == nil {
		t.Fatal("refresh with unreachable sheet should error")
	}
}
