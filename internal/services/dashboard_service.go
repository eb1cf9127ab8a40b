// Package services orchestrates the dashboard pipeline: fetch spreadsheet
// ranges, run the processors, assemble the JSON payload, snapshot it, and
// announce refreshes. Sheet trouble degrades to snapshots or empty sections;
// only a company with neither live data nor a snapshot yields an error.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"treasurydash/internal/amqp"
	"treasurydash/internal/companies"
	"treasurydash/internal/core"
	"treasurydash/internal/images"
	applog "treasurydash/internal/log"
	"treasurydash/internal/process"
	"treasurydash/internal/sheets"
	"treasurydash/internal/storage"
)

const dateLayout = "2006-01-02"

// Point is one chart point with an ISO date.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Series is one chart line.
type Series struct {
	Label  string  `json:"label"`
	Color  string  `json:"color,omitempty"`
	Points []Point `json:"points"`
}

// Action is a treasury action formatted for display.
type Action struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	BTCAmount   string `json:"btc_amount"`
	BTCTotal    string `json:"btc_total"`
	CostBasis   string `json:"cost_basis"`
	Note        string `json:"note,omitempty"`
}

// DashboardPayload is the full API response for one company.
type DashboardPayload struct {
	Company     string              `json:"company"`
	Name        string              `json:"name"`
	GeneratedAt time.Time           `json:"generated_at"`
	Source      string              `json:"source"`
	Stats       []core.KeyStatistic `json:"stats"`
	Holdings    Series              `json:"holdings"`
	MNAV        Series              `json:"mnav"`
	SatsShare   Series              `json:"sats_share"`
	StockPrice  Series              `json:"stock_price"`
	NAVLevels   []Series            `json:"nav_levels"`
	Trendlines  []Series            `json:"trendlines"`
	PowerLaw    *PowerLawSection    `json:"power_law,omitempty"`
	Actions     []Action            `json:"actions"`
	Images      []images.Image      `json:"images"`
}

// PowerLawSection reports the BTC-balance vs BTC-per-share fit.
type PowerLawSection struct {
	process.PowerLawFit
	Strength string `json:"strength"`
}

// CompanySummary is the listing entry for /api/companies.
type CompanySummary struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// DashboardService builds and serves dashboard payloads.
type DashboardService struct {
	reader    sheets.RangeReader
	repo      *storage.SQLiteRepository
	amqp      *amqp.Client
	images    images.Lister
	logger    *applog.Logger
	retention int
}

func NewDashboardService(reader sheets.RangeReader, repo *storage.SQLiteRepository, amqpClient *amqp.Client, imageLister images.Lister, logger *applog.Logger, retention int) *DashboardService {
	if imageLister == nil {
		imageLister = images.PlaceholderLister{}
	}
	return &DashboardService{
		reader:    reader,
		repo:      repo,
		amqp:      amqpClient,
		images:    imageLister,
		logger:    logger.WithComponent(applog.ComponentDashboard),
		retention: retention,
	}
}

// Companies lists the configured companies.
func (s *DashboardService) Companies() []CompanySummary {
	all := companies.All()
	out := make([]CompanySummary, len(all))
	for i, cfg := range all {
		out[i] = CompanySummary{Slug: cfg.Slug, Name: cfg.Name}
	}
	return out
}

// Dashboard returns the live payload for a company, falling back to the most
// recent snapshot when the spreadsheet is unreachable.
func (s *DashboardService) Dashboard(ctx context.Context, slug string) (*DashboardPayload, error) {
	cfg, ok := companies.Get(slug)
	if !ok {
		return nil, fmt.Errorf("company %q: %w", slug, core.ErrNoData)
	}

	payload, err := s.build(ctx, cfg)
	if err == nil {
		return payload, nil
	}

	s.logger.WarnContext(ctx, "Live dashboard build failed, trying snapshot",
		applog.FieldCompany, slug,
		"error", err)

	snap, snapErr := s.repo.LatestSnapshot(ctx, slug)
	if snapErr != nil {
		return nil, fmt.Errorf("build dashboard for %s: %w", slug, err)
	}
	restored, decodeErr := decodePayload(snap.Payload)
	if decodeErr != nil {
		return nil, fmt.Errorf("decode snapshot %d for %s: %w", snap.ID, slug, decodeErr)
	}
	restored.Source = "snapshot"
	return restored, nil
}

// Actions returns only the treasury actions for a company.
func (s *DashboardService) Actions(ctx context.Context, slug string) ([]Action, error) {
	payload, err := s.Dashboard(ctx, slug)
	if err != nil {
		return nil, err
	}
	if payload.Actions == nil {
		return []Action{}, nil
	}
	return payload.Actions, nil
}

// Stats returns only the key statistic cards for a company.
func (s *DashboardService) Stats(ctx context.Context, slug string) ([]core.KeyStatistic, error) {
	payload, err := s.Dashboard(ctx, slug)
	if err != nil {
		return nil, err
	}
	if payload.Stats == nil {
		return []core.KeyStatistic{}, nil
	}
	return payload.Stats, nil
}

// Refresh rebuilds a company's payload, stores it as a snapshot, prunes old
// snapshots, and publishes a refresh event. A dead broker only logs.
func (s *DashboardService) Refresh(ctx context.Context, slug string) (int64, error) {
	cfg, ok := companies.Get(slug)
	if !ok {
		return 0, fmt.Errorf("company %q: %w", slug, core.ErrNoData)
	}

	payload, err := s.build(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("build dashboard for %s: %w", slug, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload for %s: %w", slug, err)
	}

	snapshotID, err := s.repo.SaveSnapshot(ctx, slug, body, len(payload.Holdings.Points))
	if err != nil {
		return 0, fmt.Errorf("save snapshot for %s: %w", slug, err)
	}

	if _, err := s.repo.PruneSnapshots(ctx, slug, s.retention); err != nil {
		s.logger.WarnContext(ctx, "Snapshot pruning failed",
			applog.FieldCompany, slug,
			"error", err)
	}

	if s.amqp != nil {
		if err := s.amqp.PublishDashboardRefresh(ctx, slug, snapshotID); err != nil {
			// The snapshot is saved; a dead broker must not fail the refresh.
			s.logger.WarnContext(ctx, "Refresh event not published",
				applog.FieldCompany, slug,
				applog.FieldSnapshotID, snapshotID,
				"error", err)
		}
	}

	return snapshotID, nil
}

func (s *DashboardService) build(ctx context.Context, cfg companies.Config) (*DashboardPayload, error) {
	ranges, err := s.reader.BatchRead(ctx, cfg.SpreadsheetID, []string{cfg.HistoricalRange, cfg.ActionsRange})
	if err != nil {
		return nil, fmt.Errorf("read ranges: %w", err)
	}
	if len(ranges) != 2 {
		return nil, fmt.Errorf("read ranges: got %d value ranges, want 2", len(ranges))
	}

	payload := &DashboardPayload{
		Company:     cfg.Slug,
		Name:        cfg.Name,
		GeneratedAt: time.Now().UTC(),
		Source:      "live",
		Stats:       []core.KeyStatistic{},
		Actions:     []Action{},
		Images:      s.images.ListChartImages(ctx, cfg.Slug),
	}

	obs, err := process.Observations(ranges[0].Values, cfg.Columns)
	if err != nil {
		// A malformed or empty historical tab degrades that company to
		// placeholder cards instead of failing the whole payload.
		s.logger.WarnContext(ctx, "Historical sheet unusable",
			applog.FieldCompany, cfg.Slug,
			applog.FieldRange, cfg.HistoricalRange,
			"error", err)
	} else {
		obs = filterObservations(obs, cfg.MinDate)
		s.populateFromObservations(payload, cfg, obs)
	}

	payload.Actions = formatActions(process.TreasuryActions(ranges[1].Values, cfg.ActionColumns))

	return payload, nil
}

func (s *DashboardService) populateFromObservations(payload *DashboardPayload, cfg companies.Config, obs []core.Observation) {
	payload.Stats = process.KeyStatistics(obs)

	payload.Holdings = Series{Label: "BTC Holdings", Points: make([]Point, 0, len(obs))}
	payload.SatsShare = Series{Label: "Sats/Share", Points: make([]Point, 0, len(obs))}
	payload.StockPrice = Series{Label: "Stock Price", Points: make([]Point, 0, len(obs))}
	payload.MNAV = Series{Label: "mNAV", Points: []Point{}}

	for _, o := range obs {
		date := o.Date.Format(dateLayout)
		payload.Holdings.Points = append(payload.Holdings.Points, Point{Date: date, Value: o.BTCBalance})
		payload.SatsShare.Points = append(payload.SatsShare.Points, Point{Date: date, Value: o.SatsPerShare()})
		payload.StockPrice.Points = append(payload.StockPrice.Points, Point{Date: date, Value: o.StockPrice})
		if m := o.MNAV(); m > 0 && (cfg.MNAVStartDate.IsZero() || !o.Date.Before(cfg.MNAVStartDate)) {
			payload.MNAV.Points = append(payload.MNAV.Points, Point{Date: date, Value: m})
		}
	}

	payload.NAVLevels = navLevelSeries(cfg, obs)
	payload.Trendlines = trendlineSeries(cfg, payload.SatsShare.Points)

	if fit, err := process.FitPowerLaw(obs); err == nil {
		payload.PowerLaw = &PowerLawSection{
			PowerLawFit: fit,
			Strength:    process.CorrelationStrength(fit.Correlation),
		}
	}
}

// navLevelSeries draws one line per NAV reference multiple over the stock
// price history, extended by the projection window.
func navLevelSeries(cfg companies.Config, obs []core.Observation) []Series {
	if len(obs) == 0 {
		return nil
	}
	out := make([]Series, 0, len(cfg.NAVLevels))
	projections := process.ProjectNAVPerShare(obs, cfg.NAVLevels, cfg.ProjectionMonths)

	for i, level := range cfg.NAVLevels {
		series := Series{Label: fmt.Sprintf("%gx NAV", level)}
		if i < len(cfg.NAVColors) {
			series.Color = cfg.NAVColors[i]
		}
		for _, o := range obs {
			if o.DilutedShares <= 0 {
				continue
			}
			series.Points = append(series.Points, Point{
				Date:  o.Date.Format(dateLayout),
				Value: o.NAV() * level / o.DilutedShares,
			})
		}
		if i < len(projections) {
			for _, p := range projections[i].Points {
				series.Points = append(series.Points, Point{Date: p.Date.Format(dateLayout), Value: p.Value})
			}
		}
		out = append(out, series)
	}
	return out
}

// trendlineSeries fits linear and exponential trends to sats per share and
// projects them over the company's projection window.
func trendlineSeries(cfg companies.Config, points []Point) []Series {
	series := make([]core.SeriesPoint, 0, len(points))
	for _, p := range points {
		d, err := time.Parse(dateLayout, p.Date)
		if err != nil {
			continue
		}
		series = append(series, core.SeriesPoint{Date: d, Value: p.Value})
	}

	days := cfg.ProjectionMonths * 30
	var out []Series
	for _, kind := range []process.TrendKind{process.TrendLinear, process.TrendExponential} {
		fit, err := process.FitTrend(series, kind)
		if err != nil {
			continue
		}
		trend := Series{Label: fmt.Sprintf("Sats/Share trend (%s)", kind)}
		for _, p := range fit.Project(days) {
			trend.Points = append(trend.Points, Point{Date: p.Date.Format(dateLayout), Value: p.Value})
		}
		out = append(out, trend)
	}
	return out
}

func filterObservations(obs []core.Observation, minDate time.Time) []core.Observation {
	if minDate.IsZero() {
		return obs
	}
	out := obs[:0:0]
	for _, o := range obs {
		if !o.Date.Before(minDate) {
			out = append(out, o)
		}
	}
	return out
}

func formatActions(actions []core.TreasuryAction) []Action {
	out := make([]Action, 0, len(actions))
	for _, a := range actions {
		out = append(out, Action{
			Date:        a.Date.Format(dateLayout),
			Description: a.Description,
			BTCAmount:   core.FormatBTC(a.BTCAmount),
			BTCTotal:    core.FormatBTC(a.BTCTotal),
			CostBasis:   core.FormatUSD(a.CostBasis),
			Note:        a.Note,
		})
	}
	return out
}

func decodePayload(body []byte) (*DashboardPayload, error) {
	var payload DashboardPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
