package process

import (
	"fmt"
	"sort"

	"treasurydash/internal/core"
)

// ObservationColumns maps a company's historical-sheet headers to the
// standard observation fields. BTCPrice and BTCPerShare are optional;
// BTC per share is derived from balance/shares when the sheet lacks it.
type ObservationColumns struct {
	Date          string
	BTCBalance    string
	DilutedShares string
	StockPrice    string
	BTCPrice      string
	BTCPerShare   string
}

// Observations converts a raw historical matrix into dated observations,
// sorted ascending by date. Rows whose required cells do not parse are
// dropped.
func Observations(values [][]any, cols ObservationColumns) ([]core.Observation, error) {
	if len(values) < 2 {
		return nil, core.ErrNoData
	}
	index := headerIndex(values[0])
	for _, col := range []string{cols.Date, cols.BTCBalance, cols.DilutedShares, cols.StockPrice} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrMissingColumn, col)
		}
	}

	out := make([]core.Observation, 0, len(values)-1)
	for _, raw := range values[1:] {
		date, ok := core.ParseCellDate(cellAt(raw, index[cols.Date]))
		if !ok {
			continue
		}
		balance, okB := core.ParseNumeric(cellAt(raw, index[cols.BTCBalance]))
		shares, okS := core.ParseNumeric(cellAt(raw, index[cols.DilutedShares]))
		price, okP := core.ParseNumeric(cellAt(raw, index[cols.StockPrice]))
		if !okB || !okS || !okP {
			continue
		}

		obs := core.Observation{
			Date:          date,
			BTCBalance:    balance,
			DilutedShares: shares,
			StockPrice:    price,
		}
		if idx, present := index[cols.BTCPrice]; present {
			obs.BTCPrice, _ = core.ParseNumeric(cellAt(raw, idx))
		}
		if idx, present := index[cols.BTCPerShare]; present {
			obs.BTCPerShare, _ = core.ParseNumeric(cellAt(raw, idx))
		}
		if obs.BTCPerShare == 0 && shares > 0 {
			obs.BTCPerShare = balance / shares
		}
		out = append(out, obs)
	}
	if len(out) == 0 {
		return nil, core.ErrNoData
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// KeyStatistics derives the dashboard cards from the latest observation.
// Output is sorted by card order.
func KeyStatistics(obs []core.Observation) []core.KeyStatistic {
	if len(obs) == 0 {
		return nil
	}
	latest := obs[len(obs)-1]

	stats := []core.KeyStatistic{
		{Label: "BTC Holdings", Order: 1,
			Value: fmt.Sprintf("%s BTC (%s)", core.FormatBTC(latest.BTCBalance), core.FormatUSD(latest.NAV()))},
		{Label: "Bitcoin NAV", Order: 2, Value: core.FormatUSD(latest.NAV())},
		{Label: "Market Cap", Order: 3, Value: core.FormatUSD(latest.MarketCap())},
		{Label: "Sats/Share", Order: 5, Value: core.FormatCount(latest.SatsPerShare())},
		{Label: "Stock Price", Order: 6, Value: core.FormatUSD(latest.StockPrice)},
	}
	if m := latest.MNAV(); m > 0 {
		stats = append(stats, core.KeyStatistic{Label: "mNAV", Order: 4, Value: core.FormatMultiple(m)})
	} else {
		stats = append(stats, core.KeyStatistic{Label: "mNAV", Order: 4, Value: core.Placeholder})
	}
	if yield := DailyBTCYield(obs, 30); yield != 0 {
		stats = append(stats, core.KeyStatistic{Label: "30d Avg Daily Yield", Order: 7,
			Value: fmt.Sprintf("%s BTC/day", core.FormatBTC(yield))})
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Order < stats[j].Order })
	return stats
}

// DailyBTCYield returns the mean day-over-day balance delta across the
// trailing window observations, or all of them when fewer are available.
func DailyBTCYield(obs []core.Observation, window int) float64 {
	if len(obs) < 2 {
		return 0
	}
	tail := obs
	if window > 0 && len(obs) > window {
		tail = obs[len(obs)-window:]
	}
	var sum float64
	for i := 1; i < len(tail); i++ {
		sum += tail[i].BTCBalance - tail[i-1].BTCBalance
	}
	return sum / float64(len(tail)-1)
}

// NAVProjection extends NAV-multiple-per-share lines beyond the last
// observation, accumulating BTC at the trailing daily yield while holding
// price and share count constant.
type NAVProjection struct {
	Level  float64            `json:"level"`
	Points []core.SeriesPoint `json:"points"`
}

// ProjectNAVPerShare builds projected NAV-multiple-per-share series for
// the configured reference levels over months*30 future days.
func ProjectNAVPerShare(obs []core.Observation, levels []float64, months int) []NAVProjection {
	if len(obs) == 0 || months <= 0 {
		return nil
	}
	last := obs[len(obs)-1]
	if last.DilutedShares <= 0 {
		return nil
	}
	yield := DailyBTCYield(obs, 30)
	days := months * 30

	out := make([]NAVProjection, 0, len(levels))
	for _, level := range levels {
		points := make([]core.SeriesPoint, 0, days)
		for d := 1; d <= days; d++ {
			balance := last.BTCBalance + yield*float64(d)
			nav := balance * last.BTCPrice
			points = append(points, core.SeriesPoint{
				Date:  last.Date.AddDate(0, 0, d),
				Value: nav * level / last.DilutedShares,
			})
		}
		out = append(out, NAVProjection{Level: level, Points: points})
	}
	return out
}
