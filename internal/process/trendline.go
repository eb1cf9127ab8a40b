package process

import (
	"errors"
	"math"
	"time"

	"treasurydash/internal/core"
)

// TrendKind selects the curve family fitted to a series.
type TrendKind string

const (
	TrendLinear      TrendKind = "linear"
	TrendExponential TrendKind = "exponential"
)

// TrendFit is a fitted trendline over a dated series. X is measured in
// days since the first point.
type TrendFit struct {
	Kind      TrendKind `json:"kind"`
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	R2        float64   `json:"r2"`

	start time.Time
	lastX float64
}

var (
	errTooFewPoints    = errors.New("trendline needs at least two points")
	errNonPositiveData = errors.New("exponential fit needs positive values")
)

// FitTrend fits the requested curve by least squares. The exponential fit
// is a linear fit on ln(y) and requires strictly positive values.
func FitTrend(points []core.SeriesPoint, kind TrendKind) (TrendFit, error) {
	if len(points) < 2 {
		return TrendFit{}, errTooFewPoints
	}
	start := points[0].Date

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Date.Sub(start).Hours() / 24
		y := p.Value
		if kind == TrendExponential {
			if y <= 0 {
				return TrendFit{}, errNonPositiveData
			}
			y = math.Log(y)
		}
		ys[i] = y
	}

	slope, intercept := leastSquares(xs, ys)
	return TrendFit{
		Kind:      kind,
		Slope:     slope,
		Intercept: intercept,
		R2:        rSquared(xs, ys, slope, intercept),
		start:     start,
		lastX:     xs[len(xs)-1],
	}, nil
}

// Eval returns the fitted value at x days since the series start.
func (f TrendFit) Eval(x float64) float64 {
	y := f.Slope*x + f.Intercept
	if f.Kind == TrendExponential {
		return math.Exp(y)
	}
	return y
}

// Project continues the fitted curve for days daily steps past the last
// observed point. For monotonic input the projection continues in the
// fitted direction.
func (f TrendFit) Project(days int) []core.SeriesPoint {
	if days <= 0 {
		return nil
	}
	out := make([]core.SeriesPoint, 0, days)
	for d := 1; d <= days; d++ {
		x := f.lastX + float64(d)
		out = append(out, core.SeriesPoint{
			Date:  f.start.AddDate(0, 0, int(math.Round(x))),
			Value: f.Eval(x),
		})
	}
	return out
}

// leastSquares returns the ordinary least-squares slope and intercept.
func leastSquares(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// rSquared is the coefficient of determination of the fitted line.
func rSquared(xs, ys []float64, slope, intercept float64) float64 {
	var mean float64
	for _, y := range ys {
		mean += y
	}
	mean /= float64(len(ys))

	var ssRes, ssTot float64
	for i := range ys {
		pred := slope*xs[i] + intercept
		ssRes += (ys[i] - pred) * (ys[i] - pred)
		ssTot += (ys[i] - mean) * (ys[i] - mean)
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}
