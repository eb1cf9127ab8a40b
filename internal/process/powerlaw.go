package process

import (
	"math"

	"treasurydash/internal/core"
)

// PowerLawFit describes the log10-log10 relationship between a company's
// Bitcoin holdings and its BTC per diluted share: y = a * x^slope.
type PowerLawFit struct {
	Slope       float64 `json:"slope"`
	Intercept   float64 `json:"intercept"`
	ACoeff      float64 `json:"a_coeff"`
	R2          float64 `json:"r2"`
	Correlation float64 `json:"correlation"`
	Points      int     `json:"points"`
	Duplicates  int     `json:"duplicates"`
}

// FitPowerLaw filters non-positive observations, deduplicates by BTC
// balance (keeping the first occurrence), and fits a linear regression on
// the log10-transformed pairs.
func FitPowerLaw(obs []core.Observation) (PowerLawFit, error) {
	valid := make([]core.Observation, 0, len(obs))
	for _, o := range obs {
		if o.BTCBalance > 0 && o.BTCPerShare > 0 {
			valid = append(valid, o)
		}
	}

	seen := make(map[float64]bool, len(valid))
	unique := make([]core.Observation, 0, len(valid))
	for _, o := range valid {
		if seen[o.BTCBalance] {
			continue
		}
		seen[o.BTCBalance] = true
		unique = append(unique, o)
	}
	if len(unique) < 2 {
		return PowerLawFit{}, errTooFewPoints
	}

	xs := make([]float64, len(unique))
	ys := make([]float64, len(unique))
	for i, o := range unique {
		xs[i] = math.Log10(o.BTCBalance)
		ys[i] = math.Log10(o.BTCPerShare)
	}

	slope, intercept := leastSquares(xs, ys)
	return PowerLawFit{
		Slope:       slope,
		Intercept:   intercept,
		ACoeff:      math.Pow(10, intercept),
		R2:          rSquared(xs, ys, slope, intercept),
		Correlation: pearson(xs, ys),
		Points:      len(unique),
		Duplicates:  len(valid) - len(unique),
	}, nil
}

// CorrelationStrength labels a correlation coefficient for display.
func CorrelationStrength(correlation float64) string {
	abs := math.Abs(correlation)
	switch {
	case abs >= 0.95:
		return "Extremely Strong"
	case abs >= 0.8:
		return "Very Strong"
	case abs >= 0.6:
		return "Strong"
	case abs >= 0.4:
		return "Moderate"
	case abs >= 0.2:
		return "Weak"
	default:
		return "Very Weak"
	}
}

// pearson returns the Pearson correlation coefficient of two equal-length
// samples.
func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
