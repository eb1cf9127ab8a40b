package process

import (
	"math"
	"testing"
	"time"

	"treasurydash/internal/core"
)

func powerLawObservations(a, exponent float64, balances []float64) []core.Observation {
	obs := make([]core.Observation, len(balances))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, b := range balances {
		obs[i] = core.Observation{
			Date:        start.AddDate(0, 0, i),
			BTCBalance:  b,
			BTCPerShare: a * math.Pow(b, exponent),
		}
	}
	return obs
}

func TestFitPowerLaw_ExactRelationship(t *testing.T) {
	// y = 1e-7 * x^0.8
	obs := powerLawObservations(1e-7, 0.8, []float64{100, 250, 500, 1200, 3000})
	fit, err := FitPowerLaw(obs)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if math.Abs(fit.Slope-0.8) > 1e-9 {
		t.Fatalf("slope: got %v, want 0.8", fit.Slope)
	}
	if math.Abs(fit.ACoeff-1e-7)/1e-7 > 1e-6 {
		t.Fatalf("a coefficient: got %v, want 1e-7", fit.ACoeff)
	}
	if math.Abs(fit.R2-1) > 1e-9 {
		t.Fatalf("r2: got %v, want 1", fit.R2)
	}
	if math.Abs(fit.Correlation-1) > 1e-9 {
		t.Fatalf("correlation: got %v, want 1", fit.Correlation)
	}
	if fit.Points != 5 || fit.Duplicates != 0 {
		t.Fatalf("points/duplicates: got %d/%d", fit.Points, fit.Duplicates)
	}
}

func TestFitPowerLaw_DeduplicatesByBalance(t *testing.T) {
	obs := powerLawObservations(1e-7, 0.8, []float64{100, 100, 100, 500, 500, 1000})
	fit, err := FitPowerLaw(obs)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if fit.Points != 3 {
		t.Fatalf("unique points: got %d, want 3", fit.Points)
	}
	if fit.Duplicates != 3 {
		t.Fatalf("duplicates: got %d, want 3", fit.Duplicates)
	}
}

func TestFitPowerLaw_FiltersNonPositive(t *testing.T) {
	obs := powerLawObservations(1e-7, 0.8, []float64{100, 500})
	obs = append(obs, core.Observation{BTCBalance: 0, BTCPerShare: 1})
	obs = append(obs, core.Observation{BTCBalance: 10, BTCPerShare: -1})
	fit, err := FitPowerLaw(obs)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if fit.Points != 2 {
		t.Fatalf("points: got %d, want 2", fit.Points)
	}
}

func TestFitPowerLaw_TooFewUnique(t *testing.T) {
	obs := powerLawObservations(1e-7, 0.8, []float64{100, 100})
	if _, err := FitPowerLaw(obs); err == nil {
		t.Fatal("single unique balance should be rejected")
	}
}

func TestCorrelationStrength(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.99, "Extremely Strong"},
		{-0.97, "Extremely Strong"},
		{0.85, "Very Strong"},
		{0.65, "Strong"},
		{0.5, "Moderate"},
		{0.3, "Weak"},
		{0.05, "Very Weak"},
	}
	for _, tt := range tests {
		if got := CorrelationStrength(tt.in); got != tt.want {
			t.Errorf("CorrelationStrength(%v): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
