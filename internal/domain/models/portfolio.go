package models

import (
	"time"
)

// AssetResult is either a forecast or a recorded failure for one symbol.
type AssetResult struct {
	Symbol   string         `json:"symbol"`
	Quantity float64        `json:"quantity"`
	Forecast *AssetForecast `json:"forecast,omitempty"`
	Kind     ErrorKind      `json:"error_kind,omitempty"`
	Message  string         `json:"error,omitempty"`
}

// Ok wraps a successful forecast.
func Ok(f AssetForecast) AssetResult {
	return AssetResult{Symbol: f.Symbol, Quantity: f.Quantity, Forecast: &f}
}

// Failed records a per-asset failure.
func Failed(symbol string, quantity float64, err error) AssetResult {
	r := AssetResult{Symbol: symbol, Quantity: quantity, Kind: KindOf(err)}
	if err != nil {
		r.Message = err.Error()
	}
	return r
}

// OK reports whether the result carries a forecast.
func (r AssetResult) OK() bool {
	return r.Forecast != nil
}

// PortfolioPoint is the summed value on one date.
type PortfolioPoint struct {
	Date       time.Time `json:"date"`
	TotalValue float64   `json:"total_value"`
	// Assets lists the symbols contributing to TotalValue.
	Assets []string `json:"assets"`
}

// PortfolioSummary compares current and predicted totals over the included assets.
type PortfolioSummary struct {
	CurrentTotal   float64  `json:"current_total"`
	PredictedTotal float64  `json:"predicted_total"`
	Delta          float64  `json:"delta"`
	DeltaPct       float64  `json:"delta_pct"`
	Included       []string `json:"included"`
}

// PortfolioForecast is the aggregated output of one run.
type PortfolioForecast struct {
	RunID       string           `json:"run_id"`
	Model       string           `json:"model"`
	Currency    string           `json:"currency"`
	Horizon     int              `json:"horizon"`
	GeneratedAt time.Time        `json:"generated_at"`
	Points      []PortfolioPoint `json:"points"`
	Summary     PortfolioSummary `json:"summary"`
	Results     []AssetResult    `json:"results"`
}

// Failures returns the failed results.
func (p *PortfolioForecast) Failures() []AssetResult {
	var out []AssetResult
	for _, r := range p.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
