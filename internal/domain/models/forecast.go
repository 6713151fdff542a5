package models

import "time"

// FeatureRow is one supervised-learning row. Target is the price on Date.
type FeatureRow struct {
	Date     time.Time
	Target   float64
	Features []float64
}

// ForecastPoint is a predicted price and the value of the held quantity at it.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
	Value float64   `json:"value"`
}

// AssetForecast is the output of one successful per-asset unit.
type AssetForecast struct {
	Symbol       string          `json:"symbol"`
	Model        string          `json:"model"`
	AsOf         time.Time       `json:"as_of"`
	Quantity     float64         `json:"quantity"`
	LastPrice    float64         `json:"last_price"`
	CurrentValue float64         `json:"current_value"`
	Points       []ForecastPoint `json:"points"`
	// History is the observed series, kept for charts.
	History Series `json:"-"`
}

// Final returns the last forecast point.
func (f AssetForecast) Final() (ForecastPoint, bool) {
	if len(f.Points) == 0 {
		return ForecastPoint{}, false
	}
	return f.Points[len(f.Points)-1], true
}

// ExpectedChange is the final predicted price minus the last observed price.
func (f AssetForecast) ExpectedChange() float64 {
	p, ok := f.Final()
	if !ok {
		return 0
	}
	return p.Price - f.LastPrice
}

// ExpectedChangePct is ExpectedChange relative to the last price, 0 when it is 0.
func (f AssetForecast) ExpectedChangePct() float64 {
	if f.LastPrice == 0 {
		return 0
	}
	return 100 * f.ExpectedChange() / f.LastPrice
}
