package repository

import (
	"context"

	"FinCast/internal/domain/models"
)

// HistoryFetcher returns a normalised daily series for one provider asset id.
type HistoryFetcher interface {
	Fetch(ctx context.Context, assetID, currency string, windowDays int) (models.Series, error)
}

// QuoteProvider returns latest quotes keyed by symbol.
type QuoteProvider interface {
	Quotes(ctx context.Context, symbols []string, currency string) (map[string]models.Quote, error)
}

// Emitter consumes a finished portfolio forecast.
type Emitter interface {
	Emit(ctx context.Context, pf *models.PortfolioForecast) error
}

// ForecastStore persists forecast points.
type ForecastStore interface {
	Init(ctx context.Context) error
	StoreForecast(ctx context.Context, pf *models.PortfolioForecast) error
}

type Metrics interface {
	RecordFetchLatency(symbol string, seconds float64)
	RecordAssetResult(status, kind string)
	RecordPrediction(symbol, model string, price float64)
	RecordPortfolio(current, predicted float64)
	RecordRunDuration(seconds float64)
}

// NopMetrics discards everything.
type NopMetrics struct{}


func (NopMetrics) RecordFetchLatency(string, float64) {}
func (NopMetrics) RecordAssetResult(string, string) {}
func (NopMetrics) RecordPrediction(string, string, float64) {}
func (NopMetrics) RecordPortfolio(float64, float64) {}
func (NopMetrics) RecordRunDuration(float64) {}
