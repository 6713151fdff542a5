package usecase

import (
	"context"
	"fmt"
	"math"

	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"
	applogger "FinCast/pkg/logger"
)

// AssetForecaster runs feature building, fit and predict for one asset.
type AssetForecaster struct {
	factory    domsvc.ModelFactory
	builder    domsvc.FeatureBuilder
	minHistory int
	l          *applogger.Logger
}

func NewAssetForecaster(factory domsvc.ModelFactory, builder domsvc.FeatureBuilder, minHistory int, l *applogger.Logger) *AssetForecaster {
	if l == nil {
		l = applogger.Nop()
	}
	return &AssetForecaster{factory: factory, builder: builder, minHistory: max(minHistory, 1), l: l}
}

// Model names the strategy in use.
func (f *AssetForecaster) Model() string { return f.factory.Name() }

// Forecast returns horizon points for symbol with quantity-valued fields attached.
// Errors carry their kind and are never swallowed.
func (f *AssetForecaster) Forecast(ctx context.Context, symbol string, series models.Series, quantity float64, horizon int) (models.AssetForecast, error) {
	var out models.AssetForecast

	last, ok := series.Last()
	if !ok {
		return out, fmt.Errorf("%s: %w: empty series", symbol, models.ErrDataUnavailable)
	}
	if err := series.Validate(); err != nil {
		return out, fmt.Errorf("%s: %w", symbol, err)
	}
	if len(series) < f.minHistory {
		return out, fmt.Errorf("%s: %w: %d days available, need %d", symbol, models.ErrInsufficientHistory, len(series), f.minHistory)
	}

	model := f.factory.New()
	ts := domsvc.TrainingSet{Symbol: symbol, Series: series}
	if model.RequiresFeatures() {
		ts.Rows = f.builder.Build(series)
		if len(ts.Rows) == 0 {
			return out, fmt.Errorf("%s: %w: no feature rows after a %d-day warm-up", symbol, models.ErrInsufficientHistory, f.builder.WarmUp())
		}
		next, ok := f.builder.Next(series)
		if !ok {
			return out, fmt.Errorf("%s: %w: no predictor row for the next day", symbol, models.ErrInsufficientHistory)
		}
		ts.Next = &next
	}

	if err := model.Fit(ctx, ts); err != nil {
		return out, fmt.Errorf("%s: fit %s: %w", symbol, model.Name(), err)
	}
	points, err := model.Predict(ctx, horizon)
	if err != nil {
		return out, fmt.Errorf("%s: predict %s: %w", symbol, model.Name(), err)
	}
	if err := checkPoints(points, last); err != nil {
		return out, fmt.Errorf("%s: %w: %v", symbol, models.ErrModelFit, err)
	}

	for i := range points {
		points[i].Value = quantity * points[i].Price
	}
	out = models.AssetForecast{
		Symbol:       symbol,
		Model:        model.Name(),
		AsOf:         last.Date,
		Quantity:     quantity,
		LastPrice:    last.Price,
		CurrentValue: quantity * last.Price,
		Points:       points,
		History:      series,
	}
	f.l.Debug("asset forecast ready",
		applogger.String("symbol", symbol),
		applogger.String("model", model.Name()),
		applogger.Int("points", len(points)),
		applogger.Float64("last_price", last.Price),
		applogger.Float64("predicted_price", points[len(points)-1].Price),
	)
	return out, nil
}

// checkPoints enforces finite prices on strictly increasing dates after the training window.
func checkPoints(points []models.ForecastPoint, last models.PricePoint) error {
	if len(points) == 0 {
		return fmt.Errorf("model returned no points")
	}
	prev := last.Date
	for _, p := range points {
		if !p.Date.After(prev) {
			return fmt.Errorf("forecast date %s does not follow %s", p.Date.Format("2006-01-02"), prev.Format("2006-01-02"))
		}
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			return fmt.Errorf("non-finite forecast on %s", p.Date.Format("2006-01-02"))
		}
		prev = p.Date
	}
	return nil
}
