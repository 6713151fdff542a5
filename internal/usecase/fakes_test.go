package usecase

import (
	"context"
	"sync"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/internal/services/features"
	"FinCast/internal/services/forecast"
)

type fakeFetcher struct {
	mu     sync.Mutex
	series map[string]models.Series
	errs   map[string]error
	panics map[string]bool
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, assetID, _ string, _ int) (models.Series, error) {
	f.mu.Lock()
	f.calls = append(f.calls, assetID)
	f.mu.Unlock()
	if f.panics[assetID] {
		panic("provider exploded")
	}
	if err := f.errs[assetID]; err != nil {
		return nil, err
	}
	return f.series[assetID], nil
}

type fakeMetrics struct {
	mu      sync.Mutex
	results map[string]int
}

func (m *fakeMetrics) RecordFetchLatency(string, float64) {}
func (m *fakeMetrics) RecordPrediction(string, string, float64) {}
func (m *fakeMetrics) RecordPortfolio(float64, float64) {}
func (m *fakeMetrics) RecordRunDuration(float64) {}
func (m *fakeMetrics) RecordAssetResult(status, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = map[string]int{}
	}
	m.results[status+"/"+kind]++
}

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seriesFrom(start time.Time, n int, price func(i int) float64) models.Series {
	s := make(models.Series, n)
	for i := range s {
		s[i] = models.PricePoint{Date: start.AddDate(0, 0, i), Price: price(i)}
	}
	return s
}

func flat(n int, price float64) models.Series {
	return seriesFrom(day0, n, func(int) float64 { return price })
}

func treeForecaster() *AssetForecaster {
	cfg := forecast.DefaultTreeConfig()
	cfg.Trees = 25
	return NewAssetForecaster(forecast.NewTreeFactory(cfg), features.NewBuilder(nil, nil), 30, nil)
}

func seasonalForecaster() *AssetForecaster {
	return NewAssetForecaster(forecast.NewSeasonalFactory(forecast.DefaultSeasonalConfig()), features.NewBuilder(nil, nil), 30, nil)
}
