package usecase

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinCast/internal/domain/models"
)

func newRunner(f *fakeFetcher, af *AssetForecaster, m *fakeMetrics, horizon int) *PortfolioForecaster {
	p := NewPortfolioForecaster(f, af, NewAggregator(), m, nil, RunOptions{
		Currency:     "usd",
		LookbackDays: 120,
		Horizon:      horizon,
	})
	p.newID = func() string { return "run-test" }
	p.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func mustHoldings(t *testing.T, m map[string]float64) models.Holdings {
	t.Helper()
	h, err := models.NewHoldings(m)
	require.NoError(t, err)
	return h
}

func TestRun_ShortHistoryIsRecordedNotFatal(t *testing.T) {
	f := &fakeFetcher{series: map[string]models.Series{"bitcoin": flat(20, 50000)}}
	m := &fakeMetrics{}

	pf, err := newRunner(f, treeForecaster(), m, 1).Run(context.Background(),
		mustHoldings(t, map[string]float64{"BTC": 1}), map[string]string{"BTC": "bitcoin"})
	require.NoError(t, err)

	require.Len(t, pf.Results, 1)
	btc := pf.Results[0]
	assert.False(t, btc.OK())
	assert.Equal(t, models.KindInsufficientHistory, btc.Kind)
	assert.Empty(t, pf.Points)
	assert.Equal(t, 0.0, pf.Summary.CurrentTotal)
	assert.Equal(t, 0.0, pf.Summary.DeltaPct)
	assert.Equal(t, 1, m.results["failed/InsufficientHistory"])
	assert.Equal(t, "run-test", pf.RunID)
}

func TestRun_TwoAssetTotals(t *testing.T) {
	f := &fakeFetcher{series: map[string]models.Series{
		"bitcoin":  seriesFrom(day0, 150, func(i int) float64 { return 40000 + 100*float64(i%7) }),
		"ethereum": seriesFrom(day0, 150, func(i int) float64 { return 2000 + 5*float64(i%5) }),
	}}

	pf, err := newRunner(f, treeForecaster(), &fakeMetrics{}, 1).Run(context.Background(),
		mustHoldings(t, map[string]float64{"BTC": 2, "ETH": 3}),
		map[string]string{"BTC": "bitcoin", "ETH": "ethereum"})
	require.NoError(t, err)
	require.Len(t, pf.Results, 2)

	btc, eth := pf.Results[0], pf.Results[1]
	require.True(t, btc.OK())
	require.True(t, eth.OK())
	assert.Equal(t, "BTC", btc.Symbol)

	lastBTC := f.series["bitcoin"][149].Price
	lastETH := f.series["ethereum"][149].Price
	predBTC := btc.Forecast.Points[0].Price
	predETH := eth.Forecast.Points[0].Price

	current := 2*lastBTC + 3*lastETH
	predicted := 2*predBTC + 3*predETH
	assert.InDelta(t, current, pf.Summary.CurrentTotal, 1e-6)
	assert.InDelta(t, predicted, pf.Summary.PredictedTotal, 1e-6)
	assert.InDelta(t, 100*(predicted-current)/current, pf.Summary.DeltaPct, 1e-9)
	assert.Equal(t, []string{"BTC", "ETH"}, pf.Summary.Included)

	require.Len(t, pf.Points, 1)
	assert.Equal(t, day0.AddDate(0, 0, 150), pf.Points[0].Date)
	assert.InDelta(t, predicted, pf.Points[0].TotalValue, 1e-6)
}

func TestRun_FailuresExcludedFromTotals(t *testing.T) {
	f := &fakeFetcher{
		series: map[string]models.Series{
			"a": flat(60, 10),
			"b": flat(60, 20),
		},
		errs: map[string]error{
			"c": fmt.Errorf("provider: %w", models.ErrDataUnavailable),
		},
		panics: map[string]bool{"d": true},
	}
	ids := map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"}

	pf, err := newRunner(f, treeForecaster(), &fakeMetrics{}, 1).Run(context.Background(),
		mustHoldings(t, map[string]float64{"A": 1, "B": 2, "C": 3, "D": 4}), ids)
	require.NoError(t, err)

	require.Len(t, pf.Results, 4)
	assert.Equal(t, models.KindDataUnavailable, pf.Results[2].Kind)
	assert.Equal(t, models.KindModelFit, pf.Results[3].Kind)
	assert.Contains(t, pf.Results[3].Message, "panic")

	assert.Equal(t, 1*10.0+2*20.0, pf.Summary.CurrentTotal)
	assert.Equal(t, 1*10.0+2*20.0, pf.Summary.PredictedTotal)
	assert.False(t, math.IsNaN(pf.Summary.DeltaPct))
	require.Len(t, pf.Points, 1)
	assert.Equal(t, []string{"A", "B"}, pf.Points[0].Assets)
	assert.Len(t, pf.Failures(), 2)
}

func TestRun_UnknownSymbolFailsBeforeFetch(t *testing.T) {
	f := &fakeFetcher{}
	_, err := newRunner(f, treeForecaster(), &fakeMetrics{}, 1).Run(context.Background(),
		mustHoldings(t, map[string]float64{"BTC": 1, "DOGE": 5}), map[string]string{"BTC": "bitcoin"})
	require.Error(t, err)
	assert.Equal(t, models.KindUnknownSymbol, models.KindOf(err))
	assert.Contains(t, err.Error(), "DOGE")
	assert.Empty(t, f.calls)
}

func TestRun_EmptyHoldingsIsConfigurationError(t *testing.T) {
	_, err := newRunner(&fakeFetcher{}, treeForecaster(), &fakeMetrics{}, 1).Run(context.Background(), nil, nil)
	assert.Equal(t, models.KindConfiguration, models.KindOf(err))
}

func TestRun_SeasonalMultiStepMergesByDate(t *testing.T) {
	f := &fakeFetcher{series: map[string]models.Series{
		"a": seriesFrom(day0, 90, func(i int) float64 { return 100 + float64(i) }),
		// ends one day later than "a"
		"b": seriesFrom(day0.AddDate(0, 0, 1), 90, func(i int) float64 { return 50 + 0.5*float64(i) }),
	}}
	pf, err := newRunner(f, seasonalForecaster(), &fakeMetrics{}, 5).Run(context.Background(),
		mustHoldings(t, map[string]float64{"A": 1, "B": 2}), map[string]string{"A": "a", "B": "b"})
	require.NoError(t, err)
	assert.Equal(t, 5, pf.Horizon)

	// union of two 5-day windows offset by one day
	require.Len(t, pf.Points, 6)
	assert.Equal(t, []string{"A"}, pf.Points[0].Assets)
	assert.Equal(t, []string{"A", "B"}, pf.Points[1].Assets)
	assert.Equal(t, []string{"B"}, pf.Points[5].Assets)
	for i := 1; i < len(pf.Points); i++ {
		assert.True(t, pf.Points[i].Date.After(pf.Points[i-1].Date))
	}
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeFetcher{series: map[string]models.Series{"a": flat(60, 10)}}
	_, err := newRunner(f, treeForecaster(), &fakeMetrics{}, 1).Run(ctx,
		mustHoldings(t, map[string]float64{"A": 1}), map[string]string{"A": "a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkerCount(t *testing.T) {
	p := &PortfolioForecaster{}
	assert.Equal(t, 3, p.workerCount(3))
	assert.Equal(t, MaxWorkers, p.workerCount(25))

	p.opts.Workers = 2
	assert.Equal(t, 2, p.workerCount(5))
	assert.Equal(t, 1, p.workerCount(1))
}
