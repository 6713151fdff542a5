package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinCast/internal/domain/models"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func sampleForecast() *models.PortfolioForecast {
	hist := make(models.Series, 40)
	for i := range hist {
		hist[i] = models.PricePoint{Date: day0.AddDate(0, 0, i), Price: 100 + float64(i)}
	}
	btc := models.AssetForecast{
		Symbol:       "BTC",
		Model:        "tree_ensemble",
		AsOf:         day0.AddDate(0, 0, 39),
		Quantity:     2,
		LastPrice:    139,
		CurrentValue: 278,
		Points:       []models.ForecastPoint{{Date: day0.AddDate(0, 0, 40), Price: 140.5, Value: 281}},
		History:      hist,
	}
	return &models.PortfolioForecast{
		RunID:       "run-1",
		Model:       "tree_ensemble",
		Currency:    "usd",
		Horizon:     1,
		GeneratedAt: day0.AddDate(0, 0, 40),
		Points:      []models.PortfolioPoint{{Date: day0.AddDate(0, 0, 40), TotalValue: 281, Assets: []string{"BTC"}}},
		Summary: models.PortfolioSummary{
			CurrentTotal: 278, PredictedTotal: 281, Delta: 3, DeltaPct: 100 * 3.0 / 278, Included: []string{"BTC"},
		},
		Results: []models.AssetResult{
			models.Ok(btc),
			models.Failed("SOL", 10, models.ErrInsufficientHistory),
		},
	}
}

func TestForecastMarkdown_ListsFailures(t *testing.T) {
	out := ForecastMarkdown(sampleForecast(), 10)

	assert.Contains(t, out, "BTC")
	assert.Contains(t, out, "140.50")
	assert.Contains(t, out, "failed: InsufficientHistory")
	assert.Contains(t, out, "SOL excluded (InsufficientHistory)")
	assert.Contains(t, out, "+3.00 (+1.08%)")
	assert.NotContains(t, out, "NaN")
}

func TestProjectionIndexes(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, projectionIndexes(3, 10))
	assert.Equal(t, []int{0, 1, -1, 27, 28, 29}, projectionIndexes(30, 5))
}

func TestConsole_RawStyle(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, WithStyle("raw"))

	require.NoError(t, c.Emit(context.Background(), sampleForecast()))
	assert.Equal(t, ForecastMarkdown(sampleForecast(), defaultProjectionRows), buf.String())
}

func TestConsole_Rendered(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, WithStyle("notty"), WithWordWrap(160))

	require.NoError(t, c.Emit(context.Background(), sampleForecast()))
	assert.Contains(t, buf.String(), "Portfolio forecast")
}

func TestSnapshotMarkdown(t *testing.T) {
	out := SnapshotMarkdown(&models.Snapshot{
		Currency: "USD",
		Total:    1800,
		Rows: []models.SnapshotRow{
			{Symbol: "XRP", Amount: 2400, Price: 0.5, Value: 1200, PercentChange24h: -3, AllocationPct: 66.6667},
			{Symbol: "BTC", Amount: 0.01, Price: 60000, Value: 600, PercentChange24h: 1.25, AllocationPct: 33.3333},
		},
	})
	assert.Contains(t, out, "0.500000")
	assert.Contains(t, out, "66.67%")
	assert.Contains(t, out, "Total: 1800.00 USD")
	assert.Less(t, strings.Index(out, "XRP"), strings.Index(out, "BTC"))
}

func TestWriteAssetsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAssetsCSV(&buf, sampleForecast()))

	var rows []*AssetRow
	require.NoError(t, gocsv.UnmarshalString(buf.String(), &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, AssetRow{
		Symbol:         "BTC",
		Status:         "ok",
		LastDate:       "2024-04-09",
		Amount:         "2",
		LastPrice:      "139",
		PredictedPrice: "140.5",
		CurrentValue:   "278",
		PredictedValue: "281",
		ExpChange:      "1.5",
		ExpChangePct:   "1.0791",
	}, *rows[0])
	assert.Equal(t, AssetRow{Symbol: "SOL", Status: "failed", ErrorKind: "InsufficientHistory", Amount: "10"}, *rows[1])

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, "symbol,status,error_kind,last_date,amount,last_price,predicted_price,current_value,predicted_value,exp_change,exp_change_pct", header)
}

func TestCSV_EmitWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	assets := filepath.Join(dir, "assets.csv")
	series := filepath.Join(dir, "series.csv")

	require.NoError(t, NewCSV(assets, series).Emit(context.Background(), sampleForecast()))

	b, err := os.ReadFile(series)
	require.NoError(t, err)
	assert.Equal(t, "date,total_value,assets\n2024-04-10,281,BTC\n", string(b))
	_, err = os.Stat(assets)
	assert.NoError(t, err)
}

func TestCharts_Emit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	c := NewCharts(dir)

	require.NoError(t, c.Emit(context.Background(), sampleForecast()))

	for _, p := range []string{c.AssetChartPath("BTC"), c.PortfolioChartPath()} {
		st, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Positive(t, st.Size())
	}
	_, err := os.Stat(c.AssetChartPath("SOL"))
	assert.True(t, os.IsNotExist(err))
}

type emitterFunc func(context.Context, *models.PortfolioForecast) error

func (f emitterFunc) Emit(ctx context.Context, pf *models.PortfolioForecast) error { return f(ctx, pf) }

func TestMulti_RunsAllAndJoinsErrors(t *testing.T) {
	errA := errors.New("a down")
	errB := errors.New("b down")
	calls := 0
	m := NewMulti(
		emitterFunc(func(context.Context, *models.PortfolioForecast) error { calls++; return errA }),
		nil,
		emitterFunc(func(context.Context, *models.PortfolioForecast) error { calls++; return nil }),
		emitterFunc(func(context.Context, *models.PortfolioForecast) error { calls++; return errB }),
	)

	err := m.Emit(context.Background(), sampleForecast())
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, m, 3)
}
