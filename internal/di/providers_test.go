package di

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinCast/internal/domain/models"
	"FinCast/internal/report"
	internalrepo "FinCast/internal/repository"
	"FinCast/internal/service/coingecko"
	"FinCast/pkg/config"
)

func testConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(`
portfolio:
  holdings:
    btc: 1.5
    ada: 20
  assets:
    ADA: cardano-custom
` + extra))
	require.NoError(t, err)
	return cfg
}

func TestConfigError(t *testing.T) {
	_, err := config.Parse([]byte("forecast:\n  model: prophet\n"))
	require.Error(t, err)

	wrapped := configError(err)
	assert.ErrorIs(t, wrapped, models.ErrConfiguration)
	assert.ErrorIs(t, wrapped, config.ErrInvalid)
	assert.True(t, models.IsFatal(wrapped))
	assert.Nil(t, configError(nil))
}

func TestProvideAssetIDs(t *testing.T) {
	cfg := testConfig(t, "")
	h, err := ProvideHoldings(cfg)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"ADA": "cardano-custom", "BTC": "bitcoin"}, ProvideAssetIDs(cfg, h))

	cfg.History.Source = config.SourceClickHouse
	assert.Equal(t, map[string]string{"ADA": "cardano-custom", "BTC": "BTC"}, ProvideAssetIDs(cfg, h))
}

func TestProvideHistoryFetcher(t *testing.T) {
	cfg := testConfig(t, "")
	l, err := ProvideLogger(cfg)
	require.NoError(t, err)

	f, err := ProvideHistoryFetcher(cfg, nil, nil, l)
	require.NoError(t, err)
	assert.IsType(t, &coingecko.Client{}, f)

	cfg.Cache.Enabled = true
	c, cleanup, err := ProvideCache(cfg)
	require.NoError(t, err)
	defer cleanup()
	f, err = ProvideHistoryFetcher(cfg, nil, c, l)
	require.NoError(t, err)
	assert.IsType(t, &internalrepo.CachedHistory{}, f)

	cfg.History.Source = config.SourceClickHouse
	_, err = ProvideHistoryFetcher(cfg, nil, nil, l)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestProvideEmitter(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, "report:\n  quiet: true\n  csv_path: "+filepath.Join(dir, "a.csv")+"\n  chart_dir: "+filepath.Join(dir, "charts")+"\n")

	e, err := ProvideEmitter(cfg, ProvideConsole(cfg), nil, nil)
	require.NoError(t, err)
	multi, ok := e.(report.Multi)
	require.True(t, ok)
	require.Len(t, multi, 2)
	assert.IsType(t, &report.CSV{}, multi[0])
	assert.IsType(t, &report.Charts{}, multi[1])
}

func TestProvideAssetForecaster_Seasonal(t *testing.T) {
	cfg := testConfig(t, "forecast:\n  model: seasonal\n  horizon: 30\n")
	af, err := ProvideAssetForecaster(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "seasonal", af.Model())
}

func TestInitializeSnapshotApp_MissingKey(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.CoinMarketCap.APIKey = ""

	_, err := InitializeSnapshotApp(cfg)
	assert.Equal(t, models.KindConfiguration, models.KindOf(err))
}

func TestInitializeForecastApp_UnknownModelIsConfiguration(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Forecast.Model = "arima"

	_, _, err := InitializeForecastApp(cfg)
	assert.Equal(t, models.KindConfiguration, models.KindOf(err))
}
