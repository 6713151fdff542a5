package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinCast/internal/domain/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestForecastFlagsOverrideConfig(t *testing.T) {
	path := writeConfig(t, "portfolio:\n  holdings:\n    BTC: 1\n")
	cfg, err := loadConfig(path)
	require.NoError(t, err)

	cmd := newForecastCmd(&rootOptions{configPath: path})
	require.NoError(t, cmd.ParseFlags([]string{"--model", "seasonal", "--horizon", "30", "--csv", "out.csv"}))

	fo := &forecastOptions{model: "seasonal", horizon: 30, csv: "out.csv"}
	require.NoError(t, fo.apply(cmd, cfg))
	assert.Equal(t, "seasonal", cfg.Forecast.Model)
	assert.Equal(t, 30, cfg.Forecast.Horizon)
	assert.Equal(t, "out.csv", cfg.Report.CSVPath)
	assert.Equal(t, 120, cfg.Forecast.LookbackDays)
}

func TestForecastFlagsRevalidate(t *testing.T) {
	path := writeConfig(t, "portfolio:\n  holdings:\n    BTC: 1\n")
	cfg, err := loadConfig(path)
	require.NoError(t, err)

	cmd := newForecastCmd(&rootOptions{configPath: path})
	require.NoError(t, cmd.ParseFlags([]string{"--horizon", "7"}))

	err = (&forecastOptions{horizon: 7}).apply(cmd, cfg)
	assert.Equal(t, models.KindConfiguration, models.KindOf(err))
}

func TestMissingConfigIsConfigurationError(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"forecast", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	err := root.Execute()
	require.Error(t, err)
	assert.True(t, models.IsFatal(err))
}
