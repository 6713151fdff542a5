package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"FinCast/internal/di"
	"FinCast/internal/domain/models"
	"FinCast/pkg/config"
)

type rootOptions struct {
	configPath string
}

type forecastOptions struct {
	model     string
	horizon   int
	lookback  int
	csv       string
	seriesCSV string
	charts    string
	quiet     bool
}

func newRootCmd() *cobra.Command {
	ro := &rootOptions{}
	root := &cobra.Command{
		Use:           "fincast",
		Short:         "Forecast the value of a crypto portfolio",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&ro.configPath, "config", "config/config.yaml", "config file path")

	root.AddCommand(newForecastCmd(ro), newSnapshotCmd(ro))
	return root
}

func newForecastCmd(ro *rootOptions) *cobra.Command {
	fo := &forecastOptions{}
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast every holding and aggregate the portfolio projection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(ro.configPath)
			if err != nil {
				return err
			}
			if err := fo.apply(cmd, cfg); err != nil {
				return err
			}

			app, cleanup, err := di.InitializeForecastApp(cfg)
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			defer cleanup()

			_, err = app.Run(cmd.Context())
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&fo.model, "model", "", "forecast model: tree_ensemble or seasonal")
	f.IntVar(&fo.horizon, "horizon", 0, "days to forecast")
	f.IntVar(&fo.lookback, "lookback", 0, "days of history to fetch")
	f.StringVar(&fo.csv, "csv", "", "write the per-asset table to this CSV file")
	f.StringVar(&fo.seriesCSV, "series-csv", "", "write the portfolio projection to this CSV file")
	f.StringVar(&fo.charts, "charts", "", "write PNG charts into this directory")
	f.BoolVar(&fo.quiet, "quiet", false, "skip the terminal report")
	return cmd
}

// apply overrides config with the flags that were set and validates again.
func (fo *forecastOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("model") {
		cfg.Forecast.Model = fo.model
	}
	if f.Changed("horizon") {
		cfg.Forecast.Horizon = fo.horizon
	}
	if f.Changed("lookback") {
		cfg.Forecast.LookbackDays = fo.lookback
	}
	if f.Changed("csv") {
		cfg.Report.CSVPath = fo.csv
	}
	if f.Changed("series-csv") {
		cfg.Report.SeriesCSVPath = fo.seriesCSV
	}
	if f.Changed("charts") {
		cfg.Report.ChartDir = fo.charts
	}
	if f.Changed("quiet") {
		cfg.Report.Quiet = fo.quiet
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", models.ErrConfiguration, err)
	}
	return nil
}

func newSnapshotCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Value the holdings at the latest CoinMarketCap quotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(ro.configPath)
			if err != nil {
				return err
			}
			app, err := di.InitializeSnapshotApp(cfg)
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			_, err = app.Run(cmd.Context())
			return err
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrConfiguration, err)
	}
	return cfg, nil
}
