//go:build wireinject
// +build wireinject

package di

import (
	"FinCast/internal/domain/repository"
	"FinCast/internal/usecase"
	"FinCast/pkg/app"
	"FinCast/pkg/config"
	"FinCast/pkg/metrics"

	"github.com/google/wire"
)

// InitializeForecastApp wires up the forecast run.
// Wire will generate the implementation of this function.
func InitializeForecastApp(cfg *config.Config) (*app.ForecastApp, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),

		// Portfolio
		ProvideHoldings,
		ProvideAssetIDs,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvideKafkaProducer,

		// Repositories
		ProvideHistoryFetcher,

		// Use cases
		ProvideAssetForecaster,
		usecase.NewAggregator,
		ProvidePortfolioForecaster,

		// Reports
		ProvideConsole,
		ProvideEmitter,

		ProvideForecastApp,
	)
	return nil, nil, nil
}

// InitializeSnapshotApp wires up the holdings snapshot.
func InitializeSnapshotApp(cfg *config.Config) (*app.SnapshotApp, error) {
	wire.Build(
		ProvideLogger,
		ProvideHoldings,
		ProvideQuoteProvider,
		ProvideHoldingsSnapshot,
		ProvideConsole,
		ProvideSnapshotApp,
	)
	return nil, nil
}
