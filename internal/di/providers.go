package di

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/repository"
	"FinCast/internal/report"
	internalrepo "FinCast/internal/repository"
	"FinCast/internal/service/coingecko"
	"FinCast/internal/service/coinmarketcap"
	"FinCast/internal/services/features"
	"FinCast/internal/services/forecast"
	"FinCast/internal/usecase"
	"FinCast/pkg/app"
	"FinCast/pkg/cache"
	pkgch "FinCast/pkg/clickhouse"
	"FinCast/pkg/config"
	pkgkafka "FinCast/pkg/kafka"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/metrics"
)

// configError tags config failures so the CLI can classify them.
func configError(err error) error {
	if err == nil || errors.Is(err, models.ErrConfiguration) {
		return err
	}
	if errors.Is(err, config.ErrInvalid) {
		return fmt.Errorf("%w: %w", models.ErrConfiguration, err)
	}
	return err
}

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: logger: %v", models.ErrConfiguration, err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideHoldings validates the configured holdings.
func ProvideHoldings(cfg *config.Config) (models.Holdings, error) {
	return models.NewHoldings(cfg.Portfolio.Holdings)
}

// ProvideAssetIDs resolves history provider ids for every holding.
func ProvideAssetIDs(cfg *config.Config, holdings models.Holdings) map[string]string {
	if cfg.History.Source == config.SourceClickHouse {
		// ClickHouse candles are keyed by the ticker itself.
		ids := make(map[string]string, len(holdings))
		for _, h := range holdings {
			ids[h.Symbol] = h.Symbol
			if id, ok := cfg.Portfolio.Assets[h.Symbol]; ok && id != "" {
				ids[h.Symbol] = id
			}
		}
		return ids
	}
	return coingecko.ResolveIDs(holdings.Symbols(), cfg.Portfolio.Assets)
}

// ProvideClickHouseClient connects only when a component reads or writes ClickHouse.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.History.Source != config.SourceClickHouse && !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideCache builds the history cache: memory, or memory over Redis.
// A nil Service means caching is off.
func ProvideCache(cfg *config.Config) (cache.Service, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), func() {}, nil
	}

	r := cfg.Cache.Redis
	remote, err := cache.NewRedisCache(context.Background(),
		cache.WithRedisHost(r.Host),
		cache.WithRedisPort(r.Port),
		cache.WithRedisPassword(r.Password),
		cache.WithRedisDB(r.DB),
		cache.WithRedisPrefix(r.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("history cache: %w", err)
	}
	layered := cache.NewLayeredCache(remote,
		cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
		cache.WithLayeredMemoryTTL(cfg.Cache.TTL),
	)
	return layered, func() { _ = layered.Close() }, nil
}

// ProvideHistoryFetcher selects the history source named by history.source.
func ProvideHistoryFetcher(cfg *config.Config, ch *pkgch.Client, c cache.Service, l *applogger.Logger) (repository.HistoryFetcher, error) {
	var fetcher repository.HistoryFetcher
	switch cfg.History.Source {
	case config.SourceCoinGecko:
		fetcher = coingecko.New(
			coingecko.WithBaseURL(cfg.CoinGecko.BaseURL),
			coingecko.WithAPIKey(cfg.CoinGecko.APIKey),
			coingecko.WithTimeout(cfg.CoinGecko.Timeout),
			coingecko.WithRate(cfg.CoinGecko.RatePerMinute, cfg.CoinGecko.Burst),
			coingecko.WithLogger(l),
		)
	case config.SourceClickHouse:
		if ch == nil {
			return nil, fmt.Errorf("%w: clickhouse history source without a client", models.ErrConfiguration)
		}
		fetcher = internalrepo.NewCHHistory(ch, cfg.ClickHouse.CandleTable, l)
	default:
		return nil, fmt.Errorf("%w: unknown history source %q", models.ErrConfiguration, cfg.History.Source)
	}

	if c != nil {
		fetcher = internalrepo.NewCachedHistory(fetcher, c, cfg.Cache.TTL, l)
	}
	return fetcher, nil
}

// ProvideAssetForecaster wires the configured model and feature builder.
func ProvideAssetForecaster(cfg *config.Config, l *applogger.Logger) (*usecase.AssetForecaster, error) {
	factory, err := forecast.NewFactoryFromConfig(cfg)
	if err != nil {
		return nil, configError(err)
	}
	builder := features.NewBuilder(cfg.Forecast.Lags, cfg.Forecast.Rolls)
	return usecase.NewAssetForecaster(factory, builder, cfg.Forecast.MinHistoryDays, l), nil
}

// ProvidePortfolioForecaster creates the portfolio use case.
func ProvidePortfolioForecaster(
	cfg *config.Config,
	fetcher repository.HistoryFetcher,
	forecaster *usecase.AssetForecaster,
	aggregator *usecase.Aggregator,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.PortfolioForecaster {
	return usecase.NewPortfolioForecaster(fetcher, forecaster, aggregator, m, l, usecase.RunOptions{
		Currency:     cfg.Portfolio.Currency,
		LookbackDays: cfg.Forecast.LookbackDays,
		Horizon:      cfg.Forecast.Horizon,
		Workers:      cfg.Forecast.Workers,
	})
}

// ProvideKafkaProducer creates a Kafka producer when kafka.enabled is set.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: kafka producer: %v", models.ErrConfiguration, err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideConsole creates the terminal renderer.
func ProvideConsole(cfg *config.Config) *report.Console {
	return report.NewConsole(os.Stdout, report.WithStyle(cfg.Report.Style))
}

// ProvideEmitter assembles every configured report sink.
func ProvideEmitter(
	cfg *config.Config,
	console *report.Console,
	ch *pkgch.Client,
	producer *pkgkafka.Producer,
) (repository.Emitter, error) {
	var emitters []repository.Emitter
	if !cfg.Report.Quiet {
		emitters = append(emitters, console)
	}
	if cfg.Report.CSVPath != "" {
		emitters = append(emitters, report.NewCSV(cfg.Report.CSVPath, cfg.Report.SeriesCSVPath))
	}
	if cfg.Report.ChartDir != "" {
		emitters = append(emitters, report.NewCharts(cfg.Report.ChartDir))
	}
	if producer != nil {
		emitters = append(emitters, internalrepo.NewKafkaForecastPublisher(producer))
	}
	if ch != nil && cfg.ClickHouse.Enabled {
		store := internalrepo.NewCHForecastStore(ch, cfg.ClickHouse.ForecastTable)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Init(ctx); err != nil {
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		emitters = append(emitters, store)
	}
	return report.NewMulti(emitters...), nil
}

// ProvideQuoteProvider creates the CoinMarketCap client used by snapshot.
func ProvideQuoteProvider(cfg *config.Config, holdings models.Holdings) (repository.QuoteProvider, error) {
	ids := coinmarketcap.ResolveIDs(holdings.Symbols(), cfg.CoinMarketCap.IDs)
	return coinmarketcap.New(cfg.CoinMarketCap.BaseURL, cfg.CoinMarketCap.APIKey, ids, cfg.CoinMarketCap.Timeout)
}

// ProvideHoldingsSnapshot creates the snapshot use case.
func ProvideHoldingsSnapshot(quotes repository.QuoteProvider) *usecase.HoldingsSnapshot {
	return usecase.NewHoldingsSnapshot(quotes)
}

// ProvideSnapshotApp creates the snapshot application.
func ProvideSnapshotApp(
	cfg *config.Config,
	snapshot *usecase.HoldingsSnapshot,
	console *report.Console,
	holdings models.Holdings,
	l *applogger.Logger,
) *app.SnapshotApp {
	return app.NewSnapshotApp(cfg, snapshot, console, holdings, l)
}

// ProvideForecastApp creates the forecast application.
func ProvideForecastApp(
	cfg *config.Config,
	runner *usecase.PortfolioForecaster,
	emitter repository.Emitter,
	holdings models.Holdings,
	assetIDs map[string]string,
	rec *metrics.Recorder,
	l *applogger.Logger,
) *app.ForecastApp {
	return app.NewForecastApp(cfg, runner, emitter, holdings, assetIDs, rec, l)
}
