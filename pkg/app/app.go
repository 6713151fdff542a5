package app

import (
	"context"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	"FinCast/internal/usecase"
	"FinCast/pkg/config"
	applogger "FinCast/pkg/logger"
)

// Textfile is implemented by metrics recorders that can dump themselves to disk.
type Textfile interface {
	WriteTextfile(path string) error
}

// ForecastApp runs one portfolio forecast and hands it to the emitters.
type ForecastApp struct {
	cfg      *config.Config
	runner   *usecase.PortfolioForecaster
	emitter  drepo.Emitter
	holdings models.Holdings
	assetIDs map[string]string
	metrics  Textfile
	l        *applogger.Logger
}

// NewForecastApp creates the forecast application.
func NewForecastApp(
	cfg *config.Config,
	runner *usecase.PortfolioForecaster,
	emitter drepo.Emitter,
	holdings models.Holdings,
	assetIDs map[string]string,
	metrics Textfile,
	l *applogger.Logger,
) *ForecastApp {
	return &ForecastApp{
		cfg:      cfg,
		runner:   runner,
		emitter:  emitter,
		holdings: holdings,
		assetIDs: assetIDs,
		metrics:  metrics,
		l:        l,
	}
}

// Run forecasts the portfolio and emits the result. Emission failures are
// returned after every emitter has run; the forecast is returned either way.
func (a *ForecastApp) Run(ctx context.Context) (*models.PortfolioForecast, error) {
	start := time.Now()
	a.l.Info("forecast run started",
		applogger.String("model", a.cfg.Forecast.Model),
		applogger.Int("horizon", a.cfg.Forecast.Horizon),
		applogger.Int("lookback_days", a.cfg.Forecast.LookbackDays),
		applogger.Strings("symbols", a.holdings.Symbols()),
	)

	pf, err := a.runner.Run(ctx, a.holdings, a.assetIDs)
	if err != nil {
		return nil, err
	}
	for _, r := range pf.Failures() {
		a.l.Warn("asset excluded",
			applogger.String("symbol", r.Symbol),
			applogger.String("kind", string(r.Kind)),
			applogger.String("reason", r.Message),
		)
	}

	emitErr := a.emitter.Emit(ctx, pf)
	if emitErr != nil {
		a.l.Error("emit failed", applogger.Error(emitErr))
	}
	a.writeMetrics()

	a.l.Info("forecast run finished",
		applogger.String("run_id", pf.RunID),
		applogger.Duration("elapsed", time.Since(start)),
	)
	if emitErr != nil {
		return pf, fmt.Errorf("emit: %w", emitErr)
	}
	return pf, nil
}

func (a *ForecastApp) writeMetrics() {
	path := a.cfg.Metrics.TextfilePath
	if path == "" || a.metrics == nil {
		return
	}
	if err := a.metrics.WriteTextfile(path); err != nil {
		a.l.Warn("metrics textfile write failed", applogger.String("path", path), applogger.Error(err))
		return
	}
	a.l.Debug("metrics textfile written", applogger.String("path", path))
}

// SnapshotPrinter renders a holdings snapshot.
type SnapshotPrinter interface {
	EmitSnapshot(ctx context.Context, s *models.Snapshot) error
}

// SnapshotApp values the holdings at the latest quotes.
type SnapshotApp struct {
	cfg      *config.Config
	snapshot *usecase.HoldingsSnapshot
	printer  SnapshotPrinter
	holdings models.Holdings
	l        *applogger.Logger
}

// NewSnapshotApp creates the snapshot application.
func NewSnapshotApp(cfg *config.Config, snapshot *usecase.HoldingsSnapshot, printer SnapshotPrinter, holdings models.Holdings, l *applogger.Logger) *SnapshotApp {
	return &SnapshotApp{cfg: cfg, snapshot: snapshot, printer: printer, holdings: holdings, l: l}
}

func (a *SnapshotApp) Run(ctx context.Context) (*models.Snapshot, error) {
	snap, err := a.snapshot.Take(ctx, a.holdings, a.cfg.Portfolio.Currency)
	if err != nil {
		return nil, err
	}
	a.l.Info("snapshot taken",
		applogger.Int("assets", len(snap.Rows)),
		applogger.Float64("total", snap.Total),
		applogger.String("currency", snap.Currency),
	)
	if err := a.printer.EmitSnapshot(ctx, snap); err != nil {
		return snap, fmt.Errorf("print snapshot: %w", err)
	}
	return snap, nil
}
