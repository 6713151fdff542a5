package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	applogger "FinCast/pkg/logger"
)

// MaxWorkers caps the per-asset worker pool.
const MaxWorkers = 10

// RunOptions are the per-run knobs.
type RunOptions struct {
	Currency     string
	LookbackDays int
	Horizon      int
	// Workers is the pool size; 0 means one per asset. Capped at MaxWorkers.
	Workers int
}

// PortfolioForecaster fans per-asset units out over a worker pool and
// aggregates once every unit has finished.
type PortfolioForecaster struct {
	fetcher    drepo.HistoryFetcher
	forecaster *AssetForecaster
	aggregator *Aggregator
	metrics    drepo.Metrics
	l          *applogger.Logger
	opts       RunOptions
	now        func() time.Time
	newID      func() string
}

func NewPortfolioForecaster(fetcher drepo.HistoryFetcher, forecaster *AssetForecaster, aggregator *Aggregator, metrics drepo.Metrics, l *applogger.Logger, opts RunOptions) *PortfolioForecaster {
	if metrics == nil {
		metrics = drepo.NopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &PortfolioForecaster{
		fetcher:    fetcher,
		forecaster: forecaster,
		aggregator: aggregator,
		metrics:    metrics,
		l:          l,
		opts:       opts,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Run forecasts every holding. Configuration problems and unknown symbols fail
// before any fetch; per-asset failures are recorded in the result.
func (p *PortfolioForecaster) Run(ctx context.Context, holdings models.Holdings, assetIDs map[string]string) (*models.PortfolioForecast, error) {
	start := p.now()
	if err := p.check(holdings, assetIDs); err != nil {
		return nil, err
	}

	results := make([]models.AssetResult, len(holdings))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.workerCount(len(holdings)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.runOne(ctx, holdings[i], assetIDs[holdings[i].Symbol])
			}
		}()
	}
	for i := range holdings {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run canceled: %w", err)
	}

	pf := p.aggregator.Aggregate(results)
	pf.RunID = p.newID()
	pf.Model = p.forecaster.Model()
	pf.Currency = strings.ToUpper(p.opts.Currency)
	pf.Horizon = p.opts.Horizon
	pf.GeneratedAt = p.now().UTC()

	p.metrics.RecordPortfolio(pf.Summary.CurrentTotal, pf.Summary.PredictedTotal)
	p.metrics.RecordRunDuration(p.now().Sub(start).Seconds())
	p.l.Info("portfolio forecast complete",
		applogger.String("run_id", pf.RunID),
		applogger.String("model", pf.Model),
		applogger.Int("assets", len(pf.Results)),
		applogger.Int("failed", len(pf.Failures())),
		applogger.Float64("current_total", pf.Summary.CurrentTotal),
		applogger.Float64("predicted_total", pf.Summary.PredictedTotal),
	)
	return &pf, nil
}

func (p *PortfolioForecaster) check(holdings models.Holdings, assetIDs map[string]string) error {
	if len(holdings) == 0 {
		return fmt.Errorf("%w: holdings are empty", models.ErrConfiguration)
	}
	if p.opts.Horizon < 1 || p.opts.LookbackDays < 1 {
		return fmt.Errorf("%w: horizon and lookback must be >= 1", models.ErrConfiguration)
	}
	var unknown []string
	for _, h := range holdings {
		if h.Quantity < 0 {
			return fmt.Errorf("%w: holding %s has negative quantity", models.ErrConfiguration, h.Symbol)
		}
		if id := assetIDs[h.Symbol]; strings.TrimSpace(id) == "" {
			unknown = append(unknown, h.Symbol)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: no provider id for %s", models.ErrUnknownSymbol, strings.Join(unknown, ", "))
	}
	return nil
}

func (p *PortfolioForecaster) workerCount(assets int) int {
	n := p.opts.Workers
	if n <= 0 {
		n = assets
	}
	return max(1, min(n, assets, MaxWorkers))
}

// runOne is one isolated per-asset unit. A panic is recorded as a model failure.
func (p *PortfolioForecaster) runOne(ctx context.Context, h models.Holding, assetID string) (res models.AssetResult) {
	defer func() {
		if r := recover(); r != nil {
			res = p.fail(h, fmt.Errorf("%s: %w: panic: %v", h.Symbol, models.ErrModelFit, r))
		}
	}()

	fetchStart := time.Now()
	series, err := p.fetcher.Fetch(ctx, assetID, p.opts.Currency, p.opts.LookbackDays)
	p.metrics.RecordFetchLatency(h.Symbol, time.Since(fetchStart).Seconds())
	if err != nil {
		return p.fail(h, fmt.Errorf("%s: fetch %s: %w", h.Symbol, assetID, err))
	}

	fc, err := p.forecaster.Forecast(ctx, h.Symbol, series, h.Quantity, p.opts.Horizon)
	if err != nil {
		return p.fail(h, err)
	}

	final, _ := fc.Final()
	p.metrics.RecordAssetResult("ok", "")
	p.metrics.RecordPrediction(h.Symbol, fc.Model, final.Price)
	return models.Ok(fc)
}

func (p *PortfolioForecaster) fail(h models.Holding, err error) models.AssetResult {
	res := models.Failed(h.Symbol, h.Quantity, err)
	p.metrics.RecordAssetResult("failed", string(res.Kind))
	p.l.Warn("asset forecast failed",
		applogger.String("symbol", h.Symbol),
		applogger.String("kind", string(res.Kind)),
		applogger.Error(err),
	)
	return res
}
