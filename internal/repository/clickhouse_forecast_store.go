package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	pkgch "FinCast/pkg/clickhouse"
	"FinCast/pkg/util"
)

const (
	forecastColumns = "run_id, generated_at, model, symbol, status, error_kind, date, price, value, quantity"
	forecastChunk   = 2000
)

// CHForecastStore writes forecast points, one row per asset per date.
// Failed assets get a single row with status 'failed' and their error kind.
type CHForecastStore struct {
	db    *sql.DB
	table string
}

var (
	_ domrepo.ForecastStore = (*CHForecastStore)(nil)
	_ domrepo.Emitter       = (*CHForecastStore)(nil)
)

func NewCHForecastStore(ch *pkgch.Client, table string) *CHForecastStore {
	return &CHForecastStore{db: ch.DB(), table: qualify(ch.Database(), table)}
}

func (s *CHForecastStore) Init(ctx context.Context) error {
	q := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            run_id       String,
            generated_at DateTime64(3, 'UTC'),
            model        LowCardinality(String),
            symbol       LowCardinality(String),
            status       LowCardinality(String),
            error_kind   LowCardinality(String),
            date         Date,
            price        Float64,
            value        Float64,
            quantity     Float64
        ) ENGINE = MergeTree
        ORDER BY (symbol, date, run_id)
    `, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("init forecast table: %w", err)
	}
	return nil
}

// Emit stores the run.
func (s *CHForecastStore) Emit(ctx context.Context, pf *models.PortfolioForecast) error {
	return s.StoreForecast(ctx, pf)
}

func (s *CHForecastStore) StoreForecast(ctx context.Context, pf *models.PortfolioForecast) error {
	rows := forecastRows(pf)
	for start := 0; start < len(rows); start += forecastChunk {
		end := min(start+forecastChunk, len(rows))

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*10)
		for _, r := range rows[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, r...)
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, forecastColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert forecasts: %w", err)
		}
	}
	return nil
}

func forecastRows(pf *models.PortfolioForecast) [][]interface{} {
	var out [][]interface{}
	asOf := util.Day(pf.GeneratedAt)
	for _, r := range pf.Results {
		if !r.OK() {
			out = append(out, []interface{}{
				pf.RunID, pf.GeneratedAt, pf.Model, r.Symbol, "failed", string(r.Kind), asOf, 0.0, 0.0, r.Quantity,
			})
			continue
		}
		for _, p := range r.Forecast.Points {
			out = append(out, []interface{}{
				pf.RunID, pf.GeneratedAt, pf.Model, r.Symbol, "ok", "", p.Date, p.Price, p.Value, r.Quantity,
			})
		}
	}
	return out
}
