package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	pkgch "FinCast/pkg/clickhouse"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/util"
)

// CHHistory implements HistoryFetcher over a daily candle table.
type CHHistory struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
	now   func() time.Time
}

var _ domrepo.HistoryFetcher = (*CHHistory)(nil)

func NewCHHistory(ch *pkgch.Client, table string, l *applogger.Logger) *CHHistory {
	return newCHHistory(ch.DB(), qualify(ch.Database(), table), l)
}

func newCHHistory(db *sql.DB, table string, l *applogger.Logger) *CHHistory {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHHistory{db: db, table: table, l: l, now: time.Now}
}

func (s *CHHistory) Fetch(ctx context.Context, assetID, currency string, windowDays int) (models.Series, error) {
	if windowDays < 1 {
		return nil, fmt.Errorf("clickhouse history %s: %w: window_days must be >= 1", assetID, models.ErrConfiguration)
	}
	start := time.Now()
	since := util.AddDays(s.now(), -windowDays)

	const qtpl = `
        SELECT bucket, close
        FROM %s
        WHERE symbol = ? AND currency = ? AND bucket >= ?
        ORDER BY bucket ASC
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table), assetID, strings.ToLower(currency), since)
	if err != nil {
		s.l.Error("clickhouse history query error",
			applogger.String("table", s.table),
			applogger.String("asset_id", assetID),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("clickhouse history %s: %w: %v", assetID, models.ErrDataUnavailable, err)
	}
	defer rows.Close()

	samples := make([]models.PricePoint, 0, windowDays+1)
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Date, &p.Price); err != nil {
			return nil, fmt.Errorf("clickhouse history %s: %w: scan: %v", assetID, models.ErrDataUnavailable, err)
		}
		samples = append(samples, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clickhouse history %s: %w: rows: %v", assetID, models.ErrDataUnavailable, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("clickhouse history %s: %w: no candles since %s", assetID, models.ErrDataUnavailable, util.FormatDay(since))
	}

	series := models.NewDailySeries(samples)
	s.l.Debug("clickhouse history ok",
		applogger.String("table", s.table),
		applogger.String("asset_id", assetID),
		applogger.Int("rows", len(series)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return series, nil
}

func qualify(database, table string) string {
	if database == "" || strings.Contains(table, ".") {
		return table
	}
	return database + "." + table
}
