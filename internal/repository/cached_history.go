package repository

import (
	"context"
	"errors"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	"FinCast/pkg/cache"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/util"
)

// CachedHistory serves repeated fetches of the same window on the same UTC day from cache.
type CachedHistory struct {
	next  domrepo.HistoryFetcher
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
	now   func() time.Time
}

var _ domrepo.HistoryFetcher = (*CachedHistory)(nil)

func NewCachedHistory(next domrepo.HistoryFetcher, c cache.Service, ttl time.Duration, l *applogger.Logger) *CachedHistory {
	if l == nil {
		l = applogger.Nop()
	}
	return &CachedHistory{next: next, cache: c, ttl: ttl, l: l, now: time.Now}
}

func (h *CachedHistory) Fetch(ctx context.Context, assetID, currency string, windowDays int) (models.Series, error) {
	key := cache.GenerateKeyWithParams("history", assetID, currency, windowDays, util.FormatDay(h.now()))

	series, err := cache.GetTyped[models.Series](ctx, h.cache, key)
	if err == nil && len(series) > 0 {
		h.l.Debug("history cache hit", applogger.String("key", key))
		return series, nil
	}
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		h.l.Warn("history cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	series, err = h.next.Fetch(ctx, assetID, currency, windowDays)
	if err != nil {
		return nil, err
	}
	if err := h.cache.Set(ctx, key, series, h.ttl); err != nil {
		h.l.Warn("history cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return series, nil
}
