package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinCast/internal/domain/models"
	"FinCast/pkg/cache"
)

type countingFetcher struct {
	calls  int
	series models.Series
	err    error
}

func (f *countingFetcher) Fetch(_ context.Context, _, _ string, _ int) (models.Series, error) {
	f.calls++
	return f.series, f.err
}

func testSeries() models.Series {
	return models.Series{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Price: 100},
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: 101},
	}
}

func TestCachedHistory_HitsCacheOnSecondFetch(t *testing.T) {
	ctx := context.Background()
	inner := &countingFetcher{series: testSeries()}
	h := NewCachedHistory(inner, cache.NewMemoryCache(), time.Hour, nil)
	h.now = func() time.Time { return time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC) }

	first, err := h.Fetch(ctx, "bitcoin", "usd", 120)
	require.NoError(t, err)
	second, err := h.Fetch(ctx, "bitcoin", "usd", 120)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	require.Len(t, second, 2)
	assert.Equal(t, first.Prices(), second.Prices())
	assert.True(t, first[1].Date.Equal(second[1].Date))

	_, err = h.Fetch(ctx, "bitcoin", "usd", 30)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedHistory_DoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	inner := &countingFetcher{err: models.ErrDataUnavailable}
	h := NewCachedHistory(inner, cache.NewMemoryCache(), time.Hour, nil)

	_, err := h.Fetch(ctx, "bitcoin", "usd", 120)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
	_, err = h.Fetch(ctx, "bitcoin", "usd", 120)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
	assert.Equal(t, 2, inner.calls)
}
