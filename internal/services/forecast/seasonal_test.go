package forecast

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/service"
)

func TestSeasonal_RecoversLinearTrend(t *testing.T) {
	s := dailySeries(150, func(i int) float64 { return 100 + 2*float64(i) })
	m := NewSeasonal(DefaultSeasonalConfig())
	require.NoError(t, m.Fit(context.Background(), service.TrainingSet{Series: s}))

	pts, err := m.Predict(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, pts, 30)

	last := s[len(s)-1]
	for k, p := range pts {
		want := 100 + 2*float64(len(s)+k)
		assert.InDelta(t, want, p.Price, want*0.01, "day %d", k+1)
		assert.Equal(t, last.Date.AddDate(0, 0, k+1), p.Date)
	}
}

func TestSeasonal_LongHorizonDatesStrictlyIncrease(t *testing.T) {
	s := dailySeries(400, func(i int) float64 {
		return 500 + 100*math.Sin(2*math.Pi*float64(i)/365.25) + 0.5*float64(i)
	})
	m := NewSeasonal(DefaultSeasonalConfig())
	require.NoError(t, m.Fit(context.Background(), service.TrainingSet{Series: s}))

	pts, err := m.Predict(context.Background(), 365)
	require.NoError(t, err)
	require.Len(t, pts, 365)
	for i, p := range pts {
		assert.True(t, p.Date.After(s[len(s)-1].Date))
		assert.GreaterOrEqual(t, p.Price, 0.0)
		assert.False(t, math.IsNaN(p.Price))
		if i > 0 {
			assert.True(t, p.Date.After(pts[i-1].Date))
		}
	}
}

func TestSeasonal_FloorsAtZero(t *testing.T) {
	s := dailySeries(60, func(i int) float64 { return 600 - 10*float64(i) })
	m := NewSeasonal(DefaultSeasonalConfig())
	require.NoError(t, m.Fit(context.Background(), service.TrainingSet{Series: s}))

	pts, err := m.Predict(context.Background(), 200)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pts[len(pts)-1].Price)
}

func TestSeasonal_TooFewObservations(t *testing.T) {
	s := dailySeries(10, func(int) float64 { return 1 })
	err := NewSeasonal(DefaultSeasonalConfig()).Fit(context.Background(), service.TrainingSet{Series: s})
	assert.Equal(t, models.KindModelFit, models.KindOf(err))
}

func TestFactory(t *testing.T) {
	f := NewSeasonalFactory(DefaultSeasonalConfig())
	assert.Equal(t, NameSeasonal, f.Name())
	a, b := f.New(), f.New()
	assert.NotSame(t, a, b)
	assert.False(t, a.RequiresFeatures())
	assert.True(t, NewTreeFactory(DefaultTreeConfig()).New().RequiresFeatures())
}
