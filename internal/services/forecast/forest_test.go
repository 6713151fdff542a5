package forecast

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/service"
	"FinCast/internal/services/features"
)

func dailySeries(n int, price func(i int) float64) models.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.Series, n)
	for i := range s {
		s[i] = models.PricePoint{Date: start.AddDate(0, 0, i), Price: price(i)}
	}
	return s
}

func trainingSet(t *testing.T, s models.Series) service.TrainingSet {
	t.Helper()
	b := features.NewBuilder(nil, nil)
	next, ok := b.Next(s)
	require.True(t, ok)
	return service.TrainingSet{Series: s, Rows: b.Build(s), Next: &next}
}

func smallForest() TreeConfig {
	cfg := DefaultTreeConfig()
	cfg.Trees = 50
	return cfg
}

func TestTreeEnsemble_ConstantSeriesPredictsConstant(t *testing.T) {
	s := dailySeries(30, func(int) float64 { return 100 })
	m := NewTreeEnsemble(DefaultTreeConfig())
	require.NoError(t, m.Fit(context.Background(), trainingSet(t, s)))

	pts, err := m.Predict(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, 100.0, pts[0].Price)
	assert.Equal(t, s[len(s)-1].Date.AddDate(0, 0, 1), pts[0].Date)
}

func TestTreeEnsemble_Deterministic(t *testing.T) {
	s := dailySeries(120, func(i int) float64 { return 1000 + 50*math.Sin(float64(i)/5) + float64(i) })
	ts := trainingSet(t, s)

	cfg := smallForest()
	cfg.MaxFeatures = 4

	a := NewTreeEnsemble(cfg)
	require.NoError(t, a.Fit(context.Background(), ts))
	pa, err := a.Predict(context.Background(), 1)
	require.NoError(t, err)

	cfg.Workers = 1
	b := NewTreeEnsemble(cfg)
	require.NoError(t, b.Fit(context.Background(), ts))
	pb, err := b.Predict(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, pa[0].Price, pb[0].Price)
}

func TestTreeEnsemble_PredictionWithinTargetRange(t *testing.T) {
	s := dailySeries(90, func(i int) float64 { return 200 + float64(i%10) })
	ts := trainingSet(t, s)
	m := NewTreeEnsemble(smallForest())
	require.NoError(t, m.Fit(context.Background(), ts))
	pts, err := m.Predict(context.Background(), 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pts[0].Price, 200.0)
	assert.LessOrEqual(t, pts[0].Price, 209.0)
}

func TestTreeEnsemble_RejectsMultiStep(t *testing.T) {
	s := dailySeries(30, func(int) float64 { return 100 })
	m := NewTreeEnsemble(smallForest())
	require.NoError(t, m.Fit(context.Background(), trainingSet(t, s)))

	_, err := m.Predict(context.Background(), 7)
	assert.Equal(t, models.KindConfiguration, models.KindOf(err))
}

func TestTreeEnsemble_TooFewRows(t *testing.T) {
	s := dailySeries(17, func(int) float64 { return 100 })
	ts := trainingSet(t, s)
	require.Len(t, ts.Rows, 3)

	err := NewTreeEnsemble(DefaultTreeConfig()).Fit(context.Background(), ts)
	assert.Equal(t, models.KindModelFit, models.KindOf(err))

	_, err = NewTreeEnsemble(DefaultTreeConfig()).Predict(context.Background(), 1)
	assert.Equal(t, models.KindModelFit, models.KindOf(err))
}

func TestRegressionTree_SplitsOnStep(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []float64{5, 5, 5, 20, 20, 20}
	idx := []int{0, 1, 2, 3, 4, 5}
	tree := growTree(x, y, idx, treeParams{minLeaf: 1}, nil)

	assert.Equal(t, 5.0, tree.predict([]float64{0}))
	assert.Equal(t, 20.0, tree.predict([]float64{100}))
	assert.Len(t, tree.nodes, 3)
	assert.Equal(t, 6.5, tree.nodes[0].threshold)
}
