package forecast

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/service"
)

const NameTreeEnsemble = "tree_ensemble"

// TreeConfig configures the random forest.
type TreeConfig struct {
	Trees       int
	MaxDepth    int
	MinLeaf     int
	MaxFeatures int
	MinRows     int
	Seed        int64
	// Workers bounds parallel tree training. 0 uses GOMAXPROCS.
	Workers int
}

// DefaultTreeConfig mirrors the config defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{Trees: 400, MinLeaf: 1, MinRows: 5, Seed: 42}
}

// TreeEnsemble is a bagged forest of regression trees predicting the next day's price
// from the lagged feature table. Tree i is trained with its own RNG seeded from
// Seed+i, so results do not depend on scheduling.
type TreeEnsemble struct {
	cfg   TreeConfig
	trees []*regressionTree
	next  *models.FeatureRow
}

var _ service.Model = (*TreeEnsemble)(nil)

func NewTreeEnsemble(cfg TreeConfig) *TreeEnsemble {
	if cfg.Trees < 1 {
		cfg.Trees = 1
	}
	if cfg.MinLeaf < 1 {
		cfg.MinLeaf = 1
	}
	if cfg.MinRows < 1 {
		cfg.MinRows = 1
	}
	return &TreeEnsemble{cfg: cfg}
}

func (m *TreeEnsemble) Name() string { return NameTreeEnsemble }

func (m *TreeEnsemble) RequiresFeatures() bool { return true }

func (m *TreeEnsemble) Fit(ctx context.Context, ts service.TrainingSet) error {
	if len(ts.Rows) < m.cfg.MinRows {
		return fmt.Errorf("%w: %d training rows, need %d", models.ErrModelFit, len(ts.Rows), m.cfg.MinRows)
	}
	if ts.Next == nil {
		return fmt.Errorf("%w: no predictor row for the next day", models.ErrModelFit)
	}
	width := len(ts.Rows[0].Features)
	if width == 0 || len(ts.Next.Features) != width {
		return fmt.Errorf("%w: inconsistent feature width", models.ErrModelFit)
	}

	x := make([][]float64, len(ts.Rows))
	y := make([]float64, len(ts.Rows))
	for i, r := range ts.Rows {
		if len(r.Features) != width {
			return fmt.Errorf("%w: row %d has %d features, want %d", models.ErrModelFit, i, len(r.Features), width)
		}
		x[i] = r.Features
		y[i] = r.Target
	}

	params := treeParams{maxDepth: m.cfg.MaxDepth, minLeaf: m.cfg.MinLeaf, maxFeatures: m.cfg.MaxFeatures}
	trees := make([]*regressionTree, m.cfg.Trees)

	workers := m.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for t := range trees {
		if err := ctx.Err(); err != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(t int) {
			defer func() {
				<-sem
				wg.Done()
			}()
			rng := rand.New(rand.NewSource(m.cfg.Seed + int64(t)))
			idx := make([]int, len(y))
			for i := range idx {
				idx[i] = rng.Intn(len(y))
			}
			trees[t] = growTree(x, y, idx, params, rng)
		}(t)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	next := *ts.Next
	m.trees = trees
	m.next = &next
	return nil
}

// Predict returns exactly one point: the day after the training series.
func (m *TreeEnsemble) Predict(ctx context.Context, horizon int) ([]models.ForecastPoint, error) {
	if horizon != 1 {
		return nil, fmt.Errorf("%w: %s predicts a single step, got horizon %d", models.ErrConfiguration, NameTreeEnsemble, horizon)
	}
	if m.trees == nil || m.next == nil {
		return nil, fmt.Errorf("%w: model is not fitted", models.ErrModelFit)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []models.ForecastPoint{{Date: m.next.Date, Price: m.predictRow(m.next.Features)}}, nil
}

func (m *TreeEnsemble) predictRow(x []float64) float64 {
	sum := 0.0
	for _, t := range m.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(m.trees))
}
