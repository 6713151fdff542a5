package forecast

import (
	"fmt"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/service"
	"FinCast/pkg/config"
)

// Factory creates fresh models of one configured kind.
type Factory struct {
	name  string
	build func() service.Model
}

var _ service.ModelFactory = (*Factory)(nil)

func (f *Factory) New() service.Model { return f.build() }

func (f *Factory) Name() string { return f.name }

// NewTreeFactory returns a factory for TreeEnsemble models.
func NewTreeFactory(cfg TreeConfig) *Factory {
	return &Factory{name: NameTreeEnsemble, build: func() service.Model { return NewTreeEnsemble(cfg) }}
}

// NewSeasonalFactory returns a factory for Seasonal models.
func NewSeasonalFactory(cfg SeasonalConfig) *Factory {
	return &Factory{name: NameSeasonal, build: func() service.Model { return NewSeasonal(cfg) }}
}

// NewFactoryFromConfig selects the model named by forecast.model.
func NewFactoryFromConfig(cfg *config.Config) (*Factory, error) {
	f := cfg.Forecast
	switch f.Model {
	case config.ModelTreeEnsemble:
		return NewTreeFactory(TreeConfig{
			Trees:       f.Tree.Trees,
			MaxDepth:    f.Tree.MaxDepth,
			MinLeaf:     f.Tree.MinLeaf,
			MaxFeatures: f.Tree.MaxFeatures,
			MinRows:     f.Tree.MinRows,
			Seed:        f.Tree.Seed,
		}), nil
	case config.ModelSeasonal:
		return NewSeasonalFactory(SeasonalConfig{
			YearlyOrder:        f.Seasonal.YearlyOrder,
			DailyOrder:         f.Seasonal.DailyOrder,
			Changepoints:       f.Seasonal.Changepoints,
			ChangepointRange:   f.Seasonal.ChangepointRange,
			ChangepointPenalty: f.Seasonal.ChangepointPenalty,
			SeasonalityPenalty: f.Seasonal.SeasonalityPenalty,
			MinObservations:    f.Seasonal.MinObservations,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown forecast model %q", models.ErrConfiguration, f.Model)
	}
}
