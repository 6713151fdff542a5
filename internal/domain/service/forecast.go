package service

import (
	"context"

	"FinCast/internal/domain/models"
)

// TrainingSet is what a model is fitted on. Rows and Next are empty for
// models that work on the raw series.
type TrainingSet struct {
	Symbol string
	Series models.Series
	Rows   []models.FeatureRow
	// Next holds the predictor vector for the day after the last observation.
	Next *models.FeatureRow
}

// Model is one forecasting strategy. Instances are single-use: Fit once, then Predict.
type Model interface {
	Name() string
	// RequiresFeatures reports whether Fit needs a feature table.
	RequiresFeatures() bool
	Fit(ctx context.Context, ts TrainingSet) error
	// Predict returns horizon points for the days following the training series.
	// Value fields are left zero.
	Predict(ctx context.Context, horizon int) ([]models.ForecastPoint, error)
}

// ModelFactory creates a fresh, unfitted model.
type ModelFactory interface {
	New() Model
	Name() string
}

// FeatureBuilder turns a series into supervised rows.
type FeatureBuilder interface {
	Build(series models.Series) []models.FeatureRow
	Next(series models.Series) (models.FeatureRow, bool)
	WarmUp() int
}
