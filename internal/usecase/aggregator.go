package usecase

import (
	"sort"
	"time"

	"FinCast/internal/domain/models"
)

// Aggregator merges per-asset results into a portfolio projection.
type Aggregator struct{}

func NewAggregator() *Aggregator { return &Aggregator{} }

// Aggregate sums predicted values of successful forecasts per exact date.
// Failed assets are absent from every total; dates nobody covers are omitted.
func (a *Aggregator) Aggregate(results []models.AssetResult) models.PortfolioForecast {
	sorted := append([]models.AssetResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })

	byDate := make(map[time.Time]*models.PortfolioPoint)
	var summary models.PortfolioSummary
	summary.Included = []string{}

	for _, r := range sorted {
		if !r.OK() {
			continue
		}
		for _, p := range r.Forecast.Points {
			pt, ok := byDate[p.Date]
			if !ok {
				pt = &models.PortfolioPoint{Date: p.Date}
				byDate[p.Date] = pt
			}
			pt.TotalValue += p.Value
			pt.Assets = append(pt.Assets, r.Symbol)
		}

		final, ok := r.Forecast.Final()
		if !ok {
			continue
		}
		summary.CurrentTotal += r.Forecast.CurrentValue
		summary.PredictedTotal += final.Value
		summary.Included = append(summary.Included, r.Symbol)
	}

	points := make([]models.PortfolioPoint, 0, len(byDate))
	for _, pt := range byDate {
		points = append(points, *pt)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	summary.Delta = summary.PredictedTotal - summary.CurrentTotal
	if summary.CurrentTotal != 0 {
		summary.DeltaPct = 100 * summary.Delta / summary.CurrentTotal
	}

	return models.PortfolioForecast{
		Points:  points,
		Summary: summary,
		Results: sorted,
	}
}
