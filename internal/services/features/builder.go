package features

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/service"
)

var (
	DefaultLags  = []int{1, 2, 3, 7, 14}
	DefaultRolls = []int{3, 7, 14}
)

// Builder derives lag, rolling and return predictors from a daily series.
// Every predictor of the row at index i reads only prices[:i].
type Builder struct {
	lags  []int
	rolls []int
}

var _ service.FeatureBuilder = (*Builder)(nil)

// NewBuilder creates a builder. Lags below 1 and rolling windows below 2 are ignored.
func NewBuilder(lags, rolls []int) *Builder {
	if len(lags) == 0 {
		lags = DefaultLags
	}
	if len(rolls) == 0 {
		rolls = DefaultRolls
	}
	return &Builder{
		lags:  uniqueSorted(lags, 1),
		rolls: uniqueSorted(rolls, 2),
	}
}

// WarmUp is the number of observations needed before the first row.
func (b *Builder) WarmUp() int {
	w := 2
	for _, l := range b.lags {
		w = max(w, l)
	}
	for _, r := range b.rolls {
		w = max(w, r)
	}
	return w
}

// Names lists the predictor columns in the order they appear in FeatureRow.Features.
func (b *Builder) Names() []string {
	names := make([]string, 0, len(b.lags)+2*len(b.rolls)+1)
	for _, l := range b.lags {
		names = append(names, fmt.Sprintf("lag_%d", l))
	}
	for _, w := range b.rolls {
		names = append(names, fmt.Sprintf("roll_mean_%d", w), fmt.Sprintf("roll_std_%d", w))
	}
	return append(names, "ret_1d")
}

// Build returns one row per date with a full warm-up behind it.
// Short or empty input yields an empty slice.
func (b *Builder) Build(series models.Series) []models.FeatureRow {
	warm := b.WarmUp()
	if len(series) <= warm {
		return []models.FeatureRow{}
	}
	prices := series.Prices()
	rows := make([]models.FeatureRow, 0, len(series)-warm)
	for i := warm; i < len(series); i++ {
		feats, ok := b.predictors(prices, i)
		if !ok {
			continue
		}
		rows = append(rows, models.FeatureRow{
			Date:     series[i].Date,
			Target:   prices[i],
			Features: feats,
		})
	}
	return rows
}

// Next returns the predictor vector for the day after the last observation.
func (b *Builder) Next(series models.Series) (models.FeatureRow, bool) {
	last, ok := series.Last()
	if !ok || len(series) < b.WarmUp() {
		return models.FeatureRow{}, false
	}
	feats, ok := b.predictors(series.Prices(), len(series))
	if !ok {
		return models.FeatureRow{}, false
	}
	return models.FeatureRow{Date: last.Date.AddDate(0, 0, 1), Features: feats}, true
}

// predictors computes the row for index i from prices[:i].
func (b *Builder) predictors(prices []float64, i int) ([]float64, bool) {
	past := prices[:i]
	out := make([]float64, 0, len(b.lags)+2*len(b.rolls)+1)

	for _, l := range b.lags {
		out = append(out, past[len(past)-l])
	}

	for _, w := range b.rolls {
		window := past[len(past)-w:]
		mean, err := stats.Mean(window)
		if err != nil {
			return nil, false
		}
		std, err := stats.StandardDeviationSample(window)
		if err != nil {
			return nil, false
		}
		out = append(out, mean, std)
	}

	prev, prev2 := past[len(past)-1], past[len(past)-2]
	if prev2 == 0 {
		return nil, false
	}
	out = append(out, (prev-prev2)/prev2)
	return out, true
}

func uniqueSorted(in []int, floor int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if v < floor {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
