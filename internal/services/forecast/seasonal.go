package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/service"
)

const (
	NameSeasonal = "seasonal"

	yearPeriodDays = 365.25
	dayPeriodDays  = 1.0
	slopePenalty   = 1e-6
)

// SeasonalConfig configures the additive trend + seasonality model.
type SeasonalConfig struct {
	YearlyOrder        int
	DailyOrder         int
	Changepoints       int
	ChangepointRange   float64
	ChangepointPenalty float64
	SeasonalityPenalty float64
	MinObservations    int
}

// DefaultSeasonalConfig mirrors the config defaults.
func DefaultSeasonalConfig() SeasonalConfig {
	return SeasonalConfig{
		YearlyOrder:        10,
		DailyOrder:         4,
		Changepoints:       25,
		ChangepointRange:   0.8,
		ChangepointPenalty: 10,
		SeasonalityPenalty: 1,
		MinObservations:    30,
	}
}

// Seasonal fits price(t) = trend(t) + yearly(t) + daily(t) by ridge least squares.
// trend is piecewise linear with hinges at fixed changepoints; yearly and daily
// are Fourier series. Time is scaled to [0,1] over the history and prices by max |y|.
type Seasonal struct {
	cfg SeasonalConfig

	start        time.Time
	last         time.Time
	spanDays     float64
	yScale       float64
	changepoints []float64
	beta         *mat.VecDense
}

var _ service.Model = (*Seasonal)(nil)

func NewSeasonal(cfg SeasonalConfig) *Seasonal {
	if cfg.MinObservations < 2 {
		cfg.MinObservations = 2
	}
	if cfg.ChangepointRange <= 0 || cfg.ChangepointRange > 1 {
		cfg.ChangepointRange = 0.8
	}
	return &Seasonal{cfg: cfg}
}

func (m *Seasonal) Name() string { return NameSeasonal }

func (m *Seasonal) RequiresFeatures() bool { return false }

func (m *Seasonal) Fit(ctx context.Context, ts service.TrainingSet) error {
	s := ts.Series
	if len(s) < m.cfg.MinObservations {
		return fmt.Errorf("%w: %d observations, need %d", models.ErrModelFit, len(s), m.cfg.MinObservations)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.start = s[0].Date
	m.last = s[len(s)-1].Date
	m.spanDays = m.last.Sub(m.start).Hours() / 24
	if m.spanDays <= 0 {
		return fmt.Errorf("%w: history spans no time", models.ErrModelFit)
	}

	m.yScale = 0
	for _, p := range s {
		m.yScale = math.Max(m.yScale, math.Abs(p.Price))
	}
	if m.yScale == 0 {
		m.yScale = 1
	}

	n := min(m.cfg.Changepoints, len(s)-2)
	m.changepoints = make([]float64, 0, max(n, 0))
	for j := 1; j <= n; j++ {
		m.changepoints = append(m.changepoints, m.cfg.ChangepointRange*float64(j)/float64(n))
	}

	penalties := m.penalties()
	p := len(penalties)
	x := mat.NewDense(len(s), p, nil)
	y := mat.NewVecDense(len(s), nil)
	row := make([]float64, p)
	for i, pt := range s {
		m.designRow(pt.Date, row)
		x.SetRow(i, row)
		y.SetVec(i, pt.Price/m.yScale)
	}

	// (XᵀX + diag(λ)) β = Xᵀy
	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())
	for j, l := range penalties {
		xtx.SetSym(j, j, xtx.At(j, j)+l)
	}
	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return fmt.Errorf("%w: normal equations are not positive definite", models.ErrModelFit)
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return fmt.Errorf("%w: solve: %v", models.ErrModelFit, err)
	}
	for i := 0; i < beta.Len(); i++ {
		if v := beta.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite coefficient", models.ErrModelFit)
		}
	}
	m.beta = &beta
	return nil
}

// Predict extrapolates the fitted components over the next horizon days.
// Prices are floored at zero.
func (m *Seasonal) Predict(ctx context.Context, horizon int) ([]models.ForecastPoint, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("%w: horizon must be >= 1, got %d", models.ErrConfiguration, horizon)
	}
	if m.beta == nil {
		return nil, fmt.Errorf("%w: model is not fitted", models.ErrModelFit)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := make([]float64, m.beta.Len())
	out := make([]models.ForecastPoint, horizon)
	for k := 1; k <= horizon; k++ {
		d := m.last.AddDate(0, 0, k)
		m.designRow(d, row)
		yhat := mat.Dot(mat.NewVecDense(len(row), row), m.beta) * m.yScale
		out[k-1] = models.ForecastPoint{Date: d, Price: math.Max(0, yhat)}
	}
	return out, nil
}

// penalties returns the ridge penalty per design column, in designRow order.
func (m *Seasonal) penalties() []float64 {
	out := []float64{0, slopePenalty}
	for range m.changepoints {
		out = append(out, m.cfg.ChangepointPenalty)
	}
	for i := 0; i < 2*(m.cfg.YearlyOrder+m.cfg.DailyOrder); i++ {
		out = append(out, m.cfg.SeasonalityPenalty)
	}
	return out
}

// designRow fills row with: intercept, slope, hinges, yearly sin/cos, daily sin/cos.
func (m *Seasonal) designRow(d time.Time, row []float64) {
	days := d.Sub(m.start).Hours() / 24
	t := days / m.spanDays

	row[0] = 1
	row[1] = t
	c := 2
	for _, cp := range m.changepoints {
		row[c] = math.Max(0, t-cp)
		c++
	}
	c = fourier(row, c, days, yearPeriodDays, m.cfg.YearlyOrder)
	fourier(row, c, days, dayPeriodDays, m.cfg.DailyOrder)
}

func fourier(row []float64, c int, days, period float64, order int) int {
	for k := 1; k <= order; k++ {
		arg := 2 * math.Pi * float64(k) * days / period
		row[c] = math.Sin(arg)
		row[c+1] = math.Cos(arg)
		c += 2
	}
	return c
}
