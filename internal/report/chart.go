package report

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
)

const chartHistoryDays = 90

var (
	historyColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	forecastColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// Charts writes one PNG per forecast asset plus the portfolio projection.
type Charts struct {
	dir string
}

var _ drepo.Emitter = (*Charts)(nil)

func NewCharts(dir string) *Charts {
	return &Charts{dir: dir}
}

// AssetChartPath is where the chart for symbol is written.
func (c *Charts) AssetChartPath(symbol string) string {
	return filepath.Join(c.dir, strings.ToLower(symbol)+"_forecast.png")
}

// PortfolioChartPath is where the portfolio projection is written.
func (c *Charts) PortfolioChartPath() string {
	return filepath.Join(c.dir, "portfolio_forecast.png")
}

func (c *Charts) Emit(ctx context.Context, pf *models.PortfolioForecast) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("chart dir: %w", err)
	}
	for _, r := range pf.Results {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.OK() {
			continue
		}
		if err := c.assetChart(r.Forecast); err != nil {
			return fmt.Errorf("%s chart: %w", r.Symbol, err)
		}
	}
	if len(pf.Points) == 0 {
		return nil
	}
	if err := c.portfolioChart(pf); err != nil {
		return fmt.Errorf("portfolio chart: %w", err)
	}
	return nil
}

func (c *Charts) assetChart(f *models.AssetForecast) error {
	p := newTimePlot(fmt.Sprintf("%s %s forecast", f.Symbol, f.Model), "price")

	hist := f.History.Tail(chartHistoryDays)
	if len(hist) > 0 {
		xys := make(plotter.XYs, len(hist))
		for i, pt := range hist {
			xys[i] = plotter.XY{X: unix(pt.Date), Y: pt.Price}
		}
		if err := addLine(p, xys, "history", historyColor, false); err != nil {
			return err
		}
	}

	xys := make(plotter.XYs, 0, len(f.Points)+1)
	xys = append(xys, plotter.XY{X: unix(f.AsOf), Y: f.LastPrice})
	for _, pt := range f.Points {
		xys = append(xys, plotter.XY{X: unix(pt.Date), Y: pt.Price})
	}
	if err := addLine(p, xys, "forecast", forecastColor, true); err != nil {
		return err
	}
	return p.Save(10*vg.Inch, 4*vg.Inch, c.AssetChartPath(f.Symbol))
}

func (c *Charts) portfolioChart(pf *models.PortfolioForecast) error {
	title := fmt.Sprintf("Portfolio projection (%s)", strings.ToUpper(pf.Currency))
	if failed := pf.Failures(); len(failed) > 0 {
		syms := make([]string, len(failed))
		for i, r := range failed {
			syms[i] = r.Symbol
		}
		title += ", excluding " + strings.Join(syms, ", ")
	}
	p := newTimePlot(title, "value")

	xys := make(plotter.XYs, len(pf.Points))
	for i, pt := range pf.Points {
		xys[i] = plotter.XY{X: unix(pt.Date), Y: pt.TotalValue}
	}
	if err := addLine(p, xys, "total", forecastColor, false); err != nil {
		return err
	}
	if len(xys) == 1 {
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		s.Color = forecastColor
		p.Add(s)
	}
	return p.Save(10*vg.Inch, 4*vg.Inch, c.PortfolioChartPath())
}

func newTimePlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

func addLine(p *plot.Plot, xys plotter.XYs, name string, c color.Color, dashed bool) error {
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	if dashed {
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	}
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

func unix(t time.Time) float64 {
	return float64(t.Unix())
}
