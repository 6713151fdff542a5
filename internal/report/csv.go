package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	"FinCast/pkg/util"
)

// AssetRow is one line of the per-asset CSV. Numeric cells are empty for failed assets.
type AssetRow struct {
	Symbol         string `csv:"symbol"`
	Status         string `csv:"status"`
	ErrorKind      string `csv:"error_kind"`
	LastDate       string `csv:"last_date"`
	Amount         string `csv:"amount"`
	LastPrice      string `csv:"last_price"`
	PredictedPrice string `csv:"predicted_price"`
	CurrentValue   string `csv:"current_value"`
	PredictedValue string `csv:"predicted_value"`
	ExpChange      string `csv:"exp_change"`
	ExpChangePct   string `csv:"exp_change_pct"`
}

// SeriesRow is one date of the portfolio projection CSV.
type SeriesRow struct {
	Date       string `csv:"date"`
	TotalValue string `csv:"total_value"`
	Assets     string `csv:"assets"`
}

// CSV writes the per-asset table and, when seriesPath is set, the projection series.
type CSV struct {
	path       string
	seriesPath string
}

var _ drepo.Emitter = (*CSV)(nil)

func NewCSV(path, seriesPath string) *CSV {
	return &CSV{path: path, seriesPath: seriesPath}
}

func (c *CSV) Emit(_ context.Context, pf *models.PortfolioForecast) error {
	if err := writeFile(c.path, func(w io.Writer) error { return WriteAssetsCSV(w, pf) }); err != nil {
		return err
	}
	if c.seriesPath == "" {
		return nil
	}
	return writeFile(c.seriesPath, func(w io.Writer) error { return WriteSeriesCSV(w, pf) })
}

// AssetRows flattens results in symbol order.
func AssetRows(pf *models.PortfolioForecast) []*AssetRow {
	rows := make([]*AssetRow, 0, len(pf.Results))
	for _, r := range pf.Results {
		if !r.OK() {
			rows = append(rows, &AssetRow{
				Symbol:    r.Symbol,
				Status:    "failed",
				ErrorKind: string(r.Kind),
				Amount:    formatAmount(r.Quantity),
			})
			continue
		}
		f := r.Forecast
		final, _ := f.Final()
		rows = append(rows, &AssetRow{
			Symbol:         r.Symbol,
			Status:         "ok",
			LastDate:       util.FormatDay(f.AsOf),
			Amount:         formatAmount(f.Quantity),
			LastPrice:      round(f.LastPrice, 8),
			PredictedPrice: round(final.Price, 8),
			CurrentValue:   round(f.CurrentValue, 2),
			PredictedValue: round(final.Value, 2),
			ExpChange:      round(f.ExpectedChange(), 8),
			ExpChangePct:   round(f.ExpectedChangePct(), 4),
		})
	}
	return rows
}

func WriteAssetsCSV(w io.Writer, pf *models.PortfolioForecast) error {
	if err := gocsv.Marshal(AssetRows(pf), w); err != nil {
		return fmt.Errorf("assets csv: %w", err)
	}
	return nil
}

func WriteSeriesCSV(w io.Writer, pf *models.PortfolioForecast) error {
	rows := make([]*SeriesRow, 0, len(pf.Points))
	for _, p := range pf.Points {
		rows = append(rows, &SeriesRow{
			Date:       util.FormatDay(p.Date),
			TotalValue: round(p.TotalValue, 2),
			Assets:     strings.Join(p.Assets, "|"),
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("series csv: %w", err)
	}
	return nil
}

func round(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).String()
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}
