package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	"FinCast/pkg/util"
)

const defaultProjectionRows = 10

// Console renders forecasts and snapshots as markdown in the terminal.
type Console struct {
	w       io.Writer
	style   string
	width   int
	maxRows int
}

var _ drepo.Emitter = (*Console)(nil)

type ConsoleOption func(*Console)

// WithStyle selects a glamour style: "auto", "dark", "light", "notty" or "raw".
// "raw" prints the markdown source unchanged.
func WithStyle(style string) ConsoleOption {
	return func(c *Console) {
		if style != "" {
			c.style = style
		}
	}
}

// WithWordWrap sets the render width.
func WithWordWrap(width int) ConsoleOption {
	return func(c *Console) {
		if width > 0 {
			c.width = width
		}
	}
}

// WithProjectionRows bounds the portfolio projection table; longer series are abbreviated.
func WithProjectionRows(n int) ConsoleOption {
	return func(c *Console) {
		if n >= 2 {
			c.maxRows = n
		}
	}
}

func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{w: w, style: "auto", width: 100, maxRows: defaultProjectionRows}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) Emit(_ context.Context, pf *models.PortfolioForecast) error {
	return c.print(ForecastMarkdown(pf, c.maxRows))
}

// EmitSnapshot prints the holdings snapshot table.
func (c *Console) EmitSnapshot(_ context.Context, s *models.Snapshot) error {
	return c.print(SnapshotMarkdown(s))
}

func (c *Console) print(doc string) error {
	out, err := c.render(doc)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(c.w, out); err != nil {
		return fmt.Errorf("console write: %w", err)
	}
	return nil
}

func (c *Console) render(doc string) (string, error) {
	if c.style == "raw" {
		return doc, nil
	}
	style := glamour.WithStandardStyle(c.style)
	if c.style == "auto" {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(c.width))
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(doc)
	if err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return out, nil
}

// ForecastMarkdown builds the forecast report. The projection table keeps
// at most maxRows dates, the first and last halves of a longer series.
func ForecastMarkdown(pf *models.PortfolioForecast, maxRows int) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	cur := strings.ToUpper(pf.Currency)

	doc.H1(fmt.Sprintf("Portfolio forecast (%s, horizon %d)", pf.Model, pf.Horizon))
	doc.PlainText(fmt.Sprintf("Run %s generated %s", pf.RunID, pf.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")))

	doc.H2("Assets")
	assets := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight,
			md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header: []string{"Symbol", "Status", "Amount", "Last price", "Predicted", "Current value", "Predicted value", "Change"},
	}
	for _, r := range pf.Results {
		if !r.OK() {
			assets.Rows = append(assets.Rows, []string{
				r.Symbol, "failed: " + string(r.Kind), formatAmount(r.Quantity), "-", "-", "-", "-", "-",
			})
			continue
		}
		f := r.Forecast
		final, _ := f.Final()
		assets.Rows = append(assets.Rows, []string{
			r.Symbol,
			"ok",
			formatAmount(f.Quantity),
			formatPrice(f.LastPrice),
			formatPrice(final.Price),
			formatMoney(f.CurrentValue),
			formatMoney(final.Value),
			formatPct(f.ExpectedChangePct()),
		})
	}
	doc.Table(assets)

	doc.H2("Totals")
	s := pf.Summary
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"", cur},
		Rows: [][]string{
			{"Current value", formatMoney(s.CurrentTotal)},
			{"Predicted value", formatMoney(s.PredictedTotal)},
			{"Expected change", fmt.Sprintf("%s (%s)", formatSignedMoney(s.Delta), formatPct(s.DeltaPct))},
		},
	})
	if failed := pf.Failures(); len(failed) > 0 {
		notes := make([]string, 0, len(failed))
		for _, r := range failed {
			notes = append(notes, fmt.Sprintf("%s excluded (%s)", r.Symbol, r.Kind))
		}
		doc.PlainText("Totals cover " + strings.Join(s.Included, ", ") + ". " + strings.Join(notes, "; ") + ".")
	}

	if len(pf.Points) > 0 {
		doc.H2("Projection")
		proj := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignLeft},
			Header:    []string{"Date", "Total value", "Assets"},
		}
		for _, i := range projectionIndexes(len(pf.Points), maxRows) {
			if i < 0 {
				proj.Rows = append(proj.Rows, []string{"...", "...", ""})
				continue
			}
			p := pf.Points[i]
			proj.Rows = append(proj.Rows, []string{util.FormatDay(p.Date), formatMoney(p.TotalValue), strings.Join(p.Assets, ", ")})
		}
		doc.Table(proj)
	}

	return doc.String()
}

// SnapshotMarkdown builds the holdings snapshot report.
func SnapshotMarkdown(s *models.Snapshot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Holdings snapshot")
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Symbol", "Amount", "Price", "Value", "24h", "Allocation"},
	}
	for _, r := range s.Rows {
		t.Rows = append(t.Rows, []string{
			r.Symbol,
			formatAmount(r.Amount),
			formatPrice(r.Price),
			formatMoney(r.Value),
			formatPct(r.PercentChange24h),
			fmt.Sprintf("%.2f%%", r.AllocationPct),
		})
	}
	doc.Table(t)
	doc.PlainText(fmt.Sprintf("Total: %s %s", formatMoney(s.Total), s.Currency))
	return doc.String()
}

// projectionIndexes returns the rows to show; -1 marks the elided gap.
func projectionIndexes(n, maxRows int) []int {
	if maxRows < 2 {
		maxRows = defaultProjectionRows
	}
	out := make([]int, 0, min(n, maxRows+1))
	if n <= maxRows {
		for i := 0; i < n; i++ {
			out = append(out, i)
		}
		return out
	}
	head := maxRows / 2
	tail := maxRows - head
	for i := 0; i < head; i++ {
		out = append(out, i)
	}
	out = append(out, -1)
	for i := n - tail; i < n; i++ {
		out = append(out, i)
	}
	return out
}
