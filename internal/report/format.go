package report

import (
	"github.com/shopspring/decimal"
)

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatSignedMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

// formatPrice keeps sub-cent precision for low priced coins.
func formatPrice(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.Abs().LessThan(decimal.NewFromInt(1)) {
		return d.StringFixed(6)
	}
	return d.StringFixed(2)
}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).Round(8).String()
}

func formatPct(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}
