package models

import (
	"fmt"
	"math"
	"sort"
	"time"

	"FinCast/pkg/util"
)

// PricePoint is one daily observation.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// Series is ordered by strictly increasing UTC day.
type Series []PricePoint

// NewDailySeries collapses samples to their UTC calendar day, keeping the
// first-seen sample per day, and sorts the result ascending.
func NewDailySeries(samples []PricePoint) Series {
	if len(samples) == 0 {
		return Series{}
	}
	seen := make(map[time.Time]struct{}, len(samples))
	out := make(Series, 0, len(samples))
	for _, p := range samples {
		day := util.Day(p.Date)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, PricePoint{Date: day, Price: p.Price})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Validate checks ordering and that every price is positive and finite.
func (s Series) Validate() error {
	for i, p := range s {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			return fmt.Errorf("%w: invalid price %v on %s", ErrDataUnavailable, p.Price, util.FormatDay(p.Date))
		}
		if i > 0 && !p.Date.After(s[i-1].Date) {
			return fmt.Errorf("%w: dates not strictly increasing at %s", ErrDataUnavailable, util.FormatDay(p.Date))
		}
	}
	return nil
}

// Last returns the most recent observation.
func (s Series) Last() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}

// Prices returns the price column.
func (s Series) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// Tail returns at most the last n points.
func (s Series) Tail(n int) Series {
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}
