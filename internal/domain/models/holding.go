package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Holding is the quantity of one asset held.
type Holding struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

// Holdings is sorted by symbol, one entry per symbol.
type Holdings []Holding

// NewHoldings builds holdings from a symbol -> quantity map.
func NewHoldings(m map[string]float64) (Holdings, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("%w: holdings are empty", ErrConfiguration)
	}
	out := make(Holdings, 0, len(m))
	seen := make(map[string]struct{}, len(m))
	for sym, qty := range m {
		s := strings.ToUpper(strings.TrimSpace(sym))
		if s == "" {
			return nil, fmt.Errorf("%w: empty holding symbol", ErrConfiguration)
		}
		if _, dup := seen[s]; dup {
			return nil, fmt.Errorf("%w: duplicate holding %s", ErrConfiguration, s)
		}
		if qty < 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
			return nil, fmt.Errorf("%w: holding %s has invalid quantity %v", ErrConfiguration, s, qty)
		}
		seen[s] = struct{}{}
		out = append(out, Holding{Symbol: s, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// Symbols lists the held symbols in order.
func (h Holdings) Symbols() []string {
	out := make([]string, len(h))
	for i, x := range h {
		out[i] = x.Symbol
	}
	return out
}
