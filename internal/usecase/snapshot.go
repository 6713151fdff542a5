package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
)

// HoldingsSnapshot values current holdings at the latest quotes.
type HoldingsSnapshot struct {
	quotes drepo.QuoteProvider
}

func NewHoldingsSnapshot(quotes drepo.QuoteProvider) *HoldingsSnapshot {
	return &HoldingsSnapshot{quotes: quotes}
}

// Take fetches quotes and builds rows sorted by value, largest first.
func (s *HoldingsSnapshot) Take(ctx context.Context, holdings models.Holdings, currency string) (*models.Snapshot, error) {
	if len(holdings) == 0 {
		return nil, fmt.Errorf("%w: holdings are empty", models.ErrConfiguration)
	}
	quotes, err := s.quotes.Quotes(ctx, holdings.Symbols(), currency)
	if err != nil {
		return nil, fmt.Errorf("snapshot quotes: %w", err)
	}

	snap := &models.Snapshot{Currency: strings.ToUpper(currency)}
	total := decimal.Zero
	values := make([]decimal.Decimal, 0, len(holdings))
	for _, h := range holdings {
		q, ok := quotes[h.Symbol]
		if !ok {
			return nil, fmt.Errorf("snapshot: %w: no quote for %s", models.ErrDataUnavailable, h.Symbol)
		}
		v := decimal.NewFromFloat(h.Quantity).Mul(decimal.NewFromFloat(q.Price))
		values = append(values, v)
		total = total.Add(v)
		snap.Rows = append(snap.Rows, models.SnapshotRow{
			Symbol:           h.Symbol,
			Amount:           h.Quantity,
			Price:            q.Price,
			Value:            v.InexactFloat64(),
			PercentChange24h: q.PercentChange24h,
		})
	}

	hundred := decimal.NewFromInt(100)
	for i := range snap.Rows {
		if total.IsZero() {
			break
		}
		snap.Rows[i].AllocationPct = values[i].Mul(hundred).DivRound(total, 4).InexactFloat64()
	}
	sort.SliceStable(snap.Rows, func(i, j int) bool { return snap.Rows[i].Value > snap.Rows[j].Value })
	snap.Total = total.InexactFloat64()
	return snap, nil
}
