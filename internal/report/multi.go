package report

import (
	"context"
	"errors"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
)

// Multi fans a forecast out to every emitter. All emitters run even if one fails.
type Multi []drepo.Emitter

var _ drepo.Emitter = Multi(nil)

func NewMulti(emitters ...drepo.Emitter) Multi {
	out := make(Multi, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (m Multi) Emit(ctx context.Context, pf *models.PortfolioForecast) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ctx, pf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
