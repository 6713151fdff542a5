package repository

import (
	"context"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	pkgkafka "FinCast/pkg/kafka"
)

const summaryKey = "portfolio"

type batchPublisher interface {
	PublishBatch(ctx context.Context, messages []pkgkafka.Message) error
}

// KafkaForecastPublisher emits one message per asset result keyed by symbol,
// then a portfolio summary message.
type KafkaForecastPublisher struct {
	producer batchPublisher
}

var _ domrepo.Emitter = (*KafkaForecastPublisher)(nil)

func NewKafkaForecastPublisher(producer *pkgkafka.Producer) *KafkaForecastPublisher {
	return &KafkaForecastPublisher{producer: producer}
}

type assetMessage struct {
	RunID       string                 `json:"run_id"`
	Model       string                 `json:"model"`
	Currency    string                 `json:"currency"`
	GeneratedAt time.Time              `json:"generated_at"`
	Symbol      string                 `json:"symbol"`
	Status      string                 `json:"status"`
	ErrorKind   string                 `json:"error_kind,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Quantity    float64                `json:"quantity"`
	LastPrice   float64                `json:"last_price,omitempty"`
	Current     float64                `json:"current_value,omitempty"`
	Points      []models.ForecastPoint `json:"points,omitempty"`
}

type summaryMessage struct {
	RunID       string                  `json:"run_id"`
	Model       string                  `json:"model"`
	Currency    string                  `json:"currency"`
	GeneratedAt time.Time               `json:"generated_at"`
	Summary     models.PortfolioSummary `json:"summary"`
	Points      []models.PortfolioPoint `json:"points"`
	Failed      []string                `json:"failed"`
}

func (p *KafkaForecastPublisher) Emit(ctx context.Context, pf *models.PortfolioForecast) error {
	msgs := make([]pkgkafka.Message, 0, len(pf.Results)+1)
	failed := make([]string, 0)
	for _, r := range pf.Results {
		m := assetMessage{
			RunID:       pf.RunID,
			Model:       pf.Model,
			Currency:    pf.Currency,
			GeneratedAt: pf.GeneratedAt,
			Symbol:      r.Symbol,
			Quantity:    r.Quantity,
		}
		if r.OK() {
			m.Status = "ok"
			m.LastPrice = r.Forecast.LastPrice
			m.Current = r.Forecast.CurrentValue
			m.Points = r.Forecast.Points
		} else {
			m.Status = "failed"
			m.ErrorKind = string(r.Kind)
			m.Error = r.Message
			failed = append(failed, r.Symbol)
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(r.Symbol), Value: m})
	}
	msgs = append(msgs, pkgkafka.Message{
		Key: []byte(summaryKey),
		Value: summaryMessage{
			RunID:       pf.RunID,
			Model:       pf.Model,
			Currency:    pf.Currency,
			GeneratedAt: pf.GeneratedAt,
			Summary:     pf.Summary,
			Points:      pf.Points,
			Failed:      failed,
		},
	})
	return p.producer.PublishBatch(ctx, msgs)
}
