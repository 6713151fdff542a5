package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinCast/internal/domain/models"
	pkgkafka "FinCast/pkg/kafka"
)

type capturePublisher struct {
	msgs []pkgkafka.Message
}

func (c *capturePublisher) PublishBatch(_ context.Context, msgs []pkgkafka.Message) error {
	c.msgs = append(c.msgs, msgs...)
	return nil
}

func TestKafkaForecastPublisher_Emit(t *testing.T) {
	cp := &capturePublisher{}
	p := &KafkaForecastPublisher{producer: cp}

	pf := &models.PortfolioForecast{
		RunID:       "run-1",
		Model:       "tree_ensemble",
		GeneratedAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Results: []models.AssetResult{
			models.Ok(models.AssetForecast{Symbol: "BTC", Quantity: 1, LastPrice: 10, Points: []models.ForecastPoint{{Price: 11, Value: 11}}}),
			models.Failed("ETH", 2, models.ErrDataUnavailable),
		},
		Summary: models.PortfolioSummary{CurrentTotal: 10, PredictedTotal: 11},
	}
	require.NoError(t, p.Emit(context.Background(), pf))
	require.Len(t, cp.msgs, 3)

	assert.Equal(t, "BTC", string(cp.msgs[0].Key))
	failed, ok := cp.msgs[1].Value.(assetMessage)
	require.True(t, ok)
	assert.Equal(t, "failed", failed.Status)
	assert.Equal(t, "DataUnavailable", failed.ErrorKind)

	assert.Equal(t, summaryKey, string(cp.msgs[2].Key))
	b, err := json.Marshal(cp.msgs[2].Value)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"failed":["ETH"]`)
}
