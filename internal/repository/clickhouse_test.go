package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinCast/internal/domain/models"
)

func TestCHHistory_Fetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT bucket, close\s+FROM fincast\.candles_1d`).
		WithArgs("BTC", "usd", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "close"}).
			AddRow(d1, 100.0).
			AddRow(d1.Add(6*time.Hour), 105.0).
			AddRow(d2, 110.0))

	h := newCHHistory(db, qualify("fincast", "candles_1d"), nil)
	series, err := h.Fetch(context.Background(), "BTC", "USD", 30)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 110}, series.Prices())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCHHistory_EmptyIsDataUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT bucket, close`).
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "close"}))

	_, err = newCHHistory(db, "candles_1d", nil).Fetch(context.Background(), "BTC", "usd", 30)
	assert.Equal(t, models.KindDataUnavailable, models.KindOf(err))
}

func TestCHForecastStore_StoresPointsAndFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	pf := &models.PortfolioForecast{
		RunID:       "run-1",
		Model:       "seasonal",
		GeneratedAt: time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
		Results: []models.AssetResult{
			models.Ok(models.AssetForecast{Symbol: "BTC", Quantity: 2, Points: []models.ForecastPoint{
				{Date: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), Price: 100, Value: 200},
				{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Price: 101, Value: 202},
			}}),
			models.Failed("ETH", 3, models.ErrInsufficientHistory),
		},
	}

	rows := forecastRows(pf)
	require.Len(t, rows, 3)
	assert.Equal(t, "failed", rows[2][4])
	assert.Equal(t, "InsufficientHistory", rows[2][5])

	mock.ExpectExec(`INSERT INTO fincast\.forecasts \(run_id`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	s := &CHForecastStore{db: db, table: qualify("fincast", "forecasts")}
	require.NoError(t, s.Emit(context.Background(), pf))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQualify(t *testing.T) {
	assert.Equal(t, "db.t", qualify("db", "t"))
	assert.Equal(t, "other.t", qualify("db", "other.t"))
	assert.Equal(t, "t", qualify("", "t"))
}
