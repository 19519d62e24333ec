package service

import (
	"context"
	"testing"
	"time"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) sale(t *testing.T, owner string, id int64, ts time.Time, items ...domain.TransactionItem) {
	t.Helper()
	tx := &domain.Transaction{ID: id, UserID: owner, Timestamp: ts, Items: items}
	tx.Recalculate()
	require.NoError(t, f.store.Transactions().Create(context.Background(), tx))
}

func line(id int64, name string, qty int, price int64) domain.TransactionItem {
	return domain.TransactionItem{ProductID: id, ProductName: name, Quantity: qty, PricePerUnit: price}
}

func seedSales(t *testing.T, f *fixture) {
	day := time.Date(2024, 11, 22, 0, 0, 0, 0, time.UTC)
	f.sale(t, "user_1", 1, day.Add(14*time.Hour+30*time.Minute),
		line(1, "Nasi Goreng Spesial", 2, 25000),
		line(2, "Es Teh Manis", 3, 10000),
		line(3, "Ayam Bakar", 1, 45000))
	f.sale(t, "user_1", 2, day.Add(15*time.Hour),
		line(4, "Mie Ayam Spesial", 2, 20000),
		line(5, "Es Jeruk", 3, 10000))
	f.sale(t, "user_1", 3, day.Add(16*time.Hour),
		line(6, "Sate Ayam", 5, 15000),
		line(7, "Es Campur", 2, 12500))
}

func TestTopProducts(t *testing.T) {
	f := newFixture(t)
	seedSales(t, f)

	top, err := f.svc.Analytics.TopProducts(context.Background(), "user_1", 5)
	require.NoError(t, err)
	require.Len(t, top, 5)

	// ties keep discovery order
	ids := []int64{top[0].ProductID, top[1].ProductID, top[2].ProductID, top[3].ProductID, top[4].ProductID}
	assert.Equal(t, []int64{6, 2, 5, 1, 4}, ids)
	assert.Equal(t, 5, top[0].TotalQuantity)
	assert.Equal(t, int64(75000), top[0].TotalRevenue)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].TotalQuantity, top[i].TotalQuantity)
	}

	empty, err := f.svc.Analytics.TopProducts(context.Background(), "user_2", 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTopProductsAccumulatesAcrossTransactions(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2024, 11, 22, 0, 0, 0, 0, time.UTC)
	f.sale(t, "user_1", 1, day, line(1, "Tea", 1, 10000), line(2, "Kopi", 2, 8000))
	f.sale(t, "user_1", 2, day.Add(time.Hour), line(1, "Teh Tarik", 4, 12000))

	top, err := f.svc.Analytics.TopProducts(context.Background(), "user_1", 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(1), top[0].ProductID)
	assert.Equal(t, "Teh Tarik", top[0].ProductName)
	assert.Equal(t, 5, top[0].TotalQuantity)
	assert.Equal(t, int64(58000), top[0].TotalRevenue)
}

func TestRevenuePredictionLinear(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC)
	f.sale(t, "user_1", 1, day, line(1, "Tea", 10, 10000))
	f.sale(t, "user_1", 2, day.AddDate(0, 0, 1), line(1, "Tea", 20, 10000))
	f.sale(t, "user_1", 3, day.AddDate(0, 0, 2), line(1, "Tea", 30, 10000))

	pred, err := f.svc.Analytics.RevenuePrediction(context.Background(), "user_1", 3)
	require.NoError(t, err)
	require.Len(t, pred.History, 3)
	require.Len(t, pred.Predictions, 3)
	assert.InDelta(t, 100000, pred.Slope, 0.01)
	assert.Equal(t, "2024-11-23", pred.Predictions[0].Date)
	assert.InDelta(t, 400000, pred.Predictions[0].Revenue, 0.01)
	assert.InDelta(t, 600000, pred.Predictions[2].Revenue, 0.01)
}

func TestRevenuePredictionEdgeCases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	none, err := f.svc.Analytics.RevenuePrediction(ctx, "user_1", 0)
	require.NoError(t, err)
	assert.Empty(t, none.Predictions)

	_, err = f.svc.Analytics.RevenuePrediction(ctx, "user_1", 365)
	assertCode(t, err, apperr.CodeInvalidRequest)

	seedSales(t, f)
	single, err := f.svc.Analytics.RevenuePrediction(ctx, "user_1", 0)
	require.NoError(t, err)
	require.Len(t, single.Predictions, DefaultPredictionDays)
	for _, p := range single.Predictions {
		assert.InDelta(t, 300000, p.Revenue, 0.01)
	}
}

func TestRevenuePredictionClampsAtZero(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC)
	f.sale(t, "user_1", 1, day, line(1, "Tea", 30, 10000))
	f.sale(t, "user_1", 2, day.AddDate(0, 0, 2), line(1, "Tea", 1, 10000))

	pred, err := f.svc.Analytics.RevenuePrediction(context.Background(), "user_1", 5)
	require.NoError(t, err)
	assert.Len(t, pred.History, 3)
	for _, p := range pred.Predictions {
		assert.GreaterOrEqual(t, p.Revenue, 0.0)
	}
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	seedSales(t, f)

	sum, err := f.svc.Analytics.Summary(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TransactionCount)
	assert.Equal(t, int64(300000), sum.TotalRevenue)
	assert.Equal(t, 18, sum.ItemsSold)
	assert.InDelta(t, 100000, sum.AverageValue, 0.01)
	assert.InDelta(t, 100000, sum.MedianValue, 0.01)

	empty, err := f.svc.Analytics.Summary(context.Background(), "user_2")
	require.NoError(t, err)
	assert.Zero(t, empty.TransactionCount)
}
