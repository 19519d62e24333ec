package service

import (
	"context"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idOf(id int64) string { return strconv.FormatInt(id, 10) }

func TestLedgerPricesFromCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tea := f.product(t, "user_1", "Tea", 10000)

	tx, err := f.svc.Ledger.Create(ctx, "user_1", []ItemInput{{ProductID: idOf(tea.ID), Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(30000), tx.TotalPrice)
	require.Len(t, tx.Items, 1)
	assert.Equal(t, "Tea", tx.Items[0].ProductName)
	assert.Equal(t, int64(10000), tx.Items[0].PricePerUnit)
	assert.Equal(t, int64(30000), tx.Items[0].TotalPrice)

	got, err := f.svc.Ledger.Get(ctx, "user_1", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), got.TotalPrice)
}

func TestLedgerTotalIsSumOfLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nasi := f.product(t, "user_1", "Nasi Goreng Spesial", 25000)
	teh := f.product(t, "user_1", "Es Teh Manis", 10000)
	ayam := f.product(t, "user_1", "Ayam Bakar", 45000)

	tx, err := f.svc.Ledger.Create(ctx, "user_1", []ItemInput{
		{ProductID: idOf(nasi.ID), Quantity: 2},
		{ProductID: idOf(teh.ID), Quantity: 3},
		{ProductID: idOf(ayam.ID), Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(125000), tx.TotalPrice)

	var sum int64
	for i, item := range tx.Items {
		assert.Equal(t, i, item.Position)
		sum += int64(item.Quantity) * item.PricePerUnit
	}
	assert.Equal(t, sum, tx.TotalPrice)
	assert.Equal(t, "Ayam Bakar", tx.Items[2].ProductName)
}

func TestLedgerRejectsMissingProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tea := f.product(t, "user_1", "Tea", 10000)
	other := f.product(t, "user_2", "Kopi", 8000)

	_, err := f.svc.Ledger.Create(ctx, "user_1", []ItemInput{
		{ProductID: idOf(tea.ID), Quantity: 1},
		{ProductID: "prod_x", Quantity: 1},
		{ProductID: idOf(other.ID), Quantity: 1},
	})
	assertCode(t, err, apperr.CodeProductNotFound)
	assert.Contains(t, err.Error(), "prod_x")

	_, err = f.svc.Ledger.Create(ctx, "user_1", []ItemInput{{ProductID: idOf(other.ID), Quantity: 1}})
	assertCode(t, err, apperr.CodeProductNotFound)

	txs, err := f.svc.Ledger.List(ctx, "user_1", repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestLedgerValidatesItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tea := f.product(t, "user_1", "Tea", 10000)

	bad := [][]ItemInput{
		nil,
		{{ProductID: "", Quantity: 1}},
		{{ProductID: idOf(tea.ID), Quantity: 0}},
		{{ProductID: idOf(tea.ID), Quantity: -2}},
		{{ProductID: idOf(tea.ID), Quantity: 1.5}},
	}
	for _, items := range bad {
		_, err := f.svc.Ledger.Create(ctx, "user_1", items)
		assertCode(t, err, apperr.CodeInvalidRequest)
	}
}

func TestLedgerRejectsOverflowingTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gold := f.product(t, "user_1", "Emas Batangan", MaxPrice)

	_, err := f.svc.Ledger.Create(ctx, "user_1", []ItemInput{{ProductID: idOf(gold.ID), Quantity: math.MaxInt32}})
	assertCode(t, err, apperr.CodeInvalidRequest)

	// stored before the price cap existed
	huge := &domain.Product{ID: 77, UserID: "user_1", Name: "Legacy", Price: math.MaxInt64 / 2}
	require.NoError(t, f.store.Products().Create(ctx, huge))
	_, err = f.svc.Ledger.Create(ctx, "user_1", []ItemInput{
		{ProductID: idOf(huge.ID), Quantity: 1},
		{ProductID: idOf(huge.ID), Quantity: 1},
		{ProductID: idOf(huge.ID), Quantity: 1},
	})
	assertCode(t, err, apperr.CodeInvalidRequest)

	txs, err := f.svc.Ledger.List(ctx, "user_1", repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)

	tx, err := f.svc.Ledger.Create(ctx, "user_1", []ItemInput{{ProductID: idOf(gold.ID), Quantity: 1000}})
	require.NoError(t, err)
	assert.Equal(t, int64(MaxPrice)*1000, tx.TotalPrice)
}

func TestLedgerPriceChangeAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tea := f.product(t, "user_1", "Tea", 10000)

	tx, err := f.svc.Ledger.Create(ctx, "user_1", []ItemInput{{ProductID: idOf(tea.ID), Quantity: 3}})
	require.NoError(t, err)
	created := tx.Timestamp

	_, err = f.svc.Catalog.Update(ctx, "user_1", tea.ID, map[string]interface{}{"price": 12000.0})
	require.NoError(t, err)

	stored, err := f.svc.Ledger.Get(ctx, "user_1", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), stored.TotalPrice)
	assert.Equal(t, int64(10000), stored.Items[0].PricePerUnit)

	f.svc.Ledger.now = func() time.Time { return created.Add(time.Hour) }
	updated, err := f.svc.Ledger.Update(ctx, "user_1", tx.ID, []ItemInput{{ProductID: idOf(tea.ID), Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(24000), updated.TotalPrice)

	stored, err = f.svc.Ledger.Get(ctx, "user_1", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(24000), stored.TotalPrice)
	assert.True(t, stored.Timestamp.Equal(created))
}

func TestLedgerScopedAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tea := f.product(t, "user_1", "Tea", 10000)
	tx, err := f.svc.Ledger.Create(ctx, "user_1", []ItemInput{{ProductID: idOf(tea.ID), Quantity: 1}})
	require.NoError(t, err)

	_, err = f.svc.Ledger.Get(ctx, "user_2", tx.ID)
	assertCode(t, err, apperr.CodeTxNotFound)
	_, err = f.svc.Ledger.Update(ctx, "user_2", tx.ID, []ItemInput{{ProductID: idOf(tea.ID), Quantity: 1}})
	assertCode(t, err, apperr.CodeTxNotFound)
	assertCode(t, f.svc.Ledger.Delete(ctx, "user_2", tx.ID), apperr.CodeTxNotFound)

	require.NoError(t, f.svc.Ledger.Delete(ctx, "user_1", tx.ID))
	assertCode(t, f.svc.Ledger.Delete(ctx, "user_1", tx.ID), apperr.CodeTxNotFound)

	actions := make([]string, 0)
	for _, ev := range f.bus.events {
		if ev.Target == "transaction" {
			actions = append(actions, ev.Action)
		}
	}
	assert.Equal(t, []string{"create", "delete"}, actions)
}
