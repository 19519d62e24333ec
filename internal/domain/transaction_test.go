package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionRecalculate(t *testing.T) {
	tx := Transaction{
		ID: 42,
		Items: []TransactionItem{
			{ProductID: 1, Quantity: 2, PricePerUnit: 25000},
			{ProductID: 2, Quantity: 3, PricePerUnit: 10000},
			{ProductID: 3, Quantity: 1, PricePerUnit: 45000},
		},
	}
	tx.Recalculate()

	assert.Equal(t, int64(125000), tx.TotalPrice)
	assert.Equal(t, int64(50000), tx.Items[0].TotalPrice)
	assert.Equal(t, int64(30000), tx.Items[1].TotalPrice)
	for i, item := range tx.Items {
		assert.Equal(t, i, item.Position)
		assert.Equal(t, int64(42), item.TransactionID)
	}
}

func TestTransactionRecalculateEmpty(t *testing.T) {
	tx := Transaction{TotalPrice: 99}
	tx.Recalculate()
	assert.Zero(t, tx.TotalPrice)
}
