package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestAdjustStock_ConteoFisicoYMerma(t *testing.T) {
	f := newLedgerFixture(t)
	p := f.product(10)
	ctx := context.Background()

	e, err := f.ledger.AdjustStock(ctx, f.userID, inventory.AdjustStockInput{ProductID: p, Quantity: 5, Type: entity.TransactionAdjustment})
	require.NoError(t, err)
	assert.Equal(t, 15, e.NewStock)

	e, err = f.ledger.AdjustStock(ctx, f.userID, inventory.AdjustStockInput{ProductID: p, Quantity: -3, Type: entity.TransactionLoss})
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionLoss, e.Type)
	assert.Equal(t, 12, f.stock(p))
	assert.Len(t, f.store.Ledger(), 2)
}

func TestAdjustStock_Rechazos(t *testing.T) {
	f := newLedgerFixture(t)
	p := f.product(2)
	ctx := context.Background()

	cases := []struct {
		name string
		in   inventory.AdjustStockInput
		want error
	}{
		{"cantidad cero", inventory.AdjustStockInput{ProductID: p, Quantity: 0, Type: entity.TransactionAdjustment}, domain.ErrInvalidInput},
		{"merma positiva", inventory.AdjustStockInput{ProductID: p, Quantity: 1, Type: entity.TransactionLoss}, domain.ErrInvalidInput},
		{"tipo de orden", inventory.AdjustStockInput{ProductID: p, Quantity: 1, Type: entity.TransactionSale}, domain.ErrInvalidInput},
		{"sin producto", inventory.AdjustStockInput{Quantity: 1, Type: entity.TransactionAdjustment}, domain.ErrInvalidInput},
		{"fuera de rango", inventory.AdjustStockInput{ProductID: p, Quantity: entity.MaxQuantity + 1, Type: entity.TransactionAdjustment}, domain.ErrInvalidInput},
		{"deja negativo", inventory.AdjustStockInput{ProductID: p, Quantity: -3, Type: entity.TransactionAdjustment}, domain.ErrInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.AdjustStock(ctx, f.userID, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 2, f.stock(p))
	assert.Empty(t, f.store.Ledger())
}
