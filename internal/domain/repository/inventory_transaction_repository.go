package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// InventoryTransactionRepository puerto del libro de inventario. Solo inserción y lectura:
// las entradas son inmutables.
type InventoryTransactionRepository interface {
	Create(ctx context.Context, tx *entity.InventoryTransaction) error
	// ListByProduct ordena de la más reciente a la más antigua.
	ListByProduct(ctx context.Context, userID, productID string) ([]*entity.InventoryTransaction, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.InventoryTransaction, error)
}
