package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// UpdateStock fija la cantidad en existencia. Solo la usa el libro de inventario.
	UpdateStock(ctx context.Context, id string, quantity int) error
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error
	HasSufficientStock(ctx context.Context, id, userID string, quantity int) (bool, error)
}
