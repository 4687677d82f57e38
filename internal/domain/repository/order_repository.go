package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// SalesOrderRepository puerto de persistencia de órdenes de venta y sus líneas.
type SalesOrderRepository interface {
	Create(ctx context.Context, order *entity.SalesOrder) error
	GetByID(ctx context.Context, id string) (*entity.SalesOrder, error)
	// GetForUpdate bloquea la cabecera para serializar ediciones concurrentes de la misma orden.
	GetForUpdate(ctx context.Context, id string) (*entity.SalesOrder, error)
	Update(ctx context.Context, order *entity.SalesOrder) error
	// Delete elimina la orden; las líneas se eliminan en cascada.
	Delete(ctx context.Context, id string) error
	GetLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error)
	// ReplaceLines borra todas las líneas de la orden e inserta las nuevas (asigna IDs).
	ReplaceLines(ctx context.Context, orderID string, lines []*entity.OrderLine) error
}

// PurchaseOrderRepository puerto de persistencia de órdenes de compra y sus líneas.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	Update(ctx context.Context, order *entity.PurchaseOrder) error
	Delete(ctx context.Context, id string) error
	GetLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error)
	ReplaceLines(ctx context.Context, orderID string, lines []*entity.OrderLine) error
	// LatestOrderIDForProduct devuelve la orden de compra más reciente (por fecha de orden)
	// del usuario que incluye el producto, o "" si no hay ninguna.
	LatestOrderIDForProduct(ctx context.Context, userID, productID string) (string, error)
}
