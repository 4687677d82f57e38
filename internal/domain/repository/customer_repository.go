package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// CustomerRepository puerto de lectura de clientes (contraparte de ventas).
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}

// SupplierRepository puerto de lectura de proveedores (contraparte de compras).
type SupplierRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
}

// StatusRepository vocabulario de estados: id -> nombre canónico. Solo lectura.
type StatusRepository interface {
	GetByID(ctx context.Context, id int) (*entity.OrderStatus, error)
}
