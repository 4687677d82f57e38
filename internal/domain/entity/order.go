package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrder cabecera de una orden de venta.
type SalesOrder struct {
	ID          string
	UserID      string
	CustomerID  string
	StatusID    int
	OrderDate   time.Time
	Subtotal    decimal.Decimal
	TotalAmount decimal.Decimal
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PurchaseOrder cabecera de una orden de compra. StatusID es opcional (0 = sin estado).
type PurchaseOrder struct {
	ID          string
	UserID      string
	SupplierID  string
	StatusID    int
	OrderDate   time.Time
	Subtotal    decimal.Decimal
	TotalAmount decimal.Decimal
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderLine línea de una orden (venta o compra). Pertenece a una sola orden y referencia un producto.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Amount devuelve Quantity * UnitPrice.
func (l OrderLine) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
