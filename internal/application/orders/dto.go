package orders

import (
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LineInput línea de orden recibida del caller.
type LineInput struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreateSalesOrderInput datos para crear una orden de venta. StatusID es obligatorio.
type CreateSalesOrderInput struct {
	CustomerID string
	StatusID   int
	OrderDate  *time.Time // nil = ahora
	Notes      string
	Items      []LineInput
}

// UpdateSalesOrderInput edición de una orden de venta. Campos vacíos conservan el valor actual;
// Items vacío conserva las líneas y los totales.
type UpdateSalesOrderInput struct {
	CustomerID string
	StatusID   int
	OrderDate  *time.Time
	Notes      *string
	Items      []LineInput
}

// CreatePurchaseOrderInput datos para crear una orden de compra. StatusID es opcional.
type CreatePurchaseOrderInput struct {
	SupplierID string
	StatusID   int
	OrderDate  *time.Time
	Notes      string
	Items      []LineInput
}

// UpdatePurchaseOrderInput edición de una orden de compra. Mismas reglas que UpdateSalesOrderInput.
type UpdatePurchaseOrderInput struct {
	SupplierID string
	StatusID   int
	OrderDate  *time.Time
	Notes      *string
	Items      []LineInput
}

// OrderResult orden persistida con sus líneas y las entradas del libro que generó la operación.
type OrderResult[O any] struct {
	Order        *O
	Lines        []*entity.OrderLine
	Transactions []*entity.InventoryTransaction
}

// SalesOrderResult resultado de operaciones sobre órdenes de venta.
type SalesOrderResult = OrderResult[entity.SalesOrder]

// PurchaseOrderResult resultado de operaciones sobre órdenes de compra.
type PurchaseOrderResult = OrderResult[entity.PurchaseOrder]
