package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/orders"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de orden en el body.
type OrderLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSalesOrderRequest body para POST /api/sales-orders.
type CreateSalesOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	StatusID   int                `json:"status_id"`
	OrderDate  *time.Time         `json:"order_date,omitempty"`
	Notes      string             `json:"notes"`
	Items      []OrderLineRequest `json:"items"`
}

// UpdateSalesOrderRequest body para PUT /api/sales-orders/:id. Campos omitidos conservan el valor actual.
type UpdateSalesOrderRequest struct {
	CustomerID string             `json:"customer_id,omitempty"`
	StatusID   int                `json:"status_id,omitempty"`
	OrderDate  *time.Time         `json:"order_date,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
	Items      []OrderLineRequest `json:"items,omitempty"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID string             `json:"supplier_id"`
	StatusID   int                `json:"status_id,omitempty"`
	OrderDate  *time.Time         `json:"order_date,omitempty"`
	Notes      string             `json:"notes"`
	Items      []OrderLineRequest `json:"items"`
}

// UpdatePurchaseOrderRequest body para PUT /api/purchase-orders/:id.
type UpdatePurchaseOrderRequest struct {
	SupplierID string             `json:"supplier_id,omitempty"`
	StatusID   int                `json:"status_id,omitempty"`
	OrderDate  *time.Time         `json:"order_date,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
	Items      []OrderLineRequest `json:"items,omitempty"`
}

func lineInputs(items []OrderLineRequest) []orders.LineInput {
	if len(items) == 0 {
		return nil
	}
	out := make([]orders.LineInput, len(items))
	for i, it := range items {
		out[i] = orders.LineInput{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return out
}

// Input convierte el body al caso de uso.
func (r CreateSalesOrderRequest) Input() orders.CreateSalesOrderInput {
	return orders.CreateSalesOrderInput{
		CustomerID: r.CustomerID,
		StatusID:   r.StatusID,
		OrderDate:  r.OrderDate,
		Notes:      r.Notes,
		Items:      lineInputs(r.Items),
	}
}

// Input convierte el body al caso de uso.
func (r UpdateSalesOrderRequest) Input() orders.UpdateSalesOrderInput {
	return orders.UpdateSalesOrderInput{
		CustomerID: r.CustomerID,
		StatusID:   r.StatusID,
		OrderDate:  r.OrderDate,
		Notes:      r.Notes,
		Items:      lineInputs(r.Items),
	}
}

// Input convierte el body al caso de uso.
func (r CreatePurchaseOrderRequest) Input() orders.CreatePurchaseOrderInput {
	return orders.CreatePurchaseOrderInput{
		SupplierID: r.SupplierID,
		StatusID:   r.StatusID,
		OrderDate:  r.OrderDate,
		Notes:      r.Notes,
		Items:      lineInputs(r.Items),
	}
}

// Input convierte el body al caso de uso.
func (r UpdatePurchaseOrderRequest) Input() orders.UpdatePurchaseOrderInput {
	return orders.UpdatePurchaseOrderInput{
		SupplierID: r.SupplierID,
		StatusID:   r.StatusID,
		OrderDate:  r.OrderDate,
		Notes:      r.Notes,
		Items:      lineInputs(r.Items),
	}
}

// OrderLineResponse línea persistida.
type OrderLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// SalesOrderResponse orden de venta con sus líneas y las entradas del libro que generó la operación.
type SalesOrderResponse struct {
	ID           string                `json:"id"`
	CustomerID   string                `json:"customer_id"`
	StatusID     int                   `json:"status_id"`
	OrderDate    time.Time             `json:"order_date"`
	Subtotal     decimal.Decimal       `json:"subtotal"`
	TotalAmount  decimal.Decimal       `json:"total_amount"`
	Notes        string                `json:"notes,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Lines        []OrderLineResponse   `json:"lines"`
	Transactions []TransactionResponse `json:"transactions"`
}

// PurchaseOrderResponse orden de compra. status_id se omite si la orden no tiene estado.
type PurchaseOrderResponse struct {
	ID           string                `json:"id"`
	SupplierID   string                `json:"supplier_id"`
	StatusID     int                   `json:"status_id,omitempty"`
	OrderDate    time.Time             `json:"order_date"`
	Subtotal     decimal.Decimal       `json:"subtotal"`
	TotalAmount  decimal.Decimal       `json:"total_amount"`
	Notes        string                `json:"notes,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Lines        []OrderLineResponse   `json:"lines"`
	Transactions []TransactionResponse `json:"transactions"`
}

func lineResponses(lines []*entity.OrderLine) []OrderLineResponse {
	out := make([]OrderLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, OrderLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount(),
		})
	}
	return out
}

// NewSalesOrderResponse arma la respuesta a partir del resultado del caso de uso.
func NewSalesOrderResponse(res *orders.SalesOrderResult) SalesOrderResponse {
	o := res.Order
	return SalesOrderResponse{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		StatusID:     o.StatusID,
		OrderDate:    o.OrderDate,
		Subtotal:     o.Subtotal,
		TotalAmount:  o.TotalAmount,
		Notes:        o.Notes,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		Lines:        lineResponses(res.Lines),
		Transactions: NewTransactionResponses(res.Transactions),
	}
}

// NewPurchaseOrderResponse arma la respuesta a partir del resultado del caso de uso.
func NewPurchaseOrderResponse(res *orders.PurchaseOrderResult) PurchaseOrderResponse {
	o := res.Order
	return PurchaseOrderResponse{
		ID:           o.ID,
		SupplierID:   o.SupplierID,
		StatusID:     o.StatusID,
		OrderDate:    o.OrderDate,
		Subtotal:     o.Subtotal,
		TotalAmount:  o.TotalAmount,
		Notes:        o.Notes,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		Lines:        lineResponses(res.Lines),
		Transactions: NewTransactionResponses(res.Transactions),
	}
}
