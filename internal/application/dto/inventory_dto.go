package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// AdjustStockRequest body para POST /api/inventory/adjustments. Type vacío = adjustment.
type AdjustStockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Type      string `json:"type,omitempty"`
}

// Input convierte el body al caso de uso.
func (r AdjustStockRequest) Input() inventory.AdjustStockInput {
	t := entity.TransactionType(r.Type)
	if r.Type == "" {
		t = entity.TransactionAdjustment
	}
	return inventory.AdjustStockInput{ProductID: r.ProductID, Quantity: r.Quantity, Type: t}
}

// AvailabilityRequest query de GET /api/products/:id/availability.
type AvailabilityRequest struct {
	Quantity int `query:"quantity"`
}

// AvailabilityResponse disponibilidad de un producto para una cantidad.
type AvailabilityResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Available bool   `json:"available"`
}

// TransactionResponse entrada del libro de inventario.
type TransactionResponse struct {
	ID                  string    `json:"id"`
	ProductID           string    `json:"product_id"`
	Quantity            int       `json:"quantity"`
	Type                string    `json:"type"`
	PreviousStock       int       `json:"previous_stock"`
	NewStock            int       `json:"new_stock"`
	OrderID             *string   `json:"order_id,omitempty"`
	SalesOrderLineID    *string   `json:"sales_order_product_id,omitempty"`
	PurchaseOrderLineID *string   `json:"purchase_order_product_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// TransactionListResponse página de transacciones del usuario.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// NewTransactionResponse mapea una entrada del libro.
func NewTransactionResponse(t *entity.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:                  t.ID,
		ProductID:           t.ProductID,
		Quantity:            t.Quantity,
		Type:                string(t.Type),
		PreviousStock:       t.PreviousStock,
		NewStock:            t.NewStock,
		OrderID:             t.OrderID,
		SalesOrderLineID:    t.SalesOrderLineID,
		PurchaseOrderLineID: t.PurchaseOrderLineID,
		CreatedAt:           t.CreatedAt,
	}
}

// NewTransactionResponses mapea una lista; nunca devuelve nil para que el JSON sea [].
func NewTransactionResponses(list []*entity.InventoryTransaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, NewTransactionResponse(t))
	}
	return out
}
