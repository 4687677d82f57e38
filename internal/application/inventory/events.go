package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// LedgerPublisher difunde entradas del libro ya confirmadas (p. ej. a Kafka).
// Se invoca después del Commit: un fallo no revierte el movimiento.
type LedgerPublisher interface {
	PublishLedger(ctx context.Context, entries []*entity.InventoryTransaction) error
}

// LedgerEvent forma serializada de una entrada del libro para consumidores externos.
type LedgerEvent struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	ProductID           string    `json:"product_id"`
	Type                string    `json:"type"`
	Quantity            int       `json:"quantity"`
	PreviousStock       int       `json:"previous_stock"`
	NewStock            int       `json:"new_stock"`
	OrderID             *string   `json:"order_id,omitempty"`
	SalesOrderLineID    *string   `json:"sales_order_product_id,omitempty"`
	PurchaseOrderLineID *string   `json:"purchase_order_product_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// NewLedgerEvent arma el evento de una entrada.
func NewLedgerEvent(e *entity.InventoryTransaction) LedgerEvent {
	return LedgerEvent{
		ID:                  e.ID,
		UserID:              e.UserID,
		ProductID:           e.ProductID,
		Type:                string(e.Type),
		Quantity:            e.Quantity,
		PreviousStock:       e.PreviousStock,
		NewStock:            e.NewStock,
		OrderID:             e.OrderID,
		SalesOrderLineID:    e.SalesOrderLineID,
		PurchaseOrderLineID: e.PurchaseOrderLineID,
		CreatedAt:           e.CreatedAt,
	}
}

// SetPublisher instala el difusor de entradas confirmadas (nil = ninguno).
func (l *StockLedger) SetPublisher(p LedgerPublisher) {
	l.publisher = p
}

// Publish difunde entradas ya confirmadas. Los errores solo se registran.
func (l *StockLedger) Publish(ctx context.Context, entries []*entity.InventoryTransaction) {
	if l.publisher == nil || len(entries) == 0 {
		return
	}
	if err := l.publisher.PublishLedger(ctx, entries); err != nil {
		l.log.Error().Err(err).Int("entries", len(entries)).Msg("no se pudieron publicar las entradas del libro")
	}
}
