package entity

import (
	"fmt"
	"time"
)

// TransactionType es la causa de un movimiento de stock. Conjunto cerrado: usar las constantes.
type TransactionType string

const (
	TransactionPurchase       TransactionType = "purchase"
	TransactionSale           TransactionType = "sale"
	TransactionSaleReturn     TransactionType = "sale_return"
	TransactionPurchaseReturn TransactionType = "purchase_return"
	TransactionAdjustment     TransactionType = "adjustment"
	TransactionLoss           TransactionType = "loss"
)

// TransactionTypes lista todos los tipos válidos en el orden de la tabla transaction_types.
var TransactionTypes = []TransactionType{
	TransactionPurchase,
	TransactionSale,
	TransactionSaleReturn,
	TransactionPurchaseReturn,
	TransactionAdjustment,
	TransactionLoss,
}

// Valid indica si t pertenece al conjunto cerrado.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionPurchase, TransactionSale, TransactionSaleReturn,
		TransactionPurchaseReturn, TransactionAdjustment, TransactionLoss:
		return true
	}
	return false
}

// ParseTransactionType convierte un texto en TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("tipo de transacción desconocido: %q", s)
	}
	return t, nil
}

// InventoryTransaction es una entrada inmutable del libro de inventario.
// Quantity positivo = entrada de stock, negativo = salida.
type InventoryTransaction struct {
	ID                  string
	UserID              string
	ProductID           string
	Quantity            int
	Type                TransactionType
	PreviousStock       int
	NewStock            int
	OrderID             *string
	SalesOrderLineID    *string
	PurchaseOrderLineID *string
	CreatedAt           time.Time
}
