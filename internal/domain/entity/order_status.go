package entity

// Nombres canónicos de estado (tabla status_types).
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusOrdered   = "ordered"  // compra emitida al proveedor
	StatusReceived  = "received" // compra recibida
)

// OrderStatus es una entrada del vocabulario de estados.
type OrderStatus struct {
	ID   int
	Name string
}

// IsConfirmed indica si el estado mueve stock en órdenes de venta.
func (s OrderStatus) IsConfirmed() bool {
	return s.Name == StatusConfirmed
}
