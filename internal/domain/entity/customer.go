package entity

import "time"

// Customer representa un cliente del usuario (contraparte de órdenes de venta).
type Customer struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Supplier representa un proveedor del usuario (contraparte de órdenes de compra).
type Supplier struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
