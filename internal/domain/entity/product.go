package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity tope de existencias y de cantidad por línea (columna INTEGER).
const MaxQuantity = math.MaxInt32

// Product representa un producto del catálogo de un usuario.
// Quantity solo se modifica a través del libro de inventario (ver application/inventory.StockLedger).
type Product struct {
	ID          string
	UserID      string
	Name        string
	Description string
	UnitPrice   decimal.Decimal // precio de venta de catálogo
	UnitCost    decimal.Decimal // costo promedio ponderado
	Quantity    int             // existencias; nunca negativa después de un commit
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasStock indica si hay al menos qty unidades disponibles.
func (p *Product) HasStock(qty int) bool {
	return p.Quantity >= qty
}
