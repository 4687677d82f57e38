package inventory

import "github.com/shopspring/decimal"

// ShouldRaisePrice decide si una línea de compra recibida actualiza el precio de catálogo.
// Solo la orden de compra más reciente del producto puede subirlo, y nunca lo baja.
func ShouldRaisePrice(isLatestOrder bool, linePrice, currentPrice decimal.Decimal) bool {
	return isLatestOrder && linePrice.GreaterThan(currentPrice)
}
