package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Se redondea a 4 decimales.
func CostCalculator(stockActual int, costoActual decimal.Decimal, cantEntrada int, costoEntrada decimal.Decimal) decimal.Decimal {
	if cantEntrada <= 0 {
		return costoActual
	}
	if stockActual < 0 {
		stockActual = 0
	}
	stock := decimal.NewFromInt(int64(stockActual))
	entrada := decimal.NewFromInt(int64(cantEntrada))
	sum := stock.Add(entrada)
	num := stock.Mul(costoActual).Add(entrada.Mul(costoEntrada))
	return num.Div(sum).Round(4)
}
