package inventory

import (
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockChange movimiento de stock que la política exige para un producto.
// Delta positivo devuelve unidades al stock; negativo las consume.
type StockChange struct {
	ProductID string
	Delta     int
	Type      entity.TransactionType
}

// salesStatus valida que el nombre pertenezca al ciclo de vida de ventas.
func salesStatus(name string) (confirmed bool, err error) {
	switch name {
	case entity.StatusConfirmed:
		return true, nil
	case entity.StatusPending, entity.StatusCancelled:
		return false, nil
	}
	return false, domain.Invalid("status", "estado de venta desconocido "+name)
}

// PlanSalesCreate: solo una orden creada como confirmed descuenta stock.
func PlanSalesCreate(status string, lines LineSet) ([]StockChange, error) {
	confirmed, err := salesStatus(status)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, nil
	}
	return consume(lines, entity.TransactionSale), nil
}

// PlanSalesUpdate deriva los movimientos de una edición según la transición de estado.
//
//	confirmed -> confirmed: solo la diferencia por producto (tipo sale)
//	confirmed -> pending|cancelled: devuelve todas las cantidades anteriores (adjustment)
//	pending|cancelled -> confirmed: consume todas las cantidades nuevas (sale)
//	pending|cancelled -> pending|cancelled: sin efecto
func PlanSalesUpdate(from, to string, old, next LineSet) ([]StockChange, error) {
	wasConfirmed, err := salesStatus(from)
	if err != nil {
		return nil, err
	}
	isConfirmed, err := salesStatus(to)
	if err != nil {
		return nil, err
	}

	switch {
	case wasConfirmed && isConfirmed:
		var changes []StockChange
		for _, d := range Diff(old, next) {
			if d.IsZero() {
				continue
			}
			changes = append(changes, StockChange{ProductID: d.ProductID, Delta: -d.Delta(), Type: entity.TransactionSale})
		}
		return changes, nil
	case wasConfirmed:
		return restock(old, entity.TransactionAdjustment), nil
	case isConfirmed:
		return consume(next, entity.TransactionSale), nil
	}
	return nil, nil
}

// PlanSalesDelete: eliminar una orden confirmed devuelve todas sus cantidades.
func PlanSalesDelete(status string, lines LineSet) ([]StockChange, error) {
	confirmed, err := salesStatus(status)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, nil
	}
	return restock(lines, entity.TransactionAdjustment), nil
}

// PlanPurchaseReceipt: las compras siempre mueven stock, sin depender del estado.
// Crear es Diff(vacío, nuevas); editar aplica solo la diferencia.
func PlanPurchaseReceipt(old, next LineSet) []StockChange {
	var changes []StockChange
	for _, d := range Diff(old, next) {
		if d.IsZero() {
			continue
		}
		changes = append(changes, StockChange{ProductID: d.ProductID, Delta: d.Delta(), Type: entity.TransactionPurchase})
	}
	return changes
}

// PlanPurchaseDelete retira del stock lo recibido por la orden eliminada.
func PlanPurchaseDelete(lines LineSet) []StockChange {
	return consume(lines, entity.TransactionPurchaseReturn)
}

func consume(lines LineSet, t entity.TransactionType) []StockChange {
	changes := make([]StockChange, 0, lines.Len())
	for _, l := range lines.Lines() {
		changes = append(changes, StockChange{ProductID: l.ProductID, Delta: -l.Quantity, Type: t})
	}
	return changes
}

func restock(lines LineSet, t entity.TransactionType) []StockChange {
	changes := make([]StockChange, 0, lines.Len())
	for _, l := range lines.Lines() {
		changes = append(changes, StockChange{ProductID: l.ProductID, Delta: l.Quantity, Type: t})
	}
	return changes
}
