package inventory

import (
	"sort"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Line cantidad y precio de un producto dentro de una orden.
type Line struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// LineSet conjunto de líneas de una orden indexado por producto. El producto es la única clave.
type LineSet struct {
	byProduct map[string]Line
}

// NewLineSet valida y construye el conjunto. Falla si un producto aparece dos veces
// o si alguna cantidad no es positiva.
func NewLineSet(lines []Line) (LineSet, error) {
	set := LineSet{byProduct: make(map[string]Line, len(lines))}
	for _, l := range lines {
		if l.ProductID == "" {
			return LineSet{}, domain.Invalid("product_id", "requerido")
		}
		if l.Quantity <= 0 {
			return LineSet{}, domain.Invalid("quantity", "debe ser mayor que cero")
		}
		if _, dup := set.byProduct[l.ProductID]; dup {
			return LineSet{}, domain.Invalid("items", "producto repetido "+l.ProductID)
		}
		set.byProduct[l.ProductID] = l
	}
	return set, nil
}

// Len número de productos distintos.
func (s LineSet) Len() int { return len(s.byProduct) }

// Quantity devuelve la cantidad del producto (0 si no está).
func (s LineSet) Quantity(productID string) int {
	return s.byProduct[productID].Quantity
}

// Get devuelve la línea del producto.
func (s LineSet) Get(productID string) (Line, bool) {
	l, ok := s.byProduct[productID]
	return l, ok
}

// ProductIDs devuelve los productos ordenados.
func (s LineSet) ProductIDs() []string {
	ids := make([]string, 0, len(s.byProduct))
	for id := range s.byProduct {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lines devuelve las líneas ordenadas por producto.
func (s LineSet) Lines() []Line {
	out := make([]Line, 0, len(s.byProduct))
	for _, id := range s.ProductIDs() {
		out = append(out, s.byProduct[id])
	}
	return out
}

// LineDelta cambio de cantidad de un producto entre dos conjuntos de líneas.
type LineDelta struct {
	ProductID   string
	OldQuantity int
	NewQuantity int
}

// Delta = NewQuantity - OldQuantity.
func (d LineDelta) Delta() int { return d.NewQuantity - d.OldQuantity }

// IsZero indica que la cantidad no cambió.
func (d LineDelta) IsZero() bool { return d.Delta() == 0 }

// Diff calcula, para cada producto presente en old o en next, la diferencia de cantidad.
// La ausencia cuenta como cantidad 0. El resultado está ordenado por producto.
// Crear una orden es Diff(vacío, nuevas); eliminarla es Diff(anteriores, vacío).
func Diff(old, next LineSet) []LineDelta {
	seen := make(map[string]struct{}, old.Len()+next.Len())
	ids := make([]string, 0, old.Len()+next.Len())
	for _, set := range []LineSet{old, next} {
		for id := range set.byProduct {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	deltas := make([]LineDelta, 0, len(ids))
	for _, id := range ids {
		deltas = append(deltas, LineDelta{
			ProductID:   id,
			OldQuantity: old.Quantity(id),
			NewQuantity: next.Quantity(id),
		})
	}
	return deltas
}
