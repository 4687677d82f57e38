package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// lineTable describe la tabla de líneas de un tipo de orden.
type lineTable struct {
	name     string // sales_order_products | purchase_order_products
	orderCol string // sales_order_id | purchase_order_id
}

var (
	salesLines    = lineTable{name: "sales_order_products", orderCol: "sales_order_id"}
	purchaseLines = lineTable{name: "purchase_order_products", orderCol: "purchase_order_id"}
)

func (t lineTable) get(ctx context.Context, q Querier, orderID string) ([]*entity.OrderLine, error) {
	query := fmt.Sprintf(`
		SELECT id, %[2]s, product_id, quantity, unit_price
		FROM %[1]s WHERE %[2]s = $1 ORDER BY product_id`, t.name, t.orderCol)
	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, classify("list "+t.name, err)
	}
	defer rows.Close()
	var list []*entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, classify("scan "+t.name, err)
		}
		list = append(list, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list "+t.name, err)
	}
	return list, nil
}

// replace borra todas las líneas de la orden e inserta las nuevas en un solo batch.
func (t lineTable) replace(ctx context.Context, q Querier, orderID string, lines []*entity.OrderLine) error {
	if _, err := q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.name, t.orderCol), orderID); err != nil {
		return classify("delete "+t.name, err)
	}
	if len(lines) == 0 {
		return nil
	}
	insert := fmt.Sprintf(`
		INSERT INTO %s (id, %s, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`, t.name, t.orderCol)
	batch := &pgx.Batch{}
	for _, l := range lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.OrderID = orderID
		batch.Queue(insert, l.ID, orderID, l.ProductID, l.Quantity, l.UnitPrice)
	}
	sender, ok := q.(interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	})
	if !ok {
		for _, l := range lines {
			if _, err := q.Exec(ctx, insert, l.ID, orderID, l.ProductID, l.Quantity, l.UnitPrice); err != nil {
				return classify("insert "+t.name, err)
			}
		}
		return nil
	}
	br := sender.SendBatch(ctx, batch)
	for range lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return classify("insert "+t.name, err)
		}
	}
	if err := br.Close(); err != nil {
		return classify("insert "+t.name, err)
	}
	return nil
}
