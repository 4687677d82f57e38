package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.InventoryTransactionRepository = (*InventoryTransactionRepo)(nil)

const transactionColumns = `id, user_id, product_id, quantity, transaction_type, previous_stock, new_stock,
	order_id, sales_order_product_id, purchase_order_product_id, created_at`

// InventoryTransactionRepo libro de inventario sobre PostgreSQL. Solo INSERT y SELECT;
// un trigger en la tabla rechaza UPDATE y DELETE.
type InventoryTransactionRepo struct {
	q Querier
}

// NewInventoryTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryTransactionRepository(q Querier) *InventoryTransactionRepo {
	return &InventoryTransactionRepo{q: q}
}

// Create inserta una entrada del libro.
func (r *InventoryTransactionRepo) Create(ctx context.Context, t *entity.InventoryTransaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `INSERT INTO inventory_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.UserID, t.ProductID, t.Quantity, string(t.Type), t.PreviousStock, t.NewStock,
		t.OrderID, t.SalesOrderLineID, t.PurchaseOrderLineID, t.CreatedAt,
	)
	if err != nil {
		return classify("insert inventory transaction", err)
	}
	return nil
}

// ListByProduct entradas del producto del usuario, de la más reciente a la más antigua.
func (r *InventoryTransactionRepo) ListByProduct(ctx context.Context, userID, productID string) ([]*entity.InventoryTransaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM inventory_transactions
		WHERE user_id = $1 AND product_id = $2
		ORDER BY created_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, userID, productID)
	if err != nil {
		return nil, classify("list inventory transactions", err)
	}
	return scanTransactions(rows)
}

// ListByUser entradas del usuario paginadas, de la más reciente a la más antigua.
func (r *InventoryTransactionRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.InventoryTransaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM inventory_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, classify("list inventory transactions", err)
	}
	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]*entity.InventoryTransaction, error) {
	defer rows.Close()
	var list []*entity.InventoryTransaction
	for rows.Next() {
		var t entity.InventoryTransaction
		var typ string
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.ProductID, &t.Quantity, &typ, &t.PreviousStock, &t.NewStock,
			&t.OrderID, &t.SalesOrderLineID, &t.PurchaseOrderLineID, &t.CreatedAt,
		); err != nil {
			return nil, classify("scan inventory transaction", err)
		}
		t.Type = entity.TransactionType(typ)
		list = append(list, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list inventory transactions", err)
	}
	return list, nil
}
