package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseOrderColumns = `id, user_id, supplier_id, status_id, purchase_order_date, subtotal, total_amount, notes, created_at, updated_at`

// PurchaseOrderRepo persistencia de órdenes de compra (usable con pool o tx).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create inserta la cabecera. StatusID 0 se guarda como NULL.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	query := `INSERT INTO purchase_orders (` + purchaseOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.UserID, o.SupplierID, nullableInt(o.StatusID), o.OrderDate, o.Subtotal, o.TotalAmount,
		nullable(o.Notes), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return classify("insert purchase order", err)
	}
	return nil
}

// GetByID obtiene la cabecera por ID.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1`, id)
}

// GetForUpdate obtiene la cabecera y bloquea la fila.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseOrderRepo) get(ctx context.Context, query, id string) (*entity.PurchaseOrder, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var o entity.PurchaseOrder
	var statusID *int
	var notes *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.UserID, &o.SupplierID, &statusID, &o.OrderDate, &o.Subtotal, &o.TotalAmount,
		&notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get purchase order", err)
	}
	if statusID != nil {
		o.StatusID = *statusID
	}
	if notes != nil {
		o.Notes = *notes
	}
	return &o, nil
}

// Update actualiza la cabecera.
func (r *PurchaseOrderRepo) Update(ctx context.Context, o *entity.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders
		SET supplier_id = $2, status_id = $3, purchase_order_date = $4, subtotal = $5, total_amount = $6, notes = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		o.ID, o.SupplierID, nullableInt(o.StatusID), o.OrderDate, o.Subtotal, o.TotalAmount, nullable(o.Notes), o.UpdatedAt,
	)
	if err != nil {
		return classify("update purchase order", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update purchase order: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete elimina la orden; purchase_order_products se elimina por ON DELETE CASCADE.
func (r *PurchaseOrderRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id); err != nil {
		return classify("delete purchase order", err)
	}
	return nil
}

// GetLines devuelve las líneas de la orden ordenadas por producto.
func (r *PurchaseOrderRepo) GetLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error) {
	return purchaseLines.get(ctx, r.q, orderID)
}

// ReplaceLines reemplaza todas las líneas (delete-all-then-reinsert).
func (r *PurchaseOrderRepo) ReplaceLines(ctx context.Context, orderID string, lines []*entity.OrderLine) error {
	return purchaseLines.replace(ctx, r.q, orderID, lines)
}

// LatestOrderIDForProduct orden de compra más reciente del usuario que incluye el producto.
// Desempate por created_at e id para que el resultado sea determinista.
func (r *PurchaseOrderRepo) LatestOrderIDForProduct(ctx context.Context, userID, productID string) (string, error) {
	query := `
		SELECT po.id
		FROM purchase_orders po
		JOIN purchase_order_products pop ON pop.purchase_order_id = po.id
		WHERE pop.product_id = $1 AND po.user_id = $2
		ORDER BY po.purchase_order_date DESC, po.created_at DESC, po.id DESC
		LIMIT 1`
	var id string
	err := r.q.QueryRow(ctx, query, productID, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", classify("latest purchase order", err)
	}
	return id, nil
}

func nullableInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
