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

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

const salesOrderColumns = `id, user_id, customer_id, status_id, order_date, subtotal, total_amount, notes, created_at, updated_at`

// SalesOrderRepo persistencia de órdenes de venta (usable con pool o tx).
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

// Create inserta la cabecera.
func (r *SalesOrderRepo) Create(ctx context.Context, o *entity.SalesOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	query := `INSERT INTO sales_orders (` + salesOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.UserID, o.CustomerID, o.StatusID, o.OrderDate, o.Subtotal, o.TotalAmount,
		nullable(o.Notes), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return classify("insert sales order", err)
	}
	return nil
}

// GetByID obtiene la cabecera por ID.
func (r *SalesOrderRepo) GetByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	return r.get(ctx, `SELECT `+salesOrderColumns+` FROM sales_orders WHERE id = $1`, id)
}

// GetForUpdate obtiene la cabecera y bloquea la fila.
func (r *SalesOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.SalesOrder, error) {
	return r.get(ctx, `SELECT `+salesOrderColumns+` FROM sales_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *SalesOrderRepo) get(ctx context.Context, query, id string) (*entity.SalesOrder, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var o entity.SalesOrder
	var notes *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.UserID, &o.CustomerID, &o.StatusID, &o.OrderDate, &o.Subtotal, &o.TotalAmount,
		&notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get sales order", err)
	}
	if notes != nil {
		o.Notes = *notes
	}
	return &o, nil
}

// Update actualiza la cabecera.
func (r *SalesOrderRepo) Update(ctx context.Context, o *entity.SalesOrder) error {
	query := `
		UPDATE sales_orders
		SET customer_id = $2, status_id = $3, order_date = $4, subtotal = $5, total_amount = $6, notes = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		o.ID, o.CustomerID, o.StatusID, o.OrderDate, o.Subtotal, o.TotalAmount, nullable(o.Notes), o.UpdatedAt,
	)
	if err != nil {
		return classify("update sales order", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update sales order: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete elimina la orden; sales_order_products se elimina por ON DELETE CASCADE.
func (r *SalesOrderRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sales_orders WHERE id = $1`, id); err != nil {
		return classify("delete sales order", err)
	}
	return nil
}

// GetLines devuelve las líneas de la orden ordenadas por producto.
func (r *SalesOrderRepo) GetLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error) {
	return salesLines.get(ctx, r.q, orderID)
}

// ReplaceLines reemplaza todas las líneas (delete-all-then-reinsert).
func (r *SalesOrderRepo) ReplaceLines(ctx context.Context, orderID string, lines []*entity.OrderLine) error {
	return salesLines.replace(ctx, r.q, orderID, lines)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
