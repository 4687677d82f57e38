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
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, user_id, name, description, unit_price, unit_cost, quantity, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.UserID, product.Name, product.Description,
		product.UnitPrice, product.UnitCost, product.Quantity, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return classify("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto y bloquea la fila para update (SELECT FOR UPDATE).
// Serializa la secuencia leer-verificar-escribir del stock entre transacciones concurrentes.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) get(ctx context.Context, query, id string) (*entity.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var p entity.Product
	var description *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Name, &description, &p.UnitPrice, &p.UnitCost, &p.Quantity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get product", err)
	}
	if description != nil {
		p.Description = *description
	}
	return &p, nil
}

// UpdateStock fija la cantidad (usado solo por el libro de inventario).
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, quantity int) error {
	return r.exec(ctx, "update product stock",
		`UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
}

// UpdatePrice actualiza el precio de venta de catálogo.
func (r *ProductRepo) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error {
	return r.exec(ctx, "update product price",
		`UPDATE products SET unit_price = $2, updated_at = now() WHERE id = $1`, id, price)
}

// UpdateCost actualiza solo el costo del producto (usado por el motor de inventario).
func (r *ProductRepo) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error {
	return r.exec(ctx, "update product cost",
		`UPDATE products SET unit_cost = $2, updated_at = now() WHERE id = $1`, id, cost)
}

// HasSufficientStock indica si el producto del usuario tiene al menos quantity unidades.
func (r *ProductRepo) HasSufficientStock(ctx context.Context, id, userID string, quantity int) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT quantity >= $3 FROM products WHERE id = $1 AND user_id = $2`,
		id, userID, quantity,
	).Scan(&ok)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, classify("check product stock", err)
	}
	return ok, nil
}

func (r *ProductRepo) exec(ctx context.Context, op, query string, args ...any) error {
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return classify(op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
