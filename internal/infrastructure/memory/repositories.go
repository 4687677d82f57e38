package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ProductRepository              = (*productRepo)(nil)
	_ repository.CustomerRepository             = (*customerRepo)(nil)
	_ repository.SupplierRepository             = (*supplierRepo)(nil)
	_ repository.StatusRepository               = (*statusRepo)(nil)
	_ repository.SalesOrderRepository           = (*salesOrderRepo)(nil)
	_ repository.PurchaseOrderRepository        = (*purchaseOrderRepo)(nil)
	_ repository.InventoryTransactionRepository = (*transactionRepo)(nil)
)

type productRepo struct{ base }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return r.mutate("products.create", func(s *state) error {
		if _, ok := s.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		s.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.view().products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetForUpdate: las transacciones ya están serializadas, no hace falta bloqueo adicional.
func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) UpdateStock(_ context.Context, id string, quantity int) error {
	return r.mutate("products.update_stock", func(s *state) error {
		p, ok := s.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.Quantity = quantity
		s.products[id] = p
		return nil
	})
}

func (r *productRepo) UpdatePrice(_ context.Context, id string, price decimal.Decimal) error {
	return r.mutate("products.update_price", func(s *state) error {
		p, ok := s.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.UnitPrice = price
		s.products[id] = p
		return nil
	})
}

func (r *productRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	return r.mutate("products.update_cost", func(s *state) error {
		p, ok := s.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.UnitCost = cost
		s.products[id] = p
		return nil
	})
}

func (r *productRepo) HasSufficientStock(_ context.Context, id, userID string, quantity int) (bool, error) {
	p, ok := r.view().products[id]
	if !ok || p.UserID != userID {
		return false, nil
	}
	return p.HasStock(quantity), nil
}

type customerRepo struct{ base }

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	c, ok := r.view().customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type supplierRepo struct{ base }

func (r *supplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	sp, ok := r.view().suppliers[id]
	if !ok {
		return nil, nil
	}
	return &sp, nil
}

type statusRepo struct{ base }

func (r *statusRepo) GetByID(_ context.Context, id int) (*entity.OrderStatus, error) {
	st, ok := r.view().statuses[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

type salesOrderRepo struct{ base }

func (r *salesOrderRepo) Create(_ context.Context, o *entity.SalesOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return r.mutate("sales_orders.create", func(s *state) error {
		s.salesOrders[o.ID] = *o
		return nil
	})
}

func (r *salesOrderRepo) GetByID(_ context.Context, id string) (*entity.SalesOrder, error) {
	o, ok := r.view().salesOrders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *salesOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.SalesOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *salesOrderRepo) Update(_ context.Context, o *entity.SalesOrder) error {
	return r.mutate("sales_orders.update", func(s *state) error {
		if _, ok := s.salesOrders[o.ID]; !ok {
			return domain.ErrNotFound
		}
		s.salesOrders[o.ID] = *o
		return nil
	})
}

func (r *salesOrderRepo) Delete(_ context.Context, id string) error {
	return r.mutate("sales_orders.delete", func(s *state) error {
		delete(s.salesOrders, id)
		delete(s.salesLines, id)
		return nil
	})
}

func (r *salesOrderRepo) GetLines(_ context.Context, orderID string) ([]*entity.OrderLine, error) {
	return copyLines(r.view().salesLines[orderID]), nil
}

func (r *salesOrderRepo) ReplaceLines(_ context.Context, orderID string, lines []*entity.OrderLine) error {
	return r.mutate("sales_orders.replace_lines", func(s *state) error {
		s.salesLines[orderID] = storeLines(orderID, lines)
		return nil
	})
}

type purchaseOrderRepo struct{ base }

func (r *purchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return r.mutate("purchase_orders.create", func(s *state) error {
		s.purchaseOrders[o.ID] = *o
		return nil
	})
}

func (r *purchaseOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	o, ok := r.view().purchaseOrders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *purchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *purchaseOrderRepo) Update(_ context.Context, o *entity.PurchaseOrder) error {
	return r.mutate("purchase_orders.update", func(s *state) error {
		if _, ok := s.purchaseOrders[o.ID]; !ok {
			return domain.ErrNotFound
		}
		s.purchaseOrders[o.ID] = *o
		return nil
	})
}

func (r *purchaseOrderRepo) Delete(_ context.Context, id string) error {
	return r.mutate("purchase_orders.delete", func(s *state) error {
		delete(s.purchaseOrders, id)
		delete(s.purchaseLines, id)
		return nil
	})
}

func (r *purchaseOrderRepo) GetLines(_ context.Context, orderID string) ([]*entity.OrderLine, error) {
	return copyLines(r.view().purchaseLines[orderID]), nil
}

func (r *purchaseOrderRepo) ReplaceLines(_ context.Context, orderID string, lines []*entity.OrderLine) error {
	return r.mutate("purchase_orders.replace_lines", func(s *state) error {
		s.purchaseLines[orderID] = storeLines(orderID, lines)
		return nil
	})
}

// LatestOrderIDForProduct: mayor fecha de orden; empate por created_at y luego id.
func (r *purchaseOrderRepo) LatestOrderIDForProduct(_ context.Context, userID, productID string) (string, error) {
	s := r.view()
	var latest *entity.PurchaseOrder
	for id, lines := range s.purchaseLines {
		o, ok := s.purchaseOrders[id]
		if !ok || o.UserID != userID || !containsProduct(lines, productID) {
			continue
		}
		if latest == nil || newer(o, *latest) {
			cp := o
			latest = &cp
		}
	}
	if latest == nil {
		return "", nil
	}
	return latest.ID, nil
}

func newer(a, b entity.PurchaseOrder) bool {
	if !a.OrderDate.Equal(b.OrderDate) {
		return a.OrderDate.After(b.OrderDate)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func containsProduct(lines []entity.OrderLine, productID string) bool {
	for _, l := range lines {
		if l.ProductID == productID {
			return true
		}
	}
	return false
}

type transactionRepo struct{ base }

func (r *transactionRepo) Create(_ context.Context, t *entity.InventoryTransaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return r.mutate("transactions.create", func(s *state) error {
		s.transactions = append(s.transactions, *t)
		return nil
	})
}

func (r *transactionRepo) ListByProduct(_ context.Context, userID, productID string) ([]*entity.InventoryTransaction, error) {
	return r.list(func(t entity.InventoryTransaction) bool {
		return t.UserID == userID && t.ProductID == productID
	}), nil
}

func (r *transactionRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]*entity.InventoryTransaction, error) {
	all := r.list(func(t entity.InventoryTransaction) bool { return t.UserID == userID })
	if offset >= len(all) {
		return []*entity.InventoryTransaction{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// list recorre de la última insertada a la primera y luego ordena estable por fecha,
// de modo que a igual fecha gana la insertada después.
func (r *transactionRepo) list(match func(entity.InventoryTransaction) bool) []*entity.InventoryTransaction {
	txs := r.view().transactions
	out := []*entity.InventoryTransaction{}
	for i := len(txs) - 1; i >= 0; i-- {
		if match(txs[i]) {
			t := txs[i]
			out = append(out, &t)
		}
	}
	sortNewestFirst(out)
	return out
}

func copyLines(lines []entity.OrderLine) []*entity.OrderLine {
	out := make([]*entity.OrderLine, 0, len(lines))
	for _, l := range lines {
		cp := l
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func storeLines(orderID string, lines []*entity.OrderLine) []entity.OrderLine {
	out := make([]entity.OrderLine, 0, len(lines))
	for _, l := range lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.OrderID = orderID
		out = append(out, *l)
	}
	return out
}
