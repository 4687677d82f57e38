package orders

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// PurchaseOrderUseCase orquesta las órdenes de compra. Toda línea recibida suma stock sin importar
// el estado; el precio de catálogo solo lo sube la orden más reciente que incluye el producto.
type PurchaseOrderUseCase struct {
	core
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(d Deps) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{core: newCore(d, "purchase")}
}

// Create crea la orden en su propia transacción y recibe sus líneas.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, userID string, in CreatePurchaseOrderInput) (*PurchaseOrderResult, error) {
	set, err := validatePurchaseCreate(userID, in)
	if err != nil {
		return nil, err
	}
	var res *PurchaseOrderResult
	err = uc.run(ctx, "create", userID, func(ctx context.Context, repos repository.TxRepos) (string, []*entity.InventoryTransaction, error) {
		var err error
		res, err = uc.create(ctx, repos, userID, in, set)
		if err != nil {
			return "", nil, err
		}
		return res.Order.ID, res.Transactions, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CreateInTx crea la orden dentro de una transacción abierta por el caller.
func (uc *PurchaseOrderUseCase) CreateInTx(ctx context.Context, repos repository.TxRepos, userID string, in CreatePurchaseOrderInput) (*PurchaseOrderResult, error) {
	set, err := validatePurchaseCreate(userID, in)
	if err != nil {
		return nil, err
	}
	return uc.create(ctx, repos, userID, in, set)
}

func validatePurchaseCreate(userID string, in CreatePurchaseOrderInput) (inventory.LineSet, error) {
	if err := validOwner(userID); err != nil {
		return inventory.LineSet{}, err
	}
	if in.SupplierID == "" {
		return inventory.LineSet{}, domain.Invalid("supplier_id", "requerido")
	}
	if in.StatusID < 0 {
		return inventory.LineSet{}, domain.Invalid("status_id", "inválido")
	}
	return buildLineSet(in.Items, true)
}

func (uc *PurchaseOrderUseCase) create(ctx context.Context, repos repository.TxRepos, userID string, in CreatePurchaseOrderInput, set inventory.LineSet) (*PurchaseOrderResult, error) {
	if err := checkSupplier(ctx, repos, userID, in.SupplierID); err != nil {
		return nil, err
	}
	if in.StatusID != 0 {
		if _, err := statusByID(ctx, repos, in.StatusID); err != nil {
			return nil, err
		}
	}
	if err := checkProducts(ctx, repos, userID, set); err != nil {
		return nil, err
	}
	changes := inventory.PlanPurchaseReceipt(emptySet(), set)

	now := uc.now()
	subtotal, total := uc.totals(set)
	order := &entity.PurchaseOrder{
		UserID:      userID,
		SupplierID:  in.SupplierID,
		StatusID:    in.StatusID,
		OrderDate:   now,
		Subtotal:    subtotal,
		TotalAmount: total,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.OrderDate != nil {
		order.OrderDate = *in.OrderDate
	}
	if err := repos.PurchaseOrders.Create(ctx, order); err != nil {
		return nil, err
	}
	lines := toOrderLines(set)
	if err := repos.PurchaseOrders.ReplaceLines(ctx, order.ID, lines); err != nil {
		return nil, err
	}

	entries, err := uc.receive(ctx, repos, userID, order.ID, changes, set, lineRefs(lines))
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: order, Lines: lines, Transactions: entries}, nil
}

// Update edita la orden: aplica la diferencia por producto y reevalúa el precio de cada línea nueva.
func (uc *PurchaseOrderUseCase) Update(ctx context.Context, userID, orderID string, in UpdatePurchaseOrderInput) (*PurchaseOrderResult, error) {
	set, err := validatePurchaseUpdate(userID, orderID, in)
	if err != nil {
		return nil, err
	}
	var res *PurchaseOrderResult
	err = uc.run(ctx, "update", userID, func(ctx context.Context, repos repository.TxRepos) (string, []*entity.InventoryTransaction, error) {
		var err error
		res, err = uc.update(ctx, repos, userID, orderID, in, set)
		if err != nil {
			return orderID, nil, err
		}
		return orderID, res.Transactions, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateInTx edita la orden dentro de una transacción abierta por el caller.
func (uc *PurchaseOrderUseCase) UpdateInTx(ctx context.Context, repos repository.TxRepos, userID, orderID string, in UpdatePurchaseOrderInput) (*PurchaseOrderResult, error) {
	set, err := validatePurchaseUpdate(userID, orderID, in)
	if err != nil {
		return nil, err
	}
	return uc.update(ctx, repos, userID, orderID, in, set)
}

func validatePurchaseUpdate(userID, orderID string, in UpdatePurchaseOrderInput) (*inventory.LineSet, error) {
	if err := validOwner(userID); err != nil {
		return nil, err
	}
	if err := validOrderID(orderID); err != nil {
		return nil, err
	}
	if in.StatusID < 0 {
		return nil, domain.Invalid("status_id", "inválido")
	}
	if len(in.Items) == 0 {
		return nil, nil
	}
	set, err := buildLineSet(in.Items, true)
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (uc *PurchaseOrderUseCase) update(ctx context.Context, repos repository.TxRepos, userID, orderID string, in UpdatePurchaseOrderInput, newSet *inventory.LineSet) (*PurchaseOrderResult, error) {
	order, err := lockPurchaseOrder(ctx, repos, userID, orderID)
	if err != nil {
		return nil, err
	}
	if in.StatusID != 0 && in.StatusID != order.StatusID {
		if _, err := statusByID(ctx, repos, in.StatusID); err != nil {
			return nil, err
		}
		order.StatusID = in.StatusID
	}
	if in.SupplierID != "" && in.SupplierID != order.SupplierID {
		if err := checkSupplier(ctx, repos, userID, in.SupplierID); err != nil {
			return nil, err
		}
		order.SupplierID = in.SupplierID
	}

	oldLines, err := repos.PurchaseOrders.GetLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	oldSet, err := lineSetFromStored(oldLines)
	if err != nil {
		return nil, err
	}
	next := oldSet
	if newSet != nil {
		if err := checkProducts(ctx, repos, userID, *newSet); err != nil {
			return nil, err
		}
		next = *newSet
	}
	changes := inventory.PlanPurchaseReceipt(oldSet, next)

	if in.OrderDate != nil {
		order.OrderDate = *in.OrderDate
	}
	if in.Notes != nil {
		order.Notes = *in.Notes
	}
	if newSet != nil {
		order.Subtotal, order.TotalAmount = uc.totals(next)
	}
	order.UpdatedAt = uc.now()
	if err := repos.PurchaseOrders.Update(ctx, order); err != nil {
		return nil, err
	}

	lines := oldLines
	if newSet != nil {
		lines = toOrderLines(next)
		if err := repos.PurchaseOrders.ReplaceLines(ctx, orderID, lines); err != nil {
			return nil, err
		}
	}

	entries, err := uc.receive(ctx, repos, userID, orderID, changes, next, lineRefs(lines, oldLines))
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: order, Lines: lines, Transactions: entries}, nil
}

// Delete borra la orden y retira del stock lo que había recibido (purchase_return).
// Falla con stock insuficiente si esas unidades ya se consumieron.
func (uc *PurchaseOrderUseCase) Delete(ctx context.Context, userID, orderID string) (*PurchaseOrderResult, error) {
	if err := validOwner(userID); err != nil {
		return nil, err
	}
	if err := validOrderID(orderID); err != nil {
		return nil, err
	}
	var res *PurchaseOrderResult
	err := uc.run(ctx, "delete", userID, func(ctx context.Context, repos repository.TxRepos) (string, []*entity.InventoryTransaction, error) {
		var err error
		res, err = uc.delete(ctx, repos, userID, orderID)
		if err != nil {
			return orderID, nil, err
		}
		return orderID, res.Transactions, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteInTx borra la orden dentro de una transacción abierta por el caller.
func (uc *PurchaseOrderUseCase) DeleteInTx(ctx context.Context, repos repository.TxRepos, userID, orderID string) (*PurchaseOrderResult, error) {
	if err := validOwner(userID); err != nil {
		return nil, err
	}
	if err := validOrderID(orderID); err != nil {
		return nil, err
	}
	return uc.delete(ctx, repos, userID, orderID)
}

func (uc *PurchaseOrderUseCase) delete(ctx context.Context, repos repository.TxRepos, userID, orderID string) (*PurchaseOrderResult, error) {
	order, err := lockPurchaseOrder(ctx, repos, userID, orderID)
	if err != nil {
		return nil, err
	}
	lines, err := repos.PurchaseOrders.GetLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	set, err := lineSetFromStored(lines)
	if err != nil {
		return nil, err
	}
	changes := inventory.PlanPurchaseDelete(set)
	if err := repos.PurchaseOrders.Delete(ctx, orderID); err != nil {
		return nil, err
	}
	entries, err := uc.ledger.ApplyAll(ctx, repos, stockInputs(userID, orderID, changes, lineRefs(lines), true))
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: order, Lines: lines, Transactions: entries}, nil
}

// Get devuelve la orden con sus líneas (lectura consistente en una transacción).
func (uc *PurchaseOrderUseCase) Get(ctx context.Context, userID, orderID string) (*PurchaseOrderResult, error) {
	if err := validOwner(userID); err != nil {
		return nil, err
	}
	if err := validOrderID(orderID); err != nil {
		return nil, err
	}
	var res *PurchaseOrderResult
	err := uc.runRead(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		order, err := repos.PurchaseOrders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := ownedPurchaseOrder(order, userID, orderID); err != nil {
			return err
		}
		lines, err := repos.PurchaseOrders.GetLines(ctx, orderID)
		if err != nil {
			return err
		}
		res = &PurchaseOrderResult{Order: order, Lines: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// receive aplica los movimientos al libro, recalcula el costo promedio en las entradas positivas
// y sube el precio de catálogo cuando esta orden es la más reciente del producto.
func (uc *PurchaseOrderUseCase) receive(
	ctx context.Context,
	repos repository.TxRepos,
	userID, orderID string,
	changes []inventory.StockChange,
	lines inventory.LineSet,
	refs map[string]*string,
) ([]*entity.InventoryTransaction, error) {
	entries, err := uc.ledger.ApplyAll(ctx, repos, stockInputs(userID, orderID, changes, refs, true))
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.Quantity <= 0 {
			continue
		}
		line, ok := lines.Get(e.ProductID)
		if !ok {
			continue
		}
		p, err := repos.Products.GetByID(ctx, e.ProductID)
		if err != nil {
			return nil, err
		}
		cost := inventory.CostCalculator(e.PreviousStock, p.UnitCost, e.Quantity, line.UnitPrice)
		if !cost.Equal(p.UnitCost) {
			if err := repos.Products.UpdateCost(ctx, e.ProductID, cost); err != nil {
				return nil, err
			}
		}
	}

	for _, line := range lines.Lines() {
		latest, err := repos.PurchaseOrders.LatestOrderIDForProduct(ctx, userID, line.ProductID)
		if err != nil {
			return nil, err
		}
		p, err := repos.Products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("producto %s: %w", line.ProductID, domain.ErrNotFound)
		}
		if inventory.ShouldRaisePrice(latest == orderID, line.UnitPrice, p.UnitPrice) {
			if err := repos.Products.UpdatePrice(ctx, line.ProductID, line.UnitPrice); err != nil {
				return nil, err
			}
		}
	}
	return entries, nil
}

func lockPurchaseOrder(ctx context.Context, repos repository.TxRepos, userID, orderID string) (*entity.PurchaseOrder, error) {
	order, err := repos.PurchaseOrders.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := ownedPurchaseOrder(order, userID, orderID); err != nil {
		return nil, err
	}
	return order, nil
}

func ownedPurchaseOrder(order *entity.PurchaseOrder, userID, orderID string) error {
	if order == nil {
		return fmt.Errorf("orden de compra %s: %w", orderID, domain.ErrNotFound)
	}
	if order.UserID != userID {
		return fmt.Errorf("orden de compra %s: %w", orderID, domain.ErrForbidden)
	}
	return nil
}

func checkSupplier(ctx context.Context, repos repository.TxRepos, userID, supplierID string) error {
	sp, err := repos.Suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return err
	}
	if sp == nil {
		return fmt.Errorf("proveedor %s: %w", supplierID, domain.ErrNotFound)
	}
	if sp.UserID != userID {
		return fmt.Errorf("proveedor %s: %w", supplierID, domain.ErrForbidden)
	}
	return nil
}
