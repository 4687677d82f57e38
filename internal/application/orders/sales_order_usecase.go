package orders

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// SalesOrderUseCase orquesta la creación, edición y borrado de órdenes de venta con su efecto en stock.
// Solo una orden en estado confirmed descuenta existencias.
type SalesOrderUseCase struct {
	core
}

// NewSalesOrderUseCase construye el caso de uso.
func NewSalesOrderUseCase(d Deps) *SalesOrderUseCase {
	return &SalesOrderUseCase{core: newCore(d, "sales")}
}

// Create crea la orden en su propia transacción.
func (uc *SalesOrderUseCase) Create(ctx context.Context, userID string, in CreateSalesOrderInput) (*SalesOrderResult, error) {
	set, err := validateSalesCreate(userID, in)
	if err != nil {
		return nil, err
	}
	var res *SalesOrderResult
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
func (uc *SalesOrderUseCase) CreateInTx(ctx context.Context, repos repository.TxRepos, userID string, in CreateSalesOrderInput) (*SalesOrderResult, error) {
	set, err := validateSalesCreate(userID, in)
	if err != nil {
		return nil, err
	}
	return uc.create(ctx, repos, userID, in, set)
}

func validateSalesCreate(userID string, in CreateSalesOrderInput) (inventory.LineSet, error) {
	if err := validOwner(userID); err != nil {
		return inventory.LineSet{}, err
	}
	if in.CustomerID == "" {
		return inventory.LineSet{}, domain.Invalid("customer_id", "requerido")
	}
	if in.StatusID <= 0 {
		return inventory.LineSet{}, domain.Invalid("status_id", "requerido")
	}
	return buildLineSet(in.Items, true)
}

func (uc *SalesOrderUseCase) create(ctx context.Context, repos repository.TxRepos, userID string, in CreateSalesOrderInput, set inventory.LineSet) (*SalesOrderResult, error) {
	if err := checkCustomer(ctx, repos, userID, in.CustomerID); err != nil {
		return nil, err
	}
	status, err := statusByID(ctx, repos, in.StatusID)
	if err != nil {
		return nil, err
	}
	if err := checkProducts(ctx, repos, userID, set); err != nil {
		return nil, err
	}
	changes, err := inventory.PlanSalesCreate(status.Name, set)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	subtotal, total := uc.totals(set)
	order := &entity.SalesOrder{
		UserID:      userID,
		CustomerID:  in.CustomerID,
		StatusID:    status.ID,
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
	if err := repos.SalesOrders.Create(ctx, order); err != nil {
		return nil, err
	}
	lines := toOrderLines(set)
	if err := repos.SalesOrders.ReplaceLines(ctx, order.ID, lines); err != nil {
		return nil, err
	}

	entries, err := uc.ledger.ApplyAll(ctx, repos, stockInputs(userID, order.ID, changes, lineRefs(lines), false))
	if err != nil {
		return nil, err
	}
	return &SalesOrderResult{Order: order, Lines: lines, Transactions: entries}, nil
}

// Update edita la orden en su propia transacción. El efecto en stock depende de la transición de estado.
func (uc *SalesOrderUseCase) Update(ctx context.Context, userID, orderID string, in UpdateSalesOrderInput) (*SalesOrderResult, error) {
	set, err := validateSalesUpdate(userID, orderID, in)
	if err != nil {
		return nil, err
	}
	var res *SalesOrderResult
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
func (uc *SalesOrderUseCase) UpdateInTx(ctx context.Context, repos repository.TxRepos, userID, orderID string, in UpdateSalesOrderInput) (*SalesOrderResult, error) {
	set, err := validateSalesUpdate(userID, orderID, in)
	if err != nil {
		return nil, err
	}
	return uc.update(ctx, repos, userID, orderID, in, set)
}

func validateSalesUpdate(userID, orderID string, in UpdateSalesOrderInput) (*inventory.LineSet, error) {
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

// update: newSet nil conserva las líneas actuales.
func (uc *SalesOrderUseCase) update(ctx context.Context, repos repository.TxRepos, userID, orderID string, in UpdateSalesOrderInput, newSet *inventory.LineSet) (*SalesOrderResult, error) {
	order, err := lockSalesOrder(ctx, repos, userID, orderID)
	if err != nil {
		return nil, err
	}
	from, err := statusByID(ctx, repos, order.StatusID)
	if err != nil {
		return nil, err
	}
	to := from
	if in.StatusID != 0 && in.StatusID != order.StatusID {
		if to, err = statusByID(ctx, repos, in.StatusID); err != nil {
			return nil, err
		}
	}
	if in.CustomerID != "" && in.CustomerID != order.CustomerID {
		if err := checkCustomer(ctx, repos, userID, in.CustomerID); err != nil {
			return nil, err
		}
		order.CustomerID = in.CustomerID
	}

	oldLines, err := repos.SalesOrders.GetLines(ctx, orderID)
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
	changes, err := inventory.PlanSalesUpdate(from.Name, to.Name, oldSet, next)
	if err != nil {
		return nil, err
	}

	order.StatusID = to.ID
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
	if err := repos.SalesOrders.Update(ctx, order); err != nil {
		return nil, err
	}

	lines := oldLines
	if newSet != nil {
		lines = toOrderLines(next)
		if err := repos.SalesOrders.ReplaceLines(ctx, orderID, lines); err != nil {
			return nil, err
		}
	}

	entries, err := uc.ledger.ApplyAll(ctx, repos, stockInputs(userID, orderID, changes, lineRefs(lines, oldLines), false))
	if err != nil {
		return nil, err
	}
	return &SalesOrderResult{Order: order, Lines: lines, Transactions: entries}, nil
}

// Delete borra la orden en su propia transacción; si estaba confirmed devuelve sus cantidades al stock.
func (uc *SalesOrderUseCase) Delete(ctx context.Context, userID, orderID string) (*SalesOrderResult, error) {
	if err := validOwner(userID); err != nil {
		return nil, err
	}
	if err := validOrderID(orderID); err != nil {
		return nil, err
	}
	var res *SalesOrderResult
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
func (uc *SalesOrderUseCase) DeleteInTx(ctx context.Context, repos repository.TxRepos, userID, orderID string) (*SalesOrderResult, error) {
	if err := validOwner(userID); err != nil {
		return nil, err
	}
	if err := validOrderID(orderID); err != nil {
		return nil, err
	}
	return uc.delete(ctx, repos, userID, orderID)
}

func (uc *SalesOrderUseCase) delete(ctx context.Context, repos repository.TxRepos, userID, orderID string) (*SalesOrderResult, error) {
	order, err := lockSalesOrder(ctx, repos, userID, orderID)
	if err != nil {
		return nil, err
	}
	status, err := statusByID(ctx, repos, order.StatusID)
	if err != nil {
		return nil, err
	}
	lines, err := repos.SalesOrders.GetLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	set, err := lineSetFromStored(lines)
	if err != nil {
		return nil, err
	}
	changes, err := inventory.PlanSalesDelete(status.Name, set)
	if err != nil {
		return nil, err
	}
	if err := repos.SalesOrders.Delete(ctx, orderID); err != nil {
		return nil, err
	}
	entries, err := uc.ledger.ApplyAll(ctx, repos, stockInputs(userID, orderID, changes, lineRefs(lines), false))
	if err != nil {
		return nil, err
	}
	return &SalesOrderResult{Order: order, Lines: lines, Transactions: entries}, nil
}

// Get devuelve la orden con sus líneas (lectura consistente en una transacción).
func (uc *SalesOrderUseCase) Get(ctx context.Context, userID, orderID string) (*SalesOrderResult, error) {
	if err := validOwner(userID); err != nil {
		return nil, err
	}
	if err := validOrderID(orderID); err != nil {
		return nil, err
	}
	var res *SalesOrderResult
	err := uc.runRead(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		order, err := repos.SalesOrders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := ownedSalesOrder(order, userID, orderID); err != nil {
			return err
		}
		lines, err := repos.SalesOrders.GetLines(ctx, orderID)
		if err != nil {
			return err
		}
		res = &SalesOrderResult{Order: order, Lines: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func lockSalesOrder(ctx context.Context, repos repository.TxRepos, userID, orderID string) (*entity.SalesOrder, error) {
	order, err := repos.SalesOrders.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := ownedSalesOrder(order, userID, orderID); err != nil {
		return nil, err
	}
	return order, nil
}

func ownedSalesOrder(order *entity.SalesOrder, userID, orderID string) error {
	if order == nil {
		return fmt.Errorf("orden de venta %s: %w", orderID, domain.ErrNotFound)
	}
	if order.UserID != userID {
		return fmt.Errorf("orden de venta %s: %w", orderID, domain.ErrForbidden)
	}
	return nil
}

func checkCustomer(ctx context.Context, repos repository.TxRepos, userID, customerID string) error {
	c, err := repos.Customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("cliente %s: %w", customerID, domain.ErrNotFound)
	}
	if c.UserID != userID {
		return fmt.Errorf("cliente %s: %w", customerID, domain.ErrForbidden)
	}
	return nil
}
