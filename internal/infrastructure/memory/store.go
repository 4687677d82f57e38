// Package memory implementa los puertos de persistencia en memoria con transacciones
// de copia completa (snapshot/restore). Las transacciones se serializan con un mutex,
// lo que equivale a bloquear todas las filas. Pensado para desarrollo local y tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// FailHook permite simular fallos de persistencia: se llama antes de cada escritura
// con el nombre de la operación (ej. "transactions.create").
type FailHook func(op string) error

type state struct {
	products       map[string]entity.Product
	customers      map[string]entity.Customer
	suppliers      map[string]entity.Supplier
	statuses       map[int]entity.OrderStatus
	salesOrders    map[string]entity.SalesOrder
	salesLines     map[string][]entity.OrderLine
	purchaseOrders map[string]entity.PurchaseOrder
	purchaseLines  map[string][]entity.OrderLine
	transactions   []entity.InventoryTransaction
	failHook       FailHook
}

func newState() *state {
	return &state{
		products:       map[string]entity.Product{},
		customers:      map[string]entity.Customer{},
		suppliers:      map[string]entity.Supplier{},
		statuses:       map[int]entity.OrderStatus{},
		salesOrders:    map[string]entity.SalesOrder{},
		salesLines:     map[string][]entity.OrderLine{},
		purchaseOrders: map[string]entity.PurchaseOrder{},
		purchaseLines:  map[string][]entity.OrderLine{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.statuses {
		c.statuses[k] = v
	}
	for k, v := range s.salesOrders {
		c.salesOrders[k] = v
	}
	for k, v := range s.salesLines {
		c.salesLines[k] = append([]entity.OrderLine(nil), v...)
	}
	for k, v := range s.purchaseOrders {
		c.purchaseOrders[k] = v
	}
	for k, v := range s.purchaseLines {
		c.purchaseLines[k] = append([]entity.OrderLine(nil), v...)
	}
	c.transactions = append([]entity.InventoryTransaction(nil), s.transactions...)
	c.failHook = s.failHook
	return c
}

func (s *state) fail(op string) error {
	if s.failHook == nil {
		return nil
	}
	return s.failHook(op)
}

func (s *state) repos() repository.TxRepos {
	return repository.TxRepos{
		Products:       &productRepo{base{s: s}},
		Customers:      &customerRepo{base{s: s}},
		Suppliers:      &supplierRepo{base{s: s}},
		Statuses:       &statusRepo{base{s: s}},
		SalesOrders:    &salesOrderRepo{base{s: s}},
		PurchaseOrders: &purchaseOrderRepo{base{s: s}},
		Transactions:   &transactionRepo{base{s: s}},
	}
}

// Store almacén en memoria. El valor cero no es usable; usar New.
type Store struct {
	txMu   sync.Mutex   // serializa transacciones
	dataMu sync.RWMutex // protege el puntero data
	data   *state
}

// New crea un almacén vacío con el vocabulario de estados por defecto.
func New() *Store {
	s := newState()
	for _, st := range DefaultStatuses() {
		s.statuses[st.ID] = st
	}
	return &Store{data: s}
}

// DefaultStatuses vocabulario de estados sembrado (igual al de la migración SQL).
func DefaultStatuses() []entity.OrderStatus {
	return []entity.OrderStatus{
		{ID: 1, Name: entity.StatusPending},
		{ID: 2, Name: entity.StatusConfirmed},
		{ID: 3, Name: entity.StatusCancelled},
		{ID: 4, Name: entity.StatusOrdered},
		{ID: 5, Name: entity.StatusReceived},
	}
}

// Run ejecuta fn sobre una copia del estado; si fn no falla la copia reemplaza al estado (Commit).
// El error de fn se devuelve sin modificar.
func (st *Store) Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error {
	if repository.InTx(ctx) {
		return domain.ErrNestedTransaction
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	st.txMu.Lock()
	defer st.txMu.Unlock()

	st.dataMu.RLock()
	work := st.data.clone()
	st.dataMu.RUnlock()

	if err := fn(repository.WithTx(ctx), work.repos()); err != nil {
		return err
	}

	st.dataMu.Lock()
	st.data = work
	st.dataMu.Unlock()
	return nil
}

func (st *Store) committed() *state {
	st.dataMu.RLock()
	defer st.dataMu.RUnlock()
	return st.data
}

// write aplica fn al estado confirmado como una transacción de una sola operación.
func (st *Store) write(fn func(s *state) error) error {
	return st.Run(context.Background(), func(_ context.Context, repos repository.TxRepos) error {
		return fn(repos.Products.(*productRepo).s)
	})
}

// SetFailHook instala (o quita con nil) el simulador de fallos.
func (st *Store) SetFailHook(h FailHook) {
	st.txMu.Lock()
	defer st.txMu.Unlock()
	st.dataMu.Lock()
	st.data.failHook = h
	st.dataMu.Unlock()
}

// AddProduct siembra un producto.
func (st *Store) AddProduct(p entity.Product) {
	_ = st.write(func(s *state) error { s.products[p.ID] = p; return nil })
}

// AddCustomer siembra un cliente.
func (st *Store) AddCustomer(c entity.Customer) {
	_ = st.write(func(s *state) error { s.customers[c.ID] = c; return nil })
}

// AddSupplier siembra un proveedor.
func (st *Store) AddSupplier(sp entity.Supplier) {
	_ = st.write(func(s *state) error { s.suppliers[sp.ID] = sp; return nil })
}

// Product devuelve la foto confirmada del producto.
func (st *Store) Product(id string) (entity.Product, bool) {
	p, ok := st.committed().products[id]
	return p, ok
}

// Ledger devuelve todas las entradas confirmadas en orden de inserción.
func (st *Store) Ledger() []entity.InventoryTransaction {
	return append([]entity.InventoryTransaction(nil), st.committed().transactions...)
}

// SalesOrderCount número de órdenes de venta confirmadas en el almacén.
func (st *Store) SalesOrderCount() int { return len(st.committed().salesOrders) }

// PurchaseOrderCount número de órdenes de compra confirmadas en el almacén.
func (st *Store) PurchaseOrderCount() int { return len(st.committed().purchaseOrders) }

// ProductRepository repositorio de productos fuera de transacción (autocommit).
func (st *Store) ProductRepository() repository.ProductRepository {
	return &productRepo{base{st: st}}
}

// TransactionRepository repositorio del libro fuera de transacción.
func (st *Store) TransactionRepository() repository.InventoryTransactionRepository {
	return &transactionRepo{base{st: st}}
}

// Repos devuelve todos los repositorios en modo autocommit (cada escritura es su propia transacción).
func (st *Store) Repos() repository.TxRepos {
	b := base{st: st}
	return repository.TxRepos{
		Products:       &productRepo{b},
		Customers:      &customerRepo{b},
		Suppliers:      &supplierRepo{b},
		Statuses:       &statusRepo{b},
		SalesOrders:    &salesOrderRepo{b},
		PurchaseOrders: &purchaseOrderRepo{b},
		Transactions:   &transactionRepo{b},
	}
}

// base resuelve sobre qué estado opera un repositorio: la copia de una tx (s)
// o el estado confirmado del almacén (st).
type base struct {
	s  *state
	st *Store
}

func (b base) view() *state {
	if b.s != nil {
		return b.s
	}
	return b.st.committed()
}

func (b base) mutate(op string, fn func(s *state) error) error {
	if b.s != nil {
		if err := b.s.fail(op); err != nil {
			return err
		}
		return fn(b.s)
	}
	return b.st.write(func(s *state) error {
		return base{s: s}.mutate(op, fn)
	})
}

func sortNewestFirst(list []*entity.InventoryTransaction) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
