package orders_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/orders"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
	"github.com/jhoicas/stock-ledger-api/pkg/metrics"
)

// Estados sembrados por memory.DefaultStatuses.
const (
	statusPending   = 1
	statusConfirmed = 2
	statusCancelled = 3
)

type fixture struct {
	store    *memory.Store
	sales    *orders.SalesOrderUseCase
	purchase *orders.PurchaseOrderUseCase
	ledger   *appinventory.StockLedger
	userID   string
	customer string
	supplier string
	initial  map[string]int
}

// clock reloj determinista que avanza un segundo por lectura.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	ledger := appinventory.NewStockLedger(store, store.ProductRepository(), store.TransactionRepository(), logger.Nop())
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	deps := orders.Deps{
		TxRunner: store,
		Ledger:   ledger,
		Log:      logger.Nop(),
		Metrics:  metrics.New(prometheus.NewRegistry()),
		Now:      clk.Now,
	}
	f := &fixture{
		store:    store,
		sales:    orders.NewSalesOrderUseCase(deps),
		purchase: orders.NewPurchaseOrderUseCase(deps),
		ledger:   ledger,
		userID:   uuid.New().String(),
		customer: uuid.New().String(),
		supplier: uuid.New().String(),
		initial:  map[string]int{},
	}
	store.AddCustomer(entity.Customer{ID: f.customer, UserID: f.userID, Name: "Cliente"})
	store.AddSupplier(entity.Supplier{ID: f.supplier, UserID: f.userID, Name: "Proveedor"})
	return f
}

// product siembra un producto del usuario con stock y precio dados.
func (f *fixture) product(t *testing.T, qty int, price string) string {
	t.Helper()
	id := uuid.New().String()
	f.store.AddProduct(entity.Product{
		ID:        id,
		UserID:    f.userID,
		Name:      "Producto " + id[:6],
		UnitPrice: decimal.RequireFromString(price),
		UnitCost:  decimal.Zero,
		Quantity:  qty,
	})
	f.initial[id] = qty
	return id
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	p, ok := f.store.Product(productID)
	require.True(t, ok, "producto %s debe existir", productID)
	return p.Quantity
}

// requireConservation verifica stock actual == inicial + suma de entradas del libro, por producto.
func (f *fixture) requireConservation(t *testing.T) {
	t.Helper()
	sums := map[string]int{}
	for _, e := range f.store.Ledger() {
		sums[e.ProductID] += e.Quantity
		require.Equal(t, e.PreviousStock+e.Quantity, e.NewStock, "la entrada %s debe cuadrar", e.ID)
	}
	for id, initial := range f.initial {
		require.Equal(t, initial+sums[id], f.stock(t, id), "conservación del libro para %s", id)
	}
}

func line(productID string, qty int, price string) orders.LineInput {
	return orders.LineInput{ProductID: productID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func (f *fixture) createSale(t *testing.T, status int, items ...orders.LineInput) *orders.SalesOrderResult {
	t.Helper()
	res, err := f.sales.Create(context.Background(), f.userID, orders.CreateSalesOrderInput{
		CustomerID: f.customer,
		StatusID:   status,
		Items:      items,
	})
	require.NoError(t, err)
	return res
}

func ptr[T any](v T) *T { return &v }
