package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/orders"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func (f *fixture) createPurchase(t *testing.T, date time.Time, items ...orders.LineInput) *orders.PurchaseOrderResult {
	t.Helper()
	res, err := f.purchase.Create(context.Background(), f.userID, orders.CreatePurchaseOrderInput{
		SupplierID: f.supplier,
		OrderDate:  &date,
		Items:      items,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) price(t *testing.T, productID string) string {
	t.Helper()
	p, ok := f.store.Product(productID)
	require.True(t, ok)
	return p.UnitPrice.String()
}

var (
	enero   = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	febrero = time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	marzo   = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
)

// ──────────────────────────────────────────────────────────────────────────────
// Recepción y costo
// ──────────────────────────────────────────────────────────────────────────────

func TestPurchaseCreate_SumaStockSinImportarEstado(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 2, "100")

	res, err := f.purchase.Create(context.Background(), f.userID, orders.CreatePurchaseOrderInput{
		SupplierID: f.supplier,
		StatusID:   statusPending,
		Items:      []orders.LineInput{line(p, 5, "40")},
	})
	require.NoError(t, err)

	assert.Equal(t, 7, f.stock(t, p))
	require.Len(t, res.Transactions, 1)
	e := res.Transactions[0]
	assert.Equal(t, entity.TransactionPurchase, e.Type)
	assert.Equal(t, 5, e.Quantity)
	assert.Equal(t, 2, e.PreviousStock)
	assert.Equal(t, 7, e.NewStock)
	require.NotNil(t, e.PurchaseOrderLineID)
	assert.Nil(t, e.SalesOrderLineID)
	assert.Equal(t, "200", res.Order.Subtotal.String())
	assert.Equal(t, "238", res.Order.TotalAmount.String())
	f.requireConservation(t)
}

func TestPurchaseCreate_CostoPromedioPonderado(t *testing.T) {
	f := newFixture(t)
	id := uuid.New().String()
	f.store.AddProduct(entity.Product{
		ID: id, UserID: f.userID, Quantity: 10,
		UnitPrice: decimal.RequireFromString("100"),
		UnitCost:  decimal.RequireFromString("5"),
	})
	f.initial[id] = 10

	f.createPurchase(t, enero, line(id, 10, "8"))

	p, _ := f.store.Product(id)
	assert.Equal(t, "6.5", p.UnitCost.String(), "(10*5 + 10*8) / 20")
	assert.Equal(t, "100", p.UnitPrice.String(), "un precio menor no baja el catálogo")
}

func TestPurchaseCreate_EstadoYProveedorValidados(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 0, "10")

	_, err := f.purchase.Create(context.Background(), f.userID, orders.CreatePurchaseOrderInput{
		SupplierID: f.supplier, StatusID: 99, Items: []orders.LineInput{line(p, 1, "1")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.purchase.Create(context.Background(), f.userID, orders.CreatePurchaseOrderInput{
		SupplierID: uuid.New().String(), Items: []orders.LineInput{line(p, 1, "1")},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	otro := uuid.New().String()
	f.store.AddSupplier(entity.Supplier{ID: otro, UserID: uuid.New().String()})
	_, err = f.purchase.Create(context.Background(), f.userID, orders.CreatePurchaseOrderInput{
		SupplierID: otro, Items: []orders.LineInput{line(p, 1, "1")},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Zero(t, f.store.PurchaseOrderCount())
	assert.Equal(t, 0, f.stock(t, p))
}

// ──────────────────────────────────────────────────────────────────────────────
// Precedencia de precio
// ──────────────────────────────────────────────────────────────────────────────

func TestPurchase_SoloLaOrdenMasRecienteSubePrecio(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 0, "100")
	ctx := context.Background()

	a := f.createPurchase(t, enero, line(p, 1, "90"))
	assert.Equal(t, "100", f.price(t, p))

	f.createPurchase(t, febrero, line(p, 1, "120"))
	assert.Equal(t, "120", f.price(t, p), "la orden más reciente sube el precio")

	_, err := f.purchase.Update(ctx, f.userID, a.Order.ID, orders.UpdatePurchaseOrderInput{
		Items: []orders.LineInput{line(p, 1, "90")},
	})
	require.NoError(t, err)
	assert.Equal(t, "120", f.price(t, p), "editar la orden anterior no baja el precio")

	_, err = f.purchase.Update(ctx, f.userID, a.Order.ID, orders.UpdatePurchaseOrderInput{
		Items: []orders.LineInput{line(p, 1, "150")},
	})
	require.NoError(t, err)
	assert.Equal(t, "120", f.price(t, p), "una orden superada tampoco lo sube")

	_, err = f.purchase.Update(ctx, f.userID, a.Order.ID, orders.UpdatePurchaseOrderInput{
		OrderDate: ptr(marzo),
	})
	require.NoError(t, err)
	assert.Equal(t, "150", f.price(t, p), "al pasar a ser la más reciente su precio mayor aplica")
	f.requireConservation(t)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición y borrado
// ──────────────────────────────────────────────────────────────────────────────

func TestPurchaseUpdate_AplicaDiferenciaConSigno(t *testing.T) {
	f := newFixture(t)
	p1 := f.product(t, 0, "10")
	p2 := f.product(t, 0, "10")
	created := f.createPurchase(t, enero, line(p1, 5, "10"), line(p2, 4, "10"))

	res, err := f.purchase.Update(context.Background(), f.userID, created.Order.ID, orders.UpdatePurchaseOrderInput{
		Items: []orders.LineInput{line(p1, 8, "10")},
	})
	require.NoError(t, err)

	assert.Equal(t, 8, f.stock(t, p1))
	assert.Equal(t, 0, f.stock(t, p2))
	require.Len(t, res.Transactions, 2)
	byProduct := map[string]int{}
	for _, e := range res.Transactions {
		assert.Equal(t, entity.TransactionPurchase, e.Type)
		byProduct[e.ProductID] = e.Quantity
	}
	assert.Equal(t, 3, byProduct[p1])
	assert.Equal(t, -4, byProduct[p2])
	f.requireConservation(t)
}

func TestPurchaseDelete_RetiraLoRecibido(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 1, "10")
	created := f.createPurchase(t, enero, line(p, 5, "10"))

	res, err := f.purchase.Delete(context.Background(), f.userID, created.Order.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, f.stock(t, p))
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, entity.TransactionPurchaseReturn, res.Transactions[0].Type)
	assert.Equal(t, -5, res.Transactions[0].Quantity)
	assert.Zero(t, f.store.PurchaseOrderCount())

	_, err = f.purchase.Delete(context.Background(), f.userID, created.Order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.requireConservation(t)
}

func TestPurchaseDelete_FallaSiElStockYaSeConsumio(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 0, "10")
	created := f.createPurchase(t, enero, line(p, 5, "10"))
	f.createSale(t, statusConfirmed, line(p, 4, "10"))

	_, err := f.purchase.Delete(context.Background(), f.userID, created.Order.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 1, f.stock(t, p))
	assert.Equal(t, 1, f.store.PurchaseOrderCount(), "la orden no se borra")
	got, err := f.purchase.Get(context.Background(), f.userID, created.Order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1)
	f.requireConservation(t)
}

func TestPurchaseCreate_CantidadFueraDeRangoEsValidacion(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, entity.MaxQuantity-5, "10")

	_, err := f.purchase.Create(context.Background(), f.userID, orders.CreatePurchaseOrderInput{
		SupplierID: f.supplier,
		Items:      []orders.LineInput{line(p, entity.MaxQuantity+1, "10")},
	})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "quantity", validation.Field)

	_, err = f.purchase.Create(context.Background(), f.userID, orders.CreatePurchaseOrderInput{
		SupplierID: f.supplier,
		Items:      []orders.LineInput{line(p, 10, "10")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el stock resultante no cabe en la columna")
	assert.Equal(t, entity.MaxQuantity-5, f.stock(t, p))
	assert.Zero(t, f.store.PurchaseOrderCount())
}
