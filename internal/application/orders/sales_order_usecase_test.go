package orders_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/orders"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestSalesCreate_PendingNoMueveStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 20, "10")

	res := f.createSale(t, statusPending, line(p, 5, "10"))

	assert.Equal(t, 20, f.stock(t, p), "una orden pending no descuenta stock")
	assert.Empty(t, res.Transactions)
	assert.Empty(t, f.store.Ledger())
	assert.Equal(t, 1, f.store.SalesOrderCount())
}

func TestSalesCreate_ConfirmedDescuentaUnaEntradaPorLinea(t *testing.T) {
	f := newFixture(t)
	p1 := f.product(t, 20, "10")
	p2 := f.product(t, 8, "5")

	res := f.createSale(t, statusConfirmed, line(p1, 2, "10"), line(p2, 3, "5"))

	assert.Equal(t, 18, f.stock(t, p1))
	assert.Equal(t, 5, f.stock(t, p2))
	require.Len(t, res.Transactions, 2, "una entrada por línea")
	for _, e := range res.Transactions {
		assert.Equal(t, entity.TransactionSale, e.Type)
		require.NotNil(t, e.OrderID)
		assert.Equal(t, res.Order.ID, *e.OrderID)
		require.NotNil(t, e.SalesOrderLineID, "la entrada referencia la línea")
	}
	assert.Equal(t, "35", res.Order.Subtotal.String())
	assert.Equal(t, "41.65", res.Order.TotalAmount.String(), "total = subtotal * 1.19")
	require.Len(t, res.Lines, 2)
	assert.NotEmpty(t, res.Lines[0].ID)
	f.requireConservation(t)
}

func TestSalesCreate_StockInsuficienteNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 10, "10")

	_, err := f.sales.Create(context.Background(), f.userID, orders.CreateSalesOrderInput{
		CustomerID: f.customer,
		StatusID:   statusConfirmed,
		Items:      []orders.LineInput{line(p, 50, "10")},
	})

	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, p, stockErr.ProductID)
	assert.Equal(t, 50, stockErr.Requested)
	assert.Equal(t, 10, stockErr.Available)

	assert.Equal(t, 10, f.stock(t, p), "el stock queda en 10")
	assert.Zero(t, f.store.SalesOrderCount(), "no queda la orden")
	assert.Empty(t, f.store.Ledger())
}

func TestSalesCreate_FalloDePersistenciaRevierteTodo(t *testing.T) {
	for _, op := range []string{"sales_orders.replace_lines", "products.update_stock", "transactions.create"} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t)
			p1 := f.product(t, 10, "10")
			p2 := f.product(t, 10, "10")
			boom := errors.New("disco lleno")
			calls := 0
			f.store.SetFailHook(func(name string) error {
				if name != op {
					return nil
				}
				calls++
				if calls == 2 || op == "sales_orders.replace_lines" {
					return boom
				}
				return nil
			})

			_, err := f.sales.Create(context.Background(), f.userID, orders.CreateSalesOrderInput{
				CustomerID: f.customer,
				StatusID:   statusConfirmed,
				Items:      []orders.LineInput{line(p1, 3, "10"), line(p2, 4, "10")},
			})

			assert.ErrorIs(t, err, boom, "el error se propaga sin modificar")
			assert.Equal(t, 10, f.stock(t, p1))
			assert.Equal(t, 10, f.stock(t, p2))
			assert.Zero(t, f.store.SalesOrderCount())
			assert.Empty(t, f.store.Ledger())
		})
	}
}

func TestSalesCreate_ValidacionSinMutacion(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 10, "10")

	cases := map[string]orders.CreateSalesOrderInput{
		"sin cliente":        {StatusID: statusConfirmed, Items: []orders.LineInput{line(p, 1, "1")}},
		"sin estado":         {CustomerID: f.customer, Items: []orders.LineInput{line(p, 1, "1")}},
		"sin líneas":         {CustomerID: f.customer, StatusID: statusConfirmed},
		"producto repetido":  {CustomerID: f.customer, StatusID: statusConfirmed, Items: []orders.LineInput{line(p, 1, "1"), line(p, 2, "1")}},
		"cantidad cero":      {CustomerID: f.customer, StatusID: statusConfirmed, Items: []orders.LineInput{line(p, 0, "1")}},
		"cantidad excesiva":  {CustomerID: f.customer, StatusID: statusConfirmed, Items: []orders.LineInput{line(p, entity.MaxQuantity+1, "1")}},
		"precio negativo":    {CustomerID: f.customer, StatusID: statusConfirmed, Items: []orders.LineInput{line(p, 1, "-1")}},
		"estado de compra":   {CustomerID: f.customer, StatusID: 4, Items: []orders.LineInput{line(p, 1, "1")}},
		"estado inexistente": {CustomerID: f.customer, StatusID: 99, Items: []orders.LineInput{line(p, 1, "1")}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.sales.Create(context.Background(), f.userID, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Zero(t, f.store.SalesOrderCount())
	assert.Equal(t, 10, f.stock(t, p))
}

func TestSalesCreate_PropiedadDeClienteYProductos(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 10, "10")
	otherUser := uuid.New().String()
	ajeno := uuid.New().String()
	f.store.AddProduct(entity.Product{ID: ajeno, UserID: otherUser, Quantity: 10})
	otroCliente := uuid.New().String()
	f.store.AddCustomer(entity.Customer{ID: otroCliente, UserID: otherUser})

	_, err := f.sales.Create(context.Background(), f.userID, orders.CreateSalesOrderInput{
		CustomerID: otroCliente, StatusID: statusConfirmed, Items: []orders.LineInput{line(p, 1, "1")},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden, "cliente de otro usuario")

	_, err = f.sales.Create(context.Background(), f.userID, orders.CreateSalesOrderInput{
		CustomerID: uuid.New().String(), StatusID: statusConfirmed, Items: []orders.LineInput{line(p, 1, "1")},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "cliente inexistente")

	_, err = f.sales.Create(context.Background(), f.userID, orders.CreateSalesOrderInput{
		CustomerID: f.customer, StatusID: statusConfirmed, Items: []orders.LineInput{line(p, 1, "1"), line(ajeno, 1, "1")},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden, "producto de otro usuario")

	_, err = f.sales.Create(context.Background(), f.userID, orders.CreateSalesOrderInput{
		CustomerID: f.customer, StatusID: statusConfirmed, Items: []orders.LineInput{line(uuid.New().String(), 1, "1")},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "producto inexistente")

	assert.Equal(t, 10, f.stock(t, p))
	assert.Empty(t, f.store.Ledger())
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición
// ──────────────────────────────────────────────────────────────────────────────

func TestSalesUpdate_ConfirmedSoloAplicaDiferencia(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 20, "10")
	created := f.createSale(t, statusConfirmed, line(p, 5, "10"))
	require.Equal(t, 15, f.stock(t, p))

	res, err := f.sales.Update(context.Background(), f.userID, created.Order.ID, orders.UpdateSalesOrderInput{
		Items: []orders.LineInput{line(p, 8, "10")},
	})
	require.NoError(t, err)

	assert.Equal(t, 12, f.stock(t, p), "descuenta 3, no 8")
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, -3, res.Transactions[0].Quantity)
	assert.Equal(t, entity.TransactionSale, res.Transactions[0].Type)
	assert.Equal(t, "80", res.Order.Subtotal.String())
	f.requireConservation(t)
}

func TestSalesUpdate_ProductoRetiradoYAgregado(t *testing.T) {
	f := newFixture(t)
	p1 := f.product(t, 10, "10")
	p2 := f.product(t, 10, "10")
	created := f.createSale(t, statusConfirmed, line(p1, 4, "10"))

	res, err := f.sales.Update(context.Background(), f.userID, created.Order.ID, orders.UpdateSalesOrderInput{
		Items: []orders.LineInput{line(p2, 6, "10")},
	})
	require.NoError(t, err)

	assert.Equal(t, 10, f.stock(t, p1), "el producto retirado vuelve completo")
	assert.Equal(t, 4, f.stock(t, p2))
	assert.Len(t, res.Transactions, 2)
	f.requireConservation(t)
}

func TestSalesUpdate_CancelarDevuelveCantidades(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 30, "10")
	created := f.createSale(t, statusConfirmed, line(p, 10, "10"))
	require.Equal(t, 20, f.stock(t, p))

	res, err := f.sales.Update(context.Background(), f.userID, created.Order.ID, orders.UpdateSalesOrderInput{
		StatusID: statusCancelled,
	})
	require.NoError(t, err)

	assert.Equal(t, 30, f.stock(t, p), "devuelve exactamente 10")
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, 10, res.Transactions[0].Quantity)
	assert.Equal(t, entity.TransactionAdjustment, res.Transactions[0].Type)
	assert.Equal(t, statusCancelled, res.Order.StatusID)
	require.Len(t, res.Lines, 1, "sin items se conservan las líneas")
	assert.Equal(t, created.Order.TotalAmount.String(), res.Order.TotalAmount.String(), "y los totales")
	f.requireConservation(t)
}

func TestSalesUpdate_PendingAConfirmedConsumeLineasNuevas(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 10, "10")
	created := f.createSale(t, statusPending, line(p, 2, "10"))

	res, err := f.sales.Update(context.Background(), f.userID, created.Order.ID, orders.UpdateSalesOrderInput{
		StatusID: statusConfirmed,
		Items:    []orders.LineInput{line(p, 7, "10")},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, f.stock(t, p))
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, -7, res.Transactions[0].Quantity)
	f.requireConservation(t)
}

func TestSalesUpdate_PendingAPendingIgnoraLineas(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 10, "10")
	created := f.createSale(t, statusPending, line(p, 2, "10"))

	res, err := f.sales.Update(context.Background(), f.userID, created.Order.ID, orders.UpdateSalesOrderInput{
		StatusID: statusCancelled,
		Items:    []orders.LineInput{line(p, 9, "10")},
		Notes:    ptr("cliente desistió"),
	})
	require.NoError(t, err)

	assert.Equal(t, 10, f.stock(t, p))
	assert.Empty(t, res.Transactions)
	assert.Equal(t, "cliente desistió", res.Order.Notes)
	assert.Equal(t, 9, res.Lines[0].Quantity, "las líneas sí se reemplazan")
}

func TestSalesUpdate_ConfirmarSinStockNoCambiaNada(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 10, "10")
	created := f.createSale(t, statusPending, line(p, 50, "10"))

	_, err := f.sales.Update(context.Background(), f.userID, created.Order.ID, orders.UpdateSalesOrderInput{
		StatusID: statusConfirmed,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.sales.Get(context.Background(), f.userID, created.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, statusPending, got.Order.StatusID, "el estado no cambia")
	assert.Equal(t, 10, f.stock(t, p))
	assert.Empty(t, f.store.Ledger())
}

func TestSalesUpdate_OrdenAjenaOInexistente(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 10, "10")
	created := f.createSale(t, statusPending, line(p, 1, "10"))

	_, err := f.sales.Update(context.Background(), uuid.New().String(), created.Order.ID, orders.UpdateSalesOrderInput{StatusID: statusConfirmed})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.sales.Update(context.Background(), f.userID, uuid.New().String(), orders.UpdateSalesOrderInput{StatusID: statusConfirmed})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrado
// ──────────────────────────────────────────────────────────────────────────────

func TestSalesDelete_ConfirmedDevuelveUnaSolaVez(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 10, "10")
	created := f.createSale(t, statusConfirmed, line(p, 4, "10"))

	res, err := f.sales.Delete(context.Background(), f.userID, created.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, p))
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, entity.TransactionAdjustment, res.Transactions[0].Type)
	assert.Zero(t, f.store.SalesOrderCount())

	_, err = f.sales.Delete(context.Background(), f.userID, created.Order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 10, f.stock(t, p), "un segundo borrado no devuelve de nuevo")
	assert.Len(t, f.store.Ledger(), 2, "las entradas sobreviven al borrado de la orden")
	f.requireConservation(t)
}

func TestSalesDelete_PendingNoMueveStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 10, "10")
	created := f.createSale(t, statusPending, line(p, 4, "10"))

	res, err := f.sales.Delete(context.Background(), f.userID, created.Order.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Transactions)
	assert.Equal(t, 10, f.stock(t, p))
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacción del caller y lectura
// ──────────────────────────────────────────────────────────────────────────────

func TestSales_AnidarTransaccionFalla(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 10, "10")

	var inner error
	err := f.store.Run(context.Background(), func(ctx context.Context, _ repository.TxRepos) error {
		_, inner = f.sales.Create(ctx, f.userID, orders.CreateSalesOrderInput{
			CustomerID: f.customer, StatusID: statusConfirmed, Items: []orders.LineInput{line(p, 1, "10")},
		})
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, inner, domain.ErrNestedTransaction)
	assert.Equal(t, 10, f.stock(t, p))
}

func TestSales_VariantesInTxComparteTransaccion(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 10, "10")
	boom := errors.New("abortar")

	err := f.store.Run(context.Background(), func(ctx context.Context, repos repository.TxRepos) error {
		res, err := f.sales.CreateInTx(ctx, repos, f.userID, orders.CreateSalesOrderInput{
			CustomerID: f.customer, StatusID: statusConfirmed, Items: []orders.LineInput{line(p, 3, "10")},
		})
		if err != nil {
			return err
		}
		if _, err := f.sales.UpdateInTx(ctx, repos, f.userID, res.Order.ID, orders.UpdateSalesOrderInput{
			Items: []orders.LineInput{line(p, 5, "10")},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 10, f.stock(t, p), "el rollback del caller deshace ambas operaciones")
	assert.Zero(t, f.store.SalesOrderCount())

	err = f.store.Run(context.Background(), func(ctx context.Context, repos repository.TxRepos) error {
		res, err := f.sales.CreateInTx(ctx, repos, f.userID, orders.CreateSalesOrderInput{
			CustomerID: f.customer, StatusID: statusConfirmed, Items: []orders.LineInput{line(p, 3, "10")},
		})
		if err != nil {
			return err
		}
		_, err = f.sales.DeleteInTx(ctx, repos, f.userID, res.Order.ID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, p))
	assert.Len(t, f.store.Ledger(), 2)
	f.requireConservation(t)
}

func TestSalesGet_DevuelveLineasYControlaPropiedad(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, 10, "10")
	created := f.createSale(t, statusPending, line(p, 2, "10"))

	got, err := f.sales.Get(context.Background(), f.userID, created.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Order.ID, got.Order.ID)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, p, got.Lines[0].ProductID)

	_, err = f.sales.Get(context.Background(), uuid.New().String(), created.Order.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conservación del libro
// ──────────────────────────────────────────────────────────────────────────────

func TestSales_SecuenciaConservaElLibro(t *testing.T) {
	f := newFixture(t)
	p1 := f.product(t, 40, "10")
	p2 := f.product(t, 40, "10")
	ctx := context.Background()

	a := f.createSale(t, statusConfirmed, line(p1, 5, "10"), line(p2, 5, "10"))
	b := f.createSale(t, statusPending, line(p1, 7, "10"))

	_, err := f.sales.Update(ctx, f.userID, a.Order.ID, orders.UpdateSalesOrderInput{Items: []orders.LineInput{line(p1, 9, "10")}})
	require.NoError(t, err)
	_, err = f.sales.Update(ctx, f.userID, b.Order.ID, orders.UpdateSalesOrderInput{StatusID: statusConfirmed})
	require.NoError(t, err)
	_, err = f.sales.Update(ctx, f.userID, a.Order.ID, orders.UpdateSalesOrderInput{StatusID: statusPending})
	require.NoError(t, err)
	_, err = f.sales.Update(ctx, f.userID, a.Order.ID, orders.UpdateSalesOrderInput{StatusID: statusConfirmed, Items: []orders.LineInput{line(p2, 100, "10")}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = f.sales.Delete(ctx, f.userID, b.Order.ID)
	require.NoError(t, err)

	assert.Equal(t, 40, f.stock(t, p1))
	assert.Equal(t, 40, f.stock(t, p2))
	f.requireConservation(t)
}
