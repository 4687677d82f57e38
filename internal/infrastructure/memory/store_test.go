package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

func TestRun_CommitPublicaCambios(t *testing.T) {
	store := memory.New()
	store.AddProduct(entity.Product{ID: "p1", UserID: "u1", Quantity: 5})

	err := store.Run(context.Background(), func(ctx context.Context, repos repository.TxRepos) error {
		return repos.Products.UpdateStock(ctx, "p1", 9)
	})
	require.NoError(t, err)

	p, ok := store.Product("p1")
	require.True(t, ok)
	assert.Equal(t, 9, p.Quantity)
}

func TestRun_ErrorRevierteYSeDevuelveSinModificar(t *testing.T) {
	store := memory.New()
	store.AddProduct(entity.Product{ID: "p1", UserID: "u1", Quantity: 5})
	boom := errors.New("boom")

	err := store.Run(context.Background(), func(ctx context.Context, repos repository.TxRepos) error {
		if err := repos.Products.UpdateStock(ctx, "p1", 1); err != nil {
			return err
		}
		if err := repos.Transactions.Create(ctx, &entity.InventoryTransaction{UserID: "u1", ProductID: "p1", Quantity: -4}); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, err == boom, "mismo valor de error")

	p, _ := store.Product("p1")
	assert.Equal(t, 5, p.Quantity)
	assert.Empty(t, store.Ledger())
}

func TestRun_AnidadoFalla(t *testing.T) {
	store := memory.New()
	var inner error
	err := store.Run(context.Background(), func(ctx context.Context, _ repository.TxRepos) error {
		inner = store.Run(ctx, func(context.Context, repository.TxRepos) error { return nil })
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, inner, domain.ErrNestedTransaction)
}

func TestRun_LeeSusPropiasEscrituras(t *testing.T) {
	store := memory.New()
	store.AddProduct(entity.Product{ID: "p1", UserID: "u1", Quantity: 5})

	_ = store.Run(context.Background(), func(ctx context.Context, repos repository.TxRepos) error {
		require.NoError(t, repos.Products.UpdateStock(ctx, "p1", 7))
		p, err := repos.Products.GetForUpdate(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 7, p.Quantity)

		committed, _ := store.Product("p1")
		assert.Equal(t, 5, committed.Quantity, "fuera de la tx aún no se ve")
		return nil
	})
}

func TestRun_SerializaTransaccionesConcurrentes(t *testing.T) {
	store := memory.New()
	store.AddProduct(entity.Product{ID: "p1", UserID: "u1", Quantity: 0})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Run(context.Background(), func(ctx context.Context, repos repository.TxRepos) error {
				p, err := repos.Products.GetForUpdate(ctx, "p1")
				if err != nil {
					return err
				}
				return repos.Products.UpdateStock(ctx, "p1", p.Quantity+1)
			})
		}()
	}
	wg.Wait()

	p, _ := store.Product("p1")
	assert.Equal(t, 50, p.Quantity, "sin actualizaciones perdidas")
}

func TestFailHook_SimulaFalloDeEscritura(t *testing.T) {
	store := memory.New()
	store.AddProduct(entity.Product{ID: "p1", UserID: "u1", Quantity: 5})
	store.SetFailHook(func(op string) error {
		if op == "products.update_stock" {
			return domain.ErrPersistence
		}
		return nil
	})

	err := store.Run(context.Background(), func(ctx context.Context, repos repository.TxRepos) error {
		return repos.Products.UpdateStock(ctx, "p1", 1)
	})
	assert.ErrorIs(t, err, domain.ErrPersistence)

	store.SetFailHook(nil)
	err = store.Repos().Products.UpdateStock(context.Background(), "p1", 2)
	require.NoError(t, err, "autocommit sin hook")
	p, _ := store.Product("p1")
	assert.Equal(t, 2, p.Quantity)
}

func TestPurchaseOrders_UltimaOrdenPorFechaYDesempate(t *testing.T) {
	store := memory.New()
	repos := store.Repos()
	ctx := context.Background()
	base := entity.PurchaseOrder{UserID: "u1", SupplierID: "s1"}

	older := base
	older.ID = "a"
	older.OrderDate = mustDate(t, "2024-01-01")
	older.CreatedAt = mustDate(t, "2024-01-01")
	newer := base
	newer.ID = "b"
	newer.OrderDate = mustDate(t, "2024-02-01")
	newer.CreatedAt = mustDate(t, "2024-01-01")
	tie := base
	tie.ID = "c"
	tie.OrderDate = mustDate(t, "2024-02-01")
	tie.CreatedAt = mustDate(t, "2024-01-02")

	for _, o := range []entity.PurchaseOrder{older, newer, tie} {
		o := o
		require.NoError(t, repos.PurchaseOrders.Create(ctx, &o))
		require.NoError(t, repos.PurchaseOrders.ReplaceLines(ctx, o.ID, []*entity.OrderLine{{ProductID: "p1", Quantity: 1}}))
	}

	latest, err := repos.PurchaseOrders.LatestOrderIDForProduct(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "c", latest, "a igual fecha gana el creado después")

	none, err := repos.PurchaseOrders.LatestOrderIDForProduct(ctx, "u2", "p1")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}
