package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback y se devuelve ese mismo error; si no, Commit.
// fn recibe un ctx marcado como transaccional; Run con un ctx que ya está dentro de una transacción falla con domain.ErrNestedTransaction.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error
}
