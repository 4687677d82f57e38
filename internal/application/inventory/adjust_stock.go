package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// AdjustStockInput ajuste manual de existencias (conteo físico o merma).
type AdjustStockInput struct {
	ProductID string
	Quantity  int // con signo
	Type      entity.TransactionType
}

// AdjustStock aplica un ajuste manual en su propia transacción.
// Solo admite adjustment y loss; una merma (loss) siempre resta.
func (l *StockLedger) AdjustStock(ctx context.Context, userID string, in AdjustStockInput) (*entity.InventoryTransaction, error) {
	if userID == "" || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity == 0 {
		return nil, domain.Invalid("quantity", "no puede ser cero")
	}
	if in.Quantity > entity.MaxQuantity || in.Quantity < -entity.MaxQuantity {
		return nil, domain.Invalid("quantity", "fuera de rango")
	}
	switch in.Type {
	case entity.TransactionAdjustment:
	case entity.TransactionLoss:
		if in.Quantity > 0 {
			return nil, domain.Invalid("quantity", "una merma debe ser negativa")
		}
	default:
		return nil, domain.Invalid("type", "solo adjustment o loss")
	}

	var entry *entity.InventoryTransaction
	err := l.txRunner.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		entry, err = l.Apply(ctx, repos, RecordInput{
			UserID:    userID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Type:      in.Type,
		})
		return err
	})
	if err != nil {
		l.log.Warn().Err(err).Str("user_id", userID).Str("product_id", in.ProductID).Msg("ajuste de stock rechazado")
		return nil, err
	}
	l.Publish(ctx, []*entity.InventoryTransaction{entry})
	l.log.Info().
		Str("user_id", userID).
		Str("product_id", in.ProductID).
		Int("quantity", in.Quantity).
		Str("type", string(in.Type)).
		Msg("ajuste de stock registrado")
	return entry, nil
}
