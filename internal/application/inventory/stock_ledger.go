package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// Límites de paginación del listado de transacciones por usuario.
const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// RecordInput describe un movimiento de stock y su causa.
// Quantity positivo aumenta el stock, negativo lo disminuye.
type RecordInput struct {
	UserID              string
	ProductID           string
	Quantity            int
	Type                entity.TransactionType
	OrderID             *string
	SalesOrderLineID    *string
	PurchaseOrderLineID *string
}

// StockLedger es el libro de inventario: registra cada mutación de stock como una entrada inmutable
// con la foto del stock anterior y el nuevo.
type StockLedger struct {
	txRunner        TxRunner
	productRepo     repository.ProductRepository
	transactionRepo repository.InventoryTransactionRepository
	publisher       LedgerPublisher
	log             *logger.Logger
	now             func() time.Time
}

// NewStockLedger construye el libro. productRepo y transactionRepo se usan para lecturas fuera de tx.
func NewStockLedger(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	transactionRepo repository.InventoryTransactionRepository,
	log *logger.Logger,
) *StockLedger {
	if log == nil {
		log = logger.Nop()
	}
	return &StockLedger{
		txRunner:        txRunner,
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		log:             log.Named("stock_ledger"),
		now:             time.Now,
	}
}

// Record agrega una entrada leyendo el stock actual dentro de la tx (ve las escrituras propias de la tx).
// No modifica products.quantity ni valida el piso; para mutar stock usar Apply.
func (l *StockLedger) Record(ctx context.Context, repos repository.TxRepos, in RecordInput) (*entity.InventoryTransaction, error) {
	if !in.Type.Valid() {
		return nil, domain.Invalid("type", "tipo de transacción desconocido")
	}
	product, err := repos.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.UserID != in.UserID {
		return nil, domain.ErrForbidden
	}
	return l.appendEntry(ctx, repos, in, product.Quantity, product.Quantity+in.Quantity)
}

// Apply bloquea la fila del producto (SELECT FOR UPDATE), verifica que el stock no quede negativo,
// actualiza la cantidad y agrega la entrada con exactamente ese delta, todo en la misma tx.
// Un delta cero no genera entrada y devuelve (nil, nil).
func (l *StockLedger) Apply(ctx context.Context, repos repository.TxRepos, in RecordInput) (*entity.InventoryTransaction, error) {
	if !in.Type.Valid() {
		return nil, domain.Invalid("type", "tipo de transacción desconocido")
	}
	if in.Quantity > entity.MaxQuantity || in.Quantity < -entity.MaxQuantity {
		return nil, domain.Invalid("quantity", "fuera de rango")
	}
	if in.Quantity == 0 {
		return nil, nil
	}
	product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.UserID != in.UserID {
		return nil, domain.ErrForbidden
	}

	previous := product.Quantity
	next := previous + in.Quantity
	if next < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID: in.ProductID,
			Requested: -in.Quantity,
			Available: previous,
		}
	}
	if next > entity.MaxQuantity {
		return nil, domain.Invalid("quantity", "el stock resultante excede el máximo permitido")
	}
	if err := repos.Products.UpdateStock(ctx, in.ProductID, next); err != nil {
		return nil, err
	}
	return l.appendEntry(ctx, repos, in, previous, next)
}

// ApplyAll aplica los movimientos en orden ascendente de producto (orden de bloqueo determinista).
// El primer error aborta; el caller debe hacer rollback.
func (l *StockLedger) ApplyAll(ctx context.Context, repos repository.TxRepos, inputs []RecordInput) ([]*entity.InventoryTransaction, error) {
	ordered := make([]RecordInput, len(inputs))
	copy(ordered, inputs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	entries := make([]*entity.InventoryTransaction, 0, len(ordered))
	for _, in := range ordered {
		entry, err := l.Apply(ctx, repos, in)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (l *StockLedger) appendEntry(ctx context.Context, repos repository.TxRepos, in RecordInput, previous, next int) (*entity.InventoryTransaction, error) {
	entry := &entity.InventoryTransaction{
		ID:                  uuid.New().String(),
		UserID:              in.UserID,
		ProductID:           in.ProductID,
		Quantity:            in.Quantity,
		Type:                in.Type,
		PreviousStock:       previous,
		NewStock:            next,
		OrderID:             in.OrderID,
		SalesOrderLineID:    in.SalesOrderLineID,
		PurchaseOrderLineID: in.PurchaseOrderLineID,
		CreatedAt:           l.now(),
	}
	if err := repos.Transactions.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListForProduct historial de un producto, más reciente primero.
func (l *StockLedger) ListForProduct(ctx context.Context, userID, productID string) ([]*entity.InventoryTransaction, error) {
	if userID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := l.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return l.transactionRepo.ListByProduct(ctx, userID, productID)
}

// Availability indica si el producto del usuario tiene al menos quantity unidades, sin bloquear ni mutar.
func (l *StockLedger) Availability(ctx context.Context, userID, productID string, quantity int) (bool, error) {
	if userID == "" || productID == "" {
		return false, domain.ErrInvalidInput
	}
	if quantity <= 0 || quantity > entity.MaxQuantity {
		return false, domain.Invalid("quantity", "debe estar entre 1 y el máximo permitido")
	}
	product, err := l.productRepo.GetByID(ctx, productID)
	if err != nil {
		return false, err
	}
	if product == nil {
		return false, domain.ErrNotFound
	}
	if product.UserID != userID {
		return false, domain.ErrForbidden
	}
	return l.productRepo.HasSufficientStock(ctx, productID, userID, quantity)
}

// ListForOwner transacciones del usuario paginadas, más reciente primero.
func (l *StockLedger) ListForOwner(ctx context.Context, userID string, limit, offset int) ([]*entity.InventoryTransaction, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	limit, offset = NormalizePage(limit, offset)
	return l.transactionRepo.ListByUser(ctx, userID, limit, offset)
}

// NormalizePage aplica el límite por defecto, el tope y el piso de offset del listado por usuario.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
