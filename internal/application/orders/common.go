package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appinventory "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
	"github.com/jhoicas/stock-ledger-api/pkg/metrics"
	"github.com/jhoicas/stock-ledger-api/pkg/telemetry"
)

// DefaultTaxRate tasa usada si Deps.TaxRate no se configura.
var DefaultTaxRate = decimal.RequireFromString("0.19")

// Deps dependencias compartidas por los orquestadores de órdenes.
type Deps struct {
	TxRunner appinventory.TxRunner
	Ledger   *appinventory.StockLedger
	TaxRate  *decimal.Decimal // nil = DefaultTaxRate
	Log      *logger.Logger
	Metrics  *metrics.Metrics // nil = sin métricas
	Tracer   trace.Tracer     // nil = noop
	Now      func() time.Time
}

type core struct {
	txRunner appinventory.TxRunner
	ledger   *appinventory.StockLedger
	taxRate  decimal.Decimal
	log      *logger.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	now      func() time.Time
	kind     string
}

func newCore(d Deps, kind string) core {
	c := core{
		txRunner: d.TxRunner,
		ledger:   d.Ledger,
		taxRate:  DefaultTaxRate,
		log:      d.Log,
		metrics:  d.Metrics,
		tracer:   d.Tracer,
		now:      d.Now,
		kind:     kind,
	}
	if d.TaxRate != nil {
		c.taxRate = *d.TaxRate
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	c.log = c.log.Named(kind + "_orders")
	if c.tracer == nil {
		c.tracer = telemetry.Noop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// txFunc cuerpo de una operación dentro de la transacción; devuelve la orden afectada
// y las entradas del libro creadas.
type txFunc func(ctx context.Context, repos repository.TxRepos) (orderID string, entries []*entity.InventoryTransaction, err error)

// run abre la transacción, traza la operación y registra métricas y logs una vez confirmada.
func (c core) run(ctx context.Context, op, userID string, fn txFunc) error {
	ctx, span := c.tracer.Start(ctx, c.kind+"_order."+op, trace.WithAttributes(
		attribute.String("user_id", userID),
	))
	defer span.End()
	start := c.now()

	var (
		orderID string
		entries []*entity.InventoryTransaction
	)
	err := c.txRunner.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		var err error
		orderID, entries, err = fn(ctx, repos)
		return err
	})
	c.metrics.OrderOperation(c.kind, op, outcome(err), c.now().Sub(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn().Err(err).Str("op", op).Str("user_id", userID).Str("order_id", orderID).Msg("operación de orden rechazada")
		return err
	}

	byType := map[entity.TransactionType]int{}
	for _, e := range entries {
		byType[e.Type]++
	}
	for t, n := range byType {
		c.metrics.LedgerEntry(string(t), n)
	}
	span.SetAttributes(
		attribute.String("order_id", orderID),
		attribute.Int("ledger_entries", len(entries)),
	)
	span.SetStatus(codes.Ok, "")
	c.ledger.Publish(ctx, entries)
	c.log.Info().
		Str("op", op).
		Str("user_id", userID).
		Str("order_id", orderID).
		Int("ledger_entries", len(entries)).
		Msg("operación de orden confirmada")
	return nil
}

// runRead ejecuta una lectura consistente dentro de una transacción.
func (c core) runRead(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error {
	ctx, span := c.tracer.Start(ctx, c.kind+"_order.get")
	defer span.End()
	err := c.txRunner.Run(ctx, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrInsufficientStock):
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}

// buildLineSet valida las líneas de entrada. required exige al menos una línea.
func buildLineSet(items []LineInput, required bool) (inventory.LineSet, error) {
	if required && len(items) == 0 {
		return inventory.LineSet{}, domain.Invalid("items", "se requiere al menos un producto")
	}
	lines := make([]inventory.Line, 0, len(items))
	for _, it := range items {
		if it.Quantity > entity.MaxQuantity {
			return inventory.LineSet{}, domain.Invalid("quantity", "excede el máximo permitido")
		}
		if it.UnitPrice.IsNegative() {
			return inventory.LineSet{}, domain.Invalid("unit_price", "no puede ser negativo")
		}
		lines = append(lines, inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return inventory.NewLineSet(lines)
}

// lineSetFromStored reconstruye el conjunto a partir de las líneas persistidas.
func lineSetFromStored(stored []*entity.OrderLine) (inventory.LineSet, error) {
	lines := make([]inventory.Line, 0, len(stored))
	for _, l := range stored {
		lines = append(lines, inventory.Line{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	set, err := inventory.NewLineSet(lines)
	if err != nil {
		return inventory.LineSet{}, fmt.Errorf("líneas almacenadas inconsistentes: %w", err)
	}
	return set, nil
}

func toOrderLines(set inventory.LineSet) []*entity.OrderLine {
	out := make([]*entity.OrderLine, 0, set.Len())
	for _, l := range set.Lines() {
		out = append(out, &entity.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return out
}

// totals subtotal = Σ cantidad·precio; total = subtotal·(1 + tasa). Ambos a 2 decimales.
func (c core) totals(set inventory.LineSet) (subtotal, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, l := range set.Lines() {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	total = subtotal.Mul(decimal.NewFromInt(1).Add(c.taxRate)).Round(2)
	return subtotal.Round(2), total
}

// checkProducts valida existencia y propiedad de cada producto antes de cualquier mutación.
func checkProducts(ctx context.Context, repos repository.TxRepos, userID string, set inventory.LineSet) error {
	for _, id := range set.ProductIDs() {
		p, err := repos.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
		}
		if p.UserID != userID {
			return fmt.Errorf("producto %s: %w", id, domain.ErrForbidden)
		}
	}
	return nil
}

// lineRefs indexa los IDs de línea por producto; las líneas nuevas tienen prioridad.
func lineRefs(groups ...[]*entity.OrderLine) map[string]*string {
	refs := map[string]*string{}
	for _, lines := range groups {
		for _, l := range lines {
			if _, ok := refs[l.ProductID]; ok || l.ID == "" {
				continue
			}
			id := l.ID
			refs[l.ProductID] = &id
		}
	}
	return refs
}

func validOwner(userID string) error {
	if userID == "" {
		return domain.Invalid("user_id", "requerido")
	}
	return nil
}

func validOrderID(orderID string) error {
	if orderID == "" {
		return domain.Invalid("order_id", "requerido")
	}
	return nil
}

func emptySet() inventory.LineSet {
	s, _ := inventory.NewLineSet(nil)
	return s
}

// statusByID resuelve el nombre canónico del estado; un id desconocido es error de validación.
func statusByID(ctx context.Context, repos repository.TxRepos, id int) (*entity.OrderStatus, error) {
	st, err := repos.Statuses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, domain.Invalid("status_id", fmt.Sprintf("estado desconocido %d", id))
	}
	return st, nil
}

// stockInputs traduce los movimientos de la política a entradas del libro ligadas a la orden.
func stockInputs(userID, orderID string, changes []inventory.StockChange, refs map[string]*string, purchase bool) []appinventory.RecordInput {
	inputs := make([]appinventory.RecordInput, 0, len(changes))
	for _, ch := range changes {
		oid := orderID
		in := appinventory.RecordInput{
			UserID:    userID,
			ProductID: ch.ProductID,
			Quantity:  ch.Delta,
			Type:      ch.Type,
			OrderID:   &oid,
		}
		if purchase {
			in.PurchaseOrderLineID = refs[ch.ProductID]
		} else {
			in.SalesOrderLineID = refs[ch.ProductID]
		}
		inputs = append(inputs, in)
	}
	return inputs
}
