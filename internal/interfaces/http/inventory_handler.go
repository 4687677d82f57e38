package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

// InventoryHandler expone los ajustes manuales y las lecturas del libro de inventario (protegido).
type InventoryHandler struct {
	ledger *inventory.StockLedger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.StockLedger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, quantity con signo, type (adjustment | loss)"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	entry, err := h.ledger.AdjustStock(c.UserContext(), userID, in.Input())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(entry))
}

// ListTransactions godoc
// @Summary      Transacciones del usuario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máximo de filas (por defecto 100, tope 500)"
// @Param        offset  query  int  false  "filas a saltar"
// @Success      200  {object}  dto.TransactionListResponse
// @Router       /api/inventory/transactions [get]
func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit y offset deben ser enteros"})
	}
	limit, offset := inventory.NormalizePage(page.Limit, page.Offset)
	list, err := h.ledger.ListForOwner(c.UserContext(), userID, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.TransactionListResponse{
		Items: dto.NewTransactionResponses(list),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Count: len(list)},
	})
}

// ProductTransactions godoc
// @Summary      Historial de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}   dto.TransactionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/transactions [get]
func (h *InventoryHandler) ProductTransactions(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	list, err := h.ledger.ListForProduct(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewTransactionResponses(list))
}

// Availability godoc
// @Summary      Disponibilidad de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true  "ID del producto"
// @Param        quantity  query  int     true  "cantidad requerida"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/availability [get]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var q dto.AvailabilityRequest
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity debe ser entero"})
	}
	productID := c.Params("id")
	ok, err := h.ledger.Availability(c.UserContext(), userID, productID, q.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AvailabilityResponse{ProductID: productID, Quantity: q.Quantity, Available: ok})
}
