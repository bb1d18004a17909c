package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
)

// LedgerHandler maneja las peticiones HTTP del libro de transacciones (protegido).
type LedgerHandler struct {
	uc *ledger.UseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// Record godoc
// @Summary      Registrar transacción de stock
// @Description  Inserta una transacción en el libro con su running balance
//
//	congelado. Queda pending salvo causas auto-aprobadas.
//
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordTransactionRequest  true  "item_id, cause, quantity; direction solo para adjustment"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock/transactions [post]
func (h *LedgerHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := ledger.RecordInput{
		ItemID:      in.ItemID,
		Cause:       in.Cause,
		Quantity:    in.Quantity,
		Direction:   in.Direction,
		UnitCost:    in.UnitCost,
		Actor:       GetUserID(c),
		Remarks:     in.Remarks,
		BatchNumber: in.BatchNumber,
		ExpiryDate:  in.ExpiryDate,
		Source:      in.Source,
		Destination: in.Destination,
	}
	if in.TransactionDate != nil {
		input.TransactionDate = *in.TransactionDate
	}
	txn, err := h.uc.Record(c.Context(), input)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransactionToResponse(txn))
}

// Approve godoc
// @Summary      Aprobar transacción pendiente
// @Description  Solo desde la aprobación la transacción cuenta para el on-hand.
//
//	Una salida que dejaría la disponibilidad negativa falla con 409
//	y la transacción permanece pending.
//
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock/transactions/{id}/approve [post]
func (h *LedgerHandler) Approve(c *fiber.Ctx) error {
	txn, err := h.uc.Approve(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.TransactionToResponse(txn))
}

// Reject godoc
// @Summary      Rechazar transacción pendiente
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la transacción"
// @Param        body  body  dto.RejectTransactionRequest  true  "motivo del rechazo"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transactions/{id}/reject [post]
func (h *LedgerHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.Reject(c.Context(), c.Params("id"), in.Reason); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "transacción rechazada"})
}

// GetByID godoc
// @Summary      Obtener transacción por ID
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/transactions/{id} [get]
func (h *LedgerHandler) GetByID(c *fiber.Ctx) error {
	txn, err := h.uc.GetTransaction(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.TransactionToResponse(txn))
}

// History godoc
// @Summary      Historial de transacciones de un ítem
// @Description  Orden cronológico por fecha efectiva (la más antigua primero),
//
//	cada transacción con su running balance congelado.
//
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del ítem"
// @Param        from    query  string  false  "fecha inicial (RFC3339)"
// @Param        to      query  string  false  "fecha final (RFC3339)"
// @Param        limit   query  int     false  "tamaño de página"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {array}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/transactions [get]
func (h *LedgerHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	page.DefaultPage()
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from debe ser RFC3339"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to debe ser RFC3339"})
	}
	txns, err := h.uc.History(c.Context(), c.Params("id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(txns), "transactions": dto.TransactionsToResponse(txns)})
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
