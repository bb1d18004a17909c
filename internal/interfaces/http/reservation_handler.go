package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/reservation"
)

// ReservationHandler maneja las peticiones HTTP de reservas (protegido).
type ReservationHandler struct {
	uc *reservation.UseCase
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *reservation.UseCase) *ReservationHandler {
	return &ReservationHandler{uc: uc}
}

// Reserve godoc
// @Summary      Reservar cantidad contra la disponibilidad de un ítem
// @Description  El check-then-reserve es atómico por ítem: dos reservas
//
//	concurrentes nunca pasan ambas la validación contra el mismo available.
//
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "item_id, quantity, requesting_context_id"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.Reserve(c.Context(), in.ItemID, in.Quantity, in.RequestingContextID, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReservationToResponse(res))
}

// Release godoc
// @Summary      Liberar una reserva activa
// @Description  Devuelve la cantidad al available. Idempotente: liberar una
//
//	reserva ya cerrada es un no-op.
//
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la reserva"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	if err := h.uc.Release(c.Context(), c.Params("id")); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reserva liberada"})
}

// Consume godoc
// @Summary      Consumir una reserva (salida real de stock)
// @Description  Registra la salida por distribución con la cantidad real y
//
//	cierra la reserva, todo en la misma transacción.
//
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "ID de la reserva"
// @Param        body  body  dto.ConsumeReservationRequest  true  "actual_quantity"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/consume [post]
func (h *ReservationHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	txn, err := h.uc.Consume(c.Context(), c.Params("id"), in.ActualQuantity, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.TransactionToResponse(txn))
}

// GetByID godoc
// @Summary      Obtener reserva por ID
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	res, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ReservationToResponse(res))
}

// ListByContext godoc
// @Summary      Reservas de un contexto solicitante
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        context_id  query  string  true  "ID del contexto solicitante"
// @Success      200  {array}  dto.ReservationResponse
// @Router       /api/reservations [get]
func (h *ReservationHandler) ListByContext(c *fiber.Ctx) error {
	contextID := c.Query("context_id")
	if contextID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "context_id requerido"})
	}
	reservations, err := h.uc.ListByContext(c.Context(), contextID)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.ReservationResponse, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, dto.ReservationToResponse(res))
	}
	return c.JSON(fiber.Map{"total": len(out), "reservations": out})
}
