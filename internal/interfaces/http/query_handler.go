package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/query"
)

// QueryHandler maneja el lado de lectura: posición, alertas, valoración,
// distribución y verificación del libro (protegido).
type QueryHandler struct {
	uc *query.UseCase
}

// NewQueryHandler construye el handler.
func NewQueryHandler(uc *query.UseCase) *QueryHandler {
	return &QueryHandler{uc: uc}
}

// Position godoc
// @Summary      Posición de stock de un ítem
// @Description  on_hand, reserved, available y estado derivado, recomputados
//
//	desde el flujo de transacciones aprobadas.
//
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del ítem"
// @Success      200  {object}  dto.PositionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/position [get]
func (h *QueryHandler) Position(c *fiber.Ctx) error {
	pos, err := h.uc.Position(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.PositionToResponse(pos))
}

// LowStock godoc
// @Summary      Alertas de stock bajo
// @Description  Ítems rastreables en estado low, critical u out_of_stock.
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockAlertResponse
// @Router       /api/stock/alerts [get]
func (h *QueryHandler) LowStock(c *fiber.Ctx) error {
	alerts, err := h.uc.LowStock(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.LowStockAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.LowStockAlertResponse{
			Item:     dto.ItemToResponse(a.Item),
			Position: dto.PositionToResponse(a.Position),
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "alerts": out})
}

// Valuation godoc
// @Summary      Valoración del inventario
// @Description  on_hand × unit_value por ítem rastreable y total general.
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationResponse
// @Router       /api/stock/valuation [get]
func (h *QueryHandler) Valuation(c *fiber.Ctx) error {
	valuations, total, err := h.uc.Valuation(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	out := dto.ValuationResponse{Total: total}
	for _, v := range valuations {
		out.Items = append(out.Items, dto.ItemValuationResponse{
			Item:   dto.ItemToResponse(v.Item),
			OnHand: v.OnHand,
			Value:  v.Value,
		})
	}
	return c.JSON(out)
}

// StatusDistribution godoc
// @Summary      Distribución de ítems por estado de stock
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/stock/status-distribution [get]
func (h *QueryHandler) StatusDistribution(c *fiber.Ctx) error {
	dist, err := h.uc.StatusDistribution(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dist)
}

// VerifyLedger godoc
// @Summary      Verificación por replay del libro de un ítem
// @Description  Reproduce las transacciones efectivas desde cero y compara el
//
//	balance acumulado contra cada running balance congelado.
//
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del ítem"
// @Success      200  {object}  dto.LedgerAuditResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/verify [get]
func (h *QueryHandler) VerifyLedger(c *fiber.Ctx) error {
	audit, err := h.uc.VerifyLedger(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	out := dto.LedgerAuditResponse{
		ItemID:       audit.ItemID,
		Transactions: audit.Transactions,
		FinalBalance: audit.FinalBalance,
		Consistent:   audit.Consistent,
	}
	for _, m := range audit.Mismatches {
		out.Mismatches = append(out.Mismatches, dto.BalanceMismatchResponse{
			TransactionID: m.TransactionID,
			Expected:      m.Expected,
			Stored:        m.Stored,
		})
	}
	return c.JSON(out)
}
