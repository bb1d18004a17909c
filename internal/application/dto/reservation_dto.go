package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ReserveRequest body para POST /api/reservations.
type ReserveRequest struct {
	ItemID              string          `json:"item_id"`
	Quantity            decimal.Decimal `json:"quantity"`
	RequestingContextID string          `json:"requesting_context_id"`
}

// ConsumeReservationRequest body para POST /api/reservations/:id/consume.
// ActualQuantity puede diferir de lo reservado (cumplimiento parcial o exceso).
type ConsumeReservationRequest struct {
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
}

// ReservationResponse representación de una reserva.
type ReservationResponse struct {
	ID                  string          `json:"id"`
	ItemID              string          `json:"item_id"`
	Quantity            decimal.Decimal `json:"quantity"`
	RequestingContextID string          `json:"requesting_context_id,omitempty"`
	Status              string          `json:"status"`
	CreatedBy           string          `json:"created_by,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	ClosedAt            *time.Time      `json:"closed_at,omitempty"`
}

// ReservationToResponse mapea la entidad al DTO de respuesta.
func ReservationToResponse(res *entity.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:                  res.ID,
		ItemID:              res.ItemID,
		Quantity:            res.Quantity,
		RequestingContextID: res.RequestingContextID,
		Status:              res.Status,
		CreatedBy:           res.CreatedBy,
		CreatedAt:           res.CreatedAt,
		ClosedAt:            res.ClosedAt,
	}
}
