package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva.
const (
	ReservationActive   = "active"
	ReservationReleased = "released"
	ReservationConsumed = "consumed"
)

// Reservation aparta cantidad contra un compromiso externo pendiente
// (p.ej. un evento de servicio aún no cumplido) sin descontar el on-hand.
// Las reservas activas reducen Available, nunca OnHand.
type Reservation struct {
	ID                  string
	ItemID              string
	Quantity            decimal.Decimal
	RequestingContextID string // p.ej. ID del evento de servicio
	Status              string
	CreatedBy           string
	CreatedAt           time.Time
	ClosedAt            *time.Time
}

// IsActive indica si la reserva sigue apartando cantidad.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationActive
}
