package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ItemReserved agrega la cantidad reservada activa de un ítem.
type ItemReserved struct {
	ItemID   string
	Reserved decimal.Decimal
}

// ReservationRepository define el puerto de persistencia de reservas.
type ReservationRepository interface {
	Create(res *entity.Reservation) error
	GetByID(id string) (*entity.Reservation, error)
	// Close transiciona la reserva a released o consumed. Solo válido desde active.
	Close(id string, status string, closedAt time.Time) error
	// ActiveQuantity suma las reservas activas del ítem.
	ActiveQuantity(itemID string) (decimal.Decimal, error)
	// ActiveQuantityAll agrega las reservas activas de todos los ítems.
	ActiveQuantityAll() ([]ItemReserved, error)
	ListByItem(itemID string, limit, offset int) ([]*entity.Reservation, error)
	ListByContext(contextID string) ([]*entity.Reservation, error)
}
