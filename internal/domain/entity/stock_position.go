package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados derivados de la posición de stock de un ítem.
const (
	StockStatusGood       = "good"
	StockStatusLow        = "low"
	StockStatusCritical   = "critical"
	StockStatusOutOfStock = "out_of_stock"
)

// StockPosition es la posición derivada de un ítem: siempre recomputable
// desde el flujo de transacciones aprobadas más las reservas activas.
// Invariante: Available = OnHand - Reserved >= 0 (no hay backorders).
type StockPosition struct {
	ItemID     string
	OnHand     decimal.Decimal
	Reserved   decimal.Decimal
	Available  decimal.Decimal
	Status     string
	ComputedAt time.Time
}
