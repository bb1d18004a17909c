package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un artículo rastreable del catálogo.
// UnitValue es el valor monetario por unidad; los ítems con
// IsTrackableStock=false nunca aparecen en el libro de movimientos.
// Nunca se borra mientras existan transacciones que lo referencien:
// solo retiro lógico (RetiredAt).
type Item struct {
	ID                string
	Name              string
	Description       string
	Unit              string          // unidad de medida: "kg", "bolsa", "caja"...
	UnitValue         decimal.Decimal // valor por unidad, no negativo
	IsTrackableStock  bool
	LowStockThreshold *decimal.Decimal // umbral propio; nil = usar el global
	RetiredAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsRetired indica si el ítem fue retirado del catálogo (retiro lógico).
func (i *Item) IsRetired() bool {
	return i.RetiredAt != nil
}

// Threshold devuelve el umbral de stock bajo del ítem, o el global si no tiene propio.
func (i *Item) Threshold(global decimal.Decimal) decimal.Decimal {
	if i.LowStockThreshold != nil {
		return *i.LowStockThreshold
	}
	return global
}
