// Package ledger contiene los servicios de dominio puros del libro de
// inventario: clasificación de causas de transacción y política de estado
// de stock.
package ledger

import (
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// causeMovements es la política fija causa → tipo de movimiento.
// Enumeración cerrada: una causa fuera del mapa se rechaza con
// ErrUnknownCause, nunca se clasifica por defecto.
var causeMovements = map[string]string{
	entity.CausePurchase:     entity.MovementStockIn,
	entity.CauseGrant:        entity.MovementStockIn,
	entity.CauseReturn:       entity.MovementStockIn,
	entity.CauseTransferIn:   entity.MovementStockIn,
	entity.CauseInitialStock: entity.MovementStockIn,
	entity.CauseDistribution: entity.MovementStockOut,
	entity.CauseDamage:       entity.MovementStockOut,
	entity.CauseExpired:      entity.MovementStockOut,
	entity.CauseTransferOut:  entity.MovementStockOut,
	entity.CauseAdjustment:   entity.MovementAdjustment,
}

// Classify mapea una causa de transacción a su tipo de movimiento
// (stock_in, stock_out o adjustment). Función pura y total sobre la
// enumeración de causas; retorna ErrUnknownCause para cualquier otra cadena.
func Classify(cause string) (string, error) {
	movement, ok := causeMovements[cause]
	if !ok {
		return "", domain.ErrUnknownCause
	}
	return movement, nil
}

// KnownCauses devuelve las causas reconocidas (para validación y documentación).
func KnownCauses() []string {
	causes := make([]string, 0, len(causeMovements))
	for c := range causeMovements {
		causes = append(causes, c)
	}
	return causes
}
