package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// two divisor para la franja crítica: critical cuando available <= umbral/2.
var two = decimal.NewFromInt(2)

// StockStatus deriva el estado de stock de un ítem (política, no dato almacenado):
//
//	out_of_stock: on_hand == 0
//	critical:     0 < available <= umbral/2
//	low:          0 < available <= umbral
//	good:         el resto
func StockStatus(onHand, available, threshold decimal.Decimal) string {
	if onHand.IsZero() {
		return entity.StockStatusOutOfStock
	}
	if available.GreaterThan(decimal.Zero) && available.LessThanOrEqual(threshold.Div(two)) {
		return entity.StockStatusCritical
	}
	if available.GreaterThan(decimal.Zero) && available.LessThanOrEqual(threshold) {
		return entity.StockStatusLow
	}
	return entity.StockStatusGood
}
