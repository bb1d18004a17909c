package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
)

// TestStockStatus cubre las franjas de la política de estado con el umbral
// por defecto de 10 unidades: out_of_stock / critical / low / good.
func TestStockStatus(t *testing.T) {
	threshold := decimal.NewFromInt(10)

	cases := []struct {
		name      string
		onHand    int64
		available int64
		want      string
	}{
		{"sin stock", 0, 0, entity.StockStatusOutOfStock},
		{"critical en el borde", 50, 5, entity.StockStatusCritical},
		{"critical minimo", 20, 1, entity.StockStatusCritical},
		{"low sobre la mitad", 50, 6, entity.StockStatusLow},
		{"low en el umbral", 50, 10, entity.StockStatusLow},
		{"good sobre el umbral", 50, 11, entity.StockStatusGood},
		{"todo reservado", 50, 0, entity.StockStatusGood},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ledger.StockStatus(decimal.NewFromInt(tc.onHand), decimal.NewFromInt(tc.available), threshold)
			assert.Equal(t, tc.want, got)
		})
	}
}
