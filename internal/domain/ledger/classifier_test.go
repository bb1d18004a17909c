package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// TestClassify_Totalidad verifica que cada causa de la enumeración mapea a
// exactamente un tipo de movimiento. Si alguien agrega una causa sin política,
// o cambia la política por accidente, este test falla de inmediato.
// ──────────────────────────────────────────────────────────────────────────────

func TestClassify_Totalidad(t *testing.T) {
	expected := map[string]string{
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

	for cause, want := range expected {
		got, err := ledger.Classify(cause)
		require.NoError(t, err, "la causa %q debe clasificarse sin error", cause)
		assert.Equal(t, want, got, "movimiento incorrecto para la causa %q", cause)
	}

	// KnownCauses debe cubrir exactamente la enumeración.
	assert.ElementsMatch(t, keys(expected), ledger.KnownCauses())
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// TestClassify_CausaDesconocida verifica que una causa fuera de la enumeración
// se rechaza con ErrUnknownCause en vez de clasificarse por defecto.
func TestClassify_CausaDesconocida(t *testing.T) {
	for _, cause := range []string{"unknown_thing", "", "PURCHASE", "donación"} {
		_, err := ledger.Classify(cause)
		assert.ErrorIs(t, err, domain.ErrUnknownCause, "la causa %q no debe clasificarse", cause)
	}
}
