package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/catalog"
	"github.com/jhoicas/stock-ledger-api/internal/application/ledgertest"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

func TestCreateUpdateRetire(t *testing.T) {
	store := ledgertest.NewStore()
	uc := catalog.NewUseCase(store.ItemRepo())
	ctx := context.Background()

	item, err := uc.Create(ctx, catalog.CreateInput{
		Name:             "  Arroz fortificado ",
		Unit:             "kg",
		UnitValue:        decimal.NewFromInt(3),
		IsTrackableStock: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Arroz fortificado", item.Name, "el nombre se normaliza")
	assert.NotEmpty(t, item.ID)

	newValue := decimal.NewFromFloat(3.5)
	updated, err := uc.Update(ctx, item.ID, catalog.UpdateInput{UnitValue: &newValue})
	require.NoError(t, err)
	assert.True(t, updated.UnitValue.Equal(newValue))
	assert.Equal(t, "kg", updated.Unit, "los campos nil no se tocan")

	require.NoError(t, uc.Retire(ctx, item.ID))
	// Retiro idempotente.
	require.NoError(t, uc.Retire(ctx, item.ID))

	got, err := uc.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRetired())

	// Retirado: no se edita.
	_, err = uc.Update(ctx, item.ID, catalog.UpdateInput{UnitValue: &newValue})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Retirado: fuera del listado por defecto, visible con includeRetired.
	visible, err := uc.List(ctx, 0, 0, false)
	require.NoError(t, err)
	assert.Empty(t, visible)
	all, err := uc.List(ctx, 0, 0, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreate_Validaciones(t *testing.T) {
	store := ledgertest.NewStore()
	uc := catalog.NewUseCase(store.ItemRepo())
	ctx := context.Background()

	cases := []catalog.CreateInput{
		{Name: "", Unit: "kg", UnitValue: decimal.NewFromInt(1)},
		{Name: "Arroz", Unit: " ", UnitValue: decimal.NewFromInt(1)},
		{Name: "Arroz", Unit: "kg", UnitValue: decimal.NewFromInt(-1)},
	}
	for _, in := range cases {
		_, err := uc.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}
