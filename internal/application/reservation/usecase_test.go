package reservation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/application/ledgertest"
	"github.com/jhoicas/stock-ledger-api/internal/application/reservation"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func setup(t *testing.T) (*ledgertest.Store, *appledger.UseCase, *reservation.UseCase) {
	t.Helper()
	store := ledgertest.NewStore()
	ledgerUC := appledger.NewUseCase(
		store, store.ItemRepo(), store.TxnRepo(), store.ResRepo(), nil,
		appledger.Config{AutoApproveCauses: []string{entity.CauseInitialStock}, LowStockThreshold: decimal.NewFromInt(10)},
	)
	resUC := reservation.NewUseCase(store, store.ResRepo(), ledgerUC)
	return store, ledgerUC, resUC
}

func seedStock(t *testing.T, store *ledgertest.Store, uc *appledger.UseCase, onHand int64) *entity.Item {
	t.Helper()
	item := &entity.Item{
		ID:               uuid.New().String(),
		Name:             "Frazada térmica",
		Unit:             "unidad",
		UnitValue:        decimal.NewFromInt(12),
		IsTrackableStock: true,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	require.NoError(t, store.ItemRepo().Create(item))
	if onHand > 0 {
		_, err := uc.Record(context.Background(), appledger.RecordInput{
			ItemID: item.ID, Cause: entity.CauseInitialStock, Quantity: decimal.NewFromInt(onHand), Actor: "seed",
		})
		require.NoError(t, err)
	}
	return item
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ──────────────────────────────────────────────────────────────────────────────
// Reserve
// ──────────────────────────────────────────────────────────────────────────────

func TestReserve_DescuentaDisponibleNoOnHand(t *testing.T) {
	store, ledgerUC, resUC := setup(t)
	item := seedStock(t, store, ledgerUC, 50)
	ctx := context.Background()

	res, err := resUC.Reserve(ctx, item.ID, qty(45), "evento-123", "coordinadora-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationActive, res.Status)

	pos, err := ledgerUC.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.OnHand.Equal(qty(50)), "la reserva no toca el on-hand")
	assert.True(t, pos.Reserved.Equal(qty(45)))
	assert.True(t, pos.Available.Equal(qty(5)))
	assert.Equal(t, entity.StockStatusCritical, pos.Status)
}

func TestReserve_DisponibleInsuficiente(t *testing.T) {
	store, ledgerUC, resUC := setup(t)
	item := seedStock(t, store, ledgerUC, 10)
	ctx := context.Background()

	_, err := resUC.Reserve(ctx, item.ID, qty(11), "evento-1", "x")
	assert.ErrorIs(t, err, domain.ErrInsufficientAvailableStock)

	// Sin reserva parcial.
	pos, err := ledgerUC.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.Reserved.IsZero())
	assert.True(t, pos.Available.Equal(qty(10)))
}

// TestReserve_Atomicidad: con available=10, dos reservas concurrentes de 6
// deben terminar en exactamente un éxito y un ErrInsufficientAvailableStock.
func TestReserve_Atomicidad(t *testing.T) {
	store, ledgerUC, resUC := setup(t)
	item := seedStock(t, store, ledgerUC, 10)
	ctx := context.Background()

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = resUC.Reserve(ctx, item.ID, qty(6), "evento-carrera", "worker")
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrInsufficientAvailableStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok, "exactamente una reserva debe ganar")
	assert.Equal(t, 1, insufficient)

	pos, err := ledgerUC.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.Reserved.Equal(qty(6)))
	assert.True(t, pos.Available.Equal(qty(4)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Release / Consume
// ──────────────────────────────────────────────────────────────────────────────

func TestRelease_Idempotente(t *testing.T) {
	store, ledgerUC, resUC := setup(t)
	item := seedStock(t, store, ledgerUC, 20)
	ctx := context.Background()

	res, err := resUC.Reserve(ctx, item.ID, qty(8), "evento-9", "x")
	require.NoError(t, err)

	require.NoError(t, resUC.Release(ctx, res.ID))
	// Segunda liberación: no-op, no error.
	require.NoError(t, resUC.Release(ctx, res.ID))

	got, err := resUC.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationReleased, got.Status)

	pos, err := ledgerUC.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.Available.Equal(qty(20)), "la cantidad vuelve al available")
}

// TestConsume_EscenarioCompleto recorre el escenario del ciclo de vida:
// on_hand=50; reserve(45) → available=5 (critical); distribución directa de 5
// + approve → on_hand=45; consume(actual=45) → on_hand=0, reserved=0,
// out_of_stock.
func TestConsume_EscenarioCompleto(t *testing.T) {
	store, ledgerUC, resUC := setup(t)
	item := seedStock(t, store, ledgerUC, 50)
	ctx := context.Background()

	res, err := resUC.Reserve(ctx, item.ID, qty(45), "evento-completo", "coordinadora-1")
	require.NoError(t, err)

	pos, err := ledgerUC.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.Available.Equal(qty(5)))

	// Salida directa sin reserva: ambas vías son legales.
	direct, err := ledgerUC.Record(ctx, appledger.RecordInput{
		ItemID: item.ID, Cause: entity.CauseDistribution, Quantity: qty(5), Actor: "coordinadora-1",
	})
	require.NoError(t, err)
	_, err = ledgerUC.Approve(ctx, direct.ID)
	require.NoError(t, err)

	pos, err = ledgerUC.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.OnHand.Equal(qty(45)))
	assert.True(t, pos.Available.IsZero())

	txn, err := resUC.Consume(ctx, res.ID, qty(45), "coordinadora-1")
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusCompleted, txn.Status)
	assert.Equal(t, entity.CauseDistribution, txn.Cause)
	assert.True(t, txn.RunningBalance.IsZero())

	got, err := resUC.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationConsumed, got.Status)

	pos, err = ledgerUC.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.OnHand.IsZero())
	assert.True(t, pos.Reserved.IsZero())
	assert.True(t, pos.Available.IsZero())
	assert.Equal(t, entity.StockStatusOutOfStock, pos.Status)
}

func TestConsume_ParcialYExceso(t *testing.T) {
	store, ledgerUC, resUC := setup(t)
	item := seedStock(t, store, ledgerUC, 30)
	ctx := context.Background()

	t.Run("cumplimiento parcial", func(t *testing.T) {
		res, err := resUC.Reserve(ctx, item.ID, qty(10), "evento-a", "x")
		require.NoError(t, err)

		txn, err := resUC.Consume(ctx, res.ID, qty(7), "x")
		require.NoError(t, err)
		assert.True(t, txn.Quantity.Equal(qty(7)))

		pos, err := ledgerUC.Position(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, pos.OnHand.Equal(qty(23)))
		assert.True(t, pos.Reserved.IsZero(), "la reserva se cierra aunque el consumo sea parcial")
	})

	t.Run("exceso validado contra available", func(t *testing.T) {
		// Quedan 23; reservar 20 y otra reserva de 3 deja available=0:
		// consumir 22 (exceso de 2 sobre lo reservado) debe fallar.
		res, err := resUC.Reserve(ctx, item.ID, qty(20), "evento-b", "x")
		require.NoError(t, err)
		_, err = resUC.Reserve(ctx, item.ID, qty(3), "evento-c", "x")
		require.NoError(t, err)

		_, err = resUC.Consume(ctx, res.ID, qty(22), "x")
		assert.ErrorIs(t, err, domain.ErrInsufficientAvailableStock)

		// Sin efecto parcial: la reserva sigue activa y el on-hand intacto.
		got, err := resUC.GetByID(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ReservationActive, got.Status)
		pos, err := ledgerUC.Position(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, pos.OnHand.Equal(qty(23)))

		// Exceso que sí cabe en el available tras liberar la otra reserva.
		require.NoError(t, resUC.Release(ctx, res.ID))
		res2, err := resUC.Reserve(ctx, item.ID, qty(10), "evento-d", "x")
		require.NoError(t, err)
		txn, err := resUC.Consume(ctx, res2.ID, qty(12), "x")
		require.NoError(t, err)
		assert.True(t, txn.Quantity.Equal(qty(12)))
	})
}

func TestConsume_ReservaCerrada(t *testing.T) {
	store, ledgerUC, resUC := setup(t)
	item := seedStock(t, store, ledgerUC, 10)
	ctx := context.Background()

	res, err := resUC.Reserve(ctx, item.ID, qty(5), "evento-z", "x")
	require.NoError(t, err)
	require.NoError(t, resUC.Release(ctx, res.ID))

	_, err = resUC.Consume(ctx, res.ID, qty(5), "x")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// TestDisponibilidadNuncaNegativa mezcla reservas, liberaciones y salidas
// concurrentes y verifica al final el invariante available >= 0.
func TestDisponibilidadNuncaNegativa(t *testing.T) {
	store, ledgerUC, resUC := setup(t)
	item := seedStock(t, store, ledgerUC, 40)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := resUC.Reserve(ctx, item.ID, qty(int64(i%4+1)), "evento-mix", "w")
			if err != nil {
				return // ErrInsufficientAvailableStock esperado bajo presión
			}
			switch i % 3 {
			case 0:
				_ = resUC.Release(ctx, res.ID)
			case 1:
				_, _ = resUC.Consume(ctx, res.ID, res.Quantity, "w")
			}
		}(i)
	}
	wg.Wait()

	pos, err := ledgerUC.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, pos.Available.LessThan(decimal.Zero), "available nunca puede ser negativo (got %s)", pos.Available)
	assert.False(t, pos.OnHand.LessThan(decimal.Zero))
}
