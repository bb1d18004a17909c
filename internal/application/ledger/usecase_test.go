package ledger_test

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
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func newLedger(t *testing.T, store *ledgertest.Store, autoApprove ...string) *appledger.UseCase {
	t.Helper()
	if autoApprove == nil {
		autoApprove = []string{entity.CauseInitialStock}
	}
	return appledger.NewUseCase(
		store, store.ItemRepo(), store.TxnRepo(), store.ResRepo(), nil,
		appledger.Config{AutoApproveCauses: autoApprove, LowStockThreshold: decimal.NewFromInt(10)},
	)
}

func seedItem(t *testing.T, store *ledgertest.Store, trackable bool) *entity.Item {
	t.Helper()
	item := &entity.Item{
		ID:               uuid.New().String(),
		Name:             "Arroz fortificado",
		Unit:             "kg",
		UnitValue:        decimal.NewFromInt(3),
		IsTrackableStock: trackable,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	require.NoError(t, store.ItemRepo().Create(item))
	return item
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ──────────────────────────────────────────────────────────────────────────────
// Record / Approve / Reject
// ──────────────────────────────────────────────────────────────────────────────

// TestRecord_CompraAprobada recorre el escenario base: ítem sin stock,
// record(purchase, 50) + approve → posición on_hand=50, reserved=0,
// available=50, estado good.
func TestRecord_CompraAprobada(t *testing.T) {
	store := ledgertest.NewStore()
	uc := newLedger(t, store)
	item := seedItem(t, store, true)
	ctx := context.Background()

	cost := decimal.NewFromInt(3)
	txn, err := uc.Record(ctx, appledger.RecordInput{
		ItemID:   item.ID,
		Cause:    entity.CausePurchase,
		Quantity: qty(50),
		UnitCost: &cost,
		Actor:    "coordinadora-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStockIn, txn.MovementType)
	assert.Equal(t, entity.TxStatusPending, txn.Status)
	assert.True(t, txn.RunningBalance.Equal(qty(50)), "balance congelado al insertar")
	assert.True(t, txn.TotalCost.Equal(qty(150)))

	// Pendiente: aún no afecta la posición.
	pos, err := uc.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.OnHand.IsZero())
	assert.Equal(t, entity.StockStatusOutOfStock, pos.Status)

	approved, err := uc.Approve(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusApproved, approved.Status)
	assert.True(t, approved.RunningBalance.Equal(qty(50)))

	pos, err = uc.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.OnHand.Equal(qty(50)))
	assert.True(t, pos.Reserved.IsZero())
	assert.True(t, pos.Available.Equal(qty(50)))
	assert.Equal(t, entity.StockStatusGood, pos.Status)
}

// TestRecord_CausaDesconocida verifica que una causa fuera de la enumeración
// no persiste nada y deja la posición intacta.
func TestRecord_CausaDesconocida(t *testing.T) {
	store := ledgertest.NewStore()
	uc := newLedger(t, store)
	item := seedItem(t, store, true)
	ctx := context.Background()

	_, err := uc.Record(ctx, appledger.RecordInput{
		ItemID: item.ID, Cause: "unknown_thing", Quantity: qty(5), Actor: "x",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownCause)

	history, err := uc.History(ctx, item.ID, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, history, "nada debe persistirse")

	pos, err := uc.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.OnHand.IsZero())
}

func TestRecord_Validaciones(t *testing.T) {
	store := ledgertest.NewStore()
	uc := newLedger(t, store)
	ctx := context.Background()

	trackable := seedItem(t, store, true)
	untrackable := seedItem(t, store, false)

	t.Run("cantidad no positiva", func(t *testing.T) {
		_, err := uc.Record(ctx, appledger.RecordInput{ItemID: trackable.ID, Cause: entity.CausePurchase, Quantity: qty(0)})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
		_, err = uc.Record(ctx, appledger.RecordInput{ItemID: trackable.ID, Cause: entity.CausePurchase, Quantity: qty(-3)})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	})

	t.Run("item no rastreable", func(t *testing.T) {
		_, err := uc.Record(ctx, appledger.RecordInput{ItemID: untrackable.ID, Cause: entity.CausePurchase, Quantity: qty(1)})
		assert.ErrorIs(t, err, domain.ErrItemNotTrackable)
	})

	t.Run("item inexistente", func(t *testing.T) {
		_, err := uc.Record(ctx, appledger.RecordInput{ItemID: uuid.New().String(), Cause: entity.CausePurchase, Quantity: qty(1)})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ajuste sin direccion", func(t *testing.T) {
		_, err := uc.Record(ctx, appledger.RecordInput{ItemID: trackable.ID, Cause: entity.CauseAdjustment, Quantity: qty(1)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

// TestRecord_AutoAprobacion verifica que initial_stock entra aprobado y surte
// efecto de inmediato.
func TestRecord_AutoAprobacion(t *testing.T) {
	store := ledgertest.NewStore()
	uc := newLedger(t, store)
	item := seedItem(t, store, true)
	ctx := context.Background()

	txn, err := uc.Record(ctx, appledger.RecordInput{
		ItemID: item.ID, Cause: entity.CauseInitialStock, Quantity: qty(30), Actor: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusApproved, txn.Status)
	require.NotNil(t, txn.ApprovedAt)

	pos, err := uc.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.OnHand.Equal(qty(30)))
}

// TestRecord_AutoAprobacionSalidaInsuficiente verifica que una causa de salida
// configurada como auto-aprobada no puede dejar la disponibilidad negativa:
// surtir efecto sin revisión pasa la misma validación que Approve, bajo el
// mismo lock, y si no alcanza nada se persiste.
func TestRecord_AutoAprobacionSalidaInsuficiente(t *testing.T) {
	store := ledgertest.NewStore()
	uc := newLedger(t, store, entity.CauseInitialStock, entity.CauseDistribution)
	item := seedItem(t, store, true)
	ctx := context.Background()

	_, err := uc.Record(ctx, appledger.RecordInput{
		ItemID: item.ID, Cause: entity.CauseInitialStock, Quantity: qty(10),
	})
	require.NoError(t, err)

	// Salida auto-aprobada mayor que el on-hand: rechazada, nada persiste.
	_, err = uc.Record(ctx, appledger.RecordInput{
		ItemID: item.ID, Cause: entity.CauseDistribution, Quantity: qty(25), Actor: "bodeguero-1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	pos, err := uc.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.OnHand.Equal(qty(10)), "el on-hand no debe moverse")
	assert.True(t, pos.Available.Equal(qty(10)))

	hist, err := uc.History(ctx, item.ID, nil, nil, 50, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 1, "la salida rechazada no debe quedar en el libro")

	// Con reserva activa la validación es contra el available, no el on-hand.
	require.NoError(t, store.ResRepo().Create(&entity.Reservation{
		ID: uuid.New().String(), ItemID: item.ID, Quantity: qty(8),
		Status: entity.ReservationActive, CreatedAt: time.Now(),
	}))
	_, err = uc.Record(ctx, appledger.RecordInput{
		ItemID: item.ID, Cause: entity.CauseDistribution, Quantity: qty(5), Actor: "bodeguero-1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Dentro del available sí pasa y entra aprobada.
	txn, err := uc.Record(ctx, appledger.RecordInput{
		ItemID: item.ID, Cause: entity.CauseDistribution, Quantity: qty(2), Actor: "bodeguero-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusApproved, txn.Status)
	assert.True(t, txn.RunningBalance.Equal(qty(8)))
}

// TestApprove_StockInsuficiente verifica que aprobar una salida que dejaría
// la disponibilidad negativa frente a una reserva falla con
// ErrInsufficientStock y la transacción queda pending.
func TestApprove_StockInsuficiente(t *testing.T) {
	store := ledgertest.NewStore()
	uc := newLedger(t, store)
	item := seedItem(t, store, true)
	ctx := context.Background()

	_, err := uc.Record(ctx, appledger.RecordInput{ItemID: item.ID, Cause: entity.CauseInitialStock, Quantity: qty(10)})
	require.NoError(t, err)

	// Reserva activa de 8: solo quedan 2 disponibles.
	require.NoError(t, store.ResRepo().Create(&entity.Reservation{
		ID: uuid.New().String(), ItemID: item.ID, Quantity: qty(8),
		Status: entity.ReservationActive, CreatedAt: time.Now(),
	}))

	out, err := uc.Record(ctx, appledger.RecordInput{ItemID: item.ID, Cause: entity.CauseDistribution, Quantity: qty(5)})
	require.NoError(t, err)

	_, err = uc.Approve(ctx, out.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := uc.GetTransaction(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusPending, got.Status, "la transacción debe quedar pending")

	pos, err := uc.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.OnHand.Equal(qty(10)), "la posición no debe cambiar")
}

func TestApproveReject_Transiciones(t *testing.T) {
	store := ledgertest.NewStore()
	uc := newLedger(t, store)
	item := seedItem(t, store, true)
	ctx := context.Background()

	txn, err := uc.Record(ctx, appledger.RecordInput{ItemID: item.ID, Cause: entity.CauseGrant, Quantity: qty(5)})
	require.NoError(t, err)

	require.NoError(t, uc.Reject(ctx, txn.ID, "donación duplicada"))

	got, err := uc.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusRejected, got.Status)
	assert.Equal(t, "donación duplicada", got.RejectedReason)

	// Rechazada: no admite aprobación ni re-rechazo.
	_, err = uc.Approve(ctx, txn.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, uc.Reject(ctx, txn.ID, "otra vez"), domain.ErrConflict)

	pos, err := uc.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.OnHand.IsZero(), "rejected nunca afecta la posición")
}

// TestRecord_Ajustes verifica las dos direcciones de un ajuste.
func TestRecord_Ajustes(t *testing.T) {
	store := ledgertest.NewStore()
	uc := newLedger(t, store, entity.CauseInitialStock, entity.CauseAdjustment)
	item := seedItem(t, store, true)
	ctx := context.Background()

	_, err := uc.Record(ctx, appledger.RecordInput{ItemID: item.ID, Cause: entity.CauseInitialStock, Quantity: qty(20)})
	require.NoError(t, err)

	up, err := uc.Record(ctx, appledger.RecordInput{
		ItemID: item.ID, Cause: entity.CauseAdjustment, Direction: entity.DirectionIn, Quantity: qty(4),
	})
	require.NoError(t, err)
	assert.True(t, up.SignedQuantity().Equal(qty(4)))
	assert.True(t, up.RunningBalance.Equal(qty(24)))

	down, err := uc.Record(ctx, appledger.RecordInput{
		ItemID: item.ID, Cause: entity.CauseAdjustment, Direction: entity.DirectionOut, Quantity: qty(9),
	})
	require.NoError(t, err)
	assert.True(t, down.SignedQuantity().Equal(qty(-9)))
	assert.True(t, down.RunningBalance.Equal(qty(15)))

	pos, err := uc.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.OnHand.Equal(qty(15)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades de concurrencia
// ──────────────────────────────────────────────────────────────────────────────

// TestRecord_SinUpdatesPerdidos lanza N records concurrentes sobre el mismo
// ítem (causa auto-aprobada): cada uno debe congelar un running balance
// distinto y correctamente ordenado, y el on-hand final debe ser la suma
// serial de las N cantidades.
func TestRecord_SinUpdatesPerdidos(t *testing.T) {
	store := ledgertest.NewStore()
	uc := newLedger(t, store, entity.CausePurchase)
	item := seedItem(t, store, true)
	ctx := context.Background()

	const n = 25
	balances := make([]decimal.Decimal, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			txn, err := uc.Record(ctx, appledger.RecordInput{
				ItemID: item.ID, Cause: entity.CausePurchase, Quantity: qty(1), Actor: "worker",
			})
			if assert.NoError(t, err) {
				balances[i] = txn.RunningBalance
			}
		}(i)
	}
	wg.Wait()

	// Los balances deben ser exactamente {1..n}, sin duplicados.
	seen := make(map[string]bool, n)
	for _, b := range balances {
		assert.False(t, seen[b.String()], "running balance duplicado: %s (lost update)", b)
		seen[b.String()] = true
	}
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[decimal.NewFromInt(i).String()], "falta el balance %d", i)
	}

	pos, err := uc.Position(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, pos.OnHand.Equal(qty(n)))
}

// TestRecord_LockTimeout verifica que la espera por el lock del ítem está
// acotada y termina en ErrLockTimeout sin registrar nada.
func TestRecord_LockTimeout(t *testing.T) {
	store := ledgertest.NewStore()
	store.LockTimeout = 50 * time.Millisecond
	uc := newLedger(t, store)
	item := seedItem(t, store, true)
	ctx := context.Background()

	unlock := store.LockItem(item.ID)
	defer unlock()

	_, err := uc.Record(ctx, appledger.RecordInput{ItemID: item.ID, Cause: entity.CausePurchase, Quantity: qty(1)})
	assert.ErrorIs(t, err, domain.ErrLockTimeout)

	history, err := uc.History(ctx, item.ID, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

// TestRecord_ItemsIndependientesNoSeBloquean verifica que el lock es por ítem:
// un ítem bloqueado no frena escrituras sobre otro.
func TestRecord_ItemsIndependientesNoSeBloquean(t *testing.T) {
	store := ledgertest.NewStore()
	store.LockTimeout = 100 * time.Millisecond
	uc := newLedger(t, store)
	blocked := seedItem(t, store, true)
	free := seedItem(t, store, true)
	ctx := context.Background()

	unlock := store.LockItem(blocked.ID)
	defer unlock()

	_, err := uc.Record(ctx, appledger.RecordInput{ItemID: free.ID, Cause: entity.CausePurchase, Quantity: qty(2)})
	assert.NoError(t, err, "un ítem ajeno bloqueado no debe afectar esta escritura")
}
