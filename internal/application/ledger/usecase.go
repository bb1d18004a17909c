package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domledger "github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Config política del libro: causas auto-aprobadas y umbral global de stock bajo.
type Config struct {
	AutoApproveCauses []string
	LowStockThreshold decimal.Decimal
}

// UseCase es el núcleo del libro de inventario: registra transacciones
// inmutables, congela el running balance dentro de la misma unidad atómica
// que las inserta, y recomputa la posición on-hand/reserved/available desde
// el flujo de transacciones aprobadas.
type UseCase struct {
	txRunner    TxRunner
	itemRepo    repository.ItemRepository
	txRepo      repository.StockTransactionRepository
	resRepo     repository.ReservationRepository
	cache       PositionCache
	autoApprove map[string]bool
	threshold   decimal.Decimal
}

// NewUseCase construye el caso de uso. cache puede ser nil (sin caché).
func NewUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	txRepo repository.StockTransactionRepository,
	resRepo repository.ReservationRepository,
	cache PositionCache,
	cfg Config,
) *UseCase {
	auto := make(map[string]bool, len(cfg.AutoApproveCauses))
	for _, c := range cfg.AutoApproveCauses {
		auto[c] = true
	}
	threshold := cfg.LowStockThreshold
	if threshold.IsZero() {
		threshold = decimal.NewFromInt(10)
	}
	return &UseCase{
		txRunner:    txRunner,
		itemRepo:    itemRepo,
		txRepo:      txRepo,
		resRepo:     resRepo,
		cache:       cache,
		autoApprove: auto,
		threshold:   threshold,
	}
}

// Threshold devuelve el umbral global de stock bajo vigente.
func (uc *UseCase) Threshold() decimal.Decimal { return uc.threshold }

// RecordInput entrada para registrar una transacción.
// Direction solo es obligatorio cuando la causa es adjustment (el signo del
// ajuste lo decide el llamador); para las demás causas lo implica el movimiento.
type RecordInput struct {
	ItemID          string
	Cause           string
	Quantity        decimal.Decimal
	Direction       string
	UnitCost        *decimal.Decimal
	TransactionDate time.Time
	Actor           string
	Remarks         string
	BatchNumber     string
	ExpiryDate      *time.Time
	Source          string
	Destination     string
}

// Record valida, clasifica la causa y persiste la transacción con su running
// balance congelado, todo dentro de una transacción de BD con la fila del
// ítem bloqueada. Estado inicial pending, salvo causas auto-aprobadas
// (p.ej. initial_stock) que entran como approved y surten efecto de inmediato.
// Una causa auto-aprobada de salida pasa bajo el mismo lock la validación de
// disponibilidad que Approve: surtir efecto sin revisión no exime de la regla
// de que la disponibilidad nunca queda negativa.
func (uc *UseCase) Record(ctx context.Context, input RecordInput) (*entity.StockTransaction, error) {
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	movement, err := domledger.Classify(input.Cause)
	if err != nil {
		return nil, err
	}
	direction := input.Direction
	if movement == entity.MovementAdjustment {
		if direction != entity.DirectionIn && direction != entity.DirectionOut {
			return nil, domain.ErrInvalidInput
		}
	} else {
		direction = ""
	}
	if input.UnitCost != nil && input.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	item, err := uc.itemRepo.GetByID(input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if !item.IsTrackableStock {
		return nil, domain.ErrItemNotTrackable
	}
	if item.IsRetired() {
		return nil, domain.ErrConflict
	}

	var recorded *entity.StockTransaction
	err = uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		txRepo repository.StockTransactionRepository,
		resRepo repository.ReservationRepository,
	) error {
		// Bloquea la cabecera del libro: serializa todo read-modify-write del ítem.
		if _, err := itemRepo.GetForUpdate(input.ItemID); err != nil {
			return err
		}
		onHand, err := txRepo.OnHand(input.ItemID)
		if err != nil {
			return err
		}

		now := time.Now()
		txDate := input.TransactionDate
		if txDate.IsZero() {
			txDate = now
		}
		signed := signedQuantity(movement, direction, input.Quantity)
		status := entity.TxStatusPending
		var approvedAt *time.Time
		if uc.autoApprove[input.Cause] {
			// Surte efecto ya: misma revalidación de salida que Approve.
			if signed.LessThan(decimal.Zero) {
				reserved, err := resRepo.ActiveQuantity(input.ItemID)
				if err != nil {
					return err
				}
				if onHand.Add(signed).Sub(reserved).LessThan(decimal.Zero) {
					return domain.ErrInsufficientStock
				}
			}
			status = entity.TxStatusApproved
			approvedAt = &now
		}

		txn := &entity.StockTransaction{
			ID:              uuid.New().String(),
			ItemID:          input.ItemID,
			Cause:           input.Cause,
			MovementType:    movement,
			Direction:       direction,
			Quantity:        input.Quantity,
			UnitCost:        input.UnitCost,
			TransactionDate: txDate,
			CreatedAt:       now,
			ApprovedAt:      approvedAt,
			RunningBalance:  onHand.Add(signed),
			Status:          status,
			Actor:           input.Actor,
			Remarks:         input.Remarks,
			BatchNumber:     input.BatchNumber,
			ExpiryDate:      input.ExpiryDate,
			Source:          input.Source,
			Destination:     input.Destination,
		}
		if input.UnitCost != nil {
			txn.TotalCost = input.Quantity.Mul(*input.UnitCost)
		}
		if err := txRepo.Create(txn); err != nil {
			return err
		}
		recorded = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, input.ItemID)
	return recorded, nil
}

// Approve transiciona pending → approved dentro del lock del ítem; solo desde
// aquí la transacción cuenta para el on-hand. Revalida que una salida no deje
// la disponibilidad negativa frente a las reservas activas: en ese caso falla
// con ErrInsufficientStock y la transacción queda pending. El running balance
// se recongela en el instante en que la transacción surte efecto.
func (uc *UseCase) Approve(ctx context.Context, txID string) (*entity.StockTransaction, error) {
	var approved *entity.StockTransaction
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		txRepo repository.StockTransactionRepository,
		resRepo repository.ReservationRepository,
	) error {
		txn, err := txRepo.GetByID(txID)
		if err != nil {
			return err
		}
		if txn == nil {
			return domain.ErrNotFound
		}
		if txn.Status != entity.TxStatusPending {
			return domain.ErrConflict
		}
		if _, err := itemRepo.GetForUpdate(txn.ItemID); err != nil {
			return err
		}
		onHand, err := txRepo.OnHand(txn.ItemID)
		if err != nil {
			return err
		}
		signed := txn.SignedQuantity()
		newOnHand := onHand.Add(signed)
		if signed.LessThan(decimal.Zero) {
			reserved, err := resRepo.ActiveQuantity(txn.ItemID)
			if err != nil {
				return err
			}
			if newOnHand.Sub(reserved).LessThan(decimal.Zero) {
				return domain.ErrInsufficientStock
			}
		}
		now := time.Now()
		if err := txRepo.MarkApproved(txID, newOnHand, now); err != nil {
			return err
		}
		txn.Status = entity.TxStatusApproved
		txn.RunningBalance = newOnHand
		txn.ApprovedAt = &now
		approved = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, approved.ItemID)
	return approved, nil
}

// Reject transiciona pending → rejected. Nunca afecta la posición.
func (uc *UseCase) Reject(ctx context.Context, txID, reason string) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.ItemRepository,
		txRepo repository.StockTransactionRepository,
		_ repository.ReservationRepository,
	) error {
		txn, err := txRepo.GetByID(txID)
		if err != nil {
			return err
		}
		if txn == nil {
			return domain.ErrNotFound
		}
		if txn.Status != entity.TxStatusPending {
			return domain.ErrConflict
		}
		return txRepo.MarkRejected(txID, reason)
	})
}

// Position recomputa la posición del ítem desde el flujo de transacciones
// aprobadas más las reservas activas. Es la fuente canónica de verdad: el
// caché solo sirve lecturas ya invalidadas consistentemente por cada
// escritura confirmada del mismo ítem.
func (uc *UseCase) Position(ctx context.Context, itemID string) (*entity.StockPosition, error) {
	if uc.cache != nil {
		if pos, ok := uc.cache.Get(ctx, itemID); ok {
			return pos, nil
		}
	}
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	onHand, err := uc.txRepo.OnHand(itemID)
	if err != nil {
		return nil, err
	}
	reserved, err := uc.resRepo.ActiveQuantity(itemID)
	if err != nil {
		return nil, err
	}
	available := onHand.Sub(reserved)
	pos := &entity.StockPosition{
		ItemID:     itemID,
		OnHand:     onHand,
		Reserved:   reserved,
		Available:  available,
		Status:     domledger.StockStatus(onHand, available, item.Threshold(uc.threshold)),
		ComputedAt: time.Now(),
	}
	if uc.cache != nil {
		uc.cache.Set(ctx, pos)
	}
	return pos, nil
}

// History devuelve la secuencia de transacciones del ítem ordenada por fecha
// efectiva y luego por inserción, la más antigua primero, cada una con su
// running balance congelado.
func (uc *UseCase) History(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return uc.txRepo.ListByItem(itemID, from, to, limit, offset)
}

// GetTransaction devuelve una transacción por ID.
func (uc *UseCase) GetTransaction(ctx context.Context, txID string) (*entity.StockTransaction, error) {
	txn, err := uc.txRepo.GetByID(txID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, domain.ErrNotFound
	}
	return txn, nil
}

// RecordConsumptionInTx inserta una salida por distribución ya efectiva
// (status completed) usando los repositorios de la transacción del caller.
// Lo usa el gestor de reservas dentro de su propia tx, con el ítem ya
// bloqueado y la disponibilidad ya validada.
func (uc *UseCase) RecordConsumptionInTx(
	txRepo repository.StockTransactionRepository,
	itemID string,
	onHand, quantity decimal.Decimal,
	actor, remarks, destination string,
	now time.Time,
) (*entity.StockTransaction, error) {
	txn := &entity.StockTransaction{
		ID:              uuid.New().String(),
		ItemID:          itemID,
		Cause:           entity.CauseDistribution,
		MovementType:    entity.MovementStockOut,
		Quantity:        quantity,
		TransactionDate: now,
		CreatedAt:       now,
		ApprovedAt:      &now,
		RunningBalance:  onHand.Sub(quantity),
		Status:          entity.TxStatusCompleted,
		Actor:           actor,
		Remarks:         remarks,
		Destination:     destination,
	}
	if err := txRepo.Create(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// InvalidatePosition invalida el caché de posición del ítem (lo usan los
// casos de uso que escriben fuera de este, p.ej. reservas).
func (uc *UseCase) InvalidatePosition(ctx context.Context, itemID string) {
	uc.invalidate(ctx, itemID)
}

func (uc *UseCase) invalidate(ctx context.Context, itemID string) {
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, itemID)
	}
}

func signedQuantity(movement, direction string, qty decimal.Decimal) decimal.Decimal {
	switch movement {
	case entity.MovementStockOut:
		return qty.Neg()
	case entity.MovementAdjustment:
		if direction == entity.DirectionOut {
			return qty.Neg()
		}
	}
	return qty
}
