package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	appledger "github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// UseCase gestiona reservas: cantidad apartada contra compromisos externos
// pendientes sin descontar el on-hand. El check-then-reserve es un único paso
// atómico por ítem (lock de la fila del ítem), de modo que dos reservas
// concurrentes nunca pasan ambas la validación contra el mismo available.
type UseCase struct {
	txRunner appledger.TxRunner
	resRepo  repository.ReservationRepository
	ledger   *appledger.UseCase
}

// NewUseCase construye el caso de uso de reservas.
func NewUseCase(txRunner appledger.TxRunner, resRepo repository.ReservationRepository, ledger *appledger.UseCase) *UseCase {
	return &UseCase{txRunner: txRunner, resRepo: resRepo, ledger: ledger}
}

// Reserve aparta cantidad contra el available del ítem. Precondición
// quantity <= available; si no alcanza falla con
// ErrInsufficientAvailableStock y no reserva nada (sin reservas parciales).
func (uc *UseCase) Reserve(ctx context.Context, itemID string, quantity decimal.Decimal, contextID, actor string) (*entity.Reservation, error) {
	if !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	var created *entity.Reservation
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		txRepo repository.StockTransactionRepository,
		resRepo repository.ReservationRepository,
	) error {
		item, err := itemRepo.GetForUpdate(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if !item.IsTrackableStock {
			return domain.ErrItemNotTrackable
		}
		onHand, err := txRepo.OnHand(itemID)
		if err != nil {
			return err
		}
		reserved, err := resRepo.ActiveQuantity(itemID)
		if err != nil {
			return err
		}
		if quantity.GreaterThan(onHand.Sub(reserved)) {
			return domain.ErrInsufficientAvailableStock
		}
		res := &entity.Reservation{
			ID:                  uuid.New().String(),
			ItemID:              itemID,
			Quantity:            quantity,
			RequestingContextID: contextID,
			Status:              entity.ReservationActive,
			CreatedBy:           actor,
			CreatedAt:           time.Now(),
		}
		if err := resRepo.Create(res); err != nil {
			return err
		}
		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.InvalidatePosition(ctx, itemID)
	return created, nil
}

// Release devuelve la cantidad de una reserva activa al available.
// Idempotente: si la reserva ya está released/consumed no hace nada.
func (uc *UseCase) Release(ctx context.Context, reservationID string) error {
	var itemID string
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		_ repository.StockTransactionRepository,
		resRepo repository.ReservationRepository,
	) error {
		res, err := resRepo.GetByID(reservationID)
		if err != nil {
			return err
		}
		if res == nil {
			return domain.ErrNotFound
		}
		if !res.IsActive() {
			return nil // ya cerrada: no-op
		}
		if _, err := itemRepo.GetForUpdate(res.ItemID); err != nil {
			return err
		}
		itemID = res.ItemID
		return resRepo.Close(reservationID, entity.ReservationReleased, time.Now())
	})
	if err != nil {
		return err
	}
	if itemID != "" {
		uc.ledger.InvalidatePosition(ctx, itemID)
	}
	return nil
}

// Consume cumple una reserva: registra la salida real por distribución
// (actualQuantity puede diferir de lo reservado, p.ej. cumplimiento parcial)
// y cierra la reserva como consumed, todo en la misma transacción. El exceso
// sobre lo reservado se valida contra el available vigente igual que una
// reserva nueva.
func (uc *UseCase) Consume(ctx context.Context, reservationID string, actualQuantity decimal.Decimal, actor string) (*entity.StockTransaction, error) {
	if !actualQuantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	var (
		recorded *entity.StockTransaction
		itemID   string
	)
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		txRepo repository.StockTransactionRepository,
		resRepo repository.ReservationRepository,
	) error {
		res, err := resRepo.GetByID(reservationID)
		if err != nil {
			return err
		}
		if res == nil {
			return domain.ErrNotFound
		}
		if !res.IsActive() {
			return domain.ErrConflict
		}
		if _, err := itemRepo.GetForUpdate(res.ItemID); err != nil {
			return err
		}
		onHand, err := txRepo.OnHand(res.ItemID)
		if err != nil {
			return err
		}
		reserved, err := resRepo.ActiveQuantity(res.ItemID)
		if err != nil {
			return err
		}
		if excess := actualQuantity.Sub(res.Quantity); excess.GreaterThan(decimal.Zero) {
			if excess.GreaterThan(onHand.Sub(reserved)) {
				return domain.ErrInsufficientAvailableStock
			}
		}
		now := time.Now()
		remarks := fmt.Sprintf("consumo de reserva %s", res.ID)
		txn, err := uc.ledger.RecordConsumptionInTx(
			txRepo, res.ItemID, onHand, actualQuantity,
			actor, remarks, res.RequestingContextID, now,
		)
		if err != nil {
			return err
		}
		if err := resRepo.Close(reservationID, entity.ReservationConsumed, now); err != nil {
			return err
		}
		recorded = txn
		itemID = res.ItemID
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.InvalidatePosition(ctx, itemID)
	return recorded, nil
}

// GetByID devuelve una reserva por ID.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	res, err := uc.resRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, domain.ErrNotFound
	}
	return res, nil
}

// ListByContext devuelve las reservas ligadas a un contexto solicitante
// (p.ej. un evento de servicio).
func (uc *UseCase) ListByContext(ctx context.Context, contextID string) ([]*entity.Reservation, error) {
	return uc.resRepo.ListByContext(contextID)
}
