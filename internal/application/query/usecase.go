// Package query implementa el lado de lectura del libro: posición, historial,
// alertas de stock bajo, valoración de inventario y verificación de auditoría.
// Solo lectura: cada consulta recomputa desde el flujo de transacciones o
// desde el caché consistentemente invalidado del caso de uso del libro.
package query

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	appledger "github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domledger "github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// UseCase servicio de consultas de posición (solo lectura).
type UseCase struct {
	ledger   *appledger.UseCase
	itemRepo repository.ItemRepository
	txRepo   repository.StockTransactionRepository
	resRepo  repository.ReservationRepository
}

// NewUseCase construye el servicio de consultas.
func NewUseCase(
	ledger *appledger.UseCase,
	itemRepo repository.ItemRepository,
	txRepo repository.StockTransactionRepository,
	resRepo repository.ReservationRepository,
) *UseCase {
	return &UseCase{ledger: ledger, itemRepo: itemRepo, txRepo: txRepo, resRepo: resRepo}
}

// Position delega en la recomputación canónica del libro.
func (uc *UseCase) Position(ctx context.Context, itemID string) (*entity.StockPosition, error) {
	return uc.ledger.Position(ctx, itemID)
}

// History delega en el historial ordenado del libro.
func (uc *UseCase) History(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error) {
	return uc.ledger.History(ctx, itemID, from, to, limit, offset)
}

// ItemPosition posición de un ítem junto con sus datos de catálogo.
type ItemPosition struct {
	Item     *entity.Item
	Position *entity.StockPosition
}

// LowStock lista los ítems rastreables cuya posición está en low, critical u
// out_of_stock (alertas para dashboards).
func (uc *UseCase) LowStock(ctx context.Context) ([]ItemPosition, error) {
	positions, err := uc.allPositions(ctx)
	if err != nil {
		return nil, err
	}
	var alerts []ItemPosition
	for _, p := range positions {
		switch p.Position.Status {
		case entity.StockStatusLow, entity.StockStatusCritical, entity.StockStatusOutOfStock:
			alerts = append(alerts, p)
		}
	}
	return alerts, nil
}

// ItemValuation valor de inventario de un ítem: on_hand × unit_value.
type ItemValuation struct {
	Item   *entity.Item
	OnHand decimal.Decimal
	Value  decimal.Decimal
}

// Valuation valoración del inventario por ítem y total general.
func (uc *UseCase) Valuation(ctx context.Context) ([]ItemValuation, decimal.Decimal, error) {
	items, err := uc.itemRepo.ListAllTrackable()
	if err != nil {
		return nil, decimal.Zero, err
	}
	onHands, err := uc.txRepo.OnHandAll()
	if err != nil {
		return nil, decimal.Zero, err
	}
	byItem := make(map[string]decimal.Decimal, len(onHands))
	for _, oh := range onHands {
		byItem[oh.ItemID] = oh.OnHand
	}
	total := decimal.Zero
	out := make([]ItemValuation, 0, len(items))
	for _, item := range items {
		onHand := byItem[item.ID]
		value := onHand.Mul(item.UnitValue)
		total = total.Add(value)
		out = append(out, ItemValuation{Item: item, OnHand: onHand, Value: value})
	}
	return out, total, nil
}

// StatusDistribution cuenta ítems rastreables por estado de stock.
func (uc *UseCase) StatusDistribution(ctx context.Context) (map[string]int, error) {
	positions, err := uc.allPositions(ctx)
	if err != nil {
		return nil, err
	}
	dist := map[string]int{
		entity.StockStatusGood:       0,
		entity.StockStatusLow:        0,
		entity.StockStatusCritical:   0,
		entity.StockStatusOutOfStock: 0,
	}
	for _, p := range positions {
		dist[p.Position.Status]++
	}
	return dist, nil
}

// BalanceMismatch discrepancia detectada en la verificación de replay.
type BalanceMismatch struct {
	TransactionID string
	Expected      decimal.Decimal
	Stored        decimal.Decimal
}

// LedgerAudit resultado de reproducir el historial efectivo de un ítem.
type LedgerAudit struct {
	ItemID       string
	Transactions int
	FinalBalance decimal.Decimal
	Consistent   bool
	Mismatches   []BalanceMismatch
}

// VerifyLedger reproduce el flujo approved/completed del ítem desde cero, en
// el orden en que las transacciones surtieron efecto, y compara el balance
// acumulado contra cada running balance congelado. Es la verificación de la
// garantía central del libro: el historial es re-reproducible hacia adelante.
func (uc *UseCase) VerifyLedger(ctx context.Context, itemID string) (*LedgerAudit, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	txns, err := uc.txRepo.ListEffective(itemID)
	if err != nil {
		return nil, err
	}
	audit := &LedgerAudit{ItemID: itemID, Transactions: len(txns), Consistent: true}
	balance := decimal.Zero
	for _, txn := range txns {
		balance = balance.Add(txn.SignedQuantity())
		if !balance.Equal(txn.RunningBalance) {
			audit.Consistent = false
			audit.Mismatches = append(audit.Mismatches, BalanceMismatch{
				TransactionID: txn.ID,
				Expected:      balance,
				Stored:        txn.RunningBalance,
			})
		}
	}
	audit.FinalBalance = balance
	return audit, nil
}

// allPositions computa la posición de todos los ítems rastreables en tres
// pasadas agregadas (ítems, on-hand, reservas) en vez de una consulta por ítem.
func (uc *UseCase) allPositions(ctx context.Context) ([]ItemPosition, error) {
	items, err := uc.itemRepo.ListAllTrackable()
	if err != nil {
		return nil, err
	}
	onHands, err := uc.txRepo.OnHandAll()
	if err != nil {
		return nil, err
	}
	reserveds, err := uc.resRepo.ActiveQuantityAll()
	if err != nil {
		return nil, err
	}
	onHandBy := make(map[string]decimal.Decimal, len(onHands))
	for _, oh := range onHands {
		onHandBy[oh.ItemID] = oh.OnHand
	}
	reservedBy := make(map[string]decimal.Decimal, len(reserveds))
	for _, r := range reserveds {
		reservedBy[r.ItemID] = r.Reserved
	}
	now := time.Now()
	out := make([]ItemPosition, 0, len(items))
	for _, item := range items {
		onHand := onHandBy[item.ID]
		reserved := reservedBy[item.ID]
		available := onHand.Sub(reserved)
		out = append(out, ItemPosition{
			Item: item,
			Position: &entity.StockPosition{
				ItemID:     item.ID,
				OnHand:     onHand,
				Reserved:   reserved,
				Available:  available,
				Status:     domledger.StockStatus(onHand, available, item.Threshold(uc.ledger.Threshold())),
				ComputedAt: now,
			},
		})
	}
	return out, nil
}
