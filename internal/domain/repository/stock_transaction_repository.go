package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ItemOnHand agrega el on-hand de un ítem (para vistas de valoración y alertas).
type ItemOnHand struct {
	ItemID string
	OnHand decimal.Decimal
}

// StockTransactionRepository define el puerto de persistencia del libro de
// transacciones (append-only). Las transacciones nunca se mutan ni se borran;
// los únicos updates permitidos son las transiciones de estado pending →
// approved/rejected, que congelan RunningBalance y ApprovedAt en la aprobación.
type StockTransactionRepository interface {
	Create(tx *entity.StockTransaction) error
	GetByID(id string) (*entity.StockTransaction, error)
	// MarkApproved congela el balance en el instante en que la transacción
	// surte efecto. Solo válido desde pending.
	MarkApproved(id string, runningBalance decimal.Decimal, approvedAt time.Time) error
	// MarkRejected transiciona pending → rejected; nunca afecta la posición.
	MarkRejected(id string, reason string) error
	// OnHand suma las cantidades con signo de las transacciones
	// approved/completed del ítem.
	OnHand(itemID string) (decimal.Decimal, error)
	// OnHandAll agrega el on-hand de todos los ítems en una pasada.
	OnHandAll() ([]ItemOnHand, error)
	// ListByItem devuelve el historial ordenado por transaction_date y
	// created_at, el más antiguo primero.
	ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error)
	// ListEffective devuelve las transacciones approved/completed del ítem en
	// orden de efecto (approved_at, created_at): el orden en que se congelaron
	// los running balances, usado por la verificación de replay.
	ListEffective(itemID string) ([]*entity.StockTransaction, error)
}
