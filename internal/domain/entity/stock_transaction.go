package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento (semántica contable de la transacción).
const (
	MovementStockIn    = "stock_in"
	MovementStockOut   = "stock_out"
	MovementAdjustment = "adjustment"
)

// Causas de transacción (enumeración cerrada, validada en el Classifier).
const (
	CausePurchase     = "purchase"
	CauseGrant        = "grant"
	CauseReturn       = "return"
	CauseTransferIn   = "transfer_in"
	CauseInitialStock = "initial_stock"
	CauseDistribution = "distribution"
	CauseDamage       = "damage"
	CauseExpired      = "expired"
	CauseTransferOut  = "transfer_out"
	CauseAdjustment   = "adjustment"
)

// Estados de una transacción. Solo approved/completed afectan la posición.
const (
	TxStatusPending   = "pending"
	TxStatusApproved  = "approved"
	TxStatusRejected  = "rejected"
	TxStatusCompleted = "completed"
)

// Dirección de un ajuste (para las demás causas la dirección la implica el movimiento).
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// StockTransaction es un registro inmutable de movimiento de inventario
// (append-only). Las correcciones son nuevas transacciones de ajuste, nunca
// mutaciones. Quantity se almacena siempre positiva; la dirección la da
// MovementType (y Direction para ajustes). RunningBalance es el on-hand
// inmediatamente después de que la transacción surte efecto, congelado para
// auditoría. TransactionDate es la fecha efectiva (puede ser retroactiva);
// CreatedAt es el instante de inserción en el libro.
type StockTransaction struct {
	ID              string
	ItemID          string
	Cause           string
	MovementType    string
	Direction       string // solo significativo para MovementAdjustment
	Quantity        decimal.Decimal
	UnitCost        *decimal.Decimal
	TotalCost       decimal.Decimal // Quantity × UnitCost (cero si no hay costo)
	TransactionDate time.Time
	CreatedAt       time.Time
	ApprovedAt      *time.Time
	RunningBalance  decimal.Decimal
	Status          string
	Actor           string
	Remarks         string
	RejectedReason  string
	BatchNumber     string
	ExpiryDate      *time.Time
	Source          string
	Destination     string
}

// SignedQuantity devuelve la cantidad con signo según el tipo de movimiento:
// positiva para stock_in, negativa para stock_out; para ajustes decide Direction.
func (t *StockTransaction) SignedQuantity() decimal.Decimal {
	switch t.MovementType {
	case MovementStockIn:
		return t.Quantity
	case MovementStockOut:
		return t.Quantity.Neg()
	case MovementAdjustment:
		if t.Direction == DirectionOut {
			return t.Quantity.Neg()
		}
		return t.Quantity
	}
	return decimal.Zero
}

// CountsTowardStock indica si la transacción afecta la posición de stock.
func (t *StockTransaction) CountsTowardStock() bool {
	return t.Status == TxStatusApproved || t.Status == TxStatusCompleted
}
