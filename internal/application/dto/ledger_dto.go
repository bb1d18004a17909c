package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// RecordTransactionRequest body para POST /api/stock/transactions.
// Direction ("in"/"out") solo aplica cuando cause es adjustment.
type RecordTransactionRequest struct {
	ItemID          string           `json:"item_id"`
	Cause           string           `json:"cause"`
	Quantity        decimal.Decimal  `json:"quantity"`
	Direction       string           `json:"direction,omitempty"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	TransactionDate *time.Time       `json:"transaction_date,omitempty"`
	Remarks         string           `json:"remarks,omitempty"`
	BatchNumber     string           `json:"batch_number,omitempty"`
	ExpiryDate      *time.Time       `json:"expiry_date,omitempty"`
	Source          string           `json:"source,omitempty"`
	Destination     string           `json:"destination,omitempty"`
}

// RejectTransactionRequest body para POST /api/stock/transactions/:id/reject.
type RejectTransactionRequest struct {
	Reason string `json:"reason"`
}

// TransactionResponse representación de una transacción del libro.
type TransactionResponse struct {
	ID              string           `json:"id"`
	ItemID          string           `json:"item_id"`
	Cause           string           `json:"cause"`
	MovementType    string           `json:"movement_type"`
	Direction       string           `json:"direction,omitempty"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost       decimal.Decimal  `json:"total_cost"`
	TransactionDate time.Time        `json:"transaction_date"`
	CreatedAt       time.Time        `json:"created_at"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	RunningBalance  decimal.Decimal  `json:"running_balance"`
	Status          string           `json:"status"`
	Actor           string           `json:"actor,omitempty"`
	Remarks         string           `json:"remarks,omitempty"`
	RejectedReason  string           `json:"rejected_reason,omitempty"`
	BatchNumber     string           `json:"batch_number,omitempty"`
	ExpiryDate      *time.Time       `json:"expiry_date,omitempty"`
	Source          string           `json:"source,omitempty"`
	Destination     string           `json:"destination,omitempty"`
}

// TransactionToResponse mapea la entidad al DTO de respuesta.
func TransactionToResponse(txn *entity.StockTransaction) TransactionResponse {
	return TransactionResponse{
		ID:              txn.ID,
		ItemID:          txn.ItemID,
		Cause:           txn.Cause,
		MovementType:    txn.MovementType,
		Direction:       txn.Direction,
		Quantity:        txn.Quantity,
		UnitCost:        txn.UnitCost,
		TotalCost:       txn.TotalCost,
		TransactionDate: txn.TransactionDate,
		CreatedAt:       txn.CreatedAt,
		ApprovedAt:      txn.ApprovedAt,
		RunningBalance:  txn.RunningBalance,
		Status:          txn.Status,
		Actor:           txn.Actor,
		Remarks:         txn.Remarks,
		RejectedReason:  txn.RejectedReason,
		BatchNumber:     txn.BatchNumber,
		ExpiryDate:      txn.ExpiryDate,
		Source:          txn.Source,
		Destination:     txn.Destination,
	}
}

// TransactionsToResponse mapea un listado de transacciones.
func TransactionsToResponse(txns []*entity.StockTransaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		out = append(out, TransactionToResponse(txn))
	}
	return out
}

// PositionResponse posición derivada de un ítem.
type PositionResponse struct {
	ItemID     string          `json:"item_id"`
	OnHand     decimal.Decimal `json:"on_hand"`
	Reserved   decimal.Decimal `json:"reserved"`
	Available  decimal.Decimal `json:"available"`
	Status     string          `json:"status"`
	ComputedAt time.Time       `json:"computed_at"`
}

// PositionToResponse mapea la posición al DTO de respuesta.
func PositionToResponse(pos *entity.StockPosition) PositionResponse {
	return PositionResponse{
		ItemID:     pos.ItemID,
		OnHand:     pos.OnHand,
		Reserved:   pos.Reserved,
		Available:  pos.Available,
		Status:     pos.Status,
		ComputedAt: pos.ComputedAt,
	}
}
