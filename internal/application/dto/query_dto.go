package dto

import "github.com/shopspring/decimal"

// LowStockAlertResponse ítem con posición por debajo del umbral.
type LowStockAlertResponse struct {
	Item     ItemResponse     `json:"item"`
	Position PositionResponse `json:"position"`
}

// ItemValuationResponse valor de inventario de un ítem.
type ItemValuationResponse struct {
	Item   ItemResponse    `json:"item"`
	OnHand decimal.Decimal `json:"on_hand"`
	Value  decimal.Decimal `json:"value"`
}

// ValuationResponse valoración completa del inventario.
type ValuationResponse struct {
	Items []ItemValuationResponse `json:"items"`
	Total decimal.Decimal         `json:"total"`
}

// BalanceMismatchResponse discrepancia entre el replay y el balance congelado.
type BalanceMismatchResponse struct {
	TransactionID string          `json:"transaction_id"`
	Expected      decimal.Decimal `json:"expected"`
	Stored        decimal.Decimal `json:"stored"`
}

// LedgerAuditResponse resultado de la verificación por replay de un ítem.
type LedgerAuditResponse struct {
	ItemID       string                    `json:"item_id"`
	Transactions int                       `json:"transactions"`
	FinalBalance decimal.Decimal           `json:"final_balance"`
	Consistent   bool                      `json:"consistent"`
	Mismatches   []BalanceMismatchResponse `json:"mismatches,omitempty"`
}
