package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// CreateItemRequest body para POST /api/items.
type CreateItemRequest struct {
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	Unit              string           `json:"unit"`
	UnitValue         decimal.Decimal  `json:"unit_value"`
	IsTrackableStock  bool             `json:"is_trackable_stock"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold,omitempty"`
}

// UpdateItemRequest body para PUT /api/items/:id. Los campos ausentes no se tocan.
type UpdateItemRequest struct {
	Name              *string          `json:"name,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Unit              *string          `json:"unit,omitempty"`
	UnitValue         *decimal.Decimal `json:"unit_value,omitempty"`
	IsTrackableStock  *bool            `json:"is_trackable_stock,omitempty"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold,omitempty"`
}

// ItemResponse representación de un ítem del catálogo.
type ItemResponse struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	Unit              string           `json:"unit"`
	UnitValue         decimal.Decimal  `json:"unit_value"`
	IsTrackableStock  bool             `json:"is_trackable_stock"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold,omitempty"`
	RetiredAt         *time.Time       `json:"retired_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ItemToResponse mapea la entidad al DTO de respuesta.
func ItemToResponse(item *entity.Item) ItemResponse {
	return ItemResponse{
		ID:                item.ID,
		Name:              item.Name,
		Description:       item.Description,
		Unit:              item.Unit,
		UnitValue:         item.UnitValue,
		IsTrackableStock:  item.IsTrackableStock,
		LowStockThreshold: item.LowStockThreshold,
		RetiredAt:         item.RetiredAt,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}
