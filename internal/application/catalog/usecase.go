package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// UseCase administra el catálogo de ítems rastreables. Las ediciones de
// catálogo nunca tocan el libro: las transacciones solo leen el ítem.
type UseCase struct {
	itemRepo repository.ItemRepository
}

// NewUseCase construye el caso de uso de catálogo.
func NewUseCase(itemRepo repository.ItemRepository) *UseCase {
	return &UseCase{itemRepo: itemRepo}
}

// CreateInput datos para crear un ítem.
type CreateInput struct {
	Name              string
	Description       string
	Unit              string
	UnitValue         decimal.Decimal
	IsTrackableStock  bool
	LowStockThreshold *decimal.Decimal
}

// Create da de alta un ítem del catálogo.
func (uc *UseCase) Create(ctx context.Context, input CreateInput) (*entity.Item, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Unit) == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.UnitValue.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if input.LowStockThreshold != nil && input.LowStockThreshold.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	item := &entity.Item{
		ID:                uuid.New().String(),
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		Unit:              strings.TrimSpace(input.Unit),
		UnitValue:         input.UnitValue,
		IsTrackableStock:  input.IsTrackableStock,
		LowStockThreshold: input.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.itemRepo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateInput datos editables de un ítem. Los campos nil no se tocan.
type UpdateInput struct {
	Name              *string
	Description       *string
	Unit              *string
	UnitValue         *decimal.Decimal
	IsTrackableStock  *bool
	LowStockThreshold *decimal.Decimal
}

// Update edita los metadatos del ítem (nombre, unidad, valor, umbral).
func (uc *UseCase) Update(ctx context.Context, id string, input UpdateInput) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if item.IsRetired() {
		return nil, domain.ErrConflict
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Unit != nil {
		if strings.TrimSpace(*input.Unit) == "" {
			return nil, domain.ErrInvalidInput
		}
		item.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.UnitValue != nil {
		if input.UnitValue.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		item.UnitValue = *input.UnitValue
	}
	if input.IsTrackableStock != nil {
		item.IsTrackableStock = *input.IsTrackableStock
	}
	if input.LowStockThreshold != nil {
		if input.LowStockThreshold.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		item.LowStockThreshold = input.LowStockThreshold
	}
	item.UpdatedAt = time.Now()
	if err := uc.itemRepo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetByID devuelve un ítem por ID.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// List lista ítems del catálogo con paginación.
func (uc *UseCase) List(ctx context.Context, limit, offset int, includeRetired bool) ([]*entity.Item, error) {
	return uc.itemRepo.List(limit, offset, includeRetired)
}

// Retire retira el ítem del catálogo (retiro lógico; nunca borrado mientras
// existan transacciones que lo referencien).
func (uc *UseCase) Retire(ctx context.Context, id string) error {
	item, err := uc.itemRepo.GetByID(id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	if item.IsRetired() {
		return nil // ya retirado
	}
	return uc.itemRepo.Retire(id)
}
