package repository

import "github.com/jhoicas/stock-ledger-api/internal/domain/entity"

// ItemRepository define el puerto de persistencia del catálogo de ítems.
// GetForUpdate bloquea la fila del ítem (SELECT FOR UPDATE): es la cabecera
// del libro y el punto de serialización por ítem de todo read-modify-write.
type ItemRepository interface {
	Create(item *entity.Item) error
	GetByID(id string) (*entity.Item, error)
	GetForUpdate(id string) (*entity.Item, error)
	Update(item *entity.Item) error
	Retire(id string) error
	List(limit, offset int, includeRetired bool) ([]*entity.Item, error)
	// ListAllTrackable devuelve todos los ítems rastreables no retirados
	// (para alertas, valoración y distribución de estados).
	ListAllTrackable() ([]*entity.Item, error)
}
