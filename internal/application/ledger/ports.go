package ledger

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor del libro:
// leer la posición y escribir la transacción ocurre sin ventana visible para
// otros escritores (serialización por ítem vía ItemRepository.GetForUpdate).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		txRepo repository.StockTransactionRepository,
		resRepo repository.ReservationRepository,
	) error) error
}

// PositionCache cachea posiciones derivadas. Estrictamente derivado: se
// invalida de forma síncrona en cada escritura que confirma sobre el ítem,
// nunca es autoritativo frente a la recomputación desde el libro.
type PositionCache interface {
	Get(ctx context.Context, itemID string) (*entity.StockPosition, bool)
	Set(ctx context.Context, pos *entity.StockPosition)
	Invalidate(ctx context.Context, itemID string)
}
