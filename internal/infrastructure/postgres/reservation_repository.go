package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo persistencia de reservas sobre PostgreSQL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador de reservas. Pasar pool o tx.
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, item_id, quantity, requesting_context_id, status, created_by, created_at, closed_at`

// Create inserta una reserva activa.
func (r *ReservationRepo) Create(res *entity.Reservation) error {
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		res.ID, res.ItemID, res.Quantity, res.RequestingContextID,
		res.Status, res.CreatedBy, res.CreatedAt, res.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// GetByID obtiene una reserva; nil si no existe.
func (r *ReservationRepo) GetByID(id string) (*entity.Reservation, error) {
	row := r.q.QueryRow(context.Background(),
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	res, err := scanReservation(row)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// Close transiciona active → released/consumed. Condicionado al estado activo
// para que dos cierres concurrentes no se pisen.
func (r *ReservationRepo) Close(id string, status string, closedAt time.Time) error {
	tag, err := r.q.Exec(context.Background(), `
		UPDATE reservations
		SET status = $2, closed_at = $3
		WHERE id = $1 AND status = 'active'`,
		id, status, closedAt,
	)
	if err != nil {
		return fmt.Errorf("close reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// ActiveQuantity suma las reservas activas de un ítem.
func (r *ReservationRepo) ActiveQuantity(itemID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(quantity), 0)
		FROM reservations
		WHERE item_id = $1 AND status = 'active'`,
		itemID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("active reserved quantity: %w", err)
	}
	return sum, nil
}

// ActiveQuantityAll agrega lo reservado de todos los ítems en una pasada.
func (r *ReservationRepo) ActiveQuantityAll() ([]repository.ItemReserved, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT item_id, COALESCE(SUM(quantity), 0)
		FROM reservations
		WHERE status = 'active'
		GROUP BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("active reserved all: %w", err)
	}
	defer rows.Close()
	var out []repository.ItemReserved
	for rows.Next() {
		var ir repository.ItemReserved
		if err := rows.Scan(&ir.ItemID, &ir.Reserved); err != nil {
			return nil, fmt.Errorf("scan reserved: %w", err)
		}
		out = append(out, ir)
	}
	return out, rows.Err()
}

// ListByItem reservas de un ítem, más recientes primero.
func (r *ReservationRepo) ListByItem(itemID string, limit, offset int) ([]*entity.Reservation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.q.Query(context.Background(), `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE item_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		itemID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListByContext reservas asociadas a un contexto solicitante.
func (r *ReservationRepo) ListByContext(contextID string) ([]*entity.Reservation, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE requesting_context_id = $1
		ORDER BY created_at`,
		contextID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by context: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(
		&res.ID, &res.ItemID, &res.Quantity, &res.RequestingContextID,
		&res.Status, &res.CreatedBy, &res.CreatedAt, &res.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func collectReservations(rows pgx.Rows) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(
			&res.ID, &res.ItemID, &res.Quantity, &res.RequestingContextID,
			&res.Status, &res.CreatedBy, &res.CreatedAt, &res.ClosedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}
