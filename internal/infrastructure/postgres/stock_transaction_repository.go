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

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

// StockTransactionRepo implementación del libro de transacciones sobre
// PostgreSQL. La tabla es append-only: los únicos UPDATE son las transiciones
// pending → approved/rejected, condicionadas al estado vigente en el WHERE
// para que una doble aprobación concurrente pierda con ErrConflict.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador del libro. Pasar pool o tx.
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

const txnColumns = `id, item_id, cause, movement_type, direction, quantity, unit_cost,
	total_cost, transaction_date, created_at, approved_at, running_balance, status,
	actor, remarks, rejected_reason, batch_number, expiry_date, source, destination`

// signedQuantitySQL expresa SignedQuantity en SQL para las agregaciones.
const signedQuantitySQL = `
	CASE
		WHEN movement_type = 'stock_out' THEN -quantity
		WHEN movement_type = 'adjustment' AND direction = 'out' THEN -quantity
		ELSE quantity
	END`

// Create inserta la transacción con su running balance ya congelado.
func (r *StockTransactionRepo) Create(txn *entity.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (` + txnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(context.Background(), query,
		txn.ID, txn.ItemID, txn.Cause, txn.MovementType, txn.Direction, txn.Quantity,
		txn.UnitCost, txn.TotalCost, txn.TransactionDate, txn.CreatedAt, txn.ApprovedAt,
		txn.RunningBalance, txn.Status, txn.Actor, txn.Remarks, txn.RejectedReason,
		txn.BatchNumber, txn.ExpiryDate, txn.Source, txn.Destination,
	)
	if err != nil {
		return fmt.Errorf("create stock transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una transacción; nil si no existe.
func (r *StockTransactionRepo) GetByID(id string) (*entity.StockTransaction, error) {
	row := r.q.QueryRow(context.Background(),
		`SELECT `+txnColumns+` FROM stock_transactions WHERE id = $1`, id)
	txn, err := scanTxn(row)
	if err != nil {
		return nil, fmt.Errorf("get stock transaction: %w", err)
	}
	return txn, nil
}

// MarkApproved congela balance y fecha de efecto. Condicionado a status=pending.
func (r *StockTransactionRepo) MarkApproved(id string, runningBalance decimal.Decimal, approvedAt time.Time) error {
	tag, err := r.q.Exec(context.Background(), `
		UPDATE stock_transactions
		SET status = 'approved', running_balance = $2, approved_at = $3
		WHERE id = $1 AND status = 'pending'`,
		id, runningBalance, approvedAt,
	)
	if err != nil {
		return fmt.Errorf("mark approved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// MarkRejected transiciona pending → rejected.
func (r *StockTransactionRepo) MarkRejected(id string, reason string) error {
	tag, err := r.q.Exec(context.Background(), `
		UPDATE stock_transactions
		SET status = 'rejected', rejected_reason = $2
		WHERE id = $1 AND status = 'pending'`,
		id, reason,
	)
	if err != nil {
		return fmt.Errorf("mark rejected: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// OnHand suma las cantidades con signo de las transacciones efectivas del ítem.
func (r *StockTransactionRepo) OnHand(itemID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(`+signedQuantitySQL+`), 0)
		FROM stock_transactions
		WHERE item_id = $1 AND status IN ('approved', 'completed')`,
		itemID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("on hand: %w", err)
	}
	return sum, nil
}

// OnHandAll agrega el on-hand de todos los ítems en una pasada.
func (r *StockTransactionRepo) OnHandAll() ([]repository.ItemOnHand, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT item_id, COALESCE(SUM(`+signedQuantitySQL+`), 0)
		FROM stock_transactions
		WHERE status IN ('approved', 'completed')
		GROUP BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("on hand all: %w", err)
	}
	defer rows.Close()
	var out []repository.ItemOnHand
	for rows.Next() {
		var oh repository.ItemOnHand
		if err := rows.Scan(&oh.ItemID, &oh.OnHand); err != nil {
			return nil, fmt.Errorf("scan on hand: %w", err)
		}
		out = append(out, oh)
	}
	return out, rows.Err()
}

// ListByItem historial del ítem ordenado por fecha efectiva y luego inserción.
func (r *StockTransactionRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + txnColumns + ` FROM stock_transactions WHERE item_id = $1`
	args := []any{itemID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND transaction_date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND transaction_date <= $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY transaction_date, created_at LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return collectTxns(rows)
}

// ListEffective transacciones efectivas en el orden en que se congelaron sus
// balances (approved_at, created_at): la secuencia que verifica el replay.
func (r *StockTransactionRepo) ListEffective(itemID string) ([]*entity.StockTransaction, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT `+txnColumns+`
		FROM stock_transactions
		WHERE item_id = $1 AND status IN ('approved', 'completed')
		ORDER BY approved_at, created_at`,
		itemID)
	if err != nil {
		return nil, fmt.Errorf("list effective transactions: %w", err)
	}
	defer rows.Close()
	return collectTxns(rows)
}

func scanTxn(row pgx.Row) (*entity.StockTransaction, error) {
	var t entity.StockTransaction
	err := row.Scan(
		&t.ID, &t.ItemID, &t.Cause, &t.MovementType, &t.Direction, &t.Quantity, &t.UnitCost,
		&t.TotalCost, &t.TransactionDate, &t.CreatedAt, &t.ApprovedAt, &t.RunningBalance,
		&t.Status, &t.Actor, &t.Remarks, &t.RejectedReason, &t.BatchNumber, &t.ExpiryDate,
		&t.Source, &t.Destination,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func collectTxns(rows pgx.Rows) ([]*entity.StockTransaction, error) {
	var out []*entity.StockTransaction
	for rows.Next() {
		var t entity.StockTransaction
		if err := rows.Scan(
			&t.ID, &t.ItemID, &t.Cause, &t.MovementType, &t.Direction, &t.Quantity, &t.UnitCost,
			&t.TotalCost, &t.TransactionDate, &t.CreatedAt, &t.ApprovedAt, &t.RunningBalance,
			&t.Status, &t.Actor, &t.Remarks, &t.RejectedReason, &t.BatchNumber, &t.ExpiryDate,
			&t.Source, &t.Destination,
		); err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
