package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isLockTimeout verifica si un error es un lock_timeout de PostgreSQL (55P03,
// lock_not_available): la espera acotada por la fila del ítem venció.
func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "55P03"
	}
	return false
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
