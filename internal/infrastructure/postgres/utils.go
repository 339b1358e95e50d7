package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// SQLSTATE que indican contención de bloqueos; el llamador puede reintentar.
const (
	codeLockNotAvailable     = "55P03" // lock_timeout
	codeDeadlockDetected     = "40P01"
	codeSerializationFailure = "40001"
	codeQueryCanceled        = "57014" // statement_timeout
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// isContention indica si el error de PostgreSQL es por espera de bloqueo o conflicto de concurrencia.
func isContention(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeLockNotAvailable, codeDeadlockDetected, codeSerializationFailure, codeQueryCanceled:
		return true
	}
	return false
}

// wrapErr envuelve err con el nombre de la operación; la contención se expone como
// domain.ErrConcurrentContention.
func wrapErr(op string, err error) error {
	if isContention(err) {
		return fmt.Errorf("%s: %w (%v)", op, domain.ErrConcurrentContention, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
