package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/lib/pq"
)

// Postgres error codes that mean another writer won.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
)

// Postgres error codes for values the schema rejects.
const (
	codeNumericOutOfRange = "22003"
	codeCheckViolation    = "23514"
)

// mapError translates driver errors into the entity error kinds. Errors that carry
// no meaning for clients are returned unchanged.
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: concurrent update, retry the request", entity.ErrConflict)
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", entity.ErrConflict, pqErr.Detail)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", entity.ErrConflict, pqErr.Detail)
	case codeNumericOutOfRange, codeCheckViolation:
		return fmt.Errorf("%w: %s", entity.ErrValidation, pqErr.Message)
	}
	return err
}

// rowsAffected reports whether res touched anything, or kind/id as not found.
func rowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return entity.NotFound(kind, id)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
