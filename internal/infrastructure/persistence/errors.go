package persistence

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smberp/backend/internal/domain/shared"
)

// Postgres error code for unique constraint violations
const uniqueViolationCode = "23505"

// translateError maps database driver errors to domain errors.
// A unique constraint violation surfaces as ALREADY_EXISTS so callers
// get a stable code instead of a driver-specific message.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return shared.ErrAlreadyExists
	}
	return err
}
