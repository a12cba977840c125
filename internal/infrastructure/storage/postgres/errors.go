package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"colisflow/internal/core/apperror"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgQueryCanceled       = "57014"
)

// MapError translates driver errors into AppErrors. entity names the table's
// domain object for messages.
func MapError(entity, op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.NewConflict(entity+" already exists").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case pgForeignKeyViolation:
			return apperror.NewConflict(entity+" references a missing or protected record").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case pgCheckViolation:
			return apperror.NewValidation(entity+" violates a storage constraint").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case pgQueryCanceled:
			return apperror.NewDatabase(fmt.Errorf("%s %s: statement timeout: %w", op, entity, err))
		}
	}
	return fmt.Errorf("%s %s: %w", op, entity, err)
}
