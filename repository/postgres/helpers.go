package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/taskboard/domain"
)

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateInvalidTextRepr     = "22P02"
	sqlStateUndefinedColumn     = "42703"
	sqlStateDatatypeMismatch    = "42804"
	sqlStateUndefinedTable      = "42P01"
	sqlStateNotNullViolation    = "23502"
	sqlStateForeignKeyViolation = "23503"
)

// classify maps driver errors onto domain error codes. notFound is returned
// for pgx.ErrNoRows so each repository keeps its own sentinel.
func classify(err error, notFound *domain.Error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			return domain.WrapError(domain.ErrCodeConflict, message, err)
		case sqlStateInvalidTextRepr, sqlStateUndefinedColumn, sqlStateDatatypeMismatch, sqlStateUndefinedTable:
			return domain.WrapError(domain.ErrCodeSchema, message, err)
		case sqlStateNotNullViolation, sqlStateForeignKeyViolation:
			return domain.WrapError(domain.ErrCodeInvalid, message, err)
		}
	}
	return domain.WrapError(domain.ErrCodeTransport, message, err)
}

func nullInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
