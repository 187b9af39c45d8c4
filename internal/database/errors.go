package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/backoffice/internal/apperror"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNumericOutOfRange   = "22003"
)

// ErrValueOutOfRange is returned by stores when a value does not fit its column.
var ErrValueOutOfRange = apperror.Validation("value is out of range")

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}

	return false
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeForeignKeyViolation
	}

	return false
}

func IsNumericOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeNumericOutOfRange
	}

	return false
}
