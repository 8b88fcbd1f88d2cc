package pgdb

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func postgresDuplicate(err error) bool {
	return pgErrCode(err) == uniqueViolation
}

func postgresForeignKey(err error) bool {
	return pgErrCode(err) == foreignKeyViolation
}

func postgresCheck(err error) bool {
	return pgErrCode(err) == checkViolation
}
