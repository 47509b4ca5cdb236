package datastore

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	sqlStateUniqueViolation  = "23505"
	sqlStateLockNotAvailable = "55P03"
	sqlStateQueryCanceled    = "57014"
)

func sqlState(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}

// IsBusy reports a lock_timeout or statement_timeout abort. The same request can succeed on retry.
func IsBusy(err error) bool {
	switch sqlState(err) {
	case sqlStateLockNotAvailable, sqlStateQueryCanceled:
		return true
	}
	return false
}

func IsUniqueViolation(err error) bool {
	return sqlState(err) == sqlStateUniqueViolation
}
