package util

import (
	"github.com/go-sql-driver/mysql"
	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/pkg/errno"
)

type unretryableErr interface {
	marker()
}

type unretryableWrapper struct {
	error
}

func (unretryableWrapper) marker() {}

func (u unretryableWrapper) Unwrap() error {
	return u.error
}

// WrapUnretryableError wraps an error to make it unretryable.
func WrapUnretryableError(err error) error {
	if err == nil {
		return nil
	}
	return unretryableWrapper{err}
}

// IsUnretryableError checks if an error is wrapped by WrapUnretryableError. It
// supports pingcap/errors package.
func IsUnretryableError(err error) bool {
	for err != nil {
		if _, ok := err.(unretryableErr); ok {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// CheckMySQLErrorUnretryable checks the MySQL error returned when connecting to
// determine if it is unretryable. Wrong credentials or a missing database will
// not recover by themselves. For errors we don't have confidence, we assume it
// is retryable.
func CheckMySQLErrorUnretryable(err *mysql.MySQLError) bool {
	if err == nil {
		return false
	}
	switch err.Number {
	case errno.ErrAccessDenied, errno.ErrDBaccessDenied, errno.ErrBadDB:
		return true
	}
	return false
}
