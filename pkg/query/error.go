package query

import (
	"fmt"
	"time"

	"github.com/lance6716/sql-data-compare/pkg/conn"
)

// ExecutionError is returned when a query fails on a side. Duration is the time
// spent before the failure.
type ExecutionError struct {
	Side     conn.Side
	Kind     conn.Kind
	Duration time.Duration
	Cause    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %s query (%s) failed after %s: %v", e.Side, e.Kind, e.Duration, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// TimeoutError is returned when a query does not finish within
// Executor.Timeout.
type TimeoutError struct {
	Side     conn.Side
	Kind     conn.Kind
	Duration time.Duration
	Timeout  time.Duration
	Cause    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execute %s query (%s) timed out after %s (limit %s): %v",
		e.Side, e.Kind, e.Duration, e.Timeout, e.Cause)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}
