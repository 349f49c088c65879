// Package query runs one SQL statement on a side and materializes its rows.
package query

import (
	"context"
	"strings"
	"time"

	"github.com/lance6716/sql-data-compare/pkg/conn"
	"github.com/lance6716/sql-data-compare/pkg/util"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
)

// Result is the fully read result set of one execution. RowCount always equals
// len(Rows).
type Result struct {
	Side     conn.Side
	Kind     conn.Kind
	Columns  []string
	Rows     [][]any
	RowCount int
	Duration time.Duration
}

// Executor executes queries. The zero value has no timeout.
type Executor struct {
	// Timeout bounds a single execution including reading all rows. Zero means
	// no limit other than the caller's context.
	Timeout time.Duration
}

// Execute runs sqlText with a zero Executor.
func Execute(ctx context.Context, c conn.Conn, sqlText string, params ...any) (*Result, error) {
	return Executor{}.Execute(ctx, c, sqlText, params...)
}

// Execute runs sqlText on c, binding params to its placeholders, and reads every
// row. No transaction is started. The returned error is an *ExecutionError or a
// *TimeoutError.
func (e Executor) Execute(ctx context.Context, c conn.Conn, sqlText string, params ...any) (*Result, error) {
	side, kind := c.Side(), c.Kind()
	if strings.TrimSpace(sqlText) == "" {
		return nil, &ExecutionError{
			Side:  side,
			Kind:  kind,
			Cause: errors.New("empty SQL text"),
		}
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	start := time.Now()
	columns, rows, err := run(ctx, c, sqlText, params)
	elapsed := time.Since(start)
	if err != nil {
		// drivers report an expired context in their own ways
		if e.Timeout > 0 && ctx.Err() == context.DeadlineExceeded {
			return nil, &TimeoutError{
				Side:     side,
				Kind:     kind,
				Duration: elapsed,
				Timeout:  e.Timeout,
				Cause:    err,
			}
		}
		return nil, &ExecutionError{
			Side:     side,
			Kind:     kind,
			Duration: elapsed,
			Cause:    err,
		}
	}

	util.Logger.Debug("query executed",
		zap.String("side", string(side)),
		zap.String("kind", string(kind)),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", elapsed))
	return &Result{
		Side:     side,
		Kind:     kind,
		Columns:  columns,
		Rows:     rows,
		RowCount: len(rows),
		Duration: elapsed,
	}, nil
}

func run(ctx context.Context, c conn.Conn, sqlText string, params []any) ([]string, [][]any, error) {
	rows, err := c.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	defer rows.Close()
	columns, data, err := util.ReadAllRows(rows)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	return columns, data, nil
}
