// Package compare decides whether two query results are the same.
package compare

import (
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lance6716/sql-data-compare/pkg/query"
)

// valueOpts is used to compare two driver values. Dynamic types must match,
// so int64(1) and "1" are different.
var valueOpts = cmp.Options{
	cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) }),
	cmpopts.EquateEmpty(),
}

// Compare compares the rows of left and right in order. A *LogicError is
// returned when the inputs are malformed or contain values that can't be
// compared.
func Compare(left, right *query.Result) (*Result, error) {
	if left == nil || right == nil {
		return nil, &LogicError{Msg: "missing query result"}
	}
	for _, r := range []*query.Result{left, right} {
		if r.RowCount != len(r.Rows) {
			return nil, &LogicError{Msg: fmt.Sprintf(
				"%s result claims %d rows but holds %d", r.Side, r.RowCount, len(r.Rows))}
		}
	}

	diff, err := firstDiff(left.Rows, right.Rows)
	if err != nil {
		return nil, err
	}
	return &Result{
		Left:          left,
		Right:         right,
		IsEqual:       diff == nil,
		RowCountMatch: left.RowCount == right.RowCount,
		FirstDiff:     diff,
	}, nil
}

// firstDiff returns nil when a and b are equal.
func firstDiff(a, b [][]any) (diff *Diff, err error) {
	row, col := 0, 0
	defer func() {
		// cmp panics on values it can't inspect, like structs with unexported
		// fields
		if r := recover(); r != nil {
			diff = nil
			err = &LogicError{
				Msg: fmt.Sprintf("can't compare values at row %d column %d: %v", row, col, r),
			}
		}
	}()

	for ; row < len(a) && row < len(b); row++ {
		ra, rb := a[row], b[row]
		if len(ra) != len(rb) {
			return &Diff{Row: row, Column: -1, Reason: fmt.Sprintf("%d columns vs %d columns", len(ra), len(rb))}, nil
		}
		for col = 0; col < len(ra); col++ {
			if !cmp.Equal(ra[col], rb[col], valueOpts) {
				return &Diff{
					Row:    row,
					Column: col,
					Left:   ra[col],
					Right:  rb[col],
					Reason: fmt.Sprintf("%T(%v) vs %T(%v)", ra[col], ra[col], rb[col], rb[col]),
				}, nil
			}
		}
		col = 0
	}
	if len(a) != len(b) {
		return &Diff{Row: row, Column: -1, Reason: fmt.Sprintf("%d rows vs %d rows", len(a), len(b))}, nil
	}
	return nil, nil
}
