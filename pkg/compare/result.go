package compare

import (
	"fmt"
	"strings"

	"github.com/lance6716/sql-data-compare/pkg/query"
)

// Result is the outcome of comparing two query results. IsEqual implies
// RowCountMatch.
type Result struct {
	Left          *query.Result
	Right         *query.Result
	IsEqual       bool
	RowCountMatch bool
	// FirstDiff is the first position where the two results differ, nil when
	// they are equal.
	FirstDiff *Diff
}

// Diff locates a difference. Column is -1 when the difference is in the shape
// rather than in a value.
type Diff struct {
	Row    int
	Column int
	Left   any
	Right  any
	Reason string
}

func (d *Diff) String() string {
	if d.Column < 0 {
		return fmt.Sprintf("row %d: %s", d.Row, d.Reason)
	}
	return fmt.Sprintf("row %d column %d: %s", d.Row, d.Column, d.Reason)
}

// PerfRatio returns right duration / left duration. ok is false when either
// duration is not positive.
func (r *Result) PerfRatio() (ratio float64, ok bool) {
	if r.Left.Duration <= 0 || r.Right.Duration <= 0 {
		return 0, false
	}
	return float64(r.Right.Duration) / float64(r.Left.Duration), true
}

// Status is "EQUAL" or "NOT EQUAL".
func (r *Result) Status() string {
	if r.IsEqual {
		return "EQUAL"
	}
	return "NOT EQUAL"
}

func (r *Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Comparison Result: %s\n", r.Status())
	fmt.Fprintf(&b, "Left:  %d rows, %.2fs\n", r.Left.RowCount, r.Left.Duration.Seconds())
	fmt.Fprintf(&b, "Right: %d rows, %.2fs", r.Right.RowCount, r.Right.Duration.Seconds())
	if ratio, ok := r.PerfRatio(); ok {
		fmt.Fprintf(&b, "\nRight/Left time: %.2fx", ratio)
	}
	if r.FirstDiff != nil {
		fmt.Fprintf(&b, "\nFirst difference at %s", r.FirstDiff)
	}
	return b.String()
}

// LogicError means the comparison itself could not be carried out.
type LogicError struct {
	Msg string
}

func (e *LogicError) Error() string {
	return "compare results: " + e.Msg
}
