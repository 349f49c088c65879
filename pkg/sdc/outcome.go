package sdc

import (
	"time"

	"github.com/lance6716/sql-data-compare/pkg/compare"
	"github.com/lance6716/sql-data-compare/pkg/config"
)

// Status is the final state of an item.
type Status string

const (
	StatusEqual    Status = "equal"
	StatusNotEqual Status = "not-equal"
	StatusErrored  Status = "errored"
)

// Stage is how far an item went. An errored item keeps the stage it failed in.
type Stage string

const (
	StagePending    Stage = "pending"
	StageConnecting Stage = "connecting"
	StageExecuting  Stage = "executing"
	StageComparing  Stage = "comparing"
	StageDone       Stage = "done"
)

// Outcome is the result of one item.
type Outcome struct {
	Index  int
	Item   config.Item
	Status Status
	Stage  Stage
	// Result is nil when Status is StatusErrored.
	Result *compare.Result
	Err    error

	LeftSQL  string
	RightSQL string
}

// Verdict summarizes a run.
type Verdict string

const (
	VerdictAllEqual     Verdict = "all-equal"
	VerdictSomeNotEqual Verdict = "some-not-equal"
	VerdictSomeErrored  Verdict = "some-errored"
)

// Summary holds the outcomes of a run in configuration order.
type Summary struct {
	Outcomes []Outcome
	Equal    int
	NotEqual int
	Errored  int
	Elapsed  time.Duration
}

func newSummary(outcomes []Outcome, elapsed time.Duration) *Summary {
	s := &Summary{Outcomes: outcomes, Elapsed: elapsed}
	for _, o := range outcomes {
		switch o.Status {
		case StatusEqual:
			s.Equal++
		case StatusNotEqual:
			s.NotEqual++
		default:
			s.Errored++
		}
	}
	return s
}

// Success is true when every item was executed and equal. A run without items
// succeeds.
func (s *Summary) Success() bool {
	return s.NotEqual == 0 && s.Errored == 0
}

// Verdict reports errors before differences.
func (s *Summary) Verdict() Verdict {
	switch {
	case s.Errored > 0:
		return VerdictSomeErrored
	case s.NotEqual > 0:
		return VerdictSomeNotEqual
	default:
		return VerdictAllEqual
	}
}
