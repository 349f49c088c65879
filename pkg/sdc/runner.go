package sdc

import (
	"context"
	"time"

	"github.com/lance6716/sql-data-compare/pkg/compare"
	"github.com/lance6716/sql-data-compare/pkg/config"
	"github.com/lance6716/sql-data-compare/pkg/conn"
	"github.com/lance6716/sql-data-compare/pkg/metrics"
	"github.com/lance6716/sql-data-compare/pkg/query"
	"github.com/lance6716/sql-data-compare/pkg/util"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner runs the items of a loaded configuration. A failed item never stops
// the others.
type Runner struct {
	cmps          *config.Comparisons
	provider      conn.Provider
	concurrency   int
	parallelSides bool
	executor      query.Executor
	metrics       *metrics.Metrics
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConcurrency sets how many items run at the same time. Values below 2 run
// the items one by one.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		r.concurrency = n
	}
}

// WithParallelSides executes the left and right query of an item concurrently.
func WithParallelSides(enable bool) RunnerOption {
	return func(r *Runner) {
		r.parallelSides = enable
	}
}

// WithQueryTimeout limits every query execution.
func WithQueryTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.executor.Timeout = d
	}
}

// WithMetrics records the run into m.
func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner creates a Runner. Connections are opened from provider.
func NewRunner(cmps *config.Comparisons, provider conn.Provider, opts ...RunnerOption) *Runner {
	r := &Runner{
		cmps:        cmps,
		provider:    provider,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run runs every item and returns their outcomes in configuration order.
func (r *Runner) Run(ctx context.Context) *Summary {
	start := time.Now()
	items := r.cmps.Items
	outcomes := make([]Outcome, len(items))

	if r.concurrency <= 1 {
		for i, item := range items {
			outcomes[i] = r.runItem(ctx, i, item)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.concurrency)
		for i, item := range items {
			g.Go(func() error {
				outcomes[i] = r.runItem(ctx, i, item)
				return nil
			})
		}
		_ = g.Wait()
	}

	s := newSummary(outcomes, time.Since(start))
	r.metrics.SetRunResult(s.Success(), time.Now())

	fields := []zap.Field{
		zap.String("verdict", string(s.Verdict())),
		zap.Int("items", len(outcomes)),
		zap.Int("equal", s.Equal),
		zap.Int("not-equal", s.NotEqual),
		zap.Int("errored", s.Errored),
		zap.Duration("elapsed", s.Elapsed),
	}
	if s.Success() {
		util.Logger.Info("all comparisons successful", fields...)
	} else {
		util.Logger.Warn("some comparisons failed", fields...)
	}
	return s
}

func (r *Runner) runItem(ctx context.Context, index int, item config.Item) Outcome {
	o := Outcome{
		Index: index,
		Item:  item,
		Stage: StagePending,
	}
	logger := util.Logger.With(
		zap.Int("index", index),
		zap.String("name", item.Name))

	res, err := r.compareItem(ctx, &o, logger)
	if err != nil {
		o.Status = StatusErrored
		o.Err = err
		logger.Error("comparison errored",
			zap.String("stage", string(o.Stage)),
			zap.Error(err))
		r.metrics.ObserveOutcome(string(o.Status))
		return o
	}

	o.Stage = StageDone
	o.Result = res
	o.Status = StatusNotEqual
	if res.IsEqual {
		o.Status = StatusEqual
	}
	fields := []zap.Field{
		zap.String("status", string(o.Status)),
		zap.Bool("row-count-match", res.RowCountMatch),
		zap.Int("left-rows", res.Left.RowCount),
		zap.Int("right-rows", res.Right.RowCount),
		zap.Duration("left-duration", res.Left.Duration),
		zap.Duration("right-duration", res.Right.Duration),
	}
	if ratio, ok := res.PerfRatio(); ok {
		fields = append(fields, zap.Float64("perf-ratio", ratio))
	}
	if res.FirstDiff != nil {
		fields = append(fields, zap.Stringer("first-diff", res.FirstDiff))
	}
	logger.Info("comparison finished", fields...)
	r.metrics.ObserveOutcome(string(o.Status))
	return o
}

// compareItem advances o.Stage while working. Every opened connection is closed
// before it returns.
func (r *Runner) compareItem(ctx context.Context, o *Outcome, logger *zap.Logger) (*compare.Result, error) {
	item := o.Item
	var err error
	o.LeftSQL, err = r.cmps.QueryText(item.LeftQueryFile)
	if err != nil {
		return nil, errors.Trace(err)
	}
	o.RightSQL, err = r.cmps.QueryText(item.RightQueryFile)
	if err != nil {
		return nil, errors.Trace(err)
	}

	o.Stage = StageConnecting
	left, err := r.open(ctx, conn.Left, item.LeftKind)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer release(left, logger)
	right, err := r.open(ctx, conn.Right, item.RightKind)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer release(right, logger)

	o.Stage = StageExecuting
	var leftRes, rightRes *query.Result
	if r.parallelSides {
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err2 error
			leftRes, err2 = r.execute(gCtx, left, o.LeftSQL, item.LeftParams)
			return err2
		})
		g.Go(func() error {
			var err2 error
			rightRes, err2 = r.execute(gCtx, right, o.RightSQL, item.RightParams)
			return err2
		})
		if err = g.Wait(); err != nil {
			return nil, errors.Trace(err)
		}
	} else {
		if leftRes, err = r.execute(ctx, left, o.LeftSQL, item.LeftParams); err != nil {
			return nil, errors.Trace(err)
		}
		if rightRes, err = r.execute(ctx, right, o.RightSQL, item.RightParams); err != nil {
			return nil, errors.Trace(err)
		}
	}

	o.Stage = StageComparing
	res, err := compare.Compare(leftRes, rightRes)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return res, nil
}

func (r *Runner) open(ctx context.Context, side conn.Side, kind conn.Kind) (conn.Conn, error) {
	c, err := r.provider.Open(ctx, side, kind)
	if err != nil {
		r.metrics.IncConnectionError(string(side), string(kind))
		return nil, err
	}
	return c, nil
}

func (r *Runner) execute(ctx context.Context, c conn.Conn, sqlText string, params []any) (*query.Result, error) {
	res, err := r.executor.Execute(ctx, c, sqlText, params...)
	if err != nil {
		return nil, err
	}
	r.metrics.ObserveQuery(string(res.Side), string(res.Kind), res.Duration)
	return res, nil
}

func release(c conn.Conn, logger *zap.Logger) {
	if err := c.Close(); err != nil {
		logger.Warn("close connection failed",
			zap.String("side", string(c.Side())),
			zap.String("kind", string(c.Kind())),
			zap.Error(err))
	}
}
