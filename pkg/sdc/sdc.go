package sdc

import (
	"context"
	"time"

	"github.com/lance6716/sql-data-compare/pkg/config"
	"github.com/lance6716/sql-data-compare/pkg/conn"
	"github.com/lance6716/sql-data-compare/pkg/filemgr"
	"github.com/lance6716/sql-data-compare/pkg/metrics"
	"github.com/lance6716/sql-data-compare/pkg/util"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
)

// Run is the main entry function of the comparison logic. An error is returned
// when nothing could be compared, like a broken configuration, or when the run
// is canceled. Failed items are reported in the Summary instead.
func Run(ctx context.Context, cfg *Config) (*Summary, error) {
	cfg.ensureDefaults()
	if cfg.Log.Level != "" || cfg.Log.Filename != "" {
		if err := util.InitLogger(cfg.Log.Level, cfg.Log.Filename); err != nil {
			return nil, errors.Trace(err)
		}
	}

	provider := conn.NewEnvProvider(
		cfg.Env,
		conn.WithRetry(cfg.ConnectRetries, cfg.ConnectRetryInterval),
	)
	return run(ctx, cfg, provider)
}

func run(ctx context.Context, cfg *Config, provider conn.Provider) (*Summary, error) {
	util.Logger.Info("start comparison task",
		zap.String("task", cfg.TaskName),
		zap.String("config", cfg.ConfigPath),
		zap.String("sql-dir", cfg.SQLDir),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Bool("parallel-sides", cfg.ParallelSides),
		zap.Duration("query-timeout", cfg.QueryTimeout))

	cmps, err := config.Load(cfg.ConfigPath, cfg.SQLDir)
	if err != nil {
		return nil, errors.Trace(err)
	}

	var (
		mgr *filemgr.Manager
		m   *metrics.Metrics
	)
	if cfg.WorkDir != "" {
		mgr = filemgr.NewManager(cfg.WorkDir)
		if err = mgr.Prepare(); err != nil {
			return nil, errors.Trace(err)
		}
		m = metrics.NewMetrics()
	}

	runner := NewRunner(cmps, provider,
		WithConcurrency(cfg.Concurrency),
		WithParallelSides(cfg.ParallelSides),
		WithQueryTimeout(cfg.QueryTimeout),
		WithMetrics(m),
	)
	startedAt := time.Now()
	summary := runner.Run(ctx)

	if mgr != nil {
		if err = writeOutputs(cfg, startedAt, summary, mgr, m); err != nil {
			return summary, errors.Trace(err)
		}
		util.Logger.Info("outputs written",
			zap.String("report", mgr.ReportPath()),
			zap.String("metrics", mgr.MetricsPath()))
	}
	if err = ctx.Err(); err != nil {
		return summary, errors.Trace(err)
	}
	return summary, nil
}
