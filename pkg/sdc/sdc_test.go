package sdc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lance6716/sql-data-compare/pkg/config"
	"github.com/lance6716/sql-data-compare/pkg/conn"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
  "compare_list": [
    {"name": "A", "left_db_type": "pg", "left_query_file": "a_left.sql", "right_db_type": "pg", "right_query_file": "a_right.sql"},
    {"name": "B", "left_db_type": "mssql", "left_query_file": "b_left.sql", "right_db_type": "pg", "right_query_file": "b_right.sql"},
    {"name": "C", "left_db_type": "mysql", "left_query_file": "c_left.sql", "right_db_type": "mssql", "right_query_file": "c_right.sql"}
  ]
}`), 0o644))
	return configPath
}

func TestRunWithWorkDir(t *testing.T) {
	cmps, p := threeItems(t)
	workDir := filepath.Join(t.TempDir(), "work")
	cfg := &Config{
		ConfigPath:  writeConfig(t),
		SQLDir:      cmps.SQLDir,
		WorkDir:     workDir,
		Concurrency: 2,
		Env:         conn.Env{},
	}
	cfg.ensureDefaults()

	s, err := run(context.Background(), cfg, p)
	require.NoError(t, err)
	require.Equal(t, []Status{StatusErrored, StatusEqual, StatusNotEqual}, statuses(s))
	p.requireReleased(t, 6)

	content, err := os.ReadFile(filepath.Join(workDir, "outcomes", "001-B.json"))
	require.NoError(t, err)
	require.Contains(t, string(content), `"status": "equal"`)
	require.Contains(t, string(content), `"row_count": 2`)
	content, err = os.ReadFile(filepath.Join(workDir, "outcomes", "000-A.json"))
	require.NoError(t, err)
	require.Contains(t, string(content), `"stage": "executing"`)
	require.Contains(t, string(content), `boom`)

	content, err = os.ReadFile(filepath.Join(workDir, "report.html"))
	require.NoError(t, err)
	require.Contains(t, string(content), "Report Summary: some-errored")
	require.Contains(t, string(content), "<pre>SELECT c FROM r</pre>")
	require.Contains(t, string(content), "First Difference")

	content, err = os.ReadFile(filepath.Join(workDir, "metrics.prom"))
	require.NoError(t, err)
	require.Contains(t, string(content), `sql_data_compare_items_total{status="errored"} 1`)
	require.Contains(t, string(content), `sql_data_compare_last_run_success 0`)
}

func TestRunConfigError(t *testing.T) {
	p := &fakeProvider{t: t}
	cfg := &Config{
		ConfigPath: filepath.Join(t.TempDir(), "missing.json"),
		Env:        conn.Env{},
	}
	cfg.ensureDefaults()
	s, err := run(context.Background(), cfg, p)
	require.Nil(t, s)
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	p.requireReleased(t, 0)

	// a missing query file fails before anything runs
	cmps, _ := threeItems(t)
	require.NoError(t, os.Remove(filepath.Join(cmps.SQLDir, "c_right.sql")))
	cfg.ConfigPath = writeConfig(t)
	cfg.SQLDir = cmps.SQLDir
	s, err = run(context.Background(), cfg, p)
	require.Nil(t, s)
	require.ErrorAs(t, err, &cfgErr)
	require.ErrorContains(t, err, "SQL file not found")
	p.requireReleased(t, 0)
}

func TestRunCanceled(t *testing.T) {
	cmps, p := threeItems(t)
	cfg := &Config{
		ConfigPath: writeConfig(t),
		SQLDir:     cmps.SQLDir,
		Env:        conn.Env{},
	}
	cfg.ensureDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := run(ctx, cfg, p)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []Status{StatusErrored, StatusErrored, StatusErrored}, statuses(s))
	p.requireReleased(t, 6)
}

func TestEnsureDefaults(t *testing.T) {
	cfg := &Config{Concurrency: -1, ConnectRetries: 3, Env: conn.Env{}}
	cfg.ensureDefaults()
	require.NotEmpty(t, cfg.TaskName)
	require.Equal(t, "config.json", cfg.ConfigPath)
	require.Equal(t, "sql", cfg.SQLDir)
	require.Equal(t, 1, cfg.Concurrency)
	require.Equal(t, defaultConnectRetryInterval, cfg.ConnectRetryInterval)
	require.Empty(t, cfg.WorkDir)
}
