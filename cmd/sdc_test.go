package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, ".env")
	require.NoError(t, loadEnvFile(missing, false))
	require.ErrorContains(t, loadEnvFile(missing, true), "load env file")
	require.NoError(t, loadEnvFile("", true))

	t.Setenv("LEFT_DB_HOST", "from-process")
	t.Setenv("RIGHT_DB_PASS", "")
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LEFT_DB_HOST=from-file\nRIGHT_DB_PASS='s3cret'\n"), 0o644))
	require.NoError(t, loadEnvFile(path, false))
	require.Equal(t, "from-file", os.Getenv("LEFT_DB_HOST"))
	require.Equal(t, "s3cret", os.Getenv("RIGHT_DB_PASS"))
}

func TestRootFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for name, def := range map[string]string{
		"config":                 "config.json",
		"sql-dir":                "sql",
		"env-file":               ".env",
		"concurrency":            "1",
		"parallel-sides":         "false",
		"query-timeout":          "0s",
		"connect-retries":        "0",
		"connect-retry-interval": "1s",
		"log-level":              "info",
	} {
		f := flags.Lookup(name)
		require.NotNil(t, f, name)
		require.Equal(t, def, f.DefValue, name)
	}
}
