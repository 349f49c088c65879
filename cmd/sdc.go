package cmd

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lance6716/sql-data-compare/pkg/conn"
	"github.com/lance6716/sql-data-compare/pkg/sdc"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
)

// ErrComparisonFailed is returned when the run finished but some items were not
// equal or could not be compared.
var ErrComparisonFailed = errors.New("some comparisons failed")

var (
	rootCmd = &cobra.Command{
		Use:   "sql-data-compare",
		Short: "A tool used to compare the result sets of SQL queries on two databases",
		Long: `sql-data-compare runs every item of the comparison list on a left and a
right database and checks that both queries return the same rows in the same
order. Credentials are read from LEFT_DB_* and RIGHT_DB_* environment
variables, optionally loaded from a dotenv file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnvFile(envFile, cmd.Flags().Changed("env-file")); err != nil {
				return err
			}
			summary, err := sdc.Run(cmd.Context(), &sdc.Config{
				ConfigPath:           configPath,
				SQLDir:               sqlDir,
				WorkDir:              workDir,
				Concurrency:          concurrency,
				ParallelSides:        parallelSides,
				QueryTimeout:         queryTimeout,
				ConnectRetries:       connectRetries,
				ConnectRetryInterval: connectRetryInterval,
				Env:                  conn.EnvFromOS(),
				Log: sdc.Log{
					Level:    logLevel,
					Filename: logFile,
				},
			})
			if err != nil {
				return err
			}
			if !summary.Success() {
				return ErrComparisonFailed
			}
			return nil
		},
	}
)

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadEnvFile loads path into the process environment, overriding existing
// variables. A missing file is only an error when the user asked for it.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil && os.IsNotExist(err) && !explicit {
		return nil
	}
	return errors.Annotatef(godotenv.Overload(path), "load env file %s", path)
}

var (
	configPath           string
	sqlDir               string
	envFile              string
	workDir              string
	concurrency          int
	parallelSides        bool
	queryTimeout         time.Duration
	connectRetries       int
	connectRetryInterval time.Duration
	logLevel             string
	logFile              string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "config.json", "comparison list file, JSON or YAML")
	flags.StringVarP(&sqlDir, "sql-dir", "s", "sql", "directory of the query files")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading credentials")
	flags.StringVarP(&workDir, "work-dir", "w", "", "work directory for outcome records, report and metrics")
	flags.IntVar(&concurrency, "concurrency", 1, "number of items compared at the same time")
	flags.BoolVar(&parallelSides, "parallel-sides", false, "execute the left and right query of an item concurrently")
	flags.DurationVar(&queryTimeout, "query-timeout", 0, "timeout of a single query, 0 means no timeout")
	flags.IntVar(&connectRetries, "connect-retries", 0, "number of retries when a connection can't be opened")
	flags.DurationVar(&connectRetryInterval, "connect-retry-interval", time.Second, "interval between connection retries")
	flags.StringVarP(&logLevel, "log-level", "L", "info", "log level: debug, info, warn, error")
	flags.StringVar(&logFile, "log-file", "", "log file, stdout when empty")
}
