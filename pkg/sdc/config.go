package sdc

import (
	"time"

	"github.com/lance6716/sql-data-compare/pkg/conn"
)

// Config is a static struct for the configuration of a run.
type Config struct {
	TaskName string

	// ConfigPath is the comparison list file, see package config.
	ConfigPath string
	SQLDir     string
	// WorkDir receives the outcome records, the report and the metrics. Nothing
	// is written when it's empty.
	WorkDir string

	Concurrency   int
	ParallelSides bool
	QueryTimeout  time.Duration

	ConnectRetries       int
	ConnectRetryInterval time.Duration
	// Env holds the connection credentials. The process environment is used
	// when it's nil.
	Env conn.Env

	Log Log
}

type Log struct {
	Level    string
	Filename string
}

const (
	defaultConfigPath           = "config.json"
	defaultSQLDir               = "sql"
	defaultConnectRetryInterval = time.Second
)

func (c *Config) ensureDefaults() {
	if c.TaskName == "" {
		c.TaskName = time.Now().Format(time.RFC3339)
	}
	if c.ConfigPath == "" {
		c.ConfigPath = defaultConfigPath
	}
	if c.SQLDir == "" {
		c.SQLDir = defaultSQLDir
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.ConnectRetries < 0 {
		c.ConnectRetries = 0
	}
	if c.ConnectRetries > 0 && c.ConnectRetryInterval <= 0 {
		c.ConnectRetryInterval = defaultConnectRetryInterval
	}
	if c.Env == nil {
		c.Env = conn.EnvFromOS()
	}
}
