package util

import (
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. Before InitLogger is called it writes
// console lines to stdout.
var Logger *zap.Logger

func init() {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.OutputPaths = []string{"stdout"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	var err error
	Logger, err = config.Build()
	if err != nil {
		panic(err)
	}
}

// InitLogger replaces Logger with a logger of the given level. When filename is
// not empty the logs are written to that file instead of stdout.
func InitLogger(level, filename string) error {
	cfg := &log.Config{
		Level:  level,
		Format: "text",
		File: log.FileLogConfig{
			Filename: filename,
		},
	}
	lg, props, err := log.InitLogger(cfg)
	if err != nil {
		return errors.Annotatef(err, "init logger, level: %s, file: %s", level, filename)
	}
	log.ReplaceGlobals(lg, props)
	Logger = lg
	return nil
}
