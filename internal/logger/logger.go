package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/schoolbus-scheduler/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger. Output is JSON on stdout unless a log file
// is configured, in which case it goes to a size-rotated file.
func New(cfg config.ServerConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	logger.SetOutput(output(cfg))

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func output(cfg config.ServerConfig) io.Writer {
	if cfg.LogFile == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSize, // megabytes
		MaxBackups: cfg.LogBackups,
		MaxAge:     cfg.LogMaxAge, // days
		Compress:   true,
	}
}
