package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/schoolbus-scheduler/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestNew(t *testing.T) {
	t.Run("Stdout", func(t *testing.T) {
		logger := New(config.ServerConfig{LogLevel: "debug"})
		assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
		assert.Equal(t, os.Stdout, logger.Out)
	})

	t.Run("Invalid Level", func(t *testing.T) {
		logger := New(config.ServerConfig{LogLevel: "loud"})
		assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	})

	t.Run("Rotating File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scheduler.log")
		logger := New(config.ServerConfig{LogLevel: "info", LogFile: path, LogMaxSize: 1})

		rotator, ok := logger.Out.(*lumberjack.Logger)
		require.True(t, ok)
		defer rotator.Close()

		logger.Info("route schedule recomputed")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "route schedule recomputed")
	})
}
