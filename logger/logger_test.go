package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/parley/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerWithWriters(t *testing.T) {
	t.Parallel()

	t.Run("writes structured fields", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := logger.NewLoggerWithWriters(false, &buf)
		l.Info("stream opened", zap.String("path", "/send-message"))

		out := buf.String()
		assert.Contains(t, out, "INFO")
		assert.Contains(t, out, "stream opened")
		assert.Contains(t, out, `"path": "/send-message"`)
	})

	t.Run("filters debug when not enabled", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger.NewLoggerWithWriters(false, &buf).Debug("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("respects debug level", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger.NewLoggerWithWriters(true, &buf).Debug("visible")
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("supports multiple writers", func(t *testing.T) {
		t.Parallel()
		var buf1, buf2 bytes.Buffer
		logger.NewLoggerWithWriters(false, &buf1, &buf2).Warn("multi")
		assert.Contains(t, buf1.String(), "multi")
		assert.Contains(t, buf2.String(), "multi")
	})
}

func TestNewFileLogger(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "parley.log")

	l, closeFn, err := logger.NewFileLogger(path, false)
	require.NoError(t, err)
	l.Info("first")
	require.NoError(t, closeFn())

	l, closeFn, err = logger.NewFileLogger(path, false)
	require.NoError(t, err)
	l.Info("second")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}
