package utils

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "info", "json")
	l.Debug("hidden")
	l.Info("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	NewLogger(&buf, "debug", "text").Debug("plain")
	assert.Contains(t, buf.String(), "msg=plain")

	buf.Reset()
	NewLogger(&buf, "debug", "dev").Info("pretty")
	assert.Contains(t, buf.String(), "pretty")
}

func TestSetupLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fn.log")
	l, err := SetupLogger("info", "text", path)
	require.NoError(t, err)
	l.Info("to file")

	_, err = SetupLogger("info", "text", filepath.Join(t.TempDir(), "missing", "fn.log"))
	assert.Error(t, err)
}

func TestCallWithRetry(t *testing.T) {
	boom := errors.New("boom")

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		got, err := CallWithRetry(context.Background(), func() (int, error) {
			calls++
			if calls < 3 {
				return 0, boom
			}
			return 42, nil
		}, 5, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		_, err := CallWithRetry(context.Background(), func() (string, error) {
			calls++
			return "", boom
		}, 3, time.Millisecond)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		_, err := CallWithRetry(ctx, func() (int, error) {
			calls++
			return 0, boom
		}, 3, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
