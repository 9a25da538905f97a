package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", "debug", slog.LevelDebug, true},
		{"upper case", "INFO", slog.LevelInfo, true},
		{"warning alias", "warning", slog.LevelWarn, true},
		{"padded", " error ", slog.LevelError, true},
		{"unknown", "verbose", slog.LevelInfo, false},
		{"empty", "", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseLevel(tc.input)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestSetupWritesJSONAtLevel(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	logger := setup(&buf, "warn")

	logger.Info("dropped")
	logger.Warn("kept", "job_id", "abc")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "abc", entry["job_id"])
	assert.Same(t, logger, slog.Default())
}

func TestContextLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("round trip", func(t *testing.T) {
		ctx := WithLogger(context.Background(), logger)
		assert.Same(t, logger, FromContext(ctx))
		assert.Same(t, logger, FromContextOrDefault(ctx, fallback))
	})

	t.Run("missing logger", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContext(context.Background()))
		assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
		assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
	})

	t.Run("nil logger is ignored", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, ctx, WithLogger(ctx, nil))
	})
}
