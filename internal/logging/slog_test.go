package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "sample", "index", 1)
	log.Info(ctx, "synced", "pending", 0)
	log.Warn(ctx, "remote newer", "user_id", "u1")
	log.Error(ctx, "push failed", "err", "boom")

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=sample", "index=1",
		"level=INFO", "msg=synced", "pending=0",
		"level=WARN", `msg="remote newer"`, "user_id=u1",
		"level=ERROR", `msg="push failed"`, "err=boom",
	} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	child := log.With("module", "sync")
	child.Info(context.Background(), "run started")

	assert.Contains(t, buf.String(), "module=sync")
	assert.Contains(t, buf.String(), `msg="run started"`)
}

func TestOrDiscard(t *testing.T) {
	require.NotNil(t, OrDiscard(nil))

	log, _ := newTestLogger(t)
	assert.Same(t, log, OrDiscard(log))

	require.NotPanics(t, func() {
		NewDiscard().Error(context.TODO(), "dropped")
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, FormatJSON, "warn").With("module", "grpc_server")

	log.Info(context.Background(), "request served")
	log.Warn(context.Background(), "stale update", "user_id", "u1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "stale update", rec["msg"])
	assert.Equal(t, "grpc_server", rec["module"])
	assert.Equal(t, "u1", rec["user_id"])
}

func TestNew_TextByDefault(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "", "debug").Debug(context.Background(), "frame read", "n", 3)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "n=3")
}
