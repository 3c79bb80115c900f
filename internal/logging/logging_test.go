package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observe routes new loggers to an in-memory core for the test.
func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := newCore
	newCore = func() zapcore.Core { return core }
	t.Cleanup(func() { newCore = prev })
	return logs
}

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { _ = SetLogLevel("info") })

	require.NoError(t, SetLogLevel("info"))
	logs := observe(t)
	logger := New("board")

	logger.Debug("hidden")
	require.NoError(t, SetLogLevel("DEBUG"))
	assert.Equal(t, zapcore.DebugLevel, Level())
	logger.Debug("shown")

	require.NoError(t, SetLogLevel("warn"))
	logger.Info("hidden")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0].Message)

	assert.Error(t, SetLogLevel("verbose"))
	assert.Equal(t, zapcore.WarnLevel, Level())
}

func TestFields(t *testing.T) {
	logs := observe(t)

	hub := ForSession("hub", "team")
	WithPeer(hub, "10.0.0.2:5000").Info("joined")
	WithOwner(New("whiteboard"), "alice").Info("undo")
	WithSession(New("mirror"), "team").Info("settled")

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "hub", entries[0].LoggerName)
	assert.Equal(t, map[string]interface{}{KeySession: "team", KeyPeer: "10.0.0.2:5000"}, entries[0].ContextMap())
	assert.Equal(t, map[string]interface{}{KeyOwner: "alice"}, entries[1].ContextMap())
	assert.Equal(t, map[string]interface{}{KeySession: "team"}, entries[2].ContextMap())
}

func TestContext(t *testing.T) {
	logger := ForSession("host", "s1")

	ctx := IntoContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, DefaultLogger(), FromContext(context.Background()))
}
