package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs_RedactsSensitiveKeys(t *testing.T) {
	out := sanitizeKVs([]interface{}{"subject", "Maths", "redis_password", "hunter2", "dangling"})
	require.Len(t, out, 5)
	assert.Equal(t, "Maths", out[1])
	assert.Equal(t, "[REDACTED]", out[3])
	assert.Equal(t, "dangling", out[4])
}

func TestLogger_WritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "mapper").Warn("lookup failed", "subject", "Physics", "api_token", "abc")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "lookup failed", entries[0].Message)
	assert.Equal(t, "mapper", fields["component"])
	assert.Equal(t, "Physics", fields["subject"])
	assert.Equal(t, "[REDACTED]", fields["api_token"])
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
}

func TestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e", "redis_password", "x")
	l.Sync()

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, zap.InfoLevel, entries[1].Level)
	assert.Equal(t, zap.WarnLevel, entries[2].Level)
	assert.Equal(t, zap.ErrorLevel, entries[3].Level)
	assert.Equal(t, "[REDACTED]", entries[3].ContextMap()["redis_password"])
}
