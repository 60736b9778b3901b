package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSecurityLoggerLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sl := NewSecurityLoggerWith(zap.New(core), "jobboard-api", "test")
	ctx := context.Background()

	sl.LogResumeUploaded(ctx, "user-1", "user-1/1_cv.pdf", 2048)
	sl.LogMalwareDetected(ctx, "user-1", "192.0.2.1", "Eicar-Test-Signature", "clamav")
	sl.LogRateLimitTriggered(ctx, "192.0.2.1", "req-1", "/v1/notifications")

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, string(EventResumeUploaded), entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "jobboard-api", fields["service"])
	assert.Equal(t, HashValue("user-1"), fields["subject_value"], "user ids are hashed")

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "req-1", entries[2].ContextMap()["request_id"])
}

func TestNilSecurityLoggerIsNoOp(t *testing.T) {
	var sl *SecurityLogger
	assert.NotPanics(t, func() {
		sl.LogResumeDeleted(context.Background(), "user-1", 1, true)
	})
	assert.NoError(t, sl.Sync())
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j***@example.com", MaskEmail("jane@example.com"))
	assert.Equal(t, "***", MaskEmail("a"))
}

func TestHashValueIsStable(t *testing.T) {
	assert.Equal(t, HashValue("x"), HashValue("x"))
	assert.Len(t, HashValue("x"), 16)
	assert.NotEqual(t, HashValue("x"), HashValue("y"))
}
