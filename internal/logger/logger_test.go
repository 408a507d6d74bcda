package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersBeforeInitialize(t *testing.T) {
	// the package-level logger is a no-op until Initialize runs
	assert.NotPanics(t, func() {
		Info("info")
		Warn("warn")
		Debug("debug")
		Error(errors.New("boom"))
		Error(nil)
		InfoCtx(context.Background(), "info")
		Flush(time.Millisecond)
	})
}

func TestInitialize(t *testing.T) {
	require.NoError(t, Initialize(Config{Debug: true, Service: "projector"}))
	assert.NotNil(t, Default())
	assert.NotNil(t, FromContext(context.Background()))
}

func TestNamedAndLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	previous := log
	log = zap.New(core)
	t.Cleanup(func() { log = previous })

	Named("emitter").Info("started", zap.Uint64("block", 7))
	ErrorCtx(context.Background(), errors.New("failed"), zap.String("contract", "0xc0"))
	WarnCtx(context.Background(), "retrying")
	DebugCtx(context.Background(), "detail")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "emitter", entries[0].LoggerName)
	assert.Equal(t, "started", entries[0].Message)
	assert.Equal(t, "failed", entries[1].Message)
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, zap.WarnLevel, entries[2].Level)
	assert.Equal(t, zap.DebugLevel, entries[3].Level)
}
