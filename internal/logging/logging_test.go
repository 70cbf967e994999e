package logging

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	logger, err := New("warn", false)
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = New("warn", true)
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = New("loud", false)
	require.Error(t, err)
}

func TestWithRun(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger, id := WithRun(zap.New(core), "update warlog")
	logger.Info("done")

	_, err := uuid.Parse(id)
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, id, fields["run"])
	require.Equal(t, "update warlog", fields["command"])
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	fallback := zap.NewNop()
	require.Same(t, fallback, FromContext(context.Background(), fallback))
	require.NotNil(t, FromContext(context.Background(), nil))

	core, logs := observer.New(zapcore.InfoLevel)
	run, _ := WithRun(zap.New(core), "show race")
	ctx := IntoContext(context.Background(), run)
	FromContext(ctx, fallback).Info("inside")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "show race", entries[0].ContextMap()["command"])
}
