package util

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"unknown", logrus.InfoLevel},
		{"", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger(tt.level)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestLogger_CapturesEntries(t *testing.T) {
	logger := NewLogger("debug")

	logger.Info("plain message")
	logger.Warnf("formatted %d", 42)

	entries := logger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0].Level)
	assert.Equal(t, "plain message", entries[0].Message)
	assert.Equal(t, "warning", entries[1].Level)
	assert.Equal(t, "formatted 42", entries[1].Message)
	assert.NotEmpty(t, entries[0].Timestamp)
}

func TestLogger_LevelFiltersCapture(t *testing.T) {
	logger := NewLogger("warn")

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Error("kept")

	entries := logger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
}

func TestLogger_ScopePrefixesMessages(t *testing.T) {
	logger := NewLogger("info")
	scoped := logger.WithScope("engine")

	scoped.Info("starting")

	entries := scoped.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "[engine] starting", entries[0].Message)
}

func TestLogger_ScopedViewsShareCapture(t *testing.T) {
	logger := NewLogger("info")
	a := logger.WithScope("a")
	b := logger.WithScope("b")

	a.Info("from a")
	b.Info("from b")

	assert.Len(t, logger.Entries(), 2)
}

func TestNopLogger_CapturesNothing(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("silent")
	logger.Error("still silent")
	assert.Nil(t, logger.Entries())
}
