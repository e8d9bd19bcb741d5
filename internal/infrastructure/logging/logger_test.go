package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud", OutputPaths: []string{"stdout"}})
	assert.Error(t, err)
}

func TestNewHonoursLevel(t *testing.T) {
	logger, err := New(Config{Level: "warn", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestFromLevelUnknownKeepsDefault(t *testing.T) {
	for _, level := range []string{"warning", "verbose"} {
		logger := FromLevel(level, false)
		require.NotNil(t, logger)
		assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel), level)
		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel), level)
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel), level)
	}

	assert.True(t, FromLevel("verbose", true).Core().Enabled(zapcore.DebugLevel))
}

func TestFromLevelHonoursLevel(t *testing.T) {
	logger := FromLevel("error", false)
	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestFromLevelDevelopment(t *testing.T) {
	logger := FromLevel("", true)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.NotNil(t, logger.Component("packages"))
}
