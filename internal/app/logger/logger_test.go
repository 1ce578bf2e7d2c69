package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		development bool
		enabled     zapcore.Level
		disabled    zapcore.Level
	}{
		{"production_info", "info", false, zapcore.InfoLevel, zapcore.DebugLevel},
		{"development_debug", "debug", true, zapcore.DebugLevel, zapcore.Level(-2)},
		{"warn_only", "warn", false, zapcore.WarnLevel, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := NewLogger(tt.level, tt.development)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.enabled))
			assert.False(t, log.Core().Enabled(tt.disabled))
		})
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := NewLogger("loud", false)
	assert.Error(t, err)
}
