package logutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pms/config"
)

func TestGetLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zap.InfoLevel, false},
		{"debug", zap.DebugLevel, false},
		{"warn", zap.WarnLevel, false},
		{"loud", zap.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := getLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, level.Level())
		})
	}
}

func TestSetupWritesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "pms.log")
	closeLog, err := Setup(config.Log{Level: "debug", File: file, MaxSizeMB: 1})
	require.NoError(t, err)

	zap.S().Infow("hello", "rows", 3)
	closeLog()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), `"rows": 3`)
}

func TestSetupBadLevelLeavesNop(t *testing.T) {
	closeLog, err := Setup(config.Log{Level: "loud", File: filepath.Join(t.TempDir(), "x.log")})
	require.Error(t, err)
	closeLog()
	assert.NotPanics(t, func() { zap.S().Info("dropped") })
}
