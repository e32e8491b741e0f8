package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	log, err := New("admin", "development", "warn", "console")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	_, err = New("admin", "development", "chatty", "json")
	assert.Error(t, err)
}

func TestNewWithFile_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.log")

	log, err := NewWithFile("admin", "production", "info", "console", FileConfig{
		Path:       path,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	require.NoError(t, err)

	log.Info("crawl finished")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(strings.Split(string(data), "\n")[0])
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "crawl finished", entry["msg"])
	assert.Equal(t, "admin", entry["service"])
	assert.Equal(t, "production", entry["env"])
	assert.Contains(t, entry, "timestamp")
}

func TestWithContext(t *testing.T) {
	log, err := New("admin", "development", "debug", "console")
	require.NoError(t, err)

	assert.Same(t, log, WithContext(log, ""))
	assert.NotSame(t, log, WithContext(log, "req-1"))
}
