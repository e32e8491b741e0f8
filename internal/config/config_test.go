package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("admin")
	require.NoError(t, err)

	assert.Equal(t, "admin", cfg.Server.ServiceName)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "none", cfg.Events.Broker)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "https://phimapi.com", cfg.Crawler.BaseURL)
	assert.True(t, cfg.Crawler.Transactional)
	assert.Equal(t, 30*24*time.Hour, cfg.Trash.Retention)
	assert.Contains(t, cfg.Database.DSN(), "dbname=phimdash")
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/test.db")
	t.Setenv("EVENTS_BROKER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("PHIMAPI_RATE", "2.5")
	t.Setenv("CRAWL_SKIP_GENRES", "true")
	t.Setenv("TRASH_SWEEP_INTERVAL", "15m")

	cfg, err := Load("crawl")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.Database.DSN())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Kafka.Brokers)
	assert.Equal(t, 2.5, cfg.Crawler.RequestsPerSecond)
	assert.True(t, cfg.Crawler.SkipGenres)
	assert.Equal(t, 15*time.Minute, cfg.Trash.SweepInterval)

	conn := cfg.Database.Connection()
	assert.Equal(t, "sqlite", conn.Driver)
	assert.Equal(t, "/tmp/test.db", conn.DSN)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_PORT=9999\nSTORAGE_TYPE=s3\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("STORAGE_TYPE")
	})

	cfg, err := Load("admin")
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.HTTPPort)
	assert.Equal(t, "s3", cfg.Storage.Type)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"DB_DRIVER", "mysql"},
		{"EVENTS_BROKER", "rabbit"},
		{"STORAGE_TYPE", "ftp"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load("admin")
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DURATION", "soon")

	assert.Equal(t, 7, getEnvAsInt("X_INT", 7))
	assert.True(t, getEnvAsBool("X_BOOL", true))
	assert.Equal(t, time.Second, getEnvAsDuration("X_DURATION", time.Second))
}

// chdir mirrors testing.T.Chdir (Go 1.24+): it switches the working
// directory for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
