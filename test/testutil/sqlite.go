package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/narwhalmedia/phimdash/pkg/database"
)

// NewTestDB opens a migrated in-memory SQLite database that is closed when
// the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	logger := zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))

	db, err := database.NewGormDB(&database.Config{
		Driver: database.DriverSQLite,
		DSN:    ":memory:",
	}, logger)
	require.NoError(t, err, "failed to open sqlite")

	require.NoError(t, database.RunMigrations(db, logger), "failed to migrate sqlite")

	t.Cleanup(func() {
		_ = database.Close(db)
	})

	return db
}
