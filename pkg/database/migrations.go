package database

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/narwhalmedia/phimdash/internal/catalog/repository"
)

// Migration represents a database migration
type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Version   string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// MigrationFunc is a function that performs a migration
type MigrationFunc func(*gorm.DB) error

// MigrationEntry represents a single migration
type MigrationEntry struct {
	Version string
	Name    string
	Up      MigrationFunc
}

// Migrator handles database migrations
type Migrator struct {
	db         *gorm.DB
	logger     *zap.Logger
	migrations []MigrationEntry
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *gorm.DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:         db,
		logger:     logger.Named("migrator"),
		migrations: getAllMigrations(),
	}
}

// Migrate runs all pending migrations
func (m *Migrator) Migrate() error {
	if err := m.db.AutoMigrate(&Migration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions()
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if applied[migration.Version] {
			continue
		}

		m.logger.Info("running migration",
			zap.String("version", migration.Version),
			zap.String("name", migration.Name))

		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&Migration{
				Version:   migration.Version,
				Name:      migration.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", migration.Version, err)
		}

		m.logger.Info("completed migration", zap.String("version", migration.Version))
	}

	return nil
}

// Applied returns the applied migrations, latest first.
func (m *Migrator) Applied() ([]Migration, error) {
	if !m.db.Migrator().HasTable(&Migration{}) {
		return nil, nil
	}
	var migrations []Migration
	if err := m.db.Order("applied_at DESC").Find(&migrations).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return migrations, nil
}

// GetPendingMigrations returns a list of pending migrations
func (m *Migrator) GetPendingMigrations() ([]MigrationEntry, error) {
	applied, err := m.appliedVersions()
	if err != nil {
		return nil, err
	}

	var pending []MigrationEntry
	for _, migration := range m.migrations {
		if !applied[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

func (m *Migrator) appliedVersions() (map[string]bool, error) {
	migrations, err := m.Applied()
	if err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(migrations))
	for _, migration := range migrations {
		applied[migration.Version] = true
	}
	return applied, nil
}

// RunMigrations runs all pending database migrations
func RunMigrations(db *gorm.DB, logger *zap.Logger) error {
	return NewMigrator(db, logger).Migrate()
}

// getAllMigrations returns all migrations in order
func getAllMigrations() []MigrationEntry {
	return []MigrationEntry{
		{
			Version: "20250101_001",
			Name:    "Create catalog schema",
			Up:      migration001CreateCatalogSchema,
		},
		{
			Version: "20250101_002",
			Name:    "Add listing indexes",
			Up:      migration002AddIndexes,
		},
		{
			Version: "20250101_003",
			Name:    "Add trigram search indexes",
			Up:      migration003AddSearchIndexes,
		},
	}
}

func migration001CreateCatalogSchema(tx *gorm.DB) error {
	if err := tx.AutoMigrate(repository.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate catalog models: %w", err)
	}
	return nil
}

func migration002AddIndexes(tx *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_episodes_movie_position ON episodes(movie_id, position)",
		"CREATE INDEX IF NOT EXISTS idx_movies_active_updated ON movies(deleted_at, updated_at)",
		"CREATE INDEX IF NOT EXISTS idx_movies_type_year ON movies(type, year)",
	}
	for _, index := range indexes {
		if err := tx.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// migration003AddSearchIndexes only applies to PostgreSQL.
func migration003AddSearchIndexes(tx *gorm.DB) error {
	if tx.Dialector.Name() != DriverPostgres {
		return nil
	}

	if err := tx.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
		return fmt.Errorf("failed to create pg_trgm extension: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_movies_name_trgm ON movies USING gin(LOWER(name) gin_trgm_ops)",
		"CREATE INDEX IF NOT EXISTS idx_movies_origin_name_trgm ON movies USING gin(LOWER(origin_name) gin_trgm_ops)",
	}
	for _, index := range indexes {
		if err := tx.Exec(index).Error; err != nil && !isAlreadyExistsError(err) {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func isAlreadyExistsError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}
