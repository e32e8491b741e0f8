package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/narwhalmedia/phimdash/internal/config"
	"github.com/narwhalmedia/phimdash/internal/logger"
	"github.com/narwhalmedia/phimdash/pkg/database"
)

func main() {
	var (
		status = flag.Bool("status", false, "Show migration status")
		dryRun = flag.Bool("dry-run", false, "Show pending migrations without applying them")
	)
	flag.Parse()

	cfg, err := config.Load("phimdash-migrate")
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	log, err := logger.FromConfig(cfg)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	// Connect to database
	db, err := database.NewGormDB(cfg.Database.Connection(), log)
	if err != nil {
		fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	migrator := database.NewMigrator(db, log)

	// Handle different commands
	switch {
	case *status:
		showMigrationStatus(migrator)
	case *dryRun:
		showPendingMigrations(migrator)
	default:
		runMigrations(migrator)
	}
}

// runMigrations applies all pending migrations
func runMigrations(m *database.Migrator) {
	fmt.Println("Running database migrations...")

	if err := m.Migrate(); err != nil {
		fatalf("Failed to run migrations: %v", err)
	}

	fmt.Println("Migrations completed successfully!")
}

// showMigrationStatus displays the current migration status
func showMigrationStatus(m *database.Migrator) {
	migrations, err := m.Applied()
	if err != nil {
		fatalf("Failed to get migrations: %v", err)
	}

	if len(migrations) == 0 {
		fmt.Println("No migrations have been applied yet.")
	} else {
		fmt.Println("Applied migrations:")
		fmt.Println("==================")
		for _, mig := range migrations {
			fmt.Printf("%s | %s | Applied at: %s\n", mig.Version, mig.Name, mig.AppliedAt.Format("2006-01-02 15:04:05"))
		}
	}

	pending, err := m.GetPendingMigrations()
	if err != nil {
		fatalf("Failed to get pending migrations: %v", err)
	}

	if len(pending) > 0 {
		fmt.Println("\nPending migrations:")
		fmt.Println("==================")
		for _, mig := range pending {
			fmt.Printf("%s | %s\n", mig.Version, mig.Name)
		}
	} else {
		fmt.Println("\nAll migrations are up to date!")
	}
}

// showPendingMigrations displays migrations that would be applied
func showPendingMigrations(m *database.Migrator) {
	pending, err := m.GetPendingMigrations()
	if err != nil {
		fatalf("Failed to get pending migrations: %v", err)
	}

	if len(pending) == 0 {
		fmt.Println("No pending migrations.")
		return
	}

	fmt.Println("Pending migrations that would be applied:")
	fmt.Println("========================================")
	for _, mig := range pending {
		fmt.Printf("%s | %s\n", mig.Version, mig.Name)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
