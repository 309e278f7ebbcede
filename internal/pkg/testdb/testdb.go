// Package testdb opens throwaway sqlite databases for tests.
package testdb

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/HarooHub/app/repository"
	"github.com/ManuelReschke/HarooHub/internal/pkg/database"
)

// Open returns a migrated in-memory database. A single connection keeps every
// statement on the same in-memory database and serialises concurrent writers.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := database.Config()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Store returns a repository factory over a fresh database.
func Store(t testing.TB) *repository.Factory {
	t.Helper()
	return repository.NewFactory(Open(t))
}
