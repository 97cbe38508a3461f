package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stagewire/cuemesh/internal/infrastructure/database"

	// Register embedded schema migrations.
	_ "github.com/stagewire/cuemesh/migrations"
)

// openStoreDB opens a temporary migrated database for testing.
func openStoreDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "cuemesh.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	return db
}
