package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Migration filename format: YYYYMMDD_HHMMSS_description.up.sql
const (
	migrationFilenameParts = 3
	minVersionParts        = 2
)

// MigrationsFS is set by the migrations package to embed migration
// files into the binary:
//
//	//go:embed *.sql
//	var migrationsFS embed.FS
//
//	func init() {
//	    database.MigrationsFS = migrationsFS
//	}
var MigrationsFS embed.FS

// MigrationsDir is the directory within MigrationsFS containing
// migration files. Set to "." if the files sit at the root.
var MigrationsDir = "migrations"

// Migration is a single schema migration loaded from the embedded FS.
type Migration struct {
	// Version is extracted from the filename, format YYYYMMDD_HHMMSS.
	Version string

	// Name is the human-readable migration name.
	Name string

	// UpSQL applies the migration.
	UpSQL string

	// DownSQL rolls it back.
	DownSQL string
}

// MigrationRecord is a row in the schema_migrations table.
type MigrationRecord struct {
	Version   string
	AppliedAt time.Time
}

// Migrate applies all pending migrations in version order.
//
// Each migration runs in its own transaction. If migration N fails,
// migrations 1..N-1 stay committed, N is rolled back, and N+1 onwards
// are not attempted. Re-running Migrate after fixing the issue
// continues from N.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: If any migration fails (that migration is rolled back)
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	if len(migrations) == 0 {
		return nil
	}

	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("getting applied migrations: %w", err)
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, m := range applied {
		appliedSet[m.Version] = true
	}

	for _, m := range migrations {
		if appliedSet[m.Version] {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("applying migration %s: %w", m.Version, err)
		}
	}

	return nil
}

// createMigrationsTable creates the schema_migrations tracking table
// if it does not already exist.
func (db *DB) createMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`
	_, err := db.ExecContext(ctx, query)
	return err
}

// getAppliedMigrations returns the applied migrations, oldest first.
func (db *DB) getAppliedMigrations(ctx context.Context) ([]MigrationRecord, error) {
	query := `SELECT version, applied_at FROM schema_migrations ORDER BY version`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var r MigrationRecord
		var appliedAt string
		if err := rows.Scan(&r.Version, &appliedAt); err != nil {
			return nil, err
		}
		r.AppliedAt, _ = time.Parse("2006-01-02 15:04:05", appliedAt)
		records = append(records, r)
	}

	return records, rows.Err()
}

// applyMigration runs a single migration inside a transaction and
// records it in schema_migrations.
func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
		return fmt.Errorf("executing migration SQL: %w", err)
	}

	record := `INSERT INTO schema_migrations (version) VALUES (?)`
	if _, err := tx.ExecContext(ctx, record, m.Version); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	return tx.Commit()
}

// loadMigrations reads all migration files from MigrationsFS and pairs
// up/down files by version. Returns migrations sorted by version.
func loadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(MigrationsFS, MigrationsDir)
	if err != nil {
		// No embedded migrations is not an error.
		return nil, nil
	}

	ups := make(map[string]Migration)
	downs := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		path := filepath.Join(MigrationsDir, name)

		switch {
		case strings.HasSuffix(name, ".up.sql"):
			version, migName, err := parseMigrationFilename(name, ".up.sql")
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", name, err)
			}
			content, err := fs.ReadFile(MigrationsFS, path)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", name, err)
			}
			ups[version] = Migration{
				Version: version,
				Name:    migName,
				UpSQL:   string(content),
			}

		case strings.HasSuffix(name, ".down.sql"):
			version, _, err := parseMigrationFilename(name, ".down.sql")
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", name, err)
			}
			content, err := fs.ReadFile(MigrationsFS, path)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", name, err)
			}
			downs[version] = string(content)
		}
	}

	migrations := make([]Migration, 0, len(ups))
	for version, m := range ups {
		m.DownSQL = downs[version]
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// parseMigrationFilename extracts the version and name from a
// migration filename like 20260815_090000_initial_schema.up.sql.
func parseMigrationFilename(filename, suffix string) (version, name string, err error) {
	base := strings.TrimSuffix(filename, suffix)

	parts := strings.SplitN(base, "_", migrationFilenameParts)
	if len(parts) < migrationFilenameParts {
		return "", "", fmt.Errorf("expected YYYYMMDD_HHMMSS_name%s format", suffix)
	}
	if len(parts) < minVersionParts {
		return "", "", fmt.Errorf("missing version prefix")
	}

	version = parts[0] + "_" + parts[1]
	name = strings.ReplaceAll(parts[2], "_", " ")
	return version, name, nil
}
