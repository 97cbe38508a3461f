// Package database provides SQLite connectivity for the cue server.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations from embedded .up.sql/.down.sql files
//   - Connection lifecycle and health checks
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// SQLite supports a single writer, so the pool is capped at one
// connection. Show tables, cue pointers and the error log all share
// this database.
package database
