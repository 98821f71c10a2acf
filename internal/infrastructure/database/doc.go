// Package database provides SQLite connectivity for the JOJO liaison service.
//
// This package manages:
//   - Opening the database with WAL mode and busy-timeout pragmas
//   - Schema migrations embedded into the binary (see the migrations package)
//   - Health checks and lifecycle management
//
// SQLite is configured with a single writer connection, matching its
// concurrency model. The robot registry keeps hot reads in memory, so the
// database sees registry refreshes, status persistence, and audit writes.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database
