// Package database provides SQLite persistence for the lamp sequencer.
//
// The sequencer keeps exactly one durable artifact: the last prepared
// firing schedule. This package owns the connection lifecycle and the
// embedded schema migrations; the schedule table itself is accessed by
// the schedule package.
//
// # Features
//
//   - WAL mode and busy-timeout pragmas via connection string
//   - Embedded, versioned schema migrations (see the migrations package)
//   - Health check for startup verification
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
