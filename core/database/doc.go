// Package database opens the gorm connection backing the local workspace mirror.
//
// # Connect
//
// Connect selects the dialect from Config.Driver:
//   - mysql: a shared mirror; DSN built with URL-encoded credentials and
//     connection/read/write timeouts.
//   - sqlite: a single-file mirror (Name is the file path, ":memory:" for tests).
//
// The connection is pinged before it is returned. Open applies the project's gorm
// settings (silent gorm logger) to any dialector and is what tests use with sqlmock.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", zap.Error(err))
//	}
package database
