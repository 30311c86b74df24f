// Package database handles the journal database connection and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to configure either
// a MySQL server or a local SQLite file based on the application's configuration.
//
// # Connect
//
// The Connect function establishes a connection for the configured driver, applies pool
// settings suited to it, and pings the database before returning.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read the live table definition (SHOW COLUMNS on MySQL,
// PRAGMA table_info on SQLite). The journal uses them at startup to refuse a table that was
// created by an incompatible version.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Journal disabled", zap.Error(err))
//	}
//
//	missing, err := database.MissingColumns(db, "journal_events", []string{"id", "kind"})
package database
