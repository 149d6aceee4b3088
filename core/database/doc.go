// Package database handles database connections and schema inspection.
//
// It wraps GORM and opens the configured driver (sqlite, mysql or postgres) with pool
// settings and a connection timeout taken from the application's configuration.
//
// # Schema Inspection
//
// The inspector lists the columns of a table with the catalog query of each driver
// (PRAGMA table_info, information_schema or SHOW COLUMNS). The integrity schema check and
// the snapshot loader build on it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "lots")
package database
