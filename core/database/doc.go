// Package database handles database connections.
//
// It provides a wrapper around GORM to configure MySQL, PostgreSQL or SQLite connections
// based on the application's configuration. MySQL is the production default; SQLite is
// used for local runs and tests.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
package database
