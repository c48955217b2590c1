package coursestore

import (
	"database/sql"
	"fmt"
	"os"

	devenv "ncucourse/dev/env"
	"ncucourse/lib/coursestore/db"
)

// Config selects the database, Url takes precedence over File.
type Config struct {
	// File is a local sqlite database, it may start with <dev_state>.
	File string `json:"file"`
	// Url is a remote libsql database, e.g. libsql://<db>.turso.io?authToken=...
	Url string `json:"url"`
}

func (config Config) Enabled() bool {
	return config.File != "" || config.Url != ""
}

// OpenDB opens the configured database and applies the schema.
func (config Config) OpenDB() (*sql.DB, error) {
	var database *sql.DB
	var err error
	switch {
	case config.Url != "":
		database, err = sql.Open("libsql", config.Url)
	case config.File != "":
		database, err = openFile(config.File)
	default:
		return nil, fmt.Errorf("neither a database file nor url was specified")
	}
	if err != nil {
		return nil, err
	}

	_, err = database.Exec(db.Schema)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return database, nil
}

func openFile(file string) (*sql.DB, error) {
	dbpath, err := devenv.ResolvePath(file)
	if err != nil {
		return nil, err
	}

	_, statErr := os.Stat(dbpath)
	if os.IsNotExist(statErr) {
		f, err := os.Create(dbpath)
		if err != nil {
			return nil, err
		}
		f.Close()
	}

	database, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer, more connections only produce
	// SQLITE_BUSY errors
	database.SetMaxOpenConns(1)
	_, err = database.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		database.Close()
		return nil, err
	}
	_, err = database.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}
