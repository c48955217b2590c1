package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	devenv "ncucourse/dev/env"
	coursedb "ncucourse/lib/coursestore/db"
)

func createDb(filename, schema string) error {
	path, err := devenv.ResolvePath(filepath.Join("<dev_state>", filename))
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(schema)
	return err
}

func CreateEmptyCourseDB() error {
	return createDb("courses.db", coursedb.Schema)
}

func PrintConfigLocations() {
	slog.Info("scrape settings are read from ncucourse.json5 (overridden by ncucourse.local.json5), telemetry from telemetry.json5 in the working directory or any parent, database credentials can go in .env.")
}
