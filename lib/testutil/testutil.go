package testutil

import (
	"database/sql"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

// OpenMemoryDB opens an in-memory sqlite database with the given schema
// applied, the database is closed when the test finishes.
func OpenMemoryDB(t testing.TB, schema string) *sql.DB {
	sqlite, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// every new connection to :memory: is a fresh database
	sqlite.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlite.Close()
	})

	_, err = sqlite.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatal(err)
	}
	return sqlite
}
