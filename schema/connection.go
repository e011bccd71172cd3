package schema

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/k0kubun/sqligit/sqligiterr"
)

// OpenReadOnly opens the CGO sqlite3 driver against an existing database
// file, read-only — the exporter's source connection (§5).
func OpenReadOnly(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, sqligiterr.Database("open read-only connection to "+path, err)
	}
	return db, nil
}

// OpenReadWrite opens the CGO sqlite3 driver against a database file,
// creating it if absent — the importer's target connection (§5).
func OpenReadWrite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, sqligiterr.Database("open read-write connection to "+path, err)
	}
	// sql.Open connects lazily; ping so the file exists even if nothing
	// is ever written through this connection.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, sqligiterr.Database("open read-write connection to "+path, err)
	}
	return db, nil
}

// OpenMemory opens the pure-Go sqlite driver against a private in-memory
// database. This is used only for the short-lived, single-statement
// schema re-parse (§4.6 reuse note): it needs no file durability, and
// avoiding CGO keeps that one throwaway connection dependency-light.
func OpenMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, sqligiterr.Database("open in-memory connection", err)
	}
	return db, nil
}
