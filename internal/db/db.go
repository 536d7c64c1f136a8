package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// connPragmas are applied by the driver to every new connection in the
// pool. A PRAGMA run through *sql.DB reaches only whichever connection
// happened to serve it.
var connPragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// dsn adds the per-connection settings to path. Transactions start with
// BEGIN IMMEDIATE: every unit of work writes, and taking the write lock up
// front lets the busy timeout queue writers instead of failing a stale
// read snapshot with SQLITE_BUSY.
func dsn(path string) string {
	params := make([]string, 0, len(connPragmas)+2)
	for _, p := range connPragmas {
		params = append(params, "_pragma="+p)
	}
	if path != MemoryPath {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	params = append(params, "_txlock=immediate")
	return path + "?" + strings.Join(params, "&")
}

// OpenDB opens the casetree SQLite database at path, creating the parent
// directory if needed. Foreign keys, the busy timeout and WAL mode are set on
// every connection, and the schema is migrated before the handle is returned.
func OpenDB(path string) (*sql.DB, error) {
	if path != MemoryPath {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every new connection to :memory: is a fresh, empty database.
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
