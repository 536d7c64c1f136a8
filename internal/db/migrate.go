package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent, so it is
// safe to call on each start.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Columns added by ALTER TABLE already exist on fresh databases.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateCompactDisplayOrder(db); err != nil {
		return fmt.Errorf("compacting display order: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id         TEXT PRIMARY KEY,
		short_id   TEXT NOT NULL,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_short_id ON projects(short_id)`,

	`CREATE TABLE IF NOT EXISTS suites (
		id            TEXT PRIMARY KEY,
		project_id    TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name          TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0 CHECK(display_order >= 0),
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_suites_project ON suites(project_id, display_order)`,

	// A section hangs from a suite, from another section, or from nothing
	// (root). Never from both.
	`CREATE TABLE IF NOT EXISTS sections (
		id            TEXT PRIMARY KEY,
		project_id    TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		suite_id      TEXT REFERENCES suites(id) ON DELETE CASCADE,
		parent_id     TEXT REFERENCES sections(id) ON DELETE CASCADE,
		name          TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0 CHECK(display_order >= 0),
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		CHECK(suite_id IS NULL OR parent_id IS NULL)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sections_project ON sections(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sections_suite ON sections(suite_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sections_parent ON sections(parent_id)`,

	`CREATE TABLE IF NOT EXISTS test_cases (
		id            TEXT PRIMARY KEY,
		project_id    TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		section_id    TEXT REFERENCES sections(id) ON DELETE CASCADE,
		title         TEXT NOT NULL,
		priority      TEXT NOT NULL DEFAULT 'medium'
		              CHECK(priority IN ('low','medium','high','critical')),
		display_order INTEGER NOT NULL DEFAULT 0 CHECK(display_order >= 0),
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_test_cases_project ON test_cases(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_test_cases_section ON test_cases(section_id)`,

	`ALTER TABLE test_cases ADD COLUMN description TEXT NOT NULL DEFAULT ''`,
}

// scopeTable describes how a table partitions its rows into sibling scopes.
type scopeTable struct {
	name      string
	scopeCols []string
}

var scopeTables = []scopeTable{
	{name: "suites", scopeCols: []string{"project_id"}},
	{name: "sections", scopeCols: []string{"project_id", "suite_id", "parent_id"}},
	{name: "test_cases", scopeCols: []string{"project_id", "section_id"}},
}

// migrateCompactDisplayOrder renumbers every sibling scope to 0..n-1,
// keeping the current relative order (ties broken by id). Rows written
// outside the services, by hand or by another SQLite tool, can leave gaps or
// duplicate orders, and the tree code assumes neither.
func migrateCompactDisplayOrder(db *sql.DB) error {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting compaction transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, t := range scopeTables {
		if err := compactTable(ctx, tx, t); err != nil {
			return fmt.Errorf("compacting %s: %w", t.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing compaction: %w", err)
	}
	committed = true
	return nil
}

func compactTable(ctx context.Context, tx *sql.Tx, t scopeTable) error {
	cols := make([]string, len(t.scopeCols))
	for i, c := range t.scopeCols {
		cols[i] = "COALESCE(" + c + ", '')"
	}
	scope := strings.Join(cols, " || '/' || ")

	rows, err := tx.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, %s, display_order FROM %s ORDER BY %s, display_order, id`,
		scope, t.name, scope))
	if err != nil {
		return err
	}
	type fix struct {
		id    string
		order int
	}
	var fixes []fix
	var current string
	pos := 0
	for rows.Next() {
		var id, key string
		var order int
		if err := rows.Scan(&id, &key, &order); err != nil {
			rows.Close()
			return err
		}
		if key != current {
			current, pos = key, 0
		}
		if order != pos {
			fixes = append(fixes, fix{id: id, order: pos})
		}
		pos++
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, f := range fixes {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET display_order = ? WHERE id = ?`, t.name), f.order, f.id); err != nil {
			return err
		}
	}
	return nil
}
