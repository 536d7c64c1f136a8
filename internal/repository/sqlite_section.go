package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/domain"
)

// sectionColumns is the canonical SELECT column list for sections.
const sectionColumns = `id, project_id, suite_id, parent_id, name, display_order, created_at, updated_at`

// sectionScope matches one sibling scope. IS compares NULLs as equal, so
// root, suite and parent-section scopes share the same statement.
const sectionScope = `project_id = ? AND suite_id IS ? AND parent_id IS ?`

// SQLiteSectionRepo implements SectionRepo using a SQLite database.
type SQLiteSectionRepo struct {
	db db.DBTX
}

func NewSQLiteSectionRepo(conn db.DBTX) *SQLiteSectionRepo {
	return &SQLiteSectionRepo{db: conn}
}

func (r *SQLiteSectionRepo) Create(ctx context.Context, s *domain.Section) error {
	query := `INSERT INTO sections (` + sectionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.ProjectID,
		s.Parent.SuiteID(),   // *string: nil becomes SQL NULL
		s.Parent.SectionID(), // *string: nil becomes SQL NULL
		s.Name,
		s.DisplayOrder,
		s.CreatedAt.Format(time.RFC3339),
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting section: %w", err)
	}
	return nil
}

func (r *SQLiteSectionRepo) GetByID(ctx context.Context, id string) (*domain.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE id = ?`
	return r.scanSection(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteSectionRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE project_id = ? ORDER BY display_order, id`
	return r.list(ctx, query, projectID)
}

func (r *SQLiteSectionRepo) ListScope(ctx context.Context, projectID string, parent domain.ParentRef) ([]*domain.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE ` + sectionScope + ` ORDER BY display_order, id`
	return r.list(ctx, query, projectID, parent.SuiteID(), parent.SectionID())
}

func (r *SQLiteSectionRepo) CountScope(ctx context.Context, projectID string, parent domain.ParentRef) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sections WHERE `+sectionScope,
		projectID, parent.SuiteID(), parent.SectionID()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting sections under %s: %w", parent, err)
	}
	return n, nil
}

func (r *SQLiteSectionRepo) Rename(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sections SET name = ?, updated_at = ? WHERE id = ?`, name, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("renaming section: %w", err)
	}
	return requireAffected(res, "section", id)
}

func (r *SQLiteSectionRepo) SetOrder(ctx context.Context, id string, order int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sections SET display_order = ?, updated_at = ? WHERE id = ?`, order, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("reordering section: %w", err)
	}
	return requireAffected(res, "section", id)
}

// Move rewrites both parent columns, so a stale suite_id never survives a
// move under a section.
func (r *SQLiteSectionRepo) Move(ctx context.Context, id string, parent domain.ParentRef, order int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sections SET suite_id = ?, parent_id = ?, display_order = ?, updated_at = ? WHERE id = ?`,
		parent.SuiteID(), parent.SectionID(), order, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("moving section: %w", err)
	}
	return requireAffected(res, "section", id)
}

// Delete removes the section, its descendant sections and their test cases.
func (r *SQLiteSectionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting section: %w", err)
	}
	return requireAffected(res, "section", id)
}

func (r *SQLiteSectionRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Section, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	defer rows.Close()

	var sections []*domain.Section
	for rows.Next() {
		s, err := r.scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sections: %w", err)
	}
	return sections, nil
}

func (r *SQLiteSectionRepo) scanSection(row scanner) (*domain.Section, error) {
	var s domain.Section
	var suiteID, parentID sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(&s.ID, &s.ProjectID, &suiteID, &parentID, &s.Name, &s.DisplayOrder, &createdAtStr, &updatedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("section: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning section: %w", err)
	}

	if s.Parent, err = parentFromColumns(suiteID, parentID); err != nil {
		return nil, fmt.Errorf("section %s: %w", s.ID, err)
	}
	s.CreatedAt, s.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
