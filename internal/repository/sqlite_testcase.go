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

const testCaseColumns = `id, project_id, section_id, title, description, priority, display_order, created_at, updated_at`

const testCaseScope = `project_id = ? AND section_id IS ?`

// SQLiteTestCaseRepo implements TestCaseRepo using a SQLite database.
type SQLiteTestCaseRepo struct {
	db db.DBTX
}

func NewSQLiteTestCaseRepo(conn db.DBTX) *SQLiteTestCaseRepo {
	return &SQLiteTestCaseRepo{db: conn}
}

func (r *SQLiteTestCaseRepo) Create(ctx context.Context, tc *domain.TestCase) error {
	if !tc.Parent.ValidFor(domain.KindTestCase) {
		return fmt.Errorf("inserting test case: cannot sit under %s", tc.Parent)
	}
	priority := tc.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	query := `INSERT INTO test_cases (` + testCaseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		tc.ID,
		tc.ProjectID,
		tc.Parent.SectionID(),
		tc.Title,
		tc.Description,
		string(priority),
		tc.DisplayOrder,
		tc.CreatedAt.Format(time.RFC3339),
		tc.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting test case: %w", err)
	}
	return nil
}

func (r *SQLiteTestCaseRepo) GetByID(ctx context.Context, id string) (*domain.TestCase, error) {
	query := `SELECT ` + testCaseColumns + ` FROM test_cases WHERE id = ?`
	return r.scanTestCase(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteTestCaseRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.TestCase, error) {
	query := `SELECT ` + testCaseColumns + ` FROM test_cases WHERE project_id = ? ORDER BY display_order, id`
	return r.list(ctx, query, projectID)
}

func (r *SQLiteTestCaseRepo) ListScope(ctx context.Context, projectID string, parent domain.ParentRef) ([]*domain.TestCase, error) {
	query := `SELECT ` + testCaseColumns + ` FROM test_cases WHERE ` + testCaseScope + ` ORDER BY display_order, id`
	return r.list(ctx, query, projectID, parent.SectionID())
}

func (r *SQLiteTestCaseRepo) CountScope(ctx context.Context, projectID string, parent domain.ParentRef) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM test_cases WHERE `+testCaseScope,
		projectID, parent.SectionID()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting test cases under %s: %w", parent, err)
	}
	return n, nil
}

func (r *SQLiteTestCaseRepo) Rename(ctx context.Context, id, title string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE test_cases SET title = ?, updated_at = ? WHERE id = ?`, title, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("renaming test case: %w", err)
	}
	return requireAffected(res, "test case", id)
}

func (r *SQLiteTestCaseRepo) SetOrder(ctx context.Context, id string, order int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE test_cases SET display_order = ?, updated_at = ? WHERE id = ?`, order, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("reordering test case: %w", err)
	}
	return requireAffected(res, "test case", id)
}

func (r *SQLiteTestCaseRepo) Move(ctx context.Context, id string, parent domain.ParentRef, order int) error {
	if !parent.ValidFor(domain.KindTestCase) {
		return fmt.Errorf("moving test case %s: cannot sit under %s", id, parent)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE test_cases SET section_id = ?, display_order = ?, updated_at = ? WHERE id = ?`,
		parent.SectionID(), order, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("moving test case: %w", err)
	}
	return requireAffected(res, "test case", id)
}

func (r *SQLiteTestCaseRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM test_cases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting test case: %w", err)
	}
	return requireAffected(res, "test case", id)
}

func (r *SQLiteTestCaseRepo) list(ctx context.Context, query string, args ...any) ([]*domain.TestCase, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing test cases: %w", err)
	}
	defer rows.Close()

	var cases []*domain.TestCase
	for rows.Next() {
		tc, err := r.scanTestCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating test cases: %w", err)
	}
	return cases, nil
}

func (r *SQLiteTestCaseRepo) scanTestCase(row scanner) (*domain.TestCase, error) {
	var tc domain.TestCase
	var sectionID sql.NullString
	var priorityStr, createdAtStr, updatedAtStr string

	err := row.Scan(&tc.ID, &tc.ProjectID, &sectionID, &tc.Title, &tc.Description, &priorityStr,
		&tc.DisplayOrder, &createdAtStr, &updatedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("test case: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning test case: %w", err)
	}

	tc.Priority = domain.Priority(priorityStr)
	tc.Parent = domain.Root()
	if sectionID.Valid {
		tc.Parent = domain.UnderSection(sectionID.String)
	}
	tc.CreatedAt, tc.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr)
	if err != nil {
		return nil, err
	}
	return &tc, nil
}
