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

const suiteColumns = `id, project_id, name, display_order, created_at, updated_at`

// SQLiteSuiteRepo implements SuiteRepo using a SQLite database.
type SQLiteSuiteRepo struct {
	db db.DBTX
}

func NewSQLiteSuiteRepo(conn db.DBTX) *SQLiteSuiteRepo {
	return &SQLiteSuiteRepo{db: conn}
}

func (r *SQLiteSuiteRepo) Create(ctx context.Context, s *domain.Suite) error {
	query := `INSERT INTO suites (` + suiteColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.ProjectID,
		s.Name,
		s.DisplayOrder,
		s.CreatedAt.Format(time.RFC3339),
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting suite: %w", err)
	}
	return nil
}

func (r *SQLiteSuiteRepo) GetByID(ctx context.Context, id string) (*domain.Suite, error) {
	query := `SELECT ` + suiteColumns + ` FROM suites WHERE id = ?`
	return r.scanSuite(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteSuiteRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Suite, error) {
	query := `SELECT ` + suiteColumns + ` FROM suites WHERE project_id = ? ORDER BY display_order, id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing suites: %w", err)
	}
	defer rows.Close()

	var suites []*domain.Suite
	for rows.Next() {
		s, err := r.scanSuite(rows)
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating suites: %w", err)
	}
	return suites, nil
}

func (r *SQLiteSuiteRepo) Count(ctx context.Context, projectID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM suites WHERE project_id = ?`, projectID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting suites: %w", err)
	}
	return n, nil
}

func (r *SQLiteSuiteRepo) Rename(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE suites SET name = ?, updated_at = ? WHERE id = ?`, name, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("renaming suite: %w", err)
	}
	return requireAffected(res, "suite", id)
}

func (r *SQLiteSuiteRepo) SetOrder(ctx context.Context, id string, order int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE suites SET display_order = ?, updated_at = ? WHERE id = ?`, order, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("reordering suite: %w", err)
	}
	return requireAffected(res, "suite", id)
}

// Delete removes the suite; its sections and their test cases cascade.
func (r *SQLiteSuiteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM suites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting suite: %w", err)
	}
	return requireAffected(res, "suite", id)
}

func (r *SQLiteSuiteRepo) scanSuite(row scanner) (*domain.Suite, error) {
	var s domain.Suite
	var createdAtStr, updatedAtStr string

	err := row.Scan(&s.ID, &s.ProjectID, &s.Name, &s.DisplayOrder, &createdAtStr, &updatedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("suite: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning suite: %w", err)
	}

	s.CreatedAt, s.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
