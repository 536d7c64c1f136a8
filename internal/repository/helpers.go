package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/casetree/internal/domain"
)

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// parseTimestamps parses the created_at/updated_at pair every table carries.
func parseTimestamps(createdAtStr, updatedAtStr string) (time.Time, time.Time, error) {
	createdAt, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return createdAt, updatedAt, nil
}

// parentFromColumns turns the nullable suite_id/parent_id pair back into a
// ParentRef. The schema CHECK keeps both from being set.
func parentFromColumns(suiteID, parentID sql.NullString) (domain.ParentRef, error) {
	var s, p *string
	if suiteID.Valid {
		s = &suiteID.String
	}
	if parentID.Valid {
		p = &parentID.String
	}
	return domain.ParentFromFields(s, p)
}

// requireAffected turns a zero-row write into ErrNotFound.
func requireAffected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows for %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
