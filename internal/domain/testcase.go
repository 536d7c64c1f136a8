package domain

import "time"

type TestCase struct {
	ID           string
	ProjectID    string
	Title        string
	Description  string
	Priority     Priority
	Parent       ParentRef // Root (unsectioned) or UnderSection
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
