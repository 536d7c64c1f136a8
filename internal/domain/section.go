package domain

import "time"

type Section struct {
	ID           string
	ProjectID    string
	Name         string
	Parent       ParentRef // Root, UnderSuite or UnderSection
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
