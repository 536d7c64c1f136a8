package domain

import "time"

type Suite struct {
	ID           string
	ProjectID    string
	Name         string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
