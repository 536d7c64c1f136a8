package repository

import (
	"context"

	"github.com/alexanderramin/casetree/internal/domain"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// SuiteRepo stores the root level of a test repository. Suites of one
// project form a single sibling scope.
type SuiteRepo interface {
	Create(ctx context.Context, s *domain.Suite) error
	GetByID(ctx context.Context, id string) (*domain.Suite, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Suite, error)
	Count(ctx context.Context, projectID string) (int, error)
	Rename(ctx context.Context, id, name string) error
	SetOrder(ctx context.Context, id string, order int) error
	Delete(ctx context.Context, id string) error
}

// SectionRepo stores sections. A scope is (project, ParentRef).
type SectionRepo interface {
	Create(ctx context.Context, s *domain.Section) error
	GetByID(ctx context.Context, id string) (*domain.Section, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Section, error)
	ListScope(ctx context.Context, projectID string, parent domain.ParentRef) ([]*domain.Section, error)
	CountScope(ctx context.Context, projectID string, parent domain.ParentRef) (int, error)
	Rename(ctx context.Context, id, name string) error
	SetOrder(ctx context.Context, id string, order int) error
	Move(ctx context.Context, id string, parent domain.ParentRef, order int) error
	Delete(ctx context.Context, id string) error
}

// TestCaseRepo stores test cases. A scope is (project, ParentRef) where the
// parent is the root or a section.
type TestCaseRepo interface {
	Create(ctx context.Context, tc *domain.TestCase) error
	GetByID(ctx context.Context, id string) (*domain.TestCase, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.TestCase, error)
	ListScope(ctx context.Context, projectID string, parent domain.ParentRef) ([]*domain.TestCase, error)
	CountScope(ctx context.Context, projectID string, parent domain.ParentRef) (int, error)
	Rename(ctx context.Context, id, title string) error
	SetOrder(ctx context.Context, id string, order int) error
	Move(ctx context.Context, id string, parent domain.ParentRef, order int) error
	Delete(ctx context.Context, id string) error
}
