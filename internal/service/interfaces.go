package service

import (
	"context"

	"github.com/alexanderramin/casetree/internal/contract"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/importer"
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// TreeService owns the entities of a test repository. Creation appends to
// the end of the target scope; delete cascades and closes the gap left
// behind. Both run in one transaction.
type TreeService interface {
	ListSuites(ctx context.Context, projectID string) ([]*domain.Suite, error)
	ListSections(ctx context.Context, projectID string) ([]*domain.Section, error)
	ListTestCases(ctx context.Context, projectID string) ([]*domain.TestCase, error)

	CreateSuite(ctx context.Context, s *domain.Suite) error
	CreateSection(ctx context.Context, s *domain.Section) error
	CreateTestCase(ctx context.Context, tc *domain.TestCase) error

	Rename(ctx context.Context, kind domain.NodeKind, id, name string) error
	Delete(ctx context.Context, kind domain.NodeKind, id string) error
}

// ReorderService applies a batched reorder atomically.
type ReorderService interface {
	Apply(ctx context.Context, req contract.ReorderRequest) error
}

// ImportService creates a whole project from a repository document in one
// transaction.
type ImportService interface {
	ImportProject(ctx context.Context, filePath string) (*ImportResult, error)
	ImportProjectFromSchema(ctx context.Context, schema *importer.Schema) (*ImportResult, error)
}

type ImportResult struct {
	Project       *domain.Project
	SuiteCount    int
	SectionCount  int
	TestCaseCount int
}
