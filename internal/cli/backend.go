package cli

import (
	"context"

	"github.com/alexanderramin/casetree/internal/api"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/service"
	"github.com/alexanderramin/casetree/internal/treesync"
)

// Backend is everything a command needs from a store. The local database
// and a casetree server both provide it.
type Backend interface {
	treesync.ReorderClient
	treesync.Source
	treesync.Mutator

	Projects(ctx context.Context) ([]*domain.Project, error)
	CreateProject(ctx context.Context, p *domain.Project) error
	DeleteProject(ctx context.Context, id string) error
}

var (
	_ Backend = (*localBackend)(nil)
	_ Backend = (*api.Client)(nil)
)

type localBackend struct {
	*treesync.LocalClient
	projects service.ProjectService
}

func NewLocalBackend(s *Services) Backend {
	return &localBackend{
		LocalClient: treesync.NewLocalClient(s.Trees, s.Reorders),
		projects:    s.Projects,
	}
}

func (b *localBackend) Projects(ctx context.Context) ([]*domain.Project, error) {
	return b.projects.List(ctx)
}

func (b *localBackend) CreateProject(ctx context.Context, p *domain.Project) error {
	return b.projects.Create(ctx, p)
}

func (b *localBackend) DeleteProject(ctx context.Context, id string) error {
	return b.projects.Delete(ctx, id)
}
