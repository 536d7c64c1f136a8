package treesync

import (
	"context"

	"github.com/alexanderramin/casetree/internal/contract"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/service"
)

// LocalClient serves the syncer straight from the service layer, for the CLI
// and editor running against a local database.
type LocalClient struct {
	service.TreeService
	reorders service.ReorderService
}

var (
	_ ReorderClient = (*LocalClient)(nil)
	_ Source        = (*LocalClient)(nil)
	_ Mutator       = (*LocalClient)(nil)
)

func NewLocalClient(trees service.TreeService, reorders service.ReorderService) *LocalClient {
	return &LocalClient{TreeService: trees, reorders: reorders}
}

func (c *LocalClient) Reorder(ctx context.Context, req contract.ReorderRequest) error {
	return c.reorders.Apply(ctx, req)
}

func (c *LocalClient) Suites(ctx context.Context, projectID string) ([]domain.Suite, error) {
	list, err := c.ListSuites(ctx, projectID)
	return values(list), err
}

func (c *LocalClient) Sections(ctx context.Context, projectID string) ([]domain.Section, error) {
	list, err := c.ListSections(ctx, projectID)
	return values(list), err
}

func (c *LocalClient) TestCases(ctx context.Context, projectID string) ([]domain.TestCase, error) {
	list, err := c.ListTestCases(ctx, projectID)
	return values(list), err
}

func values[T any](ptrs []*T) []T {
	if ptrs == nil {
		return nil
	}
	out := make([]T, len(ptrs))
	for i, p := range ptrs {
		out[i] = *p
	}
	return out
}
