package treesync

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alexanderramin/casetree/internal/contract"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/stretchr/testify/require"
)

var errOffline = errors.New("offline")

type fakeClient struct {
	mu   sync.Mutex
	sent []contract.ReorderRequest
	err  error
}

func (c *fakeClient) Reorder(_ context.Context, req contract.ReorderRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, req)
	return c.err
}

type fakeSource struct {
	suites    []domain.Suite
	sections  []domain.Section
	testCases []domain.TestCase
	err       error
	calls     int
	mu        sync.Mutex
}

func (s *fakeSource) count() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *fakeSource) Suites(context.Context, string) ([]domain.Suite, error) {
	s.count()
	return s.suites, s.err
}

func (s *fakeSource) Sections(context.Context, string) ([]domain.Section, error) {
	s.count()
	return s.sections, nil
}

func (s *fakeSource) TestCases(context.Context, string) ([]domain.TestCase, error) {
	s.count()
	return s.testCases, nil
}

type fakeMutator struct {
	err     error
	renamed map[string]string
	deleted []string
	nextID  string
}

func (m *fakeMutator) CreateSuite(_ context.Context, s *domain.Suite) error {
	if m.err != nil {
		return m.err
	}
	s.ID = m.nextID
	return nil
}

func (m *fakeMutator) CreateSection(_ context.Context, s *domain.Section) error {
	if m.err != nil {
		return m.err
	}
	s.ID = m.nextID
	return nil
}

func (m *fakeMutator) CreateTestCase(_ context.Context, tc *domain.TestCase) error {
	if m.err != nil {
		return m.err
	}
	tc.ID = m.nextID
	return nil
}

func (m *fakeMutator) Rename(_ context.Context, _ domain.NodeKind, id, name string) error {
	if m.err != nil {
		return m.err
	}
	if m.renamed == nil {
		m.renamed = map[string]string{}
	}
	m.renamed[id] = name
	return nil
}

func (m *fakeMutator) Delete(_ context.Context, _ domain.NodeKind, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

// canonical is the store's view used by the fakes: suites P1{X{t1,t2},Z}
// and P2{Y{M,N}}.
func canonical() *fakeSource {
	return &fakeSource{
		suites: []domain.Suite{
			{ID: "P1", Name: "P1", DisplayOrder: 0},
			{ID: "P2", Name: "P2", DisplayOrder: 1},
		},
		sections: []domain.Section{
			{ID: "X", Name: "X", Parent: domain.UnderSuite("P1"), DisplayOrder: 0},
			{ID: "Z", Name: "Z", Parent: domain.UnderSuite("P1"), DisplayOrder: 1},
			{ID: "Y", Name: "Y", Parent: domain.UnderSuite("P2"), DisplayOrder: 0},
			{ID: "M", Name: "M", Parent: domain.UnderSection("Y"), DisplayOrder: 0},
			{ID: "N", Name: "N", Parent: domain.UnderSection("Y"), DisplayOrder: 1},
		},
		testCases: []domain.TestCase{
			{ID: "t1", Title: "t1", Parent: domain.UnderSection("X"), DisplayOrder: 0},
			{ID: "t2", Title: "t2", Parent: domain.UnderSection("X"), DisplayOrder: 1},
		},
	}
}

func (s *fakeSource) forest(t *testing.T) *tree.Forest {
	t.Helper()
	f, err := tree.Build(s.suites, s.sections, s.testCases)
	require.NoError(t, err)
	return f
}

func childIDs(f *tree.Forest, kind domain.NodeKind, parent domain.ParentRef) []string {
	var out []string
	for _, n := range f.Siblings(tree.ScopeKey{Kind: kind, Parent: parent}) {
		out = append(out, n.ID)
	}
	return out
}
