package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/repository"
	"github.com/alexanderramin/casetree/internal/testutil"
	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db       *sql.DB
	projects ProjectService
	tree     TreeService
	reorder  ReorderService
	project  *domain.Project
}

func setupServices(t *testing.T) fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	f := fixture{
		db:       database,
		projects: NewProjectService(repository.NewSQLiteProjectRepo(database)),
		tree: NewTreeService(
			repository.NewSQLiteSuiteRepo(database),
			repository.NewSQLiteSectionRepo(database),
			repository.NewSQLiteTestCaseRepo(database),
			uow,
		),
		reorder: NewReorderService(uow),
	}
	f.project = &domain.Project{Name: "Checkout", ShortID: "CHK"}
	require.NoError(t, f.projects.Create(context.Background(), f.project))
	return f
}

func (f fixture) suite(t *testing.T, name string) *domain.Suite {
	t.Helper()
	s := &domain.Suite{ProjectID: f.project.ID, Name: name}
	require.NoError(t, f.tree.CreateSuite(context.Background(), s))
	return s
}

func (f fixture) section(t *testing.T, name string, parent domain.ParentRef) *domain.Section {
	t.Helper()
	s := &domain.Section{ProjectID: f.project.ID, Name: name, Parent: parent}
	require.NoError(t, f.tree.CreateSection(context.Background(), s))
	return s
}

func (f fixture) testCase(t *testing.T, title string, parent domain.ParentRef) *domain.TestCase {
	t.Helper()
	tc := &domain.TestCase{ProjectID: f.project.ID, Title: title, Parent: parent}
	require.NoError(t, f.tree.CreateTestCase(context.Background(), tc))
	return tc
}

// forest loads the project's current tree through the service.
func (f fixture) forest(t *testing.T) *tree.Forest {
	t.Helper()
	ctx := context.Background()
	suites, err := f.tree.ListSuites(ctx, f.project.ID)
	require.NoError(t, err)
	sections, err := f.tree.ListSections(ctx, f.project.ID)
	require.NoError(t, err)
	cases, err := f.tree.ListTestCases(ctx, f.project.ID)
	require.NoError(t, err)

	fs := make([]domain.Suite, len(suites))
	for i, s := range suites {
		fs[i] = *s
	}
	fsec := make([]domain.Section, len(sections))
	for i, s := range sections {
		fsec[i] = *s
	}
	fc := make([]domain.TestCase, len(cases))
	for i, c := range cases {
		fc[i] = *c
	}
	forest, err := tree.Build(fs, fsec, fc)
	require.NoError(t, err)
	return forest
}

// order returns the names of a scope's members, in display order.
func order(forest *tree.Forest, kind domain.NodeKind, parent domain.ParentRef) []string {
	var names []string
	for _, n := range forest.Siblings(tree.ScopeKey{Kind: kind, Parent: parent}) {
		names = append(names, n.Name)
	}
	return names
}
