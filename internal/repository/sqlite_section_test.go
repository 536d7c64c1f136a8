package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionRepo_ParentRoundTrip(t *testing.T) {
	r := setupTreeRepos(t)
	ctx := context.Background()

	suite := testutil.NewTestSuite(r.project.ID, "Auth")
	require.NoError(t, r.suites.Create(ctx, suite))

	underSuite := testutil.NewTestSection(r.project.ID, "Login", testutil.InSuite(suite.ID))
	nested := testutil.NewTestSection(r.project.ID, "2FA", testutil.InParentSection(underSuite.ID))
	orphan := testutil.NewTestSection(r.project.ID, "Unfiled")
	for _, s := range []*domain.Section{underSuite, nested, orphan} {
		require.NoError(t, r.sections.Create(ctx, s))
	}

	tests := []struct {
		id   string
		want domain.ParentRef
	}{
		{underSuite.ID, domain.UnderSuite(suite.ID)},
		{nested.ID, domain.UnderSection(underSuite.ID)},
		{orphan.ID, domain.Root()},
	}
	for _, tt := range tests {
		got, err := r.sections.GetByID(ctx, tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Parent)
	}
}

func TestSectionRepo_ScopeQueries(t *testing.T) {
	r := setupTreeRepos(t)
	ctx := context.Background()

	suite := testutil.NewTestSuite(r.project.ID, "Auth")
	require.NoError(t, r.suites.Create(ctx, suite))
	b := testutil.NewTestSection(r.project.ID, "B", testutil.InSuite(suite.ID), testutil.WithSectionOrder(1))
	a := testutil.NewTestSection(r.project.ID, "A", testutil.InSuite(suite.ID), testutil.WithSectionOrder(0))
	root := testutil.NewTestSection(r.project.ID, "Root")
	for _, s := range []*domain.Section{b, a, root} {
		require.NoError(t, r.sections.Create(ctx, s))
	}

	scope, err := r.sections.ListScope(ctx, r.project.ID, domain.UnderSuite(suite.ID))
	require.NoError(t, err)
	require.Len(t, scope, 2)
	assert.Equal(t, "A", scope[0].Name)
	assert.Equal(t, "B", scope[1].Name)

	n, err := r.sections.CountScope(ctx, r.project.ID, domain.Root())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = r.sections.CountScope(ctx, r.project.ID, domain.UnderSection(a.ID))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSectionRepo_MoveRewritesBothParentColumns(t *testing.T) {
	r := setupTreeRepos(t)
	ctx := context.Background()

	suite := testutil.NewTestSuite(r.project.ID, "Auth")
	require.NoError(t, r.suites.Create(ctx, suite))
	target := testutil.NewTestSection(r.project.ID, "Target")
	moving := testutil.NewTestSection(r.project.ID, "Moving", testutil.InSuite(suite.ID))
	require.NoError(t, r.sections.Create(ctx, target))
	require.NoError(t, r.sections.Create(ctx, moving))

	require.NoError(t, r.sections.Move(ctx, moving.ID, domain.UnderSection(target.ID), 0))
	got, err := r.sections.GetByID(ctx, moving.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UnderSection(target.ID), got.Parent)

	require.NoError(t, r.sections.Move(ctx, moving.ID, domain.Root(), 1))
	got, err = r.sections.GetByID(ctx, moving.ID)
	require.NoError(t, err)
	assert.True(t, got.Parent.IsRoot())
	assert.Equal(t, 1, got.DisplayOrder)

	assert.ErrorIs(t, r.sections.Move(ctx, "missing", domain.Root(), 0), ErrNotFound)
}

func TestSectionRepo_DeleteCascadesToDescendants(t *testing.T) {
	r := setupTreeRepos(t)
	ctx := context.Background()

	top := testutil.NewTestSection(r.project.ID, "Top")
	child := testutil.NewTestSection(r.project.ID, "Child", testutil.InParentSection(top.ID))
	require.NoError(t, r.sections.Create(ctx, top))
	require.NoError(t, r.sections.Create(ctx, child))
	tc := testutil.NewTestCase(r.project.ID, "Deep", testutil.InSection(child.ID))
	require.NoError(t, r.testCases.Create(ctx, tc))

	require.NoError(t, r.sections.Delete(ctx, top.ID))

	all, err := r.sections.ListByProject(ctx, r.project.ID)
	require.NoError(t, err)
	assert.Empty(t, all)
	_, err = r.testCases.GetByID(ctx, tc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
