package treesync

import (
	"context"
	"strconv"
	"testing"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/repository"
	"github.com/alexanderramin/casetree/internal/service"
	"github.com/alexanderramin/casetree/internal/testutil"
	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) (*LocalClient, *domain.Project) {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	project := testutil.NewTestProject("Local")
	require.NoError(t, repository.NewSQLiteProjectRepo(database).Create(context.Background(), project))

	trees := service.NewTreeService(
		repository.NewSQLiteSuiteRepo(database),
		repository.NewSQLiteSectionRepo(database),
		repository.NewSQLiteTestCaseRepo(database),
		uow,
	)
	return NewLocalClient(trees, service.NewReorderService(uow)), project
}

func TestLocalClient_EndToEnd(t *testing.T) {
	ctx := context.Background()
	local, project := newLocal(t)

	syncer := NewSyncer(project.ID, local, local)
	c := NewController(nil, syncer, local)
	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, 0, c.Forest().Len())

	// Build the tree through the controller the way the editor does.
	create := func(target tree.Target, kind domain.NodeKind, name string) string {
		t.Helper()
		pid, err := c.BeginCreate(target, kind)
		require.NoError(t, err)
		task, err := c.CompleteCreate(pid, name)
		require.NoError(t, err)
		res := task(ctx)
		require.NoError(t, res.Err)
		require.NoError(t, c.FinishCreate(pid, res))
		return res.Created.ID
	}
	suite := create(tree.RootTarget(), domain.KindSuite, "Auth")
	login := create(tree.NodeTarget(domain.KindSuite, suite), domain.KindSection, "Login")
	logout := create(tree.NodeTarget(domain.KindSuite, suite), domain.KindSection, "Logout")
	tc := create(tree.NodeTarget(domain.KindSection, login), domain.KindTestCase, "happy path")

	g, err := c.StartDrag(tc)
	require.NoError(t, err)
	commit, err := c.Drop(g, tree.NodeTarget(domain.KindSection, logout), 0)
	require.NoError(t, err)
	require.NoError(t, c.Finish(g, commit(ctx)))
	require.Equal(t, PhaseCommitted, g.Phase, "commit error: %v", g.Err)

	g, err = c.StartDrag(logout)
	require.NoError(t, err)
	commit, err = c.Drop(g, tree.NodeTarget(domain.KindSuite, suite), 0)
	require.NoError(t, err)
	require.NoError(t, c.Finish(g, commit(ctx)))
	require.Equal(t, PhaseCommitted, g.Phase, "commit error: %v", g.Err)

	optimistic := c.Forest()
	stored, err := syncer.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, shapeOf(optimistic), shapeOf(stored), "store agrees with the optimistic forest")
	assert.Equal(t, domain.UnderSection(logout), stored.Find(tc).Parent)
	assert.Equal(t, 0, stored.Find(logout).DisplayOrder)
}

func TestLocalClient_RejectedBatchReconciles(t *testing.T) {
	ctx := context.Background()
	local, project := newLocal(t)
	syncer := NewSyncer(project.ID, local, local)

	s := &domain.Suite{ProjectID: project.ID, Name: "A"}
	require.NoError(t, local.CreateSuite(ctx, s))
	require.NoError(t, local.CreateSuite(ctx, &domain.Suite{ProjectID: project.ID, Name: "B"}))

	// A plan computed against a stale forest that lacks suite B.
	stale, err := tree.Build([]domain.Suite{*s, {ID: "phantom", Name: "P", DisplayOrder: 1}}, nil, nil)
	require.NoError(t, err)
	plan, err := tree.PlanMove(stale, "phantom", tree.RootTarget(), 0)
	require.NoError(t, err)

	res := syncer.CommitOrReconcile(ctx, plan)
	require.True(t, res.Reconciled)
	assert.ErrorIs(t, res.Err, service.ErrInvalidReorder)
	require.NotNil(t, res.Forest)
	assert.Equal(t, 2, res.Forest.Len())
}

func shapeOf(f *tree.Forest) []string {
	var out []string
	for _, n := range f.Flatten() {
		out = append(out, n.ID+"@"+n.Parent.String()+"#"+strconv.Itoa(n.DisplayOrder))
	}
	return out
}
