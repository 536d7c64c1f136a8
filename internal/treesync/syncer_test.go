package treesync

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncer_CommitSendsOneBatch(t *testing.T) {
	src := canonical()
	client := &fakeClient{}
	s := NewSyncer("proj", client, src)

	plan, err := tree.PlanMove(src.forest(t), "X", tree.NodeTarget(domain.KindSection, "Y"), 0)
	require.NoError(t, err)
	require.NoError(t, s.Commit(context.Background(), plan))

	require.Len(t, client.sent, 1)
	req := client.sent[0]
	assert.Equal(t, "proj", req.ProjectID)
	require.Len(t, req.Items, 4, "X, M, N in the destination plus Z in the source")
	assert.Equal(t, "X", req.Items[0].ID)
	assert.True(t, req.Items[0].Reparent)
	require.NotNil(t, req.Items[0].ParentID)
	assert.Equal(t, "Y", *req.Items[0].ParentID)
	assert.Equal(t, "Z", req.Items[3].ID)
	assert.False(t, req.Items[3].Reparent)
}

func TestSyncer_EmptyPlanSendsNothing(t *testing.T) {
	client := &fakeClient{}
	s := NewSyncer("proj", client, canonical())

	require.NoError(t, s.Commit(context.Background(), tree.Plan{NodeID: "X"}))
	assert.Empty(t, client.sent)
}

func TestSyncer_Reconcile(t *testing.T) {
	src := canonical()
	s := NewSyncer("proj", &fakeClient{}, src)

	f, err := s.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, f.Len())
	assert.Equal(t, 3, src.calls)

	src.err = errOffline
	_, err = s.Reconcile(context.Background())
	assert.ErrorIs(t, err, errOffline)
}

func TestSyncer_CommitOrReconcile(t *testing.T) {
	src := canonical()
	plan, err := tree.PlanMove(src.forest(t), "Z", tree.NodeTarget(domain.KindSuite, "P1"), 0)
	require.NoError(t, err)

	t.Run("committed", func(t *testing.T) {
		res := NewSyncer("proj", &fakeClient{}, src).CommitOrReconcile(context.Background(), plan)
		assert.False(t, res.Reconciled)
		assert.NoError(t, res.Err)
		assert.Nil(t, res.Forest)
	})

	t.Run("reconciled", func(t *testing.T) {
		client := &fakeClient{err: errOffline}
		res := NewSyncer("proj", client, src).CommitOrReconcile(context.Background(), plan)
		assert.True(t, res.Reconciled)
		assert.ErrorIs(t, res.Err, errOffline)
		require.NotNil(t, res.Forest)
		assert.Equal(t, []string{"X", "Z"}, childIDs(res.Forest, domain.KindSection, domain.UnderSuite("P1")))
		assert.Len(t, client.sent, 1, "no retry")
	})

	t.Run("reconcile fails too", func(t *testing.T) {
		broken := canonical()
		broken.err = errOffline
		res := NewSyncer("proj", &fakeClient{err: errOffline}, broken).CommitOrReconcile(context.Background(), plan)
		assert.True(t, res.Reconciled)
		assert.Nil(t, res.Forest)
		assert.ErrorIs(t, res.Err, errOffline)
		assert.Contains(t, res.Err.Error(), "reconcile also failed")
	})
}

func TestSyncer_Logs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	src := canonical()
	s := NewSyncer("proj", &fakeClient{err: errOffline}, src, WithLogger(logger))

	plan, err := tree.PlanMove(src.forest(t), "Z", tree.NodeTarget(domain.KindSuite, "P1"), 0)
	require.NoError(t, err)
	s.CommitOrReconcile(context.Background(), plan)

	out := buf.String()
	assert.Contains(t, out, "msg=reorder_commit")
	assert.Contains(t, out, "error=offline")
	assert.Contains(t, out, "msg=reconcile")
	assert.Contains(t, out, "nodes=9")
}
