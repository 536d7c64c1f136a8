package tree

import (
	"testing"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveNode_LeavesInputUntouched(t *testing.T) {
	f := sample(t)
	before := shape(f)

	next, err := MoveNode(f, "X", NodeTarget(domain.KindSection, "Y"), 0)
	require.NoError(t, err)

	assert.Equal(t, before, shape(f))
	assert.NotEqual(t, before, shape(next))
}

func TestMoveNode_ReparentRenumbersBothScopes(t *testing.T) {
	f := sample(t)

	next, err := MoveNode(f, "X", NodeTarget(domain.KindSection, "Y"), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"Z"}, ids(next.Find("P1").Children))
	assert.Equal(t, 0, next.Find("Z").DisplayOrder)
	assert.Equal(t, []string{"X", "M", "N"}, ids(next.Find("Y").Children))
	assert.Equal(t, domain.UnderSection("Y"), next.Find("X").Parent)
	assert.Equal(t, []string{"t1", "t2"}, ids(next.Find("X").Children), "subtree travels with the node")
	assert.Equal(t, []string{"X", "Y", "P2"}, ids(next.AncestorsOf("t1")))
	requireDense(t, next)
}

func TestMoveNode_SharesUntouchedSubtrees(t *testing.T) {
	f := sample(t)

	next, err := MoveNode(f, "Z", NodeTarget(domain.KindSuite, "P1"), 0)
	require.NoError(t, err)

	assert.Same(t, f.Find("P2"), next.Find("P2"))
	assert.Same(t, f.Find("t1"), next.Find("t1"))
	assert.NotSame(t, f.Find("P1"), next.Find("P1"))
	assert.Equal(t, []string{"Z", "X"}, ids(next.Find("P1").Children))
}

func TestMoveNode_AgreesWithPlan(t *testing.T) {
	f := sample(t)
	moves := []struct {
		drag   string
		target Target
		index  int
	}{
		{"X", NodeTarget(domain.KindSection, "Y"), 0},
		{"X", NodeTarget(domain.KindSection, "Y"), 1},
		{"N", RootTarget(), 0},
		{"O", NodeTarget(domain.KindSuite, "P2"), 0},
		{"t2", RootTarget(), 0},
		{"U", NodeTarget(domain.KindTestCase, "t1"), 1},
		{"P2", RootTarget(), 0},
	}
	for _, m := range moves {
		plan, err := PlanMove(f, m.drag, m.target, m.index)
		require.NoError(t, err)
		next, err := MoveNode(f, m.drag, m.target, m.index)
		require.NoError(t, err)

		rebuilt, err := Build(applyPlanToEntities(f, plan))
		require.NoError(t, err)
		assert.Equal(t, shape(rebuilt), shape(next), "%s -> %s@%d", m.drag, m.target, m.index)
	}
}

func TestMoveNode_RejectsCycle(t *testing.T) {
	_, err := MoveNode(sample(t), "Y", NodeTarget(domain.KindSection, "M"), 0)
	assert.ErrorIs(t, err, ErrDropIntoSelf)
}

func TestRemoveNode(t *testing.T) {
	f := sample(t)

	next, err := RemoveNode(f, "X")
	require.NoError(t, err)

	assert.Nil(t, next.Find("X"))
	assert.Nil(t, next.Find("t1"))
	assert.Equal(t, 0, next.Find("Z").DisplayOrder)
	assert.Equal(t, f.Len()-3, next.Len())
	requireDense(t, next)

	_, err = RemoveNode(f, "ghost")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestRenameNode(t *testing.T) {
	f := sample(t)

	next, err := RenameNode(f, "M", "Visa Debit")
	require.NoError(t, err)

	assert.Equal(t, "Visa Debit", next.Find("M").Name)
	assert.Equal(t, "Visa", f.Find("M").Name)
	assert.Same(t, f.Find("P1"), next.Find("P1"))
}

func TestPlaceholderLifecycle(t *testing.T) {
	f := sample(t)

	withDraft, pid, err := InsertPlaceholder(f, NodeTarget(domain.KindSection, "Y"), domain.KindSection, "")
	require.NoError(t, err)
	assert.True(t, IsPlaceholderID(pid))
	assert.Equal(t, []string{"M", "N", pid}, ids(withDraft.Find("Y").Children))

	moved, err := MoveNode(withDraft, "M", NodeTarget(domain.KindSection, "Y"), 9)
	require.NoError(t, err)
	assert.Equal(t, []string{"N", "M", pid}, ids(moved.Find("Y").Children), "placeholder stays last")

	created := &Node{ID: "new", Kind: domain.KindSection, Name: "Amex"}
	resolved, err := ResolvePlaceholder(moved, pid, created)
	require.NoError(t, err)
	assert.Nil(t, resolved.Find(pid))
	n := resolved.Find("new")
	require.NotNil(t, n)
	assert.Equal(t, domain.UnderSection("Y"), n.Parent)
	assert.Equal(t, 2, n.DisplayOrder)
	assert.False(t, n.Placeholder)

	discarded, err := DiscardPlaceholder(withDraft, pid)
	require.NoError(t, err)
	assert.Equal(t, shape(f), shape(discarded))

	_, err = DiscardPlaceholder(f, "M")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestResolvePlaceholder_OutOfOrder(t *testing.T) {
	f := sample(t)
	y := NodeTarget(domain.KindSection, "Y")

	f, first, err := InsertPlaceholder(f, y, domain.KindSection, "")
	require.NoError(t, err)
	f, second, err := InsertPlaceholder(f, y, domain.KindSection, "")
	require.NoError(t, err)

	// The later create returns first; the store appended it at order 2.
	f, err = ResolvePlaceholder(f, second, &Node{ID: "C", Kind: domain.KindSection, Name: "Visa", DisplayOrder: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"M", "N", "C", first}, ids(f.Find("Y").Children))
	assert.Equal(t, 2, f.Find("C").DisplayOrder)

	plan, err := PlanMove(f, "C", y, 2)
	require.NoError(t, err)
	assert.True(t, plan.Empty(), "moving C onto its own slot writes nothing, got %+v", plan.Items())

	f, err = ResolvePlaceholder(f, first, &Node{ID: "D", Kind: domain.KindSection, Name: "Amex", DisplayOrder: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"M", "N", "C", "D"}, ids(f.Find("Y").Children))
	for i, n := range f.Find("Y").Children {
		assert.Equal(t, i, n.DisplayOrder, n.ID)
	}
}

func TestInsertPlaceholder_Rejects(t *testing.T) {
	f := sample(t)

	_, _, err := InsertPlaceholder(f, NodeTarget(domain.KindTestCase, "t1"), domain.KindTestCase, "")
	assert.ErrorIs(t, err, ErrDropOnLeaf)

	_, _, err = InsertPlaceholder(f, NodeTarget(domain.KindSuite, "P1"), domain.KindTestCase, "")
	assert.ErrorIs(t, err, ErrParentKind)

	_, _, err = InsertPlaceholder(f, NodeTarget(domain.KindSection, "X"), domain.KindSuite, "")
	assert.ErrorIs(t, err, ErrParentKind)

	root, _, err := InsertPlaceholder(f, RootTarget(), domain.KindSuite, "")
	require.NoError(t, err)
	assert.Equal(t, domain.KindSuite, root.Roots[2].Kind, "new suite lands after existing suites")
}
