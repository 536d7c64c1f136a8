package formatter

import (
	"strings"
	"testing"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleForest:
//
//	Checkout (suite)
//	  Payments: Pays by card, Refunds a card
//	  Shipping
//	Drafts (root section)
//	  Flaky login
func sampleForest(t *testing.T) *tree.Forest {
	t.Helper()
	f, err := tree.Build(
		[]domain.Suite{{ID: "s1", Name: "Checkout"}},
		[]domain.Section{
			{ID: "a", Name: "Payments", Parent: domain.UnderSuite("s1"), DisplayOrder: 0},
			{ID: "b", Name: "Shipping", Parent: domain.UnderSuite("s1"), DisplayOrder: 1},
			{ID: "d", Name: "Drafts", Parent: domain.Root()},
		},
		[]domain.TestCase{
			{ID: "c1", Title: "Pays by card", Parent: domain.UnderSection("a"), DisplayOrder: 0},
			{ID: "c2", Title: "Refunds a card", Parent: domain.UnderSection("a"), DisplayOrder: 1},
			{ID: "c3", Title: "Flaky login", Parent: domain.UnderSection("d")},
		},
	)
	require.NoError(t, err)
	return f
}

func TestRenderForest_Golden_Expanded(t *testing.T) {
	goldenTest(t, "forest_expanded", RenderForest(sampleForest(t), TreeOptions{}))
}

func TestRenderForest_Empty(t *testing.T) {
	assert.Empty(t, RenderForest(nil, TreeOptions{}))
}

func TestVisibleRows_CollapsedNodeHidesDescendants(t *testing.T) {
	f := sampleForest(t)
	rows := VisibleRows(f, func(n *tree.Node, _ int) bool { return n.ID != "s1" })

	require.Len(t, rows, 3)
	assert.Equal(t, "s1", rows[0].Node.ID)
	assert.Equal(t, 4, rows[0].Hidden)
	assert.Equal(t, "d", rows[1].Node.ID)
	assert.Equal(t, "c3", rows[2].Node.ID)
	assert.Equal(t, "└── ", rows[2].Prefix)
}

func TestVisibleRows_PipesFollowAncestors(t *testing.T) {
	rows := VisibleRows(sampleForest(t), nil)

	prefixes := map[string]string{}
	depths := map[string]int{}
	for _, r := range rows {
		prefixes[r.Node.ID] = r.Prefix
		depths[r.Node.ID] = r.Depth
	}
	assert.Equal(t, "", prefixes["s1"])
	assert.Equal(t, "├── ", prefixes["a"])
	assert.Equal(t, "│   └── ", prefixes["c2"])
	assert.Equal(t, "└── ", prefixes["b"])
	assert.Equal(t, 2, depths["c1"])
}

func TestRenderForest_CollapsedShowsHiddenCount(t *testing.T) {
	out := stripANSI(RenderForest(sampleForest(t), TreeOptions{
		Expand: func(n *tree.Node, _ int) bool { return n.ID != "a" },
	}))
	assert.Contains(t, out, "├── Payments +2")
	assert.NotContains(t, out, "Pays by card")
}

func TestRenderForest_ShowIDs(t *testing.T) {
	out := stripANSI(RenderForest(sampleForest(t), TreeOptions{ShowIDs: true}))
	assert.Contains(t, out, "s1 Checkout")
	assert.Contains(t, out, "│   ├── c1 Pays by card")
}

func TestRenderForest_Placeholder(t *testing.T) {
	f, id, err := tree.InsertPlaceholder(sampleForest(t), tree.NodeTarget(domain.KindSection, "b"), domain.KindTestCase, "New case")
	require.NoError(t, err)
	require.True(t, tree.IsPlaceholderID(id))

	out := stripANSI(RenderForest(f, TreeOptions{}))
	assert.Contains(t, out, "    └── New case…")
}

func TestFormatProjectTree(t *testing.T) {
	p := &domain.Project{ID: "p1", ShortID: "CHK", Name: "Checkout app"}
	out := stripANSI(FormatProjectTree(p, sampleForest(t), TreeOptions{}))

	assert.Contains(t, out, "TEST REPOSITORY")
	assert.Contains(t, out, "Checkout app (CHK)")
	assert.Contains(t, out, "1 suite, 3 sections, 3 test cases")
	assert.Contains(t, out, "└── Flaky login")
}

func TestFormatProjectTree_Empty(t *testing.T) {
	f, err := tree.Build(nil, nil, nil)
	require.NoError(t, err)
	out := stripANSI(FormatProjectTree(&domain.Project{ID: "p1", ShortID: "CHK", Name: "X"}, f, TreeOptions{}))
	assert.Contains(t, out, "0 suites, 0 sections, 0 test cases")
	assert.Contains(t, out, "Empty repository")
}

func TestFormatProjectList(t *testing.T) {
	out := stripANSI(FormatProjectList([]*domain.Project{
		{ID: "0b5a2c1e-aaaa", ShortID: "CHK", Name: "Checkout"},
		{ID: "9f00aa11-bbbb", Name: "Unnamed"},
	}))
	assert.Contains(t, out, "PROJECTS")
	assert.Contains(t, out, "CHK")
	assert.Contains(t, out, "9f00aa11")
	assert.True(t, strings.Count(out, "Checkout") == 1)

	assert.Contains(t, stripANSI(FormatProjectList(nil)), "No projects yet")
}
