package tree

import (
	"fmt"
	"testing"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/stretchr/testify/require"
)

// sample builds this repository:
//
//	P1 (suite)
//	  X (section)
//	    t1, t2
//	  Z (section)
//	P2 (suite)
//	  Y (section)
//	    M, N (sections)
//	O (orphan section)
//	U (unsectioned test case)
func sample(t *testing.T) *Forest {
	t.Helper()
	suites := []domain.Suite{
		{ID: "P2", Name: "Payments", DisplayOrder: 1},
		{ID: "P1", Name: "Auth", DisplayOrder: 0},
	}
	sections := []domain.Section{
		{ID: "Z", Name: "Logout", Parent: domain.UnderSuite("P1"), DisplayOrder: 1},
		{ID: "X", Name: "Login", Parent: domain.UnderSuite("P1"), DisplayOrder: 0},
		{ID: "Y", Name: "Cards", Parent: domain.UnderSuite("P2"), DisplayOrder: 0},
		{ID: "N", Name: "Mastercard", Parent: domain.UnderSection("Y"), DisplayOrder: 1},
		{ID: "M", Name: "Visa", Parent: domain.UnderSection("Y"), DisplayOrder: 0},
		{ID: "O", Name: "Unfiled", Parent: domain.Root(), DisplayOrder: 0},
	}
	cases := []domain.TestCase{
		{ID: "t2", Title: "Wrong password", Parent: domain.UnderSection("X"), DisplayOrder: 1},
		{ID: "t1", Title: "Valid password", Parent: domain.UnderSection("X"), DisplayOrder: 0},
		{ID: "U", Title: "Smoke", Parent: domain.Root(), DisplayOrder: 0},
	}
	f, err := Build(suites, sections, cases)
	require.NoError(t, err)
	return f
}

func ids(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

// entities flattens a forest back into the three stored lists.
func entities(f *Forest) ([]domain.Suite, []domain.Section, []domain.TestCase) {
	var suites []domain.Suite
	var sections []domain.Section
	var cases []domain.TestCase
	for _, n := range f.Flatten() {
		switch n.Kind {
		case domain.KindSuite:
			suites = append(suites, domain.Suite{ID: n.ID, Name: n.Name, DisplayOrder: n.DisplayOrder})
		case domain.KindSection:
			sections = append(sections, domain.Section{ID: n.ID, Name: n.Name, Parent: n.Parent, DisplayOrder: n.DisplayOrder})
		case domain.KindTestCase:
			cases = append(cases, domain.TestCase{ID: n.ID, Title: n.Name, Parent: n.Parent, DisplayOrder: n.DisplayOrder})
		}
	}
	return suites, sections, cases
}

// applyPlanToEntities is what the store does with a committed plan.
func applyPlanToEntities(f *Forest, plan Plan) ([]domain.Suite, []domain.Section, []domain.TestCase) {
	suites, sections, cases := entities(f)
	byID := make(map[string]Update)
	for _, u := range plan.Items() {
		byID[u.ID] = u
	}
	for i := range suites {
		if u, ok := byID[suites[i].ID]; ok {
			suites[i].DisplayOrder = u.DisplayOrder
		}
	}
	for i := range sections {
		if u, ok := byID[sections[i].ID]; ok {
			sections[i].DisplayOrder = u.DisplayOrder
			if u.Parent != nil {
				sections[i].Parent = *u.Parent
			}
		}
	}
	for i := range cases {
		if u, ok := byID[cases[i].ID]; ok {
			cases[i].DisplayOrder = u.DisplayOrder
			if u.Parent != nil {
				cases[i].Parent = *u.Parent
			}
		}
	}
	return suites, sections, cases
}

// shape renders every node as id@parent#order for structural comparison.
func shape(f *Forest) []string {
	var out []string
	for _, n := range f.Flatten() {
		out = append(out, fmt.Sprintf("%s@%s#%d", n.ID, n.Parent, n.DisplayOrder))
	}
	return out
}

// requireDense asserts every scope in f is numbered 0..n-1 in order.
func requireDense(t require.TestingT, f *Forest) {
	scopes := make(map[ScopeKey][]int)
	for _, n := range f.Flatten() {
		k := ScopeOfNode(n)
		scopes[k] = append(scopes[k], n.DisplayOrder)
	}
	for k, orders := range scopes {
		for i, o := range orders {
			require.Equal(t, i, o, "scope %s not dense: %v", k, orders)
		}
	}
}
