// Package tree holds the in-memory test repository forest and the pure
// operations on it: building it from flat entity lists, validating drops,
// planning reorders and applying moves optimistically.
//
// A *Forest and every *Node reachable from it are never mutated after
// construction. Transformations return a new *Forest; nodes on the changed
// paths are copies, untouched subtrees are shared. Callers can therefore
// compare node pointers to find what changed.
package tree

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/casetree/internal/domain"
)

// ErrMalformedForest is returned by Build when the flat input cannot form a
// forest (duplicate ids, section cycles, test cases under suites).
var ErrMalformedForest = errors.New("malformed forest")

// Node is one suite, section or test case in the forest.
type Node struct {
	ID           string
	Kind         domain.NodeKind
	Name         string
	Parent       domain.ParentRef
	DisplayOrder int
	Placeholder  bool // transient node for inline create, never persisted
	Children     []*Node
}

// ScopeKey identifies a sibling scope: the nodes of one kind that share a
// parent reference. DisplayOrder is dense within a scope.
type ScopeKey struct {
	Kind   domain.NodeKind
	Parent domain.ParentRef
}

func (s ScopeKey) String() string {
	return fmt.Sprintf("%s@%s", s.Kind, s.Parent)
}

// ScopeOfNode returns the sibling scope n currently belongs to.
func ScopeOfNode(n *Node) ScopeKey {
	return ScopeKey{Kind: n.Kind, Parent: n.Parent}
}

// Forest is the ordered set of root nodes plus a lookup index.
type Forest struct {
	Roots []*Node

	index  map[string]*Node
	parent map[string]*Node // absent for roots
}

// kindOrder fixes how scopes are laid out inside one child list.
var kindOrder = []domain.NodeKind{domain.KindSuite, domain.KindSection, domain.KindTestCase}

func newForest(roots []*Node) *Forest {
	f := &Forest{
		Roots:  roots,
		index:  make(map[string]*Node),
		parent: make(map[string]*Node),
	}
	var walk func(parent *Node, nodes []*Node)
	walk = func(parent *Node, nodes []*Node) {
		for _, n := range nodes {
			f.index[n.ID] = n
			if parent != nil {
				f.parent[n.ID] = parent
			}
			walk(n, n.Children)
		}
	}
	walk(nil, roots)
	return f
}

// NodeFromSuite converts a stored suite into a root node.
func NodeFromSuite(s domain.Suite) *Node {
	return &Node{ID: s.ID, Kind: domain.KindSuite, Name: s.Name, Parent: domain.Root(), DisplayOrder: s.DisplayOrder}
}

// NodeFromSection converts a stored section into a node.
func NodeFromSection(s domain.Section) *Node {
	return &Node{ID: s.ID, Kind: domain.KindSection, Name: s.Name, Parent: s.Parent, DisplayOrder: s.DisplayOrder}
}

// NodeFromTestCase converts a stored test case into a leaf node.
func NodeFromTestCase(tc domain.TestCase) *Node {
	return &Node{ID: tc.ID, Kind: domain.KindTestCase, Name: tc.Title, Parent: tc.Parent, DisplayOrder: tc.DisplayOrder}
}

// Build assembles flat entity lists into a forest. Every input entity appears
// exactly once. Sections and test cases without a parent are surfaced at the
// root, as are those whose parent is not in the input (their Parent is
// rewritten to Root). Each scope is ordered by DisplayOrder, then ID.
func Build(suites []domain.Suite, sections []domain.Section, testCases []domain.TestCase) (*Forest, error) {
	all := make(map[string]*Node, len(suites)+len(sections)+len(testCases))
	var dupes []string
	add := func(n *Node) {
		if _, ok := all[n.ID]; ok {
			dupes = append(dupes, n.ID)
			return
		}
		all[n.ID] = n
	}
	for _, s := range suites {
		add(NodeFromSuite(s))
	}
	for _, s := range sections {
		add(NodeFromSection(s))
	}
	for _, tc := range testCases {
		if !tc.Parent.ValidFor(domain.KindTestCase) {
			return nil, fmt.Errorf("%w: test case %s cannot sit under %s", ErrMalformedForest, tc.ID, tc.Parent)
		}
		add(NodeFromTestCase(tc))
	}
	if len(dupes) > 0 {
		return nil, fmt.Errorf("%w: duplicate ids %s", ErrMalformedForest, strings.Join(dupes, ", "))
	}

	groups := make(map[ScopeKey][]*Node)
	for _, n := range all {
		if !n.Parent.IsRoot() && !parentExists(all, n.Parent) {
			n.Parent = domain.Root()
		}
		key := ScopeOfNode(n)
		groups[key] = append(groups[key], n)
	}
	for _, members := range groups {
		sortScope(members)
	}

	placed := 0
	var attach func(parent domain.ParentRef) []*Node
	attach = func(parent domain.ParentRef) []*Node {
		var children []*Node
		for _, kind := range kindOrder {
			for _, n := range groups[ScopeKey{Kind: kind, Parent: parent}] {
				placed++
				switch n.Kind {
				case domain.KindSuite:
					n.Children = attach(domain.UnderSuite(n.ID))
				case domain.KindSection:
					n.Children = attach(domain.UnderSection(n.ID))
				}
				children = append(children, n)
			}
		}
		return children
	}
	roots := attach(domain.Root())

	if placed != len(all) {
		var stranded []string
		f := newForest(roots)
		for id := range all {
			if f.Find(id) == nil {
				stranded = append(stranded, id)
			}
		}
		sort.Strings(stranded)
		return nil, fmt.Errorf("%w: section cycle through %s", ErrMalformedForest, strings.Join(stranded, ", "))
	}
	return newForest(roots), nil
}

func parentExists(all map[string]*Node, p domain.ParentRef) bool {
	n, ok := all[p.ID()]
	if !ok {
		return false
	}
	switch p.Kind() {
	case domain.ParentSuite:
		return n.Kind == domain.KindSuite
	case domain.ParentSection:
		return n.Kind == domain.KindSection
	}
	return false
}

func sortScope(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].DisplayOrder != nodes[j].DisplayOrder {
			return nodes[i].DisplayOrder < nodes[j].DisplayOrder
		}
		return nodes[i].ID < nodes[j].ID
	})
}

// Len returns the number of nodes in the forest, placeholders included.
func (f *Forest) Len() int { return len(f.index) }

// Find returns the node with the given id, or nil.
func (f *Forest) Find(id string) *Node {
	if f == nil {
		return nil
	}
	return f.index[id]
}

// ParentOf returns the node's parent, or nil for roots and unknown ids.
func (f *Forest) ParentOf(id string) *Node {
	return f.parent[id]
}

// AncestorsOf returns the node's ancestors, nearest first.
func (f *Forest) AncestorsOf(id string) []*Node {
	var out []*Node
	for p := f.parent[id]; p != nil; p = f.parent[p.ID] {
		out = append(out, p)
	}
	return out
}

// IsAncestorOf reports whether a is a strict ancestor of b.
func (f *Forest) IsAncestorOf(a, b string) bool {
	for p := f.parent[b]; p != nil; p = f.parent[p.ID] {
		if p.ID == a {
			return true
		}
	}
	return false
}

// Descendants returns every node below id in depth-first pre-order.
func (f *Forest) Descendants(id string) []*Node {
	n := f.Find(id)
	if n == nil {
		return nil
	}
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, c := range nodes {
			out = append(out, c)
			walk(c.Children)
		}
	}
	walk(n.Children)
	return out
}

// ScopeOf returns the sibling scope of the node with the given id.
func (f *Forest) ScopeOf(id string) (ScopeKey, bool) {
	n := f.Find(id)
	if n == nil {
		return ScopeKey{}, false
	}
	return ScopeOfNode(n), true
}

// Siblings returns the members of a scope in display order. The result is a
// fresh slice; the nodes are shared with the forest.
func (f *Forest) Siblings(scope ScopeKey) []*Node {
	members, _ := f.scopeMembers(scope)
	return members
}

// Flatten returns all nodes in depth-first pre-order.
func (f *Forest) Flatten() []*Node {
	out := make([]*Node, 0, len(f.index))
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(f.Roots)
	return out
}

// container returns the child list holding the given scope, or an error when
// the scope's parent is not a node of the matching kind.
func (f *Forest) container(parent domain.ParentRef) ([]*Node, error) {
	if parent.IsRoot() {
		return f.Roots, nil
	}
	n := f.Find(parent.ID())
	if n == nil {
		return nil, fmt.Errorf("parent %s not in forest", parent)
	}
	want := domain.KindSection
	if parent.Kind() == domain.ParentSuite {
		want = domain.KindSuite
	}
	if n.Kind != want {
		return nil, fmt.Errorf("parent %s is a %s", parent, n.Kind)
	}
	return n.Children, nil
}

func (f *Forest) scopeMembers(scope ScopeKey) ([]*Node, error) {
	children, err := f.container(scope.Parent)
	if err != nil {
		return nil, err
	}
	var out []*Node
	for _, c := range children {
		if c.Kind == scope.Kind {
			out = append(out, c)
		}
	}
	return out, nil
}
