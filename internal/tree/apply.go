package tree

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/google/uuid"
)

// PlaceholderPrefix marks ids of transient inline-create nodes.
const PlaceholderPrefix = "placeholder:"

// IsPlaceholderID reports whether id was minted by InsertPlaceholder.
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

// MoveNode returns a new forest with nodeID moved to index inside target.
// Both the scope it leaves and the scope it enters are renumbered densely.
// Placeholders stay at the end of their scope. f is left untouched.
func MoveNode(f *Forest, nodeID string, target Target, index int) (*Forest, error) {
	node := f.Find(nodeID)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}
	parent, err := resolveParent(f, target)
	if err != nil {
		return nil, err
	}
	if !parent.ValidFor(node.Kind) {
		return nil, fmt.Errorf("%w: %s under %s", ErrParentKind, node.Kind, parent)
	}
	if !parent.IsRoot() && (parent.ID() == node.ID || f.IsAncestorOf(node.ID, parent.ID())) {
		return nil, ErrDropIntoSelf
	}
	if index < 0 {
		return nil, ErrNegativeIndex
	}

	from := ScopeOfNode(node)
	src, err := f.scopeMembers(from)
	if err != nil {
		return nil, err
	}
	removed, err := f.withScope(from, renumber(excluding(src, node.ID)))
	if err != nil {
		return nil, err
	}

	to := ScopeKey{Kind: node.Kind, Parent: parent}
	dest, err := removed.scopeMembers(to)
	if err != nil {
		return nil, err
	}
	settled, pending := splitPlaceholders(dest)
	if index > len(settled) {
		index = len(settled)
	}
	moved := *node
	moved.Parent = parent
	members := make([]*Node, 0, len(dest)+1)
	members = append(members, settled[:index]...)
	members = append(members, &moved)
	members = append(members, settled[index:]...)
	members = append(members, pending...)

	return removed.withScope(to, renumber(members))
}

// RemoveNode returns a new forest without id and its subtree; the scope it
// leaves is renumbered.
func RemoveNode(f *Forest, id string) (*Forest, error) {
	node := f.Find(id)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	scope := ScopeOfNode(node)
	members, err := f.scopeMembers(scope)
	if err != nil {
		return nil, err
	}
	return f.withScope(scope, renumber(excluding(members, id)))
}

// RenameNode returns a new forest in which id carries name.
func RenameNode(f *Forest, id, name string) (*Forest, error) {
	node := f.Find(id)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	renamed := *node
	renamed.Name = name
	return f.replaceNode(node, &renamed), nil
}

// InsertPlaceholder appends a transient node of kind under target so the UI
// can edit its name in place. It returns the new forest and the placeholder
// id, which is never sent to the store.
func InsertPlaceholder(f *Forest, target Target, kind domain.NodeKind, name string) (*Forest, string, error) {
	if dest := f.Find(target.ID); !target.IsRoot() && dest != nil && dest.Placeholder {
		return nil, "", ErrPlaceholder
	}
	parent, err := resolveParent(f, target)
	if err != nil {
		return nil, "", err
	}
	if !target.IsRoot() && target.Kind == domain.KindTestCase {
		return nil, "", ErrDropOnLeaf
	}
	if !parent.ValidFor(kind) {
		return nil, "", fmt.Errorf("%w: %s under %s", ErrParentKind, kind, parent)
	}
	scope := ScopeKey{Kind: kind, Parent: parent}
	members, err := f.scopeMembers(scope)
	if err != nil {
		return nil, "", err
	}
	p := &Node{
		ID:           PlaceholderPrefix + uuid.New().String(),
		Kind:         kind,
		Name:         name,
		Parent:       parent,
		DisplayOrder: len(members),
		Placeholder:  true,
	}
	next, err := f.withScope(scope, append(members, p))
	if err != nil {
		return nil, "", err
	}
	return next, p.ID, nil
}

// ResolvePlaceholder swaps the placeholder for the entity the store created.
// The store appended it after the real siblings, so that is where it goes,
// ahead of any placeholders still waiting on their own create.
func ResolvePlaceholder(f *Forest, placeholderID string, created *Node) (*Forest, error) {
	p := f.Find(placeholderID)
	if p == nil || !p.Placeholder {
		return nil, fmt.Errorf("%w: placeholder %s", ErrUnknownNode, placeholderID)
	}
	if created.Kind != p.Kind {
		return nil, fmt.Errorf("%w: placeholder is a %s, created a %s", ErrParentKind, p.Kind, created.Kind)
	}
	scope := ScopeOfNode(p)
	members, err := f.scopeMembers(scope)
	if err != nil {
		return nil, err
	}
	settled, pending := splitPlaceholders(excluding(members, placeholderID))
	c := *created
	c.Parent = p.Parent
	c.Placeholder = false

	swapped := make([]*Node, 0, len(members))
	swapped = append(swapped, settled...)
	swapped = append(swapped, &c)
	swapped = append(swapped, pending...)
	return f.withScope(scope, renumber(swapped))
}

// DiscardPlaceholder removes an abandoned placeholder.
func DiscardPlaceholder(f *Forest, placeholderID string) (*Forest, error) {
	p := f.Find(placeholderID)
	if p == nil || !p.Placeholder {
		return nil, fmt.Errorf("%w: placeholder %s", ErrUnknownNode, placeholderID)
	}
	return RemoveNode(f, placeholderID)
}

// withScope returns a forest in which the given scope holds exactly members,
// in order. Other scopes sharing the same child list are kept.
func (f *Forest) withScope(scope ScopeKey, members []*Node) (*Forest, error) {
	children, err := f.container(scope.Parent)
	if err != nil {
		return nil, err
	}
	merged := make([]*Node, 0, len(children)+1)
	for _, kind := range kindOrder {
		if kind == scope.Kind {
			merged = append(merged, members...)
			continue
		}
		for _, c := range children {
			if c.Kind == kind {
				merged = append(merged, c)
			}
		}
	}
	if scope.Parent.IsRoot() {
		return newForest(merged), nil
	}
	owner := f.Find(scope.Parent.ID())
	cp := *owner
	cp.Children = merged
	return f.replaceNode(owner, &cp), nil
}

// replaceNode swaps old for repl and copies every ancestor up to the root.
func (f *Forest) replaceNode(old, repl *Node) *Forest {
	for {
		parent := f.parent[old.ID]
		if parent == nil {
			roots := make([]*Node, len(f.Roots))
			for i, r := range f.Roots {
				if r == old {
					r = repl
				}
				roots[i] = r
			}
			return newForest(roots)
		}
		cp := *parent
		cp.Children = make([]*Node, len(parent.Children))
		for i, c := range parent.Children {
			if c == old {
				c = repl
			}
			cp.Children[i] = c
		}
		old, repl = parent, &cp
	}
}

// renumber assigns DisplayOrder = position, copying only nodes that change.
func renumber(nodes []*Node) []*Node {
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		if n.DisplayOrder != i {
			cp := *n
			cp.DisplayOrder = i
			n = &cp
		}
		out[i] = n
	}
	return out
}

func excluding(nodes []*Node, id string) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

func splitPlaceholders(nodes []*Node) (settled, pending []*Node) {
	for _, n := range nodes {
		if n.Placeholder {
			pending = append(pending, n)
		} else {
			settled = append(settled, n)
		}
	}
	return settled, pending
}
