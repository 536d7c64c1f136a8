package tree

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/casetree/internal/domain"
)

// ErrPlanInconsistent means the forest cannot support the requested plan.
// It points at an upstream data problem and is not worth retrying.
var ErrPlanInconsistent = errors.New("reorder plan inconsistent with forest")

// Update is one entry of a reorder plan. Parent is set only for the moved
// node, and only when it changes scope.
type Update struct {
	ID           string
	Kind         domain.NodeKind
	DisplayOrder int
	Parent       *domain.ParentRef
}

// Plan is the minimal set of writes realising one move.
type Plan struct {
	NodeID string
	From   ScopeKey
	To     ScopeKey

	// Moves holds the destination scope entries, the moved node included.
	Moves []Update
	// Reindex closes the gap left in the source scope after a reparent.
	Reindex []Update
}

// Reparented reports whether the node changes sibling scope.
func (p Plan) Reparented() bool { return p.From != p.To }

// Empty reports whether the move changes nothing.
func (p Plan) Empty() bool { return len(p.Moves) == 0 && len(p.Reindex) == 0 }

// Items returns every update in commit order: destination first.
func (p Plan) Items() []Update {
	out := make([]Update, 0, len(p.Moves)+len(p.Reindex))
	out = append(out, p.Moves...)
	return append(out, p.Reindex...)
}

// PlanMove computes the updates needed to place dragID at index inside
// target. The index counts positions among the destination scope's members
// with the dragged node removed; larger values append. Sibling entries whose
// order and parent are unchanged are left out.
func PlanMove(f *Forest, dragID string, target Target, index int) (Plan, error) {
	drag := f.Find(dragID)
	if drag == nil {
		return Plan{}, fmt.Errorf("%w: node %s not found", ErrPlanInconsistent, dragID)
	}
	if drag.Placeholder {
		return Plan{}, fmt.Errorf("%w: %s is a placeholder", ErrPlanInconsistent, dragID)
	}
	if index < 0 {
		return Plan{}, fmt.Errorf("%w: index %d", ErrPlanInconsistent, index)
	}
	parent, err := resolveParent(f, target)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrPlanInconsistent, err)
	}
	if !parent.ValidFor(drag.Kind) {
		return Plan{}, fmt.Errorf("%w: %s cannot sit under %s", ErrPlanInconsistent, drag.Kind, parent)
	}
	if !parent.IsRoot() && (parent.ID() == drag.ID || f.IsAncestorOf(drag.ID, parent.ID())) {
		return Plan{}, fmt.Errorf("%w: %s would become its own ancestor", ErrPlanInconsistent, drag.ID)
	}

	plan := Plan{
		NodeID: drag.ID,
		From:   ScopeOfNode(drag),
		To:     ScopeKey{Kind: drag.Kind, Parent: parent},
	}

	dest, err := f.scopeMembers(plan.To)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: reading %s: %v", ErrPlanInconsistent, plan.To, err)
	}
	order, err := withoutNode(realMembers(dest), drag.ID)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %s: %v", ErrPlanInconsistent, plan.To, err)
	}
	if index > len(order) {
		index = len(order)
	}
	order = append(order[:index], append([]*Node{drag}, order[index:]...)...)

	for pos, n := range order {
		if n == drag && plan.Reparented() {
			p := parent
			plan.Moves = append(plan.Moves, Update{ID: n.ID, Kind: n.Kind, DisplayOrder: pos, Parent: &p})
			continue
		}
		if n.DisplayOrder != pos {
			plan.Moves = append(plan.Moves, Update{ID: n.ID, Kind: n.Kind, DisplayOrder: pos})
		}
	}

	if plan.Reparented() {
		src, err := f.scopeMembers(plan.From)
		if err != nil {
			return Plan{}, fmt.Errorf("%w: reading %s: %v", ErrPlanInconsistent, plan.From, err)
		}
		rest, err := withoutNode(realMembers(src), drag.ID)
		if err != nil {
			return Plan{}, fmt.Errorf("%w: %s: %v", ErrPlanInconsistent, plan.From, err)
		}
		for pos, n := range rest {
			if n.DisplayOrder != pos {
				plan.Reindex = append(plan.Reindex, Update{ID: n.ID, Kind: n.Kind, DisplayOrder: pos})
			}
		}
	}
	return plan, nil
}

// realMembers drops placeholders; they hold no persisted order.
func realMembers(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.Placeholder {
			out = append(out, n)
		}
	}
	return out
}

// withoutNode returns nodes minus the one with id, rejecting repeated ids.
func withoutNode(nodes []*Node, id string) ([]*Node, error) {
	seen := make(map[string]bool, len(nodes))
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			return nil, fmt.Errorf("node %s listed twice", n.ID)
		}
		seen[n.ID] = true
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out, nil
}
