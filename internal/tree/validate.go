package tree

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/casetree/internal/domain"
)

// Drop rejection reasons returned by CheckDrop.
var (
	ErrUnknownNode   = errors.New("node not in forest")
	ErrDropOnLeaf    = errors.New("test cases cannot contain other nodes")
	ErrSuiteNotRoot  = errors.New("suites can only be placed at the root")
	ErrDropIntoSelf  = errors.New("cannot move a node into itself or its descendants")
	ErrPlaceholder   = errors.New("placeholder nodes cannot be moved or receive children")
	ErrParentKind    = errors.New("target cannot contain this kind of node")
	ErrNegativeIndex = errors.New("drop index must not be negative")
)

// Target names the parent a node is dropped into. The zero value is the
// forest root.
type Target struct {
	Kind domain.NodeKind
	ID   string
}

// RootTarget is the top of the forest.
func RootTarget() Target { return Target{} }

// NodeTarget drops into the node with the given kind and id.
func NodeTarget(kind domain.NodeKind, id string) Target {
	return Target{Kind: kind, ID: id}
}

func (t Target) IsRoot() bool { return t.ID == "" }

func (t Target) String() string {
	if t.IsRoot() {
		return "root"
	}
	return string(t.Kind) + ":" + t.ID
}

// CheckDrop decides whether dragging dragID onto target at index is legal and
// returns the reason when it is not. It never touches the forest.
func CheckDrop(f *Forest, dragID string, target Target, index int) error {
	drag := f.Find(dragID)
	if drag == nil {
		return fmt.Errorf("%w: %s", ErrUnknownNode, dragID)
	}

	var dest *Node
	if !target.IsRoot() {
		dest = f.Find(target.ID)
		if dest == nil || dest.Kind != target.Kind {
			return fmt.Errorf("%w: %s", ErrUnknownNode, target)
		}
	}

	if dest != nil && dest.Kind == domain.KindTestCase {
		return ErrDropOnLeaf
	}
	if drag.Kind == domain.KindSuite && dest != nil {
		return ErrSuiteNotRoot
	}
	if dest != nil && (dest.ID == drag.ID || f.IsAncestorOf(drag.ID, dest.ID)) {
		return ErrDropIntoSelf
	}
	if drag.Placeholder || (dest != nil && dest.Placeholder) {
		return ErrPlaceholder
	}

	parent, err := resolveParent(f, target)
	if err != nil {
		return err
	}
	if !parent.ValidFor(drag.Kind) {
		return fmt.Errorf("%w: %s under %s", ErrParentKind, drag.Kind, target.Kind)
	}
	if index < 0 {
		return ErrNegativeIndex
	}
	return nil
}

// CanDrop is the boolean form of CheckDrop.
func CanDrop(f *Forest, dragID string, target Target, index int) bool {
	return CheckDrop(f, dragID, target, index) == nil
}

// resolveParent maps a drop target to the parent reference its scope uses.
// Dropping onto a test case means dropping into the test case's own scope.
func resolveParent(f *Forest, target Target) (domain.ParentRef, error) {
	if target.IsRoot() {
		return domain.Root(), nil
	}
	n := f.Find(target.ID)
	if n == nil || n.Kind != target.Kind {
		return domain.ParentRef{}, fmt.Errorf("%w: %s", ErrUnknownNode, target)
	}
	switch n.Kind {
	case domain.KindSuite:
		return domain.UnderSuite(n.ID), nil
	case domain.KindSection:
		return domain.UnderSection(n.ID), nil
	default:
		return n.Parent, nil
	}
}
