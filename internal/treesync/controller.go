package treesync

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/tree"
)

var (
	// ErrRejected wraps the rule a drop broke. Nothing was changed.
	ErrRejected = errors.New("drop rejected")
	// ErrGestureState means a gesture was used out of order.
	ErrGestureState = errors.New("gesture not in expected phase")
	ErrNoMutator    = errors.New("no mutator configured")
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseRejected
	PhasePlanned
	PhaseCommitted
	PhaseReconciled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseRejected:
		return "rejected"
	case PhasePlanned:
		return "planned"
	case PhaseCommitted:
		return "committed"
	case PhaseReconciled:
		return "reconciled"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Gesture is one drag from pick-up to settlement.
type Gesture struct {
	NodeID string
	Phase  Phase
	Plan   tree.Plan
	Err    error
}

// Mutator is the store's create, rename and delete surface.
type Mutator interface {
	CreateSuite(ctx context.Context, s *domain.Suite) error
	CreateSection(ctx context.Context, s *domain.Section) error
	CreateTestCase(ctx context.Context, tc *domain.TestCase) error
	Rename(ctx context.Context, kind domain.NodeKind, id, name string) error
	Delete(ctx context.Context, kind domain.NodeKind, id string) error
}

// Task is the asynchronous half of an edit. It only talks to the store and
// never touches the controller, so it may run on any goroutine.
type Task func(ctx context.Context) Result

// Controller owns the forest shown by the UI. It is not safe for concurrent
// use: call it from the UI loop only and run the returned Tasks elsewhere.
type Controller struct {
	forest  *tree.Forest
	syncer  *Syncer
	mutator Mutator
	drag    *Gesture
}

func NewController(f *tree.Forest, syncer *Syncer, mutator Mutator) *Controller {
	return &Controller{forest: f, syncer: syncer, mutator: mutator}
}

func (c *Controller) Forest() *tree.Forest { return c.forest }

// Phase reports whether a drag is in progress.
func (c *Controller) Phase() Phase {
	if c.drag != nil {
		return PhaseDragging
	}
	return PhaseIdle
}

// Dragging returns the gesture in progress, if any.
func (c *Controller) Dragging() *Gesture { return c.drag }

// Replace installs a freshly loaded forest.
func (c *Controller) Replace(f *tree.Forest) { c.forest = f }

// Refresh loads the forest from the store.
func (c *Controller) Refresh(ctx context.Context) error {
	f, err := c.syncer.Reconcile(ctx)
	if err != nil {
		return err
	}
	c.forest = f
	return nil
}

func (c *Controller) StartDrag(id string) (*Gesture, error) {
	if c.drag != nil {
		return nil, fmt.Errorf("%w: already dragging %s", ErrGestureState, c.drag.NodeID)
	}
	n := c.forest.Find(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", tree.ErrUnknownNode, id)
	}
	if n.Placeholder {
		return nil, fmt.Errorf("%w: %w", ErrRejected, tree.ErrPlaceholder)
	}
	c.drag = &Gesture{NodeID: id, Phase: PhaseDragging}
	return c.drag, nil
}

func (c *Controller) Cancel(g *Gesture) {
	if g != nil && c.drag == g {
		g.Phase = PhaseIdle
		c.drag = nil
	}
}

// Drop validates and plans the move, applies it to the held forest and
// returns the commit. A rejected drop leaves the forest as it was.
func (c *Controller) Drop(g *Gesture, target tree.Target, index int) (Task, error) {
	if g == nil || c.drag != g {
		return nil, fmt.Errorf("%w: drop without drag", ErrGestureState)
	}
	c.drag = nil

	if err := tree.CheckDrop(c.forest, g.NodeID, target, index); err != nil {
		g.Phase, g.Err = PhaseRejected, err
		return nil, fmt.Errorf("%w: %w", ErrRejected, err)
	}
	plan, err := tree.PlanMove(c.forest, g.NodeID, target, index)
	if err != nil {
		g.Phase, g.Err = PhaseRejected, err
		return nil, err
	}
	next, err := tree.MoveNode(c.forest, g.NodeID, target, index)
	if err != nil {
		g.Phase, g.Err = PhaseRejected, err
		return nil, err
	}
	c.forest = next
	g.Phase, g.Plan = PhasePlanned, plan

	syncer := c.syncer
	return func(ctx context.Context) Result {
		return syncer.CommitOrReconcile(ctx, plan)
	}, nil
}

// Finish settles a planned gesture with the result of its commit.
func (c *Controller) Finish(g *Gesture, res Result) error {
	if g == nil || g.Phase != PhasePlanned {
		return fmt.Errorf("%w: finish before drop", ErrGestureState)
	}
	g.Err = res.Err
	if res.Reconciled {
		g.Phase = PhaseReconciled
	} else {
		g.Phase = PhaseCommitted
	}
	c.Settle(res)
	return nil
}

// Settle applies a reconciled forest, if the result carries one.
func (c *Controller) Settle(res Result) {
	if res.Reconciled && res.Forest != nil {
		c.forest = res.Forest
	}
}

// Rename shows the new name at once and returns the store write.
func (c *Controller) Rename(id, name string) (Task, error) {
	if c.mutator == nil {
		return nil, ErrNoMutator
	}
	n := c.forest.Find(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", tree.ErrUnknownNode, id)
	}
	if n.Placeholder {
		return nil, tree.ErrPlaceholder
	}
	next, err := tree.RenameNode(c.forest, id, name)
	if err != nil {
		return nil, err
	}
	c.forest = next

	kind, syncer, mutator := n.Kind, c.syncer, c.mutator
	return func(ctx context.Context) Result {
		return syncer.Run(ctx, func(ctx context.Context) error {
			return mutator.Rename(ctx, kind, id, name)
		})
	}, nil
}

// Delete removes the node and its subtree from the view and returns the
// store write.
func (c *Controller) Delete(id string) (Task, error) {
	if c.mutator == nil {
		return nil, ErrNoMutator
	}
	n := c.forest.Find(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", tree.ErrUnknownNode, id)
	}
	if n.Placeholder {
		return nil, tree.ErrPlaceholder
	}
	next, err := tree.RemoveNode(c.forest, id)
	if err != nil {
		return nil, err
	}
	c.forest = next

	kind, syncer, mutator := n.Kind, c.syncer, c.mutator
	return func(ctx context.Context) Result {
		return syncer.Run(ctx, func(ctx context.Context) error {
			return mutator.Delete(ctx, kind, id)
		})
	}, nil
}

// BeginCreate appends a placeholder of kind under target for inline naming.
func (c *Controller) BeginCreate(target tree.Target, kind domain.NodeKind) (string, error) {
	next, id, err := tree.InsertPlaceholder(c.forest, target, kind, "")
	if err != nil {
		return "", err
	}
	c.forest = next
	return id, nil
}

// CancelCreate drops an unfinished placeholder.
func (c *Controller) CancelCreate(placeholderID string) error {
	next, err := tree.DiscardPlaceholder(c.forest, placeholderID)
	if err != nil {
		return err
	}
	c.forest = next
	return nil
}

// CompleteCreate names the placeholder and returns the store write. The
// result's Created node is swapped in by FinishCreate.
func (c *Controller) CompleteCreate(placeholderID, name string) (Task, error) {
	if c.mutator == nil {
		return nil, ErrNoMutator
	}
	p := c.forest.Find(placeholderID)
	if p == nil || !p.Placeholder {
		return nil, fmt.Errorf("%w: placeholder %s", tree.ErrUnknownNode, placeholderID)
	}
	next, err := tree.RenameNode(c.forest, placeholderID, name)
	if err != nil {
		return nil, err
	}
	c.forest = next

	projectID, parent, kind := c.syncer.ProjectID(), p.Parent, p.Kind
	syncer, mutator := c.syncer, c.mutator
	return func(ctx context.Context) Result {
		var created *tree.Node
		res := syncer.Run(ctx, func(ctx context.Context) error {
			var err error
			created, err = createEntity(ctx, mutator, projectID, kind, parent, name)
			return err
		})
		res.Created = created
		return res
	}, nil
}

// FinishCreate replaces the placeholder with the stored entity, or removes
// it when the create failed.
func (c *Controller) FinishCreate(placeholderID string, res Result) error {
	if res.Err == nil && res.Created != nil {
		next, err := tree.ResolvePlaceholder(c.forest, placeholderID, res.Created)
		if err != nil {
			return err
		}
		c.forest = next
		return nil
	}
	if res.Reconciled && res.Forest != nil {
		c.forest = res.Forest
		return nil
	}
	if c.forest.Find(placeholderID) != nil {
		return c.CancelCreate(placeholderID)
	}
	return nil
}

func createEntity(ctx context.Context, m Mutator, projectID string, kind domain.NodeKind, parent domain.ParentRef, name string) (*tree.Node, error) {
	switch kind {
	case domain.KindSuite:
		s := &domain.Suite{ProjectID: projectID, Name: name}
		if err := m.CreateSuite(ctx, s); err != nil {
			return nil, err
		}
		return tree.NodeFromSuite(*s), nil
	case domain.KindSection:
		s := &domain.Section{ProjectID: projectID, Name: name, Parent: parent}
		if err := m.CreateSection(ctx, s); err != nil {
			return nil, err
		}
		return tree.NodeFromSection(*s), nil
	case domain.KindTestCase:
		tc := &domain.TestCase{ProjectID: projectID, Title: name, Parent: parent}
		if err := m.CreateTestCase(ctx, tc); err != nil {
			return nil, err
		}
		return tree.NodeFromTestCase(*tc), nil
	}
	return nil, fmt.Errorf("unknown node kind %q", kind)
}
