package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/casetree/internal/contract"
	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/tree"
)

type reorderService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewReorderService(uow db.UnitOfWork, observers ...UseCaseObserver) ReorderService {
	return &reorderService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// reorderWrite is one validated item with its resolved scopes.
type reorderWrite struct {
	item   contract.ReorderItem
	parent domain.ParentRef // destination, equal to from when not reparenting
	from   tree.ScopeKey
}

// Apply writes every item of req in one transaction. After the writes each
// scope the batch touched (left or entered) must be numbered 0..n-1 and the
// project must still form a forest; otherwise the whole batch is rolled back.
func (s *reorderService) Apply(ctx context.Context, req contract.ReorderRequest) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project": req.ProjectID, "items": len(req.Items)}
	defer func() { observe(ctx, s.observer, "reorder", startedAt, fields, err) }()

	if req.ProjectID == "" {
		return fmt.Errorf("%w: project id is required", ErrInvalidReorder)
	}
	if len(req.Items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(req.Items))
	for _, it := range req.Items {
		if it.ID == "" {
			return fmt.Errorf("%w: item without id", ErrInvalidReorder)
		}
		if seen[it.ID] {
			return fmt.Errorf("%w: %s listed twice", ErrInvalidReorder, it.ID)
		}
		seen[it.ID] = true
		if it.DisplayOrder < 0 {
			return fmt.Errorf("%w: %s has negative display order", ErrInvalidReorder, it.ID)
		}
		switch it.Type {
		case domain.KindSuite, domain.KindSection, domain.KindTestCase:
		default:
			return fmt.Errorf("%w: %s has unknown type %q", ErrInvalidReorder, it.ID, it.Type)
		}
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		writes := make([]reorderWrite, 0, len(req.Items))
		touched := make(map[tree.ScopeKey]bool)

		for _, it := range req.Items {
			w, err := r.resolveWrite(ctx, req.ProjectID, it)
			if err != nil {
				return err
			}
			touched[w.from] = true
			touched[tree.ScopeKey{Kind: it.Type, Parent: w.parent}] = true
			writes = append(writes, w)
		}

		for _, w := range writes {
			if err := r.write(ctx, w); err != nil {
				return err
			}
		}

		fields["touched_scopes"] = len(touched)
		for scope := range touched {
			if err := r.checkDense(ctx, req.ProjectID, scope); err != nil {
				return err
			}
		}
		return r.checkForest(ctx, req.ProjectID)
	})
}

// resolveWrite loads the item's entity, checks it belongs to projectID and
// resolves where it ends up.
func (r txRepos) resolveWrite(ctx context.Context, projectID string, it contract.ReorderItem) (reorderWrite, error) {
	var owner string
	var current domain.ParentRef
	switch it.Type {
	case domain.KindSuite:
		s, err := r.suites.GetByID(ctx, it.ID)
		if err != nil {
			return reorderWrite{}, fmt.Errorf("%w: %w", ErrInvalidReorder, err)
		}
		owner, current = s.ProjectID, domain.Root()
	case domain.KindSection:
		s, err := r.sections.GetByID(ctx, it.ID)
		if err != nil {
			return reorderWrite{}, fmt.Errorf("%w: %w", ErrInvalidReorder, err)
		}
		owner, current = s.ProjectID, s.Parent
	case domain.KindTestCase:
		tc, err := r.testCases.GetByID(ctx, it.ID)
		if err != nil {
			return reorderWrite{}, fmt.Errorf("%w: %w", ErrInvalidReorder, err)
		}
		owner, current = tc.ProjectID, tc.Parent
	}
	if owner != projectID {
		return reorderWrite{}, fmt.Errorf("%w: %s %s belongs to another project", ErrInvalidReorder, it.Type, it.ID)
	}

	w := reorderWrite{item: it, parent: current, from: tree.ScopeKey{Kind: it.Type, Parent: current}}
	if !it.Reparent {
		return w, nil
	}
	parent, err := it.Parent()
	if err != nil {
		return reorderWrite{}, fmt.Errorf("%w: %w", ErrInvalidParent, err)
	}
	if err := r.checkParent(ctx, projectID, it.Type, parent); err != nil {
		return reorderWrite{}, err
	}
	if it.Type == domain.KindSection && parent.Kind() == domain.ParentSection && parent.ID() == it.ID {
		return reorderWrite{}, fmt.Errorf("%w: section %s cannot contain itself", ErrInvalidParent, it.ID)
	}
	w.parent = parent
	return w, nil
}

func (r txRepos) write(ctx context.Context, w reorderWrite) error {
	it := w.item
	switch it.Type {
	case domain.KindSuite:
		return r.suites.SetOrder(ctx, it.ID, it.DisplayOrder)
	case domain.KindSection:
		if it.Reparent {
			return r.sections.Move(ctx, it.ID, w.parent, it.DisplayOrder)
		}
		return r.sections.SetOrder(ctx, it.ID, it.DisplayOrder)
	case domain.KindTestCase:
		if it.Reparent {
			return r.testCases.Move(ctx, it.ID, w.parent, it.DisplayOrder)
		}
		return r.testCases.SetOrder(ctx, it.ID, it.DisplayOrder)
	}
	return fmt.Errorf("%w: unknown type %q", ErrInvalidReorder, it.Type)
}

func (r txRepos) checkDense(ctx context.Context, projectID string, scope tree.ScopeKey) error {
	var orders []int
	switch scope.Kind {
	case domain.KindSuite:
		suites, err := r.suites.ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		for _, s := range suites {
			orders = append(orders, s.DisplayOrder)
		}
	case domain.KindSection:
		sections, err := r.sections.ListScope(ctx, projectID, scope.Parent)
		if err != nil {
			return err
		}
		for _, s := range sections {
			orders = append(orders, s.DisplayOrder)
		}
	case domain.KindTestCase:
		cases, err := r.testCases.ListScope(ctx, projectID, scope.Parent)
		if err != nil {
			return err
		}
		for _, tc := range cases {
			orders = append(orders, tc.DisplayOrder)
		}
	}
	// Lists come back sorted by display_order.
	for i, o := range orders {
		if o != i {
			return fmt.Errorf("%w: %s has orders %v", ErrNotDense, scope, orders)
		}
	}
	return nil
}

// checkForest rebuilds the project's tree to catch section cycles the batch
// may have introduced.
func (r txRepos) checkForest(ctx context.Context, projectID string) error {
	sections, err := r.sections.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	flat := make([]domain.Section, len(sections))
	for i, s := range sections {
		flat[i] = *s
	}
	if _, err := tree.Build(nil, flat, nil); err != nil {
		if errors.Is(err, tree.ErrMalformedForest) {
			return fmt.Errorf("%w: %w", ErrInvalidParent, err)
		}
		return err
	}
	return nil
}
