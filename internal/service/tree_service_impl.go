package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/repository"
	"github.com/google/uuid"
)

type treeService struct {
	suites    repository.SuiteRepo
	sections  repository.SectionRepo
	testCases repository.TestCaseRepo
	uow       db.UnitOfWork
	observer  UseCaseObserver
}

func NewTreeService(
	suites repository.SuiteRepo,
	sections repository.SectionRepo,
	testCases repository.TestCaseRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) TreeService {
	return &treeService{
		suites:    suites,
		sections:  sections,
		testCases: testCases,
		uow:       uow,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *treeService) ListSuites(ctx context.Context, projectID string) ([]*domain.Suite, error) {
	return s.suites.ListByProject(ctx, projectID)
}

func (s *treeService) ListSections(ctx context.Context, projectID string) ([]*domain.Section, error) {
	return s.sections.ListByProject(ctx, projectID)
}

func (s *treeService) ListTestCases(ctx context.Context, projectID string) ([]*domain.TestCase, error) {
	return s.testCases.ListByProject(ctx, projectID)
}

func (s *treeService) CreateSuite(ctx context.Context, suite *domain.Suite) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project": suite.ProjectID}
	defer func() { observe(ctx, s.observer, "create-suite", startedAt, fields, err) }()

	if suite.Name, err = cleanName(suite.Name); err != nil {
		return err
	}
	stamp(&suite.ID, &suite.CreatedAt, &suite.UpdatedAt)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		if _, err := r.projects.GetByID(ctx, suite.ProjectID); err != nil {
			return err
		}
		n, err := r.suites.Count(ctx, suite.ProjectID)
		if err != nil {
			return err
		}
		suite.DisplayOrder = n
		fields["display_order"] = n
		return r.suites.Create(ctx, suite)
	})
}

func (s *treeService) CreateSection(ctx context.Context, section *domain.Section) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project": section.ProjectID, "parent": section.Parent.String()}
	defer func() { observe(ctx, s.observer, "create-section", startedAt, fields, err) }()

	if section.Name, err = cleanName(section.Name); err != nil {
		return err
	}
	stamp(&section.ID, &section.CreatedAt, &section.UpdatedAt)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		if _, err := r.projects.GetByID(ctx, section.ProjectID); err != nil {
			return err
		}
		if err := r.checkParent(ctx, section.ProjectID, domain.KindSection, section.Parent); err != nil {
			return err
		}
		n, err := r.sections.CountScope(ctx, section.ProjectID, section.Parent)
		if err != nil {
			return err
		}
		section.DisplayOrder = n
		fields["display_order"] = n
		return r.sections.Create(ctx, section)
	})
}

func (s *treeService) CreateTestCase(ctx context.Context, tc *domain.TestCase) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project": tc.ProjectID, "parent": tc.Parent.String()}
	defer func() { observe(ctx, s.observer, "create-test-case", startedAt, fields, err) }()

	if tc.Title, err = cleanName(tc.Title); err != nil {
		return err
	}
	if tc.Priority == "" {
		tc.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriorities[string(tc.Priority)] {
		return fmt.Errorf("invalid priority %q (want low|medium|high|critical)", tc.Priority)
	}
	stamp(&tc.ID, &tc.CreatedAt, &tc.UpdatedAt)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		if _, err := r.projects.GetByID(ctx, tc.ProjectID); err != nil {
			return err
		}
		if err := r.checkParent(ctx, tc.ProjectID, domain.KindTestCase, tc.Parent); err != nil {
			return err
		}
		n, err := r.testCases.CountScope(ctx, tc.ProjectID, tc.Parent)
		if err != nil {
			return err
		}
		tc.DisplayOrder = n
		fields["display_order"] = n
		return r.testCases.Create(ctx, tc)
	})
}

func (s *treeService) Rename(ctx context.Context, kind domain.NodeKind, id, name string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"kind": string(kind), "id": id}
	defer func() { observe(ctx, s.observer, "rename", startedAt, fields, err) }()

	if name, err = cleanName(name); err != nil {
		return err
	}
	switch kind {
	case domain.KindSuite:
		return s.suites.Rename(ctx, id, name)
	case domain.KindSection:
		return s.sections.Rename(ctx, id, name)
	case domain.KindTestCase:
		return s.testCases.Rename(ctx, id, name)
	}
	return fmt.Errorf("unknown node kind %q", kind)
}

// Delete removes the node (and, through foreign keys, its subtree) and
// renumbers the siblings it leaves behind.
func (s *treeService) Delete(ctx context.Context, kind domain.NodeKind, id string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"kind": string(kind), "id": id}
	defer func() { observe(ctx, s.observer, "delete", startedAt, fields, err) }()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		switch kind {
		case domain.KindSuite:
			suite, err := r.suites.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := r.suites.Delete(ctx, id); err != nil {
				return err
			}
			rest, err := r.suites.ListByProject(ctx, suite.ProjectID)
			if err != nil {
				return err
			}
			return compact(ctx, rest, func(s *domain.Suite) (string, int) { return s.ID, s.DisplayOrder }, r.suites.SetOrder)

		case domain.KindSection:
			section, err := r.sections.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := r.sections.Delete(ctx, id); err != nil {
				return err
			}
			rest, err := r.sections.ListScope(ctx, section.ProjectID, section.Parent)
			if err != nil {
				return err
			}
			return compact(ctx, rest, func(s *domain.Section) (string, int) { return s.ID, s.DisplayOrder }, r.sections.SetOrder)

		case domain.KindTestCase:
			tc, err := r.testCases.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := r.testCases.Delete(ctx, id); err != nil {
				return err
			}
			rest, err := r.testCases.ListScope(ctx, tc.ProjectID, tc.Parent)
			if err != nil {
				return err
			}
			return compact(ctx, rest, func(tc *domain.TestCase) (string, int) { return tc.ID, tc.DisplayOrder }, r.testCases.SetOrder)
		}
		return fmt.Errorf("unknown node kind %q", kind)
	})
}

// compact renumbers an ordered scope to 0..n-1, writing only changed rows.
func compact[T any](ctx context.Context, items []T, key func(T) (string, int), setOrder func(context.Context, string, int) error) error {
	for i, it := range items {
		id, order := key(it)
		if order == i {
			continue
		}
		if err := setOrder(ctx, id, i); err != nil {
			return err
		}
	}
	return nil
}

// stamp fills a fresh id and creation timestamps.
func stamp(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.New().String()
	}
	now := time.Now().UTC()
	*createdAt = now
	*updatedAt = now
}
