package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/repository"
)

// txRepos bundles the tree repositories bound to one DBTX.
type txRepos struct {
	projects  repository.ProjectRepo
	suites    repository.SuiteRepo
	sections  repository.SectionRepo
	testCases repository.TestCaseRepo
}

func reposFor(tx db.DBTX) txRepos {
	return txRepos{
		projects:  repository.NewSQLiteProjectRepo(tx),
		suites:    repository.NewSQLiteSuiteRepo(tx),
		sections:  repository.NewSQLiteSectionRepo(tx),
		testCases: repository.NewSQLiteTestCaseRepo(tx),
	}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// checkParent verifies that parent exists in projectID and may hold a node
// of kind.
func (r txRepos) checkParent(ctx context.Context, projectID string, kind domain.NodeKind, parent domain.ParentRef) error {
	if !parent.ValidFor(kind) {
		return fmt.Errorf("%w: %s cannot sit under %s", ErrInvalidParent, kind, parent)
	}
	var owner string
	switch parent.Kind() {
	case domain.ParentRoot:
		return nil
	case domain.ParentSuite:
		s, err := r.suites.GetByID(ctx, parent.ID())
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidParent, parent, err)
		}
		owner = s.ProjectID
	case domain.ParentSection:
		s, err := r.sections.GetByID(ctx, parent.ID())
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidParent, parent, err)
		}
		owner = s.ProjectID
	}
	if owner != projectID {
		return fmt.Errorf("%w: %s belongs to another project", ErrInvalidParent, parent)
	}
	return nil
}

// observe reports a finished use case. Callers defer it from a closure so
// the named error result is read after the body ran.
func observe(ctx context.Context, obs UseCaseObserver, name string, startedAt time.Time, fields map[string]any, err error) {
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}
