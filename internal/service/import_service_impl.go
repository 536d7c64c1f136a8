package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/importer"
	"github.com/alexanderramin/casetree/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportProject(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importSchema(ctx, schema)
}

func (s *importService) ImportProjectFromSchema(ctx context.Context, schema *importer.Schema) (*ImportResult, error) {
	return s.importSchema(ctx, schema)
}

func (s *importService) importSchema(ctx context.Context, schema *importer.Schema) (res *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"short_id": schema.Project.ShortID}
	defer func() { observe(ctx, s.observer, "import-project", startedAt, fields, err) }()

	if errs := importer.ValidateSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}
	generated := importer.Convert(schema)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		if _, err := r.projects.GetByShortID(ctx, generated.Project.ShortID); err == nil {
			return fmt.Errorf("%w: short ID %s is already used", ErrInvalidProject, generated.Project.ShortID)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := r.projects.Create(ctx, generated.Project); err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		for _, suite := range generated.Suites {
			if err := r.suites.Create(ctx, suite); err != nil {
				return fmt.Errorf("creating suite %q: %w", suite.Name, err)
			}
		}
		for _, section := range generated.Sections {
			if err := r.sections.Create(ctx, section); err != nil {
				return fmt.Errorf("creating section %q: %w", section.Name, err)
			}
		}
		for _, tc := range generated.TestCases {
			if err := r.testCases.Create(ctx, tc); err != nil {
				return fmt.Errorf("creating test case %q: %w", tc.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields["suites"] = len(generated.Suites)
	fields["sections"] = len(generated.Sections)
	fields["test_cases"] = len(generated.TestCases)
	return &ImportResult{
		Project:       generated.Project,
		SuiteCount:    len(generated.Suites),
		SectionCount:  len(generated.Sections),
		TestCaseCount: len(generated.TestCases),
	}, nil
}

func formatValidationErrors(errs []error) error {
	var b strings.Builder
	fmt.Fprintf(&b, "import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		b.WriteString("\n  - " + e.Error())
	}
	return fmt.Errorf("%w: %s", ErrInvalidImport, b.String())
}
