package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/casetree/internal/domain"
)

// ValidateSchema checks the document before conversion and returns every
// problem found, each naming its position in the tree.
func ValidateSchema(schema *Schema) []error {
	var errs []error

	if strings.TrimSpace(schema.Project.Name) == "" {
		errs = append(errs, fmt.Errorf("project.name is required"))
	}
	p := domain.Project{ShortID: strings.ToUpper(strings.TrimSpace(schema.Project.ShortID))}
	if err := p.ValidateShortID(); err != nil {
		errs = append(errs, fmt.Errorf("project.short_id: %w", err))
	}
	if schema.Defaults != nil && schema.Defaults.Priority != "" && !domain.ValidPriorities[schema.Defaults.Priority] {
		errs = append(errs, fmt.Errorf("defaults.priority: invalid value %q", schema.Defaults.Priority))
	}

	for i, s := range schema.Suites {
		at := fmt.Sprintf("suites[%d]", i)
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", at))
		}
		errs = append(errs, validateSections(at+".sections", s.Sections)...)
	}
	errs = append(errs, validateSections("sections", schema.Sections)...)
	errs = append(errs, validateCases("cases", schema.Cases)...)
	return errs
}

func validateSections(at string, sections []SectionImport) []error {
	var errs []error
	for i, s := range sections {
		here := fmt.Sprintf("%s[%d]", at, i)
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", here))
		}
		errs = append(errs, validateSections(here+".sections", s.Sections)...)
		errs = append(errs, validateCases(here+".cases", s.Cases)...)
	}
	return errs
}

func validateCases(at string, cases []CaseImport) []error {
	var errs []error
	for i, c := range cases {
		here := fmt.Sprintf("%s[%d]", at, i)
		if strings.TrimSpace(c.Title) == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", here))
		}
		if c.Priority != "" && !domain.ValidPriorities[c.Priority] {
			errs = append(errs, fmt.Errorf("%s.priority: invalid value %q", here, c.Priority))
		}
	}
	return errs
}
