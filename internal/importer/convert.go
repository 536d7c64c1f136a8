package importer

import (
	"strings"
	"time"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/google/uuid"
)

// Generated is a converted document ready for persistence, parents before
// children and every scope numbered 0..n-1.
type Generated struct {
	Project   *domain.Project
	Suites    []*domain.Suite
	Sections  []*domain.Section
	TestCases []*domain.TestCase
}

// Convert turns a validated schema into domain entities with fresh ids.
// Call ValidateSchema first; Convert assumes the schema is valid.
func Convert(schema *Schema) *Generated {
	now := time.Now().UTC()
	g := &Generated{
		Project: &domain.Project{
			ID:        uuid.New().String(),
			ShortID:   strings.ToUpper(strings.TrimSpace(schema.Project.ShortID)),
			Name:      strings.TrimSpace(schema.Project.Name),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	c := converter{g: g, now: now}
	if schema.Defaults != nil {
		c.priority = schema.Defaults.Priority
	}

	for i, s := range schema.Suites {
		suite := &domain.Suite{
			ID:           uuid.New().String(),
			ProjectID:    g.Project.ID,
			Name:         strings.TrimSpace(s.Name),
			DisplayOrder: i,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		g.Suites = append(g.Suites, suite)
		c.sections(domain.UnderSuite(suite.ID), s.Sections)
	}
	c.sections(domain.Root(), schema.Sections)
	c.cases(domain.Root(), schema.Cases)
	return g
}

type converter struct {
	g        *Generated
	now      time.Time
	priority string
}

func (c converter) sections(parent domain.ParentRef, sections []SectionImport) {
	for i, s := range sections {
		section := &domain.Section{
			ID:           uuid.New().String(),
			ProjectID:    c.g.Project.ID,
			Name:         strings.TrimSpace(s.Name),
			Parent:       parent,
			DisplayOrder: i,
			CreatedAt:    c.now,
			UpdatedAt:    c.now,
		}
		c.g.Sections = append(c.g.Sections, section)
		c.sections(domain.UnderSection(section.ID), s.Sections)
		c.cases(domain.UnderSection(section.ID), s.Cases)
	}
}

func (c converter) cases(parent domain.ParentRef, cases []CaseImport) {
	for i, tc := range cases {
		c.g.TestCases = append(c.g.TestCases, &domain.TestCase{
			ID:           uuid.New().String(),
			ProjectID:    c.g.Project.ID,
			Title:        strings.TrimSpace(tc.Title),
			Description:  tc.Description,
			Priority:     domain.Priority(domain.CoalesceStr(tc.Priority, c.priority, string(domain.PriorityMedium))),
			Parent:       parent,
			DisplayOrder: i,
			CreatedAt:    c.now,
			UpdatedAt:    c.now,
		})
	}
}
