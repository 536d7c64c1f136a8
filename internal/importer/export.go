package importer

import (
	"sort"

	"github.com/alexanderramin/casetree/internal/domain"
)

// Export builds the document for a stored project. Siblings are written in
// display order; entities whose parent is missing land at the root.
func Export(p *domain.Project, suites []domain.Suite, sections []domain.Section, testCases []domain.TestCase) *Schema {
	sectionsBy := make(map[domain.ParentRef][]domain.Section)
	sectionIDs := make(map[string]bool, len(sections))
	for _, s := range sections {
		sectionIDs[s.ID] = true
	}
	suiteIDs := make(map[string]bool, len(suites))
	for _, s := range suites {
		suiteIDs[s.ID] = true
	}
	for _, s := range sections {
		parent := s.Parent
		if (parent.Kind() == domain.ParentSuite && !suiteIDs[parent.ID()]) ||
			(parent.Kind() == domain.ParentSection && !sectionIDs[parent.ID()]) {
			parent = domain.Root()
		}
		sectionsBy[parent] = append(sectionsBy[parent], s)
	}
	casesBy := make(map[domain.ParentRef][]domain.TestCase)
	for _, tc := range testCases {
		parent := tc.Parent
		if parent.Kind() != domain.ParentSection || !sectionIDs[parent.ID()] {
			parent = domain.Root()
		}
		casesBy[parent] = append(casesBy[parent], tc)
	}

	e := exporter{sections: sectionsBy, cases: casesBy, seen: make(map[string]bool)}
	schema := &Schema{Project: ProjectImport{ShortID: p.ShortID, Name: p.Name}}

	ordered := append([]domain.Suite(nil), suites...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].DisplayOrder < ordered[j].DisplayOrder })
	for _, s := range ordered {
		schema.Suites = append(schema.Suites, SuiteImport{Name: s.Name, Sections: e.sectionsUnder(domain.UnderSuite(s.ID))})
	}
	schema.Sections = e.sectionsUnder(domain.Root())
	schema.Cases = e.casesUnder(domain.Root())
	return schema
}

type exporter struct {
	sections map[domain.ParentRef][]domain.Section
	cases    map[domain.ParentRef][]domain.TestCase
	seen     map[string]bool // guards against section cycles in bad data
}

func (e exporter) sectionsUnder(parent domain.ParentRef) []SectionImport {
	list := e.sections[parent]
	sort.SliceStable(list, func(i, j int) bool { return list[i].DisplayOrder < list[j].DisplayOrder })
	var out []SectionImport
	for _, s := range list {
		if e.seen[s.ID] {
			continue
		}
		e.seen[s.ID] = true
		out = append(out, SectionImport{
			Name:     s.Name,
			Sections: e.sectionsUnder(domain.UnderSection(s.ID)),
			Cases:    e.casesUnder(domain.UnderSection(s.ID)),
		})
	}
	return out
}

func (e exporter) casesUnder(parent domain.ParentRef) []CaseImport {
	list := e.cases[parent]
	sort.SliceStable(list, func(i, j int) bool { return list[i].DisplayOrder < list[j].DisplayOrder })
	out := make([]CaseImport, 0, len(list))
	for _, tc := range list {
		c := CaseImport{Title: tc.Title, Description: tc.Description}
		if tc.Priority != domain.PriorityMedium {
			c.Priority = string(tc.Priority)
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
