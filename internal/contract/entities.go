package contract

import (
	"time"

	"github.com/alexanderramin/casetree/internal/domain"
)

// Suite, Section and TestCase are the JSON shapes of stored entities served
// by the list endpoints and accepted by the create endpoints.
type Suite struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Section struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	Name         string    `json:"name"`
	SuiteID      *string   `json:"suiteId"`
	ParentID     *string   `json:"parentId"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type TestCase struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Priority     string    `json:"priority"`
	SectionID    *string   `json:"sectionId"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RenameRequest is the body of a rename.
type RenameRequest struct {
	Name string `json:"name"`
}

// ErrorResponse is returned with every non-2xx status. Code is stable and
// machine readable; Error is for humans.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func FromSuite(s *domain.Suite) Suite {
	return Suite{
		ID:           s.ID,
		ProjectID:    s.ProjectID,
		Name:         s.Name,
		DisplayOrder: s.DisplayOrder,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (s Suite) Domain() domain.Suite {
	return domain.Suite{
		ID:           s.ID,
		ProjectID:    s.ProjectID,
		Name:         s.Name,
		DisplayOrder: s.DisplayOrder,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func FromSection(s *domain.Section) Section {
	return Section{
		ID:           s.ID,
		ProjectID:    s.ProjectID,
		Name:         s.Name,
		SuiteID:      s.Parent.SuiteID(),
		ParentID:     s.Parent.SectionID(),
		DisplayOrder: s.DisplayOrder,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (s Section) Domain() (domain.Section, error) {
	parent, err := domain.ParentFromFields(s.SuiteID, s.ParentID)
	if err != nil {
		return domain.Section{}, err
	}
	return domain.Section{
		ID:           s.ID,
		ProjectID:    s.ProjectID,
		Name:         s.Name,
		Parent:       parent,
		DisplayOrder: s.DisplayOrder,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}, nil
}

func FromTestCase(tc *domain.TestCase) TestCase {
	return TestCase{
		ID:           tc.ID,
		ProjectID:    tc.ProjectID,
		Title:        tc.Title,
		Description:  tc.Description,
		Priority:     string(tc.Priority),
		SectionID:    tc.Parent.SectionID(),
		DisplayOrder: tc.DisplayOrder,
		CreatedAt:    tc.CreatedAt,
		UpdatedAt:    tc.UpdatedAt,
	}
}

func (tc TestCase) Domain() domain.TestCase {
	parent := domain.Root()
	if tc.SectionID != nil {
		parent = domain.UnderSection(*tc.SectionID)
	}
	return domain.TestCase{
		ID:           tc.ID,
		ProjectID:    tc.ProjectID,
		Title:        tc.Title,
		Description:  tc.Description,
		Priority:     domain.Priority(tc.Priority),
		Parent:       parent,
		DisplayOrder: tc.DisplayOrder,
		CreatedAt:    tc.CreatedAt,
		UpdatedAt:    tc.UpdatedAt,
	}
}

// Project is the JSON shape of a project.
type Project struct {
	ID        string    `json:"id"`
	ShortID   string    `json:"shortId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromProject(p *domain.Project) Project {
	return Project{ID: p.ID, ShortID: p.ShortID, Name: p.Name, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

func (p Project) Domain() *domain.Project {
	return &domain.Project{ID: p.ID, ShortID: p.ShortID, Name: p.Name, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}
