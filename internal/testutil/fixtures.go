package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/google/uuid"
)

var testShortIDCounter atomic.Int64

// Project options
type ProjectOption func(*domain.Project)

func WithShortID(id string) ProjectOption {
	return func(p *domain.Project) {
		p.ShortID = id
	}
}

// defaultShortID derives a unique, valid short id from name: up to three
// letters padded with X, then a counter.
func defaultShortID(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper) && len(letters) < 3; i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	n := testShortIDCounter.Add(1) % 10000
	return fmt.Sprintf("%s%02d", string(letters), n)
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.Project{
		ID:        uuid.New().String(),
		ShortID:   defaultShortID(name),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Suite options
type SuiteOption func(*domain.Suite)

func WithSuiteOrder(order int) SuiteOption {
	return func(s *domain.Suite) {
		s.DisplayOrder = order
	}
}

func NewTestSuite(projectID, name string, opts ...SuiteOption) *domain.Suite {
	now := time.Now().UTC().Truncate(time.Second)
	s := &domain.Suite{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Section options
type SectionOption func(*domain.Section)

func InSuite(suiteID string) SectionOption {
	return func(s *domain.Section) {
		s.Parent = domain.UnderSuite(suiteID)
	}
}

func InParentSection(sectionID string) SectionOption {
	return func(s *domain.Section) {
		s.Parent = domain.UnderSection(sectionID)
	}
}

func WithSectionOrder(order int) SectionOption {
	return func(s *domain.Section) {
		s.DisplayOrder = order
	}
}

// NewTestSection returns a root-level section unless an option places it.
func NewTestSection(projectID, name string, opts ...SectionOption) *domain.Section {
	now := time.Now().UTC().Truncate(time.Second)
	s := &domain.Section{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		Parent:    domain.Root(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Test case options
type TestCaseOption func(*domain.TestCase)

func InSection(sectionID string) TestCaseOption {
	return func(tc *domain.TestCase) {
		tc.Parent = domain.UnderSection(sectionID)
	}
}

func WithCaseOrder(order int) TestCaseOption {
	return func(tc *domain.TestCase) {
		tc.DisplayOrder = order
	}
}

func WithPriority(p domain.Priority) TestCaseOption {
	return func(tc *domain.TestCase) {
		tc.Priority = p
	}
}

func WithDescription(d string) TestCaseOption {
	return func(tc *domain.TestCase) {
		tc.Description = d
	}
}

// NewTestCase returns an unsectioned medium-priority test case unless an
// option says otherwise.
func NewTestCase(projectID, title string, opts ...TestCaseOption) *domain.TestCase {
	now := time.Now().UTC().Truncate(time.Second)
	tc := &domain.TestCase{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Title:     title,
		Priority:  domain.PriorityMedium,
		Parent:    domain.Root(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}
