package domain

import "fmt"

// ParentKind tags which variant a ParentRef holds.
type ParentKind int

const (
	ParentRoot ParentKind = iota
	ParentSuite
	ParentSection
)

func (k ParentKind) String() string {
	switch k {
	case ParentSuite:
		return "suite"
	case ParentSection:
		return "section"
	default:
		return "root"
	}
}

// ParentRef is a tagged union: Root | UnderSuite(id) | UnderSection(id).
// The fields are unexported so a section can never reference a suite and a
// parent section at the same time. The zero value is Root, and ParentRef is
// comparable, so it can key maps.
type ParentRef struct {
	kind ParentKind
	id   string
}

// Root returns the reference for a node at the top of the forest.
func Root() ParentRef { return ParentRef{} }

// UnderSuite returns a reference to a parent suite.
func UnderSuite(id string) ParentRef { return ParentRef{kind: ParentSuite, id: id} }

// UnderSection returns a reference to a parent section.
func UnderSection(id string) ParentRef { return ParentRef{kind: ParentSection, id: id} }

// ParentFromFields builds a ParentRef from the nullable column pair used by
// storage and the wire format. Both set is rejected.
func ParentFromFields(suiteID, parentID *string) (ParentRef, error) {
	switch {
	case suiteID != nil && parentID != nil:
		return ParentRef{}, fmt.Errorf("suite %q and parent section %q are mutually exclusive", *suiteID, *parentID)
	case suiteID != nil:
		return UnderSuite(*suiteID), nil
	case parentID != nil:
		return UnderSection(*parentID), nil
	}
	return Root(), nil
}

func (p ParentRef) Kind() ParentKind { return p.kind }
func (p ParentRef) ID() string       { return p.id }
func (p ParentRef) IsRoot() bool     { return p.kind == ParentRoot }

// SuiteID returns the suite id as a nullable value for storage.
func (p ParentRef) SuiteID() *string {
	if p.kind != ParentSuite {
		return nil
	}
	id := p.id
	return &id
}

// SectionID returns the parent section id as a nullable value for storage.
func (p ParentRef) SectionID() *string {
	if p.kind != ParentSection {
		return nil
	}
	id := p.id
	return &id
}

// ValidFor reports whether a node of the given kind may hang from p.
func (p ParentRef) ValidFor(kind NodeKind) bool {
	switch kind {
	case KindSuite:
		return p.kind == ParentRoot
	case KindSection:
		return true
	case KindTestCase:
		return p.kind != ParentSuite
	}
	return false
}

func (p ParentRef) String() string {
	if p.kind == ParentRoot {
		return "root"
	}
	return p.kind.String() + ":" + p.id
}
