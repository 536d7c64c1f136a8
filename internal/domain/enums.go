package domain

import "fmt"

// NodeKind identifies one of the three entity kinds in a test repository.
// The string values double as the wire names used by the reorder endpoint.
type NodeKind string

const (
	KindSuite    NodeKind = "suite"
	KindSection  NodeKind = "section"
	KindTestCase NodeKind = "testCase"
)

// ParseNodeKind accepts the wire names plus a few CLI-friendly aliases.
func ParseNodeKind(s string) (NodeKind, error) {
	switch s {
	case "suite":
		return KindSuite, nil
	case "section":
		return KindSection, nil
	case "testCase", "test-case", "test_case", "case":
		return KindTestCase, nil
	}
	return "", fmt.Errorf("unknown node kind %q (want suite|section|testCase)", s)
}

// IsLeaf reports whether nodes of this kind can never have children.
func (k NodeKind) IsLeaf() bool { return k == KindTestCase }

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ValidPriorities is the canonical set of accepted priority strings.
var ValidPriorities = map[string]bool{
	"low": true, "medium": true, "high": true, "critical": true,
}
