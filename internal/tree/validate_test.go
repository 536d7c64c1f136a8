package tree

import (
	"testing"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDrop_Rules(t *testing.T) {
	f := sample(t)
	suite := func(id string) Target { return NodeTarget(domain.KindSuite, id) }
	section := func(id string) Target { return NodeTarget(domain.KindSection, id) }
	tc := func(id string) Target { return NodeTarget(domain.KindTestCase, id) }

	tests := []struct {
		name   string
		drag   string
		target Target
		index  int
		want   error
	}{
		{"section into section", "X", section("Y"), 0, nil},
		{"section to root", "X", RootTarget(), 0, nil},
		{"section into suite", "O", suite("P1"), 1, nil},
		{"test case into section", "U", section("Z"), 0, nil},
		{"test case to root", "t1", RootTarget(), 0, nil},
		{"suite reorder", "P2", RootTarget(), 0, nil},
		{"index past end is fine", "X", section("Y"), 99, nil},

		{"drop onto test case", "X", tc("t1"), 0, ErrDropOnLeaf},
		{"test case onto test case", "t2", tc("t1"), 0, ErrDropOnLeaf},
		{"suite into suite", "P1", suite("P2"), 0, ErrSuiteNotRoot},
		{"suite into section", "P1", section("O"), 0, ErrSuiteNotRoot},
		{"section into itself", "Y", section("Y"), 0, ErrDropIntoSelf},
		{"section into child", "Y", section("M"), 0, ErrDropIntoSelf},
		{"test case into suite", "t1", suite("P1"), 0, ErrParentKind},
		{"negative index", "X", section("Y"), -1, ErrNegativeIndex},
		{"unknown drag", "nope", RootTarget(), 0, ErrUnknownNode},
		{"unknown target", "X", section("nope"), 0, ErrUnknownNode},
		{"target kind mismatch", "X", suite("Y"), 0, ErrUnknownNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDrop(f, tt.drag, tt.target, tt.index)
			if tt.want == nil {
				assert.NoError(t, err)
				assert.True(t, CanDrop(f, tt.drag, tt.target, tt.index))
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, CanDrop(f, tt.drag, tt.target, tt.index))
		})
	}
}

func TestCheckDrop_PlaceholderNeverDragged(t *testing.T) {
	f, pid, err := InsertPlaceholder(sample(t), NodeTarget(domain.KindSection, "Z"), domain.KindSection, "New section")
	require.NoError(t, err)

	assert.ErrorIs(t, CheckDrop(f, pid, RootTarget(), 0), ErrPlaceholder)
	assert.ErrorIs(t, CheckDrop(f, "X", NodeTarget(domain.KindSection, pid), 0), ErrPlaceholder)
}

func TestCheckDrop_CycleRejectedForEveryDescendant(t *testing.T) {
	f := sample(t)
	for _, n := range f.Flatten() {
		for _, d := range f.Descendants(n.ID) {
			assert.False(t, CanDrop(f, n.ID, NodeTarget(d.Kind, d.ID), 0),
				"%s must not be droppable into its descendant %s", n.ID, d.ID)
		}
	}
}

func TestCheckDrop_LeafRejectsEverything(t *testing.T) {
	f := sample(t)
	for _, leaf := range f.Flatten() {
		if leaf.Kind != domain.KindTestCase {
			continue
		}
		for _, drag := range f.Flatten() {
			assert.False(t, CanDrop(f, drag.ID, NodeTarget(domain.KindTestCase, leaf.ID), 0))
		}
	}
}
