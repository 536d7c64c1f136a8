package contract

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewReorderRequest_ReparentedSection(t *testing.T) {
	y := domain.UnderSection("Y")
	plan := tree.Plan{
		NodeID: "X",
		Moves: []tree.Update{
			{ID: "X", Kind: domain.KindSection, DisplayOrder: 0, Parent: &y},
			{ID: "M", Kind: domain.KindSection, DisplayOrder: 1},
		},
		Reindex: []tree.Update{{ID: "Z", Kind: domain.KindSection, DisplayOrder: 0}},
	}

	req := NewReorderRequest("proj-1", plan)

	assert.Equal(t, "proj-1", req.ProjectID)
	require.Len(t, req.Items, 3)
	assert.Equal(t, ReorderItem{ID: "X", Type: domain.KindSection, DisplayOrder: 0, Reparent: true, ParentID: strPtr("Y")}, req.Items[0])
	assert.Equal(t, ReorderItem{ID: "M", Type: domain.KindSection, DisplayOrder: 1}, req.Items[1])
	assert.Equal(t, "Z", req.Items[2].ID)
}

func TestNewReorderRequest_TestCaseToRoot(t *testing.T) {
	root := domain.Root()
	req := NewReorderRequest("p", tree.Plan{Moves: []tree.Update{
		{ID: "c", Kind: domain.KindTestCase, DisplayOrder: 3, Parent: &root},
	}})

	item := req.Items[0]
	assert.True(t, item.Reparent)
	assert.Nil(t, item.SectionID)
	p, err := item.Parent()
	require.NoError(t, err)
	assert.True(t, p.IsRoot())
}

func TestEncode_WireShape(t *testing.T) {
	req := ReorderRequest{ProjectID: "p", Items: []ReorderItem{
		{ID: "c", Type: domain.KindTestCase, DisplayOrder: 0, Reparent: true, SectionID: strPtr("s")},
		{ID: "d", Type: domain.KindTestCase, DisplayOrder: 1},
	}}
	var buf bytes.Buffer
	require.NoError(t, req.Encode(&buf))

	assert.JSONEq(t, `{
		"projectId": "p",
		"items": [
			{"id": "c", "type": "testCase", "displayOrder": 0, "reparent": true, "sectionId": "s"},
			{"id": "d", "type": "testCase", "displayOrder": 1}
		]
	}`, buf.String())

	decoded, err := DecodeReorderRequest(&buf)
	require.NoError(t, err)
	assert.Equal(t, req, decoded)
}

func TestDecodeReorderRequest_RejectsUnknownFields(t *testing.T) {
	_, err := DecodeReorderRequest(strings.NewReader(`{"projectId":"p","items":[],"force":true}`))
	assert.Error(t, err)
}

func TestReorderItem_Parent(t *testing.T) {
	tests := []struct {
		name    string
		item    ReorderItem
		want    domain.ParentRef
		wantErr bool
	}{
		{"suite", ReorderItem{Type: domain.KindSuite}, domain.Root(), false},
		{"suite with parent", ReorderItem{Type: domain.KindSuite, SuiteID: strPtr("s")}, domain.ParentRef{}, true},
		{"section under suite", ReorderItem{Type: domain.KindSection, SuiteID: strPtr("s")}, domain.UnderSuite("s"), false},
		{"section under section", ReorderItem{Type: domain.KindSection, ParentID: strPtr("x")}, domain.UnderSection("x"), false},
		{"section both parents", ReorderItem{Type: domain.KindSection, SuiteID: strPtr("s"), ParentID: strPtr("x")}, domain.ParentRef{}, true},
		{"section with sectionId", ReorderItem{Type: domain.KindSection, SectionID: strPtr("x")}, domain.ParentRef{}, true},
		{"test case in section", ReorderItem{Type: domain.KindTestCase, SectionID: strPtr("x")}, domain.UnderSection("x"), false},
		{"test case under suite", ReorderItem{Type: domain.KindTestCase, SuiteID: strPtr("s")}, domain.ParentRef{}, true},
		{"unknown type", ReorderItem{Type: "folder"}, domain.ParentRef{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.item.Parent()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
