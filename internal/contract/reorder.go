package contract

import (
	"fmt"
	"io"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/goccy/go-json"
)

// ReorderItem is one row of a batched reorder. When Reparent is false only
// DisplayOrder changes. When it is true the parent fields are authoritative:
// an absent field means null, so all three absent moves the node to the root.
//
// Sections use SuiteID or ParentID (parent section); test cases use SectionID.
type ReorderItem struct {
	ID           string          `json:"id"`
	Type         domain.NodeKind `json:"type"`
	DisplayOrder int             `json:"displayOrder"`
	Reparent     bool            `json:"reparent,omitempty"`
	ParentID     *string         `json:"parentId,omitempty"`
	SuiteID      *string         `json:"suiteId,omitempty"`
	SectionID    *string         `json:"sectionId,omitempty"`
}

// ReorderRequest is the body of POST /api/projects/{projectID}/reorder.
type ReorderRequest struct {
	ProjectID string        `json:"projectId"`
	Items     []ReorderItem `json:"items"`
}

// NewReorderRequest converts a plan into its wire form, destination scope
// first.
func NewReorderRequest(projectID string, plan tree.Plan) ReorderRequest {
	req := ReorderRequest{ProjectID: projectID, Items: make([]ReorderItem, 0, len(plan.Moves)+len(plan.Reindex))}
	for _, u := range plan.Items() {
		item := ReorderItem{ID: u.ID, Type: u.Kind, DisplayOrder: u.DisplayOrder}
		if u.Parent != nil {
			item.Reparent = true
			switch u.Kind {
			case domain.KindSection:
				item.SuiteID = u.Parent.SuiteID()
				item.ParentID = u.Parent.SectionID()
			case domain.KindTestCase:
				item.SectionID = u.Parent.SectionID()
			}
		}
		req.Items = append(req.Items, item)
	}
	return req
}

// Parent decodes the item's parent fields. It is only meaningful when
// Reparent is set.
func (it ReorderItem) Parent() (domain.ParentRef, error) {
	switch it.Type {
	case domain.KindSuite:
		if it.SuiteID != nil || it.ParentID != nil || it.SectionID != nil {
			return domain.ParentRef{}, fmt.Errorf("suite %s cannot have a parent", it.ID)
		}
		return domain.Root(), nil
	case domain.KindSection:
		if it.SectionID != nil {
			return domain.ParentRef{}, fmt.Errorf("section %s: sectionId is for test cases, use parentId", it.ID)
		}
		return domain.ParentFromFields(it.SuiteID, it.ParentID)
	case domain.KindTestCase:
		if it.SuiteID != nil || it.ParentID != nil {
			return domain.ParentRef{}, fmt.Errorf("test case %s can only reference a section", it.ID)
		}
		return domain.ParentFromFields(nil, it.SectionID)
	}
	return domain.ParentRef{}, fmt.Errorf("unknown item type %q", it.Type)
}

// Encode writes req as JSON.
func (req ReorderRequest) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(req)
}

// DecodeReorderRequest reads a request, rejecting unknown fields.
func DecodeReorderRequest(r io.Reader) (ReorderRequest, error) {
	var req ReorderRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return ReorderRequest{}, fmt.Errorf("decoding reorder request: %w", err)
	}
	return req, nil
}
