package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/tree"
)

// ScopeLabel names a sibling scope for humans, e.g. "sections under Payments".
func ScopeLabel(f *tree.Forest, scope tree.ScopeKey) string {
	what := KindTag(scope.Kind) + "s"
	if scope.Kind == domain.KindTestCase {
		what = "test cases"
	}
	if scope.Parent.IsRoot() {
		return what + " at the root"
	}
	name := scope.Parent.ID()
	if n := f.Find(scope.Parent.ID()); n != nil {
		name = n.Name
	}
	return fmt.Sprintf("%s under %s", what, name)
}

// FormatPlan describes the writes a move produced. f is the forest the plan
// was computed against and resolves names.
func FormatPlan(f *tree.Forest, plan tree.Plan) string {
	if plan.Empty() {
		return Dim("Nothing to do: the node is already there.")
	}
	name := plan.NodeID
	if n := f.Find(plan.NodeID); n != nil {
		name = n.Name
	}

	var b strings.Builder
	if plan.Reparented() {
		b.WriteString(fmt.Sprintf("Moved %s from %s to %s\n\n",
			Bold(name), ScopeLabel(f, plan.From), ScopeLabel(f, plan.To)))
	} else {
		b.WriteString(fmt.Sprintf("Reordered %s within %s\n\n", Bold(name), ScopeLabel(f, plan.To)))
	}

	headers := []string{"ID", "KIND", "NAME", "ORDER", "PARENT"}
	rows := make([][]string, 0, len(plan.Moves)+len(plan.Reindex))
	for _, u := range plan.Items() {
		label := u.ID
		if n := f.Find(u.ID); n != nil {
			label = n.Name
		}
		parent := Dim("unchanged")
		if u.Parent != nil {
			parent = StyleYellow.Render(u.Parent.String())
		}
		rows = append(rows, []string{
			TruncID(u.ID),
			KindTag(u.Kind),
			label,
			strconv.Itoa(u.DisplayOrder),
			parent,
		})
	}
	b.WriteString(RenderTable(headers, rows))
	return b.String()
}
