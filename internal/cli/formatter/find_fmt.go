package formatter

import (
	"strings"

	"github.com/alexanderramin/casetree/internal/tree"
)

// Match is one search hit with the ancestors leading to it, root first.
type Match struct {
	Node *tree.Node
	Path []*tree.Node
}

// PathString joins ancestor names with " › ".
func PathString(path []*tree.Node) string {
	names := make([]string, len(path))
	for i, n := range path {
		names[i] = n.Name
	}
	return strings.Join(names, " › ")
}

func FormatMatches(query string, matches []Match) string {
	if len(matches) == 0 {
		return Dim("No nodes match " + `"` + query + `"`)
	}
	headers := []string{"ID", "KIND", "NAME", "PATH"}
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		path := PathString(m.Path)
		if path == "" {
			path = "(root)"
		}
		rows = append(rows, []string{
			TruncID(m.Node.ID),
			KindTag(m.Node.Kind),
			KindStyle(m.Node.Kind).Render(m.Node.Name),
			Dim(path),
		})
	}
	return RenderTable(headers, rows)
}
