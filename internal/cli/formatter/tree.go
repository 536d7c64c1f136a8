package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/charmbracelet/lipgloss"
)

const (
	treeBranch = "├── "
	treeCorner = "└── "
	treePipe   = "│   "
	treeBlank  = "    "
)

// TreeRow is one visible line of a rendered forest.
type TreeRow struct {
	Node   *tree.Node
	Depth  int
	Prefix string // box-drawing connectors, empty for roots
	Hidden int    // descendants not shown because the node is collapsed
}

// ExpandFunc decides whether a node's children are shown.
type ExpandFunc func(n *tree.Node, depth int) bool

// VisibleRows walks f depth-first and returns the rows a tree view shows.
// A nil expand shows everything.
func VisibleRows(f *tree.Forest, expand ExpandFunc) []TreeRow {
	if f == nil {
		return nil
	}
	var rows []TreeRow
	var walk func(nodes []*tree.Node, depth int, lead string)
	walk = func(nodes []*tree.Node, depth int, lead string) {
		for i, n := range nodes {
			last := i == len(nodes)-1
			row := TreeRow{Node: n, Depth: depth}
			childLead := ""
			if depth > 0 {
				if last {
					row.Prefix, childLead = lead+treeCorner, lead+treeBlank
				} else {
					row.Prefix, childLead = lead+treeBranch, lead+treePipe
				}
			}
			open := expand == nil || expand(n, depth)
			if !open && len(n.Children) > 0 {
				row.Hidden = countDescendants(n)
			}
			rows = append(rows, row)
			if open {
				walk(n.Children, depth+1, childLead)
			}
		}
	}
	walk(f.Roots, 0, "")
	return rows
}

func countDescendants(n *tree.Node) int {
	total := 0
	for _, c := range n.Children {
		total += 1 + countDescendants(c)
	}
	return total
}

// TreeOptions controls RenderForest.
type TreeOptions struct {
	Expand  ExpandFunc
	ShowIDs bool
}

// RowTitle renders the connector, optional id and styled name of a row.
func RowTitle(r TreeRow, showID bool) string {
	var b strings.Builder
	b.WriteString(StyleDim.Render(r.Prefix))
	if showID {
		b.WriteString(TruncID(r.Node.ID) + " ")
	}
	name := r.Node.Name
	if r.Node.Placeholder {
		name = StyleYellow.Render(name + "…")
	} else {
		name = KindStyle(r.Node.Kind).Render(name)
	}
	b.WriteString(name)
	if r.Hidden > 0 {
		b.WriteString(StyleDim.Render(fmt.Sprintf(" +%d", r.Hidden)))
	}
	return b.String()
}

// RenderForest renders f as an indented tree with the node kind
// right-aligned on every line.
func RenderForest(f *tree.Forest, opts TreeOptions) string {
	rows := VisibleRows(f, opts.Expand)
	if len(rows) == 0 {
		return ""
	}

	titles := make([]string, len(rows))
	width := 0
	for i, r := range rows {
		titles[i] = RowTitle(r, opts.ShowIDs)
		width = max(width, lipgloss.Width(titles[i]))
	}

	var b strings.Builder
	for i, r := range rows {
		pad := width - lipgloss.Width(titles[i])
		b.WriteString(titles[i] + strings.Repeat(" ", pad) + "  " + StyleDim.Render(KindTag(r.Node.Kind)) + "\n")
	}
	return b.String()
}
