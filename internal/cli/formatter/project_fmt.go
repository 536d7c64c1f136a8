package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/tree"
)

// FormatProjectList renders a styled project list inside a bordered box.
func FormatProjectList(projects []*domain.Project) string {
	if len(projects) == 0 {
		return Dim("No projects yet. Create one with: casetree project add <name> --id <ID>")
	}
	headers := []string{"ID", "NAME", "UUID", "UPDATED"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.DisplayID(),
			Bold(p.Name),
			TruncID(p.ID),
			Dim(HumanTimestamp(p.UpdatedAt)),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows))
}

// TreeCounts tallies the nodes of a forest by kind.
type TreeCounts struct {
	Suites, Sections, TestCases int
}

func CountForest(f *tree.Forest) TreeCounts {
	var c TreeCounts
	for _, n := range f.Flatten() {
		switch n.Kind {
		case domain.KindSuite:
			c.Suites++
		case domain.KindSection:
			c.Sections++
		case domain.KindTestCase:
			c.TestCases++
		}
	}
	return c
}

func (c TreeCounts) String() string {
	return fmt.Sprintf("%s, %s, %s",
		plural(c.Suites, "suite"), plural(c.Sections, "section"), plural(c.TestCases, "test case"))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// FormatProjectTree renders a project's forest in a titled box with a
// one-line summary under it.
func FormatProjectTree(p *domain.Project, f *tree.Forest, opts TreeOptions) string {
	var b strings.Builder
	b.WriteString(StyleBold.Render(p.Name) + " " + Dim("("+p.DisplayID()+")") + "\n")
	b.WriteString(Dim(CountForest(f).String()) + "\n\n")
	if f.Len() == 0 {
		b.WriteString(Dim("Empty repository. Add a suite with: casetree suite add <name>"))
	} else {
		b.WriteString(strings.TrimSuffix(RenderForest(f, opts), "\n"))
	}
	return RenderBox("Test repository", b.String())
}
