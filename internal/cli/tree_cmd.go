package cli

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/casetree/internal/cli/formatter"
	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/alexanderramin/casetree/internal/viewstate"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	var all, ids bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the project's test repository",
		Long: "Show the project's test repository. Nodes collapsed in the editor stay\n" +
			"collapsed here unless --all is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stop := app.spin(cmd, "Loading tree")
			ws, err := app.openWorkspace(ctx)
			stop()
			if err != nil {
				return err
			}
			opts := formatter.TreeOptions{ShowIDs: ids}
			if !all {
				state, err := viewstate.Load(app.Config.StatePath)
				if err != nil {
					app.Logger.Warn("view_state_unreadable", "path", app.Config.StatePath, "error", err)
				}
				opts.Expand = func(n *tree.Node, depth int) bool { return state.IsExpanded(n.ID, depth) }
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectTree(ws.project, ws.forest, opts))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Expand every node")
	cmd.Flags().BoolVar(&ids, "ids", false, "Show node IDs")
	return cmd
}

// findNodes ranks the forest's nodes against query with fuzzy matching.
// Closer matches come first; ties keep tree order.
func findNodes(f *tree.Forest, query string) []formatter.Match {
	nodes := f.Flatten()
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]formatter.Match, 0, len(ranks))
	for _, r := range ranks {
		n := nodes[r.OriginalIndex]
		if n.Placeholder {
			continue
		}
		out = append(out, formatter.Match{Node: n, Path: rootFirst(f.AncestorsOf(n.ID))})
	}
	return out
}

func newFindCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "find QUERY",
		Short: "Fuzzy-search suites, sections and test cases by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			matches := findNodes(ws.forest, args[0])
			if limit > 0 && len(matches) > limit {
				matches = matches[:limit]
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMatches(args[0], matches))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of matches (0 for all)")
	return cmd
}

// spin shows a spinner on a terminal while a remote call runs.
func (a *App) spin(cmd *cobra.Command, message string) func() {
	if a.Config.RemoteURL == "" || !a.IsInteractive() {
		return func() {}
	}
	return formatter.StartSpinner(cmd.ErrOrStderr(), message)
}
