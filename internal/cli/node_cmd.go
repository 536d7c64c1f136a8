package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/casetree/internal/cli/formatter"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/alexanderramin/casetree/internal/treesync"
	"github.com/spf13/cobra"
)

// parentFor checks that a node of kind may be created under target and
// returns the parent it would get.
func parentFor(f *tree.Forest, target tree.Target, kind domain.NodeKind) (domain.ParentRef, error) {
	next, id, err := tree.InsertPlaceholder(f, target, kind, "")
	if err != nil {
		return domain.ParentRef{}, fmt.Errorf("cannot add a %s under %s: %w", formatter.KindTag(kind), describeTarget(f, target), err)
	}
	return next.Find(id).Parent, nil
}

func describeTarget(f *tree.Forest, t tree.Target) string {
	if t.IsRoot() {
		return "the root"
	}
	if n := f.Find(t.ID); n != nil {
		return n.Name
	}
	return t.String()
}

func newSuiteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suite",
		Short: "Manage suites",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Append a suite to the project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := app.openWorkspace(ctx)
			if err != nil {
				return err
			}
			s := &domain.Suite{ProjectID: ws.project.ID, Name: args[0]}
			if err := ws.backend.CreateSuite(ctx, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created suite %s (%s)\n", s.Name, s.ID)
			return nil
		},
	})
	return cmd
}

func newSectionCmd(app *App) *cobra.Command {
	var under string

	cmd := &cobra.Command{
		Use:   "section",
		Short: "Manage sections",
	}
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Append a section under a suite, another section or the root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := app.openWorkspace(ctx)
			if err != nil {
				return err
			}
			target, err := resolveTarget(ws.forest, under)
			if err != nil {
				return err
			}
			parent, err := parentFor(ws.forest, target, domain.KindSection)
			if err != nil {
				return err
			}
			s := &domain.Section{ProjectID: ws.project.ID, Name: args[0], Parent: parent}
			if err := ws.backend.CreateSection(ctx, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created section %s under %s (%s)\n", s.Name, describeTarget(ws.forest, target), s.ID)
			return nil
		},
	}
	add.Flags().StringVar(&under, "under", "", "Parent suite or section (default: root)")
	cmd.AddCommand(add)
	return cmd
}

func newCaseCmd(app *App) *cobra.Command {
	var under, description, priority string

	cmd := &cobra.Command{
		Use:     "case",
		Aliases: []string{"testcase"},
		Short:   "Manage test cases",
	}
	add := &cobra.Command{
		Use:   "add [TITLE]",
		Short: "Append a test case to a section or the unsectioned root",
		Long: "Append a test case to a section or the unsectioned root.\n" +
			"Without a title on an interactive terminal, a form asks for the fields.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tc := &domain.TestCase{Description: description, Priority: domain.Priority(priority)}
			if len(args) == 1 {
				tc.Title = args[0]
			} else {
				if !app.IsInteractive() {
					return fmt.Errorf("a title is required")
				}
				if err := testCaseForm(&tc.Title, &tc.Description, &tc.Priority).Run(); err != nil {
					return err
				}
			}
			if !domain.ValidPriorities[string(tc.Priority)] {
				return fmt.Errorf("invalid priority %q (want low|medium|high|critical)", tc.Priority)
			}

			ws, err := app.openWorkspace(ctx)
			if err != nil {
				return err
			}
			target, err := resolveTarget(ws.forest, under)
			if err != nil {
				return err
			}
			if tc.Parent, err = parentFor(ws.forest, target, domain.KindTestCase); err != nil {
				return err
			}
			tc.ProjectID = ws.project.ID
			if err := ws.backend.CreateTestCase(ctx, tc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created test case %s in %s (%s)\n", tc.Title, describeTarget(ws.forest, target), tc.ID)
			return nil
		},
	}
	add.Flags().StringVar(&under, "under", "", "Section to add to (default: unsectioned root)")
	add.Flags().StringVar(&description, "description", "", "Test case description")
	add.Flags().StringVar(&priority, "priority", string(domain.PriorityMedium), "Priority (low|medium|high|critical)")
	cmd.AddCommand(add)
	return cmd
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename NODE NAME",
		Short: "Rename a suite, section or test case",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := app.openWorkspace(ctx)
			if err != nil {
				return err
			}
			n, err := resolveNode(ws.forest, args[0])
			if err != nil {
				return err
			}
			task, err := ws.controller().Rename(n.ID, strings.TrimSpace(args[1]))
			if err != nil {
				return err
			}
			if err := settle(ctx, task); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s %s to %s\n", formatter.KindTag(n.Kind), n.Name, strings.TrimSpace(args[1]))
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove NODE",
		Aliases: []string{"rm"},
		Short:   "Delete a node and everything below it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := app.openWorkspace(ctx)
			if err != nil {
				return err
			}
			n, err := resolveNode(ws.forest, args[0])
			if err != nil {
				return err
			}
			below := len(ws.forest.Descendants(n.ID))
			title := fmt.Sprintf("Delete %s %s?", formatter.KindTag(n.Kind), n.Name)
			if below > 0 {
				title = fmt.Sprintf("Delete %s %s and the %d nodes below it?", formatter.KindTag(n.Kind), n.Name, below)
			}
			ok, err := app.confirm(yes, title)
			if err != nil || !ok {
				return err
			}
			task, err := ws.controller().Delete(n.ID)
			if err != nil {
				return err
			}
			if err := settle(ctx, task); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", formatter.KindTag(n.Kind), pathOf(ws.forest, n))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// settle runs a controller task to completion and reports its error.
func settle(ctx context.Context, task treesync.Task) error {
	return task(ctx).Err
}
