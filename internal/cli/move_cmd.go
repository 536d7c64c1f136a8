package cli

import (
	"errors"
	"fmt"
	"math"

	"github.com/alexanderramin/casetree/internal/cli/formatter"
	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/spf13/cobra"
)

// placeBeside returns the target and index that put drag right before (or
// after) sibling.
func placeBeside(f *tree.Forest, drag, sibling *tree.Node, after bool) (tree.Target, int, error) {
	if sibling.Kind != drag.Kind {
		return tree.Target{}, 0, fmt.Errorf("%s is a %s; a %s can only be placed beside nodes of its own kind",
			sibling.Name, formatter.KindTag(sibling.Kind), formatter.KindTag(drag.Kind))
	}
	if sibling.ID == drag.ID {
		return tree.Target{}, 0, errors.New("cannot place a node beside itself")
	}
	target := tree.RootTarget()
	if p := f.ParentOf(sibling.ID); p != nil {
		target = tree.NodeTarget(p.Kind, p.ID)
	}
	index := 0
	for _, n := range f.Siblings(tree.ScopeOfNode(sibling)) {
		if n.ID == drag.ID || n.Placeholder {
			continue
		}
		if n.ID == sibling.ID {
			break
		}
		index++
	}
	if after {
		index++
	}
	return target, index, nil
}

func newMoveCmd(app *App) *cobra.Command {
	var to, before, after string
	var index int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "move NODE",
		Short: "Move or reorder a node",
		Long: "Move a node into another container (--to), or next to a sibling\n" +
			"(--before/--after). --index counts among the destination's nodes of the\n" +
			"same kind, starting at 0; without it the node goes last.",
		Example: "  casetree move \"Pays by card\" --to Payments --index 0\n" +
			"  casetree move Shipping --before Payments\n" +
			"  casetree move Drafts --to root",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			set := 0
			for _, s := range []string{to, before, after} {
				if s != "" {
					set++
				}
			}
			if set != 1 {
				return errors.New("give exactly one of --to, --before or --after")
			}

			ws, err := app.openWorkspace(ctx)
			if err != nil {
				return err
			}
			drag, err := resolveNode(ws.forest, args[0])
			if err != nil {
				return err
			}

			var target tree.Target
			switch {
			case to != "":
				if target, err = resolveTarget(ws.forest, to); err != nil {
					return err
				}
				if !cmd.Flags().Changed("index") {
					index = math.MaxInt
				}
			default:
				ref, isAfter := before, false
				if after != "" {
					ref, isAfter = after, true
				}
				sibling, err := resolveNode(ws.forest, ref)
				if err != nil {
					return err
				}
				if target, index, err = placeBeside(ws.forest, drag, sibling, isAfter); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			prev := ws.forest
			if dryRun {
				if err := tree.CheckDrop(prev, drag.ID, target, index); err != nil {
					return fmt.Errorf("cannot move %s there: %w", drag.Name, err)
				}
				plan, err := tree.PlanMove(prev, drag.ID, target, index)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatPlan(prev, plan))
				return nil
			}

			c := ws.controller()
			g, err := c.StartDrag(drag.ID)
			if err != nil {
				return err
			}
			task, err := c.Drop(g, target, index)
			if err != nil {
				return fmt.Errorf("cannot move %s there: %w", drag.Name, err)
			}
			res := task(ctx)
			if err := c.Finish(g, res); err != nil {
				return err
			}
			if res.Err != nil {
				if res.Reconciled {
					return fmt.Errorf("move of %s was not saved; the tree was reloaded from the store: %w", drag.Name, res.Err)
				}
				return res.Err
			}
			fmt.Fprint(out, formatter.FormatPlan(prev, g.Plan))
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", `Destination suite or section, or "root"`)
	cmd.Flags().StringVar(&before, "before", "", "Place the node just before this sibling")
	cmd.Flags().StringVar(&after, "after", "", "Place the node just after this sibling")
	cmd.Flags().IntVar(&index, "index", 0, "Position among the destination's nodes of the same kind")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the writes without applying them")
	return cmd
}
