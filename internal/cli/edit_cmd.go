package cli

import (
	"errors"

	"github.com/alexanderramin/casetree/internal/viewstate"
	"github.com/spf13/cobra"
)

var errNotInteractive = errors.New("the editor needs an interactive terminal")

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the interactive tree editor",
		Long: "Open the interactive tree editor. Edits show immediately and are saved in\n" +
			"the background; a change the store refuses is undone by reloading the tree.\n" +
			"Press ? inside the editor for key bindings.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.IsInteractive() {
				return errNotInteractive
			}
			ctx := cmd.Context()
			ws, err := app.openWorkspace(ctx)
			if err != nil {
				return err
			}
			state, err := viewstate.Load(app.Config.StatePath)
			if err != nil {
				app.Logger.Warn("view_state_unreadable", "path", app.Config.StatePath, "error", err)
			}

			m := newEditorModel(ctx, ws, state, app.Logger)
			runErr := app.RunEditor(m)
			if err := m.saveState(app.Config.StatePath); err != nil {
				app.Logger.Warn("view_state_not_saved", "path", app.Config.StatePath, "error", err)
			}
			return runErr
		},
	}
}
