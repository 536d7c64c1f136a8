package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/casetree/internal/api"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local database over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Config.RemoteURL != "" {
				return errors.New("serve works on the local database; drop --remote")
			}
			svc, err := app.services()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			h := api.NewHandler(svc.Projects, svc.Trees, svc.Reorders, app.Logger)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", app.Config.DBPath, app.Config.ListenAddr)
			return api.Serve(ctx, app.Config.ListenAddr, h, app.Logger)
		},
	}

	cmd.Flags().StringVar(&app.Config.ListenAddr, "listen", app.Config.ListenAddr, "Address to listen on")
	return cmd
}
