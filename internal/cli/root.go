package cli

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/alexanderramin/casetree/internal/api"
	"github.com/alexanderramin/casetree/internal/config"
	"github.com/alexanderramin/casetree/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App holds the effective configuration and the lazily opened backend used
// by CLI commands.
type App struct {
	Config config.Config
	Logger *slog.Logger

	// OpenLocal opens the database named by the config and wires the
	// services on it. Tests preset Local instead.
	OpenLocal func(cfg config.Config) (*Services, io.Closer, error)
	Local     *Services
	// Backend is opened on first use unless preset.
	Backend Backend

	IsInteractive func() bool
	// RunEditor runs the interactive editor; tests replace it to drive the
	// model synchronously.
	RunEditor func(m *editorModel) error

	closer io.Closer
}

// NewRootCmd creates the top-level "casetree" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	if app.Logger == nil {
		app.Logger = slog.New(slog.DiscardHandler)
	}
	if app.IsInteractive == nil {
		app.IsInteractive = func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		}
	}
	if app.RunEditor == nil {
		app.RunEditor = runEditorProgram
	}

	root := &cobra.Command{
		Use:           "casetree",
		Short:         "Organise test suites, sections and test cases as one ordered tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.Config.Validate()
		},
	}
	bindConfigFlags(root.PersistentFlags(), &app.Config)

	root.AddCommand(
		newProjectCmd(app),
		newSuiteCmd(app),
		newSectionCmd(app),
		newCaseCmd(app),
		newTreeCmd(app),
		newFindCmd(app),
		newMoveCmd(app),
		newRenameCmd(app),
		newRemoveCmd(app),
		newEditCmd(app),
		newImportCmd(app),
		newExportCmd(app),
		newServeCmd(app),
	)
	return root
}

// bindConfigFlags lets global flags override the loaded configuration.
func bindConfigFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVarP(&cfg.Project, "project", "p", cfg.Project, "Project short ID, UUID or UUID prefix")
	fs.StringVar(&cfg.RemoteURL, "remote", cfg.RemoteURL, "Talk to a casetree server at this URL instead of the local database")
	fs.StringVar(&cfg.StatePath, "state", cfg.StatePath, "File holding expanded and selected nodes")
}

// Services are the database-backed services available in local mode.
type Services struct {
	Projects service.ProjectService
	Trees    service.TreeService
	Reorders service.ReorderService
	Imports  service.ImportService
}

var errNoDatabase = errors.New("no database configured")

func (a *App) services() (*Services, error) {
	if a.Local != nil {
		return a.Local, nil
	}
	if a.OpenLocal == nil {
		return nil, errNoDatabase
	}
	svc, closer, err := a.OpenLocal(a.Config)
	if err != nil {
		return nil, err
	}
	a.Local, a.closer = svc, closer
	return svc, nil
}

// backend returns the store commands talk to: the server named by
// --remote, or the local database.
func (a *App) backend() (Backend, error) {
	if a.Backend != nil {
		return a.Backend, nil
	}
	if a.Config.RemoteURL != "" {
		a.Backend = api.NewClient(a.Config.RemoteURL, a.Config.RequestTimeout())
		return a.Backend, nil
	}
	svc, err := a.services()
	if err != nil {
		return nil, err
	}
	a.Backend = NewLocalBackend(svc)
	return a.Backend, nil
}

// Close releases the local database, if one was opened.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}
