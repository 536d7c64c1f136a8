package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/alexanderramin/casetree/internal/cli/formatter"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/importer"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create a project from a YAML or JSON repository file",
		Long: "Create a project and its whole test repository from a file written by\n" +
			"\"casetree export\" or by hand. Files ending in .json are read as JSON,\n" +
			"anything else as YAML. Nothing is created if any part is invalid.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Config.RemoteURL != "" {
				return errors.New("import writes to the local database; drop --remote")
			}
			svc, err := app.services()
			if err != nil {
				return err
			}
			if svc.Imports == nil {
				return errors.New("import is not available")
			}
			res, err := svc.Imports.ImportProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			counts := formatter.TreeCounts{Suites: res.SuiteCount, Sections: res.SectionCount, TestCases: res.TestCaseCount}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported project %s [%s]: %s\n", res.Project.Name, res.Project.ShortID, counts)
			return nil
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	var out, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the project's test repository as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := importer.FormatYAML
			switch {
			case format != "":
				var err error
				if f, err = importer.ParseFormat(format); err != nil {
					return err
				}
			case out != "":
				f = importer.FormatForPath(out)
			}

			b, err := app.backend()
			if err != nil {
				return err
			}
			p, err := resolveProject(ctx, b, app.Config.Project)
			if err != nil {
				return err
			}

			var (
				suites    []domain.Suite
				sections  []domain.Section
				testCases []domain.TestCase
			)
			stop := app.spin(cmd, "Exporting")
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() (err error) {
				suites, err = b.Suites(gctx, p.ID)
				return err
			})
			g.Go(func() (err error) {
				sections, err = b.Sections(gctx, p.ID)
				return err
			})
			g.Go(func() (err error) {
				testCases, err = b.TestCases(gctx, p.ID)
				return err
			})
			err = g.Wait()
			stop()
			if err != nil {
				return fmt.Errorf("exporting %s: %w", p.DisplayID(), err)
			}

			data, err := importer.Encode(importer.Export(p, suites, sections, testCases), f)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&format, "format", "", "yaml or json (default: from --out extension, else yaml)")
	return cmd
}
