package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/satishbabariya/querydeck/internal/config"
	"github.com/satishbabariya/querydeck/internal/core/savedquery"
	"github.com/satishbabariya/querydeck/internal/core/savedquery/domain"
	"github.com/satishbabariya/querydeck/internal/debug"
	"github.com/satishbabariya/querydeck/internal/ui"
	"github.com/satishbabariya/querydeck/internal/watch"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewSavedCommand creates the saved command group.
func NewSavedCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "saved",
		Aliases: []string{"sq"},
		Short:   "Manage saved queries",
	}

	cmd.AddCommand(newSavedListCommand(a))
	cmd.AddCommand(newSavedSaveCommand(a))
	cmd.AddCommand(newSavedRunCommand(a))
	cmd.AddCommand(newSavedImportCommand(a))
	cmd.AddCommand(newSavedExportCommand(a))
	cmd.AddCommand(newSavedDuplicateCommand(a))
	cmd.AddCommand(newSavedDeleteCommand(a))
	cmd.AddCommand(newSavedSortCommand(a))
	cmd.AddCommand(newSavedWatchCommand(a))

	return cmd
}

func (a *App) repository(ctx context.Context) (*savedquery.Repository, error) {
	c, err := a.Container(ctx)
	if err != nil {
		return nil, err
	}
	return c.SavedQueries(), nil
}

func newSavedListCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}
			return renderSaved(a.out, repo.List())
		},
	}
}

func renderSaved(w io.Writer, queries []domain.SavedQuery) error {
	if len(queries) == 0 {
		_, err := fmt.Fprintln(w, ui.SecondaryStyle.Render("(no saved queries)"))
		return err
	}

	rows := make([][]string, len(queries))
	for i, q := range queries {
		columns := strings.Join(q.Config.SelectedColumns, ", ")
		if columns == "" {
			columns = "*"
		}
		rows[i] = []string{
			q.ID,
			q.Name,
			q.Config.SelectedTable,
			columns,
			q.Timestamp.Local().Format(time.DateTime),
		}
	}
	return ui.RenderTable(w, []string{"ID", "Name", "Table", "Columns", "Saved"}, rows)
}

func newSavedSaveCommand(a *App) *cobra.Command {
	var (
		flags       queryFlags
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a query under a unique name",
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := flags.descriptor()
			if err != nil {
				return err
			}
			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}

			if strings.TrimSpace(name) == "" {
				if name, err = promptName("Name for this query:"); err != nil {
					return err
				}
			}

			saved, err := repo.Save(cmd.Context(), domain.NewQueryConfig(desc), name, description)
			if err != nil {
				return err
			}
			ui.PrintSuccess("Saved %q (%s)", saved.Name, saved.ID)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&name, "name", "n", "", "name for the saved query (prompted when omitted)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "optional description")

	return cmd
}

func newSavedRunCommand(a *App) *cobra.Command {
	var (
		page     int
		pageSize int
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "run <id|name>",
		Short: "Run a saved query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}
			saved, err := repo.Resolve(args[0])
			if err != nil {
				return err
			}

			desc := saved.Config.ToDescriptor()
			if cmd.Flags().Changed("page") || desc.Page < 1 {
				desc.Page = page
			}
			if cmd.Flags().Changed("page-size") {
				desc.PageSize = pageSize
			}
			return a.execute(cmd, desc, jsonOut)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "override the saved page size")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the response envelope as JSON")

	return cmd
}

func newSavedImportCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Merge queries from a JSON or YAML file",
		Long:  "Import accepts a list of queries, an export document, or a single query. Entries whose name already exists are skipped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}

			result, err := repo.Import(cmd.Context(), payload)
			if err != nil {
				return err
			}
			ui.PrintSuccess("Imported %d queries", result.Imported)
			if result.Skipped > 0 {
				ui.PrintWarning("Skipped %d queries with names that already exist", result.Skipped)
			}
			return nil
		},
	}
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := afero.ReadFile(config.AppFs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func newSavedExportCommand(a *App) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every saved query",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" && out != "" {
				format = filepath.Ext(out)
			}
			f, err := savedquery.ParseFormat(format)
			if err != nil {
				return err
			}
			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}

			data, err := repo.Export(f)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = io.Copy(a.out, bytes.NewReader(data))
				return err
			}
			if err := afero.WriteFile(config.AppFs, out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			ui.PrintSuccess("Exported %d queries to %s", len(repo.List()), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from --out extension, else json)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	return cmd
}

func newSavedDuplicateCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id|name>",
		Short: "Copy a saved query under a new name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}
			source, err := repo.Resolve(args[0])
			if err != nil {
				return err
			}
			dup, err := repo.Duplicate(cmd.Context(), source.ID)
			if err != nil {
				return err
			}
			ui.PrintSuccess("Created %q (%s)", dup.Name, dup.ID)
			return nil
		},
	}
}

func newSavedDeleteCommand(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id|name>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved query",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}
			target, err := repo.Resolve(args[0])
			if err != nil {
				return err
			}

			if !yes {
				ok, err := promptConfirm(fmt.Sprintf("Delete %q?", target.Name))
				if err != nil {
					return err
				}
				if !ok {
					ui.PrintInfo("Nothing deleted")
					return nil
				}
			}

			if err := repo.Delete(cmd.Context(), target.ID); err != nil {
				return err
			}
			ui.PrintSuccess("Deleted %q", target.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func newSavedSortCommand(a *App) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Reorder the collection by name or by date",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository(cmd.Context())
			if err != nil {
				return err
			}

			switch strings.ToLower(by) {
			case "name":
				err = repo.SortByName(cmd.Context())
			case "date":
				err = repo.SortByDate(cmd.Context())
			default:
				return fmt.Errorf("unknown sort key %q (use name or date)", by)
			}
			if err != nil {
				return err
			}
			return renderSaved(a.out, repo.List())
		},
	}
	cmd.Flags().StringVar(&by, "by", "date", "name or date")

	return cmd
}

func newSavedWatchCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reprint the collection whenever its file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.Container(cmd.Context())
			if err != nil {
				return err
			}
			repo := c.SavedQueries()
			location := c.SavedQueriesLocation()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			w, err := watch.NewWatcher(location, watch.DefaultDebounce, func() error {
				if err := repo.Load(ctx); err != nil {
					return err
				}
				fmt.Fprintln(a.out)
				return renderSaved(a.out, repo.List())
			})
			if err != nil {
				return err
			}
			defer w.Stop()

			if err := renderSaved(a.out, repo.List()); err != nil {
				return err
			}
			ui.PrintInfo("Watching %s (Ctrl+C to stop)", location)
			w.Start()

			<-ctx.Done()
			debug.Debug("watch stopped", "file", location)
			return nil
		},
	}
}

// signalContext is cancelled on interrupt or termination.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
