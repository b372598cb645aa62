package commands

import (
	"github.com/satishbabariya/querydeck/internal/debug"
	"github.com/satishbabariya/querydeck/internal/server"
	"github.com/satishbabariya/querydeck/internal/ui"
	"github.com/satishbabariya/querydeck/internal/watch"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(a *App) *cobra.Command {
	var (
		addr    string
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query and saved-query API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			c, err := a.Container(ctx)
			if err != nil {
				return err
			}
			svc, err := c.QueryService(ctx)
			if err != nil {
				return err
			}

			cfg := c.Config()
			if addr == "" {
				addr = cfg.Server.Addr
			}

			repo := c.SavedQueries()
			if !noWatch && cfg.SavedQueries.Storage != "memory" {
				w, err := watch.NewWatcher(c.SavedQueriesLocation(), watch.DefaultDebounce, func() error {
					debug.Info("saved queries changed on disk, reloading")
					return repo.Load(ctx)
				})
				if err != nil {
					return err
				}
				defer w.Stop()
				w.Start()
			}

			router := server.NewRouter(svc, repo, server.Options{
				RateLimit: cfg.Server.RateLimit,
				Burst:     cfg.Server.Burst,
				Metrics:   c.MetricsHandler(),
			})

			ui.PrintInfo("Listening on %s", addr)
			return server.New(addr, router).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload saved queries when the file changes")

	return cmd
}
