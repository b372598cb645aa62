package commands

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/satishbabariya/querydeck/internal/config"
	"github.com/satishbabariya/querydeck/internal/ui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write configuration",
	}
	cmd.AddCommand(newConfigShowCommand(a))
	cmd.AddCommand(newConfigInitCommand(a))
	return cmd
}

func newConfigShowCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			source := cfg.File
			if source == "" {
				source = "(defaults and environment)"
			}

			rows := [][]string{
				{"config file", source},
				{"database.provider", cfg.Database.Provider},
				{"database.url", redactURL(cfg.Database.URL)},
				{"database.max_connections", strconv.Itoa(cfg.Database.MaxConnections)},
				{"database.catalog_ttl", strconv.Itoa(cfg.Database.CatalogTTL)},
				{"saved_queries.path", cfg.SavedQueries.Path},
				{"saved_queries.storage", cfg.SavedQueries.Storage},
				{"server.addr", cfg.Server.Addr},
				{"server.rate_limit", strconv.FormatFloat(cfg.Server.RateLimit, 'f', -1, 64)},
				{"telemetry.type", cfg.Telemetry.Type},
				{"telemetry.namespace", cfg.Telemetry.Namespace},
				{"debug", strconv.FormatBool(cfg.Debug)},
				{"log_format", cfg.LogFormat},
			}
			return ui.RenderTable(a.out, []string{"Key", "Value"}, rows)
		},
	}
}

// redactURL hides the password of a connection URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

func newConfigInitCommand(a *App) *cobra.Command {
	var (
		path  string
		dbURL string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if exists, _ := afero.Exists(config.AppFs, path); exists && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := *a.cfg
			if dbURL != "" {
				cfg.Database.URL = dbURL
				cfg.Database.Provider = config.InferProvider(dbURL)
			}
			if err := config.SaveConfig(&cfg, path); err != nil {
				return err
			}
			ui.PrintSuccess("Wrote %s", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", ".querydeck.yaml", "where to write the config")
	cmd.Flags().StringVar(&dbURL, "url", "", "database connection URL")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
