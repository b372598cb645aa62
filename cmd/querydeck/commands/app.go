// Package commands implements CLI commands.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/satishbabariya/querydeck/internal/config"
	"github.com/satishbabariya/querydeck/internal/debug"
	"github.com/satishbabariya/querydeck/internal/utils/container"
	"github.com/spf13/cobra"
)

// App carries global flags and the lazily built container shared by every command.
type App struct {
	configFile string
	debug      bool

	cfg       *config.Config
	container *container.Container

	out  io.Writer
	root *cobra.Command
}

// NewApp creates the CLI with every command registered.
func NewApp() *App {
	a := &App{out: os.Stdout}

	root := &cobra.Command{
		Use:           "querydeck",
		Short:         "Visual query builder engine",
		Long:          "querydeck compiles structured query descriptors into safe SQL, runs them with pagination and per-row aggregates, and manages a collection of saved queries.",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (default .querydeck.yaml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(NewRunCommand(a))
	root.AddCommand(NewExplainCommand(a))
	root.AddCommand(NewColumnsCommand(a))
	root.AddCommand(NewSavedCommand(a))
	root.AddCommand(NewServeCommand(a))
	root.AddCommand(NewConfigCommand(a))
	root.AddCommand(NewVersionCommand(a))

	a.root = root
	return a
}

// Root returns the root command.
func (a *App) Root() *cobra.Command {
	return a.root
}

// SetOutput redirects command output.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
	a.root.SetOut(w)
}

// Close releases the container, if one was built.
func (a *App) Close() {
	if a.container == nil {
		return
	}
	if err := a.container.Close(context.Background()); err != nil {
		debug.Warn("failed to close container", "error", err)
	}
}

func (a *App) loadConfig() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.LoadConfig(a.configFile)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Debug = true
	}
	debug.InitWriter(cfg.Debug, os.Stderr, cfg.LogFormat == "json")
	if cfg.File != "" {
		debug.Debug("loaded config", "file", cfg.File)
	}
	a.cfg = cfg
	return nil
}

// Container builds the dependency container on first use.
func (a *App) Container(ctx context.Context) (*container.Container, error) {
	if a.container != nil {
		return a.container, nil
	}
	if err := a.loadConfig(); err != nil {
		return nil, err
	}
	c, err := container.NewContainer(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	a.container = c
	return c, nil
}
