// Package main is the entry point for the querydeck CLI.
package main

import (
	"os"

	"github.com/satishbabariya/querydeck/cmd/querydeck/commands"
	"github.com/satishbabariya/querydeck/internal/ui"
)

var (
	// Version information (set by build)
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := run(); err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}
}

func run() error {
	commands.Version = Version
	commands.GitCommit = Commit

	app := commands.NewApp()
	defer app.Close()

	return app.Root().Execute()
}
