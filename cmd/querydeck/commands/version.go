package commands

import (
	"fmt"
	"runtime"

	"github.com/hashicorp/go-version"
	"github.com/satishbabariya/querydeck/internal/core/savedquery/domain"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := version.NewVersion(domain.FormatVersion)
			if err != nil {
				return err
			}
			segments := format.Segments()

			fmt.Fprintf(a.out, "querydeck version %s\n", Version)
			fmt.Fprintf(a.out, "  Git Commit: %s\n", GitCommit)
			fmt.Fprintf(a.out, "  Saved-query format: %s (imports accepted up to %d.x)\n", format.Original(), segments[0])
			fmt.Fprintf(a.out, "  Go Version: %s\n", runtime.Version())
			fmt.Fprintf(a.out, "  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
