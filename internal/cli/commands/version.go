package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/leapstack-labs/leapgen/internal/emit"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display leapgen version, build information and the compiled-in backends.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "leapgen v%s\n", version)
			_, _ = fmt.Fprintln(out, "REST API scaffolding generated from a schema CSV")
			_, _ = fmt.Fprintf(out, "built with %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			_, _ = fmt.Fprintf(out, "backends: %s\n", strings.Join(emit.Names(), ", "))
		},
	}
}
