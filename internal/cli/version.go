package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X chwresume/internal/cli.Version=..."
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "chwresume version %s\n", Version)
		_, _ = fmt.Fprintf(out, "Git commit: %s\n", gitCommit())
		_, _ = fmt.Fprintf(out, "Build date: %s\n", BuildDate)
		_, _ = fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	},
}

// gitCommit prefers the ldflags value and falls back to the VCS stamp
// the go tool embeds in module builds
func gitCommit() string {
	if GitCommit != "" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return "unknown"
}
