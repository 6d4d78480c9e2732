package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Release metadata, stamped by the release build:
//
//	go build -ldflags "-X github.com/lazypower/taskmgr/internal/cli.Version=v1.2.0"
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unset"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the taskmgr release, commit and build date",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n  commit: %s\n  built:  %s\n",
			styleBrand.Render("taskmgr"), styleVersion.Render(Version), Commit, BuildDate)
	},
}

// VersionString is the release reported by the /api/health endpoint.
func VersionString() string {
	if Commit == "none" {
		return Version
	}
	return fmt.Sprintf("%s+%s", Version, Commit)
}
