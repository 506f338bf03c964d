package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time. Commit falls back to the VCS revision
// embedded by the Go toolchain.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ember %s (commit: %s, built: %s)\n", Version, commit(), BuildDate)
		fmt.Fprintf(cmd.OutOrStdout(), "fuse: %d per %s\n", cfg.Fuse.Max, cfg.Fuse.RechargeWindow)
	},
}

// VersionString is the version reported by /api/health.
func VersionString() string {
	return fmt.Sprintf("%s (%s)", Version, commit())
}

func commit() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}
	return vcsRevision(info.Settings)
}

// vcsRevision returns the short vcs.revision, marked when the tree was dirty.
func vcsRevision(settings []debug.BuildSetting) string {
	rev, dirty := "", false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return "unknown"
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if dirty {
		rev += "-dirty"
	}
	return rev
}
