package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gueldenstone/vogonix/internal/db"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of vogonix, build date, Go version, and database information.`,
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Database  string `json:"database,omitempty"`
	Schema    int64  `json:"schema_version,omitempty"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := versionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	path := GetDBPath()
	if db.Exists(path) {
		info.Database = db.ResolvePath(path)
		if database, err := db.Open(path); err == nil {
			defer database.Close()
			if version, err := database.MigrationStatus(); err == nil {
				info.Schema = version
			}
		}
	}

	if IsJSON() {
		return printJSON(cmd, info)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "vogonix %s (%s, %s)\n", info.Version, shortCommit(), shortDate())
	fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
	fmt.Fprintf(out, "Platform: %s\n", info.Platform)
	if info.Database != "" {
		fmt.Fprintf(out, "Database: %s (schema v%d)\n", info.Database, info.Schema)
	} else {
		fmt.Fprintln(out, "Database: not initialized (run 'vogonix init')")
	}
	return nil
}
