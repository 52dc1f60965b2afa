package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gueldenstone/vogonix/internal/backup"
	"github.com/gueldenstone/vogonix/internal/config"
	"github.com/gueldenstone/vogonix/internal/db"
	"github.com/gueldenstone/vogonix/internal/duration"
	"github.com/gueldenstone/vogonix/internal/logging"
)

// Version information (set at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global flags
var (
	dbPath  string
	jsonOut bool
	quiet   bool
	verbose bool
	noColor bool
)

// Loaded in PersistentPreRunE.
var (
	globalConfig *config.Config
	logger       = logging.Nop()
)

// now is the clock every command reads. Tests replace it.
var now duration.Clock = time.Now

// skipBackupCommands lists commands that should not trigger automatic backup.
var skipBackupCommands = map[string]bool{
	"help":     true,
	"version":  true,
	"init":     true,
	"duration": true,
	"ago":      true,
}

var rootCmd = &cobra.Command{
	Use:   "vogonix",
	Short: "Track time against Jira issues from the command line",
	Long: `Vogonix keeps a local cache of the Jira issues assigned to you,
runs timers per issue and submits the tracked time as worklogs.

Use "vogonix init" to create the database and a sample config.
Use "vogonix --help" to see all available commands.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd); err != nil {
			return err
		}
		runAutoBackup(cmd)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (default ~/.vogonix/vogonix.db)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output and debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.SetVersionTemplate(fmt.Sprintf("vogonix %s (%s, %s)\n", Version, shortCommit(), shortDate()))
	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration and builds the logger. An unreadable config
// file is reported and defaults are used instead.
func setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to load config file: %v\n", err)
		cfg = config.DefaultConfig()
	}
	globalConfig = cfg

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	l, err := logging.New(level, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logger = l

	configureColor(cmd.OutOrStdout())
	return nil
}

// shortCommit returns the first 7 characters of the git commit hash
func shortCommit() string {
	if len(GitCommit) >= 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

// shortDate returns just the date portion of BuildDate (YYYY-MM-DD)
func shortDate() string {
	if len(BuildDate) >= 10 {
		return BuildDate[:10]
	}
	return BuildDate
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// runAutoBackup backs up the database before commands that use it. Backup
// failures are logged and never fail the command.
func runAutoBackup(cmd *cobra.Command) {
	if skipBackupCommands[cmd.Name()] || globalConfig == nil || !globalConfig.Backup.Enabled {
		return
	}

	path := db.ResolvePath(GetDBPath())
	if !db.Exists(path) {
		return
	}

	mgr := backup.NewManager(path, globalConfig.Backup, now, logger)
	backupPath, err := mgr.BackupIfNeeded()
	if err != nil {
		logger.Warn("automatic backup failed", zap.Error(err))
		return
	}
	if backupPath != "" {
		VerboseOutput(cmd, "Created backup: %s\n", backupPath)
	}
}

// GetDBPath returns the database path from flags, config, or default.
// Priority: flag > env > config file > default
func GetDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if globalConfig != nil && globalConfig.DB != "" {
		return globalConfig.DB
	}
	return db.DefaultDBPath
}

// GetConfig returns the global configuration.
func GetConfig() *config.Config {
	if globalConfig != nil {
		return globalConfig
	}
	return config.DefaultConfig()
}

// IsJSON returns whether JSON output is requested
func IsJSON() bool {
	return jsonOut
}

// IsNoColor returns whether colored output should be disabled.
// Priority: flag > env > config file > default
func IsNoColor() bool {
	if noColor {
		return true
	}
	return globalConfig != nil && globalConfig.NoColor
}

// OutputLine prints a line to the command's stdout unless quiet mode is enabled
func OutputLine(cmd *cobra.Command, format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	}
}

// VerboseOutput prints only in verbose mode
func VerboseOutput(cmd *cobra.Command, format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	}
}
