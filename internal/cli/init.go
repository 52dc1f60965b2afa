package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gueldenstone/vogonix/internal/config"
	"github.com/gueldenstone/vogonix/internal/db"
	werrors "github.com/gueldenstone/vogonix/internal/errors"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing database")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize vogonix for first-time use",
	Long: `Initialize vogonix by creating the ~/.vogonix/ directory and database.

This command:
- Creates vogonix.db with the database schema
- Writes a commented sample config.toml if none exists

Use --force to overwrite an existing database.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

type initResult struct {
	Database      string `json:"database"`
	Created       bool   `json:"created"`
	Schema        int64  `json:"schema_version,omitempty"`
	Config        string `json:"config,omitempty"`
	ConfigCreated bool   `json:"config_created"`
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetDBPath()
	result := initResult{Database: db.ResolvePath(path)}

	if db.Exists(path) && !initForce {
		if IsJSON() {
			return printJSON(cmd, result)
		}
		return werrors.StateError("database already exists at %s", result.Database).
			WithSuggestion("Use --force to overwrite it.")
	}

	if initForce && db.Exists(path) {
		VerboseOutput(cmd, "Removing existing database...\n")
		if err := db.Delete(path); err != nil {
			return werrors.WrapInternal(err, "failed to remove existing database")
		}
	}

	VerboseOutput(cmd, "Creating database...\n")
	database, err := db.OpenMigrated(path)
	if err != nil {
		return werrors.WrapInternal(err, "failed to create database")
	}
	defer database.Close()

	version, err := database.MigrationStatus()
	if err != nil {
		return werrors.WrapInternal(err, "failed to get migration status")
	}
	result.Created = true
	result.Schema = version

	if cfgPath := config.DefaultConfigPath(); cfgPath != "" {
		result.Config = cfgPath
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			if err := config.WriteConfigFile(cfgPath); err != nil {
				return werrors.WrapInternal(err, "failed to write config file")
			}
			result.ConfigCreated = true
		}
	}

	if IsJSON() {
		return printJSON(cmd, result)
	}

	OutputLine(cmd, "Initialized vogonix database at %s", result.Database)
	OutputLine(cmd, "Schema version: %d", version)
	if result.ConfigCreated {
		OutputLine(cmd, "Wrote sample config to %s", result.Config)
	}
	return nil
}
