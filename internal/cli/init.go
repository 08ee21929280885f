package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/reqtrack/internal/config"
	"github.com/example/reqtrack/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize reqtrack in the current directory",
	Long:  "Write .reqtrack/config.json and create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}

		dbPath, _ := cmd.Flags().GetString("db")
		project, _ := cmd.Flags().GetString("project")

		cfg := &config.Config{
			Version: "1",
			DBPath:  dbPath,
			Project: project,
		}
		if err := config.SaveConfig(cwd, cfg); err != nil {
			return err
		}

		// Opening the connection creates the schema on first use.
		if _, err := db.GetDB(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		resolved, err := db.ResolveDBPath()
		if err != nil {
			return err
		}
		fmt.Printf("✓ Initialized reqtrack (database: %s)\n", resolved)
		return nil
	},
}

func init() {
	initCmd.Flags().String("db", "", "Database file path (default ~/.reqtrack/reqtrack.db)")
	initCmd.Flags().String("project", "", "Project display name")
}

// InitCmd returns the init command.
func InitCmd() *cobra.Command {
	return initCmd
}
