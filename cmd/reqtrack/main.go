package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/reqtrack/internal/cli"
	"github.com/example/reqtrack/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "reqtrack",
		Short:   "reqtrack - hierarchical work item tracker",
		Version: version.String(),
		Long: `reqtrack manages a three-level tree of requirements, tasks and subtasks.
Each item carries a hierarchical identifier like REQ-001.TSK-002.SUB-003
that encodes its full ancestor path.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ReqCmd())
	rootCmd.AddCommand(cli.TaskCmd())
	rootCmd.AddCommand(cli.SubCmd())
	rootCmd.AddCommand(cli.ListCmd())
	rootCmd.AddCommand(cli.ShowCmd())
	rootCmd.AddCommand(cli.UpdateCmd())
	rootCmd.AddCommand(cli.DeleteCmd())
	rootCmd.AddCommand(cli.TreeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
