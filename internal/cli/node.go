package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/reqtrack/internal/core/node"
	"github.com/example/reqtrack/internal/ports/primary"
	"github.com/example/reqtrack/internal/wire"
)

var reqCmd = &cobra.Command{
	Use:   "req",
	Short: "Manage requirements (top-level work items)",
	Long:  "Create requirements, the roots of the REQ-001.TSK-002.SUB-003 tree",
}

var reqCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new requirement",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, args[0], "requirement")
	},
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks (work items under a requirement)",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new task under a requirement",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, args[0], "task")
	},
}

var subCmd = &cobra.Command{
	Use:   "sub",
	Short: "Manage subtasks (work items under a task)",
}

var subCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new subtask under a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, args[0], "subtask")
	},
}

// runCreate is shared by the three create commands. Levels below
// requirement resolve --parent from its hierarchical identifier.
func runCreate(cmd *cobra.Command, title, level string) error {
	ctx := context.Background()
	description, _ := cmd.Flags().GetString("description")
	parentHID, _ := cmd.Flags().GetString("parent")

	var parentID *int64
	if parentHID != "" {
		parent, err := wire.NodeService().GetNode(ctx, parentHID)
		if err != nil {
			return fmt.Errorf("failed to resolve parent %s: %w", parentHID, err)
		}
		parentID = &parent.ID
	}

	created, err := wire.NodeService().CreateNode(ctx, primary.CreateNodeRequest{
		Level:       level,
		ParentID:    parentID,
		Title:       title,
		Description: description,
	})
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", level, err)
	}

	fmt.Printf("✓ Created %s %s: %s\n", level, colorHID(created.HierarchicalID), created.Title)
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List work items",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		level, _ := cmd.Flags().GetString("level")
		status, _ := cmd.Flags().GetString("status")
		parentHID, _ := cmd.Flags().GetString("parent")
		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")

		filters := primary.NodeFilters{
			Level:  level,
			Status: status,
			Search: search,
			Limit:  limit,
		}
		if parentHID != "" {
			parent, err := wire.NodeService().GetNode(ctx, parentHID)
			if err != nil {
				return fmt.Errorf("failed to resolve parent %s: %w", parentHID, err)
			}
			filters.ParentID = &parent.ID
		}

		nodes, err := wire.NodeService().ListNodes(ctx, filters)
		if err != nil {
			return fmt.Errorf("failed to list work items: %w", err)
		}

		if len(nodes) == 0 {
			fmt.Println("No work items found.")
			return nil
		}

		fmt.Printf("Found %d work item(s):\n\n", len(nodes))
		for _, n := range nodes {
			fmt.Printf("%s %s: %s [%s]\n", getStatusIcon(n.Status), colorHID(n.HierarchicalID), n.Title, n.Status)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show work item details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		n, err := wire.NodeService().GetNode(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get work item: %w", err)
		}

		fmt.Printf("%s %s\n", getStatusIcon(n.Status), colorHID(n.HierarchicalID))
		fmt.Printf("  Title:   %s\n", n.Title)
		fmt.Printf("  Level:   %s\n", n.Level)
		fmt.Printf("  Status:  %s\n", n.Status)
		if n.Description != "" {
			fmt.Printf("  Description: %s\n", n.Description)
		}
		fmt.Printf("  Created: %s\n", n.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("  Updated: %s\n", n.UpdatedAt.Format("2006-01-02 15:04"))

		history, err := wire.NodeService().GetHistory(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}
		if len(history) > 0 {
			fmt.Println("\n  Status history:")
			for _, change := range history {
				fmt.Printf("    %s  %s → %s\n", change.ChangedAt.Format("2006-01-02 15:04"), change.FromStatus, change.ToStatus)
			}
		}
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a work item's title, description or status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		status, _ := cmd.Flags().GetString("status")

		if title == "" && description == "" && status == "" {
			return fmt.Errorf("nothing to update: pass --title, --description or --status")
		}

		updated, err := wire.NodeService().UpdateNode(ctx, args[0], primary.UpdateNodeRequest{
			Title:       title,
			Description: description,
			Status:      status,
		})
		if err != nil {
			return fmt.Errorf("failed to update work item: %w", err)
		}

		fmt.Printf("✓ Updated %s: %s [%s]\n", colorHID(updated.HierarchicalID), updated.Title, updated.Status)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a work item and its descendants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if err := wire.NodeService().DeleteNode(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to delete work item: %w", err)
		}

		fmt.Printf("✓ Deleted %s (descendants removed, identifiers retired)\n", args[0])
		return nil
	},
}

// getStatusIcon returns an emoji icon for a work item status
func getStatusIcon(status string) string {
	switch status {
	case node.StatusInProgress:
		return "🔧"
	case node.StatusDone:
		return "✅"
	case node.StatusBlocked:
		return "🚫"
	default:
		return "📋"
	}
}

// colorHID colors each segment of a hierarchical identifier by its level.
func colorHID(hid string) string {
	segments, err := node.Parse(hid)
	if err != nil {
		return hid
	}
	out := ""
	for i, seg := range segments {
		if i > 0 {
			out += "."
		}
		out += getLevelColor(seg.Level).Sprint(seg.String())
	}
	return out
}

func getLevelColor(level node.Level) *color.Color {
	switch level {
	case node.LevelRequirement:
		return color.New(color.FgHiBlue)
	case node.LevelTask:
		return color.New(color.FgYellow)
	case node.LevelSubtask:
		return color.New(color.FgHiGreen)
	default:
		return color.New(color.FgWhite)
	}
}

func init() {
	reqCreateCmd.Flags().StringP("description", "d", "", "Requirement description")

	taskCreateCmd.Flags().StringP("description", "d", "", "Task description")
	taskCreateCmd.Flags().StringP("parent", "p", "", "Parent requirement (e.g. REQ-001)")
	_ = taskCreateCmd.MarkFlagRequired("parent")

	subCreateCmd.Flags().StringP("description", "d", "", "Subtask description")
	subCreateCmd.Flags().StringP("parent", "p", "", "Parent task (e.g. REQ-001.TSK-002)")
	_ = subCreateCmd.MarkFlagRequired("parent")

	listCmd.Flags().StringP("level", "l", "", "Filter by level (requirement, task, subtask)")
	listCmd.Flags().StringP("status", "s", "", "Filter by status")
	listCmd.Flags().String("parent", "", "Filter by parent hierarchical ID")
	listCmd.Flags().StringP("search", "q", "", "Substring search over title and description")
	listCmd.Flags().Int("limit", 0, "Maximum number of results")

	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().StringP("description", "d", "", "New description")
	updateCmd.Flags().StringP("status", "s", "", "New status (not_started, in_progress, blocked, done)")

	reqCmd.AddCommand(reqCreateCmd)
	taskCmd.AddCommand(taskCreateCmd)
	subCmd.AddCommand(subCreateCmd)
}

// ReqCmd returns the requirement command group.
func ReqCmd() *cobra.Command {
	return reqCmd
}

// TaskCmd returns the task command group.
func TaskCmd() *cobra.Command {
	return taskCmd
}

// SubCmd returns the subtask command group.
func SubCmd() *cobra.Command {
	return subCmd
}

// ListCmd returns the list command.
func ListCmd() *cobra.Command {
	return listCmd
}

// ShowCmd returns the show command.
func ShowCmd() *cobra.Command {
	return showCmd
}

// UpdateCmd returns the update command.
func UpdateCmd() *cobra.Command {
	return updateCmd
}

// DeleteCmd returns the delete command.
func DeleteCmd() *cobra.Command {
	return deleteCmd
}
