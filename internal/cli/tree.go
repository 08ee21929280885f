package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/reqtrack/internal/ports/primary"
	"github.com/example/reqtrack/internal/wire"
)

var treeCmd = &cobra.Command{
	Use:   "tree [id]",
	Short: "Show a work item subtree",
	Long:  "Render the subtree rooted at a work item; without an id, all requirements with their children",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		depth, _ := cmd.Flags().GetInt("depth")

		if len(args) == 1 {
			tree, err := wire.NodeService().GetTree(ctx, args[0], depth)
			if err != nil {
				return fmt.Errorf("failed to load tree: %w", err)
			}
			printTree(tree, "")
			return nil
		}

		roots, err := wire.NodeService().ListNodes(ctx, primary.NodeFilters{Level: "requirement"})
		if err != nil {
			return fmt.Errorf("failed to list requirements: %w", err)
		}
		if len(roots) == 0 {
			fmt.Println("No requirements found.")
			return nil
		}
		for _, root := range roots {
			tree, err := wire.NodeService().GetTree(ctx, root.HierarchicalID, depth)
			if err != nil {
				return fmt.Errorf("failed to load tree for %s: %w", root.HierarchicalID, err)
			}
			printTree(tree, "")
		}
		return nil
	},
}

func printTree(tree *primary.TreeNode, prefix string) {
	fmt.Printf("%s%s %s: %s [%s]\n", prefix, getStatusIcon(tree.Node.Status),
		colorHID(tree.Node.HierarchicalID), tree.Node.Title, tree.Node.Status)
	for i, child := range tree.Children {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(tree.Children)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		printTreeChild(child, prefix+connector, childPrefix)
	}
}

func printTreeChild(tree *primary.TreeNode, connectorPrefix, childPrefix string) {
	fmt.Printf("%s%s %s: %s [%s]\n", connectorPrefix, getStatusIcon(tree.Node.Status),
		colorHID(tree.Node.HierarchicalID), tree.Node.Title, tree.Node.Status)
	for i, child := range tree.Children {
		connector := "├── "
		nextPrefix := childPrefix + "│   "
		if i == len(tree.Children)-1 {
			connector = "└── "
			nextPrefix = childPrefix + "    "
		}
		printTreeChild(child, childPrefix+connector, nextPrefix)
	}
}

func init() {
	treeCmd.Flags().Int("depth", 2, "How many levels below the root to include (1-5)")
}

// TreeCmd returns the tree command.
func TreeCmd() *cobra.Command {
	return treeCmd
}
