// Package primary defines the primary ports (driving interfaces) for the
// application. These are the operations the CLI layer invokes.
package primary

import (
	"context"
	"time"
)

// NodeService defines the primary port for work-item operations.
type NodeService interface {
	// CreateNode validates the parent/level pairing, allocates the next
	// hierarchical identifier under the parent and persists the node.
	CreateNode(ctx context.Context, req CreateNodeRequest) (*Node, error)

	// GetNode retrieves a node by its hierarchical identifier.
	GetNode(ctx context.Context, hierarchicalID string) (*Node, error)

	// ListNodes lists nodes with optional filters.
	ListNodes(ctx context.Context, filters NodeFilters) ([]*Node, error)

	// UpdateNode updates a node's title, description and/or status.
	// The hierarchical identifier, parent and sequence never change.
	UpdateNode(ctx context.Context, hierarchicalID string, req UpdateNodeRequest) (*Node, error)

	// DeleteNode deletes a node and its descendants.
	DeleteNode(ctx context.Context, hierarchicalID string) error

	// GetTree retrieves the subtree rooted at a node, depth levels deep.
	GetTree(ctx context.Context, hierarchicalID string, depth int) (*TreeNode, error)

	// GetHistory retrieves the status transition history of a node.
	GetHistory(ctx context.Context, hierarchicalID string) ([]*StatusChange, error)
}

// CreateNodeRequest contains parameters for creating a node.
type CreateNodeRequest struct {
	Level       string // requirement, task or subtask
	ParentID    *int64 // nil for requirements
	Title       string
	Description string
}

// UpdateNodeRequest contains parameters for updating a node.
// Empty fields are left unchanged.
type UpdateNodeRequest struct {
	Title       string
	Description string
	Status      string
}

// NodeFilters contains filter options for listing nodes.
type NodeFilters struct {
	Level    string
	Status   string
	ParentID *int64
	Search   string // substring match on title and description
	Limit    int
}

// Node is the work-item representation handed to the CLI layer.
type Node struct {
	ID             int64
	HierarchicalID string
	Title          string
	Description    string
	Level          string
	Status         string
	ParentID       *int64
	Sequence       int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TreeNode is a node together with its children, for subtree rendering.
type TreeNode struct {
	Node     *Node
	Children []*TreeNode
}

// StatusChange is one entry in a node's status history.
type StatusChange struct {
	FromStatus string
	ToStatus   string
	ChangedAt  time.Time
}
