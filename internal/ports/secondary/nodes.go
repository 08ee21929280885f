// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// external systems.
package secondary

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors adapters translate storage failures into.
var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict means an insert violated the (parent, level, sequence) or
	// hierarchical-ID uniqueness constraint, i.e. a lost allocation race.
	ErrConflict = errors.New("uniqueness conflict")
)

// NodeRepository defines the secondary port for node persistence.
type NodeRepository interface {
	// InTx runs fn inside a single write transaction. The read-max/insert
	// allocation step must happen within one InTx call so concurrent
	// allocations under the same parent serialize on the store.
	InTx(ctx context.Context, fn func(tx NodeTx) error) error

	// GetByID retrieves a node by its surrogate key.
	GetByID(ctx context.Context, id int64) (*NodeRecord, error)

	// GetByHierarchicalID retrieves a node by its hierarchical identifier.
	GetByHierarchicalID(ctx context.Context, hierarchicalID string) (*NodeRecord, error)

	// List retrieves nodes matching the given filters, ordered by
	// hierarchical identifier.
	List(ctx context.Context, filters NodeFilters) ([]*NodeRecord, error)

	// ListChildren retrieves the direct children of a node.
	ListChildren(ctx context.Context, parentID int64) ([]*NodeRecord, error)

	// Update persists changes to a node's mutable fields (title,
	// description, status). A non-nil change is appended to the node's
	// history in the same transaction, so a status update and its history
	// row land or fail together.
	Update(ctx context.Context, record *NodeRecord, change *HistoryRecord) error

	// Delete removes a node. Descendants are cascade-deleted by the store.
	Delete(ctx context.Context, id int64) error

	// History retrieves a node's status transitions, oldest first.
	History(ctx context.Context, nodeID int64) ([]*HistoryRecord, error)
}

// NodeTx is the transaction-scoped slice of the repository used by the
// identifier allocation step.
type NodeTx interface {
	// FindMaxSequence returns the highest sequence ever allocated in the
	// (parentID, level) sibling group, 0 if none. Deleted siblings still
	// count: sequences are never reused.
	FindMaxSequence(parentID *int64, level string) (int, error)

	// Insert persists a new node. The store enforces uniqueness of
	// (parentID, level, sequence) and of the hierarchical identifier as a
	// backstop and returns ErrConflict when violated.
	Insert(record *NodeRecord) error
}

// NodeRecord represents a node as stored in persistence.
type NodeRecord struct {
	ID             int64
	HierarchicalID string
	Title          string
	Description    string
	Level          string
	Status         string
	ParentID       *int64 // nil for requirement-level nodes
	Sequence       int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NodeFilters contains filter options for querying nodes.
type NodeFilters struct {
	Level    string
	Status   string
	ParentID *int64
	Search   string
	Limit    int
}

// HistoryRecord represents one status transition as stored in persistence.
type HistoryRecord struct {
	ID         int64
	NodeID     int64
	FromStatus string
	ToStatus   string
	ChangedAt  time.Time
}
