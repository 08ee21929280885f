// Package app implements the primary ports as application services.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/reqtrack/internal/core/node"
	"github.com/example/reqtrack/internal/ports/primary"
	"github.com/example/reqtrack/internal/ports/secondary"
)

// maxAllocateAttempts bounds the retry loop around the allocate/insert cycle
// when the uniqueness backstop reports a lost race.
const maxAllocateAttempts = 5

// allocateBackoff is the base delay between allocation retries; attempt n
// waits allocateBackoff << n.
const allocateBackoff = 100 * time.Millisecond

// NodeServiceImpl implements the NodeService interface.
type NodeServiceImpl struct {
	nodeRepo secondary.NodeRepository

	// sleep is swapped out in tests to keep retries instant.
	sleep func(time.Duration)
}

// NewNodeService creates a new NodeService with injected dependencies.
func NewNodeService(nodeRepo secondary.NodeRepository) *NodeServiceImpl {
	return &NodeServiceImpl{
		nodeRepo: nodeRepo,
		sleep:    time.Sleep,
	}
}

// CreateNode validates the parent/level pairing, allocates the next sequence
// under the parent and persists the node. The read-max/insert step runs in a
// single repository transaction; a constraint violation (lost race) restarts
// the cycle up to maxAllocateAttempts times.
func (s *NodeServiceImpl) CreateNode(ctx context.Context, req primary.CreateNodeRequest) (*primary.Node, error) {
	level, err := node.ParseLevel(req.Level)
	if err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	// Resolve the parent before validating; a stale reference is a
	// ParentNotFound, not a validation failure.
	var parent *secondary.NodeRecord
	if req.ParentID != nil {
		parent, err = s.nodeRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, secondary.ErrNotFound) {
				return nil, fmt.Errorf("%w: id %d", node.ErrParentNotFound, *req.ParentID)
			}
			return nil, fmt.Errorf("failed to resolve parent: %w", err)
		}
	}

	guardCtx := node.CreateContext{Level: level, HasParent: parent != nil}
	if parent != nil {
		guardCtx.ParentLevel = node.Level(parent.Level)
	}
	if err := node.ValidateCreate(guardCtx); err != nil {
		return nil, err
	}

	record, err := s.allocateAndInsert(ctx, level, parent, req)
	if err != nil {
		return nil, err
	}

	return recordToNode(record), nil
}

// allocateAndInsert runs the allocate cycle with bounded retries. Each
// attempt re-reads the max sequence so a winner's insert is observed by the
// retry.
func (s *NodeServiceImpl) allocateAndInsert(ctx context.Context, level node.Level, parent *secondary.NodeRecord, req primary.CreateNodeRequest) (*secondary.NodeRecord, error) {
	parentHID := ""
	var parentID *int64
	if parent != nil {
		parentHID = parent.HierarchicalID
		parentID = &parent.ID
	}

	var lastErr error
	for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
		if attempt > 0 {
			s.sleep(allocateBackoff << (attempt - 1))
		}

		record := &secondary.NodeRecord{
			Title:       req.Title,
			Description: req.Description,
			Level:       string(level),
			ParentID:    parentID,
		}

		err := s.nodeRepo.InTx(ctx, func(tx secondary.NodeTx) error {
			maxSeq, err := tx.FindMaxSequence(parentID, string(level))
			if err != nil {
				return err
			}

			record.Sequence = maxSeq + 1
			segment, err := node.FormatSegment(level, record.Sequence)
			if err != nil {
				return err
			}
			record.HierarchicalID = node.Compose(parentHID, segment)

			return tx.Insert(record)
		})
		if err == nil {
			return record, nil
		}
		// The parent vanished between resolution and insert. Not a race
		// worth retrying: the sibling group itself is gone.
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, fmt.Errorf("%w: parent %s deleted during allocation", node.ErrParentNotFound, parentHID)
		}
		if !errors.Is(err, secondary.ErrConflict) {
			return nil, fmt.Errorf("failed to create node: %w", err)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: gave up after %d attempts: %v", node.ErrAllocationConflict, maxAllocateAttempts, lastErr)
}

// GetNode retrieves a node by its hierarchical identifier.
func (s *NodeServiceImpl) GetNode(ctx context.Context, hierarchicalID string) (*primary.Node, error) {
	if _, err := node.Parse(hierarchicalID); err != nil {
		return nil, err
	}
	record, err := s.nodeRepo.GetByHierarchicalID(ctx, hierarchicalID)
	if err != nil {
		return nil, err
	}
	return recordToNode(record), nil
}

// ListNodes lists nodes with optional filters.
func (s *NodeServiceImpl) ListNodes(ctx context.Context, filters primary.NodeFilters) ([]*primary.Node, error) {
	if filters.Level != "" {
		if _, err := node.ParseLevel(filters.Level); err != nil {
			return nil, err
		}
	}

	records, err := s.nodeRepo.List(ctx, secondary.NodeFilters{
		Level:    filters.Level,
		Status:   filters.Status,
		ParentID: filters.ParentID,
		Search:   filters.Search,
		Limit:    filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	nodes := make([]*primary.Node, 0, len(records))
	for _, record := range records {
		nodes = append(nodes, recordToNode(record))
	}
	return nodes, nil
}

// UpdateNode updates a node's title, description and/or status. Empty fields
// are left unchanged; the identifier, parent and sequence never change.
func (s *NodeServiceImpl) UpdateNode(ctx context.Context, hierarchicalID string, req primary.UpdateNodeRequest) (*primary.Node, error) {
	if _, err := node.Parse(hierarchicalID); err != nil {
		return nil, err
	}

	record, err := s.nodeRepo.GetByHierarchicalID(ctx, hierarchicalID)
	if err != nil {
		return nil, err
	}

	previousStatus := record.Status
	if req.Title != "" {
		record.Title = req.Title
	}
	if req.Description != "" {
		record.Description = req.Description
	}
	if req.Status != "" {
		if err := node.ValidateStatus(node.StatusTransitionContext{
			NodeID: record.HierarchicalID,
			Status: req.Status,
		}); err != nil {
			return nil, err
		}
		record.Status = req.Status
	}

	// The history row rides the same transaction as the field update, so a
	// status change never lands without its transition on record.
	var change *secondary.HistoryRecord
	if record.Status != previousStatus {
		change = &secondary.HistoryRecord{
			NodeID:     record.ID,
			FromStatus: previousStatus,
			ToStatus:   record.Status,
		}
	}
	if err := s.nodeRepo.Update(ctx, record, change); err != nil {
		return nil, fmt.Errorf("failed to update node: %w", err)
	}

	updated, err := s.nodeRepo.GetByHierarchicalID(ctx, hierarchicalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated node: %w", err)
	}
	return recordToNode(updated), nil
}

// DeleteNode deletes a node and, via the store's cascade rule, its subtree.
// The freed sequences are never reallocated.
func (s *NodeServiceImpl) DeleteNode(ctx context.Context, hierarchicalID string) error {
	if _, err := node.Parse(hierarchicalID); err != nil {
		return err
	}
	record, err := s.nodeRepo.GetByHierarchicalID(ctx, hierarchicalID)
	if err != nil {
		return err
	}
	return s.nodeRepo.Delete(ctx, record.ID)
}

// GetTree retrieves the subtree rooted at a node. Depth is clamped to 1..5;
// depth 1 returns the node with its direct children.
func (s *NodeServiceImpl) GetTree(ctx context.Context, hierarchicalID string, depth int) (*primary.TreeNode, error) {
	if _, err := node.Parse(hierarchicalID); err != nil {
		return nil, err
	}
	if depth < 1 {
		depth = 1
	}
	if depth > 5 {
		depth = 5
	}

	record, err := s.nodeRepo.GetByHierarchicalID(ctx, hierarchicalID)
	if err != nil {
		return nil, err
	}
	return s.buildTree(ctx, record, depth)
}

func (s *NodeServiceImpl) buildTree(ctx context.Context, record *secondary.NodeRecord, depth int) (*primary.TreeNode, error) {
	tree := &primary.TreeNode{Node: recordToNode(record)}
	if depth == 0 {
		return tree, nil
	}

	children, err := s.nodeRepo.ListChildren(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load children of %s: %w", record.HierarchicalID, err)
	}
	for _, child := range children {
		sub, err := s.buildTree(ctx, child, depth-1)
		if err != nil {
			return nil, err
		}
		tree.Children = append(tree.Children, sub)
	}
	return tree, nil
}

// GetHistory retrieves the status transition history of a node.
func (s *NodeServiceImpl) GetHistory(ctx context.Context, hierarchicalID string) ([]*primary.StatusChange, error) {
	if _, err := node.Parse(hierarchicalID); err != nil {
		return nil, err
	}
	record, err := s.nodeRepo.GetByHierarchicalID(ctx, hierarchicalID)
	if err != nil {
		return nil, err
	}

	entries, err := s.nodeRepo.History(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	changes := make([]*primary.StatusChange, 0, len(entries))
	for _, entry := range entries {
		changes = append(changes, &primary.StatusChange{
			FromStatus: entry.FromStatus,
			ToStatus:   entry.ToStatus,
			ChangedAt:  entry.ChangedAt,
		})
	}
	return changes, nil
}

// recordToNode converts a persistence record to the primary port type.
func recordToNode(record *secondary.NodeRecord) *primary.Node {
	return &primary.Node{
		ID:             record.ID,
		HierarchicalID: record.HierarchicalID,
		Title:          record.Title,
		Description:    record.Description,
		Level:          record.Level,
		Status:         record.Status,
		ParentID:       record.ParentID,
		Sequence:       record.Sequence,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}
