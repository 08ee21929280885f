package node

import "fmt"

// CreateContext provides context for node creation guards.
type CreateContext struct {
	Level       Level
	HasParent   bool
	ParentLevel Level // only meaningful when HasParent
}

// ValidateCreate evaluates whether a node may be created under the given
// parent. Rules are checked in order; the first failure wins:
//  1. A requirement must not have a parent.
//  2. Any other level must have one.
//  3. The parent must sit exactly one level above the child.
//
// Depth is bounded by the Level set itself: nothing below subtask exists,
// so no runtime check is needed for it.
func ValidateCreate(ctx CreateContext) error {
	if _, err := ctx.Level.Prefix(); err != nil {
		return err
	}

	if ctx.Level == LevelRequirement {
		if ctx.HasParent {
			return fmt.Errorf("%w: got parent at level %q", ErrUnexpectedParent, string(ctx.ParentLevel))
		}
		return nil
	}

	if !ctx.HasParent {
		return fmt.Errorf("%w: %s nodes must have a parent", ErrMissingParent, string(ctx.Level))
	}

	want, _ := ctx.Level.ParentLevel()
	if ctx.ParentLevel != want {
		return fmt.Errorf("%w: %s must attach under a %s, not a %s",
			ErrLevelMismatch, string(ctx.Level), string(want), string(ctx.ParentLevel))
	}

	return nil
}

// StatusTransitionContext provides context for status update guards.
type StatusTransitionContext struct {
	NodeID string
	Status string
}

// Node status constants. New nodes start as not_started.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusBlocked    = "blocked"
	StatusDone       = "done"
)

var validStatuses = map[string]bool{
	StatusNotStarted: true,
	StatusInProgress: true,
	StatusBlocked:    true,
	StatusDone:       true,
}

// ValidateStatus evaluates whether a status value is part of the vocabulary.
func ValidateStatus(ctx StatusTransitionContext) error {
	if !validStatuses[ctx.Status] {
		return fmt.Errorf("invalid status %q for %s (want not_started, in_progress, blocked or done)",
			ctx.Status, ctx.NodeID)
	}
	return nil
}
