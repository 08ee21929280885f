package node

import "errors"

// Error kinds surfaced by the identifier core. All are matchable with
// errors.Is; callers treat validation kinds as caller errors (never retried)
// and ErrAllocationConflict as transient contention.
var (
	// ErrInvalidLevel means a level value outside requirement/task/subtask.
	ErrInvalidLevel = errors.New("invalid level")

	// ErrMalformedIdentifier means a hierarchical ID that does not match the
	// PREFIX-NNN dot-separated grammar.
	ErrMalformedIdentifier = errors.New("malformed hierarchical identifier")

	// ErrUnexpectedParent means a requirement was given a parent.
	ErrUnexpectedParent = errors.New("requirement cannot have a parent")

	// ErrMissingParent means a task or subtask was created without a parent.
	ErrMissingParent = errors.New("parent is required")

	// ErrLevelMismatch means the parent is not exactly one level above the child.
	ErrLevelMismatch = errors.New("parent level mismatch")

	// ErrParentNotFound means the supplied parent reference does not resolve
	// to a persisted node.
	ErrParentNotFound = errors.New("parent node not found")

	// ErrAllocationConflict means concurrent creations under the same parent
	// kept colliding after bounded retries.
	ErrAllocationConflict = errors.New("identifier allocation conflict")
)

// IsValidationError reports whether err is one of the parent/level
// validation kinds (caller error, not retryable).
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUnexpectedParent) ||
		errors.Is(err, ErrMissingParent) ||
		errors.Is(err, ErrLevelMismatch)
}
