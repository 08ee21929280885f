// Package node contains the pure business logic for the work-item tree:
// the level ordering, the hierarchical identifier grammar, and the
// parent/child consistency guards. Functions here are side-effect free.
package node

import "fmt"

// Level is the depth tier of a node in the work-item tree.
type Level string

const (
	LevelRequirement Level = "requirement"
	LevelTask        Level = "task"
	LevelSubtask     Level = "subtask"
)

// levelOrder fixes the requirement < task < subtask ordering.
// Depth is index+1; the last entry has no child level.
var levelOrder = []Level{LevelRequirement, LevelTask, LevelSubtask}

// prefixes maps each level to its identifier segment prefix.
var prefixes = map[Level]string{
	LevelRequirement: "REQ",
	LevelTask:        "TSK",
	LevelSubtask:     "SUB",
}

// ParseLevel converts a user-supplied string to a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if _, ok := prefixes[l]; !ok {
		return "", fmt.Errorf("%w: %q (want requirement, task or subtask)", ErrInvalidLevel, s)
	}
	return l, nil
}

// Prefix returns the segment prefix for the level ("REQ", "TSK", "SUB").
func (l Level) Prefix() (string, error) {
	p, ok := prefixes[l]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, string(l))
	}
	return p, nil
}

// Depth returns the tree depth of the level, 1-based. Zero for unknown levels.
func (l Level) Depth() int {
	for i, candidate := range levelOrder {
		if candidate == l {
			return i + 1
		}
	}
	return 0
}

// ParentLevel returns the level a parent of l must have.
// ok is false for requirement (roots have no parent) and unknown levels.
func (l Level) ParentLevel() (Level, bool) {
	d := l.Depth()
	if d <= 1 {
		return "", false
	}
	return levelOrder[d-2], true
}

// levelForPrefix is the inverse of Prefix, used by the parser.
func levelForPrefix(prefix string) (Level, bool) {
	for l, p := range prefixes {
		if p == prefix {
			return l, true
		}
	}
	return "", false
}
