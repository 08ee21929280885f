package node

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxDepth is the deepest tier of the tree (requirement.task.subtask).
const MaxDepth = 3

// Segment is one PREFIX-NNN component of a hierarchical identifier.
type Segment struct {
	Level    Level
	Sequence int
}

// String renders the segment back into its wire form.
func (s Segment) String() string {
	seg, err := FormatSegment(s.Level, s.Sequence)
	if err != nil {
		return ""
	}
	return seg
}

// segmentRe matches one identifier segment. Sequences are zero-padded to
// three digits but widen past 999, so the run is 3-or-more digits.
var segmentRe = regexp.MustCompile(`^(REQ|TSK|SUB)-(\d{3,})$`)

// FormatSegment renders a level and sequence as "PFX-NNN".
// Sequence 1000 and above widens naturally ("REQ-1000").
func FormatSegment(level Level, sequence int) (string, error) {
	prefix, err := level.Prefix()
	if err != nil {
		return "", err
	}
	if sequence < 1 {
		return "", fmt.Errorf("%w: sequence %d must be positive", ErrMalformedIdentifier, sequence)
	}
	return fmt.Sprintf("%s-%03d", prefix, sequence), nil
}

// Compose joins a parent hierarchical ID and a child segment.
// An empty parent means the segment is a root identifier.
func Compose(parentHID, segment string) string {
	if parentHID == "" {
		return segment
	}
	return parentHID + "." + segment
}

// Parse splits a hierarchical identifier into its ordered segments.
// Each part must match the segment grammar and the identifier may carry at
// most MaxDepth segments. Ordering of prefixes is the consistency guards'
// concern, not the parser's.
func Parse(hid string) ([]Segment, error) {
	if hid == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrMalformedIdentifier)
	}
	parts := strings.Split(hid, ".")
	if len(parts) > MaxDepth {
		return nil, fmt.Errorf("%w: %q has %d segments (max %d)", ErrMalformedIdentifier, hid, len(parts), MaxDepth)
	}
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		m := segmentRe.FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("%w: bad segment %q in %q", ErrMalformedIdentifier, part, hid)
		}
		level, ok := levelForPrefix(m[1])
		if !ok {
			return nil, fmt.Errorf("%w: unknown prefix %q", ErrMalformedIdentifier, m[1])
		}
		seq, err := strconv.Atoi(m[2])
		if err != nil || seq < 1 {
			return nil, fmt.Errorf("%w: bad sequence in %q", ErrMalformedIdentifier, part)
		}
		segments = append(segments, Segment{Level: level, Sequence: seq})
	}
	return segments, nil
}

// Depth returns the number of segments in a hierarchical identifier.
func Depth(hid string) (int, error) {
	segments, err := Parse(hid)
	if err != nil {
		return 0, err
	}
	return len(segments), nil
}

// CompareIDs orders two hierarchical identifiers segment by segment on
// their numeric sequences, so REQ-1000 sorts after REQ-999 rather than
// between REQ-001 and REQ-002 as plain string order would have it.
// Ancestors sort before their descendants. Identifiers that do not parse
// fall back to string order.
func CompareIDs(a, b string) int {
	as, errA := Parse(a)
	bs, errB := Parse(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i].Sequence != bs[i].Sequence {
			if as[i].Sequence < bs[i].Sequence {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}
