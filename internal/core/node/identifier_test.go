package node

import (
	"errors"
	"testing"
)

func TestFormatSegment(t *testing.T) {
	tests := []struct {
		name     string
		level    Level
		sequence int
		want     string
		wantErr  error
	}{
		{name: "requirement zero-padded", level: LevelRequirement, sequence: 1, want: "REQ-001"},
		{name: "task double digit", level: LevelTask, sequence: 42, want: "TSK-042"},
		{name: "subtask three digit", level: LevelSubtask, sequence: 999, want: "SUB-999"},
		{name: "widens past 999", level: LevelRequirement, sequence: 1000, want: "REQ-1000"},
		{name: "unknown level", level: Level("epic"), sequence: 1, wantErr: ErrInvalidLevel},
		{name: "zero sequence", level: LevelTask, sequence: 0, wantErr: ErrMalformedIdentifier},
		{name: "negative sequence", level: LevelTask, sequence: -3, wantErr: ErrMalformedIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatSegment(tt.level, tt.sequence)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FormatSegment() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatSegment() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FormatSegment() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompose(t *testing.T) {
	if got := Compose("", "REQ-001"); got != "REQ-001" {
		t.Errorf("Compose root = %q, want REQ-001", got)
	}
	if got := Compose("REQ-001", "TSK-002"); got != "REQ-001.TSK-002" {
		t.Errorf("Compose child = %q, want REQ-001.TSK-002", got)
	}
	if got := Compose("REQ-001.TSK-002", "SUB-003"); got != "REQ-001.TSK-002.SUB-003" {
		t.Errorf("Compose grandchild = %q, want REQ-001.TSK-002.SUB-003", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		hid     string
		want    []Segment
		wantErr bool
	}{
		{
			name: "single segment",
			hid:  "REQ-001",
			want: []Segment{{LevelRequirement, 1}},
		},
		{
			name: "two segments",
			hid:  "REQ-001.TSK-002",
			want: []Segment{{LevelRequirement, 1}, {LevelTask, 2}},
		},
		{
			name: "three segments",
			hid:  "REQ-001.TSK-002.SUB-003",
			want: []Segment{{LevelRequirement, 1}, {LevelTask, 2}, {LevelSubtask, 3}},
		},
		{
			name: "wide sequence accepted",
			hid:  "REQ-1000.TSK-001",
			want: []Segment{{LevelRequirement, 1000}, {LevelTask, 1}},
		},
		{name: "empty", hid: "", wantErr: true},
		{name: "two digit sequence rejected", hid: "REQ-01", wantErr: true},
		{name: "unknown prefix", hid: "EPC-001", wantErr: true},
		{name: "lowercase prefix", hid: "req-001", wantErr: true},
		{name: "missing dash", hid: "REQ001", wantErr: true},
		{name: "trailing dot", hid: "REQ-001.", wantErr: true},
		{name: "four segments", hid: "REQ-001.TSK-001.SUB-001.SUB-002", wantErr: true},
		{name: "garbage between dots", hid: "REQ-001..TSK-001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.hid)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedIdentifier) {
					t.Fatalf("Parse(%q) error = %v, want ErrMalformedIdentifier", tt.hid, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.hid, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Parse(%q) = %d segments, want %d", tt.hid, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Parse is restartable: parsing the same identifier twice yields the same
// segments, and a parsed identifier round-trips through Compose/String.
func TestParseFormatRoundTrip(t *testing.T) {
	cases := []struct {
		level    Level
		sequence int
	}{
		{LevelRequirement, 1},
		{LevelTask, 7},
		{LevelSubtask, 999},
		{LevelTask, 1000},
		{LevelSubtask, 12345},
	}

	for _, c := range cases {
		seg, err := FormatSegment(c.level, c.sequence)
		if err != nil {
			t.Fatalf("FormatSegment(%v, %d) error = %v", c.level, c.sequence, err)
		}
		hid := Compose("REQ-001", seg)
		parsed, err := Parse(hid)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", hid, err)
		}
		last := parsed[len(parsed)-1]
		if last.Level != c.level || last.Sequence != c.sequence {
			t.Errorf("round trip %q: last segment = %+v, want {%v %d}", hid, last, c.level, c.sequence)
		}
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		hid  string
		want int
	}{
		{"REQ-001", 1},
		{"REQ-001.TSK-001", 2},
		{"REQ-001.TSK-001.SUB-001", 3},
	}
	for _, tt := range tests {
		got, err := Depth(tt.hid)
		if err != nil {
			t.Fatalf("Depth(%q) error = %v", tt.hid, err)
		}
		if got != tt.want {
			t.Errorf("Depth(%q) = %d, want %d", tt.hid, got, tt.want)
		}
	}

	if _, err := Depth("REQ-001.BAD"); !errors.Is(err, ErrMalformedIdentifier) {
		t.Errorf("Depth with bad segment: error = %v, want ErrMalformedIdentifier", err)
	}
}

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "sibling order", a: "REQ-001", b: "REQ-002", want: -1},
		{name: "equal", a: "REQ-001.TSK-002", b: "REQ-001.TSK-002", want: 0},
		{name: "wide sequence after padded", a: "REQ-1000", b: "REQ-002", want: 1},
		{name: "wide sequence after REQ-999", a: "REQ-999", b: "REQ-1000", want: -1},
		{name: "ancestor before descendant", a: "REQ-001", b: "REQ-001.TSK-001", want: -1},
		{name: "differs in deep segment", a: "REQ-001.TSK-002.SUB-001", b: "REQ-001.TSK-002.SUB-010", want: -1},
		{name: "unparseable falls back to string order", a: "zzz", b: "REQ-001", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareIDs(tt.a, tt.b)
			if (got < 0) != (tt.want < 0) || (got > 0) != (tt.want > 0) {
				t.Errorf("CompareIDs(%q, %q) = %d, want sign of %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLevelOrdering(t *testing.T) {
	if d := LevelRequirement.Depth(); d != 1 {
		t.Errorf("requirement depth = %d, want 1", d)
	}
	if d := LevelSubtask.Depth(); d != 3 {
		t.Errorf("subtask depth = %d, want 3", d)
	}
	if _, ok := LevelRequirement.ParentLevel(); ok {
		t.Error("requirement should have no parent level")
	}
	if p, ok := LevelSubtask.ParentLevel(); !ok || p != LevelTask {
		t.Errorf("subtask parent level = %v, want task", p)
	}
	if _, err := ParseLevel("milestone"); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("ParseLevel(milestone) error = %v, want ErrInvalidLevel", err)
	}
}
