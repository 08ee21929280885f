package node

import (
	"errors"
	"testing"
)

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name    string
		ctx     CreateContext
		wantErr error
	}{
		{
			name: "requirement without parent",
			ctx:  CreateContext{Level: LevelRequirement},
		},
		{
			name: "task under requirement",
			ctx:  CreateContext{Level: LevelTask, HasParent: true, ParentLevel: LevelRequirement},
		},
		{
			name: "subtask under task",
			ctx:  CreateContext{Level: LevelSubtask, HasParent: true, ParentLevel: LevelTask},
		},
		{
			name:    "requirement with parent",
			ctx:     CreateContext{Level: LevelRequirement, HasParent: true, ParentLevel: LevelRequirement},
			wantErr: ErrUnexpectedParent,
		},
		{
			name:    "task without parent",
			ctx:     CreateContext{Level: LevelTask},
			wantErr: ErrMissingParent,
		},
		{
			name:    "subtask without parent",
			ctx:     CreateContext{Level: LevelSubtask},
			wantErr: ErrMissingParent,
		},
		{
			name:    "subtask directly under requirement",
			ctx:     CreateContext{Level: LevelSubtask, HasParent: true, ParentLevel: LevelRequirement},
			wantErr: ErrLevelMismatch,
		},
		{
			name:    "task under task",
			ctx:     CreateContext{Level: LevelTask, HasParent: true, ParentLevel: LevelTask},
			wantErr: ErrLevelMismatch,
		},
		{
			name:    "task under subtask",
			ctx:     CreateContext{Level: LevelTask, HasParent: true, ParentLevel: LevelSubtask},
			wantErr: ErrLevelMismatch,
		},
		{
			name:    "unknown level",
			ctx:     CreateContext{Level: Level("epic")},
			wantErr: ErrInvalidLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreate(tt.ctx)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCreate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCreate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	for _, err := range []error{ErrUnexpectedParent, ErrMissingParent, ErrLevelMismatch} {
		if !IsValidationError(err) {
			t.Errorf("IsValidationError(%v) = false, want true", err)
		}
	}
	if IsValidationError(ErrAllocationConflict) {
		t.Error("IsValidationError(ErrAllocationConflict) = true, want false")
	}
	if IsValidationError(ErrParentNotFound) {
		t.Error("IsValidationError(ErrParentNotFound) = true, want false")
	}
}

func TestValidateStatus(t *testing.T) {
	for _, status := range []string{StatusNotStarted, StatusInProgress, StatusBlocked, StatusDone} {
		if err := ValidateStatus(StatusTransitionContext{NodeID: "REQ-001", Status: status}); err != nil {
			t.Errorf("ValidateStatus(%q) = %v, want nil", status, err)
		}
	}
	if err := ValidateStatus(StatusTransitionContext{NodeID: "REQ-001", Status: "shipped"}); err == nil {
		t.Error("ValidateStatus(shipped) = nil, want error")
	}
}
