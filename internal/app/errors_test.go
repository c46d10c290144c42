package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/codemate/internal/completion"
	"github.com/dshills/codemate/internal/engine/history"
	"github.com/dshills/codemate/internal/preview"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "op only", err: &OperationError{Op: "save"}, expected: "save"},
		{name: "op and target", err: &OperationError{Op: "save", Target: "/tmp/a.go"}, expected: "save /tmp/a.go"},
		{
			name:     "full error chain",
			err:      &OperationError{Op: "save", Target: "/tmp/a.go", Context: "write failed", Err: errors.New("io error")},
			expected: "save /tmp/a.go (write failed): io error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestOperationErrorUnwrap(t *testing.T) {
	err := NewOperationError("complete", "req-1", completion.ErrRequestTimeout).WithContext("fallback")
	assert.ErrorIs(t, err, completion.ErrRequestTimeout)
	assert.Nil(t, (*OperationError)(nil).WithContext("x"))
}

func TestComponentError(t *testing.T) {
	base := errors.New("syntax error")
	assert.Equal(t, "hooks: load: syntax error", NewComponentError("hooks", "load", base).Error())
	assert.Equal(t, "hooks: syntax error", NewComponentError("hooks", "", base).Error())
	assert.Equal(t, "hooks: load", NewComponentError("hooks", "load", nil).Error())
	assert.Equal(t, "hooks", NewComponentError("hooks", "", nil).Error())
	assert.ErrorIs(t, NewComponentError("hooks", "load", base), base)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		sev  Severity
		msg  string
	}{
		{"nil", nil, SeverityInfo, ""},
		{"no editor", preview.ErrNoActiveEditor, SeverityWarning, "No active editor"},
		{"missing key", completion.ErrMissingAPIKey, SeverityError, "API key is not configured. Set api.key in the config file or CODEMATE_API_KEY"},
		{"timeout", fmt.Errorf("x: %w", completion.ErrRequestTimeout), SeverityError, "Completion failed: the request timed out"},
		{"remote", &completion.RemoteAPIError{Provider: "deepseek", Status: 401, Message: "Authentication Fails"}, SeverityError, "Completion failed: Authentication Fails"},
		{"canceled", fmt.Errorf("request canceled: %w", context.Canceled), SeverityInfo, "Request canceled"},
		{"empty undo", history.ErrNothingToUndo, SeverityInfo, "No AI updates to undo"},
		{"empty redo", history.ErrNothingToRedo, SeverityInfo, "No AI updates to redo"},
		{"not found", fmt.Errorf("%w: 9", preview.ErrRecordNotFound), SeverityInfo, "Update not found"},
		{"staged", preview.ErrAlreadyStaged, SeverityWarning, "A suggestion is waiting for confirmation"},
		{"stale", preview.ErrStaleRange, SeverityWarning, "The update was edited since it was applied; nothing undone"},
		{"empty content", preview.ErrEmptyContent, SeverityInfo, "The model returned no code"},
		{"busy", ErrBusy, SeverityWarning, "A completion request is already running"},
		{"panic", &RecoveredPanicError{Value: "x"}, SeverityError, "Internal error, see the log file"},
		{"other", errors.New("disk full"), SeverityError, "Error: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sev, msg := UserMessage(tt.err)
			assert.Equal(t, tt.sev, sev)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(7).String())
}
