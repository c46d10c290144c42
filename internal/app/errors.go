package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/codemate/internal/completion"
	"github.com/dshills/codemate/internal/config"
	"github.com/dshills/codemate/internal/engine/history"
	"github.com/dshills/codemate/internal/preview"
)

// Application errors.
var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrBusy is returned when a request is started while another is
	// still running.
	ErrBusy = errors.New("a completion request is already running")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("application closed")

	// ErrUnknownCommand is returned by Execute for unregistered names.
	ErrUnknownCommand = errors.New("unknown command")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op      string // Operation name (e.g., "save", "complete", "undo")
	Target  string // Target of the operation (e.g., file path, model name)
	Context string // Additional context
	Err     error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

// WithContext adds context to the error.
// Safe to call on nil receiver - returns nil.
func (e *OperationError) WithContext(ctx string) *OperationError {
	if e == nil {
		return nil
	}
	e.Context = ctx
	return e
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Context != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Context)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ComponentError represents an error from a specific component.
type ComponentError struct {
	Component string // Component name (e.g., "hooks", "config")
	Action    string // Action being performed
	Err       error  // Underlying error
}

// NewComponentError creates a new ComponentError.
func NewComponentError(component, action string, err error) *ComponentError {
	return &ComponentError{
		Component: component,
		Action:    action,
		Err:       err,
	}
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}

	if e.Action != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Component, e.Action)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Component, e.Err)
	}
	return e.Component
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RecoveredPanicError wraps a panic value recovered on the task loop.
// Error includes the stack; keep it out of user-facing messages.
type RecoveredPanicError struct {
	Value any
	Stack string
}

func (e *RecoveredPanicError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stack != "" {
		return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Severity ranks user notifications.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// UserMessage maps an error to the severity and text shown to the user.
func UserMessage(err error) (Severity, string) {
	var remote *completion.RemoteAPIError
	var panicErr *RecoveredPanicError

	switch {
	case err == nil:
		return SeverityInfo, ""
	case errors.Is(err, preview.ErrNoActiveEditor):
		return SeverityWarning, "No active editor"
	case errors.Is(err, completion.ErrMissingAPIKey):
		return SeverityError, "API key is not configured. Set api.key in the config file or " + config.EnvAPIKey
	case isTimeout(err):
		return SeverityError, "Completion failed: the request timed out"
	case errors.As(err, &remote):
		return SeverityError, "Completion failed: " + remote.Message
	case errors.Is(err, context.Canceled):
		return SeverityInfo, "Request canceled"
	case errors.Is(err, history.ErrNothingToUndo):
		return SeverityInfo, "No AI updates to undo"
	case errors.Is(err, history.ErrNothingToRedo):
		return SeverityInfo, "No AI updates to redo"
	case errors.Is(err, history.ErrEmptyStack):
		return SeverityInfo, "No AI updates"
	case errors.Is(err, preview.ErrRecordNotFound):
		return SeverityInfo, "Update not found"
	case errors.Is(err, preview.ErrAlreadyStaged):
		return SeverityWarning, "A suggestion is waiting for confirmation"
	case errors.Is(err, preview.ErrNotStaged):
		return SeverityInfo, "No suggestion to confirm"
	case errors.Is(err, preview.ErrStaleRange):
		return SeverityWarning, "The update was edited since it was applied; nothing undone"
	case errors.Is(err, preview.ErrEmptyContent):
		return SeverityInfo, "The model returned no code"
	case errors.Is(err, ErrBusy):
		return SeverityWarning, "A completion request is already running"
	case errors.As(err, &panicErr):
		return SeverityError, "Internal error, see the log file"
	default:
		return SeverityError, "Error: " + err.Error()
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, completion.ErrRequestTimeout)
}
