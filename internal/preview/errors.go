package preview

import "errors"

// Errors returned by preview operations.
var (
	// ErrNoActiveEditor is returned when there is no document to act on.
	ErrNoActiveEditor = errors.New("no active editor")

	// ErrAlreadyStaged is returned by Stage while another suggestion
	// awaits a decision.
	ErrAlreadyStaged = errors.New("a suggestion is already awaiting a decision")

	// ErrEmptyContent is returned by Stage for empty suggestions.
	ErrEmptyContent = errors.New("suggestion is empty")

	// ErrNotStaged is returned by Accept and Reject when nothing is staged.
	ErrNotStaged = errors.New("no suggestion is staged")

	// ErrStaleRange is returned by Undo when the text at the record's
	// location no longer matches the record.
	ErrStaleRange = errors.New("record text no longer matches the document")

	// ErrRecordNotFound is returned for ids that are not in History.
	ErrRecordNotFound = errors.New("record not found")
)
