package engine

import (
	"errors"

	"github.com/dshills/codemate/internal/engine/buffer"
)

// Errors returned by engine operations.
var (
	// ErrOffsetOutOfRange indicates an offset is outside the valid buffer range.
	ErrOffsetOutOfRange = buffer.ErrOffsetOutOfRange

	// ErrRangeInvalid indicates an invalid range (e.g., end < start).
	ErrRangeInvalid = buffer.ErrRangeInvalid

	// ErrNoPath indicates Save was called on a document without a file.
	ErrNoPath = errors.New("document has no file path")
)
