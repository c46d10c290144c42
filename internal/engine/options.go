package engine

import (
	"github.com/dshills/codemate/internal/engine/buffer"
)

// DefaultTabWidth is the tab width used when none is configured.
const DefaultTabWidth = 4

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content of the engine.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithTabWidth sets the tab width for the engine.
func WithTabWidth(width int) Option {
	return func(e *Engine) {
		if width > 0 {
			e.tabWidth = width
		}
	}
}

// WithLineEnding sets the line ending style for the engine.
func WithLineEnding(ending buffer.LineEnding) Option {
	return func(e *Engine) {
		e.lineEnding = ending
		e.lineEndingSet = true
	}
}

// WithPath associates the engine with a file path. The language id is
// derived from it unless WithLanguageID is also given.
func WithPath(path string) Option {
	return func(e *Engine) {
		e.path = path
	}
}

// WithLanguageID overrides the detected language id.
func WithLanguageID(id string) Option {
	return func(e *Engine) {
		e.languageID = id
	}
}
