package preview

import "github.com/dshills/codemate/internal/engine/buffer"

// Decorator shows preview state in the host.
type Decorator interface {
	// Mark renders r as a pending suggestion.
	Mark(r buffer.Range)
	// Clear removes the pending suggestion marker.
	Clear()
	// Highlight briefly emphasizes r.
	Highlight(r buffer.Range)
}

// NopDecorator ignores all calls.
type NopDecorator struct{}

func (NopDecorator) Mark(buffer.Range)      {}
func (NopDecorator) Clear()                 {}
func (NopDecorator) Highlight(buffer.Range) {}
