package app

import (
	"github.com/dshills/codemate/internal/presenter"
	"github.com/dshills/codemate/internal/preview"
)

// Host is the user interface driving an App. The App calls it from its task
// loop; implementations must not block and must not call back into the App
// synchronously.
type Host interface {
	// Mark, Clear and Highlight draw staged and revealed text.
	preview.Decorator

	// Notify shows a message to the user.
	Notify(sev Severity, msg string)
	// SetStatus shows a transient status; "" clears it.
	SetStatus(msg string)
	// AwaitDecision asks the user to accept or reject a staged suggestion.
	// The answer comes back through App.Decide.
	AwaitDecision(p preview.Proposal)
	// ShowHistory opens the history view.
	ShowHistory(rows []presenter.Row)
	// HistoryChanged refreshes the history view if it is open.
	HistoryChanged(rows []presenter.Row)
}

// NopHost ignores everything. Suggestions stay staged until Decide.
type NopHost struct {
	preview.NopDecorator
}

func (NopHost) Notify(Severity, string)        {}
func (NopHost) SetStatus(string)               {}
func (NopHost) AwaitDecision(preview.Proposal) {}
func (NopHost) ShowHistory([]presenter.Row)    {}
func (NopHost) HistoryChanged([]presenter.Row) {}
