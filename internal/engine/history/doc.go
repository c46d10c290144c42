// Package history is the ledger of accepted AI insertions.
//
// A Store owns three sequences of Records:
//
//   - History: every accepted record, oldest first, used for display and
//     lookup by id.
//   - the undo stack: records eligible to be undone, most recent last,
//     bounded (10 by default). Overflow evicts the oldest entry from the
//     undo stack only; History keeps it.
//   - the redo stack: records that were undone, most recent last.
//
// Undo and Redo take an apply callback that performs the document edit.
// The record moves between stacks only when the callback succeeds:
//
//	rec, err := store.Undo(func(r history.Record) error {
//	    return doc.Delete(r.Range)
//	})
//
// The store is created once at startup and passed to every component that
// needs it. A mutex guards the stacks, so the store may be shared with
// goroutines, but callers still serialize document edits themselves.
package history
