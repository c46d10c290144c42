// Package engine provides the editor session used by codemate.
//
// An Engine is one open document: a text buffer, a primary cursor, a range
// tracker and the file it was loaded from. It is the "active editor" the
// preview engine inserts suggestions into.
//
// # Sub-packages
//
//   - buffer: document text with line index and change observers
//   - tracking: ranges anchored through edits
//   - history: the ledger of accepted AI insertions
//
// # Cursor
//
// The cursor is a byte offset. Every edit applied to the buffer moves it:
// text inserted at the cursor leaves the cursor after the inserted text,
// deletions spanning the cursor pull it to the deletion start.
//
// # Thread Safety
//
// All Engine operations are safe for concurrent use. Buffer edits are
// serialized by the buffer; the cursor has its own lock so change
// observers can update it while an edit is in flight.
package engine
