// Package preview implements the preview and confirmation flow for AI
// suggestions.
//
// A suggestion is inserted into the document immediately and marked as
// pending (Staged). The user then accepts it, which turns it into a
// history record, or rejects it, which removes the inserted text again.
//
//	Idle --Stage--> Staged --Accept--> Idle (record appended)
//	                       --Reject--> Idle (text removed)
//	                       --Abandon-> Idle (text left, untracked)
//
// Accepted records can be undone and redone through the same Engine, which
// locates the record's text in the document before touching it.
package preview
