// Package tracking keeps byte ranges anchored to the text they describe
// while the surrounding document changes.
//
// A Tracker holds a set of ranges keyed by id. Attached to a buffer, it
// transforms every tracked range through each edit the buffer reports:
//
//	tr := tracking.NewTracker()
//	tr.Attach(buf)
//	tr.Track(7, buffer.Range{Start: 10, End: 24})
//
//	buf.Insert(0, "// header\n") // range 7 is now [20, 34)
//
// Transformation rules for a tracked range [s, e):
//   - edits entirely before s shift the range by the edit's delta
//   - an insertion exactly at s pushes the range right
//   - an insertion exactly at e leaves the range unchanged
//   - edits inside the range grow or shrink it
//   - a deletion covering the range collapses it to the deletion start
package tracking
