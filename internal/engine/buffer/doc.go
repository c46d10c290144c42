// Package buffer provides the mutable text document edited by codemate.
//
// A Buffer holds the full document text together with a line index, and
// exposes byte-offset based editing:
//
//	buf := buffer.NewBufferFromString("func main() {\n}\n")
//	end, _ := buf.Insert(14, "\tfmt.Println(\"hi\")\n")
//	buf.Delete(14, end)
//
// Byte offsets are the native offset unit. Point converts them to
// 0-indexed line/column pairs for display.
//
// Every successful edit is reported to observers registered with OnChange.
// The tracking package uses this to keep recorded ranges anchored while
// the surrounding text changes.
//
// All Buffer methods are safe for concurrent use. Observers run after the
// write lock has been released, so they may read the buffer.
package buffer
