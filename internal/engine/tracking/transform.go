package tracking

import "github.com/dshills/codemate/internal/engine/buffer"

// maxBuried bounds how many covering deletions a collapsed range remembers.
const maxBuried = 32

// TransformOffset moves offset through an edit.
//
//   - Edit starting at or after offset: unchanged.
//   - Edit entirely before offset: shift by the edit's delta.
//   - Edit spanning offset: move to the end of the new text.
func TransformOffset(offset buffer.ByteOffset, edit buffer.Edit) buffer.ByteOffset {
	if edit.Range.Start >= offset {
		return offset
	}
	if edit.Range.End <= offset {
		return offset + edit.Delta()
	}
	return edit.Range.Start + buffer.ByteOffset(len(edit.NewText))
}

// TransformOffsetSticky is TransformOffset with an explicit bias for pure
// insertions exactly at offset. A sticky offset stays before the inserted
// text; a non-sticky one moves past it.
func TransformOffsetSticky(offset buffer.ByteOffset, edit buffer.Edit, sticky bool) buffer.ByteOffset {
	if edit.Range.IsEmpty() && edit.Range.Start == offset {
		if sticky {
			return offset
		}
		return offset + buffer.ByteOffset(len(edit.NewText))
	}
	return TransformOffset(offset, edit)
}

// TransformRange moves r through an edit. The start moves past text
// inserted at it; the end stays before text inserted at it. A collapsed
// range moves as a single point past inserted text.
func TransformRange(r buffer.Range, edit buffer.Edit) buffer.Range {
	if r.IsEmpty() {
		p := TransformOffsetSticky(r.Start, edit, false)
		return buffer.Range{Start: p, End: p}
	}
	start := TransformOffsetSticky(r.Start, edit, false)
	end := TransformOffsetSticky(r.End, edit, true)
	if start > end {
		start = end
	}
	return buffer.Range{Start: start, End: end}
}

// transformPoint moves a collapsed range through an edit. buried holds,
// innermost last, the point's distance from the start of each deletion
// that covered it. An insertion at the point pops one entry and lands the
// point that far into the new text, so deleting and reinserting the same
// text puts the point back where it was.
func transformPoint(p buffer.ByteOffset, buried []buffer.ByteOffset, edit buffer.Edit) (buffer.ByteOffset, []buffer.ByteOffset) {
	r := edit.Range
	n := buffer.ByteOffset(len(edit.NewText))
	switch {
	case r.IsEmpty() && r.Start == p:
		k := len(buried)
		if k == 0 {
			return p + n, nil
		}
		return p + min(buried[k-1], n), buried[:k-1]
	case !r.IsEmpty() && n == 0 && r.Start <= p && p <= r.End:
		buried = append(buried, p-r.Start)
		if len(buried) > maxBuried {
			buried = buried[1:]
		}
		return r.Start, buried
	case r.Start >= p:
		return p, buried
	case r.End <= p:
		return p + edit.Delta(), buried
	default:
		return r.Start + n, nil
	}
}
