package grex

// Iter is a bidirectional, bounds-aware position over a rune sequence. It
// distinguishes three boundary states: pre-begin (one step before the
// first rune, reachable only by decrementing from begin), begin, and end.
// Iter is a small value type; all movement methods return a new Iter
// rather than mutating the receiver.
type Iter struct {
	text  []rune
	begin int
	end   int
	pos   int
}

// NewIter returns an Iter positioned at the start of text.
func NewIter(text []rune) Iter {
	return Iter{text: text, begin: 0, end: len(text), pos: 0}
}

// NewIterAt returns an Iter over text positioned at offset.
func NewIterAt(text []rune, offset int) Iter {
	return Iter{text: text, begin: 0, end: len(text), pos: offset}
}

// IsPreBegin reports whether it is one step before the first position.
func (it Iter) IsPreBegin() bool { return it.pos < it.begin }

// IsBegin reports whether it sits exactly at the first position.
func (it Iter) IsBegin() bool { return it.pos == it.begin }

// IsEnd reports whether it sits at or past the last position.
func (it Iter) IsEnd() bool { return it.pos >= it.end }

// Pos returns the raw rune offset, for callers that need it for slicing.
func (it Iter) Pos() int { return it.pos }

// Len returns the number of runes in the underlying text.
func (it Iter) Len() int { return len(it.text) }

// Current dereferences the iterator. It returns 0 at or beyond a boundary.
func (it Iter) Current() rune {
	if it.pos < it.begin || it.pos >= it.end {
		return 0
	}
	return it.text[it.pos]
}

// At dereferences the rune offset positions away from it, without bounds
// panics; callers must check IsPreBegin/IsEnd-style predicates on the
// result themselves if they need to know whether the read was in range.
func (it Iter) At(offset int) (rune, bool) {
	p := it.pos + offset
	if p < 0 || p >= it.end {
		return 0, false
	}
	return it.text[p], true
}

// bounded returns a copy of it with its end clamped to pos, so nothing
// derived from it by Advance/Next/At/Current can read or land past pos.
func (it Iter) bounded(pos int) Iter {
	if pos < it.end {
		it.end = pos
	}
	return it
}

// Next returns a copy advanced by one position.
func (it Iter) Next() Iter {
	it.pos++
	return it
}

// Prev returns a copy moved back by one position; moving before begin
// yields the pre-begin state rather than clamping.
func (it Iter) Prev() Iter {
	it.pos--
	return it
}

// Advance returns a copy moved by n positions (negative moves backward).
func (it Iter) Advance(n int) Iter {
	it.pos += n
	return it
}

// AtBegin returns a copy repositioned to begin.
func (it Iter) AtBegin() Iter {
	it.pos = it.begin
	return it
}

// AtEnd returns a copy repositioned to end.
func (it Iter) AtEnd() Iter {
	it.pos = it.end
	return it
}

// Equal reports whether two iterators over the same text sit at the same
// position.
func (it Iter) Equal(other Iter) bool { return it.pos == other.pos }

// Less reports whether it sits strictly before other. Comparisons are only
// meaningful between iterators built over the same underlying text.
func (it Iter) Less(other Iter) bool { return it.pos < other.pos }

// Slice returns the runes between it and other as a string, regardless of
// which of the two comes first.
func (it Iter) Slice(other Iter) string {
	lo, hi := it.pos, other.pos
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi > len(it.text) {
		hi = len(it.text)
	}
	return string(it.text[lo:hi])
}

