// Package term implements the drop-down developer console: a line edit
// buffer with cursor and selection, command history, a scrollback log,
// and a case-insensitive command registry with prefix completion.
package term

import "unicode"

// EditBuffer is the console input line. The cursor sits between runes;
// an active selection spans [selAnchor, cursor) in either direction.
type EditBuffer struct {
	text   []rune
	cursor int

	// selAnchor is -1 when no selection is active.
	selAnchor int
}

func NewEditBuffer() *EditBuffer {
	return &EditBuffer{selAnchor: -1}
}

func (b *EditBuffer) Text() string { return string(b.text) }
func (b *EditBuffer) Cursor() int  { return b.cursor }
func (b *EditBuffer) Len() int     { return len(b.text) }

// HasSelection reports whether a non-empty selection is active.
func (b *EditBuffer) HasSelection() bool {
	return b.selAnchor >= 0 && b.selAnchor != b.cursor
}

// Selection returns the active selection bounds, low before high.
func (b *EditBuffer) Selection() (lo, hi int, ok bool) {
	if !b.HasSelection() {
		return 0, 0, false
	}
	lo, hi = b.selAnchor, b.cursor
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

// SelectedText returns the selected run of text.
func (b *EditBuffer) SelectedText() string {
	lo, hi, ok := b.Selection()
	if !ok {
		return ""
	}
	return string(b.text[lo:hi])
}

// SetText replaces the contents and parks the cursor at the end.
func (b *EditBuffer) SetText(s string) {
	b.text = []rune(s)
	b.cursor = len(b.text)
	b.selAnchor = -1
}

// Clear empties the buffer.
func (b *EditBuffer) Clear() {
	b.text = b.text[:0]
	b.cursor = 0
	b.selAnchor = -1
}

// Insert types text at the cursor, replacing any active selection.
func (b *EditBuffer) Insert(s string) {
	b.deleteSelection()
	ins := []rune(s)
	b.text = append(b.text[:b.cursor], append(append([]rune{}, ins...), b.text[b.cursor:]...)...)
	b.cursor += len(ins)
}

// Backspace deletes the selection, or the rune before the cursor.
func (b *EditBuffer) Backspace() {
	if b.deleteSelection() {
		return
	}
	if b.cursor == 0 {
		return
	}
	b.text = append(b.text[:b.cursor-1], b.text[b.cursor:]...)
	b.cursor--
}

// Delete removes the selection, or the rune under the cursor.
func (b *EditBuffer) Delete() {
	if b.deleteSelection() {
		return
	}
	if b.cursor >= len(b.text) {
		return
	}
	b.text = append(b.text[:b.cursor], b.text[b.cursor+1:]...)
}

// deleteSelection removes the active selection; reports whether one was.
func (b *EditBuffer) deleteSelection() bool {
	lo, hi, ok := b.Selection()
	if !ok {
		b.selAnchor = -1
		return false
	}
	b.text = append(b.text[:lo], b.text[hi:]...)
	b.cursor = lo
	b.selAnchor = -1
	return true
}

// Move moves the cursor by delta, extending the selection when sel is
// set and collapsing it otherwise.
func (b *EditBuffer) Move(delta int, sel bool) {
	b.moveTo(b.cursor+delta, sel)
}

// Home and End jump to the line bounds.
func (b *EditBuffer) Home(sel bool) { b.moveTo(0, sel) }
func (b *EditBuffer) End(sel bool)  { b.moveTo(len(b.text), sel) }

// WordLeft jumps to the start of the previous word.
func (b *EditBuffer) WordLeft(sel bool) {
	i := b.cursor
	for i > 0 && unicode.IsSpace(b.text[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(b.text[i-1]) {
		i--
	}
	b.moveTo(i, sel)
}

// WordRight jumps past the end of the next word.
func (b *EditBuffer) WordRight(sel bool) {
	i := b.cursor
	for i < len(b.text) && unicode.IsSpace(b.text[i]) {
		i++
	}
	for i < len(b.text) && !unicode.IsSpace(b.text[i]) {
		i++
	}
	b.moveTo(i, sel)
}

// SelectAll selects the whole line.
func (b *EditBuffer) SelectAll() {
	b.selAnchor = 0
	b.cursor = len(b.text)
}

func (b *EditBuffer) moveTo(pos int, sel bool) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.text) {
		pos = len(b.text)
	}
	if sel {
		if b.selAnchor < 0 {
			b.selAnchor = b.cursor
		}
	} else {
		b.selAnchor = -1
	}
	b.cursor = pos
}
