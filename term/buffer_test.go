package term

import "testing"

func TestInsertAndCursor(t *testing.T) {
	b := NewEditBuffer()
	b.Insert("help")
	if b.Text() != "help" || b.Cursor() != 4 {
		t.Fatalf("after insert: text=%q cursor=%d", b.Text(), b.Cursor())
	}

	// Insert in the middle.
	b.Move(-2, false)
	b.Insert("X")
	if b.Text() != "heXlp" || b.Cursor() != 3 {
		t.Fatalf("mid insert: text=%q cursor=%d", b.Text(), b.Cursor())
	}
}

func TestBackspaceAndDelete(t *testing.T) {
	b := NewEditBuffer()
	b.Insert("abc")
	b.Backspace()
	if b.Text() != "ab" {
		t.Fatalf("backspace: %q", b.Text())
	}
	b.Home(false)
	b.Delete()
	if b.Text() != "b" {
		t.Fatalf("delete at home: %q", b.Text())
	}

	// No-ops at the edges.
	b.Home(false)
	b.Backspace()
	b.End(false)
	b.Delete()
	if b.Text() != "b" {
		t.Fatalf("edge edits changed text: %q", b.Text())
	}
}

func TestSelectionReplace(t *testing.T) {
	b := NewEditBuffer()
	b.SetText("give_chips 1 500")

	// Select "500" by shift-moves from the end.
	b.Move(-3, true)
	lo, hi, ok := b.Selection()
	if !ok || lo != 13 || hi != 16 {
		t.Fatalf("selection = %d..%d ok=%v", lo, hi, ok)
	}
	if b.SelectedText() != "500" {
		t.Fatalf("selected %q", b.SelectedText())
	}

	// Typing over a selection replaces it.
	b.Insert("99")
	if b.Text() != "give_chips 1 99" {
		t.Fatalf("replace: %q", b.Text())
	}
	if b.HasSelection() {
		t.Fatalf("selection survived insert")
	}
}

func TestSelectionDelete(t *testing.T) {
	b := NewEditBuffer()
	b.SetText("hello world")
	b.SelectAll()
	b.Backspace()
	if b.Text() != "" || b.Cursor() != 0 {
		t.Fatalf("select-all backspace: text=%q cursor=%d", b.Text(), b.Cursor())
	}
}

func TestWordMovement(t *testing.T) {
	b := NewEditBuffer()
	b.SetText("set_hp 1 40")
	b.Home(false)

	b.WordRight(false)
	if b.Cursor() != 6 {
		t.Fatalf("word right from home: cursor=%d", b.Cursor())
	}
	b.WordRight(false)
	if b.Cursor() != 8 {
		t.Fatalf("second word right: cursor=%d", b.Cursor())
	}

	b.End(false)
	b.WordLeft(false)
	if b.Cursor() != 9 {
		t.Fatalf("word left from end: cursor=%d", b.Cursor())
	}
	b.WordLeft(false)
	b.WordLeft(false)
	if b.Cursor() != 0 {
		t.Fatalf("word left to start: cursor=%d", b.Cursor())
	}
}

func TestPlainMoveClearsSelection(t *testing.T) {
	b := NewEditBuffer()
	b.SetText("abc")
	b.Move(-2, true)
	if !b.HasSelection() {
		t.Fatalf("expected selection")
	}
	b.Move(1, false)
	if b.HasSelection() {
		t.Fatalf("plain move kept selection")
	}
}
