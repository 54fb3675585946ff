package term

import (
	"fmt"
	"testing"
)

func TestHistoryWalk(t *testing.T) {
	h := NewHistory()
	h.Push("first")
	h.Push("second")
	h.Push("third")

	line, ok := h.Prev("typing")
	if !ok || line != "third" {
		t.Fatalf("first prev = %q ok=%v", line, ok)
	}
	line, _ = h.Prev("")
	if line != "second" {
		t.Fatalf("second prev = %q", line)
	}
	line, _ = h.Prev("")
	if line != "first" {
		t.Fatalf("third prev = %q", line)
	}

	// Oldest entry is a wall.
	if _, ok := h.Prev(""); ok {
		t.Fatalf("prev past oldest succeeded")
	}

	// Walking forward past the newest restores the draft.
	h.Next()
	h.Next()
	line, ok = h.Next()
	if !ok || line != "typing" {
		t.Fatalf("draft restore = %q ok=%v", line, ok)
	}
	if _, ok := h.Next(); ok {
		t.Fatalf("next past draft succeeded")
	}
}

func TestHistorySkipsDupsAndEmpty(t *testing.T) {
	h := NewHistory()
	h.Push("state")
	h.Push("state")
	h.Push("")
	if h.Len() != 1 {
		t.Fatalf("len = %d, want 1", h.Len())
	}

	// Non-consecutive duplicates are kept.
	h.Push("help")
	h.Push("state")
	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}
}

func TestHistoryCapacity(t *testing.T) {
	h := NewHistory()
	for i := 0; i < historySize+10; i++ {
		h.Push(fmt.Sprintf("cmd %d", i))
	}
	if h.Len() != historySize {
		t.Fatalf("len = %d, want %d", h.Len(), historySize)
	}
	line, _ := h.Prev("")
	if line != fmt.Sprintf("cmd %d", historySize+9) {
		t.Fatalf("newest = %q", line)
	}
}

func TestHistoryPushResetsWalk(t *testing.T) {
	h := NewHistory()
	h.Push("a")
	h.Push("b")
	h.Prev("")
	h.Push("c")
	line, _ := h.Prev("")
	if line != "c" {
		t.Fatalf("prev after push = %q, want c", line)
	}
}
