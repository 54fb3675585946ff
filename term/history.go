package term

// historySize is the submitted-command ring capacity.
const historySize = 100

// History is the submitted-command ring. Arrow navigation walks from
// newest to oldest; the in-progress line is stashed so walking back
// down restores it.
type History struct {
	entries []string
	// pos is the navigation cursor: len(entries) means "not browsing".
	pos   int
	draft string
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Len() int { return len(h.entries) }

// Push records a submitted line. Empty lines and immediate duplicates
// are skipped; the ring drops its oldest entry at capacity.
func (h *History) Push(line string) {
	if line == "" {
		h.pos = len(h.entries)
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		h.pos = len(h.entries)
		return
	}
	if len(h.entries) == historySize {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, line)
	h.pos = len(h.entries)
	h.draft = ""
}

// Prev walks one entry back, stashing the current draft on the first
// step. Returns the line to display and whether anything changed.
func (h *History) Prev(current string) (string, bool) {
	if h.pos == 0 || len(h.entries) == 0 {
		return "", false
	}
	if h.pos == len(h.entries) {
		h.draft = current
	}
	h.pos--
	return h.entries[h.pos], true
}

// Next walks one entry forward, restoring the stashed draft past the
// newest entry.
func (h *History) Next() (string, bool) {
	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return h.draft, true
	}
	return h.entries[h.pos], true
}
