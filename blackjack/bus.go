package blackjack

// maxDispatchDepth caps event re-entry: a listener may fire further
// events, but nesting past this depth is recorded and refused instead of
// looping forever.
const maxDispatchDepth = 8

// Listener receives game events. The tutorial (or any outer layer)
// registers one; it always fires after trinkets, statuses and the enemy.
type Listener interface {
	HandleEvent(game *Game, event Event, seat int)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(game *Game, event Event, seat int)

func (f ListenerFunc) HandleEvent(game *Game, event Event, seat int) {
	f(game, event, seat)
}

// bus tracks dispatch depth and dropped events for the game's
// synchronous event fabric.
type bus struct {
	depth    int
	rejected []Event
	tutorial Listener
}

// enter returns false when another nested dispatch would exceed the cap.
// Rejected events are recorded, never silently discarded.
func (b *bus) enter(event Event) bool {
	if b.depth >= maxDispatchDepth {
		b.rejected = append(b.rejected, event)
		return false
	}
	b.depth++
	return true
}

func (b *bus) leave() {
	b.depth--
}

// Rejected returns events refused at the recursion cap since the last
// drain, for diagnostics.
func (b *bus) drainRejected() []Event {
	out := b.rejected
	b.rejected = nil
	return out
}
