package blackjack

import (
	"fmt"
	"strings"

	"blackjack-lite/card"
)

// HandCard is one drawn card plus its table-facing flag. The dealer's
// hole card is the only card dealt face down.
type HandCard struct {
	Card   card.Card
	FaceUp bool

	// Doubled is latched when the card enters the hand carrying the
	// DOUBLED tag; the tag itself is consumed at that moment.
	Doubled bool
}

// Hand is an ordered sequence of drawn cards with cached blackjack value.
// The cache is refreshed on every AddCard; reads are free.
type Hand struct {
	cards []HandCard

	total       int
	isBust      bool
	isBlackjack bool
}

// AddCard appends a card and recomputes the cached total. tags may be nil;
// when present, a DOUBLED card counts twice this hand and the tag is
// consumed on entry.
func (h *Hand) AddCard(c card.Card, faceUp bool, tags *card.TagSet) {
	hc := HandCard{Card: c, FaceUp: faceUp}
	if tags != nil && !c.IsAce() && tags.Has(c, card.TagDoubled) {
		hc.Doubled = true
		tags.Revoke(c, card.TagDoubled)
	}
	h.cards = append(h.cards, hc)
	h.recompute()
}

// RevealAll flips every card face up (dealer hole reveal).
func (h *Hand) RevealAll() {
	for i := range h.cards {
		h.cards[i].FaceUp = true
	}
}

func (h *Hand) Cards() []HandCard {
	return h.cards
}

func (h *Hand) Count() int {
	return len(h.cards)
}

func (h *Hand) Total() int {
	return h.total
}

func (h *Hand) IsBust() bool {
	return h.isBust
}

func (h *Hand) IsBlackjack() bool {
	return h.isBlackjack
}

// recompute applies integer blackjack math: every ace starts at 11, then
// the minimum number of aces downgrade to 1 while the total busts.
func (h *Hand) recompute() {
	h.total = handValue(h.cards)
	h.isBust = h.total > 21
	h.isBlackjack = len(h.cards) == 2 && h.total == 21
}

// VisibleTotal computes the total over face-up cards only; never mutates.
func (h *Hand) VisibleTotal() int {
	visible := make([]HandCard, 0, len(h.cards))
	for _, hc := range h.cards {
		if hc.FaceUp {
			visible = append(visible, hc)
		}
	}
	return handValue(visible)
}

// AceValueAt returns the value the i-th card contributes if it is an ace:
// 11 when the rest of the hand leaves room, else 1. Non-aces yield 0.
func (h *Hand) AceValueAt(i int) int {
	if i < 0 || i >= len(h.cards) || !h.cards[i].Card.IsAce() {
		return 0
	}
	rest := make([]HandCard, 0, len(h.cards)-1)
	rest = append(rest, h.cards[:i]...)
	rest = append(rest, h.cards[i+1:]...)
	if handValue(rest)+11 <= 21 {
		return 11
	}
	return 1
}

// Clear moves every card into the deck's discard pile and resets the cache.
func (h *Hand) Clear(deck *card.Deck) {
	for _, hc := range h.cards {
		deck.Discard(hc.Card)
	}
	h.cards = h.cards[:0]
	h.total = 0
	h.isBust = false
	h.isBlackjack = false
}

func (h *Hand) String() string {
	parts := make([]string, 0, len(h.cards))
	for _, hc := range h.cards {
		if hc.FaceUp {
			parts = append(parts, hc.Card.String())
		} else {
			parts = append(parts, "??")
		}
	}
	return fmt.Sprintf("[%s] = %d", strings.Join(parts, " "), h.total)
}

func handValue(cards []HandCard) int {
	total := 0
	aces := 0
	for _, hc := range cards {
		v := hc.Card.BaseValue()
		if hc.Doubled {
			v *= 2
		}
		total += v
		if hc.Card.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}
