package card

import "math/rand"

// Deck holds the shuffled draw pile and the discard pile for a run.
// Cards leave through Deal, return through Discard, and Reset rebuilds
// the full 52 from scratch.
type Deck struct {
	draw    CardList
	discard CardList
}

// FullDeck returns all 52 cards in canonical id order.
func FullDeck() []Card {
	cards := make([]Card, 0, 52)
	for id := 0; id < 52; id++ {
		c, _ := FromID(id)
		cards = append(cards, c)
	}
	return cards
}

// NewDeck creates a deck with a freshly shuffled draw pile.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{}
	d.Reset(rng)
	return d
}

// Deal removes the next card from the front of the draw pile.
// Returns false when the draw pile is empty; the caller decides
// whether to force a reshuffle.
func (d *Deck) Deal() (Card, bool) {
	return d.draw.PopFront()
}

// DealWhere removes the first card in the draw pile matching pred.
// Rigged deals (a stacked dealer hole card) go through here; false means
// no card in the pile matches.
func (d *Deck) DealWhere(pred func(Card) bool) (Card, bool) {
	for i, c := range d.draw {
		if pred(c) {
			d.draw = append(d.draw[:i], d.draw[i+1:]...)
			return c, true
		}
	}
	return CardInvalid, false
}

// StackTop moves the given cards to the front of the draw pile, in
// order, so they come out first. Cards not currently in the pile are
// reported; none are moved in that case.
func (d *Deck) StackTop(cards []Card) bool {
	idx := make(map[Card]int, len(d.draw))
	for i, c := range d.draw {
		idx[c] = i
	}
	for _, c := range cards {
		if _, ok := idx[c]; !ok {
			return false
		}
	}
	rest := make(CardList, 0, len(d.draw))
	stacked := make(map[Card]bool, len(cards))
	for _, c := range cards {
		stacked[c] = true
	}
	for _, c := range d.draw {
		if !stacked[c] {
			rest = append(rest, c)
		}
	}
	d.draw = append(append(CardList{}, cards...), rest...)
	return true
}

// Discard appends a card to the discard pile.
func (d *Deck) Discard(c Card) {
	d.discard.Add(c)
}

// Reset repopulates the draw pile with the full 52, shuffles it, and
// clears the discard pile.
func (d *Deck) Reset(rng *rand.Rand) {
	d.draw.Init(FullDeck())
	d.draw.Shuffle(rng)
	d.discard = d.discard[:0]
}

// Size returns the current draw pile size.
func (d *Deck) Size() int {
	return d.draw.Count()
}

// DiscardSize returns the current discard pile size.
func (d *Deck) DiscardSize() int {
	return d.discard.Count()
}
