package card

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Tag marks one of the 52 card ids with an upgrade effect. Tags are
// granted by event choices and trinket on-equip effects and persist
// across combats within a run.
type Tag uint8

const (
	TagCursed   Tag = 1 << iota // 10 damage to enemy when drawn
	TagVampiric                 // 5 damage + 5 chips when drawn
	TagLucky                    // +10% crit while in any hand
	TagBrutal                   // +10% damage while in any hand
	TagDoubled                  // value doubled this hand, consumed on use
)

var tagNames = map[Tag]string{
	TagCursed:   "CURSED",
	TagVampiric: "VAMPIRIC",
	TagLucky:    "LUCKY",
	TagBrutal:   "BRUTAL",
	TagDoubled:  "DOUBLED",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", t)
}

// ParseTag accepts the tag names used in data files.
func ParseTag(name string) (Tag, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for tag, tagName := range tagNames {
		if tagName == upper {
			return tag, nil
		}
	}
	return 0, fmt.Errorf("invalid card tag: %s", name)
}

// TagSet is the per-run registry mapping card id to its tag bits.
// There is exactly one per game; drawing the same card id always
// observes its current tags.
type TagSet [52]Tag

// Has reports whether the card currently carries the tag.
func (s *TagSet) Has(c Card, t Tag) bool {
	id := c.ID()
	if id < 0 {
		return false
	}
	return s[id]&t != 0
}

// Grant sets the tag on the card. Granting an already-present tag is a no-op.
func (s *TagSet) Grant(c Card, t Tag) {
	if id := c.ID(); id >= 0 {
		s[id] |= t
	}
}

// Revoke clears the tag from a single card.
func (s *TagSet) Revoke(c Card, t Tag) {
	if id := c.ID(); id >= 0 {
		s[id] &^= t
	}
}

// RemoveAll clears the tag from every card id.
func (s *TagSet) RemoveAll(t Tag) {
	for id := range s {
		s[id] &^= t
	}
}

// Count returns how many card ids carry the tag.
func (s *TagSet) Count(t Tag) int {
	n := 0
	for id := range s {
		if s[id]&t != 0 {
			n++
		}
	}
	return n
}

// Tagged returns every card carrying the tag, in id order.
func (s *TagSet) Tagged(t Tag) []Card {
	var out []Card
	for id := range s {
		if s[id]&t != 0 {
			c, _ := FromID(id)
			out = append(out, c)
		}
	}
	return out
}

// Untagged returns every card not carrying the tag, in id order.
func (s *TagSet) Untagged(t Tag) []Card {
	var out []Card
	for id := range s {
		if s[id]&t == 0 {
			c, _ := FromID(id)
			out = append(out, c)
		}
	}
	return out
}

// GrantStrategy selects which cards receive a granted tag.
type GrantStrategy byte

const (
	GrantRandomUntagged GrantStrategy = iota
	GrantHighestUntagged
	GrantLowestUntagged
	GrantSuit
	GrantAces
	GrantFaceCards
	GrantAllCards
)

var grantStrategyNames = map[GrantStrategy]string{
	GrantRandomUntagged:  "RANDOM_UNTAGGED",
	GrantHighestUntagged: "HIGHEST_UNTAGGED",
	GrantLowestUntagged:  "LOWEST_UNTAGGED",
	GrantSuit:            "SUIT",
	GrantAces:            "ACES",
	GrantFaceCards:       "FACE_CARDS",
	GrantAllCards:        "ALL_CARDS",
}

func (g GrantStrategy) String() string {
	if name, ok := grantStrategyNames[g]; ok {
		return name
	}
	return fmt.Sprintf("GrantStrategy(%d)", g)
}

// ParseGrantStrategy accepts the strategy names used in event data files.
func ParseGrantStrategy(name string) (GrantStrategy, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for strategy, strategyName := range grantStrategyNames {
		if strategyName == upper {
			return strategy, nil
		}
	}
	return 0, fmt.Errorf("invalid grant strategy: %s", name)
}

// Apply grants the tag according to the strategy. count limits how many
// cards are touched for the random strategy; suit is consulted only by
// GrantSuit. Returns the cards that actually gained the tag.
func (s *TagSet) Apply(strategy GrantStrategy, t Tag, count int, suit Suit, rng *rand.Rand) []Card {
	var targets []Card

	switch strategy {
	case GrantRandomUntagged:
		pool := s.Untagged(t)
		rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		if count > len(pool) {
			count = len(pool)
		}
		targets = pool[:count]
	case GrantHighestUntagged:
		targets = pickByRank(s.Untagged(t), count, true)
	case GrantLowestUntagged:
		targets = pickByRank(s.Untagged(t), count, false)
	case GrantSuit:
		for _, c := range FullDeck() {
			if c.Suit() == suit {
				targets = append(targets, c)
			}
		}
	case GrantAces:
		for _, c := range FullDeck() {
			if c.IsAce() {
				targets = append(targets, c)
			}
		}
	case GrantFaceCards:
		for _, c := range FullDeck() {
			if c.IsFace() {
				targets = append(targets, c)
			}
		}
	case GrantAllCards:
		targets = FullDeck()
	}

	granted := make([]Card, 0, len(targets))
	for _, c := range targets {
		if !s.Has(c, t) {
			s.Grant(c, t)
			granted = append(granted, c)
		} else if strategy == GrantSuit || strategy == GrantAces ||
			strategy == GrantFaceCards || strategy == GrantAllCards {
			// Blanket strategies re-grant harmlessly; still report the card.
			granted = append(granted, c)
		}
	}
	return granted
}

// pickByRank selects up to count untagged cards by rank, aces ranked high.
func pickByRank(pool []Card, count int, highest bool) []Card {
	if count > len(pool) {
		count = len(pool)
	}
	sorted := make([]Card, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		if highest {
			return rankOrder(sorted[i]) > rankOrder(sorted[j])
		}
		return rankOrder(sorted[i]) < rankOrder(sorted[j])
	})
	return sorted[:count]
}

func rankOrder(c Card) int {
	if c.IsAce() {
		return 14
	}
	return int(c.Rank())
}
