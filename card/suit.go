package card

import (
	"fmt"
	"strings"
)

type Suit byte

const (
	Heart   Suit = iota // ♥️
	Diamond             // ♦️
	Club                // ♣️
	Spade               // ♠️
)

func (s Suit) String() string {
	switch s {
	case Heart:
		return "♥️"
	case Diamond:
		return "♦️"
	case Club:
		return "♣️"
	case Spade:
		return "♠️"
	}
	return "?"
}

// Name returns the plural suit name used in data files.
func (s Suit) Name() string {
	switch s {
	case Heart:
		return "HEARTS"
	case Diamond:
		return "DIAMONDS"
	case Club:
		return "CLUBS"
	case Spade:
		return "SPADES"
	}
	return "UNKNOWN"
}

// ParseSuit accepts the names used in data files ("HEARTS", "spades", ...).
func ParseSuit(name string) (Suit, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "HEART", "HEARTS":
		return Heart, nil
	case "DIAMOND", "DIAMONDS":
		return Diamond, nil
	case "CLUB", "CLUBS":
		return Club, nil
	case "SPADE", "SPADES":
		return Spade, nil
	default:
		return 0, fmt.Errorf("invalid suit name: %s", name)
	}
}
