package card

import (
	"fmt"
	"strings"
)

// Card is a single playing card.
//
// Encoding:
// - high 4 bits: suit (0:Heart, 1:Diamond, 2:Club, 3:Spade)
// - low 4 bits: rank (1:A, 2..9, 10:T, 11:J, 12:Q, 13:K)
type Card byte

func (c Card) String() string {
	if c == CardInvalid {
		return "Invalid"
	}
	if c == CardRear {
		return "Rear"
	}

	suit := Suit(c >> 4)
	rank := c & 0x0F

	rankStr := ""
	switch rank {
	case 1:
		rankStr = "A"
	case 10:
		rankStr = "T"
	case 11:
		rankStr = "J"
	case 12:
		rankStr = "Q"
	case 13:
		rankStr = "K"
	default:
		rankStr = fmt.Sprintf("%d", rank)
	}

	return fmt.Sprintf("%s%s", suit, rankStr)
}

// Rank returns the face rank 1-13 (A=1, K=13).
func (c Card) Rank() byte {
	if c == CardInvalid || c == CardRear {
		return 0
	}
	return byte(c & 0x0F)
}

// Suit returns the suit (0:Heart, 1:Diamond, 2:Club, 3:Spade).
func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

func (c Card) IsAce() bool {
	return c.Rank() == 1
}

// IsFace reports whether the card is J, Q or K.
func (c Card) IsFace() bool {
	r := c.Rank()
	return r >= 11 && r <= 13
}

// BaseValue returns the blackjack value before ace optimization:
// - A counts 11
// - J/Q/K count 10
// - everything else counts its rank
func (c Card) BaseValue() int {
	r := int(c.Rank())
	switch {
	case r == 1:
		return 11
	case r > 10:
		return 10
	default:
		return r
	}
}

// ID returns the canonical card id in [0,51]: suit*13 + (rank-1).
// Tag registries and data files address cards by this id.
func (c Card) ID() int {
	if c == CardInvalid || c == CardRear {
		return -1
	}
	return int(c.Suit())*13 + int(c.Rank()) - 1
}

// FromID converts a canonical id in [0,51] back to a Card.
func FromID(id int) (Card, bool) {
	if id < 0 || id > 51 {
		return CardInvalid, false
	}
	suit := id / 13
	rank := id%13 + 1
	return Card(suit<<4 | rank), true
}

// Parse converts a string (e.g. "Ah", "Td", "10s") to a Card.
func Parse(cardStr string) (Card, error) {
	if len(cardStr) < 2 {
		return 0, fmt.Errorf("invalid card string: %s", cardStr)
	}

	suitChar := cardStr[len(cardStr)-1]
	var suitBase Card

	switch suitChar {
	case 'h', 'H':
		suitBase = 0x00
	case 'd', 'D':
		suitBase = 0x10
	case 'c', 'C':
		suitBase = 0x20
	case 's', 'S':
		suitBase = 0x30
	default:
		return 0, fmt.Errorf("invalid suit: %c", suitChar)
	}

	rankStr := cardStr[:len(cardStr)-1]
	var rankVal Card

	switch strings.ToUpper(rankStr) {
	case "A":
		rankVal = 0x01
	case "2":
		rankVal = 0x02
	case "3":
		rankVal = 0x03
	case "4":
		rankVal = 0x04
	case "5":
		rankVal = 0x05
	case "6":
		rankVal = 0x06
	case "7":
		rankVal = 0x07
	case "8":
		rankVal = 0x08
	case "9":
		rankVal = 0x09
	case "T", "10":
		rankVal = 0x0A
	case "J":
		rankVal = 0x0B
	case "Q":
		rankVal = 0x0C
	case "K":
		rankVal = 0x0D
	default:
		return 0, fmt.Errorf("invalid rank: %s", rankStr)
	}

	return suitBase + rankVal, nil
}
