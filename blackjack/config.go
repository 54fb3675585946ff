package blackjack

import (
	"fmt"

	"blackjack-lite/card"
)

type Config struct {
	// Seats
	MaxPlayers int

	// Run economy
	StartingChips int
	MinBet        int
	MaxBet        int

	// Sanity
	MaxSanity int

	// Deck
	ReshuffleThreshold int // force reshuffle at round end when draw < threshold

	// Rules
	DealerStandsOn   int // dealer hits below this total
	BlackjackPayout  float64
	TrinketSlots     int
	PityThreshold    int

	// Pacing (seconds accumulated via Advance)
	DealingDelay      float64
	PlayerActionDelay float64
	CardRevealDelay   float64
	RoundEndDelay     float64

	// RNG seed (0 => time-based)
	Seed int64

	// DeckOverride stacks these cards on top of the shuffled draw pile,
	// in order, so they deal first. Replay and test rigging only.
	DeckOverride []card.Card
}

// DefaultConfig mirrors the shipped game's tuning.
func DefaultConfig() Config {
	return Config{
		MaxPlayers:         6,
		StartingChips:      100,
		MinBet:             5,
		MaxBet:             100,
		MaxSanity:          100,
		ReshuffleThreshold: 20,
		DealerStandsOn:     17,
		BlackjackPayout:    1.5,
		TrinketSlots:       6,
		PityThreshold:      5,
		DealingDelay:       1.0,
		PlayerActionDelay:  0.5,
		CardRevealDelay:    0.3,
		RoundEndDelay:      3.0,
	}
}

func (c Config) validate() error {
	if c.MaxPlayers <= 1 {
		return fmt.Errorf("MaxPlayers must be > 1 (dealer plus at least one seat)")
	}
	if c.StartingChips <= 0 {
		return fmt.Errorf("StartingChips must be > 0")
	}
	if c.MinBet <= 0 || c.MaxBet < c.MinBet {
		return fmt.Errorf("invalid bet range: min=%d max=%d", c.MinBet, c.MaxBet)
	}
	if c.MaxSanity <= 0 {
		return fmt.Errorf("MaxSanity must be > 0")
	}
	if c.ReshuffleThreshold < 0 || c.ReshuffleThreshold > 52 {
		return fmt.Errorf("ReshuffleThreshold must be in [0,52]")
	}
	if c.DealerStandsOn <= 0 || c.DealerStandsOn > 21 {
		return fmt.Errorf("DealerStandsOn must be in (0,21]")
	}
	if c.BlackjackPayout < 1 {
		return fmt.Errorf("BlackjackPayout must be >= 1")
	}
	if c.TrinketSlots <= 0 || c.TrinketSlots > MaxTrinketSlots {
		return fmt.Errorf("TrinketSlots must be in [1,%d]", MaxTrinketSlots)
	}
	if c.PityThreshold <= 0 {
		return fmt.Errorf("PityThreshold must be > 0")
	}
	if c.DealingDelay < 0 || c.PlayerActionDelay < 0 || c.CardRevealDelay < 0 || c.RoundEndDelay < 0 {
		return fmt.Errorf("pacing delays must be >= 0")
	}
	seen := make(map[card.Card]bool, len(c.DeckOverride))
	for _, cd := range c.DeckOverride {
		if seen[cd] {
			return fmt.Errorf("duplicate card %s in deck override", cd)
		}
		seen[cd] = true
	}
	return nil
}
