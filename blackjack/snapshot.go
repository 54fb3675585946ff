package blackjack

import (
	"blackjack-lite/card"
	"blackjack-lite/trinket"
)

type CardSnapshot struct {
	Card    card.Card
	FaceUp  bool
	Doubled bool
}

type PlayerSnapshot struct {
	ID     string
	Seat   int
	Class  Class
	Dealer bool
	AI     bool

	HP        int
	MaxHP     int
	Chips     int
	Sanity    int
	MaxSanity int
	Tier      SanityTier

	Bet   int
	State PlayerState
	Cards []CardSnapshot
	Total int

	Statuses []StatusInstance
	Slots    []trinket.Slot
}

type EnemySnapshot struct {
	Name       string
	HP         int
	MaxHP      int
	ChipThreat int
	Defeated   bool
}

type Snapshot struct {
	State       State
	DealerPhase DealerPhase
	Round       int
	Act         int
	ActionSeat  int

	DeckSize    int
	DiscardSize int

	InCombat bool
	Enemy    *EnemySnapshot

	Players []PlayerSnapshot

	RerollCost int
	LastRound  *RoundResult
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		State:       g.state,
		DealerPhase: g.dealer.phase,
		Round:       g.round,
		Act:         g.act,
		ActionSeat:  g.curSeat,
		DeckSize:    g.deck.Size(),
		DiscardSize: g.deck.DiscardSize(),
		InCombat:    g.inCombat,
		RerollCost:  g.rerollCost,
		LastRound:   g.lastRound,
	}
	if g.enemy != nil {
		s.Enemy = &EnemySnapshot{
			Name:       g.enemy.name,
			HP:         g.enemy.hp,
			MaxHP:      g.enemy.maxHP,
			ChipThreat: g.enemy.chipThreat,
			Defeated:   g.enemy.defeated,
		}
	}

	for _, p := range g.players {
		ps := PlayerSnapshot{
			ID:        p.id,
			Seat:      p.seat,
			Class:     p.class,
			Dealer:    p.dealer,
			AI:        p.ai,
			HP:        p.hp,
			MaxHP:     p.maxHP,
			Chips:     p.chips,
			Sanity:    p.sanity,
			MaxSanity: p.maxSanity,
			Tier:      p.SanityTier(),
			Bet:       p.bet,
			State:     p.state,
			Statuses:  append([]StatusInstance{}, p.statuses.Active()...),
			Slots:     append([]trinket.Slot{}, p.slots[:]...),
		}
		for _, hc := range p.hand.Cards() {
			cs := CardSnapshot{Card: hc.Card, FaceUp: hc.FaceUp, Doubled: hc.Doubled}
			if !hc.FaceUp {
				// Face-down cards leave the engine masked.
				cs.Card = card.CardRear
			}
			ps.Cards = append(ps.Cards, cs)
		}
		if p.dealer && g.state.hidesDealerHole() {
			ps.Total = p.hand.VisibleTotal()
		} else {
			ps.Total = p.hand.Total()
		}
		s.Players = append(s.Players, ps)
	}

	return s
}

// hidesDealerHole reports whether the dealer total shown to clients is
// the visible total only.
func (s State) hidesDealerHole() bool {
	switch s {
	case StateDealing, StatePlayerTurn:
		return true
	}
	return false
}
