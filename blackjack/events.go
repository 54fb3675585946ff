package blackjack

import (
	"fmt"

	"blackjack-lite/blackjack/encounter"
)

// Encounter lifecycle. Event nodes open between rounds; a node stays
// active until a choice is confirmed, and its consequences apply in a
// fixed order: chip and sanity deltas, tag removals, tag grants, the
// trinket reward, then the next-combat HP multiplier.

// ActiveEncounter returns the open event node, if any.
func (g *Game) ActiveEncounter() *encounter.Encounter {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.node
}

// DrawEncounter opens a weighted-random event node.
func (g *Game) DrawEncounter() (*encounter.Encounter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.encounterAllowedLocked(); err != nil {
		return nil, err
	}
	if g.pool == nil || g.pool.Len() == 0 {
		return nil, ErrNoEncounter
	}
	enc, ok := g.pool.Draw(g.rng)
	if !ok {
		return nil, ErrNoEncounter
	}
	g.node = enc
	return enc, nil
}

// StartEncounter opens a specific event node by key.
func (g *Game) StartEncounter(key string) (*encounter.Encounter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.encounterAllowedLocked(); err != nil {
		return nil, err
	}
	if g.pool == nil {
		return nil, ErrNoEncounter
	}
	base, ok := g.pool.Get(key)
	if !ok {
		return nil, fmt.Errorf("unknown encounter %q", key)
	}
	g.node = cloneFromPool(base)
	return g.node, nil
}

func cloneFromPool(base *encounter.Encounter) *encounter.Encounter {
	choices := make([]encounter.Choice, len(base.Choices))
	copy(choices, base.Choices)
	return encounter.New(base.Key, base.Title, base.Description, base.Type, choices)
}

func (g *Game) encounterAllowedLocked() error {
	if g.node != nil {
		return ErrInvalidState("an encounter is already active")
	}
	switch g.state {
	case StateMenu, StateBetting:
		return nil
	}
	return ErrInvalidState("encounters open between rounds")
}

// RerollCost is the price of the next encounter reroll.
func (g *Game) RerollCost() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rerollCost
}

// RerollEncounter swaps the active node for a different one, charging
// the seat the current reroll cost. The cost doubles per use.
func (g *Game) RerollEncounter(seat int) (*encounter.Encounter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.node == nil {
		return nil, ErrNoEncounter
	}
	p, err := g.playerLocked(seat)
	if err != nil {
		return nil, err
	}
	if p.chips < g.rerollCost {
		return nil, ErrNotEnoughChips
	}
	next, ok := g.pool.DrawDifferent(g.rng, g.node.Key)
	if !ok {
		return nil, ErrNoEncounter
	}
	p.AddChips(-g.rerollCost)
	g.rerollCost *= 2
	g.node = next
	return next, nil
}

// SelectEventChoice confirms a choice on the active node for the seat,
// applies its consequences, and closes the node. Locked choices fail
// with ErrChoiceLocked and change nothing.
func (g *Game) SelectEventChoice(seat, choice int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.node == nil {
		return "", ErrNoEncounter
	}
	p, err := g.playerLocked(seat)
	if err != nil {
		return "", err
	}
	if choice < 0 || choice >= len(g.node.Choices) {
		return "", fmt.Errorf("choice %d out of range", choice)
	}
	c := &g.node.Choices[choice]
	if !c.Unlocked(p, &g.tags) {
		return "", ErrChoiceLocked
	}

	g.node.Selected = choice
	g.applyChoiceLocked(p, c)
	result := c.ResultText
	g.node = nil
	return result, nil
}

func (g *Game) applyChoiceLocked(p *Player, c *encounter.Choice) {
	if c.ChipsDelta != 0 {
		p.AddChips(c.ChipsDelta)
	}
	if c.SanityDelta != 0 {
		p.AdjustSanity(c.SanityDelta)
	}
	for _, tag := range c.Removals {
		g.tags.RemoveAll(tag)
	}
	for _, grant := range c.Grants {
		g.tags.Apply(grant.Strategy, grant.Tag, grant.Count, grant.Suit, g.rng)
	}
	if len(c.Removals) > 0 || len(c.Grants) > 0 {
		p.MarkStatsDirty()
	}
	if c.TrinketReward != "" {
		if inst, err := g.dropper.GenerateByKey(c.TrinketReward, g.act); err == nil {
			g.equipLocked(p, inst)
		}
	}
	if c.EnemyHPMultiplier > 0 {
		g.nextEnemyHPMult = c.EnemyHPMultiplier
	}
}
