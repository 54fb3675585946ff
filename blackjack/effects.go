package blackjack

import (
	"fmt"

	"blackjack-lite/card"
	"blackjack-lite/trinket"
)

// fireEventLocked dispatches one event for one seat through the fixed
// chain: the seat's trinkets in slot order, then its statuses, then the
// enemy, then the tutorial listener. Dispatch is synchronous; listeners
// may fire further events up to the recursion cap.
func (g *Game) fireEventLocked(event Event, seat int) {
	if !g.evbus.enter(event) {
		return
	}
	defer g.evbus.leave()

	if g.evbus.depth == 1 {
		g.trace = g.trace[:0]
	}

	p, err := g.playerLocked(seat)
	if err != nil {
		return
	}
	name := event.String()

	for i := range p.slots {
		if !p.slots[i].Occupied {
			continue
		}
		tpl, ok := g.reg.Template(p.slots[i].Inst.TemplateKey)
		if !ok {
			continue
		}
		g.runPassiveLocked(p, i, tpl, &tpl.Primary, name)
		if tpl.Secondary != nil {
			g.runPassiveLocked(p, i, tpl, tpl.Secondary, name)
		}
	}

	for _, st := range p.statuses.Active() {
		g.trace = append(g.trace, fmt.Sprintf("status:%s", st.Kind))
	}

	if g.inCombat && g.enemy != nil && !g.enemy.Defeated() {
		g.enemyReactLocked(event)
	}

	if g.evbus.tutorial != nil {
		g.trace = append(g.trace, "tutorial")
		g.evbus.tutorial.HandleEvent(g, event, seat)
	}
}

// runPassiveLocked fires one passive if its trigger and bet gate match.
func (g *Game) runPassiveLocked(p *Player, slot int, tpl *trinket.Template, passive *trinket.Passive, eventName string) {
	if passive.Trigger != eventName {
		return
	}
	if passive.BetGTE > 0 && p.bet < passive.BetGTE {
		return
	}
	g.trace = append(g.trace, fmt.Sprintf("slot%d:%s", slot, tpl.Key))
	g.executeEffectLocked(p, slot, tpl, passive)
}

// enemyReactLocked gives PLAYER_ACTION-triggered actives a roll when the
// player draws a card.
func (g *Game) enemyReactLocked(event Event) {
	if event != EventCardDrawn {
		return
	}
	for i := range g.enemy.actives {
		a := &g.enemy.actives[i]
		if a.Trigger != TriggerPlayerAction || a.HasTriggered {
			continue
		}
		if g.rng.Float64() < a.TriggerValue {
			a.HasTriggered = true
			g.trace = append(g.trace, fmt.Sprintf("enemy:%s", a.ID))
			g.applyEnemyAbilityLocked(a.ID)
		}
	}
}

// executeEffectLocked applies a fired passive. Win/loss/push outcome
// modifiers (percent bonus, refunds, push damage) are applied once by
// settlement from the player aggregates; here they only update the
// instance counters so the UI can show what each trinket contributed.
func (g *Game) executeEffectLocked(p *Player, slot int, tpl *trinket.Template, passive *trinket.Passive) {
	inst := &p.slots[slot].Inst

	switch eff := passive.Effect.(type) {
	case trinket.EffectAddChips:
		if passive.Trigger == trinket.TriggerWin {
			inst.BonusChips += eff.Amount
			return
		}
		p.AddChips(eff.Amount)
		inst.BonusChips += eff.Amount

	case trinket.EffectAddChipsPercent:
		if passive.Trigger == trinket.TriggerWin {
			inst.BonusChips += p.roundWon * eff.Percent / 100
			return
		}
		bonus := p.bet * eff.Percent / 100
		p.AddChips(bonus)
		inst.BonusChips += bonus

	case trinket.EffectLoseChips:
		p.AddChips(-eff.Amount)

	case trinket.EffectRefundChipsPercent:
		inst.RefundedChips += p.roundLost * eff.Percent / 100

	case trinket.EffectApplyStatus:
		kind, err := ParseStatusKind(eff.StatusKey)
		if err != nil {
			return
		}
		g.applyStatusLocked(p, kind, defaultStatusValue(kind), eff.Stacks)

	case trinket.EffectClearStatus:
		if kind, err := ParseStatusKind(eff.StatusKey); err == nil {
			p.statuses.Remove(kind)
		}

	case trinket.EffectStack:
		inst.AddStack(tpl)
		p.MarkStatsDirty()

	case trinket.EffectStackReset:
		inst.ResetStacks()
		p.MarkStatsDirty()

	case trinket.EffectAddDamageFlat:
		dealt, _ := g.dealEnemyDamageLocked(p, eff.Damage, false)
		inst.DamageDealt += dealt

	case trinket.EffectPushDamagePercent:
		inst.DamageDealt += p.bet * eff.Percent / 100

	case trinket.EffectAddTagToCards:
		g.tags.Apply(card.GrantRandomUntagged, eff.Tag, eff.Count, 0, g.rng)
		p.MarkStatsDirty()

	case trinket.EffectBlockDebuff:
		p.debuffBlockCharges += eff.Count

	case trinket.EffectPunishHeal:
		p.healPunishCharges += eff.Count

	case trinket.EffectChipCostFlatDamage:
		if p.chips < eff.Cost {
			return
		}
		p.AddChips(-eff.Cost)
		dealt, _ := g.dealEnemyDamageLocked(p, eff.Damage, false)
		inst.DamageDealt += dealt

	case trinket.EffectDamageMultiplier, trinket.EffectBuffTagDamage:
		// Stat-aggregated; nothing fires.
	}
}

// fireOnEquipLocked delivers the synthetic equip event to exactly the
// slot that was just filled, then notifies the tutorial.
func (g *Game) fireOnEquipLocked(p *Player, slot int) {
	if !g.evbus.enter(EventOnEquip) {
		return
	}
	defer g.evbus.leave()

	tpl, ok := g.reg.Template(p.slots[slot].Inst.TemplateKey)
	if ok {
		g.runPassiveLocked(p, slot, tpl, &tpl.Primary, trinket.TriggerOnEquip)
		if tpl.Secondary != nil {
			g.runPassiveLocked(p, slot, tpl, tpl.Secondary, trinket.TriggerOnEquip)
		}
	}
	if g.evbus.tutorial != nil {
		g.evbus.tutorial.HandleEvent(g, EventOnEquip, p.seat)
	}
}

// applyStatusLocked applies a status through the debuff block gate.
func (g *Game) applyStatusLocked(p *Player, kind StatusKind, value, duration int) {
	if duration <= 0 {
		duration = 1
	}
	if p.debuffBlockCharges > 0 {
		p.debuffBlockCharges--
		g.trackDebuffBlockLocked(p)
		return
	}
	p.statuses.Apply(kind, value, duration)
}

// ApplyStatus applies a status to a seat from outside the round flow
// (enemy scripting, terminal). Zero value means the kind's default.
func (g *Game) ApplyStatus(seat int, kind StatusKind, value, duration int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.playerLocked(seat)
	if err != nil {
		return err
	}
	if value == 0 {
		value = defaultStatusValue(kind)
	}
	g.applyStatusLocked(p, kind, value, duration)
	return nil
}

// trackDebuffBlockLocked credits the block to the first equipped
// BLOCK_DEBUFF trinket's counter.
func (g *Game) trackDebuffBlockLocked(p *Player) {
	for i := range p.slots {
		if !p.slots[i].Occupied {
			continue
		}
		tpl, ok := g.reg.Template(p.slots[i].Inst.TemplateKey)
		if !ok {
			continue
		}
		if passiveHasEffect(tpl, "BLOCK_DEBUFF") {
			p.slots[i].Inst.DebuffBlocks++
			return
		}
	}
}

// handTagCountLocked counts cards in the seat's hand carrying the tag.
// DOUBLED is consumed on draw and never counts here.
func (g *Game) handTagCountLocked(p *Player, t card.Tag) int {
	n := 0
	for _, hc := range p.hand.Cards() {
		if g.tags.Has(hc.Card, t) {
			n++
		}
	}
	return n
}

// tagBuffFlatLocked sums BUFF_TAG_DAMAGE contributions: each equipped
// buff adds its amount per matching tagged card in hand.
func (g *Game) tagBuffFlatLocked(p *Player) int {
	total := 0
	for i := range p.slots {
		if !p.slots[i].Occupied {
			continue
		}
		tpl, ok := g.reg.Template(p.slots[i].Inst.TemplateKey)
		if !ok {
			continue
		}
		total += buffAmount(g, p, &tpl.Primary)
		if tpl.Secondary != nil {
			total += buffAmount(g, p, tpl.Secondary)
		}
	}
	return total
}

func buffAmount(g *Game, p *Player, passive *trinket.Passive) int {
	buff, ok := passive.Effect.(trinket.EffectBuffTagDamage)
	if !ok {
		return 0
	}
	return buff.Amount * g.handTagCountLocked(p, buff.Tag)
}

// FireEvent dispatches an event by hand, for consoles and tooling.
func (g *Game) FireEvent(event Event, seat int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := g.playerLocked(seat); err != nil {
		return err
	}
	g.fireEventLocked(event, seat)
	return nil
}

// EventTrace returns the listener order of the last top-level dispatch.
func (g *Game) EventTrace() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.trace))
	copy(out, g.trace)
	return out
}

// RejectedEvents drains events refused at the recursion cap.
func (g *Game) RejectedEvents() []Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.evbus.drainRejected()
}
