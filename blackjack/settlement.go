package blackjack

import (
	"blackjack-lite/card"
	"blackjack-lite/trinket"
)

// SeatResult is one seat's resolved outcome.
type SeatResult struct {
	Seat        int
	Outcome     PlayerState
	ChipsDelta  int
	DamageDealt int
	DamageTaken int
	Crit        bool
}

// RoundResult records the last resolved round for display and replay.
type RoundResult struct {
	Round           int
	DealerTotal     int
	DealerBust      bool
	DealerBlackjack bool
	Glitched        bool
	Seats           []SeatResult
}

// LastRound returns the result of the most recently resolved round.
func (g *Game) LastRound() *RoundResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastRound
}

// resolveShowdownLocked settles every contending seat against the
// dealer hand. Exactly one rung of the ladder applies per seat: bust,
// double natural, player natural, dealer natural, dealer bust, then
// total comparison.
func (g *Game) resolveShowdownLocked() {
	dealerHand := &g.players[DealerSeat].hand
	dealerTotal := dealerHand.Total()
	dealerBust := dealerHand.IsBust()
	dealerBlackjack := dealerHand.IsBlackjack()
	if g.dealer.glitched {
		dealerTotal = 21
		dealerBust = false
	}

	result := &RoundResult{
		Round:           g.round,
		DealerTotal:     dealerTotal,
		DealerBust:      dealerBust,
		DealerBlackjack: dealerBlackjack,
		Glitched:        g.dealer.glitched,
	}

	houseWinsTies := g.inCombat && g.enemy != nil && g.enemy.HasPassive(AbilityHouseAlwaysWins)

	for seat := 1; seat < len(g.players); seat++ {
		p := g.players[seat]
		if p.state == PlayerStateWaiting {
			continue
		}
		sr := SeatResult{Seat: seat}
		before := p.chips

		switch {
		case p.hand.IsBust():
			g.settleBustLocked(p, &sr)
		case p.hand.IsBlackjack() && dealerBlackjack:
			g.settlePushLocked(p, &sr)
		case p.hand.IsBlackjack():
			g.settleWinLocked(p, &sr, g.cfg.BlackjackPayout, true)
		case dealerBlackjack:
			g.settleLossLocked(p, &sr)
		case dealerBust:
			g.settleWinLocked(p, &sr, 1, false)
		case p.hand.Total() > dealerTotal:
			g.settleWinLocked(p, &sr, 1, false)
		case p.hand.Total() < dealerTotal:
			g.settleLossLocked(p, &sr)
		case houseWinsTies:
			// Comparison ties go to the house; naturals still push.
			g.settleLossLocked(p, &sr)
		default:
			g.settlePushLocked(p, &sr)
		}

		sr.Outcome = p.state
		sr.ChipsDelta = p.chips - before
		result.Seats = append(result.Seats, sr)
	}

	g.lastRound = result
	g.doubleStakes = false
}

// settleWinLocked pays the stake back plus profit, applies outcome
// modifiers, and converts the wager into enemy damage.
func (g *Game) settleWinLocked(p *Player, sr *SeatResult, payout float64, natural bool) {
	p.state = PlayerStateWon
	if natural {
		p.state = PlayerStateBlackjack
	}

	bet := p.bet
	profit := int(float64(bet) * payout)
	if g.doubleStakes {
		profit *= 2
	}
	// Refresh aggregates before applying them.
	p.CombatStats(g.reg)
	if p.winBonusPercent > 0 {
		profit += profit * p.winBonusPercent / 100
	}
	if greed, ok := p.statuses.Get(StatusGreed); ok {
		profit -= profit * greed.Value / 100
	}
	p.chips += bet + profit
	p.bet = 0
	p.AddChips(p.flatChipsOnWin)
	p.roundWon = profit

	damageBase := bet
	if natural {
		damageBase = int(float64(bet) * payout)
	}
	if g.doubleStakes {
		damageBase *= 2
	}
	sr.DamageDealt, sr.Crit = g.dealEnemyDamageLocked(p, damageBase, true)
	g.applyRakeLocked(p, sr.DamageDealt)

	if natural {
		g.fireEventLocked(EventPlayerBlackjack, p.seat)
	}
	g.fireEventLocked(EventPlayerWin, p.seat)
}

// settleLossLocked forfeits the bet, doubles it under TILT, refunds per
// the loss aggregate, and takes the enemy's chip threat as HP damage.
func (g *Game) settleLossLocked(p *Player, sr *SeatResult) {
	p.state = PlayerStateLost
	lost := p.LoseBet()
	if g.doubleStakes {
		p.AddChips(-lost)
		lost *= 2
	}
	if tilt, ok := p.statuses.Get(StatusTilt); ok {
		extra := lost * tilt.Value / 100
		p.AddChips(-extra)
		lost += extra
	}
	p.roundLost = lost

	p.CombatStats(g.reg)
	if p.lossRefundPercent > 0 {
		p.AddChips(lost * p.lossRefundPercent / 100)
	}

	sr.DamageTaken = g.applyChipThreatLocked(p)
	g.fireEventLocked(EventPlayerLoss, p.seat)
}

// settleBustLocked is the loss variant for busted hands: same forfeiture
// path, but the bust refund aggregate and the bust event apply.
func (g *Game) settleBustLocked(p *Player, sr *SeatResult) {
	p.state = PlayerStateBust
	lost := p.LoseBet()
	if g.doubleStakes {
		p.AddChips(-lost)
		lost *= 2
	}
	if tilt, ok := p.statuses.Get(StatusTilt); ok {
		extra := lost * tilt.Value / 100
		p.AddChips(-extra)
		lost += extra
	}
	p.roundLost = lost

	p.CombatStats(g.reg)
	if p.bustRefundPercent > 0 {
		p.AddChips(lost * p.bustRefundPercent / 100)
	}

	sr.DamageTaken = g.applyChipThreatLocked(p)
	g.fireEventLocked(EventPlayerBust, p.seat)
}

// settlePushLocked returns the stake untouched. The push damage
// aggregate still chips the enemy, without crits.
func (g *Game) settlePushLocked(p *Player, sr *SeatResult) {
	p.state = PlayerStatePush
	bet := p.bet
	p.ReturnBet()

	p.CombatStats(g.reg)
	if p.pushDamagePercent > 0 {
		dealt, _ := g.dealEnemyDamageLocked(p, bet*p.pushDamagePercent/100, false)
		sr.DamageDealt = dealt
	}
	g.fireEventLocked(EventPlayerPush, p.seat)
}

// applyChipThreatLocked applies the enemy's chip threat to the player's
// HP on a lost round. Outside combat nothing hits back.
func (g *Game) applyChipThreatLocked(p *Player) int {
	if !g.inCombat || g.enemy == nil {
		return 0
	}
	threat := g.enemy.ChipThreat()
	p.AdjustHP(-threat)
	return threat
}

// applyRakeLocked skims a percentage of damage dealt as chips and burns
// one stack.
func (g *Game) applyRakeLocked(p *Player, damage int) {
	if damage <= 0 {
		return
	}
	if rake, ok := p.statuses.Get(StatusRake); ok {
		p.AddChips(-(damage * rake.Value / 100))
		p.statuses.ConsumeStack(StatusRake)
	}
}

// dealEnemyDamageLocked runs the damage pipeline: base plus flat bonus,
// percent scaling (stats plus BRUTAL cards in hand), per-tag flat buffs,
// then an optional crit roll (stats plus LUCKY cards in hand).
func (g *Game) dealEnemyDamageLocked(p *Player, base int, allowCrit bool) (dealt int, crit bool) {
	if !g.inCombat || g.enemy == nil || g.enemy.Defeated() || base <= 0 {
		return 0, false
	}
	stats := p.CombatStats(g.reg)

	dmg := base + stats.DamageFlat
	percent := stats.DamagePercent + 10*g.handTagCountLocked(p, card.TagBrutal)
	if percent != 0 {
		dmg = dmg * (100 + percent) / 100
	}
	dmg += g.tagBuffFlatLocked(p)

	if allowCrit {
		chance := stats.CritChance + 10*g.handTagCountLocked(p, card.TagLucky)
		if chance > 0 && g.rng.Intn(100) < chance {
			crit = true
			dmg = dmg * (150 + stats.CritBonus) / 100
		}
	}
	if dmg < 1 {
		dmg = 1
	}
	g.enemy.TakeDamage(dmg)
	return dmg, crit
}

// healEnemyLocked routes enemy healing through PUNISH_HEAL charges:
// a charge converts the heal into that much damage instead.
func (g *Game) healEnemyLocked(source *Player, amount int) {
	if g.enemy == nil || amount <= 0 {
		return
	}
	if source != nil && source.healPunishCharges > 0 {
		source.healPunishCharges--
		g.trackHealPunishLocked(source)
		g.enemy.TakeDamage(amount)
		return
	}
	g.enemy.Heal(amount)
}

// trackHealPunishLocked credits the punish to the first equipped
// PUNISH_HEAL trinket's counter.
func (g *Game) trackHealPunishLocked(p *Player) {
	for i := range p.slots {
		if !p.slots[i].Occupied {
			continue
		}
		tpl, ok := g.reg.Template(p.slots[i].Inst.TemplateKey)
		if !ok {
			continue
		}
		if passiveHasEffect(tpl, "PUNISH_HEAL") {
			p.slots[i].Inst.HealPunishes++
			return
		}
	}
}

func passiveHasEffect(tpl *trinket.Template, name string) bool {
	if trinket.EffectName(tpl.Primary.Effect) == name {
		return true
	}
	return tpl.Secondary != nil && trinket.EffectName(tpl.Secondary.Effect) == name
}
