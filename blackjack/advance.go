package blackjack

// Advance drives the state machine by dt seconds. The caller owns the
// clock: a UI ticks at frame rate, a simulation can pass large deltas,
// and tests pass exactly the delays they want to cross.
func (g *Game) Advance(dt float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stateTimer += dt

	switch g.state {
	case StateBetting:
		g.tickBettingLocked()
	case StateDealing:
		if g.stateTimer >= g.cfg.DealingDelay {
			g.transitionLocked(StatePlayerTurn)
		}
	case StatePlayerTurn:
		g.tickPlayerTurnLocked()
	case StateDealerTurn:
		g.tickDealerTurnLocked(dt)
	case StateShowdown:
		// Resolution ran on entry; results display during ROUND_END.
		g.transitionLocked(StateRoundEnd)
	case StateRoundEnd:
		if g.stateTimer >= g.cfg.RoundEndDelay {
			g.finishRoundLocked()
		}
	case StateCombatVictory:
		if g.stateTimer >= g.cfg.RoundEndDelay {
			g.enemy = nil
			g.transitionLocked(StateBetting)
		}
	}
}

// tickBettingLocked sits out seats that cannot cover the minimum and
// moves to dealing once every remaining seat has a bet down.
func (g *Game) tickBettingLocked() {
	playing := 0
	for _, p := range g.players {
		if p.IsDealer() {
			continue
		}
		if p.state == PlayerStateBetting && p.bet == 0 && p.chips < g.currentMinBetLocked() {
			p.state = PlayerStateWaiting
		}
		if p.state != PlayerStateWaiting {
			playing++
			if p.bet == 0 {
				return
			}
		}
	}
	if playing == 0 {
		g.transitionLocked(StateGameOver)
		return
	}
	g.transitionLocked(StateDealing)
}

// currentMinBetLocked is the table minimum after any HOUSE_RULES hike.
func (g *Game) currentMinBetLocked() int {
	min := g.cfg.MinBet
	if g.houseRules {
		min *= 2
	}
	return min
}

func (g *Game) tickPlayerTurnLocked() {
	if g.curSeat >= len(g.players) {
		g.transitionLocked(StateDealerTurn)
		return
	}
	p := g.players[g.curSeat]
	if p.state != PlayerStatePlaying {
		g.curSeat = g.nextActiveSeatLocked(g.curSeat + 1)
		g.stateTimer = 0
		return
	}
	if p.ai && g.stateTimer >= g.cfg.PlayerActionDelay {
		g.aiActLocked(p)
		g.stateTimer = 0
	}
}

func (g *Game) nextActiveSeatLocked(from int) int {
	for seat := from; seat < len(g.players); seat++ {
		if g.players[seat].state == PlayerStatePlaying {
			return seat
		}
	}
	return len(g.players)
}

// aiActLocked plays basic strategy without doubles or splits: hit 11 and
// under, stand 17 and over, and in between hit against a strong upcard.
func (g *Game) aiActLocked(p *Player) {
	total := p.hand.Total()
	switch {
	case total <= 11:
		_ = g.executeActionLocked(p, ActionHit)
	case total >= 17:
		_ = g.executeActionLocked(p, ActionStand)
	case g.dealerUpcardValueLocked() >= 7:
		_ = g.executeActionLocked(p, ActionHit)
	default:
		_ = g.executeActionLocked(p, ActionStand)
	}
}

// dealerUpcardValueLocked is the base value of the dealer's face-up card.
func (g *Game) dealerUpcardValueLocked() int {
	for _, hc := range g.players[DealerSeat].hand.Cards() {
		if hc.FaceUp {
			return hc.Card.BaseValue()
		}
	}
	return 0
}

// tickDealerTurnLocked runs the dealer's four-phase sub-machine. The
// hole card reveal always happens, even when every player busted.
func (g *Game) tickDealerTurnLocked(dt float64) {
	g.dealer.timer += dt
	dealerHand := &g.players[DealerSeat].hand

	switch g.dealer.phase {
	case DealerPhaseCheckReveal:
		if g.dealer.timer < g.cfg.CardRevealDelay {
			return
		}
		dealerHand.RevealAll()
		g.dealer.revealed = true
		g.dealer.timer = 0
		if dealerHand.IsBlackjack() || g.allContendersBustedLocked() {
			g.dealer.phase = DealerPhaseWait
			return
		}
		g.dealer.phase = DealerPhaseDecide

	case DealerPhaseDecide:
		g.dealer.willHit = dealerHand.Total() < g.dealerStandThresholdLocked()
		g.dealer.timer = 0
		if g.dealer.willHit {
			g.dealer.phase = DealerPhaseAction
		} else {
			g.dealer.phase = DealerPhaseWait
		}

	case DealerPhaseAction:
		if g.dealer.timer < g.cfg.CardRevealDelay {
			return
		}
		g.dealCardToLocked(g.players[DealerSeat], true)
		g.dealer.timer = 0
		if dealerHand.IsBust() {
			g.maybeGlitchLocked()
			g.dealer.phase = DealerPhaseWait
			return
		}
		g.dealer.phase = DealerPhaseDecide

	case DealerPhaseWait:
		if g.dealer.timer >= g.cfg.PlayerActionDelay {
			g.transitionLocked(StateShowdown)
		}
	}
}

// dealerStandThresholdLocked is the dealer stand total after HOUSE_RULES.
func (g *Game) dealerStandThresholdLocked() int {
	if g.houseRules {
		return g.cfg.DealerStandsOn + 1
	}
	return g.cfg.DealerStandsOn
}

// allContendersBustedLocked reports whether no seat is left to pay out.
func (g *Game) allContendersBustedLocked() bool {
	for seat := 1; seat < len(g.players); seat++ {
		switch g.players[seat].state {
		case PlayerStateWaiting, PlayerStateBust:
		default:
			return false
		}
	}
	return true
}

// maybeGlitchLocked rolls the GLITCH ability on a dealer bust; when it
// fires the busted hand counts as 21 at showdown.
func (g *Game) maybeGlitchLocked() {
	if !g.inCombat || g.enemy == nil {
		return
	}
	for i := range g.enemy.actives {
		a := &g.enemy.actives[i]
		if a.ID != AbilityGlitch || a.Trigger != TriggerRandom {
			continue
		}
		if g.rng.Float64() < a.TriggerValue {
			g.dealer.glitched = true
			return
		}
	}
}

// finishRoundLocked runs round-boundary cleanup and picks the next state.
func (g *Game) finishRoundLocked() {
	for _, p := range g.players {
		p.hand.Clear(g.deck)
	}
	for _, p := range g.players {
		if !p.IsDealer() {
			p.statuses.TickRounds()
		}
	}
	g.reshuffleIfNeededLocked()

	if g.inCombat && g.enemy != nil && !g.enemy.Defeated() {
		for _, ability := range g.enemy.CheckTriggers(g.rng) {
			g.applyEnemyAbilityLocked(ability)
		}
	}

	switch {
	case g.enemy != nil && g.enemy.Defeated():
		g.transitionLocked(StateCombatVictory)
	case g.runLostLocked():
		g.transitionLocked(StateGameOver)
	default:
		g.transitionLocked(StateBetting)
	}
}

// runLostLocked reports defeat: a human seat out of HP, or no seat able
// to cover the table minimum.
func (g *Game) runLostLocked() bool {
	solvent := false
	for seat := 1; seat < len(g.players); seat++ {
		p := g.players[seat]
		if !p.ai && p.hp == 0 {
			return true
		}
		if p.chips >= g.currentMinBetLocked() {
			solvent = true
		}
	}
	return !solvent
}

// applyEnemyAbilityLocked resolves a fired active ability at the round
// boundary. GLITCH resolves earlier, on the dealer bust itself.
func (g *Game) applyEnemyAbilityLocked(ability Ability) {
	switch ability {
	case AbilityDoubleOrNothing:
		g.doubleStakes = true
	case AbilityReshuffleReality:
		g.deck.Reset(g.rng)
	case AbilityHouseRules:
		g.houseRules = true
	case AbilityAllIn:
		g.forceAllIn = true
	}
}
