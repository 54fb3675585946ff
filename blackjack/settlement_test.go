package blackjack

import (
	"testing"

	"blackjack-lite/card"
)

// setupShowdown places a bet for the seat and rigs both hands, leaving
// the game ready for resolveShowdownLocked.
func setupShowdown(t *testing.T, g *Game, seat, bet int, player, dealer []string) {
	t.Helper()
	p := g.players[seat]
	p.resetForRound()
	if err := p.PlaceBet(bet); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	p.state = PlayerStateStand
	giveHand(t, g, seat, player...)
	giveHand(t, g, DealerSeat, dealer...)
	g.players[DealerSeat].state = PlayerStateWaiting
	g.dealer = dealerTurn{}
}

func TestNaturalPaysThreeToTwo(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	setupShowdown(t, g, seat, 10, []string{"Ah", "Kh"}, []string{"10s", "9d"})

	g.resolveShowdownLocked()

	p := g.players[seat]
	if p.state != PlayerStateBlackjack {
		t.Fatalf("state=%v, want blackjack", p.state)
	}
	// 100 - 10 bet + 10 stake + 15 profit
	if p.chips != 115 {
		t.Fatalf("chips=%d, want 115", p.chips)
	}
}

func TestBothNaturalsPush(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	setupShowdown(t, g, seat, 10, []string{"Ah", "Kh"}, []string{"As", "Qs"})

	g.resolveShowdownLocked()

	p := g.players[seat]
	if p.state != PlayerStatePush {
		t.Fatalf("state=%v, want push", p.state)
	}
	if p.chips != 100 {
		t.Fatalf("chips=%d, want 100", p.chips)
	}
}

func TestDealerBustPaysEvenMoney(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	setupShowdown(t, g, seat, 20, []string{"10h", "8h"}, []string{"10s", "9d", "5c"})

	g.resolveShowdownLocked()

	p := g.players[seat]
	if p.state != PlayerStateWon {
		t.Fatalf("state=%v, want won", p.state)
	}
	if p.chips != 120 {
		t.Fatalf("chips=%d, want 120", p.chips)
	}
}

func TestPlayerBustLosesEvenWhenDealerBusts(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	setupShowdown(t, g, seat, 10, []string{"10h", "8h", "7d"}, []string{"10s", "9d", "5c"})

	g.resolveShowdownLocked()

	p := g.players[seat]
	if p.state != PlayerStateBust {
		t.Fatalf("state=%v, want bust", p.state)
	}
	if p.chips != 90 {
		t.Fatalf("chips=%d, want 90", p.chips)
	}
}

func TestComparisonTiePushes(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	setupShowdown(t, g, seat, 10, []string{"10h", "8h"}, []string{"9s", "9d"})

	g.resolveShowdownLocked()

	if got := g.players[seat].state; got != PlayerStatePush {
		t.Fatalf("state=%v, want push", got)
	}
}

func TestHouseAlwaysWinsTakesTies(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	enemy := NewEnemy("The Pit Boss", 50, 10)
	enemy.AddPassive(AbilityHouseAlwaysWins)
	if err := g.startCombatLocked(enemy); err != nil {
		t.Fatalf("StartCombat: %v", err)
	}
	setupShowdown(t, g, seat, 10, []string{"10h", "8h"}, []string{"9s", "9d"})

	g.resolveShowdownLocked()

	p := g.players[seat]
	if p.state != PlayerStateLost {
		t.Fatalf("state=%v, want lost under HOUSE_ALWAYS_WINS", p.state)
	}
	if p.hp != 90 {
		t.Fatalf("hp=%d, want 90 after chip threat", p.hp)
	}
}

func TestHouseAlwaysWinsStillPushesNaturals(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	enemy := NewEnemy("The Pit Boss", 50, 10)
	enemy.AddPassive(AbilityHouseAlwaysWins)
	if err := g.startCombatLocked(enemy); err != nil {
		t.Fatalf("StartCombat: %v", err)
	}
	setupShowdown(t, g, seat, 10, []string{"Ah", "Kh"}, []string{"As", "Qs"})

	g.resolveShowdownLocked()

	if got := g.players[seat].state; got != PlayerStatePush {
		t.Fatalf("state=%v, naturals must push even against the house", got)
	}
}

func TestWinDamagesEnemyByWager(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	enemy := NewEnemy("Grinning Dealer", 200, 5)
	if err := g.startCombatLocked(enemy); err != nil {
		t.Fatalf("StartCombat: %v", err)
	}
	setupShowdown(t, g, seat, 30, []string{"10h", "9h"}, []string{"10s", "8d"})

	g.resolveShowdownLocked()

	// No trinkets, no tags: damage is the bare wager unless the crit
	// roll fires, and with zero crit chance it cannot.
	if enemy.HP() != 170 {
		t.Fatalf("enemy hp=%d, want 170", enemy.HP())
	}
}

func TestEnemyDefeatLatches(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	enemy := NewEnemy("Chip Golem", 20, 5)
	if err := g.startCombatLocked(enemy); err != nil {
		t.Fatalf("StartCombat: %v", err)
	}
	setupShowdown(t, g, seat, 30, []string{"10h", "9h"}, []string{"10s", "8d"})

	g.resolveShowdownLocked()

	if !enemy.Defeated() || enemy.HP() != 0 {
		t.Fatalf("defeated=%v hp=%d", enemy.Defeated(), enemy.HP())
	}
	enemy.Heal(10)
	if enemy.HP() != 0 {
		t.Fatal("defeat must not un-latch via heal")
	}
}

func TestTiltDoublesLoss(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	p := g.players[seat]
	p.statuses.Apply(StatusTilt, defaultStatusValue(StatusTilt), 2)
	setupShowdown(t, g, seat, 10, []string{"10h", "6h"}, []string{"10s", "9d"})

	g.resolveShowdownLocked()

	// 100 - 10 bet - 10 tilt penalty
	if p.chips != 80 {
		t.Fatalf("chips=%d, want 80 under TILT", p.chips)
	}
}

func TestGreedHalvesGain(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	p := g.players[seat]
	p.statuses.Apply(StatusGreed, defaultStatusValue(StatusGreed), 2)
	setupShowdown(t, g, seat, 20, []string{"10h", "9h"}, []string{"10s", "8d"})

	g.resolveShowdownLocked()

	// Stake back plus half the 20 profit.
	if p.chips != 110 {
		t.Fatalf("chips=%d, want 110 under GREED", p.chips)
	}
}

func TestWinBonusPercentAppliedOnce(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	p := g.players[seat]
	inst, err := g.dropper.GenerateByKey("lucky_chip", 1)
	if err != nil {
		t.Fatalf("GenerateByKey: %v", err)
	}
	inst.Affixes = nil // isolate the passive
	p.Equip(inst, g.cfg.TrinketSlots)
	setupShowdown(t, g, seat, 20, []string{"10h", "9h"}, []string{"10s", "8d"})

	g.resolveShowdownLocked()

	// 80 + 20 stake + 20 profit + 4 win bonus (20%).
	if p.chips != 124 {
		t.Fatalf("chips=%d, want 124 with 20%% win bonus", p.chips)
	}
}

func TestLossRefundAggregate(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	p := g.players[seat]
	inst, err := g.dropper.GenerateByKey("tarnished_medal", 1)
	if err != nil {
		t.Fatalf("GenerateByKey: %v", err)
	}
	inst.Affixes = nil
	p.Equip(inst, g.cfg.TrinketSlots)
	setupShowdown(t, g, seat, 20, []string{"10h", "6h"}, []string{"10s", "9d"})

	g.resolveShowdownLocked()

	// 80 after losing the 20 bet, plus 10 refunded (50%).
	if p.chips != 90 {
		t.Fatalf("chips=%d, want 90 with 50%% loss refund", p.chips)
	}
}

func TestCursedCardBonusDamage(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	enemy := NewEnemy("Velvet Shark", 200, 5)
	if err := g.startCombatLocked(enemy); err != nil {
		t.Fatalf("StartCombat: %v", err)
	}
	p := g.players[seat]
	inst, err := g.dropper.GenerateByKey("cursed_skull", 1)
	if err != nil {
		t.Fatalf("GenerateByKey: %v", err)
	}
	inst.Affixes = nil
	p.Equip(inst, g.cfg.TrinketSlots)

	setupShowdown(t, g, seat, 10, []string{"10h", "9h"}, []string{"10s", "8d"})
	// Pin the curse to exactly one card in hand.
	g.tags.RemoveAll(card.TagCursed)
	g.tags.Grant(mustCard(t, "10h"), card.TagCursed)

	g.resolveShowdownLocked()

	// Wager 10 plus 4 flat for the cursed card in hand.
	if enemy.HP() != 186 {
		t.Fatalf("enemy hp=%d, want 186", enemy.HP())
	}
}
