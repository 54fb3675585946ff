package blackjack

import (
	"testing"

	"blackjack-lite/blackjack/encounter"
	"blackjack-lite/card"
)

func testPool(t *testing.T) *encounter.Pool {
	t.Helper()
	pool := encounter.NewPool()

	crossroads := encounter.New("crossroads", "The Crossroads", "A figure waits.", encounter.TypeChoice, []encounter.Choice{
		{
			Text:       "Take the deal",
			ResultText: "Your cards feel heavier.",
			ChipsDelta: 50, SanityDelta: -10,
			Grants: []encounter.TagGrant{{Tag: card.TagCursed, Strategy: card.GrantRandomUntagged, Count: 3}},
		},
		{
			Text:       "Burn the curse",
			ResultText: "The marks fade.",
			Removals:   []card.Tag{card.TagCursed},
			Requirement: encounter.RequireTagCount{
				Tag: card.TagCursed, N: 3,
			},
		},
		{
			Text:              "Walk away",
			ResultText:        "Something follows.",
			EnemyHPMultiplier: 1.5,
		},
	})
	if err := pool.Add(crossroads, 3); err != nil {
		t.Fatalf("pool.Add: %v", err)
	}

	shrine := encounter.New("shrine", "Chip Shrine", "Coins stacked high.", encounter.TypeBlessing, []encounter.Choice{
		{Text: "Pray", ResultText: "A token appears.", TrinketReward: "comp_voucher"},
	})
	if err := pool.Add(shrine, 1); err != nil {
		t.Fatalf("pool.Add: %v", err)
	}
	return pool
}

func newEncounterGame(t *testing.T) (*Game, int) {
	t.Helper()
	g, err := NewGame(testConfig(), testRegistry(t), testPool(t))
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	seat, err := g.AddPlayer("p1", ClassDreamer)
	if err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	return g, seat
}

func TestChoiceConsequenceOrder(t *testing.T) {
	g, seat := newEncounterGame(t)
	if _, err := g.StartEncounter("crossroads"); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}

	result, err := g.SelectEventChoice(seat, 0)
	if err != nil {
		t.Fatalf("SelectEventChoice: %v", err)
	}
	if result != "Your cards feel heavier." {
		t.Fatalf("result=%q", result)
	}
	p, _ := g.Player(seat)
	if p.Chips() != 150 {
		t.Fatalf("chips=%d, want 150", p.Chips())
	}
	if p.Sanity() != 90 {
		t.Fatalf("sanity=%d, want 90", p.Sanity())
	}
	if n := g.Tags().Count(card.TagCursed); n != 3 {
		t.Fatalf("cursed=%d, want 3", n)
	}
	if g.ActiveEncounter() != nil {
		t.Fatal("node must close after selection")
	}
}

func TestLockedChoiceRejectedWithoutSideEffects(t *testing.T) {
	g, seat := newEncounterGame(t)
	if _, err := g.StartEncounter("crossroads"); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}

	// No cursed cards yet: the burn choice is locked.
	if _, err := g.SelectEventChoice(seat, 1); err != ErrChoiceLocked {
		t.Fatalf("err=%v, want ErrChoiceLocked", err)
	}
	p, _ := g.Player(seat)
	if p.Chips() != 100 || p.Sanity() != 100 {
		t.Fatal("locked choice must not mutate the player")
	}
	if g.ActiveEncounter() == nil {
		t.Fatal("node must stay open after a locked pick")
	}

	// Meet the requirement and the same choice unlocks.
	for _, c := range []string{"2h", "3h", "4h"} {
		g.Tags().Grant(mustCard(t, c), card.TagCursed)
	}
	if _, err := g.SelectEventChoice(seat, 1); err != nil {
		t.Fatalf("unlocked pick failed: %v", err)
	}
	if n := g.Tags().Count(card.TagCursed); n != 0 {
		t.Fatalf("cursed=%d after removal, want 0", n)
	}
}

func TestEnemyHPMultiplierAppliesToNextCombat(t *testing.T) {
	g, seat := newEncounterGame(t)
	if _, err := g.StartEncounter("crossroads"); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}
	if _, err := g.SelectEventChoice(seat, 2); err != nil {
		t.Fatalf("SelectEventChoice: %v", err)
	}

	enemy := NewEnemy("Stalker", 100, 10)
	if err := g.StartCombat(enemy); err != nil {
		t.Fatalf("StartCombat: %v", err)
	}
	if enemy.MaxHP() != 150 {
		t.Fatalf("maxHP=%d, want 150", enemy.MaxHP())
	}

	// The multiplier is consumed; a second combat is unscaled.
	g.EndCombat()
	second := NewEnemy("Stalker", 100, 10)
	if err := g.StartCombat(second); err != nil {
		t.Fatalf("StartCombat: %v", err)
	}
	if second.MaxHP() != 100 {
		t.Fatalf("second maxHP=%d, want 100", second.MaxHP())
	}
}

func TestTrinketRewardEquipsFirstFreeSlot(t *testing.T) {
	g, seat := newEncounterGame(t)
	if _, err := g.StartEncounter("shrine"); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}
	if _, err := g.SelectEventChoice(seat, 0); err != nil {
		t.Fatalf("SelectEventChoice: %v", err)
	}
	p, _ := g.Player(seat)
	if !p.HasTrinket("comp_voucher") {
		t.Fatal("reward not equipped")
	}
	if !p.Slots()[0].Occupied {
		t.Fatal("reward must land in the first free slot")
	}
}

func TestRerollCostDoubles(t *testing.T) {
	g, seat := newEncounterGame(t)
	p, _ := g.Player(seat)
	p.AddChips(1000)

	if _, err := g.DrawEncounter(); err != nil {
		t.Fatalf("DrawEncounter: %v", err)
	}
	costs := []int{50, 100, 200, 400}
	for _, want := range costs {
		if got := g.RerollCost(); got != want {
			t.Fatalf("reroll cost=%d, want %d", got, want)
		}
		if _, err := g.RerollEncounter(seat); err != nil {
			t.Fatalf("RerollEncounter at %d: %v", want, err)
		}
	}
	if p.Chips() != 1100-750 {
		t.Fatalf("chips=%d, want %d", p.Chips(), 1100-750)
	}
}

func TestRerollRequiresChips(t *testing.T) {
	g, seat := newEncounterGame(t)
	p, _ := g.Player(seat)
	p.chips = 10

	if _, err := g.DrawEncounter(); err != nil {
		t.Fatalf("DrawEncounter: %v", err)
	}
	if _, err := g.RerollEncounter(seat); err != ErrNotEnoughChips {
		t.Fatalf("err=%v, want ErrNotEnoughChips", err)
	}
	if g.RerollCost() != 50 {
		t.Fatal("failed reroll must not raise the cost")
	}
}

func TestEncounterBlockedMidRound(t *testing.T) {
	g, seat := newEncounterGame(t)
	if err := g.StartRun(); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := g.PlaceBet(seat, 10); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	g.Advance(0) // into dealing
	if _, err := g.DrawEncounter(); err == nil {
		t.Fatal("encounters must not open mid-round")
	}
}

// Drops from the pool are copies: selecting on one visit must not leak
// into the next.
func TestEncounterSelectionDoesNotLeak(t *testing.T) {
	g, seat := newEncounterGame(t)
	if _, err := g.StartEncounter("shrine"); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}
	if _, err := g.SelectEventChoice(seat, 0); err != nil {
		t.Fatalf("SelectEventChoice: %v", err)
	}
	enc, err := g.StartEncounter("shrine")
	if err != nil {
		t.Fatalf("second StartEncounter: %v", err)
	}
	if enc.Selected != -1 {
		t.Fatalf("Selected=%d, want -1 on a fresh visit", enc.Selected)
	}
}

var _ encounter.Target = (*Player)(nil)
