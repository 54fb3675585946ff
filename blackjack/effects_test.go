package blackjack

import (
	"reflect"
	"testing"

	"blackjack-lite/card"
)

func equipByKey(t *testing.T, g *Game, seat int, key string) {
	t.Helper()
	inst, err := g.dropper.GenerateByKey(key, 1)
	if err != nil {
		t.Fatalf("GenerateByKey(%s): %v", key, err)
	}
	inst.Affixes = nil
	if slot, err := g.EquipTrinket(seat, inst); err != nil || slot < 0 {
		t.Fatalf("EquipTrinket(%s): slot=%d err=%v", key, slot, err)
	}
}

// Dispatch order is fixed: trinket slots ascending, then statuses in
// application order, then the enemy, then the tutorial.
func TestDispatchOrder(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	equipByKey(t, g, seat, "lucky_chip")
	equipByKey(t, g, seat, "comp_voucher")

	p := g.players[seat]
	p.statuses.Apply(StatusTilt, defaultStatusValue(StatusTilt), 3)
	p.statuses.Apply(StatusGreed, defaultStatusValue(StatusGreed), 3)

	called := false
	g.SetTutorialListener(ListenerFunc(func(_ *Game, event Event, s int) {
		called = true
		if event != EventPlayerWin || s != seat {
			t.Errorf("tutorial saw %v seat %d", event, s)
		}
	}))

	g.mu.Lock()
	g.fireEventLocked(EventPlayerWin, seat)
	g.mu.Unlock()

	if !called {
		t.Fatal("tutorial listener never fired")
	}
	want := []string{
		"slot0:lucky_chip",
		"slot1:comp_voucher",
		"status:TILT",
		"status:GREED",
		"tutorial",
	}
	if got := g.EventTrace(); !reflect.DeepEqual(got, want) {
		t.Fatalf("trace=%v, want %v", got, want)
	}
}

func TestDispatchRecursionCap(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	fired := 0
	g.SetTutorialListener(ListenerFunc(func(game *Game, event Event, s int) {
		fired++
		game.fireEventLocked(event, s)
	}))

	g.mu.Lock()
	g.fireEventLocked(EventPlayerWin, seat)
	g.mu.Unlock()

	if fired != maxDispatchDepth {
		t.Fatalf("fired=%d, want %d", fired, maxDispatchDepth)
	}
	rejected := g.RejectedEvents()
	if len(rejected) != 1 || rejected[0] != EventPlayerWin {
		t.Fatalf("rejected=%v, want one PLAYER_WIN", rejected)
	}
	if len(g.RejectedEvents()) != 0 {
		t.Fatal("drain must clear the rejected list")
	}
}

// ON_EQUIP is delivered only to the trinket that just entered a slot.
func TestOnEquipFiresOncePerEquip(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	equipByKey(t, g, seat, "cursed_skull")

	if n := g.tags.Count(card.TagCursed); n != 3 {
		t.Fatalf("cursed cards=%d, want 3 after equip", n)
	}
	// A later equip must not re-run the skull's equip effect.
	equipByKey(t, g, seat, "comp_voucher")
	if n := g.tags.Count(card.TagCursed); n != 3 {
		t.Fatalf("cursed cards=%d after second equip, want 3", n)
	}
}

func TestDebuffBlockCharges(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	equipByKey(t, g, seat, "iron_charm")
	if err := g.StartCombat(NewEnemy("Loan Shark", 40, 5)); err != nil {
		t.Fatalf("StartCombat: %v", err)
	}

	p := g.players[seat]
	if p.debuffBlockCharges != 1 {
		t.Fatalf("charges=%d, want 1 after combat start", p.debuffBlockCharges)
	}
	if err := g.ApplyStatus(seat, StatusTilt, 0, 2); err != nil {
		t.Fatalf("ApplyStatus: %v", err)
	}
	if p.statuses.Has(StatusTilt) {
		t.Fatal("first debuff must be blocked")
	}
	if err := g.ApplyStatus(seat, StatusTilt, 0, 2); err != nil {
		t.Fatalf("ApplyStatus: %v", err)
	}
	if !p.statuses.Has(StatusTilt) {
		t.Fatal("second debuff must land")
	}
	for i := range p.slots {
		if p.slots[i].Occupied && p.slots[i].Inst.TemplateKey == "iron_charm" {
			if p.slots[i].Inst.DebuffBlocks != 1 {
				t.Fatalf("DebuffBlocks=%d, want 1", p.slots[i].Inst.DebuffBlocks)
			}
			return
		}
	}
	t.Fatal("iron_charm not found in slots")
}

func TestVampiricDrawFeedsChipsAndDamage(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	enemy := NewEnemy("Rust Croupier", 100, 5)
	if err := g.StartCombat(enemy); err != nil {
		t.Fatalf("StartCombat: %v", err)
	}
	p := g.players[seat]
	chips := p.chips

	c := mustCard(t, "9h")
	g.tags.Grant(c, card.TagVampiric)
	g.mu.Lock()
	// Pull the exact card out of the pile, then run the draw path on it.
	g.deck.DealWhere(func(dc card.Card) bool { return dc == c })
	p.hand.AddCard(c, true, &g.tags)
	g.applyDrawnTagEffectsLocked(p, c)
	g.mu.Unlock()

	if enemy.HP() != 95 {
		t.Fatalf("enemy hp=%d, want 95", enemy.HP())
	}
	if p.chips != chips+5 {
		t.Fatalf("chips=%d, want %d", p.chips, chips+5)
	}
}

func TestRakeSkimsDamageAndConsumesStack(t *testing.T) {
	g, seat := newTestGame(t, testConfig())
	enemy := NewEnemy("The Accountant", 300, 5)
	if err := g.StartCombat(enemy); err != nil {
		t.Fatalf("StartCombat: %v", err)
	}
	p := g.players[seat]
	p.statuses.Apply(StatusRake, 10, 2)

	setupShowdown(t, g, seat, 100, []string{"10h", "9h"}, []string{"10s", "8d"})
	g.resolveShowdownLocked()

	// Won 100, dealt 100 damage, raked 10.
	if enemy.HP() != 200 {
		t.Fatalf("enemy hp=%d, want 200", enemy.HP())
	}
	rake, ok := p.statuses.Get(StatusRake)
	if !ok || rake.Duration != 1 {
		t.Fatalf("rake stacks not consumed: %+v ok=%v", rake, ok)
	}
}
