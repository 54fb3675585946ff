package trinket

import (
	"math/rand"
	"testing"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	affixes := []*AffixTemplate{
		{StatKey: StatDamageFlat, Name: "Iron Grip", Description: "+{value} damage", MinValue: 1, MaxValue: 5, Weight: 100},
		{StatKey: StatDamagePercent, Name: "Sharpened Edge", Description: "+{value}% damage", MinValue: 5, MaxValue: 15, Weight: 80},
		{StatKey: StatCritChance, Name: "Gambler's Eye", Description: "+{value}% crit chance", MinValue: 2, MaxValue: 8, Weight: 60},
		{StatKey: StatCritBonus, Name: "Cruel Streak", Description: "+{value}% crit damage", MinValue: 10, MaxValue: 30, Weight: 40},
	}
	for _, a := range affixes {
		if err := reg.AddAffix(a); err != nil {
			t.Fatalf("AddAffix(%s): %v", a.StatKey, err)
		}
	}
	templates := []*Template{
		{Key: "loaded_dice", Name: "Loaded Dice", Rarity: RarityCommon, Tier: 1, BaseValue: 20,
			Primary: Passive{Trigger: TriggerWin, Effect: EffectAddChips{Amount: 5}}},
		{Key: "lucky_chip", Name: "Lucky Chip", Rarity: RarityCommon, Tier: 1, BaseValue: 25,
			Primary: Passive{Trigger: TriggerWin, Effect: EffectNone{}}},
		{Key: "elite_membership", Name: "Elite Membership", Rarity: RarityUncommon, Tier: 2, BaseValue: 40,
			Primary: Passive{Trigger: TriggerWin, Effect: EffectAddChipsPercent{Percent: 20}}},
		{Key: "stack_trace", Name: "Stack Trace", Rarity: RarityRare, Tier: 2, BaseValue: 60,
			Primary: Passive{Trigger: TriggerBust, Effect: EffectAddDamageFlat{Damage: 15}}},
		{Key: "streak_counter", Name: "Streak Counter", Rarity: RarityRare, Tier: 2, BaseValue: 70,
			Primary:   Passive{Trigger: TriggerWin, Effect: EffectStack{}},
			StackStat: StatCritChance, StackValue: 4},
		{Key: "broken_watch", Name: "Broken Watch", Rarity: RarityLegendary, Tier: 3, BaseValue: 100,
			Primary:   Passive{Trigger: TriggerCombatStart, Effect: EffectStack{}},
			StackStat: StatDamagePercent, StackValue: 2, StackMax: 12, StackOnMax: StackOnMaxResetToOne},
	}
	for _, tpl := range templates {
		if err := reg.AddTemplate(tpl); err != nil {
			t.Fatalf("AddTemplate(%s): %v", tpl.Key, err)
		}
	}
	return reg
}

func TestPityGuaranteesUpgrade(t *testing.T) {
	reg := testRegistry(t)
	d := NewDropper(reg, rand.New(rand.NewSource(11)), 5)

	// Counter at threshold-1: the next drop increments to 5 and must roll
	// on the pity row, which contains no Common.
	for trial := 0; trial < 200; trial++ {
		pity := 4
		rarity := d.RollRarity(PoolNormal, &pity)
		if rarity == RarityCommon {
			t.Fatalf("trial %d: pity drop rolled Common", trial)
		}
		if pity != 0 {
			t.Fatalf("trial %d: pity not reset after upgrade, got %d", trial, pity)
		}
	}
}

func TestPityMonotonicity(t *testing.T) {
	reg := testRegistry(t)
	d := NewDropper(reg, rand.New(rand.NewSource(5)), 5)

	pity := 0
	prev := 0
	for i := 0; i < 100; i++ {
		rarity := d.RollRarity(PoolNormal, &pity)
		if rarity > RarityCommon {
			if pity != 0 {
				t.Fatalf("upgrade at drop %d did not reset pity (%d)", i, pity)
			}
			prev = 0
			continue
		}
		if pity != prev+1 {
			t.Fatalf("drop %d: counter jumped %d -> %d", i, prev, pity)
		}
		prev = pity
	}
}

func TestElitePityNeverRollsUncommonAtThreshold(t *testing.T) {
	reg := testRegistry(t)
	d := NewDropper(reg, rand.New(rand.NewSource(17)), 5)

	for trial := 0; trial < 200; trial++ {
		pity := 4
		rarity := d.RollRarity(PoolElite, &pity)
		if rarity < RarityRare {
			t.Fatalf("trial %d: elite pity drop rolled %v", trial, rarity)
		}
		if pity != 0 {
			t.Fatalf("trial %d: elite pity not reset", trial)
		}
	}
}

func TestAffixDistinctnessAndRange(t *testing.T) {
	reg := testRegistry(t)
	d := NewDropper(reg, rand.New(rand.NewSource(23)), 5)

	for trial := 0; trial < 100; trial++ {
		affixes := d.RollAffixes(RarityRare, 3)
		if len(affixes) != 3 {
			t.Fatalf("trial %d: rolled %d affixes, want 3", trial, len(affixes))
		}
		seen := map[string]bool{}
		for _, a := range affixes {
			if seen[a.StatKey] {
				t.Fatalf("trial %d: duplicate stat key %s", trial, a.StatKey)
			}
			seen[a.StatKey] = true
			tpl, _ := reg.Affix(a.StatKey)
			if a.Value < tpl.MinValue || a.Value > tpl.MaxValue {
				t.Fatalf("trial %d: %s value %d outside [%d,%d]",
					trial, a.StatKey, a.Value, tpl.MinValue, tpl.MaxValue)
			}
		}
	}
}

func TestAffixCountClamp(t *testing.T) {
	reg := testRegistry(t)
	d := NewDropper(reg, rand.New(rand.NewSource(2)), 5)

	if got := len(d.RollAffixes(RarityCommon, 0)); got != 1 {
		t.Fatalf("tier 0 rolled %d affixes, want 1", got)
	}
	if got := len(d.RollAffixes(RarityCommon, 7)); got != MaxAffixes {
		t.Fatalf("tier 7 rolled %d affixes, want %d", got, MaxAffixes)
	}
}

func TestGenerateTierTwoRare(t *testing.T) {
	reg := testRegistry(t)
	d := NewDropper(reg, rand.New(rand.NewSource(31)), 5)

	// Force a rare by key to pin the template, tier 2 => 2 affixes.
	inst, err := d.GenerateByKey("stack_trace", 2)
	if err != nil {
		t.Fatalf("GenerateByKey: %v", err)
	}
	if len(inst.Affixes) != 2 {
		t.Fatalf("affix count = %d, want 2", len(inst.Affixes))
	}
	tpl, _ := reg.Template("stack_trace")
	want := tpl.BaseValue + tpl.BaseValue/10*2
	if inst.SellValue != want {
		t.Fatalf("sell value = %d, want %d", inst.SellValue, want)
	}
}

func TestSellValueFormula(t *testing.T) {
	reg := testRegistry(t)
	d := NewDropper(reg, rand.New(rand.NewSource(41)), 5)

	for trial := 0; trial < 50; trial++ {
		pity := 0
		inst, err := d.Generate(PoolNormal, &pity, 1+trial%3, nil)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		tpl, _ := reg.Template(inst.TemplateKey)
		want := tpl.BaseValue + len(inst.Affixes)*tpl.BaseValue/10
		if inst.SellValue != want {
			t.Fatalf("sell value = %d, want %d", inst.SellValue, want)
		}
	}
}

func TestSelectTemplateExcludesEquipped(t *testing.T) {
	reg := testRegistry(t)
	d := NewDropper(reg, rand.New(rand.NewSource(3)), 5)

	equipped := map[string]bool{"loaded_dice": true}
	for trial := 0; trial < 50; trial++ {
		tpl, err := d.SelectTemplate(RarityCommon, equipped)
		if err != nil {
			t.Fatalf("SelectTemplate: %v", err)
		}
		if tpl.Key == "loaded_dice" {
			t.Fatalf("selected an equipped template")
		}
	}

	// Every template of the rarity equipped: generation fails cleanly.
	equipped["lucky_chip"] = true
	if _, err := d.SelectTemplate(RarityCommon, equipped); err == nil {
		t.Fatalf("expected empty-set error")
	}
}

func TestRerollPreservesIdentity(t *testing.T) {
	reg := testRegistry(t)
	d := NewDropper(reg, rand.New(rand.NewSource(13)), 5)

	inst, err := d.GenerateByKey("streak_counter", 3)
	if err != nil {
		t.Fatalf("GenerateByKey: %v", err)
	}
	before := inst
	if err := d.Reroll(&inst); err != nil {
		t.Fatalf("Reroll: %v", err)
	}
	if inst.TemplateKey != before.TemplateKey || inst.Rarity != before.Rarity || inst.Tier != before.Tier {
		t.Fatalf("reroll changed identity: %+v -> %+v", before, inst)
	}
	tpl, _ := reg.Template(inst.TemplateKey)
	want := tpl.BaseValue + len(inst.Affixes)*tpl.BaseValue/10
	if inst.SellValue != want {
		t.Fatalf("sell value after reroll = %d, want %d", inst.SellValue, want)
	}
}

func TestStackOnMaxBehaviors(t *testing.T) {
	reg := testRegistry(t)

	watch, _ := reg.Template("broken_watch")
	inst := Instance{TemplateKey: watch.Key}
	for i := 0; i < watch.StackMax; i++ {
		inst.AddStack(watch)
	}
	if inst.Stacks != watch.StackMax {
		t.Fatalf("stacks = %d, want %d", inst.Stacks, watch.StackMax)
	}
	inst.AddStack(watch)
	if inst.Stacks != 1 {
		t.Fatalf("reset_to_one gave %d stacks", inst.Stacks)
	}

	counter, _ := reg.Template("streak_counter")
	inst = Instance{TemplateKey: counter.Key}
	for i := 0; i < 20; i++ {
		inst.AddStack(counter)
	}
	if inst.Stacks != 20 || inst.HighestStreak != 20 {
		t.Fatalf("unbounded stacks = %d, highest = %d", inst.Stacks, inst.HighestStreak)
	}
	inst.ResetStacks()
	if inst.Stacks != 0 || inst.HighestStreak != 20 {
		t.Fatalf("reset should keep highest streak")
	}
}

func TestAggregateStats(t *testing.T) {
	reg := testRegistry(t)

	slots := make([]Slot, 6)
	slots[0] = Slot{Occupied: true, Inst: Instance{
		TemplateKey: "loaded_dice",
		Affixes:     []Affix{{StatDamageFlat, 3}, {StatCritChance, 5}},
	}}
	slots[2] = Slot{Occupied: true, Inst: Instance{
		TemplateKey: "streak_counter",
		Affixes:     []Affix{{StatDamagePercent, 10}},
		Stacks:      3,
	}}

	stats := Aggregate(slots, reg)
	if stats.DamageFlat != 3 {
		t.Fatalf("DamageFlat = %d", stats.DamageFlat)
	}
	if stats.DamagePercent != 10 {
		t.Fatalf("DamagePercent = %d", stats.DamagePercent)
	}
	// streak_counter feeds crit_chance 4 per stack.
	if stats.CritChance != 5+12 {
		t.Fatalf("CritChance = %d", stats.CritChance)
	}
}
