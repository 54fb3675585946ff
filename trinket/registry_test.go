package trinket

import (
	"strings"
	"testing"

	"blackjack-lite/duf"
)

const trinketData = `
@cursed_skull
name: "Cursed Skull"
flavor: "It grins."
rarity: rare
tier: 2
base_value: 60
passive_trigger: ON_EQUIP
passive_effect_type: ADD_TAG_TO_CARDS
passive_tag: CURSED
passive_tag_count: 4
passive_trigger_2: CARD_DRAWN
passive_effect_type_2: BUFF_TAG_DAMAGE
passive_tag_2: CURSED
passive_tag_buff_value_2: 5

@tarnished_medal
name: "Tarnished Medal"
rarity: common
tier: 1
base_value: 20
passive_trigger: PLAYER_BUST
passive_effect_type: REFUND_CHIPS_PERCENT
passive_effect_value: 15
`

const affixData = `
@damage_flat
name: "Iron Grip"
description: "+{value} flat damage"
min_value: 1
max_value: 5
weight: 100
`

func TestLoadTemplatesFromDUF(t *testing.T) {
	root, err := duf.ParseString(trinketData)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	reg := NewRegistry()
	if err := reg.LoadTemplates(root); err != nil {
		t.Fatalf("load: %v", err)
	}

	skull, ok := reg.Template("cursed_skull")
	if !ok {
		t.Fatalf("cursed_skull missing")
	}
	if skull.Rarity != RarityRare || skull.Tier != 2 {
		t.Fatalf("skull identity: %v tier %d", skull.Rarity, skull.Tier)
	}
	if skull.Primary.Trigger != TriggerOnEquip {
		t.Fatalf("primary trigger = %q", skull.Primary.Trigger)
	}
	grant, ok := skull.Primary.Effect.(EffectAddTagToCards)
	if !ok || grant.Count != 4 {
		t.Fatalf("primary effect = %#v", skull.Primary.Effect)
	}
	if skull.Secondary == nil {
		t.Fatalf("secondary passive missing")
	}
	buff, ok := skull.Secondary.Effect.(EffectBuffTagDamage)
	if !ok || buff.Amount != 5 {
		t.Fatalf("secondary effect = %#v", skull.Secondary.Effect)
	}

	medal, _ := reg.Template("tarnished_medal")
	refund, ok := medal.Primary.Effect.(EffectRefundChipsPercent)
	if !ok || refund.Percent != 15 {
		t.Fatalf("medal effect = %#v", medal.Primary.Effect)
	}
}

func TestLoadAffixValidation(t *testing.T) {
	root, err := duf.ParseString(affixData)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	reg := NewRegistry()
	if err := reg.LoadAffixes(root); err != nil {
		t.Fatalf("load: %v", err)
	}
	iron, ok := reg.Affix("damage_flat")
	if !ok || iron.Weight != 100 {
		t.Fatalf("affix not loaded: %+v", iron)
	}

	bad := `
@damage_flat
name: "Backwards"
description: "+{value}"
min_value: 9
max_value: 3
weight: 10
`
	badRoot, _ := duf.ParseString(bad)
	err = NewRegistry().LoadAffixes(badRoot)
	if err == nil || !strings.Contains(err.Error(), "min_value") {
		t.Fatalf("expected min/max validation error, got %v", err)
	}

	zeroWeight := `
@crit_chance
name: "Weightless"
description: "+{value}"
min_value: 1
max_value: 2
weight: 0
`
	zwRoot, _ := duf.ParseString(zeroWeight)
	err = NewRegistry().LoadAffixes(zwRoot)
	if err == nil || !strings.Contains(err.Error(), "weight") {
		t.Fatalf("expected weight validation error, got %v", err)
	}

	missingPlaceholder := `
@crit_bonus
name: "No Placeholder"
description: "more crit"
min_value: 1
max_value: 2
weight: 5
`
	mpRoot, _ := duf.ParseString(missingPlaceholder)
	err = NewRegistry().LoadAffixes(mpRoot)
	if err == nil || !strings.Contains(err.Error(), "{value}") {
		t.Fatalf("expected placeholder validation error, got %v", err)
	}

	unknownTrigger := `
@weird
name: "Weird"
rarity: common
tier: 1
base_value: 10
passive_trigger: PLAYER_SNEEZE
passive_effect_type: NONE
`
	utRoot, _ := duf.ParseString(unknownTrigger)
	err = NewRegistry().LoadTemplates(utRoot)
	if err == nil || !strings.Contains(err.Error(), "passive_trigger") {
		t.Fatalf("expected trigger validation error, got %v", err)
	}
}
