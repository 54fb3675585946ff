// Package trinket implements the equipable trinket system: immutable
// templates loaded from DUF files, instances generated with a rarity
// roll (pity-backed) and rolled affixes, and the dirty-flag aggregation
// of equipped instances into derived combat stats.
package trinket

import (
	"fmt"
	"strings"

	"blackjack-lite/card"
)

type Rarity byte

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityLegendary
)

var rarityNames = map[Rarity]string{
	RarityCommon:    "common",
	RarityUncommon:  "uncommon",
	RarityRare:      "rare",
	RarityLegendary: "legendary",
}

func (r Rarity) String() string {
	if name, ok := rarityNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rarity(%d)", r)
}

func ParseRarity(name string) (Rarity, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for rarity, rarityName := range rarityNames {
		if rarityName == lower {
			return rarity, nil
		}
	}
	return 0, fmt.Errorf("invalid rarity: %s", name)
}

// Trigger names a game event a passive listens for. The engine matches
// them against its event names; OnEquip is the synthetic equip trigger.
const (
	TriggerOnEquip     = "ON_EQUIP"
	TriggerCombatStart = "COMBAT_START"
	TriggerCardDrawn   = "CARD_DRAWN"
	TriggerWin         = "PLAYER_WIN"
	TriggerLoss        = "PLAYER_LOSS"
	TriggerBust        = "PLAYER_BUST"
	TriggerBlackjack   = "PLAYER_BLACKJACK"
	TriggerPush        = "PLAYER_PUSH"
)

var validTriggers = map[string]bool{
	TriggerOnEquip:     true,
	TriggerCombatStart: true,
	TriggerCardDrawn:   true,
	TriggerWin:         true,
	TriggerLoss:        true,
	TriggerBust:        true,
	TriggerBlackjack:   true,
	TriggerPush:        true,
}

// Effect is the passive effect sum type. Each kind carries exactly the
// payload it needs; the engine switches over the concrete types.
type Effect interface {
	effectName() string
}

type EffectNone struct{}

// EffectAddChips credits flat chips.
type EffectAddChips struct{ Amount int }

// EffectAddChipsPercent credits a percentage of the current bet.
type EffectAddChipsPercent struct{ Percent int }

// EffectLoseChips deducts flat chips, clamped at zero.
type EffectLoseChips struct{ Amount int }

// EffectRefundChipsPercent refunds a percentage of the lost bet.
type EffectRefundChipsPercent struct{ Percent int }

// EffectApplyStatus applies a status effect by key.
type EffectApplyStatus struct {
	StatusKey string
	Stacks    int
}

// EffectClearStatus removes a status effect by key.
type EffectClearStatus struct{ StatusKey string }

// EffectStack increments the instance's stack counter.
type EffectStack struct{}

// EffectStackReset zeroes the instance's stack counter.
type EffectStackReset struct{}

// EffectAddDamageFlat deals immediate damage to the combat enemy.
type EffectAddDamageFlat struct{ Damage int }

// EffectDamageMultiplier contributes damage_percent via stat aggregation.
type EffectDamageMultiplier struct{ Percent int }

// EffectPushDamagePercent deals a fraction of bet damage on pushes.
type EffectPushDamagePercent struct{ Percent int }

// EffectAddTagToCards tags N random untagged cards on trigger.
type EffectAddTagToCards struct {
	Tag   card.Tag
	Count int
}

// EffectBuffTagDamage adds flat damage per tagged card held in hand.
type EffectBuffTagDamage struct {
	Tag    card.Tag
	Amount int
}

// EffectBlockDebuff grants debuff blocks for the current combat.
type EffectBlockDebuff struct{ Count int }

// EffectPunishHeal grants heal-punish charges for the current combat.
type EffectPunishHeal struct{ Count int }

// EffectChipCostFlatDamage pays chips to deal flat damage.
type EffectChipCostFlatDamage struct {
	Cost   int
	Damage int
}

func (EffectNone) effectName() string               { return "NONE" }
func (EffectAddChips) effectName() string           { return "ADD_CHIPS" }
func (EffectAddChipsPercent) effectName() string    { return "ADD_CHIPS_PERCENT" }
func (EffectLoseChips) effectName() string          { return "LOSE_CHIPS" }
func (EffectRefundChipsPercent) effectName() string { return "REFUND_CHIPS_PERCENT" }
func (EffectApplyStatus) effectName() string        { return "APPLY_STATUS" }
func (EffectClearStatus) effectName() string        { return "CLEAR_STATUS" }
func (EffectStack) effectName() string              { return "TRINKET_STACK" }
func (EffectStackReset) effectName() string         { return "TRINKET_STACK_RESET" }
func (EffectAddDamageFlat) effectName() string      { return "ADD_DAMAGE_FLAT" }
func (EffectDamageMultiplier) effectName() string   { return "DAMAGE_MULTIPLIER" }
func (EffectPushDamagePercent) effectName() string  { return "PUSH_DAMAGE_PERCENT" }
func (EffectAddTagToCards) effectName() string      { return "ADD_TAG_TO_CARDS" }
func (EffectBuffTagDamage) effectName() string      { return "BUFF_TAG_DAMAGE" }
func (EffectBlockDebuff) effectName() string        { return "BLOCK_DEBUFF" }
func (EffectPunishHeal) effectName() string         { return "PUNISH_HEAL" }
func (EffectChipCostFlatDamage) effectName() string { return "CHIP_COST_FLAT_DAMAGE" }

// EffectName exposes the data-file name of an effect kind.
func EffectName(e Effect) string {
	if e == nil {
		return "NONE"
	}
	return e.effectName()
}

// Passive binds a trigger to an effect. BetGTE, when non-zero, gates
// the passive on the player's current bet.
type Passive struct {
	Trigger string
	BetGTE  int
	Effect  Effect
}

// StackOnMax behaviors for stacking trinkets.
const (
	StackOnMaxCap        = "cap"
	StackOnMaxResetToOne = "reset_to_one"
)

// Template is an immutable trinket definition loaded from data files.
type Template struct {
	Key       string
	Name      string
	Flavor    string
	Rarity    Rarity
	Tier      int
	BaseValue int

	Primary   Passive
	Secondary *Passive

	// Stacking config, meaningful when a passive uses EffectStack.
	StackStat  string // derived stat fed per stack ("damage_percent", ...)
	StackValue int    // contribution per stack
	StackMax   int    // 0 => unbounded
	StackOnMax string // StackOnMaxCap or StackOnMaxResetToOne
}
