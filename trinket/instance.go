package trinket

// MaxAffixes bounds rolled affixes per instance (affix count = act tier,
// clamped to [1,MaxAffixes]).
const MaxAffixes = 3

// Instance is a generated trinket. Instances are value types: they are
// copied into a slot on equip and addressed by (player, slot index),
// never by pointer.
type Instance struct {
	TemplateKey string
	Rarity      Rarity
	Tier        int
	Affixes     []Affix
	SellValue   int

	// Runtime counters, reset per the owning template's rules.
	Stacks        int
	DamageDealt   int
	BonusChips    int
	RefundedChips int
	HighestStreak int
	DebuffBlocks  int
	HealPunishes  int
}

// SellValueFor computes base_value + affixCount * base_value / 10.
func SellValueFor(baseValue, affixCount int) int {
	return baseValue + affixCount*baseValue/10
}

// AddStack bumps the stack counter honoring the template's max and
// on-max behavior. Returns the new stack count.
func (inst *Instance) AddStack(tpl *Template) int {
	if tpl.StackMax > 0 && inst.Stacks >= tpl.StackMax {
		if tpl.StackOnMax == StackOnMaxResetToOne {
			inst.Stacks = 1
		}
		// cap: stay at max
		return inst.Stacks
	}
	inst.Stacks++
	if tpl.StackMax == 0 && inst.Stacks > inst.HighestStreak {
		inst.HighestStreak = inst.Stacks
	}
	return inst.Stacks
}

// ResetStacks zeroes the stack counter.
func (inst *Instance) ResetStacks() {
	inst.Stacks = 0
}

// Slot is one of the player's fixed trinket slots. The Occupied bit is
// authoritative; Inst is meaningful only while it is set.
type Slot struct {
	Occupied bool
	Inst     Instance
}
