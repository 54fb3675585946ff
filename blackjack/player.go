package blackjack

import (
	"blackjack-lite/trinket"
)

// MaxTrinketSlots is the fixed slot array size; Config.TrinketSlots may
// use fewer.
const MaxTrinketSlots = 6

// Player is one seat at the table. The dealer occupies seat 0 and skips
// betting. All mutation goes through the owning Game.
type Player struct {
	id     string
	seat   int
	class  Class
	dealer bool
	ai     bool

	hp        int
	maxHP     int
	chips     int
	sanity    int
	maxSanity int

	bet   int
	state PlayerState
	hand  Hand

	statuses StatusList

	slots        [MaxTrinketSlots]trinket.Slot
	classTrinket trinket.Slot

	// Derived combat stats, valid only while statsDirty is clear.
	stats      trinket.Stats
	statsDirty bool

	// Outcome modifier aggregates, recomputed with the stats.
	winBonusPercent   int
	lossRefundPercent int
	bustRefundPercent int
	pushDamagePercent int
	flatChipsOnWin    int

	// Combat-scoped charges granted by trinket passives.
	debuffBlockCharges int
	healPunishCharges  int

	// Round-scoped flags and settlement context.
	stood            bool
	waitingForDealer bool
	roundWon         int
	roundLost        int
}

func NewPlayer(id string, seat int, class Class, chips, maxSanity int) *Player {
	return &Player{
		id:         id,
		seat:       seat,
		class:      class,
		hp:         100,
		maxHP:      100,
		chips:      chips,
		sanity:     maxSanity,
		maxSanity:  maxSanity,
		state:      PlayerStateWaiting,
		statsDirty: true,
	}
}

func newDealer(seat int) *Player {
	p := NewPlayer("dealer", seat, ClassDealer, 0, 100)
	p.dealer = true
	return p
}

// SetAI marks the seat as engine-driven; AI seats bet and act on the
// tick instead of waiting for commands.
func (p *Player) SetAI(ai bool) { p.ai = ai }

func (p *Player) IsAI() bool { return p.ai }

func (p *Player) ID() string         { return p.id }
func (p *Player) Seat() int          { return p.seat }
func (p *Player) Class() Class       { return p.class }
func (p *Player) IsDealer() bool     { return p.dealer }
func (p *Player) Chips() int         { return p.chips }
func (p *Player) HP() int            { return p.hp }
func (p *Player) MaxHP() int         { return p.maxHP }
func (p *Player) Sanity() int        { return p.sanity }
func (p *Player) MaxSanity() int     { return p.maxSanity }
func (p *Player) Bet() int           { return p.bet }
func (p *Player) State() PlayerState { return p.state }
func (p *Player) Hand() *Hand        { return &p.hand }

func (p *Player) Statuses() *StatusList { return &p.statuses }

// PlaceBet moves chips into the current bet. Fails without mutation when
// the player cannot afford the amount.
func (p *Player) PlaceBet(amount int) error {
	if amount <= 0 {
		return ErrInvalidState("bet must be positive")
	}
	if amount > p.chips {
		return ErrNotEnoughChips
	}
	p.chips -= amount
	p.bet = amount
	return nil
}

// raiseBet adds to an existing bet (double down).
func (p *Player) raiseBet(amount int) error {
	if amount > p.chips {
		return ErrNotEnoughChips
	}
	p.chips -= amount
	p.bet += amount
	return nil
}

// WinBet credits bet * multiplier and clears the bet.
func (p *Player) WinBet(multiplier float64) int {
	won := int(float64(p.bet) * multiplier)
	p.chips += won
	p.bet = 0
	return won
}

// LoseBet forfeits the bet.
func (p *Player) LoseBet() int {
	lost := p.bet
	p.bet = 0
	return lost
}

// ReturnBet pushes the bet back (tie).
func (p *Player) ReturnBet() {
	p.chips += p.bet
	p.bet = 0
}

// AddChips credits chips, clamping at zero for negative deltas.
func (p *Player) AddChips(delta int) {
	p.chips += delta
	if p.chips < 0 {
		p.chips = 0
	}
}

// AdjustSanity applies a delta clamped to [0, maxSanity].
func (p *Player) AdjustSanity(delta int) {
	p.sanity += delta
	if p.sanity < 0 {
		p.sanity = 0
	}
	if p.sanity > p.maxSanity {
		p.sanity = p.maxSanity
	}
}

// AdjustHP applies a delta clamped to [0, maxHP].
func (p *Player) AdjustHP(delta int) {
	p.hp += delta
	if p.hp < 0 {
		p.hp = 0
	}
	if p.hp > p.maxHP {
		p.hp = p.maxHP
	}
}

// SanityTier derives the current tier from the sanity percentage.
func (p *Player) SanityTier() SanityTier {
	return sanityTierFor(p.sanity, p.maxSanity)
}

// Slots exposes the trinket slot array for read access and iteration.
func (p *Player) Slots() *[MaxTrinketSlots]trinket.Slot {
	return &p.slots
}

// Equip copies the instance into the first empty slot and returns its
// index, or -1 when every slot is occupied.
func (p *Player) Equip(inst trinket.Instance, maxSlots int) int {
	if maxSlots <= 0 || maxSlots > MaxTrinketSlots {
		maxSlots = MaxTrinketSlots
	}
	for i := 0; i < maxSlots; i++ {
		if !p.slots[i].Occupied {
			p.slots[i] = trinket.Slot{Occupied: true, Inst: inst}
			p.statsDirty = true
			return i
		}
	}
	return -1
}

// Unequip clears the slot and returns the removed instance.
func (p *Player) Unequip(slot int) (trinket.Instance, bool) {
	if slot < 0 || slot >= MaxTrinketSlots || !p.slots[slot].Occupied {
		return trinket.Instance{}, false
	}
	inst := p.slots[slot].Inst
	p.slots[slot] = trinket.Slot{}
	p.statsDirty = true
	return inst, true
}

// HasTrinket reports whether any slot holds the template key.
func (p *Player) HasTrinket(key string) bool {
	for i := range p.slots {
		if p.slots[i].Occupied && p.slots[i].Inst.TemplateKey == key {
			return true
		}
	}
	return false
}

// EquippedKeys returns the set of equipped template keys.
func (p *Player) EquippedKeys() map[string]bool {
	out := map[string]bool{}
	for i := range p.slots {
		if p.slots[i].Occupied {
			out[p.slots[i].Inst.TemplateKey] = true
		}
	}
	return out
}

// MarkStatsDirty invalidates the derived stat cache. Equip, unequip,
// card tag changes and stack changes all route through here.
func (p *Player) MarkStatsDirty() {
	p.statsDirty = true
}

// CombatStats returns the derived stats, recomputing from zero when the
// dirty flag is set.
func (p *Player) CombatStats(reg *trinket.Registry) trinket.Stats {
	if p.statsDirty {
		p.recomputeStats(reg)
	}
	return p.stats
}

func (p *Player) recomputeStats(reg *trinket.Registry) {
	p.stats = trinket.Aggregate(p.slots[:], reg)

	p.winBonusPercent = 0
	p.lossRefundPercent = 0
	p.bustRefundPercent = 0
	p.pushDamagePercent = 0
	p.flatChipsOnWin = 0
	for i := range p.slots {
		if !p.slots[i].Occupied {
			continue
		}
		tpl, ok := reg.Template(p.slots[i].Inst.TemplateKey)
		if !ok {
			continue
		}
		p.accumulateOutcomeMods(&tpl.Primary)
		if tpl.Secondary != nil {
			p.accumulateOutcomeMods(tpl.Secondary)
		}
	}
	p.statsDirty = false
}

// accumulateOutcomeMods folds win/loss/push outcome passives into the
// central aggregates that settlement applies once per round.
func (p *Player) accumulateOutcomeMods(passive *trinket.Passive) {
	switch eff := passive.Effect.(type) {
	case trinket.EffectAddChipsPercent:
		if passive.Trigger == trinket.TriggerWin {
			p.winBonusPercent += eff.Percent
		}
	case trinket.EffectAddChips:
		if passive.Trigger == trinket.TriggerWin {
			p.flatChipsOnWin += eff.Amount
		}
	case trinket.EffectRefundChipsPercent:
		switch passive.Trigger {
		case trinket.TriggerLoss:
			p.lossRefundPercent += eff.Percent
		case trinket.TriggerBust:
			p.bustRefundPercent += eff.Percent
		}
	case trinket.EffectPushDamagePercent:
		if passive.Trigger == trinket.TriggerPush {
			p.pushDamagePercent += eff.Percent
		}
	}
}

// resetForRound clears per-round flags and state before betting.
func (p *Player) resetForRound() {
	p.bet = 0
	p.stood = false
	p.waitingForDealer = false
	p.roundWon = 0
	p.roundLost = 0
	if p.dealer {
		p.state = PlayerStateWaiting
	} else {
		p.state = PlayerStateBetting
	}
}
