package blackjack

import (
	"fmt"
	"math/rand"
	"strings"
)

// Ability identifies a dealer/enemy ability.
type Ability byte

const (
	// Passives, always active.
	AbilityHouseAlwaysWins Ability = iota // dealer wins comparison ties
	AbilityCardCounter                    // dealer's hole card dealt face up
	AbilityLoadedDeck                     // dealer's hole card is always 10-value
	AbilityChipDrain                      // player loses chips each round
	AbilityPressure                       // sanity drains faster in combat

	// Actives, fired by triggers.
	AbilityDoubleOrNothing   // at 50% HP: forces double-or-lose
	AbilityReshuffleReality  // once per fight: rebuilds and reshuffles the deck
	AbilityHouseRules        // changes table rules mid-fight
	AbilityAllIn             // at 25% HP: both sides bet everything
	AbilityGlitch            // random: dealer bust becomes 21
)

var abilityNames = map[Ability]string{
	AbilityHouseAlwaysWins:  "HOUSE_ALWAYS_WINS",
	AbilityCardCounter:      "CARD_COUNTER",
	AbilityLoadedDeck:       "LOADED_DECK",
	AbilityChipDrain:        "CHIP_DRAIN",
	AbilityPressure:         "PRESSURE",
	AbilityDoubleOrNothing:  "DOUBLE_OR_NOTHING",
	AbilityReshuffleReality: "RESHUFFLE_REALITY",
	AbilityHouseRules:       "HOUSE_RULES",
	AbilityAllIn:            "ALL_IN",
	AbilityGlitch:           "GLITCH",
}

func (a Ability) String() string {
	if name, ok := abilityNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Ability(%d)", a)
}

// ParseAbility accepts the ability names used in enemy data files.
func ParseAbility(name string) (Ability, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for ability, abilityName := range abilityNames {
		if abilityName == upper {
			return ability, nil
		}
	}
	return 0, fmt.Errorf("invalid ability: %s", name)
}

// AbilityTrigger is when an active ability fires.
type AbilityTrigger byte

const (
	TriggerNone          AbilityTrigger = iota // passive, no trigger
	TriggerHPThreshold                         // fires at an HP percentage
	TriggerOncePerCombat                       // fires once per fight
	TriggerRandom                              // chance each round
	TriggerPlayerAction                        // fires on a player action
)

// AbilityData is one ability slot on an enemy, with its trigger state.
type AbilityData struct {
	ID           Ability
	Trigger      AbilityTrigger
	TriggerValue float64 // HP threshold or chance, in [0,1]
	HasTriggered bool
}

// Enemy is the combat opponent behind the dealer seat. Its chip threat
// is the damage the player takes on a lost round; the player's wins
// drain its HP.
type Enemy struct {
	name       string
	hp         int
	maxHP      int
	chipThreat int
	defeated   bool

	passives []AbilityData
	actives  []AbilityData
}

func NewEnemy(name string, maxHP, chipThreat int) *Enemy {
	return &Enemy{
		name:       name,
		hp:         maxHP,
		maxHP:      maxHP,
		chipThreat: chipThreat,
	}
}

func (e *Enemy) Name() string    { return e.name }
func (e *Enemy) HP() int         { return e.hp }
func (e *Enemy) MaxHP() int      { return e.maxHP }
func (e *Enemy) ChipThreat() int { return e.chipThreat }
func (e *Enemy) Defeated() bool  { return e.defeated }

// ScaleHP multiplies max HP (event consequences set up harder fights).
func (e *Enemy) ScaleHP(mult float64) {
	if mult <= 0 {
		return
	}
	e.maxHP = int(float64(e.maxHP) * mult)
	if e.maxHP < 1 {
		e.maxHP = 1
	}
	e.hp = e.maxHP
}

// AddPassive attaches an always-on ability.
func (e *Enemy) AddPassive(ability Ability) {
	e.passives = append(e.passives, AbilityData{ID: ability, Trigger: TriggerNone})
}

// AddActive attaches a triggered ability.
func (e *Enemy) AddActive(ability Ability, trigger AbilityTrigger, value float64) {
	e.actives = append(e.actives, AbilityData{ID: ability, Trigger: trigger, TriggerValue: value})
}

// HasPassive reports whether the passive is attached.
func (e *Enemy) HasPassive(ability Ability) bool {
	for _, a := range e.passives {
		if a.ID == ability {
			return true
		}
	}
	return false
}

func (e *Enemy) Passives() []AbilityData { return e.passives }
func (e *Enemy) Actives() []AbilityData  { return e.actives }

// TakeDamage reduces HP, clamping at zero and latching defeat.
func (e *Enemy) TakeDamage(amount int) {
	if amount <= 0 {
		return
	}
	e.hp -= amount
	if e.hp <= 0 {
		e.hp = 0
		e.defeated = true
	}
}

// Heal restores HP up to max. Defeat does not un-latch.
func (e *Enemy) Heal(amount int) {
	if amount <= 0 || e.defeated {
		return
	}
	e.hp += amount
	if e.hp > e.maxHP {
		e.hp = e.maxHP
	}
}

// HPPercent is current HP as a fraction of max in [0,1].
func (e *Enemy) HPPercent() float64 {
	if e.maxHP <= 0 {
		return 0
	}
	return float64(e.hp) / float64(e.maxHP)
}

// CheckTriggers updates has-triggered flags and returns the abilities
// that fire this round. HP-threshold and once-per-combat abilities latch;
// random abilities re-roll each call.
func (e *Enemy) CheckTriggers(rng *rand.Rand) []Ability {
	var fired []Ability
	for i := range e.actives {
		a := &e.actives[i]
		if a.HasTriggered && a.Trigger != TriggerRandom {
			continue
		}
		switch a.Trigger {
		case TriggerHPThreshold:
			if e.HPPercent() <= a.TriggerValue {
				a.HasTriggered = true
				fired = append(fired, a.ID)
			}
		case TriggerOncePerCombat:
			a.HasTriggered = true
			fired = append(fired, a.ID)
		case TriggerRandom:
			if rng.Float64() < a.TriggerValue {
				fired = append(fired, a.ID)
			}
		}
	}
	return fired
}
