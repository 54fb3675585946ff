package blackjack

import (
	"fmt"
	"strings"
)

// StatusKind enumerates status effects. They are outcome modifiers only:
// they adjust chip gains and losses after rounds resolve, never betting
// behavior.
type StatusKind byte

const (
	StatusChipDrain StatusKind = iota // lose N chips at round start
	StatusTilt                        // 2x chip loss on a lost round
	StatusGreed                       // 0.5x chip gain on a won round
	StatusRake                        // lose N% of damage dealt, per stack
)

var statusNames = map[StatusKind]string{
	StatusChipDrain: "CHIP_DRAIN",
	StatusTilt:      "TILT",
	StatusGreed:     "GREED",
	StatusRake:      "RAKE",
}

func (k StatusKind) String() string {
	if name, ok := statusNames[k]; ok {
		return name
	}
	return fmt.Sprintf("StatusKind(%d)", k)
}

// ParseStatusKind accepts the status keys used in trinket data files.
func ParseStatusKind(name string) (StatusKind, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for kind, kindName := range statusNames {
		if kindName == upper {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("invalid status effect: %s", name)
}

// DurationType selects how a status winds down: round-based effects tick
// at round end, stack-based effects consume a stack each time they fire.
type DurationType byte

const (
	DurationRounds DurationType = iota
	DurationStacks
)

// durationTypeFor maps each kind to its wind-down rule.
func durationTypeFor(kind StatusKind) DurationType {
	if kind == StatusRake {
		return DurationStacks
	}
	return DurationRounds
}

// defaultStatusValue is the magnitude used when the source omits one:
// chips per round for CHIP_DRAIN, extra loss percent for TILT, gain
// reduction percent for GREED, damage skim percent for RAKE.
func defaultStatusValue(kind StatusKind) int {
	switch kind {
	case StatusChipDrain:
		return 5
	case StatusTilt:
		return 100
	case StatusGreed:
		return 50
	case StatusRake:
		return 10
	}
	return 0
}

// StatusInstance is one active effect on a player.
type StatusInstance struct {
	Kind         StatusKind
	Value        int // chips per round, multiplier percent, rake percent
	Duration     int // rounds or stacks remaining
	DurationType DurationType
}

// StatusList manages the active effects on one player.
type StatusList struct {
	active []StatusInstance
}

// Apply adds the effect, or refreshes duration and value when the kind
// is already active.
func (l *StatusList) Apply(kind StatusKind, value, duration int) {
	for i := range l.active {
		if l.active[i].Kind == kind {
			l.active[i].Value = value
			l.active[i].Duration = duration
			return
		}
	}
	l.active = append(l.active, StatusInstance{
		Kind:         kind,
		Value:        value,
		Duration:     duration,
		DurationType: durationTypeFor(kind),
	})
}

// Remove clears the effect outright.
func (l *StatusList) Remove(kind StatusKind) {
	for i := range l.active {
		if l.active[i].Kind == kind {
			l.active = append(l.active[:i], l.active[i+1:]...)
			return
		}
	}
}

// Get returns the active instance for the kind.
func (l *StatusList) Get(kind StatusKind) (*StatusInstance, bool) {
	for i := range l.active {
		if l.active[i].Kind == kind {
			return &l.active[i], true
		}
	}
	return nil, false
}

func (l *StatusList) Has(kind StatusKind) bool {
	_, ok := l.Get(kind)
	return ok
}

// Active returns the instances in application order.
func (l *StatusList) Active() []StatusInstance {
	return l.active
}

func (l *StatusList) Clear() {
	l.active = nil
}

// TickRounds decrements round-based durations and drops expired effects.
// Called once at round end.
func (l *StatusList) TickRounds() {
	kept := l.active[:0]
	for _, inst := range l.active {
		if inst.DurationType == DurationRounds {
			inst.Duration--
		}
		if inst.Duration > 0 {
			kept = append(kept, inst)
		}
	}
	l.active = kept
}

// ConsumeStack burns one stack off a stack-based effect, dropping it at
// zero. Returns false when the effect is not active.
func (l *StatusList) ConsumeStack(kind StatusKind) bool {
	for i := range l.active {
		if l.active[i].Kind == kind {
			if l.active[i].DurationType != DurationStacks {
				return true
			}
			l.active[i].Duration--
			if l.active[i].Duration <= 0 {
				l.active = append(l.active[:i], l.active[i+1:]...)
			}
			return true
		}
	}
	return false
}
