package blackjack

import (
	"fmt"
	"strings"

	"blackjack-lite/duf"
)

// EnemyTemplate is an immutable enemy definition loaded from data
// files. Spawn stamps out a fresh Enemy with untriggered abilities.
type EnemyTemplate struct {
	Key        string
	Name       string
	MaxHP      int
	ChipThreat int
	Elite      bool

	Passives []Ability
	Actives  []AbilityData
}

// Spawn builds a fresh combat instance of the template.
func (t *EnemyTemplate) Spawn() *Enemy {
	e := NewEnemy(t.Name, t.MaxHP, t.ChipThreat)
	for _, p := range t.Passives {
		e.AddPassive(p)
	}
	for _, a := range t.Actives {
		e.AddActive(a.ID, a.Trigger, a.TriggerValue)
	}
	return e
}

// LoadEnemies reads an @enemies section: one table per enemy keyed by
// id, with hp, chip_threat, an optional elite flag and ability tables.
func LoadEnemies(root *duf.Value) (map[string]*EnemyTemplate, error) {
	section, ok := root.Get("enemies")
	if !ok {
		return nil, fmt.Errorf("missing @enemies section")
	}
	out := map[string]*EnemyTemplate{}
	for _, node := range section.Items("") {
		tpl, err := parseEnemy(node)
		if err != nil {
			return nil, fmt.Errorf("enemy %q: %w", node.Key, err)
		}
		if _, dup := out[tpl.Key]; dup {
			return nil, fmt.Errorf("duplicate enemy %q", tpl.Key)
		}
		out[tpl.Key] = tpl
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("@enemies section is empty")
	}
	return out, nil
}

func parseEnemy(node *duf.Value) (*EnemyTemplate, error) {
	if node.Kind != duf.KindTable {
		return nil, fmt.Errorf("expected a table")
	}
	name, err := node.StringField("name")
	if err != nil {
		return nil, err
	}
	hp, err := node.IntField("hp")
	if err != nil {
		return nil, err
	}
	if hp <= 0 {
		return nil, fmt.Errorf("hp must be > 0, got %d", hp)
	}
	threat, err := node.IntField("chip_threat")
	if err != nil {
		return nil, err
	}
	if threat < 0 {
		return nil, fmt.Errorf("chip_threat must be >= 0, got %d", threat)
	}

	tpl := &EnemyTemplate{
		Key:        node.Key,
		Name:       name,
		MaxHP:      hp,
		ChipThreat: threat,
		Elite:      strings.EqualFold(node.StringOr("elite", "false"), "true"),
	}

	for _, child := range node.Items("passive") {
		ability, err := ParseAbility(child.StringOr("ability", ""))
		if err != nil {
			return nil, err
		}
		tpl.Passives = append(tpl.Passives, ability)
	}
	for _, child := range node.Items("active") {
		data, err := parseActive(child)
		if err != nil {
			return nil, err
		}
		tpl.Actives = append(tpl.Actives, data)
	}
	return tpl, nil
}

func parseActive(node *duf.Value) (AbilityData, error) {
	ability, err := ParseAbility(node.StringOr("ability", ""))
	if err != nil {
		return AbilityData{}, err
	}
	trigger, err := parseAbilityTrigger(node.StringOr("trigger", ""))
	if err != nil {
		return AbilityData{}, err
	}
	// Trigger value is a percentage in data files; stored as a fraction.
	percent := node.IntOr("value", 0)
	if percent < 0 || percent > 100 {
		return AbilityData{}, fmt.Errorf("trigger value %d out of [0,100]", percent)
	}
	return AbilityData{
		ID:           ability,
		Trigger:      trigger,
		TriggerValue: float64(percent) / 100,
	}, nil
}

func parseAbilityTrigger(name string) (AbilityTrigger, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "HP_THRESHOLD":
		return TriggerHPThreshold, nil
	case "ONCE_PER_COMBAT":
		return TriggerOncePerCombat, nil
	case "RANDOM":
		return TriggerRandom, nil
	case "PLAYER_ACTION":
		return TriggerPlayerAction, nil
	}
	return TriggerNone, fmt.Errorf("invalid ability trigger: %s", name)
}
