package trinket

import "fmt"

// Derived stat keys an affix may feed. Kept in one place so the loader
// and the aggregation routine agree.
const (
	StatDamageFlat    = "damage_flat"
	StatDamagePercent = "damage_percent"
	StatCritChance    = "crit_chance"
	StatCritBonus     = "crit_bonus"
)

var validStatKeys = map[string]bool{
	StatDamageFlat:    true,
	StatDamagePercent: true,
	StatCritChance:    true,
	StatCritBonus:     true,
}

// AffixTemplate is an immutable affix definition. Description carries a
// literal {value} placeholder substituted by the renderer, never here.
type AffixTemplate struct {
	StatKey     string
	Name        string
	Description string
	MinValue    int
	MaxValue    int
	Weight      int
}

func (a AffixTemplate) validate() error {
	if a.StatKey == "" {
		return fmt.Errorf("affix with empty stat_key")
	}
	if !validStatKeys[a.StatKey] {
		return fmt.Errorf("affix %q: unknown stat key", a.StatKey)
	}
	if a.Name == "" {
		return fmt.Errorf("affix %q: missing name", a.StatKey)
	}
	if a.MinValue >= a.MaxValue {
		return fmt.Errorf("affix %q: min_value %d must be < max_value %d", a.StatKey, a.MinValue, a.MaxValue)
	}
	if a.Weight <= 0 {
		return fmt.Errorf("affix %q: weight must be > 0, got %d", a.StatKey, a.Weight)
	}
	return nil
}

// Affix is a rolled instance of an AffixTemplate.
type Affix struct {
	StatKey string
	Value   int
}
