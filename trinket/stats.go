package trinket

// Stats are the derived combat stats aggregated from equipped trinkets.
// DamagePercent, CritChance and CritBonus are whole percents.
type Stats struct {
	DamageFlat    int
	DamagePercent int
	CritChance    int
	CritBonus     int
}

func (s *Stats) add(statKey string, value int) {
	switch statKey {
	case StatDamageFlat:
		s.DamageFlat += value
	case StatDamagePercent:
		s.DamagePercent += value
	case StatCritChance:
		s.CritChance += value
	case StatCritBonus:
		s.CritBonus += value
	}
}

// Aggregate recomputes derived stats from zero over every occupied slot:
// rolled affixes plus stack bonuses (stack_value x current stacks) plus
// any DAMAGE_MULTIPLIER passives. Called when the owner's dirty flag is
// set and stats are next read.
func Aggregate(slots []Slot, reg *Registry) Stats {
	var out Stats
	for i := range slots {
		if !slots[i].Occupied {
			continue
		}
		inst := &slots[i].Inst
		for _, affix := range inst.Affixes {
			out.add(affix.StatKey, affix.Value)
		}

		tpl, ok := reg.Template(inst.TemplateKey)
		if !ok {
			continue
		}
		if tpl.StackStat != "" && inst.Stacks > 0 {
			out.add(tpl.StackStat, tpl.StackValue*inst.Stacks)
		}
		for _, passive := range passives(tpl) {
			if mult, ok := passive.Effect.(EffectDamageMultiplier); ok {
				out.DamagePercent += mult.Percent
			}
		}
	}
	return out
}

func passives(tpl *Template) []*Passive {
	out := []*Passive{&tpl.Primary}
	if tpl.Secondary != nil {
		out = append(out, tpl.Secondary)
	}
	return out
}
