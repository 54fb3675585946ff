package trinket

import (
	"fmt"
	"math/rand"
	"sort"
)

// Pool selects which rarity table a drop rolls on.
type Pool byte

const (
	PoolNormal Pool = iota
	PoolElite
)

func (p Pool) String() string {
	if p == PoolElite {
		return "elite"
	}
	return "normal"
}

type rarityWeight struct {
	rarity Rarity
	weight int
}

// Rarity tables. Pity convention is increment-then-check: the counter
// increments at the start of every drop, then the row is chosen by
// comparing the incremented value to the threshold. A counter sitting
// at threshold-1 therefore guarantees the upgrade on the very next drop.
var (
	normalBase = []rarityWeight{
		{RarityCommon, 50}, {RarityUncommon, 35}, {RarityRare, 12}, {RarityLegendary, 3},
	}
	normalPity = []rarityWeight{
		{RarityUncommon, 70}, {RarityRare, 25}, {RarityLegendary, 5},
	}
	eliteBase = []rarityWeight{
		{RarityUncommon, 40}, {RarityRare, 45}, {RarityLegendary, 15},
	}
	elitePity = []rarityWeight{
		{RarityRare, 75}, {RarityLegendary, 25},
	}
)

// Dropper generates trinket instances against a template/affix registry.
// Pity counters live with the caller (the game context) and are passed
// in by pointer so the game can snapshot and persist them.
type Dropper struct {
	reg *Registry
	rng *rand.Rand

	Threshold int // pity threshold, drops at or past it use the pity row
}

func NewDropper(reg *Registry, rng *rand.Rand, threshold int) *Dropper {
	if threshold <= 0 {
		threshold = 5
	}
	return &Dropper{reg: reg, rng: rng, Threshold: threshold}
}

// RollRarity performs one pity-backed rarity roll. The counter is
// incremented first; it resets to zero when the result is strictly above
// the pool's base rarity (Common for normal, Uncommon for elite).
func (d *Dropper) RollRarity(pool Pool, pity *int) Rarity {
	*pity++

	var table []rarityWeight
	switch {
	case pool == PoolElite && *pity >= d.Threshold:
		table = elitePity
	case pool == PoolElite:
		table = eliteBase
	case *pity >= d.Threshold:
		table = normalPity
	default:
		table = normalBase
	}

	rolled := weightedRarity(table, d.rng)

	base := RarityCommon
	if pool == PoolElite {
		base = RarityUncommon
	}
	if rolled > base {
		*pity = 0
	}
	return rolled
}

func weightedRarity(table []rarityWeight, rng *rand.Rand) Rarity {
	total := 0
	for _, rw := range table {
		total += rw.weight
	}
	roll := rng.Intn(total)
	for _, rw := range table {
		roll -= rw.weight
		if roll < 0 {
			return rw.rarity
		}
	}
	return table[len(table)-1].rarity
}

// SelectTemplate picks uniformly among templates of the rarity that the
// receiving player does not already hold. Returns an error when the
// filtered set is empty; the caller may retry lower or skip the drop.
func (d *Dropper) SelectTemplate(rarity Rarity, equipped map[string]bool) (*Template, error) {
	keys := make([]string, 0)
	for key, tpl := range d.reg.templates {
		if tpl.Rarity == rarity && !equipped[key] {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no unequipped %s templates available", rarity)
	}
	sort.Strings(keys)
	return d.reg.templates[keys[d.rng.Intn(len(keys))]], nil
}

// rarity scale applied to affix weights: 1.0 base, 1.1 rare, 1.2 legendary
func rarityScale(r Rarity) float64 {
	switch r {
	case RarityLegendary:
		return 1.2
	case RarityRare:
		return 1.1
	default:
		return 1.0
	}
}

// RollAffixes rolls clamp(tier,1,MaxAffixes) distinct affixes. Weights
// are each affix's weight times the rarity scale; values roll uniformly
// in [min,max] inclusive.
func (d *Dropper) RollAffixes(rarity Rarity, tier int) []Affix {
	count := tier
	if count < 1 {
		count = 1
	}
	if count > MaxAffixes {
		count = MaxAffixes
	}

	scale := rarityScale(rarity)
	taken := map[string]bool{}
	affixes := make([]Affix, 0, count)

	for len(affixes) < count {
		var candidates []*AffixTemplate
		totalWeight := 0.0
		for _, key := range d.reg.affixKeys {
			if taken[key] {
				continue
			}
			tpl := d.reg.affixes[key]
			candidates = append(candidates, tpl)
			totalWeight += float64(tpl.Weight) * scale
		}
		if len(candidates) == 0 {
			break
		}

		roll := d.rng.Float64() * totalWeight
		chosen := candidates[len(candidates)-1]
		for _, tpl := range candidates {
			roll -= float64(tpl.Weight) * scale
			if roll < 0 {
				chosen = tpl
				break
			}
		}

		value := chosen.MinValue + d.rng.Intn(chosen.MaxValue-chosen.MinValue+1)
		affixes = append(affixes, Affix{StatKey: chosen.StatKey, Value: value})
		taken[chosen.StatKey] = true
	}
	return affixes
}

// Generate performs a full drop: pity-backed rarity roll, template
// selection, affix roll, sell value.
func (d *Dropper) Generate(pool Pool, pity *int, tier int, equipped map[string]bool) (Instance, error) {
	rarity := d.RollRarity(pool, pity)
	tpl, err := d.SelectTemplate(rarity, equipped)
	if err != nil {
		return Instance{}, err
	}
	affixes := d.RollAffixes(rarity, tier)
	return Instance{
		TemplateKey: tpl.Key,
		Rarity:      rarity,
		Tier:        tier,
		Affixes:     affixes,
		SellValue:   SellValueFor(tpl.BaseValue, len(affixes)),
	}, nil
}

// GenerateByKey builds an instance of a specific template, bypassing the
// rarity roll (event rewards, terminal grants).
func (d *Dropper) GenerateByKey(key string, tier int) (Instance, error) {
	tpl, ok := d.reg.Template(key)
	if !ok {
		return Instance{}, fmt.Errorf("unknown trinket template %q", key)
	}
	affixes := d.RollAffixes(tpl.Rarity, tier)
	return Instance{
		TemplateKey: tpl.Key,
		Rarity:      tpl.Rarity,
		Tier:        tier,
		Affixes:     affixes,
		SellValue:   SellValueFor(tpl.BaseValue, len(affixes)),
	}, nil
}

// Reroll regenerates an instance's affixes in place, preserving template
// key, rarity and tier, and recomputes the sell value.
func (d *Dropper) Reroll(inst *Instance) error {
	tpl, ok := d.reg.Template(inst.TemplateKey)
	if !ok {
		return fmt.Errorf("unknown trinket template %q", inst.TemplateKey)
	}
	inst.Affixes = d.RollAffixes(inst.Rarity, inst.Tier)
	inst.SellValue = SellValueFor(tpl.BaseValue, len(inst.Affixes))
	return nil
}
