package trinket

import (
	"fmt"
	"sort"
	"strings"

	"blackjack-lite/card"
	"blackjack-lite/duf"
)

// Registry holds the immutable template and affix databases for a run.
// Everything is validated at load; lookups never fail at play time.
type Registry struct {
	templates map[string]*Template
	affixes   map[string]*AffixTemplate
	affixKeys []string // sorted, for deterministic iteration
}

func NewRegistry() *Registry {
	return &Registry{
		templates: map[string]*Template{},
		affixes:   map[string]*AffixTemplate{},
	}
}

func (r *Registry) Template(key string) (*Template, bool) {
	tpl, ok := r.templates[key]
	return tpl, ok
}

func (r *Registry) Affix(statKey string) (*AffixTemplate, bool) {
	tpl, ok := r.affixes[statKey]
	return tpl, ok
}

func (r *Registry) TemplateKeys() []string {
	keys := make([]string, 0, len(r.templates))
	for key := range r.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) AffixKeys() []string {
	return r.affixKeys
}

// AddTemplate registers a template directly (tests, terminal fixtures).
func (r *Registry) AddTemplate(tpl *Template) error {
	if tpl.Key == "" {
		return fmt.Errorf("template with empty key")
	}
	if _, dup := r.templates[tpl.Key]; dup {
		return fmt.Errorf("duplicate trinket template %q", tpl.Key)
	}
	r.templates[tpl.Key] = tpl
	return nil
}

// AddAffix registers an affix template after validating it.
func (r *Registry) AddAffix(tpl *AffixTemplate) error {
	if err := tpl.validate(); err != nil {
		return err
	}
	if _, dup := r.affixes[tpl.StatKey]; dup {
		return fmt.Errorf("duplicate affix %q", tpl.StatKey)
	}
	r.affixes[tpl.StatKey] = tpl
	r.affixKeys = append(r.affixKeys, tpl.StatKey)
	sort.Strings(r.affixKeys)
	return nil
}

// LoadAffixes parses and validates every affix in a DUF tree. Any bad
// entry fails the whole load; startup aborts on error.
func (r *Registry) LoadAffixes(root *duf.Value) error {
	for _, node := range root.Items("") {
		tpl, err := parseAffix(node)
		if err != nil {
			return fmt.Errorf("affix @%s: %w", node.Key, err)
		}
		if err := r.AddAffix(tpl); err != nil {
			return err
		}
	}
	return nil
}

func parseAffix(node *duf.Value) (*AffixTemplate, error) {
	name, err := node.StringField("name")
	if err != nil {
		return nil, err
	}
	desc, err := node.StringField("description")
	if err != nil {
		return nil, err
	}
	if !strings.Contains(desc, "{value}") {
		return nil, fmt.Errorf("description must contain the {value} placeholder")
	}
	min, err := node.IntField("min_value")
	if err != nil {
		return nil, err
	}
	max, err := node.IntField("max_value")
	if err != nil {
		return nil, err
	}
	weight, err := node.IntField("weight")
	if err != nil {
		return nil, err
	}
	return &AffixTemplate{
		StatKey:     node.Key,
		Name:        name,
		Description: desc,
		MinValue:    min,
		MaxValue:    max,
		Weight:      weight,
	}, nil
}

// LoadTemplates parses and validates every trinket in a DUF tree.
func (r *Registry) LoadTemplates(root *duf.Value) error {
	for _, node := range root.Items("") {
		tpl, err := parseTemplate(node)
		if err != nil {
			return fmt.Errorf("trinket @%s: %w", node.Key, err)
		}
		if err := r.AddTemplate(tpl); err != nil {
			return err
		}
	}
	return nil
}

func parseTemplate(node *duf.Value) (*Template, error) {
	name, err := node.StringField("name")
	if err != nil {
		return nil, err
	}
	rarityStr, err := node.StringField("rarity")
	if err != nil {
		return nil, err
	}
	rarity, err := ParseRarity(rarityStr)
	if err != nil {
		return nil, err
	}
	tier, err := node.IntField("tier")
	if err != nil {
		return nil, err
	}
	if tier < 1 || tier > 3 {
		return nil, fmt.Errorf("tier must be in [1,3], got %d", tier)
	}
	baseValue, err := node.IntField("base_value")
	if err != nil {
		return nil, err
	}
	if baseValue < 0 {
		return nil, fmt.Errorf("base_value must be >= 0")
	}

	primary, err := parsePassive(node, "")
	if err != nil {
		return nil, err
	}

	tpl := &Template{
		Key:        node.Key,
		Name:       name,
		Flavor:     node.StringOr("flavor", ""),
		Rarity:     rarity,
		Tier:       tier,
		BaseValue:  baseValue,
		Primary:    *primary,
		StackStat:  node.StringOr("passive_stack_stat", ""),
		StackValue: node.IntOr("passive_stack_value", 0),
		StackMax:   node.IntOr("passive_stack_max", 0),
		StackOnMax: node.StringOr("passive_stack_on_max", StackOnMaxCap),
	}

	if _, hasSecond := node.Get("passive_trigger_2"); hasSecond {
		secondary, err := parsePassive(node, "_2")
		if err != nil {
			return nil, err
		}
		tpl.Secondary = secondary
	}

	if tpl.StackOnMax != StackOnMaxCap && tpl.StackOnMax != StackOnMaxResetToOne {
		return nil, fmt.Errorf("invalid passive_stack_on_max %q", tpl.StackOnMax)
	}
	if tpl.StackStat != "" && !validStatKeys[tpl.StackStat] {
		return nil, fmt.Errorf("unknown passive_stack_stat %q", tpl.StackStat)
	}
	return tpl, nil
}

// parsePassive reads the passive_* keys with an optional suffix ("_2").
func parsePassive(node *duf.Value, suffix string) (*Passive, error) {
	trigger, err := node.StringField("passive_trigger" + suffix)
	if err != nil {
		return nil, err
	}
	trigger = strings.ToUpper(strings.TrimSpace(trigger))
	if !validTriggers[trigger] {
		return nil, fmt.Errorf("unknown passive_trigger %q", trigger)
	}

	effectType := strings.ToUpper(node.StringOr("passive_effect_type"+suffix, "NONE"))
	value := node.IntOr("passive_effect_value"+suffix, 0)

	effect, err := buildEffect(node, suffix, effectType, value)
	if err != nil {
		return nil, err
	}

	return &Passive{
		Trigger: trigger,
		BetGTE:  node.IntOr("passive_condition_bet_gte"+suffix, 0),
		Effect:  effect,
	}, nil
}

func buildEffect(node *duf.Value, suffix, effectType string, value int) (Effect, error) {
	switch effectType {
	case "NONE":
		return EffectNone{}, nil
	case "ADD_CHIPS":
		return EffectAddChips{Amount: value}, nil
	case "ADD_CHIPS_PERCENT":
		return EffectAddChipsPercent{Percent: value}, nil
	case "LOSE_CHIPS":
		return EffectLoseChips{Amount: value}, nil
	case "REFUND_CHIPS_PERCENT":
		return EffectRefundChipsPercent{Percent: value}, nil
	case "APPLY_STATUS":
		key, err := node.StringField("passive_status_key" + suffix)
		if err != nil {
			return nil, err
		}
		return EffectApplyStatus{
			StatusKey: key,
			Stacks:    node.IntOr("passive_status_stacks"+suffix, 1),
		}, nil
	case "CLEAR_STATUS":
		key, err := node.StringField("passive_status_key" + suffix)
		if err != nil {
			return nil, err
		}
		return EffectClearStatus{StatusKey: key}, nil
	case "TRINKET_STACK":
		return EffectStack{}, nil
	case "TRINKET_STACK_RESET":
		return EffectStackReset{}, nil
	case "ADD_DAMAGE_FLAT":
		return EffectAddDamageFlat{Damage: value}, nil
	case "DAMAGE_MULTIPLIER":
		return EffectDamageMultiplier{Percent: value}, nil
	case "PUSH_DAMAGE_PERCENT":
		return EffectPushDamagePercent{Percent: value}, nil
	case "ADD_TAG_TO_CARDS":
		tag, err := parseTagField(node, suffix)
		if err != nil {
			return nil, err
		}
		return EffectAddTagToCards{
			Tag:   tag,
			Count: node.IntOr("passive_tag_count"+suffix, 1),
		}, nil
	case "BUFF_TAG_DAMAGE":
		tag, err := parseTagField(node, suffix)
		if err != nil {
			return nil, err
		}
		return EffectBuffTagDamage{
			Tag:    tag,
			Amount: node.IntOr("passive_tag_buff_value"+suffix, value),
		}, nil
	case "BLOCK_DEBUFF":
		return EffectBlockDebuff{Count: value}, nil
	case "PUNISH_HEAL":
		return EffectPunishHeal{Count: value}, nil
	case "CHIP_COST_FLAT_DAMAGE":
		return EffectChipCostFlatDamage{
			Cost:   node.IntOr("passive_chip_cost"+suffix, 0),
			Damage: value,
		}, nil
	default:
		return nil, fmt.Errorf("unknown passive_effect_type %q", effectType)
	}
}

func parseTagField(node *duf.Value, suffix string) (card.Tag, error) {
	raw, err := node.StringField("passive_tag" + suffix)
	if err != nil {
		return 0, err
	}
	return card.ParseTag(raw)
}
