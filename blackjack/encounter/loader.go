package encounter

import (
	"fmt"
	"strings"

	"blackjack-lite/card"
	"blackjack-lite/duf"
)

// LoadPool parses and validates every encounter in a DUF tree. Any bad
// entry fails the load; the run aborts at startup rather than surfacing
// broken events mid-game.
func LoadPool(root *duf.Value) (*Pool, error) {
	pool := NewPool()
	for _, node := range root.Items("") {
		enc, weight, err := parseEncounter(node)
		if err != nil {
			return nil, fmt.Errorf("event @%s: %w", node.Key, err)
		}
		if err := pool.Add(enc, weight); err != nil {
			return nil, err
		}
	}
	return pool, nil
}

func parseEncounter(node *duf.Value) (*Encounter, int, error) {
	title, err := node.StringField("title")
	if err != nil {
		return nil, 0, err
	}
	description, err := node.StringField("description")
	if err != nil {
		return nil, 0, err
	}
	typ, err := ParseType(node.StringOr("type", "CHOICE"))
	if err != nil {
		return nil, 0, err
	}
	weight := node.IntOr("weight", 1)

	choicesNode, ok := node.Get("choices")
	if !ok {
		return nil, 0, fmt.Errorf("missing choices table")
	}
	choiceNodes := choicesNode.Items("choice")
	if len(choiceNodes) == 0 {
		return nil, 0, fmt.Errorf("choices table is empty")
	}

	choices := make([]Choice, 0, len(choiceNodes))
	for i, cn := range choiceNodes {
		choice, err := parseChoice(cn)
		if err != nil {
			return nil, 0, fmt.Errorf("choice %d: %w", i+1, err)
		}
		choices = append(choices, choice)
	}

	return New(node.Key, title, description, typ, choices), weight, nil
}

func parseChoice(node *duf.Value) (Choice, error) {
	text, err := node.StringField("text")
	if err != nil {
		return Choice{}, err
	}

	choice := Choice{
		Text:        text,
		ResultText:  node.StringOr("result_text", ""),
		ChipsDelta:  node.IntOr("chips_delta", 0),
		SanityDelta: node.IntOr("sanity_delta", 0),
		Requirement: RequireNone{},
	}

	// next_enemy_hp_multi is a whole percent: 150 => 1.5x.
	if percent := node.IntOr("next_enemy_hp_multi", 0); percent > 0 {
		choice.EnemyHPMultiplier = float64(percent) / 100
	}
	choice.TrinketReward = node.StringOr("trinket_reward", "")

	if grants, ok := node.Get("granted_tags"); ok {
		for i, gn := range grants.Items("grant") {
			grant, err := parseGrant(gn)
			if err != nil {
				return Choice{}, fmt.Errorf("grant %d: %w", i+1, err)
			}
			choice.Grants = append(choice.Grants, grant)
		}
	}
	if removals, ok := node.Get("removed_tags"); ok {
		for _, tn := range removals.Items("tag") {
			tag, err := card.ParseTag(tn.Str)
			if err != nil {
				return Choice{}, err
			}
			choice.Removals = append(choice.Removals, tag)
		}
	}
	if reqNode, ok := node.Get("requirement"); ok {
		req, err := parseRequirement(reqNode)
		if err != nil {
			return Choice{}, err
		}
		choice.Requirement = req
	}
	return choice, nil
}

func parseGrant(node *duf.Value) (TagGrant, error) {
	tagStr, err := node.StringField("tag")
	if err != nil {
		return TagGrant{}, err
	}
	tag, err := card.ParseTag(tagStr)
	if err != nil {
		return TagGrant{}, err
	}
	strategy, err := card.ParseGrantStrategy(node.StringOr("strategy", "RANDOM_UNTAGGED"))
	if err != nil {
		return TagGrant{}, err
	}

	grant := TagGrant{
		Tag:      tag,
		Strategy: strategy,
		Count:    node.IntOr("count", 1),
	}
	if strategy == card.GrantSuit {
		suitStr, err := node.StringField("suit")
		if err != nil {
			return TagGrant{}, err
		}
		suit, err := card.ParseSuit(suitStr)
		if err != nil {
			return TagGrant{}, err
		}
		grant.Suit = suit
	}
	return grant, nil
}

func parseRequirement(node *duf.Value) (Requirement, error) {
	typ := strings.ToUpper(node.StringOr("type", "NONE"))
	switch typ {
	case "NONE":
		return RequireNone{}, nil
	case "TAG_COUNT":
		tagStr, err := node.StringField("tag")
		if err != nil {
			return nil, err
		}
		tag, err := card.ParseTag(tagStr)
		if err != nil {
			return nil, err
		}
		n, err := node.IntField("min_count")
		if err != nil {
			return nil, err
		}
		return RequireTagCount{Tag: tag, N: n}, nil
	case "TRINKET":
		key, err := node.StringField("trinket")
		if err != nil {
			return nil, err
		}
		return RequireTrinket{Key: key}, nil
	case "HP_THRESHOLD":
		n, err := node.IntField("threshold")
		if err != nil {
			return nil, err
		}
		return RequireHP{N: n}, nil
	case "SANITY_THRESHOLD":
		n, err := node.IntField("threshold")
		if err != nil {
			return nil, err
		}
		return RequireSanity{N: n}, nil
	case "CHIPS_THRESHOLD":
		n, err := node.IntField("threshold")
		if err != nil {
			return nil, err
		}
		return RequireChips{N: n}, nil
	default:
		return nil, fmt.Errorf("unknown requirement type %q", typ)
	}
}
