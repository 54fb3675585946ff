// Package encounter models narrative event nodes: a titled description
// with choices whose consequences touch chips, sanity, the card tag
// registry, trinkets and the next combat. The engine owns consequence
// application; this package owns the data, the unlock requirements and
// the weighted pool.
package encounter

import (
	"fmt"
	"strings"

	"blackjack-lite/card"
)

// Type classifies an encounter for presentation.
type Type byte

const (
	TypeDialogue Type = iota
	TypeChoice
	TypeBlessing
	TypeCurse
	TypeShop
	TypeRest
)

var typeNames = map[Type]string{
	TypeDialogue: "DIALOGUE",
	TypeChoice:   "CHOICE",
	TypeBlessing: "BLESSING",
	TypeCurse:    "CURSE",
	TypeShop:     "SHOP",
	TypeRest:     "REST",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", t)
}

func ParseType(name string) (Type, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for typ, typName := range typeNames {
		if typName == upper {
			return typ, nil
		}
	}
	return 0, fmt.Errorf("invalid encounter type: %s", name)
}

// Target is the view of the player a requirement needs. blackjack.Player
// satisfies it.
type Target interface {
	HP() int
	Sanity() int
	Chips() int
	HasTrinket(key string) bool
}

// Requirement gates a choice. Proper sum type: one variant per rule.
type Requirement interface {
	Met(t Target, tags *card.TagSet) bool
	describe() string
}

type RequireNone struct{}

func (RequireNone) Met(Target, *card.TagSet) bool { return true }
func (RequireNone) describe() string              { return "none" }

// RequireTagCount needs at least N card ids carrying the tag.
type RequireTagCount struct {
	Tag card.Tag
	N   int
}

func (r RequireTagCount) Met(_ Target, tags *card.TagSet) bool {
	return tags != nil && tags.Count(r.Tag) >= r.N
}
func (r RequireTagCount) describe() string {
	return fmt.Sprintf("%d %s cards", r.N, r.Tag)
}

// RequireTrinket needs the template equipped in any slot.
type RequireTrinket struct{ Key string }

func (r RequireTrinket) Met(t Target, _ *card.TagSet) bool { return t.HasTrinket(r.Key) }
func (r RequireTrinket) describe() string                  { return "trinket " + r.Key }

// RequireHP needs HP >= N.
type RequireHP struct{ N int }

func (r RequireHP) Met(t Target, _ *card.TagSet) bool { return t.HP() >= r.N }
func (r RequireHP) describe() string                  { return fmt.Sprintf("HP >= %d", r.N) }

// RequireSanity needs sanity >= N.
type RequireSanity struct{ N int }

func (r RequireSanity) Met(t Target, _ *card.TagSet) bool { return t.Sanity() >= r.N }
func (r RequireSanity) describe() string                  { return fmt.Sprintf("sanity >= %d", r.N) }

// RequireChips needs chips >= N.
type RequireChips struct{ N int }

func (r RequireChips) Met(t Target, _ *card.TagSet) bool { return t.Chips() >= r.N }
func (r RequireChips) describe() string                  { return fmt.Sprintf("chips >= %d", r.N) }

// TagGrant adds a tag through a targeting strategy.
type TagGrant struct {
	Tag      card.Tag
	Strategy card.GrantStrategy
	Count    int       // random strategy only
	Suit     card.Suit // suit strategy only
}

// Choice is one selectable branch of an encounter.
type Choice struct {
	Text       string
	ResultText string

	ChipsDelta  int
	SanityDelta int

	Grants   []TagGrant
	Removals []card.Tag

	Requirement Requirement

	// EnemyHPMultiplier scales the next combat's enemy when > 0.
	EnemyHPMultiplier float64

	// TrinketReward equips this template into the first empty slot.
	TrinketReward string
}

// LockHint names the requirement for locked-choice UI text.
func (c *Choice) LockHint() string {
	if c.Requirement == nil {
		return RequireNone{}.describe()
	}
	return c.Requirement.describe()
}

// Unlocked evaluates the choice's requirement.
func (c *Choice) Unlocked(t Target, tags *card.TagSet) bool {
	if c.Requirement == nil {
		return true
	}
	return c.Requirement.Met(t, tags)
}

// Encounter is one narrative node. Created on entry, consumed after the
// selected choice's consequences are applied.
type Encounter struct {
	Key         string
	Title       string
	Description string
	Type        Type
	Choices     []Choice

	// Selected is the confirmed choice index, -1 until selection.
	Selected int
}

func New(key, title, description string, typ Type, choices []Choice) *Encounter {
	return &Encounter{
		Key:         key,
		Title:       title,
		Description: description,
		Type:        typ,
		Choices:     choices,
		Selected:    -1,
	}
}
