package encounter

import (
	"math/rand"
	"testing"

	"blackjack-lite/card"
	"blackjack-lite/duf"
)

type fakeTarget struct {
	hp, sanity, chips int
	trinkets          map[string]bool
}

func (f fakeTarget) HP() int                   { return f.hp }
func (f fakeTarget) Sanity() int               { return f.sanity }
func (f fakeTarget) Chips() int                { return f.chips }
func (f fakeTarget) HasTrinket(key string) bool { return f.trinkets[key] }

func TestRequirements(t *testing.T) {
	var tags card.TagSet
	tags.Grant(card.CardSpadeA, card.TagCursed)
	tags.Grant(card.CardSpade2, card.TagCursed)

	target := fakeTarget{hp: 50, sanity: 30, chips: 120, trinkets: map[string]bool{"lucky_chip": true}}

	cases := []struct {
		name string
		req  Requirement
		want bool
	}{
		{"none", RequireNone{}, true},
		{"tag count met", RequireTagCount{Tag: card.TagCursed, N: 2}, true},
		{"tag count unmet", RequireTagCount{Tag: card.TagCursed, N: 3}, false},
		{"trinket held", RequireTrinket{Key: "lucky_chip"}, true},
		{"trinket missing", RequireTrinket{Key: "cursed_skull"}, false},
		{"hp met", RequireHP{N: 50}, true},
		{"hp unmet", RequireHP{N: 51}, false},
		{"sanity met", RequireSanity{N: 30}, true},
		{"chips unmet", RequireChips{N: 121}, false},
	}
	for _, tc := range cases {
		if got := tc.req.Met(target, &tags); got != tc.want {
			t.Fatalf("%s: Met = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPoolDrawDifferent(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	pool := NewPool()
	encs := []*Encounter{
		New("a", "A", "first", TypeChoice, []Choice{{Text: "x", Requirement: RequireNone{}}}),
		New("b", "B", "second", TypeChoice, []Choice{{Text: "y", Requirement: RequireNone{}}}),
	}
	for _, e := range encs {
		if err := pool.Add(e, 10); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	for i := 0; i < 50; i++ {
		enc, ok := pool.DrawDifferent(rng, "a")
		if !ok {
			t.Fatalf("draw failed")
		}
		if enc.Key == "a" {
			t.Fatalf("DrawDifferent returned the excluded key")
		}
		if enc.Selected != -1 {
			t.Fatalf("drawn encounter carries selection state")
		}
	}
}

func TestPoolRejectsBadEntries(t *testing.T) {
	pool := NewPool()
	enc := New("a", "A", "d", TypeChoice, nil)
	if err := pool.Add(enc, 0); err == nil {
		t.Fatalf("zero weight accepted")
	}
	if err := pool.Add(enc, 5); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := pool.Add(enc, 5); err == nil {
		t.Fatalf("duplicate key accepted")
	}
}

const eventData = `
@gamblers_bargain
title: "Gambler's Bargain"
description: "A grinning stranger offers a trade."
type: CHOICE
weight: 10
choices {
    choice {
        text: "Take the cursed chips"
        result_text: "The chips feel cold."
        chips_delta: 20
        granted_tags {
            grant {
                tag: CURSED
                strategy: RANDOM_UNTAGGED
                count: 3
            }
        }
    }
    choice {
        text: "Cleanse your deck"
        sanity_delta: 5
        removed_tags {
            tag: CURSED
        }
        requirement {
            type: TAG_COUNT
            tag: CURSED
            min_count: 3
        }
    }
    choice {
        text: "Challenge him"
        next_enemy_hp_multi: 150
        trinket_reward: cursed_skull
        requirement {
            type: CHIPS_THRESHOLD
            threshold: 50
        }
    }
}
`

func TestLoadPool(t *testing.T) {
	root, err := duf.ParseString(eventData)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pool, err := LoadPool(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	enc, ok := pool.Get("gamblers_bargain")
	if !ok {
		t.Fatalf("encounter missing")
	}
	if len(enc.Choices) != 3 {
		t.Fatalf("choice count = %d", len(enc.Choices))
	}

	first := enc.Choices[0]
	if first.ChipsDelta != 20 || len(first.Grants) != 1 {
		t.Fatalf("first choice: %+v", first)
	}
	if first.Grants[0].Tag != card.TagCursed || first.Grants[0].Count != 3 {
		t.Fatalf("grant: %+v", first.Grants[0])
	}

	second := enc.Choices[1]
	if len(second.Removals) != 1 || second.Removals[0] != card.TagCursed {
		t.Fatalf("removals: %+v", second.Removals)
	}
	req, ok := second.Requirement.(RequireTagCount)
	if !ok || req.N != 3 {
		t.Fatalf("requirement: %#v", second.Requirement)
	}

	third := enc.Choices[2]
	if third.EnemyHPMultiplier != 1.5 || third.TrinketReward != "cursed_skull" {
		t.Fatalf("third choice: %+v", third)
	}
}

func TestLoadPoolValidation(t *testing.T) {
	bad := `
@empty_event
title: "Empty"
description: "No choices."
choices {
}
`
	root, _ := duf.ParseString(bad)
	if _, err := LoadPool(root); err == nil {
		t.Fatalf("empty choices accepted")
	}

	badReq := `
@weird
title: "Weird"
description: "Bad requirement."
choices {
    choice {
        text: "x"
        requirement {
            type: LUNAR_PHASE
        }
    }
}
`
	root, _ = duf.ParseString(badReq)
	if _, err := LoadPool(root); err == nil {
		t.Fatalf("unknown requirement accepted")
	}
}
