package duf

import (
	"strings"
	"testing"
)

const sampleAffixes = `
# test affix data
@damage_bonus_flat
name: "Iron Grip"
description: "+{value} flat damage"
min_value: 1
max_value: 5
weight: 100

@crit_chance
name: "Gambler's Eye"
description: "+{value}% crit chance"
min_value: 2
max_value: 8
weight: 60
`

func TestParseSections(t *testing.T) {
	root, err := ParseString(sampleAffixes)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	keys := root.Keys()
	if len(keys) != 2 || keys[0] != "damage_bonus_flat" || keys[1] != "crit_chance" {
		t.Fatalf("unexpected keys: %v", keys)
	}

	affix, ok := root.Get("damage_bonus_flat")
	if !ok {
		t.Fatalf("section missing")
	}
	name, err := affix.StringField("name")
	if err != nil || name != "Iron Grip" {
		t.Fatalf("name = %q, err = %v", name, err)
	}
	min, err := affix.IntField("min_value")
	if err != nil || min != 1 {
		t.Fatalf("min_value = %d, err = %v", min, err)
	}
	if got := affix.IntOr("absent", 42); got != 42 {
		t.Fatalf("IntOr fallback = %d", got)
	}
}

func TestParseNestedTables(t *testing.T) {
	src := `
@gamblers_bargain
title: "Gambler's Bargain"
type: CHOICE
choices {
    choice {
        text: "Take the deal"
        chips_delta: 20
    }
    choice {
        text: "Walk away"
        chips_delta: 0
    }
}
`
	root, err := ParseString(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	event, _ := root.Get("gamblers_bargain")
	if got := event.StringOr("type", ""); got != "CHOICE" {
		t.Fatalf("bare word value = %q", got)
	}
	choices, ok := event.Get("choices")
	if !ok {
		t.Fatalf("choices table missing")
	}
	items := choices.Items("choice")
	if len(items) != 2 {
		t.Fatalf("choice count = %d, want 2", len(items))
	}
	if delta := items[0].IntOr("chips_delta", -1); delta != 20 {
		t.Fatalf("chips_delta = %d", delta)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"member outside section", `name: "x"`, "outside of a section"},
		{"missing colon", "@a\nnope", "expected key: value"},
		{"unterminated string", "@a\nname: \"x", "unterminated string"},
		{"unmatched brace", "@a\n}", "unmatched closing brace"},
		{"unclosed table", "@a\nchoices {\ntext: \"x\"", "unclosed table"},
		{"empty section", "@", "empty section name"},
	}
	for _, tc := range cases {
		_, err := ParseString(tc.src)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}
