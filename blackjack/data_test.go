package blackjack

import "testing"

// Loads the data files the game actually ships with; catches drift
// between the loaders and the .duf sources.
func TestLoadShippedData(t *testing.T) {
	data, err := LoadGameData("../data")
	if err != nil {
		t.Fatalf("LoadGameData: %v", err)
	}

	if len(data.Registry.AffixKeys()) != 4 {
		t.Fatalf("affixes=%d, want 4", len(data.Registry.AffixKeys()))
	}
	tpl, ok := data.Registry.Template("cursed_skull")
	if !ok {
		t.Fatal("cursed_skull missing")
	}
	if tpl.Secondary == nil {
		t.Fatal("cursed_skull must carry its drawn-card buff")
	}
	if _, ok := data.Registry.Template("high_roller_ring"); !ok {
		t.Fatal("high_roller_ring missing")
	}

	if data.Events.Len() < 5 {
		t.Fatalf("events=%d, want at least 5", data.Events.Len())
	}
	if _, ok := data.Events.Get("crossroads"); !ok {
		t.Fatal("crossroads event missing")
	}

	boss, ok := data.Enemies["pit_boss"]
	if !ok {
		t.Fatal("pit_boss missing")
	}
	if !boss.Elite || !boss.Spawn().HasPassive(AbilityHouseAlwaysWins) {
		t.Fatalf("pit_boss: %+v", boss)
	}
}

func TestLoadGameDataMissingDir(t *testing.T) {
	if _, err := LoadGameData("no-such-dir"); err == nil {
		t.Fatal("expected an error for a missing data directory")
	}
}
