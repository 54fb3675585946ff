package blackjack

import (
	"fmt"
	"path/filepath"

	"blackjack-lite/blackjack/encounter"
	"blackjack-lite/duf"
	"blackjack-lite/trinket"
)

// GameData bundles the immutable databases a run needs.
type GameData struct {
	Registry *trinket.Registry
	Events   *encounter.Pool
	Enemies  map[string]*EnemyTemplate
}

// LoadGameData reads the standard data directory layout: affixes.duf,
// trinkets.duf, events.duf and enemies.duf. Any invalid entry fails the
// whole load.
func LoadGameData(dir string) (*GameData, error) {
	reg := trinket.NewRegistry()

	affixes, err := loadSection(filepath.Join(dir, "affixes.duf"), "affixes")
	if err != nil {
		return nil, err
	}
	if err := reg.LoadAffixes(affixes); err != nil {
		return nil, fmt.Errorf("affixes.duf: %w", err)
	}

	trinkets, err := loadSection(filepath.Join(dir, "trinkets.duf"), "trinkets")
	if err != nil {
		return nil, err
	}
	if err := reg.LoadTemplates(trinkets); err != nil {
		return nil, fmt.Errorf("trinkets.duf: %w", err)
	}

	events, err := loadSection(filepath.Join(dir, "events.duf"), "events")
	if err != nil {
		return nil, err
	}
	pool, err := encounter.LoadPool(events)
	if err != nil {
		return nil, fmt.Errorf("events.duf: %w", err)
	}

	enemyRoot, err := duf.ParseFile(filepath.Join(dir, "enemies.duf"))
	if err != nil {
		return nil, err
	}
	enemies, err := LoadEnemies(enemyRoot)
	if err != nil {
		return nil, fmt.Errorf("enemies.duf: %w", err)
	}

	return &GameData{Registry: reg, Events: pool, Enemies: enemies}, nil
}

func loadSection(path, section string) (*duf.Value, error) {
	root, err := duf.ParseFile(path)
	if err != nil {
		return nil, err
	}
	node, ok := root.Get(section)
	if !ok {
		return nil, fmt.Errorf("%s: missing @%s section", filepath.Base(path), section)
	}
	return node, nil
}
