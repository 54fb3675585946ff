package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"blackjack-lite/blackjack"
	"blackjack-lite/replay"
)

// simulate drives the engine headless: either replays a scripted
// RunSpec into a tape, or lets AI seats play full runs for balance
// sweeps.

func main() {
	specPath := flag.String("spec", "", "path to a RunSpec JSON file; the tape is written to stdout")
	dataDir := flag.String("data", "data", "game data directory")
	runs := flag.Int("runs", 1, "number of AI runs to simulate")
	seed := flag.Int64("seed", 1, "base rng seed; run i uses seed+i")
	seats := flag.Int("seats", 1, "AI seats per run")
	flag.Parse()

	if *specPath != "" {
		if err := replaySpec(*specPath); err != nil {
			fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := simulateRuns(*dataDir, *runs, *seed, *seats); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

func replaySpec(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var spec replay.RunSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return fmt.Errorf("parse spec: %v", err)
	}
	tape, err := replay.GenerateRunTape(spec)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(replay.ToWireRunTape(tape))
}

type runOutcome struct {
	rounds   int
	chips    int
	defeated int
	won      bool
}

func simulateRuns(dataDir string, runs int, seed int64, seats int) error {
	data, err := blackjack.LoadGameData(dataDir)
	if err != nil {
		return err
	}

	enemyKeys := make([]string, 0, len(data.Enemies))
	for key := range data.Enemies {
		enemyKeys = append(enemyKeys, key)
	}
	sort.Strings(enemyKeys)

	var total runOutcome
	wins := 0
	for i := 0; i < runs; i++ {
		outcome, err := simulateOne(data, enemyKeys, seed+int64(i), seats)
		if err != nil {
			return err
		}
		total.rounds += outcome.rounds
		total.chips += outcome.chips
		total.defeated += outcome.defeated
		if outcome.won {
			wins++
		}
	}

	fmt.Printf("runs=%d wins=%d avg_rounds=%.1f avg_chips=%.1f avg_enemies=%.1f\n",
		runs, wins,
		float64(total.rounds)/float64(runs),
		float64(total.chips)/float64(runs),
		float64(total.defeated)/float64(runs))
	return nil
}

func simulateOne(data *blackjack.GameData, enemyKeys []string, seed int64, seats int) (runOutcome, error) {
	var out runOutcome

	cfg := blackjack.DefaultConfig()
	cfg.Seed = seed
	game, err := blackjack.NewGame(cfg, data.Registry, data.Events)
	if err != nil {
		return out, err
	}
	for s := 0; s < seats; s++ {
		if _, err := game.AddAIPlayer(fmt.Sprintf("ai_%d", s), blackjack.ClassDegenerate); err != nil {
			return out, err
		}
	}
	if err := game.StartRun(); err != nil {
		return out, err
	}

	nextEnemy := 0
	inVictory := false
	const maxTicks = 100000
	for tick := 0; tick < maxTicks; tick++ {
		if game.State() != blackjack.StateCombatVictory {
			inVictory = false
		}
		switch game.State() {
		case blackjack.StateBetting:
			if game.Enemy() == nil {
				if nextEnemy >= len(enemyKeys) {
					out.won = true
					out.rounds = game.Round()
					out.chips = totalChips(game)
					return out, nil
				}
				enemy := data.Enemies[enemyKeys[nextEnemy]].Spawn()
				nextEnemy++
				if err := game.StartCombat(enemy); err != nil {
					return out, err
				}
			}
		case blackjack.StateCombatVictory:
			if !inVictory {
				inVictory = true
				out.defeated++
			}
		case blackjack.StateGameOver:
			out.rounds = game.Round()
			out.chips = totalChips(game)
			return out, nil
		}
		game.Advance(0.5)
	}
	out.rounds = game.Round()
	out.chips = totalChips(game)
	return out, nil
}

func totalChips(game *blackjack.Game) int {
	total := 0
	for _, ps := range game.Snapshot().Players {
		if !ps.Dealer {
			total += ps.Chips
		}
	}
	return total
}
