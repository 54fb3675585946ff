package term

import (
	"fmt"
	"sort"
	"strconv"

	"blackjack-lite/blackjack"
)

// RegisterGameCommands wires the debug commands against a running game.
// The data argument supplies enemy templates for spawn_enemy; it may be
// nil, in which case spawn_enemy is not registered.
func RegisterGameCommands(c *Console, g *blackjack.Game, data *blackjack.GameData) {
	c.Register(&Command{
		Name:  "state",
		Usage: "state",
		Help:  "print the game state and seats",
		Run: func(c *Console, args []string) error {
			snap := g.Snapshot()
			c.Printf("state=%s round=%d act=%d", snap.State, snap.Round, snap.Act)
			if snap.Enemy != nil {
				c.Printf("enemy %s hp=%d/%d threat=%d", snap.Enemy.Name, snap.Enemy.HP, snap.Enemy.MaxHP, snap.Enemy.ChipThreat)
			}
			for _, p := range snap.Players {
				c.Printf("seat %d %s chips=%d hp=%d sanity=%d bet=%d", p.Seat, p.ID, p.Chips, p.HP, p.Sanity, p.Bet)
			}
			return nil
		},
	})
	c.Register(&Command{
		Name:  "give_chips",
		Usage: "give_chips <seat> <amount>",
		Help:  "add chips to a seat (negative to take)",
		Run: func(c *Console, args []string) error {
			seat, amount, err := seatAndInt(args)
			if err != nil {
				return err
			}
			p, err := g.Player(seat)
			if err != nil {
				return err
			}
			p.AddChips(amount)
			c.Printf("seat %d chips=%d", seat, p.Chips())
			return nil
		},
	})
	c.Register(&Command{
		Name:  "set_chips",
		Usage: "set_chips <seat> <amount>",
		Help:  "set a seat's chip count",
		Run: func(c *Console, args []string) error {
			seat, amount, err := seatAndInt(args)
			if err != nil {
				return err
			}
			p, err := g.Player(seat)
			if err != nil {
				return err
			}
			p.AddChips(amount - p.Chips())
			c.Printf("seat %d chips=%d", seat, p.Chips())
			return nil
		},
	})
	c.Register(&Command{
		Name:  "set_hp",
		Usage: "set_hp <seat> <hp>",
		Help:  "set a seat's hit points",
		Run: func(c *Console, args []string) error {
			seat, hp, err := seatAndInt(args)
			if err != nil {
				return err
			}
			p, err := g.Player(seat)
			if err != nil {
				return err
			}
			p.AdjustHP(hp - p.HP())
			c.Printf("seat %d hp=%d/%d", seat, p.HP(), p.MaxHP())
			return nil
		},
	})
	c.Register(&Command{
		Name:  "set_sanity",
		Usage: "set_sanity <seat> <sanity>",
		Help:  "set a seat's sanity",
		Run: func(c *Console, args []string) error {
			seat, sanity, err := seatAndInt(args)
			if err != nil {
				return err
			}
			p, err := g.Player(seat)
			if err != nil {
				return err
			}
			p.AdjustSanity(sanity - p.Sanity())
			c.Printf("seat %d sanity=%d tier=%v", seat, p.Sanity(), p.SanityTier())
			return nil
		},
	})
	c.Register(&Command{
		Name:  "give_trinket",
		Usage: "give_trinket <seat> [key] [elite]",
		Help:  "equip a trinket by template key, or roll one when the key is omitted",
		Run: func(c *Console, args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("usage: give_trinket <seat> [key] [elite]")
			}
			seat, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad seat %q", args[0])
			}
			rest := args[1:]
			elite := false
			if n := len(rest); n > 0 && rest[n-1] == "elite" {
				elite = true
				rest = rest[:n-1]
			}
			key := ""
			if len(rest) > 0 {
				key = rest[0]
			}
			inst, err := g.GrantTrinket(seat, key, elite)
			if err != nil {
				return err
			}
			c.Printf("seat %d equipped %s", seat, inst.TemplateKey)
			return nil
		},
		Suggest: func(string) []string {
			return g.Registry().TemplateKeys()
		},
	})
	c.Register(&Command{
		Name:  "force_event",
		Usage: "force_event <key>",
		Help:  "open a narrative encounter by key",
		Run: func(c *Console, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: force_event <key>")
			}
			enc, err := g.StartEncounter(args[0])
			if err != nil {
				return err
			}
			c.Printf("%s", enc.Title)
			return nil
		},
		Suggest: func(string) []string {
			if pool := g.Encounters(); pool != nil {
				return pool.Keys()
			}
			return nil
		},
	})
	c.Register(&Command{
		Name:  "fire_event",
		Usage: "fire_event <seat> <name>",
		Help:  "dispatch a game event (COMBAT_START, PLAYER_WIN, ...)",
		Run: func(c *Console, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: fire_event <seat> <name>")
			}
			seat, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad seat %q", args[0])
			}
			event, ok := blackjack.ParseEvent(args[1])
			if !ok {
				return fmt.Errorf("unknown event %q", args[1])
			}
			if err := g.FireEvent(event, seat); err != nil {
				return err
			}
			for _, step := range g.EventTrace() {
				c.Printf("  %s", step)
			}
			return nil
		},
		Suggest: func(string) []string {
			names := make([]string, 0, len(blackjack.EventDictionary))
			for _, name := range blackjack.EventDictionary {
				names = append(names, name)
			}
			sort.Strings(names)
			return names
		},
	})
	c.Register(&Command{
		Name:  "event_trace",
		Usage: "event_trace",
		Help:  "print the listener order of the last event dispatch",
		Run: func(c *Console, args []string) error {
			for _, step := range g.EventTrace() {
				c.Printf("%s", step)
			}
			return nil
		},
	})
	if data != nil {
		c.Register(&Command{
			Name:  "spawn_enemy",
			Usage: "spawn_enemy <key>",
			Help:  "start combat against an enemy by key",
			Run: func(c *Console, args []string) error {
				if len(args) != 1 {
					keys := make([]string, 0, len(data.Enemies))
					for key := range data.Enemies {
						keys = append(keys, key)
					}
					sort.Strings(keys)
					for _, key := range keys {
						c.Printf("%s", key)
					}
					return nil
				}
				tpl, ok := data.Enemies[args[0]]
				if !ok {
					return fmt.Errorf("unknown enemy %q", args[0])
				}
				enemy := tpl.Spawn()
				if err := g.StartCombat(enemy); err != nil {
					return err
				}
				c.Printf("combat: %s hp=%d", enemy.Name(), enemy.HP())
				return nil
			},
			Suggest: func(string) []string {
				keys := make([]string, 0, len(data.Enemies))
				for key := range data.Enemies {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				return keys
			},
		})
	}
}

func seatAndInt(args []string) (seat, value int, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected <seat> <value>")
	}
	seat, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad seat %q", args[0])
	}
	value, err = strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad value %q", args[1])
	}
	return seat, value, nil
}
