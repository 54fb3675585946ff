package blackjack

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"blackjack-lite/blackjack/encounter"
	"blackjack-lite/card"
	"blackjack-lite/trinket"
)

// Game owns every piece of run state: the state machine, the deck and
// tag registry, the seats, the combat enemy, pity counters and the
// active event encounter. All entry points take the mutex so the tick
// driver, the terminal and a transport can share one instance; the
// engine itself never spawns goroutines.
type Game struct {
	cfg Config
	rng *rand.Rand

	mu sync.Mutex

	reg     *trinket.Registry
	dropper *trinket.Dropper
	pool    *encounter.Pool

	// state machine
	state      State
	prevState  State
	stateTimer float64
	round      int
	curSeat    int

	deck *card.Deck
	tags card.TagSet

	// seats; index 0 is the dealer
	players []*Player

	// combat
	enemy           *Enemy
	inCombat        bool
	nextEnemyHPMult float64

	// dealer turn sub-state; lives only while state == StateDealerTurn
	dealer dealerTurn

	// progression
	act        int
	pityNormal int
	pityElite  int

	// active enemy rule changes
	houseRules   bool
	forceAllIn   bool
	doubleStakes bool

	// event encounters
	node       *encounter.Encounter
	rerollCost int

	evbus bus

	// trace of the last dispatch chain, for the terminal's event_trace
	trace []string

	lastRound *RoundResult
	defeated  bool
}

// dealerTurn replaces the original's name-keyed scratchpad: the dealer
// phase is an explicit struct that exists only for one DEALER_TURN.
type dealerTurn struct {
	phase    DealerPhase
	timer    float64
	willHit  bool
	revealed bool
	glitched bool
}

const baseRerollCost = 50

// NewGame validates the config, seeds the rng (0 => time-based) and
// builds the table with the dealer in seat 0.
func NewGame(cfg Config, reg *trinket.Registry, pool *encounter.Pool) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	g := &Game{
		cfg:             cfg,
		rng:             rng,
		reg:             reg,
		pool:            pool,
		dropper:         trinket.NewDropper(reg, rng, cfg.PityThreshold),
		state:           StateMenu,
		prevState:       StateMenu,
		deck:            card.NewDeck(rng),
		players:         []*Player{newDealer(DealerSeat)},
		act:             1,
		nextEnemyHPMult: 1,
		rerollCost:      baseRerollCost,
	}
	if len(cfg.DeckOverride) > 0 {
		if !g.deck.StackTop(cfg.DeckOverride) {
			return nil, fmt.Errorf("deck override contains a card not in the pile")
		}
	}
	return g, nil
}

// AddPlayer seats a run participant. Seats are handed out in join order
// after the dealer.
func (g *Game) AddPlayer(id string, class Class) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateMenu {
		return 0, ErrInvalidState("players join before the run starts")
	}
	if len(g.players) >= g.cfg.MaxPlayers {
		return 0, fmt.Errorf("table is full (%d seats)", g.cfg.MaxPlayers)
	}
	seat := len(g.players)
	g.players = append(g.players, NewPlayer(id, seat, class, g.cfg.StartingChips, g.cfg.MaxSanity))
	return seat, nil
}

// AddAIPlayer seats an engine-driven participant.
func (g *Game) AddAIPlayer(id string, class Class) (int, error) {
	seat, err := g.AddPlayer(id, class)
	if err != nil {
		return 0, err
	}
	g.mu.Lock()
	g.players[seat].ai = true
	g.mu.Unlock()
	return seat, nil
}

// SetTutorialListener installs the listener that fires last on every
// event dispatch. Pass nil to detach.
func (g *Game) SetTutorialListener(l Listener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.evbus.tutorial = l
}

func (g *Game) Player(seat int) (*Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerLocked(seat)
}

func (g *Game) playerLocked(seat int) (*Player, error) {
	if seat < 0 || seat >= len(g.players) {
		return nil, ErrNoSuchSeat
	}
	return g.players[seat], nil
}

// Registry exposes the trinket database (read-only after load).
func (g *Game) Registry() *trinket.Registry { return g.reg }

// Encounters exposes the narrative event pool.
func (g *Game) Encounters() *encounter.Pool { return g.pool }

// Tags exposes the per-run card tag registry.
func (g *Game) Tags() *card.TagSet { return &g.tags }

// Deck sizes for the UI contract.
func (g *Game) DeckSizes() (draw, discard int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deck.Size(), g.deck.DiscardSize()
}

func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Game) Round() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.round
}

func (g *Game) Act() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.act
}

// SetAct moves the campaign tier (terminal, act transitions).
func (g *Game) SetAct(act int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if act < 1 || act > 3 {
		return fmt.Errorf("act must be in [1,3], got %d", act)
	}
	g.act = act
	return nil
}

func (g *Game) Enemy() *Enemy {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enemy
}

// PityCounters reports the normal and elite counters.
func (g *Game) PityCounters() (normal, elite int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pityNormal, g.pityElite
}

// StartRun leaves the menu and opens the first betting round.
func (g *Game) StartRun() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateMenu {
		return ErrInvalidState("run already started")
	}
	if len(g.players) < 2 {
		return ErrInvalidState("need at least one non-dealer seat")
	}
	g.round = 0
	g.transitionLocked(StateBetting)
	return nil
}

// StartCombat installs the enemy, applies any stored HP multiplier and
// fires COMBAT_START through the bus.
func (g *Game) StartCombat(enemy *Enemy) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.startCombatLocked(enemy)
}

func (g *Game) startCombatLocked(enemy *Enemy) error {
	if enemy == nil {
		return ErrInvalidState("nil enemy")
	}
	if g.nextEnemyHPMult > 0 && g.nextEnemyHPMult != 1 {
		enemy.ScaleHP(g.nextEnemyHPMult)
	}
	g.nextEnemyHPMult = 1
	g.enemy = enemy
	g.inCombat = true
	for _, p := range g.players {
		p.debuffBlockCharges = 0
		p.healPunishCharges = 0
	}
	for _, p := range g.players {
		if !p.IsDealer() {
			g.fireEventLocked(EventCombatStart, p.seat)
		}
	}
	return nil
}

// EndCombat tears the enemy down without a victory roll (fleeing,
// terminal cleanup).
func (g *Game) EndCombat() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enemy = nil
	g.inCombat = false
	g.houseRules = false
	g.doubleStakes = false
	g.forceAllIn = false
}

// PlaceBet is the UI betting command. Valid only during BETTING for a
// seat still in the betting state; never partially mutates.
func (g *Game) PlaceBet(seat int, amount int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateBetting {
		return ErrInvalidState("not in betting state")
	}
	p, err := g.playerLocked(seat)
	if err != nil {
		return err
	}
	if p.IsDealer() || p.state != PlayerStateBetting {
		return ErrOutOfTurn
	}
	if amount < g.cfg.MinBet {
		return ErrInvalidState(fmt.Sprintf("bet %d below table minimum %d", amount, g.cfg.MinBet))
	}
	return p.PlaceBet(amount)
}

// PlayerAct is the UI action command for HIT, STAND and DOUBLE. SPLIT
// is reserved and rejected without error side effects.
func (g *Game) PlayerAct(seat int, action Action) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StatePlayerTurn {
		return ErrInvalidState("not in player turn")
	}
	p, err := g.playerLocked(seat)
	if err != nil {
		return err
	}
	if p.IsDealer() || seat != g.curSeat || p.state != PlayerStatePlaying {
		return ErrOutOfTurn
	}
	return g.executeActionLocked(p, action)
}

func (g *Game) executeActionLocked(p *Player, action Action) error {
	switch action {
	case ActionHit:
		g.dealCardToLocked(p, true)
		if p.hand.IsBust() {
			p.state = PlayerStateBust
		} else if p.hand.Total() == 21 {
			// Nothing left to decide at 21.
			p.state = PlayerStateStand
			p.stood = true
		}
	case ActionStand:
		p.state = PlayerStateStand
		p.stood = true
	case ActionDouble:
		if p.hand.Count() != 2 {
			return ErrInvalidState("double only on a two-card hand")
		}
		if err := p.raiseBet(p.bet); err != nil {
			return err
		}
		g.dealCardToLocked(p, true)
		if p.hand.IsBust() {
			p.state = PlayerStateBust
		} else {
			p.state = PlayerStateStand
			p.stood = true
		}
	case ActionSplit:
		return ErrInvalidState("split is not supported")
	default:
		return ErrInvalidState("unknown action")
	}
	g.stateTimer = 0
	return nil
}

// dealCardToLocked draws into the seat's hand, fires CARD_DRAWN, and
// triggers drawn-card tag effects for non-dealer seats in combat.
// The deck is force-reset when the draw pile runs dry mid-deal.
func (g *Game) dealCardToLocked(p *Player, faceUp bool) {
	c, ok := g.deck.Deal()
	if !ok {
		g.deck.Reset(g.rng)
		c, ok = g.deck.Deal()
		if !ok {
			return
		}
	}
	p.hand.AddCard(c, faceUp, &g.tags)
	if !p.IsDealer() {
		g.applyDrawnTagEffectsLocked(p, c)
		g.fireEventLocked(EventCardDrawn, p.seat)
	}
}

// applyDrawnTagEffectsLocked handles CURSED and VAMPIRIC on-draw
// effects against the combat enemy.
func (g *Game) applyDrawnTagEffectsLocked(p *Player, c card.Card) {
	if !g.inCombat || g.enemy == nil {
		return
	}
	if g.tags.Has(c, card.TagCursed) {
		g.dealEnemyDamageLocked(p, 10, false)
	}
	if g.tags.Has(c, card.TagVampiric) {
		g.dealEnemyDamageLocked(p, 5, false)
		p.AddChips(5)
	}
}

// reshuffleIfNeededLocked applies the round-end reshuffle policy.
func (g *Game) reshuffleIfNeededLocked() {
	if g.deck.Size() < g.cfg.ReshuffleThreshold {
		g.deck.Reset(g.rng)
	}
}

// transitionLocked switches top-level states and runs entry actions.
func (g *Game) transitionLocked(next State) {
	g.prevState = g.state
	g.state = next
	g.stateTimer = 0

	switch next {
	case StateBetting:
		g.enterBettingLocked()
	case StateDealing:
		g.enterDealingLocked()
	case StatePlayerTurn:
		g.enterPlayerTurnLocked()
	case StateDealerTurn:
		g.dealer = dealerTurn{phase: DealerPhaseCheckReveal}
	case StateShowdown:
		g.resolveShowdownLocked()
	case StateRoundEnd:
		// results shown for cfg.RoundEndDelay, cleanup on exit
	case StateCombatVictory:
		g.enterCombatVictoryLocked()
	case StateGameOver:
		g.defeated = true
	}
}

func (g *Game) enterBettingLocked() {
	g.round++
	for _, p := range g.players {
		p.resetForRound()
	}
	g.applyRoundStartDrainsLocked()

	// ALL_IN forces every seat to wager its whole stack this round.
	if g.forceAllIn {
		g.forceAllIn = false
		for _, p := range g.players {
			if !p.IsDealer() && p.state == PlayerStateBetting && p.chips > 0 {
				_ = p.PlaceBet(p.chips)
			}
		}
		return
	}

	// AI seats pick a bet immediately.
	for _, p := range g.players {
		if p.IsDealer() || !p.ai || p.state != PlayerStateBetting || p.chips == 0 {
			continue
		}
		if bet := g.aiBetLocked(p); bet > 0 {
			_ = p.PlaceBet(bet)
		}
	}
}

// applyRoundStartDrainsLocked charges CHIP_DRAIN statuses and the
// enemy's CHIP_DRAIN / PRESSURE passives at the top of each round.
func (g *Game) applyRoundStartDrainsLocked() {
	for _, p := range g.players {
		if p.IsDealer() {
			continue
		}
		if drain, ok := p.statuses.Get(StatusChipDrain); ok {
			p.AddChips(-drain.Value)
		}
		if g.inCombat && g.enemy != nil {
			if g.enemy.HasPassive(AbilityChipDrain) {
				p.AddChips(-5)
			}
			if g.enemy.HasPassive(AbilityPressure) {
				p.AdjustSanity(-2)
			}
		}
	}
}

func (g *Game) enterDealingLocked() {
	// Two interleaved passes; the dealer's first card is the hole card.
	for pass := 0; pass < 2; pass++ {
		for _, p := range g.players {
			if p.IsDealer() {
				faceUp := pass != 0
				if pass == 0 && g.enemy != nil && g.enemy.HasPassive(AbilityCardCounter) {
					faceUp = true
				}
				if pass == 0 && g.enemy != nil && g.enemy.HasPassive(AbilityLoadedDeck) {
					if c, ok := g.deck.DealWhere(func(c card.Card) bool { return c.BaseValue() == 10 }); ok {
						p.hand.AddCard(c, faceUp, &g.tags)
						continue
					}
				}
				g.dealCardToLocked(p, faceUp)
				continue
			}
			if p.state == PlayerStateWaiting {
				continue
			}
			g.dealCardToLocked(p, true)
		}
	}

	for _, p := range g.players {
		if !p.IsDealer() && p.state != PlayerStateWaiting {
			p.state = PlayerStatePlaying
			if p.hand.IsBlackjack() {
				p.state = PlayerStateBlackjack
			}
		}
	}
}

func (g *Game) enterPlayerTurnLocked() {
	g.curSeat = g.firstActiveSeatLocked()
}

func (g *Game) firstActiveSeatLocked() int {
	for seat := 1; seat < len(g.players); seat++ {
		if g.players[seat].state == PlayerStatePlaying {
			return seat
		}
	}
	return len(g.players)
}

func (g *Game) enterCombatVictoryLocked() {
	g.inCombat = false
	g.houseRules = false
	g.doubleStakes = false
	g.forceAllIn = false
	g.lastDropLocked()
}

// lastDropLocked rolls the victory trinket drop. A full slot array or an
// exhausted template pool drops the reward silently.
func (g *Game) lastDropLocked() {
	winner := g.firstHumanSeatLocked()
	if winner == nil {
		return
	}
	pool := trinket.PoolNormal
	pity := &g.pityNormal
	if g.enemy != nil && g.enemy.ChipThreat() >= eliteChipThreat {
		pool = trinket.PoolElite
		pity = &g.pityElite
	}
	inst, err := g.dropper.Generate(pool, pity, g.act, winner.EquippedKeys())
	if err != nil {
		return
	}
	g.equipLocked(winner, inst)
}

// eliteChipThreat splits normal from elite enemies for the pity tables.
const eliteChipThreat = 25

func (g *Game) firstHumanSeatLocked() *Player {
	for seat := 1; seat < len(g.players); seat++ {
		return g.players[seat]
	}
	return nil
}

// equipLocked copies the instance into the first free slot and fires the
// synthetic ON_EQUIP. Returns the slot index or -1 when full.
func (g *Game) equipLocked(p *Player, inst trinket.Instance) int {
	slot := p.Equip(inst, g.cfg.TrinketSlots)
	if slot < 0 {
		return -1
	}
	g.fireOnEquipLocked(p, slot)
	return slot
}

// EquipTrinket equips an instance from outside the round flow (event
// rewards, terminal grants).
func (g *Game) EquipTrinket(seat int, inst trinket.Instance) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.playerLocked(seat)
	if err != nil {
		return -1, err
	}
	return g.equipLocked(p, inst), nil
}

// UnequipTrinket removes and returns the instance in the slot.
func (g *Game) UnequipTrinket(seat, slot int) (trinket.Instance, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.playerLocked(seat)
	if err != nil {
		return trinket.Instance{}, err
	}
	inst, ok := p.Unequip(slot)
	if !ok {
		return trinket.Instance{}, ErrInvalidState(fmt.Sprintf("slot %d is empty", slot))
	}
	return inst, nil
}

// GrantTrinket rolls a drop outside combat flow: by template key when
// key is non-empty, otherwise a full pity-backed roll on the pool.
func (g *Game) GrantTrinket(seat int, key string, elite bool) (trinket.Instance, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.playerLocked(seat)
	if err != nil {
		return trinket.Instance{}, err
	}

	var inst trinket.Instance
	if key != "" {
		inst, err = g.dropper.GenerateByKey(key, g.act)
	} else if elite {
		inst, err = g.dropper.Generate(trinket.PoolElite, &g.pityElite, g.act, p.EquippedKeys())
	} else {
		inst, err = g.dropper.Generate(trinket.PoolNormal, &g.pityNormal, g.act, p.EquippedKeys())
	}
	if err != nil {
		return trinket.Instance{}, err
	}
	g.equipLocked(p, inst)
	return inst, nil
}

// RerollTrinket rerolls the affixes of an equipped instance in place.
func (g *Game) RerollTrinket(seat, slot int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.playerLocked(seat)
	if err != nil {
		return err
	}
	if slot < 0 || slot >= MaxTrinketSlots || !p.slots[slot].Occupied {
		return ErrInvalidState(fmt.Sprintf("slot %d is empty", slot))
	}
	if err := g.dropper.Reroll(&p.slots[slot].Inst); err != nil {
		return err
	}
	p.MarkStatsDirty()
	return nil
}

// aiBetLocked picks a wager for a non-human seat.
func (g *Game) aiBetLocked(p *Player) int {
	max := g.cfg.MaxBet
	if max > p.chips {
		max = p.chips
	}
	min := g.cfg.MinBet
	if min > max {
		return max
	}
	return min + g.rng.Intn(max-min+1)
}
