package game

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pkmn-engine/arena-server-go/internal/game/conditions"
	"github.com/pkmn-engine/arena-server-go/internal/game/effects"
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// Outcome is the lifecycle state of a match.
type Outcome int

const (
	OutcomeNotStarted Outcome = iota
	OutcomeInProgress
	OutcomeFinished
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotStarted:
		return "NOT_STARTED"
	case OutcomeInProgress:
		return "IN_PROGRESS"
	case OutcomeFinished:
		return "FINISHED"
	default:
		return fmt.Sprintf("OUTCOME(%d)", int(o))
	}
}

// Game is the live state of one two-player match. A Game is logically
// single-threaded: the host serializes calls into it, so no internal
// locking is needed. Setup produces a Game through Complete; there is
// no other way to construct one in progress.
type Game struct {
	id      string
	ruleset rules.Ruleset

	players [2]*Player
	// order holds the player IDs in turn order; order[0] goes first.
	order [2]string

	turn    *rules.TurnManager
	outcome Outcome
	winner  string
	// winReason explains the finished outcome (prizes, deck-out, ...).
	winReason string

	bus          *rules.EventBus
	engine       *rules.Engine
	effects      *effects.Registry
	triggers     *effects.TriggerManager
	followUps    *effects.Queue
	conditionOps *conditions.Operations
	rng          *Rand
	logger       *zap.Logger

	// history records every published event in order.
	history []rules.Event

	// depth counts nested Execute calls during effect resolution.
	depth int
	// deckedOut names the player who had to draw from an empty deck.
	deckedOut string
	// instanceSeq continues the board handle sequence begun in setup.
	instanceSeq int
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// Ruleset returns the match configuration.
func (g *Game) Ruleset() rules.Ruleset { return g.ruleset }

// Outcome returns the lifecycle state.
func (g *Game) Outcome() Outcome { return g.outcome }

// Winner returns the winning player ID, empty while in progress.
func (g *Game) Winner() string { return g.winner }

// WinReason returns a short explanation of the finished outcome.
func (g *Game) WinReason() string { return g.winReason }

// Phase returns the phase currently in progress.
func (g *Game) Phase() rules.Phase { return g.turn.CurrentPhase() }

// TurnNumber returns the 1-based turn number, 0 during setup.
func (g *Game) TurnNumber() int { return g.turn.TurnNumber() }

// ActivePlayer returns the ID of the player whose turn it is.
func (g *Game) ActivePlayer() string { return g.turn.ActivePlayer() }

// Bus returns the game's event bus.
func (g *Game) Bus() *rules.EventBus { return g.bus }

// Rand returns the game's random source.
func (g *Game) Rand() *Rand { return g.rng }

// Players returns both players in turn order.
func (g *Game) Players() []*Player {
	return []*Player{g.players[0], g.players[1]}
}

// Player finds a player by ID.
func (g *Game) Player(playerID string) (*Player, bool) {
	for _, p := range g.players {
		if p != nil && p.ID == playerID {
			return p, true
		}
	}
	return nil, false
}

// Opponent finds the other player.
func (g *Game) Opponent(playerID string) (*Player, bool) {
	for _, p := range g.players {
		if p != nil && p.ID != playerID {
			return p, true
		}
	}
	return nil, false
}

// History returns a copy of every event published so far, in order.
func (g *Game) History() []rules.Event {
	out := make([]rules.Event, len(g.history))
	copy(out, g.history)
	return out
}

// Triggers returns the game's trigger manager so hosts can register
// card triggers.
func (g *Game) Triggers() *effects.TriggerManager { return g.triggers }

// wireHistory records every event that crosses the bus into the game
// history. The subscription is registered before any other listener,
// so nested publishes land in delivery order, which is exactly the
// causal order.
func (g *Game) wireHistory() {
	g.bus.Subscribe(func(evt rules.Event) {
		g.history = append(g.history, evt)
	})
}

// publish stamps and delivers one event. The history subscription
// picks it up together with everything listeners publish in response.
func (g *Game) publish(evt rules.Event) {
	if evt.GameID == "" {
		evt.GameID = g.id
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	g.bus.Publish(evt)
}

// newInstanceID mints the next board instance handle. Handles are
// sequential, not random, so re-running a seed reproduces them.
func (g *Game) newInstanceID() string {
	g.instanceSeq++
	return fmt.Sprintf("pkm-%d", g.instanceSeq)
}

// findPokemon locates an in-play Pokémon by instance ID on either
// side, returning its owner too.
func (g *Game) findPokemon(instanceID string) (*PokemonInPlay, *Player) {
	for _, p := range g.players {
		if found := p.findPokemon(instanceID); found != nil {
			return found, p
		}
	}
	return nil, nil
}

// stateView is the immutable snapshot handed to the rule engine. It is
// built once per Execute call so every rule sees identical state.
type stateView struct {
	gameID   string
	phase    rules.Phase
	turn     int
	first    bool
	active   string
	finished bool
	ruleset  rules.Ruleset
	players  map[string]rules.PlayerSnapshot
	order    [2]string
}

func (g *Game) snapshotState() *stateView {
	view := &stateView{
		gameID:   g.id,
		phase:    g.turn.CurrentPhase(),
		turn:     g.turn.TurnNumber(),
		first:    g.turn.FirstTurn(),
		active:   g.turn.ActivePlayer(),
		finished: g.outcome == OutcomeFinished,
		ruleset:  g.ruleset,
		players:  make(map[string]rules.PlayerSnapshot, 2),
		order:    g.order,
	}
	for _, p := range g.players {
		view.players[p.ID] = p.snapshot(g.turn.TurnNumber())
	}
	return view
}

func (v *stateView) GameID() string { return v.gameID }

func (v *stateView) Phase() rules.Phase { return v.phase }

func (v *stateView) TurnNumber() int { return v.turn }

func (v *stateView) FirstTurn() bool { return v.first }

func (v *stateView) ActivePlayer() string { return v.active }

func (v *stateView) Finished() bool { return v.finished }

func (v *stateView) Ruleset() rules.Ruleset { return v.ruleset }

func (v *stateView) Player(playerID string) (rules.PlayerSnapshot, bool) {
	p, ok := v.players[playerID]
	return p, ok
}

func (v *stateView) Opponent(playerID string) (rules.PlayerSnapshot, bool) {
	for _, id := range v.order {
		if id != playerID {
			return v.Player(id)
		}
	}
	return rules.PlayerSnapshot{}, false
}

// effectSurface adapts the game's internal mutators to the constrained
// interface effects run against. Keeping it as a separate type keeps
// the raw mutators off the public Game API.
type effectSurface struct {
	g *Game
}

func (s effectSurface) DealDamage(instanceID string, amount int, sourceID string) error {
	return s.g.dealDamage(instanceID, amount, sourceID)
}

func (s effectSurface) Heal(instanceID string, amount int) error {
	return s.g.heal(instanceID, amount)
}

func (s effectSurface) ApplyCondition(instanceID string, condition string) error {
	return s.g.applyCondition(instanceID, condition)
}

func (s effectSurface) RemoveCondition(instanceID string, condition string) error {
	return s.g.removeCondition(instanceID, condition)
}

func (s effectSurface) DrawCards(playerID string, count int) error {
	return s.g.drawForEffect(playerID, count)
}

func (s effectSurface) DiscardFromHand(playerID string, cardID string) error {
	return s.g.discardFromHand(playerID, cardID)
}

func (s effectSurface) FlipCoin(playerID string) bool {
	return s.g.flipCoin(playerID, "")
}

func (s effectSurface) Enqueue(item effects.FollowUp) {
	s.g.followUps.Enqueue(item)
}

// dealDamage applies raw damage to an in-play Pokémon and publishes
// the event. Weakness and resistance are the attack path's concern;
// effect damage lands as-is. Knockouts resolve after the current
// action finishes applying.
func (g *Game) dealDamage(instanceID string, amount int, sourceID string) error {
	target, owner := g.findPokemon(instanceID)
	if target == nil {
		return fmt.Errorf("no Pokémon in play with instance %s", instanceID)
	}
	if amount <= 0 {
		return nil
	}
	target.Damage += amount

	evt := rules.NewEventWithAmount(rules.EventDamageDealt, instanceID, sourceID, owner.ID, amount)
	evt.Description = fmt.Sprintf("%s took %d damage", target.Card.Name, amount)
	g.publish(evt)
	return nil
}

func (g *Game) heal(instanceID string, amount int) error {
	target, owner := g.findPokemon(instanceID)
	if target == nil {
		return fmt.Errorf("no Pokémon in play with instance %s", instanceID)
	}
	if amount <= 0 || target.Damage == 0 {
		return nil
	}
	if amount > target.Damage {
		amount = target.Damage
	}
	target.Damage -= amount

	evt := rules.NewEventWithAmount(rules.EventDamageHealed, instanceID, instanceID, owner.ID, amount)
	evt.Description = fmt.Sprintf("%s healed %d damage", target.Card.Name, amount)
	g.publish(evt)
	return nil
}

func (g *Game) applyCondition(instanceID string, condition string) error {
	target, owner := g.findPokemon(instanceID)
	if target == nil {
		return fmt.Errorf("no Pokémon in play with instance %s", instanceID)
	}
	kind := conditions.Kind(condition)
	if !kind.Valid() {
		return fmt.Errorf("unknown condition %q", condition)
	}
	g.conditionOps.Apply(target.Conditions, instanceID, owner.ID, kind, g.turn.TurnNumber())
	return nil
}

func (g *Game) removeCondition(instanceID string, condition string) error {
	target, owner := g.findPokemon(instanceID)
	if target == nil {
		return fmt.Errorf("no Pokémon in play with instance %s", instanceID)
	}
	g.conditionOps.Remove(target.Conditions, instanceID, owner.ID, conditions.Kind(condition))
	return nil
}

// drawForEffect draws cards outside the mandatory turn draw. Drawing
// from an empty deck here is not a loss; the effect just draws fewer
// cards.
func (g *Game) drawForEffect(playerID string, count int) error {
	player, ok := g.Player(playerID)
	if !ok {
		return fmt.Errorf("no player %s", playerID)
	}
	drawn := player.drawCards(count)
	if len(drawn) == 0 {
		return nil
	}
	evt := rules.NewEventWithAmount(rules.EventCardDrawn, playerID, "", playerID, len(drawn))
	evt.Description = fmt.Sprintf("%s drew %d card(s)", player.Name, len(drawn))
	g.publish(evt)
	return nil
}

func (g *Game) discardFromHand(playerID string, cardID string) error {
	player, ok := g.Player(playerID)
	if !ok {
		return fmt.Errorf("no player %s", playerID)
	}
	c, found := player.removeFromHand(cardID)
	if !found {
		return fmt.Errorf("card %s is not in %s's hand", cardID, playerID)
	}
	player.Discard = append(player.Discard, c)

	evt := rules.NewEvent(rules.EventCardDiscarded, playerID, c.ID, playerID)
	evt.Cards = []string{c.Name}
	evt.Description = fmt.Sprintf("%s discarded %s", player.Name, c.Name)
	g.publish(evt)
	return nil
}

// flipCoin flips with the game's random source and publishes the
// result. True is heads.
func (g *Game) flipCoin(playerID, sourceID string) bool {
	heads := g.rng.FlipCoin()
	evt := rules.NewEventWithFlag(rules.EventCoinFlipped, playerID, sourceID, playerID, heads)
	if heads {
		evt.Description = "coin flip: heads"
	} else {
		evt.Description = "coin flip: tails"
	}
	g.publish(evt)
	return heads
}

// advancePhase moves the turn ladder one step and publishes the
// change.
func (g *Game) advancePhase() {
	next := g.nextPlayerID()
	before := g.turn.CurrentPhase()
	g.turn.AdvancePhase(next)
	after := g.turn.CurrentPhase()
	if after == before {
		return
	}
	if before == rules.PhaseEndOfTurn {
		// The ladder wrapped into the next turn.
		g.startTurn()
		return
	}
	evt := rules.NewEvent(rules.EventPhaseChanged, "", "", g.turn.ActivePlayer())
	evt.Data = after.String()
	evt.Description = fmt.Sprintf("phase is now %s", after)
	g.publish(evt)
}

// nextPlayerID returns whoever is not currently active.
func (g *Game) nextPlayerID() string {
	active := g.turn.ActivePlayer()
	for _, id := range g.order {
		if id != active {
			return id
		}
	}
	return active
}

// startTurn publishes the start-of-turn events and resets the new
// active player's per-turn flags.
func (g *Game) startTurn() {
	active := g.turn.ActivePlayer()
	if p, ok := g.Player(active); ok {
		p.resetTurnFlags()
	}
	evt := rules.NewEventWithAmount(rules.EventTurnStarted, active, "", active, g.turn.TurnNumber())
	evt.Description = fmt.Sprintf("turn %d: %s", g.turn.TurnNumber(), active)
	g.publish(evt)
}
