package game

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/energy"
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// MatchTestHarness builds two-player games in known states and offers
// direct board manipulation for scenario tests.
type MatchTestHarness struct {
	t     *testing.T
	Setup *Setup
	Game  *Game
}

// testAttack builds a plain fixed-damage attack.
func testAttack(name string, damage int, cost ...energy.Type) card.Attack {
	return card.Attack{
		Name:   name,
		Cost:   energy.Cost(cost),
		Damage: damage,
		Mode:   card.DamageFixed,
	}
}

// testBasic builds a Basic Pokémon card for tests.
func testBasic(id, name string, hp int, typ energy.Type, attacks ...card.Attack) card.Card {
	if len(attacks) == 0 {
		attacks = []card.Attack{testAttack("Tackle", 20, energy.Colorless)}
	}
	return card.NewPokemon(id, name, card.PokemonDetail{
		Species:     name,
		HP:          hp,
		Type:        typ,
		Stage:       card.StageBasic,
		RetreatCost: 1,
		Attacks:     attacks,
	})
}

// testStage1 builds an evolution card for tests.
func testStage1(id, name, evolvesFrom string, hp int, typ energy.Type, attacks ...card.Attack) card.Card {
	if len(attacks) == 0 {
		attacks = []card.Attack{testAttack("Slash", 40, energy.Colorless)}
	}
	return card.NewPokemon(id, name, card.PokemonDetail{
		Species:     name,
		HP:          hp,
		Type:        typ,
		Stage:       card.StageStage1,
		EvolvesFrom: evolvesFrom,
		RetreatCost: 1,
		Attacks:     attacks,
	})
}

// testEnergy builds a basic energy card for tests.
func testEnergy(typ energy.Type) card.Card {
	id := fmt.Sprintf("energy-%s", typ)
	name := fmt.Sprintf("%s Energy", typ)
	return card.NewEnergy(id, name, typ, true)
}

// testTrainer builds a trainer card wired to a registry effect.
func testTrainer(id, name string, trainerType card.TrainerType, effect string) card.Card {
	return card.NewTrainer(id, name, card.TrainerDetail{
		TrainerType: trainerType,
		Effect:      effect,
	})
}

// harnessDeck builds a legal 60-card deck: four copies each of ten
// Basic Pokémon plus twenty Fire energy. Every attack costs one
// Colorless so any draw can attack.
func harnessDeck() []card.Card {
	deck := make([]card.Card, 0, 60)
	for i := 0; i < 10; i++ {
		c := testBasic(
			fmt.Sprintf("mon-%d", i),
			fmt.Sprintf("Cinder Cub %d", i),
			60,
			energy.Fire,
		)
		for j := 0; j < 4; j++ {
			deck = append(deck, c)
		}
	}
	for i := 0; i < 20; i++ {
		deck = append(deck, testEnergy(energy.Fire))
	}
	return deck
}

// NewMatchSetup starts a setup with both players joined and a seeded
// shuffle, ready for Begin.
func NewMatchSetup(t *testing.T, seed int64) *Setup {
	t.Helper()

	s := NewSetup("game-"+uuid.NewString()[:8], rules.DefaultRuleset(), NewRand(seed), nil, zaptest.NewLogger(t))
	if err := s.AddPlayer("p1", "Alice", harnessDeck()); err != nil {
		t.Fatalf("failed to add p1: %v", err)
	}
	if err := s.AddPlayer("p2", "Bob", harnessDeck()); err != nil {
		t.Fatalf("failed to add p2: %v", err)
	}
	return s
}

// NewMatchHarness runs the whole setup ladder with default placements
// and returns a harness around the running game.
func NewMatchHarness(t *testing.T, seed int64) *MatchTestHarness {
	t.Helper()

	s := NewMatchSetup(t, seed)
	if err := s.Begin(); err != nil {
		t.Fatalf("failed to begin setup: %v", err)
	}
	if err := s.ResolveMulligans(); err != nil {
		t.Fatalf("failed to resolve mulligans: %v", err)
	}
	if err := s.AutoPlace(); err != nil {
		t.Fatalf("failed to auto-place: %v", err)
	}
	if err := s.PlacePrizes(); err != nil {
		t.Fatalf("failed to place prizes: %v", err)
	}
	g, err := s.Complete(nil, nil)
	if err != nil {
		t.Fatalf("failed to complete setup: %v", err)
	}
	return &MatchTestHarness{t: t, Setup: s, Game: g}
}

// Player returns a player by ID, failing the test when absent.
func (h *MatchTestHarness) Player(playerID string) *Player {
	h.t.Helper()
	p, ok := h.Game.Player(playerID)
	if !ok {
		h.t.Fatalf("no player %s in game", playerID)
	}
	return p
}

// Active returns the current turn holder.
func (h *MatchTestHarness) Active() *Player {
	h.t.Helper()
	return h.Player(h.Game.ActivePlayer())
}

// Waiting returns the player whose turn it is not.
func (h *MatchTestHarness) Waiting() *Player {
	h.t.Helper()
	opp, ok := h.Game.Opponent(h.Game.ActivePlayer())
	if !ok {
		h.t.Fatalf("no opponent for %s", h.Game.ActivePlayer())
	}
	return opp
}

// Give puts a card straight into a player's hand.
func (h *MatchTestHarness) Give(playerID string, c card.Card) card.Card {
	h.t.Helper()
	p := h.Player(playerID)
	p.Hand = append(p.Hand, c)
	return c
}

// PlaceActive puts a Pokémon straight into the active spot, replacing
// whatever was there.
func (h *MatchTestHarness) PlaceActive(playerID string, c card.Card) *PokemonInPlay {
	h.t.Helper()
	p := h.Player(playerID)
	pkm := newPokemonInPlay(h.Game.newInstanceID(), c, 0)
	p.Active = pkm
	return pkm
}

// PlaceBench puts a Pokémon straight onto the bench.
func (h *MatchTestHarness) PlaceBench(playerID string, c card.Card) *PokemonInPlay {
	h.t.Helper()
	p := h.Player(playerID)
	pkm := newPokemonInPlay(h.Game.newInstanceID(), c, 0)
	p.Bench = append(p.Bench, pkm)
	return pkm
}

// Energize attaches energy cards directly to a board Pokémon.
func (h *MatchTestHarness) Energize(pkm *PokemonInPlay, types ...energy.Type) {
	for _, typ := range types {
		pkm.Attached = append(pkm.Attached, typ)
		pkm.EnergyCards = append(pkm.EnergyCards, testEnergy(typ))
	}
}

// Execute submits an action and fails the test when it is rejected.
func (h *MatchTestHarness) Execute(act rules.Action) []rules.Event {
	h.t.Helper()
	events, err := h.Game.Execute(act)
	if err != nil {
		h.t.Fatalf("action %s by %s rejected: %v", act.Kind, act.PlayerID, err)
	}
	return events
}

// MustReject submits an action and fails the test when it is accepted.
func (h *MatchTestHarness) MustReject(act rules.Action) *ActionRejected {
	h.t.Helper()
	_, err := h.Game.Execute(act)
	if err == nil {
		h.t.Fatalf("action %s by %s was accepted, expected rejection", act.Kind, act.PlayerID)
	}
	var rejected *ActionRejected
	if !errors.As(err, &rejected) {
		h.t.Fatalf("expected *ActionRejected, got %T: %v", err, err)
	}
	return rejected
}

// ToMainPhase performs the mandatory draw so the turn holder can act.
func (h *MatchTestHarness) ToMainPhase() {
	h.t.Helper()
	if h.Game.Phase() != rules.PhaseBeginningOfTurn {
		return
	}
	h.Execute(rules.Action{Kind: rules.ActionDrawCard, PlayerID: h.Game.ActivePlayer()})
}

// EndTurn hands the turn to the opponent.
func (h *MatchTestHarness) EndTurn() {
	h.t.Helper()
	h.Execute(rules.Action{Kind: rules.ActionEndTurn, PlayerID: h.Game.ActivePlayer()})
}

// AdvancePastFirstTurn moves to the second player's first turn, after
// which attacking is legal.
func (h *MatchTestHarness) AdvancePastFirstTurn() {
	h.t.Helper()
	h.ToMainPhase()
	h.EndTurn()
	h.ToMainPhase()
}

// EventTypes extracts the event type sequence.
func EventTypes(events []rules.Event) []rules.EventType {
	types := make([]rules.EventType, len(events))
	for i, evt := range events {
		types[i] = evt.Type
	}
	return types
}

// HasEvent reports whether the slice contains an event of the type.
func HasEvent(events []rules.Event, eventType rules.EventType) bool {
	for _, evt := range events {
		if evt.Type == eventType {
			return true
		}
	}
	return false
}
