package rules

import (
	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/energy"
)

// Snapshot provides read-only access to the game state needed for rule
// checks. The executor captures one snapshot per action so that every
// rule sees the same state.
type Snapshot interface {
	// GameID returns the game's identifier.
	GameID() string
	// Phase returns the phase currently in progress.
	Phase() Phase
	// TurnNumber returns the 1-based turn number, 0 during setup.
	TurnNumber() int
	// FirstTurn reports whether the first turn of the game is running.
	FirstTurn() bool
	// ActivePlayer returns the ID of the player whose turn it is.
	ActivePlayer() string
	// Finished reports whether the game has ended.
	Finished() bool
	// Ruleset returns the match configuration.
	Ruleset() Ruleset
	// Player finds player info by ID.
	Player(playerID string) (PlayerSnapshot, bool)
	// Opponent finds the other player's info.
	Opponent(playerID string) (PlayerSnapshot, bool)
}

// PlayerSnapshot provides information about one player for rule checks.
type PlayerSnapshot struct {
	ID          string
	Name        string
	Hand        []card.Card
	DeckSize    int
	DiscardSize int
	PrizesLeft  int
	Active      *PokemonSnapshot
	Bench       []PokemonSnapshot

	MulliganCount           int
	DrewThisTurn            bool
	EnergyAttachedThisTurn  int
	SupporterPlayedThisTurn bool
	RetreatedThisTurn       bool
}

// HandCard returns the first hand card with the given ID.
func (p PlayerSnapshot) HandCard(cardID string) (card.Card, bool) {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return c, true
		}
	}
	return card.Card{}, false
}

// Pokemon returns the in-play Pokémon with the given instance ID,
// checking the active slot first, then the bench.
func (p PlayerSnapshot) Pokemon(instanceID string) (PokemonSnapshot, bool) {
	if p.Active != nil && p.Active.InstanceID == instanceID {
		return *p.Active, true
	}
	for _, b := range p.Bench {
		if b.InstanceID == instanceID {
			return b, true
		}
	}
	return PokemonSnapshot{}, false
}

// InPlay reports whether the player has any Pokémon in play.
func (p PlayerSnapshot) InPlay() bool {
	return p.Active != nil || len(p.Bench) > 0
}

// PokemonSnapshot provides information about one in-play Pokémon for
// rule checks.
type PokemonSnapshot struct {
	InstanceID string
	Card       card.Card
	Damage     int
	Attached   energy.Cost
	// Conditions lists the names of active special conditions.
	Conditions []string
	// EnteredThisTurn is set for Pokémon put into play this turn.
	EnteredThisTurn bool
	// EvolvedThisTurn is set when the Pokémon evolved this turn.
	EvolvedThisTurn bool
}

// RemainingHP returns hit points minus damage, never below zero.
func (ps PokemonSnapshot) RemainingHP() int {
	if ps.Card.Pokemon == nil {
		return 0
	}
	hp := ps.Card.Pokemon.HP - ps.Damage
	if hp < 0 {
		return 0
	}
	return hp
}

// HasCondition reports whether the named condition is active.
func (ps PokemonSnapshot) HasCondition(name string) bool {
	for _, c := range ps.Conditions {
		if c == name {
			return true
		}
	}
	return false
}
