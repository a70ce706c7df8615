package effects

import (
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// State is the constrained mutation surface an effect sees. The game
// implements it with the same primitives the action executor uses, so
// every change an effect makes publishes its events in causal order.
type State interface {
	// DealDamage applies damage to an in-play Pokémon. Knockout
	// processing happens after the current action completes.
	DealDamage(instanceID string, amount int, sourceID string) error
	// Heal removes up to amount damage from an in-play Pokémon.
	Heal(instanceID string, amount int) error
	// ApplyCondition puts a special condition on an in-play Pokémon.
	ApplyCondition(instanceID string, condition string) error
	// RemoveCondition clears a special condition.
	RemoveCondition(instanceID string, condition string) error
	// DrawCards moves cards from a player's deck to their hand.
	DrawCards(playerID string, count int) error
	// DiscardFromHand moves a named card from hand to discard.
	DiscardFromHand(playerID string, cardID string) error
	// FlipCoin flips a coin with the game's random source and
	// publishes the result. True is heads.
	FlipCoin(playerID string) bool
	// Enqueue schedules a follow-up to run after the current action.
	Enqueue(item FollowUp)
}

// Context carries everything an effect implementation may need.
type Context struct {
	GameID string
	// Event is the event that triggered this effect, zero for effects
	// resolved directly from an action.
	Event rules.Event
	// SourceID is the card instance the effect originates from.
	SourceID string
	// Controller is the player who controls the effect.
	Controller string
	// TargetID is the primary target instance, when one exists.
	TargetID string
	// Amount is the effect's numeric parameter (damage, card count).
	Amount int
	// Metadata carries extra parameters from the card script.
	Metadata map[string]string
	// State is the mutation surface.
	State State
}

// Meta returns a metadata value, or the fallback when absent.
func (ctx *Context) Meta(key, fallback string) string {
	if ctx.Metadata == nil {
		return fallback
	}
	if v, ok := ctx.Metadata[key]; ok && v != "" {
		return v
	}
	return fallback
}
