package conditions

import (
	"fmt"
	"time"

	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// Operations applies condition changes and emits the matching events.
type Operations struct {
	eventBus *rules.EventBus
	gameID   string
}

// NewOperations creates a new Operations instance bound to one game.
func NewOperations(eventBus *rules.EventBus, gameID string) *Operations {
	return &Operations{
		eventBus: eventBus,
		gameID:   gameID,
	}
}

// Apply puts a condition on a Pokémon and emits the appropriate
// events, including removals for rotational conditions it replaces.
func (o *Operations) Apply(set *Set, instanceID, controllerID string, kind Kind, turn int) {
	if set == nil || !kind.Valid() {
		return
	}
	replaced := set.Apply(kind, turn)
	for _, old := range replaced {
		o.publish(rules.EventConditionRemoved, instanceID, controllerID, old,
			fmt.Sprintf("%s replaced by %s on %s", old, kind, instanceID))
	}
	o.publish(rules.EventConditionApplied, instanceID, controllerID, kind,
		fmt.Sprintf("%s is now %s", instanceID, kind))
}

// Remove clears a condition from a Pokémon and emits an event if it
// was present.
func (o *Operations) Remove(set *Set, instanceID, controllerID string, kind Kind) bool {
	if set == nil || !set.Remove(kind) {
		return false
	}
	o.publish(rules.EventConditionRemoved, instanceID, controllerID, kind,
		fmt.Sprintf("%s is no longer %s", instanceID, kind))
	return true
}

// CureAll clears every condition, emitting one removal event per
// cured kind. Used when a Pokémon retreats, evolves, or is benched.
func (o *Operations) CureAll(set *Set, instanceID, controllerID string) []Kind {
	if set == nil {
		return nil
	}
	cured := set.Clear()
	for _, kind := range cured {
		o.publish(rules.EventConditionRemoved, instanceID, controllerID, kind,
			fmt.Sprintf("%s is no longer %s", instanceID, kind))
	}
	return cured
}

// FlipResult records one between-turns coin flip.
type FlipResult struct {
	Kind  Kind
	Heads bool
}

// TickOutcome summarizes the between-turns processing of one Pokémon.
type TickOutcome struct {
	// Damage is the total condition damage to apply.
	Damage int
	// Cured lists conditions that ended this tick.
	Cured []Kind
	// Flips lists the coin flips taken, in order.
	Flips []FlipResult
}

// BetweenTurns processes condition upkeep for one Pokémon at the end
// of a turn: poison and burn damage, the burn and sleep wake-up flips,
// and the paralysis cure at the end of the owner's own turn. Condition
// damage events are emitted here; applying the damage to the Pokémon
// is the caller's job.
func (o *Operations) BetweenTurns(set *Set, instanceID, controllerID string, ownerTurnEnding bool, flip func() bool) TickOutcome {
	var outcome TickOutcome
	if set == nil {
		return outcome
	}

	if set.Has(Poisoned) {
		dmg := Poisoned.TickDamage()
		outcome.Damage += dmg
		o.publishDamage(instanceID, controllerID, Poisoned, dmg)
	}

	if set.Has(Burned) {
		dmg := Burned.TickDamage()
		outcome.Damage += dmg
		o.publishDamage(instanceID, controllerID, Burned, dmg)
		heads := flip()
		outcome.Flips = append(outcome.Flips, FlipResult{Kind: Burned, Heads: heads})
		if heads {
			if o.Remove(set, instanceID, controllerID, Burned) {
				outcome.Cured = append(outcome.Cured, Burned)
			}
		}
	}

	if set.Has(Asleep) {
		heads := flip()
		outcome.Flips = append(outcome.Flips, FlipResult{Kind: Asleep, Heads: heads})
		if heads {
			if o.Remove(set, instanceID, controllerID, Asleep) {
				outcome.Cured = append(outcome.Cured, Asleep)
			}
		}
	}

	if ownerTurnEnding && set.Has(Paralyzed) {
		if o.Remove(set, instanceID, controllerID, Paralyzed) {
			outcome.Cured = append(outcome.Cured, Paralyzed)
		}
	}

	return outcome
}

func (o *Operations) publish(eventType rules.EventType, instanceID, controllerID string, kind Kind, description string) {
	if o.eventBus == nil {
		return
	}
	now := time.Now()
	o.eventBus.Publish(rules.Event{
		Type:       eventType,
		ID:         fmt.Sprintf("event-condition-%s-%d", instanceID, now.UnixNano()),
		GameID:     o.gameID,
		TargetID:   instanceID,
		SourceID:   instanceID,
		Controller: controllerID,
		PlayerID:   controllerID,
		Data:       kind.String(),
		Timestamp:  now,
		Metadata: map[string]string{
			"condition": kind.String(),
		},
		Description: description,
	})
}

func (o *Operations) publishDamage(instanceID, controllerID string, kind Kind, amount int) {
	if o.eventBus == nil {
		return
	}
	now := time.Now()
	o.eventBus.Publish(rules.Event{
		Type:       rules.EventConditionDamage,
		ID:         fmt.Sprintf("event-condition-damage-%s-%d", instanceID, now.UnixNano()),
		GameID:     o.gameID,
		TargetID:   instanceID,
		SourceID:   instanceID,
		Controller: controllerID,
		PlayerID:   controllerID,
		Amount:     amount,
		Data:       kind.String(),
		Timestamp:  now,
		Metadata: map[string]string{
			"condition": kind.String(),
		},
		Description: fmt.Sprintf("%s takes %d damage from %s", instanceID, amount, kind),
	})
}
