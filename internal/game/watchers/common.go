// Package watchers provides per-game trackers that derive statistics
// from the event stream. Watchers observe published events and never
// mutate game state; the arena reads them for match analytics.
package watchers

import (
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// CardsDrawnWatcher tracks how many cards each player has drawn.
type CardsDrawnWatcher struct {
	*rules.BaseWatcher
	cardsDrawn map[string]int // playerID -> count
}

// NewCardsDrawnWatcher creates a cards drawn watcher.
func NewCardsDrawnWatcher() *CardsDrawnWatcher {
	w := &CardsDrawnWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		cardsDrawn:  make(map[string]int),
	}
	w.SetKey("CardsDrawnWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *CardsDrawnWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCardDrawn {
		return
	}
	playerID := event.PlayerID
	if playerID == "" {
		playerID = event.Controller
	}
	if playerID == "" {
		return
	}
	count := event.Amount
	if count <= 0 {
		count = 1
	}
	w.cardsDrawn[playerID] += count
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsDrawnWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.cardsDrawn = make(map[string]int)
}

// GetCount returns the number of cards drawn by a player.
func (w *CardsDrawnWatcher) GetCount(playerID string) int {
	return w.cardsDrawn[playerID]
}

// Counts returns a copy of the per-player draw counts.
func (w *CardsDrawnWatcher) Counts() map[string]int {
	return copyCounts(w.cardsDrawn)
}

// Copy creates an independent copy of this watcher.
func (w *CardsDrawnWatcher) Copy() rules.Watcher {
	cp := NewCardsDrawnWatcher()
	cp.SetControllerID(w.GetControllerID())
	cp.SetSourceID(w.GetSourceID())
	cp.SetCondition(w.ConditionMet())
	cp.cardsDrawn = copyCounts(w.cardsDrawn)
	return cp
}

// KnockoutsWatcher tracks knocked out Pokémon per owner.
type KnockoutsWatcher struct {
	*rules.BaseWatcher
	knockouts map[string][]string // owner playerID -> KO'd instance IDs
}

// NewKnockoutsWatcher creates a knockouts watcher.
func NewKnockoutsWatcher() *KnockoutsWatcher {
	w := &KnockoutsWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		knockouts:   make(map[string][]string),
	}
	w.SetKey("KnockoutsWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *KnockoutsWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventPokemonKnockedOut {
		return
	}
	ownerID := event.PlayerID
	if ownerID == "" {
		ownerID = event.Controller
	}
	if ownerID == "" {
		return
	}
	instanceID := event.TargetID
	if instanceID == "" {
		return
	}
	w.knockouts[ownerID] = append(w.knockouts[ownerID], instanceID)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *KnockoutsWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.knockouts = make(map[string][]string)
}

// GetKnockouts returns the KO'd instance IDs for one owner, in order.
func (w *KnockoutsWatcher) GetKnockouts(ownerID string) []string {
	return w.knockouts[ownerID]
}

// GetCount returns how many of a player's Pokémon have been knocked
// out.
func (w *KnockoutsWatcher) GetCount(ownerID string) int {
	return len(w.knockouts[ownerID])
}

// GetTotal returns the number of knockouts in the game so far.
func (w *KnockoutsWatcher) GetTotal() int {
	total := 0
	for _, ids := range w.knockouts {
		total += len(ids)
	}
	return total
}

// Copy creates an independent copy of this watcher.
func (w *KnockoutsWatcher) Copy() rules.Watcher {
	cp := NewKnockoutsWatcher()
	cp.SetControllerID(w.GetControllerID())
	cp.SetSourceID(w.GetSourceID())
	cp.SetCondition(w.ConditionMet())
	cp.knockouts = make(map[string][]string, len(w.knockouts))
	for k, v := range w.knockouts {
		cp.knockouts[k] = append([]string(nil), v...)
	}
	return cp
}

// DamageDealtWatcher tracks damage from attacks, effects, and special
// condition checkups. Damage is tallied against the Pokémon that took
// it, keyed by instance ID.
type DamageDealtWatcher struct {
	*rules.BaseWatcher
	byInstance map[string]int // damaged instance ID -> total
	total      int
}

// NewDamageDealtWatcher creates a damage watcher.
func NewDamageDealtWatcher() *DamageDealtWatcher {
	w := &DamageDealtWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		byInstance:  make(map[string]int),
	}
	w.SetKey("DamageDealtWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *DamageDealtWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventDamageDealt && event.Type != rules.EventConditionDamage {
		return
	}
	if event.Amount <= 0 || event.TargetID == "" {
		return
	}
	w.byInstance[event.TargetID] += event.Amount
	w.total += event.Amount
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *DamageDealtWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.byInstance = make(map[string]int)
	w.total = 0
}

// GetAmountTaken returns the total damage one Pokémon has taken.
func (w *DamageDealtWatcher) GetAmountTaken(instanceID string) int {
	return w.byInstance[instanceID]
}

// GetTotal returns all damage dealt in the game so far.
func (w *DamageDealtWatcher) GetTotal() int {
	return w.total
}

// Copy creates an independent copy of this watcher.
func (w *DamageDealtWatcher) Copy() rules.Watcher {
	cp := NewDamageDealtWatcher()
	cp.SetControllerID(w.GetControllerID())
	cp.SetSourceID(w.GetSourceID())
	cp.SetCondition(w.ConditionMet())
	cp.byInstance = copyCounts(w.byInstance)
	cp.total = w.total
	return cp
}

// MulligansWatcher tracks mulligan declarations per player during
// setup.
type MulligansWatcher struct {
	*rules.BaseWatcher
	mulligans map[string]int // playerID -> declarations
}

// NewMulligansWatcher creates a mulligans watcher.
func NewMulligansWatcher() *MulligansWatcher {
	w := &MulligansWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		mulligans:   make(map[string]int),
	}
	w.SetKey("MulligansWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *MulligansWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventMulliganDeclared {
		return
	}
	playerID := event.PlayerID
	if playerID == "" {
		playerID = event.Controller
	}
	if playerID == "" {
		return
	}
	w.mulligans[playerID]++
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *MulligansWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.mulligans = make(map[string]int)
}

// GetCount returns how many times a player mulliganed.
func (w *MulligansWatcher) GetCount(playerID string) int {
	return w.mulligans[playerID]
}

// Counts returns a copy of the per-player mulligan counts.
func (w *MulligansWatcher) Counts() map[string]int {
	return copyCounts(w.mulligans)
}

// Copy creates an independent copy of this watcher.
func (w *MulligansWatcher) Copy() rules.Watcher {
	cp := NewMulligansWatcher()
	cp.SetControllerID(w.GetControllerID())
	cp.SetSourceID(w.GetSourceID())
	cp.SetCondition(w.ConditionMet())
	cp.mulligans = copyCounts(w.mulligans)
	return cp
}

func copyCounts(src map[string]int) map[string]int {
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
