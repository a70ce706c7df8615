package watchers

import (
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// Stats is the analytics summary a watcher set has accumulated for
// one game.
type Stats struct {
	CardsDrawn  map[string]int `json:"cards_drawn"`
	Knockouts   map[string]int `json:"knockouts"`
	Mulligans   map[string]int `json:"mulligans"`
	TotalDamage int            `json:"total_damage"`
}

// Set bundles the standard trackers for one game and feeds them from
// an event bus. The underlying registry notifies watchers in
// registration order.
type Set struct {
	registry *rules.WatcherRegistry

	CardsDrawn *CardsDrawnWatcher
	Knockouts  *KnockoutsWatcher
	Damage     *DamageDealtWatcher
	Mulligans  *MulligansWatcher
}

// NewSet creates the standard watchers and subscribes them to the
// bus. A nil bus gives a set that only sees events passed to Notify.
func NewSet(bus *rules.EventBus) *Set {
	s := &Set{
		registry:   rules.NewWatcherRegistry(),
		CardsDrawn: NewCardsDrawnWatcher(),
		Knockouts:  NewKnockoutsWatcher(),
		Damage:     NewDamageDealtWatcher(),
		Mulligans:  NewMulligansWatcher(),
	}
	s.registry.AddWatcher(s.CardsDrawn)
	s.registry.AddWatcher(s.Knockouts)
	s.registry.AddWatcher(s.Damage)
	s.registry.AddWatcher(s.Mulligans)

	if bus != nil {
		bus.Subscribe(s.registry.NotifyWatchers)
	}
	return s
}

// Notify feeds one event to every watcher in the set.
func (s *Set) Notify(event rules.Event) {
	s.registry.NotifyWatchers(event)
}

// Replay feeds a recorded event log through the set, e.g. to rebuild
// statistics for a game that started before the set was attached.
func (s *Set) Replay(events []rules.Event) {
	for _, evt := range events {
		s.registry.NotifyWatchers(evt)
	}
}

// Registry exposes the underlying watcher registry.
func (s *Set) Registry() *rules.WatcherRegistry {
	return s.registry
}

// Reset clears every watcher in the set.
func (s *Set) Reset() {
	s.registry.ResetWatchers()
}

// Stats summarizes everything the set has seen.
func (s *Set) Stats() Stats {
	return Stats{
		CardsDrawn:  s.CardsDrawn.Counts(),
		Knockouts:   knockoutCounts(s.Knockouts),
		Mulligans:   s.Mulligans.Counts(),
		TotalDamage: s.Damage.GetTotal(),
	}
}

func knockoutCounts(w *KnockoutsWatcher) map[string]int {
	out := make(map[string]int)
	for owner := range w.knockouts {
		out[owner] = len(w.knockouts[owner])
	}
	return out
}
