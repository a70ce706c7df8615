package rules

import (
	"testing"
)

// drawWatcher flags its condition once its controller draws a card.
type drawWatcher struct {
	*BaseWatcher
	draws int
}

func newDrawWatcher(key, controllerID string) *drawWatcher {
	w := &drawWatcher{BaseWatcher: NewBaseWatcher(WatcherScopePlayer)}
	w.SetKey(key)
	w.SetControllerID(controllerID)
	return w
}

func (w *drawWatcher) Watch(event Event) {
	if event.Type != EventCardDrawn || event.PlayerID != w.GetControllerID() {
		return
	}
	w.draws++
	w.SetCondition(true)
}

func (w *drawWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.draws = 0
}

func (w *drawWatcher) Copy() Watcher {
	cp := newDrawWatcher(w.GetKey(), w.GetControllerID())
	cp.draws = w.draws
	cp.SetCondition(w.ConditionMet())
	return cp
}

func TestWatcherRegistry(t *testing.T) {
	registry := NewWatcherRegistry()
	watcher := newDrawWatcher("p1_draws", "player1")
	registry.AddWatcher(watcher)

	if registry.GetWatcher("p1_draws") == nil {
		t.Fatal("expected watcher to be retrievable by key")
	}
	if n := len(registry.GetWatchersByScope(WatcherScopePlayer)); n != 1 {
		t.Fatalf("expected 1 player watcher, got %d", n)
	}
	if n := len(registry.GetWatchersByScope(WatcherScopeGame)); n != 0 {
		t.Fatalf("expected 0 game watchers, got %d", n)
	}

	// Opponent's draw must not trip the condition
	registry.NotifyWatchers(NewEvent(EventCardDrawn, "player2", "", "player2"))
	if watcher.ConditionMet() {
		t.Fatal("condition should not be met for another player's draw")
	}

	registry.NotifyWatchers(NewEvent(EventCardDrawn, "player1", "", "player1"))
	if !watcher.ConditionMet() {
		t.Fatal("condition should be met after the controller draws")
	}
	if watcher.draws != 1 {
		t.Fatalf("expected 1 draw, got %d", watcher.draws)
	}

	registry.ResetWatchers()
	if watcher.ConditionMet() {
		t.Fatal("condition should clear on reset")
	}
	if watcher.draws != 0 {
		t.Fatalf("expected draw count 0 after reset, got %d", watcher.draws)
	}

	registry.RemoveWatcher("p1_draws")
	if registry.GetWatcher("p1_draws") != nil {
		t.Fatal("expected watcher to be gone after removal")
	}
	if n := len(registry.GetAllWatchers()); n != 0 {
		t.Fatalf("expected empty registry, got %d watchers", n)
	}
}

func TestWatcherRegistryIgnoresKeyless(t *testing.T) {
	registry := NewWatcherRegistry()

	keyless := &drawWatcher{BaseWatcher: NewBaseWatcher(WatcherScopePlayer)}
	registry.AddWatcher(keyless)
	registry.AddWatcher(nil)

	if n := len(registry.GetAllWatchers()); n != 0 {
		t.Fatalf("expected keyless and nil watchers to be rejected, got %d", n)
	}
}

func TestWatcherRegistryOrder(t *testing.T) {
	registry := NewWatcherRegistry()
	first := newDrawWatcher("first", "player1")
	second := newDrawWatcher("second", "player1")
	third := newDrawWatcher("third", "player2")
	registry.AddWatcher(first)
	registry.AddWatcher(second)
	registry.AddWatcher(third)

	all := registry.GetAllWatchers()
	if len(all) != 3 {
		t.Fatalf("expected 3 watchers, got %d", len(all))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got := all[i].GetKey(); got != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got)
		}
	}

	// Re-adding under an existing key replaces in place
	replacement := newDrawWatcher("second", "player2")
	registry.AddWatcher(replacement)

	all = registry.GetAllWatchers()
	if len(all) != 3 {
		t.Fatalf("expected 3 watchers after replacement, got %d", len(all))
	}
	if all[1] != replacement {
		t.Fatal("expected the replacement to keep the original position")
	}

	registry.RemoveWatcher("first")
	all = registry.GetAllWatchers()
	if len(all) != 2 || all[0].GetKey() != "second" || all[1].GetKey() != "third" {
		t.Fatal("expected removal to preserve the order of the remaining watchers")
	}
}

func TestWatcherScopeString(t *testing.T) {
	cases := []struct {
		scope WatcherScope
		want  string
	}{
		{WatcherScopeGame, "GAME"},
		{WatcherScopePlayer, "PLAYER"},
		{WatcherScopeCard, "CARD"},
		{WatcherScope(99), "UNKNOWN"},
	}
	for _, tc := range cases {
		if got := tc.scope.String(); got != tc.want {
			t.Errorf("expected %s, got %s", tc.want, got)
		}
	}
}

func TestBaseWatcher(t *testing.T) {
	bw := NewBaseWatcher(WatcherScopeCard)
	bw.SetKey("mon-1_damage")
	bw.SetControllerID("player1")
	bw.SetSourceID("mon-1")

	if bw.GetKey() != "mon-1_damage" {
		t.Fatalf("unexpected key %s", bw.GetKey())
	}
	if bw.GetScope() != WatcherScopeCard {
		t.Fatalf("unexpected scope %v", bw.GetScope())
	}
	if bw.GetControllerID() != "player1" || bw.GetSourceID() != "mon-1" {
		t.Fatal("owner identity not recorded")
	}

	if bw.ConditionMet() {
		t.Fatal("condition should start false")
	}
	bw.SetCondition(true)
	if !bw.ConditionMet() {
		t.Fatal("condition should hold after SetCondition")
	}
	bw.Reset()
	if bw.ConditionMet() {
		t.Fatal("condition should clear on Reset")
	}
}

func TestWatcherRegistryWithEventBus(t *testing.T) {
	registry := NewWatcherRegistry()
	bus := NewEventBus()
	bus.Subscribe(registry.NotifyWatchers)

	watcher := newDrawWatcher("p1_draws", "player1")
	registry.AddWatcher(watcher)

	bus.Publish(NewEvent(EventCardDrawn, "player1", "", "player1"))
	bus.Publish(NewEvent(EventCardDrawn, "player1", "", "player1"))
	bus.Publish(NewEvent(EventCardDrawn, "player2", "", "player2"))

	if watcher.draws != 2 {
		t.Fatalf("expected 2 draws for player1, got %d", watcher.draws)
	}
	if !watcher.ConditionMet() {
		t.Fatal("condition should be met after draws")
	}

	cp := watcher.Copy()
	if cp == watcher {
		t.Fatal("Copy should return an independent watcher")
	}
	if !cp.ConditionMet() {
		t.Fatal("copy should carry the condition")
	}

	registry.ResetWatchers()
	if watcher.ConditionMet() {
		t.Fatal("original should clear on reset")
	}
	if !cp.ConditionMet() {
		t.Fatal("copy should be unaffected by the registry reset")
	}
}
