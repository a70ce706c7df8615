package watchers

import (
	"testing"

	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

func TestCardsDrawnWatcher(t *testing.T) {
	watcher := NewCardsDrawnWatcher()

	if watcher.ConditionMet() {
		t.Fatal("fresh watcher should not have its condition met")
	}
	if watcher.GetCount("p1") != 0 {
		t.Fatalf("expected 0 draws, got %d", watcher.GetCount("p1"))
	}

	// Two turn draws for p1, one three-card effect draw for p2.
	watcher.Watch(rules.NewEventWithAmount(rules.EventCardDrawn, "p1", "", "p1", 1))
	watcher.Watch(rules.NewEventWithAmount(rules.EventCardDrawn, "p1", "", "p1", 1))
	watcher.Watch(rules.NewEventWithAmount(rules.EventCardDrawn, "p2", "", "p2", 3))

	if !watcher.ConditionMet() {
		t.Fatal("condition should be met after a draw")
	}
	if got := watcher.GetCount("p1"); got != 2 {
		t.Fatalf("expected 2 draws for p1, got %d", got)
	}
	if got := watcher.GetCount("p2"); got != 3 {
		t.Fatalf("expected 3 draws for p2, got %d", got)
	}

	// Events without an amount still count one card.
	watcher.Watch(rules.NewEvent(rules.EventCardDrawn, "p1", "", "p1"))
	if got := watcher.GetCount("p1"); got != 3 {
		t.Fatalf("expected 3 draws for p1, got %d", got)
	}

	// Unrelated events are ignored.
	watcher.Watch(rules.NewEvent(rules.EventTurnStarted, "p1", "", "p1"))
	if got := watcher.GetCount("p1"); got != 3 {
		t.Fatalf("unrelated event changed the count to %d", got)
	}

	watcher.Reset()
	if watcher.ConditionMet() || watcher.GetCount("p1") != 0 {
		t.Fatal("reset should clear all state")
	}
}

func TestKnockoutsWatcher(t *testing.T) {
	watcher := NewKnockoutsWatcher()

	watcher.Watch(rules.NewEvent(rules.EventPokemonKnockedOut, "pkm-1", "", "p1"))
	watcher.Watch(rules.NewEvent(rules.EventPokemonKnockedOut, "pkm-4", "", "p1"))
	watcher.Watch(rules.NewEvent(rules.EventPokemonKnockedOut, "pkm-7", "", "p2"))

	if got := watcher.GetCount("p1"); got != 2 {
		t.Fatalf("expected 2 knockouts for p1, got %d", got)
	}
	if got := watcher.GetCount("p2"); got != 1 {
		t.Fatalf("expected 1 knockout for p2, got %d", got)
	}
	if got := watcher.GetTotal(); got != 3 {
		t.Fatalf("expected 3 knockouts total, got %d", got)
	}

	ids := watcher.GetKnockouts("p1")
	if len(ids) != 2 || ids[0] != "pkm-1" || ids[1] != "pkm-4" {
		t.Fatalf("knockout order wrong: %v", ids)
	}

	// An event with no instance is ignored.
	watcher.Watch(rules.NewEvent(rules.EventPokemonKnockedOut, "", "", "p2"))
	if got := watcher.GetTotal(); got != 3 {
		t.Fatalf("instance-less event counted, total %d", got)
	}
}

func TestDamageDealtWatcher(t *testing.T) {
	watcher := NewDamageDealtWatcher()

	// An attack, a poison tick on the same target, and an attack on
	// another target.
	watcher.Watch(rules.NewEventWithAmount(rules.EventDamageDealt, "pkm-1", "pkm-9", "p2", 20))
	watcher.Watch(rules.NewEventWithAmount(rules.EventConditionDamage, "pkm-1", "pkm-1", "p1", 10))
	watcher.Watch(rules.NewEventWithAmount(rules.EventDamageDealt, "pkm-2", "pkm-9", "p2", 30))

	if got := watcher.GetAmountTaken("pkm-1"); got != 30 {
		t.Fatalf("expected pkm-1 to have taken 30, got %d", got)
	}
	if got := watcher.GetAmountTaken("pkm-2"); got != 30 {
		t.Fatalf("expected pkm-2 to have taken 30, got %d", got)
	}
	if got := watcher.GetTotal(); got != 60 {
		t.Fatalf("expected 60 damage total, got %d", got)
	}

	// Zero-damage events (fully resisted hits) are not tallied.
	watcher.Watch(rules.NewEventWithAmount(rules.EventDamageDealt, "pkm-1", "pkm-9", "p2", 0))
	if got := watcher.GetTotal(); got != 60 {
		t.Fatalf("zero-damage event counted, total %d", got)
	}
}

func TestMulligansWatcher(t *testing.T) {
	watcher := NewMulligansWatcher()

	watcher.Watch(rules.NewEventWithAmount(rules.EventMulliganDeclared, "p1", "", "p1", 1))
	watcher.Watch(rules.NewEventWithAmount(rules.EventMulliganDeclared, "p1", "", "p1", 2))
	watcher.Watch(rules.NewEventWithAmount(rules.EventMulliganDeclared, "p2", "", "p2", 1))

	if got := watcher.GetCount("p1"); got != 2 {
		t.Fatalf("expected 2 mulligans for p1, got %d", got)
	}
	if got := watcher.GetCount("p2"); got != 1 {
		t.Fatalf("expected 1 mulligan for p2, got %d", got)
	}
}

func TestWatcherCopyIsIndependent(t *testing.T) {
	original := NewCardsDrawnWatcher()
	original.Watch(rules.NewEventWithAmount(rules.EventCardDrawn, "p1", "", "p1", 2))

	cp, ok := original.Copy().(*CardsDrawnWatcher)
	if !ok {
		t.Fatal("copy returned the wrong type")
	}
	if got := cp.GetCount("p1"); got != 2 {
		t.Fatalf("copy lost state, got %d", got)
	}

	original.Watch(rules.NewEventWithAmount(rules.EventCardDrawn, "p1", "", "p1", 1))
	if got := cp.GetCount("p1"); got != 2 {
		t.Fatalf("copy shares state with original, got %d", got)
	}
	if got := original.GetCount("p1"); got != 3 {
		t.Fatalf("original lost its own update, got %d", got)
	}
}

func TestSetCollectsFromBus(t *testing.T) {
	bus := rules.NewEventBus()
	set := NewSet(bus)

	bus.Publish(rules.NewEventWithAmount(rules.EventMulliganDeclared, "p2", "", "p2", 1))
	bus.Publish(rules.NewEventWithAmount(rules.EventCardDrawn, "p1", "", "p1", 1))
	bus.Publish(rules.NewEventWithAmount(rules.EventCardDrawn, "p2", "", "p2", 1))
	bus.Publish(rules.NewEventWithAmount(rules.EventDamageDealt, "pkm-3", "pkm-1", "p1", 40))
	bus.Publish(rules.NewEvent(rules.EventPokemonKnockedOut, "pkm-3", "", "p2"))

	stats := set.Stats()
	if stats.CardsDrawn["p1"] != 1 || stats.CardsDrawn["p2"] != 1 {
		t.Fatalf("draw counts wrong: %v", stats.CardsDrawn)
	}
	if stats.Knockouts["p2"] != 1 {
		t.Fatalf("knockout counts wrong: %v", stats.Knockouts)
	}
	if stats.Mulligans["p2"] != 1 {
		t.Fatalf("mulligan counts wrong: %v", stats.Mulligans)
	}
	if stats.TotalDamage != 40 {
		t.Fatalf("expected 40 total damage, got %d", stats.TotalDamage)
	}

	set.Reset()
	stats = set.Stats()
	if len(stats.CardsDrawn) != 0 || stats.TotalDamage != 0 {
		t.Fatalf("reset left state behind: %+v", stats)
	}
}

func TestSetReplayRebuildsStats(t *testing.T) {
	events := []rules.Event{
		rules.NewEventWithAmount(rules.EventCardDrawn, "p1", "", "p1", 1),
		rules.NewEventWithAmount(rules.EventCardDrawn, "p1", "", "p1", 1),
		rules.NewEventWithAmount(rules.EventDamageDealt, "pkm-2", "pkm-1", "p1", 50),
	}

	set := NewSet(nil)
	set.Replay(events)

	stats := set.Stats()
	if stats.CardsDrawn["p1"] != 2 {
		t.Fatalf("expected 2 draws after replay, got %d", stats.CardsDrawn["p1"])
	}
	if stats.TotalDamage != 50 {
		t.Fatalf("expected 50 damage after replay, got %d", stats.TotalDamage)
	}
}
