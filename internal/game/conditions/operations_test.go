package conditions

import (
	"testing"

	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

func collectEvents(bus *rules.EventBus) *[]rules.Event {
	var events []rules.Event
	bus.Subscribe(func(e rules.Event) {
		events = append(events, e)
	})
	return &events
}

func TestApplyPublishesEvent(t *testing.T) {
	bus := rules.NewEventBus()
	events := collectEvents(bus)
	ops := NewOperations(bus, "game1")
	set := NewSet()

	ops.Apply(set, "mon1", "p2", Poisoned, 3)

	if len(*events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(*events))
	}
	evt := (*events)[0]
	if evt.Type != rules.EventConditionApplied {
		t.Fatalf("expected CONDITION_APPLIED, got %s", evt.Type)
	}
	if evt.TargetID != "mon1" || evt.Data != "POISONED" {
		t.Fatalf("unexpected event payload: %+v", evt)
	}
	if evt.GameID != "game1" {
		t.Fatalf("expected game id set, got %q", evt.GameID)
	}
}

func TestApplyRotationalPublishesRemovalFirst(t *testing.T) {
	bus := rules.NewEventBus()
	events := collectEvents(bus)
	ops := NewOperations(bus, "game1")
	set := NewSet()

	ops.Apply(set, "mon1", "p2", Asleep, 3)
	ops.Apply(set, "mon1", "p2", Paralyzed, 4)

	// apply sleep, then removal of sleep, then apply paralysis
	if len(*events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(*events))
	}
	if (*events)[1].Type != rules.EventConditionRemoved || (*events)[1].Data != "ASLEEP" {
		t.Fatalf("expected ASLEEP removal second, got %+v", (*events)[1])
	}
	if (*events)[2].Type != rules.EventConditionApplied || (*events)[2].Data != "PARALYZED" {
		t.Fatalf("expected PARALYZED application third, got %+v", (*events)[2])
	}
}

func TestCureAll(t *testing.T) {
	bus := rules.NewEventBus()
	events := collectEvents(bus)
	ops := NewOperations(bus, "game1")
	set := NewSet()
	set.Apply(Poisoned, 1)
	set.Apply(Asleep, 1)

	cured := ops.CureAll(set, "mon1", "p2")
	if len(cured) != 2 {
		t.Fatalf("expected 2 cured, got %v", cured)
	}
	if set.Count() != 0 {
		t.Fatal("expected empty set after cure")
	}
	if len(*events) != 2 {
		t.Fatalf("expected 2 removal events, got %d", len(*events))
	}
	for _, evt := range *events {
		if evt.Type != rules.EventConditionRemoved {
			t.Fatalf("expected removal events only, got %s", evt.Type)
		}
	}
}

func TestBetweenTurnsPoisonDamage(t *testing.T) {
	bus := rules.NewEventBus()
	events := collectEvents(bus)
	ops := NewOperations(bus, "game1")
	set := NewSet()
	set.Apply(Poisoned, 1)

	outcome := ops.BetweenTurns(set, "mon1", "p2", false, func() bool { return false })

	if outcome.Damage != 10 {
		t.Fatalf("expected 10 poison damage, got %d", outcome.Damage)
	}
	if !set.Has(Poisoned) {
		t.Fatal("poison persists between turns")
	}
	if len(*events) != 1 || (*events)[0].Type != rules.EventConditionDamage {
		t.Fatalf("expected one CONDITION_DAMAGE event, got %v", *events)
	}
	if (*events)[0].Amount != 10 {
		t.Fatalf("expected amount 10, got %d", (*events)[0].Amount)
	}
}

func TestBetweenTurnsBurnFlip(t *testing.T) {
	ops := NewOperations(rules.NewEventBus(), "game1")

	t.Run("heads cures", func(t *testing.T) {
		set := NewSet()
		set.Apply(Burned, 1)
		outcome := ops.BetweenTurns(set, "mon1", "p2", false, func() bool { return true })
		if outcome.Damage != 20 {
			t.Fatalf("expected 20 burn damage, got %d", outcome.Damage)
		}
		if set.Has(Burned) {
			t.Fatal("heads should cure burn")
		}
		if len(outcome.Flips) != 1 || !outcome.Flips[0].Heads {
			t.Fatalf("expected one heads flip, got %v", outcome.Flips)
		}
	})

	t.Run("tails persists", func(t *testing.T) {
		set := NewSet()
		set.Apply(Burned, 1)
		outcome := ops.BetweenTurns(set, "mon1", "p2", false, func() bool { return false })
		if outcome.Damage != 20 {
			t.Fatalf("expected 20 burn damage, got %d", outcome.Damage)
		}
		if !set.Has(Burned) {
			t.Fatal("tails should keep burn")
		}
	})
}

func TestBetweenTurnsSleepFlip(t *testing.T) {
	ops := NewOperations(rules.NewEventBus(), "game1")

	set := NewSet()
	set.Apply(Asleep, 1)
	outcome := ops.BetweenTurns(set, "mon1", "p2", false, func() bool { return false })
	if set.Has(Asleep) == false {
		t.Fatal("tails should keep the Pokémon asleep")
	}
	if outcome.Damage != 0 {
		t.Fatalf("sleep deals no damage, got %d", outcome.Damage)
	}

	outcome = ops.BetweenTurns(set, "mon1", "p2", false, func() bool { return true })
	if set.Has(Asleep) {
		t.Fatal("heads should wake the Pokémon")
	}
	if len(outcome.Cured) != 1 || outcome.Cured[0] != Asleep {
		t.Fatalf("expected Asleep cured, got %v", outcome.Cured)
	}
}

func TestBetweenTurnsParalysisCure(t *testing.T) {
	ops := NewOperations(rules.NewEventBus(), "game1")

	set := NewSet()
	set.Apply(Paralyzed, 3)

	// Opponent's turn ending: paralysis stays.
	ops.BetweenTurns(set, "mon1", "p2", false, func() bool { return false })
	if !set.Has(Paralyzed) {
		t.Fatal("paralysis should persist through the opponent's turn end")
	}

	// Owner's turn ending: paralysis cures.
	outcome := ops.BetweenTurns(set, "mon1", "p2", true, func() bool { return false })
	if set.Has(Paralyzed) {
		t.Fatal("paralysis should cure at the owner's turn end")
	}
	if len(outcome.Cured) != 1 || outcome.Cured[0] != Paralyzed {
		t.Fatalf("expected Paralyzed cured, got %v", outcome.Cured)
	}
}
