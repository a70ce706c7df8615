package effects

import (
	"testing"

	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

func TestTriggerManagerFiresInRegistrationOrder(t *testing.T) {
	tm := NewTriggerManager()

	tm.Register(Trigger{
		ID:        "second-registered",
		EventType: rules.EventPokemonKnockedOut,
		Build: func(e rules.Event) FollowUp {
			return FollowUp{Description: "first"}
		},
	})
	tm.Register(Trigger{
		ID:        "later",
		EventType: rules.EventPokemonKnockedOut,
		Build: func(e rules.Event) FollowUp {
			return FollowUp{Description: "second"}
		},
	})

	items := tm.Handle(rules.NewEvent(rules.EventPokemonKnockedOut, "mon1", "mon2", "p2"))
	if len(items) != 2 {
		t.Fatalf("expected 2 follow-ups, got %d", len(items))
	}
	if items[0].Description != "first" || items[1].Description != "second" {
		t.Fatalf("unexpected order: %v, %v", items[0].Description, items[1].Description)
	}
}

func TestTriggerManagerFiltersByType(t *testing.T) {
	tm := NewTriggerManager()
	tm.Register(Trigger{
		EventType: rules.EventCardDrawn,
		Build: func(e rules.Event) FollowUp {
			return FollowUp{Description: "draw reaction"}
		},
	})

	if items := tm.Handle(rules.NewEvent(rules.EventTurnEnded, "p1", "", "p1")); items != nil {
		t.Fatalf("expected no follow-ups for other type, got %v", items)
	}
	if items := tm.Handle(rules.NewEvent(rules.EventCardDrawn, "p1", "", "p1")); len(items) != 1 {
		t.Fatalf("expected 1 follow-up, got %d", len(items))
	}
}

func TestTriggerManagerCondition(t *testing.T) {
	tm := NewTriggerManager()
	tm.Register(Trigger{
		EventType: rules.EventDamageDealt,
		Condition: func(e rules.Event) bool { return e.Amount >= 50 },
		Build: func(e rules.Event) FollowUp {
			return FollowUp{Description: "big hit"}
		},
	})

	small := rules.NewEventWithAmount(rules.EventDamageDealt, "mon1", "mon2", "p2", 20)
	if items := tm.Handle(small); items != nil {
		t.Fatalf("condition should filter small hits, got %v", items)
	}

	big := rules.NewEventWithAmount(rules.EventDamageDealt, "mon1", "mon2", "p2", 60)
	if items := tm.Handle(big); len(items) != 1 {
		t.Fatalf("expected 1 follow-up for big hit, got %d", len(items))
	}
}

func TestTriggerManagerOnce(t *testing.T) {
	tm := NewTriggerManager()
	tm.Register(Trigger{
		EventType: rules.EventPrizeTaken,
		Once:      true,
		Build: func(e rules.Event) FollowUp {
			return FollowUp{Description: "one shot"}
		},
	})

	evt := rules.NewEvent(rules.EventPrizeTaken, "p1", "", "p1")
	if items := tm.Handle(evt); len(items) != 1 {
		t.Fatalf("expected 1 follow-up on first fire, got %d", len(items))
	}
	if items := tm.Handle(evt); items != nil {
		t.Fatalf("once trigger must not fire twice, got %v", items)
	}
	if tm.Count() != 0 {
		t.Fatalf("expected trigger removed, still %d registered", tm.Count())
	}
}

func TestTriggerManagerFillsDefaults(t *testing.T) {
	tm := NewTriggerManager()
	tm.Register(Trigger{
		SourceID:   "card1",
		Controller: "p1",
		EventType:  rules.EventPokemonKnockedOut,
		Build: func(e rules.Event) FollowUp {
			return FollowUp{Description: "react"}
		},
	})

	items := tm.Handle(rules.NewEvent(rules.EventPokemonKnockedOut, "mon1", "mon2", "p2"))
	if len(items) != 1 {
		t.Fatalf("expected 1 follow-up, got %d", len(items))
	}
	item := items[0]
	if item.ID == "" {
		t.Fatal("expected generated follow-up ID")
	}
	if item.Kind != FollowUpTriggered {
		t.Fatalf("expected triggered kind, got %s", item.Kind)
	}
	if item.SourceID != "card1" || item.Controller != "p1" {
		t.Fatalf("expected source/controller from trigger, got %s/%s", item.SourceID, item.Controller)
	}
}

func TestTriggerManagerUnregister(t *testing.T) {
	tm := NewTriggerManager()
	id := tm.Register(Trigger{
		EventType: rules.EventCardDrawn,
		Build: func(e rules.Event) FollowUp {
			return FollowUp{}
		},
	})

	tm.Unregister(id)
	if tm.Count() != 0 {
		t.Fatalf("expected 0 triggers, got %d", tm.Count())
	}
	if items := tm.Handle(rules.NewEvent(rules.EventCardDrawn, "p1", "", "p1")); items != nil {
		t.Fatalf("unregistered trigger fired: %v", items)
	}
}
