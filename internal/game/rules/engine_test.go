package rules

import "testing"

type stubRule struct {
	id  string
	out []Violation
}

func (r stubRule) ID() string { return r.id }

func (r stubRule) Check(Snapshot, Action) []Violation { return r.out }

func TestEngineValidateRunsAllRules(t *testing.T) {
	engine := NewEngine(
		stubRule{id: "first", out: []Violation{{Rule: "first", Reason: "nope"}}},
		stubRule{id: "clean"},
		stubRule{id: "second", out: []Violation{{Rule: "second", Reason: "also nope"}}},
	)

	violations := engine.Validate(nil, Action{Kind: ActionPass})
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %d: %v", len(violations), violations)
	}
	// Evaluation order follows rule order.
	if violations[0].Rule != "first" || violations[1].Rule != "second" {
		t.Fatalf("unexpected violation order: %v", violations)
	}
}

func TestEngineWithDoesNotMutateOriginal(t *testing.T) {
	base := NewEngine(stubRule{id: "base", out: []Violation{{Rule: "base", Reason: "x"}}})
	extended := base.With(stubRule{id: "extra", out: []Violation{{Rule: "extra", Reason: "y"}}})

	if got := len(base.Validate(nil, Action{})); got != 1 {
		t.Fatalf("base engine should still report 1 violation, got %d", got)
	}
	if got := len(extended.Validate(nil, Action{})); got != 2 {
		t.Fatalf("extended engine should report 2 violations, got %d", got)
	}
	if len(base.Rules()) != 1 {
		t.Fatalf("base engine rule list changed: %v", base.Rules())
	}
	if len(extended.Rules()) != 2 {
		t.Fatalf("extended engine should list 2 rules: %v", extended.Rules())
	}
}

func TestStandardEngineRules(t *testing.T) {
	engine := StandardEngine()
	ids := engine.Rules()

	want := map[string]bool{
		"turn-order":     false,
		"phase-legality": false,
		"hand-contains":  false,
		"bench":          false,
		"evolution":      false,
		"energy-limit":   false,
		"trainer":        false,
		"attack":         false,
		"retreat":        false,
		"draw":           false,
		"hand-limit":     false,
	}
	for _, id := range ids {
		if _, ok := want[id]; !ok {
			t.Fatalf("unexpected rule %q", id)
		}
		want[id] = true
	}
	for id, seen := range want {
		if !seen {
			t.Fatalf("standard engine missing rule %q", id)
		}
	}
}

func TestFormatViolations(t *testing.T) {
	out := FormatViolations([]Violation{
		{Rule: "a", Reason: "one"},
		{Rule: "b", Reason: "two"},
	})
	if out != "a: one; b: two" {
		t.Fatalf("unexpected format: %q", out)
	}
}
