package rules

import "strings"

// Violation describes one way an action breaks the rules.
type Violation struct {
	// Rule is the ID of the rule that produced the violation.
	Rule string
	// Reason is a human-readable explanation.
	Reason string
	// Details carries structured context for clients.
	Details map[string]string
}

func (v Violation) String() string {
	return v.Rule + ": " + v.Reason
}

// FormatViolations renders a violation list for error messages.
func FormatViolations(violations []Violation) string {
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}

// Rule checks one aspect of action legality. Implementations must not
// mutate anything; they see the state only through the snapshot.
type Rule interface {
	// ID returns a stable identifier used in violation reports.
	ID() string
	// Check returns every violation this rule finds, or nil.
	Check(snap Snapshot, action Action) []Violation
}

// Engine validates actions against a fixed rule list. Engines are
// immutable; With derives extended engines without touching the
// original, so one engine instance can safely serve many games.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with exactly the given rules.
func NewEngine(ruleList ...Rule) *Engine {
	rules := make([]Rule, len(ruleList))
	copy(rules, ruleList)
	return &Engine{rules: rules}
}

// StandardEngine creates an engine with the standard match rules.
func StandardEngine() *Engine {
	return NewEngine(
		TurnOrderRule{},
		PhaseRule{},
		HandContainsRule{},
		BenchRule{},
		EvolutionRule{},
		EnergyLimitRule{},
		TrainerRule{},
		AttackRule{},
		RetreatRule{},
		DrawRule{},
		HandLimitRule{},
	)
}

// With returns a new engine containing this engine's rules plus the
// extra ones. The receiver is unchanged.
func (e *Engine) With(extra ...Rule) *Engine {
	rules := make([]Rule, 0, len(e.rules)+len(extra))
	rules = append(rules, e.rules...)
	rules = append(rules, extra...)
	return &Engine{rules: rules}
}

// Rules returns the engine's rule IDs in evaluation order.
func (e *Engine) Rules() []string {
	ids := make([]string, len(e.rules))
	for i, r := range e.rules {
		ids[i] = r.ID()
	}
	return ids
}

// Validate runs every rule against the action and returns the
// concatenation of all violations found. Evaluation never stops at the
// first failure, so the caller sees the complete list of problems.
func (e *Engine) Validate(snap Snapshot, action Action) []Violation {
	var violations []Violation
	for _, rule := range e.rules {
		violations = append(violations, rule.Check(snap, action)...)
	}
	return violations
}
