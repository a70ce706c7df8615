package conditions

// Condition represents one active special condition.
type Condition struct {
	Kind Kind
	// AppliedTurn is the turn number the condition was applied on.
	AppliedTurn int
}

// Set manages the special conditions on a single Pokémon.
type Set struct {
	conditions map[Kind]Condition
}

// NewSet creates an empty condition set.
func NewSet() *Set {
	return &Set{conditions: make(map[Kind]Condition)}
}

// Apply puts a condition on the Pokémon. Applying a rotational
// condition (Asleep, Confused, Paralyzed) replaces whichever
// rotational condition was already present; the replaced kinds are
// returned so the caller can report them.
func (s *Set) Apply(kind Kind, turn int) []Kind {
	if !kind.Valid() {
		return nil
	}
	var replaced []Kind
	if kind.Rotational() {
		for _, other := range AllKinds() {
			if other != kind && other.Rotational() {
				if _, ok := s.conditions[other]; ok {
					delete(s.conditions, other)
					replaced = append(replaced, other)
				}
			}
		}
	}
	s.conditions[kind] = Condition{Kind: kind, AppliedTurn: turn}
	return replaced
}

// Remove clears the condition. Returns true if it was present.
func (s *Set) Remove(kind Kind) bool {
	if _, ok := s.conditions[kind]; !ok {
		return false
	}
	delete(s.conditions, kind)
	return true
}

// Has reports whether the condition is active.
func (s *Set) Has(kind Kind) bool {
	_, ok := s.conditions[kind]
	return ok
}

// Get returns the condition entry for the kind.
func (s *Set) Get(kind Kind) (Condition, bool) {
	c, ok := s.conditions[kind]
	return c, ok
}

// List returns the active conditions in the stable kind order.
func (s *Set) List() []Condition {
	var out []Condition
	for _, kind := range AllKinds() {
		if c, ok := s.conditions[kind]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Names returns the active condition names in stable order.
func (s *Set) Names() []string {
	var out []string
	for _, c := range s.List() {
		out = append(out, c.Kind.String())
	}
	return out
}

// Count returns the number of active conditions.
func (s *Set) Count() int {
	return len(s.conditions)
}

// Clear removes every condition and returns the kinds that were
// active, in stable order.
func (s *Set) Clear() []Kind {
	var cleared []Kind
	for _, c := range s.List() {
		cleared = append(cleared, c.Kind)
	}
	s.conditions = make(map[Kind]Condition)
	return cleared
}

// Copy creates a deep copy of the set.
func (s *Set) Copy() *Set {
	out := NewSet()
	for kind, c := range s.conditions {
		out.conditions[kind] = c
	}
	return out
}
