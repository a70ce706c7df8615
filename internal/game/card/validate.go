package card

import (
	"fmt"
	"sort"
	"strings"
)

// ProblemKind classifies a single deck legality problem.
type ProblemKind string

const (
	ProblemSizeOutOfRange      ProblemKind = "SIZE_OUT_OF_RANGE"
	ProblemCopyLimitExceeded   ProblemKind = "COPY_LIMIT_EXCEEDED"
	ProblemMissingBasicPokemon ProblemKind = "MISSING_BASIC_POKEMON"
	ProblemBadCard             ProblemKind = "BAD_CARD"
)

// Problem is one reason a deck is not legal for play.
type Problem struct {
	Kind   ProblemKind
	Detail string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Kind, p.Detail)
}

// ValidationError reports every problem found in a deck, not just the
// first one, so a player can fix the whole list in one pass.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return "deck invalid: " + strings.Join(parts, "; ")
}

// Has reports whether the error contains a problem of the given kind.
func (e *ValidationError) Has(kind ProblemKind) bool {
	for _, p := range e.Problems {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

// ValidationOptions control the legality limits applied by Validate.
type ValidationOptions struct {
	// DeckSize is the exact number of cards a deck must contain.
	DeckSize int
	// CopyLimit is the maximum number of copies of one card identity.
	// Basic energy cards are exempt.
	CopyLimit int
}

// DefaultValidationOptions returns the standard constructed limits.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{DeckSize: 60, CopyLimit: 4}
}

// Validate checks a deck against the given limits and returns a
// *ValidationError listing every problem, or nil if the deck is legal.
func Validate(deck Deck, opts ValidationOptions) error {
	var problems []Problem

	if len(deck) != opts.DeckSize {
		problems = append(problems, Problem{
			Kind:   ProblemSizeOutOfRange,
			Detail: fmt.Sprintf("deck has %d cards, need exactly %d", len(deck), opts.DeckSize),
		})
	}

	counts := map[string]int{}
	names := map[string]string{}
	hasBasic := false
	for _, c := range deck {
		if err := c.Validate(); err != nil {
			problems = append(problems, Problem{Kind: ProblemBadCard, Detail: err.Error()})
			continue
		}
		if !c.IsBasicEnergy() {
			counts[c.ID]++
			names[c.ID] = c.Name
		}
		if c.IsBasicPokemon() {
			hasBasic = true
		}
	}

	over := make([]string, 0)
	for id, n := range counts {
		if n > opts.CopyLimit {
			over = append(over, fmt.Sprintf("%s x%d (limit %d)", names[id], n, opts.CopyLimit))
		}
	}
	sort.Strings(over)
	for _, detail := range over {
		problems = append(problems, Problem{Kind: ProblemCopyLimitExceeded, Detail: detail})
	}

	if !hasBasic {
		problems = append(problems, Problem{
			Kind:   ProblemMissingBasicPokemon,
			Detail: "deck contains no Basic Pokémon",
		})
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
