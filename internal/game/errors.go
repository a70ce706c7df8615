package game

import (
	"errors"
	"fmt"

	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// SetupErrorKind classifies setup protocol failures.
type SetupErrorKind string

const (
	// SetupDuplicatePlayer means a player ID joined twice.
	SetupDuplicatePlayer SetupErrorKind = "DUPLICATE_PLAYER"
	// SetupTooManyPlayers means a third player tried to join.
	SetupTooManyPlayers SetupErrorKind = "TOO_MANY_PLAYERS"
	// SetupDeckInvalid means the submitted deck failed validation. The
	// wrapped error carries the individual problems.
	SetupDeckInvalid SetupErrorKind = "DECK_INVALID"
	// SetupNoBasicPokemonPossible means a deck contains no Basic
	// Pokémon at all, so redrawing can never produce a legal hand.
	SetupNoBasicPokemonPossible SetupErrorKind = "NO_BASIC_POKEMON_POSSIBLE"
	// SetupTooManyMulligans means the redraw bound was exhausted.
	SetupTooManyMulligans SetupErrorKind = "TOO_MANY_MULLIGANS"
	// SetupOutOfSequence means an operation ran before its ladder step.
	SetupOutOfSequence SetupErrorKind = "OUT_OF_SEQUENCE"
	// SetupIncomplete means Complete was called before every step
	// finished for both players.
	SetupIncomplete SetupErrorKind = "SETUP_INCOMPLETE"
)

// SetupError reports a failure of the pre-game setup protocol.
type SetupError struct {
	Kind    SetupErrorKind
	Message string
	Err     error
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("setup %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("setup %s: %s", e.Kind, e.Message)
}

func (e *SetupError) Unwrap() error { return e.Err }

func newSetupError(kind SetupErrorKind, format string, args ...interface{}) *SetupError {
	return &SetupError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsSetupError reports whether err is a SetupError of the given kind.
func IsSetupError(err error, kind SetupErrorKind) bool {
	var se *SetupError
	return errors.As(err, &se) && se.Kind == kind
}

// RejectionKind classifies why an action was rejected.
type RejectionKind string

const (
	// RejectedRuleViolations means one or more rules flagged the action.
	RejectedRuleViolations RejectionKind = "RULE_VIOLATIONS"
	// RejectedGameOver means the game already finished.
	RejectedGameOver RejectionKind = "GAME_ALREADY_OVER"
	// RejectedEffectLoop means a reaction chain exceeded the depth
	// limit.
	RejectedEffectLoop RejectionKind = "EFFECT_LOOP_DETECTED"
	// RejectedUnknownAction means the action kind is not recognized.
	RejectedUnknownAction RejectionKind = "UNKNOWN_ACTION"
)

// ActionRejected reports that an action was refused without touching
// the game state. Rejections are ordinary results; the client picks a
// different action and tries again.
type ActionRejected struct {
	Kind       RejectionKind
	Violations []rules.Violation
	Message    string
}

func (e *ActionRejected) Error() string {
	switch e.Kind {
	case RejectedRuleViolations:
		return fmt.Sprintf("action rejected: %s", rules.FormatViolations(e.Violations))
	default:
		if e.Message != "" {
			return fmt.Sprintf("action rejected (%s): %s", e.Kind, e.Message)
		}
		return fmt.Sprintf("action rejected (%s)", e.Kind)
	}
}

// HasViolation reports whether the rejection includes a violation from
// the named rule.
func (e *ActionRejected) HasViolation(ruleID string) bool {
	for _, v := range e.Violations {
		if v.Rule == ruleID {
			return true
		}
	}
	return false
}

// IsRejected reports whether err is an ActionRejected of the given kind.
func IsRejected(err error, kind RejectionKind) bool {
	var ar *ActionRejected
	return errors.As(err, &ar) && ar.Kind == kind
}
