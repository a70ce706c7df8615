package rules

import (
	"fmt"
	"strings"
)

// Phase represents the broad phases of a game turn.
type Phase int

const (
	// PhaseSetup covers everything before the first turn begins.
	PhaseSetup Phase = iota
	PhaseBeginningOfTurn
	PhaseMain
	PhaseAttack
	PhaseEndOfTurn
	// PhaseGameOver is entered once and never left.
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseSetup:           "SETUP",
	PhaseBeginningOfTurn: "BEGINNING_OF_TURN",
	PhaseMain:            "MAIN",
	PhaseAttack:          "ATTACK",
	PhaseEndOfTurn:       "END_OF_TURN",
	PhaseGameOver:        "GAME_OVER",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// ParsePhase converts a phase name back into its Phase value.
func ParsePhase(s string) (Phase, error) {
	for phase, name := range phaseNames {
		if name == strings.ToUpper(strings.TrimSpace(s)) {
			return phase, nil
		}
	}
	return PhaseSetup, fmt.Errorf("unknown phase: %q", s)
}

// turnSequence is the phase order within a single turn. Setup and
// GameOver sit outside the loop.
var turnSequence = []Phase{
	PhaseBeginningOfTurn,
	PhaseMain,
	PhaseAttack,
	PhaseEndOfTurn,
}

// TurnManager tracks the active player and turn progression.
type TurnManager struct {
	orderIndex   int
	turnNumber   int
	activePlayer string
	inSetup      bool
	gameOver     bool
}

// NewTurnManager creates a turn manager still in setup; the first turn
// begins when Start is called.
func NewTurnManager() *TurnManager {
	return &TurnManager{inSetup: true}
}

// Start leaves setup and begins turn 1 with the given active player.
func (tm *TurnManager) Start(activePlayer string) {
	tm.inSetup = false
	tm.orderIndex = 0
	tm.turnNumber = 1
	tm.activePlayer = strings.TrimSpace(activePlayer)
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	if tm.gameOver {
		return PhaseGameOver
	}
	if tm.inSetup {
		return PhaseSetup
	}
	return turnSequence[tm.orderIndex]
}

// TurnNumber returns the current turn number (1-based, 0 during setup).
func (tm *TurnManager) TurnNumber() int {
	if tm.inSetup {
		return 0
	}
	return tm.turnNumber
}

// ActivePlayer returns the player who currently has the turn.
func (tm *TurnManager) ActivePlayer() string {
	return tm.activePlayer
}

// FirstTurn reports whether the very first turn of the game is in progress.
func (tm *TurnManager) FirstTurn() bool {
	return !tm.inSetup && tm.turnNumber == 1
}

// AdvancePhase advances to the next phase in the turn structure.
// When the end of the structure is reached, the turn number is
// incremented and the active player is rotated to nextActivePlayer.
func (tm *TurnManager) AdvancePhase(nextActivePlayer string) Phase {
	if tm.gameOver || tm.inSetup {
		return tm.CurrentPhase()
	}
	tm.orderIndex++
	if tm.orderIndex >= len(turnSequence) {
		tm.rotate(nextActivePlayer)
	}
	return tm.CurrentPhase()
}

// EndTurn jumps directly to the next player's turn regardless of the
// current phase. End-of-turn bookkeeping (condition ticks, flag
// resets) is the caller's responsibility.
func (tm *TurnManager) EndTurn(nextActivePlayer string) Phase {
	if tm.gameOver || tm.inSetup {
		return tm.CurrentPhase()
	}
	tm.rotate(nextActivePlayer)
	return tm.CurrentPhase()
}

func (tm *TurnManager) rotate(nextActivePlayer string) {
	tm.orderIndex = 0
	tm.turnNumber++
	if next := strings.TrimSpace(nextActivePlayer); next != "" {
		tm.activePlayer = next
	}
}

// Finish moves the manager into GameOver. Further advances are no-ops.
func (tm *TurnManager) Finish() {
	tm.gameOver = true
}

// Finished reports whether the manager has entered GameOver.
func (tm *TurnManager) Finished() bool {
	return tm.gameOver
}
