package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkmn-engine/arena-server-go/internal/game/effects"
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// TestWinReasonPrecedence verifies the reporting order when several
// conditions hold at once: prizes beat an empty board, which beats a
// deck-out.
func TestWinReasonPrecedence(t *testing.T) {
	h := NewMatchHarness(t, 61)
	p := h.Active()
	opp := h.Waiting()

	assert.Equal(t, "", h.Game.winReasonFor(p))

	h.Game.deckedOut = opp.ID
	assert.Equal(t, "opponent deck ran out", h.Game.winReasonFor(p))

	opp.Active = nil
	opp.Bench = nil
	assert.Equal(t, "opponent has no Pokémon in play", h.Game.winReasonFor(p))

	p.Prizes = nil
	assert.Equal(t, "all prizes taken", h.Game.winReasonFor(p))
}

// TestSimultaneousWinFavorsTurnHolder verifies that when both sides
// satisfy a win condition in the same moment, the player whose turn it
// is takes the game.
func TestSimultaneousWinFavorsTurnHolder(t *testing.T) {
	h := NewMatchHarness(t, 61)
	holder := h.Active()
	other := h.Waiting()

	holder.Prizes = nil
	other.Prizes = nil
	h.Game.checkWinConditions()

	assert.Equal(t, OutcomeFinished, h.Game.Outcome())
	assert.Equal(t, holder.ID, h.Game.Winner())
	assert.Equal(t, "all prizes taken", h.Game.WinReason())
}

// TestFinishIsIdempotent verifies that a game finishes exactly once.
func TestFinishIsIdempotent(t *testing.T) {
	h := NewMatchHarness(t, 61)
	first := h.Active()
	second := h.Waiting()

	h.Game.finish(first.ID, "concession")
	h.Game.finish(second.ID, "all prizes taken")

	assert.Equal(t, first.ID, h.Game.Winner())
	assert.Equal(t, "concession", h.Game.WinReason())
	assert.Equal(t, 1, countEvents(h.Game.History(), rules.EventGameEnded))
	assert.Equal(t, rules.PhaseGameOver, h.Game.Phase())
}

// TestFinishDropsPendingFollowUps verifies that queued reactions die
// with the game.
func TestFinishDropsPendingFollowUps(t *testing.T) {
	h := NewMatchHarness(t, 61)

	ran := false
	h.Game.followUps.Enqueue(effects.FollowUp{
		Description: "late reaction",
		Run:         func() error { ran = true; return nil },
	})
	h.Game.finish(h.Active().ID, "concession")

	assert.True(t, h.Game.followUps.IsEmpty())
	assert.False(t, ran)
}

// TestGameEndedEventCarriesResult verifies the shape of the final
// event.
func TestGameEndedEventCarriesResult(t *testing.T) {
	h := NewMatchHarness(t, 61)
	winner := h.Waiting()

	h.Game.finish(winner.ID, "concession")

	history := h.Game.History()
	idx := eventIndex(history, rules.EventGameEnded)
	require.GreaterOrEqual(t, idx, 0)
	evt := history[idx]
	assert.Equal(t, winner.ID, evt.PlayerID)
	assert.Equal(t, "concession", evt.Metadata["reason"])
	assert.Contains(t, evt.Description, "won: concession")
}
