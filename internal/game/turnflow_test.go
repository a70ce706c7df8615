package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkmn-engine/arena-server-go/internal/game/energy"
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// TestTurnOpeningDrawAdvancesToMain verifies that a turn starts with
// the mandatory draw and that nothing else is legal before it.
func TestTurnOpeningDrawAdvancesToMain(t *testing.T) {
	h := NewMatchHarness(t, 41)
	require.Equal(t, rules.PhaseBeginningOfTurn, h.Game.Phase())

	active := h.Active()

	// Main-phase actions have to wait for the draw.
	energyCard := h.Give(active.ID, testEnergy(energy.Fire))
	rejected := h.MustReject(rules.Action{
		Kind:       rules.ActionAttachEnergy,
		PlayerID:   active.ID,
		CardID:     energyCard.ID,
		InstanceID: active.Active.InstanceID,
	})
	assert.True(t, rejected.HasViolation("phase-legality"))

	handBefore := len(active.Hand)
	deckBefore := len(active.Deck)
	events := h.Execute(rules.Action{Kind: rules.ActionDrawCard, PlayerID: active.ID})

	require.NotEmpty(t, events)
	assert.Equal(t, rules.EventCardDrawn, events[0].Type)
	assert.Equal(t, 1, events[0].Amount)
	assert.Empty(t, events[0].Cards)
	assert.True(t, HasEvent(events, rules.EventPhaseChanged))
	assert.Equal(t, rules.PhaseMain, h.Game.Phase())
	assert.Len(t, active.Hand, handBefore+1)
	assert.Len(t, active.Deck, deckBefore-1)
}

// TestTurnSecondDrawRejected verifies that drawing twice in one turn
// trips both the phase rule and the draw rule.
func TestTurnSecondDrawRejected(t *testing.T) {
	h := NewMatchHarness(t, 41)
	h.ToMainPhase()

	rejected := h.MustReject(rules.Action{Kind: rules.ActionDrawCard, PlayerID: h.Game.ActivePlayer()})
	assert.True(t, rejected.HasViolation("phase-legality"))
	assert.True(t, rejected.HasViolation("draw"))
}

// TestTurnPassLadder verifies that passing walks Main, Attack, and
// End of Turn, and that the final pass rotates the turn.
func TestTurnPassLadder(t *testing.T) {
	h := NewMatchHarness(t, 41)
	h.ToMainPhase()

	first := h.Game.ActivePlayer()
	second := h.Waiting().ID

	events := h.Execute(rules.Action{Kind: rules.ActionPass, PlayerID: first})
	assert.True(t, HasEvent(events, rules.EventPhaseChanged))
	assert.Equal(t, rules.PhaseAttack, h.Game.Phase())

	h.Execute(rules.Action{Kind: rules.ActionPass, PlayerID: first})
	assert.Equal(t, rules.PhaseEndOfTurn, h.Game.Phase())

	events = h.Execute(rules.Action{Kind: rules.ActionPass, PlayerID: first})
	assert.True(t, HasEvent(events, rules.EventTurnEnded))
	assert.True(t, HasEvent(events, rules.EventTurnStarted))
	assert.Equal(t, rules.PhaseBeginningOfTurn, h.Game.Phase())
	assert.Equal(t, second, h.Game.ActivePlayer())
	assert.Equal(t, 2, h.Game.TurnNumber())
}

// TestTurnEndTurnSkipsRemainingPhases verifies that ending the turn
// from the main phase hands over immediately.
func TestTurnEndTurnSkipsRemainingPhases(t *testing.T) {
	h := NewMatchHarness(t, 41)
	h.ToMainPhase()

	first := h.Game.ActivePlayer()
	second := h.Waiting().ID

	events := h.Execute(rules.Action{Kind: rules.ActionEndTurn, PlayerID: first})

	ended := eventIndex(events, rules.EventTurnEnded)
	started := eventIndex(events, rules.EventTurnStarted)
	require.GreaterOrEqual(t, ended, 0)
	require.GreaterOrEqual(t, started, 0)
	assert.Less(t, ended, started)
	assert.Equal(t, 1, events[ended].Amount)
	assert.Equal(t, 2, events[started].Amount)

	assert.Equal(t, second, h.Game.ActivePlayer())
	assert.Equal(t, rules.PhaseBeginningOfTurn, h.Game.Phase())
}

// TestTurnRotationAlternates verifies that the turn holder alternates
// and the turn number keeps counting.
func TestTurnRotationAlternates(t *testing.T) {
	h := NewMatchHarness(t, 41)

	first := h.Game.ActivePlayer()
	second := h.Waiting().ID

	for turn := 1; turn <= 6; turn++ {
		assert.Equal(t, turn, h.Game.TurnNumber())
		expected := first
		if turn%2 == 0 {
			expected = second
		}
		assert.Equal(t, expected, h.Game.ActivePlayer())
		h.ToMainPhase()
		h.EndTurn()
	}
}

// TestTurnFirstTurnAttackBan verifies that the opening player cannot
// attack on turn one and that the restriction lifts afterwards.
func TestTurnFirstTurnAttackBan(t *testing.T) {
	h := NewMatchHarness(t, 41)
	h.ToMainPhase()

	attacker := h.Active()
	h.Energize(attacker.Active, energy.Fire)

	rejected := h.MustReject(rules.Action{Kind: rules.ActionAttack, PlayerID: attacker.ID})
	assert.True(t, rejected.HasViolation("attack"))

	// The second player's first turn is turn two; attacking is legal.
	h.EndTurn()
	h.ToMainPhase()
	require.Equal(t, 2, h.Game.TurnNumber())

	attacker = h.Active()
	h.Energize(attacker.Active, energy.Fire)
	events := h.Execute(rules.Action{Kind: rules.ActionAttack, PlayerID: attacker.ID})
	assert.True(t, HasEvent(events, rules.EventAttackUsed))
}

// TestTurnFlagsResetOnNewTurn verifies that per-turn allowances come
// back when the turn returns.
func TestTurnFlagsResetOnNewTurn(t *testing.T) {
	h := NewMatchHarness(t, 41)
	h.ToMainPhase()

	p := h.Active()
	first := h.Give(p.ID, testEnergy(energy.Fire))
	h.Execute(rules.Action{
		Kind:       rules.ActionAttachEnergy,
		PlayerID:   p.ID,
		CardID:     first.ID,
		InstanceID: p.Active.InstanceID,
	})

	// The allowance is spent for this turn.
	extra := h.Give(p.ID, testEnergy(energy.Fire))
	rejected := h.MustReject(rules.Action{
		Kind:       rules.ActionAttachEnergy,
		PlayerID:   p.ID,
		CardID:     extra.ID,
		InstanceID: p.Active.InstanceID,
	})
	assert.True(t, rejected.HasViolation("energy-limit"))

	// Hand the turn around the table and back.
	h.EndTurn()
	h.ToMainPhase()
	h.EndTurn()
	require.Equal(t, p.ID, h.Game.ActivePlayer())
	h.ToMainPhase()

	assert.Equal(t, 0, p.EnergyAttachedThisTurn)
	h.Execute(rules.Action{
		Kind:       rules.ActionAttachEnergy,
		PlayerID:   p.ID,
		CardID:     extra.ID,
		InstanceID: p.Active.InstanceID,
	})
	assert.Len(t, p.Active.Attached, 2)
}
