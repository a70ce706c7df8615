package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// TestNullEngineRecordsTraffic verifies that submitted actions are
// captured in order without running a game.
func TestNullEngineRecordsTraffic(t *testing.T) {
	n := NewNullEngine(zaptest.NewLogger(t))

	gameID, err := n.CreateGame("null-1", rules.DefaultRuleset(), 42)
	require.NoError(t, err)
	assert.Equal(t, "null-1", gameID)

	require.NoError(t, n.JoinGame(gameID, "p1", "Alice", nil))
	require.NoError(t, n.JoinGame(gameID, "p2", "Bob", nil))
	require.NoError(t, n.StartGame(gameID))

	submitted := []rules.Action{
		{PlayerID: "p1", Kind: rules.ActionDrawCard},
		{PlayerID: "p1", Kind: rules.ActionAttachEnergy, CardID: "energy-FIRE", InstanceID: "pkm-1"},
		{PlayerID: "p1", Kind: rules.ActionEndTurn},
	}
	for _, act := range submitted {
		events, err := n.SubmitAction(gameID, act)
		require.NoError(t, err)
		assert.Empty(t, events)
	}

	recorded := n.RecordedActions(gameID)
	require.Len(t, recorded, 3)
	assert.Equal(t, rules.ActionDrawCard, recorded[0].Kind)
	assert.Equal(t, "energy-FIRE", recorded[1].CardID)
	assert.Equal(t, rules.ActionEndTurn, recorded[2].Kind)

	// The returned slice is a copy.
	recorded[0].PlayerID = "tampered"
	assert.Equal(t, "p1", n.RecordedActions(gameID)[0].PlayerID)
}

// TestNullEngineView verifies the stub view carries identifiers only.
func TestNullEngineView(t *testing.T) {
	n := NewNullEngine(zaptest.NewLogger(t))

	gameID, err := n.CreateGame("null-view", rules.DefaultRuleset(), 0)
	require.NoError(t, err)
	require.NoError(t, n.JoinGame(gameID, "p1", "Alice", nil))
	require.NoError(t, n.JoinGame(gameID, "p2", "Bob", nil))

	view, err := n.View(gameID, "p1")
	require.NoError(t, err)
	assert.Equal(t, gameID, view.GameID)
	assert.Equal(t, "NOT_STARTED", view.Outcome)
	require.Len(t, view.Players, 2)
	assert.Equal(t, "p1", view.Players[0].PlayerID)

	history, err := n.History(gameID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

// TestNullEngineGeneratesID verifies ID generation and duplicate
// rejection.
func TestNullEngineGeneratesID(t *testing.T) {
	n := NewNullEngine(zaptest.NewLogger(t))

	first, err := n.CreateGame("", rules.DefaultRuleset(), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := n.CreateGame("", rules.DefaultRuleset(), 0)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = n.CreateGame(first, rules.DefaultRuleset(), 0)
	assert.Error(t, err)
}

// TestNullEngineActionCap verifies that the recording keeps only the
// most recent actions.
func TestNullEngineActionCap(t *testing.T) {
	n := NewNullEngine(zaptest.NewLogger(t))

	gameID, err := n.CreateGame("null-cap", rules.DefaultRuleset(), 0)
	require.NoError(t, err)

	for i := 0; i < 205; i++ {
		_, err := n.SubmitAction(gameID, rules.Action{
			PlayerID: "p1",
			Kind:     rules.ActionPass,
			CardID:   fmt.Sprintf("seq-%d", i),
		})
		require.NoError(t, err)
	}

	recorded := n.RecordedActions(gameID)
	require.Len(t, recorded, 200)
	assert.Equal(t, "seq-5", recorded[0].CardID)
	assert.Equal(t, "seq-204", recorded[199].CardID)
}

// TestNullEngineSetupAcceptsAnything verifies the setup stubs succeed
// for any input on a known game.
func TestNullEngineSetupAcceptsAnything(t *testing.T) {
	n := NewNullEngine(zaptest.NewLogger(t))

	gameID, err := n.CreateGame("null-setup", rules.DefaultRuleset(), 0)
	require.NoError(t, err)

	assert.NoError(t, n.ChooseActive(gameID, "anyone", "any-card"))
	assert.NoError(t, n.FillBench(gameID, "anyone", []string{"a", "b", "c"}))
	assert.NoError(t, n.AutoSetup(gameID))
}

// TestNullEngineUnknownGame verifies the not-found error paths.
func TestNullEngineUnknownGame(t *testing.T) {
	n := NewNullEngine(zaptest.NewLogger(t))

	assert.Error(t, n.JoinGame("ghost", "p1", "Alice", nil))
	assert.Error(t, n.StartGame("ghost"))
	assert.Error(t, n.ChooseActive("ghost", "p1", "c"))
	assert.Error(t, n.FillBench("ghost", "p1", nil))
	assert.Error(t, n.AutoSetup("ghost"))
	assert.Error(t, n.CleanupGame("ghost"))

	_, err := n.SubmitAction("ghost", rules.Action{PlayerID: "p1", Kind: rules.ActionPass})
	assert.Error(t, err)
	_, err = n.View("ghost", "p1")
	assert.Error(t, err)
	_, err = n.History("ghost")
	assert.Error(t, err)
	assert.Nil(t, n.RecordedActions("ghost"))
}

// TestNullEngineCleanup verifies game removal.
func TestNullEngineCleanup(t *testing.T) {
	n := NewNullEngine(zaptest.NewLogger(t))

	gameID, err := n.CreateGame("null-sweep", rules.DefaultRuleset(), 0)
	require.NoError(t, err)

	require.NoError(t, n.CleanupGame(gameID))
	assert.Error(t, n.CleanupGame(gameID))
	_, err = n.View(gameID, "p1")
	assert.Error(t, err)
}
