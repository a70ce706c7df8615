package game

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
	"github.com/pkmn-engine/arena-server-go/internal/game/watchers"
)

// NullEngine is a stub arena that records player traffic without
// running a real game. Transport code tests against it.
type NullEngine struct {
	logger *zap.Logger

	mu      sync.RWMutex
	games   map[string]*nullGameState
	handler NotificationHandler
}

type nullGameState struct {
	Ruleset rules.Ruleset
	Players []string
	Started bool
	Actions []rules.Action
}

// NewNullEngine creates a new null engine.
func NewNullEngine(logger *zap.Logger) *NullEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NullEngine{
		logger: logger,
		games:  make(map[string]*nullGameState),
	}
}

// CreateGame registers an empty game record.
func (n *NullEngine) CreateGame(gameID string, ruleset rules.Ruleset, seed int64) (string, error) {
	if gameID == "" {
		gameID = uuid.NewString()
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.games[gameID]; exists {
		return "", fmt.Errorf("game %s already exists", gameID)
	}
	n.games[gameID] = &nullGameState{
		Ruleset: ruleset,
		Actions: make([]rules.Action, 0, 32),
	}

	n.logger.Info("null engine created game",
		zap.String("game_id", gameID),
		zap.Int64("seed", seed),
	)
	return gameID, nil
}

// JoinGame records the player.
func (n *NullEngine) JoinGame(gameID, playerID, _ string, _ []card.Card) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	state, ok := n.games[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	state.Players = append(state.Players, playerID)
	return nil
}

// StartGame marks the game started.
func (n *NullEngine) StartGame(gameID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	state, ok := n.games[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	state.Started = true

	n.logger.Info("null engine started game",
		zap.String("game_id", gameID),
		zap.Strings("players", state.Players),
	)
	return nil
}

// ChooseActive accepts any placement.
func (n *NullEngine) ChooseActive(gameID, _, _ string) error {
	return n.requireGame(gameID)
}

// FillBench accepts any placement.
func (n *NullEngine) FillBench(gameID, _ string, _ []string) error {
	return n.requireGame(gameID)
}

// AutoSetup accepts the request.
func (n *NullEngine) AutoSetup(gameID string) error {
	return n.requireGame(gameID)
}

func (n *NullEngine) requireGame(gameID string) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if _, ok := n.games[gameID]; !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	return nil
}

// SubmitAction records the action for later inspection.
func (n *NullEngine) SubmitAction(gameID string, act rules.Action) ([]rules.Event, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	state, ok := n.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s not found", gameID)
	}

	state.Actions = append(state.Actions, act)
	if len(state.Actions) > 200 {
		state.Actions = state.Actions[len(state.Actions)-200:]
	}

	n.logger.Debug("null engine recorded action",
		zap.String("game_id", gameID),
		zap.String("player_id", act.PlayerID),
		zap.String("kind", string(act.Kind)),
	)
	return []rules.Event{}, nil
}

// View returns an empty view carrying just the identifiers.
func (n *NullEngine) View(gameID, _ string) (*GameView, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	state, ok := n.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s not found", gameID)
	}

	view := &GameView{
		GameID:  gameID,
		Outcome: OutcomeNotStarted.String(),
		Players: make([]PlayerView, 0, len(state.Players)),
	}
	for _, id := range state.Players {
		view.Players = append(view.Players, PlayerView{PlayerID: id, Name: id})
	}
	return view, nil
}

// History returns an empty log.
func (n *NullEngine) History(gameID string) ([]rules.Event, error) {
	if err := n.requireGame(gameID); err != nil {
		return nil, err
	}
	return []rules.Event{}, nil
}

// GameStats reports empty counters; the null engine tracks no play.
func (n *NullEngine) GameStats(gameID string) (watchers.Stats, error) {
	if err := n.requireGame(gameID); err != nil {
		return watchers.Stats{}, err
	}
	return watchers.Stats{}, nil
}

// SetNotificationHandler stores the handler; the null engine never
// calls it.
func (n *NullEngine) SetNotificationHandler(handler NotificationHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handler = handler
}

// CleanupGame removes the game record.
func (n *NullEngine) CleanupGame(gameID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.games[gameID]; !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	delete(n.games, gameID)

	n.logger.Info("null engine cleaned up game", zap.String("game_id", gameID))
	return nil
}

// RecordedActions returns a copy of the actions submitted to a game.
func (n *NullEngine) RecordedActions(gameID string) []rules.Action {
	n.mu.RLock()
	defer n.mu.RUnlock()

	state, ok := n.games[gameID]
	if !ok {
		return nil
	}
	actions := make([]rules.Action, len(state.Actions))
	copy(actions, state.Actions)
	return actions
}
