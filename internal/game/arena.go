package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/effects"
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
	"github.com/pkmn-engine/arena-server-go/internal/game/watchers"
)

// Notification is a push update about a game, delivered to whatever
// transport is registered (websocket hub, test recorder).
type Notification struct {
	Type      string
	GameID    string
	PlayerID  string
	Timestamp time.Time
	Data      map[string]interface{}
}

// Notification types emitted by the arena.
const (
	NotifyGameCreated  = "GAME_CREATED"
	NotifyPlayerJoined = "PLAYER_JOINED"
	NotifySetupUpdate  = "SETUP_UPDATE"
	NotifyGameStarted  = "GAME_STARTED"
	NotifyGameUpdate   = "GAME_UPDATE"
	NotifyGameOver     = "GAME_OVER"
)

// NotificationHandler receives arena notifications. Handlers are
// invoked on their own goroutine and may call back into the arena.
type NotificationHandler func(notification Notification)

// match is one table: the setup ladder and, once setup completes, the
// running game. Access goes through mu; a single game is logically
// single-threaded.
type match struct {
	mu        sync.Mutex
	setup     *Setup
	game      *Game
	stats     *watchers.Set
	seed      int64
	createdAt time.Time
}

// Arena hosts concurrent games. Each match serializes its own
// operations; the arena-level lock only guards the match table.
type Arena struct {
	logger   *zap.Logger
	engine   *rules.Engine
	registry *effects.Registry
	recorder *ReplayRecorder

	mu      sync.RWMutex
	matches map[string]*match
	handler NotificationHandler
}

// NewArena creates an arena with the standard rule engine and the
// built-in effect registry.
func NewArena(logger *zap.Logger) *Arena {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Arena{
		logger:   logger,
		engine:   rules.StandardEngine(),
		registry: effects.DefaultRegistry(logger),
		matches:  make(map[string]*match),
	}
}

// SetRuleEngine replaces the rule engine used for games created from
// now on. Running games keep the engine they started with.
func (a *Arena) SetRuleEngine(engine *rules.Engine) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if engine != nil {
		a.engine = engine
	}
}

// SetEffectRegistry replaces the effect registry for games created
// from now on.
func (a *Arena) SetEffectRegistry(registry *effects.Registry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if registry != nil {
		a.registry = registry
	}
}

// SetNotificationHandler registers the push-update sink.
func (a *Arena) SetNotificationHandler(handler NotificationHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler = handler
}

// EnableReplayRecording turns on replay capture for games created
// from now on, saving into saveDir.
func (a *Arena) EnableReplayRecording(saveDir string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recorder = NewReplayRecorder(a.logger, saveDir)
}

// Recorder returns the replay recorder, nil when recording is off.
func (a *Arena) Recorder() *ReplayRecorder {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.recorder
}

func (a *Arena) emit(notification Notification) {
	a.mu.RLock()
	handler := a.handler
	a.mu.RUnlock()

	if handler != nil {
		// Handlers run detached so they can call back into the arena.
		go handler(notification)
	}
}

func (a *Arena) notify(notifyType, gameID, playerID string, data map[string]interface{}) {
	a.emit(Notification{
		Type:      notifyType,
		GameID:    gameID,
		PlayerID:  playerID,
		Timestamp: time.Now(),
		Data:      data,
	})
}

func (a *Arena) findMatch(gameID string) (*match, error) {
	a.mu.RLock()
	m, exists := a.matches[gameID]
	a.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("game %s not found", gameID)
	}
	return m, nil
}

// CreateGame opens a new table. An empty gameID gets a generated one;
// a zero seed means the shuffle order is drawn from the clock. The
// returned ID identifies the game from here on.
func (a *Arena) CreateGame(gameID string, ruleset rules.Ruleset, seed int64) (string, error) {
	if gameID == "" {
		gameID = uuid.NewString()
	}

	rng := NewTimeRand()
	if seed != 0 {
		rng = NewRand(seed)
	}

	a.mu.Lock()
	if _, exists := a.matches[gameID]; exists {
		a.mu.Unlock()
		return "", fmt.Errorf("game %s already exists", gameID)
	}
	m := &match{
		setup:     NewSetup(gameID, ruleset, rng, nil, a.logger),
		seed:      rng.Seed(),
		createdAt: time.Now(),
	}
	a.matches[gameID] = m
	recorder := a.recorder
	a.mu.Unlock()

	if recorder != nil {
		recorder.StartRecording(gameID, m.seed)
	}

	a.logger.Info("game created",
		zap.String("game_id", gameID),
		zap.Int64("seed", m.seed),
	)
	a.notify(NotifyGameCreated, gameID, "", map[string]interface{}{
		"seed": m.seed,
	})
	return gameID, nil
}

// JoinGame adds a player and their deck to a table that has not
// started yet.
func (a *Arena) JoinGame(gameID, playerID, name string, deck []card.Card) error {
	m, err := a.findMatch(gameID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.game != nil {
		return fmt.Errorf("game %s already started", gameID)
	}
	if err := m.setup.AddPlayer(playerID, name, deck); err != nil {
		return err
	}

	a.notify(NotifyPlayerJoined, gameID, playerID, map[string]interface{}{
		"player_id": playerID,
		"name":      name,
	})
	return nil
}

// StartGame runs the opening sequence for a full table: order flip,
// shuffles, opening hands, and the whole mulligan exchange. After it
// returns the players choose their starting Pokémon.
func (a *Arena) StartGame(gameID string) error {
	m, err := a.findMatch(gameID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.game != nil {
		return fmt.Errorf("game %s already started", gameID)
	}
	if err := m.setup.Begin(); err != nil {
		return err
	}
	if err := m.setup.ResolveMulligans(); err != nil {
		return err
	}

	a.notify(NotifySetupUpdate, gameID, "", map[string]interface{}{
		"state": m.setup.State().String(),
	})
	return nil
}

// ChooseActive relays a player's starting active choice. Once both
// players finish their bench the game starts automatically.
func (a *Arena) ChooseActive(gameID, playerID, cardID string) error {
	m, err := a.findMatch(gameID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.game != nil {
		return fmt.Errorf("game %s already started", gameID)
	}
	if err := m.setup.ChooseActive(playerID, cardID); err != nil {
		return err
	}
	a.notify(NotifySetupUpdate, gameID, playerID, map[string]interface{}{
		"state": m.setup.State().String(),
	})
	return nil
}

// FillBench relays a player's bench placement, then completes setup
// when both benches are final.
func (a *Arena) FillBench(gameID, playerID string, cardIDs []string) error {
	m, err := a.findMatch(gameID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.game != nil {
		return fmt.Errorf("game %s already started", gameID)
	}
	if err := m.setup.FillBench(playerID, cardIDs); err != nil {
		return err
	}
	return a.maybeComplete(m)
}

// AutoSetup finishes the placement step with default choices and
// starts the game. Meant for demos, bots, and tests.
func (a *Arena) AutoSetup(gameID string) error {
	m, err := a.findMatch(gameID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.game != nil {
		return fmt.Errorf("game %s already started", gameID)
	}
	if err := m.setup.AutoPlace(); err != nil {
		return err
	}
	return a.maybeComplete(m)
}

// maybeComplete finishes the setup ladder once both benches are
// final. Prize placement is not a player decision, so the arena runs
// it as part of completion. Caller holds m.mu.
func (a *Arena) maybeComplete(m *match) error {
	if m.setup.State() != SetupBenchFilled {
		return nil
	}
	if err := m.setup.PlacePrizes(); err != nil {
		return err
	}

	a.mu.RLock()
	engine, registry, recorder := a.engine, a.registry, a.recorder
	a.mu.RUnlock()

	g, err := m.setup.Complete(engine, registry)
	if err != nil {
		return err
	}
	m.game = g

	// Wire the stat watchers onto the game's bus, then backfill the
	// setup events (mulligans happen before the bus subscription).
	m.stats = watchers.NewSet(g.Bus())
	m.stats.Replay(g.History())

	if recorder != nil {
		recorder.RecordState(g.ID(), g.Snapshot())
	}
	a.notify(NotifyGameStarted, g.ID(), "", map[string]interface{}{
		"first_player": g.ActivePlayer(),
		"turn":         g.TurnNumber(),
	})
	return nil
}

// SubmitAction runs one action through a game and returns the events
// it produced. Rejections come back as *ActionRejected with the game
// untouched.
func (a *Arena) SubmitAction(gameID string, act rules.Action) ([]rules.Event, error) {
	m, err := a.findMatch(gameID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.game == nil {
		return nil, fmt.Errorf("game %s has not started", gameID)
	}

	events, err := m.game.Execute(act)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	recorder := a.recorder
	a.mu.RUnlock()
	if recorder != nil {
		recorder.RecordAction(gameID, act)
		recorder.RecordState(gameID, m.game.Snapshot())
	}

	eventTypes := make([]string, len(events))
	for i, evt := range events {
		eventTypes[i] = string(evt.Type)
	}
	a.notify(NotifyGameUpdate, gameID, act.PlayerID, map[string]interface{}{
		"action": string(act.Kind),
		"events": eventTypes,
		"turn":   m.game.TurnNumber(),
		"phase":  m.game.Phase().String(),
	})

	if m.game.Outcome() == OutcomeFinished {
		a.finishMatch(gameID, m)
	}
	return events, nil
}

// finishMatch announces the result and saves the replay. Caller holds
// m.mu.
func (a *Arena) finishMatch(gameID string, m *match) {
	a.notify(NotifyGameOver, gameID, "", map[string]interface{}{
		"winner": m.game.Winner(),
		"reason": m.game.WinReason(),
	})

	a.mu.RLock()
	recorder := a.recorder
	a.mu.RUnlock()
	if recorder != nil && recorder.IsRecording(gameID) {
		if err := recorder.SaveReplay(gameID); err != nil {
			a.logger.Warn("failed to save replay",
				zap.String("game_id", gameID),
				zap.Error(err),
			)
		}
	}
}

// View returns the redacted view of a game for one player.
func (a *Arena) View(gameID, playerID string) (*GameView, error) {
	m, err := a.findMatch(gameID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.game == nil {
		return nil, fmt.Errorf("game %s has not started", gameID)
	}
	return m.game.View(playerID)
}

// History returns everything that has happened in a game so far:
// setup events before the game starts, the full log afterwards.
func (a *Arena) History(gameID string) ([]rules.Event, error) {
	m, err := a.findMatch(gameID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.game != nil {
		return m.game.History(), nil
	}
	return m.setup.Events(), nil
}

// GameStats reports the per-player counters the stat watchers have
// accumulated for a running game.
func (a *Arena) GameStats(gameID string) (watchers.Stats, error) {
	m, err := a.findMatch(gameID)
	if err != nil {
		return watchers.Stats{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stats == nil {
		return watchers.Stats{}, fmt.Errorf("game %s has not started", gameID)
	}
	return m.stats.Stats(), nil
}

// GameSnapshot captures the full state of a running game.
func (a *Arena) GameSnapshot(gameID string) (*Snapshot, error) {
	m, err := a.findMatch(gameID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.game == nil {
		return nil, fmt.Errorf("game %s has not started", gameID)
	}
	return m.game.Snapshot(), nil
}

// SetupState reports where a table is on the setup ladder.
func (a *Arena) SetupState(gameID string) (SetupState, error) {
	m, err := a.findMatch(gameID)
	if err != nil {
		return SetupAwaitingPlayers, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setup.State(), nil
}

// EndGame terminates a game by administrative decision. The named
// winner takes the match.
func (a *Arena) EndGame(gameID, winnerID, reason string) error {
	m, err := a.findMatch(gameID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.game == nil {
		return fmt.Errorf("game %s has not started", gameID)
	}
	if m.game.Outcome() == OutcomeFinished {
		return nil
	}
	if _, ok := m.game.Player(winnerID); winnerID != "" && !ok {
		return fmt.Errorf("no player %s in game %s", winnerID, gameID)
	}
	if reason == "" {
		reason = "match terminated"
	}

	m.game.finish(winnerID, reason)
	a.logger.Info("game terminated",
		zap.String("game_id", gameID),
		zap.String("winner", winnerID),
		zap.String("reason", reason),
	)
	a.finishMatch(gameID, m)
	return nil
}

// CleanupGame drops a finished or abandoned table. Any unsaved replay
// is cleared.
func (a *Arena) CleanupGame(gameID string) error {
	a.mu.Lock()
	_, exists := a.matches[gameID]
	delete(a.matches, gameID)
	recorder := a.recorder
	a.mu.Unlock()

	if !exists {
		return fmt.Errorf("game %s not found", gameID)
	}
	if recorder != nil {
		recorder.ClearReplay(gameID)
	}
	a.logger.Info("game cleaned up", zap.String("game_id", gameID))
	return nil
}

// GameIDs lists the open tables.
func (a *Arena) GameIDs() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]string, 0, len(a.matches))
	for id := range a.matches {
		ids = append(ids, id)
	}
	return ids
}

// GameCount returns the number of open tables.
func (a *Arena) GameCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.matches)
}
