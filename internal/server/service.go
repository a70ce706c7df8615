package server

import (
	"github.com/pkmn-engine/arena-server-go/internal/game"
	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
	"github.com/pkmn-engine/arena-server-go/internal/game/watchers"
)

// GameService is the engine surface the websocket hub drives. The
// arena implements it for real games; the null engine implements it
// for transport tests.
type GameService interface {
	CreateGame(gameID string, ruleset rules.Ruleset, seed int64) (string, error)
	JoinGame(gameID, playerID, name string, deck []card.Card) error
	StartGame(gameID string) error
	ChooseActive(gameID, playerID, cardID string) error
	FillBench(gameID, playerID string, cardIDs []string) error
	AutoSetup(gameID string) error
	SubmitAction(gameID string, act rules.Action) ([]rules.Event, error)
	View(gameID, playerID string) (*game.GameView, error)
	History(gameID string) ([]rules.Event, error)
	GameStats(gameID string) (watchers.Stats, error)
	SetNotificationHandler(handler game.NotificationHandler)
	CleanupGame(gameID string) error
}

var (
	_ GameService = (*game.Arena)(nil)
	_ GameService = (*game.NullEngine)(nil)
)
