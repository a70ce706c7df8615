package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pkmn-engine/arena-server-go/internal/catalog"
	"github.com/pkmn-engine/arena-server-go/internal/game"
	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin policy is left to the deployment's proxy.
	},
}

// Hub connects websocket clients to the game service. Commands run on
// the sending client's read loop; pushes fan out from the run loop,
// which owns the client table.
type Hub struct {
	logger  *zap.Logger
	service GameService
	catalog *catalog.Catalog
	ruleset rules.Ruleset

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	notices    chan game.Notification
	done       chan struct{}
}

// NewHub wires a hub to the service and registers for its pushes. The
// catalog resolves decklists on join.
func NewHub(logger *zap.Logger, service GameService, cat *catalog.Catalog) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		logger:     logger,
		service:    service,
		catalog:    cat,
		ruleset:    rules.DefaultRuleset(),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		notices:    make(chan game.Notification, 256),
		done:       make(chan struct{}),
	}
	service.SetNotificationHandler(h.notice)
	return h
}

// SetRuleset replaces the base ruleset new games start from. Call it
// before serving connections.
func (h *Hub) SetRuleset(ruleset rules.Ruleset) {
	h.ruleset = ruleset
}

// Run owns the client table until ctx is cancelled. Start it on its
// own goroutine before serving connections.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				client.conn.Close()
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("client connected", zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case n := <-h.notices:
			h.dispatch(n)
		}
	}
}

// notice receives arena pushes; the arena calls it on its own
// goroutines.
func (h *Hub) notice(n game.Notification) {
	select {
	case h.notices <- n:
	default:
		h.logger.Warn("dropping notification",
			zap.String("type", n.Type),
			zap.String("game_id", n.GameID),
		)
	}
}

// drop asks the run loop to forget a client, falling through when the
// hub has already stopped.
func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ServeWS upgrades an HTTP request and starts the client's pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(conn)
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h)
}

// dispatch fans a notification out to the game's clients, then follows
// state changes with fresh per-player views. Runs on the run loop.
func (h *Hub) dispatch(n game.Notification) {
	frame, err := encodeMessage(n.Type, n.GameID, n.PlayerID, n.Data)
	if err != nil {
		h.logger.Error("encode notification", zap.Error(err))
		return
	}

	for client := range h.clients {
		gameID, _ := client.identity()
		if gameID != n.GameID {
			continue
		}
		h.forward(client, frame)
	}

	switch n.Type {
	case game.NotifyGameStarted, game.NotifyGameUpdate, game.NotifyGameOver:
		h.pushViews(n.GameID)
	}
}

// forward queues a frame, disconnecting a client whose queue is full.
// Runs on the run loop.
func (h *Hub) forward(c *Client, frame []byte) {
	select {
	case c.send <- frame:
	default:
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}

// pushViews sends each connected player their own redacted view.
func (h *Hub) pushViews(gameID string) {
	for client := range h.clients {
		clientGame, playerID := client.identity()
		if clientGame != gameID || playerID == "" {
			continue
		}
		view, err := h.service.View(gameID, playerID)
		if err != nil {
			continue
		}
		frame, err := encodeMessage("view", gameID, playerID, view)
		if err != nil {
			h.logger.Error("encode view", zap.Error(err))
			continue
		}
		h.forward(client, frame)
	}
}

// handleMessage runs one client command. The envelope's game and
// player IDs fall back to whatever the client bound on create or join.
func (h *Hub) handleMessage(c *Client, msg Message) {
	boundGame, boundPlayer := c.identity()
	gameID := msg.GameID
	if gameID == "" {
		gameID = boundGame
	}
	playerID := msg.PlayerID
	if playerID == "" {
		playerID = boundPlayer
	}

	switch msg.Type {
	case "create_game":
		var p createGamePayload
		if !h.decode(c, msg.Data, &p) {
			return
		}
		ruleset := h.ruleset
		if p.PrizeCount > 0 {
			ruleset.PrizeCount = p.PrizeCount
		}
		id, err := h.service.CreateGame(msg.GameID, ruleset, p.Seed)
		if err != nil {
			h.sendError(c, gameID, err)
			return
		}
		c.bind(id, playerID)
		h.reply(c, "game_created", id, playerID, nil)

	case "join_game":
		var p joinGamePayload
		if !h.decode(c, msg.Data, &p) {
			return
		}
		if gameID == "" || playerID == "" {
			h.sendError(c, gameID, errors.New("join_game needs game_id and player_id"))
			return
		}
		deck, err := h.buildDeck(p.Decklist)
		if err != nil {
			h.sendError(c, gameID, err)
			return
		}
		name := p.Name
		if name == "" {
			name = playerID
		}
		if err := h.service.JoinGame(gameID, playerID, name, deck); err != nil {
			h.sendError(c, gameID, err)
			return
		}
		c.bind(gameID, playerID)
		h.reply(c, "joined", gameID, playerID, nil)

	case "start_game":
		if err := h.service.StartGame(gameID); err != nil {
			h.sendError(c, gameID, err)
			return
		}
		h.ack(c, msg.Type, gameID, playerID)

	case "choose_active":
		var p chooseActivePayload
		if !h.decode(c, msg.Data, &p) {
			return
		}
		if err := h.service.ChooseActive(gameID, playerID, p.CardID); err != nil {
			h.sendError(c, gameID, err)
			return
		}
		h.ack(c, msg.Type, gameID, playerID)

	case "fill_bench":
		var p fillBenchPayload
		if !h.decode(c, msg.Data, &p) {
			return
		}
		if err := h.service.FillBench(gameID, playerID, p.CardIDs); err != nil {
			h.sendError(c, gameID, err)
			return
		}
		h.ack(c, msg.Type, gameID, playerID)

	case "auto_setup":
		if err := h.service.AutoSetup(gameID); err != nil {
			h.sendError(c, gameID, err)
			return
		}
		h.ack(c, msg.Type, gameID, playerID)

	case "submit_action":
		var p actionPayload
		if !h.decode(c, msg.Data, &p) {
			return
		}
		events, err := h.service.SubmitAction(gameID, p.toAction(playerID))
		if err != nil {
			h.sendError(c, gameID, err)
			return
		}
		h.reply(c, "action_result", gameID, playerID, eventsPayload{Events: eventViews(events)})

	case "get_view":
		view, err := h.service.View(gameID, playerID)
		if err != nil {
			h.sendError(c, gameID, err)
			return
		}
		h.reply(c, "view", gameID, playerID, view)

	case "get_history":
		events, err := h.service.History(gameID)
		if err != nil {
			h.sendError(c, gameID, err)
			return
		}
		h.reply(c, "history", gameID, playerID, eventsPayload{Events: eventViews(events)})

	case "get_stats":
		stats, err := h.service.GameStats(gameID)
		if err != nil {
			h.sendError(c, gameID, err)
			return
		}
		h.reply(c, "stats", gameID, playerID, stats)

	default:
		h.sendError(c, gameID, fmt.Errorf("unknown command %q", msg.Type))
	}
}

// decode unpacks a command payload, reporting bad input to the client.
func (h *Hub) decode(c *Client, raw json.RawMessage, into any) bool {
	if len(raw) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, into); err != nil {
		h.sendError(c, "", fmt.Errorf("bad payload: %w", err))
		return false
	}
	return true
}

// buildDeck resolves a decklist against the card catalog.
func (h *Hub) buildDeck(list map[string]int) ([]card.Card, error) {
	if h.catalog == nil {
		return nil, errors.New("no card catalog loaded")
	}
	if len(list) == 0 {
		return nil, errors.New("join_game needs a decklist")
	}
	return h.catalog.BuildDeck(card.Decklist(list))
}

// ack confirms a command that has no response payload of its own.
func (h *Hub) ack(c *Client, command, gameID, playerID string) {
	h.reply(c, "ok", gameID, playerID, map[string]string{"command": command})
}

func (h *Hub) reply(c *Client, msgType, gameID, playerID string, data any) {
	frame, err := encodeMessage(msgType, gameID, playerID, data)
	if err != nil {
		h.logger.Error("encode reply", zap.String("type", msgType), zap.Error(err))
		return
	}
	if !c.enqueue(frame) {
		h.logger.Warn("client queue full, dropping reply", zap.String("type", msgType))
	}
}

// sendError reports a failed command. Rule rejections keep their
// structure so clients can show which rule fired.
func (h *Hub) sendError(c *Client, gameID string, err error) {
	var rejected *game.ActionRejected
	if errors.As(err, &rejected) {
		h.reply(c, "action_rejected", gameID, "", rejectionView(rejected))
		return
	}
	h.reply(c, "error", gameID, "", errorPayload{Message: err.Error()})
}
