package server

import (
	"encoding/json"

	"github.com/pkmn-engine/arena-server-go/internal/game"
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// Message is one websocket frame, in either direction. Type names the
// command or response; Data carries the command-specific payload.
type Message struct {
	Type     string          `json:"type"`
	GameID   string          `json:"game_id,omitempty"`
	PlayerID string          `json:"player_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

func encodeMessage(msgType, gameID, playerID string, data any) ([]byte, error) {
	msg := Message{Type: msgType, GameID: gameID, PlayerID: playerID}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = raw
	}
	return json.Marshal(&msg)
}

type createGamePayload struct {
	Seed       int64 `json:"seed,omitempty"`
	PrizeCount int   `json:"prize_count,omitempty"`
}

type joinGamePayload struct {
	Name     string         `json:"name,omitempty"`
	Decklist map[string]int `json:"decklist"`
}

type chooseActivePayload struct {
	CardID string `json:"card_id"`
}

type fillBenchPayload struct {
	CardIDs []string `json:"card_ids"`
}

type actionPayload struct {
	Kind        string            `json:"kind"`
	CardID      string            `json:"card_id,omitempty"`
	InstanceID  string            `json:"instance_id,omitempty"`
	TargetID    string            `json:"target_id,omitempty"`
	AttackIndex int               `json:"attack_index,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func (p actionPayload) toAction(playerID string) rules.Action {
	return rules.Action{
		Kind:        rules.ActionKind(p.Kind),
		PlayerID:    playerID,
		CardID:      p.CardID,
		InstanceID:  p.InstanceID,
		TargetID:    p.TargetID,
		AttackIndex: p.AttackIndex,
		Metadata:    p.Metadata,
	}
}

type errorPayload struct {
	Message string `json:"message"`
}

type rejectionPayload struct {
	Kind       string          `json:"kind"`
	Message    string          `json:"message"`
	Violations []violationView `json:"violations,omitempty"`
}

type violationView struct {
	Rule    string            `json:"rule"`
	Reason  string            `json:"reason"`
	Details map[string]string `json:"details,omitempty"`
}

func rejectionView(rejected *game.ActionRejected) rejectionPayload {
	p := rejectionPayload{
		Kind:    string(rejected.Kind),
		Message: rejected.Error(),
	}
	for _, v := range rejected.Violations {
		p.Violations = append(p.Violations, violationView{
			Rule:    v.Rule,
			Reason:  v.Reason,
			Details: v.Details,
		})
	}
	return p
}

// eventView is the wire form of a game event.
type eventView struct {
	Type        string   `json:"type"`
	TargetID    string   `json:"target_id,omitempty"`
	SourceID    string   `json:"source_id,omitempty"`
	PlayerID    string   `json:"player_id,omitempty"`
	Amount      int      `json:"amount,omitempty"`
	Flag        bool     `json:"flag,omitempty"`
	Data        string   `json:"data,omitempty"`
	Cards       []string `json:"cards,omitempty"`
	Description string   `json:"description,omitempty"`
}

func eventViews(events []rules.Event) []eventView {
	views := make([]eventView, len(events))
	for i, evt := range events {
		views[i] = eventView{
			Type:        string(evt.Type),
			TargetID:    evt.TargetID,
			SourceID:    evt.SourceID,
			PlayerID:    evt.PlayerID,
			Amount:      evt.Amount,
			Flag:        evt.Flag,
			Data:        evt.Data,
			Cards:       evt.Cards,
			Description: evt.Description,
		}
	}
	return views
}

type eventsPayload struct {
	Events []eventView `json:"events"`
}
