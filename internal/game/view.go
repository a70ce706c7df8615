package game

import (
	"fmt"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
)

// viewLogLimit caps how many recent event descriptions a view carries.
const viewLogLimit = 50

// GameView is the game as one player is allowed to see it. Hidden
// zones are reduced to counts and face-down placeholders before the
// view leaves the engine, so no client ever receives information its
// player could not legally have.
type GameView struct {
	GameID       string       `json:"game_id"`
	Phase        string       `json:"phase"`
	TurnNumber   int          `json:"turn_number"`
	ActivePlayer string       `json:"active_player"`
	Outcome      string       `json:"outcome"`
	Winner       string       `json:"winner,omitempty"`
	WinReason    string       `json:"win_reason,omitempty"`
	Players      []PlayerView `json:"players"`
	Log          []string     `json:"log,omitempty"`
}

// PlayerView is one player's side of the board. Hand contents are
// present only in the owner's own view; everyone sees the counts.
type PlayerView struct {
	PlayerID   string        `json:"player_id"`
	Name       string        `json:"name"`
	DeckCount  int           `json:"deck_count"`
	HandCount  int           `json:"hand_count"`
	Hand       []CardView    `json:"hand"`
	Discard    []CardView    `json:"discard"`
	PrizeCount int           `json:"prize_count"`
	Active     *PokemonView  `json:"active,omitempty"`
	Bench      []PokemonView `json:"bench"`
	Mulligans  int           `json:"mulligans,omitempty"`
}

// CardView is a card in a visible zone, or a face-down placeholder in
// a hidden one. Face-down views carry no identity at all.
type CardView struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Kind     string `json:"kind,omitempty"`
	FaceDown bool   `json:"face_down,omitempty"`
}

// PokemonView is a board Pokémon. Board state is public.
type PokemonView struct {
	InstanceID  string     `json:"instance_id"`
	Card        CardView   `json:"card"`
	HP          int        `json:"hp"`
	RemainingHP int        `json:"remaining_hp"`
	Damage      int        `json:"damage"`
	Energy      []CardView `json:"energy"`
	Tools       []CardView `json:"tools"`
	Evolution   []CardView `json:"evolution"`
	Conditions  []string   `json:"conditions"`
}

// View builds the game view for one player. The requesting player
// sees their own hand; the opponent's hand, both decks, and all prize
// cards stay hidden.
func (g *Game) View(playerID string) (*GameView, error) {
	if _, ok := g.Player(playerID); !ok {
		return nil, fmt.Errorf("no player %s in game %s", playerID, g.id)
	}

	view := &GameView{
		GameID:       g.id,
		Phase:        g.turn.CurrentPhase().String(),
		TurnNumber:   g.turn.TurnNumber(),
		ActivePlayer: g.turn.ActivePlayer(),
		Outcome:      g.outcome.String(),
		Winner:       g.winner,
		WinReason:    g.winReason,
		Players:      make([]PlayerView, 0, len(g.order)),
		Log:          g.recentLog(viewLogLimit),
	}
	for _, id := range g.order {
		p, ok := g.Player(id)
		if !ok {
			continue
		}
		view.Players = append(view.Players, buildPlayerView(p, id == playerID))
	}
	return view, nil
}

func buildPlayerView(p *Player, owner bool) PlayerView {
	view := PlayerView{
		PlayerID:   p.ID,
		Name:       p.Name,
		DeckCount:  len(p.Deck),
		HandCount:  len(p.Hand),
		Discard:    buildCardViews(p.Discard),
		PrizeCount: len(p.Prizes),
		Bench:      make([]PokemonView, 0, len(p.Bench)),
		Mulligans:  p.MulliganCount,
	}
	if owner {
		view.Hand = buildCardViews(p.Hand)
	} else {
		view.Hand = faceDownViews(len(p.Hand))
	}
	if p.Active != nil {
		active := buildPokemonView(p.Active)
		view.Active = &active
	}
	for _, b := range p.Bench {
		view.Bench = append(view.Bench, buildPokemonView(b))
	}
	return view
}

func buildCardViews(cards []card.Card) []CardView {
	views := make([]CardView, len(cards))
	for i, c := range cards {
		views[i] = buildCardView(c)
	}
	return views
}

func buildCardView(c card.Card) CardView {
	return CardView{
		ID:   c.ID,
		Name: c.Name,
		Kind: string(c.Kind),
	}
}

func faceDownViews(n int) []CardView {
	views := make([]CardView, n)
	for i := range views {
		views[i] = CardView{FaceDown: true}
	}
	return views
}

func buildPokemonView(p *PokemonInPlay) PokemonView {
	hp := 0
	if p.Card.Pokemon != nil {
		hp = p.Card.Pokemon.HP
	}
	return PokemonView{
		InstanceID:  p.InstanceID,
		Card:        buildCardView(p.Card),
		HP:          hp,
		RemainingHP: p.RemainingHP(),
		Damage:      p.Damage,
		Energy:      buildCardViews(p.EnergyCards),
		Tools:       buildCardViews(p.Tools),
		Evolution:   buildCardViews(p.Evolution),
		Conditions:  p.Conditions.Names(),
	}
}

// recentLog returns the descriptions of the most recent events, oldest
// first.
func (g *Game) recentLog(limit int) []string {
	start := 0
	if len(g.history) > limit {
		start = len(g.history) - limit
	}
	out := make([]string, 0, len(g.history)-start)
	for _, evt := range g.history[start:] {
		if evt.Description != "" {
			out = append(out, evt.Description)
		}
	}
	return out
}
