package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// checkWinConditions scans both players for a met win condition and
// finishes the game for the first one found. The player whose turn it
// is is checked first, so a play that satisfies conditions for both
// sides at once resolves in the acting player's favor.
func (g *Game) checkWinConditions() {
	if g.outcome == OutcomeFinished {
		return
	}
	for _, p := range g.playersActiveFirst() {
		if reason := g.winReasonFor(p); reason != "" {
			g.finish(p.ID, reason)
			return
		}
	}
}

// playersActiveFirst returns both players with the turn holder first.
func (g *Game) playersActiveFirst() []*Player {
	out := make([]*Player, 0, len(g.players))
	activeID := g.turn.ActivePlayer()
	if p, ok := g.Player(activeID); ok {
		out = append(out, p)
	}
	for _, p := range g.players {
		if p != nil && p.ID != activeID {
			out = append(out, p)
		}
	}
	return out
}

// winReasonFor reports why p has won, or "" when no condition is met.
func (g *Game) winReasonFor(p *Player) string {
	opp, ok := g.Opponent(p.ID)
	if !ok {
		return ""
	}
	if len(p.Prizes) == 0 {
		return "all prizes taken"
	}
	if !opp.HasPokemonInPlay() {
		return "opponent has no Pokémon in play"
	}
	if g.deckedOut != "" && g.deckedOut == opp.ID {
		return "opponent deck ran out"
	}
	return ""
}

// finish records the result, stops the turn structure, and announces
// the end of the game. A finished game stays finished.
func (g *Game) finish(winnerID, reason string) {
	if g.outcome == OutcomeFinished {
		return
	}
	g.outcome = OutcomeFinished
	g.winner = winnerID
	g.winReason = reason
	g.turn.Finish()
	// Pending reactions die with the game.
	g.followUps.Clear()

	winnerName := winnerID
	if p, ok := g.Player(winnerID); ok {
		winnerName = p.Name
	}
	evt := rules.NewEvent(rules.EventGameEnded, winnerID, "", winnerID)
	evt.Metadata["reason"] = reason
	evt.Description = fmt.Sprintf("%s won: %s", winnerName, reason)
	g.publish(evt)

	g.logger.Info("game finished",
		zap.String("game_id", g.id),
		zap.String("winner", winnerID),
		zap.String("reason", reason),
	)
}
