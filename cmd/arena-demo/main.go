// arena-demo plays a complete scripted match against the engine and
// prints the play-by-play. The same seed always produces the same
// game, which makes it a quick smoke test for the whole action
// pipeline without a server or a client.
package main

import (
	"bytes"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pkmn-engine/arena-server-go/internal/catalog"
	"github.com/pkmn-engine/arena-server-go/internal/game"
	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

//go:embed cards.json
var demoSet []byte

var (
	seed    = flag.Int64("seed", 42, "match seed (the same seed replays the same game)")
	prizes  = flag.Int("prizes", 0, "prizes per player, 1-6 (0 keeps the standard count)")
	verbose = flag.Bool("verbose", false, "log engine internals as the match runs")
)

// actionCap bounds the match loop. A deck-out ends every game well
// before this, so reaching the cap means the script is stuck.
const actionCap = 600

func main() {
	flag.Parse()

	logger, err := initLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func initLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func run(logger *zap.Logger) error {
	if *prizes < 0 || *prizes > 6 {
		return fmt.Errorf("prizes must be between 1 and 6, got %d", *prizes)
	}

	cards, err := catalog.LoadJSON(bytes.NewReader(demoSet))
	if err != nil {
		return fmt.Errorf("load demo set: %w", err)
	}
	cat, err := catalog.New(cards...)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}

	ruleset := rules.DefaultRuleset()
	if *prizes > 0 {
		ruleset.PrizeCount = *prizes
	}

	fmt.Println("=== Arena Demo Match ===")
	fmt.Printf("Seed: %d\n", *seed)
	fmt.Printf("Demo set: %d cards\n", cat.Len())
	fmt.Printf("Prizes per player: %d\n", ruleset.PrizeCount)

	arena := game.NewArena(logger)
	gameID, err := arena.CreateGame("demo-match", ruleset, *seed)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}

	players := []struct{ id, name string }{
		{"player-red", "Red"},
		{"player-blue", "Blue"},
	}
	for i, p := range players {
		deck, err := cat.BuildDeck(demoDecklist())
		if err != nil {
			return fmt.Errorf("build deck for %s: %w", p.name, err)
		}
		opts := card.ValidationOptions{DeckSize: ruleset.DeckSize, CopyLimit: ruleset.CopyLimit}
		if err := card.Validate(deck, opts); err != nil {
			return fmt.Errorf("deck for %s: %w", p.name, err)
		}
		if i == 0 {
			// Both players run the same list.
			st := card.Stats(deck)
			fmt.Printf("Decklist: %d Pokémon (%d Basic), %d Trainers, %d Energy\n",
				st.Pokemon, st.Basics, st.Trainers, st.EnergyCards)
		}
		if err := arena.JoinGame(gameID, p.id, p.name, deck); err != nil {
			return fmt.Errorf("join %s: %w", p.name, err)
		}
	}
	if err := arena.StartGame(gameID); err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	if err := arena.AutoSetup(gameID); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	opening, err := arena.View(gameID, players[0].id)
	if err != nil {
		return err
	}
	fmt.Println("✓ Both players ready")
	for _, pv := range opening.Players {
		if pv.Active != nil {
			fmt.Printf("  %s leads with %s (%d prizes set aside)\n", pv.Name, pv.Active.Card.Name, pv.PrizeCount)
		}
	}
	fmt.Println()

	submitted, rejected, err := playMatch(arena, gameID, ruleset, players[0].id, players[1].id)
	if err != nil {
		return err
	}

	return printSummary(arena, gameID, players[0].id, submitted, rejected)
}

// demoDecklist is the list both players run: four copies of every
// demo Pokémon and trainer plus twenty fire energy. Every lead attack
// costs a single colorless, so fire energy alone keeps the deck
// swinging.
func demoDecklist() card.Decklist {
	return card.Decklist{
		"demo-embercub":       4,
		"demo-flaredon":       4,
		"demo-tidepup":        4,
		"demo-thornling":      4,
		"demo-boulderon":      4,
		"demo-sparkit":        4,
		"demo-glimmouse":      4,
		"demo-cindertail":     4,
		"demo-scout-whistle":  4,
		"demo-field-analysis": 4,
		"demo-fire-energy":    20,
	}
}

// playMatch drives both seats until the game finishes, one action per
// iteration. It returns how many actions were submitted and how many
// the rules engine turned away.
func playMatch(arena *game.Arena, gameID string, ruleset rules.Ruleset, first, second string) (submitted, rejected int, err error) {
	bots := map[string]*scripted{
		first:  newScripted(first, ruleset),
		second: newScripted(second, ruleset),
	}
	lastTurn := 0

	for submitted+rejected < actionCap {
		view, err := arena.View(gameID, first)
		if err != nil {
			return submitted, rejected, err
		}
		if view.Outcome == game.OutcomeFinished.String() {
			return submitted, rejected, nil
		}
		actor := view.ActivePlayer
		bot, ok := bots[actor]
		if !ok {
			return submitted, rejected, fmt.Errorf("no script for active player %q", actor)
		}

		actorView, err := arena.View(gameID, actor)
		if err != nil {
			return submitted, rejected, err
		}
		if actorView.TurnNumber != lastTurn {
			lastTurn = actorView.TurnNumber
			if me := playerView(actorView, actor); me != nil {
				fmt.Printf("--- Turn %d: %s ---\n", lastTurn, me.Name)
			}
		}

		act, step := bot.next(actorView)
		events, err := arena.SubmitAction(gameID, act)
		if err != nil {
			var reject *game.ActionRejected
			if errors.As(err, &reject) {
				bot.exhaust(step)
				rejected++
				continue
			}
			return submitted, rejected, fmt.Errorf("submit %s: %w", act.Kind, err)
		}
		submitted++
		if step == stepDraw || step == stepAttach {
			bot.exhaust(step)
		}
		printEvents(events)
	}
	return submitted, rejected, fmt.Errorf("match did not finish within %d actions", actionCap)
}

const (
	stepDraw    = "draw"
	stepBench   = "bench"
	stepAttach  = "attach"
	stepTrainer = "trainer"
	stepAttack  = "attack"
	stepEnd     = "end"
	stepPass    = "pass"
)

// scripted picks one action at a time from a player's redacted view,
// the way a client would: greedy plays first, attack when the energy
// is there, and a step that gets rejected stays off the menu for the
// rest of the turn.
type scripted struct {
	id      string
	ruleset rules.Ruleset
	turn    int
	tried   map[string]bool
}

func newScripted(id string, ruleset rules.Ruleset) *scripted {
	return &scripted{id: id, ruleset: ruleset, tried: make(map[string]bool)}
}

func (s *scripted) exhaust(step string) {
	s.tried[step] = true
}

func (s *scripted) next(view *game.GameView) (rules.Action, string) {
	if view.TurnNumber != s.turn {
		s.turn = view.TurnNumber
		s.tried = make(map[string]bool)
	}
	me := playerView(view, s.id)
	if me == nil {
		return rules.Action{Kind: rules.ActionPass, PlayerID: s.id}, stepPass
	}

	if view.Phase == rules.PhaseBeginningOfTurn.String() && !s.tried[stepDraw] {
		return rules.Action{Kind: rules.ActionDrawCard, PlayerID: s.id}, stepDraw
	}
	if !s.tried[stepBench] && len(me.Bench) < s.ruleset.BenchLimit {
		if id := firstOfKind(me.Hand, card.KindPokemon); id != "" {
			return rules.Action{Kind: rules.ActionPlayPokemon, PlayerID: s.id, CardID: id}, stepBench
		}
	}
	if !s.tried[stepAttach] && me.Active != nil {
		if id := firstOfKind(me.Hand, card.KindEnergy); id != "" {
			return rules.Action{
				Kind:       rules.ActionAttachEnergy,
				PlayerID:   s.id,
				CardID:     id,
				InstanceID: me.Active.InstanceID,
			}, stepAttach
		}
	}
	if !s.tried[stepTrainer] {
		if id := firstOfKind(me.Hand, card.KindTrainer); id != "" {
			return rules.Action{Kind: rules.ActionPlayTrainer, PlayerID: s.id, CardID: id}, stepTrainer
		}
	}
	if !s.tried[stepAttack] && me.Active != nil && len(me.Active.Energy) > 0 {
		return rules.Action{Kind: rules.ActionAttack, PlayerID: s.id}, stepAttack
	}
	if s.tried[stepEnd] {
		// Last resort when even ending the turn was refused: pass
		// through the remaining phases one at a time.
		return rules.Action{Kind: rules.ActionPass, PlayerID: s.id}, stepPass
	}
	return rules.Action{Kind: rules.ActionEndTurn, PlayerID: s.id}, stepEnd
}

func playerView(view *game.GameView, id string) *game.PlayerView {
	for i := range view.Players {
		if view.Players[i].PlayerID == id {
			return &view.Players[i]
		}
	}
	return nil
}

func firstOfKind(hand []game.CardView, kind card.Kind) string {
	for _, c := range hand {
		if c.Kind == string(kind) {
			return c.ID
		}
	}
	return ""
}

// printEvents writes the narrated history of one action. Turn
// boundaries already have their own headers, so those events are
// skipped.
func printEvents(events []rules.Event) {
	for _, evt := range events {
		if evt.Type == rules.EventTurnStarted || evt.Type == rules.EventTurnEnded {
			continue
		}
		if evt.Description == "" {
			continue
		}
		fmt.Printf("  %s\n", evt.Description)
	}
}

func printSummary(arena *game.Arena, gameID, viewer string, submitted, rejected int) error {
	final, err := arena.View(gameID, viewer)
	if err != nil {
		return err
	}
	stats, err := arena.GameStats(gameID)
	if err != nil {
		return err
	}
	history, err := arena.History(gameID)
	if err != nil {
		return err
	}

	winner := final.Winner
	for _, pv := range final.Players {
		if pv.PlayerID == final.Winner {
			winner = pv.Name
		}
	}

	fmt.Println("\n=== Match Complete ===")
	fmt.Printf("✓ %s wins by %s after %d turns\n", winner, final.WinReason, final.TurnNumber)
	fmt.Printf("Actions: %d accepted, %d rejected by the rules\n", submitted, rejected)
	fmt.Printf("Events recorded: %d\n", len(history))
	fmt.Printf("Total damage dealt: %d\n", stats.TotalDamage)
	for _, pv := range final.Players {
		fmt.Printf("  %s: %d cards drawn, %d knockouts, %d mulligans, %d prizes left\n",
			pv.Name,
			stats.CardsDrawn[pv.PlayerID],
			stats.Knockouts[pv.PlayerID],
			stats.Mulligans[pv.PlayerID],
			pv.PrizeCount,
		)
	}

	return arena.CleanupGame(gameID)
}
