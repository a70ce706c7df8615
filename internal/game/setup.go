package game

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/conditions"
	"github.com/pkmn-engine/arena-server-go/internal/game/effects"
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// SetupState is one rung of the pre-game ladder. States only move
// forward; an operation attempted out of order fails with
// SetupOutOfSequence.
type SetupState int

const (
	SetupAwaitingPlayers SetupState = iota
	SetupDecksAssigned
	SetupHandsDealt
	SetupMulliganChecked
	SetupActiveChosen
	SetupBenchFilled
	SetupPrizesPlaced
	SetupReady
)

var setupStateNames = map[SetupState]string{
	SetupAwaitingPlayers: "AWAITING_PLAYERS",
	SetupDecksAssigned:   "DECKS_ASSIGNED",
	SetupHandsDealt:      "HANDS_DEALT",
	SetupMulliganChecked: "MULLIGAN_CHECKED",
	SetupActiveChosen:    "ACTIVE_CHOSEN",
	SetupBenchFilled:     "BENCH_FILLED",
	SetupPrizesPlaced:    "PRIZES_PLACED",
	SetupReady:           "READY",
}

func (s SetupState) String() string {
	if name, ok := setupStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SETUP_STATE(%d)", int(s))
}

type setupPlayer struct {
	player       *Player
	activeChosen bool
	benchFilled  bool
}

// Setup runs the pre-game protocol for one match: players join with
// validated decks, hands are dealt, mulligans resolve, board positions
// are chosen, prizes are placed, and Complete hands over a running
// Game. Every step publishes its events on the shared bus and the full
// trail carries over into the game history.
type Setup struct {
	gameID  string
	ruleset rules.Ruleset
	rng     *Rand
	bus     *rules.EventBus
	logger  *zap.Logger

	state   SetupState
	players []*setupPlayer

	// instanceSeq numbers the board instances minted so far. The game
	// continues the sequence after setup hands over.
	instanceSeq int

	// events accumulates the setup trail for the game history.
	events []rules.Event
}

// NewSetup starts the setup protocol for a new game. A nil bus or
// logger is replaced with a working default; a nil rng gets a
// time-based seed.
func NewSetup(gameID string, ruleset rules.Ruleset, rng *Rand, bus *rules.EventBus, logger *zap.Logger) *Setup {
	if rng == nil {
		rng = NewTimeRand()
	}
	if bus == nil {
		bus = rules.NewEventBus()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Setup{
		gameID:  gameID,
		ruleset: ruleset,
		rng:     rng,
		bus:     bus,
		logger:  logger,
		state:   SetupAwaitingPlayers,
		players: make([]*setupPlayer, 0, 2),
	}
	evt := rules.NewEvent(rules.EventGameCreated, gameID, "", "")
	evt.Description = fmt.Sprintf("game %s created", gameID)
	s.publish(evt)
	return s
}

// State returns the current ladder position.
func (s *Setup) State() SetupState { return s.state }

// GameID returns the identifier of the game being set up.
func (s *Setup) GameID() string { return s.gameID }

// Bus returns the event bus shared with the eventual game.
func (s *Setup) Bus() *rules.EventBus { return s.bus }

// PlayerIDs returns the joined player IDs in join order.
func (s *Setup) PlayerIDs() []string {
	ids := make([]string, len(s.players))
	for i, sp := range s.players {
		ids[i] = sp.player.ID
	}
	return ids
}

// Events returns a copy of everything published so far.
func (s *Setup) Events() []rules.Event {
	out := make([]rules.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Setup) publish(evt rules.Event) {
	if evt.GameID == "" {
		evt.GameID = s.gameID
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	s.events = append(s.events, evt)
	s.bus.Publish(evt)
}

// nextInstanceID mints a board instance handle. Handles come from a
// counter rather than a random source, so the same seed and action
// sequence reproduce identical handles on re-simulation.
func (s *Setup) nextInstanceID() string {
	s.instanceSeq++
	return fmt.Sprintf("pkm-%d", s.instanceSeq)
}

func (s *Setup) findPlayer(playerID string) *setupPlayer {
	for _, sp := range s.players {
		if sp.player.ID == playerID {
			return sp
		}
	}
	return nil
}

// AddPlayer joins a player with their deck. The deck must pass
// validation against the match ruleset.
func (s *Setup) AddPlayer(playerID, name string, deck []card.Card) error {
	if s.state != SetupAwaitingPlayers {
		return newSetupError(SetupOutOfSequence, "players can only join before decks are assigned (state %s)", s.state)
	}
	if playerID == "" {
		return newSetupError(SetupDuplicatePlayer, "player ID must not be empty")
	}
	if s.findPlayer(playerID) != nil {
		return newSetupError(SetupDuplicatePlayer, "player %s already joined", playerID)
	}
	if len(s.players) >= 2 {
		return newSetupError(SetupTooManyPlayers, "game already has two players")
	}

	opts := card.ValidationOptions{DeckSize: s.ruleset.DeckSize, CopyLimit: s.ruleset.CopyLimit}
	if err := card.Validate(deck, opts); err != nil {
		return &SetupError{
			Kind:    SetupDeckInvalid,
			Message: fmt.Sprintf("deck for %s failed validation", playerID),
			Err:     err,
		}
	}

	s.players = append(s.players, &setupPlayer{player: newPlayer(playerID, name, deck)})

	evt := rules.NewEvent(rules.EventPlayerJoined, playerID, "", playerID)
	evt.Data = name
	evt.Description = fmt.Sprintf("%s joined as %s", name, playerID)
	s.publish(evt)

	deckEvt := rules.NewEventWithAmount(rules.EventDeckAssigned, playerID, "", playerID, len(deck))
	deckEvt.Description = fmt.Sprintf("%s submitted a %d-card deck", name, len(deck))
	s.publish(deckEvt)

	s.logger.Info("player joined",
		zap.String("game_id", s.gameID),
		zap.String("player_id", playerID),
		zap.Int("deck_size", len(deck)),
	)
	return nil
}

// Begin locks the player list, decides turn order with a coin flip,
// shuffles both decks, and deals the opening hands.
func (s *Setup) Begin() error {
	if s.state != SetupAwaitingPlayers {
		return newSetupError(SetupOutOfSequence, "setup already began (state %s)", s.state)
	}
	if len(s.players) != 2 {
		return newSetupError(SetupIncomplete, "need exactly 2 players, have %d", len(s.players))
	}

	// The opening coin flip decides who goes first. Heads keeps the
	// join order; tails swaps it.
	heads := s.rng.FlipCoin()
	if !heads {
		s.players[0], s.players[1] = s.players[1], s.players[0]
	}
	first := s.players[0].player
	flipEvt := rules.NewEventWithFlag(rules.EventCoinFlipped, first.ID, "", first.ID, heads)
	flipEvt.Description = fmt.Sprintf("opening flip: %s goes first", first.ID)
	s.publish(flipEvt)

	for _, sp := range s.players {
		s.shuffleDeck(sp.player)
	}
	s.state = SetupDecksAssigned

	for _, sp := range s.players {
		s.dealHand(sp.player)
	}
	s.state = SetupHandsDealt
	return nil
}

func (s *Setup) shuffleDeck(p *Player) {
	s.rng.ShuffleCards(p.Deck)
	// The event records only the pile size; card order stays hidden.
	evt := rules.NewEventWithAmount(rules.EventShuffleOccurred, p.ID, "", p.ID, len(p.Deck))
	evt.Description = fmt.Sprintf("%s shuffled their deck (%d cards)", p.Name, len(p.Deck))
	s.publish(evt)
}

func (s *Setup) dealHand(p *Player) {
	drawn := p.drawCards(s.ruleset.HandSize)
	evt := rules.NewEventWithAmount(rules.EventHandDealt, p.ID, "", p.ID, len(drawn))
	evt.Description = fmt.Sprintf("%s drew an opening hand of %d", p.Name, len(drawn))
	s.publish(evt)
}

// ResolveMulligans redraws dead hands until both players hold a Basic
// Pokémon. The first player in turn order resolves completely before
// the second; each cycle publishes the hand reveal before the
// reshuffle. When compensation draws are enabled, each player then
// draws one card per opposing mulligan beyond their own.
func (s *Setup) ResolveMulligans() error {
	if s.state != SetupHandsDealt {
		return newSetupError(SetupOutOfSequence, "hands are not dealt yet (state %s)", s.state)
	}

	// A deck with no Basic Pokémon anywhere can never produce a legal
	// hand; fail before looping.
	for _, sp := range s.players {
		if !sp.player.hasBasicAnywhere() {
			return newSetupError(SetupNoBasicPokemonPossible,
				"player %s has no Basic Pokémon in their deck", sp.player.ID)
		}
	}

	for _, sp := range s.players {
		if err := s.resolveMulligansFor(sp.player); err != nil {
			return err
		}
	}

	if s.ruleset.CompensationDraws {
		for i, sp := range s.players {
			opponent := s.players[1-i].player
			extra := opponent.MulliganCount - sp.player.MulliganCount
			if extra <= 0 {
				continue
			}
			drawn := sp.player.drawCards(extra)
			evt := rules.NewEventWithAmount(rules.EventCompensationDrawn, sp.player.ID, "", sp.player.ID, len(drawn))
			evt.Description = fmt.Sprintf("%s drew %d for the opponent's mulligans", sp.player.Name, len(drawn))
			s.publish(evt)
		}
	}

	s.state = SetupMulliganChecked
	return nil
}

func (s *Setup) resolveMulligansFor(p *Player) error {
	for !p.hasBasicInHand() {
		if p.MulliganCount >= s.ruleset.MaxMulligans {
			evt := rules.NewEventWithAmount(rules.EventMulliganExhausted, p.ID, "", p.ID, p.MulliganCount)
			evt.Description = fmt.Sprintf("%s ran out of mulligans", p.Name)
			s.publish(evt)
			return newSetupError(SetupTooManyMulligans,
				"player %s exhausted %d mulligans", p.ID, p.MulliganCount)
		}

		// The dead hand is public before it goes back into the deck.
		reveal := rules.NewEvent(rules.EventHandRevealed, p.ID, "", p.ID)
		reveal.Cards = cardNames(p.Hand)
		reveal.Amount = len(p.Hand)
		reveal.Description = fmt.Sprintf("%s revealed a hand with no Basic Pokémon", p.Name)
		s.publish(reveal)

		p.MulliganCount++
		mull := rules.NewEventWithAmount(rules.EventMulliganDeclared, p.ID, "", p.ID, p.MulliganCount)
		mull.Description = fmt.Sprintf("%s mulliganed (%d)", p.Name, p.MulliganCount)
		s.publish(mull)

		p.returnHandToDeck()
		s.shuffleDeck(p)
		s.dealHand(p)
	}
	return nil
}

// ChooseActive places a Basic Pokémon from the hand into the active
// slot.
func (s *Setup) ChooseActive(playerID, cardID string) error {
	if s.state != SetupMulliganChecked && s.state != SetupActiveChosen {
		return newSetupError(SetupOutOfSequence, "mulligans are not resolved yet (state %s)", s.state)
	}
	sp := s.findPlayer(playerID)
	if sp == nil {
		return newSetupError(SetupIncomplete, "no player %s in this game", playerID)
	}
	if sp.activeChosen {
		return newSetupError(SetupOutOfSequence, "player %s already chose an active Pokémon", playerID)
	}

	idx := handIndexOf(sp.player.Hand, cardID)
	if idx < 0 {
		return newSetupError(SetupIncomplete, "card %s is not in %s's hand", cardID, playerID)
	}
	chosen := sp.player.Hand[idx]
	if !chosen.IsBasicPokemon() {
		return newSetupError(SetupIncomplete, "%s is not a Basic Pokémon", chosen.Name)
	}

	sp.player.Hand = append(sp.player.Hand[:idx], sp.player.Hand[idx+1:]...)
	sp.player.Active = newPokemonInPlay(s.nextInstanceID(), chosen, 0)
	sp.activeChosen = true

	evt := rules.NewEvent(rules.EventActiveChosen, sp.player.Active.InstanceID, chosen.ID, playerID)
	evt.Cards = []string{chosen.Name}
	evt.Description = fmt.Sprintf("%s chose %s as their active Pokémon", sp.player.Name, chosen.Name)
	s.publish(evt)

	if s.everyPlayer(func(sp *setupPlayer) bool { return sp.activeChosen }) {
		s.state = SetupActiveChosen
	}
	return nil
}

// FillBench places zero or more Basic Pokémon from the hand onto the
// bench. Calling it marks the player's bench as final even when no
// cards are given.
func (s *Setup) FillBench(playerID string, cardIDs []string) error {
	if s.state != SetupActiveChosen && s.state != SetupBenchFilled {
		return newSetupError(SetupOutOfSequence, "both actives must be chosen first (state %s)", s.state)
	}
	sp := s.findPlayer(playerID)
	if sp == nil {
		return newSetupError(SetupIncomplete, "no player %s in this game", playerID)
	}
	if sp.benchFilled {
		return newSetupError(SetupOutOfSequence, "player %s already filled their bench", playerID)
	}

	for _, cardID := range cardIDs {
		if len(sp.player.Bench) >= s.ruleset.BenchLimit {
			return newSetupError(SetupIncomplete, "bench limit of %d reached", s.ruleset.BenchLimit)
		}
		idx := handIndexOf(sp.player.Hand, cardID)
		if idx < 0 {
			return newSetupError(SetupIncomplete, "card %s is not in %s's hand", cardID, playerID)
		}
		chosen := sp.player.Hand[idx]
		if !chosen.IsBasicPokemon() {
			return newSetupError(SetupIncomplete, "%s is not a Basic Pokémon", chosen.Name)
		}
		sp.player.Hand = append(sp.player.Hand[:idx], sp.player.Hand[idx+1:]...)
		placed := newPokemonInPlay(s.nextInstanceID(), chosen, 0)
		sp.player.Bench = append(sp.player.Bench, placed)

		evt := rules.NewEvent(rules.EventPokemonBenched, placed.InstanceID, chosen.ID, playerID)
		evt.Cards = []string{chosen.Name}
		evt.Description = fmt.Sprintf("%s benched %s", sp.player.Name, chosen.Name)
		s.publish(evt)
	}

	sp.benchFilled = true
	if s.everyPlayer(func(sp *setupPlayer) bool { return sp.benchFilled }) {
		s.state = SetupBenchFilled
	}
	return nil
}

// AutoPlace makes the default placements for every player who has not
// acted yet: the first Basic Pokémon in hand becomes the active, the
// rest fill the bench up to the limit. Used by bots, demos, and
// timeout handling.
func (s *Setup) AutoPlace() error {
	for _, sp := range s.players {
		if sp.activeChosen {
			continue
		}
		active := ""
		for _, c := range sp.player.Hand {
			if c.IsBasicPokemon() {
				active = c.ID
				break
			}
		}
		if active == "" {
			return newSetupError(SetupIncomplete, "player %s has no Basic Pokémon in hand", sp.player.ID)
		}
		if err := s.ChooseActive(sp.player.ID, active); err != nil {
			return err
		}
	}
	for _, sp := range s.players {
		if sp.benchFilled {
			continue
		}
		var bench []string
		for _, c := range sp.player.Hand {
			if c.IsBasicPokemon() && len(bench) < s.ruleset.BenchLimit {
				bench = append(bench, c.ID)
			}
		}
		if err := s.FillBench(sp.player.ID, bench); err != nil {
			return err
		}
	}
	return nil
}

// PlacePrizes sets aside the prize cards from the top of each deck,
// face down.
func (s *Setup) PlacePrizes() error {
	if s.state != SetupBenchFilled {
		return newSetupError(SetupOutOfSequence, "benches are not final yet (state %s)", s.state)
	}
	for _, sp := range s.players {
		p := sp.player
		n := s.ruleset.PrizeCount
		if n > len(p.Deck) {
			n = len(p.Deck)
		}
		p.Prizes = append(p.Prizes, p.Deck[:n]...)
		p.Deck = p.Deck[n:]

		evt := rules.NewEventWithAmount(rules.EventPrizesPlaced, p.ID, "", p.ID, n)
		evt.Description = fmt.Sprintf("%s set aside %d prize cards", p.Name, n)
		s.publish(evt)
	}
	s.state = SetupPrizesPlaced
	return nil
}

// Complete is the single atomic gate out of setup: it verifies every
// rung of the ladder finished for both players and hands over the
// running Game. The first turn starts immediately.
func (s *Setup) Complete(engine *rules.Engine, registry *effects.Registry) (*Game, error) {
	if s.state != SetupPrizesPlaced {
		return nil, newSetupError(SetupIncomplete, "setup is not finished (state %s)", s.state)
	}
	if engine == nil {
		engine = rules.StandardEngine()
	}
	if registry == nil {
		registry = effects.DefaultRegistry(s.logger)
	}

	g := &Game{
		id:          s.gameID,
		ruleset:     s.ruleset,
		turn:        rules.NewTurnManager(),
		outcome:     OutcomeInProgress,
		bus:         s.bus,
		engine:      engine,
		effects:     registry,
		triggers:    effects.NewTriggerManager(),
		followUps:   effects.NewQueue(),
		rng:         s.rng,
		logger:      s.logger,
		history:     s.events,
		instanceSeq: s.instanceSeq,
	}
	g.conditionOps = conditions.NewOperations(s.bus, s.gameID)
	for i, sp := range s.players {
		g.players[i] = sp.player
		g.order[i] = sp.player.ID
	}
	g.wireHistory()
	g.wireTriggers()

	s.state = SetupReady

	done := rules.NewEvent(rules.EventSetupCompleted, s.gameID, "", g.order[0])
	done.Description = "setup complete"
	g.publish(done)

	started := rules.NewEvent(rules.EventGameStarted, s.gameID, "", g.order[0])
	started.Description = fmt.Sprintf("game started, %s goes first", g.order[0])
	g.publish(started)

	g.turn.Start(g.order[0])
	g.startTurn()

	s.logger.Info("setup complete",
		zap.String("game_id", s.gameID),
		zap.String("first_player", g.order[0]),
	)
	return g, nil
}

func (s *Setup) everyPlayer(pred func(*setupPlayer) bool) bool {
	if len(s.players) != 2 {
		return false
	}
	for _, sp := range s.players {
		if !pred(sp) {
			return false
		}
	}
	return true
}

func handIndexOf(hand []card.Card, cardID string) int {
	for i, c := range hand {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

func cardNames(cards []card.Card) []string {
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Name
	}
	return names
}
