package game

import (
	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/conditions"
	"github.com/pkmn-engine/arena-server-go/internal/game/energy"
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// PokemonInPlay is one Pokémon on the board: the card itself plus the
// damage, attachments, and conditions it accumulated in play.
type PokemonInPlay struct {
	InstanceID string
	Card       card.Card
	Damage     int
	// Attached lists the energy types currently providing for attack
	// and retreat costs.
	Attached energy.Cost
	// EnergyCards are the physical energy cards backing Attached, in
	// attachment order.
	EnergyCards []card.Card
	// Tools are attached trainer tool cards.
	Tools []card.Card
	// Evolution holds the earlier stage cards underneath this Pokémon.
	Evolution []card.Card
	// Conditions are the active special conditions.
	Conditions *conditions.Set
	// EnteredTurn is the turn number the Pokémon came into play, zero
	// for setup placement.
	EnteredTurn int
	// EvolvedTurn is the turn number of the most recent evolution,
	// zero if it never evolved.
	EvolvedTurn int
}

func newPokemonInPlay(instanceID string, c card.Card, turn int) *PokemonInPlay {
	return &PokemonInPlay{
		InstanceID:  instanceID,
		Card:        c,
		Attached:    energy.Cost{},
		Conditions:  conditions.NewSet(),
		EnteredTurn: turn,
	}
}

// RemainingHP returns hit points minus damage, never below zero.
func (p *PokemonInPlay) RemainingHP() int {
	if p.Card.Pokemon == nil {
		return 0
	}
	hp := p.Card.Pokemon.HP - p.Damage
	if hp < 0 {
		return 0
	}
	return hp
}

// KnockedOut reports whether accumulated damage reached the HP.
func (p *PokemonInPlay) KnockedOut() bool {
	return p.Card.Pokemon != nil && p.Damage >= p.Card.Pokemon.HP
}

// allCards returns every card in the pile this Pokémon represents: the
// card itself, evolution material, attached energy, and tools. Used
// when a knockout sends the whole pile to the discard.
func (p *PokemonInPlay) allCards() []card.Card {
	cards := make([]card.Card, 0, 1+len(p.Evolution)+len(p.EnergyCards)+len(p.Tools))
	cards = append(cards, p.Card)
	cards = append(cards, p.Evolution...)
	cards = append(cards, p.EnergyCards...)
	cards = append(cards, p.Tools...)
	return cards
}

// payEnergy removes n attachments from the front of the attachment
// lists and returns the removed energy cards. Attached and EnergyCards
// shrink together so they stay parallel.
func (p *PokemonInPlay) payEnergy(n int) []card.Card {
	if n <= 0 {
		return nil
	}
	if n > len(p.EnergyCards) {
		n = len(p.EnergyCards)
	}
	paid := make([]card.Card, n)
	copy(paid, p.EnergyCards[:n])
	p.EnergyCards = append([]card.Card{}, p.EnergyCards[n:]...)
	if n <= len(p.Attached) {
		p.Attached = append(energy.Cost{}, p.Attached[n:]...)
	} else {
		p.Attached = energy.Cost{}
	}
	return paid
}

func (p *PokemonInPlay) snapshot(currentTurn int) rules.PokemonSnapshot {
	attached := make(energy.Cost, len(p.Attached))
	copy(attached, p.Attached)
	return rules.PokemonSnapshot{
		InstanceID:      p.InstanceID,
		Card:            p.Card,
		Damage:          p.Damage,
		Attached:        attached,
		Conditions:      p.Conditions.Names(),
		EnteredThisTurn: currentTurn > 0 && p.EnteredTurn == currentTurn,
		EvolvedThisTurn: p.EvolvedTurn > 0 && p.EvolvedTurn == currentTurn,
	}
}

// Player is one side of a match: identity plus every zone the rules
// care about. Index 0 of Deck is the top card.
type Player struct {
	ID      string
	Name    string
	Deck    []card.Card
	Hand    []card.Card
	Discard []card.Card
	Prizes  []card.Card
	Active  *PokemonInPlay
	Bench   []*PokemonInPlay

	MulliganCount int

	// Per-turn flags, reset when the player's turn starts.
	DrewThisTurn            bool
	EnergyAttachedThisTurn  int
	SupporterPlayedThisTurn bool
	RetreatedThisTurn       bool
}

func newPlayer(id, name string, deck []card.Card) *Player {
	d := make([]card.Card, len(deck))
	copy(d, deck)
	return &Player{
		ID:      id,
		Name:    name,
		Deck:    d,
		Hand:    make([]card.Card, 0, 16),
		Discard: make([]card.Card, 0, 16),
		Prizes:  make([]card.Card, 0, 6),
		Bench:   make([]*PokemonInPlay, 0, 5),
	}
}

// drawCards moves up to n cards from the top of the deck to the hand
// and returns them. Fewer cards come back when the deck runs short.
func (p *Player) drawCards(n int) []card.Card {
	if n > len(p.Deck) {
		n = len(p.Deck)
	}
	if n <= 0 {
		return nil
	}
	drawn := make([]card.Card, n)
	copy(drawn, p.Deck[:n])
	p.Deck = p.Deck[n:]
	p.Hand = append(p.Hand, drawn...)
	return drawn
}

// removeFromHand takes the first hand card with the given ID.
func (p *Player) removeFromHand(cardID string) (card.Card, bool) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return card.Card{}, false
}

// returnHandToDeck moves the whole hand back on top of the deck.
func (p *Player) returnHandToDeck() {
	p.Deck = append(p.Hand, p.Deck...)
	p.Hand = make([]card.Card, 0, 16)
}

// findPokemon returns the in-play Pokémon with the instance ID,
// checking the active slot first, then the bench.
func (p *Player) findPokemon(instanceID string) *PokemonInPlay {
	if p.Active != nil && p.Active.InstanceID == instanceID {
		return p.Active
	}
	for _, b := range p.Bench {
		if b.InstanceID == instanceID {
			return b
		}
	}
	return nil
}

// benchIndex returns the bench position of the instance, or -1.
func (p *Player) benchIndex(instanceID string) int {
	for i, b := range p.Bench {
		if b.InstanceID == instanceID {
			return i
		}
	}
	return -1
}

// removeFromBench takes the Pokémon out of the bench, preserving the
// order of the rest.
func (p *Player) removeFromBench(instanceID string) *PokemonInPlay {
	idx := p.benchIndex(instanceID)
	if idx < 0 {
		return nil
	}
	taken := p.Bench[idx]
	p.Bench = append(p.Bench[:idx], p.Bench[idx+1:]...)
	return taken
}

// inPlay returns every Pokémon on the board, active first.
func (p *Player) inPlay() []*PokemonInPlay {
	out := make([]*PokemonInPlay, 0, 1+len(p.Bench))
	if p.Active != nil {
		out = append(out, p.Active)
	}
	out = append(out, p.Bench...)
	return out
}

// HasPokemonInPlay reports whether any Pokémon remains on the board.
func (p *Player) HasPokemonInPlay() bool {
	return p.Active != nil || len(p.Bench) > 0
}

// hasBasicInHand reports whether the hand holds a Basic Pokémon.
func (p *Player) hasBasicInHand() bool {
	for _, c := range p.Hand {
		if c.IsBasicPokemon() {
			return true
		}
	}
	return false
}

// hasBasicAnywhere reports whether the deck or hand holds any Basic
// Pokémon at all. A player without one can never keep a legal hand.
func (p *Player) hasBasicAnywhere() bool {
	if p.hasBasicInHand() {
		return true
	}
	for _, c := range p.Deck {
		if c.IsBasicPokemon() {
			return true
		}
	}
	return false
}

func (p *Player) resetTurnFlags() {
	p.DrewThisTurn = false
	p.EnergyAttachedThisTurn = 0
	p.SupporterPlayedThisTurn = false
	p.RetreatedThisTurn = false
}

func (p *Player) snapshot(currentTurn int) rules.PlayerSnapshot {
	hand := make([]card.Card, len(p.Hand))
	copy(hand, p.Hand)

	snap := rules.PlayerSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Hand:        hand,
		DeckSize:    len(p.Deck),
		DiscardSize: len(p.Discard),
		PrizesLeft:  len(p.Prizes),

		MulliganCount:           p.MulliganCount,
		DrewThisTurn:            p.DrewThisTurn,
		EnergyAttachedThisTurn:  p.EnergyAttachedThisTurn,
		SupporterPlayedThisTurn: p.SupporterPlayedThisTurn,
		RetreatedThisTurn:       p.RetreatedThisTurn,
	}
	if p.Active != nil {
		active := p.Active.snapshot(currentTurn)
		snap.Active = &active
	}
	snap.Bench = make([]rules.PokemonSnapshot, len(p.Bench))
	for i, b := range p.Bench {
		snap.Bench[i] = b.snapshot(currentTurn)
	}
	return snap
}
