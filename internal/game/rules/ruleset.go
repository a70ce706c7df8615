package rules

// Ruleset holds the configurable limits of a match. A Ruleset is fixed
// when the game is created and never changes afterwards.
type Ruleset struct {
	// DeckSize is the exact number of cards per deck.
	DeckSize int
	// HandSize is the number of cards in the opening hand.
	HandSize int
	// PrizeCount is the number of face-down prize cards per player.
	PrizeCount int
	// BenchLimit is the maximum number of benched Pokémon.
	BenchLimit int
	// MaxHandSize caps the hand; zero means unlimited.
	MaxHandSize int
	// MaxMulligans bounds the redraw loop per player during setup.
	MaxMulligans int
	// CopyLimit is the maximum number of copies of one card identity in
	// a deck. Basic energy is exempt.
	CopyLimit int
	// EnergyPerTurn is the number of manual energy attachments allowed
	// per turn.
	EnergyPerTurn int
	// CompensationDraws lets a player draw one extra card per opposing
	// mulligan beyond their own, once setup finishes.
	CompensationDraws bool
	// FirstTurnAttack permits the player taking the first turn of the
	// game to attack.
	FirstTurnAttack bool
	// MaxEffectDepth bounds synchronous effect chains before the
	// executor aborts with an effect loop error.
	MaxEffectDepth int
}

// DefaultRuleset returns the standard two-player match configuration.
func DefaultRuleset() Ruleset {
	return Ruleset{
		DeckSize:          60,
		HandSize:          7,
		PrizeCount:        6,
		BenchLimit:        5,
		MaxHandSize:       0,
		MaxMulligans:      10,
		CopyLimit:         4,
		EnergyPerTurn:     1,
		CompensationDraws: true,
		FirstTurnAttack:   false,
		MaxEffectDepth:    16,
	}
}
