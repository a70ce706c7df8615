package game

import (
	"math/rand"
	"time"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
)

// Rand is the injected random source for one game. Every shuffle and
// coin flip goes through it, so a fixed seed makes a whole match
// deterministic and replayable.
type Rand struct {
	seed int64
	rng  *rand.Rand
}

// NewRand creates a random source from the given seed.
func NewRand(seed int64) *Rand {
	return &Rand{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// NewTimeRand creates a random source seeded from the wall clock.
func NewTimeRand() *Rand {
	return NewRand(time.Now().UnixNano())
}

// Seed returns the seed the source was created with.
func (r *Rand) Seed() int64 {
	return r.seed
}

// ShuffleCards performs a Fisher-Yates shuffle of the pile in place.
func (r *Rand) ShuffleCards(cards []card.Card) {
	r.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// FlipCoin returns true for heads.
func (r *Rand) FlipCoin() bool {
	return r.rng.Intn(2) == 0
}

// Intn returns a uniform value in [0, n).
func (r *Rand) Intn(n int) int {
	return r.rng.Intn(n)
}
