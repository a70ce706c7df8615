package conditions

import (
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// Kind identifies a special condition on an in-play Pokémon.
type Kind string

const (
	Poisoned  Kind = rules.ConditionPoisoned
	Burned    Kind = rules.ConditionBurned
	Asleep    Kind = rules.ConditionAsleep
	Paralyzed Kind = rules.ConditionParalyzed
	Confused  Kind = rules.ConditionConfused
	// Trapped prevents retreating until cured; it comes from scripted
	// effects rather than the classic condition list.
	Trapped Kind = rules.ConditionTrapped
)

var allKinds = []Kind{Poisoned, Burned, Asleep, Paralyzed, Confused, Trapped}

// AllKinds returns every condition kind in stable order.
func AllKinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k is a known condition kind.
func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// Rotational reports whether the condition occupies the exclusive
// "rotation" slot: a Pokémon can be Asleep, Confused, or Paralyzed,
// but only one of the three at a time.
func (k Kind) Rotational() bool {
	return k == Asleep || k == Confused || k == Paralyzed
}

// TickDamage returns the damage dealt between turns by the condition.
func (k Kind) TickDamage() int {
	switch k {
	case Poisoned:
		return 10
	case Burned:
		return 20
	default:
		return 0
	}
}

// FlipToCure reports whether a between-turns coin flip can cure the
// condition.
func (k Kind) FlipToCure() bool {
	return k == Asleep || k == Burned
}
