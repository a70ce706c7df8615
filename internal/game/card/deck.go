package card

import (
	"fmt"
	"sort"
)

// Decklist is a multiset of card IDs, as submitted by a player.
type Decklist map[string]int

// Size returns the total number of cards in the list.
func (d Decklist) Size() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// Deck is an ordered pile of card definitions. The order produced by
// Build is deterministic; shuffling is the game's responsibility.
type Deck []Card

// Build expands a decklist into a deck using the given card lookup.
// Cards are emitted in sorted ID order so that equal lists always
// produce equal piles.
func Build(lookup func(id string) (Card, bool), list Decklist) (Deck, error) {
	ids := make([]string, 0, len(list))
	for id := range list {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	deck := make(Deck, 0, list.Size())
	for _, id := range ids {
		c, ok := lookup(id)
		if !ok {
			return nil, fmt.Errorf("unknown card id %q", id)
		}
		count := list[id]
		if count <= 0 {
			return nil, fmt.Errorf("card %q: count must be positive, got %d", id, count)
		}
		for i := 0; i < count; i++ {
			deck = append(deck, c)
		}
	}
	return deck, nil
}

// Copy returns a new deck with the same cards in the same order.
func (d Deck) Copy() Deck {
	out := make(Deck, len(d))
	copy(out, d)
	return out
}

// Names returns the card names in pile order, top first.
func (d Deck) Names() []string {
	names := make([]string, len(d))
	for i, c := range d {
		names[i] = c.Name
	}
	return names
}
