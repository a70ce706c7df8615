package card

import (
	"testing"

	"github.com/pkmn-engine/arena-server-go/internal/game/energy"
)

func TestBuildDeterministicOrder(t *testing.T) {
	catalog := map[string]Card{
		"sv-001": testPokemon("sv-001", "Bulbasaur"),
		"sv-025": testPokemon("sv-025", "Pikachu"),
		"sv-e04": NewEnergy("sv-e04", "Lightning Energy", energy.Lightning, true),
	}
	lookup := func(id string) (Card, bool) {
		c, ok := catalog[id]
		return c, ok
	}
	list := Decklist{"sv-025": 2, "sv-001": 1, "sv-e04": 3}

	first, err := Build(lookup, list)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := Build(lookup, list)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(first) != 6 {
		t.Fatalf("expected 6 cards, got %d", len(first))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("order differs at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
	// Sorted by ID: sv-001 before sv-025 before sv-e04.
	if first[0].ID != "sv-001" || first[1].ID != "sv-025" || first[5].ID != "sv-e04" {
		t.Errorf("unexpected order: %v", first.Names())
	}
}

func TestBuildUnknownCard(t *testing.T) {
	lookup := func(string) (Card, bool) { return Card{}, false }
	if _, err := Build(lookup, Decklist{"missing": 1}); err == nil {
		t.Fatal("expected error for unknown card id")
	}
}

func TestBuildRejectsNonPositiveCount(t *testing.T) {
	catalog := map[string]Card{"sv-025": testPokemon("sv-025", "Pikachu")}
	lookup := func(id string) (Card, bool) {
		c, ok := catalog[id]
		return c, ok
	}
	if _, err := Build(lookup, Decklist{"sv-025": 0}); err == nil {
		t.Fatal("expected error for zero count")
	}
}

func TestStats(t *testing.T) {
	deck := testDeck(t)
	s := Stats(deck)
	if s.Total != 60 {
		t.Errorf("Total = %d, want 60", s.Total)
	}
	if s.Pokemon != 8 || s.Basics != 8 || s.Evolutions != 0 {
		t.Errorf("Pokemon counts = %d/%d/%d, want 8/8/0", s.Pokemon, s.Basics, s.Evolutions)
	}
	if s.Trainers != 4 {
		t.Errorf("Trainers = %d, want 4", s.Trainers)
	}
	if s.EnergyCards != 48 {
		t.Errorf("EnergyCards = %d, want 48", s.EnergyCards)
	}
	if s.EnergyTypes[energy.Lightning] != 48 {
		t.Errorf("Lightning energy = %d, want 48", s.EnergyTypes[energy.Lightning])
	}
	if s.Species["Pikachu"] != 4 {
		t.Errorf("Pikachu species count = %d, want 4", s.Species["Pikachu"])
	}
}
