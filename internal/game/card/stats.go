package card

import "github.com/pkmn-engine/arena-server-go/internal/game/energy"

// Statistics summarizes a deck's composition.
type Statistics struct {
	Total       int
	Pokemon     int
	Basics      int
	Evolutions  int
	Trainers    int
	EnergyCards int
	// EnergyTypes counts energy cards per type.
	EnergyTypes map[energy.Type]int
	// Species counts Pokémon cards per species name.
	Species map[string]int
}

// Stats walks the deck once and tallies its composition.
func Stats(deck Deck) Statistics {
	s := Statistics{
		Total:       len(deck),
		EnergyTypes: map[energy.Type]int{},
		Species:     map[string]int{},
	}
	for _, c := range deck {
		switch c.Kind {
		case KindPokemon:
			s.Pokemon++
			if c.IsBasicPokemon() {
				s.Basics++
			} else {
				s.Evolutions++
			}
			if c.Pokemon != nil {
				s.Species[c.Pokemon.Species]++
			}
		case KindTrainer:
			s.Trainers++
		case KindEnergy:
			s.EnergyCards++
			if c.Energy != nil {
				s.EnergyTypes[c.Energy.EnergyType]++
			}
		}
	}
	return s
}
