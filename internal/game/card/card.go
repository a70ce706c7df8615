package card

import (
	"fmt"

	"github.com/pkmn-engine/arena-server-go/internal/game/energy"
)

// Kind discriminates the card variants.
type Kind string

const (
	KindPokemon Kind = "POKEMON"
	KindEnergy  Kind = "ENERGY"
	KindTrainer Kind = "TRAINER"
)

// Stage represents a Pokémon evolution stage.
type Stage string

const (
	StageBasic  Stage = "BASIC"
	StageStage1 Stage = "STAGE1"
	StageStage2 Stage = "STAGE2"
	StageMega   Stage = "MEGA"
	StageGX     Stage = "GX"
	StageEX     Stage = "EX"
	StageV      Stage = "V"
	StageVMax   Stage = "VMAX"
)

// TrainerType represents the trainer card subtypes.
type TrainerType string

const (
	TrainerItem      TrainerType = "ITEM"
	TrainerSupporter TrainerType = "SUPPORTER"
	TrainerStadium   TrainerType = "STADIUM"
	TrainerTool      TrainerType = "TOOL"
)

// DamageMode describes how an attack's printed damage is computed.
type DamageMode string

const (
	// DamageFixed deals the printed amount.
	DamageFixed DamageMode = "FIXED"
	// DamagePerEnergy scales with attached energy.
	DamagePerEnergy DamageMode = "PER_ENERGY"
	// DamagePerHeads scales with coin flip results.
	DamagePerHeads DamageMode = "PER_HEADS"
	// DamagePerBench scales with benched Pokémon.
	DamagePerBench DamageMode = "PER_BENCH"
	// DamageVariable is fully computed by the attack's effect.
	DamageVariable DamageMode = "VARIABLE"
)

// Attack describes one attack printed on a Pokémon card.
type Attack struct {
	Name   string
	Cost   energy.Cost
	Damage int
	Mode   DamageMode
	Text   string
	// Effect is the registry key of the attack's scripted effect, empty for
	// plain damage attacks.
	Effect string
}

// PokemonDetail holds the Pokémon-variant fields.
type PokemonDetail struct {
	Species string
	HP      int
	// Type is the Pokémon's own energy type, matched against the
	// defender's weakness and resistance.
	Type        energy.Type
	Stage       Stage
	EvolvesFrom string
	RetreatCost int
	Weakness    energy.Type
	Resistance  energy.Type
	Attacks     []Attack
}

// EnergyDetail holds the energy-variant fields.
type EnergyDetail struct {
	EnergyType energy.Type
	// Basic energy is exempt from the deck copy limit.
	Basic bool
}

// TrainerDetail holds the trainer-variant fields.
type TrainerDetail struct {
	TrainerType TrainerType
	Text        string
	// Effect is the registry key of the trainer's scripted effect.
	Effect string
}

// Card is an immutable card definition shared by identity from the catalog.
// Exactly one of the detail pointers matches Kind.
type Card struct {
	ID      string
	Name    string
	Kind    Kind
	Pokemon *PokemonDetail
	Energy  *EnergyDetail
	Trainer *TrainerDetail
}

// NewPokemon creates a Pokémon card definition.
func NewPokemon(id, name string, detail PokemonDetail) Card {
	d := detail
	return Card{ID: id, Name: name, Kind: KindPokemon, Pokemon: &d}
}

// NewEnergy creates an energy card definition.
func NewEnergy(id, name string, energyType energy.Type, basic bool) Card {
	return Card{
		ID:     id,
		Name:   name,
		Kind:   KindEnergy,
		Energy: &EnergyDetail{EnergyType: energyType, Basic: basic},
	}
}

// NewTrainer creates a trainer card definition.
func NewTrainer(id, name string, detail TrainerDetail) Card {
	d := detail
	return Card{ID: id, Name: name, Kind: KindTrainer, Trainer: &d}
}

// IsBasicPokemon reports whether the card is a Basic-stage Pokémon,
// legal as an opening active or bench card.
func (c Card) IsBasicPokemon() bool {
	return c.Kind == KindPokemon && c.Pokemon != nil && c.Pokemon.Stage == StageBasic
}

// IsBasicEnergy reports whether the card is a basic energy card.
func (c Card) IsBasicEnergy() bool {
	return c.Kind == KindEnergy && c.Energy != nil && c.Energy.Basic
}

// AttackAt returns the attack at the given index.
func (c Card) AttackAt(index int) (Attack, error) {
	if c.Kind != KindPokemon || c.Pokemon == nil {
		return Attack{}, fmt.Errorf("card %s is not a Pokémon", c.Name)
	}
	if index < 0 || index >= len(c.Pokemon.Attacks) {
		return Attack{}, fmt.Errorf("card %s has no attack %d", c.Name, index)
	}
	return c.Pokemon.Attacks[index], nil
}

// Validate checks that the card definition is internally consistent.
func (c Card) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("card %q: missing id", c.Name)
	}
	if c.Name == "" {
		return fmt.Errorf("card %s: missing name", c.ID)
	}
	switch c.Kind {
	case KindPokemon:
		if c.Pokemon == nil {
			return fmt.Errorf("card %s: pokemon detail missing", c.Name)
		}
		if c.Pokemon.HP <= 0 {
			return fmt.Errorf("card %s: hp must be positive", c.Name)
		}
		if c.Pokemon.Stage != StageBasic && c.Pokemon.EvolvesFrom == "" {
			return fmt.Errorf("card %s: evolved stage needs evolves_from", c.Name)
		}
	case KindEnergy:
		if c.Energy == nil {
			return fmt.Errorf("card %s: energy detail missing", c.Name)
		}
		if !c.Energy.EnergyType.Valid() {
			return fmt.Errorf("card %s: invalid energy type", c.Name)
		}
	case KindTrainer:
		if c.Trainer == nil {
			return fmt.Errorf("card %s: trainer detail missing", c.Name)
		}
	default:
		return fmt.Errorf("card %s: unknown kind %q", c.Name, c.Kind)
	}
	return nil
}
