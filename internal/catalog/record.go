package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/energy"
)

// record is the flat card shape shared by the CSV columns and the
// database tables. One column set serves all three: kind picks which
// fields matter, energy_type doubles as a Pokémon's own type and an
// energy card's provided type.
type record struct {
	id          string
	name        string
	kind        string
	hp          int
	energyType  string
	stage       string
	evolvesFrom string
	retreatCost int
	weakness    string
	resistance  string
	attacks     string
	basicEnergy bool
	trainerType string
	rulesText   string
	effect      string
}

func (r record) toCard() (card.Card, error) {
	switch card.Kind(strings.ToUpper(strings.TrimSpace(r.kind))) {
	case card.KindPokemon:
		return r.toPokemon()
	case card.KindEnergy:
		return r.toEnergy()
	case card.KindTrainer:
		return r.toTrainer()
	default:
		return card.Card{}, fmt.Errorf("card %q: unknown kind %q", r.id, r.kind)
	}
}

func (r record) toPokemon() (card.Card, error) {
	ownType, err := energy.ParseType(r.energyType)
	if err != nil {
		return card.Card{}, fmt.Errorf("card %q: %w", r.id, err)
	}
	stage, err := parseStage(r.stage)
	if err != nil {
		return card.Card{}, fmt.Errorf("card %q: %w", r.id, err)
	}
	weakness, err := parseOptionalType(r.weakness)
	if err != nil {
		return card.Card{}, fmt.Errorf("card %q: weakness: %w", r.id, err)
	}
	resistance, err := parseOptionalType(r.resistance)
	if err != nil {
		return card.Card{}, fmt.Errorf("card %q: resistance: %w", r.id, err)
	}
	attacks, err := parsePackedAttacks(r.attacks)
	if err != nil {
		return card.Card{}, fmt.Errorf("card %q: %w", r.id, err)
	}

	def := card.NewPokemon(r.id, r.name, card.PokemonDetail{
		Species:     r.name,
		HP:          r.hp,
		Type:        ownType,
		Stage:       stage,
		EvolvesFrom: strings.TrimSpace(r.evolvesFrom),
		RetreatCost: r.retreatCost,
		Weakness:    weakness,
		Resistance:  resistance,
		Attacks:     attacks,
	})
	if err := def.Validate(); err != nil {
		return card.Card{}, err
	}
	return def, nil
}

func (r record) toEnergy() (card.Card, error) {
	t, err := energy.ParseType(r.energyType)
	if err != nil {
		return card.Card{}, fmt.Errorf("card %q: %w", r.id, err)
	}
	def := card.NewEnergy(r.id, r.name, t, r.basicEnergy)
	if err := def.Validate(); err != nil {
		return card.Card{}, err
	}
	return def, nil
}

func (r record) toTrainer() (card.Card, error) {
	tt, err := parseTrainerType(r.trainerType)
	if err != nil {
		return card.Card{}, fmt.Errorf("card %q: %w", r.id, err)
	}
	def := card.NewTrainer(r.id, r.name, card.TrainerDetail{
		TrainerType: tt,
		Text:        r.rulesText,
		Effect:      strings.TrimSpace(r.effect),
	})
	if err := def.Validate(); err != nil {
		return card.Card{}, err
	}
	return def, nil
}

// parsePackedAttacks decodes the flat attack encoding used by the CSV
// and database sources: attacks are joined with '|', each one is
// name:cost:damage with optional :mode and :effect segments, and the
// cost is a comma-separated energy list ("" for free).
//
//	Vine Whip:GRASS,COLORLESS:20
//	Gust::10:PER_HEADS:flip-double
func parsePackedAttacks(packed string) ([]card.Attack, error) {
	packed = strings.TrimSpace(packed)
	if packed == "" {
		return nil, nil
	}

	entries := strings.Split(packed, "|")
	attacks := make([]card.Attack, 0, len(entries))
	for _, entry := range entries {
		parts := strings.Split(entry, ":")
		if len(parts) < 3 || len(parts) > 5 {
			return nil, fmt.Errorf("attack %q: want name:cost:damage with optional :mode:effect", entry)
		}

		name := strings.TrimSpace(parts[0])
		if name == "" {
			return nil, fmt.Errorf("attack %q: missing name", entry)
		}
		cost, err := energy.ParseCost(parts[1])
		if err != nil {
			return nil, fmt.Errorf("attack %q: %w", name, err)
		}
		damage, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("attack %q: bad damage %q", name, parts[2])
		}
		if damage < 0 {
			return nil, fmt.Errorf("attack %q: negative damage %d", name, damage)
		}

		atk := card.Attack{Name: name, Cost: cost, Damage: damage, Mode: card.DamageFixed}
		if len(parts) >= 4 {
			mode, err := parseDamageMode(parts[3])
			if err != nil {
				return nil, fmt.Errorf("attack %q: %w", name, err)
			}
			atk.Mode = mode
		}
		if len(parts) == 5 {
			atk.Effect = strings.TrimSpace(parts[4])
		}
		attacks = append(attacks, atk)
	}
	return attacks, nil
}

func parseStage(s string) (card.Stage, error) {
	stage := card.Stage(strings.ToUpper(strings.TrimSpace(s)))
	switch stage {
	case card.StageBasic, card.StageStage1, card.StageStage2,
		card.StageMega, card.StageGX, card.StageEX, card.StageV, card.StageVMax:
		return stage, nil
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

func parseTrainerType(s string) (card.TrainerType, error) {
	tt := card.TrainerType(strings.ToUpper(strings.TrimSpace(s)))
	switch tt {
	case card.TrainerItem, card.TrainerSupporter, card.TrainerStadium, card.TrainerTool:
		return tt, nil
	}
	return "", fmt.Errorf("unknown trainer type %q", s)
}

func parseDamageMode(s string) (card.DamageMode, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	if trimmed == "" {
		return card.DamageFixed, nil
	}
	mode := card.DamageMode(trimmed)
	switch mode {
	case card.DamageFixed, card.DamagePerEnergy, card.DamagePerHeads,
		card.DamagePerBench, card.DamageVariable:
		return mode, nil
	}
	return "", fmt.Errorf("unknown damage mode %q", s)
}

func parseOptionalType(s string) (energy.Type, error) {
	if strings.TrimSpace(s) == "" {
		return energy.None, nil
	}
	return energy.ParseType(s)
}
