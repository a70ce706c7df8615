package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/energy"
)

type jsonAttack struct {
	Name   string `json:"name"`
	Cost   string `json:"cost"`
	Damage int    `json:"damage"`
	Mode   string `json:"mode,omitempty"`
	Text   string `json:"text,omitempty"`
	Effect string `json:"effect,omitempty"`
}

type jsonPokemon struct {
	Species     string       `json:"species,omitempty"`
	HP          int          `json:"hp"`
	Type        string       `json:"type"`
	Stage       string       `json:"stage"`
	EvolvesFrom string       `json:"evolves_from,omitempty"`
	RetreatCost int          `json:"retreat_cost"`
	Weakness    string       `json:"weakness,omitempty"`
	Resistance  string       `json:"resistance,omitempty"`
	Attacks     []jsonAttack `json:"attacks,omitempty"`
}

type jsonEnergy struct {
	Type  string `json:"type"`
	Basic bool   `json:"basic"`
}

type jsonTrainer struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Effect string `json:"effect,omitempty"`
}

type jsonCard struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Kind    string       `json:"kind"`
	Pokemon *jsonPokemon `json:"pokemon,omitempty"`
	Energy  *jsonEnergy  `json:"energy,omitempty"`
	Trainer *jsonTrainer `json:"trainer,omitempty"`
}

// LoadJSON reads a card array. Each entry carries the variant detail
// matching its kind; attack costs are comma-separated energy lists.
func LoadJSON(r io.Reader) ([]card.Card, error) {
	var records []jsonCard
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, newImportError("json", 0, "%v", err)
	}

	cards := make([]card.Card, 0, len(records))
	seen := make(map[string]int, len(records))
	for i, rec := range records {
		pos := i + 1
		if prev, dup := seen[rec.ID]; dup {
			return nil, newImportError("json", pos, "card id %q already used by record %d", rec.ID, prev)
		}
		seen[rec.ID] = pos

		def, err := rec.toCard()
		if err != nil {
			return nil, newImportError("json", pos, "%v", err)
		}
		cards = append(cards, def)
	}
	return cards, nil
}

func (rec jsonCard) toCard() (card.Card, error) {
	switch card.Kind(strings.ToUpper(strings.TrimSpace(rec.Kind))) {
	case card.KindPokemon:
		if rec.Pokemon == nil {
			return card.Card{}, fmt.Errorf("card %q: pokemon detail missing", rec.ID)
		}
		return rec.toPokemon()
	case card.KindEnergy:
		if rec.Energy == nil {
			return card.Card{}, fmt.Errorf("card %q: energy detail missing", rec.ID)
		}
		t, err := energy.ParseType(rec.Energy.Type)
		if err != nil {
			return card.Card{}, fmt.Errorf("card %q: %w", rec.ID, err)
		}
		def := card.NewEnergy(rec.ID, rec.Name, t, rec.Energy.Basic)
		return def, def.Validate()
	case card.KindTrainer:
		if rec.Trainer == nil {
			return card.Card{}, fmt.Errorf("card %q: trainer detail missing", rec.ID)
		}
		tt, err := parseTrainerType(rec.Trainer.Type)
		if err != nil {
			return card.Card{}, fmt.Errorf("card %q: %w", rec.ID, err)
		}
		def := card.NewTrainer(rec.ID, rec.Name, card.TrainerDetail{
			TrainerType: tt,
			Text:        rec.Trainer.Text,
			Effect:      rec.Trainer.Effect,
		})
		return def, def.Validate()
	default:
		return card.Card{}, fmt.Errorf("card %q: unknown kind %q", rec.ID, rec.Kind)
	}
}

func (rec jsonCard) toPokemon() (card.Card, error) {
	p := rec.Pokemon

	ownType, err := energy.ParseType(p.Type)
	if err != nil {
		return card.Card{}, fmt.Errorf("card %q: %w", rec.ID, err)
	}
	stage, err := parseStage(p.Stage)
	if err != nil {
		return card.Card{}, fmt.Errorf("card %q: %w", rec.ID, err)
	}
	weakness, err := parseOptionalType(p.Weakness)
	if err != nil {
		return card.Card{}, fmt.Errorf("card %q: weakness: %w", rec.ID, err)
	}
	resistance, err := parseOptionalType(p.Resistance)
	if err != nil {
		return card.Card{}, fmt.Errorf("card %q: resistance: %w", rec.ID, err)
	}

	attacks := make([]card.Attack, 0, len(p.Attacks))
	for _, a := range p.Attacks {
		cost, err := energy.ParseCost(a.Cost)
		if err != nil {
			return card.Card{}, fmt.Errorf("card %q: attack %q: %w", rec.ID, a.Name, err)
		}
		mode, err := parseDamageMode(a.Mode)
		if err != nil {
			return card.Card{}, fmt.Errorf("card %q: attack %q: %w", rec.ID, a.Name, err)
		}
		if a.Damage < 0 {
			return card.Card{}, fmt.Errorf("card %q: attack %q: negative damage %d", rec.ID, a.Name, a.Damage)
		}
		attacks = append(attacks, card.Attack{
			Name:   a.Name,
			Cost:   cost,
			Damage: a.Damage,
			Mode:   mode,
			Text:   a.Text,
			Effect: a.Effect,
		})
	}

	species := p.Species
	if species == "" {
		species = rec.Name
	}
	def := card.NewPokemon(rec.ID, rec.Name, card.PokemonDetail{
		Species:     species,
		HP:          p.HP,
		Type:        ownType,
		Stage:       stage,
		EvolvesFrom: strings.TrimSpace(p.EvolvesFrom),
		RetreatCost: p.RetreatCost,
		Weakness:    weakness,
		Resistance:  resistance,
		Attacks:     attacks,
	})
	return def, def.Validate()
}
