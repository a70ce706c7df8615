package rules

import (
	"fmt"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/energy"
)

// Special condition names as they appear in Pokémon snapshots.
const (
	ConditionPoisoned  = "POISONED"
	ConditionBurned    = "BURNED"
	ConditionAsleep    = "ASLEEP"
	ConditionParalyzed = "PARALYZED"
	ConditionConfused  = "CONFUSED"
	ConditionTrapped   = "TRAPPED"
)

// TurnOrderRule rejects actions from anyone but the active player.
// Concede is exempt; a player may concede at any time.
type TurnOrderRule struct{}

func (TurnOrderRule) ID() string { return "turn-order" }

func (TurnOrderRule) Check(snap Snapshot, action Action) []Violation {
	if _, ok := snap.Player(action.PlayerID); !ok {
		return []Violation{{
			Rule:    "turn-order",
			Reason:  "player is not part of this game",
			Details: map[string]string{"player": action.PlayerID},
		}}
	}
	if action.Kind == ActionConcede {
		return nil
	}
	if action.PlayerID != snap.ActivePlayer() {
		return []Violation{{
			Rule:   "turn-order",
			Reason: "it is not your turn",
			Details: map[string]string{
				"player": action.PlayerID,
				"active": snap.ActivePlayer(),
			},
		}}
	}
	return nil
}

// phaseTable lists the phases each action kind is legal in. Kinds
// missing from the table are legal in any phase.
var phaseTable = map[ActionKind][]Phase{
	ActionDrawCard:     {PhaseBeginningOfTurn},
	ActionPlayPokemon:  {PhaseMain},
	ActionEvolve:       {PhaseMain},
	ActionAttachEnergy: {PhaseMain},
	ActionPlayTrainer:  {PhaseMain},
	ActionRetreat:      {PhaseMain},
	ActionAttack:       {PhaseMain, PhaseAttack},
	ActionEndTurn:      {PhaseMain, PhaseAttack},
	ActionPass:         {PhaseBeginningOfTurn, PhaseMain, PhaseAttack, PhaseEndOfTurn},
}

// PhaseRule rejects actions attempted outside their legal phases.
type PhaseRule struct{}

func (PhaseRule) ID() string { return "phase-legality" }

func (PhaseRule) Check(snap Snapshot, action Action) []Violation {
	allowed, ok := phaseTable[action.Kind]
	if !ok {
		return nil
	}
	current := snap.Phase()
	for _, p := range allowed {
		if p == current {
			return nil
		}
	}
	return []Violation{{
		Rule:   "phase-legality",
		Reason: fmt.Sprintf("%s is not legal during %s", action.Kind, current),
		Details: map[string]string{
			"action": string(action.Kind),
			"phase":  current.String(),
		},
	}}
}

// HandContainsRule checks that card-playing actions reference a card
// actually held in the acting player's hand.
type HandContainsRule struct{}

func (HandContainsRule) ID() string { return "hand-contains" }

func (HandContainsRule) Check(snap Snapshot, action Action) []Violation {
	switch action.Kind {
	case ActionPlayPokemon, ActionEvolve, ActionAttachEnergy, ActionPlayTrainer:
	default:
		return nil
	}
	player, ok := snap.Player(action.PlayerID)
	if !ok {
		return nil
	}
	if _, found := player.HandCard(action.CardID); !found {
		return []Violation{{
			Rule:    "hand-contains",
			Reason:  "card is not in your hand",
			Details: map[string]string{"card": action.CardID},
		}}
	}
	return nil
}

// BenchRule checks that a played Pokémon is a Basic and that the bench
// has room for it.
type BenchRule struct{}

func (BenchRule) ID() string { return "bench" }

func (BenchRule) Check(snap Snapshot, action Action) []Violation {
	if action.Kind != ActionPlayPokemon {
		return nil
	}
	player, ok := snap.Player(action.PlayerID)
	if !ok {
		return nil
	}
	var violations []Violation
	if c, found := player.HandCard(action.CardID); found && !c.IsBasicPokemon() {
		violations = append(violations, Violation{
			Rule:    "bench",
			Reason:  "only Basic Pokémon can be played to the bench",
			Details: map[string]string{"card": c.Name},
		})
	}
	if len(player.Bench) >= snap.Ruleset().BenchLimit {
		violations = append(violations, Violation{
			Rule:   "bench",
			Reason: "bench is full",
			Details: map[string]string{
				"bench": fmt.Sprintf("%d", len(player.Bench)),
				"limit": fmt.Sprintf("%d", snap.Ruleset().BenchLimit),
			},
		})
	}
	return violations
}

// EvolutionRule checks stage progression and the same-turn guards.
type EvolutionRule struct{}

func (EvolutionRule) ID() string { return "evolution" }

func (EvolutionRule) Check(snap Snapshot, action Action) []Violation {
	if action.Kind != ActionEvolve {
		return nil
	}
	player, ok := snap.Player(action.PlayerID)
	if !ok {
		return nil
	}
	var violations []Violation
	evo, haveCard := player.HandCard(action.CardID)
	if haveCard && (evo.Kind != card.KindPokemon || evo.Pokemon == nil || evo.Pokemon.Stage == card.StageBasic) {
		violations = append(violations, Violation{
			Rule:    "evolution",
			Reason:  "card is not an evolution Pokémon",
			Details: map[string]string{"card": evo.Name},
		})
		haveCard = false
	}
	target, haveTarget := player.Pokemon(action.InstanceID)
	if !haveTarget {
		violations = append(violations, Violation{
			Rule:    "evolution",
			Reason:  "evolution target is not in play",
			Details: map[string]string{"target": action.InstanceID},
		})
	}
	if haveCard && haveTarget {
		if evo.Pokemon.EvolvesFrom != target.Card.Name {
			violations = append(violations, Violation{
				Rule:   "evolution",
				Reason: fmt.Sprintf("%s does not evolve from %s", evo.Name, target.Card.Name),
				Details: map[string]string{
					"card":   evo.Name,
					"target": target.Card.Name,
				},
			})
		}
		if target.EnteredThisTurn {
			violations = append(violations, Violation{
				Rule:   "evolution",
				Reason: "cannot evolve a Pokémon the turn it entered play",
			})
		}
		if target.EvolvedThisTurn {
			violations = append(violations, Violation{
				Rule:   "evolution",
				Reason: "that Pokémon already evolved this turn",
			})
		}
	}
	return violations
}

// EnergyLimitRule enforces the per-turn manual attachment allowance.
type EnergyLimitRule struct{}

func (EnergyLimitRule) ID() string { return "energy-limit" }

func (EnergyLimitRule) Check(snap Snapshot, action Action) []Violation {
	if action.Kind != ActionAttachEnergy {
		return nil
	}
	player, ok := snap.Player(action.PlayerID)
	if !ok {
		return nil
	}
	var violations []Violation
	if c, found := player.HandCard(action.CardID); found && c.Kind != card.KindEnergy {
		violations = append(violations, Violation{
			Rule:    "energy-limit",
			Reason:  "card is not an energy card",
			Details: map[string]string{"card": c.Name},
		})
	}
	if _, found := player.Pokemon(action.InstanceID); !found {
		violations = append(violations, Violation{
			Rule:    "energy-limit",
			Reason:  "attachment target is not in play",
			Details: map[string]string{"target": action.InstanceID},
		})
	}
	if player.EnergyAttachedThisTurn >= snap.Ruleset().EnergyPerTurn {
		violations = append(violations, Violation{
			Rule:   "energy-limit",
			Reason: "already attached energy this turn",
			Details: map[string]string{
				"attached": fmt.Sprintf("%d", player.EnergyAttachedThisTurn),
				"limit":    fmt.Sprintf("%d", snap.Ruleset().EnergyPerTurn),
			},
		})
	}
	return violations
}

// TrainerRule enforces the one-supporter-per-turn restriction.
type TrainerRule struct{}

func (TrainerRule) ID() string { return "trainer" }

func (TrainerRule) Check(snap Snapshot, action Action) []Violation {
	if action.Kind != ActionPlayTrainer {
		return nil
	}
	player, ok := snap.Player(action.PlayerID)
	if !ok {
		return nil
	}
	c, found := player.HandCard(action.CardID)
	if !found {
		return nil
	}
	if c.Kind != card.KindTrainer || c.Trainer == nil {
		return []Violation{{
			Rule:    "trainer",
			Reason:  "card is not a trainer card",
			Details: map[string]string{"card": c.Name},
		}}
	}
	if c.Trainer.TrainerType == card.TrainerSupporter && player.SupporterPlayedThisTurn {
		return []Violation{{
			Rule:    "trainer",
			Reason:  "already played a supporter this turn",
			Details: map[string]string{"card": c.Name},
		}}
	}
	return nil
}

// AttackRule checks attack availability: an active Pokémon with the
// selected attack, enough attached energy, no blocking condition, and
// the first-turn restriction.
type AttackRule struct{}

func (AttackRule) ID() string { return "attack" }

func (AttackRule) Check(snap Snapshot, action Action) []Violation {
	if action.Kind != ActionAttack {
		return nil
	}
	player, ok := snap.Player(action.PlayerID)
	if !ok {
		return nil
	}
	var violations []Violation
	if snap.FirstTurn() && !snap.Ruleset().FirstTurnAttack {
		violations = append(violations, Violation{
			Rule:   "attack",
			Reason: "no attacking on the first turn of the game",
		})
	}
	if player.Active == nil {
		violations = append(violations, Violation{
			Rule:   "attack",
			Reason: "no active Pokémon",
		})
		return violations
	}
	active := *player.Active
	atk, err := active.Card.AttackAt(action.AttackIndex)
	if err != nil {
		violations = append(violations, Violation{
			Rule:    "attack",
			Reason:  err.Error(),
			Details: map[string]string{"index": fmt.Sprintf("%d", action.AttackIndex)},
		})
		return violations
	}
	if missing := energy.Missing(active.Attached, atk.Cost); len(missing) > 0 {
		violations = append(violations, Violation{
			Rule:   "attack",
			Reason: fmt.Sprintf("not enough energy for %s", atk.Name),
			Details: map[string]string{
				"attack":  atk.Name,
				"missing": energy.Cost(missing).String(),
			},
		})
	}
	for _, cond := range []string{ConditionAsleep, ConditionParalyzed} {
		if active.HasCondition(cond) {
			violations = append(violations, Violation{
				Rule:    "attack",
				Reason:  fmt.Sprintf("a %s Pokémon cannot attack", cond),
				Details: map[string]string{"condition": cond},
			})
		}
	}
	return violations
}

// RetreatRule checks retreat availability: a bench replacement, the
// retreat cost covered by attached energy, no blocking condition, and
// the once-per-turn limit.
type RetreatRule struct{}

func (RetreatRule) ID() string { return "retreat" }

func (RetreatRule) Check(snap Snapshot, action Action) []Violation {
	if action.Kind != ActionRetreat {
		return nil
	}
	player, ok := snap.Player(action.PlayerID)
	if !ok {
		return nil
	}
	var violations []Violation
	if player.Active == nil {
		return []Violation{{Rule: "retreat", Reason: "no active Pokémon"}}
	}
	active := *player.Active
	if len(player.Bench) == 0 {
		violations = append(violations, Violation{
			Rule:   "retreat",
			Reason: "no benched Pokémon to promote",
		})
	} else if action.InstanceID != "" {
		found := false
		for _, b := range player.Bench {
			if b.InstanceID == action.InstanceID {
				found = true
				break
			}
		}
		if !found {
			violations = append(violations, Violation{
				Rule:    "retreat",
				Reason:  "replacement is not on your bench",
				Details: map[string]string{"target": action.InstanceID},
			})
		}
	}
	cost := 0
	if active.Card.Pokemon != nil {
		cost = active.Card.Pokemon.RetreatCost
	}
	if len(active.Attached) < cost {
		violations = append(violations, Violation{
			Rule:   "retreat",
			Reason: "not enough energy to pay the retreat cost",
			Details: map[string]string{
				"cost":     fmt.Sprintf("%d", cost),
				"attached": fmt.Sprintf("%d", len(active.Attached)),
			},
		})
	}
	if player.RetreatedThisTurn {
		violations = append(violations, Violation{
			Rule:   "retreat",
			Reason: "already retreated this turn",
		})
	}
	for _, cond := range []string{ConditionAsleep, ConditionParalyzed, ConditionTrapped} {
		if active.HasCondition(cond) {
			violations = append(violations, Violation{
				Rule:    "retreat",
				Reason:  fmt.Sprintf("a %s Pokémon cannot retreat", cond),
				Details: map[string]string{"condition": cond},
			})
		}
	}
	return violations
}

// DrawRule permits exactly one mandatory draw at the beginning of each
// turn. An empty deck is not a violation; drawing from it is handled
// by the win condition check.
type DrawRule struct{}

func (DrawRule) ID() string { return "draw" }

func (DrawRule) Check(snap Snapshot, action Action) []Violation {
	if action.Kind != ActionDrawCard {
		return nil
	}
	player, ok := snap.Player(action.PlayerID)
	if !ok {
		return nil
	}
	if player.DrewThisTurn {
		return []Violation{{
			Rule:   "draw",
			Reason: "already drew this turn",
		}}
	}
	return nil
}

// HandLimitRule caps the hand size when the ruleset sets a maximum.
// The default ruleset leaves the hand unlimited.
type HandLimitRule struct{}

func (HandLimitRule) ID() string { return "hand-limit" }

func (HandLimitRule) Check(snap Snapshot, action Action) []Violation {
	if action.Kind != ActionDrawCard {
		return nil
	}
	limit := snap.Ruleset().MaxHandSize
	if limit <= 0 {
		return nil
	}
	player, ok := snap.Player(action.PlayerID)
	if !ok {
		return nil
	}
	if len(player.Hand) >= limit {
		return []Violation{{
			Rule:   "hand-limit",
			Reason: "hand is at the maximum size",
			Details: map[string]string{
				"hand":  fmt.Sprintf("%d", len(player.Hand)),
				"limit": fmt.Sprintf("%d", limit),
			},
		}}
	}
	return nil
}
