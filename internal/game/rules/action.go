package rules

import "fmt"

// ActionKind identifies what a player is trying to do.
type ActionKind string

const (
	// ActionDrawCard is the mandatory draw at the beginning of a turn.
	ActionDrawCard     ActionKind = "DRAW_CARD"
	ActionPlayPokemon  ActionKind = "PLAY_POKEMON"
	ActionEvolve       ActionKind = "EVOLVE"
	ActionAttachEnergy ActionKind = "ATTACH_ENERGY"
	ActionPlayTrainer  ActionKind = "PLAY_TRAINER"
	ActionAttack       ActionKind = "ATTACK"
	ActionRetreat      ActionKind = "RETREAT"
	// ActionPass advances to the next phase without acting.
	ActionPass    ActionKind = "PASS"
	ActionEndTurn ActionKind = "END_TURN"
	ActionConcede ActionKind = "CONCEDE"
)

// Action is one player request against a running game. The executor
// validates it against the rule engine before applying any mutation.
type Action struct {
	Kind     ActionKind
	PlayerID string
	// CardID names a card in the acting player's hand, for actions that
	// play a card.
	CardID string
	// InstanceID names a Pokémon already in play owned by the acting
	// player (evolution target, energy recipient, retreat replacement).
	InstanceID string
	// TargetID names an opposing Pokémon instance, for attacks that
	// need an explicit target.
	TargetID string
	// AttackIndex selects which printed attack to use.
	AttackIndex int
	Metadata    map[string]string
}

func (a Action) String() string {
	switch a.Kind {
	case ActionPlayPokemon, ActionEvolve, ActionAttachEnergy, ActionPlayTrainer:
		return fmt.Sprintf("%s[%s card=%s target=%s]", a.Kind, a.PlayerID, a.CardID, a.InstanceID)
	case ActionAttack:
		return fmt.Sprintf("%s[%s attack=%d]", a.Kind, a.PlayerID, a.AttackIndex)
	case ActionRetreat:
		return fmt.Sprintf("%s[%s to=%s]", a.Kind, a.PlayerID, a.InstanceID)
	default:
		return fmt.Sprintf("%s[%s]", a.Kind, a.PlayerID)
	}
}
