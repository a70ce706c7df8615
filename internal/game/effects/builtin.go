package effects

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// Builtin effect kinds referenced by card scripts.
const (
	KindApplyPoison      Kind = "apply-poison"
	KindApplyBurn        Kind = "apply-burn"
	KindApplySleep       Kind = "apply-sleep"
	KindApplyParalysis   Kind = "apply-paralysis"
	KindApplyConfusion   Kind = "apply-confusion"
	KindTrapTarget       Kind = "trap-target"
	KindFlipForCondition Kind = "flip-for-condition"
	KindRecoilDamage     Kind = "recoil-damage"
	KindHealSelf         Kind = "heal-self"
	KindDrawCards        Kind = "draw-cards"
	KindDelayedDraw      Kind = "delayed-draw"
)

// conditionEffect builds an effect that puts one special condition on
// the defending Pokémon.
func conditionEffect(kind Kind, condition, description string) Effect {
	return Effect{
		Kind:        kind,
		Description: description,
		Apply: func(ctx *Context) error {
			if ctx.TargetID == "" {
				return fmt.Errorf("%s: no target", kind)
			}
			return ctx.State.ApplyCondition(ctx.TargetID, condition)
		},
	}
}

// flipForConditionEffect applies the condition named in the script
// metadata only when a coin flip lands heads.
func flipForConditionEffect() Effect {
	return Effect{
		Kind:        KindFlipForCondition,
		Description: "Flip a coin. If heads, apply a special condition to the defending Pokémon.",
		Apply: func(ctx *Context) error {
			if ctx.TargetID == "" {
				return fmt.Errorf("%s: no target", KindFlipForCondition)
			}
			condition := ctx.Meta("condition", rules.ConditionParalyzed)
			if !ctx.State.FlipCoin(ctx.Controller) {
				return nil
			}
			return ctx.State.ApplyCondition(ctx.TargetID, condition)
		},
	}
}

// recoilDamageEffect damages the attacker itself.
func recoilDamageEffect() Effect {
	return Effect{
		Kind:        KindRecoilDamage,
		Description: "This Pokémon does damage to itself.",
		Apply: func(ctx *Context) error {
			if ctx.Amount <= 0 {
				return nil
			}
			return ctx.State.DealDamage(ctx.SourceID, ctx.Amount, ctx.SourceID)
		},
	}
}

// healSelfEffect removes damage from the attacker.
func healSelfEffect() Effect {
	return Effect{
		Kind:        KindHealSelf,
		Description: "Remove damage from this Pokémon.",
		Apply: func(ctx *Context) error {
			if ctx.Amount <= 0 {
				return nil
			}
			return ctx.State.Heal(ctx.SourceID, ctx.Amount)
		},
	}
}

// drawCardsEffect draws cards for the controller.
func drawCardsEffect() Effect {
	return Effect{
		Kind:        KindDrawCards,
		Description: "Draw cards.",
		Apply: func(ctx *Context) error {
			count := ctx.Amount
			if count <= 0 {
				count = 1
			}
			return ctx.State.DrawCards(ctx.Controller, count)
		},
	}
}

// delayedDrawEffect schedules a one-card draw as a follow-up, after
// the current action has fully applied.
func delayedDrawEffect() Effect {
	return Effect{
		Kind:        KindDelayedDraw,
		Description: "Draw a card after this action resolves.",
		Apply: func(ctx *Context) error {
			controller := ctx.Controller
			state := ctx.State
			state.Enqueue(FollowUp{
				ID:          uuid.NewString(),
				Controller:  controller,
				Description: "Delayed draw",
				Kind:        FollowUpScripted,
				SourceID:    ctx.SourceID,
				Run: func() error {
					return state.DrawCards(controller, 1)
				},
			})
			return nil
		},
	}
}

// DefaultRegistry returns a registry preloaded with the builtin
// effects used by the standard card set.
func DefaultRegistry(logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	builtins := []Effect{
		conditionEffect(KindApplyPoison, rules.ConditionPoisoned, "The defending Pokémon is now Poisoned."),
		conditionEffect(KindApplyBurn, rules.ConditionBurned, "The defending Pokémon is now Burned."),
		conditionEffect(KindApplySleep, rules.ConditionAsleep, "The defending Pokémon is now Asleep."),
		conditionEffect(KindApplyParalysis, rules.ConditionParalyzed, "The defending Pokémon is now Paralyzed."),
		conditionEffect(KindApplyConfusion, rules.ConditionConfused, "The defending Pokémon is now Confused."),
		conditionEffect(KindTrapTarget, rules.ConditionTrapped, "The defending Pokémon cannot retreat."),
		flipForConditionEffect(),
		recoilDamageEffect(),
		healSelfEffect(),
		drawCardsEffect(),
		delayedDrawEffect(),
	}
	for _, effect := range builtins {
		if err := r.Register(effect); err != nil && logger != nil {
			logger.Warn("Failed to register builtin effect",
				zap.String("kind", string(effect.Kind)),
				zap.Error(err))
		}
	}
	return r
}
