package game

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/effects"
	"github.com/pkmn-engine/arena-server-go/internal/game/energy"
	"github.com/pkmn-engine/arena-server-go/internal/game/rules"
)

// wireTriggers routes every published event through the trigger
// manager; the follow-ups triggers build go onto the queue for the
// executor's drain pass.
func (g *Game) wireTriggers() {
	g.bus.Subscribe(func(evt rules.Event) {
		for _, item := range g.triggers.Handle(evt) {
			g.followUps.Enqueue(item)
		}
	})
}

// Execute runs one player action through the full pipeline: the
// finished-game gate, rule validation against a single snapshot, the
// state transition, knockout resolution, the follow-up drain, and the
// win check. It returns every event the action produced, in causal
// order. A rejected action leaves the game untouched and returns an
// *ActionRejected; no events are published for it.
//
// Effect handlers may call Execute re-entrantly; chains deeper than
// the ruleset's MaxEffectDepth are rejected with an effect loop error.
func (g *Game) Execute(act rules.Action) ([]rules.Event, error) {
	if g.outcome == OutcomeFinished {
		return nil, &ActionRejected{Kind: RejectedGameOver}
	}
	if g.depth >= g.ruleset.MaxEffectDepth {
		return nil, &ActionRejected{
			Kind:    RejectedEffectLoop,
			Message: fmt.Sprintf("reaction chain exceeded depth %d", g.ruleset.MaxEffectDepth),
		}
	}

	snap := g.snapshotState()
	if violations := g.engine.Validate(snap, act); len(violations) > 0 {
		return nil, &ActionRejected{Kind: RejectedRuleViolations, Violations: violations}
	}

	g.depth++
	defer func() { g.depth-- }()

	mark := len(g.history)
	if err := g.apply(act); err != nil {
		return nil, err
	}
	g.resolveKnockouts()

	// Only the outermost call drains follow-ups; anything a nested
	// action enqueues is picked up by the drain already in progress.
	if g.depth == 1 && g.outcome != OutcomeFinished {
		g.drainFollowUps()
		g.resolveKnockouts()
	}
	g.checkWinConditions()

	out := make([]rules.Event, len(g.history)-mark)
	copy(out, g.history[mark:])
	return out, nil
}

func (g *Game) apply(act rules.Action) error {
	player, ok := g.Player(act.PlayerID)
	if !ok {
		return &ActionRejected{Kind: RejectedUnknownAction, Message: fmt.Sprintf("no player %s", act.PlayerID)}
	}

	switch act.Kind {
	case rules.ActionDrawCard:
		return g.applyDraw(player)
	case rules.ActionPlayPokemon:
		return g.applyPlayPokemon(player, act)
	case rules.ActionEvolve:
		return g.applyEvolve(player, act)
	case rules.ActionAttachEnergy:
		return g.applyAttachEnergy(player, act)
	case rules.ActionPlayTrainer:
		return g.applyPlayTrainer(player, act)
	case rules.ActionAttack:
		return g.applyAttack(player, act)
	case rules.ActionRetreat:
		return g.applyRetreat(player, act)
	case rules.ActionPass:
		return g.applyPass(player)
	case rules.ActionEndTurn:
		g.endCurrentTurn(player)
		return nil
	case rules.ActionConcede:
		return g.applyConcede(player)
	default:
		return &ActionRejected{Kind: RejectedUnknownAction, Message: string(act.Kind)}
	}
}

// applyDraw performs the mandatory beginning-of-turn draw. Drawing
// from an empty deck is the deck-out loss; the win check picks it up.
func (g *Game) applyDraw(p *Player) error {
	if len(p.Deck) == 0 {
		g.deckedOut = p.ID
		return nil
	}
	p.drawCards(1)
	p.DrewThisTurn = true

	// The drawn card stays hidden; the event carries only the count.
	evt := rules.NewEventWithAmount(rules.EventCardDrawn, p.ID, "", p.ID, 1)
	evt.Description = fmt.Sprintf("%s drew a card", p.Name)
	g.publish(evt)

	g.advancePhase()
	return nil
}

func (g *Game) applyPlayPokemon(p *Player, act rules.Action) error {
	c, found := p.removeFromHand(act.CardID)
	if !found {
		return fmt.Errorf("card %s vanished from %s's hand", act.CardID, p.ID)
	}
	placed := newPokemonInPlay(g.newInstanceID(), c, g.turn.TurnNumber())
	p.Bench = append(p.Bench, placed)

	evt := rules.NewEvent(rules.EventPokemonBenched, placed.InstanceID, c.ID, p.ID)
	evt.Cards = []string{c.Name}
	evt.Description = fmt.Sprintf("%s benched %s", p.Name, c.Name)
	g.publish(evt)
	return nil
}

func (g *Game) applyEvolve(p *Player, act rules.Action) error {
	target := p.findPokemon(act.InstanceID)
	if target == nil {
		return fmt.Errorf("evolution target %s vanished", act.InstanceID)
	}
	c, found := p.removeFromHand(act.CardID)
	if !found {
		return fmt.Errorf("card %s vanished from %s's hand", act.CardID, p.ID)
	}

	previous := target.Card
	target.Evolution = append(target.Evolution, previous)
	target.Card = c
	target.EvolvedTurn = g.turn.TurnNumber()
	// Evolving cures every special condition.
	g.conditionOps.CureAll(target.Conditions, target.InstanceID, p.ID)

	evt := rules.NewEvent(rules.EventPokemonEvolved, target.InstanceID, c.ID, p.ID)
	evt.Cards = []string{c.Name}
	evt.Metadata["from"] = previous.Name
	evt.Description = fmt.Sprintf("%s evolved %s into %s", p.Name, previous.Name, c.Name)
	g.publish(evt)
	return nil
}

func (g *Game) applyAttachEnergy(p *Player, act rules.Action) error {
	target := p.findPokemon(act.InstanceID)
	if target == nil {
		return fmt.Errorf("attachment target %s vanished", act.InstanceID)
	}
	c, found := p.removeFromHand(act.CardID)
	if !found {
		return fmt.Errorf("card %s vanished from %s's hand", act.CardID, p.ID)
	}
	if c.Energy == nil {
		return fmt.Errorf("card %s is not an energy card", c.Name)
	}

	target.Attached = append(target.Attached, c.Energy.EnergyType)
	target.EnergyCards = append(target.EnergyCards, c)
	p.EnergyAttachedThisTurn++

	evt := rules.NewEvent(rules.EventEnergyAttached, target.InstanceID, c.ID, p.ID)
	evt.Cards = []string{c.Name}
	evt.Data = c.Energy.EnergyType.String()
	evt.Description = fmt.Sprintf("%s attached %s to %s", p.Name, c.Name, target.Card.Name)
	g.publish(evt)
	return nil
}

func (g *Game) applyPlayTrainer(p *Player, act rules.Action) error {
	c, found := p.removeFromHand(act.CardID)
	if !found {
		return fmt.Errorf("card %s vanished from %s's hand", act.CardID, p.ID)
	}
	if c.Trainer == nil {
		return fmt.Errorf("card %s is not a trainer card", c.Name)
	}

	evt := rules.NewEvent(rules.EventTrainerPlayed, act.InstanceID, c.ID, p.ID)
	evt.Cards = []string{c.Name}
	evt.Data = string(c.Trainer.TrainerType)
	evt.Description = fmt.Sprintf("%s played %s", p.Name, c.Name)
	g.publish(evt)

	if c.Trainer.TrainerType == card.TrainerSupporter {
		p.SupporterPlayedThisTurn = true
	}

	targetID := act.InstanceID
	if targetID == "" {
		targetID = act.TargetID
	}
	ctx := &effects.Context{
		GameID:     g.id,
		Event:      evt,
		SourceID:   c.ID,
		Controller: p.ID,
		TargetID:   targetID,
		Metadata:   act.Metadata,
		State:      effectSurface{g: g},
	}
	if err := g.effects.Apply(effects.Kind(c.Trainer.Effect), ctx); err != nil {
		g.logger.Warn("trainer effect failed",
			zap.String("game_id", g.id),
			zap.String("card", c.Name),
			zap.String("effect", c.Trainer.Effect),
			zap.Error(err),
		)
	}

	// Tools stay attached; everything else is spent.
	if c.Trainer.TrainerType == card.TrainerTool {
		if target := p.findPokemon(act.InstanceID); target != nil {
			target.Tools = append(target.Tools, c)
			return nil
		}
	}
	p.Discard = append(p.Discard, c)
	disc := rules.NewEvent(rules.EventCardDiscarded, p.ID, c.ID, p.ID)
	disc.Cards = []string{c.Name}
	disc.Description = fmt.Sprintf("%s discarded %s", p.Name, c.Name)
	g.publish(disc)
	return nil
}

func (g *Game) applyAttack(p *Player, act rules.Action) error {
	attacker := p.Active
	if attacker == nil {
		return fmt.Errorf("no active Pokémon for %s", p.ID)
	}
	atk, err := attacker.Card.AttackAt(act.AttackIndex)
	if err != nil {
		return err
	}
	opp, ok := g.Opponent(p.ID)
	if !ok || opp.Active == nil {
		return fmt.Errorf("no defending Pokémon")
	}
	defender := opp.Active

	used := rules.NewEvent(rules.EventAttackUsed, defender.InstanceID, attacker.InstanceID, p.ID)
	used.Data = atk.Name
	used.Cards = []string{attacker.Card.Name}
	used.Description = fmt.Sprintf("%s used %s", attacker.Card.Name, atk.Name)
	g.publish(used)

	damage, weak, resist := g.attackDamage(p, attacker, defender, atk)
	if damage > 0 {
		defender.Damage += damage
		evt := rules.NewEventWithAmount(rules.EventDamageDealt, defender.InstanceID, attacker.InstanceID, p.ID, damage)
		evt.Metadata["attack"] = atk.Name
		if weak {
			evt.Metadata["weakness"] = "true"
		}
		if resist {
			evt.Metadata["resistance"] = "true"
		}
		evt.Description = fmt.Sprintf("%s took %d damage from %s", defender.Card.Name, damage, atk.Name)
		g.publish(evt)
	}

	if atk.Effect != "" {
		ctx := &effects.Context{
			GameID:     g.id,
			Event:      used,
			SourceID:   attacker.InstanceID,
			Controller: p.ID,
			TargetID:   defender.InstanceID,
			Amount:     damage,
			Metadata:   act.Metadata,
			State:      effectSurface{g: g},
		}
		if err := g.effects.Apply(effects.Kind(atk.Effect), ctx); err != nil {
			g.logger.Warn("attack effect failed",
				zap.String("game_id", g.id),
				zap.String("attack", atk.Name),
				zap.String("effect", atk.Effect),
				zap.Error(err),
			)
		}
	}

	// Attack knockouts resolve before the between-turns checkup.
	g.resolveKnockouts()
	g.endCurrentTurn(p)
	return nil
}

// attackDamage computes the damage an attack deals to the defending
// active Pokémon: the printed amount under its damage mode, doubled by
// weakness, reduced 30 by resistance, never below zero. Coin-driven
// and fully scripted modes leave the base to their registered effect.
func (g *Game) attackDamage(p *Player, attacker, defender *PokemonInPlay, atk card.Attack) (damage int, weak, resist bool) {
	base := atk.Damage
	switch atk.Mode {
	case card.DamagePerEnergy:
		base = atk.Damage * len(attacker.Attached)
	case card.DamagePerBench:
		base = atk.Damage * len(p.Bench)
	case card.DamagePerHeads, card.DamageVariable:
		if _, registered := g.effects.Lookup(effects.Kind(atk.Effect)); registered {
			return 0, false, false
		}
	}
	if base <= 0 {
		return 0, false, false
	}

	attackerType := energyTypeOf(attacker)
	def := defender.Card.Pokemon
	if def != nil && attackerType != "" {
		if def.Weakness == attackerType {
			base *= 2
			weak = true
		}
		if def.Resistance == attackerType {
			base -= 30
			resist = true
		}
	}
	if base < 0 {
		base = 0
	}
	return base, weak, resist
}

func energyTypeOf(p *PokemonInPlay) energy.Type {
	if p.Card.Pokemon != nil {
		return p.Card.Pokemon.Type
	}
	return ""
}

func (g *Game) applyRetreat(p *Player, act rules.Action) error {
	active := p.Active
	if active == nil || active.Card.Pokemon == nil {
		return fmt.Errorf("no active Pokémon for %s", p.ID)
	}
	replacementID := act.InstanceID
	if replacementID == "" && len(p.Bench) > 0 {
		replacementID = p.Bench[0].InstanceID
	}
	replacement := p.removeFromBench(replacementID)
	if replacement == nil {
		return fmt.Errorf("replacement %s is not on the bench", replacementID)
	}

	// Pay the retreat cost from the oldest attachments.
	paid := active.payEnergy(active.Card.Pokemon.RetreatCost)
	if len(paid) > 0 {
		p.Discard = append(p.Discard, paid...)
		disc := rules.NewEventWithAmount(rules.EventCardDiscarded, p.ID, active.InstanceID, p.ID, len(paid))
		disc.Cards = cardNames(paid)
		disc.Description = fmt.Sprintf("%s discarded %d energy to retreat", p.Name, len(paid))
		g.publish(disc)
	}

	// Leaving the active spot cures every special condition.
	g.conditionOps.CureAll(active.Conditions, active.InstanceID, p.ID)

	p.Bench = append(p.Bench, active)
	p.Active = replacement
	p.RetreatedThisTurn = true

	evt := rules.NewEvent(rules.EventRetreated, replacement.InstanceID, active.InstanceID, p.ID)
	evt.Cards = []string{active.Card.Name, replacement.Card.Name}
	evt.Description = fmt.Sprintf("%s retreated %s for %s", p.Name, active.Card.Name, replacement.Card.Name)
	g.publish(evt)
	return nil
}

// applyPass advances one phase; passing at the end of the turn hands
// over to the opponent.
func (g *Game) applyPass(p *Player) error {
	if g.turn.CurrentPhase() == rules.PhaseEndOfTurn {
		g.endCurrentTurn(p)
		return nil
	}
	g.advancePhase()
	return nil
}

func (g *Game) applyConcede(p *Player) error {
	evt := rules.NewEvent(rules.EventPlayerConceded, p.ID, "", p.ID)
	evt.Description = fmt.Sprintf("%s conceded", p.Name)
	g.publish(evt)

	if opp, ok := g.Opponent(p.ID); ok {
		g.finish(opp.ID, "concession")
	}
	return nil
}

// endCurrentTurn runs the between-turns checkup and hands the turn to
// the opponent. When the checkup decides the game, the rotation is
// skipped.
func (g *Game) endCurrentTurn(p *Player) {
	opp, _ := g.Opponent(p.ID)

	// Checkup order: the ending player's active first.
	g.tickConditions(p, true)
	if opp != nil {
		g.tickConditions(opp, false)
	}
	g.resolveKnockouts()
	g.checkWinConditions()
	if g.outcome == OutcomeFinished {
		return
	}

	ended := rules.NewEventWithAmount(rules.EventTurnEnded, p.ID, "", p.ID, g.turn.TurnNumber())
	ended.Description = fmt.Sprintf("turn %d ended", g.turn.TurnNumber())
	g.publish(ended)

	next := ""
	if opp != nil {
		next = opp.ID
	}
	g.turn.EndTurn(next)
	g.startTurn()
}

// tickConditions applies the between-turns condition bookkeeping to
// one player's active Pokémon.
func (g *Game) tickConditions(p *Player, ownerTurnEnding bool) {
	if p == nil || p.Active == nil {
		return
	}
	active := p.Active
	outcome := g.conditionOps.BetweenTurns(active.Conditions, active.InstanceID, p.ID, ownerTurnEnding, func() bool {
		return g.flipCoin(p.ID, active.InstanceID)
	})
	if outcome.Damage > 0 {
		active.Damage += outcome.Damage
	}
}

// drainFollowUps runs queued follow-ups in enqueue order. The pass is
// bounded: a chain that keeps feeding itself past the depth limit is
// dropped with an error log instead of spinning forever.
func (g *Game) drainFollowUps() {
	processed := 0
	for !g.followUps.IsEmpty() {
		if processed >= g.ruleset.MaxEffectDepth {
			g.logger.Error("follow-up chain exceeded depth limit",
				zap.String("game_id", g.id),
				zap.Int("processed", processed),
				zap.Int("dropped", g.followUps.Len()),
			)
			g.followUps.Clear()
			return
		}
		item, err := g.followUps.Dequeue()
		if err != nil {
			return
		}
		processed++
		if item.Run == nil {
			continue
		}
		if err := item.Run(); err != nil {
			g.logger.Warn("follow-up failed",
				zap.String("game_id", g.id),
				zap.String("follow_up", item.Description),
				zap.Error(err),
			)
		}
	}
}

// resolveKnockouts sweeps both boards for Pokémon with no HP left:
// the pile goes to its owner's discard, the opponent takes prizes,
// and a knocked out active is replaced from the front of the bench.
func (g *Game) resolveKnockouts() {
	for _, owner := range g.players {
		opp, ok := g.Opponent(owner.ID)
		if !ok {
			continue
		}
		bench := make([]*PokemonInPlay, len(owner.Bench))
		copy(bench, owner.Bench)
		for _, b := range bench {
			if b.KnockedOut() {
				g.knockOut(owner, opp, b, false)
			}
		}
		if owner.Active != nil && owner.Active.KnockedOut() {
			g.knockOut(owner, opp, owner.Active, true)
		}
	}
}

func (g *Game) knockOut(owner, opp *Player, pkm *PokemonInPlay, wasActive bool) {
	evt := rules.NewEvent(rules.EventPokemonKnockedOut, pkm.InstanceID, "", owner.ID)
	evt.Cards = []string{pkm.Card.Name}
	evt.Description = fmt.Sprintf("%s was knocked out", pkm.Card.Name)
	g.publish(evt)

	owner.Discard = append(owner.Discard, pkm.allCards()...)
	if wasActive {
		owner.Active = nil
	} else {
		owner.removeFromBench(pkm.InstanceID)
	}

	g.takePrizes(opp, prizesForKnockout(pkm.Card))

	if wasActive && len(owner.Bench) > 0 {
		promoted := owner.Bench[0]
		owner.Bench = owner.Bench[1:]
		owner.Active = promoted

		prom := rules.NewEvent(rules.EventPokemonPromoted, promoted.InstanceID, "", owner.ID)
		prom.Cards = []string{promoted.Card.Name}
		prom.Description = fmt.Sprintf("%s moved to the active spot", promoted.Card.Name)
		g.publish(prom)
	}
}

// prizesForKnockout returns how many prizes a knockout awards: two
// for the oversized rule-box stages, three for VMAX, one otherwise.
func prizesForKnockout(c card.Card) int {
	if c.Pokemon == nil {
		return 1
	}
	switch c.Pokemon.Stage {
	case card.StageVMax:
		return 3
	case card.StageEX, card.StageGX, card.StageV, card.StageMega:
		return 2
	default:
		return 1
	}
}

// takePrizes moves prize cards into the player's hand, face up to the
// owner only.
func (g *Game) takePrizes(p *Player, n int) {
	if n > len(p.Prizes) {
		n = len(p.Prizes)
	}
	if n <= 0 {
		return
	}
	taken := p.Prizes[:n]
	p.Prizes = p.Prizes[n:]
	p.Hand = append(p.Hand, taken...)

	evt := rules.NewEventWithAmount(rules.EventPrizeTaken, p.ID, "", p.ID, n)
	evt.Metadata["remaining"] = strconv.Itoa(len(p.Prizes))
	evt.Description = fmt.Sprintf("%s took %d prize(s), %d left", p.Name, n, len(p.Prizes))
	g.publish(evt)
}
