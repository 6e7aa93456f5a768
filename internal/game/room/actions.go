package room

import (
	"context"
	"fmt"

	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"go.uber.org/zap"
)

// GetNCards takes n cards from the top of the draw pile, shuffling the
// discard pile back in when the draw pile runs short.
func (r *Room) GetNCards(_ context.Context, n int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}
	if len(r.drawPile) < n && len(r.discard) > 0 {
		r.shuffles++
		pile := make([]*card.Card, 0, len(r.discard))
		for _, id := range r.discard {
			pile = append(pile, r.cards[id])
		}
		r.drawPile = append(r.drawPile, card.Shuffle(pile, r.cfg.Seed+r.shuffles)...)
		r.discard = nil
		r.logger.Debug("discard pile reshuffled", zap.Int("draw_pile", len(r.drawPile)))
	}
	if len(r.drawPile) == 0 {
		return nil, ErrDeckExhausted
	}
	n = min(n, len(r.drawPile))
	ids := append([]int(nil), r.drawPile[:n]...)
	r.drawPile = r.drawPile[n:]
	return ids, nil
}

// PutOnDrawPile moves a card to the top of the draw pile.
func (r *Room) PutOnDrawPile(_ context.Context, id int) error {
	if _, ok := r.cards[id]; !ok {
		return fmt.Errorf("putting card %d on the draw pile: unknown card", id)
	}
	r.detach(id)
	r.drawPile = append([]int{id}, r.drawPile...)
	return nil
}

// DrawCards moves n cards from the draw pile into the player's hand.
func (r *Room) DrawCards(ctx context.Context, p skill.Player, n int) error {
	seat, err := r.mustLookup(p)
	if err != nil {
		return err
	}
	if n <= 0 || !seat.alive {
		return nil
	}
	ids, err := r.GetNCards(ctx, n)
	if err != nil {
		return fmt.Errorf("drawing %d for %s: %w", n, seat.name, err)
	}
	seat.hand = append(seat.hand, ids...)
	_, err = r.RaiseEvent(ctx, rules.EventCardDrawnDone, seat, &rules.CardsMoved{
		Player:  seat.name,
		CardIDs: ids,
		Zone:    rules.PlaceHand,
	})
	return err
}

// ObtainCard moves a card into the player's hand from wherever it is.
func (r *Room) ObtainCard(ctx context.Context, p skill.Player, id int) error {
	seat, err := r.mustLookup(p)
	if err != nil {
		return err
	}
	if _, ok := r.cards[id]; !ok {
		return fmt.Errorf("obtaining card %d: unknown card", id)
	}
	r.detach(id)
	seat.hand = append(seat.hand, id)
	_, err = r.RaiseEvent(ctx, rules.EventCardGotOneTime, seat, &rules.CardsMoved{
		Player:  seat.name,
		CardIDs: []int{id},
		Zone:    rules.PlaceHand,
	})
	return err
}

// ThrowCard moves a card to the discard pile.
func (r *Room) ThrowCard(ctx context.Context, id int) error {
	if _, ok := r.cards[id]; !ok {
		return fmt.Errorf("throwing card %d: unknown card", id)
	}
	var owner *Player
	for _, p := range r.players {
		if p.removeCard(id) {
			owner = p
			break
		}
	}
	if owner == nil {
		r.detach(id)
	}
	r.discard = append(r.discard, id)
	if owner == nil {
		return nil
	}
	_, err := r.RaiseEvent(ctx, rules.EventCardDiscarded, owner, &rules.CardsMoved{
		Player:  owner.name,
		CardIDs: []int{id},
		Zone:    rules.PlaceDiscard,
	})
	return err
}

// Damage resolves a damage instance. The source's PREDAMAGE and DAMAGE and
// the victim's DAMAGED_BEGIN may prevent it by consuming the event or by
// lowering the amount to zero.
func (r *Room) Damage(ctx context.Context, damage *rules.DamageStruct) error {
	if damage == nil || damage.Damage <= 0 {
		return nil
	}
	victim, ok := r.byName[damage.To]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, damage.To)
	}
	if !victim.alive {
		return nil
	}
	source, hasSource := r.byName[damage.From]

	if hasSource {
		if prevented, err := r.RaiseEvent(ctx, rules.EventPredamage, source, damage); err != nil || prevented {
			return err
		}
	}
	if prevented, err := r.RaiseEvent(ctx, rules.EventDamagedBegin, victim, damage); err != nil || prevented {
		return err
	}
	if hasSource {
		if prevented, err := r.RaiseEvent(ctx, rules.EventDamage, source, damage); err != nil || prevented {
			return err
		}
	}
	if damage.Damage <= 0 {
		return nil
	}

	r.logger.Debug("damage",
		zap.String("from", damage.From),
		zap.String("to", damage.To),
		zap.Int("amount", damage.Damage),
		zap.Stringer("nature", damage.Nature),
	)
	if err := r.changeHP(ctx, victim, -damage.Damage, damage); err != nil {
		return err
	}
	if _, err := r.RaiseEvent(ctx, rules.EventDamaged, victim, damage); err != nil {
		return err
	}
	_, err := r.RaiseEvent(ctx, rules.EventDamageComplete, victim, damage)
	return err
}

// LoseHP removes hit points without a damage source.
func (r *Room) LoseHP(ctx context.Context, p skill.Player, n int) error {
	seat, err := r.mustLookup(p)
	if err != nil {
		return err
	}
	if n <= 0 || !seat.alive {
		return nil
	}
	lost := n
	if prevented, err := r.RaiseEvent(ctx, rules.EventHpLost, seat, &lost); err != nil || prevented {
		return err
	}
	if lost <= 0 {
		return nil
	}
	return r.changeHP(ctx, seat, -lost, nil)
}

// Recover restores up to n hit points, never above the maximum.
func (r *Room) Recover(ctx context.Context, p skill.Player, n int) error {
	seat, err := r.mustLookup(p)
	if err != nil {
		return err
	}
	if n <= 0 || !seat.alive || !seat.IsWounded() {
		return nil
	}
	rec := &rules.Recover{Who: seat.name, Recover: min(n, seat.maxHP-seat.hp), CardID: -1}
	if err := r.changeHP(ctx, seat, rec.Recover, nil); err != nil {
		return err
	}
	_, err = r.RaiseEvent(ctx, rules.EventHpRecover, seat, rec)
	return err
}

// LoseMaxHP lowers the maximum hit points, cutting current hit points down
// to the new maximum. A player left with no maximum dies.
func (r *Room) LoseMaxHP(ctx context.Context, p skill.Player, n int) error {
	seat, err := r.mustLookup(p)
	if err != nil {
		return err
	}
	if n <= 0 || !seat.alive {
		return nil
	}
	seat.maxHP = max(0, seat.maxHP-n)
	before := seat.hp
	seat.hp = min(seat.hp, seat.maxHP)
	r.bus.Publish(rules.NewEventWithAmount(rules.EventHpChanged, seat.name, "", seat.hp-before))
	r.logger.Debug("max hp lost", zap.String("player", seat.name), zap.Int("max_hp", seat.maxHP))
	if seat.maxHP == 0 {
		return r.KillPlayer(ctx, seat, nil)
	}
	return nil
}

// TurnOver flips the player's general. A face-down player flips back up
// instead of taking their next turn.
func (r *Room) TurnOver(ctx context.Context, p skill.Player) error {
	seat, err := r.mustLookup(p)
	if err != nil {
		return err
	}
	seat.faceUp = !seat.faceUp
	r.logger.Debug("turned over", zap.String("player", seat.name), zap.Bool("face_up", seat.faceUp))
	_, err = r.RaiseEvent(ctx, rules.EventTurnedOver, seat, nil)
	return err
}

// changeHP applies a hit point delta and enters the dying state at zero.
func (r *Room) changeHP(ctx context.Context, p *Player, delta int, cause *rules.DamageStruct) error {
	before := p.hp
	p.hp = min(p.hp+delta, p.maxHP)
	evt := rules.NewEventWithAmount(rules.EventHpChanged, p.name, "", p.hp-before)
	if cause != nil {
		evt.Payload = cause
	}
	r.bus.Publish(evt)
	if p.hp > 0 {
		return nil
	}
	return r.dying(ctx, p, cause)
}

// dying gives the dying player's skills a chance to save them before the
// player is killed.
func (r *Room) dying(ctx context.Context, p *Player, cause *rules.DamageStruct) error {
	dying := &rules.DeathStruct{Who: p.name, Damage: cause}
	if cause != nil {
		dying.Killer = cause.From
	}
	if _, err := r.RaiseEvent(ctx, rules.EventDying, p, dying); err != nil {
		return err
	}
	if p.hp > 0 || !p.alive {
		return nil
	}
	return r.KillPlayer(ctx, p, cause)
}

// KillPlayer removes a player from the game. The victim's DEATH round runs
// after the player is marked dead, so only skills with their own
// triggerable check see it. The victim's cards are discarded.
func (r *Room) KillPlayer(ctx context.Context, victim skill.Player, damage *rules.DamageStruct) error {
	seat, err := r.mustLookup(victim)
	if err != nil {
		return err
	}
	if !seat.alive {
		return nil
	}
	seat.alive = false
	death := &rules.DeathStruct{Who: seat.name, Damage: damage}
	if damage != nil {
		death.Killer = damage.From
	}
	r.logger.Info("player died",
		zap.String("player", seat.name),
		zap.String("killer", death.Killer),
	)
	if _, err := r.RaiseEvent(ctx, rules.EventDeath, seat, death); err != nil {
		return err
	}

	lost := append(seat.Hand(), seat.equipIDs()...)
	for _, id := range lost {
		seat.removeCard(id)
		r.discard = append(r.discard, id)
	}
	for _, name := range seat.piles.Names() {
		ids := seat.piles.Clear(name)
		r.notifier.PileChanged(seat.name, name, ids, false)
		r.discard = append(r.discard, ids...)
	}
	r.scratch.Clear(seat.name)
	r.checkGameOver()
	return nil
}

// AcquireSkill grants a skill and its related auxiliary skills.
func (r *Room) AcquireSkill(_ context.Context, p skill.Player, name string) error {
	seat, err := r.mustLookup(p)
	if err != nil {
		return err
	}
	if err := r.grant(seat, name); err != nil {
		return err
	}
	r.logger.Debug("skill acquired", zap.String("player", seat.name), zap.String("skill", name))
	return nil
}

// DetachSkill removes a skill and its related auxiliary skills.
func (r *Room) DetachSkill(_ context.Context, p skill.Player, name string) error {
	seat, err := r.mustLookup(p)
	if err != nil {
		return err
	}
	r.revoke(seat, name)
	r.logger.Debug("skill detached", zap.String("player", seat.name), zap.String("skill", name))
	return nil
}

// ChangeGeneral replaces a player's general. With a general lookup the old
// general's skills are swapped for the new one's, and the new skills see a
// GAME_START round of their own.
func (r *Room) ChangeGeneral(ctx context.Context, p skill.Player, general string) error {
	seat, err := r.mustLookup(p)
	if err != nil {
		return err
	}
	old := seat.general
	seat.general = general
	r.logger.Info("general changed",
		zap.String("player", seat.name),
		zap.String("from", old),
		zap.String("to", general),
	)
	if r.generals == nil {
		return nil
	}
	if skills, ok := r.generals(old); ok {
		for _, name := range skills {
			r.revoke(seat, name)
		}
	}
	skills, ok := r.generals(general)
	if !ok {
		return nil
	}
	for _, name := range skills {
		if err := r.grant(seat, name); err != nil {
			return err
		}
	}
	_, err = r.RaiseEvent(ctx, rules.EventGameStart, seat, nil)
	return err
}

func (r *Room) checkGameOver() {
	if r.over {
		return
	}
	alive := r.AlivePlayers()
	if len(alive) > 1 {
		return
	}
	r.over = true
	if len(alive) == 1 {
		r.winner = alive[0].Name()
	}
	evt := rules.NewEvent(rules.EventGameFinished, r.winner, "")
	r.bus.Publish(evt)
	r.logger.Info("game over", zap.String("winner", r.winner))
}
