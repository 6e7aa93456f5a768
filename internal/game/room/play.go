package room

import (
	"context"
	"fmt"

	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"go.uber.org/zap"
)

// maxPlayActions bounds how many cards one play phase may use.
const maxPlayActions = 16

// playPhase plays a simple line: equip what can be equipped, eat a peach
// when wounded, use skill cards, then slash while allowed. Every choice
// goes through the answerer so scripted and interactive players can steer
// it.
func (r *Room) playPhase(ctx context.Context, p *Player) error {
	declined := make(map[string]bool)
	for range maxPlayActions {
		if r.over || !p.alive {
			return nil
		}
		acted, err := r.playOne(ctx, p, declined)
		if err != nil || !acted {
			return err
		}
	}
	return nil
}

func (r *Room) playOne(ctx context.Context, p *Player, declined map[string]bool) (bool, error) {
	for _, id := range p.hand {
		c := r.engine.FilterCard(p, r.cards[id], rules.PlaceHand)
		if c.Is(card.SubtypeWeapon) || c.Is(card.SubtypeArmor) {
			return true, r.useEquip(ctx, p, r.cards[id])
		}
	}
	if p.IsWounded() {
		for _, id := range p.hand {
			if c := r.engine.FilterCard(p, r.cards[id], rules.PlaceHand); c.Name == "peach" {
				return true, r.usePeach(ctx, p, c)
			}
		}
	}
	if used, err := r.useSkillCard(ctx, p, declined); err != nil || used {
		return used, err
	}
	if !r.canSlash(p) {
		return false, nil
	}
	slash := r.findSlash(p)
	if slash == nil {
		return false, nil
	}
	targets := r.slashTargets(p, slash)
	if len(targets) == 0 {
		return false, nil
	}
	target, err := r.AskForPlayerChosen(ctx, p, targets, "slash")
	if err != nil || target == nil {
		return false, err
	}
	return true, r.useSlash(ctx, p, r.byName[target.Name()], slash)
}

func (r *Room) useEquip(ctx context.Context, p *Player, c *card.Card) error {
	r.detach(c.ID)
	use := &rules.CardUse{From: p.name, To: []string{p.name}, CardID: c.ID}
	if _, err := r.RaiseEvent(ctx, rules.EventCardUsed, p, use); err != nil {
		return err
	}
	if old := p.equip(c); old != nil {
		r.discard = append(r.discard, old.ID)
	}
	if c.Skill != "" {
		if _, ok := r.registry.Lookup(c.Skill); ok {
			if err := r.engine.Install(c.Skill); err != nil {
				return err
			}
		}
	}
	r.logger.Debug("equipped", zap.String("player", p.name), zap.String("card", c.Name))
	return nil
}

func (r *Room) usePeach(ctx context.Context, p *Player, c *card.Card) error {
	if err := r.spend(c); err != nil {
		return err
	}
	use := &rules.CardUse{From: p.name, To: []string{p.name}, CardID: c.ID, Skill: c.SkillName}
	if c.IsVirtual() {
		use.Virtual = c.Name
	}
	if _, err := r.RaiseEvent(ctx, rules.EventCardUsed, p, use); err != nil {
		return err
	}
	return r.Recover(ctx, p, 1)
}

// useSkillCard offers the player's zero-card substitution skills whose
// card has a registered effect. A declined skill is not offered again in
// the same play phase.
func (r *Room) useSkillCard(ctx context.Context, p *Player, declined map[string]bool) (bool, error) {
	for _, vs := range r.engine.UsableAtPlay(p) {
		if vs.Kind() != skill.KindZeroCard || declined[vs.Name()] {
			continue
		}
		produced, ok := r.engine.Substitute(vs, nil)
		if !ok {
			continue
		}
		effect, ok := r.registry.CardEffect(produced.Name)
		if !ok {
			continue
		}
		invoke, err := r.AskForSkillInvoke(ctx, p, vs.Name())
		if err != nil {
			return false, err
		}
		if !invoke {
			declined[vs.Name()] = true
			continue
		}
		use := &rules.CardUse{From: p.name, CardID: produced.ID, Virtual: produced.Name, Skill: vs.Name()}
		if _, err := r.RaiseEvent(ctx, rules.EventCardUsed, p, use); err != nil {
			return true, err
		}
		r.logger.Debug("skill card used", zap.String("player", p.name), zap.String("card", produced.Name))
		if err := effect(ctx, r, p, produced); err != nil {
			return true, fmt.Errorf("resolving %s: %w", produced.Name, err)
		}
		_, err = r.RaiseEvent(ctx, rules.EventCardFinished, p, use)
		return true, err
	}
	return false, nil
}

// canSlash allows one slash per turn, or any number with a crossbow.
func (r *Room) canSlash(p *Player) bool {
	return p.UsedTimes("slash") < 1 || p.HasWeapon("crossbow")
}

// findSlash returns a slash the player can use: a hand card that reads as
// a slash after filter skills, or one produced by a substitution skill
// from a single hand card.
func (r *Room) findSlash(p *Player) *card.Card {
	for _, id := range p.hand {
		if c := r.engine.FilterCard(p, r.cards[id], rules.PlaceHand); card.MatchPattern("slash", c) {
			return c
		}
	}
	for _, vs := range r.engine.UsableAtPlay(p) {
		if produced, ok := r.engine.Substitute(vs, nil); ok && card.MatchPattern("slash", produced) {
			return produced
		}
		for _, id := range p.hand {
			sel := []card.Item{{Card: r.cards[id], Place: rules.PlaceHand}}
			if produced, ok := r.engine.Substitute(vs, sel); ok && card.MatchPattern("slash", produced) {
				return produced
			}
		}
	}
	return nil
}

// Distance returns the seat distance between two alive players after
// distance skills, never less than 1.
func (r *Room) Distance(from, to skill.Player) int {
	if from == nil || to == nil || from.Name() == to.Name() {
		return 0
	}
	alive := r.AlivePlayers()
	pos := func(name string) int {
		for i, p := range alive {
			if p.Name() == name {
				return i
			}
		}
		return -1
	}
	a, b := pos(from.Name()), pos(to.Name())
	if a < 0 || b < 0 {
		return 0
	}
	right := (b - a + len(alive)) % len(alive)
	d := min(right, len(alive)-right)
	return max(1, d+r.engine.DistanceCorrection(from, to))
}

// AttackRange is the weapon's range, or 1 unarmed.
func (r *Room) AttackRange(p skill.Player) int {
	if w := p.Weapon(); w != nil && w.Range > 0 {
		return w.Range
	}
	return 1
}

func (r *Room) slashTargets(p *Player, slash *card.Card) []skill.Player {
	var out []skill.Player
	for _, other := range r.OtherPlayers(p) {
		if r.Distance(p, other) > r.AttackRange(p) {
			continue
		}
		if ps, prohibited := r.engine.IsProhibited(p, other, slash); prohibited {
			r.logger.Debug("slash prohibited", zap.String("target", other.Name()), zap.String("skill", ps.Name()))
			continue
		}
		out = append(out, other)
	}
	return out
}

// spend moves a used card, or the physical cards behind a virtual one, to
// the discard pile.
func (r *Room) spend(c *card.Card) error {
	ids := c.SubCards
	if !c.IsVirtual() {
		ids = []int{c.ID}
	}
	for _, id := range ids {
		r.detach(id)
		r.discard = append(r.discard, id)
	}
	return nil
}

func slashNature(name string) rules.DamageNature {
	switch name {
	case "fire_slash":
		return rules.DamageFire
	case "thunder_slash":
		return rules.DamageThunder
	default:
		return rules.DamageNormal
	}
}

// useSlash resolves a slash: CARD_USED, SLASH_EFFECT for the source,
// SLASH_EFFECTED for the target (consumed means nullified), SLASH_PROCEED
// for the source (consumed means it cannot be dodged), then jink responses
// and the damage.
func (r *Room) useSlash(ctx context.Context, from, to *Player, slash *card.Card) error {
	if err := r.spend(slash); err != nil {
		return err
	}
	use := &rules.CardUse{From: from.name, To: []string{to.name}, CardID: slash.ID, Skill: slash.SkillName}
	if slash.IsVirtual() {
		use.Virtual = slash.Name
	}
	if _, err := r.RaiseEvent(ctx, rules.EventCardUsed, from, use); err != nil {
		return err
	}
	defer func() {
		_, _ = r.RaiseEvent(ctx, rules.EventCardFinished, from, use)
	}()

	effect := &rules.SlashEffect{
		From:    from.name,
		To:      to.name,
		CardID:  slash.ID,
		Nature:  slashNature(slash.Name),
		Black:   slash.IsBlack(),
		JinkNum: 1,
	}
	if _, err := r.RaiseEvent(ctx, rules.EventSlashEffect, from, effect); err != nil {
		return err
	}
	nullified, err := r.RaiseEvent(ctx, rules.EventSlashEffected, to, effect)
	if err != nil || nullified {
		return err
	}
	forced, err := r.RaiseEvent(ctx, rules.EventSlashProceed, from, effect)
	if err != nil {
		return err
	}
	if !forced {
		dodged, err := r.respondJinks(ctx, to, effect.JinkNum)
		if err != nil {
			return err
		}
		if dodged {
			_, err := r.RaiseEvent(ctx, rules.EventSlashMissed, from, effect)
			return err
		}
	}
	if _, err := r.RaiseEvent(ctx, rules.EventSlashHit, from, effect); err != nil {
		return err
	}
	damage := rules.NewDamage(from.name, to.name)
	damage.CardID = slash.ID
	damage.Nature = effect.Nature
	if effect.Drank {
		damage.Damage++
	}
	return r.Damage(ctx, damage)
}

// respondJinks asks the target for n jinks. Each jink is first offered to
// the target's CARD_ASKED skills (armor, for instance); a consumed round
// counts as a jink provided. Otherwise a jink in hand may be played.
func (r *Room) respondJinks(ctx context.Context, to *Player, n int) (bool, error) {
	for range n {
		asked := &rules.CardResponse{Player: to.name, CardID: -1, Pattern: "jink"}
		provided, err := r.RaiseEvent(ctx, rules.EventCardAsked, to, asked)
		if err != nil {
			return false, err
		}
		if provided {
			continue
		}
		jink := r.findResponse(to, "jink")
		if jink == nil {
			return false, nil
		}
		answer, err := r.AskForChoice(ctx, to, "jink", []string{"jink", "cancel"})
		if err != nil {
			return false, err
		}
		if answer != "jink" {
			return false, nil
		}
		if err := r.spend(jink); err != nil {
			return false, err
		}
		asked.CardID = jink.ID
		if _, err := r.RaiseEvent(ctx, rules.EventCardResponsed, to, asked); err != nil {
			return false, err
		}
	}
	return true, nil
}

// findResponse returns a card matching pattern from the hand, directly or
// through a response substitution skill.
func (r *Room) findResponse(p *Player, pattern string) *card.Card {
	for _, id := range p.hand {
		if c := r.engine.FilterCard(p, r.cards[id], rules.PlaceHand); card.MatchPattern(pattern, c) {
			return c
		}
	}
	for _, vs := range r.engine.UsableAtResponse(p, pattern) {
		for _, id := range p.hand {
			sel := []card.Item{{Card: r.cards[id], Place: rules.PlaceHand}}
			if produced, ok := r.engine.Substitute(vs, sel); ok && card.MatchPattern(pattern, produced) {
				return produced
			}
		}
	}
	return nil
}
