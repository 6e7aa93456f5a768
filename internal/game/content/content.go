// Package content is the playable skill set: the god generals, the standard
// skills they lean on, the equipment skills and the roster that ties
// generals to skills.
package content

import (
	"context"
	"fmt"
	"slices"

	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"go.uber.org/zap"
)

// Marks and piles shared between skills.
const (
	MarkNightmare = "@nightmare"
	MarkWrath     = "@wrath"
	MarkFlame     = "@flame"
	MarkStar      = "@star"
	MarkGale      = "@gale"
	MarkFog       = "@fog"
	MarkBear      = "@bear"

	PileStars = "stars"

	// TagWuqianTarget holds the name of the player whose armor wuqian
	// ignores until its owner's turn ends.
	TagWuqianTarget = "WuqianTarget"
)

type relation struct {
	main string
	aux  string
}

// Register adds every skill of the package to reg, relates auxiliary skills
// to their main skills and binds the skill card effects.
func Register(reg *skill.Registry) error {
	skills := slices.Concat(godSkills(), standardSkills(), equipmentSkills())
	if err := reg.Register(skills...); err != nil {
		return fmt.Errorf("registering skills: %w", err)
	}
	for _, rel := range slices.Concat(godRelations, standardRelations) {
		if err := reg.Relate(rel.main, rel.aux); err != nil {
			return fmt.Errorf("relating %s to %s: %w", rel.aux, rel.main, err)
		}
	}
	effects := slices.Concat(godCardEffects(), standardCardEffects())
	for _, ce := range effects {
		if err := reg.RegisterCardEffect(ce.name, ce.effect); err != nil {
			return fmt.Errorf("binding %s: %w", ce.name, err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding every skill of the package.
func NewRegistry() (*skill.Registry, error) {
	reg := skill.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

type cardEffect struct {
	name   string
	effect skill.CardEffect
}

func skillCard(name string) func() *card.Card {
	return func() *card.Card { return card.NewVirtual(name, card.NoSuit, 0) }
}

// judge reveals the top card of the draw pile for p and discards it. The
// result is good when good accepts the card; an empty draw pile is bad.
func judge(ctx context.Context, room skill.Room, p skill.Player, reason string, good func(c *card.Card) bool) (bool, error) {
	ids, err := room.GetNCards(ctx, 1)
	if err != nil {
		return false, fmt.Errorf("judge for %s: %w", reason, err)
	}
	if len(ids) == 0 {
		return false, nil
	}
	c, ok := room.Card(ids[0])
	if !ok {
		return false, fmt.Errorf("judge for %s: unknown card %d", reason, ids[0])
	}
	result := good(c)
	room.Logger().Debug("judge",
		zap.String("player", p.Name()),
		zap.String("reason", reason),
		zap.Stringer("card", c),
		zap.Bool("good", result),
	)
	return result, room.ThrowCard(ctx, ids[0])
}

// usedCard resolves the card behind a CARD_USED or CARD_RESPONSED payload.
func usedCard(room skill.Room, payload any) *card.Card {
	switch data := payload.(type) {
	case *rules.CardUse:
		if data.Virtual != "" {
			return card.NewVirtual(data.Virtual, card.NoSuit, 0)
		}
		c, _ := room.Card(data.CardID)
		return c
	case *rules.CardResponse:
		c, _ := room.Card(data.CardID)
		return c
	}
	return nil
}

// chooseTargets lets from pick up to limit distinct players. After the
// first pick, from is asked whether to add another.
func chooseTargets(ctx context.Context, room skill.Room, from skill.Player, candidates []skill.Player, limit int, reason string) ([]skill.Player, error) {
	var chosen []skill.Player
	for len(chosen) < limit && len(candidates) > 0 {
		if len(chosen) > 0 {
			more, err := room.AskForSkillInvoke(ctx, from, reason)
			if err != nil || !more {
				return chosen, err
			}
		}
		target, err := room.AskForPlayerChosen(ctx, from, candidates, reason)
		if err != nil || target == nil {
			return chosen, err
		}
		chosen = append(chosen, target)
		candidates = slices.DeleteFunc(slices.Clone(candidates), func(p skill.Player) bool {
			return p.Name() == target.Name()
		})
	}
	return chosen, nil
}

func lostHP(p skill.Player) int { return p.MaxHP() - p.HP() }

func hasSkillAlive(self *skill.TriggerSkill, target skill.Player) bool {
	return target != nil && target.IsAlive() && target.HasSkill(self.Name())
}
