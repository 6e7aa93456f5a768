package content

import (
	"context"
	"slices"

	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"go.uber.org/zap"
)

var standardRelations []relation

func standardSkills() []skill.Skill {
	return []skill.Skill{wushuang(), fangzhu(), zhiheng()}
}

func standardCardEffects() []cardEffect {
	return []cardEffect{
		{"zhiheng_card", zhihengEffect},
	}
}

// wushuang makes every slash of its owner need two jinks.
func wushuang() *skill.TriggerSkill {
	return skill.NewTrigger(skill.Meta{Name: "wushuang", Frequency: skill.Compulsory},
		[]rules.EventType{rules.EventSlashEffect},
		func(_ context.Context, _ rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
			effect, ok := payload.(*rules.SlashEffect)
			if !ok || effect.From != p.Name() {
				return skill.Continue, nil
			}
			effect.JinkNum = 2
			room.Logger().Debug("wushuang", zap.String("from", effect.From), zap.String("to", effect.To))
			return skill.Continue, nil
		})
}

// fangzhu has another player draw as many cards as its owner has lost hit
// points and turn over.
func fangzhu() *skill.TriggerSkill {
	return skill.NewMasochism(skill.Meta{Name: "fangzhu"}, func(ctx context.Context, room skill.Room, p skill.Player, _ *rules.DamageStruct) error {
		target, err := room.AskForPlayerChosen(ctx, p, room.OtherPlayers(p), "fangzhu")
		if err != nil || target == nil {
			return err
		}
		if n := lostHP(p); n > 0 {
			if err := room.DrawCards(ctx, target, n); err != nil {
				return err
			}
		}
		return room.TurnOver(ctx, target)
	})
}

func zhiheng() *skill.ViewAsSkill {
	return skill.NewZeroCard(skill.Meta{Name: "zhiheng"}, skillCard("zhiheng_card"),
		skill.WithEnabledAtPlay(func(p skill.Player) bool {
			return p.UsedTimes("zhiheng") == 0 && p.HandCount() > 0
		}))
}

// zhihengEffect discards any number of hand cards and draws as many.
func zhihengEffect(ctx context.Context, room skill.Room, from skill.Player, _ *card.Card) error {
	hand := from.Hand()
	var picked []int
	for len(hand) > 0 {
		id, err := room.AskForAG(ctx, from, hand, true, "zhiheng")
		if err != nil {
			return err
		}
		if !slices.Contains(hand, id) {
			break
		}
		picked = append(picked, id)
		hand = slices.DeleteFunc(hand, func(h int) bool { return h == id })
	}
	if len(picked) == 0 {
		return nil
	}
	for _, id := range picked {
		if err := room.ThrowCard(ctx, id); err != nil {
			return err
		}
	}
	return room.DrawCards(ctx, from, len(picked))
}
