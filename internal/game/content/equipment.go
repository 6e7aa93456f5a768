package content

import (
	"context"

	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"go.uber.org/zap"
)

func equipmentSkills() []skill.Skill {
	return []skill.Skill{qinggangSword(), eightDiagram(), renwangShield(), vine()}
}

// qinggangSword ignores the armor of its slash targets until the slash is
// finished.
func qinggangSword() *skill.TriggerSkill {
	return skill.NewWeapon(skill.Meta{Name: "qinggang_sword", Frequency: skill.Compulsory},
		[]rules.EventType{rules.EventSlashEffect, rules.EventCardFinished},
		func(_ context.Context, event rules.EventType, room skill.Room, _ skill.Player, payload any) (skill.Result, error) {
			switch data := payload.(type) {
			case *rules.SlashEffect:
				if to, ok := room.Player(data.To); ok {
					to.SetFlag(skill.ArmorNullifiedFlag)
				}
			case *rules.CardUse:
				if event != rules.EventCardFinished {
					break
				}
				for _, name := range data.To {
					if to, ok := room.Player(name); ok {
						to.UnsetFlag(skill.ArmorNullifiedFlag)
					}
				}
			}
			return skill.Continue, nil
		})
}

// eightDiagram provides a jink on a red judge.
func eightDiagram() *skill.TriggerSkill {
	return skill.NewArmor(skill.Meta{Name: "eight_diagram", Frequency: skill.Frequent},
		[]rules.EventType{rules.EventCardAsked},
		func(ctx context.Context, _ rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
			asked, ok := payload.(*rules.CardResponse)
			if !ok || asked.Pattern != "jink" {
				return skill.Continue, nil
			}
			invoke, err := room.AskForSkillInvoke(ctx, p, "eight_diagram")
			if err != nil || !invoke {
				return skill.Continue, err
			}
			red, err := judge(ctx, room, p, "eight_diagram", (*card.Card).IsRed)
			return skill.Consume(red), err
		})
}

// renwangShield nullifies black slashes.
func renwangShield() *skill.TriggerSkill {
	return skill.NewArmor(skill.Meta{Name: "renwang_shield", Frequency: skill.Compulsory},
		[]rules.EventType{rules.EventSlashEffected},
		func(_ context.Context, _ rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
			effect, ok := payload.(*rules.SlashEffect)
			if !ok || !effect.Black {
				return skill.Continue, nil
			}
			room.Logger().Debug("black slash nullified", zap.String("player", p.Name()), zap.String("armor", "renwang_shield"))
			return skill.Consumed, nil
		})
}

// vine nullifies normal slashes and burns for one extra point.
func vine() *skill.TriggerSkill {
	return skill.NewArmor(skill.Meta{Name: "vine", Frequency: skill.Compulsory},
		[]rules.EventType{rules.EventSlashEffected, rules.EventDamagedBegin},
		func(_ context.Context, _ rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
			switch data := payload.(type) {
			case *rules.SlashEffect:
				if data.Nature == rules.DamageNormal {
					room.Logger().Debug("normal slash nullified", zap.String("player", p.Name()), zap.String("armor", "vine"))
					return skill.Consumed, nil
				}
			case *rules.DamageStruct:
				if data.Nature == rules.DamageFire {
					data.Damage++
				}
			}
			return skill.Continue, nil
		})
}
