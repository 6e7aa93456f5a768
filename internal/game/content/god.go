package content

import (
	"cmp"
	"context"
	"slices"

	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"go.uber.org/zap"
)

var godRelations = []relation{
	{"wuhun", "#wuhun"},
	{"smallyeyan", skill.MarkAssignName(MarkFlame, 1)},
	{"qixing", "#qixing"},
	{"qixing", "#qixing-ask"},
	{"qixing", "#qixing-clear"},
	{"kuangbao", skill.MarkAssignName(MarkWrath, 2)},
	{"juejing", "#juejing"},
	{"lianpo", "#lianpo-count"},
}

func godSkills() []skill.Skill {
	return []skill.Skill{
		// shenguanyu
		wushen(), wuhun(), wuhunRevenge(),
		// shenlvmeng
		shelie(), gongxin(),
		// shenzhouyu
		qinyin(), smallYeyan(), skill.NewMarkAssign(MarkFlame, 1),
		// shenzhugeliang
		qixing(), qixingStart(), qixingAsk(), qixingClear(),
		kuangfeng(), kuangfengViewAs(), dawu(), dawuViewAs(),
		// shencaocao
		guixin(), feiying(),
		// shenlvbu
		kuangbao(), skill.NewMarkAssign(MarkWrath, 2), wumou(), wuqian(), wuqianViewAs(), shenfen(),
		// shenzhaoyun
		juejing(), juejingKeep(), longhun(),
		skill.NewConvert(skill.Meta{Name: "longpo"}, "shenzhaoyun", "chudaishenzhaoyun", ""),
		// shensimayi
		renjie(), baiyin(), jilve(), jilveViewAs(), lianpo(), lianpoCount(),
	}
}

func godCardEffects() []cardEffect {
	return []cardEffect{
		{"gongxin_card", gongxinEffect},
		{"smallyeyan_card", smallYeyanEffect},
		{"kuangfeng_card", kuangfengEffect},
		{"dawu_card", dawuEffect},
		{"wuqian_card", wuqianEffect},
		{"shenfen_card", shenfenEffect},
		{"jilve_card", jilveEffect},
	}
}

func wushen() *skill.ViewAsSkill {
	return skill.NewFilter(skill.Meta{Name: "wushen"},
		func(it card.Item) bool {
			return it.Place == rules.PlaceHand && it.Card.Suit == card.Heart
		},
		func(it card.Item) *card.Card {
			slash := card.NewVirtual("slash", it.Card.Suit, it.Card.Number)
			slash.AddSubcard(it.Card)
			return slash
		})
}

// wuhun marks whoever damages its owner with nightmares.
func wuhun() *skill.TriggerSkill {
	return skill.NewTrigger(skill.Meta{Name: "wuhun", Frequency: skill.Compulsory},
		[]rules.EventType{rules.EventDamaged},
		func(_ context.Context, _ rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
			damage, ok := payload.(*rules.DamageStruct)
			if !ok || damage.From == "" || damage.From == p.Name() {
				return skill.Continue, nil
			}
			if from, ok := room.Player(damage.From); ok {
				from.GainMark(MarkNightmare, damage.Damage)
			}
			return skill.Continue, nil
		})
}

// wuhunRevenge runs on its owner's death, so it ignores whether the owner
// is alive. The foe with the most nightmares dies unless their judge is a
// peach or god salvation.
func wuhunRevenge() *skill.TriggerSkill {
	triggerable := func(_ *skill.TriggerSkill, target skill.Player) bool {
		return target != nil && target.HasSkill("wuhun")
	}
	return skill.NewTrigger(skill.Meta{Name: "#wuhun"},
		[]rules.EventType{rules.EventDeath},
		func(ctx context.Context, _ rules.EventType, room skill.Room, p skill.Player, _ any) (skill.Result, error) {
			others := room.OtherPlayers(p)
			most := 0
			for _, other := range others {
				most = max(most, other.Mark(MarkNightmare))
			}
			if most == 0 {
				return skill.Continue, nil
			}
			var foes []skill.Player
			for _, other := range others {
				if other.Mark(MarkNightmare) == most {
					foes = append(foes, other)
				}
			}
			foe := foes[0]
			if len(foes) > 1 {
				chosen, err := room.AskForPlayerChosen(ctx, p, foes, "wuhun")
				if err != nil {
					return skill.Continue, err
				}
				if chosen != nil {
					foe = chosen
				}
			}
			good, err := judge(ctx, room, foe, "wuhun", func(c *card.Card) bool {
				return c.Name == "peach" || c.Name == "god_salvation"
			})
			if err != nil {
				return skill.Continue, err
			}
			if !good {
				room.Logger().Info("wuhun revenge",
					zap.String("from", p.Name()),
					zap.String("foe", foe.Name()),
					zap.Int("nightmare", most),
				)
				if err := room.KillPlayer(ctx, foe, nil); err != nil {
					return skill.Continue, err
				}
			}
			for _, player := range room.Players() {
				player.LoseAllMarks(MarkNightmare)
			}
			return skill.Continue, nil
		}, skill.WithTriggerable(triggerable))
}

// shelie replaces the draw phase: five cards are revealed and the owner
// keeps one of each suit.
func shelie() *skill.TriggerSkill {
	return skill.NewPhaseChange(skill.Meta{Name: "shelie"}, func(ctx context.Context, room skill.Room, p skill.Player) (bool, error) {
		if p.Phase() != rules.PhaseDraw {
			return false, nil
		}
		invoke, err := room.AskForSkillInvoke(ctx, p, "shelie")
		if err != nil || !invoke {
			return false, err
		}
		ids, err := room.GetNCards(ctx, 5)
		if err != nil {
			return false, err
		}
		suits := make(map[int]card.Suit, len(ids))
		for _, id := range ids {
			if c, ok := room.Card(id); ok {
				suits[id] = c.Suit
			}
		}
		slices.SortStableFunc(ids, func(a, b int) int { return cmp.Compare(suits[a], suits[b]) })

		for len(ids) > 0 {
			picked, err := room.AskForAG(ctx, p, ids, false, "shelie")
			if err != nil {
				return false, err
			}
			if !slices.Contains(ids, picked) {
				picked = ids[0]
			}
			var rest []int
			for _, id := range ids {
				switch {
				case id == picked:
				case suits[id] == suits[picked]:
					if err := room.ThrowCard(ctx, id); err != nil {
						return false, err
					}
				default:
					rest = append(rest, id)
				}
			}
			if err := room.ObtainCard(ctx, p, picked); err != nil {
				return false, err
			}
			ids = rest
		}
		return true, nil
	})
}

func gongxin() *skill.ViewAsSkill {
	return skill.NewZeroCard(skill.Meta{Name: "gongxin", DefaultChoice: "discard"}, skillCard("gongxin_card"),
		skill.WithEnabledAtPlay(func(p skill.Player) bool { return p.UsedTimes("gongxin") == 0 }))
}

// gongxinEffect looks at another player's hand and discards one heart or
// puts it on top of the draw pile.
func gongxinEffect(ctx context.Context, room skill.Room, from skill.Player, _ *card.Card) error {
	var targets []skill.Player
	for _, other := range room.OtherPlayers(from) {
		if other.HandCount() > 0 {
			targets = append(targets, other)
		}
	}
	target, err := room.AskForPlayerChosen(ctx, from, targets, "gongxin")
	if err != nil || target == nil {
		return err
	}
	var hearts []int
	for _, id := range target.Hand() {
		if c, ok := room.Card(id); ok && c.Suit == card.Heart {
			hearts = append(hearts, id)
		}
	}
	picked, err := room.AskForAG(ctx, from, hearts, true, "gongxin")
	if err != nil || picked < 0 {
		return err
	}
	choice, err := room.AskForChoice(ctx, from, "gongxin", []string{"discard", "put"})
	if err != nil {
		return err
	}
	if choice == "put" {
		return room.PutOnDrawPile(ctx, picked)
	}
	return room.ThrowCard(ctx, picked)
}

// qinyin counts the cards its owner discards during the discard phase;
// the second one lets every player recover or lose a hit point.
func qinyin() *skill.TriggerSkill {
	const counter = "qinyin"
	return skill.NewTrigger(skill.Meta{Name: "qinyin", DefaultChoice: "down"},
		[]rules.EventType{rules.EventCardDiscarded, rules.EventPhaseChange},
		func(ctx context.Context, event rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
			if p.Phase() != rules.PhaseDiscard {
				return skill.Continue, nil
			}
			if event == rules.EventPhaseChange {
				p.SetMark(counter, 0)
				return skill.Continue, nil
			}
			moved, ok := payload.(*rules.CardsMoved)
			if !ok || len(moved.CardIDs) == 0 {
				return skill.Continue, nil
			}
			before := p.Mark(counter)
			p.GainMark(counter, len(moved.CardIDs))
			if before >= 2 || p.Mark(counter) < 2 {
				return skill.Continue, nil
			}
			invoke, err := room.AskForSkillInvoke(ctx, p, "qinyin")
			if err != nil || !invoke {
				return skill.Continue, err
			}
			choice, err := room.AskForChoice(ctx, p, "qinyin", []string{"up", "down"})
			if err != nil {
				return skill.Continue, err
			}
			for _, target := range room.AlivePlayers() {
				if choice == "up" {
					err = room.Recover(ctx, target, 1)
				} else {
					err = room.LoseHP(ctx, target, 1)
				}
				if err != nil {
					return skill.Continue, err
				}
			}
			return skill.Continue, nil
		})
}

func smallYeyan() *skill.ViewAsSkill {
	return skill.NewZeroCard(skill.Meta{Name: "smallyeyan", Frequency: skill.Limited}, skillCard("smallyeyan_card"),
		skill.WithEnabledAtPlay(func(p skill.Player) bool {
			return p.Mark(MarkFlame) >= 1 && p.UsedTimes("smallyeyan") == 0
		}))
}

// smallYeyanEffect spends the flame on one fire damage to each of up to
// three players.
func smallYeyanEffect(ctx context.Context, room skill.Room, from skill.Player, _ *card.Card) error {
	targets, err := chooseTargets(ctx, room, from, room.OtherPlayers(from), 3, "smallyeyan")
	if err != nil || len(targets) == 0 {
		return err
	}
	from.LoseMark(MarkFlame, 1)
	for _, target := range targets {
		damage := rules.NewDamage(from.Name(), target.Name())
		damage.Nature = rules.DamageFire
		if err := room.Damage(ctx, damage); err != nil {
			return err
		}
	}
	return nil
}

// qixing lets its owner swap hand cards with the stars at the start of the
// draw phase.
func qixing() *skill.TriggerSkill {
	triggerable := func(self *skill.TriggerSkill, target skill.Player) bool {
		return hasSkillAlive(self, target) && target.Mark(MarkStar) > 0
	}
	return skill.NewPhaseChange(skill.Meta{Name: "qixing", Frequency: skill.Frequent}, func(ctx context.Context, room skill.Room, p skill.Player) (bool, error) {
		if p.Phase() == rules.PhaseDraw {
			return false, exchangeStars(ctx, room, p)
		}
		return false, nil
	}, skill.WithPriority(-1), skill.WithTriggerable(triggerable))
}

func qixingStart() *skill.TriggerSkill {
	return skill.NewGameStart(skill.Meta{Name: "#qixing"}, func(ctx context.Context, room skill.Room, p skill.Player) error {
		p.GainMark(MarkStar, 7)
		ids, err := room.GetNCards(ctx, 7)
		if err != nil {
			return err
		}
		p.AddToPile(PileStars, ids...)
		return exchangeStars(ctx, room, p)
	}, skill.WithPriority(-1))
}

// exchangeStars moves the stars the player picks into the hand and puts as
// many hand cards back.
func exchangeStars(ctx context.Context, room skill.Room, p skill.Player) error {
	stars := p.Pile(PileStars)
	taken := 0
	for len(stars) > 0 {
		id, err := room.AskForAG(ctx, p, stars, true, "qixing")
		if err != nil {
			return err
		}
		if !slices.Contains(stars, id) {
			break
		}
		stars = slices.DeleteFunc(stars, func(star int) bool { return star == id })
		p.RemoveFromPile(PileStars, id)
		if err := room.ObtainCard(ctx, p, id); err != nil {
			return err
		}
		taken++
	}
	if taken == 0 {
		return nil
	}
	back, err := room.AskForDiscard(ctx, p, "qixing", taken, false)
	if err != nil {
		return err
	}
	p.AddToPile(PileStars, back...)
	room.Logger().Debug("stars exchanged", zap.String("player", p.Name()), zap.Int("count", taken))
	return nil
}

// discardStars throws n stars of the player's choice.
func discardStars(ctx context.Context, room skill.Room, p skill.Player, n int) error {
	for range n {
		stars := p.Pile(PileStars)
		if len(stars) == 0 {
			return nil
		}
		id, err := room.AskForAG(ctx, p, stars, false, "qixing-discard")
		if err != nil {
			return err
		}
		if !slices.Contains(stars, id) {
			id = stars[0]
		}
		p.RemoveFromPile(PileStars, id)
		if err := room.ThrowCard(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// qixingAsk offers gale and fog at the end of the owner's turn and lifts
// one of each from everybody when the owner's next turn starts.
func qixingAsk() *skill.TriggerSkill {
	return skill.NewPhaseChange(skill.Meta{Name: "#qixing-ask"}, func(ctx context.Context, room skill.Room, p skill.Player) (bool, error) {
		switch p.Phase() {
		case rules.PhaseFinish:
			for _, name := range []string{"kuangfeng", "dawu"} {
				if p.Mark(MarkStar) > 0 && p.HasSkill(name) {
					if err := useStarCard(ctx, room, p, name); err != nil {
						return false, err
					}
				}
			}
		case rules.PhaseStart:
			for _, player := range room.Players() {
				if player.Mark(MarkGale) > 0 {
					player.LoseMark(MarkGale, 1)
				}
				if player.Mark(MarkFog) > 0 {
					player.LoseMark(MarkFog, 1)
				}
			}
		}
		return false, nil
	})
}

// useStarCard offers the response-only skill card of a star skill.
func useStarCard(ctx context.Context, room skill.Room, p skill.Player, name string) error {
	vs, ok := room.Registry().ViewAs(name)
	if !ok || !vs.EnabledAtResponse(p, card.CustomPatternPrefix+name) {
		return nil
	}
	produced := vs.ViewAs(nil)
	if produced == nil {
		return nil
	}
	effect, ok := room.Registry().CardEffect(produced.Name)
	if !ok {
		return nil
	}
	invoke, err := room.AskForSkillInvoke(ctx, p, name)
	if err != nil || !invoke {
		return err
	}
	use := &rules.CardUse{From: p.Name(), CardID: produced.ID, Virtual: produced.Name, Skill: vs.Name()}
	if _, err := room.RaiseEvent(ctx, rules.EventCardUsed, p, use); err != nil {
		return err
	}
	return effect(ctx, room, p, produced)
}

func qixingClear() *skill.TriggerSkill {
	triggerable := func(self *skill.TriggerSkill, target skill.Player) bool {
		return target != nil && target.HasSkill(self.Name())
	}
	return skill.NewTrigger(skill.Meta{Name: "#qixing-clear"},
		[]rules.EventType{rules.EventDeath},
		func(_ context.Context, _ rules.EventType, room skill.Room, _ skill.Player, _ any) (skill.Result, error) {
			for _, player := range room.Players() {
				player.LoseAllMarks(MarkGale)
				player.LoseAllMarks(MarkFog)
			}
			return skill.Continue, nil
		}, skill.WithTriggerable(triggerable))
}

// kuangfeng reacts for whoever carries a gale, owner or not.
func kuangfeng() *skill.TriggerSkill {
	triggerable := func(_ *skill.TriggerSkill, target skill.Player) bool {
		return target != nil && target.Mark(MarkGale) > 0
	}
	return skill.NewTrigger(skill.Meta{Name: "kuangfeng"},
		[]rules.EventType{rules.EventDamagedBegin},
		func(_ context.Context, _ rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
			damage, ok := payload.(*rules.DamageStruct)
			if !ok || damage.Nature != rules.DamageFire {
				return skill.Continue, nil
			}
			damage.Damage++
			room.Logger().Debug("gale power", zap.String("player", p.Name()), zap.Int("damage", damage.Damage))
			return skill.Continue, nil
		}, skill.WithTriggerable(triggerable), skill.WithViewAs("kuangfeng_vs"))
}

func kuangfengViewAs() *skill.ViewAsSkill {
	return skill.NewZeroCard(skill.Meta{Name: "kuangfeng_vs"}, skillCard("kuangfeng_card"),
		skill.WithEnabledAtPlay(func(skill.Player) bool { return false }),
		skill.WithEnabledAtResponse(func(_ skill.Player, pattern string) bool { return pattern == "@@kuangfeng" }))
}

func kuangfengEffect(ctx context.Context, room skill.Room, from skill.Player, _ *card.Card) error {
	target, err := room.AskForPlayerChosen(ctx, from, room.AlivePlayers(), "kuangfeng")
	if err != nil || target == nil {
		return err
	}
	if err := discardStars(ctx, room, from, 1); err != nil {
		return err
	}
	from.LoseMark(MarkStar, 1)
	target.GainMark(MarkGale, 1)
	return nil
}

// dawu shields whoever carries a fog from all but thunder damage.
func dawu() *skill.TriggerSkill {
	triggerable := func(_ *skill.TriggerSkill, target skill.Player) bool {
		return target != nil && target.Mark(MarkFog) > 0
	}
	return skill.NewTrigger(skill.Meta{Name: "dawu"},
		[]rules.EventType{rules.EventDamagedBegin},
		func(_ context.Context, _ rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
			damage, ok := payload.(*rules.DamageStruct)
			if !ok || damage.Nature == rules.DamageThunder {
				return skill.Continue, nil
			}
			room.Logger().Debug("fog protect",
				zap.String("player", p.Name()),
				zap.Int("damage", damage.Damage),
				zap.Stringer("nature", damage.Nature),
			)
			return skill.Consumed, nil
		}, skill.WithTriggerable(triggerable), skill.WithViewAs("dawu_vs"))
}

func dawuViewAs() *skill.ViewAsSkill {
	return skill.NewZeroCard(skill.Meta{Name: "dawu_vs"}, skillCard("dawu_card"),
		skill.WithEnabledAtPlay(func(skill.Player) bool { return false }),
		skill.WithEnabledAtResponse(func(_ skill.Player, pattern string) bool { return pattern == "@@dawu" }))
}

// dawuEffect spends one star per fogged player.
func dawuEffect(ctx context.Context, room skill.Room, from skill.Player, _ *card.Card) error {
	targets, err := chooseTargets(ctx, room, from, room.AlivePlayers(), from.Mark(MarkStar), "dawu")
	if err != nil || len(targets) == 0 {
		return err
	}
	if err := discardStars(ctx, room, from, len(targets)); err != nil {
		return err
	}
	from.LoseMark(MarkStar, len(targets))
	for _, target := range targets {
		target.GainMark(MarkFog, 1)
	}
	return nil
}

// guixin takes a card from every other player per point of damage taken,
// turning its owner over each time.
func guixin() *skill.TriggerSkill {
	return skill.NewMasochism(skill.Meta{Name: "guixin"}, func(ctx context.Context, room skill.Room, p skill.Player, damage *rules.DamageStruct) error {
		for range damage.Damage {
			invoke, err := room.AskForSkillInvoke(ctx, p, "guixin")
			if err != nil || !invoke {
				return err
			}
			for _, other := range room.OtherPlayers(p) {
				id, err := room.AskForCardChosen(ctx, p, other, "he", "guixin")
				if err != nil {
					return err
				}
				if id < 0 {
					continue
				}
				if err := room.ObtainCard(ctx, p, id); err != nil {
					return err
				}
			}
			if err := room.TurnOver(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func feiying() *skill.DistanceSkill {
	return skill.NewDistance(skill.Meta{Name: "feiying"}, func(_, to skill.Player) int {
		if to.HasSkill("feiying") {
			return 1
		}
		return 0
	})
}

// kuangbao gains a wrath per point of damage dealt or taken.
func kuangbao() *skill.TriggerSkill {
	return skill.NewTrigger(skill.Meta{Name: "kuangbao", Frequency: skill.Compulsory},
		[]rules.EventType{rules.EventDamage, rules.EventDamaged},
		func(_ context.Context, event rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
			damage, ok := payload.(*rules.DamageStruct)
			if !ok {
				return skill.Continue, nil
			}
			p.GainMark(MarkWrath, damage.Damage)
			room.Logger().Debug("kuangbao",
				zap.String("player", p.Name()),
				zap.String("event", string(event)),
				zap.Int("wrath", p.Mark(MarkWrath)),
			)
			return skill.Continue, nil
		})
}

// wumou charges a wrath, or a hit point without one, for every
// non-delayed trick its owner uses or plays.
func wumou() *skill.TriggerSkill {
	return skill.NewTrigger(skill.Meta{Name: "wumou", Frequency: skill.Compulsory},
		[]rules.EventType{rules.EventCardUsed, rules.EventCardResponsed},
		func(ctx context.Context, _ rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
			c := usedCard(room, payload)
			if c == nil || !c.IsNDTrick() {
				return skill.Continue, nil
			}
			if p.Mark(MarkWrath) >= 1 {
				choice, err := room.AskForChoice(ctx, p, "wumou", []string{"discard", "losehp"})
				if err != nil {
					return skill.Continue, err
				}
				if choice == "discard" {
					p.LoseMark(MarkWrath, 1)
					return skill.Continue, nil
				}
			}
			return skill.Continue, room.LoseHP(ctx, p, 1)
		})
}

// wuqian keeps the target chosen by its skill card armorless against the
// owner's cards and takes wushuang away again when the owner's turn ends.
func wuqian() *skill.TriggerSkill {
	const granted = "wuqian_wushuang"
	always := func(*skill.TriggerSkill, skill.Player) bool { return true }
	return skill.NewTrigger(skill.Meta{Name: "wuqian"},
		[]rules.EventType{rules.EventCardUsed, rules.EventCardFinished, rules.EventPhaseChange, rules.EventDeath},
		func(ctx context.Context, event rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
			value, ok := room.Tag(TagWuqianTarget)
			name, _ := value.(string)
			if !ok || name == "" || p == nil {
				return skill.Continue, nil
			}
			switch event {
			case rules.EventPhaseChange, rules.EventDeath:
				if !p.HasSkill("wuqian") || (event == rules.EventPhaseChange && p.Phase() != rules.PhaseNotActive) {
					return skill.Continue, nil
				}
				room.RemoveTag(TagWuqianTarget)
				if p.Mark(granted) > 0 {
					p.SetMark(granted, 0)
					return skill.Continue, room.DetachSkill(ctx, p, "wushuang")
				}
			default:
				use, ok := payload.(*rules.CardUse)
				if !ok || !p.HasSkill("wuqian") || !slices.Contains(use.To, name) {
					return skill.Continue, nil
				}
				target, ok := room.Player(name)
				if !ok {
					return skill.Continue, nil
				}
				if event == rules.EventCardUsed {
					target.SetFlag(skill.ArmorNullifiedFlag)
				} else {
					target.UnsetFlag(skill.ArmorNullifiedFlag)
				}
			}
			return skill.Continue, nil
		}, skill.WithTriggerable(always), skill.WithViewAs("wuqian_vs"))
}

func wuqianViewAs() *skill.ViewAsSkill {
	return skill.NewZeroCard(skill.Meta{Name: "wuqian_vs"}, skillCard("wuqian_card"),
		skill.WithEnabledAtPlay(func(p skill.Player) bool {
			return p.Mark(MarkWrath) >= 2 && p.UsedTimes("wuqian_vs") == 0
		}))
}

func wuqianEffect(ctx context.Context, room skill.Room, from skill.Player, _ *card.Card) error {
	target, err := room.AskForPlayerChosen(ctx, from, room.OtherPlayers(from), "wuqian")
	if err != nil || target == nil {
		return err
	}
	from.LoseMark(MarkWrath, 2)
	if !from.HasSkill("wushuang") {
		if err := room.AcquireSkill(ctx, from, "wushuang"); err != nil {
			return err
		}
		from.SetMark("wuqian_wushuang", 1)
	}
	room.SetTag(TagWuqianTarget, target.Name())
	return nil
}

func shenfen() *skill.ViewAsSkill {
	return skill.NewZeroCard(skill.Meta{Name: "shenfen"}, skillCard("shenfen_card"),
		skill.WithEnabledAtPlay(func(p skill.Player) bool {
			return p.Mark(MarkWrath) >= 6 && p.UsedTimes("shenfen") == 0
		}))
}

// shenfenEffect spends six wrath: one damage to every other player, who
// then lose their equipment and all but four hand cards. The owner turns
// over.
func shenfenEffect(ctx context.Context, room skill.Room, from skill.Player, _ *card.Card) error {
	from.LoseMark(MarkWrath, 6)
	others := room.OtherPlayers(from)
	for _, other := range others {
		if err := room.Damage(ctx, rules.NewDamage(from.Name(), other.Name())); err != nil {
			return err
		}
	}
	for _, other := range others {
		for _, equip := range []*card.Card{other.Weapon(), other.Armor()} {
			if equip == nil {
				continue
			}
			if err := room.ThrowCard(ctx, equip.ID); err != nil {
				return err
			}
		}
	}
	for _, other := range others {
		if !other.IsAlive() {
			continue
		}
		hand := other.Hand()
		if len(hand) > 4 {
			var err error
			if hand, err = room.AskForDiscard(ctx, other, "shenfen", 4, false); err != nil {
				return err
			}
		}
		for _, id := range hand {
			if err := room.ThrowCard(ctx, id); err != nil {
				return err
			}
		}
	}
	return room.TurnOver(ctx, from)
}

func juejing() *skill.TriggerSkill {
	return skill.NewDrawCards(skill.Meta{Name: "juejing", Frequency: skill.Compulsory}, func(_ context.Context, _ skill.Room, p skill.Player, n int) (int, error) {
		return n + lostHP(p), nil
	})
}

func juejingKeep() *skill.MaxCardsSkill {
	return skill.NewMaxCards(skill.Meta{Name: "#juejing"}, func(target skill.Player) int {
		if target.HasSkill("#juejing") {
			return 2
		}
		return 0
	})
}

var longhunCards = map[card.Suit]string{
	card.Spade:   "nullification",
	card.Heart:   "peach",
	card.Club:    "jink",
	card.Diamond: "fire_slash",
}

// longhun turns a card into the basic card or nullification of its suit.
func longhun() *skill.ViewAsSkill {
	meta := skill.Meta{
		Name:        "longhun",
		EffectIndex: func(_ skill.Player, c *card.Card) int { return int(c.Suit) + 1 },
	}
	return skill.NewOneCard(meta,
		func(it card.Item) bool {
			_, ok := longhunCards[it.Card.Suit]
			return ok
		},
		func(it card.Item) *card.Card {
			produced := card.NewVirtual(longhunCards[it.Card.Suit], it.Card.Suit, it.Card.Number)
			produced.AddSubcard(it.Card)
			return produced
		},
		skill.WithEnabledAtPlay(func(p skill.Player) bool {
			return p.IsWounded() || p.UsedTimes("slash") < 1
		}),
		skill.WithEnabledAtResponse(func(_ skill.Player, pattern string) bool {
			switch pattern {
			case "slash", "jink", "peach", "peach+analeptic", "nullification":
				return true
			}
			return false
		}))
}

// renjie gains a bear per point of damage taken and per card discarded in
// the owner's discard phase.
func renjie() *skill.TriggerSkill {
	return skill.NewTrigger(skill.Meta{Name: "renjie", Frequency: skill.Compulsory},
		[]rules.EventType{rules.EventDamaged, rules.EventCardDiscarded},
		func(_ context.Context, _ rules.EventType, _ skill.Room, p skill.Player, payload any) (skill.Result, error) {
			switch data := payload.(type) {
			case *rules.DamageStruct:
				p.GainMark(MarkBear, data.Damage)
			case *rules.CardsMoved:
				if p.Phase() == rules.PhaseDiscard {
					p.GainMark(MarkBear, len(data.CardIDs))
				}
			}
			return skill.Continue, nil
		})
}

// baiyin wakes at the start of a turn with four bears or more: the owner
// loses a maximum hit point and learns jilve.
func baiyin() *skill.TriggerSkill {
	triggerable := func(self *skill.TriggerSkill, target skill.Player) bool {
		return hasSkillAlive(self, target) &&
			target.Phase() == rules.PhaseStart &&
			target.Mark("baiyin") == 0 &&
			target.Mark(MarkBear) >= 4
	}
	return skill.NewPhaseChange(skill.Meta{Name: "baiyin", Frequency: skill.Wake}, func(ctx context.Context, room skill.Room, p skill.Player) (bool, error) {
		room.Logger().Info("baiyin wakes", zap.String("player", p.Name()), zap.Int("bear", p.Mark(MarkBear)))
		if err := room.LoseMaxHP(ctx, p, 1); err != nil {
			return false, err
		}
		if err := room.AcquireSkill(ctx, p, "jilve"); err != nil {
			return false, err
		}
		p.SetMark("baiyin", 1)
		return false, nil
	}, skill.WithTriggerable(triggerable))
}

// jilve spends a bear to borrow jizhi on tricks and fangzhu on damage.
func jilve() *skill.TriggerSkill {
	triggerable := func(self *skill.TriggerSkill, target skill.Player) bool {
		return hasSkillAlive(self, target) && target.Mark(MarkBear) > 0
	}
	return skill.NewTrigger(skill.Meta{Name: "jilve", Parent: "baiyin"},
		[]rules.EventType{rules.EventCardUsed, rules.EventCardResponsed, rules.EventDamaged},
		func(ctx context.Context, event rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
			if event == rules.EventDamaged {
				fangzhu, ok := room.Registry().Trigger("fangzhu")
				if !ok {
					return skill.Continue, nil
				}
				invoke, err := room.AskForSkillInvoke(ctx, p, "jilve")
				if err != nil || !invoke {
					return skill.Continue, err
				}
				p.LoseMark(MarkBear, 1)
				return fangzhu.Trigger(ctx, event, room, p, payload)
			}
			c := usedCard(room, payload)
			if c == nil || !c.IsNDTrick() {
				return skill.Continue, nil
			}
			invoke, err := room.AskForSkillInvoke(ctx, p, "jilve")
			if err != nil || !invoke {
				return skill.Continue, err
			}
			p.LoseMark(MarkBear, 1)
			return skill.Continue, room.DrawCards(ctx, p, 1)
		}, skill.WithTriggerable(triggerable), skill.WithViewAs("jilve_vs"))
}

func jilveViewAs() *skill.ViewAsSkill {
	return skill.NewZeroCard(skill.Meta{Name: "jilve_vs", Parent: "baiyin"}, skillCard("jilve_card"),
		skill.WithEnabledAtPlay(func(p skill.Player) bool {
			return p.UsedTimes("jilve_vs") < 2 && p.Mark(MarkBear) > 0
		}))
}

// jilveEffect spends a bear on a zhiheng the owner has not used this turn.
func jilveEffect(ctx context.Context, room skill.Room, from skill.Player, _ *card.Card) error {
	effect, ok := room.Registry().CardEffect("zhiheng_card")
	if !ok || from.UsedTimes("zhiheng") > 0 {
		return nil
	}
	from.LoseMark(MarkBear, 1)
	zhiheng := card.NewVirtual("zhiheng_card", card.NoSuit, 0)
	use := &rules.CardUse{From: from.Name(), CardID: zhiheng.ID, Virtual: zhiheng.Name, Skill: "zhiheng"}
	if _, err := room.RaiseEvent(ctx, rules.EventCardUsed, from, use); err != nil {
		return err
	}
	return effect(ctx, room, from, zhiheng)
}

// lianpoCount records kills made by a lianpo owner.
func lianpoCount() *skill.TriggerSkill {
	always := func(*skill.TriggerSkill, skill.Player) bool { return true }
	return skill.NewTrigger(skill.Meta{Name: "#lianpo-count"},
		[]rules.EventType{rules.EventDeath},
		func(_ context.Context, _ rules.EventType, room skill.Room, _ skill.Player, payload any) (skill.Result, error) {
			death, ok := payload.(*rules.DeathStruct)
			if !ok || death.Killer == "" {
				return skill.Continue, nil
			}
			if killer, ok := room.Player(death.Killer); ok && killer.HasSkill("lianpo") {
				killer.GainMark("lianpo", 1)
			}
			return skill.Continue, nil
		}, skill.WithTriggerable(always))
}

// lianpo gives a lianpo owner who killed during the turn an extra turn
// once the turn ends.
func lianpo() *skill.TriggerSkill {
	triggerable := func(_ *skill.TriggerSkill, target skill.Player) bool {
		return target != nil && target.Phase() == rules.PhaseNotActive
	}
	return skill.NewPhaseChange(skill.Meta{Name: "lianpo"}, func(ctx context.Context, room skill.Room, _ skill.Player) (bool, error) {
		for _, owner := range room.AlivePlayers() {
			if !owner.HasSkill("lianpo") || owner.Mark("lianpo") <= 0 {
				continue
			}
			owner.SetMark("lianpo", 0)
			invoke, err := room.AskForSkillInvoke(ctx, owner, "lianpo")
			if err != nil || !invoke {
				return false, err
			}
			return false, room.GainExtraTurn(ctx, owner)
		}
		return false, nil
	}, skill.WithPriority(-1), skill.WithTriggerable(triggerable))
}
