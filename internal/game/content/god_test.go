package content_test

import (
	"context"
	"testing"

	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/content"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"github.com/magefree/skillcore-go/internal/game/skill/skilltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *skill.Registry {
	t.Helper()
	reg, err := content.NewRegistry()
	require.NoError(t, err)
	return reg
}

func trigger(t *testing.T, reg *skill.Registry, name string) *skill.TriggerSkill {
	t.Helper()
	ts, ok := reg.Trigger(name)
	require.True(t, ok, name)
	return ts
}

func effect(t *testing.T, reg *skill.Registry, name string) skill.CardEffect {
	t.Helper()
	fn, ok := reg.CardEffect(name)
	require.True(t, ok, name)
	return fn
}

// addCards puts physical cards into the room, numbered from id.
func addCards(room *skilltest.Room, id int, name string, suits ...card.Suit) []int {
	ids := make([]int, 0, len(suits))
	for i, suit := range suits {
		c := card.New(id+i, name, suit, i%13+1)
		room.Cards[c.ID] = c
		ids = append(ids, c.ID)
	}
	return ids
}

func TestRegistryWiring(t *testing.T) {
	reg := newRegistry(t)

	related := reg.Related("qixing")
	require.Len(t, related, 3)
	assert.Equal(t, "#qixing", related[0].Name())
	assert.Equal(t, "#@wrath-2", reg.Related("kuangbao")[0].Name())
	assert.Equal(t, "#@flame-1", reg.Related("smallyeyan")[0].Name())

	for _, name := range []string{"gongxin_card", "smallyeyan_card", "kuangfeng_card", "dawu_card", "wuqian_card", "shenfen_card", "jilve_card", "zhiheng_card"} {
		_, ok := reg.CardEffect(name)
		assert.True(t, ok, name)
	}

	vs, ok := reg.ViewAs("wuqian")
	require.True(t, ok)
	assert.Equal(t, "wuqian_vs", vs.Name())

	assert.ErrorIs(t, content.Register(reg), skill.ErrDuplicateSkill)
}

func TestWuhunMarksDamageSource(t *testing.T) {
	reg := newRegistry(t)
	guanyu := skilltest.NewPlayer("guanyu", 0, "wuhun")
	bob := skilltest.NewPlayer("bob", 1)
	room := skilltest.NewRoom(reg, guanyu, bob)
	wuhun := trigger(t, reg, "wuhun")

	_, err := wuhun.Trigger(context.Background(), rules.EventDamaged, room, guanyu, &rules.DamageStruct{From: "bob", To: "guanyu", Damage: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, bob.Mark(content.MarkNightmare))

	_, err = wuhun.Trigger(context.Background(), rules.EventDamaged, room, guanyu, &rules.DamageStruct{From: "guanyu", To: "guanyu", Damage: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, guanyu.Mark(content.MarkNightmare))
}

func TestWuhunRevenge(t *testing.T) {
	tests := []struct {
		name   string
		judge  string
		killed bool
	}{
		{"bad judge kills", "slash", true},
		{"peach saves", "peach", false},
		{"god salvation saves", "god_salvation", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newRegistry(t)
			guanyu := skilltest.NewPlayer("guanyu", 0, "wuhun", "#wuhun")
			guanyu.Alive = false
			bob := skilltest.NewPlayer("bob", 1)
			carol := skilltest.NewPlayer("carol", 2)
			bob.GainMark(content.MarkNightmare, 3)
			carol.GainMark(content.MarkNightmare, 1)
			room := skilltest.NewRoom(reg, guanyu, bob, carol)
			room.DrawPile = addCards(room, 0, tt.judge, card.Heart)

			revenge := trigger(t, reg, "#wuhun")
			require.True(t, revenge.Triggerable(guanyu), "runs for its dead owner")

			_, err := revenge.Trigger(context.Background(), rules.EventDeath, room, guanyu, &rules.DeathStruct{Who: "guanyu"})
			require.NoError(t, err)
			assert.Equal(t, !tt.killed, bob.Alive)
			assert.True(t, carol.Alive)
			assert.Contains(t, room.Actions, "throw 0")
			assert.Zero(t, bob.Mark(content.MarkNightmare))
			assert.Zero(t, carol.Mark(content.MarkNightmare))
		})
	}
}

func TestShelieKeepsOneCardPerSuit(t *testing.T) {
	reg := newRegistry(t)
	lvmeng := skilltest.NewPlayer("lvmeng", 0, "shelie")
	lvmeng.CurrentPhase = rules.PhaseDraw
	room := skilltest.NewRoom(reg, lvmeng)
	room.DrawPile = addCards(room, 0, "slash", card.Spade, card.Spade, card.Heart, card.Club, card.Heart)

	change := &rules.PhaseChange{Player: "lvmeng", Phase: rules.PhaseDraw}
	result, err := trigger(t, reg, "shelie").Trigger(context.Background(), rules.EventPhaseChange, room, lvmeng, change)
	require.NoError(t, err)
	assert.Equal(t, skill.Consumed, result)
	assert.True(t, change.Skipped)
	assert.Equal(t, []int{0, 3, 2}, lvmeng.HandIDs)
	assert.Contains(t, room.Actions, "throw 1")
	assert.Contains(t, room.Actions, "throw 4")
}

func TestShelieOutsideDrawPhase(t *testing.T) {
	reg := newRegistry(t)
	lvmeng := skilltest.NewPlayer("lvmeng", 0, "shelie")
	lvmeng.CurrentPhase = rules.PhasePlay
	room := skilltest.NewRoom(reg, lvmeng)

	result, err := trigger(t, reg, "shelie").Trigger(context.Background(), rules.EventPhaseChange, room, lvmeng, &rules.PhaseChange{Phase: rules.PhasePlay})
	require.NoError(t, err)
	assert.Equal(t, skill.Continue, result)
	assert.Empty(t, room.Actions)
}

func TestGongxin(t *testing.T) {
	for _, tt := range []struct {
		choice string
		want   string
	}{
		{"discard", "throw 11"},
		{"put", "put_on_draw_pile 11"},
	} {
		t.Run(tt.choice, func(t *testing.T) {
			reg := newRegistry(t)
			lvmeng := skilltest.NewPlayer("lvmeng", 0, "gongxin")
			bob := skilltest.NewPlayer("bob", 1)
			room := skilltest.NewRoom(reg, lvmeng, bob)
			bob.HandIDs = append(addCards(room, 10, "jink", card.Spade), addCards(room, 11, "peach", card.Heart)...)
			room.Choose = func(_ skill.Player, _ string, _ []string) string { return tt.choice }

			err := effect(t, reg, "gongxin_card")(context.Background(), room, lvmeng, nil)
			require.NoError(t, err)
			assert.Contains(t, room.Actions, tt.want)
			assert.Equal(t, []int{10}, bob.HandIDs)
		})
	}

	reg := newRegistry(t)
	vs, ok := reg.ViewAs("gongxin")
	require.True(t, ok)
	lvmeng := skilltest.NewPlayer("lvmeng", 0, "gongxin")
	assert.Equal(t, "discard", vs.DefaultChoice(lvmeng))
	assert.True(t, vs.EnabledAtPlay(lvmeng))
	lvmeng.Used["gongxin"] = 1
	assert.False(t, vs.EnabledAtPlay(lvmeng), "once per turn")
}

func TestQinyinOnSecondDiscard(t *testing.T) {
	reg := newRegistry(t)
	zhouyu := skilltest.NewPlayer("zhouyu", 0, "qinyin")
	bob := skilltest.NewPlayer("bob", 1)
	zhouyu.CurrentPhase = rules.PhaseDiscard
	room := skilltest.NewRoom(reg, zhouyu, bob)
	qinyin := trigger(t, reg, "qinyin")
	ctx := context.Background()

	_, err := qinyin.Trigger(ctx, rules.EventPhaseChange, room, zhouyu, &rules.PhaseChange{Phase: rules.PhaseDiscard})
	require.NoError(t, err)
	_, err = qinyin.Trigger(ctx, rules.EventCardDiscarded, room, zhouyu, &rules.CardsMoved{CardIDs: []int{1}})
	require.NoError(t, err)
	assert.Empty(t, room.Actions)

	_, err = qinyin.Trigger(ctx, rules.EventCardDiscarded, room, zhouyu, &rules.CardsMoved{CardIDs: []int{2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"invoke zhouyu qinyin", "lose_hp zhouyu 1", "lose_hp bob 1"}, room.Actions)

	_, err = qinyin.Trigger(ctx, rules.EventCardDiscarded, room, zhouyu, &rules.CardsMoved{CardIDs: []int{3}})
	require.NoError(t, err)
	assert.Len(t, room.Actions, 3, "once per discard phase")
}

func TestSmallYeyan(t *testing.T) {
	reg := newRegistry(t)
	zhouyu := skilltest.NewPlayer("zhouyu", 0, "smallyeyan")
	zhouyu.SetMark(content.MarkFlame, 1)
	others := []*skilltest.Player{
		skilltest.NewPlayer("bob", 1),
		skilltest.NewPlayer("carol", 2),
		skilltest.NewPlayer("dave", 3),
		skilltest.NewPlayer("erin", 4),
	}
	room := skilltest.NewRoom(reg, append([]*skilltest.Player{zhouyu}, others...)...)

	vs, ok := reg.ViewAs("smallyeyan")
	require.True(t, ok)
	require.True(t, vs.EnabledAtPlay(zhouyu))

	require.NoError(t, effect(t, reg, "smallyeyan_card")(context.Background(), room, zhouyu, nil))
	assert.Zero(t, zhouyu.Mark(content.MarkFlame))
	assert.Equal(t, 3, others[0].HP())
	assert.Equal(t, 3, others[2].HP())
	assert.Equal(t, 4, others[3].HP(), "at most three targets")
	assert.False(t, vs.EnabledAtPlay(zhouyu))
}

func TestQixingStartAndExchange(t *testing.T) {
	reg := newRegistry(t)
	zhuge := skilltest.NewPlayer("zhuge", 0, "qixing", "#qixing")
	room := skilltest.NewRoom(reg, zhuge)
	room.DrawPile = addCards(room, 0, "slash", card.Spade, card.Spade, card.Spade, card.Spade, card.Spade, card.Spade, card.Spade, card.Spade)
	zhuge.HandIDs = addCards(room, 100, "jink", card.Heart, card.Heart)

	start := trigger(t, reg, "#qixing")
	assert.Equal(t, -1, start.Priority())
	_, err := start.Trigger(context.Background(), rules.EventGameStart, room, zhuge, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, zhuge.Mark(content.MarkStar))
	assert.Len(t, zhuge.Pile(content.PileStars), 7)
	assert.Equal(t, []int{7}, room.DrawPile)
	assert.Contains(t, room.Actions, "obtain zhuge 0")

	qixing := trigger(t, reg, "qixing")
	assert.True(t, qixing.Triggerable(zhuge))
	zhuge.SetMark(content.MarkStar, 0)
	assert.False(t, qixing.Triggerable(zhuge), "no stars left")
}

func TestKuangfengAndDawu(t *testing.T) {
	reg := newRegistry(t)
	bob := skilltest.NewPlayer("bob", 1)
	room := skilltest.NewRoom(reg, bob)
	ctx := context.Background()

	kuangfeng := trigger(t, reg, "kuangfeng")
	dawu := trigger(t, reg, "dawu")
	assert.False(t, kuangfeng.Triggerable(bob))
	assert.False(t, dawu.Triggerable(bob))

	bob.GainMark(content.MarkGale, 1)
	bob.GainMark(content.MarkFog, 1)
	require.True(t, kuangfeng.Triggerable(bob))
	require.True(t, dawu.Triggerable(bob))

	fire := &rules.DamageStruct{To: "bob", Damage: 1, Nature: rules.DamageFire}
	_, err := kuangfeng.Trigger(ctx, rules.EventDamagedBegin, room, bob, fire)
	require.NoError(t, err)
	assert.Equal(t, 2, fire.Damage)

	result, err := dawu.Trigger(ctx, rules.EventDamagedBegin, room, bob, fire)
	require.NoError(t, err)
	assert.Equal(t, skill.Consumed, result)

	thunder := &rules.DamageStruct{To: "bob", Damage: 1, Nature: rules.DamageThunder}
	result, err = dawu.Trigger(ctx, rules.EventDamagedBegin, room, bob, thunder)
	require.NoError(t, err)
	assert.Equal(t, skill.Continue, result)
}

func TestStarCardsAtFinish(t *testing.T) {
	reg := newRegistry(t)
	zhuge := skilltest.NewPlayer("zhuge", 0, "qixing", "#qixing-ask", "#qixing-clear", "kuangfeng", "dawu")
	bob := skilltest.NewPlayer("bob", 1)
	room := skilltest.NewRoom(reg, zhuge, bob)
	stars := addCards(room, 0, "slash", card.Spade, card.Spade, card.Spade)
	zhuge.AddToPile(content.PileStars, stars...)
	zhuge.SetMark(content.MarkStar, 3)
	zhuge.CurrentPhase = rules.PhaseFinish
	ask := trigger(t, reg, "#qixing-ask")
	ctx := context.Background()

	_, err := ask.Trigger(ctx, rules.EventPhaseChange, room, zhuge, &rules.PhaseChange{Phase: rules.PhaseFinish})
	require.NoError(t, err)
	// kuangfeng spends one star on the first player, dawu the other two on
	// both players.
	assert.Equal(t, 1, zhuge.Mark(content.MarkGale))
	assert.Equal(t, 1, zhuge.Mark(content.MarkFog))
	assert.Equal(t, 1, bob.Mark(content.MarkFog))
	assert.Zero(t, zhuge.Mark(content.MarkStar))
	assert.Empty(t, zhuge.Pile(content.PileStars))

	zhuge.CurrentPhase = rules.PhaseStart
	_, err = ask.Trigger(ctx, rules.EventPhaseChange, room, zhuge, &rules.PhaseChange{Phase: rules.PhaseStart})
	require.NoError(t, err)
	assert.Zero(t, zhuge.Mark(content.MarkGale))
	assert.Zero(t, bob.Mark(content.MarkFog))

	bob.GainMark(content.MarkGale, 2)
	zhuge.Alive = false
	cleanup := trigger(t, reg, "#qixing-clear")
	require.True(t, cleanup.Triggerable(zhuge))
	_, err = cleanup.Trigger(ctx, rules.EventDeath, room, zhuge, &rules.DeathStruct{Who: "zhuge"})
	require.NoError(t, err)
	assert.Zero(t, bob.Mark(content.MarkGale))
}

func TestGuixinPerDamagePoint(t *testing.T) {
	reg := newRegistry(t)
	caocao := skilltest.NewPlayer("caocao", 0, "guixin")
	bob := skilltest.NewPlayer("bob", 1)
	carol := skilltest.NewPlayer("carol", 2)
	room := skilltest.NewRoom(reg, caocao, bob, carol)
	bob.HandIDs = []int{10, 11}
	carol.HandIDs = []int{20}

	_, err := trigger(t, reg, "guixin").Trigger(context.Background(), rules.EventDamaged, room, caocao, &rules.DamageStruct{To: "caocao", Damage: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 10, 20}, caocao.HandIDs, "the fake does not take cards out of hands")
	assert.False(t, caocao.FaceDown, "turned over twice")
	assert.Equal(t, 2, countActions(room, "turn_over caocao"))
}

func TestFeiyingDistance(t *testing.T) {
	reg := newRegistry(t)
	s, ok := reg.Lookup("feiying")
	require.True(t, ok)
	ds := s.(*skill.DistanceSkill)
	caocao := skilltest.NewPlayer("caocao", 0, "feiying")
	bob := skilltest.NewPlayer("bob", 1)
	assert.Equal(t, 1, ds.Correct(bob, caocao))
	assert.Equal(t, 0, ds.Correct(caocao, bob))
}

func TestKuangbaoAndWumou(t *testing.T) {
	reg := newRegistry(t)
	lvbu := skilltest.NewPlayer("lvbu", 0, "kuangbao", "wumou")
	room := skilltest.NewRoom(reg, lvbu)
	trick := addCards(room, 5, "ex_nihilo", card.Heart)[0]
	delayed := addCards(room, 6, "indulgence", card.Heart)[0]
	ctx := context.Background()

	_, err := trigger(t, reg, "kuangbao").Trigger(ctx, rules.EventDamage, room, lvbu, &rules.DamageStruct{From: "lvbu", To: "bob", Damage: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, lvbu.Mark(content.MarkWrath))

	wumou := trigger(t, reg, "wumou")
	room.Choose = func(_ skill.Player, _ string, _ []string) string { return "discard" }
	_, err = wumou.Trigger(ctx, rules.EventCardUsed, room, lvbu, &rules.CardUse{From: "lvbu", CardID: trick})
	require.NoError(t, err)
	assert.Equal(t, 1, lvbu.Mark(content.MarkWrath))

	_, err = wumou.Trigger(ctx, rules.EventCardUsed, room, lvbu, &rules.CardUse{From: "lvbu", CardID: delayed})
	require.NoError(t, err)
	assert.Equal(t, 1, lvbu.Mark(content.MarkWrath), "delayed tricks are free")

	lvbu.SetMark(content.MarkWrath, 0)
	_, err = wumou.Trigger(ctx, rules.EventCardUsed, room, lvbu, &rules.CardUse{From: "lvbu", CardID: card.VirtualID, Virtual: "duel"})
	require.NoError(t, err)
	assert.Equal(t, 3, lvbu.HP())
}

func TestWuqianLifecycle(t *testing.T) {
	reg := newRegistry(t)
	lvbu := skilltest.NewPlayer("lvbu", 0, "wuqian")
	bob := skilltest.NewPlayer("bob", 1)
	room := skilltest.NewRoom(reg, lvbu, bob)
	ctx := context.Background()

	vs, ok := reg.ViewAs("wuqian")
	require.True(t, ok)
	assert.False(t, vs.EnabledAtPlay(lvbu))
	lvbu.SetMark(content.MarkWrath, 2)
	require.True(t, vs.EnabledAtPlay(lvbu))

	require.NoError(t, effect(t, reg, "wuqian_card")(ctx, room, lvbu, nil))
	assert.Zero(t, lvbu.Mark(content.MarkWrath))
	assert.True(t, lvbu.HasSkill("wushuang"))
	target, ok := room.Tag(content.TagWuqianTarget)
	require.True(t, ok)
	assert.Equal(t, "bob", target)

	wuqian := trigger(t, reg, "wuqian")
	use := &rules.CardUse{From: "lvbu", To: []string{"bob"}, CardID: 1}
	_, err := wuqian.Trigger(ctx, rules.EventCardUsed, room, lvbu, use)
	require.NoError(t, err)
	assert.True(t, bob.HasFlag(skill.ArmorNullifiedFlag))
	_, err = wuqian.Trigger(ctx, rules.EventCardFinished, room, lvbu, use)
	require.NoError(t, err)
	assert.False(t, bob.HasFlag(skill.ArmorNullifiedFlag))

	lvbu.CurrentPhase = rules.PhaseNotActive
	_, err = wuqian.Trigger(ctx, rules.EventPhaseChange, room, lvbu, &rules.PhaseChange{Phase: rules.PhaseNotActive})
	require.NoError(t, err)
	assert.False(t, lvbu.HasSkill("wushuang"))
	_, ok = room.Tag(content.TagWuqianTarget)
	assert.False(t, ok)
}

func TestWuqianKeepsInnateWushuang(t *testing.T) {
	reg := newRegistry(t)
	lvbu := skilltest.NewPlayer("lvbu", 0, "wuqian", "wushuang")
	bob := skilltest.NewPlayer("bob", 1)
	room := skilltest.NewRoom(reg, lvbu, bob)
	lvbu.SetMark(content.MarkWrath, 2)
	ctx := context.Background()

	require.NoError(t, effect(t, reg, "wuqian_card")(ctx, room, lvbu, nil))
	lvbu.CurrentPhase = rules.PhaseNotActive
	_, err := trigger(t, reg, "wuqian").Trigger(ctx, rules.EventPhaseChange, room, lvbu, &rules.PhaseChange{Phase: rules.PhaseNotActive})
	require.NoError(t, err)
	assert.True(t, lvbu.HasSkill("wushuang"))
}

func TestShenfen(t *testing.T) {
	reg := newRegistry(t)
	lvbu := skilltest.NewPlayer("lvbu", 0, "shenfen")
	bob := skilltest.NewPlayer("bob", 1)
	carol := skilltest.NewPlayer("carol", 2)
	room := skilltest.NewRoom(reg, lvbu, bob, carol)
	bob.HandIDs = []int{1, 2, 3, 4, 5, 6}
	carol.HandIDs = []int{7, 8}
	bob.WeaponCard = card.New(99, "crossbow", card.Club, 1)

	vs, ok := reg.ViewAs("shenfen")
	require.True(t, ok)
	lvbu.SetMark(content.MarkWrath, 5)
	assert.False(t, vs.EnabledAtPlay(lvbu))
	lvbu.SetMark(content.MarkWrath, 6)
	require.True(t, vs.EnabledAtPlay(lvbu))

	require.NoError(t, effect(t, reg, "shenfen_card")(context.Background(), room, lvbu, nil))
	assert.Zero(t, lvbu.Mark(content.MarkWrath))
	assert.Equal(t, 3, bob.HP())
	assert.Equal(t, 3, carol.HP())
	assert.Contains(t, room.Actions, "throw 99")
	assert.Equal(t, []int{5, 6}, bob.HandIDs)
	assert.Empty(t, carol.HandIDs)
	assert.True(t, lvbu.FaceDown)
}

func TestJuejing(t *testing.T) {
	reg := newRegistry(t)
	zhaoyun := skilltest.NewPlayer("zhaoyun", 0, "juejing", "#juejing")
	zhaoyun.MaxHealth, zhaoyun.Health = 2, 1
	room := skilltest.NewRoom(reg, zhaoyun)

	draw := &rules.DrawCards{Num: 2}
	_, err := trigger(t, reg, "juejing").Trigger(context.Background(), rules.EventDrawNCards, room, zhaoyun, draw)
	require.NoError(t, err)
	assert.Equal(t, 3, draw.Num)

	s, ok := reg.Lookup("#juejing")
	require.True(t, ok)
	keep := s.(*skill.MaxCardsSkill)
	assert.Equal(t, 2, keep.Extra(zhaoyun))
	assert.Equal(t, 0, keep.Extra(skilltest.NewPlayer("bob", 1)))
}

func TestLonghunConversions(t *testing.T) {
	reg := newRegistry(t)
	vs, ok := reg.ViewAs("longhun")
	require.True(t, ok)
	zhaoyun := skilltest.NewPlayer("zhaoyun", 0, "longhun")

	tests := []struct {
		suit card.Suit
		want string
	}{
		{card.Spade, "nullification"},
		{card.Heart, "peach"},
		{card.Club, "jink"},
		{card.Diamond, "fire_slash"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			physical := card.New(42, "slash", tt.suit, 7)
			item := card.Item{Card: physical, Place: rules.PlaceHand}
			require.True(t, vs.ViewFilter(nil, item))
			produced := vs.ViewAs([]card.Item{item})
			require.NotNil(t, produced)
			assert.Equal(t, tt.want, produced.Name)
			assert.Equal(t, []int{42}, produced.SubCards)
			assert.Equal(t, int(tt.suit)+1, vs.EffectIndex(zhaoyun, physical))
		})
	}
	assert.True(t, vs.EnabledAtResponse(zhaoyun, "jink"))
	assert.False(t, vs.EnabledAtResponse(zhaoyun, "@@kuangfeng"))
}

func TestBaiyinWakes(t *testing.T) {
	reg := newRegistry(t)
	simayi := skilltest.NewPlayer("simayi", 0, "baiyin")
	simayi.CurrentPhase = rules.PhaseStart
	room := skilltest.NewRoom(reg, simayi)
	baiyin := trigger(t, reg, "baiyin")

	simayi.SetMark(content.MarkBear, 3)
	assert.False(t, baiyin.Triggerable(simayi))
	simayi.SetMark(content.MarkBear, 4)
	require.True(t, baiyin.Triggerable(simayi))

	_, err := baiyin.Trigger(context.Background(), rules.EventPhaseChange, room, simayi, &rules.PhaseChange{Phase: rules.PhaseStart})
	require.NoError(t, err)
	assert.Equal(t, 3, simayi.MaxHP())
	assert.True(t, simayi.HasSkill("jilve"))
	assert.False(t, baiyin.Triggerable(simayi), "wakes once")
}

func TestRenjieGainsBears(t *testing.T) {
	reg := newRegistry(t)
	simayi := skilltest.NewPlayer("simayi", 0, "renjie")
	room := skilltest.NewRoom(reg, simayi)
	renjie := trigger(t, reg, "renjie")
	ctx := context.Background()

	_, err := renjie.Trigger(ctx, rules.EventDamaged, room, simayi, &rules.DamageStruct{To: "simayi", Damage: 2})
	require.NoError(t, err)
	_, err = renjie.Trigger(ctx, rules.EventCardDiscarded, room, simayi, &rules.CardsMoved{CardIDs: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, 2, simayi.Mark(content.MarkBear), "discards count only in the discard phase")

	simayi.CurrentPhase = rules.PhaseDiscard
	_, err = renjie.Trigger(ctx, rules.EventCardDiscarded, room, simayi, &rules.CardsMoved{CardIDs: []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, 4, simayi.Mark(content.MarkBear))
}

func TestJilve(t *testing.T) {
	reg := newRegistry(t)
	simayi := skilltest.NewPlayer("simayi", 0, "jilve")
	bob := skilltest.NewPlayer("bob", 1)
	simayi.MaxHealth, simayi.Health = 4, 2
	room := skilltest.NewRoom(reg, simayi, bob)
	room.DrawPile = []int{30, 31, 32, 33}
	trick := addCards(room, 5, "snatch", card.Spade)[0]
	jilve := trigger(t, reg, "jilve")
	ctx := context.Background()

	assert.False(t, jilve.Triggerable(simayi))
	simayi.SetMark(content.MarkBear, 2)
	require.True(t, jilve.Triggerable(simayi))

	_, err := jilve.Trigger(ctx, rules.EventCardUsed, room, simayi, &rules.CardUse{From: "simayi", CardID: trick})
	require.NoError(t, err)
	assert.Equal(t, 1, simayi.Mark(content.MarkBear))
	assert.Equal(t, []int{30}, simayi.HandIDs)

	_, err = jilve.Trigger(ctx, rules.EventDamaged, room, simayi, &rules.DamageStruct{From: "bob", To: "simayi", Damage: 1})
	require.NoError(t, err)
	assert.Zero(t, simayi.Mark(content.MarkBear))
	assert.Equal(t, []int{31, 32}, bob.HandIDs, "borrowed fangzhu draws the lost hit points")
	assert.True(t, bob.FaceDown)
}

func TestJilveBorrowsZhiheng(t *testing.T) {
	reg := newRegistry(t)
	simayi := skilltest.NewPlayer("simayi", 0, "jilve")
	simayi.SetMark(content.MarkBear, 1)
	simayi.HandIDs = []int{1, 2}
	room := skilltest.NewRoom(reg, simayi)
	room.DrawPile = []int{10, 11, 12}
	var used []*rules.CardUse
	room.Raise = func(_ context.Context, event rules.EventType, _ skill.Player, payload any) (bool, error) {
		if use, ok := payload.(*rules.CardUse); ok && event == rules.EventCardUsed {
			used = append(used, use)
		}
		return false, nil
	}

	vs, ok := reg.ViewAs("jilve")
	require.True(t, ok)
	require.True(t, vs.EnabledAtPlay(simayi))

	require.NoError(t, effect(t, reg, "jilve_card")(context.Background(), room, simayi, nil))
	assert.Zero(t, simayi.Mark(content.MarkBear))
	assert.Equal(t, []int{10, 11}, simayi.HandIDs)
	require.Len(t, used, 1)
	assert.Equal(t, "zhiheng", used[0].Skill)
}

func TestLianpo(t *testing.T) {
	reg := newRegistry(t)
	simayi := skilltest.NewPlayer("simayi", 0, "lianpo", "#lianpo-count")
	bob := skilltest.NewPlayer("bob", 1)
	room := skilltest.NewRoom(reg, simayi, bob)
	ctx := context.Background()

	count := trigger(t, reg, "#lianpo-count")
	_, err := count.Trigger(ctx, rules.EventDeath, room, bob, &rules.DeathStruct{Who: "bob", Killer: "simayi"})
	require.NoError(t, err)
	assert.Equal(t, 1, simayi.Mark("lianpo"))

	lianpo := trigger(t, reg, "lianpo")
	bob.CurrentPhase = rules.PhaseNotActive
	require.True(t, lianpo.Triggerable(bob))
	_, err = lianpo.Trigger(ctx, rules.EventPhaseChange, room, bob, &rules.PhaseChange{Phase: rules.PhaseNotActive})
	require.NoError(t, err)
	assert.Contains(t, room.Actions, "extra_turn simayi")
	assert.Zero(t, simayi.Mark("lianpo"))
}

func countActions(room *skilltest.Room, action string) int {
	n := 0
	for _, a := range room.Actions {
		if a == action {
			n++
		}
	}
	return n
}
