package skill_test

import (
	"testing"

	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"github.com/magefree/skillcore-go/internal/game/skill/skilltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id int, name string, suit card.Suit) card.Item {
	return card.Item{Card: card.New(id, name, suit, 1), Place: rules.PlaceHand}
}

func TestZeroCardViewAs(t *testing.T) {
	s := skill.NewZeroCard(skill.Meta{Name: "gongxin"}, func() *card.Card {
		return card.NewVirtual("gongxin_card", card.NoSuit, 0)
	})
	assert.Equal(t, skill.KindZeroCard, s.Kind())

	produced := s.ViewAs(nil)
	require.NotNil(t, produced)
	assert.True(t, produced.IsVirtual())
	assert.Equal(t, "gongxin", produced.SkillName, "produced cards are stamped with the skill")

	assert.Nil(t, s.ViewAs([]card.Item{item(1, "slash", card.Spade)}))
	assert.False(t, s.ViewFilter(nil, item(1, "slash", card.Spade)))
}

func TestZeroCardViewAsNonEmptyAlwaysNil(t *testing.T) {
	s := skill.NewZeroCard(skill.Meta{Name: "z"}, func() *card.Card { return card.NewVirtual("slash", card.NoSuit, 0) })
	for n := 1; n <= 5; n++ {
		var selection []card.Item
		for i := 0; i < n; i++ {
			selection = append(selection, item(i, "jink", card.Heart))
		}
		assert.Nil(t, s.ViewAs(selection), "selection of %d", n)
	}
}

func TestOneCardViewAs(t *testing.T) {
	s := skill.NewOneCard(skill.Meta{Name: "wusheng"},
		func(candidate card.Item) bool { return candidate.Card.IsRed() },
		func(it card.Item) *card.Card {
			slash := card.NewVirtual("slash", it.Card.Suit, it.Card.Number)
			slash.AddSubcard(it.Card)
			return slash
		},
		skill.WithEnabledAtResponse(func(_ skill.Player, pattern string) bool { return pattern == "slash" }))

	heart := item(3, "peach", card.Heart)
	spade := item(4, "jink", card.Spade)

	assert.True(t, s.ViewFilter(nil, heart))
	assert.False(t, s.ViewFilter(nil, spade))
	assert.False(t, s.ViewFilter([]card.Item{heart}, item(5, "jink", card.Diamond)), "at most one card")
	assert.False(t, s.ViewFilter(nil, card.Item{}), "missing card")

	assert.Nil(t, s.ViewAs(nil))
	assert.Nil(t, s.ViewAs([]card.Item{heart, heart}))
	produced := s.ViewAs([]card.Item{heart})
	require.NotNil(t, produced)
	assert.Equal(t, "slash", produced.Name)
	assert.Equal(t, []int{3}, produced.SubCards)

	p := skilltest.NewPlayer("Alice", 0, "wusheng")
	assert.True(t, s.EnabledAtPlay(p))
	assert.True(t, s.EnabledAtResponse(p, "slash"))
	assert.False(t, s.EnabledAtResponse(p, "jink"))
}

func TestOneCardViewAsWrongArityAlwaysNil(t *testing.T) {
	s := skill.NewOneCard(skill.Meta{Name: "o"},
		func(card.Item) bool { return true },
		func(card.Item) *card.Card { return card.NewVirtual("jink", card.NoSuit, 0) })
	for n := 0; n <= 4; n++ {
		if n == 1 {
			continue
		}
		selection := make([]card.Item, n)
		for i := range selection {
			selection[i] = item(i, "slash", card.Club)
		}
		assert.Nil(t, s.ViewAs(selection), "selection of %d", n)
	}
}

func TestViewAsDefaults(t *testing.T) {
	s := skill.NewViewAs(skill.Meta{Name: "free"}, nil, nil)
	p := skilltest.NewPlayer("Alice", 0)
	assert.True(t, s.EnabledAtPlay(p))
	assert.False(t, s.EnabledAtResponse(p, "jink"))
	assert.False(t, s.ViewFilter(nil, item(1, "slash", card.Spade)))
	assert.Nil(t, s.ViewAs([]card.Item{item(1, "slash", card.Spade)}))

	disabled := skill.NewViewAs(skill.Meta{Name: "off"}, nil, nil, skill.WithEnabledAtPlay(func(skill.Player) bool { return false }))
	assert.False(t, disabled.EnabledAtPlay(p))
}

func TestGeneralViewAsSameSuitPair(t *testing.T) {
	s := skill.NewViewAs(skill.Meta{Name: "pair"},
		func(selected []card.Item, candidate card.Item) bool {
			if len(selected) >= 2 {
				return false
			}
			return len(selected) == 0 || selected[0].Card.Suit == candidate.Card.Suit
		},
		func(selection []card.Item) *card.Card {
			if len(selection) != 2 {
				return nil
			}
			c := card.NewVirtual("archery_attack", card.NoSuit, 0)
			for _, it := range selection {
				c.AddSubcard(it.Card)
			}
			return c
		})

	a := item(1, "slash", card.Club)
	b := item(2, "jink", card.Club)
	assert.True(t, s.ViewFilter([]card.Item{a}, b))
	assert.False(t, s.ViewFilter([]card.Item{a}, item(3, "jink", card.Heart)))
	assert.Nil(t, s.ViewAs([]card.Item{a}))
	assert.Equal(t, []int{1, 2}, s.ViewAs([]card.Item{a, b}).SubCards)
}

func TestFilterSkill(t *testing.T) {
	s := skill.NewFilter(skill.Meta{Name: "wushen", Frequency: skill.Frequent},
		func(candidate card.Item) bool { return candidate.Card.Suit == card.Heart },
		func(it card.Item) *card.Card {
			c := card.NewVirtual("slash", it.Card.Suit, it.Card.Number)
			c.AddSubcard(it.Card)
			return c
		})
	assert.Equal(t, skill.KindFilter, s.Kind())
	assert.Equal(t, skill.Compulsory, s.Frequency(), "filter skills are always compulsory")
	assert.True(t, s.ViewFilter(nil, item(1, "peach", card.Heart)))
}
