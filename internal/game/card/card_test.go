package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVirtualCardSubcards(t *testing.T) {
	heart := New(7, "peach", Heart, 3)
	virtual := NewVirtual("slash", heart.Suit, heart.Number)
	virtual.AddSubcard(heart)

	assert.True(t, virtual.IsVirtual())
	assert.False(t, heart.IsVirtual())
	assert.Equal(t, []int{7}, virtual.SubCards)
	assert.True(t, virtual.IsRed())

	nested := NewVirtual("jink", NoSuit, 0)
	nested.AddSubcard(virtual)
	assert.Equal(t, []int{7}, nested.SubCards, "a virtual subcard contributes its own subcards")

	cpy := virtual.Clone()
	cpy.SubCards[0] = 99
	assert.Equal(t, 7, virtual.SubCards[0], "clone must not share subcards")
}

func TestCardTypes(t *testing.T) {
	assert.Equal(t, TypeTrick, New(1, "duel", Spade, 1).Type)
	assert.Equal(t, TypeBasic, New(2, "jink", Heart, 2).Type)

	armor := New(3, "eight_diagram", Spade, 2)
	assert.True(t, armor.Is(SubtypeArmor))
	assert.False(t, armor.Is(SubtypeWeapon))

	assert.True(t, New(4, "ex_nihilo", Heart, 7).IsNDTrick())
	assert.False(t, New(5, "indulgence", Spade, 6).IsNDTrick(), "delayed tricks wait in the judging area")
	assert.False(t, New(6, "slash", Spade, 7).IsNDTrick())
}

func TestMatchPattern(t *testing.T) {
	slash := New(1, "slash", Spade, 7)
	fire := New(2, "fire_slash", Heart, 4)
	jink := New(3, "jink", Diamond, 2)

	tests := []struct {
		pattern string
		card    *Card
		want    bool
	}{
		{"slash", slash, true},
		{"slash", fire, true},
		{"fire_slash", slash, false},
		{"jink+peach", jink, true},
		{"peach+jink", slash, false},
		{".", jink, true},
		{"@@shensu", slash, false},
		{"", slash, false},
		{"slash", nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchPattern(tt.pattern, tt.card), "pattern %q card %v", tt.pattern, tt.card)
	}

	assert.Equal(t, []string{"jink", "peach"}, PatternNames("jink+peach"))
	assert.Nil(t, PatternNames("@@shensu"))
}

func TestStandardDeckDeterministic(t *testing.T) {
	deck := StandardDeck()
	require.NotEmpty(t, deck)
	for i, c := range deck {
		require.Equal(t, i, c.ID)
		require.GreaterOrEqual(t, c.Number, 1)
		require.LessOrEqual(t, c.Number, 13)
	}

	first := Shuffle(deck, 42)
	second := Shuffle(StandardDeck(), 42)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, Shuffle(deck, 43))
	assert.ElementsMatch(t, first, Shuffle(deck, 7))
}

func TestStandardDeckEquipment(t *testing.T) {
	var weapons, armors int
	for _, c := range StandardDeck() {
		switch {
		case c.Is(SubtypeWeapon):
			weapons++
			assert.Positive(t, c.Range, c.Name)
			assert.Equal(t, c.Name, c.Skill)
		case c.Is(SubtypeArmor):
			armors++
			assert.Equal(t, c.Name, c.Skill)
		}
	}
	assert.Equal(t, 5, weapons)
	assert.Equal(t, 5, armors)
}

func TestParseSuit(t *testing.T) {
	suit, err := ParseSuit("Heart")
	require.NoError(t, err)
	assert.Equal(t, Heart, suit)
	_, err = ParseSuit("stars")
	assert.Error(t, err)
}
