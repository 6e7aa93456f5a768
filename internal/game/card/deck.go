package card

import (
	"math/rand/v2"
)

type deckEntry struct {
	name  string
	count int
	suits []Suit
}

// standardDeck lists the reference deck. Suits cycle through each entry's
// list and numbers cycle 1..13, so the deck is identical on every build.
var standardDeck = []deckEntry{
	{"slash", 21, []Suit{Spade, Club, Club, Diamond, Heart}},
	{"fire_slash", 5, []Suit{Heart, Diamond}},
	{"thunder_slash", 9, []Suit{Spade, Club}},
	{"jink", 24, []Suit{Diamond, Heart}},
	{"peach", 12, []Suit{Heart, Diamond}},
	{"analeptic", 5, []Suit{Spade, Club}},
	{"duel", 3, []Suit{Spade, Club, Diamond}},
	{"dismantlement", 6, []Suit{Spade, Club, Heart}},
	{"snatch", 5, []Suit{Spade, Diamond}},
	{"ex_nihilo", 4, []Suit{Heart}},
	{"nullification", 4, []Suit{Spade, Club, Heart}},
	{"savage_assault", 3, []Suit{Spade, Club}},
	{"archery_attack", 1, []Suit{Heart}},
	{"amazing_grace", 2, []Suit{Heart}},
	{"indulgence", 3, []Suit{Spade, Club, Heart}},
	{"lightning", 1, []Suit{Spade}},
	{"fire_attack", 3, []Suit{Heart, Diamond}},
	{"iron_chain", 6, []Suit{Spade, Club}},
	{"crossbow", 2, []Suit{Club, Diamond}},
	{"qinggang_sword", 1, []Suit{Spade}},
	{"blade", 1, []Suit{Spade}},
	{"spear", 1, []Suit{Spade}},
	{"eight_diagram", 2, []Suit{Spade, Club}},
	{"renwang_shield", 1, []Suit{Club}},
	{"vine", 2, []Suit{Spade, Club}},
	{"jueying", 1, []Suit{Spade}},
	{"chitu", 1, []Suit{Heart}},
}

var weaponRange = map[string]int{
	"crossbow":       1,
	"qinggang_sword": 2,
	"blade":          3,
	"spear":          3,
}

// StandardDeck returns a fresh copy of the reference deck with IDs 0..n-1.
func StandardDeck() []*Card {
	var deck []*Card
	number := 0
	for _, entry := range standardDeck {
		for i := 0; i < entry.count; i++ {
			c := New(len(deck), entry.name, entry.suits[i%len(entry.suits)], number%13+1)
			if c.Type == TypeEquip {
				c.Skill = entry.name
				c.Range = weaponRange[entry.name]
			}
			deck = append(deck, c)
			number++
		}
	}
	return deck
}

// Shuffle returns the IDs of the cards in a seeded random order. The same
// seed always yields the same order.
func Shuffle(cards []*Card, seed uint64) []int {
	ids := make([]int, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}
