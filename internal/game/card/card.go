// Package card holds card identity, selections and response patterns.
package card

import (
	"fmt"
	"strings"

	"github.com/magefree/skillcore-go/internal/game/rules"
)

// VirtualID is the ID of every card that exists only as a substitution.
const VirtualID = -1

// Suit of a card.
type Suit int

const (
	Spade Suit = iota
	Club
	Heart
	Diamond
	NoSuit
)

var suitNames = map[Suit]string{
	Spade:   "spade",
	Club:    "club",
	Heart:   "heart",
	Diamond: "diamond",
	NoSuit:  "no_suit",
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return fmt.Sprintf("suit_%d", int(s))
}

// IsRed reports whether the suit is heart or diamond.
func (s Suit) IsRed() bool { return s == Heart || s == Diamond }

// IsBlack reports whether the suit is spade or club.
func (s Suit) IsBlack() bool { return s == Spade || s == Club }

// ParseSuit resolves a suit from its name.
func ParseSuit(name string) (Suit, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for suit, suitName := range suitNames {
		if suitName == key {
			return suit, nil
		}
	}
	return NoSuit, fmt.Errorf("unknown suit %q", name)
}

// Type is the broad class of a card.
type Type int

const (
	TypeBasic Type = iota
	TypeTrick
	TypeEquip
)

func (t Type) String() string {
	switch t {
	case TypeBasic:
		return "basic"
	case TypeTrick:
		return "trick"
	case TypeEquip:
		return "equip"
	default:
		return fmt.Sprintf("type_%d", int(t))
	}
}

// Equipment subtypes.
const (
	SubtypeWeapon = "weapon"
	SubtypeArmor  = "armor"
	SubtypeHorse  = "horse"
)

// Card is a physical or virtual card. Virtual cards carry VirtualID and
// list the physical cards that back them in SubCards.
type Card struct {
	ID       int
	Name     string
	Suit     Suit
	Number   int
	Type     Type
	Subtype  string
	Skill    string // equipment skill granted while equipped
	Range    int    // weapon attack range
	SubCards []int
	// SkillName is the substitution skill that produced a virtual card.
	SkillName string
}

// New returns a physical card.
func New(id int, name string, suit Suit, number int) *Card {
	return &Card{ID: id, Name: name, Suit: suit, Number: number, Type: typeOf(name), Subtype: equipSubtypes[name]}
}

// NewVirtual returns a virtual card with the given name. A virtual card with
// exactly one subcard takes that card's suit and number via AddSubcard.
func NewVirtual(name string, suit Suit, number int) *Card {
	return &Card{ID: VirtualID, Name: name, Suit: suit, Number: number, Type: typeOf(name)}
}

// IsVirtual reports whether the card exists only as a substitution.
func (c *Card) IsVirtual() bool {
	return c.ID == VirtualID
}

// AddSubcard records a physical card backing this virtual card.
func (c *Card) AddSubcard(sub *Card) {
	if sub == nil {
		return
	}
	if sub.IsVirtual() {
		c.SubCards = append(c.SubCards, sub.SubCards...)
		return
	}
	c.SubCards = append(c.SubCards, sub.ID)
}

// Is reports whether the card is an equipment of the given subtype.
func (c *Card) Is(subtype string) bool {
	return c.Type == TypeEquip && c.Subtype == subtype
}

// IsRed reports whether the card's suit is red.
func (c *Card) IsRed() bool { return c.Suit.IsRed() }

// IsBlack reports whether the card's suit is black.
func (c *Card) IsBlack() bool { return c.Suit.IsBlack() }

// IsNDTrick reports whether the card is a trick that resolves at once
// rather than waiting in a judging area.
func (c *Card) IsNDTrick() bool {
	return c.Type == TypeTrick && !delayedTricks[c.Name]
}

// Clone returns a deep copy of the card.
func (c *Card) Clone() *Card {
	cpy := *c
	cpy.SubCards = append([]int(nil), c.SubCards...)
	return &cpy
}

func (c *Card) String() string {
	if c.IsVirtual() {
		return fmt.Sprintf("%s[virtual %v]", c.Name, c.SubCards)
	}
	return fmt.Sprintf("%s[%s %d #%d]", c.Name, c.Suit, c.Number, c.ID)
}

// Item is a card selected by a player together with the zone it is in.
// Substitution skills see selections as ordered lists of items.
type Item struct {
	Card  *Card
	Place rules.Place
}

// IDs returns the card IDs of a selection in order.
func IDs(items []Item) []int {
	ids := make([]int, 0, len(items))
	for _, item := range items {
		if item.Card != nil {
			ids = append(ids, item.Card.ID)
		}
	}
	return ids
}

var trickNames = map[string]bool{
	"duel":            true,
	"dismantlement":   true,
	"snatch":          true,
	"ex_nihilo":       true,
	"nullification":   true,
	"amazing_grace":   true,
	"savage_assault":  true,
	"archery_attack":  true,
	"god_salvation":   true,
	"collateral":      true,
	"indulgence":      true,
	"lightning":       true,
	"iron_chain":      true,
	"fire_attack":     true,
	"supply_shortage": true,
}

var delayedTricks = map[string]bool{
	"indulgence":      true,
	"lightning":       true,
	"supply_shortage": true,
}

var equipSubtypes = map[string]string{
	"crossbow":       SubtypeWeapon,
	"qinggang_sword": SubtypeWeapon,
	"blade":          SubtypeWeapon,
	"spear":          SubtypeWeapon,
	"eight_diagram":  SubtypeArmor,
	"renwang_shield": SubtypeArmor,
	"vine":           SubtypeArmor,
	"jueying":        SubtypeHorse,
	"chitu":          SubtypeHorse,
}

func typeOf(name string) Type {
	if trickNames[name] {
		return TypeTrick
	}
	if _, ok := equipSubtypes[name]; ok {
		return TypeEquip
	}
	return TypeBasic
}
