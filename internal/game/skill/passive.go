package skill

import (
	"github.com/magefree/skillcore-go/internal/game/card"
)

// Passive skills are queried by rule computations instead of reacting to
// events. They are always compulsory.

// ProhibitSkill forbids a card from being used from one player on another.
type ProhibitSkill struct {
	Base
	prohibited func(from, to Player, c *card.Card) bool
}

// NewProhibit builds a prohibit skill.
func NewProhibit(meta Meta, prohibited func(from, to Player, c *card.Card) bool) *ProhibitSkill {
	meta.Frequency = Compulsory
	return &ProhibitSkill{Base: newBase(meta), prohibited: prohibited}
}

// IsProhibited reports whether from may not use c on to.
func (ps *ProhibitSkill) IsProhibited(from, to Player, c *card.Card) bool {
	return ps.prohibited != nil && ps.prohibited(from, to, c)
}

// DistanceSkill corrects the distance from one player to another.
type DistanceSkill struct {
	Base
	correct func(from, to Player) int
}

// NewDistance builds a distance skill.
func NewDistance(meta Meta, correct func(from, to Player) int) *DistanceSkill {
	meta.Frequency = Compulsory
	return &DistanceSkill{Base: newBase(meta), correct: correct}
}

// Correct returns the distance delta.
func (ds *DistanceSkill) Correct(from, to Player) int {
	if ds.correct == nil {
		return 0
	}
	return ds.correct(from, to)
}

// MaxCardsSkill changes how many cards a player may keep after discarding.
type MaxCardsSkill struct {
	Base
	extra func(target Player) int
}

// NewMaxCards builds a hand limit skill.
func NewMaxCards(meta Meta, extra func(target Player) int) *MaxCardsSkill {
	meta.Frequency = Compulsory
	return &MaxCardsSkill{Base: newBase(meta), extra: extra}
}

// Extra returns the hand limit delta.
func (ms *MaxCardsSkill) Extra(target Player) int {
	if ms.extra == nil {
		return 0
	}
	return ms.extra(target)
}
