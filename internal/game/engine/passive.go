package engine

import (
	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/skill"
)

// IsProhibited reports whether from may not use c on to, and which skill
// of to forbids it.
func (e *Engine) IsProhibited(from, to skill.Player, c *card.Card) (*skill.ProhibitSkill, bool) {
	if to == nil || c == nil {
		return nil, false
	}
	for _, ps := range e.registry.Prohibits() {
		if to.HasSkill(ps.Name()) && ps.IsProhibited(from, to, c) {
			return ps, true
		}
	}
	return nil, false
}

// DistanceCorrection sums every distance skill's correction from from to to.
// Each skill decides for itself whether its owner is involved.
func (e *Engine) DistanceCorrection(from, to skill.Player) int {
	total := 0
	for _, ds := range e.registry.Distances() {
		total += ds.Correct(from, to)
	}
	return total
}

// MaxCardsExtra sums every hand limit skill's extra for target.
func (e *Engine) MaxCardsExtra(target skill.Player) int {
	total := 0
	for _, ms := range e.registry.MaxCards() {
		total += ms.Extra(target)
	}
	return total
}
