package engine

import (
	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
)

// FilterCard applies the player's filter skills to a card and returns the
// card as the player sees it. The first filter that accepts the card wins;
// an unfiltered card is returned as is.
func (e *Engine) FilterCard(p skill.Player, c *card.Card, place rules.Place) *card.Card {
	if p == nil || c == nil {
		return c
	}
	it := card.Item{Card: c, Place: place}
	for _, fs := range e.registry.Filters() {
		if !p.HasSkill(fs.Name()) || !fs.ViewFilter(nil, it) {
			continue
		}
		if filtered := fs.ViewAs([]card.Item{it}); filtered != nil {
			return filtered
		}
	}
	return c
}

// UsableAtPlay returns the player's substitution skills offered during
// free play, in skill order.
func (e *Engine) UsableAtPlay(p skill.Player) []*skill.ViewAsSkill {
	return e.usable(p, func(vs *skill.ViewAsSkill) bool { return vs.EnabledAtPlay(p) })
}

// UsableAtResponse returns the player's substitution skills able to answer
// pattern, in skill order.
func (e *Engine) UsableAtResponse(p skill.Player, pattern string) []*skill.ViewAsSkill {
	return e.usable(p, func(vs *skill.ViewAsSkill) bool { return vs.EnabledAtResponse(p, pattern) })
}

func (e *Engine) usable(p skill.Player, enabled func(*skill.ViewAsSkill) bool) []*skill.ViewAsSkill {
	if p == nil || !p.IsAlive() {
		return nil
	}
	var out []*skill.ViewAsSkill
	seen := make(map[*skill.ViewAsSkill]bool)
	for _, name := range p.Skills() {
		vs, ok := e.registry.ViewAs(name)
		if !ok || vs.Kind() == skill.KindFilter || seen[vs] {
			continue
		}
		seen[vs] = true
		if enabled(vs) {
			out = append(out, vs)
		}
	}
	return out
}

// Substitute validates a whole selection card by card with the skill's
// filter and then converts it. It reports false when any card is rejected
// or the skill refuses the selection; no partial card is ever returned.
func (e *Engine) Substitute(vs *skill.ViewAsSkill, selection []card.Item) (*card.Card, bool) {
	if vs == nil {
		return nil, false
	}
	for i, candidate := range selection {
		if !vs.ViewFilter(selection[:i], candidate) {
			return nil, false
		}
	}
	produced := vs.ViewAs(selection)
	return produced, produced != nil
}
