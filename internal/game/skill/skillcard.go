package skill

import (
	"context"
	"fmt"

	"github.com/magefree/skillcore-go/internal/game/card"
)

// CardEffect resolves a skill card: the virtual card a substitution skill
// produces when the skill itself is the action. The effect picks its own
// targets through the room's prompts.
type CardEffect func(ctx context.Context, room Room, from Player, c *card.Card) error

// RegisterCardEffect binds the effect resolved when a card named name is
// used.
func (r *Registry) RegisterCardEffect(name string, effect CardEffect) error {
	if name == "" || effect == nil {
		return ErrInvalidSkill
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.effects[name]; exists {
		return fmt.Errorf("%w: card %s", ErrDuplicateSkill, name)
	}
	r.effects[name] = effect
	return nil
}

// CardEffect returns the effect bound to a skill card name.
func (r *Registry) CardEffect(name string) (CardEffect, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	effect, ok := r.effects[name]
	return effect, ok
}
