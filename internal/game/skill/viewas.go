package skill

import (
	"fmt"

	"github.com/magefree/skillcore-go/internal/game/card"
)

// ViewAsKind fixes the arity rules of a substitution skill.
type ViewAsKind int

const (
	// KindViewAs accepts any selection its filter admits.
	KindViewAs ViewAsKind = iota
	// KindZeroCard produces a card out of nothing.
	KindZeroCard
	// KindOneCard turns exactly one card into another.
	KindOneCard
	// KindFilter is a compulsory one-card transformer applied without a
	// player choice.
	KindFilter
)

func (k ViewAsKind) String() string {
	switch k {
	case KindViewAs:
		return "view_as"
	case KindZeroCard:
		return "zero_card"
	case KindOneCard:
		return "one_card"
	case KindFilter:
		return "filter"
	default:
		return fmt.Sprintf("kind_%d", int(k))
	}
}

// ViewAsSkill converts a selection of the owner's cards into a virtual card.
// A refused conversion is a nil card, never a partial one.
type ViewAsSkill struct {
	Base
	kind              ViewAsKind
	enabledAtPlay     func(p Player) bool
	enabledAtResponse func(p Player, pattern string) bool
	viewFilter        func(selected []card.Item, candidate card.Item) bool
	viewAs            func(selection []card.Item) *card.Card
}

// ViewAsOption customizes a substitution skill at construction.
type ViewAsOption func(*ViewAsSkill)

// WithEnabledAtPlay gates the skill during its owner's free play.
func WithEnabledAtPlay(fn func(p Player) bool) ViewAsOption {
	return func(vs *ViewAsSkill) {
		if fn != nil {
			vs.enabledAtPlay = fn
		}
	}
}

// WithEnabledAtResponse gates the skill when a response matching pattern
// is required.
func WithEnabledAtResponse(fn func(p Player, pattern string) bool) ViewAsOption {
	return func(vs *ViewAsSkill) {
		if fn != nil {
			vs.enabledAtResponse = fn
		}
	}
}

func newViewAs(meta Meta, kind ViewAsKind, opts []ViewAsOption) *ViewAsSkill {
	vs := &ViewAsSkill{
		Base:              newBase(meta),
		kind:              kind,
		enabledAtPlay:     func(Player) bool { return true },
		enabledAtResponse: func(Player, string) bool { return false },
	}
	for _, opt := range opts {
		opt(vs)
	}
	return vs
}

// NewViewAs builds a substitution skill with free-form arity.
func NewViewAs(meta Meta, filter func(selected []card.Item, candidate card.Item) bool, viewAs func(selection []card.Item) *card.Card, opts ...ViewAsOption) *ViewAsSkill {
	vs := newViewAs(meta, KindViewAs, opts)
	vs.viewFilter = filter
	vs.viewAs = viewAs
	return vs
}

// NewZeroCard builds a substitution skill that needs no cards.
func NewZeroCard(meta Meta, viewAs func() *card.Card, opts ...ViewAsOption) *ViewAsSkill {
	vs := newViewAs(meta, KindZeroCard, opts)
	vs.viewFilter = func([]card.Item, card.Item) bool { return false }
	vs.viewAs = func(selection []card.Item) *card.Card {
		if len(selection) != 0 || viewAs == nil {
			return nil
		}
		return viewAs()
	}
	return vs
}

// NewOneCard builds a substitution skill turning one card into another.
func NewOneCard(meta Meta, filter func(candidate card.Item) bool, viewAs func(item card.Item) *card.Card, opts ...ViewAsOption) *ViewAsSkill {
	return newOneCard(meta, KindOneCard, filter, viewAs, opts)
}

// NewFilter builds a compulsory one-card transformer. Filter skills are
// applied by the engine when a card is looked at, never offered as choices.
func NewFilter(meta Meta, filter func(candidate card.Item) bool, viewAs func(item card.Item) *card.Card) *ViewAsSkill {
	meta.Frequency = Compulsory
	return newOneCard(meta, KindFilter, filter, viewAs, nil)
}

func newOneCard(meta Meta, kind ViewAsKind, filter func(card.Item) bool, viewAs func(card.Item) *card.Card, opts []ViewAsOption) *ViewAsSkill {
	vs := newViewAs(meta, kind, opts)
	vs.viewFilter = func(selected []card.Item, candidate card.Item) bool {
		return len(selected) == 0 && filter != nil && filter(candidate)
	}
	vs.viewAs = func(selection []card.Item) *card.Card {
		if len(selection) != 1 || viewAs == nil {
			return nil
		}
		return viewAs(selection[0])
	}
	return vs
}

// Kind returns the arity class of the skill.
func (vs *ViewAsSkill) Kind() ViewAsKind { return vs.kind }

// EnabledAtPlay reports whether the skill is offered during free play.
func (vs *ViewAsSkill) EnabledAtPlay(p Player) bool {
	return vs.enabledAtPlay(p)
}

// EnabledAtResponse reports whether the skill may answer pattern.
func (vs *ViewAsSkill) EnabledAtResponse(p Player, pattern string) bool {
	return vs.enabledAtResponse(p, pattern)
}

// ViewFilter reports whether candidate may join the current selection.
func (vs *ViewAsSkill) ViewFilter(selected []card.Item, candidate card.Item) bool {
	if vs.viewFilter == nil || candidate.Card == nil {
		return false
	}
	return vs.viewFilter(selected, candidate)
}

// ViewAs returns the produced card, or nil when the selection does not
// satisfy the skill. The card belongs to the caller.
func (vs *ViewAsSkill) ViewAs(selection []card.Item) *card.Card {
	if vs.viewAs == nil {
		return nil
	}
	produced := vs.viewAs(selection)
	if produced == nil {
		return nil
	}
	if produced.SkillName == "" {
		produced.SkillName = vs.Name()
	}
	return produced
}
