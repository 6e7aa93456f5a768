// Package skill defines the skill taxonomy: the shared base, card
// substitution skills, event-driven trigger skills and passive query
// skills, together with the room contract skills are written against.
package skill

import (
	"fmt"
	"strings"

	"github.com/magefree/skillcore-go/internal/game/card"
)

// Frequency classifies how often and how a skill may be used.
type Frequency int

const (
	NotFrequent Frequency = iota
	Frequent
	Compulsory
	Limited
	Wake
)

var frequencyNames = map[Frequency]string{
	NotFrequent: "not_frequent",
	Frequent:    "frequent",
	Compulsory:  "compulsory",
	Limited:     "limited",
	Wake:        "wake",
}

func (f Frequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("frequency_%d", int(f))
}

// ParseFrequency resolves a frequency from its name. The empty string is
// NotFrequent.
func ParseFrequency(name string) (Frequency, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return NotFrequent, nil
	}
	for f, fname := range frequencyNames {
		if fname == key {
			return f, nil
		}
	}
	return NotFrequent, fmt.Errorf("unknown frequency %q", name)
}

// Location is where a skill's button sits; auxiliary skills bundled under a
// parent go to the right.
type Location int

const (
	Left Location = iota
	Right
)

func (l Location) String() string {
	if l == Right {
		return "right"
	}
	return "left"
}

const (
	lordSuffix      = "$"
	invisiblePrefix = "#"
	// DefaultChoice is the answer a skill gives to a prompt it has no
	// opinion on.
	DefaultChoice = "no"
)

// Meta is the identity every skill is constructed from.
type Meta struct {
	// Name is the unique skill name. A trailing "$" marks a lord skill and
	// is stripped; a leading "#" marks an invisible auxiliary skill.
	Name      string
	Frequency Frequency
	// Parent names the skill this one is bundled under.
	Parent string
	// DefaultChoice overrides the "no" default answer.
	DefaultChoice string
	// ChoiceFunc computes the default answer per player, taking precedence
	// over DefaultChoice.
	ChoiceFunc func(p Player) string
	// EffectIndex picks a presentation variant; nil means -1 (any).
	EffectIndex func(p Player, c *card.Card) int
}

// Skill is what every skill exposes regardless of its family.
type Skill interface {
	Name() string
	IsLordSkill() bool
	IsVisible() bool
	Frequency() Frequency
	Location() Location
	Parent() string
	DefaultChoice(p Player) string
	EffectIndex(p Player, c *card.Card) int
	Text() string
}

// Base implements Skill. Skills carry no per-game state; anything a skill
// needs to remember lives on the player or the room.
type Base struct {
	name          string
	lord          bool
	frequency     Frequency
	parent        string
	defaultChoice string
	choiceFunc    func(Player) string
	effectIndex   func(Player, *card.Card) int
}

func newBase(meta Meta) Base {
	name := strings.TrimSpace(meta.Name)
	lord := strings.HasSuffix(name, lordSuffix)
	if lord {
		name = strings.TrimSuffix(name, lordSuffix)
	}
	choice := meta.DefaultChoice
	if choice == "" {
		choice = DefaultChoice
	}
	return Base{
		name:          name,
		lord:          lord,
		frequency:     meta.Frequency,
		parent:        meta.Parent,
		defaultChoice: choice,
		choiceFunc:    meta.ChoiceFunc,
		effectIndex:   meta.EffectIndex,
	}
}

// Name returns the skill name without the lord suffix.
func (b *Base) Name() string { return b.name }

// IsLordSkill reports whether the skill was declared with the lord suffix.
func (b *Base) IsLordSkill() bool { return b.lord }

// IsVisible reports whether players can see the skill.
func (b *Base) IsVisible() bool { return !strings.HasPrefix(b.name, invisiblePrefix) }

// Frequency returns the skill's classification.
func (b *Base) Frequency() Frequency { return b.frequency }

// Parent returns the name of the skill this one is bundled under.
func (b *Base) Parent() string { return b.parent }

// Location returns Right for skills with a parent and Left otherwise.
func (b *Base) Location() Location {
	if b.parent != "" {
		return Right
	}
	return Left
}

// DefaultChoice returns the answer used when a prompt raised by this skill
// is answered automatically.
func (b *Base) DefaultChoice(p Player) string {
	if b.choiceFunc != nil {
		return b.choiceFunc(p)
	}
	return b.defaultChoice
}

// EffectIndex returns the presentation variant, -1 meaning any.
func (b *Base) EffectIndex(p Player, c *card.Card) int {
	if b.effectIndex != nil {
		return b.effectIndex(p, c)
	}
	return -1
}

// Text returns the skill name decorated with its restriction, if any.
func (b *Base) Text() string {
	switch b.frequency {
	case Limited:
		return b.name + " [Limited]"
	case Compulsory:
		return b.name + " [Compulsory]"
	case Wake:
		return b.name + " [Wake]"
	default:
		return b.name
	}
}

// SetFlag raises the player's scratch flag named after the skill.
func (b *Base) SetFlag(p Player) {
	if p != nil {
		p.SetFlag(b.name)
	}
}

// UnsetFlag lowers the player's scratch flag named after the skill.
func (b *Base) UnsetFlag(p Player) {
	if p != nil {
		p.UnsetFlag(b.name)
	}
}
