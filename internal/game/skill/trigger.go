package skill

import (
	"context"
	"fmt"

	"github.com/magefree/skillcore-go/internal/game/rules"
)

// Result tells the dispatcher whether to keep going after a skill ran.
type Result int

const (
	// Continue lets lower-ordered skills see the event.
	Continue Result = iota
	// Consumed ends the round for this occurrence of the event.
	Consumed
)

func (r Result) String() string {
	if r == Consumed {
		return "consumed"
	}
	return "continue"
}

// Consume turns a boolean "handled" answer into a Result.
func Consume(handled bool) Result {
	if handled {
		return Consumed
	}
	return Continue
}

// Variant tags the specialization a trigger skill was built from.
type Variant int

const (
	VariantTrigger Variant = iota
	VariantMasochism
	VariantPhaseChange
	VariantDrawCards
	VariantSlashBuff
	VariantGameStart
	VariantMarkAssign
	VariantConvert
	VariantWeapon
	VariantArmor
	VariantScenarioRule
)

var variantNames = map[Variant]string{
	VariantTrigger:      "trigger",
	VariantMasochism:    "masochism",
	VariantPhaseChange:  "phase_change",
	VariantDrawCards:    "draw_cards",
	VariantSlashBuff:    "slash_buff",
	VariantGameStart:    "game_start",
	VariantMarkAssign:   "mark_assign",
	VariantConvert:      "convert",
	VariantWeapon:       "weapon",
	VariantArmor:        "armor",
	VariantScenarioRule: "scenario_rule",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("variant_%d", int(v))
}

// TriggerFunc is the body of a trigger skill. It may read and mutate
// payload; the shape of payload depends on event and must be checked.
type TriggerFunc func(ctx context.Context, event rules.EventType, room Room, player Player, payload any) (Result, error)

// TriggerableFunc decides whether a skill reacts for target.
type TriggerableFunc func(self *TriggerSkill, target Player) bool

// TriggerSkill reacts to events raised by the room.
type TriggerSkill struct {
	Base
	variant        Variant
	events         []rules.EventType
	priority       int
	secondPriority int
	triggerable    TriggerableFunc
	onTrigger      TriggerFunc
	viewAs         string
}

// TriggerOption customizes a trigger skill at construction.
type TriggerOption func(*TriggerSkill)

// WithPriority overrides the primary ordering key.
func WithPriority(priority int) TriggerOption {
	return func(ts *TriggerSkill) { ts.priority = priority }
}

// WithSecondPriority overrides the secondary ordering key.
func WithSecondPriority(priority int) TriggerOption {
	return func(ts *TriggerSkill) { ts.secondPriority = priority }
}

// WithTriggerable replaces the triggerability predicate.
func WithTriggerable(fn TriggerableFunc) TriggerOption {
	return func(ts *TriggerSkill) {
		if fn != nil {
			ts.triggerable = fn
		}
	}
}

// WithViewAs attaches a substitution skill, registered separately under
// name, that the owner can use alongside this trigger.
func WithViewAs(name string) TriggerOption {
	return func(ts *TriggerSkill) { ts.viewAs = name }
}

// WithEvents adds events to the subscription list.
func WithEvents(events ...rules.EventType) TriggerOption {
	return func(ts *TriggerSkill) { ts.events = appendEvents(ts.events, events...) }
}

func newTrigger(meta Meta, variant Variant, events []rules.EventType, fn TriggerFunc, opts []TriggerOption) *TriggerSkill {
	ts := &TriggerSkill{
		Base:           newBase(meta),
		variant:        variant,
		events:         appendEvents(nil, events...),
		priority:       defaultPriority(meta.Frequency),
		secondPriority: 1,
		triggerable:    defaultTriggerable,
		onTrigger:      fn,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

func defaultPriority(f Frequency) int {
	if f == Compulsory || f == Wake {
		return 2
	}
	return 1
}

func defaultTriggerable(self *TriggerSkill, target Player) bool {
	return target != nil && target.IsAlive() && target.HasSkill(self.Name())
}

func appendEvents(dst []rules.EventType, events ...rules.EventType) []rules.EventType {
	for _, ev := range events {
		dup := false
		for _, have := range dst {
			if have == ev {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, ev)
		}
	}
	return dst
}

// Variant returns the specialization the skill was built from.
func (ts *TriggerSkill) Variant() Variant { return ts.variant }

// Events returns the subscribed event tags.
func (ts *TriggerSkill) Events() []rules.EventType {
	return append([]rules.EventType(nil), ts.events...)
}

// Subscribes reports whether the skill listens to event.
func (ts *TriggerSkill) Subscribes(event rules.EventType) bool {
	for _, ev := range ts.events {
		if ev == event {
			return true
		}
	}
	return false
}

// Priority is the primary ordering key; higher runs first.
func (ts *TriggerSkill) Priority() int { return ts.priority }

// SecondPriority breaks ties between equal priorities; higher runs first.
func (ts *TriggerSkill) SecondPriority() int { return ts.secondPriority }

// ViewAsSkill names the attached substitution skill, if any.
func (ts *TriggerSkill) ViewAsSkill() string { return ts.viewAs }

// Triggerable reports whether the skill reacts for target.
func (ts *TriggerSkill) Triggerable(target Player) bool {
	return ts.triggerable(ts, target)
}

// Trigger runs the skill body. A skill without a body never consumes.
func (ts *TriggerSkill) Trigger(ctx context.Context, event rules.EventType, room Room, player Player, payload any) (Result, error) {
	if ts.onTrigger == nil {
		return Continue, nil
	}
	return ts.onTrigger(ctx, event, room, player, payload)
}

// NewTrigger builds a free-form trigger skill.
func NewTrigger(meta Meta, events []rules.EventType, fn TriggerFunc, opts ...TriggerOption) *TriggerSkill {
	return newTrigger(meta, VariantTrigger, events, fn, opts)
}

// NewMasochism builds a skill reacting to damage its owner took. The hook
// runs only while the owner is alive, and the event is never consumed.
// The skill resolves after other damage reactions.
func NewMasochism(meta Meta, onDamaged func(ctx context.Context, room Room, p Player, damage *rules.DamageStruct) error, opts ...TriggerOption) *TriggerSkill {
	fn := func(ctx context.Context, _ rules.EventType, room Room, p Player, payload any) (Result, error) {
		damage, ok := payload.(*rules.DamageStruct)
		if !ok || onDamaged == nil || p == nil || !p.IsAlive() {
			return Continue, nil
		}
		return Continue, onDamaged(ctx, room, p, damage)
	}
	opts = append([]TriggerOption{WithPriority(-1)}, opts...)
	return newTrigger(meta, VariantMasochism, []rules.EventType{rules.EventDamaged}, fn, opts)
}

// NewPhaseChange builds a skill reacting to its owner entering a phase.
// When the hook asks for the phase to be skipped, the phase is marked
// skipped on the player and the event is consumed.
func NewPhaseChange(meta Meta, onPhaseChange func(ctx context.Context, room Room, p Player) (bool, error), opts ...TriggerOption) *TriggerSkill {
	fn := func(ctx context.Context, _ rules.EventType, room Room, p Player, payload any) (Result, error) {
		if onPhaseChange == nil || p == nil {
			return Continue, nil
		}
		skip, err := onPhaseChange(ctx, room, p)
		if err != nil || !skip {
			return Continue, err
		}
		phase := p.Phase()
		if change, ok := payload.(*rules.PhaseChange); ok {
			phase = change.Phase
			change.Skipped = true
		}
		p.Skip(phase)
		return Consumed, nil
	}
	return newTrigger(meta, VariantPhaseChange, []rules.EventType{rules.EventPhaseChange}, fn, opts)
}

// NewDrawCards builds a skill replacing the number of cards its owner draws
// in the draw phase.
func NewDrawCards(meta Meta, getDrawNum func(ctx context.Context, room Room, p Player, n int) (int, error), opts ...TriggerOption) *TriggerSkill {
	fn := func(ctx context.Context, _ rules.EventType, room Room, p Player, payload any) (Result, error) {
		draw, ok := payload.(*rules.DrawCards)
		if !ok || getDrawNum == nil {
			return Continue, nil
		}
		n, err := getDrawNum(ctx, room, p, draw.Num)
		if err != nil {
			return Continue, err
		}
		if n < 0 {
			n = 0
		}
		draw.Num = n
		return Continue, nil
	}
	return newTrigger(meta, VariantDrawCards, []rules.EventType{rules.EventDrawNCards}, fn, opts)
}

// NewSlashBuff builds a skill strengthening a slash its owner resolves. The
// hook's answer is passed through as the result.
func NewSlashBuff(meta Meta, buff func(ctx context.Context, room Room, effect *rules.SlashEffect) (bool, error), opts ...TriggerOption) *TriggerSkill {
	fn := func(ctx context.Context, _ rules.EventType, room Room, p Player, payload any) (Result, error) {
		effect, ok := payload.(*rules.SlashEffect)
		if !ok || buff == nil || p == nil || !p.IsAlive() {
			return Continue, nil
		}
		handled, err := buff(ctx, room, effect)
		return Consume(handled), err
	}
	return newTrigger(meta, VariantSlashBuff, []rules.EventType{rules.EventSlashProceed}, fn, opts)
}

// NewGameStart builds a one-time setup skill run when the game starts.
func NewGameStart(meta Meta, onGameStart func(ctx context.Context, room Room, p Player) error, opts ...TriggerOption) *TriggerSkill {
	return newTrigger(meta, VariantGameStart, []rules.EventType{rules.EventGameStart}, gameStartFunc(onGameStart), opts)
}

func gameStartFunc(onGameStart func(ctx context.Context, room Room, p Player) error) TriggerFunc {
	return func(ctx context.Context, _ rules.EventType, room Room, p Player, _ any) (Result, error) {
		if onGameStart == nil || p == nil {
			return Continue, nil
		}
		return Continue, onGameStart(ctx, room, p)
	}
}

// MarkAssignName is the generated name of the skill granting n of mark.
func MarkAssignName(mark string, n int) string {
	return fmt.Sprintf("#%s-%d", mark, n)
}

// NewMarkAssign builds the auxiliary skill that sets mark to n at game
// start. Relate it to the visible skill that spends the mark.
func NewMarkAssign(mark string, n int) *TriggerSkill {
	onGameStart := func(_ context.Context, _ Room, p Player) error {
		p.SetMark(mark, n)
		return nil
	}
	meta := Meta{Name: MarkAssignName(mark, n), Frequency: Compulsory}
	return newTrigger(meta, VariantMarkAssign, []rules.EventType{rules.EventGameStart}, gameStartFunc(onGameStart), []TriggerOption{WithPriority(3)})
}

// NewConvert builds a limited game-start skill that offers a player whose
// general is from to become to. When dropMark is set, that mark is removed
// once the conversion happens.
func NewConvert(meta Meta, from, to, dropMark string, opts ...TriggerOption) *TriggerSkill {
	meta.Frequency = Limited
	var ts *TriggerSkill
	onGameStart := func(ctx context.Context, room Room, p Player) error {
		invoke, err := room.AskForSkillInvoke(ctx, p, ts.Name())
		if err != nil || !invoke {
			return err
		}
		if dropMark != "" {
			p.LoseAllMarks(dropMark)
		}
		return room.ChangeGeneral(ctx, p, to)
	}
	triggerable := func(self *TriggerSkill, target Player) bool {
		return defaultTriggerable(self, target) && target.General() == from
	}
	opts = append([]TriggerOption{WithTriggerable(triggerable)}, opts...)
	ts = newTrigger(meta, VariantConvert, []rules.EventType{rules.EventGameStart}, gameStartFunc(onGameStart), opts)
	return ts
}

// NewWeapon builds a skill that works only while its weapon is equipped.
// The skill name is the weapon's card name.
func NewWeapon(meta Meta, events []rules.EventType, fn TriggerFunc, opts ...TriggerOption) *TriggerSkill {
	triggerable := func(self *TriggerSkill, target Player) bool {
		return target != nil && target.IsAlive() && target.HasWeapon(self.Name())
	}
	opts = append([]TriggerOption{WithSecondPriority(0), WithTriggerable(triggerable)}, opts...)
	return newTrigger(meta, VariantWeapon, events, fn, opts)
}

// NewArmor builds a skill that works only while its armor is equipped and
// in effect. The equipped armor must resolve to this very skill instance,
// so several armor cards may share one skill.
func NewArmor(meta Meta, events []rules.EventType, fn TriggerFunc, opts ...TriggerOption) *TriggerSkill {
	triggerable := func(self *TriggerSkill, target Player) bool {
		if target == nil || !target.IsAlive() || !target.HasArmorEffect(self.Name()) {
			return false
		}
		equipped, ok := target.ArmorSkill()
		if !ok {
			return false
		}
		ts, ok := equipped.(*TriggerSkill)
		return ok && ts == self
	}
	opts = append([]TriggerOption{WithSecondPriority(0), WithTriggerable(triggerable)}, opts...)
	return newTrigger(meta, VariantArmor, events, fn, opts)
}

// NewScenarioRule builds a rule skill with no owner that reacts for any
// target, including none.
func NewScenarioRule(meta Meta, events []rules.EventType, fn TriggerFunc, opts ...TriggerOption) *TriggerSkill {
	triggerable := func(*TriggerSkill, Player) bool { return true }
	opts = append([]TriggerOption{WithPriority(3), WithTriggerable(triggerable)}, opts...)
	return newTrigger(meta, VariantScenarioRule, events, fn, opts)
}
