package skill

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDuplicateSkill is returned when a name is registered twice.
	ErrDuplicateSkill = errors.New("skill already registered")
	// ErrUnknownSkill is returned when a name is not registered.
	ErrUnknownSkill = errors.New("unknown skill")
	// ErrInvalidSkill is returned for nil skills or empty names.
	ErrInvalidSkill = errors.New("invalid skill")
)

// Registry maps skill names to skill instances. Each room holds one; no
// process-wide table exists.
type Registry struct {
	mu      sync.RWMutex
	skills  map[string]Skill
	order   []string
	related map[string][]string
	effects map[string]CardEffect
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		skills:  make(map[string]Skill),
		related: make(map[string][]string),
		effects: make(map[string]CardEffect),
	}
}

// Register adds skills in order.
func (r *Registry) Register(skills ...Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range skills {
		if s == nil || s.Name() == "" {
			return ErrInvalidSkill
		}
		if _, exists := r.skills[s.Name()]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateSkill, s.Name())
		}
		if ts, ok := s.(*TriggerSkill); ok && ts.ViewAsSkill() != "" {
			if loop, ok := r.viewAsLoop(ts.Name(), ts.ViewAsSkill()); ok {
				return fmt.Errorf("%w: %s: view-as chain returns through %s", ErrInvalidSkill, ts.Name(), loop)
			}
		}
		r.skills[s.Name()] = s
		r.order = append(r.order, s.Name())
	}
	return nil
}

// MustRegister is Register for content tables built at start-up.
func (r *Registry) MustRegister(skills ...Skill) {
	if err := r.Register(skills...); err != nil {
		panic(err)
	}
}

// Relate records aux as an auxiliary of main: whoever gains main also gains
// aux. Both must be registered.
func (r *Registry) Relate(main, aux string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range []string{main, aux} {
		if _, ok := r.skills[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSkill, name)
		}
	}
	for _, have := range r.related[main] {
		if have == aux {
			return nil
		}
	}
	r.related[main] = append(r.related[main], aux)
	return nil
}

// Lookup returns the skill registered under name.
func (r *Registry) Lookup(name string) (Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[name]
	return s, ok
}

// Trigger returns the trigger skill registered under name. Skills that
// delegate to another skill's body must handle the false case.
func (r *Registry) Trigger(name string) (*TriggerSkill, bool) {
	s, ok := r.Lookup(name)
	if !ok {
		return nil, false
	}
	ts, ok := s.(*TriggerSkill)
	return ts, ok
}

// ViewAs returns the substitution skill for name: the skill itself, or the
// substitution skill attached to a trigger skill, following trigger skills
// that attach other trigger skills.
func (r *Registry) ViewAs(name string) (*ViewAsSkill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	for cur := name; !seen[cur]; {
		seen[cur] = true
		switch v := r.skills[cur].(type) {
		case *ViewAsSkill:
			return v, true
		case *TriggerSkill:
			if v.ViewAsSkill() == "" {
				return nil, false
			}
			cur = v.ViewAsSkill()
		default:
			return nil, false
		}
	}
	return nil, false
}

// viewAsLoop follows the view-as chain starting at target and reports the
// skill through which it would come back to name. Callers hold r.mu.
func (r *Registry) viewAsLoop(name, target string) (string, bool) {
	seen := map[string]bool{name: true}
	for cur := target; ; {
		if seen[cur] {
			return cur, true
		}
		seen[cur] = true
		ts, ok := r.skills[cur].(*TriggerSkill)
		if !ok || ts.ViewAsSkill() == "" {
			return "", false
		}
		cur = ts.ViewAsSkill()
	}
}

// Related returns the auxiliary skills of name in relation order.
func (r *Registry) Related(name string) []Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Skill, 0, len(r.related[name]))
	for _, aux := range r.related[name] {
		out = append(out, r.skills[aux])
	}
	return out
}

// All returns every skill in registration order.
func (r *Registry) All() []Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Skill, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.skills[name])
	}
	return out
}

// Len returns the number of registered skills.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Prohibits returns the prohibit skills in registration order.
func (r *Registry) Prohibits() []*ProhibitSkill { return collect[*ProhibitSkill](r) }

// Distances returns the distance skills in registration order.
func (r *Registry) Distances() []*DistanceSkill { return collect[*DistanceSkill](r) }

// MaxCards returns the hand limit skills in registration order.
func (r *Registry) MaxCards() []*MaxCardsSkill { return collect[*MaxCardsSkill](r) }

// Filters returns the filter skills in registration order.
func (r *Registry) Filters() []*ViewAsSkill {
	var out []*ViewAsSkill
	for _, vs := range collect[*ViewAsSkill](r) {
		if vs.Kind() == KindFilter {
			out = append(out, vs)
		}
	}
	return out
}

func collect[T Skill](r *Registry) []T {
	var out []T
	for _, s := range r.All() {
		if t, ok := s.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
