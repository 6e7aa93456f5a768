// Package script loads trigger skills written in Lua.
//
// A script declares skills with the global skill function:
//
//	skill {
//	  name = "lua_jianxiong",
//	  frequency = "frequent",
//	  events = { "DAMAGED" },
//	  handler = function(event, player)
//	    if game.invoke() then game.draw(1) end
//	    return false
//	  end,
//	}
//
// A handler returning true consumes the event. Inside a handler the game
// table reads and changes the room the skill fires in.
package script

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"go.uber.org/zap"
)

const handlersKey = "skillcore.handlers"

// ErrOutsideHandler is raised by game functions called while a script is
// still loading.
var ErrOutsideHandler = errors.New("game function called outside a skill handler")

// Definition is a skill declared by a script.
type Definition struct {
	Name      string
	Frequency skill.Frequency
	Events    []rules.EventType
	// Priority overrides the frequency default when set, zero included.
	Priority *int
	Source   string
}

type frame struct {
	ctx     context.Context
	skill   string
	event   rules.EventType
	room    skill.Room
	player  skill.Player
	payload any
	err     error
}

// Runtime owns one Lua state and the skills its scripts declared. A Runtime
// is not safe for concurrent use; give every room its own.
type Runtime struct {
	state  *lua.State
	logger *zap.Logger
	defs   []Definition
	names  map[string]bool
	frames []*frame
	source string
}

// New returns a runtime with the standard Lua libraries and the skill and
// game globals installed.
func New(logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	rt := &Runtime{
		state:  lua.NewState(),
		logger: logger,
		names:  make(map[string]bool),
	}
	lua.OpenLibraries(rt.state)

	rt.state.NewTable()
	rt.state.SetField(lua.RegistryIndex, handlersKey)

	rt.state.PushGoFunction(rt.declare)
	rt.state.SetGlobal("skill")

	rt.state.NewTable()
	lua.SetFunctions(rt.state, rt.builtins(), 0)
	rt.state.SetGlobal("game")
	return rt
}

// LoadFile runs a script file.
func (rt *Runtime) LoadFile(path string) error {
	rt.source = path
	defer func() { rt.source = "" }()
	if err := lua.LoadFile(rt.state, path, ""); err != nil {
		return fmt.Errorf("load lua %s: %w", path, err)
	}
	if err := rt.state.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("run lua %s: %w", path, err)
	}
	return nil
}

// LoadString runs script source under the given chunk name.
func (rt *Runtime) LoadString(name, src string) error {
	rt.source = name
	defer func() { rt.source = "" }()
	if err := lua.LoadBuffer(rt.state, src, name, ""); err != nil {
		return fmt.Errorf("load lua %s: %w", name, err)
	}
	if err := rt.state.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("run lua %s: %w", name, err)
	}
	return nil
}

// Definitions returns the skills declared so far in declaration order.
func (rt *Runtime) Definitions() []Definition {
	return append([]Definition(nil), rt.defs...)
}

// Skills builds a trigger skill for every declaration.
func (rt *Runtime) Skills() []*skill.TriggerSkill {
	out := make([]*skill.TriggerSkill, 0, len(rt.defs))
	for _, def := range rt.defs {
		out = append(out, rt.trigger(def))
	}
	return out
}

// Register adds the declared skills to reg.
func (rt *Runtime) Register(reg *skill.Registry) error {
	triggers := rt.Skills()
	skills := make([]skill.Skill, 0, len(triggers))
	for _, ts := range triggers {
		skills = append(skills, ts)
	}
	if err := reg.Register(skills...); err != nil {
		return fmt.Errorf("registering lua skills: %w", err)
	}
	rt.logger.Debug("lua skills registered", zap.Int("count", len(skills)))
	return nil
}

func (rt *Runtime) trigger(def Definition) *skill.TriggerSkill {
	var opts []skill.TriggerOption
	if def.Priority != nil {
		opts = append(opts, skill.WithPriority(*def.Priority))
	}
	name := def.Name
	meta := skill.Meta{Name: def.Name, Frequency: def.Frequency}
	return skill.NewTrigger(meta, def.Events, func(ctx context.Context, event rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
		return rt.call(ctx, name, event, room, p, payload)
	}, opts...)
}

// call runs the handler of the named skill. Handlers may raise events that
// run further handlers on the same state; frames track the innermost one.
func (rt *Runtime) call(ctx context.Context, name string, event rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
	f := &frame{ctx: ctx, skill: name, event: event, room: room, player: p, payload: payload}
	rt.frames = append(rt.frames, f)
	defer func() { rt.frames = rt.frames[:len(rt.frames)-1] }()

	l := rt.state
	top := l.Top()
	defer l.SetTop(top)

	l.Field(lua.RegistryIndex, handlersKey)
	l.Field(-1, name)
	if !l.IsFunction(-1) {
		return skill.Continue, fmt.Errorf("lua skill %s has no handler", name)
	}
	l.PushString(string(event))
	l.PushString(p.Name())
	if err := l.ProtectedCall(2, 1, 0); err != nil {
		if f.err != nil {
			return skill.Continue, f.err
		}
		return skill.Continue, fmt.Errorf("lua handler: %w", err)
	}
	return skill.Consume(l.ToBoolean(-1)), nil
}

// declare is the skill global. It validates the declaration table and
// stores the handler under the skill name.
func (rt *Runtime) declare(l *lua.State) int {
	lua.CheckType(l, 1, lua.TypeTable)
	name := fieldString(l, 1, "name")
	if name == "" {
		lua.ArgumentError(l, 1, "skill name expected")
		return 0
	}
	if rt.names[name] {
		lua.Errorf(l, "skill %s declared twice", name)
		return 0
	}
	freq, err := skill.ParseFrequency(fieldString(l, 1, "frequency"))
	if err != nil {
		lua.Errorf(l, "skill %s: %s", name, err.Error())
		return 0
	}
	var events []rules.EventType
	for _, tag := range fieldStrings(l, 1, "events") {
		et, err := rules.ParseEventType(tag)
		if err != nil {
			lua.Errorf(l, "skill %s: %s", name, err.Error())
			return 0
		}
		events = append(events, et)
	}
	if len(events) == 0 {
		lua.Errorf(l, "skill %s subscribes to no events", name)
		return 0
	}

	priority, err := fieldOptInt(l, 1, "priority")
	if err != nil {
		lua.Errorf(l, "skill %s: %s", name, err.Error())
		return 0
	}

	l.Field(1, "handler")
	if !l.IsFunction(-1) {
		lua.Errorf(l, "skill %s: handler must be a function", name)
		return 0
	}
	l.Field(lua.RegistryIndex, handlersKey)
	l.PushValue(-2)
	l.SetField(-2, name)
	l.Pop(2)

	rt.names[name] = true
	rt.defs = append(rt.defs, Definition{
		Name:      name,
		Frequency: freq,
		Events:    events,
		Priority:  priority,
		Source:    rt.source,
	})
	return 0
}

func fieldString(l *lua.State, index int, key string) string {
	l.Field(index, key)
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeString {
		return ""
	}
	s, _ := l.ToString(-1)
	return s
}

// fieldOptInt reads an optional integer; nil means the field is absent.
func fieldOptInt(l *lua.State, index int, key string) (*int, error) {
	l.Field(index, key)
	defer l.Pop(1)
	if l.IsNil(-1) {
		return nil, nil
	}
	n, ok := l.ToInteger(-1)
	if !ok {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &n, nil
}

// fieldStrings reads a list of strings; a single string counts as a list
// of one.
func fieldStrings(l *lua.State, index int, key string) []string {
	l.Field(index, key)
	defer l.Pop(1)
	switch l.TypeOf(-1) {
	case lua.TypeString:
		s, _ := l.ToString(-1)
		return []string{s}
	case lua.TypeTable:
		n := l.RawLength(-1)
		out := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			l.RawGetInt(-1, i)
			if s, ok := l.ToString(-1); ok {
				out = append(out, s)
			}
			l.Pop(1)
		}
		return out
	default:
		return nil
	}
}
