package script

import (
	"github.com/Shopify/go-lua"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"go.uber.org/zap"
)

func (rt *Runtime) builtins() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "self", Function: rt.self},
		{Name: "event", Function: rt.event},
		{Name: "phase", Function: rt.phase},
		{Name: "hp", Function: rt.hp},
		{Name: "max_hp", Function: rt.maxHP},
		{Name: "is_wounded", Function: rt.isWounded},
		{Name: "hand_count", Function: rt.handCount},
		{Name: "has_skill", Function: rt.hasSkill},
		{Name: "get_mark", Function: rt.getMark},
		{Name: "set_mark", Function: rt.setMark},
		{Name: "gain_mark", Function: rt.gainMark},
		{Name: "lose_mark", Function: rt.loseMark},
		{Name: "invoke", Function: rt.invoke},
		{Name: "draw", Function: rt.draw},
		{Name: "recover", Function: rt.recover},
		{Name: "lose_hp", Function: rt.loseHP},
		{Name: "damage", Function: rt.damage},
		{Name: "damage_amount", Function: rt.damageAmount},
		{Name: "set_damage_amount", Function: rt.setDamageAmount},
		{Name: "damage_source", Function: rt.damageSource},
		{Name: "damage_nature", Function: rt.damageNature},
		{Name: "draw_num", Function: rt.drawNum},
		{Name: "set_draw_num", Function: rt.setDrawNum},
		{Name: "log", Function: rt.log},
	}
}

// current returns the innermost running handler or raises a Lua error.
func (rt *Runtime) current(l *lua.State) *frame {
	if len(rt.frames) == 0 {
		lua.Errorf(l, "%s", ErrOutsideHandler.Error())
		return nil
	}
	return rt.frames[len(rt.frames)-1]
}

// fail records err on the frame so call can hand the Go error back to the
// dispatcher, then unwinds the Lua stack.
func fail(l *lua.State, f *frame, err error) int {
	f.err = err
	lua.Errorf(l, "%s", err.Error())
	return 0
}

// who resolves the optional player-name argument at index, defaulting to
// the skill owner.
func who(l *lua.State, f *frame, index int) skill.Player {
	name := lua.OptString(l, index, "")
	if name == "" {
		return f.player
	}
	p, ok := f.room.Player(name)
	if !ok {
		lua.ArgumentError(l, index, "unknown player "+name)
		return nil
	}
	return p
}

func (rt *Runtime) self(l *lua.State) int {
	l.PushString(rt.current(l).player.Name())
	return 1
}

func (rt *Runtime) event(l *lua.State) int {
	l.PushString(string(rt.current(l).event))
	return 1
}

func (rt *Runtime) phase(l *lua.State) int {
	f := rt.current(l)
	l.PushString(who(l, f, 1).Phase().String())
	return 1
}

func (rt *Runtime) hp(l *lua.State) int {
	f := rt.current(l)
	l.PushInteger(who(l, f, 1).HP())
	return 1
}

func (rt *Runtime) maxHP(l *lua.State) int {
	f := rt.current(l)
	l.PushInteger(who(l, f, 1).MaxHP())
	return 1
}

func (rt *Runtime) isWounded(l *lua.State) int {
	f := rt.current(l)
	l.PushBoolean(who(l, f, 1).IsWounded())
	return 1
}

func (rt *Runtime) handCount(l *lua.State) int {
	f := rt.current(l)
	l.PushInteger(who(l, f, 1).HandCount())
	return 1
}

func (rt *Runtime) hasSkill(l *lua.State) int {
	f := rt.current(l)
	name := lua.CheckString(l, 1)
	l.PushBoolean(who(l, f, 2).HasSkill(name))
	return 1
}

func (rt *Runtime) getMark(l *lua.State) int {
	f := rt.current(l)
	mark := lua.CheckString(l, 1)
	l.PushInteger(who(l, f, 2).Mark(mark))
	return 1
}

func (rt *Runtime) setMark(l *lua.State) int {
	f := rt.current(l)
	mark := lua.CheckString(l, 1)
	n := lua.CheckInteger(l, 2)
	who(l, f, 3).SetMark(mark, n)
	return 0
}

func (rt *Runtime) gainMark(l *lua.State) int {
	f := rt.current(l)
	mark := lua.CheckString(l, 1)
	n := lua.OptInteger(l, 2, 1)
	who(l, f, 3).GainMark(mark, n)
	return 0
}

func (rt *Runtime) loseMark(l *lua.State) int {
	f := rt.current(l)
	mark := lua.CheckString(l, 1)
	n := lua.OptInteger(l, 2, 1)
	who(l, f, 3).LoseMark(mark, n)
	return 0
}

func (rt *Runtime) invoke(l *lua.State) int {
	f := rt.current(l)
	ok, err := f.room.AskForSkillInvoke(f.ctx, f.player, f.skill)
	if err != nil {
		return fail(l, f, err)
	}
	l.PushBoolean(ok)
	return 1
}

func (rt *Runtime) draw(l *lua.State) int {
	f := rt.current(l)
	n := lua.OptInteger(l, 1, 1)
	if err := f.room.DrawCards(f.ctx, who(l, f, 2), n); err != nil {
		return fail(l, f, err)
	}
	return 0
}

func (rt *Runtime) recover(l *lua.State) int {
	f := rt.current(l)
	n := lua.OptInteger(l, 1, 1)
	if err := f.room.Recover(f.ctx, who(l, f, 2), n); err != nil {
		return fail(l, f, err)
	}
	return 0
}

func (rt *Runtime) loseHP(l *lua.State) int {
	f := rt.current(l)
	n := lua.OptInteger(l, 1, 1)
	if err := f.room.LoseHP(f.ctx, who(l, f, 2), n); err != nil {
		return fail(l, f, err)
	}
	return 0
}

// damage deals damage from the owner to the named player.
func (rt *Runtime) damage(l *lua.State) int {
	f := rt.current(l)
	target := lua.CheckString(l, 1)
	if _, ok := f.room.Player(target); !ok {
		lua.ArgumentError(l, 1, "unknown player "+target)
		return 0
	}
	d := rules.NewDamage(f.player.Name(), target)
	d.Damage = lua.OptInteger(l, 2, 1)
	if err := f.room.Damage(f.ctx, d); err != nil {
		return fail(l, f, err)
	}
	return 0
}

func damagePayload(l *lua.State, f *frame) *rules.DamageStruct {
	d, ok := f.payload.(*rules.DamageStruct)
	if !ok || d == nil {
		lua.Errorf(l, "no damage in %s", string(f.event))
		return nil
	}
	return d
}

func (rt *Runtime) damageAmount(l *lua.State) int {
	l.PushInteger(damagePayload(l, rt.current(l)).Damage)
	return 1
}

func (rt *Runtime) setDamageAmount(l *lua.State) int {
	d := damagePayload(l, rt.current(l))
	d.Damage = max(0, lua.CheckInteger(l, 1))
	return 0
}

func (rt *Runtime) damageSource(l *lua.State) int {
	d := damagePayload(l, rt.current(l))
	if d.From == "" {
		l.PushNil()
		return 1
	}
	l.PushString(d.From)
	return 1
}

func (rt *Runtime) damageNature(l *lua.State) int {
	l.PushString(damagePayload(l, rt.current(l)).Nature.String())
	return 1
}

func drawPayload(l *lua.State, f *frame) *rules.DrawCards {
	dc, ok := f.payload.(*rules.DrawCards)
	if !ok || dc == nil {
		lua.Errorf(l, "no draw count in %s", string(f.event))
		return nil
	}
	return dc
}

func (rt *Runtime) drawNum(l *lua.State) int {
	l.PushInteger(drawPayload(l, rt.current(l)).Num)
	return 1
}

func (rt *Runtime) setDrawNum(l *lua.State) int {
	dc := drawPayload(l, rt.current(l))
	dc.Num = max(0, lua.CheckInteger(l, 1))
	return 0
}

func (rt *Runtime) log(l *lua.State) int {
	f := rt.current(l)
	msg := lua.CheckString(l, 1)
	f.room.Logger().Info(msg,
		zap.String("skill", f.skill),
		zap.String("player", f.player.Name()),
		zap.String("event", string(f.event)),
	)
	return 0
}
