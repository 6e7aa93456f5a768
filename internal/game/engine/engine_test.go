package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"github.com/magefree/skillcore-go/internal/game/skill/skilltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

// recorder builds trigger skills that append their name to calls.
type recorder struct {
	calls []string
}

func (r *recorder) trigger(meta skill.Meta, events []rules.EventType, result skill.Result, opts ...skill.TriggerOption) *skill.TriggerSkill {
	name := meta.Name
	return skill.NewTrigger(meta, events, func(context.Context, rules.EventType, skill.Room, skill.Player, any) (skill.Result, error) {
		r.calls = append(r.calls, name)
		return result, nil
	}, opts...)
}

type fixture struct {
	reg    *skill.Registry
	engine *Engine
	room   *skilltest.Room
	alice  *skilltest.Player
	bob    *skilltest.Player
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	reg := skill.NewRegistry()
	alice := skilltest.NewPlayer("Alice", 0)
	bob := skilltest.NewPlayer("Bob", 1)
	room := skilltest.NewRoom(reg, alice, bob)
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	eng := New(reg, opts...)
	room.Raise = func(ctx context.Context, event rules.EventType, target skill.Player, payload any) (bool, error) {
		out, err := eng.Dispatch(ctx, room, event, target, payload)
		return out.Consumed, err
	}
	return &fixture{reg: reg, engine: eng, room: room, alice: alice, bob: bob}
}

func (f *fixture) give(t *testing.T, p *skilltest.Player, skills ...skill.Skill) {
	t.Helper()
	for _, s := range skills {
		if _, ok := f.reg.Lookup(s.Name()); !ok {
			require.NoError(t, f.reg.Register(s))
		}
		p.SkillNames = append(p.SkillNames, s.Name())
		require.NoError(t, f.engine.Install(s.Name()))
	}
}

func TestCompulsoryRunsBeforeOrdinaryOnDamaged(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	// Installed ordinary first so only priority can explain the order.
	f.give(t, f.alice,
		rec.trigger(skill.Meta{Name: "ordinary"}, []rules.EventType{rules.EventDamaged}, skill.Continue),
		rec.trigger(skill.Meta{Name: "compulsory", Frequency: skill.Compulsory}, []rules.EventType{rules.EventDamaged}, skill.Continue),
	)

	out, err := f.engine.Dispatch(context.Background(), f.room, rules.EventDamaged, f.alice, rules.NewDamage("Bob", "Alice"))
	require.NoError(t, err)
	assert.Equal(t, []string{"compulsory", "ordinary"}, rec.calls)
	assert.Equal(t, []string{"compulsory", "ordinary"}, out.Invoked)
	assert.False(t, out.Consumed)
	assert.NotEmpty(t, out.RoundID)
	assert.Equal(t, 1, out.Depth)
}

func TestDispatchOrderIsDeterministic(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	f.give(t, f.alice,
		rec.trigger(skill.Meta{Name: "a"}, []rules.EventType{rules.EventDamaged}, skill.Continue),
		rec.trigger(skill.Meta{Name: "b"}, []rules.EventType{rules.EventDamaged}, skill.Continue, skill.WithSecondPriority(0)),
		rec.trigger(skill.Meta{Name: "c"}, []rules.EventType{rules.EventDamaged}, skill.Continue),
		rec.trigger(skill.Meta{Name: "d", Frequency: skill.Wake}, []rules.EventType{rules.EventDamaged}, skill.Continue),
		rec.trigger(skill.Meta{Name: "e"}, []rules.EventType{rules.EventDamaged}, skill.Continue, skill.WithPriority(3)),
	)

	ctx := context.Background()
	_, err := f.engine.Dispatch(ctx, f.room, rules.EventDamaged, f.alice, rules.NewDamage("", "Alice"))
	require.NoError(t, err)
	first := append([]string(nil), rec.calls...)
	rec.calls = nil
	_, err = f.engine.Dispatch(ctx, f.room, rules.EventDamaged, f.alice, rules.NewDamage("", "Alice"))
	require.NoError(t, err)

	assert.Equal(t, []string{"e", "d", "a", "c", "b"}, first)
	assert.Equal(t, first, rec.calls)
}

func TestConsumedStopsRound(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	f.give(t, f.alice,
		rec.trigger(skill.Meta{Name: "prevent", Frequency: skill.Compulsory}, []rules.EventType{rules.EventDamagedBegin}, skill.Consumed),
		rec.trigger(skill.Meta{Name: "later"}, []rules.EventType{rules.EventDamagedBegin}, skill.Continue),
	)

	consumed, err := f.room.RaiseEvent(context.Background(), rules.EventDamagedBegin, f.alice, rules.NewDamage("Bob", "Alice"))
	require.NoError(t, err)
	assert.True(t, consumed)
	assert.Equal(t, []string{"prevent"}, rec.calls)
}

func TestPayloadMutationIsSeenDownstream(t *testing.T) {
	f := newFixture(t)
	var seen int
	f.give(t, f.alice,
		skill.NewTrigger(skill.Meta{Name: "boost", Frequency: skill.Compulsory}, []rules.EventType{rules.EventDamaged},
			func(_ context.Context, _ rules.EventType, _ skill.Room, _ skill.Player, payload any) (skill.Result, error) {
				payload.(*rules.DamageStruct).Damage++
				return skill.Continue, nil
			}),
		skill.NewTrigger(skill.Meta{Name: "read"}, []rules.EventType{rules.EventDamaged},
			func(_ context.Context, _ rules.EventType, _ skill.Room, _ skill.Player, payload any) (skill.Result, error) {
				seen = payload.(*rules.DamageStruct).Damage
				return skill.Continue, nil
			}),
	)

	damage := rules.NewDamage("Bob", "Alice")
	_, err := f.engine.Dispatch(context.Background(), f.room, rules.EventDamaged, f.alice, damage)
	require.NoError(t, err)
	assert.Equal(t, 2, seen)
	assert.Equal(t, 2, damage.Damage, "the room sees the mutated payload")
}

func TestTriggerableCheckedBeforeEachSkill(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	f.give(t, f.alice,
		skill.NewTrigger(skill.Meta{Name: "fatal", Frequency: skill.Compulsory}, []rules.EventType{rules.EventDamaged},
			func(_ context.Context, _ rules.EventType, _ skill.Room, p skill.Player, _ any) (skill.Result, error) {
				p.(*skilltest.Player).Alive = false
				return skill.Continue, nil
			}),
		rec.trigger(skill.Meta{Name: "afterwards"}, []rules.EventType{rules.EventDamaged}, skill.Continue),
	)

	out, err := f.engine.Dispatch(context.Background(), f.room, rules.EventDamaged, f.alice, rules.NewDamage("", "Alice"))
	require.NoError(t, err)
	assert.Equal(t, []string{"fatal"}, out.Invoked)
	assert.Empty(t, rec.calls)
}

func TestOnlyTargetsSkillsRun(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	f.give(t, f.bob, rec.trigger(skill.Meta{Name: "bobs"}, []rules.EventType{rules.EventDamaged}, skill.Continue))
	f.give(t, f.alice, rec.trigger(skill.Meta{Name: "alices"}, []rules.EventType{rules.EventDamaged}, skill.Continue))

	_, err := f.engine.Dispatch(context.Background(), f.room, rules.EventDamaged, f.alice, rules.NewDamage("", "Alice"))
	require.NoError(t, err)
	assert.Equal(t, []string{"alices"}, rec.calls)

	assert.Len(t, f.engine.Candidates(rules.EventDamaged, f.bob), 1)
	assert.Empty(t, f.engine.Candidates(rules.EventDeath, f.bob))
}

func TestScenarioRuleRunsWithoutTarget(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	rule := skill.NewScenarioRule(skill.Meta{Name: "rule"}, []rules.EventType{rules.EventGameStart}, nil)
	require.NoError(t, f.reg.Register(rule))
	require.NoError(t, f.engine.Install("rule"))
	f.give(t, f.alice, rec.trigger(skill.Meta{Name: "own"}, []rules.EventType{rules.EventGameStart}, skill.Continue))

	out, err := f.engine.Dispatch(context.Background(), f.room, rules.EventGameStart, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"rule"}, out.Invoked)
	assert.Equal(t, "", out.Target)
}

func TestCallbackErrorAbortsRound(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	boom := errors.New("boom")
	f.give(t, f.alice,
		skill.NewTrigger(skill.Meta{Name: "broken", Frequency: skill.Compulsory}, []rules.EventType{rules.EventDamaged},
			func(context.Context, rules.EventType, skill.Room, skill.Player, any) (skill.Result, error) {
				return skill.Continue, boom
			}),
		rec.trigger(skill.Meta{Name: "never"}, []rules.EventType{rules.EventDamaged}, skill.Continue),
	)

	out, err := f.engine.Dispatch(context.Background(), f.room, rules.EventDamaged, f.alice, rules.NewDamage("", "Alice"))
	require.ErrorIs(t, err, boom)
	assert.ErrorIs(t, out.Err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.Empty(t, rec.calls)
}

func TestReentrantPayloadRejected(t *testing.T) {
	f := newFixture(t)
	var nestedErr error
	f.give(t, f.alice,
		skill.NewTrigger(skill.Meta{Name: "loop"}, []rules.EventType{rules.EventDamaged},
			func(ctx context.Context, _ rules.EventType, room skill.Room, p skill.Player, payload any) (skill.Result, error) {
				_, nestedErr = room.RaiseEvent(ctx, rules.EventDamaged, p, payload)
				return skill.Continue, nil
			}),
	)

	_, err := f.engine.Dispatch(context.Background(), f.room, rules.EventDamaged, f.alice, rules.NewDamage("", "Alice"))
	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, ErrReentrantPayload)
}

func TestNestedRoundWithFreshPayload(t *testing.T) {
	f := newFixture(t)
	var draws []int
	f.give(t, f.alice,
		skill.NewMasochism(skill.Meta{Name: "guixin"}, func(ctx context.Context, room skill.Room, p skill.Player, _ *rules.DamageStruct) error {
			draw := &rules.DrawCards{Num: 1}
			_, err := room.RaiseEvent(ctx, rules.EventDrawNCards, p, draw)
			draws = append(draws, draw.Num)
			return err
		}),
		skill.NewDrawCards(skill.Meta{Name: "yingzi"}, func(_ context.Context, _ skill.Room, _ skill.Player, n int) (int, error) {
			return n + 1, nil
		}),
	)

	_, err := f.engine.Dispatch(context.Background(), f.room, rules.EventDamaged, f.alice, rules.NewDamage("", "Alice"))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, draws)
}

func TestDispatchDepthLimit(t *testing.T) {
	f := newFixture(t, WithMaxDepth(3))
	var deepest error
	f.give(t, f.alice,
		skill.NewTrigger(skill.Meta{Name: "echo"}, []rules.EventType{rules.EventHpChanged},
			func(ctx context.Context, ev rules.EventType, room skill.Room, p skill.Player, _ any) (skill.Result, error) {
				_, err := room.RaiseEvent(ctx, ev, p, &rules.Recover{Who: p.Name()})
				if err != nil && deepest == nil {
					deepest = err
				}
				return skill.Continue, nil
			}),
	)

	_, err := f.engine.Dispatch(context.Background(), f.room, rules.EventHpChanged, f.alice, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, deepest, ErrDispatchDepth)
}

func TestNotificationEventsAreNotDispatchable(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Dispatch(context.Background(), f.room, rules.EventMarkChanged, f.alice, nil)
	assert.ErrorIs(t, err, ErrNotDispatchable)
}

func TestCancelledContext(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	f.give(t, f.alice, rec.trigger(skill.Meta{Name: "x"}, []rules.EventType{rules.EventDamaged}, skill.Continue))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.engine.Dispatch(ctx, f.room, rules.EventDamaged, f.alice, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.calls)
}

func TestInstallRelatedAndIdempotent(t *testing.T) {
	f := newFixture(t)
	f.reg.MustRegister(
		skill.NewTrigger(skill.Meta{Name: "kuangbao", Frequency: skill.Compulsory}, []rules.EventType{rules.EventDamage}, nil),
		skill.NewMarkAssign("@wrath", 2),
	)
	require.NoError(t, f.reg.Relate("kuangbao", "#@wrath-2"))

	require.NoError(t, f.engine.Install("kuangbao", "kuangbao"))
	require.NoError(t, f.engine.Install("#@wrath-2"))
	installed := f.engine.Installed()
	require.Len(t, installed, 2)
	assert.Equal(t, "kuangbao", installed[0].Name())
	assert.Equal(t, "#@wrath-2", installed[1].Name())
	assert.True(t, f.engine.IsInstalled("#@wrath-2"))

	err := f.engine.Install("nope")
	assert.ErrorIs(t, err, skill.ErrUnknownSkill)
}

type observerFunc func(Outcome)

func (fn observerFunc) ObserveRound(o Outcome) { fn(o) }

func TestObserverAndSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	var rounds []Outcome
	f := newFixture(t, WithTracerProvider(tp), WithObserver(observerFunc(func(o Outcome) { rounds = append(rounds, o) })))
	rec := &recorder{}
	f.give(t, f.alice, rec.trigger(skill.Meta{Name: "shelie"}, []rules.EventType{rules.EventPhaseChange}, skill.Consumed))

	_, err := f.engine.Dispatch(context.Background(), f.room, rules.EventPhaseChange, f.alice, &rules.PhaseChange{Player: "Alice", Phase: rules.PhaseDraw})
	require.NoError(t, err)

	require.Len(t, rounds, 1)
	assert.Equal(t, "shelie", rounds[0].ConsumedBy)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "skill.dispatch", spans[0].Name())
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, string(rules.EventPhaseChange), attrs["skill.event"].AsString())
	assert.Equal(t, "Alice", attrs["skill.target"].AsString())
	assert.True(t, attrs["skill.consumed"].AsBool())
}
