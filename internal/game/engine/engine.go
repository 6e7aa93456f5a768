// Package engine resolves trigger skills against raised events and folds
// passive skills into rule computations.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/magefree/skillcore-go/internal/game/engine"

var (
	// ErrReentrantPayload is returned when an event is raised with a payload
	// that an enclosing round is still resolving.
	ErrReentrantPayload = rules.ErrReentrantPayload
	// ErrDispatchDepth is returned when rounds nest too deeply.
	ErrDispatchDepth = rules.ErrDispatchDepth
	// ErrNotDispatchable is returned for notification-only event types.
	ErrNotDispatchable = errors.New("event type is not dispatchable")
)

// Outcome summarizes one dispatch round.
type Outcome struct {
	RoundID string
	Event   rules.EventType
	Target  string
	// Depth is the nesting level of the round, 1 for a top-level round.
	Depth int
	// Invoked lists the skills whose body ran, in order.
	Invoked    []string
	Consumed   bool
	ConsumedBy string
	Err        error
}

// RoundObserver receives every finished round, including failed ones.
type RoundObserver interface {
	ObserveRound(outcome Outcome)
}

// Engine owns the installed trigger skills of one room and dispatches
// events to them. It is driven by the room's single logic goroutine.
type Engine struct {
	registry  *skill.Registry
	logger    *zap.Logger
	tracer    trace.Tracer
	stack     *rules.ResolutionStack
	observers []RoundObserver

	mu        sync.RWMutex
	installed []*skill.TriggerSkill
	known     map[string]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Rounds are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxDepth bounds how deeply rounds may nest.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) { e.stack = rules.NewResolutionStack(depth) }
}

// WithTracerProvider sets where dispatch spans go. The global provider is
// used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		if tp != nil {
			e.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithObserver adds a round observer.
func WithObserver(observer RoundObserver) Option {
	return func(e *Engine) {
		if observer != nil {
			e.observers = append(e.observers, observer)
		}
	}
}

// New creates an engine over a skill registry.
func New(registry *skill.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer(tracerName),
		stack:    rules.NewResolutionStack(rules.DefaultMaxDepth),
		known:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the skill registry the engine resolves names against.
func (e *Engine) Registry() *skill.Registry {
	return e.registry
}

// Install makes skills and their related auxiliary skills take part in
// dispatch. Installation order breaks priority ties, so rooms install
// players' skills in seat order. Installing a skill twice is a no-op.
func (e *Engine) Install(names ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, name := range names {
		if err := e.installLocked(name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) installLocked(name string) error {
	if e.known[name] {
		return nil
	}
	s, ok := e.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("installing %s: %w", name, skill.ErrUnknownSkill)
	}
	e.known[name] = true
	if ts, ok := s.(*skill.TriggerSkill); ok {
		e.installed = append(e.installed, ts)
	}
	for _, aux := range e.registry.Related(name) {
		if err := e.installLocked(aux.Name()); err != nil {
			return err
		}
	}
	return nil
}

// Installed returns the installed trigger skills in installation order.
func (e *Engine) Installed() []*skill.TriggerSkill {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*skill.TriggerSkill(nil), e.installed...)
}

// IsInstalled reports whether a skill was installed.
func (e *Engine) IsInstalled(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.known[name]
}

// Subscribers returns the installed skills listening to event, ordered by
// priority, then second priority, then installation order.
func (e *Engine) Subscribers(event rules.EventType) []*skill.TriggerSkill {
	e.mu.RLock()
	var subscribed []*skill.TriggerSkill
	for _, ts := range e.installed {
		if ts.Subscribes(event) {
			subscribed = append(subscribed, ts)
		}
	}
	e.mu.RUnlock()

	sort.SliceStable(subscribed, func(i, j int) bool {
		a, b := subscribed[i], subscribed[j]
		if a.Priority() != b.Priority() {
			return a.Priority() > b.Priority()
		}
		return a.SecondPriority() > b.SecondPriority()
	})
	return subscribed
}

// Candidates returns the subscribers of event that are triggerable for
// target right now, in dispatch order.
func (e *Engine) Candidates(event rules.EventType, target skill.Player) []*skill.TriggerSkill {
	var out []*skill.TriggerSkill
	for _, ts := range e.Subscribers(event) {
		if ts.Triggerable(target) {
			out = append(out, ts)
		}
	}
	return out
}

// Dispatch runs one round: every subscriber of event is asked, in order,
// whether it is triggerable for target at that moment, and if so its body
// runs with payload. The first Consumed result ends the round. A body
// error aborts the round and is returned.
func (e *Engine) Dispatch(ctx context.Context, room skill.Room, event rules.EventType, target skill.Player, payload any) (Outcome, error) {
	outcome := Outcome{
		RoundID: uuid.NewString(),
		Event:   event,
		Target:  playerName(target),
	}
	if event.IsNotification() {
		return outcome, fmt.Errorf("%w: %s", ErrNotDispatchable, event)
	}
	if err := ctx.Err(); err != nil {
		return outcome, err
	}
	frame := rules.Frame{RoundID: outcome.RoundID, Event: event, Target: outcome.Target, Payload: payload}
	if err := e.stack.Push(frame); err != nil {
		return outcome, err
	}
	defer func() {
		_, _ = e.stack.Pop()
	}()
	outcome.Depth = e.stack.Depth()

	ctx, span := e.tracer.Start(ctx, "skill.dispatch", trace.WithAttributes(
		attribute.String("skill.event", string(event)),
		attribute.String("skill.target", outcome.Target),
		attribute.String("skill.round_id", outcome.RoundID),
		attribute.Int("skill.depth", outcome.Depth),
	))
	defer span.End()

	err := e.run(ctx, room, event, target, payload, &outcome)
	outcome.Err = err

	span.SetAttributes(
		attribute.StringSlice("skill.invoked", outcome.Invoked),
		attribute.Bool("skill.consumed", outcome.Consumed),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	e.logRound(outcome)
	for _, observer := range e.observers {
		observer.ObserveRound(outcome)
	}
	return outcome, err
}

func (e *Engine) run(ctx context.Context, room skill.Room, event rules.EventType, target skill.Player, payload any, outcome *Outcome) error {
	for _, ts := range e.Subscribers(event) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !ts.Triggerable(target) {
			continue
		}
		outcome.Invoked = append(outcome.Invoked, ts.Name())
		result, err := ts.Trigger(ctx, event, room, target, payload)
		if err != nil {
			return fmt.Errorf("skill %s on %s: %w", ts.Name(), event, err)
		}
		if result == skill.Consumed {
			outcome.Consumed = true
			outcome.ConsumedBy = ts.Name()
			return nil
		}
	}
	return nil
}

func (e *Engine) logRound(outcome Outcome) {
	if ce := e.logger.Check(zap.DebugLevel, "dispatch round"); ce != nil {
		fields := []zap.Field{
			zap.String("round_id", outcome.RoundID),
			zap.String("event", string(outcome.Event)),
			zap.String("target", outcome.Target),
			zap.Int("depth", outcome.Depth),
			zap.Strings("invoked", outcome.Invoked),
			zap.Bool("consumed", outcome.Consumed),
		}
		if outcome.ConsumedBy != "" {
			fields = append(fields, zap.String("skill", outcome.ConsumedBy))
		}
		if outcome.Err != nil {
			fields = append(fields, zap.Error(outcome.Err))
		}
		ce.Write(fields...)
	}
}

func playerName(p skill.Player) string {
	if p == nil {
		return ""
	}
	return p.Name()
}
