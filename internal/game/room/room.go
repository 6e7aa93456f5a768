// Package room is a reference in-memory game room. It owns players, cards
// and the turn loop and runs skills through the dispatch engine, so that
// skills and content can be exercised end to end.
//
// A Room is driven by a single goroutine. Prompts may block that goroutine
// until an answerer responds.
package room

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/counters"
	"github.com/magefree/skillcore-go/internal/game/engine"
	"github.com/magefree/skillcore-go/internal/game/prompt"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"github.com/magefree/skillcore-go/internal/game/watchers"
	"go.uber.org/zap"
)

var (
	// ErrNotEnoughPlayers is returned when a room is created with fewer than
	// two seats.
	ErrNotEnoughPlayers = errors.New("at least 2 players required")
	// ErrDuplicatePlayer is returned when two seats share a name.
	ErrDuplicatePlayer = errors.New("duplicate player name")
	// ErrUnknownPlayer is returned for a player not seated in this room.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrDeckExhausted is returned when no card is left to draw.
	ErrDeckExhausted = errors.New("draw pile exhausted")
	// ErrGameOver is returned when acting in a finished game.
	ErrGameOver = errors.New("game is over")
)

// Config holds the rule parameters of a room.
type Config struct {
	Seed         uint64
	StartingHand int
	DrawPerTurn  int
	MaxTurns     int
	// ScratchReset is the phase at whose start a player's scratch flags are
	// cleared.
	ScratchReset rules.Phase
}

// DefaultConfig returns the standard rule parameters.
func DefaultConfig() Config {
	return Config{
		Seed:         1,
		StartingHand: 4,
		DrawPerTurn:  2,
		MaxTurns:     20,
		ScratchReset: rules.PhaseNotActive,
	}
}

// Option configures a Room.
type Option func(*Room)

// WithConfig replaces the rule parameters.
func WithConfig(cfg Config) Option {
	return func(r *Room) { r.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Room) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithAnswerer sets who answers prompts. prompt.Auto is used otherwise.
func WithAnswerer(answerer prompt.Answerer) Option {
	return func(r *Room) {
		if answerer != nil {
			r.answerer = answerer
		}
	}
}

// WithEngineOptions passes options to the room's dispatch engine.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(r *Room) { r.engineOpts = append(r.engineOpts, opts...) }
}

// WithGenerals lets ChangeGeneral swap skills by resolving a general's
// skill list.
func WithGenerals(lookup func(general string) ([]string, bool)) Option {
	return func(r *Room) { r.generals = lookup }
}

// WithDeck replaces the standard deck. Card IDs must be 0..n-1.
func WithDeck(cards []*card.Card) Option {
	return func(r *Room) { r.deck = cards }
}

// WithID replaces the generated room ID. An empty id is ignored.
func WithID(id string) Option {
	return func(r *Room) {
		if id != "" {
			r.id = id
		}
	}
}

// Room implements skill.Room over in-memory state.
type Room struct {
	id       string
	cfg      Config
	logger   *zap.Logger
	registry *skill.Registry
	engine   *engine.Engine
	answerer prompt.Answerer
	generals func(general string) ([]string, bool)

	engineOpts []engine.Option
	deck       []*card.Card

	players  []*Player
	byName   map[string]*Player
	cards    map[int]*card.Card
	drawPile []int
	discard  []int
	shuffles uint64

	turns    *rules.TurnManager
	bus      *rules.EventBus
	watchers *rules.WatcherRegistry
	usage    *watchers.CardUsageWatcher
	damage   *watchers.DamageWatcher
	drawn    *watchers.CardsDrawnWatcher
	notifier *counters.Notifier
	tags     *counters.Tags
	scratch  *counters.Scratch

	started bool
	over    bool
	winner  string
	extra   []string
	resume  string
}

// New seats players and installs their skills in seat order.
func New(registry *skill.Registry, seats []Seat, opts ...Option) (*Room, error) {
	if len(seats) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	r := &Room{
		id:       uuid.NewString(),
		cfg:      DefaultConfig(),
		logger:   zap.NewNop(),
		registry: registry,
		answerer: prompt.Auto{},
		byName:   make(map[string]*Player),
		cards:    make(map[int]*card.Card),
		bus:      rules.NewEventBus(),
		watchers: rules.NewWatcherRegistry(),
		usage:    watchers.NewCardUsageWatcher(),
		damage:   watchers.NewDamageWatcher(),
		drawn:    watchers.NewCardsDrawnWatcher(),
		tags:     counters.NewTags(),
		scratch:  counters.NewScratch(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(zap.String("room_id", r.id))
	r.engine = engine.New(registry, append([]engine.Option{engine.WithLogger(r.logger)}, r.engineOpts...)...)
	r.notifier = counters.NewNotifier(r.bus)

	r.watchers.Add(r.usage)
	r.watchers.Add(r.damage)
	r.watchers.Add(r.drawn)
	r.bus.Subscribe(func(event rules.Event) {
		r.watchers.Notify(event)
	})

	names := make([]string, 0, len(seats))
	for i, seat := range seats {
		if _, dup := r.byName[seat.Name]; dup || seat.Name == "" {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlayer, seat.Name)
		}
		p := newPlayer(r, i, seat)
		r.players = append(r.players, p)
		r.byName[p.name] = p
		names = append(names, p.name)
	}
	for i, seat := range seats {
		for _, name := range seat.Skills {
			if err := r.grant(r.players[i], name); err != nil {
				return nil, err
			}
		}
	}
	r.turns = rules.NewTurnManager(names)

	if r.deck == nil {
		r.deck = card.StandardDeck()
	}
	for _, c := range r.deck {
		r.cards[c.ID] = c
	}
	r.drawPile = card.Shuffle(r.deck, r.cfg.Seed)
	return r, nil
}

// ID returns the room's unique ID.
func (r *Room) ID() string { return r.id }

// Engine returns the dispatch engine.
func (r *Room) Engine() *engine.Engine { return r.engine }

// Bus returns the event bus every raised event and notification is
// published on after dispatch.
func (r *Room) Bus() *rules.EventBus { return r.bus }

// Watchers returns the room's watcher registry.
func (r *Room) Watchers() *rules.WatcherRegistry { return r.watchers }

// DamageWatcher returns the game-long damage tally.
func (r *Room) DamageWatcher() *watchers.DamageWatcher { return r.damage }

// DrawWatcher returns the game-long draw tally.
func (r *Room) DrawWatcher() *watchers.CardsDrawnWatcher { return r.drawn }

// Turns returns the turn manager.
func (r *Room) Turns() *rules.TurnManager { return r.turns }

func (r *Room) Registry() *skill.Registry { return r.registry }
func (r *Room) Logger() *zap.Logger       { return r.logger }

func (r *Room) Players() []skill.Player {
	out := make([]skill.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	return out
}

func (r *Room) AlivePlayers() []skill.Player {
	var out []skill.Player
	for _, p := range r.players {
		if p.alive {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) OtherPlayers(self skill.Player) []skill.Player {
	start := 0
	if p, ok := r.lookup(self); ok {
		start = p.seat + 1
	}
	var out []skill.Player
	n := len(r.players)
	for step := 0; step < n; step++ {
		p := r.players[(start+step)%n]
		if p.alive && (self == nil || p.name != self.Name()) {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) Player(name string) (skill.Player, bool) {
	p, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return p, true
}

// Seat returns the concrete player by name.
func (r *Room) Seat(name string) (*Player, bool) {
	p, ok := r.byName[name]
	return p, ok
}

func (r *Room) Current() skill.Player {
	if r.turns.TurnNumber() == 0 {
		return nil
	}
	return r.byName[r.turns.ActivePlayer()]
}

func (r *Room) SetTag(key string, value any) { r.tags.Set(key, value) }
func (r *Room) Tag(key string) (any, bool)   { return r.tags.Get(key) }
func (r *Room) RemoveTag(key string)         { r.tags.Remove(key) }

func (r *Room) Card(id int) (*card.Card, bool) {
	c, ok := r.cards[id]
	return c, ok
}

// RaiseEvent dispatches one round and then publishes the event, with the
// payload as the skills left it, on the bus.
func (r *Room) RaiseEvent(ctx context.Context, event rules.EventType, target skill.Player, payload any) (bool, error) {
	outcome, err := r.engine.Dispatch(ctx, r, event, target, payload)
	if err != nil {
		return false, err
	}
	evt := rules.NewEvent(event, outcome.Target, outcome.ConsumedBy)
	evt.ID = outcome.RoundID
	evt.Payload = payload
	if use, ok := payload.(*rules.CardUse); ok {
		if c, ok := r.cards[use.CardID]; ok {
			evt.Metadata["card_name"] = c.Name
		}
	}
	r.bus.Publish(evt)
	return outcome.Consumed, nil
}

// IsOver reports whether the game has ended, and who won.
func (r *Room) IsOver() (bool, string) {
	return r.over, r.winner
}

// Snapshot returns the state of every seat.
func (r *Room) Snapshot() []State {
	out := make([]State, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.snapshot())
	}
	return out
}

// DrawPileSize returns how many cards are left to draw.
func (r *Room) DrawPileSize() int { return len(r.drawPile) }

// grant gives a player a skill and its related auxiliary skills and makes
// sure the engine dispatches to them.
func (r *Room) grant(p *Player, name string) error {
	if _, ok := r.registry.Lookup(name); !ok {
		return fmt.Errorf("granting %s to %s: %w", name, p.name, skill.ErrUnknownSkill)
	}
	if err := r.engine.Install(name); err != nil {
		return err
	}
	if !p.HasSkill(name) {
		p.skills = append(p.skills, name)
	}
	for _, aux := range r.registry.Related(name) {
		if err := r.grant(p, aux.Name()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Room) revoke(p *Player, name string) {
	if i := slices.Index(p.skills, name); i >= 0 {
		p.skills = slices.Delete(p.skills, i, i+1)
	}
	for _, aux := range r.registry.Related(name) {
		r.revoke(p, aux.Name())
	}
}

func (r *Room) lookup(p skill.Player) (*Player, bool) {
	if p == nil {
		return nil, false
	}
	seat, ok := r.byName[p.Name()]
	return seat, ok
}

func (r *Room) mustLookup(p skill.Player) (*Player, error) {
	seat, ok := r.lookup(p)
	if !ok {
		name := "<nil>"
		if p != nil {
			name = p.Name()
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	return seat, nil
}

// detach takes a card out of wherever it currently is.
func (r *Room) detach(id int) {
	for _, p := range r.players {
		if p.removeCard(id) {
			return
		}
	}
	if i := slices.Index(r.drawPile, id); i >= 0 {
		r.drawPile = slices.Delete(r.drawPile, i, i+1)
		return
	}
	if i := slices.Index(r.discard, id); i >= 0 {
		r.discard = slices.Delete(r.discard, i, i+1)
	}
}
