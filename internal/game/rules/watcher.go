package rules

import (
	"slices"
	"sync"
)

// WatcherScope is how long a watcher keeps what it saw.
type WatcherScope int

const (
	// WatcherScopeGame keeps its tally for the whole game.
	WatcherScopeGame WatcherScope = iota
	// WatcherScopeTurn is cleared when the active player's turn ends.
	WatcherScopeTurn
)

func (ws WatcherScope) String() string {
	if ws == WatcherScopeTurn {
		return "TURN"
	}
	if ws == WatcherScopeGame {
		return "GAME"
	}
	return "UNKNOWN"
}

// Watcher observes published events and keeps a tally that rule code can
// query later, e.g. how often a skill card was used this turn.
type Watcher interface {
	// Watch sees every event published on the room's bus.
	Watch(event Event)
	// Reset clears the tally at the end of the watcher's scope.
	Reset()
	// Seen reports whether anything the watcher tracks happened.
	Seen() bool
	Scope() WatcherScope
	// Key identifies the watcher within a room.
	Key() string
}

// BaseWatcher carries the scope, key and seen flag of a watcher.
type BaseWatcher struct {
	scope WatcherScope
	key   string
	seen  bool
}

// NewBaseWatcher returns the shared part of a watcher.
func NewBaseWatcher(scope WatcherScope, key string) *BaseWatcher {
	return &BaseWatcher{scope: scope, key: key}
}

func (bw *BaseWatcher) Scope() WatcherScope { return bw.scope }
func (bw *BaseWatcher) Key() string         { return bw.key }
func (bw *BaseWatcher) Seen() bool          { return bw.seen }

// MarkSeen records that a tracked event happened.
func (bw *BaseWatcher) MarkSeen() { bw.seen = true }

// Reset clears the seen flag. Watchers with a tally override it and call
// it.
func (bw *BaseWatcher) Reset() { bw.seen = false }

// WatcherRegistry holds the watchers of one room and fans events out to
// them in the order they were added.
type WatcherRegistry struct {
	mu    sync.RWMutex
	byKey map[string]Watcher
	order []Watcher
}

func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{byKey: make(map[string]Watcher)}
}

// Add installs w. A watcher with the same key is replaced in place.
func (wr *WatcherRegistry) Add(w Watcher) {
	if w == nil {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if old, ok := wr.byKey[w.Key()]; ok {
		wr.order[slices.Index(wr.order, old)] = w
	} else {
		wr.order = append(wr.order, w)
	}
	wr.byKey[w.Key()] = w
}

// Remove drops the watcher with key, if any.
func (wr *WatcherRegistry) Remove(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	w, ok := wr.byKey[key]
	if !ok {
		return
	}
	delete(wr.byKey, key)
	wr.order = slices.DeleteFunc(wr.order, func(o Watcher) bool { return o == w })
}

// Get returns the watcher with key, or nil.
func (wr *WatcherRegistry) Get(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.byKey[key]
}

// InScope returns the watchers of scope in installation order.
func (wr *WatcherRegistry) InScope(scope WatcherScope) []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	var out []Watcher
	for _, w := range wr.order {
		if w.Scope() == scope {
			out = append(out, w)
		}
	}
	return out
}

// ResetScope resets every watcher of scope.
func (wr *WatcherRegistry) ResetScope(scope WatcherScope) {
	for _, w := range wr.InScope(scope) {
		w.Reset()
	}
}

// Notify hands event to every watcher. The lock is not held while
// watchers run, so a watcher may publish further events.
func (wr *WatcherRegistry) Notify(event Event) {
	wr.mu.RLock()
	watchers := slices.Clone(wr.order)
	wr.mu.RUnlock()

	for _, w := range watchers {
		w.Watch(event)
	}
}
