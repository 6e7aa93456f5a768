package rules

import (
	"testing"
)

func TestWatcherRegistry(t *testing.T) {
	registry := NewWatcherRegistry()

	gameWatcher := &testWatcherImpl{BaseWatcher: NewBaseWatcher(WatcherScopeGame, "GameWatcher")}
	turnWatcher := &testWatcherImpl{BaseWatcher: NewBaseWatcher(WatcherScopeTurn, "TurnWatcher")}
	registry.Add(gameWatcher)
	registry.Add(turnWatcher)

	if registry.Get("GameWatcher") == nil {
		t.Fatal("should retrieve GameWatcher")
	}
	if got := registry.InScope(WatcherScopeTurn); len(got) != 1 {
		t.Fatalf("expected 1 turn watcher, got %d", len(got))
	}

	registry.Notify(NewEvent(EventCardUsed, "Alice", ""))
	if !gameWatcher.Seen() || !turnWatcher.Seen() {
		t.Fatal("both watchers should have seen the card use")
	}

	registry.ResetScope(WatcherScopeTurn)
	if turnWatcher.Seen() {
		t.Fatal("turn watcher should be reset")
	}
	if !gameWatcher.Seen() {
		t.Fatal("game watcher should survive a turn reset")
	}

	registry.Remove("GameWatcher")
	if registry.Get("GameWatcher") != nil {
		t.Fatal("watcher should be removed")
	}
}

func TestWatcherRegistryNotifiesInOrder(t *testing.T) {
	registry := NewWatcherRegistry()
	var seen []string
	for _, key := range []string{"b", "a", "c"} {
		key := key
		registry.Add(&recordingWatcher{
			BaseWatcher: NewBaseWatcher(WatcherScopeGame, key),
			onWatch:     func() { seen = append(seen, key) },
		})
	}
	registry.Notify(NewEvent(EventDamaged, "Bob", "Alice"))
	if len(seen) != 3 || seen[0] != "b" || seen[1] != "a" || seen[2] != "c" {
		t.Fatalf("expected insertion order b,a,c, got %v", seen)
	}
}

// testWatcherImpl flags card use events.
type testWatcherImpl struct {
	*BaseWatcher
}

func (t *testWatcherImpl) Watch(event Event) {
	if event.Type == EventCardUsed {
		t.MarkSeen()
	}
}

type recordingWatcher struct {
	*BaseWatcher
	onWatch func()
}

func (r *recordingWatcher) Watch(Event) { r.onWatch() }
