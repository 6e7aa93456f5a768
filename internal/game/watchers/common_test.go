package watchers

import (
	"testing"

	"github.com/magefree/skillcore-go/internal/game/rules"
)

func usedEvent(use *rules.CardUse, cardName string) rules.Event {
	event := rules.NewEvent(rules.EventCardUsed, use.From, use.Skill)
	event.Payload = use
	event.Metadata["card_name"] = cardName
	return event
}

func TestCardUsageWatcher(t *testing.T) {
	watcher := NewCardUsageWatcher()

	if watcher.Seen() {
		t.Fatal("watcher should not have condition met initially")
	}
	if watcher.Scope() != rules.WatcherScopeTurn {
		t.Fatalf("expected turn scope, got %s", watcher.Scope())
	}

	watcher.Watch(usedEvent(&rules.CardUse{From: "alice", CardID: 3}, "slash"))
	watcher.Watch(usedEvent(&rules.CardUse{From: "alice", CardID: -1, Virtual: "slash", Skill: "wusheng"}, ""))

	if !watcher.Seen() {
		t.Fatal("watcher should have condition met after a card use")
	}
	if got := watcher.Count("alice", "slash"); got != 2 {
		t.Fatalf("expected 2 slashes, got %d", got)
	}
	if got := watcher.Count("alice", "wusheng"); got != 1 {
		t.Fatalf("expected 1 wusheng use, got %d", got)
	}
	watcher.Watch(usedEvent(&rules.CardUse{From: "alice", CardID: 9}, "fire_slash"))
	if got := watcher.Count("alice", "slash"); got != 3 {
		t.Fatalf("expected fire slash to count as a slash, got %d", got)
	}
	if got := watcher.Count("alice", "fire_slash"); got != 1 {
		t.Fatalf("expected 1 fire slash, got %d", got)
	}
	if got := watcher.Count("bob", "slash"); got != 0 {
		t.Fatalf("expected 0 slashes for bob, got %d", got)
	}

	// Events of other types and foreign payloads are ignored.
	watcher.Watch(rules.NewEvent(rules.EventDamaged, "alice", ""))
	bad := rules.NewEvent(rules.EventCardUsed, "alice", "")
	bad.Payload = "slash"
	watcher.Watch(bad)
	if got := watcher.Count("alice", "slash"); got != 3 {
		t.Fatalf("expected 3 slashes after ignored events, got %d", got)
	}

	watcher.Reset()
	if watcher.Seen() {
		t.Fatal("watcher should not have condition met after reset")
	}
	if got := watcher.Count("alice", "slash"); got != 0 {
		t.Fatalf("expected 0 slashes after reset, got %d", got)
	}
}

func TestDamageWatcher(t *testing.T) {
	watcher := NewDamageWatcher()

	event := rules.NewEvent(rules.EventDamaged, "bob", "")
	event.Payload = &rules.DamageStruct{From: "alice", To: "bob", Damage: 2}
	watcher.Watch(event)

	sourceless := rules.NewEvent(rules.EventDamaged, "bob", "")
	sourceless.Payload = &rules.DamageStruct{To: "bob", Damage: 1}
	watcher.Watch(sourceless)

	if watcher.Dealt("alice") != 2 {
		t.Fatalf("expected alice to deal 2, got %d", watcher.Dealt("alice"))
	}
	if watcher.Taken("bob") != 3 {
		t.Fatalf("expected bob to take 3, got %d", watcher.Taken("bob"))
	}

	registry := rules.NewWatcherRegistry()
	registry.Add(watcher)
	registry.ResetScope(rules.WatcherScopeTurn)
	if watcher.Taken("bob") != 3 {
		t.Fatal("game scoped watcher must survive a turn reset")
	}
	registry.ResetScope(rules.WatcherScopeGame)
	if watcher.Taken("bob") != 0 {
		t.Fatalf("expected reset damage, got %d", watcher.Taken("bob"))
	}
}

func TestCardsDrawnWatcher(t *testing.T) {
	watcher := NewCardsDrawnWatcher()

	event := rules.NewEvent(rules.EventCardDrawnDone, "carol", "")
	event.Payload = &rules.CardsMoved{Player: "carol", CardIDs: []int{1, 2, 3}, Zone: rules.PlaceHand}
	watcher.Watch(event)

	if watcher.Drawn("carol") != 3 {
		t.Fatalf("expected 3 cards drawn, got %d", watcher.Drawn("carol"))
	}
	if watcher.Key() != CardsDrawnKey {
		t.Fatalf("unexpected key %q", watcher.Key())
	}
}
