package rules

import (
	"testing"
)

func TestEventBusSubscribeTyped(t *testing.T) {
	bus := NewEventBus()

	damagedCount := 0
	markCount := 0

	handle1 := bus.SubscribeTyped(EventDamaged, func(e Event) {
		damagedCount++
	})
	handle2 := bus.SubscribeTyped(EventMarkChanged, func(e Event) {
		markCount++
	})

	bus.Publish(NewEvent(EventDamaged, "Bob", "Alice"))
	if damagedCount != 1 {
		t.Fatalf("expected damaged count 1, got %d", damagedCount)
	}
	if markCount != 0 {
		t.Fatalf("expected mark count 0, got %d", markCount)
	}

	bus.Publish(NewEventWithAmount(EventMarkChanged, "Alice", "kuangbao", 2))
	if markCount != 1 {
		t.Fatalf("expected mark count 1, got %d", markCount)
	}

	bus.Unsubscribe(handle1)
	bus.Publish(NewEvent(EventDamaged, "Bob", "Alice"))
	if damagedCount != 1 {
		t.Fatalf("expected damaged count still 1 after unsubscribe, got %d", damagedCount)
	}

	bus.Unsubscribe(handle2)
	bus.Publish(NewEventWithAmount(EventMarkChanged, "Alice", "kuangbao", 1))
	if markCount != 1 {
		t.Fatalf("expected mark count still 1 after unsubscribe, got %d", markCount)
	}
}

func TestEventBusSubscribeAll(t *testing.T) {
	bus := NewEventBus()

	var order []EventType
	handle := bus.Subscribe(func(e Event) {
		order = append(order, e.Type)
	})

	bus.Publish(NewEvent(EventGameStart, "", ""))
	bus.Publish(NewEvent(EventPhaseChange, "Alice", ""))
	bus.Publish(NewEvent(EventDrawNCards, "Alice", ""))

	if len(order) != 3 {
		t.Fatalf("expected 3 events, got %d", len(order))
	}
	if order[1] != EventPhaseChange {
		t.Fatalf("expected events in publish order, got %v", order)
	}

	bus.Unsubscribe(handle)
	bus.Publish(NewEvent(EventGameStart, "", ""))
	if len(order) != 3 {
		t.Fatalf("expected no delivery after unsubscribe, got %d", len(order))
	}
}

func TestEventBusListenerMayPublish(t *testing.T) {
	bus := NewEventBus()
	followUps := 0
	bus.SubscribeTyped(EventDamaged, func(e Event) {
		bus.Publish(NewEvent(EventHpChanged, e.PlayerID, ""))
	})
	bus.SubscribeTyped(EventHpChanged, func(Event) {
		followUps++
	})

	bus.Publish(NewEvent(EventDamaged, "Bob", "Alice"))
	if followUps != 1 {
		t.Fatalf("expected nested publish to be delivered, got %d", followUps)
	}
}

func TestNotificationEvents(t *testing.T) {
	if !EventMarkChanged.IsNotification() || !EventPileChanged.IsNotification() {
		t.Fatal("mark and pile changes should be notifications")
	}
	if EventDamaged.IsNotification() {
		t.Fatal("damaged should be dispatchable")
	}
}

func TestParseEventType(t *testing.T) {
	got, err := ParseEventType(" damaged ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != EventDamaged {
		t.Fatalf("got %s, want %s", got, EventDamaged)
	}
	if _, err := ParseEventType("MARK_CHANGED"); err == nil {
		t.Fatal("notification events should not parse")
	}
	if _, err := ParseEventType("bogus"); err == nil {
		t.Fatal("unknown events should not parse")
	}
}
