package rules

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// EventType is the tag of a trigger event raised by the room.
type EventType string

const (
	// Game/turn events
	EventGameStart    EventType = "GAME_START"
	EventTurnStart    EventType = "TURN_START"
	EventPhaseChange  EventType = "PHASE_CHANGE"
	EventDrawNCards   EventType = "DRAW_N_CARDS"
	EventGameOver     EventType = "GAME_OVER"
	EventTurnedOver   EventType = "TURNED_OVER"
	EventChoiceMade   EventType = "CHOICE_MADE"
	EventGameFinished EventType = "GAME_FINISHED"

	// Hp events
	EventHpRecover EventType = "HP_RECOVER"
	EventHpLost    EventType = "HP_LOST"
	EventHpChanged EventType = "HP_CHANGED"

	// Damage events
	EventPredamage      EventType = "PREDAMAGE"
	EventDamage         EventType = "DAMAGE"
	EventDamagedBegin   EventType = "DAMAGED_BEGIN"
	EventDamaged        EventType = "DAMAGED"
	EventDamageComplete EventType = "DAMAGE_COMPLETE"
	EventDying          EventType = "DYING"
	EventDeath          EventType = "DEATH"

	// Slash events
	EventSlashEffect   EventType = "SLASH_EFFECT"
	EventSlashEffected EventType = "SLASH_EFFECTED"
	EventSlashProceed  EventType = "SLASH_PROCEED"
	EventSlashHit      EventType = "SLASH_HIT"
	EventSlashMissed   EventType = "SLASH_MISSED"

	// Card events
	EventCardAsked        EventType = "CARD_ASKED"
	EventCardUsed         EventType = "CARD_USED"
	EventCardResponsed    EventType = "CARD_RESPONSED"
	EventCardFinished     EventType = "CARD_FINISHED"
	EventCardDiscarded    EventType = "CARD_DISCARDED"
	EventCardLostOnePiece EventType = "CARD_LOST_ONE_PIECE"
	EventCardLostOneTime  EventType = "CARD_LOST_ONE_TIME"
	EventCardGotOnePiece  EventType = "CARD_GOT_ONE_PIECE"
	EventCardGotOneTime   EventType = "CARD_GOT_ONE_TIME"
	EventCardDrawnDone    EventType = "CARD_DRAWN_DONE"

	// Scratch-state notifications. Never dispatched to skills.
	EventMarkChanged EventType = "MARK_CHANGED"
	EventPileChanged EventType = "PILE_CHANGED"
)

// IsNotification reports whether the event type only feeds observers on the
// event bus and is never routed through trigger dispatch.
func (et EventType) IsNotification() bool {
	switch et {
	case EventMarkChanged, EventPileChanged:
		return true
	default:
		return false
	}
}

var triggerEvents = []EventType{
	EventGameStart, EventTurnStart, EventPhaseChange, EventDrawNCards,
	EventGameOver, EventTurnedOver, EventChoiceMade, EventGameFinished,
	EventHpRecover, EventHpLost, EventHpChanged,
	EventPredamage, EventDamage, EventDamagedBegin, EventDamaged,
	EventDamageComplete, EventDying, EventDeath,
	EventSlashEffect, EventSlashEffected, EventSlashProceed, EventSlashHit,
	EventSlashMissed,
	EventCardAsked, EventCardUsed, EventCardResponsed, EventCardFinished,
	EventCardDiscarded, EventCardLostOnePiece, EventCardLostOneTime,
	EventCardGotOnePiece, EventCardGotOneTime, EventCardDrawnDone,
}

// ParseEventType resolves a trigger event from its tag, case-insensitively.
// Notification-only events are rejected.
func ParseEventType(name string) (EventType, error) {
	key := EventType(strings.ToUpper(strings.TrimSpace(name)))
	for _, et := range triggerEvents {
		if et == key {
			return et, nil
		}
	}
	return "", fmt.Errorf("unknown trigger event %q", name)
}

// Event is a record published on the bus after something happened.
// Payload carries the same pointer the skills saw during dispatch.
type Event struct {
	Type        EventType
	ID          string            // Unique event ID
	PlayerID    string            // Player the event concerns
	SourceID    string            // Skill or player that caused it, if any
	Amount      int               // Numeric value (mark delta, draw count, damage)
	Data        string            // Additional string data (mark or pile name)
	Payload     any               // Event-specific payload
	Timestamp   time.Time         // When the event occurred
	Metadata    map[string]string // Additional metadata
	Description string            // Human-readable description
}

// Listener receives published events.
type Listener func(Event)

type subscription struct {
	handle   int
	filtered bool
	only     EventType
	fn       Listener
}

func (sub subscription) wants(t EventType) bool {
	return !sub.filtered || sub.only == t
}

// EventBus delivers events synchronously to its subscribers in the order
// they subscribed. Handles are never reused.
type EventBus struct {
	mu   sync.RWMutex
	subs []subscription
	seq  int
}

// NewEventBus returns an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

func (bus *EventBus) add(sub subscription) int {
	if sub.fn == nil {
		return -1
	}
	bus.mu.Lock()
	sub.handle = bus.seq
	bus.seq++
	bus.subs = append(bus.subs, sub)
	bus.mu.Unlock()
	return sub.handle
}

// Subscribe registers fn for every event. It returns -1 for a nil fn.
func (bus *EventBus) Subscribe(fn Listener) int {
	return bus.add(subscription{fn: fn})
}

// SubscribeTyped registers fn for events of one type.
func (bus *EventBus) SubscribeTyped(eventType EventType, fn func(Event)) int {
	return bus.add(subscription{filtered: true, only: eventType, fn: fn})
}

// Unsubscribe drops the subscription behind handle. Unknown handles are ignored.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subs = slices.DeleteFunc(bus.subs, func(sub subscription) bool {
		return sub.handle == handle
	})
}

// Publish hands event to every interested subscriber. Subscribers run
// without the lock held and may publish in turn.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	targets := make([]Listener, 0, len(bus.subs))
	for _, sub := range bus.subs {
		if sub.wants(event.Type) {
			targets = append(targets, sub.fn)
		}
	}
	bus.mu.RUnlock()

	for _, fn := range targets {
		fn(event)
	}
}

// NewEvent stamps an event for player, caused by source.
func NewEvent(eventType EventType, player, source string) Event {
	return Event{
		Type:      eventType,
		PlayerID:  player,
		SourceID:  source,
		Timestamp: time.Now(),
		Metadata:  map[string]string{},
	}
}

// NewEventWithAmount is NewEvent with Amount set.
func NewEventWithAmount(eventType EventType, player, source string, amount int) Event {
	evt := NewEvent(eventType, player, source)
	evt.Amount = amount
	return evt
}
