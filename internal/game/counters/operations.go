package counters

import (
	"fmt"
	"time"

	"github.com/magefree/skillcore-go/internal/game/rules"
)

// Notifier publishes mark and pile changes on the room's event bus so that
// observers (journal, watchers, UIs) can follow scratch state without
// being part of trigger dispatch.
type Notifier struct {
	eventBus *rules.EventBus
	now      func() time.Time
}

// NewNotifier creates a notifier. A nil bus yields a notifier that drops
// every change.
func NewNotifier(eventBus *rules.EventBus) *Notifier {
	return &Notifier{eventBus: eventBus, now: time.Now}
}

// MarkChanged reports a mark moving from before to after.
func (n *Notifier) MarkChanged(playerID, mark string, before, after int) {
	if n == nil || n.eventBus == nil || before == after {
		return
	}
	timestamp := n.now()
	n.eventBus.Publish(rules.Event{
		Type:      rules.EventMarkChanged,
		ID:        fmt.Sprintf("event-mark-%s-%s-%d", playerID, mark, timestamp.UnixNano()),
		PlayerID:  playerID,
		Amount:    after - before,
		Data:      mark,
		Timestamp: timestamp,
		Metadata: map[string]string{
			"mark":    mark,
			"before":  fmt.Sprintf("%d", before),
			"after":   fmt.Sprintf("%d", after),
			"visible": fmt.Sprintf("%t", IsVisibleMark(mark)),
		},
		Description: fmt.Sprintf("%s mark %s %d -> %d", playerID, mark, before, after),
	})
}

// PileChanged reports cards entering (positive delta) or leaving a pile.
func (n *Notifier) PileChanged(playerID, pile string, ids []int, added bool) {
	if n == nil || n.eventBus == nil || len(ids) == 0 {
		return
	}
	timestamp := n.now()
	amount := len(ids)
	verb := "added to"
	if !added {
		amount = -amount
		verb = "removed from"
	}
	n.eventBus.Publish(rules.Event{
		Type:      rules.EventPileChanged,
		ID:        fmt.Sprintf("event-pile-%s-%s-%d", playerID, pile, timestamp.UnixNano()),
		PlayerID:  playerID,
		Amount:    amount,
		Data:      pile,
		Payload:   append([]int(nil), ids...),
		Timestamp: timestamp,
		Metadata: map[string]string{
			"pile": pile,
		},
		Description: fmt.Sprintf("%d card(s) %s %s pile %s", len(ids), verb, playerID, pile),
	})
}
