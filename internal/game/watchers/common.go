package watchers

import (
	"strings"

	"github.com/magefree/skillcore-go/internal/game/rules"
)

// Keys under which the room registers the common watchers.
const (
	CardUsageKey  = "CardUsageWatcher"
	DamageKey     = "DamageWatcher"
	CardsDrawnKey = "CardsDrawnWatcher"
)

// CardUsageWatcher counts cards used per player during the current turn,
// both by card name and by the substitution skill that produced them.
type CardUsageWatcher struct {
	*rules.BaseWatcher
	used map[string]map[string]int // player -> card or skill name -> count
}

func NewCardUsageWatcher() *CardUsageWatcher {
	return &CardUsageWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeTurn, CardUsageKey),
		used:        make(map[string]map[string]int),
	}
}

// Watch counts CARD_USED notifications.
func (w *CardUsageWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCardUsed {
		return
	}
	use, ok := event.Payload.(*rules.CardUse)
	if !ok || use.From == "" {
		return
	}
	counts := w.used[use.From]
	if counts == nil {
		counts = make(map[string]int)
		w.used[use.From] = counts
	}
	name := use.Virtual
	if name == "" {
		name = event.Metadata["card_name"]
	}
	if name != "" {
		counts[name]++
		// Elemental slashes count as slashes too.
		if strings.HasSuffix(name, "_slash") {
			counts["slash"]++
		}
	}
	if use.Skill != "" {
		counts[use.Skill]++
	}
	w.MarkSeen()
}

// Reset forgets the turn's usage.
func (w *CardUsageWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.used = make(map[string]map[string]int)
}

// Count returns how often a player used a card or skill this turn.
func (w *CardUsageWatcher) Count(player, name string) int {
	return w.used[player][name]
}

// DamageWatcher totals damage dealt and taken over the whole game.
type DamageWatcher struct {
	*rules.BaseWatcher
	dealt map[string]int // source -> points
	taken map[string]int // victim -> points
}

func NewDamageWatcher() *DamageWatcher {
	return &DamageWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame, DamageKey),
		dealt:       make(map[string]int),
		taken:       make(map[string]int),
	}
}

func (w *DamageWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventDamaged {
		return
	}
	damage, ok := event.Payload.(*rules.DamageStruct)
	if !ok || damage.Damage <= 0 {
		return
	}
	if damage.From != "" {
		w.dealt[damage.From] += damage.Damage
	}
	w.taken[damage.To] += damage.Damage
	w.MarkSeen()
}

func (w *DamageWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.dealt = make(map[string]int)
	w.taken = make(map[string]int)
}

// Dealt returns the damage a player caused.
func (w *DamageWatcher) Dealt(player string) int {
	return w.dealt[player]
}

// Taken returns the damage a player suffered.
func (w *DamageWatcher) Taken(player string) int {
	return w.taken[player]
}

// CardsDrawnWatcher counts cards drawn by players.
type CardsDrawnWatcher struct {
	*rules.BaseWatcher
	drawn map[string]int // player -> cards
}

func NewCardsDrawnWatcher() *CardsDrawnWatcher {
	return &CardsDrawnWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame, CardsDrawnKey),
		drawn:       make(map[string]int),
	}
}

func (w *CardsDrawnWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCardDrawnDone {
		return
	}
	moved, ok := event.Payload.(*rules.CardsMoved)
	if !ok || moved.Player == "" {
		return
	}
	w.drawn[moved.Player] += len(moved.CardIDs)
	w.MarkSeen()
}

func (w *CardsDrawnWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.drawn = make(map[string]int)
}

// Drawn returns the number of cards player drew.
func (w *CardsDrawnWatcher) Drawn(player string) int {
	return w.drawn[player]
}
