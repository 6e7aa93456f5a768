package counters

import (
	"sort"
	"sync"
)

// Tags is the room-scoped key/value store skills use to pass state between
// events that is neither a mark nor a pile (e.g. the target a skill chose
// until the end of the turn). It lives as long as the game, like marks.
type Tags struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewTags creates an empty tag store.
func NewTags() *Tags {
	return &Tags{values: make(map[string]any)}
}

// Set stores a value under key. A nil value removes the key.
func (t *Tags) Set(key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if value == nil {
		delete(t.values, key)
		return
	}
	t.values[key] = value
}

// Get returns the value stored under key.
func (t *Tags) Get(key string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[key]
	return v, ok
}

// String returns the value under key if it is a string.
func (t *Tags) String(key string) (string, bool) {
	v, ok := t.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Remove deletes a key and reports whether it was present.
func (t *Tags) Remove(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.values[key]
	delete(t.values, key)
	return ok
}

// Keys returns all keys in sorted order.
func (t *Tags) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
