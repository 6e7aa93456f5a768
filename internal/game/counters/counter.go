// Package counters holds the per-player and per-room scratch state skills
// keep between events: marks, piles, room tags and transient flags.
package counters

import (
	"sort"
	"strings"
)

// VisibleMarkPrefix marks a counter shown to every player as a resource.
const VisibleMarkPrefix = "@"

// IsVisibleMark reports whether a mark is a player-visible resource.
func IsVisibleMark(name string) bool {
	return strings.HasPrefix(name, VisibleMarkPrefix)
}

// Counter is one named non-negative count.
type Counter struct {
	Name  string
	Count int
}

// Add adds the specified amount to the counter. Non-positive amounts are ignored.
func (c *Counter) Add(amount int) {
	if amount > 0 {
		c.Count += amount
	}
}

// Remove removes the specified amount from the counter.
// Will not allow count to go below 0.
func (c *Counter) Remove(amount int) {
	if amount > 0 {
		if c.Count >= amount {
			c.Count -= amount
		} else {
			c.Count = 0
		}
	}
}

// Marks is the set of named counters of one player. Every mark reads as
// zero until first touched, and no mark is ever negative.
type Marks struct {
	counters map[string]*Counter
}

// NewMarks creates an empty mark set.
func NewMarks() *Marks {
	return &Marks{counters: make(map[string]*Counter)}
}

// Get returns the current value of a mark.
func (m *Marks) Get(name string) int {
	if c, ok := m.counters[name]; ok {
		return c.Count
	}
	return 0
}

// Gain adds n to a mark and returns the new value.
func (m *Marks) Gain(name string, n int) int {
	c := m.counter(name)
	c.Add(n)
	return m.settle(c)
}

// Lose removes n from a mark, clamping at zero, and returns the new value.
func (m *Marks) Lose(name string, n int) int {
	c := m.counter(name)
	c.Remove(n)
	return m.settle(c)
}

// Set overwrites a mark. Negative values are clamped to zero.
func (m *Marks) Set(name string, n int) int {
	c := m.counter(name)
	if n < 0 {
		n = 0
	}
	c.Count = n
	return m.settle(c)
}

// LoseAll clears a mark and returns how much it held.
func (m *Marks) LoseAll(name string) int {
	held := m.Get(name)
	delete(m.counters, name)
	return held
}

// Names returns the names of all non-zero marks in sorted order.
func (m *Marks) Names() []string {
	names := make([]string, 0, len(m.counters))
	for name := range m.counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of all non-zero marks.
func (m *Marks) Snapshot() map[string]int {
	out := make(map[string]int, len(m.counters))
	for name, c := range m.counters {
		out[name] = c.Count
	}
	return out
}

func (m *Marks) counter(name string) *Counter {
	if c, ok := m.counters[name]; ok {
		return c
	}
	c := &Counter{Name: name}
	m.counters[name] = c
	return c
}

// settle drops zero counters so Names only lists live marks.
func (m *Marks) settle(c *Counter) int {
	if c.Count == 0 {
		delete(m.counters, c.Name)
	}
	return c.Count
}
