package counters

import "sort"

// Scratch holds transient per-player flags, usually named after the skill
// that is resolving. Flags do not outlive the owner's turn: the room clears
// a player's flags when they reach the configured reset phase.
type Scratch struct {
	flags map[string]map[string]bool
}

// NewScratch creates an empty scratch store.
func NewScratch() *Scratch {
	return &Scratch{flags: make(map[string]map[string]bool)}
}

// Set raises a flag for a player.
func (s *Scratch) Set(player, flag string) {
	if s.flags[player] == nil {
		s.flags[player] = make(map[string]bool)
	}
	s.flags[player][flag] = true
}

// Unset lowers a flag for a player.
func (s *Scratch) Unset(player, flag string) {
	delete(s.flags[player], flag)
}

// Has reports whether a player's flag is raised.
func (s *Scratch) Has(player, flag string) bool {
	return s.flags[player][flag]
}

// Flags returns a player's raised flags in sorted order.
func (s *Scratch) Flags(player string) []string {
	out := make([]string, 0, len(s.flags[player]))
	for flag := range s.flags[player] {
		out = append(out, flag)
	}
	sort.Strings(out)
	return out
}

// Clear lowers every flag of a player and returns how many were raised.
func (s *Scratch) Clear(player string) int {
	n := len(s.flags[player])
	delete(s.flags, player)
	return n
}
