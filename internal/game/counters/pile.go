package counters

import "sort"

// Piles is the set of named card reserves of one player. A card ID appears
// at most once per pile; order of addition is kept.
type Piles struct {
	piles map[string][]int
}

// NewPiles creates an empty pile set.
func NewPiles() *Piles {
	return &Piles{piles: make(map[string][]int)}
}

// Get returns a copy of the pile's card IDs.
func (p *Piles) Get(name string) []int {
	return append([]int(nil), p.piles[name]...)
}

// Len returns the number of cards in a pile.
func (p *Piles) Len(name string) int {
	return len(p.piles[name])
}

// Add appends cards to a pile and returns the IDs actually added.
func (p *Piles) Add(name string, ids ...int) []int {
	var added []int
	for _, id := range ids {
		if p.Contains(name, id) {
			continue
		}
		p.piles[name] = append(p.piles[name], id)
		added = append(added, id)
	}
	return added
}

// Remove takes a card out of a pile.
func (p *Piles) Remove(name string, id int) bool {
	pile := p.piles[name]
	for i, held := range pile {
		if held == id {
			p.piles[name] = append(pile[:i], pile[i+1:]...)
			if len(p.piles[name]) == 0 {
				delete(p.piles, name)
			}
			return true
		}
	}
	return false
}

// Clear empties a pile and returns what it held.
func (p *Piles) Clear(name string) []int {
	held := p.piles[name]
	delete(p.piles, name)
	return held
}

// Contains reports whether the card is in the pile.
func (p *Piles) Contains(name string, id int) bool {
	for _, held := range p.piles[name] {
		if held == id {
			return true
		}
	}
	return false
}

// PileOf returns the name of the pile holding the card, if any.
func (p *Piles) PileOf(id int) (string, bool) {
	for _, name := range p.Names() {
		if p.Contains(name, id) {
			return name, true
		}
	}
	return "", false
}

// Names returns the names of all non-empty piles in sorted order.
func (p *Piles) Names() []string {
	names := make([]string, 0, len(p.piles))
	for name := range p.piles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
