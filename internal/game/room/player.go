package room

import (
	"slices"

	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/counters"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
)

// Seat describes a player at room creation.
type Seat struct {
	Name    string
	General string
	// MaxHP defaults to 4.
	MaxHP  int
	Lord   bool
	Skills []string
}

// Player is one seat of a Room. It implements skill.Player; every mutation
// goes through the room so observers see it.
type Player struct {
	room *Room

	name    string
	seat    int
	general string
	alive   bool
	lord    bool
	faceUp  bool
	hp      int
	maxHP   int
	skills  []string
	hand    []int
	weapon  *card.Card
	armor   *card.Card
	marks   *counters.Marks
	piles   *counters.Piles
	pending map[rules.Phase]bool
}

func newPlayer(r *Room, index int, seat Seat) *Player {
	maxHP := seat.MaxHP
	if maxHP <= 0 {
		maxHP = 4
	}
	return &Player{
		room:    r,
		name:    seat.Name,
		seat:    index,
		general: seat.General,
		alive:   true,
		lord:    seat.Lord,
		faceUp:  true,
		hp:      maxHP,
		maxHP:   maxHP,
		marks:   counters.NewMarks(),
		piles:   counters.NewPiles(),
		pending: make(map[rules.Phase]bool),
	}
}

func (p *Player) Name() string    { return p.name }
func (p *Player) Seat() int       { return p.seat }
func (p *Player) General() string { return p.general }
func (p *Player) IsAlive() bool   { return p.alive }
func (p *Player) IsLord() bool    { return p.lord }
func (p *Player) HP() int         { return p.hp }
func (p *Player) MaxHP() int      { return p.maxHP }
func (p *Player) IsWounded() bool { return p.hp < p.maxHP }
func (p *Player) FaceUp() bool    { return p.faceUp }

func (p *Player) HasSkill(name string) bool { return slices.Contains(p.skills, name) }
func (p *Player) Skills() []string          { return slices.Clone(p.skills) }

// Phase returns the phase of the player's turn, or NotActive outside it.
func (p *Player) Phase() rules.Phase {
	if p.isActive() {
		return p.room.turns.CurrentPhase()
	}
	return rules.PhaseNotActive
}

// Skip marks a phase skipped. Outside the player's turn the skip is kept
// for the player's next turn.
func (p *Player) Skip(phase rules.Phase) {
	if p.isActive() {
		p.room.turns.Skip(phase)
		return
	}
	p.pending[phase] = true
}

func (p *Player) IsSkipped(phase rules.Phase) bool {
	if p.isActive() {
		return p.room.turns.IsSkipped(phase)
	}
	return p.pending[phase]
}

func (p *Player) Weapon() *card.Card { return p.weapon }
func (p *Player) Armor() *card.Card  { return p.armor }

func (p *Player) HasWeapon(name string) bool {
	return p.weapon != nil && p.weapon.Name == name
}

func (p *Player) HasArmorEffect(name string) bool {
	return p.armor != nil && p.armor.Name == name && !p.HasFlag(skill.ArmorNullifiedFlag)
}

func (p *Player) ArmorSkill() (skill.Skill, bool) {
	if p.armor == nil || p.armor.Skill == "" {
		return nil, false
	}
	return p.room.registry.Lookup(p.armor.Skill)
}

func (p *Player) HandCount() int { return len(p.hand) }
func (p *Player) Hand() []int    { return slices.Clone(p.hand) }

func (p *Player) Mark(name string) int { return p.marks.Get(name) }

func (p *Player) SetMark(name string, n int) {
	before := p.marks.Get(name)
	p.room.notifier.MarkChanged(p.name, name, before, p.marks.Set(name, n))
}

func (p *Player) GainMark(name string, n int) {
	before := p.marks.Get(name)
	p.room.notifier.MarkChanged(p.name, name, before, p.marks.Gain(name, n))
}

func (p *Player) LoseMark(name string, n int) {
	before := p.marks.Get(name)
	p.room.notifier.MarkChanged(p.name, name, before, p.marks.Lose(name, n))
}

func (p *Player) LoseAllMarks(name string) {
	before := p.marks.LoseAll(name)
	p.room.notifier.MarkChanged(p.name, name, before, 0)
}

func (p *Player) Pile(name string) []int { return p.piles.Get(name) }

// AddToPile moves cards onto one of the player's piles, taking them from
// wherever they are.
func (p *Player) AddToPile(name string, ids ...int) {
	for _, id := range ids {
		p.room.detach(id)
	}
	p.room.notifier.PileChanged(p.name, name, p.piles.Add(name, ids...), true)
}

// RemoveFromPile takes a card off a pile. The caller decides where it goes.
func (p *Player) RemoveFromPile(name string, id int) bool {
	if !p.piles.Remove(name, id) {
		return false
	}
	p.room.notifier.PileChanged(p.name, name, []int{id}, false)
	return true
}

func (p *Player) SetFlag(flag string)      { p.room.scratch.Set(p.name, flag) }
func (p *Player) UnsetFlag(flag string)    { p.room.scratch.Unset(p.name, flag) }
func (p *Player) HasFlag(flag string) bool { return p.room.scratch.Has(p.name, flag) }

// UsedTimes counts the cards or skill cards of that name the player used
// during the current turn.
func (p *Player) UsedTimes(name string) int {
	return p.room.usage.Count(p.name, name)
}

// equip puts an equipment card into its slot, returning the card it
// replaced, if any.
func (p *Player) equip(c *card.Card) *card.Card {
	var old *card.Card
	switch c.Subtype {
	case card.SubtypeWeapon:
		old, p.weapon = p.weapon, c
	case card.SubtypeArmor:
		old, p.armor = p.armor, c
	}
	return old
}

func (p *Player) equipIDs() []int {
	var ids []int
	if p.weapon != nil {
		ids = append(ids, p.weapon.ID)
	}
	if p.armor != nil {
		ids = append(ids, p.armor.ID)
	}
	return ids
}

func (p *Player) removeCard(id int) bool {
	if i := slices.Index(p.hand, id); i >= 0 {
		p.hand = slices.Delete(p.hand, i, i+1)
		return true
	}
	if p.weapon != nil && p.weapon.ID == id {
		p.weapon = nil
		return true
	}
	if p.armor != nil && p.armor.ID == id {
		p.armor = nil
		return true
	}
	if pile, ok := p.piles.PileOf(id); ok {
		return p.RemoveFromPile(pile, id)
	}
	return false
}

func (p *Player) isActive() bool {
	return p.room.turns.TurnNumber() > 0 && p.room.turns.ActivePlayer() == p.name
}

// State is a read-only snapshot of a player.
type State struct {
	Name    string         `json:"name"`
	General string         `json:"general"`
	Alive   bool           `json:"alive"`
	FaceUp  bool           `json:"face_up"`
	HP      int            `json:"hp"`
	MaxHP   int            `json:"max_hp"`
	Hand    int            `json:"hand"`
	Skills  []string       `json:"skills"`
	Marks   map[string]int `json:"marks,omitempty"`
	Piles   map[string]int `json:"piles,omitempty"`
}

func (p *Player) snapshot() State {
	st := State{
		Name:    p.name,
		General: p.general,
		Alive:   p.alive,
		FaceUp:  p.faceUp,
		HP:      p.hp,
		MaxHP:   p.maxHP,
		Hand:    len(p.hand),
		Skills:  p.Skills(),
		Marks:   p.marks.Snapshot(),
	}
	if names := p.piles.Names(); len(names) > 0 {
		st.Piles = make(map[string]int, len(names))
		for _, name := range names {
			st.Piles[name] = p.piles.Len(name)
		}
	}
	return st
}
