// Package skilltest provides in-memory Player and Room fakes for testing
// skills and the dispatcher without a full game.
package skilltest

import (
	"context"
	"fmt"

	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/counters"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"go.uber.org/zap"
)

// Player is a settable skill.Player.
type Player struct {
	PlayerName   string
	SeatIndex    int
	GeneralName  string
	Alive        bool
	Lord         bool
	FaceDown     bool
	Health       int
	MaxHealth    int
	CurrentPhase rules.Phase
	SkillNames   []string
	WeaponCard   *card.Card
	ArmorCard    *card.Card
	ArmorIgnored bool
	HandIDs      []int
	Used         map[string]int

	// Reg resolves the armor skill; nil means no armor skill.
	Reg *skill.Registry

	Marks   *counters.Marks
	Piles   *counters.Piles
	Scratch *counters.Scratch
	Skipped map[rules.Phase]bool
}

// NewPlayer returns an alive player with 4 hit points owning skills.
func NewPlayer(name string, seat int, skills ...string) *Player {
	return &Player{
		PlayerName: name,
		SeatIndex:  seat,
		Alive:      true,
		Health:     4,
		MaxHealth:  4,
		SkillNames: skills,
		Used:       make(map[string]int),
		Marks:      counters.NewMarks(),
		Piles:      counters.NewPiles(),
		Scratch:    counters.NewScratch(),
		Skipped:    make(map[rules.Phase]bool),
	}
}

func (p *Player) Name() string       { return p.PlayerName }
func (p *Player) Seat() int          { return p.SeatIndex }
func (p *Player) General() string    { return p.GeneralName }
func (p *Player) IsAlive() bool      { return p.Alive }
func (p *Player) IsLord() bool       { return p.Lord }
func (p *Player) HP() int            { return p.Health }
func (p *Player) MaxHP() int         { return p.MaxHealth }
func (p *Player) IsWounded() bool    { return p.Health < p.MaxHealth }
func (p *Player) FaceUp() bool       { return !p.FaceDown }
func (p *Player) Skills() []string   { return append([]string(nil), p.SkillNames...) }
func (p *Player) Phase() rules.Phase { return p.CurrentPhase }
func (p *Player) Weapon() *card.Card { return p.WeaponCard }
func (p *Player) Armor() *card.Card  { return p.ArmorCard }
func (p *Player) HandCount() int     { return len(p.HandIDs) }
func (p *Player) Hand() []int        { return append([]int(nil), p.HandIDs...) }

func (p *Player) HasSkill(name string) bool {
	for _, s := range p.SkillNames {
		if s == name {
			return true
		}
	}
	return false
}

func (p *Player) Skip(phase rules.Phase)           { p.Skipped[phase] = true }
func (p *Player) IsSkipped(phase rules.Phase) bool { return p.Skipped[phase] }

func (p *Player) HasWeapon(name string) bool {
	return p.WeaponCard != nil && p.WeaponCard.Name == name
}

func (p *Player) HasArmorEffect(name string) bool {
	return p.ArmorCard != nil && !p.ArmorIgnored && !p.HasFlag(skill.ArmorNullifiedFlag) && p.ArmorCard.Name == name
}

func (p *Player) ArmorSkill() (skill.Skill, bool) {
	if p.ArmorCard == nil || p.Reg == nil {
		return nil, false
	}
	return p.Reg.Lookup(p.ArmorCard.Skill)
}

func (p *Player) Mark(name string) int              { return p.Marks.Get(name) }
func (p *Player) SetMark(name string, n int)        { p.Marks.Set(name, n) }
func (p *Player) GainMark(name string, n int)       { p.Marks.Gain(name, n) }
func (p *Player) LoseMark(name string, n int)       { p.Marks.Lose(name, n) }
func (p *Player) LoseAllMarks(name string)          { p.Marks.LoseAll(name) }
func (p *Player) Pile(name string) []int            { return p.Piles.Get(name) }
func (p *Player) AddToPile(name string, ids ...int) { p.Piles.Add(name, ids...) }

func (p *Player) RemoveFromPile(name string, id int) bool { return p.Piles.Remove(name, id) }

func (p *Player) SetFlag(flag string)       { p.Scratch.Set(p.PlayerName, flag) }
func (p *Player) UnsetFlag(flag string)     { p.Scratch.Unset(p.PlayerName, flag) }
func (p *Player) HasFlag(flag string) bool  { return p.Scratch.Has(p.PlayerName, flag) }
func (p *Player) UsedTimes(name string) int { return p.Used[name] }

// Room is a skill.Room whose players, prompts and event dispatch are
// supplied by the test. Game actions are recorded in Actions.
type Room struct {
	Reg      *skill.Registry
	Seats    []*Player
	Active   *Player
	Tags     *counters.Tags
	Cards    map[int]*card.Card
	DrawPile []int
	Actions  []string

	// Raise handles RaiseEvent; nil reports nothing consumed.
	Raise func(ctx context.Context, event rules.EventType, target skill.Player, payload any) (bool, error)
	// Invoke answers AskForSkillInvoke; nil answers true.
	Invoke func(p skill.Player, skillName string) bool
	// Choose answers AskForChoice; nil takes the skill's default choice.
	Choose func(p skill.Player, skillName string, choices []string) string
}

// NewRoom returns a room around players sharing reg.
func NewRoom(reg *skill.Registry, players ...*Player) *Room {
	for _, p := range players {
		p.Reg = reg
	}
	r := &Room{
		Reg:   reg,
		Seats: players,
		Tags:  counters.NewTags(),
		Cards: make(map[int]*card.Card),
	}
	if len(players) > 0 {
		r.Active = players[0]
	}
	return r
}

func (r *Room) Registry() *skill.Registry { return r.Reg }
func (r *Room) Logger() *zap.Logger       { return zap.NewNop() }

func (r *Room) Players() []skill.Player {
	out := make([]skill.Player, 0, len(r.Seats))
	for _, p := range r.Seats {
		out = append(out, p)
	}
	return out
}

func (r *Room) AlivePlayers() []skill.Player {
	var out []skill.Player
	for _, p := range r.Seats {
		if p.Alive {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) OtherPlayers(self skill.Player) []skill.Player {
	var out []skill.Player
	for _, p := range r.AlivePlayers() {
		if self == nil || p.Name() != self.Name() {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) Player(name string) (skill.Player, bool) {
	for _, p := range r.Seats {
		if p.PlayerName == name {
			return p, true
		}
	}
	return nil, false
}

func (r *Room) Current() skill.Player {
	if r.Active == nil {
		return nil
	}
	return r.Active
}

func (r *Room) SetTag(key string, value any) { r.Tags.Set(key, value) }
func (r *Room) Tag(key string) (any, bool)   { return r.Tags.Get(key) }
func (r *Room) RemoveTag(key string)         { r.Tags.Remove(key) }

func (r *Room) RaiseEvent(ctx context.Context, event rules.EventType, target skill.Player, payload any) (bool, error) {
	if r.Raise == nil {
		return false, nil
	}
	return r.Raise(ctx, event, target, payload)
}

func (r *Room) AskForSkillInvoke(_ context.Context, p skill.Player, skillName string) (bool, error) {
	r.record("invoke %s %s", p.Name(), skillName)
	if r.Invoke == nil {
		return true, nil
	}
	return r.Invoke(p, skillName), nil
}

func (r *Room) AskForChoice(_ context.Context, p skill.Player, skillName string, choices []string) (string, error) {
	if r.Choose != nil {
		return r.Choose(p, skillName, choices), nil
	}
	if s, ok := r.Reg.Lookup(skillName); ok {
		return s.DefaultChoice(p), nil
	}
	return skill.DefaultChoice, nil
}

func (r *Room) AskForCardChosen(_ context.Context, _, owner skill.Player, _, _ string) (int, error) {
	hand := owner.Hand()
	if len(hand) == 0 {
		return -1, nil
	}
	return hand[0], nil
}

func (r *Room) AskForAG(_ context.Context, _ skill.Player, ids []int, refusable bool, _ string) (int, error) {
	if len(ids) == 0 {
		return -1, nil
	}
	return ids[0], nil
}

func (r *Room) AskForPlayerChosen(_ context.Context, _ skill.Player, targets []skill.Player, _ string) (skill.Player, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	return targets[0], nil
}

func (r *Room) AskForDiscard(_ context.Context, p skill.Player, _ string, n int, optional bool) ([]int, error) {
	if optional {
		return nil, nil
	}
	hand := p.Hand()
	if n > len(hand) {
		n = len(hand)
	}
	return hand[:n], nil
}

func (r *Room) Card(id int) (*card.Card, bool) {
	c, ok := r.Cards[id]
	return c, ok
}

func (r *Room) GetNCards(_ context.Context, n int) ([]int, error) {
	if n > len(r.DrawPile) {
		n = len(r.DrawPile)
	}
	ids := append([]int(nil), r.DrawPile[:n]...)
	r.DrawPile = r.DrawPile[n:]
	return ids, nil
}

// PutOnDrawPile takes id out of any hand and puts it on top of DrawPile.
func (r *Room) PutOnDrawPile(_ context.Context, id int) error {
	r.record("put_on_draw_pile %d", id)
	for _, p := range r.Seats {
		for i, held := range p.HandIDs {
			if held == id {
				p.HandIDs = append(p.HandIDs[:i], p.HandIDs[i+1:]...)
				break
			}
		}
	}
	r.DrawPile = append([]int{id}, r.DrawPile...)
	return nil
}

func (r *Room) Damage(_ context.Context, damage *rules.DamageStruct) error {
	r.record("damage %s->%s %d", damage.From, damage.To, damage.Damage)
	if target, ok := r.find(damage.To); ok {
		target.Health -= damage.Damage
	}
	return nil
}

func (r *Room) LoseHP(_ context.Context, p skill.Player, n int) error {
	r.record("lose_hp %s %d", p.Name(), n)
	if target, ok := r.find(p.Name()); ok {
		target.Health -= n
	}
	return nil
}

func (r *Room) Recover(_ context.Context, p skill.Player, n int) error {
	r.record("recover %s %d", p.Name(), n)
	if target, ok := r.find(p.Name()); ok {
		target.Health = min(target.MaxHealth, target.Health+n)
	}
	return nil
}

func (r *Room) LoseMaxHP(_ context.Context, p skill.Player, n int) error {
	r.record("lose_max_hp %s %d", p.Name(), n)
	if target, ok := r.find(p.Name()); ok {
		target.MaxHealth -= n
		target.Health = min(target.Health, target.MaxHealth)
	}
	return nil
}

func (r *Room) TurnOver(_ context.Context, p skill.Player) error {
	r.record("turn_over %s", p.Name())
	if target, ok := r.find(p.Name()); ok {
		target.FaceDown = !target.FaceDown
	}
	return nil
}

func (r *Room) GainExtraTurn(_ context.Context, p skill.Player) error {
	r.record("extra_turn %s", p.Name())
	return nil
}

func (r *Room) DrawCards(ctx context.Context, p skill.Player, n int) error {
	r.record("draw %s %d", p.Name(), n)
	ids, _ := r.GetNCards(ctx, n)
	if target, ok := r.find(p.Name()); ok {
		target.HandIDs = append(target.HandIDs, ids...)
	}
	return nil
}

func (r *Room) ObtainCard(_ context.Context, p skill.Player, id int) error {
	r.record("obtain %s %d", p.Name(), id)
	if target, ok := r.find(p.Name()); ok {
		target.HandIDs = append(target.HandIDs, id)
	}
	return nil
}

func (r *Room) ThrowCard(_ context.Context, id int) error {
	r.record("throw %d", id)
	for _, p := range r.Seats {
		for i, held := range p.HandIDs {
			if held == id {
				p.HandIDs = append(p.HandIDs[:i], p.HandIDs[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (r *Room) AcquireSkill(_ context.Context, p skill.Player, name string) error {
	r.record("acquire %s %s", p.Name(), name)
	if target, ok := r.find(p.Name()); ok && !target.HasSkill(name) {
		target.SkillNames = append(target.SkillNames, name)
	}
	return nil
}

func (r *Room) DetachSkill(_ context.Context, p skill.Player, name string) error {
	r.record("detach %s %s", p.Name(), name)
	if target, ok := r.find(p.Name()); ok {
		for i, s := range target.SkillNames {
			if s == name {
				target.SkillNames = append(target.SkillNames[:i], target.SkillNames[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (r *Room) KillPlayer(_ context.Context, victim skill.Player, _ *rules.DamageStruct) error {
	r.record("kill %s", victim.Name())
	if target, ok := r.find(victim.Name()); ok {
		target.Alive = false
	}
	return nil
}

func (r *Room) ChangeGeneral(_ context.Context, p skill.Player, general string) error {
	r.record("change_general %s %s", p.Name(), general)
	if target, ok := r.find(p.Name()); ok {
		target.GeneralName = general
	}
	return nil
}

func (r *Room) find(name string) (*Player, bool) {
	for _, p := range r.Seats {
		if p.PlayerName == name {
			return p, true
		}
	}
	return nil, false
}

func (r *Room) record(format string, args ...any) {
	r.Actions = append(r.Actions, fmt.Sprintf(format, args...))
}
