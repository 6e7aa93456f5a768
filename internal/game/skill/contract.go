package skill

import (
	"context"

	"github.com/magefree/skillcore-go/internal/game/card"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"go.uber.org/zap"
)

// ArmorNullifiedFlag is the scratch flag that suppresses a player's armor
// while it is raised.
const ArmorNullifiedFlag = "armor_nullified"

// Player is the view of one seat that skills read and mutate.
type Player interface {
	Name() string
	Seat() int
	General() string
	IsAlive() bool
	IsLord() bool
	HP() int
	MaxHP() int
	IsWounded() bool
	// FaceUp is false while the general is turned over; a face-down player
	// skips their next turn.
	FaceUp() bool

	// HasSkill reports whether the player currently has the skill, innate
	// or acquired.
	HasSkill(name string) bool
	Skills() []string

	Phase() rules.Phase
	// Skip marks a phase of the player's current turn as skipped.
	Skip(phase rules.Phase)
	IsSkipped(phase rules.Phase) bool

	Weapon() *card.Card
	Armor() *card.Card
	HasWeapon(name string) bool
	// HasArmorEffect reports whether the named armor is equipped and not
	// ignored through ArmorNullifiedFlag.
	HasArmorEffect(name string) bool
	// ArmorSkill returns the skill instance of the equipped armor.
	ArmorSkill() (Skill, bool)

	HandCount() int
	Hand() []int

	Mark(name string) int
	SetMark(name string, n int)
	GainMark(name string, n int)
	LoseMark(name string, n int)
	LoseAllMarks(name string)

	Pile(name string) []int
	AddToPile(name string, ids ...int)
	RemoveFromPile(name string, id int) bool

	SetFlag(flag string)
	UnsetFlag(flag string)
	HasFlag(flag string) bool

	// UsedTimes counts how often a card or skill card was used this turn.
	UsedTimes(name string) int
}

// Room is everything a skill may ask of the game it runs in. Every blocking
// call takes a context; prompts suspend the caller until answered.
type Room interface {
	Registry() *Registry
	Logger() *zap.Logger

	Players() []Player
	AlivePlayers() []Player
	// OtherPlayers returns the alive players other than p in seat order
	// starting after p.
	OtherPlayers(p Player) []Player
	Player(name string) (Player, bool)
	Current() Player

	SetTag(key string, value any)
	Tag(key string) (any, bool)
	RemoveTag(key string)

	// RaiseEvent dispatches an event to the target's triggerable skills and
	// reports whether one of them consumed it.
	RaiseEvent(ctx context.Context, event rules.EventType, target Player, payload any) (bool, error)

	AskForSkillInvoke(ctx context.Context, p Player, skillName string) (bool, error)
	AskForChoice(ctx context.Context, p Player, skillName string, choices []string) (string, error)
	// AskForCardChosen lets chooser pick a card of owner from the zones in
	// flags ("h" hand, "e" equip, "j" judging).
	AskForCardChosen(ctx context.Context, chooser, owner Player, flags, reason string) (int, error)
	// AskForAG shows a pool of cards and returns the chosen ID, or -1 when
	// refusable and refused.
	AskForAG(ctx context.Context, p Player, ids []int, refusable bool, reason string) (int, error)
	AskForPlayerChosen(ctx context.Context, p Player, targets []Player, reason string) (Player, error)
	AskForDiscard(ctx context.Context, p Player, reason string, n int, optional bool) ([]int, error)

	Card(id int) (*card.Card, bool)
	// GetNCards takes n cards from the top of the draw pile.
	GetNCards(ctx context.Context, n int) ([]int, error)
	// PutOnDrawPile moves a card to the top of the draw pile.
	PutOnDrawPile(ctx context.Context, id int) error

	Damage(ctx context.Context, damage *rules.DamageStruct) error
	LoseHP(ctx context.Context, p Player, n int) error
	Recover(ctx context.Context, p Player, n int) error
	LoseMaxHP(ctx context.Context, p Player, n int) error
	TurnOver(ctx context.Context, p Player) error
	// GainExtraTurn gives p a turn right after the current one; normal seat
	// order resumes afterwards.
	GainExtraTurn(ctx context.Context, p Player) error
	DrawCards(ctx context.Context, p Player, n int) error
	ObtainCard(ctx context.Context, p Player, id int) error
	ThrowCard(ctx context.Context, id int) error
	AcquireSkill(ctx context.Context, p Player, name string) error
	DetachSkill(ctx context.Context, p Player, name string) error
	KillPlayer(ctx context.Context, victim Player, damage *rules.DamageStruct) error
	ChangeGeneral(ctx context.Context, p Player, general string) error
}
