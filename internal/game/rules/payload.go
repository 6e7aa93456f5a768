package rules

// Payloads are handed to skills by pointer; a skill that changes a field
// changes it for every later skill in the same round and for the room's
// default handling afterwards. Players are referenced by name.

// DamageNature is the element of a damage instance.
type DamageNature int

const (
	DamageNormal DamageNature = iota
	DamageFire
	DamageThunder
)

func (n DamageNature) String() string {
	switch n {
	case DamageFire:
		return "fire"
	case DamageThunder:
		return "thunder"
	default:
		return "normal"
	}
}

// DamageStruct describes one damage instance. From is empty for damage with
// no source player.
type DamageStruct struct {
	From   string
	To     string
	CardID int // -1 when no card caused the damage
	Damage int
	Nature DamageNature
	Chain  bool
}

// NewDamage returns a damage record of one normal point with no card.
func NewDamage(from, to string) *DamageStruct {
	return &DamageStruct{From: from, To: to, CardID: -1, Damage: 1}
}

// SlashEffect describes a slash resolving against one target.
type SlashEffect struct {
	From   string
	To     string
	CardID int
	Nature DamageNature
	Black  bool
	Drank  bool
	// JinkNum is how many jinks the target must produce to dodge.
	JinkNum int
}

// DrawCards is the payload of EventDrawNCards. Num is the number of cards
// the player is about to draw in the draw phase.
type DrawCards struct {
	Num int
}

// CardUse records a card being used, physical or virtual.
type CardUse struct {
	From    string
	To      []string
	CardID  int
	Virtual string // card name when the card is virtual
	Skill   string // substitution skill that produced the card, if any
}

// CardResponse records a card played in response to a prompt.
type CardResponse struct {
	Player  string
	CardID  int
	Pattern string
}

// Place names the zone a card moves between.
type Place string

const (
	PlaceHand     Place = "hand"
	PlaceEquip    Place = "equip"
	PlaceJudging  Place = "judging"
	PlaceDrawPile Place = "draw_pile"
	PlaceDiscard  Place = "discard_pile"
	PlacePile     Place = "special"
	PlaceTable    Place = "table"
)

// CardMove records a single card changing zone.
type CardMove struct {
	CardID   int
	From     string
	FromZone Place
	To       string
	ToZone   Place
	Open     bool
}

// CardsMoved records several cards leaving or entering one player at once.
type CardsMoved struct {
	Player  string
	CardIDs []int
	Zone    Place
}

// DeathStruct describes a player's death.
type DeathStruct struct {
	Who    string
	Killer string
	Damage *DamageStruct
}

// Recover describes a recovery of hit points.
type Recover struct {
	Who     string
	Recover int
	CardID  int
}

// PhaseChange is the payload of EventPhaseChange. Phase is the phase being
// entered; Skipped is set by the room once the phase is marked skipped.
type PhaseChange struct {
	Player  string
	Phase   Phase
	Skipped bool
}

// ChoiceMade records an answer given to a prompt. Observers and journal only.
type ChoiceMade struct {
	Player string
	Kind   string
	Answer string
}
