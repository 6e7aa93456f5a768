package rules

import (
	"fmt"
	"strings"
)

// Phase is one of the phases a player passes through during their turn.
type Phase int

const (
	PhaseRoundStart Phase = iota
	PhaseStart
	PhaseJudge
	PhaseDraw
	PhasePlay
	PhaseDiscard
	PhaseFinish
	PhaseNotActive
)

var phaseNames = map[Phase]string{
	PhaseRoundStart: "round_start",
	PhaseStart:      "start",
	PhaseJudge:      "judge",
	PhaseDraw:       "draw",
	PhasePlay:       "play",
	PhaseDiscard:    "discard",
	PhaseFinish:     "finish",
	PhaseNotActive:  "not_active",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase_%d", int(p))
}

// ParsePhase resolves a phase from its lower-case name.
func ParsePhase(name string) (Phase, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for phase, phaseName := range phaseNames {
		if phaseName == key {
			return phase, nil
		}
	}
	return PhaseNotActive, fmt.Errorf("unknown phase %q", name)
}

// turnSequence is the order in which phases of a single turn are entered.
// PhaseRoundStart is never part of a turn; it only precedes the first one.
var turnSequence = []Phase{
	PhaseStart,
	PhaseJudge,
	PhaseDraw,
	PhasePlay,
	PhaseDiscard,
	PhaseFinish,
	PhaseNotActive,
}

// TurnSequence returns a copy of the phase order of a turn.
func TurnSequence() []Phase {
	return append([]Phase(nil), turnSequence...)
}

// TurnManager tracks the active player and phase progression. Seat order is
// fixed at construction; dead players are skipped when rotating.
type TurnManager struct {
	seats      []string
	orderIndex int
	seatIndex  int
	turnNumber int
	skipped    map[Phase]bool
}

// NewTurnManager creates a turn manager positioned before the first turn of
// the first seat.
func NewTurnManager(seats []string) *TurnManager {
	cleaned := make([]string, 0, len(seats))
	for _, seat := range seats {
		if s := strings.TrimSpace(seat); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return &TurnManager{
		seats:      cleaned,
		orderIndex: -1,
		turnNumber: 0,
		skipped:    make(map[Phase]bool),
	}
}

// CurrentPhase returns the phase currently in progress. Before the first
// turn begins it reports PhaseRoundStart.
func (tm *TurnManager) CurrentPhase() Phase {
	if tm.orderIndex < 0 {
		return PhaseRoundStart
	}
	return turnSequence[tm.orderIndex]
}

// TurnNumber returns the current turn number (1-based, 0 before the first turn).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActivePlayer returns the player who currently has the turn.
func (tm *TurnManager) ActivePlayer() string {
	if len(tm.seats) == 0 {
		return ""
	}
	return tm.seats[tm.seatIndex]
}

// Skip marks a phase of the current turn as skipped. Skipping the phase in
// progress only affects queries; the caller decides whether to abort it.
func (tm *TurnManager) Skip(phase Phase) {
	tm.skipped[phase] = true
}

// IsSkipped reports whether the phase was skipped during the current turn.
func (tm *TurnManager) IsSkipped(phase Phase) bool {
	return tm.skipped[phase]
}

// BeginTurn starts a new turn for the given seat and resets the skip set.
func (tm *TurnManager) BeginTurn(seat string) {
	for i, s := range tm.seats {
		if s == seat {
			tm.seatIndex = i
			break
		}
	}
	tm.turnNumber++
	tm.orderIndex = 0
	tm.skipped = make(map[Phase]bool)
}

// AdvancePhase moves to the next phase of the current turn. It returns the
// new phase and false once the turn has ended (the manager then rests on
// PhaseNotActive).
func (tm *TurnManager) AdvancePhase() (Phase, bool) {
	if tm.orderIndex < 0 {
		tm.orderIndex = 0
		return tm.CurrentPhase(), true
	}
	if tm.orderIndex >= len(turnSequence)-1 {
		return PhaseNotActive, false
	}
	tm.orderIndex++
	return tm.CurrentPhase(), tm.CurrentPhase() != PhaseNotActive
}

// NextSeat returns the seat after the active one for which alive reports
// true. It returns the empty string when nobody else is alive.
func (tm *TurnManager) NextSeat(alive func(seat string) bool) string {
	return tm.SeatAfter(tm.ActivePlayer(), alive)
}

// SeatAfter returns the first seat following seat in seat order for which
// alive reports true. An unknown seat counts from the active one.
func (tm *TurnManager) SeatAfter(seat string, alive func(seat string) bool) string {
	n := len(tm.seats)
	start := tm.seatIndex
	for i, s := range tm.seats {
		if s == seat {
			start = i
			break
		}
	}
	for step := 1; step <= n; step++ {
		candidate := tm.seats[(start+step)%n]
		if alive == nil || alive(candidate) {
			return candidate
		}
	}
	return ""
}
