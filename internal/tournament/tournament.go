// Package tournament schedules round-robin leagues between generals and
// keeps their standings.
package tournament

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotEnoughEntrants is returned for leagues of fewer than two generals.
	ErrNotEnoughEntrants = errors.New("not enough entrants")
	// ErrPairingNotFound is returned when a result names no scheduled pairing.
	ErrPairingNotFound = errors.New("pairing not found")
	// ErrPairingComplete is returned when a pairing has played all its games.
	ErrPairingComplete = errors.New("pairing already complete")
)

// State is the lifecycle of a tournament.
type State int

const (
	StateWaiting State = iota
	StateInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "WAITING"
	case StateInProgress:
		return "IN_PROGRESS"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Points awarded per game.
const (
	WinPoints  = 3
	DrawPoints = 1
)

// Entrant is one general's record.
type Entrant struct {
	General string
	Points  int
	Wins    int
	Losses  int
	Draws   int
}

// Pairing is a head-to-head of Games games between two generals.
type Pairing struct {
	Round      int
	First      string
	Second     string
	Games      int
	FirstWins  int
	SecondWins int
	Draws      int
}

// Played returns the number of games recorded so far.
func (p Pairing) Played() int { return p.FirstWins + p.SecondWins + p.Draws }

// Finished reports whether every game of the pairing was recorded.
func (p Pairing) Finished() bool { return p.Played() >= p.Games }

// Round groups pairings in which every general plays at most once.
type Round struct {
	Number   int
	Pairings []*Pairing
}

// Tournament is a round-robin league. It is safe for concurrent use so
// games can report results as they finish.
type Tournament struct {
	ID              string
	GamesPerPairing int
	CreateTime      time.Time
	StartTime       *time.Time
	EndTime         *time.Time

	mu       sync.RWMutex
	state    State
	entrants map[string]*Entrant
	order    []string
	rounds   []*Round
}

// New creates a league between generals, each pairing playing
// gamesPerPairing games.
func New(generals []string, gamesPerPairing int) (*Tournament, error) {
	if len(generals) < 2 {
		return nil, ErrNotEnoughEntrants
	}
	if gamesPerPairing <= 0 {
		return nil, fmt.Errorf("games per pairing must be positive")
	}
	t := &Tournament{
		ID:              uuid.New().String(),
		GamesPerPairing: gamesPerPairing,
		CreateTime:      time.Now(),
		entrants:        make(map[string]*Entrant, len(generals)),
	}
	for _, general := range generals {
		if _, exists := t.entrants[general]; exists {
			return nil, fmt.Errorf("general %s entered twice", general)
		}
		t.entrants[general] = &Entrant{General: general}
		t.order = append(t.order, general)
	}
	return t, nil
}

// Start schedules every round and moves the league into progress.
func (t *Tournament) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateWaiting {
		return fmt.Errorf("tournament already started")
	}
	now := time.Now()
	t.StartTime = &now
	t.state = StateInProgress
	t.rounds = schedule(t.order, t.GamesPerPairing)
	return nil
}

// schedule pairs everyone with everyone using the circle method: the first
// entrant stays put while the others rotate one place per round. An odd
// field gets a bye seat, and whoever meets it sits the round out.
func schedule(entrants []string, games int) []*Round {
	seats := slices.Clone(entrants)
	if len(seats)%2 == 1 {
		seats = append(seats, "")
	}
	n := len(seats)
	rounds := make([]*Round, 0, n-1)
	for r := 0; r < n-1; r++ {
		round := &Round{Number: r + 1}
		for i := 0; i < n/2; i++ {
			first, second := seats[i], seats[n-1-i]
			if first == "" || second == "" {
				continue
			}
			if r%2 == 1 && i == 0 {
				first, second = second, first
			}
			round.Pairings = append(round.Pairings, &Pairing{
				Round:  round.Number,
				First:  first,
				Second: second,
				Games:  games,
			})
		}
		rounds = append(rounds, round)
		// rotate everything but the first seat
		last := seats[n-1]
		copy(seats[2:], seats[1:n-1])
		seats[1] = last
	}
	return rounds
}

// State returns the current state.
func (t *Tournament) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Pairings returns a copy of every scheduled pairing in round order.
func (t *Tournament) Pairings() []Pairing {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Pairing
	for _, round := range t.rounds {
		for _, p := range round.Pairings {
			out = append(out, *p)
		}
	}
	return out
}

// Rounds returns the number of scheduled rounds.
func (t *Tournament) Rounds() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rounds)
}

// RecordGame records one game of the pairing between first and second in
// round. An empty winner is a draw.
func (t *Tournament) RecordGame(round int, first, second, winner string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateInProgress {
		return fmt.Errorf("tournament is %s", t.state)
	}
	if round <= 0 || round > len(t.rounds) {
		return fmt.Errorf("invalid round number %d", round)
	}
	var pairing *Pairing
	for _, p := range t.rounds[round-1].Pairings {
		if (p.First == first && p.Second == second) || (p.First == second && p.Second == first) {
			pairing = p
			break
		}
	}
	if pairing == nil {
		return fmt.Errorf("%w: %s vs %s in round %d", ErrPairingNotFound, first, second, round)
	}
	if pairing.Finished() {
		return fmt.Errorf("%w: %s vs %s", ErrPairingComplete, first, second)
	}

	a, b := t.entrants[pairing.First], t.entrants[pairing.Second]
	switch winner {
	case pairing.First:
		pairing.FirstWins++
		a.Wins++
		a.Points += WinPoints
		b.Losses++
	case pairing.Second:
		pairing.SecondWins++
		b.Wins++
		b.Points += WinPoints
		a.Losses++
	case "":
		pairing.Draws++
		a.Draws++
		b.Draws++
		a.Points += DrawPoints
		b.Points += DrawPoints
	default:
		return fmt.Errorf("winner %s is not in the pairing", winner)
	}

	if t.allFinished() {
		now := time.Now()
		t.EndTime = &now
		t.state = StateFinished
	}
	return nil
}

func (t *Tournament) allFinished() bool {
	for _, round := range t.rounds {
		for _, p := range round.Pairings {
			if !p.Finished() {
				return false
			}
		}
	}
	return true
}

// Standings returns the entrants ordered by points, then wins, then name.
func (t *Tournament) Standings() []Entrant {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entrant, 0, len(t.order))
	for _, general := range t.order {
		out = append(out, *t.entrants[general])
	}
	slices.SortStableFunc(out, func(a, b Entrant) int {
		if a.Points != b.Points {
			return b.Points - a.Points
		}
		if a.Wins != b.Wins {
			return b.Wins - a.Wins
		}
		return strings.Compare(a.General, b.General)
	})
	return out
}
