// Package prompt models the decisions a room asks of players while a skill
// is resolving. Asking suspends the logic goroutine until an Answerer
// returns; answerers range from fixed scripts to an interactive broker.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Kind names the shape of a decision.
type Kind string

const (
	KindSkillInvoke  Kind = "skill_invoke"
	KindChoice       Kind = "choice"
	KindCardChosen   Kind = "card_chosen"
	KindAG           Kind = "ag"
	KindPlayerChosen Kind = "player_chosen"
	KindDiscard      Kind = "discard"
)

var (
	// ErrUnknownRequest is returned when resolving a request nobody waits for.
	ErrUnknownRequest = errors.New("unknown prompt request")
	// ErrInvalidAnswer is returned when an answer does not fit its request.
	ErrInvalidAnswer = errors.New("invalid prompt answer")
)

// Request is one pending decision.
type Request struct {
	ID     string
	Kind   Kind
	Player string
	Skill  string
	Reason string
	// Options holds the choice strings, or candidate player names for
	// KindPlayerChosen.
	Options []string
	// CardIDs holds the candidate cards.
	CardIDs []int
	// Count is how many cards a discard needs.
	Count int
	// Optional allows an empty answer (refusing).
	Optional bool
	// Default is the answer used when nobody decides.
	Default string
}

// Answer is the decision taken for a request.
type Answer struct {
	RequestID string
	// Text is the chosen option, "yes"/"no" for skill invocations, or a
	// player name.
	Text    string
	CardIDs []int
}

// Yes reports whether a skill invocation was accepted.
func (a Answer) Yes() bool {
	return a.Text == "yes"
}

// Card returns the single chosen card, or -1 when none was chosen.
func (a Answer) Card() int {
	if len(a.CardIDs) == 0 {
		return -1
	}
	return a.CardIDs[0]
}

// Answerer produces answers. Implementations may block; they must return
// once ctx is done.
type Answerer interface {
	Answer(ctx context.Context, req Request) (Answer, error)
}

// AnswererFunc adapts a function to Answerer.
type AnswererFunc func(ctx context.Context, req Request) (Answer, error)

// Answer calls fn.
func (fn AnswererFunc) Answer(ctx context.Context, req Request) (Answer, error) {
	return fn(ctx, req)
}

// Validate checks that an answer only picks what the request offered.
func Validate(req Request, ans Answer) error {
	switch req.Kind {
	case KindSkillInvoke:
		if ans.Text != "yes" && ans.Text != "no" {
			return fmt.Errorf("%w: %q is not yes/no", ErrInvalidAnswer, ans.Text)
		}
	case KindChoice, KindPlayerChosen:
		if ans.Text == "" && req.Optional {
			return nil
		}
		if !containsString(req.Options, ans.Text) {
			return fmt.Errorf("%w: %q not offered", ErrInvalidAnswer, ans.Text)
		}
	case KindCardChosen, KindAG:
		if len(ans.CardIDs) == 0 && req.Optional {
			return nil
		}
		if len(ans.CardIDs) != 1 || !containsInt(req.CardIDs, ans.CardIDs[0]) {
			return fmt.Errorf("%w: cards %v not offered", ErrInvalidAnswer, ans.CardIDs)
		}
	case KindDiscard:
		if len(ans.CardIDs) == 0 && req.Optional {
			return nil
		}
		if len(ans.CardIDs) != req.Count {
			return fmt.Errorf("%w: need %d cards, got %d", ErrInvalidAnswer, req.Count, len(ans.CardIDs))
		}
		seen := make(map[int]bool)
		for _, id := range ans.CardIDs {
			if seen[id] || !containsInt(req.CardIDs, id) {
				return fmt.Errorf("%w: card %s not offered", ErrInvalidAnswer, strconv.Itoa(id))
			}
			seen[id] = true
		}
	}
	return nil
}

// Auto answers every request with its default: accepting skill
// invocations, taking the default choice, and picking the first candidates.
type Auto struct{}

// Answer implements Answerer.
func (Auto) Answer(_ context.Context, req Request) (Answer, error) {
	return DefaultAnswer(req), nil
}

// DefaultAnswer is the answer Auto gives.
func DefaultAnswer(req Request) Answer {
	ans := Answer{RequestID: req.ID}
	switch req.Kind {
	case KindSkillInvoke:
		ans.Text = "yes"
		if req.Default == "no" {
			ans.Text = "no"
		}
	case KindChoice:
		ans.Text = req.Default
		if !containsString(req.Options, ans.Text) && len(req.Options) > 0 {
			ans.Text = req.Options[0]
		}
	case KindPlayerChosen:
		if len(req.Options) > 0 {
			ans.Text = req.Options[0]
		}
	case KindCardChosen, KindAG:
		if len(req.CardIDs) > 0 && !(req.Optional && req.Default == "refuse") {
			ans.CardIDs = []int{req.CardIDs[0]}
		}
	case KindDiscard:
		if !req.Optional {
			n := min(req.Count, len(req.CardIDs))
			ans.CardIDs = append([]int(nil), req.CardIDs[:n]...)
		}
	}
	return ans
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
