package prompt

import (
	"context"
	"math/rand/v2"
	"sync"
)

// Scripted answers from per-player queues of canned answers, in order.
// When a player's queue is empty the fallback answers, Auto by default.
type Scripted struct {
	mu       sync.Mutex
	queues   map[string][]Answer
	fallback Answerer
	seen     []Request
}

// NewScripted creates a scripted answerer.
func NewScripted(fallback Answerer) *Scripted {
	if fallback == nil {
		fallback = Auto{}
	}
	return &Scripted{queues: make(map[string][]Answer), fallback: fallback}
}

// Push queues answers for a player.
func (s *Scripted) Push(player string, answers ...Answer) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[player] = append(s.queues[player], answers...)
	return s
}

// Say queues text answers for a player.
func (s *Scripted) Say(player string, texts ...string) *Scripted {
	answers := make([]Answer, len(texts))
	for i, text := range texts {
		answers[i] = Answer{Text: text}
	}
	return s.Push(player, answers...)
}

// Seen returns the requests answered so far.
func (s *Scripted) Seen() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.seen...)
}

// Answer implements Answerer.
func (s *Scripted) Answer(ctx context.Context, req Request) (Answer, error) {
	s.mu.Lock()
	s.seen = append(s.seen, req)
	queue := s.queues[req.Player]
	if len(queue) > 0 {
		ans := queue[0]
		s.queues[req.Player] = queue[1:]
		s.mu.Unlock()
		ans.RequestID = req.ID
		return ans, nil
	}
	s.mu.Unlock()
	return s.fallback.Answer(ctx, req)
}

// Random answers uniformly among the offered options using a seeded
// generator, so a simulation with the same seed replays identically.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a seeded random answerer.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed+1))}
}

// Answer implements Answerer.
func (r *Random) Answer(_ context.Context, req Request) (Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ans := Answer{RequestID: req.ID}
	switch req.Kind {
	case KindSkillInvoke:
		ans.Text = "no"
		if r.rng.IntN(4) != 0 {
			ans.Text = "yes"
		}
	case KindChoice, KindPlayerChosen:
		if len(req.Options) > 0 {
			ans.Text = req.Options[r.rng.IntN(len(req.Options))]
		}
	case KindCardChosen, KindAG:
		if len(req.CardIDs) > 0 {
			ans.CardIDs = []int{req.CardIDs[r.rng.IntN(len(req.CardIDs))]}
		}
	case KindDiscard:
		if req.Optional {
			return ans, nil
		}
		ids := append([]int(nil), req.CardIDs...)
		r.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		ans.CardIDs = ids[:min(req.Count, len(ids))]
	}
	return ans, nil
}
