package prompt

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Broker turns prompts into suspension points. Answer publishes the request
// on Requests and parks the caller until Resolve supplies the answer from
// another goroutine or the context ends.
type Broker struct {
	logger   *zap.Logger
	requests chan Request

	mu      sync.Mutex
	pending map[string]chan Answer
}

// NewBroker creates a broker whose request channel buffers up to buffer
// requests.
func NewBroker(logger *zap.Logger, buffer int) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{
		logger:   logger,
		requests: make(chan Request, buffer),
		pending:  make(map[string]chan Answer),
	}
}

// Requests delivers requests waiting for an answer.
func (b *Broker) Requests() <-chan Request {
	return b.requests
}

// Answer implements Answerer.
func (b *Broker) Answer(ctx context.Context, req Request) (Answer, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	reply := make(chan Answer, 1)
	b.mu.Lock()
	b.pending[req.ID] = reply
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.pending, req.ID)
		b.mu.Unlock()
	}()

	b.logger.Debug("prompt pending",
		zap.String("request_id", req.ID),
		zap.String("kind", string(req.Kind)),
		zap.String("player", req.Player),
		zap.String("skill", req.Skill),
	)

	select {
	case b.requests <- req:
	case <-ctx.Done():
		return Answer{}, fmt.Errorf("publishing prompt %s: %w", req.ID, ctx.Err())
	}

	select {
	case ans := <-reply:
		ans.RequestID = req.ID
		return ans, nil
	case <-ctx.Done():
		return Answer{}, fmt.Errorf("waiting for prompt %s: %w", req.ID, ctx.Err())
	}
}

// Resolve answers a pending request.
func (b *Broker) Resolve(id string, ans Answer) error {
	b.mu.Lock()
	reply, ok := b.pending[id]
	if ok {
		delete(b.pending, id)
	}
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, id)
	}
	reply <- ans
	return nil
}

// Pending returns how many requests are waiting.
func (b *Broker) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
