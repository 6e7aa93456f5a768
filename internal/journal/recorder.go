package journal

import (
	"context"
	"fmt"
	"sync"

	"github.com/magefree/skillcore-go/internal/game/engine"
	"go.uber.org/zap"
)

// Recorder collects the rounds of running games and hands finished
// journals to a Store.
type Recorder struct {
	logger   *zap.Logger
	store    Store
	mu       sync.RWMutex
	journals map[string]*Journal // gameID -> Journal
	enabled  map[string]bool     // gameID -> whether recording is enabled
}

// NewRecorder creates a recorder. A nil store keeps journals in memory
// only; Save then fails.
func NewRecorder(logger *zap.Logger, store Store) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		logger:   logger,
		store:    store,
		journals: make(map[string]*Journal),
		enabled:  make(map[string]bool),
	}
}

// observer feeds one game's rounds into the recorder.
type observer struct {
	rr     *Recorder
	gameID string
}

func (o observer) ObserveRound(outcome engine.Outcome) {
	o.rr.Record(o.gameID, outcome)
}

// StartRecording begins a journal for gameID and returns the observer to
// install on the game's engine.
func (rr *Recorder) StartRecording(gameID string) engine.RoundObserver {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.journals[gameID] = New(gameID)
	rr.enabled[gameID] = true
	rr.logger.Info("started journal", zap.String("game_id", gameID))
	return observer{rr: rr, gameID: gameID}
}

// StopRecording stops appending rounds for gameID; the journal is kept.
func (rr *Recorder) StopRecording(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.enabled[gameID] = false
	rr.logger.Info("stopped journal", zap.String("game_id", gameID))
}

// Record appends a round to the game's journal if recording is enabled.
func (rr *Recorder) Record(gameID string, outcome engine.Outcome) {
	rr.mu.RLock()
	enabled := rr.enabled[gameID]
	j := rr.journals[gameID]
	rr.mu.RUnlock()

	if !enabled || j == nil {
		return
	}
	r := j.Append(outcome)
	rr.logger.Debug("recorded round",
		zap.String("game_id", gameID),
		zap.Int("seq", r.Seq),
		zap.String("event", r.Event),
		zap.Bool("consumed", r.Consumed),
	)
}

// Journal returns the in-memory journal of a game.
func (rr *Recorder) Journal(gameID string) (*Journal, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	j, ok := rr.journals[gameID]
	return j, ok
}

// Save writes a journal to the store and drops it from memory.
func (rr *Recorder) Save(ctx context.Context, gameID string) error {
	if rr.store == nil {
		return fmt.Errorf("no journal store configured")
	}
	rr.mu.Lock()
	j, ok := rr.journals[gameID]
	if !ok {
		rr.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	delete(rr.journals, gameID)
	delete(rr.enabled, gameID)
	rr.mu.Unlock()

	if err := rr.store.Save(ctx, j); err != nil {
		return fmt.Errorf("failed to save journal: %w", err)
	}
	rr.logger.Info("saved journal",
		zap.String("game_id", gameID),
		zap.Int("round_count", j.Size()),
	)
	return nil
}

// Load reads a journal back from the store.
func (rr *Recorder) Load(ctx context.Context, gameID string) (*Journal, error) {
	if rr.store == nil {
		return nil, fmt.Errorf("no journal store configured")
	}
	j, err := rr.store.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	rr.logger.Info("loaded journal",
		zap.String("game_id", gameID),
		zap.Int("round_count", j.Size()),
	)
	return j, nil
}

// Clear drops a journal without saving it.
func (rr *Recorder) Clear(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.journals, gameID)
	delete(rr.enabled, gameID)
}

// IsRecording reports whether rounds of gameID are being recorded.
func (rr *Recorder) IsRecording(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.enabled[gameID]
}
