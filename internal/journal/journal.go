// Package journal records dispatch rounds of a game so it can be inspected
// or compared after the fact, and persists the records to gzip files,
// SQLite or Postgres.
package journal

import (
	"compress/gzip"
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/magefree/skillcore-go/internal/game/engine"
)

// ErrNotFound is returned when no journal is stored for a game.
var ErrNotFound = errors.New("journal not found")

const fileVersion = 2

// Round is one dispatch round as it was observed.
type Round struct {
	Seq        int
	RoundID    string
	Event      string
	Target     string
	Depth      int
	Invoked    []string
	Consumed   bool
	ConsumedBy string
	Err        string
	// ErrKind classifies Err without the round-specific detail in its text.
	ErrKind    string
}

// RoundFromOutcome converts an engine outcome into a journal round.
func RoundFromOutcome(seq int, outcome engine.Outcome) Round {
	r := Round{
		Seq:        seq,
		RoundID:    outcome.RoundID,
		Event:      string(outcome.Event),
		Target:     outcome.Target,
		Depth:      outcome.Depth,
		Invoked:    append([]string(nil), outcome.Invoked...),
		Consumed:   outcome.Consumed,
		ConsumedBy: outcome.ConsumedBy,
	}
	if outcome.Err != nil {
		r.Err = outcome.Err.Error()
		r.ErrKind = errKind(outcome.Err)
	}
	return r
}

// errKind names the class of a round error.
func errKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, engine.ErrReentrantPayload):
		return "reentrant_payload"
	case errors.Is(err, engine.ErrDispatchDepth):
		return "dispatch_depth"
	case errors.Is(err, engine.ErrNotDispatchable):
		return "not_dispatchable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	default:
		return "skill_error"
	}
}

// Journal is the ordered list of rounds of one game with a cursor for
// stepping through them.
type Journal struct {
	GameID       string
	CreatedAt    time.Time
	Rounds       []Round
	CurrentIndex int
	mu           sync.RWMutex
}

// New creates an empty journal.
func New(gameID string) *Journal {
	return &Journal{
		GameID:    gameID,
		CreatedAt: time.Now().UTC(),
		Rounds:    make([]Round, 0),
	}
}

// Append adds a round, numbering it after the last one.
func (j *Journal) Append(outcome engine.Outcome) Round {
	j.mu.Lock()
	defer j.mu.Unlock()

	r := RoundFromOutcome(len(j.Rounds)+1, outcome)
	j.Rounds = append(j.Rounds, r)
	return r
}

// Start rewinds the cursor.
func (j *Journal) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.CurrentIndex = 0
}

// Next returns the round under the cursor and advances it.
func (j *Journal) Next() (Round, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.CurrentIndex < len(j.Rounds) {
		r := j.Rounds[j.CurrentIndex]
		j.CurrentIndex++
		return r, true
	}
	return Round{}, false
}

// Previous moves the cursor back and returns the round under it.
func (j *Journal) Previous() (Round, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.CurrentIndex > 0 {
		j.CurrentIndex--
		return j.Rounds[j.CurrentIndex], true
	}
	return Round{}, false
}

// Skip moves the cursor by count rounds, clamped to the journal.
func (j *Journal) Skip(count int) (Round, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.Rounds) == 0 {
		return Round{}, false
	}
	j.CurrentIndex = min(max(j.CurrentIndex+count, 0), len(j.Rounds)-1)
	return j.Rounds[j.CurrentIndex], true
}

// Size returns the number of recorded rounds.
func (j *Journal) Size() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return len(j.Rounds)
}

// At returns the round at index.
func (j *Journal) At(index int) (Round, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if index >= 0 && index < len(j.Rounds) {
		return j.Rounds[index], true
	}
	return Round{}, false
}

// Snapshot returns a copy of the rounds.
func (j *Journal) Snapshot() []Round {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return append([]Round(nil), j.Rounds...)
}

// Consumed returns the rounds that a skill ended early.
func (j *Journal) Consumed() []Round {
	var out []Round
	for _, r := range j.Snapshot() {
		if r.Consumed {
			out = append(out, r)
		}
	}
	return out
}

type fileHeader struct {
	GameID     string
	CreatedAt  time.Time
	Version    int
	RoundCount int
	Checksum   string
}

func fileName(directory, gameID string) string {
	return filepath.Join(directory, gameID+".journal")
}

// SaveToFile writes the journal to <directory>/<game id>.journal as gob
// records behind gzip.
func (j *Journal) SaveToFile(directory string) error {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(fileName(directory, j.GameID))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return j.writeTo(file)
}

// writeTo encodes the journal into w and closes it. A failed close is
// reported, since buffered data may not have reached the file.
func (j *Journal) writeTo(w io.WriteCloser) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	sum, err := j.Checksum()
	if err != nil {
		return err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	gz := gzip.NewWriter(w)
	encoder := gob.NewEncoder(gz)
	header := fileHeader{
		GameID:     j.GameID,
		CreatedAt:  j.CreatedAt,
		Version:    fileVersion,
		RoundCount: len(j.Rounds),
		Checksum:   sum.Hash,
	}
	if err := encoder.Encode(&header); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	for i := range j.Rounds {
		if err := encoder.Encode(&j.Rounds[i]); err != nil {
			return fmt.Errorf("failed to encode round %d: %w", i, err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to flush journal: %w", err)
	}
	return nil
}

// LoadFromFile reads a journal written by SaveToFile and verifies its
// checksum.
func LoadFromFile(directory, gameID string) (*Journal, error) {
	file, err := os.Open(fileName(directory, gameID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, gameID)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	decoder := gob.NewDecoder(gz)
	var header fileHeader
	if err := decoder.Decode(&header); err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}
	if header.Version != fileVersion {
		return nil, fmt.Errorf("unsupported journal version: %d", header.Version)
	}

	j := New(header.GameID)
	j.CreatedAt = header.CreatedAt
	for i := 0; i < header.RoundCount; i++ {
		var r Round
		if err := decoder.Decode(&r); err != nil {
			return nil, fmt.Errorf("failed to decode round %d: %w", i, err)
		}
		j.Rounds = append(j.Rounds, r)
	}
	if err := j.verify(header.Checksum); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) verify(expected string) error {
	if expected == "" {
		return nil
	}
	ok, err := j.VerifyChecksum(&Checksum{Hash: expected})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: journal %s", ErrChecksumMismatch, j.GameID)
	}
	return nil
}

// joinInvoked stores skill names as a JSON array. Names are free text, so
// no separator is safe.
func joinInvoked(invoked []string) string {
	if len(invoked) == 0 {
		return ""
	}
	data, err := json.Marshal(invoked)
	if err != nil {
		return ""
	}
	return string(data)
}

func splitInvoked(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var invoked []string
	if err := json.Unmarshal([]byte(s), &invoked); err != nil {
		return nil, fmt.Errorf("decode invoked skills: %w", err)
	}
	return invoked, nil
}
