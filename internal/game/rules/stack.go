package rules

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrReentrantPayload is returned when a nested round is raised with the
	// payload of a round that is still resolving.
	ErrReentrantPayload = errors.New("payload is already being dispatched")
	// ErrDispatchDepth is returned when rounds nest deeper than allowed.
	ErrDispatchDepth = errors.New("dispatch depth exceeded")
)

// DefaultMaxDepth bounds how many dispatch rounds may nest.
const DefaultMaxDepth = 16

// Frame is one dispatch round that has started and not yet finished.
type Frame struct {
	RoundID string
	Event   EventType
	Target  string
	Payload any
}

// ResolutionStack tracks the dispatch rounds in progress. A skill reacting
// to an event may raise another event, so rounds nest; the stack refuses a
// nested round that would hand the same payload to a second set of skills.
type ResolutionStack struct {
	mu       sync.Mutex
	frames   []Frame
	maxDepth int
}

// NewResolutionStack creates a stack allowing maxDepth nested rounds.
// A non-positive maxDepth selects DefaultMaxDepth.
func NewResolutionStack(maxDepth int) *ResolutionStack {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &ResolutionStack{
		frames:   make([]Frame, 0, 4),
		maxDepth: maxDepth,
	}
}

// Push opens a round.
func (rs *ResolutionStack) Push(frame Frame) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if len(rs.frames) >= rs.maxDepth {
		return fmt.Errorf("%w: %d rounds open while raising %s", ErrDispatchDepth, len(rs.frames), frame.Event)
	}
	if key, ok := payloadKey(frame.Payload); ok {
		for _, open := range rs.frames {
			if other, ok := payloadKey(open.Payload); ok && other == key {
				return fmt.Errorf("%w: %s raised inside %s (round %s)", ErrReentrantPayload, frame.Event, open.Event, open.RoundID)
			}
		}
	}
	rs.frames = append(rs.frames, frame)
	return nil
}

// Pop closes the innermost round.
func (rs *ResolutionStack) Pop() (Frame, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if len(rs.frames) == 0 {
		return Frame{}, errors.New("resolution stack empty")
	}
	idx := len(rs.frames) - 1
	frame := rs.frames[idx]
	rs.frames = rs.frames[:idx]
	return frame, nil
}

// Peek returns the innermost open round.
func (rs *ResolutionStack) Peek() (Frame, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if len(rs.frames) == 0 {
		return Frame{}, false
	}
	return rs.frames[len(rs.frames)-1], true
}

// Depth returns the number of open rounds.
func (rs *ResolutionStack) Depth() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.frames)
}

// List returns a copy of the open rounds, innermost last.
func (rs *ResolutionStack) List() []Frame {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	cpy := make([]Frame, len(rs.frames))
	copy(cpy, rs.frames)
	return cpy
}

// payloadKey identifies payloads that are shared by reference. Value
// payloads cannot be mutated by skills and are never considered re-entrant.
// Zero-size pointees and empty slice backings may share one address across
// distinct values, so they carry no identity either.
func payloadKey(payload any) (uintptr, bool) {
	if payload == nil {
		return 0, false
	}
	v := reflect.ValueOf(payload)
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return 0, false
		}
		return v.Pointer(), true
	case reflect.Pointer:
		if v.IsNil() || v.Type().Elem().Size() == 0 {
			return 0, false
		}
		return v.Pointer(), true
	case reflect.Slice:
		if v.Cap() == 0 || v.Type().Elem().Size() == 0 {
			return 0, false
		}
		return v.Pointer(), true
	default:
		return 0, false
	}
}
