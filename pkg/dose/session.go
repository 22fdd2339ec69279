package dose

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/itohio/uvdose/pkg/keypad"
	"github.com/itohio/uvdose/pkg/sample"
)

// ErrBufferFull is returned when a digit would exceed the target length cap.
var ErrBufferFull = errors.New("target buffer full")

// ErrNotDigit is returned for non-digit keys.
var ErrNotDigit = errors.New("not a digit")

// State is a copy of the session fields.
type State struct {
	Total   float32
	Start   time.Time
	Target  uint32
	Buffer  string
	Average float32
	Alarm   bool
}

// Session is the shared dose record.
//
// The sampling loop owns Total increments, the average and the alarm phase;
// the input loop owns resets and target entry. Each loop holds mu for the
// whole state-changing part of its tick so the other never sees a half
// updated record.
type Session struct {
	mu        sync.Mutex
	total     float32
	start     time.Time
	target    uint32
	buffer    []byte
	avg       *sample.EMA
	alarm     bool
	maxDigits int
}

// NewSession creates a session started at now with the average seeded from
// an initial reading.
func NewSession(now time.Time, alpha, seed float32, maxDigits int) *Session {
	if maxDigits <= 0 || maxDigits > 9 {
		maxDigits = 9
	}
	return &Session{
		start:     now,
		avg:       sample.NewEMA(alpha, seed),
		buffer:    make([]byte, 0, maxDigits),
		maxDigits: maxDigits,
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Total:   s.total,
		Start:   s.start,
		Target:  s.target,
		Buffer:  string(s.buffer),
		Average: s.avg.Value(),
		Alarm:   s.alarm,
	}
}

// accumulate adds one scaled reading. Caller holds mu.
func (s *Session) accumulate(v float32) {
	s.total += v
	s.avg.Update(v)
}

// reset clears the dose and target but keeps the average. Caller holds mu.
func (s *Session) reset(now time.Time) {
	s.total = 0
	s.start = now
	s.target = 0
	s.buffer = s.buffer[:0]
	s.alarm = false
}

// enterDigit appends a digit and re-parses the target. Caller holds mu.
func (s *Session) enterDigit(k keypad.Key) error {
	if !k.IsDigit() {
		return ErrNotDigit
	}
	if len(s.buffer) >= s.maxDigits {
		return ErrBufferFull
	}
	s.buffer = append(s.buffer, byte(k))
	target, err := strconv.ParseUint(string(s.buffer), 10, 32)
	if err != nil {
		s.buffer = s.buffer[:len(s.buffer)-1]
		return err
	}
	s.target = uint32(target)
	return nil
}

// reached reports whether a non-zero target has been met. Caller holds mu.
func (s *Session) reached() bool {
	return s.target > 0 && s.total >= float32(s.target)
}
