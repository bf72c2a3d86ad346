// Package deadline arms a single countdown shared by the two bounded phases
// of an invocation: waiting for the lock, and running the command. The armed
// countdown carries an explicit Kind tag, so an expiry that races a disarm
// can be recognized as stale and dropped instead of being misread as a
// timeout of the next phase.
package deadline

import (
	"context"
	"sync"
	"time"
)

// Kind tags an armed countdown with the phase it bounds.
type Kind int

const (
	None Kind = iota
	LockWait
	Execution
)

func (k Kind) String() string {
	switch k {
	case LockWait:
		return "lock-wait"
	case Execution:
		return "execution"
	default:
		return "none"
	}
}

// Supervisor owns at most one outstanding countdown. Arming while one is
// active replaces it. Lock-waiting and executing are sequential phases, so
// one countdown is all an invocation ever needs.
type Supervisor struct {
	mu     sync.Mutex
	kind   Kind
	fired  Kind
	timer  *time.Timer
	cancel context.CancelFunc
}

// New creates a Supervisor with nothing armed.
func New() *Supervisor {
	return &Supervisor{}
}

// Arm schedules a countdown of d tagged with kind and returns a context that
// is cancelled when the countdown expires. A non-positive d arms nothing and
// returns parent unchanged, so unbounded phases need no special casing.
func (s *Supervisor) Arm(parent context.Context, kind Kind, d time.Duration) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	if d <= 0 {
		return parent
	}

	ctx, cancel := context.WithCancel(parent)
	s.kind = kind
	s.cancel = cancel
	s.timer = time.AfterFunc(d, func() { s.expire(kind) })
	return ctx
}

// Disarm cancels any outstanding countdown. Safe to call when none is armed.
// Callers disarm before leaving a phase; an expiry that slips in between the
// phase ending and the disarm is dropped by the kind check in expire.
func (s *Supervisor) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Fired reports which countdown, if any, has expired during this
// invocation's lifetime.
func (s *Supervisor) Fired() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

func (s *Supervisor) expire(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind != kind || s.cancel == nil {
		// Raced with a disarm or a re-arm: stale expiry, drop it.
		return
	}
	s.fired = kind
	s.stopLocked()
}

func (s *Supervisor) stopLocked() {
	s.kind = None
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
