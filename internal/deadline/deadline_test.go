package deadline

import (
	"context"
	"testing"
	"time"
)

func TestArm_ExpiresAndCancels(t *testing.T) {
	s := New()

	ctx := s.Arm(context.Background(), LockWait, 50*time.Millisecond)

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("armed context was not cancelled by expiry")
	}

	if got := s.Fired(); got != LockWait {
		t.Fatalf("expected Fired() == LockWait, got %v", got)
	}
}

func TestArm_NonPositiveDurationIsUnbounded(t *testing.T) {
	s := New()

	parent := context.Background()
	ctx := s.Arm(parent, Execution, 0)
	if ctx != parent {
		t.Fatal("expected non-positive duration to return parent unchanged")
	}
	if got := s.Fired(); got != None {
		t.Fatalf("expected nothing fired, got %v", got)
	}
}

func TestDisarm_PreventsExpiry(t *testing.T) {
	s := New()

	s.Arm(context.Background(), LockWait, 50*time.Millisecond)
	s.Disarm()

	time.Sleep(150 * time.Millisecond)
	if got := s.Fired(); got != None {
		t.Fatalf("expected nothing fired after disarm, got %v", got)
	}
}

func TestDisarm_RacingExpiryNeverCancelsNextPhase(t *testing.T) {
	s := New()

	// Arm a very short lock-wait countdown, disarm around the time it
	// fires, then arm the execution phase. However the race resolves,
	// the execution context must not be cancelled by the stale expiry.
	s.Arm(context.Background(), LockWait, time.Millisecond)
	time.Sleep(time.Millisecond)
	s.Disarm()

	ctx := s.Arm(context.Background(), Execution, time.Hour)
	defer s.Disarm()

	time.Sleep(50 * time.Millisecond)
	if ctx.Err() != nil {
		t.Fatal("execution context was cancelled by a stale lock-wait expiry")
	}
	if got := s.Fired(); got == Execution {
		t.Fatal("execution countdown reported fired without expiring")
	}
}

func TestArm_ReplacesOutstandingCountdown(t *testing.T) {
	s := New()

	first := s.Arm(context.Background(), LockWait, time.Hour)
	second := s.Arm(context.Background(), Execution, 50*time.Millisecond)

	// Re-arming cancels the replaced countdown's context outright.
	select {
	case <-first.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("replaced countdown's context was not cancelled")
	}

	select {
	case <-second.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("replacement countdown did not expire")
	}
	if got := s.Fired(); got != Execution {
		t.Fatalf("expected Fired() == Execution, got %v", got)
	}
}

func TestDisarm_SafeWhenNothingArmed(t *testing.T) {
	s := New()
	s.Disarm()
	s.Disarm()
}
