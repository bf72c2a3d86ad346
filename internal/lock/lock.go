// Package lock provides the exclusive advisory file lock that serializes
// runs of a protected command. Mutual exclusion comes from the OS lock
// primitive on the open descriptor, not from the pid recorded in the file:
// the OS releases the lock automatically when the holding process dies
// (even SIGKILL), so a crashed holder never wedges the next run.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// State tracks where a Lock is in its lifecycle.
type State int

const (
	Unacquired State = iota
	Acquiring
	Held
)

// Mode selects how Acquire behaves when the lock is contended.
type Mode int

const (
	// Blocking waits indefinitely for the lock.
	Blocking Mode = iota
	// Bounded retries until the supplied context is cancelled.
	Bounded
	// NonBlocking makes a single attempt and fails on contention.
	NonBlocking
)

// pollInterval is how often a Bounded acquisition retries a contended lock.
const pollInterval = 100 * time.Millisecond

// errContended is returned by the platform flock layer when another process
// holds the lock.
var errContended = errors.New("lock contended")

// BusyError reports a non-blocking acquisition that found the lock held.
type BusyError struct {
	Path   string
	HeldBy int // pid recorded in the lock file, 0 if unreadable
}

func (e *BusyError) Error() string {
	if e.HeldBy > 0 {
		return fmt.Sprintf("lock %s is held by pid %d", e.Path, e.HeldBy)
	}
	return fmt.Sprintf("lock %s is held by another process", e.Path)
}

// ExitCode returns the recommended process exit code for this error.
func (e *BusyError) ExitCode() int { return 1 }

// WaitTimeoutError reports a bounded acquisition whose wait deadline expired
// before the lock became free.
type WaitTimeoutError struct {
	Path   string
	HeldBy int
}

func (e *WaitTimeoutError) Error() string {
	if e.HeldBy > 0 {
		return fmt.Sprintf("timed out waiting for lock %s (held by pid %d)", e.Path, e.HeldBy)
	}
	return fmt.Sprintf("timed out waiting for lock %s", e.Path)
}

// ExitCode returns the recommended process exit code for this error.
func (e *WaitTimeoutError) ExitCode() int { return 1 }

// Lock is an exclusive advisory file lock keyed by a filesystem path.
// The zero value is not usable; construct with New.
type Lock struct {
	path  string
	file  *os.File
	state State
}

// New creates a Lock for path. Nothing is opened until Acquire.
func New(path string) *Lock {
	return &Lock{path: path}
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// State returns the current lifecycle state.
func (l *Lock) State() State { return l.state }

// Acquire obtains the exclusive lock according to mode. For Bounded mode the
// wait is limited by ctx; a cancelled ctx yields WaitTimeoutError. On success
// the lock file is truncated and rewritten with the current pid, so the
// holder can be identified by contending processes.
func (l *Lock) Acquire(ctx context.Context, mode Mode) error {
	if l.file != nil {
		return fmt.Errorf("lock %s already acquired", l.path)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("create lock file directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600) //nolint:gosec // G304 - caller-chosen lock path
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	l.file = f
	l.state = Acquiring

	if err := flockWait(ctx, f, mode); err != nil {
		// Read the holder pid for diagnostics before giving up the descriptor.
		heldBy, _ := l.HeldByPID()
		_ = f.Close()
		l.file = nil
		l.state = Unacquired

		switch {
		case errors.Is(err, errContended):
			return &BusyError{Path: l.path, HeldBy: heldBy}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return &WaitTimeoutError{Path: l.path, HeldBy: heldBy}
		default:
			return fmt.Errorf("acquire lock: %w", err)
		}
	}

	if err := l.writePID(); err != nil {
		_ = l.Release()
		return err
	}
	l.state = Held
	return nil
}

// Release unlocks and closes the descriptor. The lock file itself is left in
// place: removing it would race with waiters that already hold a descriptor
// to the old inode. Safe to call multiple times — subsequent calls are no-ops.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	// Capture and nil before operations to prevent double-release on reused fd
	f := l.file
	l.file = nil
	l.state = Unacquired
	_ = funlock(f)
	if err := f.Close(); err != nil {
		return fmt.Errorf("close lock file: %w", err)
	}
	return nil
}

// HeldByPID reads the pid recorded in the lock file. Diagnostic only: the
// flock, not the file content, is the arbiter of who holds the lock.
func (l *Lock) HeldByPID() (int, error) {
	return readPID(l.path)
}

// writePID overwrites the lock file with the current pid and flushes it, so a
// contending process sees the holder even if it probes right after we win.
func (l *Lock) writePID() error {
	if err := l.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate lock file: %w", err)
	}
	if _, err := l.file.Seek(0, 0); err != nil {
		return fmt.Errorf("rewind lock file: %w", err)
	}
	if _, err := fmt.Fprintf(l.file, "%d\n", os.Getpid()); err != nil {
		return fmt.Errorf("write pid to lock file: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync lock file: %w", err)
	}
	return nil
}

func readPID(path string) (int, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304 - caller-chosen lock path
	if err != nil {
		return 0, err
	}
	pidStr := strings.TrimSpace(string(content))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return 0, fmt.Errorf("invalid pid in lock file: %q", pidStr)
	}
	return pid, nil
}
