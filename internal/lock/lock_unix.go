//go:build unix

package lock

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// flockWait obtains an exclusive flock on f according to mode.
// Contention in NonBlocking mode is reported as errContended; a cancelled ctx
// in Bounded mode is reported as the context's error.
func flockWait(ctx context.Context, f *os.File, mode Mode) error {
	switch mode {
	case NonBlocking:
		return flockTry(f)

	case Blocking:
		// A blocking flock parks the thread until the holder releases. The
		// runtime restarts the call on EINTR, but retry explicitly anyway.
		for {
			err := unix.Flock(int(f.Fd()), unix.LOCK_EX)
			if !errors.Is(err, unix.EINTR) {
				return err
			}
		}

	default: // Bounded
		// Poll immediately, then retry until the wait deadline cancels ctx.
		for {
			err := flockTry(f)
			if err == nil || !errors.Is(err, errContended) {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollInterval):
			}
		}
	}
}

// flockTry makes a single non-blocking attempt at the exclusive lock.
func flockTry(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) {
		return errContended
	}
	return err
}

func funlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

// Probe reports whether the lock at path is currently held, and by which pid.
// It uses its own descriptor with a non-blocking attempt, so a held lock is
// never disturbed and a free one is released immediately.
func Probe(path string) (held bool, pid int, err error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0) //nolint:gosec // G304 - caller-chosen lock path
	if err != nil {
		if os.IsNotExist(err) {
			// No lock file yet - nobody has ever held it
			return false, 0, nil
		}
		return false, 0, err
	}
	defer func() { _ = f.Close() }()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) {
			pid, _ = readPID(path)
			return true, pid, nil
		}
		return false, 0, err
	}
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	return false, 0, nil
}
