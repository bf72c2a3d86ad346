// Package runner is the engine that ties one invocation together: install
// signal forwarding, take the lock, run the command under its deadline, and
// release the lock on every exit path.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/leonletto/lockrun/internal/config"
	"github.com/leonletto/lockrun/internal/deadline"
	"github.com/leonletto/lockrun/internal/lock"
	"github.com/leonletto/lockrun/internal/proc"
	"github.com/leonletto/lockrun/internal/sigfwd"
)

// Options adjusts the engine's diagnostics, not its semantics.
type Options struct {
	Verbose bool
	Stderr  *os.File // defaults to os.Stderr
}

// Run executes cfg.Argv under the exclusive lock at cfg.LockPath and returns
// the exit code the process should finish with. A non-nil error is one of
// the typed failures (lock busy, lock wait timeout, execution timeout, spawn
// failure); the returned code is then the error's recommended exit code.
func Run(cfg *config.Config, opts Options) (int, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	runID := newRunID()
	logf := func(format string, args ...any) {
		if opts.Verbose {
			fmt.Fprintf(stderr, "lockrun %s: %s\n", runID, fmt.Sprintf(format, args...))
		}
	}

	router := sigfwd.Install()
	defer router.Stop()

	dl := deadline.New()
	lk := lock.New(cfg.LockPath)

	mode := lock.Blocking
	switch {
	case cfg.NoWait:
		mode = lock.NonBlocking
	case cfg.WaitTimeout > 0:
		mode = lock.Bounded
	}

	logf("acquiring lock %s", cfg.LockPath)
	ctx := dl.Arm(context.Background(), deadline.LockWait, cfg.WaitTimeout)
	err := lk.Acquire(ctx, mode)
	dl.Disarm()
	if err != nil {
		return exitCodeFor(err), err
	}
	// Register release immediately - covers ALL subsequent return paths.
	defer func() {
		if err := lk.Release(); err != nil {
			fmt.Fprintf(stderr, "lockrun: warning: failed to release lock: %v\n", err)
		}
	}()
	logf("lock acquired, pid %d recorded", os.Getpid())

	runCtx := dl.Arm(context.Background(), deadline.Execution, cfg.RunTimeout)
	sup := proc.New(router.SetChild)
	code, err := sup.Run(runCtx, cfg.Argv)
	dl.Disarm()
	if err != nil {
		return exitCodeFor(err), err
	}
	logf("command exited with status %d", code)
	return code, nil
}

// exitCoder is implemented by every typed failure in the engine's taxonomy.
type exitCoder interface {
	ExitCode() int
}

func exitCodeFor(err error) int {
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}
