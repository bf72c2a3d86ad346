// Package proc spawns the protected command and supervises it to completion.
// A child that outlives its execution deadline is torn down with an
// escalation loop: repeated polite terminate requests with short polls in
// between, then a single forced kill once the polite budget is spent.
package proc

import (
	"fmt"
	"os"
	"time"
)

const (
	// politeAttempts is how many terminate requests are sent before the
	// teardown escalates to a forced kill.
	politeAttempts = 10
	// pollInterval is how long each attempt waits for the child to exit.
	pollInterval = 500 * time.Millisecond
)

// StartError reports a command that could not be spawned at all, for example
// a missing executable. Never retried.
type StartError struct {
	Err error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start command: %v", e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// ExitCode returns the recommended process exit code for this error.
func (e *StartError) ExitCode() int { return 1 }

// TimeoutError reports a child that did not finish before its execution
// deadline. The child may still be shutting down when this is raised; the
// teardown has already bounded how long that can take.
type TimeoutError struct {
	Command string
}

func (e *TimeoutError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("command %s timed out", e.Command)
	}
	return "command timed out"
}

// ExitCode returns the conventional "timed out" exit code.
func (e *TimeoutError) ExitCode() int { return 124 }

// Supervisor runs one child at a time. The active child is published through
// onChild so signal forwarding can reach it; signal delivery is asynchronous
// relative to Run's call stack, so the reference cannot live in a local.
type Supervisor struct {
	onChild func(*os.Process)
}

// New creates a Supervisor. onChild is invoked with the child process after
// a successful spawn and with nil on every exit path; pass nil if no one
// needs to observe the active child.
func New(onChild func(*os.Process)) *Supervisor {
	if onChild == nil {
		onChild = func(*os.Process) {}
	}
	return &Supervisor{onChild: onChild}
}
