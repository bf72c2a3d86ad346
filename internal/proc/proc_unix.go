//go:build unix

package proc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// Run spawns argv as a child process and waits for it to finish, returning
// the child's exit status. If ctx is cancelled while the child runs (the
// execution deadline expiring), the child is torn down and TimeoutError is
// returned - the deadline takes precedence over whatever status the child
// exits with during teardown.
func (s *Supervisor) Run(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return 1, &StartError{Err: errors.New("empty command")}
	}

	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // G204 - running the caller's command is the whole point
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// Give the child its own process group so forwarded signals and the
	// forced kill reach its whole tree, not just the direct child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return 1, &StartError{Err: err}
	}

	s.onChild(cmd.Process)
	defer s.onChild(nil)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return exitStatus(err)
	case <-ctx.Done():
		s.teardown(cmd.Process, done)
		return 124, &TimeoutError{Command: argv[0]}
	}
}

// teardown asks the child to exit and polls briefly after each request,
// forcing a kill after politeAttempts unanswered requests. Total wait is
// bounded: politeAttempts polls plus one unconditional kill.
func (s *Supervisor) teardown(p *os.Process, done <-chan error) {
	for i := 0; i < politeAttempts; i++ {
		signalGroup(p, syscall.SIGTERM)
		select {
		case <-done:
			return
		case <-time.After(pollInterval):
		}
	}
	signalGroup(p, syscall.SIGKILL)
	<-done
}

// signalGroup signals the child's process group, falling back to the direct
// process if the group is gone.
func signalGroup(p *os.Process, sig syscall.Signal) {
	if p.Pid > 0 {
		if err := syscall.Kill(-p.Pid, sig); err == nil {
			return
		}
	}
	_ = p.Signal(sig)
}

// exitStatus maps a Wait result to the engine's exit code. A child killed by
// a signal reports the conventional 128+signal code.
func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		return ee.ExitCode(), nil
	}
	return 1, fmt.Errorf("wait for command: %w", err)
}
