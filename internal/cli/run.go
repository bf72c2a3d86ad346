// Package cli holds the user-facing glue between the cobra commands and the
// run engine: error presentation, the contention diagnostic, and the
// held-lock probe.
package cli

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/leonletto/lockrun/internal/config"
	"github.com/leonletto/lockrun/internal/lock"
	"github.com/leonletto/lockrun/internal/pstree"
	"github.com/leonletto/lockrun/internal/runner"
)

// RunOptions carries the presentation flags for Run.
type RunOptions struct {
	Quiet   bool
	Verbose bool
}

// Run executes the protected command and reports failures to stderr.
// The returned code is what the process should exit with.
func Run(cfg *config.Config, opts RunOptions) int {
	code, err := runner.Run(cfg, runner.Options{Verbose: opts.Verbose})
	if err == nil {
		return code
	}

	if !opts.Quiet {
		fmt.Fprintf(os.Stderr, "lockrun: %v\n", err)
		showContention(err, opts)
	}
	return code
}

// showContention prints the blocking holder's process tree for the two
// lock-contention failures, so the operator can see what is in the way.
// Skipped when stderr is not a terminal unless verbose was requested, to
// keep cron mails short.
func showContention(err error, opts RunOptions) {
	pid := contendingPID(err)
	if pid <= 0 {
		return
	}
	if !opts.Verbose && !term.IsTerminal(int(os.Stderr.Fd())) {
		return
	}
	fmt.Fprintf(os.Stderr, "lockrun: processes under the holder:\n")
	if err := pstree.Render(os.Stderr, pid); err != nil {
		fmt.Fprintf(os.Stderr, "lockrun: could not render process tree: %v\n", err)
	}
}

func contendingPID(err error) int {
	var busy *lock.BusyError
	if errors.As(err, &busy) {
		return busy.HeldBy
	}
	var timeout *lock.WaitTimeoutError
	if errors.As(err, &timeout) {
		return timeout.HeldBy
	}
	return 0
}
