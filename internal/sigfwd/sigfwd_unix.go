//go:build unix

// Package sigfwd relays the wrapper's incoming signals to the wrapped
// command. The wrapper itself is just plumbing: an operator signalling the
// cron job means the job, so everything catchable is passed through to
// whichever child is live at delivery time.
package sigfwd

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// forwardable is the set of signals relayed to the child. KILL and STOP
// cannot be caught, CHLD is the child-state notification itself, and URG is
// reserved by the Go runtime for preemption.
var forwardable = []os.Signal{
	syscall.SIGHUP,
	syscall.SIGINT,
	syscall.SIGQUIT,
	syscall.SIGTERM,
	syscall.SIGUSR1,
	syscall.SIGUSR2,
	syscall.SIGCONT,
	syscall.SIGWINCH,
}

// Router owns the process-wide active-child slot. Signal delivery is
// asynchronous relative to the engine's call stack, so the slot is an atomic
// reference written by the process supervisor and read at delivery time.
type Router struct {
	ch    chan os.Signal
	child atomic.Pointer[os.Process]
	done  chan struct{}
}

// Install registers the forwardable signal set and starts the relay loop.
// Call once per process, before any lock or execute phase.
func Install() *Router {
	r := &Router{
		ch:   make(chan os.Signal, 16),
		done: make(chan struct{}),
	}
	signal.Notify(r.ch, forwardable...)
	go r.loop()
	return r
}

// SetChild publishes p as the forwarding target. Pass nil to clear; with no
// child published, delivered signals are dropped.
func (r *Router) SetChild(p *os.Process) {
	r.child.Store(p)
}

// Stop unregisters the handlers and ends the relay loop, restoring default
// signal behavior.
func (r *Router) Stop() {
	signal.Stop(r.ch)
	close(r.done)
}

func (r *Router) loop() {
	for {
		select {
		case sig := <-r.ch:
			r.forward(sig)
		case <-r.done:
			return
		}
	}
}

func (r *Router) forward(sig os.Signal) {
	p := r.child.Load()
	if p == nil {
		return
	}
	s, ok := sig.(syscall.Signal)
	if !ok {
		return
	}
	// Address the child's process group first so shells and their
	// descendants all see the signal, then fall back to the process.
	if p.Pid > 0 {
		if err := syscall.Kill(-p.Pid, s); err == nil {
			return
		}
	}
	_ = p.Signal(sig)
}
