//go:build !unix

package sigfwd

import "os"

// Router is a no-op on non-unix platforms; the engine refuses to run there
// before any signal ever needs forwarding.
type Router struct{}

func Install() *Router { return &Router{} }

func (r *Router) SetChild(p *os.Process) { _ = p }

func (r *Router) Stop() {}
