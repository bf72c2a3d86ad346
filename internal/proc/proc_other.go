//go:build !unix

package proc

import (
	"context"
	"errors"
)

// Run is unsupported on non-unix platforms: the engine's locking and signal
// semantics are built on unix primitives.
func (s *Supervisor) Run(ctx context.Context, argv []string) (int, error) {
	_ = ctx
	return 1, &StartError{Err: errors.New("running commands requires a unix platform")}
}
