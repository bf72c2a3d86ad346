//go:build !unix

package lock

import (
	"context"
	"errors"
	"os"
)

// Advisory file locking is the mutual-exclusion mechanism of this tool, so
// unlike features that can degrade gracefully, it cannot be a no-op here.
var errUnsupported = errors.New("file locking requires a unix platform")

func flockWait(ctx context.Context, f *os.File, mode Mode) error {
	_ = ctx
	_ = f
	_ = mode
	return errUnsupported
}

func funlock(f *os.File) error {
	_ = f
	return nil
}

// Probe always reports an error on non-unix platforms.
func Probe(path string) (held bool, pid int, err error) {
	_ = path
	return false, 0, errUnsupported
}
