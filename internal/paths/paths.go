// Package paths derives filesystem locations for lock files when the caller
// does not name one explicitly.
package paths

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StateDir returns the directory for derived lock files.
//
// Resolution order:
// 1. $XDG_STATE_HOME/lockrun
// 2. ~/.local/state/lockrun
// 3. os.TempDir()/lockrun-<uid> (shared hosts: per-user to avoid collisions).
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "lockrun")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "lockrun")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("lockrun-%d", os.Getuid()))
}

// DefaultLockPath derives a stable lock file path from the command line.
// The same argv always maps to the same path, so repeated cron invocations
// of one job contend on one lock while distinct jobs never collide.
func DefaultLockPath(argv []string) string {
	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(strings.Join(argv, "\x00"))))[:16]
	name := sanitize(filepath.Base(argv[0]))
	return filepath.Join(StateDir(), fmt.Sprintf("%s-%s.lock", name, hash))
}

// sanitize keeps the command name filesystem-friendly.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "job"
	}
	return b.String()
}
