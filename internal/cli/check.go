package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/leonletto/lockrun/internal/lock"
)

// CheckResult reports whether a lock is currently held.
type CheckResult struct {
	LockPath string `json:"lock_path"`
	Held     bool   `json:"held"`
	PID      int    `json:"pid,omitempty"`
}

// Check probes the lock at lockPath without disturbing it and writes the
// result to w. Returns exit code 0 when the lock is free, 1 when held.
func Check(w io.Writer, lockPath string, jsonOut bool) (int, error) {
	held, pid, err := lock.Probe(lockPath)
	if err != nil {
		return 1, fmt.Errorf("probe lock: %w", err)
	}

	result := CheckResult{LockPath: lockPath, Held: held, PID: pid}
	if jsonOut {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return 1, fmt.Errorf("marshal result: %w", err)
		}
		fmt.Fprintln(w, string(data))
	} else if held {
		if pid > 0 {
			fmt.Fprintf(w, "lock %s is held by pid %d\n", lockPath, pid)
		} else {
			fmt.Fprintf(w, "lock %s is held\n", lockPath)
		}
	} else {
		fmt.Fprintf(w, "lock %s is free\n", lockPath)
	}

	if held {
		return 1, nil
	}
	return 0, nil
}
