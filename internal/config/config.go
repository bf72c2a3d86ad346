// Package config resolves the wrapper's invocation from flags, environment,
// and derived defaults. Cron entries often cannot carry long flag lists, so
// every knob is also settable through LOCKRUN_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/leonletto/lockrun/internal/paths"
)

// Config is the resolved invocation handed to the run engine.
type Config struct {
	LockPath    string        // lock/pid file location
	WaitTimeout time.Duration // max time to wait for the lock; 0 = forever
	RunTimeout  time.Duration // max time for the command to run; 0 = unlimited
	NoWait      bool          // single non-blocking attempt instead of waiting
	Argv        []string      // the protected command
}

// Flags carries the raw CLI flag values. Zero values mean "not set" so the
// environment can fill them in.
type Flags struct {
	LockPath    string
	WaitSecs    int
	TimeoutSecs int
	NoWait      bool
}

// Load resolves configuration with the following priority:
// 1. CLI flags (highest)
// 2. LOCKRUN_* environment variables
// 3. Derived defaults (lock path from the command line).
func Load(flags Flags, argv []string) (*Config, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("no command given")
	}

	cfg := &Config{Argv: argv}

	cfg.LockPath = flags.LockPath
	if cfg.LockPath == "" {
		cfg.LockPath = os.Getenv("LOCKRUN_LOCKFILE")
	}
	if cfg.LockPath == "" {
		cfg.LockPath = paths.DefaultLockPath(argv)
	}

	waitSecs := flags.WaitSecs
	if waitSecs == 0 {
		secs, err := envSeconds("LOCKRUN_WAIT")
		if err != nil {
			return nil, err
		}
		waitSecs = secs
	}
	if waitSecs < 0 {
		return nil, fmt.Errorf("wait timeout must not be negative, got %d", waitSecs)
	}
	cfg.WaitTimeout = time.Duration(waitSecs) * time.Second

	timeoutSecs := flags.TimeoutSecs
	if timeoutSecs == 0 {
		secs, err := envSeconds("LOCKRUN_TIMEOUT")
		if err != nil {
			return nil, err
		}
		timeoutSecs = secs
	}
	if timeoutSecs < 0 {
		return nil, fmt.Errorf("run timeout must not be negative, got %d", timeoutSecs)
	}
	cfg.RunTimeout = time.Duration(timeoutSecs) * time.Second

	cfg.NoWait = flags.NoWait || envBool("LOCKRUN_NO_WAIT")
	if cfg.NoWait && cfg.WaitTimeout > 0 {
		return nil, fmt.Errorf("cannot combine a wait timeout with no-wait")
	}

	return cfg, nil
}

func envSeconds(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not a whole number of seconds", key, v)
	}
	return secs, nil
}

func envBool(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
