//go:build unix

package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leonletto/lockrun/internal/lock"
)

func TestCheck_FreeLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	var sb strings.Builder
	code, err := Check(&sb, lockPath, false)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0 for free lock, got %d", code)
	}
	if !strings.Contains(sb.String(), "free") {
		t.Fatalf("expected 'free' in output, got: %s", sb.String())
	}
}

func TestCheck_HeldLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	lk := lock.New(lockPath)
	if err := lk.Acquire(context.Background(), lock.NonBlocking); err != nil {
		t.Fatalf("failed to hold lock: %v", err)
	}
	defer func() { _ = lk.Release() }()

	var sb strings.Builder
	code, err := Check(&sb, lockPath, false)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if code != 1 {
		t.Fatalf("expected exit code 1 for held lock, got %d", code)
	}
	if !strings.Contains(sb.String(), "held") {
		t.Fatalf("expected 'held' in output, got: %s", sb.String())
	}
}

func TestCheck_JSONOutput(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	lk := lock.New(lockPath)
	if err := lk.Acquire(context.Background(), lock.NonBlocking); err != nil {
		t.Fatalf("failed to hold lock: %v", err)
	}
	defer func() { _ = lk.Release() }()

	var sb strings.Builder
	if _, err := Check(&sb, lockPath, true); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	var result CheckResult
	if err := json.Unmarshal([]byte(sb.String()), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, sb.String())
	}
	if !result.Held {
		t.Fatal("expected held=true in JSON result")
	}
	if result.PID != os.Getpid() {
		t.Fatalf("expected pid %d in JSON result, got %d", os.Getpid(), result.PID)
	}
}
