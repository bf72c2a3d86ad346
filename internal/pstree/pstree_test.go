package pstree

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestRender_IncludesRootPid(t *testing.T) {
	var sb strings.Builder
	if err := Render(&sb, os.Getpid()); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(sb.String(), fmt.Sprintf("%d ", os.Getpid())) {
		t.Fatalf("expected our pid in output, got:\n%s", sb.String())
	}
}

func TestRender_IncludesChildren(t *testing.T) {
	cmd := exec.Command("sleep", "10")
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start child: %v", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()
	// Let the child appear in the process listing.
	time.Sleep(50 * time.Millisecond)

	var sb strings.Builder
	if err := Render(&sb, os.Getpid()); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(sb.String(), fmt.Sprintf("%d ", cmd.Process.Pid)) {
		t.Fatalf("expected child pid %d in output, got:\n%s", cmd.Process.Pid, sb.String())
	}
}

func TestRender_UnknownPid(t *testing.T) {
	var sb strings.Builder
	if err := Render(&sb, 1<<30); err == nil {
		t.Fatal("expected error for unknown pid")
	}
}
