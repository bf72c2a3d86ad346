//go:build resilience

// Package resilience holds cross-process tests for the lock engine: real
// child processes contending on one lock file, holders dying without
// releasing, and bounded waits against a holder that never lets go.
//
// Run with: go test -tags resilience ./tests/resilience/
package resilience
