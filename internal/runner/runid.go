package runner

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidMu      sync.Mutex
	ulidEntropy = ulid.Monotonic(rand.Reader, 0)
)

// newRunID generates a unique id for one engine invocation, used to
// correlate diagnostics when overlapping cron runs mail their output.
// Format: "run_" + ulid().
func newRunID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy)
	return "run_" + id.String()
}
