package attach

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator mints stable attachment ids at creation time.
// Implemented by UUIDv7Generator (production) and SequentialGenerator
// (tests). Stable ids replace positional indices so that a rename or
// delete in progress can never target the wrong attachment after an
// earlier one is removed.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 attachment ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, making ids
// sortable by creation time, which keeps id order aligned with the
// collection's append order.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequentialGenerator returns "file-1", "file-2", ... for
// deterministic test execution and golden comparisons.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialGenerator struct {
	mu sync.Mutex
	n  int
}

// Generate returns the next sequential id.
func (g *SequentialGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("file-%d", g.n)
}
