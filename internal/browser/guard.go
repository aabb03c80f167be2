package browser

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Guard serializes every goroutine that drives the shared browser session.
// The case engine holds it for a whole invocation; any other worker (an
// operator command bridge, the 911 importer) must take it before touching
// the page.
type Guard struct {
	sem *semaphore.Weighted
}

// NewGuard creates a free guard
func NewGuard() *Guard {
	return &Guard{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the session is free or ctx is done
func (g *Guard) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire browser session: %w", err)
	}
	return nil
}

// TryAcquire takes the session only if it is free right now
func (g *Guard) TryAcquire() bool {
	return g.sem.TryAcquire(1)
}

// Release hands the session back
func (g *Guard) Release() {
	g.sem.Release(1)
}
