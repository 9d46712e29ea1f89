package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Pacer enforces a minimum interval between external geocoding calls, per the
// provider's absolute-maximum-one-request-per-second usage policy. The clock
// is injectable so tests can run without real sleeps.
//
// Safe for concurrent use: waiters serialize through the pacer, so external
// calls stay strictly spaced even when the server handles uploads in parallel.
type Pacer struct {
	clock    clockwork.Clock
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewPacer creates a Pacer with the given minimum spacing. A nil clock uses
// real time.
func NewPacer(interval time.Duration, clock clockwork.Clock) *Pacer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pacer{clock: clock, interval: interval}
}

// Wait blocks until at least the configured interval has elapsed since the
// previous Wait, then records the current time as the latest call. The first
// Wait never blocks, so runs that are served entirely from cache pay no delay.
//
// The lock is held across the sleep: a concurrent waiter queues behind it and
// then waits out its own full interval, keeping calls strictly serialized.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() {
		if remaining := p.interval - p.clock.Since(p.last); remaining > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.clock.After(remaining):
			}
		}
	}
	p.last = p.clock.Now()
	return nil
}
