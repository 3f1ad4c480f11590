package clock

import (
	"context"
	"sync"
	"time"
)

// TickFunc is invoked once per interval while a Runner is active. gen identifies the
// Start call that scheduled the tick.
type TickFunc func(ctx context.Context, gen uint64, at time.Time)

// Runner fires a TickFunc on a fixed wall-clock cadence until stopped.
// Stop never blocks on an in-flight tick, so it is safe to call from code that holds
// the same lock the tick callback takes. A delivery already past its stop check may
// still reach the callback after Stop; callers drop it by comparing gen with the
// value Start returned most recently.
type Runner struct {
	interval time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	running bool
	gen     uint64
	wg      sync.WaitGroup
}

// NewRunner builds a runner. A non-positive interval yields a runner that never fires,
// which is what tests want when they drive ticks by hand.
func NewRunner(interval time.Duration) *Runner {
	return &Runner{interval: interval}
}

// Start launches the tick loop and returns its generation. Starting an active runner is
// a no-op that returns the current generation.
func (r *Runner) Start(ctx context.Context, fn TickFunc) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running || r.interval <= 0 {
		return r.gen
	}
	r.running = true
	r.gen++
	gen := r.gen
	stop := make(chan struct{})
	r.stop = stop

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		t := time.NewTicker(r.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case at := <-t.C:
				// stop may have been closed while we were waiting on the ticker
				select {
				case <-stop:
					return
				default:
				}
				fn(ctx, gen, at)
			}
		}
	}()
	return gen
}

// Stop cancels future ticks. It is idempotent.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	close(r.stop)
}

// Active reports whether the tick loop is scheduled.
func (r *Runner) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Current reports whether gen belongs to the loop that is scheduled right now.
func (r *Runner) Current(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running && r.gen == gen
}

// Wait blocks until every loop started so far has exited. Call after Stop on shutdown.
func (r *Runner) Wait() { r.wg.Wait() }
