/*
scheduler.go - Periodic background flush

PURPOSE:
  Every Update already flushes before it returns. The scheduler adds a
  periodic re-write of the committed document so a backend file that was
  removed or truncated out-of-band is restored without a mutation.

DESIGN:
  - Runs one background goroutine with a configurable interval
  - Errors are logged, never fatal; the next tick retries
  - Stop waits for the goroutine, then flushes one final time

CONFIGURATION:
  - Interval: How often to flush (config flush_interval, 0 disables)

USAGE:
  scheduler := NewFlushScheduler(store, time.Minute, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - records/store.go: Store.Flush
  - cmd/server/main.go: Wiring from config
*/
package api

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/warp/attendance-engine/logging"
	"github.com/warp/attendance-engine/records"
)

// FlushScheduler periodically writes the committed document to the backend.
type FlushScheduler struct {
	Store    *records.Store
	Interval time.Duration
	Log      logging.Logger

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	flushes atomic.Int64
}

// NewFlushScheduler creates a new scheduler. It does nothing until Start.
func NewFlushScheduler(store *records.Store, interval time.Duration, log logging.Logger) *FlushScheduler {
	return &FlushScheduler{
		Store:    store,
		Interval: interval,
		Log:      log,
		stop:     make(chan struct{}),
	}
}

// Start begins the scheduler. A non-positive interval disables it.
func (fs *FlushScheduler) Start() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.Interval <= 0 {
		fs.Log.Info(context.Background(), "flush scheduler disabled")
		return
	}
	if fs.ticker != nil {
		return
	}

	fs.ticker = time.NewTicker(fs.Interval)
	fs.wg.Add(1)

	go fs.run()

	fs.Log.Info(context.Background(), "flush scheduler started", "interval", fs.Interval.String())
}

// Stop stops the scheduler and performs a final flush.
func (fs *FlushScheduler) Stop() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.ticker == nil {
		return
	}
	fs.ticker.Stop()
	close(fs.stop)
	fs.wg.Wait()
	fs.ticker = nil

	fs.flush()
	fs.Log.Info(context.Background(), "flush scheduler stopped")
}

// RunNow triggers an immediate flush.
func (fs *FlushScheduler) RunNow() error {
	return fs.flush()
}

// Flushes returns the number of successful flushes.
func (fs *FlushScheduler) Flushes() int {
	return int(fs.flushes.Load())
}

func (fs *FlushScheduler) run() {
	defer fs.wg.Done()

	for {
		select {
		case <-fs.ticker.C:
			fs.flush()
		case <-fs.stop:
			return
		}
	}
}

func (fs *FlushScheduler) flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := fs.Store.Flush(ctx); err != nil {
		fs.Log.Error(ctx, "scheduled flush failed", "err", err)
		return err
	}
	fs.flushes.Add(1)
	return nil
}
